package apierr

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/mcoot/pokernight-go/internal/model"
	"github.com/mcoot/pokernight-go/internal/services/auth"
)

// APIError represents an API error response
type APIError struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

// ErrorResponse wraps an APIError
type ErrorResponse struct {
	Error APIError `json:"error"`
}

// Common error codes
const (
	CodeInvalidRequest       = "INVALID_REQUEST"
	CodeUnauthorized         = "UNAUTHORIZED"
	CodeNotHost              = "NOT_HOST"
	CodeAdminOnly            = "ADMIN_ONLY"
	CodeUserNotFound         = "USER_NOT_FOUND"
	CodeSessionNotFound      = "SESSION_NOT_FOUND"
	CodeSessionNotActive     = "SESSION_NOT_ACTIVE"
	CodeSessionNotClosed     = "SESSION_NOT_CLOSED"
	CodeActiveSessionExists  = "ACTIVE_SESSION_EXISTS"
	CodePlayersStillActive   = "PLAYERS_STILL_ACTIVE"
	CodeUnbalanced           = "UNBALANCED"
	CodePlayerNotFound       = "PLAYER_NOT_FOUND"
	CodeAlreadyJoined        = "ALREADY_JOINED"
	CodeAlreadySettled       = "ALREADY_SETTLED"
	CodeNoChipsToRemove      = "NO_CHIPS_TO_REMOVE"
	CodeBuyerUnavailable     = "BUYER_UNAVAILABLE"
	CodeSelfSale             = "SELF_SALE"
	CodeNotCashedOut         = "NOT_CASHED_OUT"
	CodeInvalidAmount        = "INVALID_AMOUNT"
	CodeTransactionNotFound  = "TRANSACTION_NOT_FOUND"
	CodeSpecialHandNotFound  = "SPECIAL_HAND_NOT_FOUND"
	CodeInvalidHandType      = "INVALID_HAND_TYPE"
	CodeInvalidDate          = "INVALID_DATE"
	CodeEmailExists          = "EMAIL_EXISTS"
	CodeInvalidCredentials   = "INVALID_CREDENTIALS"
	CodeAccountDisabled      = "ACCOUNT_DISABLED"
	CodeInternalError        = "INTERNAL_ERROR"
)

// httpError combines an HTTP status code with an APIError
type httpError struct {
	status   int
	apiError APIError
}

// Error implements error interface
func (e *httpError) Error() string {
	return e.apiError.Message
}

// WriteError writes an error response to the response writer
func WriteError(w http.ResponseWriter, err error) {
	he := toHTTPError(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(he.status)
	_ = json.NewEncoder(w).Encode(ErrorResponse{Error: he.apiError})
}

// toHTTPError converts an error to an httpError
func toHTTPError(err error) *httpError {
	// Check for specific error types
	var he *httpError
	if errors.As(err, &he) {
		return he
	}

	// Unbalanced close reports the numbers so the host can find the hole
	var unbalanced *model.UnbalancedError
	if errors.As(err, &unbalanced) {
		return &httpError{http.StatusConflict, APIError{
			Code:    CodeUnbalanced,
			Message: unbalanced.Error(),
			Details: map[string]any{
				"distributable_pot":   unbalanced.DistributablePot,
				"effective_cash_outs": unbalanced.EffectiveCashOuts,
				"discrepancy":         unbalanced.Discrepancy(),
			},
		}}
	}

	// Map model errors
	switch {
	case errors.Is(err, model.ErrUserNotFound):
		return &httpError{http.StatusNotFound, APIError{Code: CodeUserNotFound, Message: "User not found"}}
	case errors.Is(err, model.ErrNotHost):
		return &httpError{http.StatusForbidden, APIError{Code: CodeNotHost, Message: "Only the session host or an admin can perform this action"}}
	case errors.Is(err, model.ErrAdminOnly):
		return &httpError{http.StatusForbidden, APIError{Code: CodeAdminOnly, Message: "Only an admin can perform this action"}}
	case errors.Is(err, model.ErrSessionNotFound):
		return &httpError{http.StatusNotFound, APIError{Code: CodeSessionNotFound, Message: "Session not found"}}
	case errors.Is(err, model.ErrSessionNotActive):
		return &httpError{http.StatusConflict, APIError{Code: CodeSessionNotActive, Message: "Session is not active"}}
	case errors.Is(err, model.ErrSessionNotClosed):
		return &httpError{http.StatusConflict, APIError{Code: CodeSessionNotClosed, Message: "Session is not closed"}}
	case errors.Is(err, model.ErrActiveSessionExists):
		return &httpError{http.StatusConflict, APIError{Code: CodeActiveSessionExists, Message: "An active session already exists"}}
	case errors.Is(err, model.ErrPlayersStillActive):
		return &httpError{http.StatusConflict, APIError{Code: CodePlayersStillActive, Message: "All players holding chips must cash out before closing"}}
	case errors.Is(err, model.ErrInvalidSessionDate):
		return &httpError{http.StatusBadRequest, APIError{Code: CodeInvalidDate, Message: "Invalid session date"}}
	case errors.Is(err, model.ErrPlayerNotFound):
		return &httpError{http.StatusNotFound, APIError{Code: CodePlayerNotFound, Message: "Player not found in session"}}
	case errors.Is(err, model.ErrAlreadyJoined):
		return &httpError{http.StatusConflict, APIError{Code: CodeAlreadyJoined, Message: "Player is already in this session"}}
	case errors.Is(err, model.ErrAlreadySettled):
		return &httpError{http.StatusConflict, APIError{Code: CodeAlreadySettled, Message: "Player has already cashed out"}}
	case errors.Is(err, model.ErrNoChipsToRemove):
		return &httpError{http.StatusConflict, APIError{Code: CodeNoChipsToRemove, Message: "Player has no buy-ins to remove"}}
	case errors.Is(err, model.ErrBuyerUnavailable):
		return &httpError{http.StatusConflict, APIError{Code: CodeBuyerUnavailable, Message: "Buyer not found or already cashed out"}}
	case errors.Is(err, model.ErrSelfSale):
		return &httpError{http.StatusBadRequest, APIError{Code: CodeSelfSale, Message: "Cannot sell a buy-in to yourself"}}
	case errors.Is(err, model.ErrNotCashedOut):
		return &httpError{http.StatusConflict, APIError{Code: CodeNotCashedOut, Message: "Player has not cashed out"}}
	case errors.Is(err, model.ErrInvalidAmount):
		return &httpError{http.StatusBadRequest, APIError{Code: CodeInvalidAmount, Message: "Amount must be a non-negative number"}}
	case errors.Is(err, model.ErrTransactionNotFound):
		return &httpError{http.StatusNotFound, APIError{Code: CodeTransactionNotFound, Message: "Transaction not found"}}
	case errors.Is(err, model.ErrSpecialHandNotFound):
		return &httpError{http.StatusNotFound, APIError{Code: CodeSpecialHandNotFound, Message: "Special hand not found"}}
	case errors.Is(err, model.ErrInvalidHandType):
		return &httpError{http.StatusBadRequest, APIError{Code: CodeInvalidHandType, Message: "Unrecognized hand type"}}

	// Map auth errors
	case errors.Is(err, auth.ErrInvalidCredentials):
		return &httpError{http.StatusUnauthorized, APIError{Code: CodeInvalidCredentials, Message: "Invalid email or password"}}
	case errors.Is(err, auth.ErrInvalidToken):
		return &httpError{http.StatusUnauthorized, APIError{Code: CodeUnauthorized, Message: "Invalid or expired token"}}
	case errors.Is(err, auth.ErrEmailExists):
		return &httpError{http.StatusConflict, APIError{Code: CodeEmailExists, Message: "Email already registered"}}
	case errors.Is(err, auth.ErrAccountDisabled):
		return &httpError{http.StatusForbidden, APIError{Code: CodeAccountDisabled, Message: "Account is disabled"}}

	default:
		return &httpError{http.StatusInternalServerError, APIError{Code: CodeInternalError, Message: "Internal server error"}}
	}
}

// NewInvalidRequestError creates an invalid request error
func NewInvalidRequestError(message string) error {
	return &httpError{http.StatusBadRequest, APIError{Code: CodeInvalidRequest, Message: message}}
}

// NewUnauthorizedError creates an unauthorized error
func NewUnauthorizedError() error {
	return &httpError{http.StatusUnauthorized, APIError{Code: CodeUnauthorized, Message: "Authentication required"}}
}

// NewInternalError creates an internal server error
func NewInternalError() error {
	return &httpError{http.StatusInternalServerError, APIError{Code: CodeInternalError, Message: "Internal server error"}}
}
