package handler

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/mcoot/pokernight-go/internal/api/middleware"
	"github.com/mcoot/pokernight-go/internal/api/request"
	"github.com/mcoot/pokernight-go/internal/api/response"
	"github.com/mcoot/pokernight-go/internal/model"
	"github.com/mcoot/pokernight-go/internal/services/ledger"
	"github.com/mcoot/pokernight-go/internal/services/specialhands"
	"github.com/mcoot/pokernight-go/internal/storage"
)

// SessionHandler handles session lifecycle endpoints
type SessionHandler struct {
	ledgerService       *ledger.Service
	specialHandsService *specialhands.Service
}

// NewSessionHandler creates a new session handler
func NewSessionHandler(ledgerService *ledger.Service, specialHandsService *specialhands.Service) *SessionHandler {
	return &SessionHandler{
		ledgerService:       ledgerService,
		specialHandsService: specialHandsService,
	}
}

// Create handles POST /api/v1/sessions
func (h *SessionHandler) Create(w http.ResponseWriter, r *http.Request) {
	user := middleware.MustGetUser(r.Context())

	var req request.CreateSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		// Empty body means "start a session now"
		req = request.CreateSessionRequest{}
	}

	params := ledger.CreateSessionParams{Notes: req.Notes}
	if req.Date != "" {
		date, err := time.Parse(time.RFC3339, req.Date)
		if err != nil {
			WriteError(w, NewInvalidRequestError("date must be RFC 3339"))
			return
		}
		params.Date = date
	}
	if req.HostLocationID != "" {
		id := model.UserID(req.HostLocationID)
		params.HostLocationID = &id
	}

	session, err := h.ledgerService.CreateSession(r.Context(), user, params)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusCreated, response.SessionFromModel(session))
}

// List handles GET /api/v1/sessions
func (h *SessionHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	filter := storage.SessionFilter{
		Status:          model.SessionStatus(q.Get("status")),
		IncludeArchived: q.Get("include_archived") == "true",
	}
	if yearStr := q.Get("year"); yearStr != "" {
		year, err := strconv.Atoi(yearStr)
		if err != nil {
			WriteError(w, NewInvalidRequestError("year must be a number"))
			return
		}
		filter.Year = year
	}

	sessions, err := h.ledgerService.ListSessions(r.Context(), filter)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.SessionListFromModels(sessions))
}

// Get handles GET /api/v1/sessions/{id}
func (h *SessionHandler) Get(w http.ResponseWriter, r *http.Request) {
	sessionID := model.SessionID(mux.Vars(r)["id"])

	session, err := h.ledgerService.GetSession(r.Context(), sessionID)
	if err != nil {
		WriteError(w, err)
		return
	}

	txs, err := h.ledgerService.GetTransactions(r.Context(), sessionID)
	if err != nil {
		WriteError(w, err)
		return
	}
	transfers, err := h.ledgerService.GetTransfers(r.Context(), sessionID)
	if err != nil {
		WriteError(w, err)
		return
	}
	hands, err := h.specialHandsService.ForSession(r.Context(), sessionID)
	if err != nil {
		WriteError(w, err)
		return
	}

	detail := response.SessionDetailResponse{
		SessionResponse: response.SessionFromModel(session),
		Transactions:    make([]response.TransactionResponse, 0, len(txs)),
		Transfers:       make([]response.TransferResponse, 0, len(transfers)),
		SpecialHands:    make([]response.SpecialHandResponse, 0, len(hands)),
	}
	for _, tx := range txs {
		detail.Transactions = append(detail.Transactions, response.TransactionFromModel(tx))
	}
	for _, t := range transfers {
		detail.Transfers = append(detail.Transfers, response.TransferFromModel(t))
	}
	for _, hand := range hands {
		detail.SpecialHands = append(detail.SpecialHands, response.SpecialHandFromModel(hand))
	}

	response.JSON(w, http.StatusOK, detail)
}

// Update handles PATCH /api/v1/sessions/{id}. The action field selects the
// state transition.
func (h *SessionHandler) Update(w http.ResponseWriter, r *http.Request) {
	user := middleware.MustGetUser(r.Context())
	sessionID := model.SessionID(mux.Vars(r)["id"])

	var req request.UpdateSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("invalid request body"))
		return
	}

	var (
		session *model.Session
		err     error
	)
	switch req.Action {
	case "close":
		session, err = h.ledgerService.CloseSession(r.Context(), user, sessionID)
	case "reopen":
		session, err = h.ledgerService.ReopenSession(r.Context(), user, sessionID)
	case "archive":
		session, err = h.ledgerService.SetArchived(r.Context(), user, sessionID, true)
	case "unarchive":
		session, err = h.ledgerService.SetArchived(r.Context(), user, sessionID, false)
	case "notes":
		if req.Notes == nil {
			WriteError(w, NewInvalidRequestError("notes is required for the notes action"))
			return
		}
		session, err = h.ledgerService.UpdateNotes(r.Context(), user, sessionID, *req.Notes)
	case "date":
		if req.Date == nil {
			WriteError(w, NewInvalidRequestError("date is required for the date action"))
			return
		}
		date, parseErr := time.Parse(time.RFC3339, *req.Date)
		if parseErr != nil {
			WriteError(w, NewInvalidRequestError("date must be RFC 3339"))
			return
		}
		session, err = h.ledgerService.UpdateDate(r.Context(), user, sessionID, date)
	case "host_location":
		var locationID *model.UserID
		if req.HostLocationID != nil && *req.HostLocationID != "" {
			id := model.UserID(*req.HostLocationID)
			locationID = &id
		}
		session, err = h.ledgerService.UpdateHostLocation(r.Context(), user, sessionID, locationID)
	default:
		WriteError(w, NewInvalidRequestError("unknown action: "+req.Action))
		return
	}

	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.SessionFromModel(session))
}
