package handler

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/pokernight-go/internal/api/middleware"
	"github.com/mcoot/pokernight-go/internal/api/response"
	"github.com/mcoot/pokernight-go/internal/model"
	"github.com/mcoot/pokernight-go/internal/services/ledger"
)

// TransactionHandler handles transaction reversal
type TransactionHandler struct {
	ledgerService *ledger.Service
}

// NewTransactionHandler creates a new transaction handler
func NewTransactionHandler(ledgerService *ledger.Service) *TransactionHandler {
	return &TransactionHandler{ledgerService: ledgerService}
}

// Reverse handles DELETE /api/v1/sessions/{id}/transactions/{tx_id}
func (h *TransactionHandler) Reverse(w http.ResponseWriter, r *http.Request) {
	user := middleware.MustGetUser(r.Context())
	vars := mux.Vars(r)
	sessionID := model.SessionID(vars["id"])
	txID := model.TransactionID(vars["tx_id"])

	if err := h.ledgerService.ReverseTransaction(r.Context(), user, sessionID, txID); err != nil {
		WriteError(w, err)
		return
	}

	response.NoContent(w)
}
