package handler

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/pokernight-go/internal/api/middleware"
	"github.com/mcoot/pokernight-go/internal/api/request"
	"github.com/mcoot/pokernight-go/internal/api/response"
	"github.com/mcoot/pokernight-go/internal/model"
	"github.com/mcoot/pokernight-go/internal/services/ledger"
)

// PlayerHandler handles the per-player ledger endpoints within a session
type PlayerHandler struct {
	ledgerService *ledger.Service
}

// NewPlayerHandler creates a new player handler
func NewPlayerHandler(ledgerService *ledger.Service) *PlayerHandler {
	return &PlayerHandler{ledgerService: ledgerService}
}

// Join handles POST /api/v1/sessions/{id}/players
func (h *PlayerHandler) Join(w http.ResponseWriter, r *http.Request) {
	user := middleware.MustGetUser(r.Context())
	sessionID := model.SessionID(mux.Vars(r)["id"])

	var req request.JoinSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("invalid request body"))
		return
	}
	if req.UserID == "" {
		WriteError(w, NewInvalidRequestError("user_id is required"))
		return
	}

	entry, err := h.ledgerService.AddPlayer(r.Context(), user, sessionID, model.UserID(req.UserID))
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusCreated, response.PlayerEntryFromModel(entry))
}

// Command handles PATCH /api/v1/sessions/{id}/players/{player_id}. The wire
// command string is decoded into a tagged variant before it reaches the
// ledger service.
func (h *PlayerHandler) Command(w http.ResponseWriter, r *http.Request) {
	user := middleware.MustGetUser(r.Context())
	vars := mux.Vars(r)
	sessionID := model.SessionID(vars["id"])
	playerID := model.UserID(vars["player_id"])

	var req request.PlayerCommandRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("invalid request body"))
		return
	}

	var cmd model.LedgerCommand
	switch req.Command {
	case "buy_in":
		cmd = model.BuyInCommand{}
	case "remove_buy_in":
		cmd = model.RemoveBuyInCommand{}
	case "sell_buy_in":
		if req.BuyerID == "" {
			WriteError(w, NewInvalidRequestError("buyer_id is required for sell_buy_in"))
			return
		}
		cmd = model.SellCommand{BuyerID: model.UserID(req.BuyerID)}
	case "cash_out":
		if req.Amount == nil {
			WriteError(w, NewInvalidRequestError("amount is required for cash_out"))
			return
		}
		cmd = model.CashOutCommand{Amount: *req.Amount}
	case "undo_cash_out":
		cmd = model.UndoCashOutCommand{}
	default:
		WriteError(w, NewInvalidRequestError("unknown command: "+req.Command))
		return
	}

	session, err := h.ledgerService.Apply(r.Context(), user, sessionID, playerID, cmd)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.SessionFromModel(session))
}

// Remove handles DELETE /api/v1/sessions/{id}/players/{player_id}
func (h *PlayerHandler) Remove(w http.ResponseWriter, r *http.Request) {
	user := middleware.MustGetUser(r.Context())
	vars := mux.Vars(r)
	sessionID := model.SessionID(vars["id"])
	playerID := model.UserID(vars["player_id"])

	if err := h.ledgerService.RemovePlayer(r.Context(), user, sessionID, playerID); err != nil {
		WriteError(w, err)
		return
	}

	response.NoContent(w)
}
