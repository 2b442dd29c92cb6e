package handler

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/pokernight-go/internal/api/middleware"
	"github.com/mcoot/pokernight-go/internal/api/request"
	"github.com/mcoot/pokernight-go/internal/api/response"
	"github.com/mcoot/pokernight-go/internal/model"
	"github.com/mcoot/pokernight-go/internal/services/specialhands"
)

// SpecialHandHandler handles the special hands ledger endpoints
type SpecialHandHandler struct {
	specialHandsService *specialhands.Service
}

// NewSpecialHandHandler creates a new special hand handler
func NewSpecialHandHandler(specialHandsService *specialhands.Service) *SpecialHandHandler {
	return &SpecialHandHandler{specialHandsService: specialHandsService}
}

// List handles GET /api/v1/sessions/{id}/special-hands
func (h *SpecialHandHandler) List(w http.ResponseWriter, r *http.Request) {
	sessionID := model.SessionID(mux.Vars(r)["id"])

	hands, err := h.specialHandsService.ForSession(r.Context(), sessionID)
	if err != nil {
		WriteError(w, err)
		return
	}

	result := make([]response.SpecialHandResponse, 0, len(hands))
	for _, hand := range hands {
		result = append(result, response.SpecialHandFromModel(hand))
	}
	response.JSON(w, http.StatusOK, map[string]any{"special_hands": result})
}

// Record handles POST /api/v1/sessions/{id}/special-hands
func (h *SpecialHandHandler) Record(w http.ResponseWriter, r *http.Request) {
	user := middleware.MustGetUser(r.Context())
	sessionID := model.SessionID(mux.Vars(r)["id"])

	var req request.RecordSpecialHandRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("invalid request body"))
		return
	}
	if req.PlayerID == "" || req.HandType == "" {
		WriteError(w, NewInvalidRequestError("player_id and hand_type are required"))
		return
	}

	hand, err := h.specialHandsService.Record(r.Context(), user, sessionID, specialhands.RecordParams{
		PlayerID:    model.UserID(req.PlayerID),
		HandType:    model.HandType(req.HandType),
		Cards:       req.Cards,
		Description: req.Description,
	})
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusCreated, response.SpecialHandFromModel(hand))
}

// Delete handles DELETE /api/v1/sessions/{id}/special-hands/{hand_id}
func (h *SpecialHandHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user := middleware.MustGetUser(r.Context())
	handID := model.SpecialHandID(mux.Vars(r)["hand_id"])

	if err := h.specialHandsService.Delete(r.Context(), user, handID); err != nil {
		WriteError(w, err)
		return
	}

	response.NoContent(w)
}
