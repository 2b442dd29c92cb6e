package handler

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/pokernight-go/internal/api/middleware"
	"github.com/mcoot/pokernight-go/internal/api/request"
	"github.com/mcoot/pokernight-go/internal/api/response"
	"github.com/mcoot/pokernight-go/internal/model"
	"github.com/mcoot/pokernight-go/internal/services/auth"
)

// UserHandler handles user listing and admin updates
type UserHandler struct {
	authService *auth.Service
}

// NewUserHandler creates a new user handler
func NewUserHandler(authService *auth.Service) *UserHandler {
	return &UserHandler{authService: authService}
}

// List handles GET /api/v1/users
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	user := middleware.MustGetUser(r.Context())

	// Admins can ask for disabled and archived accounts too
	includeInactive := user.IsAdmin() && r.URL.Query().Get("include_inactive") == "true"

	users, err := h.authService.ListUsers(r.Context(), includeInactive)
	if err != nil {
		WriteError(w, err)
		return
	}

	result := make([]response.UserResponse, 0, len(users))
	for _, u := range users {
		result = append(result, response.UserFromModel(u))
	}
	response.JSON(w, http.StatusOK, map[string]any{"users": result})
}

// Update handles PATCH /api/v1/users/{id}
func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	actor := middleware.MustGetUser(r.Context())
	targetID := model.UserID(mux.Vars(r)["id"])

	var req request.UpdateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("invalid request body"))
		return
	}

	patch := auth.UserPatch{
		Name:       req.Name,
		IsActive:   req.IsActive,
		IsArchived: req.IsArchived,
	}
	if req.Role != nil {
		role := model.Role(*req.Role)
		if role != model.RoleAdmin && role != model.RolePlayer {
			WriteError(w, NewInvalidRequestError("role must be ADMIN or PLAYER"))
			return
		}
		patch.Role = &role
	}
	if req.PlayerType != nil {
		pt := model.PlayerType(*req.PlayerType)
		if pt != model.PlayerTypeTeam && pt != model.PlayerTypeGuest {
			WriteError(w, NewInvalidRequestError("player_type must be TEAM or GUEST"))
			return
		}
		patch.PlayerType = &pt
	}

	updated, err := h.authService.UpdateUser(r.Context(), actor, targetID, patch)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.UserFromModel(updated))
}
