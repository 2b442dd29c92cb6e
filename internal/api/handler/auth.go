package handler

import (
	"encoding/json"
	"net/http"

	"github.com/mcoot/pokernight-go/internal/api/middleware"
	"github.com/mcoot/pokernight-go/internal/api/request"
	"github.com/mcoot/pokernight-go/internal/api/response"
	"github.com/mcoot/pokernight-go/internal/services/auth"
)

// AuthHandler handles account and login endpoints
type AuthHandler struct {
	authService *auth.Service
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService *auth.Service) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// Register handles POST /api/v1/auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req request.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("invalid request body"))
		return
	}

	if req.Email == "" || req.Password == "" || req.Name == "" {
		WriteError(w, NewInvalidRequestError("email, password and name are required"))
		return
	}

	token, err := h.authService.Register(r.Context(), req.Email, req.Password, req.Name)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusCreated, response.TokenFromAuth(token))
}

// Login handles POST /api/v1/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req request.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("invalid request body"))
		return
	}

	token, err := h.authService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.TokenFromAuth(token))
}

// Logout handles POST /api/v1/auth/logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if token := middleware.GetToken(r.Context()); token != nil {
		h.authService.InvalidateToken(token.Value)
	}
	response.NoContent(w)
}

// GetMe handles GET /api/v1/auth/me
func (h *AuthHandler) GetMe(w http.ResponseWriter, r *http.Request) {
	user := middleware.MustGetUser(r.Context())
	response.JSON(w, http.StatusOK, response.UserFromModel(user))
}
