package api

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/pokernight-go/internal/api/handler"
	"github.com/mcoot/pokernight-go/internal/api/middleware"
	"github.com/mcoot/pokernight-go/internal/services/auth"
	"github.com/mcoot/pokernight-go/internal/services/ledger"
	"github.com/mcoot/pokernight-go/internal/services/specialhands"
	"github.com/mcoot/pokernight-go/internal/services/stats"
)

// RouterConfig holds configuration for the API router
type RouterConfig struct {
	Logger              *slog.Logger
	AuthService         *auth.Service
	LedgerService       *ledger.Service
	SpecialHandsService *specialhands.Service
	StatsService        *stats.Service
}

// NewRouter creates a new API router with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	// Create handlers
	authHandler := handler.NewAuthHandler(cfg.AuthService)
	userHandler := handler.NewUserHandler(cfg.AuthService)
	sessionHandler := handler.NewSessionHandler(cfg.LedgerService, cfg.SpecialHandsService)
	playerHandler := handler.NewPlayerHandler(cfg.LedgerService)
	transactionHandler := handler.NewTransactionHandler(cfg.LedgerService)
	specialHandHandler := handler.NewSpecialHandHandler(cfg.SpecialHandsService)
	statsHandler := handler.NewStatsHandler(cfg.StatsService, cfg.LedgerService)

	// Create middleware
	authMiddleware := middleware.Auth(cfg.AuthService)
	loggingMiddleware := middleware.Logging(cfg.Logger)
	recoveryMiddleware := middleware.Recovery(cfg.Logger)

	// API subrouter with common middleware
	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(recoveryMiddleware)
	api.Use(loggingMiddleware)

	// Auth routes (no auth required for registering/logging in)
	api.HandleFunc("/auth/register", authHandler.Register).Methods(http.MethodPost)
	api.HandleFunc("/auth/login", authHandler.Login).Methods(http.MethodPost)

	protected := api.NewRoute().Subrouter()
	protected.Use(authMiddleware)

	protected.HandleFunc("/auth/logout", authHandler.Logout).Methods(http.MethodPost)
	protected.HandleFunc("/auth/me", authHandler.GetMe).Methods(http.MethodGet)

	// User routes
	protected.HandleFunc("/users", userHandler.List).Methods(http.MethodGet)
	protected.HandleFunc("/users/{id}", userHandler.Update).Methods(http.MethodPatch)

	// Session routes
	protected.HandleFunc("/sessions", sessionHandler.Create).Methods(http.MethodPost)
	protected.HandleFunc("/sessions", sessionHandler.List).Methods(http.MethodGet)
	protected.HandleFunc("/sessions/{id}", sessionHandler.Get).Methods(http.MethodGet)
	protected.HandleFunc("/sessions/{id}", sessionHandler.Update).Methods(http.MethodPatch)

	// Per-player ledger routes
	protected.HandleFunc("/sessions/{id}/players", playerHandler.Join).Methods(http.MethodPost)
	protected.HandleFunc("/sessions/{id}/players/{player_id}", playerHandler.Command).Methods(http.MethodPatch)
	protected.HandleFunc("/sessions/{id}/players/{player_id}", playerHandler.Remove).Methods(http.MethodDelete)

	// Transaction reversal
	protected.HandleFunc("/sessions/{id}/transactions/{tx_id}", transactionHandler.Reverse).Methods(http.MethodDelete)

	// Special hands
	protected.HandleFunc("/sessions/{id}/special-hands", specialHandHandler.List).Methods(http.MethodGet)
	protected.HandleFunc("/sessions/{id}/special-hands", specialHandHandler.Record).Methods(http.MethodPost)
	protected.HandleFunc("/sessions/{id}/special-hands/{hand_id}", specialHandHandler.Delete).Methods(http.MethodDelete)

	// Statistics and piggy bank
	protected.HandleFunc("/stats", statsHandler.Get).Methods(http.MethodGet)
	protected.HandleFunc("/stats/years", statsHandler.Years).Methods(http.MethodGet)
	protected.HandleFunc("/piggy-bank", statsHandler.PiggyBank).Methods(http.MethodGet)

	// Health check endpoint (no auth)
	api.HandleFunc("/health", healthHandler).Methods(http.MethodGet)

	return r
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}
