package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/mcoot/pokernight-go/internal/api/apierr"
	"github.com/mcoot/pokernight-go/internal/model"
	"github.com/mcoot/pokernight-go/internal/services/auth"
)

type contextKey string

const (
	userContextKey  contextKey = "user"
	tokenContextKey contextKey = "token"
)

// Auth creates authentication middleware
func Auth(authService *auth.Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			value := extractToken(r)
			if value == "" {
				apierr.WriteError(w, apierr.NewUnauthorizedError())
				return
			}

			token, err := authService.ValidateToken(value)
			if err != nil {
				apierr.WriteError(w, err)
				return
			}

			ctx := r.Context()
			ctx = context.WithValue(ctx, tokenContextKey, token)
			ctx = context.WithValue(ctx, userContextKey, &token.User)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// extractToken extracts the bearer token from the request
func extractToken(r *http.Request) string {
	// Check Authorization header first
	authHeader := r.Header.Get("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimPrefix(authHeader, "Bearer ")
	}

	// Fall back to cookie
	cookie, err := r.Cookie("token")
	if err == nil {
		return cookie.Value
	}

	return ""
}

// GetUser returns the authenticated user from the request context
func GetUser(ctx context.Context) *model.User {
	user, _ := ctx.Value(userContextKey).(*model.User)
	return user
}

// GetToken returns the login token from the request context
func GetToken(ctx context.Context) *auth.Token {
	token, _ := ctx.Value(tokenContextKey).(*auth.Token)
	return token
}

// MustGetUser returns the authenticated user or panics
func MustGetUser(ctx context.Context) *model.User {
	user := GetUser(ctx)
	if user == nil {
		panic("no user in context - auth middleware not applied?")
	}
	return user
}
