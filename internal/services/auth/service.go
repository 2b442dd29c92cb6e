package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"strings"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/mcoot/pokernight-go/internal/dependencies/clock"
	"github.com/mcoot/pokernight-go/internal/model"
	"github.com/mcoot/pokernight-go/internal/storage"
)

// Errors
var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrEmailExists        = errors.New("email already registered")
	ErrAccountDisabled    = errors.New("account is disabled")
)

// Token represents an authenticated login. The poker session aggregate is a
// different thing entirely, so these are tokens, not sessions.
type Token struct {
	Value     string
	UserID    model.UserID
	User      model.User
	CreatedAt time.Time
	ExpiresAt time.Time
}

// Service handles accounts and bearer-token authentication
type Service struct {
	storage storage.Storage
	clock   clock.Clock

	mu     sync.RWMutex
	tokens map[string]*Token

	tokenDuration time.Duration
}

// Config holds configuration for the auth service
type Config struct {
	TokenDuration time.Duration
}

// DefaultConfig returns default auth configuration
func DefaultConfig() Config {
	return Config{
		TokenDuration: 24 * time.Hour,
	}
}

// New creates a new auth Service
func New(storage storage.Storage, clock clock.Clock, cfg Config) *Service {
	if cfg.TokenDuration == 0 {
		cfg.TokenDuration = DefaultConfig().TokenDuration
	}
	return &Service{
		storage:       storage,
		clock:         clock,
		tokens:        make(map[string]*Token),
		tokenDuration: cfg.TokenDuration,
	}
}

// Register creates an account and logs it in. The first account registered
// becomes the admin; everyone after that is a regular team player until an
// admin says otherwise.
func (s *Service) Register(ctx context.Context, email, password, name string) (*Token, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	_, err := s.storage.GetUserByEmail(ctx, email)
	if err == nil {
		return nil, ErrEmailExists
	}
	if !errors.Is(err, model.ErrUserNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	existing, err := s.storage.ListUsers(ctx)
	if err != nil {
		return nil, err
	}
	role := model.RolePlayer
	if len(existing) == 0 {
		role = model.RoleAdmin
	}

	now := s.clock.Now()
	user := &model.User{
		ID:         model.UserID(generateID("u_")),
		Email:      email,
		Name:       name,
		Role:       role,
		PlayerType: model.PlayerTypeTeam,
		IsActive:   true,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := s.storage.SaveUser(ctx, user); err != nil {
		return nil, err
	}

	creds := &model.Credentials{
		UserID:       user.ID,
		PasswordHash: string(hash),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.storage.SaveCredentials(ctx, creds); err != nil {
		return nil, err
	}

	return s.createToken(user), nil
}

// Login authenticates an account and issues a token
func (s *Service) Login(ctx context.Context, email, password string) (*Token, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := s.storage.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, model.ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	creds, err := s.storage.GetCredentials(ctx, user.ID)
	if err != nil {
		if errors.Is(err, model.ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(creds.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	if !user.IsActive || user.IsArchived {
		return nil, ErrAccountDisabled
	}

	return s.createToken(user), nil
}

// ValidateToken checks a bearer token and returns its login state
func (s *Service) ValidateToken(value string) (*Token, error) {
	s.mu.RLock()
	token, ok := s.tokens[value]
	s.mu.RUnlock()

	if !ok {
		return nil, ErrInvalidToken
	}

	if s.clock.Now().After(token.ExpiresAt) {
		s.mu.Lock()
		delete(s.tokens, value)
		s.mu.Unlock()
		return nil, ErrInvalidToken
	}

	return token, nil
}

// InvalidateToken removes a token
func (s *Service) InvalidateToken(value string) {
	s.mu.Lock()
	delete(s.tokens, value)
	s.mu.Unlock()
}

// GetUser returns the user for a token value
func (s *Service) GetUser(value string) (*model.User, error) {
	token, err := s.ValidateToken(value)
	if err != nil {
		return nil, err
	}
	return &token.User, nil
}

// CleanExpiredTokens removes expired tokens (call periodically)
func (s *Service) CleanExpiredTokens() {
	now := s.clock.Now()
	s.mu.Lock()
	defer s.mu.Unlock()

	for value, token := range s.tokens {
		if now.After(token.ExpiresAt) {
			delete(s.tokens, value)
		}
	}
}

// createToken creates a new token for a user
func (s *Service) createToken(user *model.User) *Token {
	value := generateID("tok_")
	now := s.clock.Now()

	token := &Token{
		Value:     value,
		UserID:    user.ID,
		User:      *user,
		CreatedAt: now,
		ExpiresAt: now.Add(s.tokenDuration),
	}

	s.mu.Lock()
	s.tokens[value] = token
	s.mu.Unlock()

	return token
}

// generateID generates a random ID with a prefix
func generateID(prefix string) string {
	b := make([]byte, 16)
	_, _ = rand.Read(b)
	return prefix + base64.RawURLEncoding.EncodeToString(b)
}

// UserPatch holds optional account fields for admin updates
type UserPatch struct {
	Name       *string
	Role       *model.Role
	PlayerType *model.PlayerType
	IsActive   *bool
	IsArchived *bool
}

// ListUsers returns accounts, skipping inactive and archived ones unless asked
func (s *Service) ListUsers(ctx context.Context, includeInactive bool) ([]*model.User, error) {
	users, err := s.storage.ListUsers(ctx)
	if err != nil {
		return nil, err
	}
	if includeInactive {
		return users, nil
	}
	active := make([]*model.User, 0, len(users))
	for _, u := range users {
		if u.IsActive && !u.IsArchived {
			active = append(active, u)
		}
	}
	return active, nil
}

// UpdateUser applies an admin patch to an account. Role and player-type
// changes take effect on the user's next login; outstanding tokens keep the
// state they were issued with.
func (s *Service) UpdateUser(ctx context.Context, actor *model.User, id model.UserID, patch UserPatch) (*model.User, error) {
	if !actor.IsAdmin() {
		return nil, model.ErrAdminOnly
	}

	user, err := s.storage.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}

	if patch.Name != nil {
		user.Name = *patch.Name
	}
	if patch.Role != nil {
		user.Role = *patch.Role
	}
	if patch.PlayerType != nil {
		user.PlayerType = *patch.PlayerType
	}
	if patch.IsActive != nil {
		user.IsActive = *patch.IsActive
	}
	if patch.IsArchived != nil {
		user.IsArchived = *patch.IsArchived
	}
	user.UpdatedAt = s.clock.Now()

	if err := s.storage.SaveUser(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}
