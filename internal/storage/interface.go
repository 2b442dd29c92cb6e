package storage

import (
	"context"

	"github.com/mcoot/pokernight-go/internal/model"
)

// SessionFilter narrows ListSessions results. The zero value matches all
// non-archived sessions.
type SessionFilter struct {
	Status          model.SessionStatus // empty matches any status
	Year            int                 // 0 matches any year
	IncludeArchived bool
}

// Storage defines the interface for data persistence
type Storage interface {
	// User operations
	SaveUser(ctx context.Context, user *model.User) error
	GetUser(ctx context.Context, id model.UserID) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	ListUsers(ctx context.Context) ([]*model.User, error)

	// Credential operations
	SaveCredentials(ctx context.Context, creds *model.Credentials) error
	GetCredentials(ctx context.Context, userID model.UserID) (*model.Credentials, error)

	// Session operations
	SaveSession(ctx context.Context, session *model.Session) error
	GetSession(ctx context.Context, id model.SessionID) (*model.Session, error)
	// GetActiveSession returns the session with status ACTIVE, or
	// model.ErrSessionNotFound when there is none
	GetActiveSession(ctx context.Context) (*model.Session, error)
	ListSessions(ctx context.Context, filter SessionFilter) ([]*model.Session, error)

	// Ledger operations
	GetTransactions(ctx context.Context, sessionID model.SessionID) ([]*model.Transaction, error)
	GetTransfers(ctx context.Context, sessionID model.SessionID) ([]*model.BuyInTransfer, error)
	// CommitLedger atomically persists a session's aggregate state together
	// with its full transaction log and transfer list. Every ledger mutation
	// goes through this so an entry update and its log record can never be
	// applied partially.
	CommitLedger(ctx context.Context, session *model.Session, txs []*model.Transaction, transfers []*model.BuyInTransfer) error

	// Special hand operations
	SaveSpecialHand(ctx context.Context, hand *model.SpecialHand) error
	GetSpecialHand(ctx context.Context, id model.SpecialHandID) (*model.SpecialHand, error)
	GetSpecialHandsForSession(ctx context.Context, sessionID model.SessionID) ([]*model.SpecialHand, error)
	DeleteSpecialHand(ctx context.Context, id model.SpecialHandID) error
}
