package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/mcoot/pokernight-go/internal/model"
	"github.com/mcoot/pokernight-go/internal/storage"
)

// Storage is an in-memory implementation of the storage interface
type Storage struct {
	mu sync.RWMutex

	users        map[model.UserID]*model.User
	emailIndex   map[string]model.UserID
	credentials  map[model.UserID]*model.Credentials
	sessions     map[model.SessionID]*model.Session
	transactions map[model.SessionID][]*model.Transaction
	transfers    map[model.SessionID][]*model.BuyInTransfer
	specialHands map[model.SpecialHandID]*model.SpecialHand
}

// New creates a new in-memory storage instance
func New() *Storage {
	return &Storage{
		users:        make(map[model.UserID]*model.User),
		emailIndex:   make(map[string]model.UserID),
		credentials:  make(map[model.UserID]*model.Credentials),
		sessions:     make(map[model.SessionID]*model.Session),
		transactions: make(map[model.SessionID][]*model.Transaction),
		transfers:    make(map[model.SessionID][]*model.BuyInTransfer),
		specialHands: make(map[model.SpecialHandID]*model.SpecialHand),
	}
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// User operations

func (s *Storage) SaveUser(ctx context.Context, user *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[user.ID] = user
	s.emailIndex[user.Email] = user.ID
	return nil
}

func (s *Storage) GetUser(ctx context.Context, id model.UserID) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	user, ok := s.users[id]
	if !ok {
		return nil, model.ErrUserNotFound
	}
	return user, nil
}

func (s *Storage) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.emailIndex[email]
	if !ok {
		return nil, model.ErrUserNotFound
	}
	user, ok := s.users[id]
	if !ok {
		return nil, model.ErrUserNotFound
	}
	return user, nil
}

func (s *Storage) ListUsers(ctx context.Context) ([]*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	users := make([]*model.User, 0, len(s.users))
	for _, u := range s.users {
		users = append(users, u)
	}
	return users, nil
}

// Credential operations

func (s *Storage) SaveCredentials(ctx context.Context, creds *model.Credentials) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.credentials[creds.UserID] = creds
	return nil
}

func (s *Storage) GetCredentials(ctx context.Context, userID model.UserID) (*model.Credentials, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	creds, ok := s.credentials[userID]
	if !ok {
		return nil, model.ErrUserNotFound
	}
	return creds, nil
}

// Session operations

func (s *Storage) SaveSession(ctx context.Context, session *model.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[session.ID] = session
	return nil
}

func (s *Storage) GetSession(ctx context.Context, id model.SessionID) (*model.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[id]
	if !ok {
		return nil, model.ErrSessionNotFound
	}
	return session, nil
}

func (s *Storage) GetActiveSession(ctx context.Context) (*model.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, session := range s.sessions {
		if session.Status == model.SessionStatusActive {
			return session, nil
		}
	}
	return nil, model.ErrSessionNotFound
}

func (s *Storage) ListSessions(ctx context.Context, filter storage.SessionFilter) ([]*model.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var sessions []*model.Session
	for _, session := range s.sessions {
		if matchesFilter(session, filter) {
			sessions = append(sessions, session)
		}
	}
	return sessions, nil
}

func matchesFilter(session *model.Session, filter storage.SessionFilter) bool {
	if !filter.IncludeArchived && session.IsArchived {
		return false
	}
	if filter.Status != "" && session.Status != filter.Status {
		return false
	}
	if filter.Year != 0 && session.Date.Year() != filter.Year {
		return false
	}
	return true
}

// Ledger operations

func (s *Storage) GetTransactions(ctx context.Context, sessionID model.SessionID) ([]*model.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	txs := s.transactions[sessionID]
	result := make([]*model.Transaction, len(txs))
	copy(result, txs)
	return result, nil
}

func (s *Storage) GetTransfers(ctx context.Context, sessionID model.SessionID) ([]*model.BuyInTransfer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	transfers := s.transfers[sessionID]
	result := make([]*model.BuyInTransfer, len(transfers))
	copy(result, transfers)
	return result, nil
}

func (s *Storage) CommitLedger(ctx context.Context, session *model.Session, txs []*model.Transaction, transfers []*model.BuyInTransfer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[session.ID] = session
	s.transactions[session.ID] = txs
	s.transfers[session.ID] = transfers
	return nil
}

// Special hand operations

func (s *Storage) SaveSpecialHand(ctx context.Context, hand *model.SpecialHand) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.specialHands[hand.ID] = hand
	return nil
}

func (s *Storage) GetSpecialHand(ctx context.Context, id model.SpecialHandID) (*model.SpecialHand, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	hand, ok := s.specialHands[id]
	if !ok {
		return nil, model.ErrSpecialHandNotFound
	}
	return hand, nil
}

func (s *Storage) GetSpecialHandsForSession(ctx context.Context, sessionID model.SessionID) ([]*model.SpecialHand, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var hands []*model.SpecialHand
	for _, hand := range s.specialHands {
		if hand.SessionID == sessionID {
			hands = append(hands, hand)
		}
	}
	sortSpecialHands(hands)
	return hands, nil
}

// sortSpecialHands orders hands by record time; map iteration order must not
// leak into results
func sortSpecialHands(hands []*model.SpecialHand) {
	sort.Slice(hands, func(i, j int) bool {
		if !hands[i].CreatedAt.Equal(hands[j].CreatedAt) {
			return hands[i].CreatedAt.Before(hands[j].CreatedAt)
		}
		return hands[i].ID < hands[j].ID
	})
}

func (s *Storage) DeleteSpecialHand(ctx context.Context, id model.SpecialHandID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.specialHands, id)
	return nil
}
