package redis

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mcoot/pokernight-go/internal/model"
	"github.com/mcoot/pokernight-go/internal/storage"
)

// Storage is a Redis-backed implementation of the storage interface.
// Ledger history is permanent, so nothing here carries a TTL.
type Storage struct {
	client *redis.Client
	cfg    Config
}

// New creates a new Redis storage instance
func New(cfg Config) (*Storage, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}

	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns

	client := redis.NewClient(opts)

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &Storage{
		client: client,
		cfg:    cfg,
	}, nil
}

// NewWithClient creates a Redis storage with an existing client (for testing)
func NewWithClient(client *redis.Client, cfg Config) *Storage {
	return &Storage{
		client: client,
		cfg:    cfg,
	}
}

// Close closes the Redis connection
func (s *Storage) Close() error {
	return s.client.Close()
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// getJSON loads and unmarshals a single record, translating a missing key
// into notFound
func getJSON(ctx context.Context, client *redis.Client, key string, dest any, notFound error) error {
	data, err := client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return notFound
	}
	if err != nil {
		return err
	}
	return json.Unmarshal(data, dest)
}

// User operations

func (s *Storage) SaveUser(ctx context.Context, user *model.User) error {
	data, err := json.Marshal(user)
	if err != nil {
		return err
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, userKey(user.ID), data, 0)
	pipe.Set(ctx, emailIndexKey(user.Email), string(user.ID), 0)
	pipe.SAdd(ctx, usersIndexKey(), string(user.ID))
	_, err = pipe.Exec(ctx)
	return err
}

func (s *Storage) GetUser(ctx context.Context, id model.UserID) (*model.User, error) {
	var user model.User
	if err := getJSON(ctx, s.client, userKey(id), &user, model.ErrUserNotFound); err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *Storage) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	id, err := s.client.Get(ctx, emailIndexKey(email)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, model.ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return s.GetUser(ctx, model.UserID(id))
}

func (s *Storage) ListUsers(ctx context.Context) ([]*model.User, error) {
	ids, err := s.client.SMembers(ctx, usersIndexKey()).Result()
	if err != nil {
		return nil, err
	}

	users := make([]*model.User, 0, len(ids))
	for _, id := range ids {
		user, err := s.GetUser(ctx, model.UserID(id))
		if errors.Is(err, model.ErrUserNotFound) {
			// Stale index entry
			continue
		}
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, nil
}

// Credential operations

func (s *Storage) SaveCredentials(ctx context.Context, creds *model.Credentials) error {
	data, err := json.Marshal(creds)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, credentialsKey(creds.UserID), data, 0).Err()
}

func (s *Storage) GetCredentials(ctx context.Context, userID model.UserID) (*model.Credentials, error) {
	var creds model.Credentials
	if err := getJSON(ctx, s.client, credentialsKey(userID), &creds, model.ErrUserNotFound); err != nil {
		return nil, err
	}
	return &creds, nil
}

// Session operations

func (s *Storage) SaveSession(ctx context.Context, session *model.Session) error {
	data, err := json.Marshal(session)
	if err != nil {
		return err
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, sessionKey(session.ID), data, 0)
	pipe.SAdd(ctx, sessionsIndexKey(), string(session.ID))
	_, err = pipe.Exec(ctx)
	return err
}

func (s *Storage) GetSession(ctx context.Context, id model.SessionID) (*model.Session, error) {
	var session model.Session
	if err := getJSON(ctx, s.client, sessionKey(id), &session, model.ErrSessionNotFound); err != nil {
		return nil, err
	}
	return &session, nil
}

// GetActiveSession scans the session index for the ACTIVE session. The data
// set is one group's game history, so the scan stays small; the at-most-one
// invariant is enforced at creation time against this lookup.
func (s *Storage) GetActiveSession(ctx context.Context) (*model.Session, error) {
	sessions, err := s.ListSessions(ctx, storage.SessionFilter{
		Status:          model.SessionStatusActive,
		IncludeArchived: true,
	})
	if err != nil {
		return nil, err
	}
	if len(sessions) == 0 {
		return nil, model.ErrSessionNotFound
	}
	return sessions[0], nil
}

func (s *Storage) ListSessions(ctx context.Context, filter storage.SessionFilter) ([]*model.Session, error) {
	ids, err := s.client.SMembers(ctx, sessionsIndexKey()).Result()
	if err != nil {
		return nil, err
	}

	var sessions []*model.Session
	for _, id := range ids {
		session, err := s.GetSession(ctx, model.SessionID(id))
		if errors.Is(err, model.ErrSessionNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
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
	var txs []*model.Transaction
	err := getJSON(ctx, s.client, transactionLogKey(sessionID), &txs, nil)
	if err != nil {
		return nil, err
	}
	return txs, nil
}

func (s *Storage) GetTransfers(ctx context.Context, sessionID model.SessionID) ([]*model.BuyInTransfer, error) {
	var transfers []*model.BuyInTransfer
	err := getJSON(ctx, s.client, transfersKey(sessionID), &transfers, nil)
	if err != nil {
		return nil, err
	}
	return transfers, nil
}

// CommitLedger writes the session aggregate, its transaction log, and its
// transfer list in one MULTI/EXEC pipeline so the records can never diverge.
func (s *Storage) CommitLedger(ctx context.Context, session *model.Session, txs []*model.Transaction, transfers []*model.BuyInTransfer) error {
	sessionData, err := json.Marshal(session)
	if err != nil {
		return err
	}
	txData, err := json.Marshal(txs)
	if err != nil {
		return err
	}
	transferData, err := json.Marshal(transfers)
	if err != nil {
		return err
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, sessionKey(session.ID), sessionData, 0)
	pipe.Set(ctx, transactionLogKey(session.ID), txData, 0)
	pipe.Set(ctx, transfersKey(session.ID), transferData, 0)
	pipe.SAdd(ctx, sessionsIndexKey(), string(session.ID))
	_, err = pipe.Exec(ctx)
	return err
}

// Special hand operations

func (s *Storage) SaveSpecialHand(ctx context.Context, hand *model.SpecialHand) error {
	data, err := json.Marshal(hand)
	if err != nil {
		return err
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, specialHandKey(hand.ID), data, 0)
	pipe.SAdd(ctx, specialHandsForSessionIndexKey(hand.SessionID), string(hand.ID))
	_, err = pipe.Exec(ctx)
	return err
}

func (s *Storage) GetSpecialHand(ctx context.Context, id model.SpecialHandID) (*model.SpecialHand, error) {
	var hand model.SpecialHand
	if err := getJSON(ctx, s.client, specialHandKey(id), &hand, model.ErrSpecialHandNotFound); err != nil {
		return nil, err
	}
	return &hand, nil
}

func (s *Storage) GetSpecialHandsForSession(ctx context.Context, sessionID model.SessionID) ([]*model.SpecialHand, error) {
	ids, err := s.client.SMembers(ctx, specialHandsForSessionIndexKey(sessionID)).Result()
	if err != nil {
		return nil, err
	}

	var hands []*model.SpecialHand
	for _, id := range ids {
		hand, err := s.GetSpecialHand(ctx, model.SpecialHandID(id))
		if errors.Is(err, model.ErrSpecialHandNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		hands = append(hands, hand)
	}
	// The index is a set; impose record order before returning
	sort.Slice(hands, func(i, j int) bool {
		if !hands[i].CreatedAt.Equal(hands[j].CreatedAt) {
			return hands[i].CreatedAt.Before(hands[j].CreatedAt)
		}
		return hands[i].ID < hands[j].ID
	})
	return hands, nil
}

func (s *Storage) DeleteSpecialHand(ctx context.Context, id model.SpecialHandID) error {
	hand, err := s.GetSpecialHand(ctx, id)
	if errors.Is(err, model.ErrSpecialHandNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	pipe := s.client.TxPipeline()
	pipe.Del(ctx, specialHandKey(id))
	pipe.SRem(ctx, specialHandsForSessionIndexKey(hand.SessionID), string(id))
	_, err = pipe.Exec(ctx)
	return err
}
