package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/pokernight-go/internal/model"
	"github.com/mcoot/pokernight-go/internal/storage"
)

type StorageSuite struct {
	suite.Suite
	storage *Storage
	ctx     context.Context
}

func TestStorageSuite(t *testing.T) {
	suite.Run(t, new(StorageSuite))
}

func (s *StorageSuite) SetupTest() {
	s.storage = New()
	s.ctx = context.Background()
}

// User tests

func (s *StorageSuite) TestSaveAndGetUser() {
	user := &model.User{
		ID:         "user-1",
		Email:      "alice@example.com",
		Name:       "Alice",
		Role:       model.RolePlayer,
		PlayerType: model.PlayerTypeTeam,
		IsActive:   true,
		CreatedAt:  time.Now(),
	}

	err := s.storage.SaveUser(s.ctx, user)
	s.Require().NoError(err)

	retrieved, err := s.storage.GetUser(s.ctx, "user-1")
	s.Require().NoError(err)
	s.Equal(user.ID, retrieved.ID)
	s.Equal(user.Name, retrieved.Name)

	byEmail, err := s.storage.GetUserByEmail(s.ctx, "alice@example.com")
	s.Require().NoError(err)
	s.Equal(user.ID, byEmail.ID)
}

func (s *StorageSuite) TestGetUserNotFound() {
	_, err := s.storage.GetUser(s.ctx, "nonexistent")
	s.ErrorIs(err, model.ErrUserNotFound)

	_, err = s.storage.GetUserByEmail(s.ctx, "nobody@example.com")
	s.ErrorIs(err, model.ErrUserNotFound)
}

func (s *StorageSuite) TestListUsers() {
	_ = s.storage.SaveUser(s.ctx, &model.User{ID: "user-1", Email: "a@example.com"})
	_ = s.storage.SaveUser(s.ctx, &model.User{ID: "user-2", Email: "b@example.com"})

	users, err := s.storage.ListUsers(s.ctx)
	s.Require().NoError(err)
	s.Len(users, 2)
}

// Session tests

func (s *StorageSuite) TestSaveAndGetSession() {
	session := &model.Session{
		ID:      "session-1",
		Date:    time.Date(2025, 3, 14, 19, 0, 0, 0, time.UTC),
		Status:  model.SessionStatusActive,
		HostID:  "user-1",
		Players: map[model.UserID]*model.PlayerEntry{},
	}

	err := s.storage.SaveSession(s.ctx, session)
	s.Require().NoError(err)

	retrieved, err := s.storage.GetSession(s.ctx, "session-1")
	s.Require().NoError(err)
	s.Equal(session.ID, retrieved.ID)
	s.Equal(model.SessionStatusActive, retrieved.Status)
}

func (s *StorageSuite) TestGetActiveSession() {
	_, err := s.storage.GetActiveSession(s.ctx)
	s.ErrorIs(err, model.ErrSessionNotFound)

	_ = s.storage.SaveSession(s.ctx, &model.Session{ID: "session-1", Status: model.SessionStatusClosed})
	_ = s.storage.SaveSession(s.ctx, &model.Session{ID: "session-2", Status: model.SessionStatusActive})

	active, err := s.storage.GetActiveSession(s.ctx)
	s.Require().NoError(err)
	s.Equal(model.SessionID("session-2"), active.ID)
}

func (s *StorageSuite) TestListSessionsFilters() {
	_ = s.storage.SaveSession(s.ctx, &model.Session{
		ID: "s1", Status: model.SessionStatusClosed,
		Date: time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
	})
	_ = s.storage.SaveSession(s.ctx, &model.Session{
		ID: "s2", Status: model.SessionStatusClosed,
		Date: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
	})
	_ = s.storage.SaveSession(s.ctx, &model.Session{
		ID: "s3", Status: model.SessionStatusClosed, IsArchived: true,
		Date: time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC),
	})
	_ = s.storage.SaveSession(s.ctx, &model.Session{
		ID: "s4", Status: model.SessionStatusActive,
		Date: time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC),
	})

	closed2025, err := s.storage.ListSessions(s.ctx, storage.SessionFilter{
		Status: model.SessionStatusClosed,
		Year:   2025,
	})
	s.Require().NoError(err)
	s.Len(closed2025, 1)
	s.Equal(model.SessionID("s2"), closed2025[0].ID)

	withArchived, err := s.storage.ListSessions(s.ctx, storage.SessionFilter{
		Status:          model.SessionStatusClosed,
		Year:            2025,
		IncludeArchived: true,
	})
	s.Require().NoError(err)
	s.Len(withArchived, 2)

	all, err := s.storage.ListSessions(s.ctx, storage.SessionFilter{IncludeArchived: true})
	s.Require().NoError(err)
	s.Len(all, 4)
}

// Ledger tests

func (s *StorageSuite) TestCommitLedgerRoundTrip() {
	now := time.Now()
	session := &model.Session{
		ID:     "session-1",
		Status: model.SessionStatusActive,
		Players: map[model.UserID]*model.PlayerEntry{
			"user-1": {UserID: "user-1", BuyInCount: 2, JoinedAt: now},
		},
	}
	txs := []*model.Transaction{
		{ID: "tx-1", SessionID: "session-1", Type: model.TransactionBuyIn, PlayerID: "user-1", Amount: model.BuyInAmount, CreatedAt: now},
	}
	transfers := []*model.BuyInTransfer{
		{ID: "tr-1", SessionID: "session-1", SellerID: "user-1", BuyerID: "user-2", Amount: model.BuyInAmount, CreatedAt: now},
	}

	err := s.storage.CommitLedger(s.ctx, session, txs, transfers)
	s.Require().NoError(err)

	gotSession, err := s.storage.GetSession(s.ctx, "session-1")
	s.Require().NoError(err)
	s.Equal(2, gotSession.Players["user-1"].BuyInCount)

	gotTxs, err := s.storage.GetTransactions(s.ctx, "session-1")
	s.Require().NoError(err)
	s.Require().Len(gotTxs, 1)
	s.Equal(model.TransactionBuyIn, gotTxs[0].Type)

	gotTransfers, err := s.storage.GetTransfers(s.ctx, "session-1")
	s.Require().NoError(err)
	s.Len(gotTransfers, 1)
}

func (s *StorageSuite) TestGetTransactionsEmpty() {
	txs, err := s.storage.GetTransactions(s.ctx, "no-such-session")
	s.Require().NoError(err)
	s.Empty(txs)
}

// Special hand tests

func (s *StorageSuite) TestSpecialHandLifecycle() {
	hand := &model.SpecialHand{
		ID:        "hand-1",
		SessionID: "session-1",
		PlayerID:  "user-1",
		HandType:  model.HandRoyalFlush,
		Cards:     "As Ks Qs Js Ts",
		CreatedAt: time.Now(),
	}

	err := s.storage.SaveSpecialHand(s.ctx, hand)
	s.Require().NoError(err)

	retrieved, err := s.storage.GetSpecialHand(s.ctx, "hand-1")
	s.Require().NoError(err)
	s.Equal(model.HandRoyalFlush, retrieved.HandType)

	hands, err := s.storage.GetSpecialHandsForSession(s.ctx, "session-1")
	s.Require().NoError(err)
	s.Len(hands, 1)

	err = s.storage.DeleteSpecialHand(s.ctx, "hand-1")
	s.Require().NoError(err)

	_, err = s.storage.GetSpecialHand(s.ctx, "hand-1")
	s.ErrorIs(err, model.ErrSpecialHandNotFound)

	hands, err = s.storage.GetSpecialHandsForSession(s.ctx, "session-1")
	s.Require().NoError(err)
	s.Empty(hands)
}

func (s *StorageSuite) TestSpecialHandsReturnedInRecordOrder() {
	base := time.Now().UTC()
	// Saved out of chronological order on purpose
	ids := []model.SpecialHandID{"hand-3", "hand-1", "hand-4", "hand-2"}
	offsets := []time.Duration{3 * time.Minute, time.Minute, 4 * time.Minute, 2 * time.Minute}
	for i, id := range ids {
		s.Require().NoError(s.storage.SaveSpecialHand(s.ctx, &model.SpecialHand{
			ID:        id,
			SessionID: "session-1",
			PlayerID:  "user-1",
			HandType:  model.HandStraightFlush,
			CreatedAt: base.Add(offsets[i]),
		}))
	}

	hands, err := s.storage.GetSpecialHandsForSession(s.ctx, "session-1")
	s.Require().NoError(err)
	s.Require().Len(hands, 4)
	for i, want := range []model.SpecialHandID{"hand-1", "hand-2", "hand-3", "hand-4"} {
		s.Equal(want, hands[i].ID)
	}
}
