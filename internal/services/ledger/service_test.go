package ledger

import (
	"context"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/pokernight-go/internal/dependencies/mocks"
	"github.com/mcoot/pokernight-go/internal/dependencies/random"
	"github.com/mcoot/pokernight-go/internal/model"
	"github.com/mcoot/pokernight-go/internal/storage/memory"
	"github.com/mcoot/pokernight-go/internal/testutil"
)

type LedgerSuite struct {
	suite.Suite
	storage *memory.Storage
	clock   *mocks.MockClock
	service *Service
	ctx     context.Context

	admin *model.User
	host  *model.User
	alice *model.User
	bob   *model.User
	carol *model.User
	guest *model.User
}

func TestLedgerSuite(t *testing.T) {
	suite.Run(t, new(LedgerSuite))
}

func (s *LedgerSuite) SetupTest() {
	s.storage = memory.New()
	s.clock = mocks.NewMockClock(time.Date(2025, 6, 14, 19, 0, 0, 0, time.UTC))
	s.service = NewService(s.storage, s.clock, random.New(), testutil.NopLogger())
	s.ctx = context.Background()

	s.admin = s.saveUser("admin", "Admin", model.RoleAdmin, model.PlayerTypeTeam)
	s.host = s.saveUser("host", "Host", model.RolePlayer, model.PlayerTypeTeam)
	s.alice = s.saveUser("alice", "Alice", model.RolePlayer, model.PlayerTypeTeam)
	s.bob = s.saveUser("bob", "Bob", model.RolePlayer, model.PlayerTypeTeam)
	s.carol = s.saveUser("carol", "Carol", model.RolePlayer, model.PlayerTypeTeam)
	s.guest = s.saveUser("guest", "Guest", model.RolePlayer, model.PlayerTypeGuest)
}

func (s *LedgerSuite) saveUser(id model.UserID, name string, role model.Role, playerType model.PlayerType) *model.User {
	user := &model.User{
		ID:         id,
		Email:      string(id) + "@example.com",
		Name:       name,
		Role:       role,
		PlayerType: playerType,
		IsActive:   true,
	}
	s.Require().NoError(s.storage.SaveUser(s.ctx, user))
	return user
}

func (s *LedgerSuite) createSession() *model.Session {
	session, err := s.service.CreateSession(s.ctx, s.host, CreateSessionParams{})
	s.Require().NoError(err)
	return session
}

func (s *LedgerSuite) join(sessionID model.SessionID, users ...*model.User) {
	for _, u := range users {
		_, err := s.service.AddPlayer(s.ctx, s.host, sessionID, u.ID)
		s.Require().NoError(err)
	}
}

func (s *LedgerSuite) apply(sessionID model.SessionID, playerID model.UserID, cmd model.LedgerCommand) *model.Session {
	session, err := s.service.Apply(s.ctx, s.host, sessionID, playerID, cmd)
	s.Require().NoError(err)
	return session
}

// Session lifecycle

func (s *LedgerSuite) TestCreateSession() {
	session := s.createSession()

	s.Equal(model.SessionStatusActive, session.Status)
	s.Equal(s.host.ID, session.HostID)
	s.Empty(session.Players)
	s.Zero(session.PiggyBank)
}

func (s *LedgerSuite) TestCreateSessionWhileActiveExists() {
	s.createSession()

	_, err := s.service.CreateSession(s.ctx, s.host, CreateSessionParams{})
	s.ErrorIs(err, model.ErrActiveSessionExists)
}

func (s *LedgerSuite) TestGetActiveSession() {
	session := s.createSession()

	active, err := s.service.GetActiveSession(s.ctx)
	s.Require().NoError(err)
	s.Equal(session.ID, active.ID)
}

// Joining

func (s *LedgerSuite) TestAddPlayerTeam() {
	session := s.createSession()

	entry, err := s.service.AddPlayer(s.ctx, s.host, session.ID, s.alice.ID)
	s.Require().NoError(err)

	s.Equal(1, entry.BuyInCount)
	s.Zero(entry.ChipsSold)
	s.Nil(entry.CashOut)

	updated, err := s.service.GetSession(s.ctx, session.ID)
	s.Require().NoError(err)
	s.Equal(1, updated.PiggyBank)

	txs, err := s.service.GetTransactions(s.ctx, session.ID)
	s.Require().NoError(err)
	s.Require().Len(txs, 1)
	s.Equal(model.TransactionBuyIn, txs[0].Type)
	s.Equal(s.alice.ID, txs[0].PlayerID)
	s.Equal(model.BuyInAmount, txs[0].Amount)
}

func (s *LedgerSuite) TestAddPlayerGuestSkipsPiggyBank() {
	session := s.createSession()

	_, err := s.service.AddPlayer(s.ctx, s.host, session.ID, s.guest.ID)
	s.Require().NoError(err)

	updated, err := s.service.GetSession(s.ctx, session.ID)
	s.Require().NoError(err)
	s.Zero(updated.PiggyBank)
}

func (s *LedgerSuite) TestAddPlayerTwice() {
	session := s.createSession()
	s.join(session.ID, s.alice)

	_, err := s.service.AddPlayer(s.ctx, s.host, session.ID, s.alice.ID)
	s.ErrorIs(err, model.ErrAlreadyJoined)
}

func (s *LedgerSuite) TestAddPlayerUnknownUser() {
	session := s.createSession()

	_, err := s.service.AddPlayer(s.ctx, s.host, session.ID, "nobody")
	s.ErrorIs(err, model.ErrUserNotFound)
}

func (s *LedgerSuite) TestNonHostCannotMutate() {
	session := s.createSession()

	_, err := s.service.AddPlayer(s.ctx, s.alice, session.ID, s.bob.ID)
	s.ErrorIs(err, model.ErrNotHost)
}

func (s *LedgerSuite) TestAdminCanMutate() {
	session := s.createSession()

	_, err := s.service.AddPlayer(s.ctx, s.admin, session.ID, s.bob.ID)
	s.NoError(err)
}

// Buy-ins

func (s *LedgerSuite) TestBuyIn() {
	session := s.createSession()
	s.join(session.ID, s.alice)

	updated := s.apply(session.ID, s.alice.ID, model.BuyInCommand{})
	s.Equal(2, updated.Players[s.alice.ID].BuyInCount)

	txs, err := s.service.GetTransactions(s.ctx, session.ID)
	s.Require().NoError(err)
	s.Len(txs, 2)
}

func (s *LedgerSuite) TestBuyInAfterCashOut() {
	session := s.createSession()
	s.join(session.ID, s.alice)
	s.apply(session.ID, s.alice.ID, model.CashOutCommand{Amount: 10})

	_, err := s.service.Apply(s.ctx, s.host, session.ID, s.alice.ID, model.BuyInCommand{})
	s.ErrorIs(err, model.ErrAlreadySettled)
}

func (s *LedgerSuite) TestRemoveBuyIn() {
	session := s.createSession()
	s.join(session.ID, s.alice)
	s.apply(session.ID, s.alice.ID, model.BuyInCommand{})

	updated := s.apply(session.ID, s.alice.ID, model.RemoveBuyInCommand{})
	s.Equal(1, updated.Players[s.alice.ID].BuyInCount)

	txs, err := s.service.GetTransactions(s.ctx, session.ID)
	s.Require().NoError(err)
	s.Len(txs, 3)
	s.Equal(model.TransactionRemoveBuyIn, txs[2].Type)
}

func (s *LedgerSuite) TestRemoveBuyInAtZero() {
	session := s.createSession()
	s.join(session.ID, s.alice)
	s.apply(session.ID, s.alice.ID, model.RemoveBuyInCommand{})

	_, err := s.service.Apply(s.ctx, s.host, session.ID, s.alice.ID, model.RemoveBuyInCommand{})
	s.ErrorIs(err, model.ErrNoChipsToRemove)
}

// Selling

func (s *LedgerSuite) TestSellBuyIn() {
	session := s.createSession()
	s.join(session.ID, s.alice, s.bob)

	updated := s.apply(session.ID, s.alice.ID, model.SellCommand{BuyerID: s.bob.ID})

	// Seller keeps their stake and is credited the sale; buyer gains a chip
	s.Equal(1, updated.Players[s.alice.ID].BuyInCount)
	s.Equal(model.BuyInAmount, updated.Players[s.alice.ID].ChipsSold)
	s.Equal(2, updated.Players[s.bob.ID].BuyInCount)

	transfers, err := s.service.GetTransfers(s.ctx, session.ID)
	s.Require().NoError(err)
	s.Require().Len(transfers, 1)
	s.Equal(s.alice.ID, transfers[0].SellerID)
	s.Equal(s.bob.ID, transfers[0].BuyerID)
	s.Equal(model.BuyInAmount, transfers[0].Amount)
}

func (s *LedgerSuite) TestSellToSelf() {
	session := s.createSession()
	s.join(session.ID, s.alice)

	_, err := s.service.Apply(s.ctx, s.host, session.ID, s.alice.ID, model.SellCommand{BuyerID: s.alice.ID})
	s.ErrorIs(err, model.ErrSelfSale)
}

func (s *LedgerSuite) TestSellToSettledBuyer() {
	session := s.createSession()
	s.join(session.ID, s.alice, s.bob)
	s.apply(session.ID, s.bob.ID, model.CashOutCommand{Amount: 10})

	_, err := s.service.Apply(s.ctx, s.host, session.ID, s.alice.ID, model.SellCommand{BuyerID: s.bob.ID})
	s.ErrorIs(err, model.ErrBuyerUnavailable)
}

func (s *LedgerSuite) TestSellToMissingBuyer() {
	session := s.createSession()
	s.join(session.ID, s.alice)

	_, err := s.service.Apply(s.ctx, s.host, session.ID, s.alice.ID, model.SellCommand{BuyerID: s.carol.ID})
	s.ErrorIs(err, model.ErrBuyerUnavailable)
}

// Cash-outs

func (s *LedgerSuite) TestCashOut() {
	session := s.createSession()
	s.join(session.ID, s.alice)

	updated := s.apply(session.ID, s.alice.ID, model.CashOutCommand{Amount: 25})

	entry := updated.Players[s.alice.ID]
	s.Require().NotNil(entry.CashOut)
	s.Equal(25, *entry.CashOut)
	s.NotNil(entry.LeftAt)
}

func (s *LedgerSuite) TestCashOutZeroIsValid() {
	session := s.createSession()
	s.join(session.ID, s.alice)

	updated := s.apply(session.ID, s.alice.ID, model.CashOutCommand{Amount: 0})
	s.Require().NotNil(updated.Players[s.alice.ID].CashOut)
	s.Zero(*updated.Players[s.alice.ID].CashOut)
}

func (s *LedgerSuite) TestCashOutNegative() {
	session := s.createSession()
	s.join(session.ID, s.alice)

	_, err := s.service.Apply(s.ctx, s.host, session.ID, s.alice.ID, model.CashOutCommand{Amount: -5})
	s.ErrorIs(err, model.ErrInvalidAmount)
}

func (s *LedgerSuite) TestCashOutTwice() {
	session := s.createSession()
	s.join(session.ID, s.alice)
	s.apply(session.ID, s.alice.ID, model.CashOutCommand{Amount: 10})

	_, err := s.service.Apply(s.ctx, s.host, session.ID, s.alice.ID, model.CashOutCommand{Amount: 10})
	s.ErrorIs(err, model.ErrAlreadySettled)
}

func (s *LedgerSuite) TestUndoCashOut() {
	session := s.createSession()
	s.join(session.ID, s.alice)
	s.apply(session.ID, s.alice.ID, model.CashOutCommand{Amount: 10})

	updated := s.apply(session.ID, s.alice.ID, model.UndoCashOutCommand{})

	entry := updated.Players[s.alice.ID]
	s.Nil(entry.CashOut)
	s.Nil(entry.LeftAt)

	// The cash-out record is gone from the log
	txs, err := s.service.GetTransactions(s.ctx, session.ID)
	s.Require().NoError(err)
	for _, tx := range txs {
		s.NotEqual(model.TransactionCashOut, tx.Type)
	}
}

func (s *LedgerSuite) TestUndoCashOutNotSettled() {
	session := s.createSession()
	s.join(session.ID, s.alice)

	_, err := s.service.Apply(s.ctx, s.host, session.ID, s.alice.ID, model.UndoCashOutCommand{})
	s.ErrorIs(err, model.ErrNotCashedOut)
}

// Removing players

func (s *LedgerSuite) TestRemovePlayer() {
	session := s.createSession()
	s.join(session.ID, s.alice, s.bob)
	s.apply(session.ID, s.alice.ID, model.BuyInCommand{})

	err := s.service.RemovePlayer(s.ctx, s.host, session.ID, s.alice.ID)
	s.Require().NoError(err)

	updated, err := s.service.GetSession(s.ctx, session.ID)
	s.Require().NoError(err)
	s.NotContains(updated.Players, s.alice.ID)
	s.Equal(1, updated.PiggyBank)

	// Alice's transactions are gone; Bob's join remains
	txs, err := s.service.GetTransactions(s.ctx, session.ID)
	s.Require().NoError(err)
	s.Require().Len(txs, 1)
	s.Equal(s.bob.ID, txs[0].PlayerID)
}

func (s *LedgerSuite) TestRemoveSettledPlayer() {
	session := s.createSession()
	s.join(session.ID, s.alice)
	s.apply(session.ID, s.alice.ID, model.CashOutCommand{Amount: 10})

	err := s.service.RemovePlayer(s.ctx, s.host, session.ID, s.alice.ID)
	s.ErrorIs(err, model.ErrAlreadySettled)
}

func (s *LedgerSuite) TestRemoveGuestLeavesPiggyBank() {
	session := s.createSession()
	s.join(session.ID, s.alice, s.guest)

	err := s.service.RemovePlayer(s.ctx, s.host, session.ID, s.guest.ID)
	s.Require().NoError(err)

	updated, err := s.service.GetSession(s.ctx, session.ID)
	s.Require().NoError(err)
	s.Equal(1, updated.PiggyBank)
}

// Transaction reversal

func (s *LedgerSuite) TestReverseBuyIn() {
	session := s.createSession()
	s.join(session.ID, s.alice)
	s.apply(session.ID, s.alice.ID, model.BuyInCommand{})

	txs, err := s.service.GetTransactions(s.ctx, session.ID)
	s.Require().NoError(err)
	s.Require().Len(txs, 2)

	err = s.service.ReverseTransaction(s.ctx, s.host, session.ID, txs[1].ID)
	s.Require().NoError(err)

	updated, err := s.service.GetSession(s.ctx, session.ID)
	s.Require().NoError(err)
	s.Equal(1, updated.Players[s.alice.ID].BuyInCount)

	remaining, err := s.service.GetTransactions(s.ctx, session.ID)
	s.Require().NoError(err)
	s.Len(remaining, 1)
}

func (s *LedgerSuite) TestReverseBuyInAtZeroCount() {
	session := s.createSession()
	s.join(session.ID, s.alice)
	s.apply(session.ID, s.alice.ID, model.RemoveBuyInCommand{})

	txs, err := s.service.GetTransactions(s.ctx, session.ID)
	s.Require().NoError(err)

	var joinTx *model.Transaction
	for _, tx := range txs {
		if tx.Type == model.TransactionBuyIn {
			joinTx = tx
		}
	}
	s.Require().NotNil(joinTx)

	// Count is already zero, so reversing the original buy-in must fail
	err = s.service.ReverseTransaction(s.ctx, s.host, session.ID, joinTx.ID)
	s.ErrorIs(err, model.ErrNoChipsToRemove)
}

func (s *LedgerSuite) TestReverseRemoveBuyIn() {
	session := s.createSession()
	s.join(session.ID, s.alice)
	s.apply(session.ID, s.alice.ID, model.RemoveBuyInCommand{})

	txs, err := s.service.GetTransactions(s.ctx, session.ID)
	s.Require().NoError(err)
	s.Require().Len(txs, 2)

	err = s.service.ReverseTransaction(s.ctx, s.host, session.ID, txs[1].ID)
	s.Require().NoError(err)

	updated, err := s.service.GetSession(s.ctx, session.ID)
	s.Require().NoError(err)
	s.Equal(1, updated.Players[s.alice.ID].BuyInCount)
}

func (s *LedgerSuite) TestReverseSell() {
	session := s.createSession()
	s.join(session.ID, s.alice, s.bob)
	s.apply(session.ID, s.alice.ID, model.SellCommand{BuyerID: s.bob.ID})

	txs, err := s.service.GetTransactions(s.ctx, session.ID)
	s.Require().NoError(err)
	var sellTx *model.Transaction
	for _, tx := range txs {
		if tx.Type == model.TransactionSellBuyIn {
			sellTx = tx
		}
	}
	s.Require().NotNil(sellTx)

	err = s.service.ReverseTransaction(s.ctx, s.host, session.ID, sellTx.ID)
	s.Require().NoError(err)

	updated, err := s.service.GetSession(s.ctx, session.ID)
	s.Require().NoError(err)
	s.Zero(updated.Players[s.alice.ID].ChipsSold)
	s.Equal(1, updated.Players[s.bob.ID].BuyInCount)

	transfers, err := s.service.GetTransfers(s.ctx, session.ID)
	s.Require().NoError(err)
	s.Empty(transfers)
}

func (s *LedgerSuite) TestReverseSellAfterBuyerSpentChip() {
	session := s.createSession()
	s.join(session.ID, s.alice, s.bob)
	s.apply(session.ID, s.alice.ID, model.SellCommand{BuyerID: s.bob.ID})
	s.apply(session.ID, s.bob.ID, model.RemoveBuyInCommand{})
	s.apply(session.ID, s.bob.ID, model.RemoveBuyInCommand{})

	txs, err := s.service.GetTransactions(s.ctx, session.ID)
	s.Require().NoError(err)
	var sellTx *model.Transaction
	for _, tx := range txs {
		if tx.Type == model.TransactionSellBuyIn {
			sellTx = tx
		}
	}
	s.Require().NotNil(sellTx)

	err = s.service.ReverseTransaction(s.ctx, s.host, session.ID, sellTx.ID)
	s.ErrorIs(err, model.ErrNoChipsToRemove)
}

func (s *LedgerSuite) TestReverseCashOut() {
	session := s.createSession()
	s.join(session.ID, s.alice)
	s.apply(session.ID, s.alice.ID, model.CashOutCommand{Amount: 15})

	txs, err := s.service.GetTransactions(s.ctx, session.ID)
	s.Require().NoError(err)
	var cashTx *model.Transaction
	for _, tx := range txs {
		if tx.Type == model.TransactionCashOut {
			cashTx = tx
		}
	}
	s.Require().NotNil(cashTx)

	err = s.service.ReverseTransaction(s.ctx, s.host, session.ID, cashTx.ID)
	s.Require().NoError(err)

	updated, err := s.service.GetSession(s.ctx, session.ID)
	s.Require().NoError(err)
	s.Nil(updated.Players[s.alice.ID].CashOut)
}

func (s *LedgerSuite) TestReverseUnknownTransaction() {
	session := s.createSession()

	err := s.service.ReverseTransaction(s.ctx, s.host, session.ID, "no-such-tx")
	s.ErrorIs(err, model.ErrTransactionNotFound)
}

// Closing and reopening

func (s *LedgerSuite) TestCloseBalancedSession() {
	session := s.createSession()
	s.join(session.ID, s.alice, s.bob)
	s.apply(session.ID, s.alice.ID, model.BuyInCommand{})

	// Total buy-ins 30, piggy bank 2, distributable 28
	s.apply(session.ID, s.alice.ID, model.CashOutCommand{Amount: 20})
	s.apply(session.ID, s.bob.ID, model.CashOutCommand{Amount: 8})

	closed, err := s.service.CloseSession(s.ctx, s.host, session.ID)
	s.Require().NoError(err)

	s.Equal(model.SessionStatusClosed, closed.Status)
	s.NotNil(closed.ClosedAt)
	s.Equal(30, closed.TotalPot)
	s.Equal(2, closed.PiggyBank)
}

func (s *LedgerSuite) TestCloseWithSoldChips() {
	session := s.createSession()
	s.join(session.ID, s.alice, s.bob)
	s.apply(session.ID, s.alice.ID, model.SellCommand{BuyerID: s.bob.ID})

	// Buy-ins: alice 1, bob 2 -> 30 total, piggy 2, distributable 28.
	// Alice's sale already counts 10 toward effective cash-outs.
	s.apply(session.ID, s.alice.ID, model.CashOutCommand{Amount: 5})
	s.apply(session.ID, s.bob.ID, model.CashOutCommand{Amount: 13})

	closed, err := s.service.CloseSession(s.ctx, s.host, session.ID)
	s.Require().NoError(err)
	s.Equal(30, closed.TotalPot)
}

func (s *LedgerSuite) TestCloseUnbalancedSession() {
	session := s.createSession()
	s.join(session.ID, s.alice)
	s.apply(session.ID, s.alice.ID, model.CashOutCommand{Amount: 20})

	_, err := s.service.CloseSession(s.ctx, s.host, session.ID)

	var unbalanced *model.UnbalancedError
	s.Require().ErrorAs(err, &unbalanced)
	s.Equal(9, unbalanced.DistributablePot)
	s.Equal(20, unbalanced.EffectiveCashOuts)
	s.Equal(11, unbalanced.Discrepancy())
}

func (s *LedgerSuite) TestCloseWithActivePlayers() {
	session := s.createSession()
	s.join(session.ID, s.alice, s.bob)
	s.apply(session.ID, s.alice.ID, model.CashOutCommand{Amount: 18})

	_, err := s.service.CloseSession(s.ctx, s.host, session.ID)
	s.ErrorIs(err, model.ErrPlayersStillActive)
}

func (s *LedgerSuite) TestReopenSession() {
	session := s.createSession()
	s.join(session.ID, s.alice)
	s.apply(session.ID, s.alice.ID, model.CashOutCommand{Amount: 9})

	_, err := s.service.CloseSession(s.ctx, s.host, session.ID)
	s.Require().NoError(err)

	reopened, err := s.service.ReopenSession(s.ctx, s.host, session.ID)
	s.Require().NoError(err)
	s.Equal(model.SessionStatusActive, reopened.Status)
	s.Nil(reopened.ClosedAt)

	// Ledger operations work again
	_, err = s.service.Apply(s.ctx, s.host, session.ID, s.alice.ID, model.UndoCashOutCommand{})
	s.NoError(err)
}

func (s *LedgerSuite) TestReopenActiveSession() {
	session := s.createSession()

	_, err := s.service.ReopenSession(s.ctx, s.host, session.ID)
	s.ErrorIs(err, model.ErrSessionNotClosed)
}

func (s *LedgerSuite) TestMutationsRejectedWhenClosed() {
	session := s.createSession()
	s.join(session.ID, s.alice)
	s.apply(session.ID, s.alice.ID, model.CashOutCommand{Amount: 9})
	_, err := s.service.CloseSession(s.ctx, s.host, session.ID)
	s.Require().NoError(err)

	_, err = s.service.AddPlayer(s.ctx, s.host, session.ID, s.bob.ID)
	s.ErrorIs(err, model.ErrSessionNotActive)

	_, err = s.service.Apply(s.ctx, s.host, session.ID, s.alice.ID, model.BuyInCommand{})
	s.ErrorIs(err, model.ErrSessionNotActive)

	err = s.service.RemovePlayer(s.ctx, s.host, session.ID, s.alice.ID)
	s.ErrorIs(err, model.ErrSessionNotActive)
}

// Metadata updates

func (s *LedgerSuite) TestUpdateNotes() {
	session := s.createSession()

	updated, err := s.service.UpdateNotes(s.ctx, s.host, session.ID, "rematch next week")
	s.Require().NoError(err)
	s.Equal("rematch next week", updated.Notes)
}

func (s *LedgerSuite) TestUpdateDateAdminOnly() {
	session := s.createSession()
	newDate := time.Date(2025, 6, 21, 19, 0, 0, 0, time.UTC)

	_, err := s.service.UpdateDate(s.ctx, s.host, session.ID, newDate)
	s.ErrorIs(err, model.ErrAdminOnly)

	updated, err := s.service.UpdateDate(s.ctx, s.admin, session.ID, newDate)
	s.Require().NoError(err)
	s.True(updated.Date.Equal(newDate))
}

func (s *LedgerSuite) TestUpdateHostLocation() {
	session := s.createSession()

	updated, err := s.service.UpdateHostLocation(s.ctx, s.host, session.ID, &s.alice.ID)
	s.Require().NoError(err)
	s.Require().NotNil(updated.HostLocationID)
	s.Equal(s.alice.ID, *updated.HostLocationID)

	updated, err = s.service.UpdateHostLocation(s.ctx, s.host, session.ID, nil)
	s.Require().NoError(err)
	s.Nil(updated.HostLocationID)
}

func (s *LedgerSuite) TestSetArchived() {
	session := s.createSession()
	s.join(session.ID, s.alice)
	s.apply(session.ID, s.alice.ID, model.CashOutCommand{Amount: 9})
	_, err := s.service.CloseSession(s.ctx, s.host, session.ID)
	s.Require().NoError(err)

	updated, err := s.service.SetArchived(s.ctx, s.host, session.ID, true)
	s.Require().NoError(err)
	s.True(updated.IsArchived)
}

// Piggy bank aggregation

func (s *LedgerSuite) TestPiggyBankTotal() {
	for i := 0; i < 2; i++ {
		session := s.createSession()
		s.join(session.ID, s.alice, s.bob)
		s.apply(session.ID, s.alice.ID, model.CashOutCommand{Amount: 18})
		s.apply(session.ID, s.bob.ID, model.CashOutCommand{Amount: 0})
		_, err := s.service.CloseSession(s.ctx, s.host, session.ID)
		s.Require().NoError(err)
	}

	// A still-active session must not count
	active := s.createSession()
	s.join(active.ID, s.carol)

	total, err := s.service.PiggyBankTotal(s.ctx)
	s.Require().NoError(err)
	s.Equal(4, total)
}

// Conservation property: a randomized run of valid operations always leaves
// the ledger balanced when everyone cashes out exactly their share.
func (s *LedgerSuite) TestRandomizedOperationsPreserveBalance() {
	rng := rand.New(rand.NewSource(42))

	session := s.createSession()
	players := []*model.User{s.alice, s.bob, s.carol}
	s.join(session.ID, players...)

	for i := 0; i < 60; i++ {
		p := players[rng.Intn(len(players))]
		switch rng.Intn(3) {
		case 0:
			s.apply(session.ID, p.ID, model.BuyInCommand{})
		case 1:
			current, err := s.service.GetSession(s.ctx, session.ID)
			s.Require().NoError(err)
			// Only remove while the pot still covers the chips already sold
			canCover := current.DistributablePot()-sumChipsSold(current) >= model.BuyInAmount
			if current.Players[p.ID].BuyInCount > 0 && canCover {
				s.apply(session.ID, p.ID, model.RemoveBuyInCommand{})
			}
		case 2:
			buyer := players[rng.Intn(len(players))]
			if buyer.ID != p.ID {
				s.apply(session.ID, p.ID, model.SellCommand{BuyerID: buyer.ID})
			}
		}
	}

	current, err := s.service.GetSession(s.ctx, session.ID)
	s.Require().NoError(err)

	// Non-negativity held throughout; distribute the pot exactly
	remaining := current.DistributablePot()
	for _, entry := range current.Players {
		s.GreaterOrEqual(entry.BuyInCount, 0)
		s.GreaterOrEqual(entry.ChipsSold, 0)
	}
	remaining -= sumChipsSold(current)

	ids := []model.UserID{s.alice.ID, s.bob.ID, s.carol.ID}
	for i, id := range ids {
		amount := 0
		if i == len(ids)-1 {
			amount = remaining
		} else {
			share := rng.Intn(remaining + 1)
			amount = share
			remaining -= share
		}
		s.apply(session.ID, id, model.CashOutCommand{Amount: amount})
	}

	_, err = s.service.CloseSession(s.ctx, s.host, session.ID)
	s.NoError(err)
}

// Replaying the surviving records from an empty aggregate must reproduce the
// player entries exactly, including after undo operations.
func (s *LedgerSuite) TestRandomizedLogReplayReconstructsEntries() {
	rng := rand.New(rand.NewSource(7))

	session := s.createSession()
	players := []*model.User{s.alice, s.bob, s.carol}
	s.join(session.ID, players...)

	for i := 0; i < 80; i++ {
		s.clock.Advance(time.Minute)
		p := players[rng.Intn(len(players))]
		switch rng.Intn(4) {
		case 0:
			s.apply(session.ID, p.ID, model.BuyInCommand{})
		case 1:
			current, err := s.service.GetSession(s.ctx, session.ID)
			s.Require().NoError(err)
			canCover := current.DistributablePot()-sumChipsSold(current) >= model.BuyInAmount
			if current.Players[p.ID].BuyInCount > 0 && canCover {
				s.apply(session.ID, p.ID, model.RemoveBuyInCommand{})
			}
		case 2:
			buyer := players[rng.Intn(len(players))]
			if buyer.ID != p.ID {
				s.apply(session.ID, p.ID, model.SellCommand{BuyerID: buyer.ID})
			}
		case 3:
			// Cash out and take it back; only the final settle below sticks,
			// so the player stays available for further operations
			s.apply(session.ID, p.ID, model.CashOutCommand{Amount: rng.Intn(20)})
			s.clock.Advance(time.Minute)
			s.apply(session.ID, p.ID, model.UndoCashOutCommand{})
		}
	}

	// Settle everyone once more so cashed-out state is exercised too
	for _, p := range players {
		s.clock.Advance(time.Minute)
		s.apply(session.ID, p.ID, model.CashOutCommand{Amount: rng.Intn(20)})
	}

	current, err := s.service.GetSession(s.ctx, session.ID)
	s.Require().NoError(err)
	txs, err := s.service.GetTransactions(s.ctx, session.ID)
	s.Require().NoError(err)

	replayed := model.ReplayEntries(txs)
	s.Require().Len(replayed, len(current.Players))
	for id, entry := range current.Players {
		got, ok := replayed[id]
		s.Require().True(ok, "player %s missing from replay", id)
		s.Equal(entry.BuyInCount, got.BuyInCount)
		s.Equal(entry.ChipsSold, got.ChipsSold)
		s.Equal(entry.JoinedAt, got.JoinedAt)
		s.Require().NotNil(got.CashOut)
		s.Equal(*entry.CashOut, *got.CashOut)
		s.Require().NotNil(got.LeftAt)
		s.Equal(*entry.LeftAt, *got.LeftAt)
	}
}

func sumChipsSold(session *model.Session) int {
	total := 0
	for _, entry := range session.Players {
		total += entry.ChipsSold
	}
	return total
}
