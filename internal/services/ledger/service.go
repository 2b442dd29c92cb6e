package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/mcoot/pokernight-go/internal/dependencies/clock"
	"github.com/mcoot/pokernight-go/internal/dependencies/random"
	"github.com/mcoot/pokernight-go/internal/model"
	"github.com/mcoot/pokernight-go/internal/storage"
)

const sessionIDAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// Service owns the session aggregate and its transaction log. Every mutation
// pairs the aggregate update with a log append or delete and commits both in
// one atomic storage write.
type Service struct {
	storage storage.Storage
	clock   clock.Clock
	random  random.Random
	logger  *slog.Logger
}

// NewService creates a new ledger Service
func NewService(storage storage.Storage, clock clock.Clock, random random.Random, logger *slog.Logger) *Service {
	return &Service{
		storage: storage,
		clock:   clock,
		random:  random,
		logger:  logger,
	}
}

// ledgerState is a session aggregate loaded together with its log, mutated
// in memory and committed back in one write
type ledgerState struct {
	session   *model.Session
	txs       []*model.Transaction
	transfers []*model.BuyInTransfer
}

func (s *Service) load(ctx context.Context, sessionID model.SessionID) (*ledgerState, error) {
	session, err := s.storage.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	txs, err := s.storage.GetTransactions(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	transfers, err := s.storage.GetTransfers(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return &ledgerState{session: session, txs: txs, transfers: transfers}, nil
}

func (s *Service) commit(ctx context.Context, st *ledgerState) error {
	st.session.UpdatedAt = s.clock.Now()
	return s.storage.CommitLedger(ctx, st.session, st.txs, st.transfers)
}

// authorize checks the host-or-admin rule for a session
func authorize(session *model.Session, actor *model.User) error {
	if actor.IsAdmin() || session.HostID == actor.ID {
		return nil
	}
	return model.ErrNotHost
}

func requireActive(session *model.Session) error {
	if session.Status != model.SessionStatusActive {
		return model.ErrSessionNotActive
	}
	return nil
}

// CreateSessionParams holds optional settings for a new session
type CreateSessionParams struct {
	Date           time.Time // zero value means now
	Notes          string
	HostLocationID *model.UserID
}

// CreateSession starts a new ACTIVE session hosted by the caller. Fails if
// any session is already ACTIVE; that invariant is what makes "the current
// session" well-defined everywhere else.
func (s *Service) CreateSession(ctx context.Context, actor *model.User, params CreateSessionParams) (*model.Session, error) {
	_, err := s.storage.GetActiveSession(ctx)
	if err == nil {
		return nil, model.ErrActiveSessionExists
	}
	if !errors.Is(err, model.ErrSessionNotFound) {
		return nil, err
	}

	now := s.clock.Now()
	date := params.Date
	if date.IsZero() {
		date = now
	}

	session := &model.Session{
		ID:             model.SessionID(s.random.String(12, sessionIDAlphabet)),
		Date:           date,
		Status:         model.SessionStatusActive,
		HostID:         actor.ID,
		HostLocationID: params.HostLocationID,
		Notes:          params.Notes,
		Players:        make(map[model.UserID]*model.PlayerEntry),
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := s.storage.SaveSession(ctx, session); err != nil {
		s.logger.Error("failed to save session",
			slog.String("session_id", string(session.ID)),
			slog.String("error", err.Error()),
		)
		return nil, err
	}

	s.logger.Info("session created",
		slog.String("session_id", string(session.ID)),
		slog.String("host_id", string(actor.ID)),
	)

	return session, nil
}

// GetSession retrieves a session by ID
func (s *Service) GetSession(ctx context.Context, sessionID model.SessionID) (*model.Session, error) {
	return s.storage.GetSession(ctx, sessionID)
}

// GetActiveSession returns the currently ACTIVE session, if any
func (s *Service) GetActiveSession(ctx context.Context) (*model.Session, error) {
	return s.storage.GetActiveSession(ctx)
}

// GetTransactions returns a session's transaction log ordered by time
func (s *Service) GetTransactions(ctx context.Context, sessionID model.SessionID) ([]*model.Transaction, error) {
	return s.storage.GetTransactions(ctx, sessionID)
}

// GetTransfers returns a session's buy-in transfer records
func (s *Service) GetTransfers(ctx context.Context, sessionID model.SessionID) ([]*model.BuyInTransfer, error) {
	return s.storage.GetTransfers(ctx, sessionID)
}

// ListSessions returns sessions matching the filter, newest first
func (s *Service) ListSessions(ctx context.Context, filter storage.SessionFilter) ([]*model.Session, error) {
	sessions, err := s.storage.ListSessions(ctx, filter)
	if err != nil {
		return nil, err
	}
	sortSessionsByDateDesc(sessions)
	return sessions, nil
}

// AddPlayer joins a user to the session with their first buy-in. Team
// players also fund the piggy bank with one contribution.
func (s *Service) AddPlayer(ctx context.Context, actor *model.User, sessionID model.SessionID, userID model.UserID) (*model.PlayerEntry, error) {
	st, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if err := authorize(st.session, actor); err != nil {
		return nil, err
	}
	if err := requireActive(st.session); err != nil {
		return nil, err
	}

	if _, ok := st.session.Players[userID]; ok {
		return nil, model.ErrAlreadyJoined
	}

	user, err := s.storage.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	entry := &model.PlayerEntry{
		UserID:     userID,
		UserName:   user.Name,
		BuyInCount: 1,
		JoinedAt:   now,
	}
	st.session.Players[userID] = entry

	if user.PlayerType == model.PlayerTypeTeam {
		st.session.PiggyBank += model.PiggyBankContribution
	}

	st.appendTx(sessionID, model.TransactionBuyIn, userID, "", model.BuyInAmount, now)

	if err := s.commit(ctx, st); err != nil {
		return nil, err
	}

	s.logger.Info("player joined",
		slog.String("session_id", string(sessionID)),
		slog.String("user_id", string(userID)),
		slog.String("player_type", string(user.PlayerType)),
	)

	return entry, nil
}

// Apply executes a per-player ledger command against an active session.
// The command is a tagged variant, so dispatch is exhaustive.
func (s *Service) Apply(ctx context.Context, actor *model.User, sessionID model.SessionID, playerID model.UserID, cmd model.LedgerCommand) (*model.Session, error) {
	st, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if err := authorize(st.session, actor); err != nil {
		return nil, err
	}
	if err := requireActive(st.session); err != nil {
		return nil, err
	}

	entry, ok := st.session.Players[playerID]
	if !ok {
		return nil, model.ErrPlayerNotFound
	}

	now := s.clock.Now()

	switch c := cmd.(type) {
	case model.BuyInCommand:
		if entry.Settled() {
			return nil, model.ErrAlreadySettled
		}
		entry.BuyInCount++
		st.appendTx(sessionID, model.TransactionBuyIn, playerID, "", model.BuyInAmount, now)

	case model.RemoveBuyInCommand:
		if entry.BuyInCount <= 0 {
			return nil, model.ErrNoChipsToRemove
		}
		entry.BuyInCount--
		st.appendTx(sessionID, model.TransactionRemoveBuyIn, playerID, "", model.BuyInAmount, now)

	case model.SellCommand:
		if c.BuyerID == playerID {
			return nil, model.ErrSelfSale
		}
		buyer, ok := st.session.Players[c.BuyerID]
		if !ok || buyer.Settled() {
			return nil, model.ErrBuyerUnavailable
		}
		// The seller keeps their committed stake: they are cashing out one
		// chip's worth early, while the buyer's new chip grows the pot.
		entry.ChipsSold += model.BuyInAmount
		buyer.BuyInCount++
		st.transfers = append(st.transfers, &model.BuyInTransfer{
			ID:        model.TransferID(uuid.NewString()),
			SessionID: sessionID,
			SellerID:  playerID,
			BuyerID:   c.BuyerID,
			Amount:    model.BuyInAmount,
			CreatedAt: now,
		})
		st.appendTx(sessionID, model.TransactionSellBuyIn, playerID, c.BuyerID, model.BuyInAmount, now)

	case model.CashOutCommand:
		if c.Amount < 0 {
			return nil, model.ErrInvalidAmount
		}
		if entry.Settled() {
			return nil, model.ErrAlreadySettled
		}
		amount := c.Amount
		entry.CashOut = &amount
		left := now
		entry.LeftAt = &left
		st.appendTx(sessionID, model.TransactionCashOut, playerID, "", amount, now)

	case model.UndoCashOutCommand:
		if !entry.Settled() {
			return nil, model.ErrNotCashedOut
		}
		entry.CashOut = nil
		entry.LeftAt = nil
		// Undo targets the most recent cash-out record by convention
		if tx := st.latestTx(model.TransactionCashOut, playerID); tx != nil {
			st.removeTx(tx.ID)
		}

	default:
		return nil, fmt.Errorf("unsupported ledger command %T", cmd)
	}

	if err := s.commit(ctx, st); err != nil {
		return nil, err
	}

	s.logger.Info("ledger command applied",
		slog.String("session_id", string(sessionID)),
		slog.String("player_id", string(playerID)),
		slog.String("command", fmt.Sprintf("%T", cmd)),
	)

	return st.session, nil
}

// RemovePlayer takes an unsettled player out of the session entirely,
// deleting their transactions and reversing one piggy-bank contribution for
// team players. This is a destructive reversal meant for "never actually
// played" corrections.
func (s *Service) RemovePlayer(ctx context.Context, actor *model.User, sessionID model.SessionID, playerID model.UserID) error {
	st, err := s.load(ctx, sessionID)
	if err != nil {
		return err
	}
	if err := authorize(st.session, actor); err != nil {
		return err
	}
	if err := requireActive(st.session); err != nil {
		return err
	}

	entry, ok := st.session.Players[playerID]
	if !ok {
		return model.ErrPlayerNotFound
	}
	if entry.Settled() {
		return model.ErrAlreadySettled
	}

	user, err := s.storage.GetUser(ctx, playerID)
	if err == nil && user.PlayerType == model.PlayerTypeTeam {
		st.session.PiggyBank -= model.PiggyBankContribution
		if st.session.PiggyBank < 0 {
			st.session.PiggyBank = 0
		}
	} else if err != nil && !errors.Is(err, model.ErrUserNotFound) {
		return err
	}

	kept := st.txs[:0]
	for _, tx := range st.txs {
		if tx.PlayerID != playerID {
			kept = append(kept, tx)
		}
	}
	st.txs = kept

	delete(st.session.Players, playerID)

	if err := s.commit(ctx, st); err != nil {
		return err
	}

	s.logger.Info("player removed",
		slog.String("session_id", string(sessionID)),
		slog.String("player_id", string(playerID)),
	)

	return nil
}

// ReverseTransaction applies the inverse of a logged mutation and deletes
// the record, atomically. The inverse must not drive any count negative.
func (s *Service) ReverseTransaction(ctx context.Context, actor *model.User, sessionID model.SessionID, txID model.TransactionID) error {
	st, err := s.load(ctx, sessionID)
	if err != nil {
		return err
	}
	if err := authorize(st.session, actor); err != nil {
		return err
	}
	if err := requireActive(st.session); err != nil {
		return err
	}

	tx := st.findTx(txID)
	if tx == nil || tx.SessionID != sessionID {
		return model.ErrTransactionNotFound
	}

	entry, ok := st.session.Players[tx.PlayerID]
	if !ok {
		return model.ErrPlayerNotFound
	}

	switch tx.Type {
	case model.TransactionBuyIn:
		if entry.BuyInCount <= 0 {
			return model.ErrNoChipsToRemove
		}
		entry.BuyInCount--

	case model.TransactionRemoveBuyIn:
		entry.BuyInCount++

	case model.TransactionSellBuyIn:
		buyer, ok := st.session.Players[tx.TargetPlayerID]
		if !ok {
			return model.ErrPlayerNotFound
		}
		if buyer.BuyInCount <= 0 {
			return model.ErrNoChipsToRemove
		}
		if entry.ChipsSold < tx.Amount {
			return model.ErrNoChipsToRemove
		}
		entry.ChipsSold -= tx.Amount
		buyer.BuyInCount--
		st.removeTransferFor(tx.PlayerID, tx.TargetPlayerID)

	case model.TransactionCashOut:
		if !entry.Settled() {
			return model.ErrNotCashedOut
		}
		entry.CashOut = nil
		entry.LeftAt = nil

	default:
		return model.ErrTransactionNotFound
	}

	st.removeTx(txID)

	if err := s.commit(ctx, st); err != nil {
		return err
	}

	s.logger.Info("transaction reversed",
		slog.String("session_id", string(sessionID)),
		slog.String("transaction_id", string(txID)),
		slog.String("type", string(tx.Type)),
	)

	return nil
}

// CloseSession settles the night. It succeeds only when the ledger balances:
// the distributable pot (buy-ins minus the piggy bank skim) equals the
// effective cash-outs, and nobody is still sitting on chips.
func (s *Service) CloseSession(ctx context.Context, actor *model.User, sessionID model.SessionID) (*model.Session, error) {
	session, err := s.storage.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if err := authorize(session, actor); err != nil {
		return nil, err
	}
	if err := requireActive(session); err != nil {
		return nil, err
	}

	if err := session.CheckBalance(); err != nil {
		return nil, err
	}

	now := s.clock.Now()
	session.Status = model.SessionStatusClosed
	session.ClosedAt = &now
	session.TotalPot = session.TotalBuyIns()
	session.UpdatedAt = now

	if err := s.storage.SaveSession(ctx, session); err != nil {
		return nil, err
	}

	s.logger.Info("session closed",
		slog.String("session_id", string(sessionID)),
		slog.Int("total_pot", session.TotalPot),
		slog.Int("piggy_bank", session.PiggyBank),
	)

	return session, nil
}

// ReopenSession is the literal inverse of CloseSession
func (s *Service) ReopenSession(ctx context.Context, actor *model.User, sessionID model.SessionID) (*model.Session, error) {
	session, err := s.storage.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if err := authorize(session, actor); err != nil {
		return nil, err
	}
	if session.Status != model.SessionStatusClosed {
		return nil, model.ErrSessionNotClosed
	}

	// Reopening must not break the single-ACTIVE-session invariant
	if _, err := s.storage.GetActiveSession(ctx); err == nil {
		return nil, model.ErrActiveSessionExists
	} else if !errors.Is(err, model.ErrSessionNotFound) {
		return nil, err
	}

	session.Status = model.SessionStatusActive
	session.ClosedAt = nil
	session.UpdatedAt = s.clock.Now()

	if err := s.storage.SaveSession(ctx, session); err != nil {
		return nil, err
	}

	s.logger.Info("session reopened", slog.String("session_id", string(sessionID)))

	return session, nil
}

// SetArchived flips the archive flag; works on any status
func (s *Service) SetArchived(ctx context.Context, actor *model.User, sessionID model.SessionID, archived bool) (*model.Session, error) {
	session, err := s.storage.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if err := authorize(session, actor); err != nil {
		return nil, err
	}

	session.IsArchived = archived
	session.UpdatedAt = s.clock.Now()

	if err := s.storage.SaveSession(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

// UpdateNotes replaces the session notes; works on any status
func (s *Service) UpdateNotes(ctx context.Context, actor *model.User, sessionID model.SessionID, notes string) (*model.Session, error) {
	session, err := s.storage.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if err := authorize(session, actor); err != nil {
		return nil, err
	}

	session.Notes = notes
	session.UpdatedAt = s.clock.Now()

	if err := s.storage.SaveSession(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

// UpdateDate moves a session to a different date. Admin only: the date
// drives year scoping in statistics, so it is deliberately locked down.
func (s *Service) UpdateDate(ctx context.Context, actor *model.User, sessionID model.SessionID, date time.Time) (*model.Session, error) {
	if !actor.IsAdmin() {
		return nil, model.ErrAdminOnly
	}
	if date.IsZero() {
		return nil, model.ErrInvalidSessionDate
	}

	session, err := s.storage.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	session.Date = date
	session.UpdatedAt = s.clock.Now()

	if err := s.storage.SaveSession(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

// UpdateHostLocation records whose place the game is at; works on any status
func (s *Service) UpdateHostLocation(ctx context.Context, actor *model.User, sessionID model.SessionID, locationID *model.UserID) (*model.Session, error) {
	session, err := s.storage.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if err := authorize(session, actor); err != nil {
		return nil, err
	}

	session.HostLocationID = locationID
	session.UpdatedAt = s.clock.Now()

	if err := s.storage.SaveSession(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

// PiggyBankTotal sums the skim across all closed, non-archived sessions
func (s *Service) PiggyBankTotal(ctx context.Context) (int, error) {
	sessions, err := s.storage.ListSessions(ctx, storage.SessionFilter{
		Status: model.SessionStatusClosed,
	})
	if err != nil {
		return 0, err
	}

	total := 0
	for _, session := range sessions {
		total += session.PiggyBank
	}
	return total, nil
}

// ledgerState helpers

func (st *ledgerState) appendTx(sessionID model.SessionID, txType model.TransactionType, playerID, targetID model.UserID, amount int, at time.Time) {
	st.txs = append(st.txs, &model.Transaction{
		ID:             model.TransactionID(uuid.NewString()),
		SessionID:      sessionID,
		Type:           txType,
		PlayerID:       playerID,
		TargetPlayerID: targetID,
		Amount:         amount,
		CreatedAt:      at,
	})
}

func (st *ledgerState) findTx(id model.TransactionID) *model.Transaction {
	for _, tx := range st.txs {
		if tx.ID == id {
			return tx
		}
	}
	return nil
}

// latestTx returns the most recent record of the given type for a player
func (st *ledgerState) latestTx(txType model.TransactionType, playerID model.UserID) *model.Transaction {
	for i := len(st.txs) - 1; i >= 0; i-- {
		if st.txs[i].Type == txType && st.txs[i].PlayerID == playerID {
			return st.txs[i]
		}
	}
	return nil
}

func (st *ledgerState) removeTx(id model.TransactionID) {
	for i, tx := range st.txs {
		if tx.ID == id {
			st.txs = append(st.txs[:i], st.txs[i+1:]...)
			return
		}
	}
}

// removeTransferFor deletes the most recent transfer between a seller and
// buyer, matching the reversal of one SELL_BUY_IN record
func (st *ledgerState) removeTransferFor(sellerID, buyerID model.UserID) {
	for i := len(st.transfers) - 1; i >= 0; i-- {
		t := st.transfers[i]
		if t.SellerID == sellerID && t.BuyerID == buyerID {
			st.transfers = append(st.transfers[:i], st.transfers[i+1:]...)
			return
		}
	}
}

func sortSessionsByDateDesc(sessions []*model.Session) {
	sort.Slice(sessions, func(i, j int) bool {
		return sessions[i].Date.After(sessions[j].Date)
	})
}
