package model

import "time"

// TransactionID uniquely identifies a transaction record
type TransactionID string

// TransactionType classifies a ledger mutation
type TransactionType string

const (
	TransactionBuyIn       TransactionType = "BUY_IN"
	TransactionRemoveBuyIn TransactionType = "REMOVE_BUY_IN"
	TransactionSellBuyIn   TransactionType = "SELL_BUY_IN"
	TransactionCashOut     TransactionType = "CASH_OUT"
)

// Transaction is one append-only record of a ledger mutation. Records are
// immutable; an undo deletes the record after applying its inverse.
// Replaying a session's records ordered by CreatedAt from an empty aggregate
// reconstructs its player entries exactly.
type Transaction struct {
	ID        TransactionID
	SessionID SessionID
	Type      TransactionType
	PlayerID  UserID
	// TargetPlayerID is the buyer on SELL_BUY_IN records, empty otherwise
	TargetPlayerID UserID
	Amount         int
	CreatedAt      time.Time
}

// ReplayEntries folds a session's records, in log order, into a fresh set of
// player entries. Undone and reversed operations leave no record, so the
// result matches the live aggregate's ledger state.
func ReplayEntries(txs []*Transaction) map[UserID]*PlayerEntry {
	entries := make(map[UserID]*PlayerEntry)
	entry := func(id UserID, at time.Time) *PlayerEntry {
		e, ok := entries[id]
		if !ok {
			e = &PlayerEntry{UserID: id, JoinedAt: at}
			entries[id] = e
		}
		return e
	}

	for _, tx := range txs {
		switch tx.Type {
		case TransactionBuyIn:
			entry(tx.PlayerID, tx.CreatedAt).BuyInCount++
		case TransactionRemoveBuyIn:
			entry(tx.PlayerID, tx.CreatedAt).BuyInCount--
		case TransactionSellBuyIn:
			entry(tx.PlayerID, tx.CreatedAt).ChipsSold += tx.Amount
			entry(tx.TargetPlayerID, tx.CreatedAt).BuyInCount++
		case TransactionCashOut:
			e := entry(tx.PlayerID, tx.CreatedAt)
			amount := tx.Amount
			e.CashOut = &amount
			left := tx.CreatedAt
			e.LeftAt = &left
		}
	}
	return entries
}

// TransferID uniquely identifies a buy-in transfer record
type TransferID string

// BuyInTransfer is a denormalized record of a completed chip sale.
// It is derived from SELL_BUY_IN transactions and is informational only.
type BuyInTransfer struct {
	ID        TransferID
	SessionID SessionID
	SellerID  UserID
	BuyerID   UserID
	Amount    int
	CreatedAt time.Time
}
