package model

// LedgerCommand is a tagged variant for the per-player ledger operations.
// Handlers decode the wire action into one of these and the ledger service
// dispatches with an exhaustive type switch, so an unknown action can never
// reach the mutation path.
type LedgerCommand interface {
	ledgerCommand()
}

// BuyInCommand adds one buy-in chip to the player
type BuyInCommand struct{}

// RemoveBuyInCommand takes back one buy-in chip
type RemoveBuyInCommand struct{}

// SellCommand sells one chip's worth of value to another active player.
// The seller keeps their committed stake and is credited cash; the buyer's
// chip count grows.
type SellCommand struct {
	BuyerID UserID
}

// CashOutCommand settles the player with the given amount
type CashOutCommand struct {
	Amount int
}

// UndoCashOutCommand reverses the player's most recent cash-out
type UndoCashOutCommand struct{}

func (BuyInCommand) ledgerCommand()       {}
func (RemoveBuyInCommand) ledgerCommand() {}
func (SellCommand) ledgerCommand()        {}
func (CashOutCommand) ledgerCommand()     {}
func (UndoCashOutCommand) ledgerCommand() {}
