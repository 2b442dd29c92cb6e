package model

import (
	"errors"
	"fmt"
)

// Common errors used across the application
var (
	// User errors
	ErrUserNotFound = errors.New("user not found")

	// Authorization errors
	ErrNotHost   = errors.New("caller is not the session host or an admin")
	ErrAdminOnly = errors.New("operation requires the admin role")

	// Session errors
	ErrSessionNotFound     = errors.New("session not found")
	ErrSessionNotActive    = errors.New("session is not active")
	ErrSessionNotClosed    = errors.New("session is not closed")
	ErrActiveSessionExists = errors.New("an active session already exists")
	ErrPlayersStillActive  = errors.New("all players holding chips must cash out before closing")
	ErrInvalidSessionDate  = errors.New("invalid session date")

	// Player ledger errors
	ErrPlayerNotFound   = errors.New("player not found in session")
	ErrAlreadyJoined    = errors.New("player already in session")
	ErrAlreadySettled   = errors.New("player has already cashed out")
	ErrNoChipsToRemove  = errors.New("player has no buy-ins to remove")
	ErrBuyerUnavailable = errors.New("buyer not found or already cashed out")
	ErrSelfSale         = errors.New("player cannot sell a buy-in to themselves")
	ErrNotCashedOut     = errors.New("player has not cashed out")
	ErrInvalidAmount    = errors.New("amount must be a non-negative number")

	// Transaction errors
	ErrTransactionNotFound = errors.New("transaction not found")

	// Special hand errors
	ErrSpecialHandNotFound = errors.New("special hand not found")
	ErrInvalidHandType     = errors.New("unrecognized hand type")
)

// UnbalancedError reports a failed close: the distributable pot does not
// match the effective cash-outs. The numbers are included so the host can
// locate the discrepancy.
type UnbalancedError struct {
	DistributablePot  int
	EffectiveCashOuts int
}

func (e *UnbalancedError) Error() string {
	return fmt.Sprintf(
		"cannot close session: distributable pot ($%d) does not match cash-outs ($%d)",
		e.DistributablePot, e.EffectiveCashOuts,
	)
}

// Discrepancy returns cash-outs minus pot, the amount the ledger is off by
func (e *UnbalancedError) Discrepancy() int {
	return e.EffectiveCashOuts - e.DistributablePot
}
