package model

import (
	"sort"
	"time"
)

// BuyInAmount is the fixed value of a single buy-in chip in whole currency units.
// All money in the ledger is an integer multiple of this denomination.
const BuyInAmount = 10

// PiggyBankContribution is skimmed from the pot once per team player per session
const PiggyBankContribution = 1

// SessionID uniquely identifies a session
type SessionID string

// SessionStatus represents the lifecycle state of a session
type SessionStatus string

const (
	SessionStatusActive SessionStatus = "ACTIVE"
	SessionStatusClosed SessionStatus = "CLOSED"
)

// PlayerEntry is a player's ledger state within one session
type PlayerEntry struct {
	UserID     UserID
	UserName   string
	BuyInCount int  // buy-in chips currently held
	ChipsSold  int  // cash received for chips sold mid-session
	CashOut    *int // nil while still playing
	JoinedAt   time.Time
	LeftAt     *time.Time
}

// NetResult returns the player's settled gain or loss.
// Meaningful only once CashOut is set; an unsettled player counts as zero cash out.
func (p *PlayerEntry) NetResult() int {
	cashOut := 0
	if p.CashOut != nil {
		cashOut = *p.CashOut
	}
	return cashOut + p.ChipsSold - p.BuyInCount*BuyInAmount
}

// Settled reports whether the player has cashed out
func (p *PlayerEntry) Settled() bool {
	return p.CashOut != nil
}

// Session is the aggregate for one poker night: per-player chip state,
// the piggy bank skim, and lifecycle flags. At most one session is ACTIVE
// system-wide, enforced at creation time.
type Session struct {
	ID             SessionID
	Date           time.Time
	Status         SessionStatus
	HostID         UserID
	HostLocationID *UserID // whose place the game is at, if recorded
	IsArchived     bool
	Notes          string

	// Players keyed by user ID; keys are unique per session
	Players map[UserID]*PlayerEntry

	// PiggyBank is the session's accumulated skim, one contribution per
	// team player who joined. It is an account of its own, never a player.
	PiggyBank int

	// TotalPot is snapshotted from total buy-ins when the session closes
	TotalPot int

	ClosedAt  *time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Player returns the entry for the given user, or nil if they never joined
func (s *Session) Player(userID UserID) *PlayerEntry {
	return s.Players[userID]
}

// TotalBuyIns returns the combined value of every chip bought in
func (s *Session) TotalBuyIns() int {
	total := 0
	for _, p := range s.Players {
		total += p.BuyInCount * BuyInAmount
	}
	return total
}

// DistributablePot is the amount that must be fully returned via cash-outs
// before the session can close: total buy-ins minus the piggy bank skim.
func (s *Session) DistributablePot() int {
	return s.TotalBuyIns() - s.PiggyBank
}

// EffectiveCashOuts sums everything paid back out: recorded cash-outs plus
// cash credited to sellers for chips sold mid-session.
func (s *Session) EffectiveCashOuts() int {
	total := 0
	for _, p := range s.Players {
		if p.CashOut != nil {
			total += *p.CashOut
		}
		total += p.ChipsSold
	}
	return total
}

// CheckBalance verifies the close preconditions: the distributable pot must
// equal the effective cash-outs and every player still holding chips must
// have settled. Returns nil when the session can close.
func (s *Session) CheckBalance() error {
	pot := s.DistributablePot()
	cashOuts := s.EffectiveCashOuts()
	if pot != cashOuts {
		return &UnbalancedError{DistributablePot: pot, EffectiveCashOuts: cashOuts}
	}
	for _, p := range s.Players {
		if p.BuyInCount > 0 && p.CashOut == nil {
			return ErrPlayersStillActive
		}
	}
	return nil
}

// SortedPlayers returns the player entries ordered by join time
func (s *Session) SortedPlayers() []*PlayerEntry {
	players := make([]*PlayerEntry, 0, len(s.Players))
	for _, p := range s.Players {
		players = append(players, p)
	}
	sort.Slice(players, func(i, j int) bool {
		return players[i].JoinedAt.Before(players[j].JoinedAt)
	})
	return players
}
