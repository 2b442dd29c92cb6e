package response

import (
	"time"

	"github.com/mcoot/pokernight-go/internal/model"
	"github.com/mcoot/pokernight-go/internal/services/auth"
	"github.com/mcoot/pokernight-go/internal/services/stats"
)

// UserResponse is the API representation of a user
type UserResponse struct {
	ID         string `json:"id"`
	Email      string `json:"email"`
	Name       string `json:"name"`
	Role       string `json:"role"`
	PlayerType string `json:"player_type"`
	IsActive   bool   `json:"is_active"`
	IsArchived bool   `json:"is_archived"`
}

// UserFromModel converts a model user to a response
func UserFromModel(u *model.User) UserResponse {
	return UserResponse{
		ID:         string(u.ID),
		Email:      u.Email,
		Name:       u.Name,
		Role:       string(u.Role),
		PlayerType: string(u.PlayerType),
		IsActive:   u.IsActive,
		IsArchived: u.IsArchived,
	}
}

// TokenResponse is returned on register and login
type TokenResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      UserResponse `json:"user"`
}

// TokenFromAuth converts an auth token to a response
func TokenFromAuth(t *auth.Token) TokenResponse {
	return TokenResponse{
		Token:     t.Value,
		ExpiresAt: t.ExpiresAt,
		User:      UserFromModel(&t.User),
	}
}

// PlayerEntryResponse is one player's line in a session
type PlayerEntryResponse struct {
	UserID     string     `json:"user_id"`
	Name       string     `json:"name"`
	BuyInCount int        `json:"buy_in_count"`
	BuyInTotal int        `json:"buy_in_total"`
	ChipsSold  int        `json:"chips_sold"`
	CashOut    *int       `json:"cash_out"`
	NetResult  *int       `json:"net_result"`
	JoinedAt   time.Time  `json:"joined_at"`
	LeftAt     *time.Time `json:"left_at,omitempty"`
}

// PlayerEntryFromModel converts a player entry to a response.
// NetResult is only meaningful once the player has settled.
func PlayerEntryFromModel(e *model.PlayerEntry) PlayerEntryResponse {
	resp := PlayerEntryResponse{
		UserID:     string(e.UserID),
		Name:       e.UserName,
		BuyInCount: e.BuyInCount,
		BuyInTotal: e.BuyInCount * model.BuyInAmount,
		ChipsSold:  e.ChipsSold,
		CashOut:    e.CashOut,
		JoinedAt:   e.JoinedAt,
		LeftAt:     e.LeftAt,
	}
	if e.Settled() {
		net := e.NetResult()
		resp.NetResult = &net
	}
	return resp
}

// SessionResponse is the API representation of a session
type SessionResponse struct {
	ID                    string                `json:"id"`
	Date                  time.Time             `json:"date"`
	Status                string                `json:"status"`
	HostID                string                `json:"host_id"`
	HostLocationID        *string               `json:"host_location_id,omitempty"`
	IsArchived            bool                  `json:"is_archived"`
	Notes                 string                `json:"notes,omitempty"`
	Players               []PlayerEntryResponse `json:"players"`
	PlayerCount           int                   `json:"player_count"`
	TotalBuyIns           int                   `json:"total_buy_ins"`
	DistributablePot      int                   `json:"distributable_pot"`
	EffectiveCashOuts     int                   `json:"effective_cash_outs"`
	TotalPot              int                   `json:"total_pot"`
	PiggyBankContribution int                   `json:"piggy_bank_contribution"`
	ClosedAt              *time.Time            `json:"closed_at,omitempty"`
	CreatedAt             time.Time             `json:"created_at"`
}

// SessionFromModel converts a session to a response. Players come out in
// join order; the piggy bank is surfaced as its own field, not a player.
func SessionFromModel(s *model.Session) SessionResponse {
	players := make([]PlayerEntryResponse, 0, len(s.Players))
	for _, entry := range s.SortedPlayers() {
		players = append(players, PlayerEntryFromModel(entry))
	}

	totalPot := s.TotalPot
	if s.Status == model.SessionStatusActive {
		totalPot = s.TotalBuyIns()
	}

	return SessionResponse{
		ID:                    string(s.ID),
		Date:                  s.Date,
		Status:                string(s.Status),
		HostID:                string(s.HostID),
		HostLocationID:        optionalUserID(s.HostLocationID),
		IsArchived:            s.IsArchived,
		Notes:                 s.Notes,
		Players:               players,
		PlayerCount:           len(players),
		TotalBuyIns:           s.TotalBuyIns(),
		DistributablePot:      s.DistributablePot(),
		EffectiveCashOuts:     s.EffectiveCashOuts(),
		TotalPot:              totalPot,
		PiggyBankContribution: s.PiggyBank,
		ClosedAt:              s.ClosedAt,
		CreatedAt:             s.CreatedAt,
	}
}

// SessionListResponse wraps a list of sessions
type SessionListResponse struct {
	Sessions []SessionResponse `json:"sessions"`
}

// SessionListFromModels converts sessions to a list response
func SessionListFromModels(sessions []*model.Session) SessionListResponse {
	result := SessionListResponse{Sessions: make([]SessionResponse, 0, len(sessions))}
	for _, s := range sessions {
		result.Sessions = append(result.Sessions, SessionFromModel(s))
	}
	return result
}

// TransactionResponse is the API representation of a log record
type TransactionResponse struct {
	ID             string    `json:"id"`
	Type           string    `json:"type"`
	PlayerID       string    `json:"player_id"`
	TargetPlayerID string    `json:"target_player_id,omitempty"`
	Amount         int       `json:"amount"`
	CreatedAt      time.Time `json:"created_at"`
}

// TransactionFromModel converts a transaction to a response
func TransactionFromModel(t *model.Transaction) TransactionResponse {
	return TransactionResponse{
		ID:             string(t.ID),
		Type:           string(t.Type),
		PlayerID:       string(t.PlayerID),
		TargetPlayerID: string(t.TargetPlayerID),
		Amount:         t.Amount,
		CreatedAt:      t.CreatedAt,
	}
}

// TransferResponse is the API representation of a chip sale record
type TransferResponse struct {
	ID        string    `json:"id"`
	SellerID  string    `json:"seller_id"`
	BuyerID   string    `json:"buyer_id"`
	Amount    int       `json:"amount"`
	CreatedAt time.Time `json:"created_at"`
}

// TransferFromModel converts a transfer to a response
func TransferFromModel(t *model.BuyInTransfer) TransferResponse {
	return TransferResponse{
		ID:        string(t.ID),
		SellerID:  string(t.SellerID),
		BuyerID:   string(t.BuyerID),
		Amount:    t.Amount,
		CreatedAt: t.CreatedAt,
	}
}

// SessionDetailResponse is a session with its log, transfers and hands
type SessionDetailResponse struct {
	SessionResponse
	Transactions []TransactionResponse `json:"transactions"`
	Transfers    []TransferResponse    `json:"transfers"`
	SpecialHands []SpecialHandResponse `json:"special_hands"`
}

// SpecialHandResponse is the API representation of a special hand
type SpecialHandResponse struct {
	ID          string    `json:"id"`
	SessionID   string    `json:"session_id"`
	PlayerID    string    `json:"player_id"`
	HandType    string    `json:"hand_type"`
	Label       string    `json:"label"`
	Strength    int       `json:"strength"`
	Cards       string    `json:"cards,omitempty"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// SpecialHandFromModel converts a special hand to a response
func SpecialHandFromModel(h *model.SpecialHand) SpecialHandResponse {
	return SpecialHandResponse{
		ID:          string(h.ID),
		SessionID:   string(h.SessionID),
		PlayerID:    string(h.PlayerID),
		HandType:    string(h.HandType),
		Label:       h.HandType.Label(),
		Strength:    h.HandType.Strength(),
		Cards:       h.Cards,
		Description: h.Description,
		CreatedAt:   h.CreatedAt,
	}
}

// StatsResponse is the full year report
type StatsResponse struct {
	Year           int                       `json:"year"`
	TotalSessions  int                       `json:"total_sessions"`
	PiggyBankTotal int                       `json:"piggy_bank_total"`
	Players        []PlayerStatsResponse     `json:"players"`
	Sessions       []SessionSummaryResponse  `json:"sessions"`
	Cumulative     []CumulativePointResponse `json:"cumulative"`
	Asterisks      []AsteriskEntryResponse   `json:"asterisks"`
	Hosting        []HostingEntryResponse    `json:"hosting"`
	Timing         []PlayerTimingResponse    `json:"timing"`
}

// PlayerStatsResponse is one player's aggregate line
type PlayerStatsResponse struct {
	UserID         string  `json:"user_id"`
	Name           string  `json:"name"`
	TotalBuyIns    int     `json:"total_buy_ins"`
	TotalCashOut   int     `json:"total_cash_out"`
	NetGainLoss    int     `json:"net_gain_loss"`
	SessionsPlayed int     `json:"sessions_played"`
	AttendanceRate float64 `json:"attendance_rate"`
	WinRate        float64 `json:"win_rate"`
	AvgGainLoss    float64 `json:"avg_gain_loss"`
	BiggestWin     int     `json:"biggest_win"`
	BiggestLoss    int     `json:"biggest_loss"`
}

// SessionSummaryResponse is one session's line in the report
type SessionSummaryResponse struct {
	SessionID       string         `json:"session_id"`
	Date            time.Time      `json:"date"`
	TotalPot        int            `json:"total_pot"`
	PiggyBank       int            `json:"piggy_bank"`
	DurationMinutes float64        `json:"duration_minutes"`
	NetResults      map[string]int `json:"net_results"`
}

// CumulativePointResponse is one point of the cumulative earnings series
type CumulativePointResponse struct {
	Date   time.Time      `json:"date"`
	Label  string         `json:"label"`
	Totals map[string]int `json:"totals"`
}

// AsteriskEntryResponse is one leaderboard row
type AsteriskEntryResponse struct {
	UserID         string                `json:"user_id"`
	Name           string                `json:"name"`
	TotalAsterisks int                   `json:"total_asterisks"`
	StrongestHand  string                `json:"strongest_hand"`
	Hands          []SpecialHandResponse `json:"hands"`
}

// HostingEntryResponse is one host-location count
type HostingEntryResponse struct {
	UserID   string `json:"user_id"`
	Name     string `json:"name"`
	Sessions int    `json:"sessions"`
}

// PlayerTimingResponse is one player's behavioral analytics
type PlayerTimingResponse struct {
	UserID              string              `json:"user_id"`
	Name                string              `json:"name"`
	TotalReBuys         int                 `json:"total_re_buys"`
	EarlyReBuys         int                 `json:"early_re_buys"`
	LateReBuys          int                 `json:"late_re_buys"`
	Velocity            *float64            `json:"velocity,omitempty"`
	AvgTimeToFirstReBuy *float64            `json:"avg_time_to_first_re_buy,omitempty"`
	SurvivalRate        *float64            `json:"survival_rate,omitempty"`
	Tilt                *TiltScoreResponse  `json:"tilt,omitempty"`
	QuarterHeatmap      *[4]float64         `json:"quarter_heatmap,omitempty"`
	SellTiming          *SellTimingResponse `json:"sell_timing,omitempty"`
	LateNightIndex      *float64            `json:"late_night_index,omitempty"`
}

// TiltScoreResponse reports re-buy bursts
type TiltScoreResponse struct {
	BurstReBuys int     `json:"burst_re_buys"`
	TotalReBuys int     `json:"total_re_buys"`
	TiltRate    float64 `json:"tilt_rate"`
}

// SellTimingResponse reports chip-sale timing
type SellTimingResponse struct {
	SellCount  int      `json:"sell_count"`
	BuyCount   int      `json:"buy_count"`
	AvgSellPct *float64 `json:"avg_sell_pct,omitempty"`
	AvgBuyPct  *float64 `json:"avg_buy_pct,omitempty"`
}

// StatsFromReport converts a stats report to a response
func StatsFromReport(r *stats.Report) StatsResponse {
	resp := StatsResponse{
		Year:           r.Year,
		TotalSessions:  r.TotalSessions,
		PiggyBankTotal: r.PiggyBankTotal,
		Players:        make([]PlayerStatsResponse, 0, len(r.Players)),
		Sessions:       make([]SessionSummaryResponse, 0, len(r.Sessions)),
		Cumulative:     make([]CumulativePointResponse, 0, len(r.Cumulative)),
		Asterisks:      make([]AsteriskEntryResponse, 0, len(r.Asterisks)),
		Hosting:        make([]HostingEntryResponse, 0, len(r.Hosting)),
		Timing:         make([]PlayerTimingResponse, 0, len(r.Timing)),
	}

	for _, p := range r.Players {
		resp.Players = append(resp.Players, PlayerStatsResponse{
			UserID:         string(p.UserID),
			Name:           p.Name,
			TotalBuyIns:    p.TotalBuyIns,
			TotalCashOut:   p.TotalCashOut,
			NetGainLoss:    p.NetGainLoss,
			SessionsPlayed: p.SessionsPlayed,
			AttendanceRate: p.AttendanceRate,
			WinRate:        p.WinRate,
			AvgGainLoss:    p.AvgGainLoss,
			BiggestWin:     p.BiggestWin,
			BiggestLoss:    p.BiggestLoss,
		})
	}

	for _, s := range r.Sessions {
		resp.Sessions = append(resp.Sessions, SessionSummaryResponse{
			SessionID:       string(s.SessionID),
			Date:            s.Date,
			TotalPot:        s.TotalPot,
			PiggyBank:       s.PiggyBank,
			DurationMinutes: s.DurationMinutes,
			NetResults:      s.NetResults,
		})
	}

	for _, c := range r.Cumulative {
		resp.Cumulative = append(resp.Cumulative, CumulativePointResponse{
			Date:   c.Date,
			Label:  c.Label,
			Totals: c.Totals,
		})
	}

	for _, a := range r.Asterisks {
		entry := AsteriskEntryResponse{
			UserID:         string(a.UserID),
			Name:           a.Name,
			TotalAsterisks: a.TotalAsterisks,
			StrongestHand:  string(a.StrongestHand),
			Hands:          make([]SpecialHandResponse, 0, len(a.Hands)),
		}
		for _, h := range a.Hands {
			entry.Hands = append(entry.Hands, SpecialHandFromModel(h))
		}
		resp.Asterisks = append(resp.Asterisks, entry)
	}

	for _, h := range r.Hosting {
		resp.Hosting = append(resp.Hosting, HostingEntryResponse{
			UserID:   string(h.UserID),
			Name:     h.Name,
			Sessions: h.Sessions,
		})
	}

	for _, t := range r.Timing {
		timing := PlayerTimingResponse{
			UserID:              string(t.UserID),
			Name:                t.Name,
			TotalReBuys:         t.TotalReBuys,
			EarlyReBuys:         t.EarlyReBuys,
			LateReBuys:          t.LateReBuys,
			Velocity:            t.Velocity,
			AvgTimeToFirstReBuy: t.AvgTimeToFirstReBuy,
			SurvivalRate:        t.SurvivalRate,
			QuarterHeatmap:      t.QuarterHeatmap,
			LateNightIndex:      t.LateNightIndex,
		}
		if t.Tilt != nil {
			timing.Tilt = &TiltScoreResponse{
				BurstReBuys: t.Tilt.BurstReBuys,
				TotalReBuys: t.Tilt.TotalReBuys,
				TiltRate:    t.Tilt.TiltRate,
			}
		}
		if t.SellTiming != nil {
			timing.SellTiming = &SellTimingResponse{
				SellCount:  t.SellTiming.SellCount,
				BuyCount:   t.SellTiming.BuyCount,
				AvgSellPct: t.SellTiming.AvgSellPct,
				AvgBuyPct:  t.SellTiming.AvgBuyPct,
			}
		}
		resp.Timing = append(resp.Timing, timing)
	}

	return resp
}

// YearsResponse lists years with closed sessions
type YearsResponse struct {
	Years []int `json:"years"`
}

// PiggyBankResponse is the global piggy bank total
type PiggyBankResponse struct {
	Total int `json:"total"`
}

func optionalUserID(id *model.UserID) *string {
	if id == nil {
		return nil
	}
	s := string(*id)
	return &s
}
