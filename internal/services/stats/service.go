package stats

import (
	"context"
	"log/slog"
	"math"
	"sort"
	"time"

	"github.com/mcoot/pokernight-go/internal/model"
	"github.com/mcoot/pokernight-go/internal/storage"
)

// Service derives the year-end report from closed sessions and their logs.
// Everything here is a pure function of stored state; the service holds no
// state of its own.
type Service struct {
	storage storage.Storage
	logger  *slog.Logger
}

// NewService creates a new stats Service
func NewService(storage storage.Storage, logger *slog.Logger) *Service {
	return &Service{
		storage: storage,
		logger:  logger,
	}
}

// Report is the full statistics output for one year
type Report struct {
	Year           int
	TotalSessions  int
	PiggyBankTotal int
	Players        []*PlayerStats
	Sessions       []*SessionSummary
	Cumulative     []*CumulativePoint
	Asterisks      []*AsteriskEntry
	Hosting        []*HostingEntry
	Timing         []*PlayerTiming
}

// PlayerStats is one team player's aggregate line for the year
type PlayerStats struct {
	UserID         model.UserID
	Name           string
	TotalBuyIns    int
	TotalCashOut   int
	NetGainLoss    int
	SessionsPlayed int
	AttendanceRate float64
	WinRate        float64
	AvgGainLoss    float64
	BiggestWin     int
	BiggestLoss    int
}

// SessionSummary is one closed session's line in the report
type SessionSummary struct {
	SessionID       model.SessionID
	Date            time.Time
	TotalPot        int
	PiggyBank       int
	DurationMinutes float64
	NetResults      map[string]int
}

// CumulativePoint is one session's running-total snapshot, keyed by player
// name for direct charting
type CumulativePoint struct {
	Date   time.Time
	Label  string
	Totals map[string]int
}

// AsteriskEntry is one row of the special-hands leaderboard
type AsteriskEntry struct {
	UserID         model.UserID
	Name           string
	TotalAsterisks int
	StrongestHand  model.HandType
	Hands          []*model.SpecialHand
}

// HostingEntry counts closed sessions per host location
type HostingEntry struct {
	UserID   model.UserID
	Name     string
	Sessions int
}

// sessionLog pairs a session with its transaction log for analysis
type sessionLog struct {
	session *model.Session
	txs     []*model.Transaction
}

// Report computes the full statistics output for a year. Only CLOSED,
// non-archived sessions dated in that year participate; per-player lines
// cover TEAM players only.
func (s *Service) Report(ctx context.Context, year int) (*Report, error) {
	sessions, err := s.storage.ListSessions(ctx, storage.SessionFilter{
		Status: model.SessionStatusClosed,
		Year:   year,
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(sessions, func(i, j int) bool {
		return sessions[i].Date.Before(sessions[j].Date)
	})

	users, err := s.storage.ListUsers(ctx)
	if err != nil {
		return nil, err
	}
	teamPlayers := make(map[model.UserID]*model.User)
	names := make(map[model.UserID]string)
	for _, u := range users {
		names[u.ID] = u.Name
		if u.PlayerType == model.PlayerTypeTeam {
			teamPlayers[u.ID] = u
		}
	}

	logs := make([]*sessionLog, 0, len(sessions))
	var hands []*model.SpecialHand
	piggyTotal := 0
	for _, session := range sessions {
		txs, err := s.storage.GetTransactions(ctx, session.ID)
		if err != nil {
			return nil, err
		}
		logs = append(logs, &sessionLog{session: session, txs: txs})

		sessionHands, err := s.storage.GetSpecialHandsForSession(ctx, session.ID)
		if err != nil {
			return nil, err
		}
		hands = append(hands, sessionHands...)

		piggyTotal += session.PiggyBank
	}

	report := &Report{
		Year:           year,
		TotalSessions:  len(sessions),
		PiggyBankTotal: piggyTotal,
		Players:        playerStats(sessions, teamPlayers),
		Sessions:       sessionSummaries(logs),
		Cumulative:     cumulativeSeries(sessions, teamPlayers),
		Asterisks:      asteriskLeaderboard(hands, names),
		Hosting:        hostingStats(sessions, names),
		Timing:         timingAnalytics(logs, teamPlayers),
	}

	s.logger.Debug("stats report computed",
		slog.Int("year", year),
		slog.Int("sessions", len(sessions)),
	)

	return report, nil
}

// Years lists the distinct years that have closed sessions, newest first
func (s *Service) Years(ctx context.Context) ([]int, error) {
	sessions, err := s.storage.ListSessions(ctx, storage.SessionFilter{
		Status: model.SessionStatusClosed,
	})
	if err != nil {
		return nil, err
	}

	seen := make(map[int]bool)
	var years []int
	for _, session := range sessions {
		y := session.Date.Year()
		if !seen[y] {
			seen[y] = true
			years = append(years, y)
		}
	}
	sort.Sort(sort.Reverse(sort.IntSlice(years)))
	return years, nil
}

func playerStats(sessions []*model.Session, teamPlayers map[model.UserID]*model.User) []*PlayerStats {
	totalSessions := len(sessions)
	byPlayer := make(map[model.UserID]*PlayerStats)
	wins := make(map[model.UserID]int)

	// Every active team player gets a line, zeroed if they never showed up
	for id, user := range teamPlayers {
		if user.IsActive && !user.IsArchived {
			byPlayer[id] = &PlayerStats{UserID: id, Name: user.Name}
		}
	}

	for _, session := range sessions {
		for id, entry := range session.Players {
			user, ok := teamPlayers[id]
			if !ok {
				continue
			}

			ps, ok := byPlayer[id]
			if !ok {
				ps = &PlayerStats{UserID: id, Name: user.Name}
				byPlayer[id] = ps
			}

			buyIns := entry.BuyInCount * model.BuyInAmount
			cashOut := entry.ChipsSold
			if entry.CashOut != nil {
				cashOut += *entry.CashOut
			}
			net := entry.NetResult()

			ps.TotalBuyIns += buyIns
			ps.TotalCashOut += cashOut
			ps.NetGainLoss += net
			ps.SessionsPlayed++
			if net > 0 {
				wins[id]++
				if net > ps.BiggestWin {
					ps.BiggestWin = net
				}
			}
			if net < 0 && -net > ps.BiggestLoss {
				ps.BiggestLoss = -net
			}
		}
	}

	result := make([]*PlayerStats, 0, len(byPlayer))
	for id, ps := range byPlayer {
		if totalSessions > 0 {
			ps.AttendanceRate = round2(float64(ps.SessionsPlayed) / float64(totalSessions) * 100)
		}
		if ps.SessionsPlayed > 0 {
			ps.WinRate = round2(float64(wins[id]) / float64(ps.SessionsPlayed))
			ps.AvgGainLoss = round2(float64(ps.NetGainLoss) / float64(ps.SessionsPlayed))
		}
		result = append(result, ps)
	}

	sort.SliceStable(result, func(i, j int) bool {
		if result[i].NetGainLoss != result[j].NetGainLoss {
			return result[i].NetGainLoss > result[j].NetGainLoss
		}
		return result[i].Name < result[j].Name
	})
	return result
}

func sessionSummaries(logs []*sessionLog) []*SessionSummary {
	summaries := make([]*SessionSummary, 0, len(logs))
	for _, l := range logs {
		summary := &SessionSummary{
			SessionID:  l.session.ID,
			Date:       l.session.Date,
			TotalPot:   l.session.TotalPot,
			PiggyBank:  l.session.PiggyBank,
			NetResults: make(map[string]int),
		}

		if tl, ok := timelineOf(l.txs); ok {
			summary.DurationMinutes = round2(tl.end.Sub(tl.start).Minutes())
		}

		for _, entry := range l.session.Players {
			summary.NetResults[entry.UserName] = entry.NetResult()
		}

		summaries = append(summaries, summary)
	}
	return summaries
}

func cumulativeSeries(sessions []*model.Session, teamPlayers map[model.UserID]*model.User) []*CumulativePoint {
	running := make(map[string]int)
	points := make([]*CumulativePoint, 0, len(sessions))

	// Active team players start the series at zero even before their first
	// session of the year
	for _, user := range teamPlayers {
		if user.IsActive && !user.IsArchived {
			running[user.Name] = 0
		}
	}

	for _, session := range sessions {
		for id, entry := range session.Players {
			user, ok := teamPlayers[id]
			if !ok {
				continue
			}
			running[user.Name] += entry.NetResult()
		}

		totals := make(map[string]int, len(running))
		for name, total := range running {
			totals[name] = total
		}

		points = append(points, &CumulativePoint{
			Date:   session.Date,
			Label:  session.Date.Format("Jan 2"),
			Totals: totals,
		})
	}
	return points
}

func asteriskLeaderboard(hands []*model.SpecialHand, names map[model.UserID]string) []*AsteriskEntry {
	byPlayer := make(map[model.UserID]*AsteriskEntry)
	var order []model.UserID

	for _, hand := range hands {
		entry, ok := byPlayer[hand.PlayerID]
		if !ok {
			entry = &AsteriskEntry{
				UserID: hand.PlayerID,
				Name:   names[hand.PlayerID],
			}
			byPlayer[hand.PlayerID] = entry
			order = append(order, hand.PlayerID)
		}
		entry.TotalAsterisks++
		entry.Hands = append(entry.Hands, hand)
		if hand.HandType.Strength() > entry.StrongestHand.Strength() {
			entry.StrongestHand = hand.HandType
		}
	}

	result := make([]*AsteriskEntry, 0, len(order))
	for _, id := range order {
		result = append(result, byPlayer[id])
	}

	// Stable sort keeps record order for full ties
	sort.SliceStable(result, func(i, j int) bool {
		if result[i].TotalAsterisks != result[j].TotalAsterisks {
			return result[i].TotalAsterisks > result[j].TotalAsterisks
		}
		return result[i].StrongestHand.Strength() > result[j].StrongestHand.Strength()
	})
	return result
}

func hostingStats(sessions []*model.Session, names map[model.UserID]string) []*HostingEntry {
	counts := make(map[model.UserID]int)
	for _, session := range sessions {
		// Sessions without a recorded location don't count toward anyone
		if session.HostLocationID == nil {
			continue
		}
		counts[*session.HostLocationID]++
	}

	result := make([]*HostingEntry, 0, len(counts))
	for id, count := range counts {
		result = append(result, &HostingEntry{
			UserID:   id,
			Name:     names[id],
			Sessions: count,
		})
	}
	sort.SliceStable(result, func(i, j int) bool {
		if result[i].Sessions != result[j].Sessions {
			return result[i].Sessions > result[j].Sessions
		}
		return result[i].Name < result[j].Name
	})
	return result
}

// round2 rounds to two decimal places
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
