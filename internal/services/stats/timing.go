package stats

import (
	"sort"
	"time"

	"github.com/mcoot/pokernight-go/internal/model"
)

// Thresholds for the behavioral analytics. These are tuned for casual home
// games, not tournament play.
const (
	burstGap        = 15 * time.Minute
	minPlayTime     = 30 * time.Minute
	minTiltReBuys   = 4
	minLateDuration = time.Hour
)

// PlayerTiming is one team player's behavioral analytics for the year.
// Pointer fields are nil when the player doesn't meet that metric's minimum
// sample size.
type PlayerTiming struct {
	UserID      model.UserID
	Name        string
	TotalReBuys int
	EarlyReBuys int
	LateReBuys  int

	// Velocity is re-buys per hour of play time, pooled across qualifying
	// sessions (play time >= 0.5h; needs >=2 such sessions and >=1 re-buy)
	Velocity *float64

	// AvgTimeToFirstReBuy is minutes from first buy-in to first re-buy,
	// averaged over sessions where a re-buy happened (needs >=2)
	AvgTimeToFirstReBuy *float64
	// SurvivalRate is the percentage of played sessions with zero re-buys
	SurvivalRate *float64

	Tilt *TiltScore

	// QuarterHeatmap is the average buy-in count (initial included) landing
	// in each session quarter (needs >=3 sessions)
	QuarterHeatmap *[4]float64

	SellTiming *SellTiming

	// LateNightIndex compares last-quarter re-buy rate to overall re-buy
	// rate, averaged over sessions >=1h with at least one re-buy (needs >=3)
	LateNightIndex *float64
}

// TiltScore reports re-buy bursts: consecutive re-buys within 15 minutes of
// each other
type TiltScore struct {
	BurstReBuys int
	TotalReBuys int
	TiltRate    float64
}

// SellTiming reports how far into a session a player sells or buys chips
// from others, as a percentage of elapsed session time
type SellTiming struct {
	SellCount  int
	BuyCount   int
	AvgSellPct *float64
	AvgBuyPct  *float64
}

// timeline is a session's playable window: first buy-in to last cash-out
type timeline struct {
	start time.Time
	end   time.Time
}

func (tl timeline) duration() time.Duration {
	return tl.end.Sub(tl.start)
}

// quarter buckets a time into the session's four equal quarters
func (tl timeline) quarter(t time.Time) int {
	d := tl.duration()
	if d <= 0 {
		return 0
	}
	q := int(4 * t.Sub(tl.start) / d)
	if q < 0 {
		q = 0
	}
	if q > 3 {
		q = 3
	}
	return q
}

// elapsedPct is how far through the session a time falls, 0-100
func (tl timeline) elapsedPct(t time.Time) float64 {
	d := tl.duration()
	if d <= 0 {
		return 0
	}
	pct := float64(t.Sub(tl.start)) / float64(d) * 100
	if pct < 0 {
		pct = 0
	}
	if pct > 100 {
		pct = 100
	}
	return pct
}

// timelineOf derives the session timeline from its log; ok is false for
// sessions with no buy-in or no cash-out, which are not analyzable
func timelineOf(txs []*model.Transaction) (timeline, bool) {
	var tl timeline
	haveStart, haveEnd := false, false
	for _, tx := range txs {
		switch tx.Type {
		case model.TransactionBuyIn:
			if !haveStart || tx.CreatedAt.Before(tl.start) {
				tl.start = tx.CreatedAt
				haveStart = true
			}
		case model.TransactionCashOut:
			if !haveEnd || tx.CreatedAt.After(tl.end) {
				tl.end = tx.CreatedAt
				haveEnd = true
			}
		}
	}
	return tl, haveStart && haveEnd && tl.end.After(tl.start)
}

// playerSession is one player's view of one analyzable session
type playerSession struct {
	tl       timeline
	buyIns   []time.Time // sorted, initial included
	sells    []time.Time // as seller
	buys     []time.Time // as buyer of someone else's chip
	cashOut  *time.Time
	playTime time.Duration // first buy-in to own cash-out, or session end
}

func (p *playerSession) reBuys() []time.Time {
	if len(p.buyIns) <= 1 {
		return nil
	}
	return p.buyIns[1:]
}

// collectPlayerSessions splits each analyzable session log into per-player
// views for the given team players
func collectPlayerSessions(logs []*sessionLog, teamPlayers map[model.UserID]*model.User) map[model.UserID][]*playerSession {
	perPlayer := make(map[model.UserID][]*playerSession)

	for _, l := range logs {
		tl, ok := timelineOf(l.txs)
		if !ok {
			continue
		}

		views := make(map[model.UserID]*playerSession)
		view := func(id model.UserID) *playerSession {
			if v, ok := views[id]; ok {
				return v
			}
			v := &playerSession{tl: tl}
			views[id] = v
			return v
		}

		for _, tx := range l.txs {
			switch tx.Type {
			case model.TransactionBuyIn:
				if _, ok := teamPlayers[tx.PlayerID]; ok {
					v := view(tx.PlayerID)
					v.buyIns = append(v.buyIns, tx.CreatedAt)
				}
			case model.TransactionSellBuyIn:
				if _, ok := teamPlayers[tx.PlayerID]; ok {
					v := view(tx.PlayerID)
					v.sells = append(v.sells, tx.CreatedAt)
				}
				if _, ok := teamPlayers[tx.TargetPlayerID]; ok {
					v := view(tx.TargetPlayerID)
					v.buys = append(v.buys, tx.CreatedAt)
				}
			case model.TransactionCashOut:
				if _, ok := teamPlayers[tx.PlayerID]; ok {
					v := view(tx.PlayerID)
					t := tx.CreatedAt
					v.cashOut = &t
				}
			}
		}

		for id, v := range views {
			if len(v.buyIns) == 0 {
				continue
			}
			sort.Slice(v.buyIns, func(i, j int) bool { return v.buyIns[i].Before(v.buyIns[j]) })

			end := tl.end
			if v.cashOut != nil {
				end = *v.cashOut
			}
			v.playTime = end.Sub(v.buyIns[0])

			perPlayer[id] = append(perPlayer[id], v)
		}
	}
	return perPlayer
}

// timingAnalytics computes the behavioral diagnostics for every team player
// with at least one analyzable session
func timingAnalytics(logs []*sessionLog, teamPlayers map[model.UserID]*model.User) []*PlayerTiming {
	perPlayer := collectPlayerSessions(logs, teamPlayers)

	result := make([]*PlayerTiming, 0, len(perPlayer))
	for id, sessions := range perPlayer {
		pt := &PlayerTiming{
			UserID: id,
			Name:   teamPlayers[id].Name,
		}

		computeSplit(pt, sessions)
		computeVelocity(pt, sessions)
		computeFirstReBuy(pt, sessions)
		computeTilt(pt, sessions)
		computeHeatmap(pt, sessions)
		computeSellTiming(pt, sessions)
		computeLateNight(pt, sessions)

		result = append(result, pt)
	}

	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Name < result[j].Name
	})
	return result
}

func computeSplit(pt *PlayerTiming, sessions []*playerSession) {
	for _, ps := range sessions {
		mid := ps.tl.start.Add(ps.tl.duration() / 2)
		for _, t := range ps.reBuys() {
			pt.TotalReBuys++
			if t.Before(mid) {
				pt.EarlyReBuys++
			} else {
				pt.LateReBuys++
			}
		}
	}
}

func computeVelocity(pt *PlayerTiming, sessions []*playerSession) {
	qualifying := 0
	reBuys := 0
	var playTime time.Duration
	for _, ps := range sessions {
		if ps.playTime < minPlayTime {
			continue
		}
		qualifying++
		reBuys += len(ps.reBuys())
		playTime += ps.playTime
	}

	if qualifying < 2 || reBuys < 1 || playTime <= 0 {
		return
	}
	v := round2(float64(reBuys) / playTime.Hours())
	pt.Velocity = &v
}

func computeFirstReBuy(pt *PlayerTiming, sessions []*playerSession) {
	var total float64
	count := 0
	survived := 0
	for _, ps := range sessions {
		rb := ps.reBuys()
		if len(rb) == 0 {
			survived++
			continue
		}
		total += rb[0].Sub(ps.buyIns[0]).Minutes()
		count++
	}

	rate := round2(float64(survived) / float64(len(sessions)) * 100)
	pt.SurvivalRate = &rate

	if count >= 2 {
		avg := round2(total / float64(count))
		pt.AvgTimeToFirstReBuy = &avg
	}
}

func computeTilt(pt *PlayerTiming, sessions []*playerSession) {
	total := 0
	burst := 0
	for _, ps := range sessions {
		rb := ps.reBuys()
		total += len(rb)

		inBurst := false
		for i := 1; i < len(rb); i++ {
			if rb[i].Sub(rb[i-1]) <= burstGap {
				if inBurst {
					burst++
				} else {
					// The pair that opens a burst both count
					burst += 2
					inBurst = true
				}
			} else {
				inBurst = false
			}
		}
	}

	if total < minTiltReBuys {
		return
	}
	pt.Tilt = &TiltScore{
		BurstReBuys: burst,
		TotalReBuys: total,
		TiltRate:    round2(float64(burst) / float64(total) * 100),
	}
}

func computeHeatmap(pt *PlayerTiming, sessions []*playerSession) {
	if len(sessions) < 3 {
		return
	}

	var totals [4]float64
	for _, ps := range sessions {
		for _, t := range ps.buyIns {
			totals[ps.tl.quarter(t)]++
		}
	}

	var heatmap [4]float64
	for i := range totals {
		heatmap[i] = round2(totals[i] / float64(len(sessions)))
	}
	pt.QuarterHeatmap = &heatmap
}

func computeSellTiming(pt *PlayerTiming, sessions []*playerSession) {
	var sellTotal, buyTotal float64
	sellCount, buyCount := 0, 0
	for _, ps := range sessions {
		for _, t := range ps.sells {
			sellTotal += ps.tl.elapsedPct(t)
			sellCount++
		}
		for _, t := range ps.buys {
			buyTotal += ps.tl.elapsedPct(t)
			buyCount++
		}
	}

	if sellCount < 2 && buyCount < 2 {
		return
	}

	st := &SellTiming{SellCount: sellCount, BuyCount: buyCount}
	if sellCount >= 2 {
		avg := round2(sellTotal / float64(sellCount))
		st.AvgSellPct = &avg
	}
	if buyCount >= 2 {
		avg := round2(buyTotal / float64(buyCount))
		st.AvgBuyPct = &avg
	}
	pt.SellTiming = st
}

func computeLateNight(pt *PlayerTiming, sessions []*playerSession) {
	var total float64
	qualifying := 0
	for _, ps := range sessions {
		if ps.tl.duration() < minLateDuration {
			continue
		}
		rb := ps.reBuys()
		if len(rb) == 0 {
			continue
		}

		lastQuarter := 0
		for _, t := range rb {
			if ps.tl.quarter(t) == 3 {
				lastQuarter++
			}
		}

		// Last-quarter rate over overall rate; the durations cancel out to
		// lastQuarter*4/total
		total += float64(lastQuarter) * 4 / float64(len(rb))
		qualifying++
	}

	if qualifying < 3 {
		return
	}
	idx := round2(total / float64(qualifying))
	pt.LateNightIndex = &idx
}
