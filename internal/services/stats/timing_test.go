package stats

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/pokernight-go/internal/model"
)

var timingBase = time.Date(2025, 6, 14, 19, 0, 0, 0, time.UTC)

func teamPlayer(id model.UserID, name string) *model.User {
	return &model.User{
		ID:         id,
		Name:       name,
		Role:       model.RolePlayer,
		PlayerType: model.PlayerTypeTeam,
		IsActive:   true,
	}
}

// buildLog assembles a session log from (type, player, target, offset) rows
type txRow struct {
	txType model.TransactionType
	player model.UserID
	target model.UserID
	at     time.Duration
}

func buildLog(id model.SessionID, date time.Time, rows []txRow) *sessionLog {
	txs := make([]*model.Transaction, 0, len(rows))
	for i, r := range rows {
		txs = append(txs, &model.Transaction{
			ID:             model.TransactionID(string(id) + "-" + string(rune('a'+i))),
			SessionID:      id,
			Type:           r.txType,
			PlayerID:       r.player,
			TargetPlayerID: r.target,
			Amount:         model.BuyInAmount,
			CreatedAt:      date.Add(r.at),
		})
	}
	return &sessionLog{
		session: &model.Session{ID: id, Date: date, Status: model.SessionStatusClosed},
		txs:     txs,
	}
}

func findTiming(t *testing.T, timing []*PlayerTiming, id model.UserID) *PlayerTiming {
	t.Helper()
	for _, pt := range timing {
		if pt.UserID == id {
			return pt
		}
	}
	require.Failf(t, "player has no timing entry", "id=%s", id)
	return nil
}

func TestTiltBurstScenario(t *testing.T) {
	team := map[model.UserID]*model.User{"alice": teamPlayer("alice", "Alice")}

	// Four re-buys: two consecutive 10-minute gaps form one burst of three,
	// then an isolated re-buy 40 minutes later
	log := buildLog("s1", timingBase, []txRow{
		{model.TransactionBuyIn, "alice", "", 0},
		{model.TransactionBuyIn, "alice", "", 60 * time.Minute},
		{model.TransactionBuyIn, "alice", "", 70 * time.Minute},
		{model.TransactionBuyIn, "alice", "", 80 * time.Minute},
		{model.TransactionBuyIn, "alice", "", 120 * time.Minute},
		{model.TransactionCashOut, "alice", "", 240 * time.Minute},
	})

	timing := timingAnalytics([]*sessionLog{log}, team)
	pt := findTiming(t, timing, "alice")

	require.NotNil(t, pt.Tilt)
	assert.Equal(t, 4, pt.Tilt.TotalReBuys)
	assert.Equal(t, 3, pt.Tilt.BurstReBuys)
	assert.Equal(t, 75.0, pt.Tilt.TiltRate)
}

func TestTiltRequiresFourReBuys(t *testing.T) {
	team := map[model.UserID]*model.User{"alice": teamPlayer("alice", "Alice")}

	log := buildLog("s1", timingBase, []txRow{
		{model.TransactionBuyIn, "alice", "", 0},
		{model.TransactionBuyIn, "alice", "", 10 * time.Minute},
		{model.TransactionBuyIn, "alice", "", 20 * time.Minute},
		{model.TransactionCashOut, "alice", "", 240 * time.Minute},
	})

	timing := timingAnalytics([]*sessionLog{log}, team)
	pt := findTiming(t, timing, "alice")
	assert.Nil(t, pt.Tilt)
}

func TestEarlyLateSplit(t *testing.T) {
	team := map[model.UserID]*model.User{"alice": teamPlayer("alice", "Alice")}

	// 4-hour session, midpoint at 2h: one re-buy each side
	log := buildLog("s1", timingBase, []txRow{
		{model.TransactionBuyIn, "alice", "", 0},
		{model.TransactionBuyIn, "alice", "", 30 * time.Minute},
		{model.TransactionBuyIn, "alice", "", 210 * time.Minute},
		{model.TransactionCashOut, "alice", "", 240 * time.Minute},
	})

	timing := timingAnalytics([]*sessionLog{log}, team)
	pt := findTiming(t, timing, "alice")

	assert.Equal(t, 2, pt.TotalReBuys)
	assert.Equal(t, 1, pt.EarlyReBuys)
	assert.Equal(t, 1, pt.LateReBuys)
}

func TestVelocityPoolsAcrossSessions(t *testing.T) {
	team := map[model.UserID]*model.User{"alice": teamPlayer("alice", "Alice")}

	// Two 2-hour sessions, three re-buys total across 4 pooled hours
	logs := []*sessionLog{
		buildLog("s1", timingBase, []txRow{
			{model.TransactionBuyIn, "alice", "", 0},
			{model.TransactionBuyIn, "alice", "", 30 * time.Minute},
			{model.TransactionBuyIn, "alice", "", 60 * time.Minute},
			{model.TransactionCashOut, "alice", "", 120 * time.Minute},
		}),
		buildLog("s2", timingBase.AddDate(0, 0, 7), []txRow{
			{model.TransactionBuyIn, "alice", "", 0},
			{model.TransactionBuyIn, "alice", "", 90 * time.Minute},
			{model.TransactionCashOut, "alice", "", 120 * time.Minute},
		}),
	}

	timing := timingAnalytics(logs, team)
	pt := findTiming(t, timing, "alice")

	require.NotNil(t, pt.Velocity)
	assert.Equal(t, 0.75, *pt.Velocity)
}

func TestVelocityRequiresTwoQualifyingSessions(t *testing.T) {
	team := map[model.UserID]*model.User{"alice": teamPlayer("alice", "Alice")}

	// Second session lasts 20 minutes for alice, below the half-hour floor
	logs := []*sessionLog{
		buildLog("s1", timingBase, []txRow{
			{model.TransactionBuyIn, "alice", "", 0},
			{model.TransactionBuyIn, "alice", "", 30 * time.Minute},
			{model.TransactionCashOut, "alice", "", 120 * time.Minute},
		}),
		buildLog("s2", timingBase.AddDate(0, 0, 7), []txRow{
			{model.TransactionBuyIn, "alice", "", 0},
			{model.TransactionCashOut, "alice", "", 20 * time.Minute},
		}),
	}

	timing := timingAnalytics(logs, team)
	pt := findTiming(t, timing, "alice")
	assert.Nil(t, pt.Velocity)
}

func TestTimeToFirstReBuyAndSurvival(t *testing.T) {
	team := map[model.UserID]*model.User{"alice": teamPlayer("alice", "Alice")}

	logs := []*sessionLog{
		// First re-buy after 20 minutes
		buildLog("s1", timingBase, []txRow{
			{model.TransactionBuyIn, "alice", "", 0},
			{model.TransactionBuyIn, "alice", "", 20 * time.Minute},
			{model.TransactionCashOut, "alice", "", 120 * time.Minute},
		}),
		// First re-buy after 40 minutes
		buildLog("s2", timingBase.AddDate(0, 0, 7), []txRow{
			{model.TransactionBuyIn, "alice", "", 0},
			{model.TransactionBuyIn, "alice", "", 40 * time.Minute},
			{model.TransactionCashOut, "alice", "", 120 * time.Minute},
		}),
		// No re-buy
		buildLog("s3", timingBase.AddDate(0, 0, 14), []txRow{
			{model.TransactionBuyIn, "alice", "", 0},
			{model.TransactionCashOut, "alice", "", 120 * time.Minute},
		}),
	}

	timing := timingAnalytics(logs, team)
	pt := findTiming(t, timing, "alice")

	require.NotNil(t, pt.AvgTimeToFirstReBuy)
	assert.Equal(t, 30.0, *pt.AvgTimeToFirstReBuy)

	require.NotNil(t, pt.SurvivalRate)
	assert.Equal(t, 33.33, *pt.SurvivalRate)
}

func TestQuarterHeatmap(t *testing.T) {
	team := map[model.UserID]*model.User{"alice": teamPlayer("alice", "Alice")}

	// Three identical 4-hour sessions: initial buy-in in Q1, re-buy in Q4
	var logs []*sessionLog
	for i := 0; i < 3; i++ {
		logs = append(logs, buildLog(
			model.SessionID(rune('a'+i)),
			timingBase.AddDate(0, 0, 7*i),
			[]txRow{
				{model.TransactionBuyIn, "alice", "", 0},
				{model.TransactionBuyIn, "alice", "", 200 * time.Minute},
				{model.TransactionCashOut, "alice", "", 240 * time.Minute},
			},
		))
	}

	timing := timingAnalytics(logs, team)
	pt := findTiming(t, timing, "alice")

	require.NotNil(t, pt.QuarterHeatmap)
	assert.Equal(t, [4]float64{1, 0, 0, 1}, *pt.QuarterHeatmap)
}

func TestHeatmapRequiresThreeSessions(t *testing.T) {
	team := map[model.UserID]*model.User{"alice": teamPlayer("alice", "Alice")}

	logs := []*sessionLog{
		buildLog("s1", timingBase, []txRow{
			{model.TransactionBuyIn, "alice", "", 0},
			{model.TransactionCashOut, "alice", "", 120 * time.Minute},
		}),
	}

	timing := timingAnalytics(logs, team)
	pt := findTiming(t, timing, "alice")
	assert.Nil(t, pt.QuarterHeatmap)
}

func TestSellTiming(t *testing.T) {
	team := map[model.UserID]*model.User{
		"alice": teamPlayer("alice", "Alice"),
		"bob":   teamPlayer("bob", "Bob"),
	}

	// 100-minute session; alice sells at 25% and 75% elapsed
	log := buildLog("s1", timingBase, []txRow{
		{model.TransactionBuyIn, "alice", "", 0},
		{model.TransactionBuyIn, "bob", "", 0},
		{model.TransactionSellBuyIn, "alice", "bob", 25 * time.Minute},
		{model.TransactionSellBuyIn, "alice", "bob", 75 * time.Minute},
		{model.TransactionCashOut, "alice", "", 100 * time.Minute},
		{model.TransactionCashOut, "bob", "", 100 * time.Minute},
	})

	timing := timingAnalytics([]*sessionLog{log}, team)

	alice := findTiming(t, timing, "alice")
	require.NotNil(t, alice.SellTiming)
	assert.Equal(t, 2, alice.SellTiming.SellCount)
	require.NotNil(t, alice.SellTiming.AvgSellPct)
	assert.Equal(t, 50.0, *alice.SellTiming.AvgSellPct)
	assert.Nil(t, alice.SellTiming.AvgBuyPct)

	bob := findTiming(t, timing, "bob")
	require.NotNil(t, bob.SellTiming)
	require.NotNil(t, bob.SellTiming.AvgBuyPct)
	assert.Equal(t, 50.0, *bob.SellTiming.AvgBuyPct)
}

func TestLateNightIndex(t *testing.T) {
	team := map[model.UserID]*model.User{"alice": teamPlayer("alice", "Alice")}

	// Three 2-hour sessions, each with one of two re-buys in the last
	// quarter: index per session = (1*4)/2 = 2
	var logs []*sessionLog
	for i := 0; i < 3; i++ {
		logs = append(logs, buildLog(
			model.SessionID(rune('a'+i)),
			timingBase.AddDate(0, 0, 7*i),
			[]txRow{
				{model.TransactionBuyIn, "alice", "", 0},
				{model.TransactionBuyIn, "alice", "", 30 * time.Minute},
				{model.TransactionBuyIn, "alice", "", 110 * time.Minute},
				{model.TransactionCashOut, "alice", "", 120 * time.Minute},
			},
		))
	}

	timing := timingAnalytics(logs, team)
	pt := findTiming(t, timing, "alice")

	require.NotNil(t, pt.LateNightIndex)
	assert.Equal(t, 2.0, *pt.LateNightIndex)
}

func TestUnanalyzableSessionSkipped(t *testing.T) {
	team := map[model.UserID]*model.User{"alice": teamPlayer("alice", "Alice")}

	// No cash-out means no timeline, so the session contributes nothing
	log := buildLog("s1", timingBase, []txRow{
		{model.TransactionBuyIn, "alice", "", 0},
		{model.TransactionBuyIn, "alice", "", 30 * time.Minute},
	})

	timing := timingAnalytics([]*sessionLog{log}, team)
	assert.Empty(t, timing)
}

func TestGuestExcludedFromTiming(t *testing.T) {
	team := map[model.UserID]*model.User{"alice": teamPlayer("alice", "Alice")}

	log := buildLog("s1", timingBase, []txRow{
		{model.TransactionBuyIn, "alice", "", 0},
		{model.TransactionBuyIn, "guest", "", 0},
		{model.TransactionCashOut, "alice", "", 120 * time.Minute},
		{model.TransactionCashOut, "guest", "", 120 * time.Minute},
	})

	timing := timingAnalytics([]*sessionLog{log}, team)
	require.Len(t, timing, 1)
	assert.Equal(t, model.UserID("alice"), timing[0].UserID)
}
