package stats

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/insightdelivered/bet-history-analyzer/internal/models"
	"github.com/insightdelivered/bet-history-analyzer/internal/parser"
)

func record(date, league, result, wager, winnings string) models.BetRecord {
	return models.BetRecord{
		DatePlaced: date,
		League:     league,
		BetType:    "Single",
		Price:      "1.91",
		Wager:      wager,
		Winnings:   winnings,
		Payout:     winnings,
		Result:     result,
	}
}

func TestAggregate_TwoSingles(t *testing.T) {
	in := Input{
		Singles: []models.BetRecord{
			record("1 Jan 2024 @ 3:00pm", "NFL", "Won", "10", "19.10"),
			record("2 Jan 2024 @ 3:00pm", "NFL", "Won", "5", "9.55"),
		},
	}

	s := Aggregate(in)
	assert.Equal(t, 2, s.Wins)
	assert.Equal(t, 0, s.Losses)
	assert.Equal(t, map[string]int{"NFL": 2}, s.SportsDist)
	require.Equal(t, 2, s.ProfitTimeline.Len())
	assert.Equal(t, []string{"2024-01-01 15:00", "2024-01-02 15:00"}, s.ProfitTimeline.Dates)
	assert.InDelta(t, 9.10, s.ProfitTimeline.Profits[0], 1e-9)
	assert.InDelta(t, 13.65, s.ProfitTimeline.Profits[1], 1e-9)
}

func TestAggregate_Empty(t *testing.T) {
	s, diag := AggregateWithDiagnostics(Input{})

	assert.Zero(t, s.Wins)
	assert.Zero(t, s.Losses)
	assert.NotNil(t, s.SportsDist)
	assert.Empty(t, s.SportsDist)
	assert.NotNil(t, s.ProfitTimeline.Dates)
	assert.NotNil(t, s.ProfitTimeline.Profits)
	assert.NotNil(t, s.TeamPerformance)
	assert.NotNil(t, s.PlayerPerformance)
	assert.NotNil(t, s.PropPerformance)
	assert.Equal(t, models.AggregationDiagnostics{}, diag)
}

func TestAggregate_ResultsAndLeagues(t *testing.T) {
	in := Input{
		Singles: []models.BetRecord{
			record("1 Jan 2024 @ 3:00pm", "NFL", "Won", "10", "0"),
			record("1 Jan 2024 @ 4:00pm", " NBA ", "Lost", "10", "0"),
			record("1 Jan 2024 @ 5:00pm", "", "won", "10", "0"),
			record("1 Jan 2024 @ 6:00pm", "NBA", "Void", "10", "10"),
		},
		Parlays: []models.BetRecord{
			record("1 Jan 2024 @ 7:00pm", "Multi", "Lost", "5", "0"),
		},
	}

	s, diag := AggregateWithDiagnostics(in)
	assert.Equal(t, 1, s.Wins)
	assert.Equal(t, 2, s.Losses)
	assert.LessOrEqual(t, s.Wins+s.Losses, len(in.Singles)+len(in.Parlays))
	assert.Equal(t, map[string]int{"NFL": 1, "NBA": 2, "Multi": 1}, s.SportsDist)
	assert.Equal(t, 2, diag.UnrecognizedResults)
	assert.Equal(t, 1, diag.EmptyLeagues)
}

func TestAggregate_TimelineOrderingAndRunningSum(t *testing.T) {
	singles := []models.BetRecord{
		record("3 Jan 2024 @ 1:00pm", "NFL", "Won", "10", "25"),
		record("someday", "NFL", "Lost", "4", "0"),
		record("1 Jan 2024 @ 1:00pm", "NFL", "Lost", "10", "0"),
	}
	parlays := []models.BetRecord{
		record("1 Jan 2024 @ 1:00pm", "NFL", "Won", "2", "12.50"),
		record("never", "NFL", "Lost", "1", "N/A"),
	}

	s, diag := AggregateWithDiagnostics(Input{Singles: singles, Parlays: parlays})

	assert.Equal(t, []string{
		"2024-01-01 13:00", // no positions set, so the single stays first
		"2024-01-01 13:00",
		"2024-01-03 13:00",
		"someday",
		"never",
	}, s.ProfitTimeline.Dates)

	ordered := []models.BetRecord{singles[2], parlays[0], singles[0], singles[1], parlays[1]}
	running := decimal.Zero
	for i, b := range ordered {
		delta := parser.ParseAmount(b.Winnings).Value.Sub(parser.ParseAmount(b.Wager).Value)
		running = running.Add(delta)
		assert.InDelta(t, running.InexactFloat64(), s.ProfitTimeline.Profits[i], 1e-9, "point %d", i)
	}
	assert.InDelta(t, 10.5, s.ProfitTimeline.Profits[4], 1e-9)
	assert.Equal(t, 2, diag.UnparseableDates)
	assert.Equal(t, 1, diag.RecoveredAmounts)
}

func TestAggregate_TimelineTiesFollowExportOrder(t *testing.T) {
	atStart := func(b models.BetRecord, start int) models.BetRecord {
		b.Start = start
		return b
	}
	singles := []models.BetRecord{
		atStart(record("1 Jan 2024 @ 1:00pm", "NFL", "Won", "10", "20"), 30),
		atStart(record("undated", "NFL", "Lost", "3", "0"), 50),
	}
	parlays := []models.BetRecord{
		atStart(record("1 Jan 2024 @ 1:00pm", "NBA", "Lost", "5", "0"), 0),
		atStart(record("unknown", "NBA", "Lost", "1", "0"), 13),
	}

	s := Aggregate(Input{Singles: singles, Parlays: parlays})

	assert.Equal(t, []string{"2024-01-01 13:00", "2024-01-01 13:00", "unknown", "undated"}, s.ProfitTimeline.Dates)
	// the parlay placed earlier in the export is applied first
	assert.Equal(t, []float64{-5, 5, 4, 1}, s.ProfitTimeline.Profits)
}

func TestAggregate_EntityTables(t *testing.T) {
	tables := &models.SummaryTables{
		Teams: &models.SummaryTable{Rows: []models.SummaryRow{
			{Name: "Lakers", Wins: "3", Losses: "1", TotalBets: "4", MostCommonProp: "ignored"},
			{Name: "", Wins: "1"},
		}},
		Players: &models.SummaryTable{Rows: []models.SummaryRow{
			{Name: "LeBron James", Wins: "2", Losses: "x", TotalBets: "2", MostCommonProp: " Points "},
		}},
	}

	s, diag := AggregateWithDiagnostics(Input{Tables: tables})
	assert.Equal(t, map[string]models.EntityPerformance{
		"Lakers": {Wins: 3, Losses: 1, TotalBets: 4},
	}, s.TeamPerformance)
	assert.Equal(t, map[string]models.EntityPerformance{
		"LeBron James": {Wins: 2, Losses: 0, TotalBets: 2, MostCommonProp: "Points"},
	}, s.PlayerPerformance)
	assert.NotNil(t, s.PropPerformance)
	assert.Empty(t, s.PropPerformance)
	assert.Equal(t, 1, diag.RecoveredCounts)
}

func TestAggregate_TotalLegs(t *testing.T) {
	in := Input{
		LegsByParlayID: map[string][]models.ParlayLeg{
			"P1": {{LegNumber: "1"}, {LegNumber: "2"}},
			"P2": {},
			"P3": {{LegNumber: "1"}},
		},
	}
	assert.Equal(t, 3, Aggregate(in).TotalLegs)
}

func TestTotals(t *testing.T) {
	records := []models.BetRecord{
		{Price: "1.91", Wager: "$10", Winnings: "$19.10", Payout: "$19.10"},
		{Price: "2.50", Wager: "$5", Winnings: "0", Payout: "0"},
		{Price: "n/a", Wager: "1,000", Winnings: "", Payout: "-"},
	}

	got := Totals(records)
	assert.Equal(t, 3, got.TotalBets)
	assert.InDelta(t, 1.47, got.AveragePrice, 1e-9)
	assert.InDelta(t, 1015.0, got.TotalWager, 1e-9)
	assert.InDelta(t, 19.10, got.TotalWinnings, 1e-9)
	assert.InDelta(t, 19.10, got.TotalPayout, 1e-9)

	assert.Equal(t, models.TableTotals{}, Totals(nil))
}
