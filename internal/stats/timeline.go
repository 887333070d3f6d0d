package stats

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/insightdelivered/bet-history-analyzer/internal/models"
	"github.com/insightdelivered/bet-history-analyzer/internal/parser"
)

// TimelineDateLayout formats parsed Date Placed values on the timeline.
const TimelineDateLayout = "2006-01-02 15:04"

type timelinePoint struct {
	bet    models.BetRecord
	placed time.Time
	dated  bool
}

// buildTimeline orders bets by Date Placed and accumulates Winnings - Wager.
// Bets whose date cannot be parsed follow all dated bets. Equal dates and
// undated bets are ordered by their position in the export.
func buildTimeline(bets []models.BetRecord, diag *models.AggregationDiagnostics) models.ProfitTimeline {
	points := make([]timelinePoint, len(bets))
	for i, b := range bets {
		placed, ok := parser.ParseDatePlaced(b.DatePlaced)
		if !ok {
			diag.UnparseableDates++
		}
		points[i] = timelinePoint{bet: b, placed: placed, dated: ok}
	}

	sort.SliceStable(points, func(i, j int) bool {
		a, b := points[i], points[j]
		if a.dated != b.dated {
			return a.dated
		}
		if a.dated && !a.placed.Equal(b.placed) {
			return a.placed.Before(b.placed)
		}
		return a.bet.Start < b.bet.Start
	})

	timeline := models.ProfitTimeline{
		Dates:   make([]string, 0, len(points)),
		Profits: make([]float64, 0, len(points)),
	}

	running := decimal.Zero
	for _, p := range points {
		running = running.Add(profit(p.bet, diag))

		date := p.bet.DatePlaced
		if p.dated {
			date = p.placed.Format(TimelineDateLayout)
		}
		timeline.Dates = append(timeline.Dates, date)
		timeline.Profits = append(timeline.Profits, running.InexactFloat64())
	}

	return timeline
}

// profit is Winnings - Wager; an unreadable side counts as zero.
func profit(b models.BetRecord, diag *models.AggregationDiagnostics) decimal.Decimal {
	return amountOrZero(b.Winnings, diag).Sub(amountOrZero(b.Wager, diag))
}

func amountOrZero(s string, diag *models.AggregationDiagnostics) decimal.Decimal {
	amt := parser.ParseAmount(s)
	if !amt.OK {
		diag.RecoveredAmounts++
	}
	return amt.Value
}
