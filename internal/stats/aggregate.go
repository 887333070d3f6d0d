// Package stats turns classified bets into a StatsSummary.
//
// Aggregation never fails. A field that cannot be read falls back to a
// neutral value and is counted in models.AggregationDiagnostics.
package stats

import (
	"strings"

	"github.com/insightdelivered/bet-history-analyzer/internal/models"
)

// Input is everything one aggregation pass reads. Tables is optional.
type Input struct {
	Singles        []models.BetRecord
	Parlays        []models.BetRecord
	LegsByParlayID map[string][]models.ParlayLeg
	Tables         *models.SummaryTables
}

// Aggregate computes the summary for in.
func Aggregate(in Input) models.StatsSummary {
	summary, _ := AggregateWithDiagnostics(in)
	return summary
}

// AggregateWithDiagnostics computes the summary for in and reports every
// value it had to recover.
func AggregateWithDiagnostics(in Input) (models.StatsSummary, models.AggregationDiagnostics) {
	var diag models.AggregationDiagnostics
	summary := models.NewStatsSummary()

	bets := make([]models.BetRecord, 0, len(in.Singles)+len(in.Parlays))
	bets = append(bets, in.Singles...)
	bets = append(bets, in.Parlays...)

	for _, b := range bets {
		switch b.Result {
		case models.ResultWon:
			summary.Wins++
		case models.ResultLost:
			summary.Losses++
		default:
			diag.UnrecognizedResults++
		}

		league := strings.TrimSpace(b.League)
		if league == "" {
			diag.EmptyLeagues++
			continue
		}
		summary.SportsDist[league]++
	}

	summary.ProfitTimeline = buildTimeline(bets, &diag)

	if in.Tables != nil {
		summary.TeamPerformance = reshape(in.Tables.Teams, false, &diag)
		summary.PlayerPerformance = reshape(in.Tables.Players, true, &diag)
		summary.PropPerformance = reshape(in.Tables.Props, false, &diag)
	}

	for _, legs := range in.LegsByParlayID {
		summary.TotalLegs += len(legs)
	}

	summary.Totals = models.Totals{
		Singles: Totals(in.Singles),
		Parlays: Totals(in.Parlays),
	}

	return summary, diag
}
