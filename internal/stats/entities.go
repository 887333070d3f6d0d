package stats

import (
	"strings"

	"github.com/insightdelivered/bet-history-analyzer/internal/models"
	"github.com/insightdelivered/bet-history-analyzer/internal/parser"
)

// reshape copies a summary table into a name-keyed mapping without
// recomputing anything. Rows without a name are skipped; a repeated name
// keeps its last row.
func reshape(table *models.SummaryTable, withProp bool, diag *models.AggregationDiagnostics) map[string]models.EntityPerformance {
	out := map[string]models.EntityPerformance{}
	if table == nil {
		return out
	}

	for _, row := range table.Rows {
		name := strings.TrimSpace(row.Name)
		if name == "" {
			continue
		}
		perf := models.EntityPerformance{
			Wins:      count(row.Wins, diag),
			Losses:    count(row.Losses, diag),
			TotalBets: count(row.TotalBets, diag),
		}
		if withProp {
			perf.MostCommonProp = strings.TrimSpace(row.MostCommonProp)
		}
		out[name] = perf
	}
	return out
}

func count(s string, diag *models.AggregationDiagnostics) int {
	n, ok := parser.ParseCount(s)
	if !ok {
		diag.RecoveredCounts++
	}
	return n
}
