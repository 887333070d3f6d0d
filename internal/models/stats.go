package models

// EntityPerformance is one row of a team, player or prop rollup.
type EntityPerformance struct {
	Wins           int    `json:"wins"`
	Losses         int    `json:"losses"`
	TotalBets      int    `json:"totalBets"`
	MostCommonProp string `json:"mostCommonProp,omitempty"`
}

// ProfitTimeline holds parallel date and cumulative profit sequences.
type ProfitTimeline struct {
	Dates   []string  `json:"dates"`
	Profits []float64 `json:"profits"`
}

// Len returns the number of points on the timeline.
func (t ProfitTimeline) Len() int {
	return len(t.Profits)
}

// TableTotals summarises one table of bets.
type TableTotals struct {
	TotalBets     int     `json:"totalBets"`
	AveragePrice  float64 `json:"averagePrice"`
	TotalWager    float64 `json:"totalWager"`
	TotalWinnings float64 `json:"totalWinnings"`
	TotalPayout   float64 `json:"totalPayout"`
}

// Totals holds the per-table totals shown under the singles and parlays tables.
type Totals struct {
	Singles TableTotals `json:"singles"`
	Parlays TableTotals `json:"parlays"`
}

// StatsSummary is the aggregated view of one processed export.
type StatsSummary struct {
	Wins              int                          `json:"wins"`
	Losses            int                          `json:"losses"`
	SportsDist        map[string]int               `json:"sportsDist"`
	ProfitTimeline    ProfitTimeline               `json:"profitTimeline"`
	TeamPerformance   map[string]EntityPerformance `json:"teamPerformance"`
	PlayerPerformance map[string]EntityPerformance `json:"playerPerformance"`
	PropPerformance   map[string]EntityPerformance `json:"propPerformance"`
	TotalLegs         int                          `json:"totalLegs"`
	Totals            Totals                       `json:"totals"`
}

// NewStatsSummary returns a zero summary with non-nil collections, so an
// empty run still serialises as empty objects and arrays.
func NewStatsSummary() StatsSummary {
	return StatsSummary{
		SportsDist: map[string]int{},
		ProfitTimeline: ProfitTimeline{
			Dates:   []string{},
			Profits: []float64{},
		},
		TeamPerformance:   map[string]EntityPerformance{},
		PlayerPerformance: map[string]EntityPerformance{},
		PropPerformance:   map[string]EntityPerformance{},
	}
}

// SummaryRow is one row of an externally produced performance table,
// kept as text until the aggregator reshapes it.
type SummaryRow struct {
	Name           string
	Wins           string
	Losses         string
	TotalBets      string
	MostCommonProp string
}

// SummaryTable is a team, player or prop performance table.
type SummaryTable struct {
	Rows []SummaryRow
}

// SummaryTables groups the optional performance tables of a run.
type SummaryTables struct {
	Teams   *SummaryTable
	Players *SummaryTable
	Props   *SummaryTable
}

// Empty reports whether no table was supplied.
func (t *SummaryTables) Empty() bool {
	return t == nil || (t.Teams == nil && t.Players == nil && t.Props == nil)
}
