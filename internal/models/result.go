package models

// Result is the output of one pipeline run, handed to the presentation layer.
type Result struct {
	RunID       string       `json:"runId"`
	Singles     []BetRecord  `json:"singles"`
	Parlays     []BetRecord  `json:"parlays"`
	Legs        []ParlayLeg  `json:"legs"`
	Stats       StatsSummary `json:"stats"`
	Diagnostics Diagnostics  `json:"-"`
}
