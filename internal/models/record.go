package models

// RecordKind tells a reconstructed bet apart from a parlay leg.
type RecordKind string

const (
	KindBet RecordKind = "bet"
	KindLeg RecordKind = "leg"
)

// RawRecord is an ordered field list grouped out of the token stream.
type RawRecord struct {
	Kind   RecordKind `json:"kind"`
	Fields []string   `json:"fields"`
	Start  int        `json:"start"`            // index of the record's first token
	Padded bool       `json:"padded,omitempty"` // short record filled with empty fields
}

// DebugToken captures what the reconstructor did with each token.
type DebugToken struct {
	Index    int    `json:"index"`
	Text     string `json:"text"`
	Boundary bool   `json:"boundary"`
	Result   string `json:"result"` // "boundary", "field", "leg-start", "dropped"
}

// ReconstructionDiagnostics counts what the reconstructor kept and discarded.
type ReconstructionDiagnostics struct {
	Tokens        int `json:"tokens"`
	Boundaries    int `json:"boundaries"`
	Bets          int `json:"bets"`
	Legs          int `json:"legs"`
	DiscardedBets int `json:"discardedBets"`
	DiscardedLegs int `json:"discardedLegs"`
	PaddedBets    int `json:"paddedBets"`
	PaddedLegs    int `json:"paddedLegs"`
	DroppedTokens int `json:"droppedTokens"`
}

// AggregationDiagnostics counts fields the aggregator recovered with a
// neutral default.
type AggregationDiagnostics struct {
	UnrecognizedResults int `json:"unrecognizedResults"`
	EmptyLeagues        int `json:"emptyLeagues"`
	UnparseableDates    int `json:"unparseableDates"`
	RecoveredAmounts    int `json:"recoveredAmounts"`
	RecoveredCounts     int `json:"recoveredCounts"`
}

// Diagnostics is the internal, log-only report of a pipeline run.
type Diagnostics struct {
	Reconstruction ReconstructionDiagnostics `json:"reconstruction"`
	OrphanLegs     int                       `json:"orphanLegs"`
	Aggregation    AggregationDiagnostics    `json:"aggregation"`
	Trace          []DebugToken              `json:"trace,omitempty"`
}
