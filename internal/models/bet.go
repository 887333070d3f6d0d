package models

import "strings"

// Field arity of the records reconstructed from an export.
const (
	BetFieldCount = 13
	// LegSourceFieldCount is the number of leg fields present in the export.
	// Navigation is derived, so a complete leg has one more field than this.
	LegSourceFieldCount = 8
)

// Result values counted by the aggregator. Matching is exact.
const (
	ResultWon  = "Won"
	ResultLost = "Lost"
)

// BetFieldNames is the stable column contract for singles and parlay headers.
var BetFieldNames = []string{
	"Date Placed", "Status", "League", "Match", "Bet Type", "Market", "Price",
	"Wager", "Winnings", "Payout", "Potential Payout", "Result", "Bet Slip ID",
}

// LegFieldNames is the stable column contract for parlay legs.
var LegFieldNames = []string{
	"Leg Number", "Status", "League", "Match", "Market", "Selection", "Price",
	"Game Date", "Parlay ID",
}

// parlayMarkers are the Bet Type values that identify a parlay header.
var parlayMarkers = map[string]bool{
	"parlay":           true,
	"same game parlay": true,
	"sgp":              true,
}

// IsParlayBetType reports whether a Bet Type value marks a multi-leg parlay.
func IsParlayBetType(betType string) bool {
	return parlayMarkers[strings.ToLower(strings.TrimSpace(betType))]
}

// BetRecord is a single bet or a parlay header.
type BetRecord struct {
	DatePlaced      string `json:"Date Placed"`
	Status          string `json:"Status"`
	League          string `json:"League"`
	Match           string `json:"Match"`
	BetType         string `json:"Bet Type"`
	Market          string `json:"Market"`
	Price           string `json:"Price"`
	Wager           string `json:"Wager"`
	Winnings        string `json:"Winnings"`
	Payout          string `json:"Payout"`
	PotentialPayout string `json:"Potential Payout"`
	Result          string `json:"Result"`
	BetSlipID       string `json:"Bet Slip ID"`

	// Start is the stream index of the record's first token.
	Start int `json:"-"`
}

// NewBetRecord maps an ordered field list onto a BetRecord.
// Missing trailing fields are left empty and extra fields are ignored.
func NewBetRecord(fields []string) BetRecord {
	f := make([]string, BetFieldCount)
	copy(f, fields)
	return BetRecord{
		DatePlaced:      f[0],
		Status:          f[1],
		League:          f[2],
		Match:           f[3],
		BetType:         f[4],
		Market:          f[5],
		Price:           f[6],
		Wager:           f[7],
		Winnings:        f[8],
		Payout:          f[9],
		PotentialPayout: f[10],
		Result:          f[11],
		BetSlipID:       f[12],
	}
}

// Fields returns the record's values in BetFieldNames order.
func (b BetRecord) Fields() []string {
	return []string{
		b.DatePlaced, b.Status, b.League, b.Match, b.BetType, b.Market, b.Price,
		b.Wager, b.Winnings, b.Payout, b.PotentialPayout, b.Result, b.BetSlipID,
	}
}

// IsParlay reports whether the record is a parlay header.
func (b BetRecord) IsParlay() bool {
	return IsParlayBetType(b.BetType)
}

// LegNavigation holds the cross-reference tags derived from a leg.
type LegNavigation struct {
	Player string   `json:"player,omitempty"`
	Teams  []string `json:"teams,omitempty"`
}

// Empty reports whether no tag was derived.
func (n LegNavigation) Empty() bool {
	return n.Player == "" && len(n.Teams) == 0
}

// ParlayLeg is one outcome of a parlay. ParlayID refers to the header's
// BetSlipID; the header does not own its legs.
type ParlayLeg struct {
	LegNumber  string         `json:"Leg Number"`
	Status     string         `json:"Status"`
	League     string         `json:"League"`
	Match      string         `json:"Match"`
	Market     string         `json:"Market"`
	Selection  string         `json:"Selection"`
	Price      string         `json:"Price"`
	GameDate   string         `json:"Game Date"`
	ParlayID   string         `json:"Parlay ID"`
	Navigation *LegNavigation `json:"Navigation,omitempty"`
}

// NewParlayLeg maps the source leg fields onto a ParlayLeg owned by parlayID.
func NewParlayLeg(fields []string, parlayID string) ParlayLeg {
	f := make([]string, LegSourceFieldCount)
	copy(f, fields)
	return ParlayLeg{
		LegNumber: f[0],
		Status:    f[1],
		League:    f[2],
		Match:     f[3],
		Market:    f[4],
		Selection: f[5],
		Price:     f[6],
		GameDate:  f[7],
		ParlayID:  parlayID,
	}
}

// Fields returns the leg's values in LegFieldNames order.
func (l ParlayLeg) Fields() []string {
	return []string{
		l.LegNumber, l.Status, l.League, l.Match, l.Market, l.Selection,
		l.Price, l.GameDate, l.ParlayID,
	}
}
