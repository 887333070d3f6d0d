package parser

import (
	"fmt"
	"strings"

	"github.com/insightdelivered/bet-history-analyzer/internal/models"
)

// CompletionPolicy decides what happens to a record that is cut short by
// the next boundary or by the end of input.
type CompletionPolicy string

const (
	// PolicyDiscard drops short records. Junk lines between bets would
	// otherwise shift every following field.
	PolicyDiscard CompletionPolicy = "discard"
	// PolicyPad keeps short records, filling missing trailing fields with "".
	PolicyPad CompletionPolicy = "pad"
)

// ParsePolicy maps a configuration value onto a CompletionPolicy.
func ParsePolicy(s string) (CompletionPolicy, error) {
	switch CompletionPolicy(strings.ToLower(strings.TrimSpace(s))) {
	case "", PolicyDiscard:
		return PolicyDiscard, nil
	case PolicyPad:
		return PolicyPad, nil
	default:
		return "", fmt.Errorf("unknown completion policy %q (use discard or pad)", s)
	}
}

// Options configures a Reconstructor.
type Options struct {
	Policy CompletionPolicy
	// Trace records a DebugToken for every token fed.
	Trace bool
}

type state int

const (
	stateBetween state = iota
	stateBet
	stateLeg
	stateLegDate
)

func (s state) String() string {
	switch s {
	case stateBet:
		return "collecting-bet"
	case stateLeg:
		return "collecting-leg"
	case stateLegDate:
		return "leg-date-pending"
	default:
		return "between"
	}
}

// Reconstructor groups a token stream into bet and leg records.
//
// It is a small state machine. Between records, a boundary token opens a
// bet, and a leg number opens a leg only while the last completed bet was a
// parlay header; anything else is dropped. A bet collects tokens until it
// has BetFieldCount fields. A leg collects LegSourceFieldCount fields.
//
// A leg's last slot is the game date, which can look like a boundary. Such
// a token is held until the next one arrives: it stays in the leg when
// followed by a leg number, another boundary or the end of input, and
// otherwise closes the short leg and opens a bet.
type Reconstructor struct {
	opts Options

	state             state
	buffer            []string
	start             int
	lastBoundaryIndex int
	inParlay          bool

	pendingIndex int
	pendingToken string

	records []models.RawRecord
	diag    models.ReconstructionDiagnostics
	trace   []models.DebugToken
}

// NewReconstructor returns a Reconstructor in the between-records state.
func NewReconstructor(opts Options) *Reconstructor {
	if opts.Policy == "" {
		opts.Policy = PolicyDiscard
	}
	return &Reconstructor{
		opts:              opts,
		lastBoundaryIndex: -1,
	}
}

// Reconstruct runs a fresh Reconstructor over tokens.
func Reconstruct(tokens []string, opts Options) ([]models.RawRecord, models.ReconstructionDiagnostics) {
	r := NewReconstructor(opts)
	for i, tok := range tokens {
		r.Feed(i, tok)
	}
	return r.Finish()
}

// Feed advances the machine by one token. index is the token's position in
// the stream and is kept as the record start.
func (r *Reconstructor) Feed(index int, token string) {
	r.diag.Tokens++
	r.step(index, token)
}

func (r *Reconstructor) step(index int, token string) {
	boundary := IsBoundary(token)

	switch r.state {
	case stateBet:
		if boundary {
			r.closeBuffer()
			r.startBet(index, token)
			return
		}
		r.appendField(index, token)
		if len(r.buffer) == models.BetFieldCount {
			r.emit(models.KindBet, false)
		}

	case stateLeg:
		if boundary {
			if len(r.buffer) == models.LegSourceFieldCount-1 {
				r.state = stateLegDate
				r.pendingIndex, r.pendingToken = index, token
				return
			}
			r.closeBuffer()
			r.startBet(index, token)
			return
		}
		r.appendField(index, token)
		if len(r.buffer) == models.LegSourceFieldCount {
			r.emit(models.KindLeg, false)
		}

	case stateLegDate:
		r.resolvePendingDate(boundary || isLegNumber(token))
		r.step(index, token)

	default:
		switch {
		case boundary:
			r.startBet(index, token)
		case r.inParlay && isLegNumber(token):
			r.startLeg(index, token)
		default:
			r.diag.DroppedTokens++
			r.record(index, token, false, "dropped")
		}
	}
}

// Finish closes the final buffer and returns the records in stream order.
func (r *Reconstructor) Finish() ([]models.RawRecord, models.ReconstructionDiagnostics) {
	if r.state == stateLegDate {
		r.resolvePendingDate(true)
	}
	r.closeBuffer()
	records := r.records
	if records == nil {
		records = []models.RawRecord{}
	}
	return records, r.diag
}

// Trace returns the per-token trace collected when Options.Trace is set.
func (r *Reconstructor) Trace() []models.DebugToken {
	return r.trace
}

// State names the current state, for tests and debug logs.
func (r *Reconstructor) State() string {
	return r.state.String()
}

// LastBoundaryIndex is the token index of the most recent boundary, or -1.
func (r *Reconstructor) LastBoundaryIndex() int {
	return r.lastBoundaryIndex
}

func (r *Reconstructor) startBet(index int, token string) {
	r.diag.Boundaries++
	r.lastBoundaryIndex = index
	r.state = stateBet
	r.start = index
	r.buffer = append(make([]string, 0, models.BetFieldCount), token)
	r.record(index, token, true, "boundary")
}

func (r *Reconstructor) startLeg(index int, token string) {
	r.state = stateLeg
	r.start = index
	r.buffer = append(make([]string, 0, models.LegSourceFieldCount), token)
	r.record(index, token, false, "leg-start")
}

func (r *Reconstructor) appendField(index int, token string) {
	r.buffer = append(r.buffer, token)
	r.record(index, token, IsBoundary(token), "field")
}

// resolvePendingDate settles a held date token either as the leg's game
// date or as the boundary of the next bet.
func (r *Reconstructor) resolvePendingDate(asGameDate bool) {
	index, token := r.pendingIndex, r.pendingToken
	r.pendingToken = ""
	r.state = stateLeg
	if asGameDate {
		r.appendField(index, token)
		r.emit(models.KindLeg, false)
		return
	}
	r.closeBuffer()
	r.startBet(index, token)
}

// closeBuffer applies the completion policy to a partially filled record.
func (r *Reconstructor) closeBuffer() {
	switch r.state {
	case stateBet:
		if r.opts.Policy == PolicyPad {
			r.diag.PaddedBets++
			r.buffer = pad(r.buffer, models.BetFieldCount)
			r.emit(models.KindBet, true)
			return
		}
		r.diag.DiscardedBets++
		// A discarded header must not adopt the legs that follow it.
		r.inParlay = false
	case stateLeg:
		if r.opts.Policy == PolicyPad {
			r.diag.PaddedLegs++
			r.buffer = pad(r.buffer, models.LegSourceFieldCount)
			r.emit(models.KindLeg, true)
			return
		}
		r.diag.DiscardedLegs++
	}
	r.reset()
}

func (r *Reconstructor) emit(kind models.RecordKind, padded bool) {
	r.records = append(r.records, models.RawRecord{
		Kind:   kind,
		Fields: r.buffer,
		Start:  r.start,
		Padded: padded,
	})

	switch kind {
	case models.KindBet:
		r.diag.Bets++
		r.inParlay = models.IsParlayBetType(r.buffer[4])
	case models.KindLeg:
		r.diag.Legs++
	}
	r.reset()
}

func (r *Reconstructor) reset() {
	r.state = stateBetween
	r.buffer = nil
}

func (r *Reconstructor) record(index int, token string, boundary bool, result string) {
	if !r.opts.Trace {
		return
	}
	r.trace = append(r.trace, models.DebugToken{
		Index:    index,
		Text:     token,
		Boundary: boundary,
		Result:   result,
	})
}

func pad(fields []string, n int) []string {
	for len(fields) < n {
		fields = append(fields, "")
	}
	return fields
}
