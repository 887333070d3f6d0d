// Package pipeline runs one export through tokenizing, reconstruction,
// classification and aggregation.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/insightdelivered/bet-history-analyzer/internal/analysis"
	"github.com/insightdelivered/bet-history-analyzer/internal/classifier"
	"github.com/insightdelivered/bet-history-analyzer/internal/logging"
	"github.com/insightdelivered/bet-history-analyzer/internal/metrics"
	"github.com/insightdelivered/bet-history-analyzer/internal/models"
	"github.com/insightdelivered/bet-history-analyzer/internal/parser"
	"github.com/insightdelivered/bet-history-analyzer/internal/stats"
	"github.com/insightdelivered/bet-history-analyzer/internal/tokenizer"
)

// ErrInputUnreadable is returned when the raw dump could not be obtained.
// Nothing else aborts a run.
var ErrInputUnreadable = errors.New("input unreadable")

// Source hands the pipeline its raw dump. ReadRaw is the only blocking
// call of a run.
type Source interface {
	ReadRaw(ctx context.Context) (string, error)
}

// Input is one run's input. Tables is optional.
type Input struct {
	Source Source
	Tables *models.SummaryTables
	// Trace keeps the token trace for this run only.
	Trace bool
}

// Options configures a Pipeline.
type Options struct {
	Policy parser.CompletionPolicy
	// DeriveTables builds team/player/prop tables from the bets when the
	// caller supplied none.
	DeriveTables bool
	// Trace keeps the per-token reconstruction trace on the result.
	Trace   bool
	Metrics *metrics.Metrics
}

// Pipeline is safe for concurrent use; every Run allocates its own state.
type Pipeline struct {
	opts   Options
	logger *slog.Logger
}

// New returns a Pipeline. A nil logger discards output.
func New(opts Options, logger *slog.Logger) *Pipeline {
	if opts.Policy == "" {
		opts.Policy = parser.PolicyDiscard
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Pipeline{opts: opts, logger: logger.With("component", "pipeline")}
}

// Run processes one input. It returns either a complete result or a single
// error wrapping ErrInputUnreadable.
func (p *Pipeline) Run(ctx context.Context, in Input) (*models.Result, error) {
	start := time.Now()
	runID := uuid.NewString()
	ctx = logging.WithRunID(ctx, runID)

	raw, err := p.read(ctx, in.Source)
	if err != nil {
		p.opts.Metrics.ObserveFailure(time.Since(start))
		p.logger.ErrorContext(ctx, "input unreadable", "error", err)
		return nil, fmt.Errorf("%w: %w", ErrInputUnreadable, err)
	}

	tokens, tst := tokenizer.TokenizeWithStats(raw)
	p.logger.DebugContext(ctx, "tokenized",
		"candidates", tst.Candidates, "tokens", tst.Kept, "noise", tst.Noise, "empty", tst.Empty)

	rc := parser.NewReconstructor(parser.Options{Policy: p.opts.Policy, Trace: p.opts.Trace || in.Trace})
	for i, tok := range tokens {
		rc.Feed(i, tok)
	}
	records, rdiag := rc.Finish()
	p.logger.DebugContext(ctx, "records reconstructed",
		"policy", p.opts.Policy, "bets", rdiag.Bets, "legs", rdiag.Legs,
		"boundaries", rdiag.Boundaries, "dropped_tokens", rdiag.DroppedTokens)
	if rdiag.DiscardedBets+rdiag.DiscardedLegs > 0 {
		p.logger.WarnContext(ctx, "short records discarded",
			"bets", rdiag.DiscardedBets, "legs", rdiag.DiscardedLegs)
	}

	cls := classifier.Classify(records)
	if cls.OrphanLegs > 0 {
		p.logger.WarnContext(ctx, "legs without a parlay header skipped", "count", cls.OrphanLegs)
	}

	tables := in.Tables
	if tables.Empty() && p.opts.DeriveTables {
		derived := analysis.DeriveTables(cls.Singles, cls.Legs)
		tables = &derived
	}

	summary, adiag := stats.AggregateWithDiagnostics(stats.Input{
		Singles:        cls.Singles,
		Parlays:        cls.Parlays,
		LegsByParlayID: cls.LegsByParlayID,
		Tables:         tables,
	})
	if adiag != (models.AggregationDiagnostics{}) {
		p.logger.InfoContext(ctx, "fields recovered with defaults",
			"unrecognized_results", adiag.UnrecognizedResults,
			"empty_leagues", adiag.EmptyLeagues,
			"unparseable_dates", adiag.UnparseableDates,
			"amounts", adiag.RecoveredAmounts,
			"counts", adiag.RecoveredCounts)
	}

	result := &models.Result{
		RunID:   runID,
		Singles: cls.Singles,
		Parlays: cls.Parlays,
		Legs:    cls.Legs,
		Stats:   summary,
		Diagnostics: models.Diagnostics{
			Reconstruction: rdiag,
			OrphanLegs:     cls.OrphanLegs,
			Aggregation:    adiag,
			Trace:          rc.Trace(),
		},
	}

	elapsed := time.Since(start)
	p.opts.Metrics.Observe(result, elapsed)
	p.logger.InfoContext(ctx, "run complete",
		"singles", len(result.Singles), "parlays", len(result.Parlays), "legs", len(result.Legs),
		"wins", summary.Wins, "losses", summary.Losses, "duration", elapsed)

	return result, nil
}

func (p *Pipeline) read(ctx context.Context, src Source) (string, error) {
	if src == nil {
		return "", errors.New("no source given")
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	raw, err := src.ReadRaw(ctx)
	if err != nil {
		return "", err
	}
	// A source that ignored cancellation still yields no result.
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return raw, nil
}
