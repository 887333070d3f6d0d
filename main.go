package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/insightdelivered/bet-history-analyzer/internal/api"
	"github.com/insightdelivered/bet-history-analyzer/internal/config"
	"github.com/insightdelivered/bet-history-analyzer/internal/extractor"
	"github.com/insightdelivered/bet-history-analyzer/internal/logging"
	"github.com/insightdelivered/bet-history-analyzer/internal/metrics"
	"github.com/insightdelivered/bet-history-analyzer/internal/models"
	"github.com/insightdelivered/bet-history-analyzer/internal/parser"
	"github.com/insightdelivered/bet-history-analyzer/internal/pipeline"
	"github.com/insightdelivered/bet-history-analyzer/internal/writer"
)

const (
	chartFile    = "profit_chart.png"
	workbookFile = "bet_history.xlsx"
)

func main() {
	app := &cli.App{
		Name:    "betstats",
		Usage:   "rebuild bets from a sportsbook history export and summarise them",
		Version: api.Version,
		Description: `Reads a bet history export (spreadsheet XML, HTML, CSV, text, XLSX or PDF),
reconstructs single bets, parlay headers and parlay legs, and writes them
as CSV together with win/loss, league, profit and team/player/prop rollups.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "path to a YAML config file (defaults to " + config.DefaultFile + " if present)",
			},
		},
		Commands: []*cli.Command{
			processCommand(),
			serveCommand(),
			{
				Name:  "version",
				Usage: "print the version",
				Action: func(c *cli.Context) error {
					fmt.Printf("betstats v%s\n", api.Version)
					return nil
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func processCommand() *cli.Command {
	return &cli.Command{
		Name:      "process",
		Usage:     "process one or more exports into CSV files",
		ArgsUsage: "<export> [export2 ...]",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "output-dir", Aliases: []string{"o"}, Usage: "directory for output files"},
			&cli.StringFlag{Name: "teams", Usage: "team performance CSV to use instead of derived stats"},
			&cli.StringFlag{Name: "players", Usage: "player performance CSV to use instead of derived stats"},
			&cli.StringFlag{Name: "props", Usage: "prop performance CSV to use instead of derived stats"},
			&cli.StringFlag{Name: "policy", Usage: "incomplete record policy: discard or pad"},
			&cli.BoolFlag{Name: "workbook", Usage: "also write " + workbookFile},
			&cli.BoolFlag{Name: "chart", Usage: "also write " + chartFile},
			&cli.BoolFlag{Name: "american-odds", Usage: "add an American odds column to bet and leg CSVs"},
			&cli.BoolFlag{Name: "no-derive", Usage: "do not derive team/player/prop stats from the bets"},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() == 0 {
				return cli.ShowSubcommandHelp(c)
			}

			cfg, err := loadConfig(c)
			if err != nil {
				return err
			}
			applyProcessFlags(c, cfg)

			policy, err := parser.ParsePolicy(cfg.Pipeline.IncompletePolicy)
			if err != nil {
				return err
			}

			tables, err := loadTables(c.String("teams"), c.String("players"), c.String("props"))
			if err != nil {
				return err
			}

			logger := logging.New(cfg.Logging, os.Stderr)
			p := pipeline.New(pipeline.Options{
				Policy:       policy,
				DeriveTables: cfg.Pipeline.DeriveTables,
				Trace:        cfg.Pipeline.Trace,
			}, logger)

			inputs := c.Args().Slice()
			for _, inputPath := range inputs {
				outDir := cfg.Output.Dir
				if len(inputs) > 1 {
					outDir = filepath.Join(outDir, strings.TrimSuffix(filepath.Base(inputPath), filepath.Ext(inputPath)))
				}
				if err := processFile(c.Context, p, inputPath, tables, outDir, cfg.Output); err != nil {
					return fmt.Errorf("processing %s: %w", inputPath, err)
				}
			}
			return nil
		},
	}
}

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "run the HTTP API",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "port", Aliases: []string{"p"}, Usage: "listen port"},
			&cli.StringFlag{Name: "static-dir", Usage: "directory with the web client"},
		},
		Action: func(c *cli.Context) error {
			cfg, err := loadConfig(c)
			if err != nil {
				return err
			}
			if c.IsSet("port") {
				cfg.Server.Port = c.Int("port")
			}
			if c.IsSet("static-dir") {
				cfg.Server.StaticDir = c.String("static-dir")
			}

			policy, err := parser.ParsePolicy(cfg.Pipeline.IncompletePolicy)
			if err != nil {
				return err
			}

			logger := logging.New(cfg.Logging, os.Stdout)
			m := metrics.New()
			h := &api.Handler{
				Pipeline: pipeline.New(pipeline.Options{
					Policy:       policy,
					DeriveTables: cfg.Pipeline.DeriveTables,
					Trace:        cfg.Pipeline.Trace,
					Metrics:      m,
				}, logger),
				Metrics: m,
				Logger:  logger,
			}
			if info, err := os.Stat(cfg.Server.StaticDir); err == nil && info.IsDir() {
				h.StaticDir = cfg.Server.StaticDir
			}
			app := api.NewApp(h, cfg.Server.BodyLimitMB)

			ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
			defer stop()

			errCh := make(chan error, 1)
			addr := fmt.Sprintf(":%d", cfg.Server.Port)
			go func() {
				logger.Info("server listening", "addr", addr, "static_dir", h.StaticDir)
				errCh <- app.Listen(addr)
			}()

			select {
			case err := <-errCh:
				return err
			case <-ctx.Done():
			}

			logger.Info("shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return app.ShutdownWithContext(shutdownCtx)
		},
	}
}

// loadConfig reads the global --config flag from any subcommand.
func loadConfig(c *cli.Context) (*config.Config, error) {
	return config.Load(c.String("config"))
}

// applyProcessFlags lets explicit flags win over file and environment values.
func applyProcessFlags(c *cli.Context, cfg *config.Config) {
	if c.IsSet("output-dir") {
		cfg.Output.Dir = c.String("output-dir")
	}
	if c.IsSet("policy") {
		cfg.Pipeline.IncompletePolicy = c.String("policy")
	}
	if c.IsSet("workbook") {
		cfg.Output.Workbook = c.Bool("workbook")
	}
	if c.IsSet("chart") {
		cfg.Output.Chart = c.Bool("chart")
	}
	if c.IsSet("american-odds") {
		cfg.Output.AmericanOdds = c.Bool("american-odds")
	}
	if c.Bool("no-derive") {
		cfg.Pipeline.DeriveTables = false
	}
}

func loadTables(teams, players, props string) (*models.SummaryTables, error) {
	var tables models.SummaryTables
	for _, t := range []struct {
		path string
		dst  **models.SummaryTable
	}{
		{teams, &tables.Teams},
		{players, &tables.Players},
		{props, &tables.Props},
	} {
		if t.path == "" {
			continue
		}
		table, err := extractor.ReadSummaryTableFile(t.path)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", t.path, err)
		}
		*t.dst = table
	}
	if tables.Empty() {
		return nil, nil
	}
	return &tables, nil
}

func processFile(ctx context.Context, p *pipeline.Pipeline, inputPath string, tables *models.SummaryTables, outDir string, out config.OutputConfig) error {
	// Validate input file
	if _, err := os.Stat(inputPath); os.IsNotExist(err) {
		return fmt.Errorf("input file not found: %s", inputPath)
	}

	fmt.Printf("Processing: %s\n", inputPath)
	fmt.Printf("  Detected format: %s\n", detectFormat(inputPath))

	res, err := p.Run(ctx, pipeline.Input{Source: extractor.FileSource{Path: inputPath}, Tables: tables})
	if err != nil {
		return err
	}

	d := res.Diagnostics.Reconstruction
	fmt.Printf("  Found %d single bet(s), %d parlay(s), %d leg(s)\n", len(res.Singles), len(res.Parlays), len(res.Legs))
	if d.DiscardedBets+d.DiscardedLegs > 0 {
		fmt.Printf("  Discarded %d incomplete bet(s) and %d incomplete leg(s)\n", d.DiscardedBets, d.DiscardedLegs)
	}
	if res.Diagnostics.OrphanLegs > 0 {
		fmt.Printf("  Skipped %d leg(s) with no parlay header\n", res.Diagnostics.OrphanLegs)
	}

	if len(res.Singles)+len(res.Parlays) == 0 {
		fmt.Println("  Warning: No bets found. The export may not be a bet history, or it uses an unsupported layout.")
		fmt.Println("  Try exporting the history as a spreadsheet if a PDF was used.")
	}

	w := &writer.CSVWriter{AmericanOdds: out.AmericanOdds}
	written, err := w.WriteAll(outDir, res)
	if err != nil {
		return err
	}

	if out.Chart {
		path := filepath.Join(outDir, chartFile)
		img, err := writer.RenderProfitChart(res.Stats.ProfitTimeline)
		if err != nil {
			return err
		}
		if err := os.WriteFile(path, img, 0o644); err != nil {
			return fmt.Errorf("failed to write chart: %w", err)
		}
		written = append(written, path)
	}

	if out.Workbook {
		path := filepath.Join(outDir, workbookFile)
		err := w.WriteToFile(path, func(o io.Writer) error { return writer.WriteWorkbook(o, res) })
		if err != nil {
			return err
		}
		written = append(written, path)
	}

	for _, path := range written {
		fmt.Printf("  Written: %s\n", path)
	}

	s := res.Stats
	fmt.Printf("  Wins: %d  Losses: %d  Legs: %d\n", s.Wins, s.Losses, s.TotalLegs)
	if n := s.ProfitTimeline.Len(); n > 0 {
		fmt.Printf("  Final profit: %.2f\n", s.ProfitTimeline.Profits[n-1])
	}
	return nil
}

// detectFormat sniffs the file for the progress line only; the pipeline
// reads the file itself.
func detectFormat(path string) extractor.Format {
	f, err := os.Open(path)
	if err != nil {
		return extractor.FormatText
	}
	defer f.Close()

	head := make([]byte, 512)
	n, err := io.ReadFull(f, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return extractor.FormatText
	}
	return extractor.DetectFormat(path, head[:n])
}
