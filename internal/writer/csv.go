package writer

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/insightdelivered/bet-history-analyzer/internal/models"
)

// Output file names written by WriteAll.
const (
	SingleBetsFile    = "single_bets.csv"
	ParlayHeadersFile = "parlay_headers.csv"
	ParlayLegsFile    = "parlay_legs.csv"
	TeamStatsFile     = "team_stats.csv"
	PlayerStatsFile   = "player_stats.csv"
	PropStatsFile     = "prop_stats.csv"
)

// AmericanPriceColumn is appended when CSVWriter.AmericanOdds is set.
const AmericanPriceColumn = "Price (American)"

// CSVWriter writes bets, legs and entity rollups as CSV.
type CSVWriter struct {
	AmericanOdds bool
}

// WriteToFile creates path and fills it with write.
func (w *CSVWriter) WriteToFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file %q: %w", path, err)
	}
	defer f.Close()

	if err := write(f); err != nil {
		return err
	}
	return f.Close()
}

// WriteBets writes singles or parlay headers with the bet column contract.
func (w *CSVWriter) WriteBets(out io.Writer, bets []models.BetRecord) error {
	header := append([]string(nil), models.BetFieldNames...)
	rows := make([][]string, 0, len(bets))
	for _, b := range bets {
		row := b.Fields()
		if w.AmericanOdds {
			row = append(row, FormatAmerican(b.Price))
		}
		rows = append(rows, row)
	}
	if w.AmericanOdds {
		header = append(header, AmericanPriceColumn)
	}
	return writeRows(out, header, rows)
}

// WriteLegs writes parlay legs with the leg column contract.
func (w *CSVWriter) WriteLegs(out io.Writer, legs []models.ParlayLeg) error {
	header := append([]string(nil), models.LegFieldNames...)
	rows := make([][]string, 0, len(legs))
	for _, l := range legs {
		row := l.Fields()
		if w.AmericanOdds {
			row = append(row, FormatAmerican(l.Price))
		}
		rows = append(rows, row)
	}
	if w.AmericanOdds {
		header = append(header, AmericanPriceColumn)
	}
	return writeRows(out, header, rows)
}

// WriteEntities writes a team, player or prop rollup sorted by name. The
// Most Common Prop column is written only when withProp is set.
func (w *CSVWriter) WriteEntities(out io.Writer, nameColumn string, entities map[string]models.EntityPerformance, withProp bool) error {
	header := []string{nameColumn, "Wins", "Losses", "Total Bets"}
	if withProp {
		header = append(header, "Most Common Prop")
	}

	names := make([]string, 0, len(entities))
	for name := range entities {
		names = append(names, name)
	}
	sort.Strings(names)

	rows := make([][]string, 0, len(names))
	for _, name := range names {
		e := entities[name]
		row := []string{name, strconv.Itoa(e.Wins), strconv.Itoa(e.Losses), strconv.Itoa(e.TotalBets)}
		if withProp {
			row = append(row, e.MostCommonProp)
		}
		rows = append(rows, row)
	}
	return writeRows(out, header, rows)
}

// WriteAll writes every non-empty collection of res into dir and returns
// the paths written.
func (w *CSVWriter) WriteAll(dir string, res *models.Result) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory %q: %w", dir, err)
	}

	type job struct {
		name  string
		empty bool
		write func(io.Writer) error
	}
	jobs := []job{
		{SingleBetsFile, len(res.Singles) == 0, func(o io.Writer) error { return w.WriteBets(o, res.Singles) }},
		{ParlayHeadersFile, len(res.Parlays) == 0, func(o io.Writer) error { return w.WriteBets(o, res.Parlays) }},
		{ParlayLegsFile, len(res.Legs) == 0, func(o io.Writer) error { return w.WriteLegs(o, res.Legs) }},
		{TeamStatsFile, len(res.Stats.TeamPerformance) == 0, func(o io.Writer) error {
			return w.WriteEntities(o, "Team", res.Stats.TeamPerformance, false)
		}},
		{PlayerStatsFile, len(res.Stats.PlayerPerformance) == 0, func(o io.Writer) error {
			return w.WriteEntities(o, "Player", res.Stats.PlayerPerformance, true)
		}},
		{PropStatsFile, len(res.Stats.PropPerformance) == 0, func(o io.Writer) error {
			return w.WriteEntities(o, "Prop Type", res.Stats.PropPerformance, false)
		}},
	}

	var written []string
	for _, j := range jobs {
		if j.empty {
			continue
		}
		path := filepath.Join(dir, j.name)
		if err := w.WriteToFile(path, j.write); err != nil {
			return written, err
		}
		written = append(written, path)
	}
	return written, nil
}

func writeRows(out io.Writer, header []string, rows [][]string) error {
	writer := csv.NewWriter(out)

	if err := writer.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, row := range rows {
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	writer.Flush()
	return writer.Error()
}
