package writer

import (
	"fmt"
	"io"
	"sort"

	"github.com/xuri/excelize/v2"

	"github.com/insightdelivered/bet-history-analyzer/internal/models"
)

// Workbook sheet names.
const (
	SummarySheet = "Summary"
	SinglesSheet = "Singles"
	ParlaysSheet = "Parlays"
	LegsSheet    = "Legs"
)

// WriteWorkbook writes res as an xlsx workbook with a summary sheet and one
// sheet per record table.
func WriteWorkbook(out io.Writer, res *models.Result) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), SummarySheet); err != nil {
		return fmt.Errorf("failed to name summary sheet: %w", err)
	}
	if err := writeSheet(f, SummarySheet, summaryRows(res.Stats)); err != nil {
		return err
	}

	tables := []struct {
		sheet  string
		header []string
		rows   [][]string
	}{
		{SinglesSheet, models.BetFieldNames, betRows(res.Singles)},
		{ParlaysSheet, models.BetFieldNames, betRows(res.Parlays)},
		{LegsSheet, models.LegFieldNames, legRows(res.Legs)},
	}
	for _, t := range tables {
		if _, err := f.NewSheet(t.sheet); err != nil {
			return fmt.Errorf("failed to add sheet %q: %w", t.sheet, err)
		}
		rows := make([][]any, 0, len(t.rows)+1)
		rows = append(rows, toCells(t.header))
		for _, r := range t.rows {
			rows = append(rows, toCells(r))
		}
		if err := writeSheet(f, t.sheet, rows); err != nil {
			return err
		}
	}

	if _, err := f.WriteTo(out); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func summaryRows(s models.StatsSummary) [][]any {
	rows := [][]any{
		{"Wins", s.Wins},
		{"Losses", s.Losses},
		{"Total Legs", s.TotalLegs},
		{},
		{"Table", "Total Bets", "Average Price", "Total Wager", "Total Winnings", "Total Payout"},
		totalsRow("Singles", s.Totals.Singles),
		totalsRow("Parlays", s.Totals.Parlays),
		{},
		{"League", "Bets"},
	}

	leagues := make([]string, 0, len(s.SportsDist))
	for l := range s.SportsDist {
		leagues = append(leagues, l)
	}
	sort.Strings(leagues)
	for _, l := range leagues {
		rows = append(rows, []any{l, s.SportsDist[l]})
	}

	if n := s.ProfitTimeline.Len(); n > 0 {
		rows = append(rows, []any{}, []any{"Final Profit", s.ProfitTimeline.Profits[n-1]})
	}
	return rows
}

func totalsRow(name string, t models.TableTotals) []any {
	return []any{name, t.TotalBets, t.AveragePrice, t.TotalWager, t.TotalWinnings, t.TotalPayout}
}

func betRows(bets []models.BetRecord) [][]string {
	rows := make([][]string, len(bets))
	for i, b := range bets {
		rows[i] = b.Fields()
	}
	return rows
}

func legRows(legs []models.ParlayLeg) [][]string {
	rows := make([][]string, len(legs))
	for i, l := range legs {
		rows[i] = l.Fields()
	}
	return rows
}

func toCells(row []string) []any {
	cells := make([]any, len(row))
	for i, v := range row {
		cells[i] = v
	}
	return cells
}

func writeSheet(f *excelize.File, sheet string, rows [][]any) error {
	for i, row := range rows {
		if len(row) == 0 {
			continue
		}
		axis, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, axis, &row); err != nil {
			return fmt.Errorf("failed to write %s row %d: %w", sheet, i+1, err)
		}
	}
	return nil
}
