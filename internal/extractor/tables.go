package extractor

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/insightdelivered/bet-history-analyzer/internal/models"
)

// Header aliases accepted for each summary-table column.
var (
	nameHeaders  = []string{"team", "player", "prop type", "prop", "name"}
	winsHeaders  = []string{"wins", "won"}
	lossHeaders  = []string{"losses", "lost"}
	totalHeaders = []string{"total bets", "totalbets", "total", "bets"}
	propHeaders  = []string{"most common prop", "most common prop type", "mostcommonprop"}
)

// ReadSummaryTable loads a team, player or prop performance table from CSV.
// The first row is a header; columns are matched case-insensitively and
// missing columns read as empty cells.
func ReadSummaryTable(r io.Reader) (*models.SummaryTable, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return &models.SummaryTable{Rows: []models.SummaryRow{}}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading summary table header: %w", err)
	}

	idx := columnIndex(header)
	if idx["name"] < 0 {
		return nil, fmt.Errorf("summary table has no name column (expected one of %s)", strings.Join(nameHeaders, ", "))
	}

	table := &models.SummaryTable{Rows: []models.SummaryRow{}}
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading summary table: %w", err)
		}
		table.Rows = append(table.Rows, models.SummaryRow{
			Name:           cell(rec, idx["name"]),
			Wins:           cell(rec, idx["wins"]),
			Losses:         cell(rec, idx["losses"]),
			TotalBets:      cell(rec, idx["total"]),
			MostCommonProp: cell(rec, idx["prop"]),
		})
	}
	return table, nil
}

// ReadSummaryTableFile is ReadSummaryTable over a file path.
func ReadSummaryTableFile(path string) (*models.SummaryTable, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open summary table: %w", err)
	}
	defer f.Close()
	return ReadSummaryTable(f)
}

func columnIndex(header []string) map[string]int {
	idx := map[string]int{"name": -1, "wins": -1, "losses": -1, "total": -1, "prop": -1}
	aliases := map[string][]string{
		"name":   nameHeaders,
		"wins":   winsHeaders,
		"losses": lossHeaders,
		"total":  totalHeaders,
		"prop":   propHeaders,
	}
	for i, h := range header {
		h = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		for key, names := range aliases {
			if idx[key] >= 0 {
				continue
			}
			for _, n := range names {
				if h == n {
					idx[key] = i
				}
			}
		}
	}
	return idx
}

func cell(rec []string, i int) string {
	if i < 0 || i >= len(rec) {
		return ""
	}
	return strings.TrimSpace(rec[i])
}
