package extractor

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

// ExtractXLSX flattens a workbook into one line per non-empty cell, sheet
// by sheet and row-major within each sheet.
func ExtractXLSX(data []byte) (string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("failed to open XLSX file: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return "", fmt.Errorf("XLSX file has no sheets")
	}

	var b strings.Builder
	for _, sheet := range sheets {
		rows, err := f.GetRows(sheet)
		if err != nil {
			return "", fmt.Errorf("failed to read sheet %q: %w", sheet, err)
		}
		for _, row := range rows {
			for _, cell := range row {
				if strings.TrimSpace(cell) == "" {
					continue
				}
				b.WriteString(cell)
				b.WriteByte('\n')
			}
		}
	}
	return b.String(), nil
}
