package extractor

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"unicode"

	"github.com/ledongthuc/pdf"
)

// ExtractPDF returns the text of a PDF export with one text run per line,
// row by row, so every table cell becomes its own candidate token.
func ExtractPDF(data []byte) (string, error) {
	lines, err := extractWithLibrary(data)
	if err != nil {
		return "", fmt.Errorf("PDF text extraction failed: %w. The PDF may be image-based or use custom font encodings", err)
	}
	if !isReadableText(lines) {
		return "", fmt.Errorf("no readable text could be extracted from PDF. Try exporting the bet history as a spreadsheet instead")
	}
	return strings.Join(lines, "\n"), nil
}

// textQuality returns the ratio of basic ASCII readable characters to all
// characters, 0.0-1.0. unicode.IsLetter is too broad: it accepts the
// accented garbage produced by identity-encoded fonts.
func textQuality(lines []string) float64 {
	total := 0
	readable := 0
	for _, line := range lines {
		for _, r := range line {
			total++
			if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') ||
				(r >= '0' && r <= '9') || unicode.IsSpace(r) ||
				strings.ContainsRune(".,-/:;()'\"£$€%&@#!?+=*", r) {
				readable++
			}
		}
	}
	if total == 0 {
		return 0
	}
	return float64(readable) / float64(total)
}

// commonWords appear in virtually every sportsbook history export.
var commonWords = []string{
	"won", "lost", "bet", "wager", "winnings", "payout", "parlay",
	"single", "settled", "league", "match", "market", "price", "odds",
	"spread", "moneyline", "total",
}

func containsCommonWords(lines []string) bool {
	combined := strings.ToLower(strings.Join(lines, " "))
	for _, word := range commonWords {
		if strings.Contains(combined, word) {
			return true
		}
	}
	return false
}

// isReadableText requires more than 50 characters, over 60% readable ASCII
// and at least one betting word.
func isReadableText(lines []string) bool {
	if totalTextLen(lines) <= 50 {
		return false
	}
	if textQuality(lines) <= 0.6 {
		return false
	}
	return containsCommonWords(lines)
}

// extractWithLibrary tries row-based extraction first and falls back to the
// reader's whole-document plain text.
func extractWithLibrary(data []byte) (lines []string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("PDF library crashed: %v", r)
		}
	}()

	r, openErr := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if openErr != nil {
		return nil, openErr
	}

	numPages := r.NumPage()
	if numPages == 0 {
		return nil, fmt.Errorf("PDF has no pages")
	}

	lines = extractByRow(r, numPages)
	if isReadableText(lines) {
		return lines, nil
	}

	if plain := extractByReaderPlainText(r); plain != "" {
		return strings.Split(plain, "\n"), nil
	}
	return lines, nil
}

// extractByRow emits each text run of each row as its own line.
func extractByRow(r *pdf.Reader, numPages int) []string {
	var lines []string
	for i := 1; i <= numPages; i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		rows, err := page.GetTextByRow()
		if err != nil {
			continue
		}
		for _, row := range rows {
			for _, word := range row.Content {
				if s := strings.TrimSpace(word.S); s != "" {
					lines = append(lines, s)
				}
			}
		}
	}
	return lines
}

func extractByReaderPlainText(r *pdf.Reader) string {
	reader, err := r.GetPlainText()
	if err != nil {
		return ""
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}

func totalTextLen(lines []string) int {
	n := 0
	for _, l := range lines {
		n += len(strings.TrimSpace(l))
	}
	return n
}
