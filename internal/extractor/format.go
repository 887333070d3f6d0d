package extractor

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"
	"unicode/utf8"
)

// Format is the container type of an uploaded export.
type Format string

const (
	FormatText           Format = "text"
	FormatCSV            Format = "csv"
	FormatSpreadsheetXML Format = "spreadsheet-xml"
	FormatHTML           Format = "html"
	FormatXLSX           Format = "xlsx"
	FormatPDF            Format = "pdf"
)

// sniffLen is how much of the file DetectFormat looks at.
const sniffLen = 512

// DetectFormat identifies an export by its leading bytes and falls back to
// the file extension. Legacy ".xls" exports are usually spreadsheet XML or
// HTML in disguise, so content wins over the name.
func DetectFormat(name string, data []byte) Format {
	head := data
	if len(head) > sniffLen {
		head = head[:sniffLen]
	}
	head = bytes.TrimLeft(head, "\xef\xbb\xbf \t\r\n")
	lower := bytes.ToLower(head)

	switch {
	case bytes.HasPrefix(head, []byte("%PDF")):
		return FormatPDF
	case bytes.HasPrefix(head, []byte("PK\x03\x04")):
		return FormatXLSX
	case bytes.HasPrefix(lower, []byte("<?xml")),
		bytes.Contains(lower, []byte("<workbook")),
		bytes.Contains(lower, []byte("<ss:")):
		return FormatSpreadsheetXML
	case bytes.Contains(lower, []byte("<html")),
		bytes.Contains(lower, []byte("<table")):
		return FormatHTML
	}

	switch strings.ToLower(filepath.Ext(name)) {
	case ".pdf":
		return FormatPDF
	case ".xlsx":
		return FormatXLSX
	case ".xml", ".xls":
		return FormatSpreadsheetXML
	case ".htm", ".html":
		return FormatHTML
	case ".csv":
		return FormatCSV
	default:
		return FormatText
	}
}

// ExtractRaw turns an export into the raw text dump the tokenizer reads.
// Markup formats are returned as-is; the tokenizer strips their tags.
func ExtractRaw(name string, data []byte) (string, error) {
	switch DetectFormat(name, data) {
	case FormatPDF:
		return ExtractPDF(data)
	case FormatXLSX:
		return ExtractXLSX(data)
	default:
		if !isUTF8Text(data) {
			return "", fmt.Errorf("%s does not look like a text export", filepath.Base(name))
		}
		return string(data), nil
	}
}

// isUTF8Text rejects binary uploads such as old BIFF .xls workbooks.
func isUTF8Text(data []byte) bool {
	return utf8.Valid(data) && bytes.IndexByte(data, 0) < 0
}
