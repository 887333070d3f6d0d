// Package tokenizer turns a flattened export dump into clean text tokens.
//
// The dump is whatever the export step produced: spreadsheet XML with one
// value per cell, a single-column CSV, or plain lines of text. Markup is
// removed, quoting is repaired and workbook boilerplate is dropped; the
// order of the remaining values is preserved. Tokenizing never fails:
// fragments that do not look like markup pass through as literal text.
package tokenizer

import (
	"html"
	"regexp"
	"strings"
)

var (
	// A tag must open with a name, '/', '?' or '!' so that text such as
	// "a < b" or "<3 goals" is left alone. Tags may span lines.
	tagPattern = regexp.MustCompile(`<[A-Za-z/?!][^<>]*>`)

	// Namespaced element names, numbered sheet names and XML declarations.
	// Bare words such as "Table" can be real values and are kept.
	noisePattern = regexp.MustCompile(`(?i)^(?:(?:ss|x|o|html):[a-z]\w*|sheet\s*\d+|<\?xml\b.*|xmlns(?::[\w-]+)?\s*=.*)$`)
)

// Stats counts what the tokenizer saw while cleaning a dump.
type Stats struct {
	Candidates int // non-blank lines after markup removal
	Kept       int
	Empty      int // blank once quoting was repaired
	Noise      int
}

// Tokenize returns the ordered, non-empty tokens of raw.
func Tokenize(raw string) []string {
	tokens, _ := TokenizeWithStats(raw)
	return tokens
}

// TokenizeWithStats is Tokenize plus counts for logging.
func TokenizeWithStats(raw string) ([]string, Stats) {
	var st Stats
	tokens := make([]string, 0)

	stripped := tagPattern.ReplaceAllString(raw, "\n")
	for _, line := range strings.Split(stripped, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		st.Candidates++

		tok := Clean(line)
		if tok == "" {
			st.Empty++
			continue
		}
		if IsNoise(tok) {
			st.Noise++
			continue
		}
		tokens = append(tokens, tok)
	}

	st.Kept = len(tokens)
	return tokens, st
}

// Clean unescapes entities, repairs quoting and trims one candidate token.
func Clean(s string) string {
	s = html.UnescapeString(s)
	s = strings.ReplaceAll(s, "\u00a0", " ")
	s = strings.TrimSpace(s)
	s = unquote(s)
	return strings.TrimSpace(s)
}

// IsNoise reports whether a cleaned token is workbook boilerplate.
func IsNoise(tok string) bool {
	return noisePattern.MatchString(tok)
}

// unquote removes one wrapping pair of quotes and collapses escaped quotes
// to a single literal quote. A value is only unwrapped when the quotes at
// either end belong to each other: `"a" vs "b"` stays as it is.
func unquote(s string) string {
	s = strings.ReplaceAll(s, `\"`, `""`)
	if len(s) >= 2 {
		first, last := s[0], s[len(s)-1]
		if (first == '"' || first == '\'') && first == last {
			inner := s[1 : len(s)-1]
			q := string(first)
			if !strings.Contains(strings.ReplaceAll(inner, q+q, ""), q) {
				s = inner
			}
		}
	}
	return strings.ReplaceAll(s, `""`, `"`)
}
