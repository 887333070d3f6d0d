package parser

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var (
	// D Mon YYYY @ H:MMam, e.g. "15 Jan 2024 @ 7:30pm". Whole token only.
	boundaryPattern = regexp.MustCompile(`(?i)^(\d{1,2})\s+([a-z]{3})\s+(\d{4})\s*@\s*(\d{1,2}):(\d{2})\s*(am|pm)$`)

	// "3", "12" or "Leg 3"
	legNumberPattern = regexp.MustCompile(`(?i)^(?:leg\s*)?\d{1,2}$`)
)

const datePlacedLayout = "2 Jan 2006 3:04pm"

// IsBoundary reports whether a token is a bet-placed timestamp, which always
// starts a new bet record.
func IsBoundary(token string) bool {
	return boundaryPattern.MatchString(strings.TrimSpace(token))
}

// isLegNumber reports whether a token can open a parlay leg.
func isLegNumber(token string) bool {
	return legNumberPattern.MatchString(strings.TrimSpace(token))
}

// ParseDatePlaced parses a boundary-shaped timestamp. The bool is false when
// the value does not have that shape or names an impossible date.
func ParseDatePlaced(s string) (time.Time, bool) {
	m := boundaryPattern.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return time.Time{}, false
	}
	normalized := strings.ToLower(m[1] + " " + m[2] + " " + m[3] + " " + m[4] + ":" + m[5] + m[6])
	t, err := time.Parse(datePlacedLayout, normalized)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// Amount is a leniently parsed monetary or odds value. OK is false when the
// text could not be read and Value holds the neutral zero instead.
type Amount struct {
	Value decimal.Decimal
	OK    bool
}

// ParseAmount converts strings like "19.10", "$1,234.56" or "-£5" to a
// decimal. Blank input is a valid zero.
func ParseAmount(s string) Amount {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, "£", "")
	s = strings.ReplaceAll(s, "$", "")
	s = strings.ReplaceAll(s, "€", "")
	s = strings.ReplaceAll(s, ",", "")
	s = strings.ReplaceAll(s, " ", "")
	s = strings.ReplaceAll(s, "\u00A0", "") // non-breaking space

	if s == "" || s == "-" {
		return Amount{Value: decimal.Zero, OK: true}
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return Amount{Value: decimal.Zero, OK: false}
	}
	return Amount{Value: d, OK: true}
}

// ParseCount reads a whole-number table cell such as "12" or "1,024".
// Unreadable or blank cells yield 0 and false.
func ParseCount(s string) (int, bool) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if s == "" {
		return 0, false
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		// int conversion of an out-of-range float is implementation-defined
		if f, ferr := strconv.ParseFloat(s, 64); ferr == nil && math.Abs(f) <= math.MaxInt32 && f == math.Trunc(f) {
			return int(f), true
		}
		return 0, false
	}
	return n, true
}
