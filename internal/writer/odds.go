package writer

import (
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/insightdelivered/bet-history-analyzer/internal/parser"
)

var (
	one     = decimal.NewFromInt(1)
	two     = decimal.NewFromInt(2)
	hundred = decimal.NewFromInt(100)
)

// DecimalToAmerican converts a decimal price such as "1.91" to American
// odds (-110). Prices of 2.00 and above are positive: (d - 1) * 100.
// Below that they are negative: -100 / (d - 1). The bool is false for
// unreadable prices and prices of 1.00 or less.
func DecimalToAmerican(price string) (int, bool) {
	amt := parser.ParseAmount(price)
	if !amt.OK || amt.Value.LessThanOrEqual(one) {
		return 0, false
	}
	d := amt.Value

	if d.GreaterThanOrEqual(two) {
		return int(d.Sub(one).Mul(hundred).Round(0).IntPart()), true
	}
	return int(hundred.Neg().Div(d.Sub(one)).Round(0).IntPart()), true
}

// FormatAmerican renders a decimal price as "+150" or "-110", or "" when
// the price cannot be converted.
func FormatAmerican(price string) string {
	american, ok := DecimalToAmerican(price)
	if !ok {
		return ""
	}
	if american > 0 {
		return "+" + strconv.Itoa(american)
	}
	return strconv.Itoa(american)
}
