package stats

import (
	"github.com/shopspring/decimal"

	"github.com/insightdelivered/bet-history-analyzer/internal/models"
	"github.com/insightdelivered/bet-history-analyzer/internal/parser"
)

// Totals sums the money columns of one table of bets. AveragePrice is the
// mean decimal price rounded to two places. Unreadable cells count as zero.
func Totals(records []models.BetRecord) models.TableTotals {
	t := models.TableTotals{TotalBets: len(records)}
	if len(records) == 0 {
		return t
	}

	var price, wager, winnings, payout decimal.Decimal
	for _, r := range records {
		price = price.Add(parser.ParseAmount(r.Price).Value)
		wager = wager.Add(parser.ParseAmount(r.Wager).Value)
		winnings = winnings.Add(parser.ParseAmount(r.Winnings).Value)
		payout = payout.Add(parser.ParseAmount(r.Payout).Value)
	}

	t.AveragePrice = price.Div(decimal.NewFromInt(int64(len(records)))).Round(2).InexactFloat64()
	t.TotalWager = wager.InexactFloat64()
	t.TotalWinnings = winnings.InexactFloat64()
	t.TotalPayout = payout.InexactFloat64()
	return t
}
