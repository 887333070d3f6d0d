// Package analysis derives team, player and prop summary tables from the
// bets themselves, for runs where no tables were supplied.
package analysis

import (
	"sort"
	"strconv"

	"github.com/insightdelivered/bet-history-analyzer/internal/classifier"
	"github.com/insightdelivered/bet-history-analyzer/internal/models"
)

type tally struct {
	wins, losses, total int
	props               map[string]int
}

func (t *tally) add(outcome string) {
	t.total++
	switch outcome {
	case models.ResultWon:
		t.wins++
	case models.ResultLost:
		t.losses++
	}
}

type tallies map[string]*tally

func (ts tallies) get(name string) *tally {
	t, ok := ts[name]
	if !ok {
		t = &tally{props: map[string]int{}}
		ts[name] = t
	}
	return t
}

// DeriveTables builds the tables the aggregator reshapes. A single is judged
// by its Result and a leg by its Status. Teams come from "A vs B" matches;
// players and prop types come from "Player - Prop" markets.
func DeriveTables(singles []models.BetRecord, legs []models.ParlayLeg) models.SummaryTables {
	teams, players, props := tallies{}, tallies{}, tallies{}

	observe := func(match, market, outcome string) {
		for _, team := range classifier.TeamsFromMatch(match) {
			teams.get(team).add(outcome)
		}
		player, ok := classifier.PlayerFromMarket(market)
		if !ok {
			return
		}
		p := players.get(player)
		p.add(outcome)
		if prop, ok := classifier.PropFromMarket(market); ok {
			p.props[prop]++
			props.get(prop).add(outcome)
		}
	}

	for _, b := range singles {
		observe(b.Match, b.Market, b.Result)
	}
	for _, l := range legs {
		observe(l.Match, l.Market, l.Status)
	}

	return models.SummaryTables{
		Teams:   teams.table(false),
		Players: players.table(true),
		Props:   props.table(false),
	}
}

func (ts tallies) table(withProp bool) *models.SummaryTable {
	names := make([]string, 0, len(ts))
	for name := range ts {
		names = append(names, name)
	}
	sort.Strings(names)

	table := &models.SummaryTable{Rows: make([]models.SummaryRow, 0, len(names))}
	for _, name := range names {
		t := ts[name]
		row := models.SummaryRow{
			Name:      name,
			Wins:      strconv.Itoa(t.wins),
			Losses:    strconv.Itoa(t.losses),
			TotalBets: strconv.Itoa(t.total),
		}
		if withProp {
			row.MostCommonProp = mode(t.props)
		}
		table.Rows = append(table.Rows, row)
	}
	return table
}

// mode returns the most frequent key, breaking ties alphabetically.
func mode(counts map[string]int) string {
	best, bestN := "", 0
	for k, n := range counts {
		if n > bestN || (n == bestN && k < best) {
			best, bestN = k, n
		}
	}
	return best
}
