package classifier

import (
	"strings"

	"github.com/insightdelivered/bet-history-analyzer/internal/models"
)

const (
	playerSeparator = " - "
	teamSeparator   = " vs "
)

// DeriveNavigation tags a leg for cross-referencing. A market like
// "LeBron James - Points" names a player; a match like "Lakers vs Celtics"
// names the teams.
func DeriveNavigation(market, match string) models.LegNavigation {
	var nav models.LegNavigation

	if player, ok := PlayerFromMarket(market); ok {
		nav.Player = player
	}
	nav.Teams = TeamsFromMatch(match)

	return nav
}

// PlayerFromMarket returns the text before the first " - " of a player-prop
// market.
func PlayerFromMarket(market string) (string, bool) {
	before, _, found := strings.Cut(market, playerSeparator)
	if !found {
		return "", false
	}
	player := strings.TrimSpace(before)
	return player, player != ""
}

// PropFromMarket returns the prop type after the first " - " of a
// player-prop market, e.g. "Points".
func PropFromMarket(market string) (string, bool) {
	_, after, found := strings.Cut(market, playerSeparator)
	if !found {
		return "", false
	}
	prop := strings.TrimSpace(after)
	return prop, prop != ""
}

// TeamsFromMatch splits a "Home vs Away" match. Blank sides are skipped and
// nil is returned when the separator is absent.
func TeamsFromMatch(match string) []string {
	if !strings.Contains(match, teamSeparator) {
		return nil
	}
	var teams []string
	for _, part := range strings.Split(match, teamSeparator) {
		if team := strings.TrimSpace(part); team != "" {
			teams = append(teams, team)
		}
	}
	return teams
}
