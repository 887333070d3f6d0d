// Package classifier sorts reconstructed records into singles, parlay
// headers and the legs that belong to each header.
package classifier

import (
	"github.com/insightdelivered/bet-history-analyzer/internal/models"
)

// Classification is the classifier's output. LegsByParlayID has an entry
// for every parlay header, even one with no legs.
type Classification struct {
	Singles        []models.BetRecord
	Parlays        []models.BetRecord
	Legs           []models.ParlayLeg
	LegsByParlayID map[string][]models.ParlayLeg
	OrphanLegs     int
}

func newClassification() Classification {
	return Classification{
		Singles:        []models.BetRecord{},
		Parlays:        []models.BetRecord{},
		Legs:           []models.ParlayLeg{},
		LegsByParlayID: map[string][]models.ParlayLeg{},
	}
}

// Classify walks records in order. A leg belongs to the most recent parlay
// header seen before it, as long as no other bet came in between. Legs with
// no open parlay are counted as orphans and skipped.
func Classify(records []models.RawRecord) Classification {
	c := newClassification()

	open := false
	openID := ""

	for _, rec := range records {
		switch rec.Kind {
		case models.KindBet:
			bet := models.NewBetRecord(rec.Fields)
			bet.Start = rec.Start
			if !bet.IsParlay() {
				c.Singles = append(c.Singles, bet)
				open = false
				continue
			}
			c.Parlays = append(c.Parlays, bet)
			open = true
			openID = bet.BetSlipID
			if _, ok := c.LegsByParlayID[openID]; !ok {
				c.LegsByParlayID[openID] = []models.ParlayLeg{}
			}

		case models.KindLeg:
			if !open {
				c.OrphanLegs++
				continue
			}
			leg := models.NewParlayLeg(rec.Fields, openID)
			if nav := DeriveNavigation(leg.Market, leg.Match); !nav.Empty() {
				leg.Navigation = &nav
			}
			c.Legs = append(c.Legs, leg)
			c.LegsByParlayID[openID] = append(c.LegsByParlayID[openID], leg)
		}
	}

	return c
}
