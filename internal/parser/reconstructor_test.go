package parser

import (
	"fmt"
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/insightdelivered/bet-history-analyzer/internal/models"
)

func betFields(date, betType, result, id string) []string {
	return []string{
		date, "Settled", "NFL", "Chiefs vs Bills", betType, "Spread", "1.91",
		"10", "19.10", "19.10", "19.10", result, id,
	}
}

func legFields(n int, gameDate string) []string {
	return []string{
		fmt.Sprint(n), "Won", "NBA", "Lakers vs Celtics", "LeBron James - Points",
		"Over 25.5", "1.87", gameDate,
	}
}

func flatten(records ...[]string) []string {
	var out []string
	for _, r := range records {
		out = append(out, r...)
	}
	return out
}

func TestReconstruct_RoundTrip(t *testing.T) {
	want := [][]string{
		betFields("1 Jan 2024 @ 3:00pm", "Single", "Won", "A1"),
		betFields("2 Jan 2024 @ 4:15pm", "Single", "Lost", "A2"),
		betFields("3 Jan 2024 @ 9:00am", "Single", "Won", "A3"),
	}

	records, diag := Reconstruct(flatten(want...), Options{})
	require.Len(t, records, len(want))
	for i, rec := range records {
		assert.Equal(t, models.KindBet, rec.Kind)
		assert.Equal(t, want[i], rec.Fields)
		assert.Equal(t, i*models.BetFieldCount, rec.Start)
		assert.False(t, rec.Padded)
	}
	assert.Equal(t, 3, diag.Bets)
	assert.Equal(t, 3, diag.Boundaries)
	assert.Zero(t, diag.DiscardedBets)
	assert.Zero(t, diag.DroppedTokens)
}

// generatedHistory builds a random but well-formed token stream and the
// records it must reconstruct to.
func generatedHistory(faker *gofakeit.Faker, bets int) ([]string, [][]string) {
	from := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, 12, 31, 0, 0, 0, 0, time.UTC)
	leagues := []string{"NFL", "NBA", "NHL", "MLB", "EPL"}

	var tokens []string
	var want [][]string
	for i := 0; i < bets; i++ {
		betType := faker.RandomString([]string{"Single", "Parlay"})
		wager := faker.Float64Range(1, 100)
		price := faker.Float64Range(1.1, 12)
		bet := []string{
			faker.DateRange(from, to).Format("2 Jan 2006 @ 3:04pm"),
			"Settled",
			faker.RandomString(leagues),
			faker.Company() + " vs " + faker.Company(),
			betType,
			faker.RandomString([]string{"Spread", "Moneyline", "Total"}),
			fmt.Sprintf("%.2f", price),
			fmt.Sprintf("%.2f", wager),
			fmt.Sprintf("%.2f", wager*price),
			fmt.Sprintf("%.2f", wager*price),
			fmt.Sprintf("%.2f", wager*price),
			faker.RandomString([]string{"Won", "Lost"}),
			faker.Numerify("BS#########"),
		}
		tokens = append(tokens, bet...)
		want = append(want, bet)

		if betType != "Parlay" {
			continue
		}
		legs := faker.Number(2, 4)
		for n := 1; n <= legs; n++ {
			gameDate := faker.DateRange(from, to).Format("Mon 2 Jan")
			if faker.Bool() {
				gameDate = faker.DateRange(from, to).Format("2 Jan 2006 @ 3:04pm")
			}
			leg := []string{
				fmt.Sprint(n),
				faker.RandomString([]string{"Won", "Lost"}),
				faker.RandomString(leagues),
				faker.Company() + " vs " + faker.Company(),
				faker.FirstName() + " " + faker.LastName() + " - Points",
				fmt.Sprintf("Over %.1f", faker.Float64Range(5, 40)),
				fmt.Sprintf("%.2f", faker.Float64Range(1.1, 4)),
				gameDate,
			}
			tokens = append(tokens, leg...)
			want = append(want, leg)
		}
	}
	return tokens, want
}

func TestReconstruct_GeneratedHistories(t *testing.T) {
	for seed := uint64(1); seed <= 20; seed++ {
		t.Run(fmt.Sprintf("seed=%d", seed), func(t *testing.T) {
			tokens, want := generatedHistory(gofakeit.New(seed), 15)

			records, diag := Reconstruct(tokens, Options{})
			require.Len(t, records, len(want))
			for i, rec := range records {
				assert.Equal(t, want[i], rec.Fields)
			}
			assert.Zero(t, diag.DroppedTokens)
			assert.Zero(t, diag.DiscardedBets+diag.DiscardedLegs)
		})
	}
}

func TestReconstruct_ShortRecordDiscarded(t *testing.T) {
	short := betFields("1 Jan 2024 @ 3:00pm", "Single", "Won", "A1")[:9]
	full := betFields("2 Jan 2024 @ 3:00pm", "Single", "Won", "A2")

	records, diag := Reconstruct(flatten(short, full), Options{Policy: PolicyDiscard})
	require.Len(t, records, 1)
	assert.Equal(t, full, records[0].Fields)
	assert.Equal(t, 1, diag.DiscardedBets)
}

func TestReconstruct_ShortRecordPadded(t *testing.T) {
	short := betFields("1 Jan 2024 @ 3:00pm", "Single", "Won", "A1")[:9]
	full := betFields("2 Jan 2024 @ 3:00pm", "Single", "Won", "A2")

	records, diag := Reconstruct(flatten(short, full), Options{Policy: PolicyPad})
	require.Len(t, records, 2)
	assert.True(t, records[0].Padded)
	assert.Len(t, records[0].Fields, models.BetFieldCount)
	assert.Equal(t, short, records[0].Fields[:9])
	assert.Equal(t, "", records[0].Fields[12])
	assert.Equal(t, 1, diag.PaddedBets)
}

func TestReconstruct_TrailingShortRecord(t *testing.T) {
	full := betFields("1 Jan 2024 @ 3:00pm", "Single", "Won", "A1")
	tail := []string{"2 Jan 2024 @ 3:00pm", "Settled", "NBA"}

	records, diag := Reconstruct(flatten(full, tail), Options{})
	require.Len(t, records, 1)
	assert.Equal(t, 1, diag.DiscardedBets)

	records, diag = Reconstruct(flatten(full, tail), Options{Policy: PolicyPad})
	require.Len(t, records, 2)
	assert.Equal(t, "NBA", records[1].Fields[2])
	assert.Equal(t, 1, diag.PaddedBets)
}

func TestReconstruct_JunkBetweenRecordsDropped(t *testing.T) {
	first := betFields("1 Jan 2024 @ 3:00pm", "Single", "Won", "A1")
	second := betFields("2 Jan 2024 @ 3:00pm", "Single", "Lost", "A2")
	tokens := flatten([]string{"Bet History", "Export"}, first, []string{"Page 1 of 3", "7"}, second)

	records, diag := Reconstruct(tokens, Options{})
	require.Len(t, records, 2)
	assert.Equal(t, first, records[0].Fields)
	assert.Equal(t, second, records[1].Fields)
	assert.Equal(t, 4, diag.DroppedTokens)
}

func TestReconstruct_ParlayLegs(t *testing.T) {
	header := betFields("1 Jan 2024 @ 3:00pm", "Parlay", "Won", "P1")
	next := betFields("2 Jan 2024 @ 3:00pm", "Single", "Lost", "S1")
	tokens := flatten(
		header,
		legFields(1, "1 Jan 2024 @ 7:00pm"),
		legFields(2, "Sun 7 Jan"),
		legFields(3, "1 Jan 2024 @ 9:30pm"),
		next,
	)

	records, diag := Reconstruct(tokens, Options{})
	require.Len(t, records, 5)
	assert.Equal(t, models.KindBet, records[0].Kind)
	for i := 1; i <= 3; i++ {
		assert.Equal(t, models.KindLeg, records[i].Kind)
		assert.Len(t, records[i].Fields, models.LegSourceFieldCount)
		assert.Equal(t, fmt.Sprint(i), records[i].Fields[0])
	}
	assert.Equal(t, "1 Jan 2024 @ 7:00pm", records[1].Fields[7])
	assert.Equal(t, next, records[4].Fields)
	assert.Equal(t, 3, diag.Legs)
	assert.Equal(t, 2, diag.Bets)
	assert.Equal(t, models.BetFieldCount, records[1].Start)
}

func TestReconstruct_LegNumbersIgnoredAfterSingle(t *testing.T) {
	single := betFields("1 Jan 2024 @ 3:00pm", "Single", "Won", "S1")
	tokens := flatten(single, legFields(1, "Sun 7 Jan"))

	records, diag := Reconstruct(tokens, Options{})
	require.Len(t, records, 1)
	assert.Equal(t, models.LegSourceFieldCount, diag.DroppedTokens)
	assert.Zero(t, diag.Legs)
}

func TestReconstruct_ShortLegCutByBoundary(t *testing.T) {
	header := betFields("1 Jan 2024 @ 3:00pm", "Parlay", "Lost", "P1")
	partial := legFields(1, "x")[:4]
	next := betFields("2 Jan 2024 @ 3:00pm", "Single", "Won", "S1")

	records, diag := Reconstruct(flatten(header, partial, next), Options{})
	require.Len(t, records, 2)
	assert.Equal(t, 1, diag.DiscardedLegs)
	assert.Equal(t, next, records[1].Fields)
}

func TestReconstruct_LegMissingGameDateDiscarded(t *testing.T) {
	header := betFields("1 Jan 2024 @ 3:00pm", "Parlay", "Lost", "P1")
	partial := legFields(1, "x")[:models.LegSourceFieldCount-1]
	next := betFields("2 Jan 2024 @ 3:00pm", "Single", "Won", "S1")

	records, diag := Reconstruct(flatten(header, partial, next), Options{Policy: PolicyDiscard})
	require.Len(t, records, 2)
	assert.Equal(t, header, records[0].Fields)
	assert.Equal(t, models.KindBet, records[1].Kind)
	assert.Equal(t, next, records[1].Fields)
	assert.Equal(t, len(header)+len(partial), records[1].Start)
	assert.Equal(t, 1, diag.DiscardedLegs)
	assert.Equal(t, 2, diag.Boundaries)
	assert.Zero(t, diag.Legs)
	assert.Zero(t, diag.DroppedTokens)
}

func TestReconstruct_LegMissingGameDatePadded(t *testing.T) {
	header := betFields("1 Jan 2024 @ 3:00pm", "Parlay", "Lost", "P1")
	partial := legFields(1, "x")[:models.LegSourceFieldCount-1]
	next := betFields("2 Jan 2024 @ 3:00pm", "Single", "Won", "S1")

	records, diag := Reconstruct(flatten(header, partial, next), Options{Policy: PolicyPad})
	require.Len(t, records, 3)
	assert.Equal(t, models.KindLeg, records[1].Kind)
	assert.True(t, records[1].Padded)
	assert.Equal(t, "1", records[1].Fields[0])
	assert.Equal(t, "", records[1].Fields[7])
	assert.Equal(t, models.KindBet, records[2].Kind)
	assert.Equal(t, next, records[2].Fields)
	assert.Equal(t, 1, diag.PaddedLegs)
	assert.Equal(t, 2, diag.Bets)
}

func TestReconstruct_BoundaryGameDateAtEndOfInput(t *testing.T) {
	header := betFields("1 Jan 2024 @ 3:00pm", "Parlay", "Won", "P1")
	leg := legFields(1, "1 Jan 2024 @ 7:00pm")

	records, diag := Reconstruct(flatten(header, leg), Options{Trace: true})
	require.Len(t, records, 2)
	assert.Equal(t, leg, records[1].Fields)
	assert.Equal(t, 1, diag.Legs)
	assert.Equal(t, 1, diag.Boundaries)
	assert.Zero(t, diag.DiscardedLegs)
}

func TestReconstructor_PendingGameDateTrace(t *testing.T) {
	header := betFields("1 Jan 2024 @ 3:00pm", "Parlay", "Won", "P1")
	leg := legFields(1, "1 Jan 2024 @ 7:00pm")
	r := NewReconstructor(Options{Trace: true})
	for i, tok := range flatten(header, leg) {
		r.Feed(i, tok)
	}
	assert.Equal(t, "leg-date-pending", r.State())

	r.Feed(len(header)+len(leg), "2")
	assert.Equal(t, "collecting-leg", r.State())

	trace := r.Trace()
	require.Len(t, trace, len(header)+len(leg)+1)
	held := trace[len(trace)-2]
	assert.Equal(t, len(header)+len(leg)-1, held.Index)
	assert.Equal(t, "field", held.Result)
	assert.True(t, held.Boundary)
	assert.Equal(t, "leg-start", trace[len(trace)-1].Result)
}

func TestReconstruct_ShortBetSwallowsFollowingTokens(t *testing.T) {
	parlay := betFields("1 Jan 2024 @ 3:00pm", "Parlay", "Won", "P1")
	shortBet := []string{"2 Jan 2024 @ 3:00pm", "Settled"}
	tokens := flatten(parlay, legFields(1, "Sun"), shortBet, []string{"3 Jan 2024 @ 3:00pm"}, legFields(2, "Mon"))

	records, diag := Reconstruct(tokens, Options{})
	require.Len(t, records, 2)
	assert.Equal(t, models.KindLeg, records[1].Kind)
	// the second short bet swallows the leg tokens and is discarded at end of input
	assert.Equal(t, 2, diag.DiscardedBets)
}

func TestReconstruct_NoBoundaries(t *testing.T) {
	records, diag := Reconstruct([]string{"Won", "NFL", "10"}, Options{})
	assert.Empty(t, records)
	assert.NotNil(t, records)
	assert.Equal(t, 3, diag.DroppedTokens)
	assert.Zero(t, diag.Boundaries)
}

func TestReconstructor_Transitions(t *testing.T) {
	r := NewReconstructor(Options{Trace: true})
	assert.Equal(t, "between", r.State())
	assert.Equal(t, -1, r.LastBoundaryIndex())

	r.Feed(0, "junk")
	assert.Equal(t, "between", r.State())

	r.Feed(1, "1 Jan 2024 @ 3:00pm")
	assert.Equal(t, "collecting-bet", r.State())
	assert.Equal(t, 1, r.LastBoundaryIndex())

	fields := betFields("", "Parlay", "Won", "P1")[1:]
	for i, f := range fields {
		r.Feed(2+i, f)
	}
	assert.Equal(t, "between", r.State())

	r.Feed(20, "Leg 1")
	assert.Equal(t, "collecting-leg", r.State())

	trace := r.Trace()
	require.NotEmpty(t, trace)
	assert.Equal(t, "dropped", trace[0].Result)
	assert.Equal(t, "boundary", trace[1].Result)
	assert.True(t, trace[1].Boundary)
	assert.Equal(t, "leg-start", trace[len(trace)-1].Result)
}

func TestParsePolicy(t *testing.T) {
	p, err := ParsePolicy("")
	require.NoError(t, err)
	assert.Equal(t, PolicyDiscard, p)

	p, err = ParsePolicy(" PAD ")
	require.NoError(t, err)
	assert.Equal(t, PolicyPad, p)

	_, err = ParsePolicy("truncate")
	assert.Error(t, err)
}
