package tonk

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/require"
)

const humanID = "human-1"

func seeded(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

var suitCodes = map[byte]Suit{'h': Hearts, 'd': Diamonds, 'c': Clubs, 's': Spades}

// mustCard resolves codes such as "Ah", "7c" or "Ks" to the deck card.
func mustCard(t testing.TB, code string) Card {
	t.Helper()
	require.GreaterOrEqual(t, len(code), 2, "card code %q", code)
	rank := Rank(code[:len(code)-1])
	suit, ok := suitCodes[code[len(code)-1]]
	require.True(t, ok, "unknown suit in %q", code)
	for _, c := range FreshDeck() {
		if c.Rank == rank && c.Suit == suit {
			return c
		}
	}
	t.Fatalf("no card %q in deck", code)
	return Card{}
}

func mustCards(t testing.TB, codes ...string) []Card {
	t.Helper()
	if len(codes) == 0 {
		return nil
	}
	cards := make([]Card, len(codes))
	for i, code := range codes {
		cards[i] = mustCard(t, code)
	}
	return cards
}

// table lays out a game by hand. Cards not named anywhere fill the bottom of
// the draw pile; drawNext lists the next deck draws in order.
type table struct {
	hands     [SeatCount][]string
	discard   []string
	drawNext  []string
	dropped   [SeatCount]bool
	penalties [SeatCount]int
}

func (tb table) build(t testing.TB) *Game {
	t.Helper()

	used := map[string]bool{}
	take := func(codes []string) []Card {
		cards := mustCards(t, codes...)
		for _, c := range cards {
			require.False(t, used[c.ID], "card %s used twice", c)
			used[c.ID] = true
		}
		return cards
	}

	players := make([]Player, SeatCount)
	for i := range players {
		players[i] = Player{Hand: take(tb.hands[i]), Penalties: tb.penalties[i]}
		if i == 0 {
			players[i].ID = humanID
			players[i].Name = "Human"
		} else {
			players[i].ID = []string{"", "ai-1", "ai-2", "ai-3"}[i]
			players[i].Name = "AI"
			players[i].IsBot = true
		}
		if tb.dropped[i] {
			players[i].Dropped = true
			players[i].Score = HandScore(players[i].Hand)
		}
	}

	discard := take(tb.discard)
	next := take(tb.drawNext)
	var pile []Card
	for _, c := range FreshDeck() {
		if !used[c.ID] {
			pile = append(pile, c)
		}
	}
	for i := len(next) - 1; i >= 0; i-- {
		pile = append(pile, next[i])
	}

	g := &Game{
		ID:          "game-test",
		Players:     players,
		Phase:       PhaseAwaitDraw,
		DrawPile:    pile,
		DiscardPile: discard,
		Status:      StatusInProgress,
		Stake:       10,
		Pot:         40,
		Multiplier:  1,
	}
	g.refreshEligibility()
	require.NoError(t, g.CheckConservation())
	return g
}

func newEngine(seed uint64) *Engine {
	return NewEngine(seeded(seed))
}

// scripted replays fixed IntN results.
type scripted struct {
	values []int
	calls  int
}

func (s *scripted) IntN(n int) int {
	v := s.values[s.calls%len(s.values)]
	s.calls++
	return v % n
}
