package tonk

import "fmt"

const (
	DeckSize  = 40
	SeatCount = 4
	HandSize  = 5
)

// Source supplies uniformly distributed integers in [0, n).
// *rand.Rand from math/rand/v2 satisfies it.
type Source interface {
	IntN(n int) int
}

// FreshDeck returns the 40 cards in construction order (suit by suit, rank by rank).
func FreshDeck() []Card {
	deck := make([]Card, 0, DeckSize)
	seq := 0
	for _, suit := range Suits {
		for _, rank := range Ranks {
			deck = append(deck, NewCard(seq, suit, rank))
			seq++
		}
	}
	return deck
}

// NewDeck returns a freshly shuffled deck.
func NewDeck(rng Source) []Card {
	deck := FreshDeck()
	Shuffle(deck, rng)
	return deck
}

// Shuffle permutes cards in place with a Fisher-Yates pass.
func Shuffle(cards []Card, rng Source) {
	for i := len(cards) - 1; i > 0; i-- {
		j := rng.IntN(i + 1)
		cards[i], cards[j] = cards[j], cards[i]
	}
}

// Deal hands out handSize cards to each player one at a time, taking cards from
// the tail of deck. The input slice is not modified.
func Deal(deck []Card, players, handSize int) ([][]Card, []Card, error) {
	if players <= 0 || handSize <= 0 {
		return nil, nil, fmt.Errorf("deal: invalid layout %dx%d", players, handSize)
	}
	if players*handSize > len(deck) {
		return nil, nil, fmt.Errorf("deal: need %d cards, deck has %d", players*handSize, len(deck))
	}

	remaining := append([]Card(nil), deck...)
	hands := make([][]Card, players)
	for i := range hands {
		hands[i] = make([]Card, 0, handSize+1)
	}
	for round := 0; round < handSize; round++ {
		for p := 0; p < players; p++ {
			last := len(remaining) - 1
			hands[p] = append(hands[p], remaining[last])
			remaining = remaining[:last]
		}
	}
	return hands, remaining, nil
}

// drawFromDeck pops the draw pile, recycling the discard pile underneath the
// current top discard when the draw pile runs out.
func (g *Game) drawFromDeck(rng Source) (Card, error) {
	if len(g.DrawPile) == 0 {
		if len(g.DiscardPile) < 2 {
			return Card{}, ErrNoCardsAvailable
		}
		top := g.DiscardPile[0]
		recycled := append([]Card(nil), g.DiscardPile[1:]...)
		Shuffle(recycled, rng)
		g.DrawPile = recycled
		g.DiscardPile = []Card{top}
		g.Reshuffles++
	}

	last := len(g.DrawPile) - 1
	card := g.DrawPile[last]
	g.DrawPile = g.DrawPile[:last]
	return card, nil
}

func (g *Game) drawFromDiscard() (Card, error) {
	if len(g.DiscardPile) == 0 {
		return Card{}, ErrEmptyDiscardPile
	}
	card := g.DiscardPile[0]
	g.DiscardPile = g.DiscardPile[1:]
	return card, nil
}

func (g *Game) pushDiscard(c Card) {
	g.DiscardPile = append([]Card{c}, g.DiscardPile...)
}

// TopDiscard returns the face-up discard, if any.
func (g *Game) TopDiscard() (Card, bool) {
	if len(g.DiscardPile) == 0 {
		return Card{}, false
	}
	return g.DiscardPile[0], true
}
