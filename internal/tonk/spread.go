package tonk

import "sort"

// IsSpread reports whether cards form a set (three or more of one rank) or a
// run (three or more of one suit with strictly consecutive values).
func IsSpread(cards []Card) bool {
	if len(cards) < 3 {
		return false
	}

	set := true
	for _, c := range cards[1:] {
		if c.Rank != cards[0].Rank {
			set = false
			break
		}
	}
	if set {
		return true
	}

	for _, c := range cards[1:] {
		if c.Suit != cards[0].Suit {
			return false
		}
	}
	values := make([]int, len(cards))
	for i, c := range cards {
		values[i] = c.Value
	}
	sort.Ints(values)
	for i := 1; i < len(values); i++ {
		if values[i] != values[i-1]+1 {
			return false
		}
	}
	return true
}

// WouldHitSpread reports whether card would complete a spread in hand: the hand
// already holds two of its rank, or the card extends an adjacent same-suit pair
// at either end.
func WouldHitSpread(card Card, hand []Card) bool {
	sameRank := 0
	values := make([]int, 0, len(hand))
	for _, c := range hand {
		if c.Rank == card.Rank {
			sameRank++
		}
		if c.Suit == card.Suit {
			values = append(values, c.Value)
		}
	}
	if sameRank >= 2 {
		return true
	}
	if len(values) < 2 {
		return false
	}

	sort.Ints(values)
	for i := 0; i < len(values)-1; i++ {
		lo, hi := values[i], values[i+1]
		if hi != lo+1 {
			continue
		}
		if card.Value == lo-1 || card.Value == hi+1 {
			return true
		}
	}
	return false
}

// completesSpreadWith reports whether card forms a spread with any two cards of hand.
func completesSpreadWith(card Card, hand []Card) bool {
	for i := 0; i < len(hand)-1; i++ {
		for j := i + 1; j < len(hand); j++ {
			if IsSpread([]Card{hand[i], hand[j], card}) {
				return true
			}
		}
	}
	return false
}

// applyHitPenalties charges every player whose hand the deck card would hit.
// Hands are evaluated before the card joins the drawer's hand.
func (g *Game) applyHitPenalties(card Card) []string {
	var hit []string
	for i := range g.Players {
		p := &g.Players[i]
		if WouldHitSpread(card, p.Hand) {
			p.Penalties++
			hit = append(hit, p.ID)
		}
	}
	return hit
}

// decayPenalties runs once per completed discard, for every player.
func (g *Game) decayPenalties() {
	for i := range g.Players {
		if g.Players[i].Penalties > 0 {
			g.Players[i].Penalties--
		}
	}
}
