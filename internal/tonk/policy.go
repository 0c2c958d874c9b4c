package tonk

// DrawSource is where a player takes its card from.
type DrawSource string

const (
	SourceDeck    DrawSource = "deck"
	SourceDiscard DrawSource = "discard"
)

const (
	cheapDiscardValue = 5
	comfortableScore  = 25
	riskyScore        = 35
	nearLimitScore    = 45
	riskHandSize      = 2
)

// SeatView is the public part of another seat.
type SeatView struct {
	Seat     int
	HandSize int
	Dropped  bool
}

// Snapshot is what a bot is allowed to see when it decides. It is a copy, so
// decisions can never mutate the game.
type Snapshot struct {
	Seat          int
	Hand          []Card
	Penalties     int
	DiscardTop    *Card
	DrawPileCount int
	Seats         []SeatView
}

// SnapshotFor builds the decision input for the player at seat.
func (g *Game) SnapshotFor(seat int) Snapshot {
	p := g.Players[seat]
	s := Snapshot{
		Seat:          seat,
		Hand:          append([]Card(nil), p.Hand...),
		Penalties:     p.Penalties,
		DrawPileCount: len(g.DrawPile),
		Seats:         make([]SeatView, len(g.Players)),
	}
	if top, ok := g.TopDiscard(); ok {
		s.DiscardTop = &top
	}
	for i, other := range g.Players {
		s.Seats[i] = SeatView{Seat: i, HandSize: len(other.Hand), Dropped: other.Dropped}
	}
	return s
}

// nextSeat is the next seat after s.Seat that is still playing.
func (s Snapshot) nextSeat() (SeatView, bool) {
	n := len(s.Seats)
	for step := 1; step < n; step++ {
		seat := s.Seats[(s.Seat+step)%n]
		if !seat.Dropped {
			return seat, true
		}
	}
	return SeatView{}, false
}

// DecideDrawSource picks the discard when it completes a spread with two held
// cards or is cheap; otherwise the deck.
func DecideDrawSource(s Snapshot) DrawSource {
	if s.DiscardTop == nil {
		return SourceDeck
	}
	top := *s.DiscardTop
	if completesSpreadWith(top, s.Hand) {
		return SourceDiscard
	}
	if top.Value <= cheapDiscardValue {
		return SourceDiscard
	}
	return SourceDeck
}

// potentiallySpreadable reports whether hand[i] pairs with another card by rank
// or sits next to a same-suit card.
func potentiallySpreadable(hand []Card, i int) bool {
	card := hand[i]
	for j, other := range hand {
		if j == i {
			continue
		}
		if other.Rank == card.Rank {
			return true
		}
		if other.Suit == card.Suit && abs(other.Value-card.Value) == 1 {
			return true
		}
	}
	return false
}

// DecideDiscard returns the highest-value card that is not part of a potential
// spread, falling back to the highest-value card overall. Ties keep hand order.
func DecideDiscard(hand []Card) Card {
	switch len(hand) {
	case 0:
		return Card{}
	case 1:
		return hand[0]
	}

	best := -1
	for i := range hand {
		if potentiallySpreadable(hand, i) {
			continue
		}
		if best < 0 || hand[i].Value > hand[best].Value {
			best = i
		}
	}
	if best >= 0 {
		return hand[best]
	}

	best = 0
	for i := range hand {
		if hand[i].Value > hand[best].Value {
			best = i
		}
	}
	return hand[best]
}

// DecideDrop decides whether an eligible bot should lock in its score.
func DecideDrop(s Snapshot) bool {
	if s.Penalties > 0 {
		return false
	}
	score := HandScore(s.Hand)
	switch {
	case score <= tripleScore:
		return true
	case score <= comfortableScore:
		return true
	case score <= riskyScore && s.atRisk():
		return true
	case score >= nearLimitScore && score <= maxDropScore:
		return true
	default:
		return false
	}
}

// atRisk guesses that a short-handed next player is about to go out.
func (s Snapshot) atRisk() bool {
	next, ok := s.nextSeat()
	if !ok {
		return false
	}
	return next.HandSize <= riskHandSize
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
