package tonk

import "fmt"

type Status string

const (
	// StatusWaiting is reserved for a future lobby; Create never produces it.
	StatusWaiting    Status = "waiting"
	StatusInProgress Status = "playing"
	StatusEnded      Status = "ended"
)

// TurnPhase tracks where the current actor is within its turn.
type TurnPhase string

const (
	PhaseAwaitDraw    TurnPhase = "draw"
	PhaseAwaitDiscard TurnPhase = "discard"
)

// Identity carries the pass-through fields of a seat.
type Identity struct {
	ID     string
	Name   string
	Avatar string
}

type Player struct {
	ID           string `json:"id"`
	Name         string `json:"username"`
	Avatar       string `json:"avatar,omitempty"`
	IsBot        bool   `json:"isAI"`
	Hand         []Card `json:"hand"`
	Dropped      bool   `json:"isDropped"`
	DropEligible bool   `json:"canDrop"`
	Penalties    int    `json:"penalties"`
	Score        int    `json:"score"`
}

// Game is the aggregate mutated by the Engine. Callers must serialize access
// to a given game.
type Game struct {
	ID           string    `json:"id"`
	Players      []Player  `json:"players"`
	CurrentIndex int       `json:"currentPlayerIndex"`
	Phase        TurnPhase `json:"phase"`
	DrawPile     []Card    `json:"deck"`
	DiscardPile  []Card    `json:"discardPile"`
	Status       Status    `json:"status"`
	Stake        int64     `json:"stake"`
	Pot          int64     `json:"pot"`
	WinnerID     string    `json:"winner,omitempty"`
	Multiplier   int       `json:"winningMultiplier"`
	Turns        int       `json:"turns"`
	Reshuffles   int       `json:"reshuffles"`
}

// Clone returns a deep copy of g.
func (g *Game) Clone() *Game {
	c := *g
	c.Players = make([]Player, len(g.Players))
	for i, p := range g.Players {
		p.Hand = append([]Card(nil), p.Hand...)
		c.Players[i] = p
	}
	c.DrawPile = append([]Card(nil), g.DrawPile...)
	c.DiscardPile = append([]Card(nil), g.DiscardPile...)
	return &c
}

// SeatOf returns the seat index of the player with the given id.
func (g *Game) SeatOf(playerID string) (int, bool) {
	for i, p := range g.Players {
		if p.ID == playerID {
			return i, true
		}
	}
	return -1, false
}

// CurrentPlayer returns the player whose turn it is.
func (g *Game) CurrentPlayer() *Player {
	if g.CurrentIndex < 0 || g.CurrentIndex >= len(g.Players) {
		return nil
	}
	return &g.Players[g.CurrentIndex]
}

// nextActive returns the first non-dropped seat after from, wrapping.
func (g *Game) nextActive(from int) int {
	n := len(g.Players)
	for step := 1; step <= n; step++ {
		j := (from + step) % n
		if !g.Players[j].Dropped {
			return j
		}
	}
	return from
}

// CardCount counts every card held by piles and hands.
func (g *Game) CardCount() int {
	n := len(g.DrawPile) + len(g.DiscardPile)
	for _, p := range g.Players {
		n += len(p.Hand)
	}
	return n
}

// CheckConservation verifies the 40 distinct cards are all accounted for.
func (g *Game) CheckConservation() error {
	if n := g.CardCount(); n != DeckSize {
		return fmt.Errorf("%w: %d cards in play", ErrCardConservation, n)
	}
	seen := make(map[string]struct{}, DeckSize)
	mark := func(cards []Card) error {
		for _, c := range cards {
			if _, dup := seen[c.ID]; dup {
				return fmt.Errorf("%w: duplicate %s", ErrCardConservation, c.ID)
			}
			seen[c.ID] = struct{}{}
		}
		return nil
	}
	if err := mark(g.DrawPile); err != nil {
		return err
	}
	if err := mark(g.DiscardPile); err != nil {
		return err
	}
	for _, p := range g.Players {
		if err := mark(p.Hand); err != nil {
			return err
		}
	}
	return nil
}
