package tonk

const (
	tripleScore    = 11
	firstTurnScore = 41
	maxDropScore   = 50
)

// DropEligible reports whether p may drop with the hand it currently holds.
func DropEligible(p *Player, firstTurn bool) bool {
	if p.Penalties > 0 {
		return false
	}
	score := HandScore(p.Hand)
	if score <= tripleScore {
		return true
	}
	if firstTurn && score <= firstTurnScore {
		return true
	}
	return score <= maxDropScore
}

// PayoutMultiplier scales the pot for a winning drop. firstTurn means nobody
// other than the dropper has dropped yet.
func PayoutMultiplier(score int, firstTurn bool) int {
	switch {
	case score <= tripleScore:
		return 3
	case firstTurn && score == firstTurnScore:
		return 3
	case score == maxDropScore:
		return 2
	default:
		return 1
	}
}

func (g *Game) droppedCount() int {
	n := 0
	for _, p := range g.Players {
		if p.Dropped {
			n++
		}
	}
	return n
}

// ActiveCount returns the number of players that have not dropped.
func (g *Game) ActiveCount() int {
	return len(g.Players) - g.droppedCount()
}

// humanStanding reports whether any human has not dropped yet.
func (g *Game) humanStanding() bool {
	for _, p := range g.Players {
		if !p.IsBot && !p.Dropped {
			return true
		}
	}
	return false
}

func (g *Game) refreshEligibility() {
	firstTurn := g.droppedCount() == 0
	for i := range g.Players {
		g.Players[i].DropEligible = DropEligible(&g.Players[i], firstTurn)
	}
}

// drop locks in the player's score. The game ends once at most one player is
// left standing, with the dropper as winner.
func (g *Game) drop(idx int) error {
	p := &g.Players[idx]
	if p.Dropped {
		return ErrAlreadyDropped
	}
	if !DropEligible(p, g.droppedCount() == 0) {
		return ErrDropNotAllowed
	}

	p.Score = HandScore(p.Hand)
	p.Dropped = true
	p.DropEligible = false

	if g.ActiveCount() <= 1 {
		g.Status = StatusEnded
		g.WinnerID = p.ID
		g.Multiplier = PayoutMultiplier(p.Score, g.droppedCount() == 1)
		return nil
	}

	g.CurrentIndex = g.nextActive(idx)
	g.Phase = PhaseAwaitDraw
	return nil
}

// Settlement is what the ledger applies once a game has ended.
type Settlement struct {
	GameID      string
	WinnerID    string
	WinnerIsBot bool
	Multiplier  int
	Amount      int64
	Humans      []string
}

// Settlement returns the payout for an ended game.
func (g *Game) Settlement() (Settlement, bool) {
	if g.Status != StatusEnded {
		return Settlement{}, false
	}
	s := Settlement{
		GameID:     g.ID,
		WinnerID:   g.WinnerID,
		Multiplier: g.Multiplier,
		Amount:     g.Pot * int64(g.Multiplier),
	}
	for _, p := range g.Players {
		if p.IsBot {
			if p.ID == g.WinnerID {
				s.WinnerIsBot = true
			}
			continue
		}
		s.Humans = append(s.Humans, p.ID)
	}
	return s, true
}
