package tonk

// PublicGame is a game as one viewer is allowed to see it. The draw pile is
// reduced to a count; other players' live hands are concealed.
type PublicGame struct {
	ID            string    `json:"id"`
	Players       []Player  `json:"players"`
	CurrentIndex  int       `json:"currentPlayerIndex"`
	Phase         TurnPhase `json:"phase"`
	DrawPileCount int       `json:"deckCount"`
	DiscardPile   []Card    `json:"discardPile"`
	Status        Status    `json:"status"`
	Stake         int64     `json:"stake"`
	Pot           int64     `json:"pot"`
	WinnerID      string    `json:"winner,omitempty"`
	Multiplier    int       `json:"winningMultiplier"`
	Turns         int       `json:"turns"`
}

// View renders g for viewerID. An empty viewerID yields the spectator view.
// Dropped players' hands stay visible since they were revealed at drop.
func View(g *Game, viewerID string) PublicGame {
	pg := PublicGame{
		ID:            g.ID,
		Players:       make([]Player, len(g.Players)),
		CurrentIndex:  g.CurrentIndex,
		Phase:         g.Phase,
		DrawPileCount: len(g.DrawPile),
		DiscardPile:   append([]Card(nil), g.DiscardPile...),
		Status:        g.Status,
		Stake:         g.Stake,
		Pot:           g.Pot,
		WinnerID:      g.WinnerID,
		Multiplier:    g.Multiplier,
		Turns:         g.Turns,
	}
	for i, p := range g.Players {
		if p.ID == viewerID || p.Dropped {
			p.Hand = append([]Card(nil), p.Hand...)
		} else {
			hidden := make([]Card, len(p.Hand))
			for j := range hidden {
				hidden[j] = concealed(p.Hand[j])
			}
			p.Hand = hidden
		}
		pg.Players[i] = p
	}
	return pg
}
