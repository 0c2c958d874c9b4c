package main

import (
	"fmt"
	"strings"

	"tonk-service/internal/tonk"

	"github.com/charmbracelet/lipgloss"
)

type styles struct {
	Header    lipgloss.Style
	CardRed   lipgloss.Style
	CardBlack lipgloss.Style
	Hidden    lipgloss.Style
	You       lipgloss.Style
	Bot       lipgloss.Style
	Dropped   lipgloss.Style
	Winner    lipgloss.Style
	Pot       lipgloss.Style
	Error     lipgloss.Style
}

func newStyles() styles {
	return styles{
		Header: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 2).
			Bold(true),
		CardRed: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B")).
			Bold(true),
		CardBlack: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#DDDDDD")).
			Bold(true),
		Hidden: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#626262")),
		You: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#04B575")).
			Bold(true),
		Bot: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#74B9FF")),
		Dropped: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#626262")).
			Italic(true),
		Winner: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFD700")).
			Bold(true),
		Pot: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFD700")),
		Error: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B")),
	}
}

func (s styles) card(c tonk.Card) string {
	switch {
	case c.Hidden:
		return s.Hidden.Render("??")
	case c.Suit.IsRed():
		return s.CardRed.Render(c.String())
	default:
		return s.CardBlack.Render(c.String())
	}
}

func (s styles) hand(cards []tonk.Card, numbered bool) string {
	parts := make([]string, len(cards))
	for i, c := range cards {
		if numbered {
			parts[i] = fmt.Sprintf("%d:%s", i+1, s.card(c))
		} else {
			parts[i] = s.card(c)
		}
	}
	return strings.Join(parts, " ")
}

// table renders pg from the point of view of viewerID.
func (s styles) table(pg tonk.PublicGame, viewerID string) string {
	var b strings.Builder
	b.WriteString(s.Header.Render(fmt.Sprintf("Tonk • stake %d", pg.Stake)))
	b.WriteString("  ")
	b.WriteString(s.Pot.Render(fmt.Sprintf("pot %d", pg.Pot)))
	b.WriteString("\n\n")

	for i, p := range pg.Players {
		marker := "  "
		if i == pg.CurrentIndex && pg.Status == tonk.StatusInProgress {
			marker = "▶ "
		}
		name := s.Bot.Render(p.ID)
		if p.ID == viewerID {
			name = s.You.Render("You")
		}
		line := fmt.Sprintf("%s%-6s %s", marker, name, s.hand(p.Hand, p.ID == viewerID && !p.Dropped))
		switch {
		case p.Dropped:
			line += s.Dropped.Render(fmt.Sprintf("  dropped with %d", p.Score))
		case p.Penalties > 0:
			line += s.Error.Render(fmt.Sprintf("  hit (%d)", p.Penalties))
		}
		b.WriteString(line)
		b.WriteString("\n")
	}

	top := s.Hidden.Render("empty")
	if n := len(pg.DiscardPile); n > 0 {
		top = s.card(pg.DiscardPile[0])
	}
	b.WriteString(fmt.Sprintf("\ndeck %d   discard %s\n", pg.DrawPileCount, top))

	if pg.Status == tonk.StatusEnded {
		b.WriteString("\n")
		b.WriteString(s.Winner.Render(fmt.Sprintf("%s wins ×%d", pg.WinnerID, pg.Multiplier)))
		b.WriteString("\n")
	}
	return b.String()
}
