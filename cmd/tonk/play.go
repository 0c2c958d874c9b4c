package main

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"tonk-service/internal/tonk"
	"tonk-service/pkg/utils/random"
)

const youID = "you"

var errQuit = errors.New("quit")

type PlayCmd struct {
	Seed  int64  `default:"0" help:"RNG seed (0 for random)"`
	Stake int64  `default:"10" help:"Stake per seat"`
	Name  string `default:"You" help:"Display name"`
}

func (c *PlayCmd) Run() error {
	seed := c.Seed
	if seed == 0 {
		seed = random.Seed()
	}
	engine := tonk.NewEngine(random.New(seed))
	g, err := engine.Create(c.Stake, tonk.Identity{ID: youID, Name: c.Name})
	if err != nil {
		return err
	}

	st := newStyles()
	fmt.Printf("seed %d\n\n", seed)
	in := bufio.NewScanner(os.Stdin)
	for g.Status == tonk.StatusInProgress {
		fmt.Println(st.table(tonk.View(g, youID), youID))
		fmt.Print(prompt(g))
		if !in.Scan() {
			return in.Err()
		}

		a, err := parseCommand(in.Text(), g)
		if errors.Is(err, errQuit) {
			return nil
		}
		if err != nil {
			fmt.Println(st.Error.Render(err.Error()))
			continue
		}
		next, err := engine.Act(g, youID, a)
		if err != nil {
			fmt.Println(st.Error.Render(err.Error()))
			continue
		}
		g = next
	}

	fmt.Println(st.table(tonk.View(g, youID), youID))
	if s, ok := g.Settlement(); ok && s.WinnerID == youID {
		fmt.Println(st.Winner.Render(fmt.Sprintf("You collect %d", s.Amount)))
	}
	return nil
}

func prompt(g *tonk.Game) string {
	if g.Phase == tonk.PhaseAwaitDiscard {
		return "discard which card? (x N, q) > "
	}
	if g.Players[0].DropEligible {
		return "[d]raw, [p]ick up discard, drop, q > "
	}
	return "[d]raw, [p]ick up discard, q > "
}

// parseCommand turns a line of input into an action for the player in seat 0.
// Discards name a 1-based position in the hand.
func parseCommand(line string, g *tonk.Game) (tonk.Action, error) {
	fields := strings.Fields(strings.ToLower(line))
	if len(fields) == 0 {
		return tonk.Action{}, errors.New("enter a command")
	}
	switch fields[0] {
	case "q", "quit":
		return tonk.Action{}, errQuit
	case "d", "draw":
		return tonk.Action{Kind: tonk.ActionDraw}, nil
	case "p", "pick":
		return tonk.Action{Kind: tonk.ActionDraw, FromDiscard: true}, nil
	case "drop":
		return tonk.Action{Kind: tonk.ActionDrop}, nil
	case "x", "discard":
		if len(fields) != 2 {
			return tonk.Action{}, errors.New("usage: x N")
		}
		hand := g.Players[0].Hand
		n, err := strconv.Atoi(fields[1])
		if err != nil || n < 1 || n > len(hand) {
			return tonk.Action{}, fmt.Errorf("pick a card between 1 and %d", len(hand))
		}
		return tonk.Action{Kind: tonk.ActionDiscard, CardID: hand[n-1].ID}, nil
	default:
		return tonk.Action{}, fmt.Errorf("unknown command %q", fields[0])
	}
}
