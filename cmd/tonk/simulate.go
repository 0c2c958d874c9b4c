package main

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sort"
	"strconv"
	"time"

	"tonk-service/internal/tonk"
	"tonk-service/pkg/utils/random"

	"github.com/charmbracelet/lipgloss/table"
	"golang.org/x/sync/errgroup"
)

// maxHumanSteps bounds one simulated game; the engine bounds the bot turns
// between two of them.
const maxHumanSteps = 5000

// patientSteps is how long the policy seat holds out for a good drop before
// it drops with whatever it has.
const patientSteps = 60

type SimulateCmd struct {
	Games   int   `default:"1000" help:"Number of games to simulate"`
	Workers int   `default:"0" help:"Concurrent games (0 uses GOMAXPROCS)"`
	Seed    int64 `default:"0" help:"Base RNG seed (0 for random); game i uses seed+i"`
	Stake   int64 `default:"10" help:"Stake per seat"`
}

type gameResult struct {
	WinnerSeat int
	Multiplier int
	Turns      int
	Reshuffles int
}

func (c *SimulateCmd) Run() error {
	if c.Games <= 0 {
		return errors.New("games must be positive")
	}
	seed := c.Seed
	if seed == 0 {
		seed = random.Seed()
	}
	workers := c.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	fmt.Printf("Simulating %d games on %d workers (seed: %d)\n", c.Games, workers, seed)
	start := time.Now()
	results, err := simulate(context.Background(), c.Games, workers, seed, c.Stake)
	if err != nil {
		return err
	}
	printSummary(summarize(results), time.Since(start))
	return nil
}

// simulate plays games where seat 0 follows the bot policy too. Results are
// indexed by game so they do not depend on scheduling.
func simulate(ctx context.Context, games, workers int, seed, stake int64) ([]gameResult, error) {
	results := make([]gameResult, games)
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i := 0; i < games; i++ {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			r, err := playOut(seed+int64(i), stake)
			if err != nil {
				return fmt.Errorf("game %d (seed %d): %w", i, seed+int64(i), err)
			}
			results[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func playOut(seed, stake int64) (gameResult, error) {
	engine := tonk.NewEngine(random.New(seed))
	g, err := engine.Create(stake, tonk.Identity{ID: youID, Name: "policy"})
	if err != nil {
		return gameResult{}, err
	}

	for step := 0; g.Status == tonk.StatusInProgress; step++ {
		if step >= maxHumanSteps {
			return gameResult{}, errors.New("game did not finish")
		}
		action := policyAction(g, 0)
		if step >= patientSteps && g.Phase == tonk.PhaseAwaitDraw && g.Players[0].DropEligible {
			action = tonk.Action{Kind: tonk.ActionDrop}
		}
		next, err := engine.Act(g, youID, action)
		if err != nil {
			return gameResult{}, err
		}
		g = next
	}

	seat, _ := g.SeatOf(g.WinnerID)
	return gameResult{
		WinnerSeat: seat,
		Multiplier: g.Multiplier,
		Turns:      g.Turns,
		Reshuffles: g.Reshuffles,
	}, nil
}

// policyAction picks the move a bot would make in seat.
func policyAction(g *tonk.Game, seat int) tonk.Action {
	me := g.Players[seat]
	snap := g.SnapshotFor(seat)
	switch {
	case g.Phase == tonk.PhaseAwaitDraw && me.DropEligible && tonk.DecideDrop(snap):
		return tonk.Action{Kind: tonk.ActionDrop}
	case g.Phase == tonk.PhaseAwaitDraw:
		return tonk.Action{Kind: tonk.ActionDraw, FromDiscard: tonk.DecideDrawSource(snap) == tonk.SourceDiscard}
	default:
		return tonk.Action{Kind: tonk.ActionDiscard, CardID: tonk.DecideDiscard(me.Hand).ID}
	}
}

type summary struct {
	Games      int
	BySeat     [tonk.SeatCount]int
	ByMult     map[int]int
	TotalTurns int
	MaxTurns   int
	Reshuffled int
}

func summarize(results []gameResult) summary {
	s := summary{Games: len(results), ByMult: make(map[int]int)}
	for _, r := range results {
		s.BySeat[r.WinnerSeat]++
		s.ByMult[r.Multiplier]++
		s.TotalTurns += r.Turns
		if r.Turns > s.MaxTurns {
			s.MaxTurns = r.Turns
		}
		if r.Reshuffles > 0 {
			s.Reshuffled++
		}
	}
	return s
}

func share(n, total int) string {
	if total == 0 {
		return "0.0%"
	}
	return fmt.Sprintf("%.1f%%", 100*float64(n)/float64(total))
}

func printSummary(s summary, elapsed time.Duration) {
	st := newStyles()

	seats := table.New().Headers("winner seat", "games", "share")
	for seat, n := range s.BySeat {
		label := "bot " + strconv.Itoa(seat)
		if seat == 0 {
			label = "seat 0 (policy)"
		}
		seats.Row(label, strconv.Itoa(n), share(n, s.Games))
	}

	mults := make([]int, 0, len(s.ByMult))
	for m := range s.ByMult {
		mults = append(mults, m)
	}
	sort.Ints(mults)
	payouts := table.New().Headers("multiplier", "games", "share")
	for _, m := range mults {
		payouts.Row("×"+strconv.Itoa(m), strconv.Itoa(s.ByMult[m]), share(s.ByMult[m], s.Games))
	}

	fmt.Println(st.Header.Render(fmt.Sprintf("%d games in %v", s.Games, elapsed.Round(time.Millisecond))))
	fmt.Println(seats.Render())
	fmt.Println(payouts.Render())
	if s.Games > 0 {
		fmt.Printf("turns: avg %.1f, max %d; games with a reshuffle: %s\n",
			float64(s.TotalTurns)/float64(s.Games), s.MaxTurns, share(s.Reshuffled, s.Games))
	}
}
