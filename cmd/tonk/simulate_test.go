package main

import (
	"context"
	"testing"

	"tonk-service/internal/tonk"
	"tonk-service/pkg/utils/random"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSimulateIsIndependentOfWorkers(t *testing.T) {
	serial, err := simulate(context.Background(), 24, 1, 42, 10)
	require.NoError(t, err)
	parallel, err := simulate(context.Background(), 24, 6, 42, 10)
	require.NoError(t, err)
	assert.Equal(t, serial, parallel)

	for i, r := range serial {
		assert.Contains(t, []int{1, 2, 3}, r.Multiplier, "game %d", i)
		assert.GreaterOrEqual(t, r.WinnerSeat, 0, "game %d", i)
		assert.Less(t, r.WinnerSeat, tonk.SeatCount, "game %d", i)
	}
}

func TestSimulateFinishesEveryGame(t *testing.T) {
	results, err := simulate(context.Background(), 500, 4, 1, 10)
	require.NoError(t, err)
	require.Len(t, results, 500)
	for i, r := range results {
		assert.Positive(t, r.Multiplier, "game %d", i)
	}
}

func TestSummarizeTallies(t *testing.T) {
	s := summarize([]gameResult{
		{WinnerSeat: 0, Multiplier: 1, Turns: 10},
		{WinnerSeat: 2, Multiplier: 3, Turns: 30, Reshuffles: 1},
		{WinnerSeat: 2, Multiplier: 1, Turns: 20},
	})

	assert.Equal(t, 3, s.Games)
	assert.Equal(t, [tonk.SeatCount]int{1, 0, 2, 0}, s.BySeat)
	assert.Equal(t, map[int]int{1: 2, 3: 1}, s.ByMult)
	assert.Equal(t, 60, s.TotalTurns)
	assert.Equal(t, 30, s.MaxTurns)
	assert.Equal(t, 1, s.Reshuffled)
	assert.Equal(t, "66.7%", share(2, 3))
	assert.Equal(t, "0.0%", share(1, 0))
}

func TestParseCommand(t *testing.T) {
	g, err := tonk.NewEngine(random.New(3)).Create(10, tonk.Identity{ID: youID})
	require.NoError(t, err)
	hand := g.Players[0].Hand

	tests := []struct {
		line string
		want tonk.Action
	}{
		{"d", tonk.Action{Kind: tonk.ActionDraw}},
		{"  DRAW ", tonk.Action{Kind: tonk.ActionDraw}},
		{"p", tonk.Action{Kind: tonk.ActionDraw, FromDiscard: true}},
		{"drop", tonk.Action{Kind: tonk.ActionDrop}},
		{"x 1", tonk.Action{Kind: tonk.ActionDiscard, CardID: hand[0].ID}},
		{"discard 5", tonk.Action{Kind: tonk.ActionDiscard, CardID: hand[4].ID}},
	}
	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			got, err := parseCommand(tt.line, g)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	for _, bad := range []string{"", "x", "x 0", "x 6", "x two", "fold"} {
		_, err := parseCommand(bad, g)
		assert.Error(t, err, "%q", bad)
	}
	_, err = parseCommand("q", g)
	assert.ErrorIs(t, err, errQuit)
}

func TestPolicyActionIsLegal(t *testing.T) {
	g, err := tonk.NewEngine(random.New(9)).Create(10, tonk.Identity{ID: youID})
	require.NoError(t, err)

	a := policyAction(g, 0)
	assert.NotEqual(t, tonk.ActionDiscard, a.Kind, "a turn starts with a draw or a drop")
}
