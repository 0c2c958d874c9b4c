package tonk

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var alice = Identity{ID: humanID, Name: "alice", Avatar: "https://example.com/a.png"}

func TestCreateDealsFreshGame(t *testing.T) {
	g, err := newEngine(11).Create(25, alice)
	require.NoError(t, err)

	require.Len(t, g.Players, SeatCount)
	assert.Equal(t, humanID, g.Players[0].ID)
	assert.Equal(t, "alice", g.Players[0].Name)
	assert.False(t, g.Players[0].IsBot)
	for i := 1; i < SeatCount; i++ {
		p := g.Players[i]
		assert.True(t, p.IsBot)
		assert.Equal(t, []string{"", "ai-1", "ai-2", "ai-3"}[i], p.ID)
		assert.Equal(t, defaultBotAvatar, p.Avatar)
	}
	for _, p := range g.Players {
		assert.Len(t, p.Hand, HandSize)
		assert.Zero(t, p.Penalties)
		assert.Equal(t, p.DropEligible, DropEligible(&p, true))
	}

	assert.Len(t, g.DiscardPile, 1)
	assert.Len(t, g.DrawPile, 19)
	assert.Equal(t, StatusInProgress, g.Status)
	assert.Equal(t, PhaseAwaitDraw, g.Phase)
	assert.Equal(t, 0, g.CurrentIndex)
	assert.Equal(t, int64(100), g.Pot)
	assert.Equal(t, 1, g.Multiplier)
	require.NoError(t, g.CheckConservation())
}

func TestCreateIsDeterministicPerSeed(t *testing.T) {
	a, err := newEngine(99).Create(10, alice)
	require.NoError(t, err)
	b, err := newEngine(99).Create(10, alice)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestCreateRejectsBadInput(t *testing.T) {
	e := newEngine(1)

	_, err := e.Create(0, alice)
	assert.ErrorIs(t, err, ErrInvalidStake)
	_, err = e.Create(-5, alice)
	assert.ErrorIs(t, err, ErrInvalidStake)
	_, err = e.Create(10, Identity{Name: "nobody"})
	assert.ErrorIs(t, err, ErrInvalidIdentity)
}

func TestActValidation(t *testing.T) {
	base := table{
		hands: [SeatCount][]string{
			{"Ah", "2h", "Kc", "Qs", "6d"},
			{"3d", "3c", "Jh", "Jd", "4s"},
		},
		discard: []string{"Jc"},
	}.build(t)
	drawn := base.Clone()
	drawn.Phase = PhaseAwaitDiscard
	ended := base.Clone()
	ended.Status = StatusEnded

	cardID := base.Players[0].Hand[0].ID
	tests := []struct {
		name  string
		game  *Game
		actor string
		act   Action
		want  error
	}{
		{"stranger", base, "mallory", Action{Kind: ActionDraw}, ErrNotSeated},
		{"out of turn", base, "ai-1", Action{Kind: ActionDraw}, ErrNotYourTurn},
		{"unknown action", base, humanID, Action{Kind: "pass"}, ErrUnknownAction},
		{"discard without card", drawn, humanID, Action{Kind: ActionDiscard}, ErrCardIDRequired},
		{"discard before draw", base, humanID, Action{Kind: ActionDiscard, CardID: cardID}, ErrMustDrawFirst},
		{"draw twice", drawn, humanID, Action{Kind: ActionDraw}, ErrAlreadyDrawn},
		{"drop after draw", drawn, humanID, Action{Kind: ActionDrop}, ErrMustDiscardFirst},
		{"game over", ended, humanID, Action{Kind: ActionDraw}, ErrGameNotInProgress},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := tt.game.Clone()
			_, err := newEngine(1).Act(tt.game, tt.actor, tt.act)
			require.ErrorIs(t, err, tt.want)
			assert.False(t, IsFault(err))
			assert.Equal(t, before, tt.game)
		})
	}
}

func TestActFaultLeavesGameUntouched(t *testing.T) {
	g := table{
		hands: [SeatCount][]string{{"Ah", "2h", "Kc", "Qs", "6d", "7d"}},
	}.build(t)
	g.Phase = PhaseAwaitDiscard
	before := g.Clone()

	_, err := newEngine(1).Act(g, humanID, Action{Kind: ActionDiscard, CardID: mustCard(t, "Ks").ID})
	require.ErrorIs(t, err, ErrCardNotInHand)
	assert.True(t, IsFault(err))
	assert.Equal(t, before, g)
}

func TestActDoesNotMutateInput(t *testing.T) {
	e := newEngine(3)
	g, err := e.Create(10, alice)
	require.NoError(t, err)
	before := g.Clone()

	drawn, err := e.Act(g, humanID, Action{Kind: ActionDraw})
	require.NoError(t, err)
	assert.Equal(t, before, g)

	snapshot := drawn.Clone()
	_, err = e.Act(drawn, humanID, Action{Kind: ActionDiscard, CardID: drawn.Players[0].Hand[0].ID})
	require.NoError(t, err)
	assert.Equal(t, snapshot, drawn)
}

func TestBotsPlayUntilHumanTurn(t *testing.T) {
	e := newEngine(21)
	g, err := e.Create(10, alice)
	require.NoError(t, err)

	g, err = e.Act(g, humanID, Action{Kind: ActionDraw})
	require.NoError(t, err)
	g, err = e.Act(g, humanID, Action{Kind: ActionDiscard, CardID: g.Players[0].Hand[0].ID})
	require.NoError(t, err)

	require.NoError(t, g.CheckConservation())
	if g.Status == StatusInProgress {
		assert.Equal(t, 0, g.CurrentIndex)
		assert.Equal(t, PhaseAwaitDraw, g.Phase)
		assert.Equal(t, 4, g.Turns)
	}
}

func TestBotDropEndsGame(t *testing.T) {
	g := table{
		hands: [SeatCount][]string{
			{"5h", "6d", "7c", "Kd", "Qh"},
			{"Ac", "2d", "3s", "4c", "Ad"},
			{"2h", "3h", "4h", "5c", "6c"},
			{"7h", "7d", "6h", "5d", "4d"},
		},
		discard:  []string{"Kc"},
		drawNext: []string{"Qs", "Jc"},
		dropped:  [SeatCount]bool{false, false, true, true},
	}.build(t)
	e := newEngine(1)

	g, err := e.Act(g, humanID, Action{Kind: ActionDraw})
	require.NoError(t, err)
	g, err = e.Act(g, humanID, Action{Kind: ActionDiscard, CardID: mustCard(t, "Qs").ID})
	require.NoError(t, err)

	assert.Equal(t, StatusEnded, g.Status)
	assert.Equal(t, "ai-1", g.WinnerID)
	assert.Equal(t, 11, g.Players[1].Score)
	assert.Equal(t, 3, g.Multiplier)
	assert.Equal(t, mustCard(t, "Jc"), g.DiscardPile[0])

	s, ok := g.Settlement()
	require.True(t, ok)
	assert.True(t, s.WinnerIsBot)
	assert.Equal(t, int64(120), s.Amount)
	assert.Equal(t, []string{humanID}, s.Humans)
}

// Two bots whose pairs keep their scores between the policy's drop bands
// would trade cards forever once the human has dropped.
func TestBotsFinishOnceNoHumanIsStanding(t *testing.T) {
	g := table{
		hands: [SeatCount][]string{
			{"Ah", "2h", "5h", "6d", "7d"},
			{"Js", "4h", "3s", "3c", "Jd"},
			{"Qc", "Qd", "2s", "5c", "6c"},
			{"Kh", "6h", "7h", "Ks", "Ad"},
		},
		discard: []string{"Kc"},
		dropped: [SeatCount]bool{false, false, true, false},
	}.build(t)
	e := NewEngine(seeded(4), WithMaxAutomatedTurns(20))

	next, err := e.Act(g, humanID, Action{Kind: ActionDrop})
	require.NoError(t, err)
	require.NoError(t, next.CheckConservation())

	assert.Equal(t, StatusEnded, next.Status)
	assert.Contains(t, []string{"ai-1", "ai-3"}, next.WinnerID)
	assert.LessOrEqual(t, next.Turns, 3, "a full idle rotation forces the next eligible bot to drop")
	assert.Equal(t, 21, next.Players[0].Score)
	seat, ok := next.SeatOf(next.WinnerID)
	require.True(t, ok)
	assert.True(t, next.Players[seat].Dropped)
	assert.Equal(t, 1, next.ActiveCount())
}

func TestAutomationIsBounded(t *testing.T) {
	e := NewEngine(seeded(3), WithMaxAutomatedTurns(1))
	g, err := e.Create(10, alice)
	require.NoError(t, err)

	g, err = e.Act(g, humanID, Action{Kind: ActionDraw})
	require.NoError(t, err)
	_, err = e.Act(g, humanID, Action{Kind: ActionDiscard, CardID: g.Players[0].Hand[0].ID})
	require.ErrorIs(t, err, ErrAutomationStalled)
	assert.True(t, IsFault(err))
}

// TestPolicyDrivenGamesHoldInvariants lets the human follow the bot policy
// through whole games and checks the table after every action.
func TestPolicyDrivenGamesHoldInvariants(t *testing.T) {
	for seed := uint64(1); seed <= 40; seed++ {
		e := newEngine(seed)
		g, err := e.Create(10, alice)
		require.NoError(t, err)

		for step := 0; g.Status == StatusInProgress; step++ {
			require.Less(t, step, 2000, "seed %d did not finish", seed)
			require.Equal(t, 0, g.CurrentIndex, "seed %d: human must be on turn", seed)

			me := g.Players[0]
			var a Action
			switch {
			case g.Phase == PhaseAwaitDraw && me.DropEligible && DecideDrop(g.SnapshotFor(0)):
				a = Action{Kind: ActionDrop}
			case g.Phase == PhaseAwaitDraw:
				src := DecideDrawSource(g.SnapshotFor(0))
				a = Action{Kind: ActionDraw, FromDiscard: src == SourceDiscard}
			default:
				a = Action{Kind: ActionDiscard, CardID: DecideDiscard(me.Hand).ID}
			}

			g, err = e.Act(g, humanID, a)
			require.NoError(t, err, "seed %d step %d", seed, step)
			require.NoError(t, g.CheckConservation())
		}

		assert.NotEmpty(t, g.WinnerID, "seed %d", seed)
		assert.LessOrEqual(t, g.ActiveCount(), 1, "seed %d", seed)
		assert.Contains(t, []int{1, 2, 3}, g.Multiplier)
	}
}

func TestJoinTakesFirstBotSeat(t *testing.T) {
	e := newEngine(8)
	g, err := e.Create(10, alice)
	require.NoError(t, err)
	g.Players[1].Penalties = 2

	bob := Identity{ID: "human-2", Name: "bob"}
	joined, err := e.Join(g, bob)
	require.NoError(t, err)

	p := joined.Players[1]
	assert.Equal(t, "human-2", p.ID)
	assert.Equal(t, "bob", p.Name)
	assert.False(t, p.IsBot)
	assert.Equal(t, g.Players[1].Hand, p.Hand)
	assert.Equal(t, 2, p.Penalties)
	assert.Equal(t, "ai-1", g.Players[1].ID, "input game must stay untouched")

	_, err = e.Join(joined, bob)
	assert.ErrorIs(t, err, ErrAlreadySeated)

	for i := 3; i <= 4; i++ {
		joined, err = e.Join(joined, Identity{ID: []string{"", "", "", "human-3", "human-4"}[i]})
		require.NoError(t, err)
	}
	_, err = e.Join(joined, Identity{ID: "human-5"})
	assert.ErrorIs(t, err, ErrNoBotSeat)

	_, err = e.Join(joined, Identity{})
	assert.ErrorIs(t, err, ErrInvalidIdentity)

	over := joined.Clone()
	over.Status = StatusEnded
	_, err = e.Join(over, Identity{ID: "human-6"})
	assert.ErrorIs(t, err, ErrGameNotInProgress)
}

func TestJoinedHumanStopsBotChain(t *testing.T) {
	e := newEngine(8)
	g, err := e.Create(10, alice)
	require.NoError(t, err)
	g, err = e.Join(g, Identity{ID: "human-2", Name: "bob"})
	require.NoError(t, err)

	g, err = e.Act(g, humanID, Action{Kind: ActionDraw})
	require.NoError(t, err)
	g, err = e.Act(g, humanID, Action{Kind: ActionDiscard, CardID: g.Players[0].Hand[0].ID})
	require.NoError(t, err)

	assert.Equal(t, 1, g.CurrentIndex)
	assert.Equal(t, PhaseAwaitDraw, g.Phase)
	assert.Equal(t, 1, g.Turns)

	_, err = e.Act(g, humanID, Action{Kind: ActionDraw})
	assert.ErrorIs(t, err, ErrNotYourTurn)
}
