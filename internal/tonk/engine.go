package tonk

import "fmt"

type ActionKind string

const (
	ActionDraw    ActionKind = "draw"
	ActionDiscard ActionKind = "discard"
	ActionDrop    ActionKind = "drop"
)

// Action is one request from the player whose turn it is.
type Action struct {
	Kind        ActionKind
	CardID      string
	FromDiscard bool
}

const (
	defaultBotAvatar    = "https://ui-avatars.com/api/?name=AI&background=777777&color=fff"
	defaultMaxAutoTurns = 10_000
)

// Engine computes game transitions. It holds no per-game state; the random
// source must be safe for concurrent use when the engine is shared.
type Engine struct {
	rng          Source
	botAvatar    string
	maxAutoTurns int
}

type Option func(*Engine)

func WithBotAvatar(url string) Option {
	return func(e *Engine) {
		if url != "" {
			e.botAvatar = url
		}
	}
}

// WithMaxAutomatedTurns bounds the bot chain run for a single action.
func WithMaxAutomatedTurns(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.maxAutoTurns = n
		}
	}
}

func NewEngine(rng Source, opts ...Option) *Engine {
	e := &Engine{
		rng:          rng,
		botAvatar:    defaultBotAvatar,
		maxAutoTurns: defaultMaxAutoTurns,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Create deals a new game: the human takes seat 0 and acts first, three bots
// fill the rest.
func (e *Engine) Create(stake int64, human Identity) (*Game, error) {
	if stake <= 0 {
		return nil, ErrInvalidStake
	}
	if human.ID == "" {
		return nil, ErrInvalidIdentity
	}

	hands, rest, err := Deal(NewDeck(e.rng), SeatCount, HandSize)
	if err != nil {
		return nil, err
	}
	last := len(rest) - 1
	discard := []Card{rest[last]}
	rest = rest[:last]

	players := make([]Player, SeatCount)
	players[0] = Player{ID: human.ID, Name: human.Name, Avatar: human.Avatar}
	for i := 1; i < SeatCount; i++ {
		players[i] = Player{
			ID:     fmt.Sprintf("ai-%d", i),
			Name:   fmt.Sprintf("AI Player %d", i),
			Avatar: e.botAvatar,
			IsBot:  true,
		}
	}
	for i := range players {
		players[i].Hand = hands[i]
	}

	g := &Game{
		Players:      players,
		CurrentIndex: 0,
		Phase:        PhaseAwaitDraw,
		DrawPile:     rest,
		DiscardPile:  discard,
		Status:       StatusInProgress,
		Stake:        stake,
		Pot:          stake * SeatCount,
		Multiplier:   1,
	}
	g.refreshEligibility()
	return g, nil
}

// Join hands the first still-playing bot seat, with its cards and penalties,
// to a human.
func (e *Engine) Join(g *Game, human Identity) (*Game, error) {
	if human.ID == "" {
		return nil, ErrInvalidIdentity
	}
	if g.Status != StatusInProgress {
		return nil, ErrGameNotInProgress
	}
	if _, seated := g.SeatOf(human.ID); seated {
		return nil, ErrAlreadySeated
	}

	seat := -1
	for i, p := range g.Players {
		if p.IsBot && !p.Dropped {
			seat = i
			break
		}
	}
	if seat < 0 {
		return nil, ErrNoBotSeat
	}

	next := g.Clone()
	p := &next.Players[seat]
	p.ID = human.ID
	p.Name = human.Name
	p.Avatar = human.Avatar
	p.IsBot = false
	return next, nil
}

// Act applies one action for actorID and then plays bot turns until a human
// has to decide or the game ends. g is never modified: the result is a new
// game, or an error with nothing applied.
func (e *Engine) Act(g *Game, actorID string, a Action) (*Game, error) {
	seat, err := validate(g, actorID, a)
	if err != nil {
		return nil, err
	}

	next := g.Clone()
	if err := e.apply(next, seat, a); err != nil {
		return nil, err
	}
	if err := e.runBots(next); err != nil {
		return nil, err
	}
	if err := next.CheckConservation(); err != nil {
		return nil, err
	}
	return next, nil
}

func validate(g *Game, actorID string, a Action) (int, error) {
	if g.Status != StatusInProgress {
		return -1, ErrGameNotInProgress
	}
	seat, ok := g.SeatOf(actorID)
	if !ok {
		return -1, ErrNotSeated
	}
	if seat != g.CurrentIndex {
		return -1, ErrNotYourTurn
	}
	if g.Players[seat].Dropped {
		return -1, ErrAlreadyDropped
	}

	switch a.Kind {
	case ActionDraw:
		if g.Phase == PhaseAwaitDiscard {
			return -1, ErrAlreadyDrawn
		}
	case ActionDiscard:
		if a.CardID == "" {
			return -1, ErrCardIDRequired
		}
		if g.Phase != PhaseAwaitDiscard {
			return -1, ErrMustDrawFirst
		}
	case ActionDrop:
		if g.Phase == PhaseAwaitDiscard {
			return -1, ErrMustDiscardFirst
		}
	default:
		return -1, ErrUnknownAction
	}
	return seat, nil
}

func (e *Engine) apply(g *Game, seat int, a Action) error {
	switch a.Kind {
	case ActionDraw:
		return e.draw(g, seat, a.FromDiscard)
	case ActionDiscard:
		return g.discard(seat, a.CardID)
	case ActionDrop:
		return g.drop(seat)
	default:
		return ErrUnknownAction
	}
}

func (e *Engine) draw(g *Game, seat int, fromDiscard bool) error {
	var card Card
	var err error
	if fromDiscard {
		card, err = g.drawFromDiscard()
	} else {
		card, err = g.drawFromDeck(e.rng)
		if err == nil {
			g.applyHitPenalties(card)
		}
	}
	if err != nil {
		return err
	}

	p := &g.Players[seat]
	p.Hand = append(p.Hand, card)
	g.Phase = PhaseAwaitDiscard
	g.refreshEligibility()
	return nil
}

func (g *Game) discard(seat int, cardID string) error {
	p := &g.Players[seat]
	i := indexOfCard(p.Hand, cardID)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrCardNotInHand, cardID)
	}
	card := p.Hand[i]
	p.Hand = append(p.Hand[:i], p.Hand[i+1:]...)
	g.pushDiscard(card)

	g.CurrentIndex = g.nextActive(seat)
	g.Phase = PhaseAwaitDraw
	g.Turns++
	g.decayPenalties()
	g.refreshEligibility()
	return nil
}

// runBots plays automated turns while the current actor is a bot. Once no
// human is left standing, a full rotation without a drop makes the next bot
// that can drop do so, so an all-bot table always finishes.
func (e *Engine) runBots(g *Game) error {
	idle := 0
	for turns := 0; g.Status == StatusInProgress; turns++ {
		p := g.CurrentPlayer()
		if p == nil || !p.IsBot || p.Dropped {
			return nil
		}
		if turns >= e.maxAutoTurns {
			return fmt.Errorf("%w after %d turns", ErrAutomationStalled, turns)
		}

		force := !g.humanStanding() && idle >= g.ActiveCount()
		dropped := g.droppedCount()
		if err := e.playBotTurn(g, g.CurrentIndex, force); err != nil {
			return fmt.Errorf("bot %s: %w", p.ID, err)
		}
		if g.droppedCount() > dropped {
			idle = 0
		} else {
			idle++
		}
	}
	return nil
}

// playBotTurn runs draw, discard and an optional drop through the same paths
// a human action takes. The drop skips turn validation: after the discard the
// bot is no longer the current seat, and drop still enforces eligibility.
func (e *Engine) playBotTurn(g *Game, seat int, force bool) error {
	id := g.Players[seat].ID

	source := DecideDrawSource(g.SnapshotFor(seat))
	if err := e.step(g, id, Action{Kind: ActionDraw, FromDiscard: source == SourceDiscard}); err != nil {
		return err
	}

	card := DecideDiscard(g.Players[seat].Hand)
	if err := e.step(g, id, Action{Kind: ActionDiscard, CardID: card.ID}); err != nil {
		return err
	}

	if g.Players[seat].DropEligible && (force || DecideDrop(g.SnapshotFor(seat))) {
		return e.apply(g, seat, Action{Kind: ActionDrop})
	}
	return nil
}

func (e *Engine) step(g *Game, actorID string, a Action) error {
	seat, err := validate(g, actorID, a)
	if err != nil {
		return err
	}
	return e.apply(g, seat, a)
}
