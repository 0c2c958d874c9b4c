package tonk

import "errors"

// Validation errors. They are detected before anything is mutated.
var (
	ErrInvalidStake      = errors.New("stake must be positive")
	ErrInvalidIdentity   = errors.New("player identity is required")
	ErrGameNotInProgress = errors.New("game is not in progress")
	ErrNotSeated         = errors.New("not a player in this game")
	ErrNotYourTurn       = errors.New("not your turn")
	ErrAlreadyDropped    = errors.New("player has already dropped")
	ErrUnknownAction     = errors.New("invalid action")
	ErrCardIDRequired    = errors.New("card id required for discard")
	ErrAlreadyDrawn      = errors.New("already drew this turn, discard next")
	ErrMustDrawFirst     = errors.New("draw before discarding")
	ErrMustDiscardFirst  = errors.New("drop is only allowed before drawing")
	ErrAlreadySeated     = errors.New("player already seated")
	ErrNoBotSeat         = errors.New("no slot available to join")
)

// Engine faults. Anything already applied for the action is discarded.
var (
	ErrNoCardsAvailable  = errors.New("no cards available to draw")
	ErrEmptyDiscardPile  = errors.New("discard pile is empty")
	ErrCardNotInHand     = errors.New("card not found in hand")
	ErrDropNotAllowed    = errors.New("cannot drop at this time")
	ErrCardConservation  = errors.New("card conservation violated")
	ErrAutomationStalled = errors.New("automated turns did not reach a decision point")
)

var faults = []error{
	ErrNoCardsAvailable,
	ErrEmptyDiscardPile,
	ErrCardNotInHand,
	ErrDropNotAllowed,
	ErrCardConservation,
	ErrAutomationStalled,
}

// IsFault reports whether err is an engine fault rather than a validation error.
func IsFault(err error) bool {
	for _, f := range faults {
		if errors.Is(err, f) {
			return true
		}
	}
	return false
}
