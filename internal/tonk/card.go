package tonk

import "fmt"

// Suit is one of the four card suits. Concealed only appears in rendered views.
type Suit string

const (
	Hearts    Suit = "hearts"
	Diamonds  Suit = "diamonds"
	Clubs     Suit = "clubs"
	Spades    Suit = "spades"
	Concealed Suit = "?"
)

// Suits lists the playable suits in deck construction order.
var Suits = []Suit{Hearts, Diamonds, Clubs, Spades}

func (s Suit) Symbol() string {
	switch s {
	case Hearts:
		return "♥"
	case Diamonds:
		return "♦"
	case Clubs:
		return "♣"
	case Spades:
		return "♠"
	default:
		return "?"
	}
}

// IsRed reports whether the suit renders red.
func (s Suit) IsRed() bool {
	return s == Hearts || s == Diamonds
}

// Rank is a card rank. Eights, nines and tens are not part of the deck.
type Rank string

const (
	Ace   Rank = "A"
	Two   Rank = "2"
	Three Rank = "3"
	Four  Rank = "4"
	Five  Rank = "5"
	Six   Rank = "6"
	Seven Rank = "7"
	Jack  Rank = "J"
	Queen Rank = "Q"
	King  Rank = "K"
)

// Ranks lists the ranks in deck construction order.
var Ranks = []Rank{Ace, Two, Three, Four, Five, Six, Seven, Jack, Queen, King}

var rankValues = map[Rank]int{
	Ace:   1,
	Two:   2,
	Three: 3,
	Four:  4,
	Five:  5,
	Six:   6,
	Seven: 7,
	Jack:  10,
	Queen: 10,
	King:  10,
}

// Value returns the scoring value of the rank, or 0 for unknown ranks.
func (r Rank) Value() int {
	return rankValues[r]
}

// Card is an immutable playing card.
type Card struct {
	ID     string `json:"id"`
	Suit   Suit   `json:"suit"`
	Rank   Rank   `json:"rank"`
	Value  int    `json:"value"`
	Hidden bool   `json:"isHidden,omitempty"`
}

// NewCard builds the card with sequence number seq.
func NewCard(seq int, suit Suit, rank Rank) Card {
	return Card{
		ID:    fmt.Sprintf("card-%d", seq),
		Suit:  suit,
		Rank:  rank,
		Value: rank.Value(),
	}
}

// String returns the short form of the card, e.g. "A♥".
func (c Card) String() string {
	if c.Hidden {
		return "??"
	}
	return string(c.Rank) + c.Suit.Symbol()
}

// concealed masks the face of c. The id survives so clients can follow the
// card once it is discarded.
func concealed(c Card) Card {
	return Card{ID: c.ID, Suit: Concealed, Rank: "?", Hidden: true}
}

// HandScore sums card values.
func HandScore(cards []Card) int {
	score := 0
	for _, c := range cards {
		score += c.Value
	}
	return score
}

func indexOfCard(cards []Card, id string) int {
	for i, c := range cards {
		if c.ID == id {
			return i
		}
	}
	return -1
}
