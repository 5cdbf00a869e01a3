// internal/models/card.go
package models

// Suit is one of the four standard suits, encoded by its initial on the wire.
type Suit string

const (
	Spades   Suit = "S"
	Hearts   Suit = "H"
	Diamonds Suit = "D"
	Clubs    Suit = "C"

	// NoSuit marks the absence of a forced suit.
	NoSuit Suit = ""
)

// Suits lists the suits in canonical deck order.
var Suits = []Suit{Spades, Hearts, Diamonds, Clubs}

// Valid reports whether s names one of the four suits.
func (s Suit) Valid() bool {
	switch s {
	case Spades, Hearts, Diamonds, Clubs:
		return true
	}
	return false
}

// Rank values with special meaning.
const (
	Ace   = 1
	Two   = 2
	Four  = 4
	Seven = 7
	Eight = 8
	Jack  = 11
	Queen = 12
	King  = 13
)

// Card is an immutable (rank, suit) pair. Rank runs 1 (Ace) to 13 (King).
type Card struct {
	Rank int  `json:"rank"`
	Suit Suit `json:"suit"`
}

// IsQueenOfSpades reports whether c is the Q♠.
func (c Card) IsQueenOfSpades() bool {
	return c.Rank == Queen && c.Suit == Spades
}

// IsTwoOfSpades reports whether c is the 2♠.
func (c Card) IsTwoOfSpades() bool {
	return c.Rank == Two && c.Suit == Spades
}
