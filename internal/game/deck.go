// internal/game/deck.go
package game

import (
	"math/rand/v2"
	"strconv"

	"github.com/jason-s-yu/unluckysevens/internal/models"
)

// DeckSize is the number of cards in play for a round.
const DeckSize = 52

// NewDeck builds the 52-card deck in canonical order: suits S, H, D, C, each
// running Ace through King.
func NewDeck() []models.Card {
	deck := make([]models.Card, 0, DeckSize)
	for _, s := range models.Suits {
		for r := models.Ace; r <= models.King; r++ {
			deck = append(deck, models.Card{Rank: r, Suit: s})
		}
	}
	return deck
}

// Shuffle returns a uniformly random permutation of cards (Fisher-Yates). The
// input slice is left untouched. A nil rng uses the global source, which is
// safe for concurrent use.
func Shuffle(cards []models.Card, rng *rand.Rand) []models.Card {
	out := append([]models.Card(nil), cards...)
	intN := rand.IntN
	if rng != nil {
		intN = rng.IntN
	}
	for i := len(out) - 1; i > 0; i-- {
		j := intN(i + 1)
		out[i], out[j] = out[j], out[i]
	}
	return out
}

// RankLabel renders a rank the way it is printed on a card.
func RankLabel(rank int) string {
	switch rank {
	case models.Ace:
		return "A"
	case models.Jack:
		return "J"
	case models.Queen:
		return "Q"
	case models.King:
		return "K"
	}
	return strconv.Itoa(rank)
}

// SuitLabel renders a suit as its symbol.
func SuitLabel(s models.Suit) string {
	switch s {
	case models.Spades:
		return "♠"
	case models.Hearts:
		return "♥"
	case models.Diamonds:
		return "♦"
	case models.Clubs:
		return "♣"
	}
	return string(s)
}

// CardString renders a card such as "Q♠" or "10♥".
func CardString(c models.Card) string {
	return RankLabel(c.Rank) + SuitLabel(c.Suit)
}
