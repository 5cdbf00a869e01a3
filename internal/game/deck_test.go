// internal/game/deck_test.go
package game

import (
	"math/rand/v2"
	"testing"

	"github.com/jason-s-yu/unluckysevens/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDeck(t *testing.T) {
	deck := NewDeck()
	require.Len(t, deck, DeckSize)

	seen := map[models.Card]bool{}
	for _, c := range deck {
		assert.False(t, seen[c], "duplicate %v", c)
		assert.True(t, c.Suit.Valid())
		assert.True(t, c.Rank >= models.Ace && c.Rank <= models.King)
		seen[c] = true
	}
	assert.Equal(t, card(models.Ace, models.Spades), deck[0])
	assert.Equal(t, card(models.King, models.Clubs), deck[DeckSize-1])
	assert.Equal(t, deck, NewDeck(), "deck order must be deterministic")
}

func TestShuffleLeavesInputAlone(t *testing.T) {
	deck := NewDeck()
	shuffled := Shuffle(deck, rand.New(rand.NewPCG(1, 2)))

	assert.Equal(t, NewDeck(), deck)
	assert.ElementsMatch(t, deck, shuffled)
	assert.NotEqual(t, deck, shuffled)
}

func TestShuffleIsSeeded(t *testing.T) {
	a := Shuffle(NewDeck(), rand.New(rand.NewPCG(9, 9)))
	b := Shuffle(NewDeck(), rand.New(rand.NewPCG(9, 9)))
	assert.Equal(t, a, b)

	global := Shuffle(NewDeck(), nil)
	assert.ElementsMatch(t, NewDeck(), global)
	assert.Empty(t, Shuffle(nil, nil))
}

func TestCardString(t *testing.T) {
	tests := []struct {
		c    models.Card
		want string
	}{
		{card(models.Queen, models.Spades), "Q♠"},
		{card(10, models.Hearts), "10♥"},
		{card(models.Ace, models.Diamonds), "A♦"},
		{card(models.Jack, models.Clubs), "J♣"},
		{card(models.King, models.Hearts), "K♥"},
		{card(7, models.Spades), "7♠"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, CardString(tt.c))
	}
}
