// internal/sim/sim_test.go
package sim

import (
	"fmt"
	"math/rand/v2"
	"testing"

	"github.com/jason-s-yu/unluckysevens/internal/game"
	"github.com/jason-s-yu/unluckysevens/internal/models"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlayMatchFinishes(t *testing.T) {
	for seed := uint64(1); seed <= 12; seed++ {
		players := 2 + int(seed%6)
		t.Run(fmt.Sprintf("seed=%d/players=%d", seed, players), func(t *testing.T) {
			res, err := PlayMatch(Options{
				Players:     players,
				Seed:        seed,
				MatchTarget: 2,
				TimeoutRate: 0.1,
			})
			require.NoError(t, err)
			require.True(t, res.Finished, "match ran out of steps")
			assert.Equal(t, 2, res.Wins[res.Winner])
			assert.GreaterOrEqual(t, res.Rounds, 2)

			total := 0
			for _, n := range res.Reasons {
				total += n
			}
			assert.Equal(t, res.Rounds, total)
		})
	}
}

func TestPlayMatchIsDeterministic(t *testing.T) {
	opts := Options{Players: 4, Seed: 99, MatchTarget: 1}
	a, err := PlayMatch(opts)
	require.NoError(t, err)
	b, err := PlayMatch(opts)
	require.NoError(t, err)

	assert.Equal(t, a.Steps, b.Steps)
	assert.Equal(t, a.Reasons, b.Reasons)
	assert.Equal(t, a.Winner, b.Winner)
}

func TestPlayMatchNarratesAtDebug(t *testing.T) {
	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)
	_, err := PlayMatch(Options{Players: 2, Seed: 3, MatchTarget: 1, Logger: logger})
	require.NoError(t, err)
	assert.NotEmpty(t, hook.AllEntries())
}

func TestPlayMatchBadPlayerCount(t *testing.T) {
	_, err := PlayMatch(Options{Players: 1})
	assert.Error(t, err)
	_, err = PlayMatch(Options{Players: game.MaxPlayers + 1})
	assert.Error(t, err)
}

func TestBotHoldsEightsBack(t *testing.T) {
	b := &Bot{Rand: rand.New(rand.NewPCG(1, 2))}
	eight := models.Card{Rank: models.Eight, Suit: models.Hearts}
	three := models.Card{Rank: 3, Suit: models.Hearts}
	for i := 0; i < 20; i++ {
		assert.Equal(t, three, b.choose([]models.Card{eight, three}))
	}
	assert.Equal(t, eight, b.choose([]models.Card{eight}))
}

func TestBotFavouriteSuit(t *testing.T) {
	b := &Bot{Rand: rand.New(rand.NewPCG(1, 2))}
	hand := []models.Card{
		{Rank: 3, Suit: models.Clubs},
		{Rank: 9, Suit: models.Clubs},
		{Rank: 5, Suit: models.Hearts},
	}
	assert.Equal(t, models.Clubs, b.favouriteSuit(hand))
	assert.True(t, b.favouriteSuit(nil).Valid())
}
