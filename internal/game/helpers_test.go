// internal/game/helpers_test.go
package game

import (
	"fmt"
	"math/rand/v2"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/jason-s-yu/unluckysevens/internal/models"
	"github.com/stretchr/testify/require"
)

var testStart = time.Date(2026, 3, 14, 15, 9, 26, 0, time.UTC)

// testClock is a manually advanced clock shared with the engine under test.
type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func newTestClock() *testClock {
	return &testClock{now: testStart}
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func testEngine(seed uint64, clock *testClock) *Engine {
	return &Engine{
		HandSize:    DefaultHandSize,
		MatchTarget: DefaultMatchTarget,
		Rand:        rand.New(rand.NewPCG(seed, seed*7+1)),
		Now:         clock.Now,
	}
}

func card(rank int, s models.Suit) models.Card {
	return models.Card{Rank: rank, Suit: s}
}

func playerID(seat int) string {
	return fmt.Sprintf("p%d", seat)
}

// lobbyWith seats n players in seats 0..n-1 with seat 0 dealing.
func lobbyWith(n int, ready bool) models.Round {
	r := NewRoomState(playerID(0), "P0", DefaultTurnSeconds)
	r.Players[0].Ready = ready
	for i := 1; i < n; i++ {
		r.Players = append(r.Players, models.Player{ID: playerID(i), Name: fmt.Sprintf("P%d", i), Seat: i, Alive: true, Ready: ready})
		r.Hands[i] = []models.Card{}
	}
	return r
}

// tableRound builds a round in play with seat 0 to act. Every card not named
// in hands, discard or deckTop goes to the deck after deckTop, in canonical
// order. The highest seat deals.
func tableRound(hands map[int][]models.Card, discard []models.Card, deckTop ...models.Card) models.Round {
	used := map[models.Card]bool{}
	mark := func(cs []models.Card) {
		for _, c := range cs {
			used[c] = true
		}
	}
	for _, h := range hands {
		mark(h)
	}
	mark(discard)
	mark(deckTop)

	deck := append([]models.Card{}, deckTop...)
	for _, c := range NewDeck() {
		if !used[c] {
			deck = append(deck, c)
		}
	}

	seats := make([]int, 0, len(hands))
	for s := range hands {
		seats = append(seats, s)
	}
	sort.Ints(seats)

	players := make([]models.Player, 0, len(seats))
	handCopy := make(map[int][]models.Card, len(seats))
	for _, s := range seats {
		players = append(players, models.Player{ID: playerID(s), Name: fmt.Sprintf("P%d", s), Seat: s, Alive: true, Ready: true})
		handCopy[s] = append([]models.Card{}, hands[s]...)
	}

	top := discard[len(discard)-1]
	started := testStart
	return models.Round{
		RoundNumber:   1,
		RoundStatus:   models.StatusPlaying,
		Players:       players,
		Hands:         handCopy,
		Deck:          deck,
		Discard:       append([]models.Card{}, discard...),
		TopCard:       &top,
		Pending:       models.NoPending,
		Direction:     1,
		DealerSeat:    seats[len(seats)-1],
		TurnSeat:      models.IntPtr(seats[0]),
		TurnStartedAt: &started,
		TurnSeconds:   DefaultTurnSeconds,
	}
}

// emptyDeckInto moves the whole deck into seat's hand.
func emptyDeckInto(r *models.Round, seat int) {
	r.Hands[seat] = append(r.Hands[seat], r.Deck...)
	r.Deck = []models.Card{}
}

// mustApply applies action as actor and checks the result is structurally sound.
func mustApply(t *testing.T, e *Engine, r models.Round, actor string, action Action) models.Round {
	t.Helper()
	next, err := e.Apply(ActionContext{RoomCode: "TEST42", ActorID: actor, Round: r}, action)
	require.NoError(t, err, "%s by %s", action.Kind(), actor)
	require.NoError(t, CheckInvariants(next))
	require.True(t, ValidTransition(r.RoundStatus, next.RoundStatus), "%s -> %s", r.RoundStatus, next.RoundStatus)
	return next
}

// rejectApply applies action and expects a rejection that leaves the round alone.
func rejectApply(t *testing.T, e *Engine, r models.Round, actor string, action Action, want error) {
	t.Helper()
	next, err := e.Apply(ActionContext{RoomCode: "TEST42", ActorID: actor, Round: r}, action)
	require.Error(t, err)
	require.True(t, IsRejection(err))
	if want != nil {
		require.ErrorIs(t, err, want)
	}
	require.Equal(t, r, next)
}

// dealUntil deals fresh rounds with increasing seeds until pred accepts one.
func dealUntil(t *testing.T, players int, pred func(models.Round) bool) (*Engine, models.Round) {
	t.Helper()
	for seed := uint64(1); seed < 20000; seed++ {
		e := testEngine(seed, newTestClock())
		next, err := e.Apply(ActionContext{ActorID: playerID(0), Round: lobbyWith(players, true)}, BeginRound{})
		require.NoError(t, err)
		if pred(next) {
			require.NoError(t, CheckInvariants(next))
			return e, next
		}
	}
	t.Fatal("no seed produced the wanted deal")
	return nil, models.Round{}
}
