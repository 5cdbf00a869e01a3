// internal/game/property_test.go
package game

import (
	"fmt"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/jason-s-yu/unluckysevens/internal/models"
	"github.com/stretchr/testify/require"
)

// botAction picks a legal action for whoever has something to do.
func botAction(t *testing.T, r models.Round, rng *rand.Rand, clock *testClock) (string, Action) {
	t.Helper()
	dealer := r.Players[r.PlayerBySeat(r.DealerSeat)].ID

	switch r.RoundStatus {
	case models.StatusLobby:
		for _, p := range r.Players {
			if !p.Ready {
				return p.ID, ToggleReady{}
			}
		}
		return dealer, BeginRound{}

	case models.StatusPreplay:
		for _, p := range r.Players {
			if p.Alive && CountRank(r.Hands[p.Seat], models.Seven) > 0 {
				return p.ID, ResolveSevens{Suit: models.Suits[rng.IntN(4)]}
			}
		}
		return dealer, BeginFirstTurn{}

	case models.StatusPlaying:
		p := r.Players[r.PlayerBySeat(*r.TurnSeat)]
		plays := PlayableCards(r.Hands[p.Seat], r.TopCard, r.ForcedSuit, r.Pending)
		if r.Pending.Active() {
			for _, c := range plays {
				require.NotEqual(t, models.Eight, c.Rank, "eight offered as a defense")
			}
		}
		if len(plays) > 0 {
			return p.ID, PlayCard{Card: plays[rng.IntN(len(plays))], Suit: models.Suits[rng.IntN(4)]}
		}
		if rng.IntN(5) == 0 {
			clock.Advance(time.Duration(r.TurnSeconds+1) * time.Second)
			return SystemActor, TimeoutPickupAndPass{ExpectedTurnSeat: r.TurnSeat, ExpectedTurnStartedAt: r.TurnStartedAt}
		}
		return p.ID, DrawOrPickup{}

	case models.StatusFinishedRound:
		return r.Players[rng.IntN(len(r.Players))].ID, ContinueToNextRound{}
	}
	return "", nil
}

// TestRandomMatchesKeepInvariants drives whole matches with a random legal
// bot and checks every committed state.
func TestRandomMatchesKeepInvariants(t *testing.T) {
	for seed := uint64(1); seed <= 30; seed++ {
		players := 2 + int(seed%6)
		t.Run(fmt.Sprintf("seed=%d/players=%d", seed, players), func(t *testing.T) {
			clock := newTestClock()
			e := testEngine(seed, clock)
			rng := rand.New(rand.NewPCG(seed, 42))
			r := lobbyWith(players, false)

			for step := 0; step < 4000 && r.RoundStatus != models.StatusFinishedMatch; step++ {
				actor, action := botAction(t, r, rng, clock)
				require.NotNil(t, action)
				input, snapshot := r, r.Clone()
				r = mustApply(t, e, input, actor, action)
				require.Equal(t, snapshot, input, "%s changed its input", action.Kind())
			}
		})
	}
}
