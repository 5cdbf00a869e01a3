// internal/game/lifecycle_test.go
package game

import (
	"testing"

	"github.com/jason-s-yu/unluckysevens/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJoinRoom(t *testing.T) {
	e := testEngine(1, newTestClock())

	t.Run("takes the next seat", func(t *testing.T) {
		r := mustApply(t, e, lobbyWith(1, false), "bo", JoinRoom{Name: "Bo"})
		require.Len(t, r.Players, 2)
		assert.Equal(t, models.Player{ID: "bo", Name: "Bo", Seat: 1, Alive: true}, r.Players[1])
		assert.Equal(t, []models.Card{}, r.Hands[1])
		assert.Equal(t, "Bo joined (seat 2).", r.LastEvent)
	})

	t.Run("fills the smallest free seat", func(t *testing.T) {
		r := lobbyWith(3, false)
		r.Players = []models.Player{r.Players[0], r.Players[2]}
		delete(r.Hands, 1)

		next := mustApply(t, e, r, "cy", JoinRoom{Name: "Cy"})
		assert.Equal(t, 1, next.Players[2].Seat)
	})

	t.Run("rejoining is a no-op", func(t *testing.T) {
		r := lobbyWith(2, false)
		next := mustApply(t, e, r, playerID(1), JoinRoom{Name: "Someone Else"})
		assert.Equal(t, r, next)
	})

	t.Run("rejections", func(t *testing.T) {
		rejectApply(t, e, lobbyWith(MaxPlayers, false), "late", JoinRoom{Name: "Late"}, ErrRoomFull)
		rejectApply(t, e, lobbyWith(1, false), "anon", JoinRoom{}, ErrNameRequired)

		playing := tableRound(map[int][]models.Card{0: {card(5, H)}, 1: {card(6, H)}}, []models.Card{card(3, H)})
		rejectApply(t, e, playing, "late", JoinRoom{Name: "Late"}, ErrNotInLobby)
	})
}

func TestToggleReady(t *testing.T) {
	e := testEngine(1, newTestClock())
	r := mustApply(t, e, lobbyWith(2, false), playerID(1), ToggleReady{})
	assert.True(t, r.Players[1].Ready)
	assert.Equal(t, "P1 is READY", r.LastEvent)

	r = mustApply(t, e, r, playerID(1), ToggleReady{})
	assert.False(t, r.Players[1].Ready)
	assert.Equal(t, "P1 is NOT ready", r.LastEvent)

	rejectApply(t, e, r, "ghost", ToggleReady{}, ErrNotSeated)
	playing := tableRound(map[int][]models.Card{0: {card(5, H)}, 1: {card(6, H)}}, []models.Card{card(3, H)})
	rejectApply(t, e, playing, playerID(0), ToggleReady{}, ErrNotInLobby)
}

func TestBeginRoundGuards(t *testing.T) {
	e := testEngine(1, newTestClock())
	rejectApply(t, e, lobbyWith(2, true), playerID(1), BeginRound{}, ErrNotDealer)
	rejectApply(t, e, lobbyWith(1, true), playerID(0), BeginRound{}, ErrNotEnoughPlayers)
	rejectApply(t, e, lobbyWith(3, false), playerID(0), BeginRound{}, ErrNotAllReady)
	rejectApply(t, e, lobbyWith(2, true), "ghost", BeginRound{}, ErrNotSeated)
}

func TestBeginRoundDeals(t *testing.T) {
	e := testEngine(3, newTestClock())
	r := mustApply(t, e, lobbyWith(4, true), playerID(0), BeginRound{})

	assert.Equal(t, 1, r.RoundNumber)
	require.Len(t, r.Discard, 1)
	assert.Equal(t, r.Discard[0], *r.TopCard)
	assert.Len(t, r.Deck, DeckSize-4*DefaultHandSize-1)
	for _, p := range r.Players {
		assert.Len(t, r.Hands[p.Seat], DefaultHandSize)
		assert.Equal(t, CanCoverSevens(r.Hands[p.Seat]), p.Alive, "seat %d", p.Seat)
	}
	assert.Equal(t, models.NoSuit, r.ForcedSuit)
}

func TestDealWithReverseTopCard(t *testing.T) {
	_, r := dealUntil(t, 3, func(r models.Round) bool {
		return r.RoundStatus == models.StatusPreplay && r.TopCard.Rank == models.Four && len(r.AliveSeats()) == 3
	})
	assert.Equal(t, -1, r.Direction)
	assert.Equal(t, 1, r.DealerSeat, "the deal moves on to the next seat")
	require.NotNil(t, r.FirstTurnSeat)
	assert.Equal(t, 2, *r.FirstTurnSeat)
	assert.Nil(t, r.TurnSeat)
}

func TestDealWithPlainTopCard(t *testing.T) {
	_, r := dealUntil(t, 3, func(r models.Round) bool {
		top := *r.TopCard
		return r.RoundStatus == models.StatusPreplay && top.Rank != models.Four && !top.IsQueenOfSpades() &&
			len(r.AliveSeats()) == 3
	})
	assert.Equal(t, 1, r.Direction)
	assert.Equal(t, 0, r.DealerSeat)
	assert.Equal(t, models.NoPending, r.Pending)
	require.NotNil(t, r.FirstTurnSeat)
	assert.Equal(t, 1, *r.FirstTurnSeat)
}

// plainCardOfSuit finds a card without a special effect in suit.
func plainCardOfSuit(hand []models.Card, suit models.Suit) (models.Card, bool) {
	for _, c := range hand {
		switch c.Rank {
		case models.Ace, 3, 5, 6, 9, 10, models.King:
			if c.Suit == suit {
				return c, true
			}
		}
	}
	return models.Card{}, false
}

func TestTwoPlayerRoundFromDeal(t *testing.T) {
	e, r := dealUntil(t, 2, func(r models.Round) bool {
		if r.RoundStatus != models.StatusPreplay || r.TopCard.Rank != 3 || !allAliveSevensResolved(&r) {
			return false
		}
		_, ok := plainCardOfSuit(r.Hands[1], r.TopCard.Suit)
		return ok
	})

	r = mustApply(t, e, r, playerID(0), BeginFirstTurn{})
	assert.Equal(t, models.StatusPlaying, r.RoundStatus)
	require.NotNil(t, r.TurnSeat)
	assert.Equal(t, 1, *r.TurnSeat, "first turn goes to the seat after the dealer")
	require.NotNil(t, r.TurnStartedAt)
	assert.Equal(t, testStart, *r.TurnStartedAt)

	c, _ := plainCardOfSuit(r.Hands[1], r.TopCard.Suit)
	r = mustApply(t, e, r, playerID(1), PlayCard{Card: c})
	assert.Equal(t, 0, *r.TurnSeat)
	assert.Equal(t, c, *r.TopCard)
	assert.Len(t, r.Hands[1], DefaultHandSize-1)
}

func TestDealEliminatesEveryone(t *testing.T) {
	e, r := dealUntil(t, 2, func(r models.Round) bool {
		return r.RoundResult != nil && r.RoundResult.Reason == models.ReasonDrawAllEliminatedOnDeal
	})

	assert.Equal(t, models.StatusFinishedRound, r.RoundStatus)
	assert.Equal(t, 1, r.RoundNumber)
	assert.Empty(t, r.RoundResult.WinnerID)
	assert.Equal(t, 1, r.RoundResult.NextDealerSeat)
	assert.Nil(t, r.TurnSeat)
	assert.Nil(t, r.FirstTurnSeat)
	assert.Empty(t, r.AliveSeats())
	for _, p := range r.Players {
		assert.Zero(t, p.RoundsWon)
	}

	r = mustApply(t, e, r, playerID(1), ContinueToNextRound{})
	assert.Equal(t, models.StatusLobby, r.RoundStatus)
	assert.Equal(t, 1, r.DealerSeat)
	assert.Zero(t, r.CardCount())
	for _, p := range r.Players {
		assert.True(t, p.Alive)
		assert.False(t, p.Ready)
		assert.Empty(t, r.Hands[p.Seat])
	}
	assert.Nil(t, r.RoundResult)
	assert.Nil(t, r.TopCard)
}

func TestDealLeavesOneAlive(t *testing.T) {
	_, r := dealUntil(t, 3, func(r models.Round) bool {
		return r.RoundResult != nil && r.RoundResult.Reason == models.ReasonLastAliveAfterDeal
	})

	alive := r.AliveSeats()
	require.Len(t, alive, 1)
	winner := r.Players[r.PlayerBySeat(alive[0])]
	assert.Equal(t, winner.ID, r.RoundResult.WinnerID)
	assert.Equal(t, 1, winner.RoundsWon)
	assert.Equal(t, models.StatusFinishedRound, r.RoundStatus)

	wantDealer := 1
	if winner.Seat == 1 {
		wantDealer = 2
	}
	assert.Equal(t, wantDealer, r.RoundResult.NextDealerSeat)
}

func TestDealWithQueenOfSpadesTopCard(t *testing.T) {
	e, r := dealUntil(t, 2, func(r models.Round) bool {
		return r.RoundStatus == models.StatusPreplay && r.TopCard.IsQueenOfSpades() && allAliveSevensResolved(&r)
	})
	assert.Equal(t, models.Pending{Count: 4, Type: models.PendingQueenSpades}, r.Pending)

	r = mustApply(t, e, r, playerID(0), BeginFirstTurn{})
	seat := *r.TurnSeat
	actor := r.Players[r.PlayerBySeat(seat)].ID
	plays := PlayableCards(r.Hands[seat], r.TopCard, r.ForcedSuit, r.Pending)
	for _, c := range plays {
		assert.True(t, c.IsTwoOfSpades(), "only the 2♠ can answer the Q♠, got %s", CardString(c))
	}

	if len(plays) > 0 {
		rejectApply(t, e, r, actor, DrawOrPickup{}, ErrMustPlay)
		return
	}
	deckBefore := len(r.Deck)
	r = mustApply(t, e, r, actor, DrawOrPickup{})
	assert.Equal(t, deckBefore-4, len(r.Deck))
	assert.Equal(t, models.NoPending, r.Pending)
}

func preplayRound(hands map[int][]models.Card, discard []models.Card) models.Round {
	r := tableRound(hands, discard)
	r.RoundStatus = models.StatusPreplay
	r.TurnSeat = nil
	r.TurnStartedAt = nil
	r.DealerSeat = 0
	r.FirstTurnSeat = models.IntPtr(1)
	return r
}

func TestResolveSevens(t *testing.T) {
	e := testEngine(1, newTestClock())
	r := preplayRound(map[int][]models.Card{
		0: {card(7, H), card(8, D), card(8, C), card(13, S)},
		1: {card(5, C), card(9, D)},
		2: {card(6, H)},
	}, []models.Card{card(12, S)})
	r.Pending = models.Pending{Count: 4, Type: models.PendingQueenSpades}

	next := mustApply(t, e, r, playerID(0), ResolveSevens{Suit: S})
	assert.Equal(t, []models.Card{card(8, C), card(13, S)}, next.Hands[0])
	assert.Equal(t, []models.Card{card(12, S), card(7, H), card(8, D)}, next.Discard)
	assert.Equal(t, card(8, D), *next.TopCard)
	assert.Equal(t, models.Spades, next.ForcedSuit)
	assert.Equal(t, models.NoPending, next.Pending)
	assert.Equal(t, "P0 saved 1 seven(s) with 8(s). Suit is now ♠.", next.LastEvent)

	rejectApply(t, e, r, playerID(1), ResolveSevens{Suit: S}, ErrNoSevens)
	rejectApply(t, e, r, playerID(0), ResolveSevens{}, ErrSuitRequired)

	dead := r.Clone()
	dead.Players[0].Alive = false
	rejectApply(t, e, dead, playerID(0), ResolveSevens{Suit: S}, ErrNotAlive)

	short := preplayRound(map[int][]models.Card{
		0: {card(7, H), card(7, D), card(8, C)},
		1: {card(5, C)},
	}, []models.Card{card(3, H)})
	rejectApply(t, e, short, playerID(0), ResolveSevens{Suit: H}, ErrNotEnoughEights)

	playing := tableRound(map[int][]models.Card{0: {card(7, H), card(8, C)}, 1: {card(5, C)}}, []models.Card{card(3, H)})
	rejectApply(t, e, playing, playerID(0), ResolveSevens{Suit: H}, ErrNotPreplay)
}

func TestBeginFirstTurn(t *testing.T) {
	clock := newTestClock()
	e := testEngine(1, clock)
	hands := map[int][]models.Card{0: {card(13, S)}, 1: {card(5, C)}, 2: {card(6, H)}}

	t.Run("first turn seat acts", func(t *testing.T) {
		r := preplayRound(hands, []models.Card{card(3, H)})
		rejectApply(t, e, r, playerID(1), BeginFirstTurn{}, ErrNotDealer)

		next := mustApply(t, e, r, playerID(0), BeginFirstTurn{})
		assert.Equal(t, models.StatusPlaying, next.RoundStatus)
		assert.Equal(t, 1, *next.TurnSeat)
		assert.Equal(t, clock.Now(), *next.TurnStartedAt)
	})

	t.Run("jack on the deal skips the first seat", func(t *testing.T) {
		r := preplayRound(hands, []models.Card{card(models.Jack, H)})
		next := mustApply(t, e, r, playerID(0), BeginFirstTurn{})
		assert.Equal(t, 2, *next.TurnSeat)

		r.Direction = -1
		next = mustApply(t, e, r, playerID(0), BeginFirstTurn{})
		assert.Equal(t, 0, *next.TurnSeat)
	})

	t.Run("unsaved sevens block play", func(t *testing.T) {
		r := preplayRound(map[int][]models.Card{0: {card(13, S)}, 1: {card(5, C)}, 2: {card(7, C), card(8, H)}}, []models.Card{card(3, H)})
		rejectApply(t, e, r, playerID(0), BeginFirstTurn{}, ErrSevensUnresolved)

		// Sevens held by an eliminated player do not count.
		r.Players[2].Alive = false
		next := mustApply(t, e, r, playerID(0), BeginFirstTurn{})
		assert.Equal(t, 1, *next.TurnSeat)
	})
}

func TestContinueToNextRound(t *testing.T) {
	e := testEngine(1, newTestClock())
	r := tableRound(map[int][]models.Card{0: {card(9, H)}, 1: {card(5, C)}, 2: {card(6, C)}}, []models.Card{card(3, H)})
	r.Players[0].RoundsWon = 2

	rejectApply(t, e, r, playerID(0), ContinueToNextRound{}, ErrRoundNotFinished)

	r = mustApply(t, e, r, playerID(0), PlayCard{Card: card(9, H)})
	require.Equal(t, models.StatusFinishedRound, r.RoundStatus)
	rejectApply(t, e, r, "ghost", ContinueToNextRound{}, ErrNotSeated)

	r = mustApply(t, e, r, playerID(2), ContinueToNextRound{})
	assert.Equal(t, models.StatusLobby, r.RoundStatus)
	assert.Equal(t, 1, r.DealerSeat)
	assert.Equal(t, 3, r.Players[0].RoundsWon)
	assert.Equal(t, 1, r.Direction)
	assert.Equal(t, models.NoPending, r.Pending)
	assert.Equal(t, "Back to the lobby. P1 deals next.", r.LastEvent)
}
