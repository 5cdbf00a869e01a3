// internal/game/lifecycle.go
package game

import (
	"github.com/jason-s-yu/unluckysevens/internal/models"
)

// join seats a new player in the smallest free seat. Joining again with an
// id that is already seated changes nothing.
func (e *Engine) join(r *models.Round, actorID, name string) error {
	if r.PlayerByID(actorID) >= 0 {
		return nil
	}
	if r.RoundStatus != models.StatusLobby {
		return ErrNotInLobby
	}
	if name == "" {
		return ErrNameRequired
	}
	if len(r.Players) >= MaxPlayers {
		return ErrRoomFull
	}

	used := make(map[int]bool, len(r.Players))
	for _, p := range r.Players {
		used[p.Seat] = true
	}
	seat := 0
	for used[seat] {
		seat++
	}

	r.Players = append(r.Players, models.Player{ID: actorID, Name: name, Seat: seat, Alive: true})
	if r.Hands == nil {
		r.Hands = map[int][]models.Card{}
	}
	r.Hands[seat] = []models.Card{}
	r.LastEvent = narrateJoin(name, seat)
	return nil
}

func (e *Engine) toggleReady(r *models.Round, actorID string) error {
	idx := r.PlayerByID(actorID)
	if idx < 0 {
		return ErrNotSeated
	}
	if r.RoundStatus != models.StatusLobby {
		return ErrNotInLobby
	}
	p := &r.Players[idx]
	p.Ready = !p.Ready
	r.LastEvent = narrateReady(p.Name, p.Ready)
	return nil
}

// beginRound deals a fresh round. Hands are dealt one card at a time in seat
// order, then the top card is flipped and anyone holding sevens they cannot
// cover is out before play starts.
func (e *Engine) beginRound(r *models.Round, actorID string) error {
	idx := r.PlayerByID(actorID)
	if idx < 0 {
		return ErrNotSeated
	}
	if r.RoundStatus != models.StatusLobby {
		return ErrNotInLobby
	}
	if r.Players[idx].Seat != r.DealerSeat {
		return ErrNotDealer
	}
	if len(r.Players) < 2 {
		return ErrNotEnoughPlayers
	}
	for _, p := range r.Players {
		if !p.Ready {
			return ErrNotAllReady
		}
	}

	deck := Shuffle(NewDeck(), e.Rand)
	seats := r.Seats()
	hands := make(map[int][]models.Card, len(seats))
	for _, s := range seats {
		hands[s] = make([]models.Card, 0, e.handSize())
	}
	for i := 0; i < e.handSize(); i++ {
		for _, s := range seats {
			hands[s] = append(hands[s], deck[0])
			deck = deck[1:]
		}
	}
	top := deck[0]
	deck = deck[1:]

	r.RoundNumber++
	r.Hands = hands
	r.Deck = deck
	r.Discard = []models.Card{top}
	r.TopCard = &top
	r.ForcedSuit = models.NoSuit
	r.Pending = models.NoPending
	r.Direction = 1
	r.TurnSeat = nil
	r.FirstTurnSeat = nil
	r.TurnStartedAt = nil
	r.RoundResult = nil

	var outNames []string
	for i := range r.Players {
		p := &r.Players[i]
		p.Alive = CanCoverSevens(hands[p.Seat])
		if !p.Alive {
			outNames = append(outNames, p.Name)
		}
	}

	alive := r.AliveSeats()
	switch len(alive) {
	case 0:
		e.finishRound(r, "", models.ReasonDrawAllEliminatedOnDeal)
		r.LastEvent = narrateDealDraw(r.RoundNumber)
		return nil
	case 1:
		winner := r.Players[r.PlayerBySeat(alive[0])]
		e.finishRound(r, winner.ID, models.ReasonLastAliveAfterDeal)
		r.LastEvent = narrateDealWin(r.RoundNumber, winner.Name)
		return nil
	}

	if top.Rank == models.Four {
		r.Direction = -1
		// A reversed deal also hands the deal on.
		r.DealerSeat, _ = NextAliveSeat(r.DealerSeat, 1, 0, alive)
	}
	if top.IsQueenOfSpades() {
		r.Pending = models.Pending{Count: 4, Type: models.PendingQueenSpades}
	}
	first, _ := NextAliveSeat(r.DealerSeat, 1, 0, alive)
	r.FirstTurnSeat = models.IntPtr(first)
	r.RoundStatus = models.StatusPreplay
	r.LastEvent = narrateDeal(r.RoundNumber, top, outNames)
	return nil
}

func (e *Engine) resolveSevens(r *models.Round, actorID string, suit models.Suit) error {
	idx := r.PlayerByID(actorID)
	if idx < 0 {
		return ErrNotSeated
	}
	if r.RoundStatus != models.StatusPreplay {
		return ErrNotPreplay
	}
	p := r.Players[idx]
	if !p.Alive {
		return ErrNotAlive
	}
	if !suit.Valid() {
		return ErrSuitRequired
	}
	hand := r.Hands[p.Seat]
	if CountRank(hand, models.Seven) == 0 {
		return ErrNoSevens
	}
	res, err := ResolveAllSevens(hand)
	if err != nil {
		return err
	}

	r.Hands[p.Seat] = res.Hand
	discardSavedPairs(r, res)
	r.ForcedSuit = suit
	r.Pending = models.NoPending
	r.LastEvent = narrateResolve(p.Name, res.Resolved(), suit)
	return nil
}

// discardSavedPairs lays each saved seven on the discard followed by the
// eight that covered it; the last eight becomes the top card.
func discardSavedPairs(r *models.Round, res SevensResolution) {
	for i := range res.Sevens {
		r.Discard = append(r.Discard, res.Sevens[i], res.Eights[i])
	}
	if n := len(r.Discard); n > 0 {
		top := r.Discard[n-1]
		r.TopCard = &top
	}
}

func (e *Engine) beginFirstTurn(r *models.Round, actorID string) error {
	idx := r.PlayerByID(actorID)
	if idx < 0 {
		return ErrNotSeated
	}
	if r.RoundStatus != models.StatusPreplay {
		return ErrNotPreplay
	}
	if r.Players[idx].Seat != r.DealerSeat {
		return ErrNotDealer
	}
	if !allAliveSevensResolved(r) {
		return ErrSevensUnresolved
	}

	alive := r.AliveSeats()
	var turn int
	if r.FirstTurnSeat != nil {
		turn = *r.FirstTurnSeat
	} else {
		turn, _ = NextAliveSeat(r.DealerSeat, 1, 0, alive)
	}
	// A Jack flipped at deal skips the first player.
	if len(r.Discard) > 0 && r.Discard[0].Rank == models.Jack {
		turn, _ = NextAliveSeat(turn, r.Direction, 0, alive)
	}

	now := e.now()
	r.TurnSeat = models.IntPtr(turn)
	r.TurnStartedAt = &now
	r.RoundStatus = models.StatusPlaying
	r.LastEvent = narrateFirstTurn(playerName(r, turn))
	return nil
}

func allAliveSevensResolved(r *models.Round) bool {
	for _, p := range r.Players {
		if p.Alive && CountRank(r.Hands[p.Seat], models.Seven) > 0 {
			return false
		}
	}
	return true
}

// finishRound closes the round. winnerID is empty for a draw. The next
// dealer is the seat after the current dealer, or the one after that when
// the round winner sits there.
func (e *Engine) finishRound(r *models.Round, winnerID, reason string) {
	status := models.StatusFinishedRound
	winnerSeat := -1
	if idx := r.PlayerByID(winnerID); winnerID != "" && idx >= 0 {
		w := &r.Players[idx]
		w.RoundsWon++
		winnerSeat = w.Seat
		if w.RoundsWon >= e.matchTarget() {
			status = models.StatusFinishedMatch
		}
	}

	seats := r.Seats()
	ring := NewSeatRing(seats, r.DealerSeat, 1)
	next := ring.Advance(0)
	if next == winnerSeat && len(seats) > 1 {
		next = ring.Advance(0)
	}

	r.RoundStatus = status
	r.RoundResult = &models.RoundResult{WinnerID: winnerID, Reason: reason, NextDealerSeat: next}
	r.TurnSeat = nil
	r.FirstTurnSeat = nil
	r.TurnStartedAt = nil
	r.Pending = models.NoPending
}

func (e *Engine) continueToNextRound(r *models.Round, actorID string) error {
	if r.PlayerByID(actorID) < 0 {
		return ErrNotSeated
	}
	if r.RoundStatus != models.StatusFinishedRound {
		return ErrRoundNotFinished
	}

	dealer := r.DealerSeat
	if r.RoundResult != nil && r.PlayerBySeat(r.RoundResult.NextDealerSeat) >= 0 {
		dealer = r.RoundResult.NextDealerSeat
	}
	for i := range r.Players {
		r.Players[i].Alive = true
		r.Players[i].Ready = false
	}
	hands := make(map[int][]models.Card, len(r.Players))
	for _, p := range r.Players {
		hands[p.Seat] = []models.Card{}
	}

	r.RoundStatus = models.StatusLobby
	r.Hands = hands
	r.Deck = []models.Card{}
	r.Discard = []models.Card{}
	r.TopCard = nil
	r.ForcedSuit = models.NoSuit
	r.Pending = models.NoPending
	r.Direction = 1
	r.DealerSeat = dealer
	r.TurnSeat = nil
	r.FirstTurnSeat = nil
	r.TurnStartedAt = nil
	r.RoundResult = nil
	r.LastEvent = narrateContinue(playerName(r, dealer))
	return nil
}
