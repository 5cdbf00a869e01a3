// internal/game/turn.go
package game

import (
	"time"

	"github.com/jason-s-yu/unluckysevens/internal/models"
)

// actingPlayer checks the shared turn preconditions and returns the index of
// the player whose turn it is.
func actingPlayer(r *models.Round, actorID string) (int, error) {
	if r.RoundStatus != models.StatusPlaying {
		return -1, ErrRoundNotActive
	}
	idx := r.PlayerByID(actorID)
	if idx < 0 {
		return -1, ErrNotSeated
	}
	p := r.Players[idx]
	if !p.Alive {
		return -1, ErrNotAlive
	}
	if r.TurnSeat == nil || *r.TurnSeat != p.Seat {
		return -1, ErrNotYourTurn
	}
	return idx, nil
}

func (e *Engine) playCard(r *models.Round, actorID string, card models.Card, suit models.Suit) error {
	idx, err := actingPlayer(r, actorID)
	if err != nil {
		return err
	}
	p := r.Players[idx]
	hand := r.Hands[p.Seat]

	pos := indexOfCard(hand, card)
	if pos < 0 {
		return ErrCardNotInHand
	}
	if r.Pending.Active() && card.Rank == models.Eight {
		return Reject("You cannot play an 8 to defend. Defend with 2/Q♠ or pick up %d.", r.Pending.Count)
	}
	if !containsCard(PlayableCards(hand, r.TopCard, r.ForcedSuit, r.Pending), card) {
		return ErrCardNotPlayable
	}
	if card.Rank == models.Eight && !r.Pending.Active() {
		if suit == models.NoSuit {
			return ErrSuitRequired
		}
		if !suit.Valid() {
			return ErrInvalidSuit
		}
	}

	hand = removeCardAt(hand, pos)
	r.Hands[p.Seat] = hand
	r.Discard = append(r.Discard, card)
	top := card
	r.TopCard = &top

	alive := r.AliveSeats()
	ring := NewSeatRing(alive, p.Seat, r.Direction)
	extraTurn := false
	skip := 0
	forced := models.NoSuit

	if r.Pending.Active() {
		switch {
		case card.Rank == models.Two:
			r.Pending = models.Pending{Count: r.Pending.Count + 2, Type: models.PendingTwo}
		case card.IsQueenOfSpades():
			r.Pending = models.Pending{Count: r.Pending.Count + 4, Type: models.PendingQueenSpades}
		}
	} else {
		switch {
		case card.Rank == models.Two:
			r.Pending = models.Pending{Count: 2, Type: models.PendingTwo}
		case card.Rank == models.Four:
			if len(alive) == 2 {
				extraTurn = true
			} else {
				ring.Reverse()
			}
		case card.Rank == models.Jack:
			if len(alive) == 2 {
				extraTurn = true
			} else {
				skip = 1
			}
		case card.IsQueenOfSpades():
			r.Pending = models.Pending{Count: 4, Type: models.PendingQueenSpades}
		case card.Rank == models.Eight:
			forced = suit
		}
	}
	r.ForcedSuit = forced
	r.Direction = ring.Direction()

	if len(hand) == 0 {
		e.finishRound(r, p.ID, models.ReasonShedAllCards)
		r.LastEvent = narrateEmptied(p.Name)
		return nil
	}

	r.LastEvent = narratePlay(p.Name, card, forced)
	if extraTurn {
		if r.TurnStartedAt == nil {
			now := e.now()
			r.TurnStartedAt = &now
		}
		r.LastEvent += " Extra turn."
		return nil
	}
	e.passTurn(r, ring.Advance(skip))
	return nil
}

func (e *Engine) passTurn(r *models.Round, seat int) {
	now := e.now()
	r.TurnSeat = models.IntPtr(seat)
	r.TurnStartedAt = &now
}

func (e *Engine) drawOrPickup(r *models.Round, actorID string, saveSuit models.Suit) error {
	idx, err := actingPlayer(r, actorID)
	if err != nil {
		return err
	}
	p := r.Players[idx]
	if len(PlayableCards(r.Hands[p.Seat], r.TopCard, r.ForcedSuit, r.Pending)) > 0 {
		return ErrMustPlay
	}
	if saveSuit != models.NoSuit && !saveSuit.Valid() {
		return ErrInvalidSuit
	}

	out := e.pickUp(r, idx, saveSuit)
	name := p.Name
	switch {
	case out.busted:
		r.LastEvent = narrateBust(name, out, false)
		e.afterBust(r, p.Seat)
	case out.saved:
		r.LastEvent = narrateSaved(name, out, false)
		e.afterSave(r, idx)
	case len(PlayableCards(r.Hands[p.Seat], r.TopCard, r.ForcedSuit, r.Pending)) > 0:
		// The turn stays put and the clock keeps running.
		r.LastEvent = narrateCanPlay(name, out)
	default:
		r.LastEvent = narrateNoPlay(name, out)
		next, _ := NextAliveSeat(p.Seat, r.Direction, 0, r.AliveSeats())
		e.passTurn(r, next)
	}
	return nil
}

func (e *Engine) pass(r *models.Round, actorID string) error {
	idx, err := actingPlayer(r, actorID)
	if err != nil {
		return err
	}
	if r.Pending.Active() {
		return ErrPendingPass
	}
	p := r.Players[idx]
	next, _ := NextAliveSeat(p.Seat, r.Direction, 0, r.AliveSeats())
	e.passTurn(r, next)
	r.LastEvent = narratePass(p.Name)
	return nil
}

// timeoutPickupAndPass may be sent by any seated player or the watchdog once
// the turn deadline has passed. It always moves the turn on.
func (e *Engine) timeoutPickupAndPass(r *models.Round, actorID string, a TimeoutPickupAndPass) error {
	if r.RoundStatus != models.StatusPlaying {
		return ErrRoundNotActive
	}
	if actorID != SystemActor && r.PlayerByID(actorID) < 0 {
		return ErrNotSeated
	}
	if r.TurnSeat == nil {
		return ErrStaleTimeout
	}
	if a.ExpectedTurnSeat != nil && *a.ExpectedTurnSeat != *r.TurnSeat {
		return ErrStaleTimeout
	}
	if a.ExpectedTurnStartedAt != nil &&
		(r.TurnStartedAt == nil || !a.ExpectedTurnStartedAt.Equal(*r.TurnStartedAt)) {
		return ErrStaleTimeout
	}
	if r.TurnSeconds <= 0 {
		return ErrTimerDisabled
	}
	if r.TurnStartedAt != nil {
		deadline := r.TurnStartedAt.Add(time.Duration(r.TurnSeconds) * time.Second)
		if e.now().Before(deadline) {
			return ErrTimerNotExpired
		}
	}
	if a.SaveSuit != models.NoSuit && !a.SaveSuit.Valid() {
		return ErrInvalidSuit
	}

	idx := r.PlayerBySeat(*r.TurnSeat)
	if idx < 0 || !r.Players[idx].Alive {
		return ErrStaleTimeout
	}
	p := r.Players[idx]

	out := e.pickUp(r, idx, a.SaveSuit)
	switch {
	case out.busted:
		r.LastEvent = narrateBust(p.Name, out, true)
		e.afterBust(r, p.Seat)
	case out.saved:
		r.LastEvent = narrateSaved(p.Name, out, true)
		e.afterSave(r, idx)
	default:
		r.LastEvent = narrateTimeout(p.Name, out)
		next, _ := NextAliveSeat(p.Seat, r.Direction, 0, r.AliveSeats())
		e.passTurn(r, next)
	}
	return nil
}

// pickupOutcome describes what a draw did to the drawing player.
type pickupOutcome struct {
	requested int
	drawn     int
	penalty   bool
	sevens    int
	busted    bool
	saved     bool
	suit      models.Suit
}

// pickUp draws the owed cards for the player at idx and applies the seven
// rule: drawn sevens bust the player unless the eights they already held can
// cover them, in which case the sevens are saved at once.
func (e *Engine) pickUp(r *models.Round, idx int, saveSuit models.Suit) pickupOutcome {
	p := &r.Players[idx]
	hand := r.Hands[p.Seat]

	out := pickupOutcome{requested: 1, penalty: r.Pending.Active()}
	if out.penalty {
		out.requested = r.Pending.Count
	}

	e.reshuffleIfNeeded(r)
	n := min(out.requested, len(r.Deck))
	drawn := append([]models.Card{}, r.Deck[:n]...)
	r.Deck = r.Deck[n:]
	out.drawn = n
	eightsBefore := CountRank(hand, models.Eight)
	hand = append(hand, drawn...)
	r.Hands[p.Seat] = hand
	r.Pending = models.NoPending

	out.sevens = CountRank(drawn, models.Seven)
	if out.sevens == 0 {
		return out
	}
	if eightsBefore < out.sevens {
		p.Alive = false
		out.busted = true
		return out
	}

	res, err := ResolveAllSevens(hand)
	if err != nil {
		// Unreachable: eightsBefore covers every seven in the hand.
		p.Alive = false
		out.busted = true
		return out
	}
	out.suit = saveSuit
	if !out.suit.Valid() {
		out.suit = r.ForcedSuit
	}
	if !out.suit.Valid() {
		out.suit = res.Eights[len(res.Eights)-1].Suit
	}
	r.Hands[p.Seat] = res.Hand
	discardSavedPairs(r, res)
	r.ForcedSuit = out.suit
	out.saved = true
	return out
}

// reshuffleIfNeeded turns everything under the top card back into the deck
// when the deck is empty. With nothing under the top card the deck stays
// empty and the draw comes up short.
func (e *Engine) reshuffleIfNeeded(r *models.Round) {
	if len(r.Deck) > 0 || len(r.Discard) <= 1 {
		return
	}
	last := len(r.Discard) - 1
	r.Deck = Shuffle(r.Discard[:last], e.Rand)
	r.Discard = []models.Card{r.Discard[last]}
}

// afterBust ends the round if the bust left one or no players alive and
// otherwise hands the turn to the next alive seat.
func (e *Engine) afterBust(r *models.Round, bustedSeat int) {
	alive := r.AliveSeats()
	switch len(alive) {
	case 0:
		e.finishRound(r, "", models.ReasonDrawAllEliminated)
	case 1:
		winner := r.Players[r.PlayerBySeat(alive[0])]
		e.finishRound(r, winner.ID, models.ReasonLastAlive)
		r.LastEvent += " " + winner.Name + " wins the round."
	default:
		// The turn moves on so turnSeat never names a dead seat.
		next, _ := NextAliveSeat(bustedSeat, r.Direction, 0, alive)
		e.passTurn(r, next)
	}
}

// afterSave passes the turn, or ends the round when the save used up the
// player's last cards.
func (e *Engine) afterSave(r *models.Round, idx int) {
	p := r.Players[idx]
	if len(r.Hands[p.Seat]) == 0 {
		e.finishRound(r, p.ID, models.ReasonShedAllCards)
		return
	}
	next, _ := NextAliveSeat(p.Seat, r.Direction, 0, r.AliveSeats())
	e.passTurn(r, next)
}

func playerName(r *models.Round, seat int) string {
	if idx := r.PlayerBySeat(seat); idx >= 0 {
		return r.Players[idx].Name
	}
	return ""
}
