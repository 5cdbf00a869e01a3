// internal/models/round.go
package models

import (
	"sort"
	"time"
)

// RoundStatus is the phase of the round state machine.
type RoundStatus string

const (
	StatusLobby         RoundStatus = "lobby"
	StatusPreplay       RoundStatus = "preplay"
	StatusPlaying       RoundStatus = "playing"
	StatusFinishedRound RoundStatus = "finished_round"
	StatusFinishedMatch RoundStatus = "finished_match"
)

// PendingType identifies what opened an outstanding pickup obligation.
type PendingType string

const (
	PendingNone        PendingType = "none"
	PendingTwo         PendingType = "two"
	PendingQueenSpades PendingType = "qs"
)

// Pending is a forced-draw debt owed by the seat to act.
type Pending struct {
	Count int         `json:"count"`
	Type  PendingType `json:"type"`
}

// NoPending is the canonical empty obligation.
var NoPending = Pending{Count: 0, Type: PendingNone}

// Active reports whether there is something to escalate or absorb.
func (p Pending) Active() bool {
	return p.Count > 0
}

// Round finish reasons recorded in RoundResult.Reason.
const (
	ReasonShedAllCards            = "shed_all_cards"
	ReasonLastAlive               = "last_alive"
	ReasonDrawAllEliminated       = "draw_all_eliminated"
	ReasonLastAliveAfterDeal      = "last_alive_after_deal"
	ReasonDrawAllEliminatedOnDeal = "draw_all_eliminated_on_deal"
)

// RoundResult is set when a round ends. WinnerID is empty for a draw.
type RoundResult struct {
	WinnerID       string `json:"winnerId,omitempty"`
	Reason         string `json:"reason"`
	NextDealerSeat int    `json:"nextDealerSeat"`
}

// Round is the whole per-room game state. It is persisted and broadcast as a
// unit, and every transition produces a complete replacement value.
type Round struct {
	RoundNumber   int            `json:"roundNumber"`
	RoundStatus   RoundStatus    `json:"roundStatus"`
	Players       []Player       `json:"players"`
	Hands         map[int][]Card `json:"hands"`
	Deck          []Card         `json:"deck"`
	Discard       []Card         `json:"discard"`
	TopCard       *Card          `json:"topCard"`
	ForcedSuit    Suit           `json:"forcedSuit"`
	Pending       Pending        `json:"pending"`
	Direction     int            `json:"direction"`
	DealerSeat    int            `json:"dealerSeat"`
	TurnSeat      *int           `json:"turnSeat"`
	FirstTurnSeat *int           `json:"firstTurnSeat"`
	TurnStartedAt *time.Time     `json:"turnStartedAt"`
	TurnSeconds   int            `json:"turnSeconds"`
	RoundResult   *RoundResult   `json:"roundResult"`
	LastEvent     string         `json:"lastEvent"`
}

// Clone returns a deep copy so a transition can never alias its input.
func (r Round) Clone() Round {
	out := r
	out.Players = append([]Player(nil), r.Players...)
	out.Hands = make(map[int][]Card, len(r.Hands))
	for seat, hand := range r.Hands {
		out.Hands[seat] = append([]Card{}, hand...)
	}
	out.Deck = append([]Card{}, r.Deck...)
	out.Discard = append([]Card{}, r.Discard...)
	if r.TopCard != nil {
		c := *r.TopCard
		out.TopCard = &c
	}
	out.TurnSeat = copyInt(r.TurnSeat)
	out.FirstTurnSeat = copyInt(r.FirstTurnSeat)
	if r.TurnStartedAt != nil {
		t := *r.TurnStartedAt
		out.TurnStartedAt = &t
	}
	if r.RoundResult != nil {
		rr := *r.RoundResult
		out.RoundResult = &rr
	}
	return out
}

// PlayerByID returns the index of the player with the given id, or -1.
func (r Round) PlayerByID(id string) int {
	for i, p := range r.Players {
		if p.ID == id {
			return i
		}
	}
	return -1
}

// PlayerBySeat returns the index of the player in the given seat, or -1.
func (r Round) PlayerBySeat(seat int) int {
	for i, p := range r.Players {
		if p.Seat == seat {
			return i
		}
	}
	return -1
}

// Seats returns every occupied seat in ascending order.
func (r Round) Seats() []int {
	seats := make([]int, 0, len(r.Players))
	for _, p := range r.Players {
		seats = append(seats, p.Seat)
	}
	sort.Ints(seats)
	return seats
}

// AliveSeats returns the seats of alive players in ascending order.
func (r Round) AliveSeats() []int {
	seats := make([]int, 0, len(r.Players))
	for _, p := range r.Players {
		if p.Alive {
			seats = append(seats, p.Seat)
		}
	}
	sort.Ints(seats)
	return seats
}

// CardCount is the number of cards across hands, deck and discard.
func (r Round) CardCount() int {
	n := len(r.Deck) + len(r.Discard)
	for _, hand := range r.Hands {
		n += len(hand)
	}
	return n
}

// IntPtr is a small helper for the optional seat fields.
func IntPtr(v int) *int {
	return &v
}

func copyInt(p *int) *int {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
