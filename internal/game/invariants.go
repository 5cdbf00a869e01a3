// internal/game/invariants.go
package game

import (
	"fmt"

	"github.com/jason-s-yu/unluckysevens/internal/models"
)

// CheckInvariants validates the structural rules every committed round must
// satisfy. It returns nil or an *InvariantError listing every problem found.
func CheckInvariants(r models.Round) error {
	var problems []string
	fail := func(format string, args ...any) {
		problems = append(problems, fmt.Sprintf(format, args...))
	}

	if !validStatus(r.RoundStatus) {
		fail("unknown round status %q", r.RoundStatus)
	}

	seats := make(map[int]bool, len(r.Players))
	ids := make(map[string]bool, len(r.Players))
	for _, p := range r.Players {
		if seats[p.Seat] {
			fail("seat %d taken twice", p.Seat)
		}
		if ids[p.ID] {
			fail("player %s seated twice", p.ID)
		}
		seats[p.Seat] = true
		ids[p.ID] = true
	}
	for seat := range r.Hands {
		if !seats[seat] {
			fail("hand for empty seat %d", seat)
		}
	}

	if r.RoundStatus != models.StatusLobby {
		if n := r.CardCount(); n != DeckSize {
			fail("%d cards in play, want %d", n, DeckSize)
		}
		seen := make(map[models.Card]bool, DeckSize)
		for _, c := range allCards(r) {
			if seen[c] {
				fail("duplicate card %s", CardString(c))
			}
			seen[c] = true
		}
	}

	if r.Pending.Count < 0 {
		fail("negative pending count %d", r.Pending.Count)
	}
	if (r.Pending.Count == 0) != (r.Pending.Type == models.PendingNone) {
		fail("pending count %d with type %q", r.Pending.Count, r.Pending.Type)
	}

	if r.TurnSeat != nil {
		idx := r.PlayerBySeat(*r.TurnSeat)
		if idx < 0 || !r.Players[idx].Alive {
			fail("turn seat %d is not an alive player", *r.TurnSeat)
		}
	}
	if r.RoundStatus == models.StatusPlaying && r.TurnSeat == nil {
		fail("playing without a turn seat")
	}
	if len(r.Players) > 0 && r.PlayerBySeat(r.DealerSeat) < 0 {
		fail("dealer seat %d is empty", r.DealerSeat)
	}
	if r.Direction != 1 && r.Direction != -1 {
		fail("direction %d", r.Direction)
	}

	if len(problems) > 0 {
		return &InvariantError{Problems: problems}
	}
	return nil
}

func allCards(r models.Round) []models.Card {
	out := make([]models.Card, 0, DeckSize)
	for _, hand := range r.Hands {
		out = append(out, hand...)
	}
	out = append(out, r.Deck...)
	return append(out, r.Discard...)
}

func validStatus(s models.RoundStatus) bool {
	_, ok := transitions[s]
	return ok
}

// transitions lists the allowed status changes for a single action.
var transitions = map[models.RoundStatus][]models.RoundStatus{
	models.StatusLobby:         {models.StatusLobby, models.StatusPreplay, models.StatusFinishedRound, models.StatusFinishedMatch},
	models.StatusPreplay:       {models.StatusPreplay, models.StatusPlaying},
	models.StatusPlaying:       {models.StatusPlaying, models.StatusFinishedRound, models.StatusFinishedMatch},
	models.StatusFinishedRound: {models.StatusFinishedRound, models.StatusLobby},
	models.StatusFinishedMatch: {models.StatusFinishedMatch},
}

// ValidTransition reports whether one action may move a round from one
// status to another.
func ValidTransition(from, to models.RoundStatus) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}
