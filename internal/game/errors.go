// internal/game/errors.go
package game

import (
	"errors"
	"fmt"
	"strings"
)

// RejectError is an expected rule violation. Reason is a short sentence that
// can be shown to the acting player as-is; the round is left untouched.
type RejectError struct {
	Reason string
}

func (e *RejectError) Error() string {
	return e.Reason
}

// Reject builds a RejectError with a formatted reason.
func Reject(format string, args ...any) error {
	return &RejectError{Reason: fmt.Sprintf(format, args...)}
}

// IsRejection reports whether err (or anything it wraps) is a RejectError.
func IsRejection(err error) bool {
	var re *RejectError
	return errors.As(err, &re)
}

// Rejection reasons shared by the actions.
var (
	ErrRoundNotActive   = &RejectError{Reason: "Round not active."}
	ErrNotInLobby       = &RejectError{Reason: "Only possible in the lobby."}
	ErrNotPreplay       = &RejectError{Reason: "Only possible before the first turn."}
	ErrRoundNotFinished = &RejectError{Reason: "Round is not finished."}
	ErrMatchOver        = &RejectError{Reason: "Match is over. Start a new room."}
	ErrNotSeated        = &RejectError{Reason: "Join first."}
	ErrNotAlive         = &RejectError{Reason: "You are OUT this round."}
	ErrNotYourTurn      = &RejectError{Reason: "Not your turn."}
	ErrCardNotInHand    = &RejectError{Reason: "Card not in hand."}
	ErrCardNotPlayable  = &RejectError{Reason: "That card can't be played now."}
	ErrSuitRequired     = &RejectError{Reason: "Pick a suit for the 8."}
	ErrInvalidSuit      = &RejectError{Reason: "Unknown suit."}
	ErrNotDealer        = &RejectError{Reason: "Only the dealer can do that."}
	ErrNotEnoughPlayers = &RejectError{Reason: "Need at least 2 players."}
	ErrNotAllReady      = &RejectError{Reason: "Everyone must be READY."}
	ErrSevensUnresolved = &RejectError{Reason: "All 7s must be saved first."}
	ErrNoSevens         = &RejectError{Reason: "You have no 7s."}
	ErrNotEnoughEights  = &RejectError{Reason: "Not enough 8s to cover all 7s."}
	ErrMustPlay         = &RejectError{Reason: "You have a playable card."}
	ErrPendingPass      = &RejectError{Reason: "Can't pass with a pickup pending."}
	ErrRoomFull         = &RejectError{Reason: "Room full (max 7)."}
	ErrNameRequired     = &RejectError{Reason: "Name required."}
	ErrTimerNotExpired  = &RejectError{Reason: "Turn timer has not expired."}
	ErrTimerDisabled    = &RejectError{Reason: "Turn timer is off."}
	ErrStaleTimeout     = &RejectError{Reason: "Turn already moved on."}
	ErrUnknownAction    = &RejectError{Reason: "Unknown action."}
)

// InvariantError is a logic fault: a transition produced a state that breaks
// a structural rule. It is never shown to players.
type InvariantError struct {
	Problems []string
}

func (e *InvariantError) Error() string {
	return "round invariant violated: " + strings.Join(e.Problems, "; ")
}
