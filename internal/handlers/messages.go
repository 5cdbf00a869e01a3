// internal/handlers/messages.go
package handlers

import (
	"fmt"
	"time"

	"github.com/jason-s-yu/unluckysevens/internal/game"
	"github.com/jason-s-yu/unluckysevens/internal/models"
)

// ClientMessage is what a seat sends over the room socket. Type is the
// action name; the other fields are read only by the actions that use them.
type ClientMessage struct {
	Type string `json:"type"`

	// Card is the card to play (play_card).
	Card *models.Card `json:"card,omitempty"`
	// Suit is the nominated suit (play_card with an 8, resolve_sevens) or the
	// save suit for drawn sevens (draw, timeout).
	Suit models.Suit `json:"suit,omitempty"`

	// The turn the client saw expire (timeout).
	ExpectedTurnSeat      *int       `json:"expectedTurnSeat,omitempty"`
	ExpectedTurnStartedAt *time.Time `json:"expectedTurnStartedAt,omitempty"`
}

// ServerMessage is pushed to a seat.
type ServerMessage struct {
	Type    string    `json:"type"`
	Room    *RoomView `json:"room,omitempty"`
	Message string    `json:"message,omitempty"`
	// Action echoes the client message a rejection or error refers to.
	Action string `json:"action,omitempty"`
}

// Server message types.
const (
	MsgState    = "state"
	MsgRejected = "rejected"
	MsgError    = "error"
	MsgPong     = "pong"
)

// toAction maps a client message onto an engine action.
func toAction(msg ClientMessage) (game.Action, error) {
	switch msg.Type {
	case "toggle_ready":
		return game.ToggleReady{}, nil
	case "begin_round":
		return game.BeginRound{}, nil
	case "resolve_sevens":
		return game.ResolveSevens{Suit: msg.Suit}, nil
	case "begin_first_turn":
		return game.BeginFirstTurn{}, nil
	case "play_card":
		if msg.Card == nil {
			return nil, fmt.Errorf("play_card needs a card")
		}
		return game.PlayCard{Card: *msg.Card, Suit: msg.Suit}, nil
	case "draw":
		return game.DrawOrPickup{SaveSuit: msg.Suit}, nil
	case "pass":
		return game.Pass{}, nil
	case "timeout":
		return game.TimeoutPickupAndPass{
			ExpectedTurnSeat:      msg.ExpectedTurnSeat,
			ExpectedTurnStartedAt: msg.ExpectedTurnStartedAt,
			SaveSuit:              msg.Suit,
		}, nil
	case "continue":
		return game.ContinueToNextRound{}, nil
	default:
		return nil, fmt.Errorf("unknown action type: %s", msg.Type)
	}
}
