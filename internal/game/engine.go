// internal/game/engine.go
package game

import (
	"math/rand/v2"
	"time"

	"github.com/jason-s-yu/unluckysevens/internal/models"
)

const (
	// DefaultHandSize is the number of cards dealt to every seat.
	DefaultHandSize = 7
	// DefaultMatchTarget is the number of round wins that ends a match.
	DefaultMatchTarget = 7
	// DefaultTurnSeconds is the turn timer written into new rooms.
	DefaultTurnSeconds = 30
	// MaxPlayers is the seat limit per room.
	MaxPlayers = 7
)

// SystemActor is the actor id used by the server-side turn watchdog.
const SystemActor = "system"

// ActionContext is everything an action needs: where it happens, who is
// acting and the freshly read round it applies to.
type ActionContext struct {
	RoomCode string
	ActorID  string
	Round    models.Round
}

// Engine applies actions to rounds. It holds no per-room state; the same
// Engine may be shared by every room.
type Engine struct {
	HandSize    int
	MatchTarget int
	// Rand drives deck shuffles. Nil uses the global source.
	Rand *rand.Rand
	// Now stamps turn starts and checks timer expiry. Nil uses time.Now.
	Now func() time.Time
}

// NewEngine returns an Engine with the standard hand size and match target.
func NewEngine() *Engine {
	return &Engine{HandSize: DefaultHandSize, MatchTarget: DefaultMatchTarget}
}

func (e *Engine) now() time.Time {
	if e.Now != nil {
		return e.Now()
	}
	return time.Now()
}

func (e *Engine) handSize() int {
	if e.HandSize <= 0 {
		return DefaultHandSize
	}
	return e.HandSize
}

func (e *Engine) matchTarget() int {
	if e.MatchTarget <= 0 {
		return DefaultMatchTarget
	}
	return e.MatchTarget
}

// --- Actions ---

// Action is one of the moves a seated player (or the watchdog) can make.
type Action interface {
	// Kind is the wire name of the action.
	Kind() string
	apply(e *Engine, ctx ActionContext, r *models.Round) error
}

// JoinRoom seats the actor in the lobby.
type JoinRoom struct {
	Name string `json:"name"`
}

// ToggleReady flips the actor's ready flag.
type ToggleReady struct{}

// BeginRound deals a new round. Dealer only.
type BeginRound struct{}

// ResolveSevens saves every seven in the actor's hand with eights and
// nominates Suit.
type ResolveSevens struct {
	Suit models.Suit `json:"suit"`
}

// BeginFirstTurn starts play once every seven is saved. Dealer only.
type BeginFirstTurn struct{}

// PlayCard plays Card; Suit is required when Card is an eight.
type PlayCard struct {
	Card models.Card `json:"card"`
	Suit models.Suit `json:"suit,omitempty"`
}

// DrawOrPickup draws one card, or absorbs the pending pickup. SaveSuit is the
// suit nominated if drawn sevens are auto-saved.
type DrawOrPickup struct {
	SaveSuit models.Suit `json:"saveSuit,omitempty"`
}

// Pass ends the turn without drawing.
type Pass struct{}

// TimeoutPickupAndPass draws for an idle player and passes their turn. The
// Expected fields, when set, pin the turn the caller saw expire so that a
// timeout racing a real move fails instead of hitting the next player.
type TimeoutPickupAndPass struct {
	ExpectedTurnSeat      *int        `json:"expectedTurnSeat,omitempty"`
	ExpectedTurnStartedAt *time.Time  `json:"expectedTurnStartedAt,omitempty"`
	SaveSuit              models.Suit `json:"saveSuit,omitempty"`
}

// ContinueToNextRound returns a finished round to the lobby.
type ContinueToNextRound struct{}

func (JoinRoom) Kind() string             { return "join_room" }
func (ToggleReady) Kind() string          { return "toggle_ready" }
func (BeginRound) Kind() string           { return "begin_round" }
func (ResolveSevens) Kind() string        { return "resolve_sevens" }
func (BeginFirstTurn) Kind() string       { return "begin_first_turn" }
func (PlayCard) Kind() string             { return "play_card" }
func (DrawOrPickup) Kind() string         { return "draw" }
func (Pass) Kind() string                 { return "pass" }
func (TimeoutPickupAndPass) Kind() string { return "timeout" }
func (ContinueToNextRound) Kind() string  { return "continue" }

func (a JoinRoom) apply(e *Engine, ctx ActionContext, r *models.Round) error {
	return e.join(r, ctx.ActorID, a.Name)
}

func (ToggleReady) apply(e *Engine, ctx ActionContext, r *models.Round) error {
	return e.toggleReady(r, ctx.ActorID)
}

func (BeginRound) apply(e *Engine, ctx ActionContext, r *models.Round) error {
	return e.beginRound(r, ctx.ActorID)
}

func (a ResolveSevens) apply(e *Engine, ctx ActionContext, r *models.Round) error {
	return e.resolveSevens(r, ctx.ActorID, a.Suit)
}

func (BeginFirstTurn) apply(e *Engine, ctx ActionContext, r *models.Round) error {
	return e.beginFirstTurn(r, ctx.ActorID)
}

func (a PlayCard) apply(e *Engine, ctx ActionContext, r *models.Round) error {
	return e.playCard(r, ctx.ActorID, a.Card, a.Suit)
}

func (a DrawOrPickup) apply(e *Engine, ctx ActionContext, r *models.Round) error {
	return e.drawOrPickup(r, ctx.ActorID, a.SaveSuit)
}

func (Pass) apply(e *Engine, ctx ActionContext, r *models.Round) error {
	return e.pass(r, ctx.ActorID)
}

func (a TimeoutPickupAndPass) apply(e *Engine, ctx ActionContext, r *models.Round) error {
	return e.timeoutPickupAndPass(r, ctx.ActorID, a)
}

func (ContinueToNextRound) apply(e *Engine, ctx ActionContext, r *models.Round) error {
	return e.continueToNextRound(r, ctx.ActorID)
}

// Apply runs action against ctx.Round and returns the complete next round.
// ctx.Round is never modified. On a rejection the returned round is
// ctx.Round and the error is a *RejectError.
func (e *Engine) Apply(ctx ActionContext, action Action) (models.Round, error) {
	if action == nil {
		return ctx.Round, ErrUnknownAction
	}
	if ctx.Round.RoundStatus == models.StatusFinishedMatch {
		return ctx.Round, ErrMatchOver
	}
	next := ctx.Round.Clone()
	if err := action.apply(e, ctx, &next); err != nil {
		return ctx.Round, err
	}
	return next, nil
}

// NewRoomState is the lobby a freshly created room starts in, with the
// creator seated at seat 0 as the first dealer.
func NewRoomState(hostID, hostName string, turnSeconds int) models.Round {
	return models.Round{
		RoundStatus: models.StatusLobby,
		Players: []models.Player{
			{ID: hostID, Name: hostName, Seat: 0, Alive: true},
		},
		Hands:       map[int][]models.Card{0: {}},
		Deck:        []models.Card{},
		Discard:     []models.Card{},
		Pending:     models.NoPending,
		Direction:   1,
		DealerSeat:  0,
		TurnSeconds: turnSeconds,
		LastEvent:   hostName + " created the room.",
	}
}
