// internal/handlers/view.go
package handlers

import (
	"sort"
	"time"

	"github.com/jason-s-yu/unluckysevens/internal/game"
	"github.com/jason-s-yu/unluckysevens/internal/models"
)

// PlayerView is a seated player as everyone at the table sees them.
type PlayerView struct {
	models.Player
	CardCount int `json:"cardCount"`
}

// RoomView is a room as one seat sees it: its own hand in full, other hands
// and the deck only as counts.
type RoomView struct {
	Code      string    `json:"code"`
	Version   int64     `json:"version"`
	UpdatedAt time.Time `json:"updatedAt"`

	RoundNumber   int                 `json:"roundNumber"`
	RoundStatus   models.RoundStatus  `json:"roundStatus"`
	Players       []PlayerView        `json:"players"`
	DeckCount     int                 `json:"deckCount"`
	DiscardCount  int                 `json:"discardCount"`
	TopCard       *models.Card        `json:"topCard"`
	ForcedSuit    models.Suit         `json:"forcedSuit"`
	Pending       models.Pending      `json:"pending"`
	Direction     int                 `json:"direction"`
	DealerSeat    int                 `json:"dealerSeat"`
	TurnSeat      *int                `json:"turnSeat"`
	FirstTurnSeat *int                `json:"firstTurnSeat"`
	TurnStartedAt *time.Time          `json:"turnStartedAt"`
	TurnSeconds   int                 `json:"turnSeconds"`
	RoundResult   *models.RoundResult `json:"roundResult"`
	LastEvent     string              `json:"lastEvent"`

	// Set only for a seated viewer.
	YourID   string        `json:"yourId,omitempty"`
	YourSeat *int          `json:"yourSeat,omitempty"`
	Hand     []models.Card `json:"hand,omitempty"`
	// Playable lists the cards the viewer may play right now. Empty when it
	// is not their turn.
	Playable []models.Card `json:"playable,omitempty"`
}

// NewRoomView renders row for viewerID. An empty or unknown viewer gets the
// public view.
func NewRoomView(row models.RoomRow, viewerID string) RoomView {
	st := row.State
	v := RoomView{
		Code:          row.Code,
		Version:       row.Version,
		UpdatedAt:     row.UpdatedAt,
		RoundNumber:   st.RoundNumber,
		RoundStatus:   st.RoundStatus,
		Players:       make([]PlayerView, 0, len(st.Players)),
		DeckCount:     len(st.Deck),
		DiscardCount:  len(st.Discard),
		TopCard:       st.TopCard,
		ForcedSuit:    st.ForcedSuit,
		Pending:       st.Pending,
		Direction:     st.Direction,
		DealerSeat:    st.DealerSeat,
		TurnSeat:      st.TurnSeat,
		FirstTurnSeat: st.FirstTurnSeat,
		TurnStartedAt: st.TurnStartedAt,
		TurnSeconds:   st.TurnSeconds,
		RoundResult:   st.RoundResult,
		LastEvent:     st.LastEvent,
	}
	for _, p := range st.Players {
		v.Players = append(v.Players, PlayerView{Player: p, CardCount: len(st.Hands[p.Seat])})
	}
	sort.Slice(v.Players, func(i, j int) bool { return v.Players[i].Seat < v.Players[j].Seat })

	idx := st.PlayerByID(viewerID)
	if idx < 0 {
		return v
	}
	me := st.Players[idx]
	v.YourID = me.ID
	v.YourSeat = models.IntPtr(me.Seat)
	v.Hand = append([]models.Card{}, st.Hands[me.Seat]...)
	if st.RoundStatus == models.StatusPlaying && me.Alive && st.TurnSeat != nil && *st.TurnSeat == me.Seat {
		v.Playable = game.PlayableCards(v.Hand, st.TopCard, st.ForcedSuit, st.Pending)
	}
	return v
}
