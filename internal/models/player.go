package models

// Player is a seated participant in a room.
type Player struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Seat      int    `json:"seat"`
	Alive     bool   `json:"alive"`
	Ready     bool   `json:"ready"`
	RoundsWon int    `json:"roundsWon"`
}
