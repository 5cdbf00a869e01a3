package models

import "time"

// RoomRow is a persisted room: its code, the current round state and the
// row version used for optimistic concurrency.
type RoomRow struct {
	Code      string    `json:"code"`
	State     Round     `json:"state"`
	Version   int64     `json:"version"`
	UpdatedAt time.Time `json:"updatedAt"`
}
