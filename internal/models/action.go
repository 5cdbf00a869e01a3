package models

import (
	"encoding/json"

	"github.com/google/uuid"
)

// ActionRecord captures one committed action for the history log.
type ActionRecord struct {
	ID         uuid.UUID       `json:"id"`
	RoomCode   string          `json:"room_code"`
	Version    int64           `json:"version"`
	ActorID    string          `json:"actor_id"`
	ActionType string          `json:"action_type"`
	Payload    json.RawMessage `json:"payload"`
	LastEvent  string          `json:"last_event"`
	Timestamp  int64           `json:"timestamp"` // epoch millis
}
