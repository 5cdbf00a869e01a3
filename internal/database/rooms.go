// internal/database/rooms.go
package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jason-s-yu/unluckysevens/internal/models"
	"github.com/jason-s-yu/unluckysevens/internal/room"
)

// uniqueViolation is the Postgres SQLSTATE for a duplicate key.
const uniqueViolation = "23505"

// RoomStore keeps one row per room with the whole round as JSONB. Writes are
// compare-and-swap on the version column.
type RoomStore struct {
	pool *pgxpool.Pool
}

var _ room.Store = (*RoomStore)(nil)

// NewRoomStore returns a RoomStore backed by pool.
func NewRoomStore(pool *pgxpool.Pool) *RoomStore {
	return &RoomStore{pool: pool}
}

// Get loads the room with the given code.
func (s *RoomStore) Get(ctx context.Context, code string) (models.RoomRow, error) {
	var (
		raw     []byte
		version int64
		updated time.Time
	)
	q := `SELECT state, version, updated_at FROM rooms WHERE code = $1`
	err := s.pool.QueryRow(ctx, q, code).Scan(&raw, &version, &updated)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.RoomRow{}, room.ErrNotFound
	}
	if err != nil {
		return models.RoomRow{}, fmt.Errorf("get room %s: %w", code, err)
	}
	return decodeRow(code, raw, version, updated)
}

// Create inserts a room at version 1.
func (s *RoomStore) Create(ctx context.Context, code string, state models.Round) (models.RoomRow, error) {
	raw, err := json.Marshal(state)
	if err != nil {
		return models.RoomRow{}, fmt.Errorf("marshal room %s: %w", code, err)
	}

	var updated time.Time
	q := `
		INSERT INTO rooms (code, state, version)
		VALUES ($1, $2, 1)
		RETURNING updated_at
	`
	err = s.pool.QueryRow(ctx, q, code, raw).Scan(&updated)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return models.RoomRow{}, room.ErrCodeTaken
	}
	if err != nil {
		return models.RoomRow{}, fmt.Errorf("create room %s: %w", code, err)
	}
	return models.RoomRow{Code: code, State: state.Clone(), Version: 1, UpdatedAt: updated}, nil
}

// Update writes state if the stored version still equals expected.
func (s *RoomStore) Update(ctx context.Context, code string, expected int64, state models.Round) (models.RoomRow, error) {
	raw, err := json.Marshal(state)
	if err != nil {
		return models.RoomRow{}, fmt.Errorf("marshal room %s: %w", code, err)
	}

	var (
		version int64
		updated time.Time
	)
	q := `
		UPDATE rooms
		SET state = $3, version = version + 1, updated_at = NOW()
		WHERE code = $1 AND version = $2
		RETURNING version, updated_at
	`
	err = s.pool.QueryRow(ctx, q, code, expected, raw).Scan(&version, &updated)
	if errors.Is(err, pgx.ErrNoRows) {
		// Either the room is gone or someone else bumped the version.
		var exists bool
		if e := s.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM rooms WHERE code = $1)`, code).Scan(&exists); e != nil {
			return models.RoomRow{}, fmt.Errorf("update room %s: %w", code, e)
		}
		if !exists {
			return models.RoomRow{}, room.ErrNotFound
		}
		return models.RoomRow{}, room.ErrConflict
	}
	if err != nil {
		return models.RoomRow{}, fmt.Errorf("update room %s: %w", code, err)
	}
	return models.RoomRow{Code: code, State: state.Clone(), Version: version, UpdatedAt: updated}, nil
}

func decodeRow(code string, raw []byte, version int64, updated time.Time) (models.RoomRow, error) {
	var state models.Round
	if err := json.Unmarshal(raw, &state); err != nil {
		return models.RoomRow{}, fmt.Errorf("decode room %s: %w", code, err)
	}
	if state.Hands == nil {
		state.Hands = map[int][]models.Card{}
	}
	return models.RoomRow{Code: code, State: state, Version: version, UpdatedAt: updated}, nil
}
