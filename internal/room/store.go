// internal/room/store.go
package room

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/jason-s-yu/unluckysevens/internal/models"
)

var (
	// ErrNotFound is returned when no room has the given code.
	ErrNotFound = errors.New("room not found")
	// ErrConflict is returned when a conditional update saw a newer version.
	ErrConflict = errors.New("room was updated concurrently")
	// ErrCodeTaken is returned by Create when the code is already in use.
	ErrCodeTaken = errors.New("room code already in use")
)

// Store persists one row per room. Update must only succeed when the stored
// version still equals expectedVersion, and must bump the version.
type Store interface {
	Get(ctx context.Context, code string) (models.RoomRow, error)
	Create(ctx context.Context, code string, state models.Round) (models.RoomRow, error)
	Update(ctx context.Context, code string, expectedVersion int64, state models.Round) (models.RoomRow, error)
}

// MemoryStore keeps rooms in process memory. Rows are copied on the way in
// and out so callers never share state with the store.
type MemoryStore struct {
	mu    sync.Mutex
	rooms map[string]models.RoomRow
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		rooms: make(map[string]models.RoomRow),
	}
}

func (s *MemoryStore) Get(_ context.Context, code string) (models.RoomRow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	row, ok := s.rooms[code]
	if !ok {
		return models.RoomRow{}, ErrNotFound
	}
	return copyRow(row), nil
}

func (s *MemoryStore) Create(_ context.Context, code string, state models.Round) (models.RoomRow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.rooms[code]; exists {
		return models.RoomRow{}, ErrCodeTaken
	}
	row := models.RoomRow{Code: code, State: state.Clone(), Version: 1, UpdatedAt: time.Now().UTC()}
	s.rooms[code] = row
	return copyRow(row), nil
}

func (s *MemoryStore) Update(_ context.Context, code string, expectedVersion int64, state models.Round) (models.RoomRow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	row, ok := s.rooms[code]
	if !ok {
		return models.RoomRow{}, ErrNotFound
	}
	if row.Version != expectedVersion {
		return models.RoomRow{}, ErrConflict
	}
	row.State = state.Clone()
	row.Version++
	row.UpdatedAt = time.Now().UTC()
	s.rooms[code] = row
	return copyRow(row), nil
}

// Len reports how many rooms are stored.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.rooms)
}

func copyRow(row models.RoomRow) models.RoomRow {
	row.State = row.State.Clone()
	return row
}
