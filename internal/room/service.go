// internal/room/service.go
package room

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jason-s-yu/unluckysevens/internal/game"
	"github.com/jason-s-yu/unluckysevens/internal/models"
	"github.com/sirupsen/logrus"
)

const (
	// maxCodeAttempts bounds the retries on a room code collision.
	maxCodeAttempts = 5
	// maxApplyAttempts bounds the re-reads after a version conflict.
	maxApplyAttempts = 3
	// timeoutActionBudget is how long a watchdog fire may take end to end.
	timeoutActionBudget = 5 * time.Second
)

// Options configures a Service. Store and Engine are required; the rest
// fall back to in-memory or no-op implementations.
type Options struct {
	Store       Store
	Notifier    Notifier
	Recorder    Recorder
	Engine      *game.Engine
	Logger      *logrus.Logger
	TurnSeconds int
	// TurnTimer arms a server-side watchdog that times out idle turns.
	TurnTimer bool
}

// Service is the only writer of room state. Clients send actions; the
// service re-reads the room, runs the engine against the fresh state and
// commits the result with a version check.
type Service struct {
	store       Store
	notifier    Notifier
	recorder    Recorder
	engine      *game.Engine
	logger      *logrus.Logger
	watchdog    *Watchdog
	turnSeconds int
}

// NewService wires a Service from opts.
func NewService(opts Options) *Service {
	s := &Service{
		store:       opts.Store,
		notifier:    opts.Notifier,
		recorder:    opts.Recorder,
		engine:      opts.Engine,
		logger:      opts.Logger,
		turnSeconds: opts.TurnSeconds,
	}
	if s.notifier == nil {
		s.notifier = NewMemoryNotifier()
	}
	if s.recorder == nil {
		s.recorder = NopRecorder{}
	}
	if s.engine == nil {
		s.engine = game.NewEngine()
	}
	if s.logger == nil {
		s.logger = logrus.New()
	}
	if opts.TurnTimer {
		s.watchdog = NewWatchdog(s.onTurnTimeout)
	}
	return s
}

// CreateRoom opens a new room with the caller seated as host and dealer. It
// returns the new row and the host's player id.
func (s *Service) CreateRoom(ctx context.Context, name string) (models.RoomRow, string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return models.RoomRow{}, "", game.ErrNameRequired
	}
	playerID := uuid.NewString()
	state := game.NewRoomState(playerID, name, s.turnSeconds)

	for attempt := 1; attempt <= maxCodeAttempts; attempt++ {
		code := NewCode()
		row, err := s.store.Create(ctx, code, state)
		if errors.Is(err, ErrCodeTaken) {
			s.logger.WithField("room", code).Debug("room code collision, retrying")
			continue
		}
		if err != nil {
			return models.RoomRow{}, "", fmt.Errorf("create room: %w", err)
		}
		s.logger.WithFields(logrus.Fields{"room": code, "host": playerID}).Info("room created")
		s.record(ctx, row, playerID, "create_room", map[string]string{"name": name})
		return row, playerID, nil
	}
	return models.RoomRow{}, "", fmt.Errorf("create room: %w", ErrCodeTaken)
}

// JoinRoom seats name in the room. An empty playerID gets a fresh one; a
// playerID that is already seated rejoins without changes.
func (s *Service) JoinRoom(ctx context.Context, code, name, playerID string) (models.RoomRow, string, error) {
	if playerID == "" {
		playerID = uuid.NewString()
	}
	row, err := s.Do(ctx, code, playerID, game.JoinRoom{Name: strings.TrimSpace(name)})
	if err != nil {
		return row, "", err
	}
	return row, playerID, nil
}

// Get returns the current row for code.
func (s *Service) Get(ctx context.Context, code string) (models.RoomRow, error) {
	return s.store.Get(ctx, NormalizeCode(code))
}

// Subscribe streams committed rows for code.
func (s *Service) Subscribe(ctx context.Context, code string) (<-chan models.RoomRow, func(), error) {
	return s.notifier.Subscribe(ctx, NormalizeCode(code))
}

// Do applies action for actorID against the latest state of the room. A
// rule violation comes back as a *game.RejectError with nothing written.
// When another writer wins the race the action is re-validated against the
// newer state, so an action that was legal a moment ago may be rejected.
func (s *Service) Do(ctx context.Context, code, actorID string, action game.Action) (models.RoomRow, error) {
	code = NormalizeCode(code)
	log := s.logger.WithFields(logrus.Fields{"room": code, "actor": actorID, "action": action.Kind()})

	for attempt := 1; attempt <= maxApplyAttempts; attempt++ {
		row, err := s.store.Get(ctx, code)
		if err != nil {
			return models.RoomRow{}, err
		}

		next, err := s.engine.Apply(game.ActionContext{RoomCode: code, ActorID: actorID, Round: row.State}, action)
		if err != nil {
			log.WithField("reason", err.Error()).Debug("action rejected")
			return row, err
		}
		if err := game.CheckInvariants(next); err != nil {
			log.WithError(err).Error("refusing to commit a broken round")
			return row, fmt.Errorf("room %s %s: %w", code, action.Kind(), err)
		}

		updated, err := s.store.Update(ctx, code, row.Version, next)
		if errors.Is(err, ErrConflict) {
			log.WithField("attempt", attempt).Info("version conflict, re-applying")
			continue
		}
		if err != nil {
			return row, fmt.Errorf("room %s %s: %w", code, action.Kind(), err)
		}

		log.WithFields(logrus.Fields{
			"version": updated.Version,
			"status":  updated.State.RoundStatus,
		}).Debug(updated.State.LastEvent)
		s.afterCommit(ctx, updated, actorID, action)
		return updated, nil
	}
	return models.RoomRow{}, ErrConflict
}

func (s *Service) afterCommit(ctx context.Context, row models.RoomRow, actorID string, action game.Action) {
	if err := s.notifier.Publish(ctx, row); err != nil {
		s.logger.WithError(err).WithField("room", row.Code).Warn("publish failed")
	}
	s.record(ctx, row, actorID, action.Kind(), action)
	if s.watchdog != nil {
		s.watchdog.Arm(row)
	}
}

// record pushes a history entry. History is best effort and never fails the
// action that produced it.
func (s *Service) record(ctx context.Context, row models.RoomRow, actorID, kind string, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		s.logger.WithError(err).Warn("marshal action payload")
		data = []byte("{}")
	}
	rec := models.ActionRecord{
		ID:         uuid.New(),
		RoomCode:   row.Code,
		Version:    row.Version,
		ActorID:    actorID,
		ActionType: kind,
		Payload:    data,
		LastEvent:  row.State.LastEvent,
		Timestamp:  row.UpdatedAt.UnixMilli(),
	}
	if err := s.recorder.Record(ctx, rec); err != nil {
		s.logger.WithError(err).WithField("room", row.Code).Warn("record action failed")
	}
}

func (s *Service) onTurnTimeout(code string, seat int, startedAt time.Time) {
	ctx, cancel := context.WithTimeout(context.Background(), timeoutActionBudget)
	defer cancel()

	_, err := s.Do(ctx, code, game.SystemActor, game.TimeoutPickupAndPass{
		ExpectedTurnSeat:      &seat,
		ExpectedTurnStartedAt: &startedAt,
	})
	switch {
	case err == nil:
		s.logger.WithFields(logrus.Fields{"room": code, "seat": seat}).Info("turn timed out")
	case game.IsRejection(err):
		s.logger.WithFields(logrus.Fields{"room": code, "seat": seat}).Debugf("stale turn timer ignored: %v", err)
	default:
		s.logger.WithError(err).WithField("room", code).Error("turn timeout failed")
	}
}

// Close stops every pending turn timer.
func (s *Service) Close() {
	if s.watchdog != nil {
		s.watchdog.Stop()
	}
}
