// internal/room/watchdog.go
package room

import (
	"sync"
	"time"

	"github.com/jason-s-yu/unluckysevens/internal/models"
)

// timerGrace is added to every deadline so the fire lands after it.
const timerGrace = 50 * time.Millisecond

// TimeoutFunc is called when a turn deadline passes. seat and startedAt
// identify the turn that was armed so a late fire can be told apart from
// the current turn.
type TimeoutFunc func(code string, seat int, startedAt time.Time)

// Watchdog keeps at most one turn timer per room.
type Watchdog struct {
	mu     sync.Mutex
	timers map[string]*time.Timer
	// versions holds the newest row version armed per room. Commits can
	// reach Arm out of order, and an older row must not replace the timer.
	versions map[string]int64
	fire     TimeoutFunc
	now      func() time.Time
}

// NewWatchdog returns a watchdog that calls fire on expiry.
func NewWatchdog(fire TimeoutFunc) *Watchdog {
	return &Watchdog{
		timers:   make(map[string]*time.Timer),
		versions: make(map[string]int64),
		fire:     fire,
		now:      time.Now,
	}
}

// Arm replaces the room's timer with one for the turn in row. Rooms that are
// not mid-turn, or that have the timer switched off, are just disarmed. A row
// older than one already armed for the room is ignored.
func (w *Watchdog) Arm(row models.RoomRow) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if v, ok := w.versions[row.Code]; ok && row.Version < v {
		return
	}
	w.versions[row.Code] = row.Version

	if t, ok := w.timers[row.Code]; ok {
		t.Stop()
		delete(w.timers, row.Code)
	}

	st := row.State
	if st.RoundStatus != models.StatusPlaying || st.TurnSeconds <= 0 || st.TurnSeat == nil || st.TurnStartedAt == nil {
		return
	}
	code, seat, startedAt := row.Code, *st.TurnSeat, *st.TurnStartedAt
	deadline := startedAt.Add(time.Duration(st.TurnSeconds) * time.Second)
	delay := max(deadline.Sub(w.now()), 0) + timerGrace

	var t *time.Timer
	t = time.AfterFunc(delay, func() {
		w.mu.Lock()
		current := w.timers[code] == t
		if current {
			delete(w.timers, code)
		}
		w.mu.Unlock()
		if current {
			w.fire(code, seat, startedAt)
		}
	})
	w.timers[code] = t
}

// Disarm stops the room's timer, if any, and forgets the room so a later
// room reusing the code starts fresh.
func (w *Watchdog) Disarm(code string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if t, ok := w.timers[code]; ok {
		t.Stop()
		delete(w.timers, code)
	}
	delete(w.versions, code)
}

// Stop disarms every room.
func (w *Watchdog) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()
	for code, t := range w.timers {
		t.Stop()
		delete(w.timers, code)
	}
	clear(w.versions)
}

// Armed reports whether the room has a pending timer.
func (w *Watchdog) Armed(code string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	_, ok := w.timers[code]
	return ok
}
