// internal/room/notifier.go
package room

import (
	"context"
	"sync"

	"github.com/jason-s-yu/unluckysevens/internal/models"
)

// Notifier fans committed rows out to everyone watching a room.
type Notifier interface {
	Publish(ctx context.Context, row models.RoomRow) error
	// Subscribe streams rows for code until ctx is done or cancel is called.
	// Slow readers may miss intermediate rows but always get the latest one.
	Subscribe(ctx context.Context, code string) (rows <-chan models.RoomRow, cancel func(), err error)
}

// Recorder receives a history record for every committed action.
type Recorder interface {
	Record(ctx context.Context, rec models.ActionRecord) error
}

// NopRecorder drops every record.
type NopRecorder struct{}

func (NopRecorder) Record(context.Context, models.ActionRecord) error { return nil }

// SubscriberBuffer is the channel depth handed to each subscriber.
const SubscriberBuffer = 8

// MemoryNotifier delivers rows to subscribers in the same process.
type MemoryNotifier struct {
	mu     sync.Mutex
	nextID int
	subs   map[string]map[int]chan models.RoomRow
}

// NewMemoryNotifier returns a notifier with no subscribers.
func NewMemoryNotifier() *MemoryNotifier {
	return &MemoryNotifier{subs: make(map[string]map[int]chan models.RoomRow)}
}

func (n *MemoryNotifier) Publish(_ context.Context, row models.RoomRow) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	for _, ch := range n.subs[row.Code] {
		OfferLatest(ch, copyRow(row))
	}
	return nil
}

func (n *MemoryNotifier) Subscribe(ctx context.Context, code string) (<-chan models.RoomRow, func(), error) {
	ch := make(chan models.RoomRow, SubscriberBuffer)

	n.mu.Lock()
	id := n.nextID
	n.nextID++
	if n.subs[code] == nil {
		n.subs[code] = make(map[int]chan models.RoomRow)
	}
	n.subs[code][id] = ch
	n.mu.Unlock()

	var once sync.Once
	remove := func() {
		once.Do(func() {
			n.mu.Lock()
			defer n.mu.Unlock()
			delete(n.subs[code], id)
			if len(n.subs[code]) == 0 {
				delete(n.subs, code)
			}
			close(ch)
		})
	}
	stop := context.AfterFunc(ctx, remove)
	return ch, func() { stop(); remove() }, nil
}

// Subscribers reports how many subscriptions are open for code.
func (n *MemoryNotifier) Subscribers(code string) int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.subs[code])
}

// OfferLatest sends row without blocking, discarding the oldest queued row
// when the buffer is full.
func OfferLatest(ch chan models.RoomRow, row models.RoomRow) {
	for {
		select {
		case ch <- row:
			return
		default:
		}
		select {
		case <-ch:
		default:
		}
	}
}
