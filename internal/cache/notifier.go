// internal/cache/notifier.go
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"

	"github.com/jason-s-yu/unluckysevens/internal/models"
	"github.com/jason-s-yu/unluckysevens/internal/room"
	"github.com/redis/go-redis/v9"
)

// DefaultChannelPrefix is prepended to the room code to name its channel.
const DefaultChannelPrefix = "room:"

// Notifier publishes committed rows on a Redis channel per room, so every
// server instance can push updates to its own websocket clients.
type Notifier struct {
	rdb    *redis.Client
	prefix string
}

var _ room.Notifier = (*Notifier)(nil)

// NewNotifier returns a Notifier using channels named prefix+code.
func NewNotifier(rdb *redis.Client, prefix string) *Notifier {
	if prefix == "" {
		prefix = DefaultChannelPrefix
	}
	return &Notifier{rdb: rdb, prefix: prefix}
}

// Channel returns the Redis channel for a room.
func (n *Notifier) Channel(code string) string {
	return n.prefix + code
}

func (n *Notifier) Publish(ctx context.Context, row models.RoomRow) error {
	data, err := json.Marshal(row)
	if err != nil {
		return fmt.Errorf("failed to marshal room %s: %w", row.Code, err)
	}
	if err := n.rdb.Publish(ctx, n.Channel(row.Code), data).Err(); err != nil {
		return fmt.Errorf("failed to publish room %s: %w", row.Code, err)
	}
	return nil
}

func (n *Notifier) Subscribe(ctx context.Context, code string) (<-chan models.RoomRow, func(), error) {
	ps := n.rdb.Subscribe(ctx, n.Channel(code))
	// Wait for the subscription to be confirmed so no publish is missed
	// between here and the first read.
	if _, err := ps.Receive(ctx); err != nil {
		ps.Close()
		return nil, nil, fmt.Errorf("subscribe %s: %w", code, err)
	}

	out := make(chan models.RoomRow, room.SubscriberBuffer)
	done := make(chan struct{})
	var once sync.Once
	cancel := func() {
		once.Do(func() {
			close(done)
			ps.Close()
		})
	}

	go func() {
		defer close(out)
		msgs := ps.Channel()
		for {
			select {
			case <-ctx.Done():
				cancel()
				return
			case <-done:
				return
			case msg, ok := <-msgs:
				if !ok {
					return
				}
				row, err := decodeRow(msg.Payload)
				if err != nil {
					log.Printf("dropping bad room message on %s: %v", msg.Channel, err)
					continue
				}
				room.OfferLatest(out, row)
			}
		}
	}()
	return out, cancel, nil
}

func decodeRow(payload string) (models.RoomRow, error) {
	var row models.RoomRow
	if err := json.Unmarshal([]byte(payload), &row); err != nil {
		return models.RoomRow{}, err
	}
	if row.State.Hands == nil {
		row.State.Hands = map[int][]models.Card{}
	}
	return row, nil
}
