// internal/cache/recorder.go
package cache

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jason-s-yu/unluckysevens/internal/models"
	"github.com/jason-s-yu/unluckysevens/internal/room"
	"github.com/redis/go-redis/v9"
)

// DefaultQueueName is the Redis list the historian drains.
const DefaultQueueName = "unluckysevens_actions"

// Recorder pushes action records onto a Redis list. The push is the only
// work done on the request path; the historian persists them later.
type Recorder struct {
	rdb   *redis.Client
	queue string
}

var _ room.Recorder = (*Recorder)(nil)

// NewRecorder returns a Recorder pushing to queue.
func NewRecorder(rdb *redis.Client, queue string) *Recorder {
	if queue == "" {
		queue = DefaultQueueName
	}
	return &Recorder{rdb: rdb, queue: queue}
}

func (r *Recorder) Record(ctx context.Context, rec models.ActionRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal ActionRecord: %w", err)
	}
	if err := r.rdb.RPush(ctx, r.queue, data).Err(); err != nil {
		return fmt.Errorf("failed to RPush to Redis list '%s': %w", r.queue, err)
	}
	return nil
}
