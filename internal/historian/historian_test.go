// internal/historian/historian_test.go
package historian

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jason-s-yu/unluckysevens/internal/models"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSink struct {
	mu      sync.Mutex
	batches [][]models.ActionRecord
	fail    error
	purged  []time.Time
}

func (f *fakeSink) InsertActions(_ context.Context, recs []models.ActionRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail != nil {
		return f.fail
	}
	f.batches = append(f.batches, append([]models.ActionRecord(nil), recs...))
	return nil
}

func (f *fakeSink) PurgeIdleRooms(_ context.Context, before time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.purged = append(f.purged, before)
	return 0, nil
}

func (f *fakeSink) stored() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, b := range f.batches {
		n += len(b)
	}
	return n
}

func record(code string, version int64) models.ActionRecord {
	return models.ActionRecord{
		ID:         uuid.New(),
		RoomCode:   code,
		Version:    version,
		ActorID:    "p1",
		ActionType: "pass",
		Payload:    json.RawMessage(`{}`),
		Timestamp:  time.Now().UnixMilli(),
	}
}

func TestAppendFlushesFullBatch(t *testing.T) {
	sink := &fakeSink{}
	s := New(nil, sink, Options{Queue: "q", BatchSize: 3, FlushDelay: time.Hour})
	ctx := context.Background()

	s.Append(ctx, record("ABCDEF", 1))
	s.Append(ctx, record("ABCDEF", 2))
	assert.Equal(t, 2, s.Pending())
	assert.Zero(t, sink.stored())

	s.Append(ctx, record("ABCDEF", 3))
	assert.Zero(t, s.Pending())
	require.Len(t, sink.batches, 1)
	assert.Len(t, sink.batches[0], 3)
}

func TestFlushKeepsFailedBatch(t *testing.T) {
	sink := &fakeSink{fail: errors.New("db down")}
	s := New(nil, sink, Options{Queue: "q", BatchSize: 10})
	ctx := context.Background()

	s.Append(ctx, record("ABCDEF", 1))
	s.Flush(ctx)
	assert.Equal(t, 1, s.Pending())

	s.Append(ctx, record("ABCDEF", 2))
	sink.fail = nil
	s.Flush(ctx)
	assert.Zero(t, s.Pending())
	require.Len(t, sink.batches, 1)
	assert.Equal(t, int64(1), sink.batches[0][0].Version, "failed records go first")
	assert.Equal(t, int64(2), sink.batches[0][1].Version)
}

func TestFlushEmptyIsNoop(t *testing.T) {
	sink := &fakeSink{}
	s := New(nil, sink, Options{})
	s.Flush(context.Background())
	assert.Empty(t, sink.batches)
}

func TestDecodeRecord(t *testing.T) {
	rec := record("ABCDEF", 4)
	data, err := json.Marshal(rec)
	require.NoError(t, err)

	got, err := decodeRecord(string(data))
	require.NoError(t, err)
	assert.Equal(t, rec.ID, got.ID)
	assert.Equal(t, int64(4), got.Version)

	_, err = decodeRecord(`{"room_code":"ABCDEF"}`)
	assert.Error(t, err)
	_, err = decodeRecord("{")
	assert.Error(t, err)
}

// TestHistorianEndToEnd needs a real Redis at TEST_REDIS_ADDR.
func TestHistorianEndToEnd(t *testing.T) {
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("TEST_REDIS_ADDR not set")
	}
	rdb := redis.NewClient(&redis.Options{Addr: addr})
	defer rdb.Close()

	queue := "test-history:" + uuid.NewString()
	sink := &fakeSink{}
	s := New(rdb, sink, Options{Queue: queue, BatchSize: 2, FlushDelay: 50 * time.Millisecond})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Run(ctx)
		close(done)
	}()

	for v := int64(1); v <= 3; v++ {
		data, err := json.Marshal(record("ABCDEF", v))
		require.NoError(t, err)
		require.NoError(t, rdb.RPush(context.Background(), queue, data).Err())
	}
	require.NoError(t, rdb.RPush(context.Background(), queue, "garbage").Err())

	assert.Eventually(t, func() bool { return sink.stored() == 3 }, 5*time.Second, 20*time.Millisecond)
	cancel()
	select {
	case <-done:
	case <-time.After(2 * popTimeout):
		t.Fatal("historian did not stop")
	}
}
