// internal/historian/historian.go drains the action-history queue from Redis
// and persists it to Postgres in batches.
package historian

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/jason-s-yu/unluckysevens/internal/models"
	"github.com/redis/go-redis/v9"
)

// popTimeout bounds each BLPop so cancellation and flushes are noticed.
const popTimeout = 3 * time.Second

// maxBacklog caps how many unflushed records are kept while the database is
// failing. Older records are dropped first.
const maxBacklog = 10_000

// Sink is where batches end up.
type Sink interface {
	InsertActions(ctx context.Context, recs []models.ActionRecord) error
	PurgeIdleRooms(ctx context.Context, before time.Time) (int64, error)
}

// Options configures a Service.
type Options struct {
	Queue      string
	BatchSize  int
	FlushDelay time.Duration
	// RoomIdle is how long a room may go without a write before it is
	// purged. Zero disables purging.
	RoomIdle time.Duration
}

// Service pops action records, accumulates them and flushes them to the
// sink when the batch is full or the flush interval elapses.
type Service struct {
	rdb  *redis.Client
	sink Sink
	opts Options

	batchMu sync.Mutex
	batch   []models.ActionRecord
}

// New constructs a Service.
func New(rdb *redis.Client, sink Sink, opts Options) *Service {
	if opts.BatchSize <= 0 {
		opts.BatchSize = 20
	}
	if opts.FlushDelay <= 0 {
		opts.FlushDelay = 500 * time.Millisecond
	}
	return &Service{
		rdb:   rdb,
		sink:  sink,
		opts:  opts,
		batch: make([]models.ActionRecord, 0, opts.BatchSize),
	}
}

// Run blocks until ctx is done, then flushes whatever is left.
func (s *Service) Run(ctx context.Context) {
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		s.flushLoop(ctx)
	}()
	go func() {
		defer wg.Done()
		s.purgeLoop(ctx)
	}()

	log.Printf("historian started on queue %s", s.opts.Queue)
	s.readRedisLoop(ctx)
	wg.Wait()

	finalCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	s.Flush(finalCtx)
	log.Println("historian stopped")
}

// readRedisLoop pops one record at a time until ctx is done.
func (s *Service) readRedisLoop(ctx context.Context) {
	for ctx.Err() == nil {
		res, err := s.rdb.BLPop(ctx, popTimeout, s.opts.Queue).Result()
		if err != nil {
			if errors.Is(err, redis.Nil) || ctx.Err() != nil {
				continue
			}
			log.Printf("[ERROR] BLPop: %v", err)
			time.Sleep(time.Second)
			continue
		}
		// res[0] is the queue name and res[1] the payload.
		if len(res) < 2 {
			continue
		}
		rec, err := decodeRecord(res[1])
		if err != nil {
			log.Printf("invalid action record: %v", err)
			continue
		}
		s.Append(ctx, rec)
	}
}

func (s *Service) flushLoop(ctx context.Context) {
	ticker := time.NewTicker(s.opts.FlushDelay)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Flush(ctx)
		}
	}
}

// purgeLoop deletes rooms nobody has written to for RoomIdle.
func (s *Service) purgeLoop(ctx context.Context) {
	if s.opts.RoomIdle <= 0 {
		return
	}
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := s.sink.PurgeIdleRooms(ctx, time.Now().Add(-s.opts.RoomIdle))
			if err != nil {
				log.Printf("failed to purge idle rooms: %v", err)
			} else if n > 0 {
				log.Printf("purged %d idle room(s)", n)
			}
		}
	}
}

// Append adds a record to the batch and flushes once it is full.
func (s *Service) Append(ctx context.Context, rec models.ActionRecord) {
	s.batchMu.Lock()
	s.batch = append(s.batch, rec)
	full := len(s.batch) >= s.opts.BatchSize
	s.batchMu.Unlock()
	if full {
		s.Flush(ctx)
	}
}

// Flush writes the pending batch in one call to the sink. A failed batch is
// put back in front of anything that arrived meanwhile.
func (s *Service) Flush(ctx context.Context) {
	s.batchMu.Lock()
	if len(s.batch) == 0 {
		s.batchMu.Unlock()
		return
	}
	pending := s.batch
	s.batch = make([]models.ActionRecord, 0, s.opts.BatchSize)
	s.batchMu.Unlock()

	if err := s.sink.InsertActions(ctx, pending); err != nil {
		log.Printf("[ERROR] flush %d actions: %v", len(pending), err)
		s.batchMu.Lock()
		s.batch = append(pending, s.batch...)
		if over := len(s.batch) - maxBacklog; over > 0 {
			log.Printf("[ERROR] dropping %d oldest actions", over)
			s.batch = s.batch[over:]
		}
		s.batchMu.Unlock()
		return
	}
	log.Printf("flushed %d actions to DB", len(pending))
}

// Pending reports how many records are waiting for a flush.
func (s *Service) Pending() int {
	s.batchMu.Lock()
	defer s.batchMu.Unlock()
	return len(s.batch)
}

func decodeRecord(payload string) (models.ActionRecord, error) {
	var rec models.ActionRecord
	if err := json.Unmarshal([]byte(payload), &rec); err != nil {
		return models.ActionRecord{}, err
	}
	if rec.RoomCode == "" || rec.ActionType == "" {
		return models.ActionRecord{}, errors.New("record missing room_code or action_type")
	}
	return rec, nil
}
