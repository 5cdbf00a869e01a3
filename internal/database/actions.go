// internal/database/actions.go
package database

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jason-s-yu/unluckysevens/internal/models"
)

// ActionLog persists room history records.
type ActionLog struct {
	pool *pgxpool.Pool
}

// NewActionLog returns an ActionLog backed by pool.
func NewActionLog(pool *pgxpool.Pool) *ActionLog {
	return &ActionLog{pool: pool}
}

// InsertActions writes recs in a single transaction. Records that were
// already stored (same id) are skipped, so a batch can be replayed safely.
func (l *ActionLog) InsertActions(ctx context.Context, recs []models.ActionRecord) error {
	if len(recs) == 0 {
		return nil
	}
	q := `
		INSERT INTO room_actions (
			id, room_code, version, actor_id, action_type, payload, last_event, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO NOTHING
	`
	return pgx.BeginTxFunc(ctx, l.pool, pgx.TxOptions{}, func(tx pgx.Tx) error {
		batch := &pgx.Batch{}
		for _, rec := range recs {
			payload := rec.Payload
			if len(payload) == 0 {
				payload = json.RawMessage("{}")
			}
			batch.Queue(q,
				rec.ID, rec.RoomCode, rec.Version, rec.ActorID, rec.ActionType,
				[]byte(payload), rec.LastEvent, time.UnixMilli(rec.Timestamp),
			)
		}
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return fmt.Errorf("insert %d actions: %w", len(recs), err)
		}
		return nil
	})
}

// ListActions returns up to limit records for a room, oldest first.
func (l *ActionLog) ListActions(ctx context.Context, code string, limit int) ([]models.ActionRecord, error) {
	q := `
		SELECT id, room_code, version, actor_id, action_type, payload, last_event, created_at
		FROM room_actions
		WHERE room_code = $1
		ORDER BY version, created_at
		LIMIT $2
	`
	rows, err := l.pool.Query(ctx, q, code, limit)
	if err != nil {
		return nil, fmt.Errorf("list actions for %s: %w", code, err)
	}
	defer rows.Close()

	out := []models.ActionRecord{}
	for rows.Next() {
		var (
			rec     models.ActionRecord
			payload []byte
			created time.Time
		)
		if err := rows.Scan(&rec.ID, &rec.RoomCode, &rec.Version, &rec.ActorID, &rec.ActionType, &payload, &rec.LastEvent, &created); err != nil {
			return nil, fmt.Errorf("scan action: %w", err)
		}
		rec.Payload = payload
		rec.Timestamp = created.UnixMilli()
		out = append(out, rec)
	}
	return out, rows.Err()
}

// PurgeIdleRooms deletes rooms whose last write is older than before.
func (l *ActionLog) PurgeIdleRooms(ctx context.Context, before time.Time) (int64, error) {
	tag, err := l.pool.Exec(ctx, `DELETE FROM rooms WHERE updated_at < $1`, before)
	if err != nil {
		return 0, fmt.Errorf("purge idle rooms: %w", err)
	}
	return tag.RowsAffected(), nil
}
