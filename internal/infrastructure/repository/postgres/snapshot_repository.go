package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/matchday-io/matchday/internal/domain/snapshot"
	qb "github.com/matchday-io/matchday/internal/platform/querybuilder"
)

type SnapshotRepository struct {
	db *sqlx.DB
}

type snapshotTableModel struct {
	Key       string    `db:"key"`
	Payload   []byte    `db:"payload"`
	UpdatedAt time.Time `db:"updated_at"`
}

func NewSnapshotRepository(db *sqlx.DB) *SnapshotRepository {
	return &SnapshotRepository{db: db}
}

func (r *SnapshotRepository) Get(ctx context.Context, key string) (snapshot.Snapshot, bool, error) {
	query, args, err := qb.Select("key", "payload", "updated_at").
		From("snapshots").
		Where(qb.Eq("key", key)).
		ToSQL()
	if err != nil {
		return snapshot.Snapshot{}, false, fmt.Errorf("build get snapshot query: %w", err)
	}

	var row snapshotTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return snapshot.Snapshot{}, false, nil
		}
		return snapshot.Snapshot{}, false, fmt.Errorf("get snapshot: %w", err)
	}

	return snapshot.Snapshot{
		Key:       row.Key,
		Payload:   row.Payload,
		UpdatedAt: row.UpdatedAt,
	}, true, nil
}

func (r *SnapshotRepository) Set(ctx context.Context, key string, payload []byte) error {
	query, args, err := qb.InsertInto("snapshots").
		Columns("key", "payload", "updated_at").
		Values(key, payload, time.Now().UTC()).
		Suffix("ON CONFLICT (key) DO UPDATE SET payload = EXCLUDED.payload, updated_at = EXCLUDED.updated_at").
		ToSQL()
	if err != nil {
		return fmt.Errorf("build set snapshot query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("set snapshot: %w", err)
	}
	return nil
}
