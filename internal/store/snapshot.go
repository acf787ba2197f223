package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
)

// snapshotRepo implements SnapshotRepo on SQLite.
type snapshotRepo struct {
	db *sql.DB
}

func (r *snapshotRepo) Save(ctx context.Context, snap *Snapshot) error {
	savedAt := snap.SavedAt
	if savedAt.IsZero() {
		savedAt = time.Now()
	}
	query, args := entsql.Dialect(dialect.SQLite).
		Insert(SnapshotsTable.Name).
		Columns("key", "saved_at", "data").
		Values(snap.Key, savedAt.UTC().UnixNano(), string(snap.Data)).
		Query()

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	if id, err := res.LastInsertId(); err == nil {
		snap.ID = id
	}
	return nil
}

func (r *snapshotRepo) Latest(ctx context.Context, key string) (*Snapshot, error) {
	query, args := entsql.Dialect(dialect.SQLite).
		Select("id", "key", "saved_at", "data").
		From(entsql.Table(SnapshotsTable.Name)).
		Where(entsql.EQ("key", key)).
		OrderBy(entsql.Desc("id")).
		Limit(1).
		Query()

	var (
		snap    Snapshot
		savedAt int64
		data    string
	)
	err := r.db.QueryRowContext(ctx, query, args...).Scan(&snap.ID, &snap.Key, &savedAt, &data)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("query latest snapshot: %w", err)
	}
	snap.SavedAt = time.Unix(0, savedAt).UTC()
	snap.Data = []byte(data)
	return &snap, nil
}

func (r *snapshotRepo) Prune(ctx context.Context, key string, keep int) error {
	// Find the ID threshold: the newest snapshot past the keep window.
	query, args := entsql.Dialect(dialect.SQLite).
		Select("id").
		From(entsql.Table(SnapshotsTable.Name)).
		Where(entsql.EQ("key", key)).
		OrderBy(entsql.Desc("id")).
		Limit(1).
		Offset(keep).
		Query()

	var threshold int64
	err := r.db.QueryRowContext(ctx, query, args...).Scan(&threshold)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil // fewer than keep snapshots exist
		}
		return fmt.Errorf("query snapshots for prune: %w", err)
	}

	query, args = entsql.Dialect(dialect.SQLite).
		Delete(SnapshotsTable.Name).
		Where(entsql.And(entsql.EQ("key", key), entsql.LTE("id", threshold))).
		Query()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("prune snapshots: %w", err)
	}
	return nil
}

func (r *snapshotRepo) Delete(ctx context.Context, key string) error {
	query, args := entsql.Dialect(dialect.SQLite).
		Delete(SnapshotsTable.Name).
		Where(entsql.EQ("key", key)).
		Query()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("delete snapshots: %w", err)
	}
	return nil
}
