package store

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
)

// sequenceCounter hands out the global monotonic sequence shared by every
// audit event, so events stay ordered even when timestamps collide.
//
// Uses raw SQL because the ent builder has no atomic increment-and-return.
// The mutex serializes within the process; the RETURNING clause makes the
// increment atomic at the database level.
type sequenceCounter struct {
	mu sync.Mutex
	db *sql.DB
}

// Next atomically returns the next sequence number and increments the counter.
func (sc *sequenceCounter) Next(ctx context.Context) (int64, error) {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	var seq int64
	err := sc.db.QueryRowContext(ctx,
		`UPDATE global_sequence SET next_val = next_val + 1 WHERE id = 1 RETURNING next_val - 1`,
	).Scan(&seq)
	if err != nil {
		return 0, fmt.Errorf("next sequence: %w", err)
	}
	return seq, nil
}

// eventRepo implements EventRepo on SQLite.
type eventRepo struct {
	db  *sql.DB
	seq *sequenceCounter
}

func (r *eventRepo) Append(ctx context.Context, ev Event) error {
	seqNum, err := r.seq.Next(ctx)
	if err != nil {
		return err
	}
	ts := ev.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}

	query, args := entsql.Dialect(dialect.SQLite).
		Insert(EventsTable.Name).
		Columns("sequence", "session_id", "action", "detail", "timestamp").
		Values(seqNum, ev.SessionID, ev.Action, ev.Detail, ts.UTC().UnixNano()).
		Query()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("save %s event: %w", ev.Action, err)
	}
	return nil
}

func (r *eventRepo) List(ctx context.Context, sessionID string, opts QueryOpts) ([]Event, error) {
	sel := entsql.Dialect(dialect.SQLite).
		Select("sequence", "session_id", "action", "detail", "timestamp").
		From(entsql.Table(EventsTable.Name)).
		OrderBy("sequence")

	var preds []*entsql.Predicate
	if sessionID != "" {
		preds = append(preds, entsql.EQ("session_id", sessionID))
	}
	if opts.After > 0 {
		preds = append(preds, entsql.GT("sequence", opts.After))
	}
	if len(preds) > 0 {
		sel = sel.Where(entsql.And(preds...))
	}
	if opts.Limit > 0 {
		sel = sel.Limit(opts.Limit)
	}

	query, args := sel.Query()
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()

	var out []Event
	for rows.Next() {
		var (
			ev Event
			ts int64
		)
		if err := rows.Scan(&ev.Sequence, &ev.SessionID, &ev.Action, &ev.Detail, &ts); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		ev.Timestamp = time.Unix(0, ts).UTC()
		out = append(out, ev)
	}
	return out, rows.Err()
}
