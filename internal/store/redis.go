package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps snapshots and audit events in Redis so a session can be
// resumed from any host sharing the instance.
//
// Snapshots for a key live in a list, newest first; events are appended to
// a single list with sequence numbers from INCR.
type RedisStore struct {
	rdb    *redis.Client
	prefix string
}

// NewRedisStore wraps an existing client. Keys are namespaced by prefix.
func NewRedisStore(rdb *redis.Client, prefix string) *RedisStore {
	if prefix == "" {
		prefix = "intervue"
	}
	return &RedisStore{rdb: rdb, prefix: prefix}
}

// OpenRedis connects to addr and verifies the connection.
func OpenRedis(ctx context.Context, addr, prefix string) (*RedisStore, error) {
	rdb := redis.NewClient(&redis.Options{Addr: addr})
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("ping redis %s: %w", addr, err)
	}
	return NewRedisStore(rdb, prefix), nil
}

// Close closes the underlying client.
func (s *RedisStore) Close() error {
	return s.rdb.Close()
}

type redisSnapshot struct {
	ID      int64           `json:"id"`
	SavedAt int64           `json:"savedAt"`
	Data    json.RawMessage `json:"data"`
}

func (s *RedisStore) snapshotKey(key string) string {
	return s.prefix + ":snapshot:" + key
}

func (s *RedisStore) Save(ctx context.Context, snap *Snapshot) error {
	id, err := s.rdb.Incr(ctx, s.snapshotKey(snap.Key)+":id").Result()
	if err != nil {
		return fmt.Errorf("allocate snapshot id: %w", err)
	}
	savedAt := snap.SavedAt
	if savedAt.IsZero() {
		savedAt = time.Now()
	}
	b, err := json.Marshal(redisSnapshot{ID: id, SavedAt: savedAt.UTC().UnixNano(), Data: snap.Data})
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	if err := s.rdb.LPush(ctx, s.snapshotKey(snap.Key), b).Err(); err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	snap.ID = id
	return nil
}

func (s *RedisStore) Latest(ctx context.Context, key string) (*Snapshot, error) {
	raw, err := s.rdb.LIndex(ctx, s.snapshotKey(key), 0).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("query latest snapshot: %w", err)
	}
	var rs redisSnapshot
	if err := json.Unmarshal(raw, &rs); err != nil {
		return nil, fmt.Errorf("unmarshal snapshot: %w", err)
	}
	return &Snapshot{
		ID:      rs.ID,
		Key:     key,
		SavedAt: time.Unix(0, rs.SavedAt).UTC(),
		Data:    rs.Data,
	}, nil
}

func (s *RedisStore) Prune(ctx context.Context, key string, keep int) error {
	if keep <= 0 {
		return s.rdb.Del(ctx, s.snapshotKey(key)).Err()
	}
	if err := s.rdb.LTrim(ctx, s.snapshotKey(key), 0, int64(keep-1)).Err(); err != nil {
		return fmt.Errorf("prune snapshots: %w", err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, key string) error {
	if err := s.rdb.Del(ctx, s.snapshotKey(key), s.snapshotKey(key)+":id").Err(); err != nil {
		return fmt.Errorf("delete snapshots: %w", err)
	}
	return nil
}

func (s *RedisStore) eventsKey() string {
	return s.prefix + ":events"
}

func (s *RedisStore) Append(ctx context.Context, ev Event) error {
	seq, err := s.rdb.Incr(ctx, s.eventsKey()+":seq").Result()
	if err != nil {
		return fmt.Errorf("next sequence: %w", err)
	}
	ev.Sequence = seq
	if ev.Timestamp.IsZero() {
		ev.Timestamp = time.Now().UTC()
	}
	b, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	if err := s.rdb.RPush(ctx, s.eventsKey(), b).Err(); err != nil {
		return fmt.Errorf("save %s event: %w", ev.Action, err)
	}
	return nil
}

func (s *RedisStore) List(ctx context.Context, sessionID string, opts QueryOpts) ([]Event, error) {
	raws, err := s.rdb.LRange(ctx, s.eventsKey(), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	var out []Event
	for _, raw := range raws {
		var ev Event
		if err := json.Unmarshal([]byte(raw), &ev); err != nil {
			return nil, fmt.Errorf("unmarshal event: %w", err)
		}
		if sessionID != "" && ev.SessionID != sessionID {
			continue
		}
		if ev.Sequence <= opts.After {
			continue
		}
		out = append(out, ev)
		if opts.Limit > 0 && len(out) == opts.Limit {
			break
		}
	}
	return out, nil
}
