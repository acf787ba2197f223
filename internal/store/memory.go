package store

import (
	"context"
	"sync"
	"time"
)

// Memory is a process-local SnapshotRepo and EventRepo. Nothing survives a
// restart; it backs tests and the "memory" store option.
type Memory struct {
	mu        sync.Mutex
	snapshots map[string][]Snapshot
	events    []Event
	nextID    int64
	nextSeq   int64
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{snapshots: make(map[string][]Snapshot)}
}

func (m *Memory) Save(_ context.Context, snap *Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.nextID++
	snap.ID = m.nextID
	if snap.SavedAt.IsZero() {
		snap.SavedAt = time.Now().UTC()
	}
	cp := *snap
	cp.Data = append([]byte(nil), snap.Data...)
	m.snapshots[snap.Key] = append(m.snapshots[snap.Key], cp)
	return nil
}

func (m *Memory) Latest(_ context.Context, key string) (*Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	list := m.snapshots[key]
	if len(list) == 0 {
		return nil, nil
	}
	cp := list[len(list)-1]
	cp.Data = append([]byte(nil), cp.Data...)
	return &cp, nil
}

func (m *Memory) Prune(_ context.Context, key string, keep int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	list := m.snapshots[key]
	if len(list) > keep {
		m.snapshots[key] = append([]Snapshot(nil), list[len(list)-keep:]...)
	}
	return nil
}

func (m *Memory) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.snapshots, key)
	return nil
}

// Count returns how many snapshots are held for key.
func (m *Memory) Count(key string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.snapshots[key])
}

func (m *Memory) Append(_ context.Context, ev Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.nextSeq++
	ev.Sequence = m.nextSeq
	if ev.Timestamp.IsZero() {
		ev.Timestamp = time.Now().UTC()
	}
	m.events = append(m.events, ev)
	return nil
}

func (m *Memory) List(_ context.Context, sessionID string, opts QueryOpts) ([]Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []Event
	for _, ev := range m.events {
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
