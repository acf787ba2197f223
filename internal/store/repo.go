package store

import (
	"context"
	"encoding/json"
	"errors"
	"time"
)

// ErrClosed is returned by repositories whose backend has been shut down.
var ErrClosed = errors.New("store closed")

// Snapshot is one serialized copy of the interview aggregate.
type Snapshot struct {
	ID      int64
	Key     string
	SavedAt time.Time
	Data    json.RawMessage
}

// SnapshotRepo persists interview state under a fixed key.
type SnapshotRepo interface {
	// Save stores a new snapshot for snap.Key.
	Save(ctx context.Context, snap *Snapshot) error

	// Latest returns the most recent snapshot for key, or nil if none exist.
	Latest(ctx context.Context, key string) (*Snapshot, error)

	// Prune deletes all but the newest keep snapshots for key.
	Prune(ctx context.Context, key string, keep int) error

	// Delete removes every snapshot for key.
	Delete(ctx context.Context, key string) error
}

// Event is one entry in the session audit trail.
type Event struct {
	Sequence  int64     `json:"sequence"`
	SessionID string    `json:"sessionId"`
	Action    string    `json:"action"`
	Detail    string    `json:"detail"`
	Timestamp time.Time `json:"timestamp"`
}

// QueryOpts narrows event queries.
type QueryOpts struct {
	Limit int   // max results (0 = unlimited)
	After int64 // sequence > After
}

// EventRepo provides append and read access to the audit trail.
type EventRepo interface {
	// Append records an event and assigns its sequence number.
	Append(ctx context.Context, ev Event) error

	// List returns events in sequence order. An empty sessionID lists all.
	List(ctx context.Context, sessionID string, opts QueryOpts) ([]Event, error)
}

// LLMRequestEventData captures a single scorer call to a language model.
type LLMRequestEventData struct {
	Provider     string  `json:"provider"`
	Model        string  `json:"model"`
	Purpose      string  `json:"purpose"`
	InputTokens  int     `json:"inputTokens"`
	OutputTokens int     `json:"outputTokens"`
	LatencyMs    int64   `json:"latencyMs"`
	CostUSD      float64 `json:"costUsd,omitempty"`
	Success      bool    `json:"success"`
	ErrorMessage string  `json:"errorMessage,omitempty"`
}

// ActionLLMRequest is the audit action for LLM calls.
const ActionLLMRequest = "llm_request"

// NewLLMRequestEvent wraps LLM call data as an audit event.
func NewLLMRequestEvent(sessionID string, data LLMRequestEventData) Event {
	detail, _ := json.Marshal(data)
	return Event{
		SessionID: sessionID,
		Action:    ActionLLMRequest,
		Detail:    string(detail),
		Timestamp: time.Now().UTC(),
	}
}
