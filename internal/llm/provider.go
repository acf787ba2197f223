// Package llm talks to hosted language models on behalf of the scorer.
//
// Every backend implements Provider. NewProvider stacks the shared
// decorators on top: retry for transient failures, then request logging
// into the audit trail.
package llm

import (
	"context"
	"encoding/json"
)

// Provider generates a single structured completion.
type Provider interface {
	// Generate sends req and returns the model output. With req.Schema set,
	// Content is JSON that has already been validated against it.
	Generate(ctx context.Context, req Request) (*Response, error)

	// ModelID is the resolved model identifier.
	ModelID() string
}

// Request is one prompt.
type Request struct {
	System      string
	Messages    []Message
	Schema      *Schema
	MaxTokens   int
	Temperature float64 // zero leaves the provider default
}

// Message is one conversation turn.
type Message struct {
	Role    Role
	Content string
}

// Role is who authored a Message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Schema describes the JSON object a Request expects back. Name doubles as
// the structured-output name on providers that need one and as the cache
// key for the compiled validator.
type Schema struct {
	Name        string
	Description string
	Definition  map[string]any
}

// Response is the model output for a Request.
type Response struct {
	Content    json.RawMessage
	Usage      Usage
	Model      string
	StopReason string // "end" or "max_tokens"
}

// Usage is the token count for one call.
type Usage struct {
	InputTokens  int
	OutputTokens int
	TotalTokens  int
}
