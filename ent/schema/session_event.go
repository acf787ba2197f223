package schema

import (
	"entgo.io/ent"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// SessionEvent records one applied transition or scorer call.
type SessionEvent struct {
	ent.Schema
}

func (SessionEvent) Mixin() []ent.Mixin {
	return []ent.Mixin{EventMixin{}}
}

func (SessionEvent) Fields() []ent.Field {
	return []ent.Field{
		field.String("session_id").
			Default("").
			Comment("Session the event belongs to; empty before a session starts"),
		field.String("action").
			NotEmpty().
			Comment("Transition name or llm_request"),
		field.Text("detail").
			Default("").
			Comment("Human readable summary, or JSON for llm_request"),
	}
}

func (SessionEvent) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("session_id"),
		index.Fields("action"),
	}
}
