package schema

import (
	"entgo.io/ent"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// Snapshot is one saved copy of the interview state under a storage key.
// Only the newest few rows per key are retained.
type Snapshot struct {
	ent.Schema
}

func (Snapshot) Fields() []ent.Field {
	return []ent.Field{
		field.String("key").
			NotEmpty().
			Comment("Storage key the state was saved under"),
		field.Int64("saved_at").
			Comment("unix nanoseconds, UTC"),
		field.Text("data").
			Comment("Interview state as JSON"),
	}
}

func (Snapshot) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("key"),
	}
}
