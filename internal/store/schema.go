package store

import (
	"entgo.io/ent/dialect/sql/schema"
	"entgo.io/ent/schema/field"
)

var (
	// SnapshotsColumns holds the columns for the "snapshots" table.
	SnapshotsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt64, Increment: true},
		{Name: "key", Type: field.TypeString},
		{Name: "saved_at", Type: field.TypeInt64, Comment: "unix nanoseconds, UTC"},
		{Name: "data", Type: field.TypeString, Size: 2147483647},
	}
	// SnapshotsTable holds the schema information for the "snapshots" table.
	SnapshotsTable = &schema.Table{
		Name:       "snapshots",
		Columns:    SnapshotsColumns,
		PrimaryKey: []*schema.Column{SnapshotsColumns[0]},
		Indexes: []*schema.Index{
			{Name: "snapshot_key", Columns: []*schema.Column{SnapshotsColumns[1]}},
		},
	}

	// EventsColumns holds the columns for the "session_events" table.
	EventsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt64, Increment: true},
		{Name: "sequence", Type: field.TypeInt64, Unique: true},
		{Name: "session_id", Type: field.TypeString, Default: ""},
		{Name: "action", Type: field.TypeString},
		{Name: "detail", Type: field.TypeString, Size: 2147483647, Default: ""},
		{Name: "timestamp", Type: field.TypeInt64, Comment: "unix nanoseconds, UTC"},
	}
	// EventsTable holds the schema information for the "session_events" table.
	EventsTable = &schema.Table{
		Name:       "session_events",
		Columns:    EventsColumns,
		PrimaryKey: []*schema.Column{EventsColumns[0]},
		Indexes: []*schema.Index{
			{Name: "sessionevent_session_id", Columns: []*schema.Column{EventsColumns[2]}},
			{Name: "sessionevent_action", Columns: []*schema.Column{EventsColumns[3]}},
		},
	}

	// SequenceColumns holds the columns for the "global_sequence" table.
	SequenceColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt64},
		{Name: "next_val", Type: field.TypeInt64, Default: 1},
	}
	// SequenceTable holds the single-row event sequence counter.
	SequenceTable = &schema.Table{
		Name:       "global_sequence",
		Columns:    SequenceColumns,
		PrimaryKey: []*schema.Column{SequenceColumns[0]},
	}

	// Tables holds all the tables in the schema.
	Tables = []*schema.Table{
		SnapshotsTable,
		EventsTable,
		SequenceTable,
	}
)
