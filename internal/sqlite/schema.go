package sqlite

// Schema DDL for the snapshot store. Stored state is the JSON encoding of
// the record's serializable field mapping, tagged with the schema version
// it was written at.
const (
	createRecords = `CREATE TABLE IF NOT EXISTS records (
    record_id TEXT PRIMARY KEY,
    kind TEXT NOT NULL,
    version INTEGER NOT NULL,
    state TEXT NOT NULL,
    created_at TEXT NOT NULL,
    updated_at TEXT NOT NULL
);`

	createRecordsKindIndex = `CREATE INDEX IF NOT EXISTS idx_records_kind
    ON records(kind);`

	createHistory = `CREATE TABLE IF NOT EXISTS record_history (
    history_id TEXT PRIMARY KEY,
    record_id TEXT NOT NULL,
    kind TEXT NOT NULL,
    version INTEGER NOT NULL,
    state TEXT NOT NULL,
    recorded_at TEXT NOT NULL,
    FOREIGN KEY (record_id) REFERENCES records(record_id)
);`
)

// allDDL lists every statement executed on Attach.
var allDDL = []string{
	createRecords,
	createRecordsKindIndex,
	createHistory,
}
