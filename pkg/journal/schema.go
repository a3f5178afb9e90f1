package journal

// SchemaVersion is the current journal schema version.
const SchemaVersion = 1

// Schema creates the journal tables. Timestamps are Unix nanoseconds and
// durations are nanoseconds so ordering never depends on text formats.
const Schema = `
CREATE TABLE IF NOT EXISTS records (
    id TEXT PRIMARY KEY,
    run_id TEXT NOT NULL,
    formula TEXT NOT NULL,
    chart TEXT NOT NULL,
    outcome TEXT NOT NULL,
    error TEXT,
    duration_ns INTEGER NOT NULL,
    recorded_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS schema_version (
    version INTEGER PRIMARY KEY,
    applied_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_records_recorded_at ON records(recorded_at);
CREATE INDEX IF NOT EXISTS idx_records_run_id ON records(run_id);
CREATE INDEX IF NOT EXISTS idx_records_formula ON records(formula);
CREATE INDEX IF NOT EXISTS idx_records_chart ON records(chart);
`

// InsertSchemaVersion records the schema version.
const InsertSchemaVersion = `
INSERT INTO schema_version (version, applied_at)
VALUES (?, datetime('now'))
ON CONFLICT(version) DO NOTHING;
`

// GetSchemaVersion reads the newest schema version.
const GetSchemaVersion = `
SELECT version FROM schema_version ORDER BY version DESC LIMIT 1;
`

const selectColumns = `id, run_id, formula, chart, outcome, error, duration_ns, recorded_at`
