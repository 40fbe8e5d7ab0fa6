package audit

// SchemaVersion is the current audit database schema version.
const SchemaVersion = 1

// Schema creates the audit tables and indexes.
const Schema = `
CREATE TABLE IF NOT EXISTS archive_audit (
	id TEXT PRIMARY KEY,
	plan_id TEXT NOT NULL,
	scan_code TEXT NOT NULL,
	scan_name TEXT NOT NULL,
	project_code TEXT NOT NULL,
	outcome TEXT NOT NULL,
	error TEXT,
	archived_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_archive_audit_plan_id ON archive_audit(plan_id);
CREATE INDEX IF NOT EXISTS idx_archive_audit_scan_code ON archive_audit(scan_code);
CREATE INDEX IF NOT EXISTS idx_archive_audit_archived_at ON archive_audit(archived_at);
CREATE INDEX IF NOT EXISTS idx_archive_audit_outcome ON archive_audit(outcome);

CREATE TABLE IF NOT EXISTS schema_version (
	version INTEGER PRIMARY KEY
);
`

// InsertSchemaVersion records the schema version, ignoring duplicates.
const InsertSchemaVersion = `INSERT OR IGNORE INTO schema_version (version) VALUES (?)`

// GetSchemaVersion reads the highest recorded schema version.
const GetSchemaVersion = `SELECT MAX(version) FROM schema_version`
