package audit

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// StoreConfig contains configuration for the SQLite audit store.
type StoreConfig struct {
	// Path is the database file path.
	Path string

	// MaxOpenConns is the maximum number of open connections.
	// Default: 5
	MaxOpenConns int

	// WALMode enables Write-Ahead Logging for better concurrency.
	// Default: true
	WALMode bool

	// BusyTimeout is the duration to wait when the database is locked.
	// Default: 5 seconds
	BusyTimeout time.Duration
}

// DefaultStoreConfig returns the default audit store configuration.
func DefaultStoreConfig() *StoreConfig {
	return &StoreConfig{
		Path:         "archive_audit.db",
		MaxOpenConns: 5,
		WALMode:      true,
		BusyTimeout:  5 * time.Second,
	}
}

// Store persists archive attempts in SQLite.
type Store struct {
	db     *sql.DB
	config *StoreConfig
	logger *slog.Logger
}

// NewStore opens (creating if necessary) the audit database at the
// configured path and verifies its schema.
func NewStore(config *StoreConfig) (*Store, error) {
	if config == nil {
		config = DefaultStoreConfig()
	}

	logger := slog.Default().With("component", "audit.store")

	db, err := sql.Open("sqlite3", config.Path)
	if err != nil {
		return nil, newStorageError("open", err)
	}
	db.SetMaxOpenConns(config.MaxOpenConns)

	s := &Store{
		db:     db,
		config: config,
		logger: logger,
	}
	if err := s.initialize(); err != nil {
		db.Close()
		return nil, err
	}

	logger.Info("audit store opened",
		"path", config.Path,
		"wal_mode", config.WALMode,
	)

	return s, nil
}

// initialize sets up the database schema and enables WAL mode.
func (s *Store) initialize() error {
	if s.config.WALMode {
		if _, err := s.db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
			return newStorageError("enable_wal", err)
		}
	}

	busyTimeoutMs := s.config.BusyTimeout.Milliseconds()
	if _, err := s.db.Exec(fmt.Sprintf("PRAGMA busy_timeout=%d;", busyTimeoutMs)); err != nil {
		return newStorageError("set_busy_timeout", err)
	}

	if _, err := s.db.Exec(Schema); err != nil {
		return newStorageError("create_schema", err)
	}
	if _, err := s.db.Exec(InsertSchemaVersion, SchemaVersion); err != nil {
		return newStorageError("insert_schema_version", err)
	}

	var version int
	err := s.db.QueryRow(GetSchemaVersion).Scan(&version)
	if err != nil && err != sql.ErrNoRows {
		return newStorageError("get_schema_version", err)
	}
	if version != SchemaVersion {
		return newStorageError("schema_version_mismatch",
			fmt.Errorf("expected schema version %d, got %d", SchemaVersion, version))
	}

	return nil
}

// Record persists one archive attempt.
func (s *Store) Record(ctx context.Context, rec *Record) error {
	var errorVal interface{}
	if rec.Error != "" {
		errorVal = rec.Error
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO archive_audit (
			id, plan_id, scan_code, scan_name, project_code,
			outcome, error, archived_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`,
		rec.ID, rec.PlanID, rec.ScanCode, rec.ScanName, rec.ProjectCode,
		rec.Outcome, errorVal, rec.ArchivedAt,
	)
	if err != nil {
		return newStorageError("record", err)
	}
	return nil
}

// Query retrieves audit records matching the query filters, newest first.
func (s *Store) Query(ctx context.Context, query *Query) ([]*Record, error) {
	whereClause, args := buildWhereClause(query)

	sqlQuery := "SELECT id, plan_id, scan_code, scan_name, project_code, outcome, error, archived_at FROM archive_audit"
	if whereClause != "" {
		sqlQuery += " WHERE " + whereClause
	}
	sqlQuery += " ORDER BY archived_at DESC"

	limit := 100
	if query.Limit > 0 {
		limit = query.Limit
	}
	sqlQuery += fmt.Sprintf(" LIMIT %d", limit)
	if query.Offset > 0 {
		sqlQuery += fmt.Sprintf(" OFFSET %d", query.Offset)
	}

	rows, err := s.db.QueryContext(ctx, sqlQuery, args...)
	if err != nil {
		return nil, newStorageError("query", err)
	}
	defer rows.Close()

	records := []*Record{}
	for rows.Next() {
		var rec Record
		var errorVal sql.NullString
		err := rows.Scan(
			&rec.ID, &rec.PlanID, &rec.ScanCode, &rec.ScanName, &rec.ProjectCode,
			&rec.Outcome, &errorVal, &rec.ArchivedAt,
		)
		if err != nil {
			return nil, newStorageError("scan", err)
		}
		if errorVal.Valid {
			rec.Error = errorVal.String
		}
		records = append(records, &rec)
	}
	if err := rows.Err(); err != nil {
		return nil, newStorageError("query", err)
	}

	return records, nil
}

// Count returns the number of audit records matching the query filters.
func (s *Store) Count(ctx context.Context, query *Query) (int64, error) {
	whereClause, args := buildWhereClause(query)

	sqlQuery := "SELECT COUNT(*) FROM archive_audit"
	if whereClause != "" {
		sqlQuery += " WHERE " + whereClause
	}

	var count int64
	if err := s.db.QueryRowContext(ctx, sqlQuery, args...).Scan(&count); err != nil {
		return 0, newStorageError("count", err)
	}
	return count, nil
}

// Delete removes audit records matching the query filters.
// Returns the number of records deleted.
func (s *Store) Delete(ctx context.Context, query *Query) (int64, error) {
	whereClause, args := buildWhereClause(query)

	sqlQuery := "DELETE FROM archive_audit"
	if whereClause != "" {
		sqlQuery += " WHERE " + whereClause
	}

	result, err := s.db.ExecContext(ctx, sqlQuery, args...)
	if err != nil {
		return 0, newStorageError("delete", err)
	}
	count, err := result.RowsAffected()
	if err != nil {
		return 0, newStorageError("delete", err)
	}
	return count, nil
}

// Close releases the underlying database connection.
func (s *Store) Close() error {
	if err := s.db.Close(); err != nil {
		return newStorageError("close", err)
	}
	s.logger.Debug("audit store closed")
	return nil
}

// buildWhereClause builds a SQL WHERE clause from query filters.
// Returns the clause (without the WHERE keyword) and its arguments.
func buildWhereClause(query *Query) (string, []interface{}) {
	var conditions []string
	var args []interface{}

	if query.PlanID != "" {
		conditions = append(conditions, "plan_id = ?")
		args = append(args, query.PlanID)
	}
	if query.Outcome != "" {
		conditions = append(conditions, "outcome = ?")
		args = append(args, query.Outcome)
	}
	if query.StartTime != nil {
		conditions = append(conditions, "archived_at >= ?")
		args = append(args, *query.StartTime)
	}
	if query.EndTime != nil {
		conditions = append(conditions, "archived_at <= ?")
		args = append(args, *query.EndTime)
	}

	whereClause := ""
	for i, condition := range conditions {
		if i > 0 {
			whereClause += " AND "
		}
		whereClause += condition
	}
	return whereClause, args
}
