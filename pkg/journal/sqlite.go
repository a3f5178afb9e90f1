package journal

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"orrery-hq/natal/pkg/config"
)

// SQLiteConfig contains configuration for the SQLite backend.
type SQLiteConfig struct {
	// Path is the database file path. ":memory:" opens a private database.
	Path string

	// MaxOpenConns is the connection pool size.
	MaxOpenConns int

	// WALMode enables write-ahead logging.
	WALMode bool

	// BusyTimeout is how long a writer waits on a locked database.
	BusyTimeout time.Duration
}

// DefaultSQLiteConfig returns the default SQLite configuration.
func DefaultSQLiteConfig() *SQLiteConfig {
	return &SQLiteConfig{
		Path:         config.DefaultJournalPath,
		MaxOpenConns: config.DefaultJournalMaxOpenConns,
		WALMode:      true,
		BusyTimeout:  config.DefaultJournalBusyTimeout,
	}
}

// SQLiteConfigFrom converts the journal section of the configuration file.
func SQLiteConfigFrom(cfg config.JournalConfig) *SQLiteConfig {
	return &SQLiteConfig{
		Path:         cfg.Path,
		MaxOpenConns: cfg.MaxOpenConns,
		WALMode:      cfg.WALMode,
		BusyTimeout:  cfg.BusyTimeout,
	}
}

// SQLiteStorage implements Storage on an embedded SQLite database.
type SQLiteStorage struct {
	db     *sql.DB
	config *SQLiteConfig
	logger *slog.Logger
}

// NewSQLiteStorage opens the database, creating its directory and schema
// when needed.
func NewSQLiteStorage(cfg *SQLiteConfig, logger *slog.Logger) (*SQLiteStorage, error) {
	if cfg == nil {
		cfg = DefaultSQLiteConfig()
	}
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "journal.sqlite")

	if cfg.Path != ":memory:" {
		if dir := filepath.Dir(cfg.Path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, NewStorageError("sqlite", "mkdir", err)
			}
		}
	}

	db, err := sql.Open("sqlite", cfg.Path)
	if err != nil {
		return nil, NewStorageError("sqlite", "open", err)
	}

	conns := cfg.MaxOpenConns
	if conns <= 0 || cfg.Path == ":memory:" {
		// every connection to :memory: is a separate database
		conns = 1
	}
	db.SetMaxOpenConns(conns)
	db.SetMaxIdleConns(conns)

	s := &SQLiteStorage{db: db, config: cfg, logger: logger}
	if err := s.initialize(); err != nil {
		db.Close()
		return nil, err
	}

	logger.Info("journal opened",
		"path", cfg.Path,
		"wal_mode", cfg.WALMode,
		"max_open_conns", conns,
	)
	return s, nil
}

func (s *SQLiteStorage) initialize() error {
	if s.config.WALMode && s.config.Path != ":memory:" {
		if _, err := s.db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
			return NewStorageError("sqlite", "enable_wal", err)
		}
	}

	if _, err := s.db.Exec(fmt.Sprintf("PRAGMA busy_timeout=%d;", s.config.BusyTimeout.Milliseconds())); err != nil {
		return NewStorageError("sqlite", "set_busy_timeout", err)
	}

	if _, err := s.db.Exec(Schema); err != nil {
		return NewStorageError("sqlite", "create_schema", err)
	}
	if _, err := s.db.Exec(InsertSchemaVersion, SchemaVersion); err != nil {
		return NewStorageError("sqlite", "insert_schema_version", err)
	}

	var version int
	err := s.db.QueryRow(GetSchemaVersion).Scan(&version)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return NewStorageError("sqlite", "get_schema_version", err)
	}
	if version != SchemaVersion {
		return NewStorageError("sqlite", "schema_version_mismatch",
			fmt.Errorf("expected schema version %d, got %d", SchemaVersion, version))
	}
	return nil
}

// Store inserts records in a single transaction.
func (s *SQLiteStorage) Store(ctx context.Context, records ...*Record) error {
	if len(records) == 0 {
		return nil
	}
	prepare(records)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return NewStorageError("sqlite", "begin", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO records (`+selectColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return NewStorageError("sqlite", "prepare", err)
	}
	defer stmt.Close()

	for _, r := range records {
		var errVal any
		if r.Error != "" {
			errVal = r.Error
		}
		if _, err := stmt.ExecContext(ctx,
			r.ID, r.RunID, r.Formula, r.Chart, r.Outcome, errVal,
			int64(r.Duration), r.RecordedAt.UnixNano(),
		); err != nil {
			return NewStorageError("sqlite", "store", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return NewStorageError("sqlite", "commit", err)
	}
	return nil
}

// Query returns matching records.
func (s *SQLiteStorage) Query(ctx context.Context, q *Query) ([]*Record, error) {
	if q == nil {
		q = &Query{}
	}
	where, args := buildWhereClause(q)

	sqlQuery := "SELECT " + selectColumns + " FROM records"
	if where != "" {
		sqlQuery += " WHERE " + where
	}
	order := "DESC"
	if q.Oldest {
		order = "ASC"
	}
	sqlQuery += fmt.Sprintf(" ORDER BY recorded_at %s, id %s", order, order)
	if limit := q.limit(); limit > 0 {
		sqlQuery += fmt.Sprintf(" LIMIT %d", limit)
	}

	rows, err := s.db.QueryContext(ctx, sqlQuery, args...)
	if err != nil {
		return nil, NewStorageError("sqlite", "query", err)
	}
	defer rows.Close()

	records := []*Record{}
	for rows.Next() {
		r, err := scanRow(rows)
		if err != nil {
			return nil, NewStorageError("sqlite", "scan", err)
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, NewStorageError("sqlite", "query", err)
	}
	return records, nil
}

// Count returns the number of matching records.
func (s *SQLiteStorage) Count(ctx context.Context, q *Query) (int64, error) {
	if q == nil {
		q = &Query{}
	}
	where, args := buildWhereClause(q)
	sqlQuery := "SELECT COUNT(*) FROM records"
	if where != "" {
		sqlQuery += " WHERE " + where
	}

	var count int64
	if err := s.db.QueryRowContext(ctx, sqlQuery, args...).Scan(&count); err != nil {
		return 0, NewStorageError("sqlite", "count", err)
	}
	return count, nil
}

// Delete removes matching records.
func (s *SQLiteStorage) Delete(ctx context.Context, q *Query) (int64, error) {
	if q == nil {
		q = &Query{}
	}
	where, args := buildWhereClause(q)
	sqlQuery := "DELETE FROM records"
	if where != "" {
		sqlQuery += " WHERE " + where
	}

	result, err := s.db.ExecContext(ctx, sqlQuery, args...)
	if err != nil {
		return 0, NewStorageError("sqlite", "delete", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, NewStorageError("sqlite", "delete", err)
	}
	return n, nil
}

// Close closes the database.
func (s *SQLiteStorage) Close() error {
	if err := s.db.Close(); err != nil {
		return NewStorageError("sqlite", "close", err)
	}
	s.logger.Debug("journal closed")
	return nil
}

// buildWhereClause returns the WHERE condition without the keyword, and its arguments.
func buildWhereClause(q *Query) (string, []any) {
	var conditions []string
	var args []any

	add := func(cond string, arg any) {
		conditions = append(conditions, cond)
		args = append(args, arg)
	}

	if q.RunID != "" {
		add("run_id = ?", q.RunID)
	}
	if q.Formula != "" {
		add("formula = ?", q.Formula)
	}
	if q.Chart != "" {
		add("chart = ?", q.Chart)
	}
	if q.Outcome != "" {
		add("outcome = ?", q.Outcome)
	}
	if q.Since != nil {
		add("recorded_at >= ?", q.Since.UnixNano())
	}
	if q.Until != nil {
		add("recorded_at <= ?", q.Until.UnixNano())
	}
	if q.IDs != nil {
		if len(q.IDs) == 0 {
			conditions = append(conditions, "0")
		} else {
			placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(q.IDs)), ", ")
			conditions = append(conditions, "id IN ("+placeholders+")")
			for _, id := range q.IDs {
				args = append(args, id)
			}
		}
	}

	return strings.Join(conditions, " AND "), args
}

func scanRow(rows *sql.Rows) (*Record, error) {
	var r Record
	var errVal sql.NullString
	var durationNs, recordedAt int64

	if err := rows.Scan(&r.ID, &r.RunID, &r.Formula, &r.Chart, &r.Outcome, &errVal, &durationNs, &recordedAt); err != nil {
		return nil, err
	}
	if errVal.Valid {
		r.Error = errVal.String
	}
	r.Duration = time.Duration(durationNs)
	r.RecordedAt = time.Unix(0, recordedAt).UTC()
	return &r, nil
}
