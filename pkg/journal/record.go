package journal

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Outcome values stored with each record.
const (
	OutcomeMatch   = "match"
	OutcomeNoMatch = "no_match"
	OutcomeError   = "error"
)

// Record is one formula evaluated against one chart.
type Record struct {
	ID         string        `json:"id"`
	RunID      string        `json:"run_id"`
	Formula    string        `json:"formula"`
	Chart      string        `json:"chart"`
	Outcome    string        `json:"outcome"`
	Error      string        `json:"error,omitempty"`
	Duration   time.Duration `json:"duration"`
	RecordedAt time.Time     `json:"recorded_at"`
}

// NewRecord returns a record with a fresh ID and the current time.
func NewRecord(runID, formula, chart, outcome string) *Record {
	return &Record{
		ID:         uuid.NewString(),
		RunID:      runID,
		Formula:    formula,
		Chart:      chart,
		Outcome:    outcome,
		RecordedAt: time.Now().UTC(),
	}
}

// Query filters journal records. Zero values match everything.
type Query struct {
	RunID   string
	Formula string
	Chart   string
	Outcome string

	// Since and Until bound RecordedAt, both inclusive.
	Since *time.Time
	Until *time.Time

	// IDs restricts the query to the given record IDs.
	IDs []string

	// Limit caps the result size. Zero uses DefaultQueryLimit; negative is unlimited.
	Limit int

	// Oldest returns the oldest records first instead of the newest.
	Oldest bool
}

// DefaultQueryLimit is the number of records returned when Query.Limit is zero.
const DefaultQueryLimit = 100

func (q *Query) limit() int {
	if q.Limit == 0 {
		return DefaultQueryLimit
	}
	return q.Limit
}

// Storage persists journal records.
type Storage interface {
	// Store persists records. Records without an ID or timestamp get one.
	Store(ctx context.Context, records ...*Record) error

	// Query returns records matching q, newest first unless q.Oldest is set.
	Query(ctx context.Context, q *Query) ([]*Record, error)

	// Count returns the number of records matching q, ignoring its limit.
	Count(ctx context.Context, q *Query) (int64, error)

	// Delete removes records matching q, ignoring its limit, and returns
	// how many were removed.
	Delete(ctx context.Context, q *Query) (int64, error)

	// Close releases the backend.
	Close() error
}

// StorageError reports a failed backend operation.
type StorageError struct {
	Backend   string // "sqlite" or "memory"
	Operation string // "store", "query", "delete" and so on
	Cause     error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("journal storage error [backend=%s, operation=%s]: %v", e.Backend, e.Operation, e.Cause)
}

func (e *StorageError) Unwrap() error {
	return e.Cause
}

// NewStorageError creates a new StorageError.
func NewStorageError(backend, operation string, cause error) *StorageError {
	return &StorageError{Backend: backend, Operation: operation, Cause: cause}
}

// RetentionError reports a failed pruning pass.
type RetentionError struct {
	RetentionDays int
	MaxRecords    int64
	Cause         error
}

func (e *RetentionError) Error() string {
	return fmt.Sprintf("journal retention failed [retention_days=%d, max_records=%d]: %v",
		e.RetentionDays, e.MaxRecords, e.Cause)
}

func (e *RetentionError) Unwrap() error {
	return e.Cause
}

func prepare(records []*Record) {
	now := time.Now().UTC()
	for _, r := range records {
		if r.ID == "" {
			r.ID = uuid.NewString()
		}
		if r.RecordedAt.IsZero() {
			r.RecordedAt = now
		}
	}
}
