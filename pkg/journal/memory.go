package journal

import (
	"context"
	"slices"
	"sync"
)

// MemoryStorage keeps records in memory. It backs tests and dry runs.
type MemoryStorage struct {
	records map[string]*Record
	mu      sync.RWMutex
}

// NewMemoryStorage creates an empty in-memory journal.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{records: make(map[string]*Record)}
}

// Store keeps copies of the records.
func (s *MemoryStorage) Store(ctx context.Context, records ...*Record) error {
	if err := ctx.Err(); err != nil {
		return NewStorageError("memory", "store", err)
	}
	prepare(records)

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range records {
		c := *r
		s.records[r.ID] = &c
	}
	return nil
}

// Query returns copies of the matching records.
func (s *MemoryStorage) Query(ctx context.Context, q *Query) ([]*Record, error) {
	if q == nil {
		q = &Query{}
	}
	matched := s.match(q)

	slices.SortFunc(matched, func(a, b *Record) int {
		c := a.RecordedAt.Compare(b.RecordedAt)
		if c == 0 {
			c = compareStrings(a.ID, b.ID)
		}
		if !q.Oldest {
			c = -c
		}
		return c
	})
	if limit := q.limit(); limit > 0 && len(matched) > limit {
		matched = matched[:limit]
	}

	out := make([]*Record, len(matched))
	for i, r := range matched {
		c := *r
		out[i] = &c
	}
	return out, nil
}

// Count returns the number of matching records.
func (s *MemoryStorage) Count(ctx context.Context, q *Query) (int64, error) {
	if q == nil {
		q = &Query{}
	}
	return int64(len(s.match(q))), nil
}

// Delete removes matching records.
func (s *MemoryStorage) Delete(ctx context.Context, q *Query) (int64, error) {
	if q == nil {
		q = &Query{}
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	var n int64
	for id, r := range s.records {
		if matches(r, q) {
			delete(s.records, id)
			n++
		}
	}
	return n, nil
}

// Close drops all records.
func (s *MemoryStorage) Close() error {
	s.mu.Lock()
	s.records = make(map[string]*Record)
	s.mu.Unlock()
	return nil
}

func (s *MemoryStorage) match(q *Query) []*Record {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*Record
	for _, r := range s.records {
		if matches(r, q) {
			out = append(out, r)
		}
	}
	return out
}

func matches(r *Record, q *Query) bool {
	switch {
	case q.RunID != "" && r.RunID != q.RunID:
		return false
	case q.Formula != "" && r.Formula != q.Formula:
		return false
	case q.Chart != "" && r.Chart != q.Chart:
		return false
	case q.Outcome != "" && r.Outcome != q.Outcome:
		return false
	case q.Since != nil && r.RecordedAt.Before(*q.Since):
		return false
	case q.Until != nil && r.RecordedAt.After(*q.Until):
		return false
	case q.IDs != nil && !slices.Contains(q.IDs, r.ID):
		return false
	}
	return true
}

func compareStrings(a, b string) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}
