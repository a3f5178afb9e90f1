package journal

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"orrery-hq/natal/pkg/telemetry/logging"
)

// backends returns a fresh instance of every storage implementation.
func backends(t *testing.T) map[string]Storage {
	t.Helper()

	sqlite, err := NewSQLiteStorage(&SQLiteConfig{
		Path:         filepath.Join(t.TempDir(), "journal", "test.db"),
		MaxOpenConns: 2,
		WALMode:      true,
		BusyTimeout:  5 * time.Second,
	}, logging.Discard())
	if err != nil {
		t.Fatalf("Failed to create SQLite storage: %v", err)
	}
	t.Cleanup(func() { sqlite.Close() })

	return map[string]Storage{
		"sqlite": sqlite,
		"memory": NewMemoryStorage(),
	}
}

func seed(t *testing.T, s Storage, base time.Time) {
	t.Helper()

	records := []*Record{
		{RunID: "run-1", Formula: "sun-cap", Chart: "alice", Outcome: OutcomeMatch, Duration: 3 * time.Microsecond},
		{RunID: "run-1", Formula: "sun-cap", Chart: "bob", Outcome: OutcomeNoMatch},
		{RunID: "run-1", Formula: "mars-rx", Chart: "alice", Outcome: OutcomeError, Error: "entity 'Mars' not found"},
		{RunID: "run-2", Formula: "sun-cap", Chart: "alice", Outcome: OutcomeMatch},
	}
	for i, r := range records {
		r.RecordedAt = base.Add(time.Duration(i) * time.Hour)
	}
	if err := s.Store(context.Background(), records...); err != nil {
		t.Fatalf("Store() error = %v", err)
	}
}

func TestStorage_StoreAndQuery(t *testing.T) {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			seed(t, s, base)
			ctx := context.Background()

			all, err := s.Query(ctx, &Query{})
			if err != nil {
				t.Fatalf("Query() error = %v", err)
			}
			if len(all) != 4 {
				t.Fatalf("Query() returned %d records, want 4", len(all))
			}
			if all[0].RunID != "run-2" {
				t.Errorf("newest record run = %q, want run-2", all[0].RunID)
			}
			for _, r := range all {
				if r.ID == "" {
					t.Error("record stored without an ID")
				}
			}

			oldest, err := s.Query(ctx, &Query{Oldest: true, Limit: 1})
			if err != nil {
				t.Fatalf("Query() error = %v", err)
			}
			if len(oldest) != 1 || oldest[0].Chart != "alice" || oldest[0].Formula != "sun-cap" || oldest[0].RunID != "run-1" {
				t.Fatalf("oldest record = %+v", oldest)
			}
			if oldest[0].Duration != 3*time.Microsecond {
				t.Errorf("Duration = %v, want 3µs", oldest[0].Duration)
			}
			if !oldest[0].RecordedAt.Equal(base) {
				t.Errorf("RecordedAt = %v, want %v", oldest[0].RecordedAt, base)
			}

			errs, err := s.Query(ctx, &Query{Outcome: OutcomeError})
			if err != nil {
				t.Fatalf("Query() error = %v", err)
			}
			if len(errs) != 1 || errs[0].Error != "entity 'Mars' not found" {
				t.Errorf("error records = %+v", errs)
			}
		})
	}
}

func TestStorage_Filters(t *testing.T) {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	since := base.Add(time.Hour)
	until := base.Add(2 * time.Hour)

	tests := []struct {
		name  string
		query *Query
		want  int64
	}{
		{"all", &Query{}, 4},
		{"nil query", nil, 4},
		{"run", &Query{RunID: "run-1"}, 3},
		{"formula", &Query{Formula: "sun-cap"}, 3},
		{"chart", &Query{Chart: "alice"}, 3},
		{"formula and chart", &Query{Formula: "sun-cap", Chart: "alice"}, 2},
		{"outcome", &Query{Outcome: OutcomeMatch}, 2},
		{"since", &Query{Since: &since}, 3},
		{"until", &Query{Until: &until}, 3},
		{"window", &Query{Since: &since, Until: &until}, 2},
		{"empty ids", &Query{IDs: []string{}}, 0},
		{"unknown run", &Query{RunID: "run-9"}, 0},
	}

	for name, s := range backends(t) {
		seed(t, s, base)
		for _, tt := range tests {
			t.Run(name+"/"+tt.name, func(t *testing.T) {
				got, err := s.Count(context.Background(), tt.query)
				if err != nil {
					t.Fatalf("Count() error = %v", err)
				}
				if got != tt.want {
					t.Errorf("Count() = %d, want %d", got, tt.want)
				}
			})
		}
	}
}

func TestStorage_Delete(t *testing.T) {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			seed(t, s, base)
			ctx := context.Background()

			n, err := s.Delete(ctx, &Query{RunID: "run-1", Outcome: OutcomeNoMatch})
			if err != nil {
				t.Fatalf("Delete() error = %v", err)
			}
			if n != 1 {
				t.Errorf("Delete() = %d, want 1", n)
			}

			rest, _ := s.Query(ctx, &Query{Oldest: true})
			ids := []string{rest[0].ID, rest[1].ID}
			n, err = s.Delete(ctx, &Query{IDs: ids})
			if err != nil {
				t.Fatalf("Delete() error = %v", err)
			}
			if n != 2 {
				t.Errorf("Delete(IDs) = %d, want 2", n)
			}

			count, _ := s.Count(ctx, nil)
			if count != 1 {
				t.Errorf("Count() after deletes = %d, want 1", count)
			}
		})
	}
}

func TestMemoryStorage_ReturnsCopies(t *testing.T) {
	s := NewMemoryStorage()
	ctx := context.Background()
	r := NewRecord("run", "f", "c", OutcomeMatch)
	if err := s.Store(ctx, r); err != nil {
		t.Fatal(err)
	}
	r.Outcome = OutcomeError

	got, _ := s.Query(ctx, nil)
	if got[0].Outcome != OutcomeMatch {
		t.Errorf("stored record changed with caller's copy: %q", got[0].Outcome)
	}
	got[0].Chart = "changed"
	again, _ := s.Query(ctx, nil)
	if again[0].Chart != "c" {
		t.Errorf("stored record changed through query result: %q", again[0].Chart)
	}
}

func TestMemoryStorage_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := NewMemoryStorage().Store(ctx, NewRecord("run", "f", "c", OutcomeMatch))
	var serr *StorageError
	if !errors.As(err, &serr) {
		t.Fatalf("Store() error = %v, want *StorageError", err)
	}
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Store() error does not wrap context.Canceled: %v", err)
	}
}

func TestPruner_ByAge(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			old := &Record{RunID: "r", Formula: "f", Chart: "old", Outcome: OutcomeMatch, RecordedAt: now.AddDate(0, 0, -40)}
			fresh := &Record{RunID: "r", Formula: "f", Chart: "fresh", Outcome: OutcomeMatch, RecordedAt: now.AddDate(0, 0, -2)}
			if err := s.Store(ctx, old, fresh); err != nil {
				t.Fatal(err)
			}

			p := NewPruner(s, &RetentionConfig{RetentionDays: 30}, nil, logging.Discard())
			p.now = func() time.Time { return now }

			n, err := p.Prune(ctx)
			if err != nil {
				t.Fatalf("Prune() error = %v", err)
			}
			if n != 1 {
				t.Errorf("Prune() = %d, want 1", n)
			}
			left, _ := s.Query(ctx, nil)
			if len(left) != 1 || left[0].Chart != "fresh" {
				t.Errorf("remaining records = %+v", left)
			}
		})
	}
}

func TestPruner_ByCount(t *testing.T) {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			seed(t, s, base)
			ctx := context.Background()

			p := NewPruner(s, &RetentionConfig{MaxRecords: 2}, nil, logging.Discard())
			n, err := p.Prune(ctx)
			if err != nil {
				t.Fatalf("Prune() error = %v", err)
			}
			if n != 2 {
				t.Errorf("Prune() = %d, want 2", n)
			}

			left, _ := s.Query(ctx, &Query{Oldest: true})
			if len(left) != 2 {
				t.Fatalf("remaining = %d, want 2", len(left))
			}
			if !left[0].RecordedAt.Equal(base.Add(2 * time.Hour)) {
				t.Errorf("oldest kept record at %v, want %v", left[0].RecordedAt, base.Add(2*time.Hour))
			}

			n, err = p.Prune(ctx)
			if err != nil || n != 0 {
				t.Errorf("second Prune() = %d, %v; want 0, nil", n, err)
			}
		})
	}
}

func TestPruner_Disabled(t *testing.T) {
	s := NewMemoryStorage()
	seed(t, s, time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC))

	n, err := NewPruner(s, &RetentionConfig{}, nil, logging.Discard()).Prune(context.Background())
	if err != nil || n != 0 {
		t.Errorf("Prune() = %d, %v; want 0, nil", n, err)
	}
}

func TestScheduler(t *testing.T) {
	t.Run("empty schedule stays idle", func(t *testing.T) {
		sched := NewScheduler(NewPruner(NewMemoryStorage(), &RetentionConfig{}, nil, logging.Discard()))
		if err := sched.Start(context.Background()); err != nil {
			t.Fatalf("Start() error = %v", err)
		}
		if sched.IsRunning() {
			t.Error("scheduler running without a schedule")
		}
		if sched.NextRun() != nil {
			t.Error("NextRun() should be nil when idle")
		}
	})

	t.Run("invalid schedule", func(t *testing.T) {
		sched := NewScheduler(NewPruner(NewMemoryStorage(), &RetentionConfig{PruneSchedule: "every day"}, nil, logging.Discard()))
		if err := sched.Start(context.Background()); err == nil {
			t.Error("Start() accepted an invalid cron expression")
		}
	})

	t.Run("start and stop", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		sched := NewScheduler(NewPruner(NewMemoryStorage(), &RetentionConfig{PruneSchedule: "0 3 * * *", RetentionDays: 1}, nil, logging.Discard()))
		if err := sched.Start(ctx); err != nil {
			t.Fatalf("Start() error = %v", err)
		}
		if !sched.IsRunning() {
			t.Fatal("scheduler not running")
		}
		next := sched.NextRun()
		if next == nil || next.Hour() != 3 || next.Minute() != 0 {
			t.Errorf("NextRun() = %v, want 03:00", next)
		}
		sched.Stop()
		if sched.IsRunning() {
			t.Error("scheduler still running after Stop()")
		}
	})
}

func TestSQLiteStorage_Reopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.db")
	cfg := &SQLiteConfig{Path: path, MaxOpenConns: 1, BusyTimeout: time.Second}

	s, err := NewSQLiteStorage(cfg, logging.Discard())
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Store(context.Background(), NewRecord("run", "f", "c", OutcomeMatch)); err != nil {
		t.Fatal(err)
	}
	s.Close()

	s, err = NewSQLiteStorage(cfg, logging.Discard())
	if err != nil {
		t.Fatalf("reopen error = %v", err)
	}
	defer s.Close()
	n, _ := s.Count(context.Background(), nil)
	if n != 1 {
		t.Errorf("Count() after reopen = %d, want 1", n)
	}
}
