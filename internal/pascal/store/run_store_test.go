package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	mdwerror "github.com/msto63/pascal/foundation/core/error"
)

func newStores(t *testing.T) map[string]RunStore {
	t.Helper()

	sqlite, err := NewSQLiteRunStore(SQLiteConfig{Path: filepath.Join(t.TempDir(), "history", "runs.db")})
	if err != nil {
		t.Fatalf("NewSQLiteRunStore() error = %v", err)
	}
	t.Cleanup(func() { sqlite.Close() })

	return map[string]RunStore{
		"sqlite": sqlite,
		"memory": NewMemoryRunStore(),
	}
}

func seed(t *testing.T, s RunStore) time.Time {
	t.Helper()
	ctx := context.Background()
	base := time.Now().UTC().Add(-time.Hour).Truncate(time.Millisecond)

	runs := []*Run{
		{ID: "r1", Timestamp: base, Source: "x = 1 + 2 * 3;", Success: true, Bindings: map[string]int32{"x": 7}, Duration: 3 * time.Microsecond},
		{ID: "r2", Timestamp: base.Add(time.Minute), Source: "x=y;", ErrorKind: "UninitializedVariable", ErrorCode: "CALC_UNDEFINED_VARIABLE", ErrorMessage: `1:3: uninitialized variable "y"`},
		{ID: "r3", Timestamp: base.Add(2 * time.Minute), Source: "x=-5;y=-x;", Success: true, Bindings: map[string]int32{"x": -5, "y": 5}},
		{ID: "r4", Timestamp: base.Add(3 * time.Minute), Source: "x=1+;", ErrorKind: "MalformedConstruct", ErrorCode: "CALC_SYNTAX"},
	}
	for _, r := range runs {
		if err := s.Save(ctx, r); err != nil {
			t.Fatalf("Save(%s) error = %v", r.ID, err)
		}
	}
	return base
}

func ids(runs []*Run) []string {
	out := make([]string, len(runs))
	for i, r := range runs {
		out[i] = r.ID
	}
	return out
}

func equalIDs(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestRunStore_SaveAndGet(t *testing.T) {
	for name, s := range newStores(t) {
		t.Run(name, func(t *testing.T) {
			base := seed(t, s)
			ctx := context.Background()

			run, err := s.Get(ctx, "r3")
			if err != nil {
				t.Fatalf("Get() error = %v", err)
			}
			if !run.Success || run.Source != "x=-5;y=-x;" {
				t.Errorf("Get() = %+v", run)
			}
			if run.Bindings["x"] != -5 || run.Bindings["y"] != 5 {
				t.Errorf("Bindings = %v", run.Bindings)
			}
			if !run.Timestamp.Equal(base.Add(2 * time.Minute)) {
				t.Errorf("Timestamp = %v, want %v", run.Timestamp, base.Add(2*time.Minute))
			}

			first, _ := s.Get(ctx, "r1")
			if first.Duration != 3*time.Microsecond {
				t.Errorf("Duration = %v, want 3µs", first.Duration)
			}

			failed, _ := s.Get(ctx, "r2")
			if failed.Success || failed.ErrorKind != "UninitializedVariable" || failed.Bindings != nil {
				t.Errorf("failed run = %+v", failed)
			}
		})
	}
}

func TestRunStore_GetUnknown(t *testing.T) {
	for name, s := range newStores(t) {
		t.Run(name, func(t *testing.T) {
			_, err := s.Get(context.Background(), "missing")
			if !mdwerror.HasCode(err, mdwerror.CodeNotFound) {
				t.Errorf("Get() error = %v, want %s", err, mdwerror.CodeNotFound)
			}
		})
	}
}

func TestRunStore_SaveRequiresID(t *testing.T) {
	for name, s := range newStores(t) {
		t.Run(name, func(t *testing.T) {
			err := s.Save(context.Background(), &Run{Source: "x=1;"})
			if !mdwerror.HasCode(err, mdwerror.CodeInvalidInput) {
				t.Errorf("Save() error = %v, want %s", err, mdwerror.CodeInvalidInput)
			}
		})
	}
}

func TestRunStore_List(t *testing.T) {
	tests := []struct {
		name   string
		filter RunFilter
		want   []string
	}{
		{"all newest first", RunFilter{}, []string{"r4", "r3", "r2", "r1"}},
		{"failed only", RunFilter{Outcome: OutcomeFailed}, []string{"r4", "r2"}},
		{"succeeded only", RunFilter{Outcome: OutcomeSucceeded}, []string{"r3", "r1"}},
		{"limit", RunFilter{Limit: 2}, []string{"r4", "r3"}},
		{"limit and offset", RunFilter{Limit: 2, Offset: 1}, []string{"r3", "r2"}},
		{"offset only", RunFilter{Offset: 3}, []string{"r1"}},
		{"offset past end", RunFilter{Offset: 10}, []string{}},
	}

	for name, s := range newStores(t) {
		base := seed(t, s)
		t.Run(name, func(t *testing.T) {
			for _, tt := range tests {
				t.Run(tt.name, func(t *testing.T) {
					runs, err := s.List(context.Background(), tt.filter)
					if err != nil {
						t.Fatalf("List() error = %v", err)
					}
					if got := ids(runs); !equalIDs(got, tt.want) {
						t.Errorf("List() = %v, want %v", got, tt.want)
					}
				})
			}

			runs, _ := s.List(context.Background(), RunFilter{Since: base.Add(90 * time.Second)})
			if got := ids(runs); !equalIDs(got, []string{"r4", "r3"}) {
				t.Errorf("List(Since) = %v", got)
			}
		})
	}
}

func TestRunStore_Stats(t *testing.T) {
	for name, s := range newStores(t) {
		t.Run(name, func(t *testing.T) {
			base := seed(t, s)

			stats, err := s.Stats(context.Background())
			if err != nil {
				t.Fatalf("Stats() error = %v", err)
			}
			if stats.Total != 4 || stats.Succeeded != 2 || stats.Failed != 2 {
				t.Errorf("Stats() = %+v", stats)
			}
			if stats.ByErrorKind["MalformedConstruct"] != 1 || stats.ByErrorKind["UninitializedVariable"] != 1 {
				t.Errorf("ByErrorKind = %v", stats.ByErrorKind)
			}
			if !stats.LastRun.Equal(base.Add(3 * time.Minute)) {
				t.Errorf("LastRun = %v, want %v", stats.LastRun, base.Add(3*time.Minute))
			}
		})
	}
}

func TestSQLiteRunStore_StatsEmptyAndClosed(t *testing.T) {
	s, err := NewSQLiteRunStore(SQLiteConfig{Path: filepath.Join(t.TempDir(), "runs.db")})
	if err != nil {
		t.Fatalf("NewSQLiteRunStore() error = %v", err)
	}
	ctx := context.Background()

	stats, err := s.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats() on empty store error = %v", err)
	}
	if stats.Total != 0 || !stats.LastRun.IsZero() || len(stats.ByErrorKind) != 0 {
		t.Errorf("Stats() on empty store = %+v", stats)
	}

	if err := s.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if _, err := s.Stats(ctx); !mdwerror.HasCode(err, mdwerror.CodeDatabaseError) {
		t.Errorf("Stats() after Close error = %v, want %s", err, mdwerror.CodeDatabaseError)
	}
}

func TestRunStore_Prune(t *testing.T) {
	for name, s := range newStores(t) {
		t.Run(name, func(t *testing.T) {
			seed(t, s)
			ctx := context.Background()

			if err := s.Save(ctx, &Run{ID: "old", Timestamp: time.Now().Add(-48 * time.Hour), Source: "x=0;", Success: true}); err != nil {
				t.Fatalf("Save() error = %v", err)
			}

			deleted, err := s.Prune(ctx, 24*time.Hour)
			if err != nil {
				t.Fatalf("Prune() error = %v", err)
			}
			if deleted != 1 {
				t.Errorf("Prune() deleted %d, want 1", deleted)
			}
			if _, err := s.Get(ctx, "old"); !mdwerror.HasCode(err, mdwerror.CodeNotFound) {
				t.Errorf("pruned run still present: %v", err)
			}
			if err := s.Ping(ctx); err != nil {
				t.Errorf("Ping() error = %v", err)
			}
		})
	}
}
