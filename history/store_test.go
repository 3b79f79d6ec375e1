package history

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"

	"drum-practice/practice"
	"drum-practice/score"
)

func openTempStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "history", "runs.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Fatalf("close store: %v", err)
		}
	})
	return store
}

func result(finished time.Time, accuracy float64, completed bool) practice.Result {
	return practice.Result{
		Result: score.Result{
			Hits:     int(accuracy / 25),
			Total:    4,
			Accuracy: accuracy,
		},
		RunID:     uuid.New(),
		Source:    "groove.mid",
		Port:      "TD-17",
		Tempo:     96,
		Started:   finished.Add(-10 * time.Second),
		Finished:  finished,
		Completed: completed,
		Performed: []score.PerformedEvent{{Time: 0, Label: score.Kick}},
	}
}

func TestRecordAndRecent(t *testing.T) {
	store := openTempStore(t)
	now := time.Date(2026, 3, 14, 19, 0, 0, 0, time.UTC)

	first := result(now, 50, false)
	second := result(now.Add(time.Minute), 100, true)
	for _, r := range []practice.Result{first, second} {
		if err := store.Record(context.Background(), r); err != nil {
			t.Fatalf("record run: %v", err)
		}
	}

	runs, err := store.Recent(context.Background(), 10)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("runs len = %d, want 2", len(runs))
	}
	if runs[0].ID != second.RunID {
		t.Fatalf("runs[0].ID = %s, want %s", runs[0].ID, second.RunID)
	}
	if !runs[0].Completed || runs[0].Accuracy != 100 || runs[0].Hits != 4 {
		t.Fatalf("runs[0] = %+v, want completed 4/4 at 100", runs[0])
	}
	if runs[1].Completed || runs[1].Accuracy != 50 {
		t.Fatalf("runs[1] = %+v, want stopped at 50", runs[1])
	}
	if !runs[1].Finished.Equal(now) {
		t.Fatalf("runs[1].Finished = %s, want %s", runs[1].Finished, now)
	}
	if runs[1].Performed != 1 || runs[1].Port != "TD-17" || runs[1].Tempo != 96 {
		t.Fatalf("runs[1] = %+v", runs[1])
	}
}

func TestRecentLimit(t *testing.T) {
	store := openTempStore(t)
	now := time.Date(2026, 3, 14, 19, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		if err := store.Record(context.Background(), result(now.Add(time.Duration(i)*time.Minute), 75, true)); err != nil {
			t.Fatalf("record run %d: %v", i, err)
		}
	}

	runs, err := store.Recent(context.Background(), 3)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(runs) != 3 {
		t.Fatalf("runs len = %d, want 3", len(runs))
	}
	if _, err := store.Recent(context.Background(), 0); err == nil {
		t.Fatal("expected error for zero limit")
	}
}

func TestRecordValidation(t *testing.T) {
	store := openTempStore(t)

	if err := store.Record(context.Background(), practice.Result{}); err == nil {
		t.Fatal("expected error for missing run id")
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := store.Record(ctx, result(time.Now(), 0, false)); err == nil {
		t.Fatal("expected error for cancelled context")
	}
}

func TestOpenRequiresPath(t *testing.T) {
	if _, err := Open("  "); err == nil {
		t.Fatal("expected error for empty path")
	}
}

func TestNilStore(t *testing.T) {
	var store *Store
	if err := store.Close(); err != nil {
		t.Fatalf("close nil store: %v", err)
	}
	if err := store.Record(context.Background(), result(time.Now(), 0, false)); err == nil {
		t.Fatal("expected error for nil store")
	}
}
