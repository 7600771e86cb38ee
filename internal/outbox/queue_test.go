package outbox

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

// createTestQueue creates an in-memory SQLite queue for testing
func createTestQueue(t *testing.T) *Queue {
	t.Helper()

	queue, err := NewQueue(":memory:")
	if err != nil {
		t.Fatalf("failed to create test queue: %v", err)
	}

	t.Cleanup(func() {
		_ = queue.Close()
	})

	return queue
}

func TestNewQueue(t *testing.T) {
	t.Run("in-memory database", func(t *testing.T) {
		queue := createTestQueue(t)
		if queue.db == nil {
			t.Error("queue database is nil")
		}
	})

	t.Run("file-based database", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "outbox.db")

		queue, err := NewQueue(path)
		if err != nil {
			t.Fatalf("failed to create file-based queue: %v", err)
		}
		defer func() { _ = queue.Close() }()

		if _, err := os.Stat(path); err != nil {
			t.Errorf("database file not created: %v", err)
		}
	})
}

func TestQueue_AddAndPending(t *testing.T) {
	queue := createTestQueue(t)
	ctx := context.Background()

	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	actions := []Action{
		{Kind: KindComment, TargetID: 42, Body: "nice drop", At: 90 * time.Second, CreatedAt: base.Add(2 * time.Minute)},
		{Kind: KindFavorite, TargetID: 42, UserID: 7, CreatedAt: base},
		{Kind: KindFollow, TargetID: 9, CreatedAt: base.Add(time.Minute)},
	}
	for _, a := range actions {
		if _, err := queue.Add(ctx, a); err != nil {
			t.Fatalf("Add() error = %v", err)
		}
	}

	pending, err := queue.Pending(ctx, 0)
	if err != nil {
		t.Fatalf("Pending() error = %v", err)
	}

	want := []Action{
		{Kind: KindFavorite, TargetID: 42, UserID: 7, Status: StatusPending},
		{Kind: KindFollow, TargetID: 9, Status: StatusPending},
		{Kind: KindComment, TargetID: 42, Body: "nice drop", At: 90 * time.Second, Status: StatusPending},
	}
	ignore := cmpopts.IgnoreFields(Action{}, "ID", "CreatedAt")
	if diff := cmp.Diff(want, pending, ignore); diff != "" {
		t.Errorf("Pending() mismatch (-want +got):\n%s", diff)
	}

	if !pending[0].CreatedAt.Equal(base) {
		t.Errorf("CreatedAt = %v, want %v", pending[0].CreatedAt, base)
	}

	limited, err := queue.Pending(ctx, 2)
	if err != nil {
		t.Fatalf("Pending(2) error = %v", err)
	}
	if len(limited) != 2 {
		t.Errorf("Pending(2) returned %d actions, want 2", len(limited))
	}
}

func TestQueue_AddRejectsUnknownKind(t *testing.T) {
	queue := createTestQueue(t)

	if _, err := queue.Add(context.Background(), Action{Kind: "repost", TargetID: 1}); err == nil {
		t.Error("Add() with unknown kind succeeded, want error")
	}
}

func TestQueue_StatusTransitions(t *testing.T) {
	queue := createTestQueue(t)
	ctx := context.Background()

	done, _ := queue.Add(ctx, Action{Kind: KindFavorite, TargetID: 1, UserID: 7})
	retry, _ := queue.Add(ctx, Action{Kind: KindFollow, TargetID: 2})
	failed, _ := queue.Add(ctx, Action{Kind: KindUnfollow, TargetID: 3})

	if err := queue.MarkDone(ctx, done); err != nil {
		t.Fatalf("MarkDone() error = %v", err)
	}
	if err := queue.MarkError(ctx, retry, "timeout"); err != nil {
		t.Fatalf("MarkError() error = %v", err)
	}
	if err := queue.MarkFailed(ctx, failed, "not found"); err != nil {
		t.Fatalf("MarkFailed() error = %v", err)
	}

	pending, err := queue.Pending(ctx, 0)
	if err != nil {
		t.Fatalf("Pending() error = %v", err)
	}
	if len(pending) != 1 || pending[0].ID != retry {
		t.Fatalf("Pending() = %+v, want only action %d", pending, retry)
	}
	if pending[0].Attempts != 1 || pending[0].Error != "timeout" {
		t.Errorf("retried action = %+v, want 1 attempt with error", pending[0])
	}

	tests := []struct {
		status Status
		want   int
	}{
		{"", 3},
		{StatusPending, 1},
		{StatusDone, 1},
		{StatusFailed, 1},
	}
	for _, tt := range tests {
		got, err := queue.Count(ctx, tt.status)
		if err != nil {
			t.Fatalf("Count(%q) error = %v", tt.status, err)
		}
		if got != tt.want {
			t.Errorf("Count(%q) = %d, want %d", tt.status, got, tt.want)
		}
	}

	if err := queue.MarkDone(ctx, 999); err == nil {
		t.Error("MarkDone() on missing id succeeded, want error")
	}
}

func TestQueue_All(t *testing.T) {
	queue := createTestQueue(t)
	ctx := context.Background()

	first, _ := queue.Add(ctx, Action{Kind: KindFollow, TargetID: 1})
	second, _ := queue.Add(ctx, Action{Kind: KindFollow, TargetID: 2})
	_ = queue.MarkDone(ctx, first)

	all, err := queue.All(ctx)
	if err != nil {
		t.Fatalf("All() error = %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("All() returned %d actions, want 2", len(all))
	}
	if all[0].ID != second || all[1].ID != first {
		t.Errorf("All() order = [%d %d], want [%d %d]", all[0].ID, all[1].ID, second, first)
	}
}

func TestQueue_Cleanup(t *testing.T) {
	queue := createTestQueue(t)
	ctx := context.Background()

	now := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)
	old := now.Add(-48 * time.Hour)
	queue.now = func() time.Time { return old }

	oldDone, _ := queue.Add(ctx, Action{Kind: KindFollow, TargetID: 1})
	oldFailed, _ := queue.Add(ctx, Action{Kind: KindFollow, TargetID: 2})
	_, _ = queue.Add(ctx, Action{Kind: KindFollow, TargetID: 3})
	_ = queue.MarkDone(ctx, oldDone)
	_ = queue.MarkFailed(ctx, oldFailed, "gone")

	queue.now = func() time.Time { return now }
	recent, _ := queue.Add(ctx, Action{Kind: KindFollow, TargetID: 4})
	_ = queue.MarkDone(ctx, recent)

	deleted, err := queue.Cleanup(ctx, 24*time.Hour)
	if err != nil {
		t.Fatalf("Cleanup() error = %v", err)
	}
	if deleted != 2 {
		t.Errorf("Cleanup() deleted %d, want 2", deleted)
	}

	count, _ := queue.Count(ctx, "")
	if count != 2 {
		t.Errorf("Count() after cleanup = %d, want 2", count)
	}
}

func TestQueue_CleanupUsesFinishTime(t *testing.T) {
	queue := createTestQueue(t)
	ctx := context.Background()

	now := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)
	queue.now = func() time.Time { return now }

	// Queued a month ago and only delivered now.
	id, _ := queue.Add(ctx, Action{Kind: KindFavorite, TargetID: 1, UserID: 7, CreatedAt: now.Add(-30 * 24 * time.Hour)})
	if err := queue.MarkDone(ctx, id); err != nil {
		t.Fatalf("MarkDone() error = %v", err)
	}

	all, err := queue.All(ctx)
	if err != nil {
		t.Fatalf("All() error = %v", err)
	}
	if len(all) != 1 || !all[0].FinishedAt.Equal(now) {
		t.Fatalf("All() = %+v, want one action finished at %v", all, now)
	}

	deleted, err := queue.Cleanup(ctx, 24*time.Hour)
	if err != nil {
		t.Fatalf("Cleanup() error = %v", err)
	}
	if deleted != 0 {
		t.Errorf("Cleanup() deleted %d, want 0", deleted)
	}
	if count, _ := queue.Count(ctx, StatusDone); count != 1 {
		t.Errorf("Count(done) = %d, want 1", count)
	}
}

func TestNewQueue_MigratesFinishedAt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "outbox.db")

	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	_, err = db.Exec(`
		CREATE TABLE actions (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			kind TEXT NOT NULL,
			target_id INTEGER NOT NULL,
			user_id INTEGER NOT NULL DEFAULT 0,
			body TEXT NOT NULL DEFAULT '',
			at_ms INTEGER NOT NULL DEFAULT 0,
			attempts INTEGER NOT NULL DEFAULT 0,
			status TEXT NOT NULL DEFAULT 'pending',
			error TEXT,
			created_at INTEGER NOT NULL
		);
		INSERT INTO actions (kind, target_id, status, created_at) VALUES ('follow', 1, 'done', 1000);
		INSERT INTO actions (kind, target_id, status, created_at) VALUES ('follow', 2, 'pending', 2000);
	`)
	if err != nil {
		t.Fatalf("failed to create legacy schema: %v", err)
	}
	_ = db.Close()

	queue, err := NewQueue(path)
	if err != nil {
		t.Fatalf("NewQueue() on legacy database error = %v", err)
	}
	defer func() { _ = queue.Close() }()

	all, err := queue.All(context.Background())
	if err != nil {
		t.Fatalf("All() error = %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("All() returned %d actions, want 2", len(all))
	}
	for _, a := range all {
		switch a.Status {
		case StatusDone:
			if a.FinishedAt.UnixMilli() != 1000 {
				t.Errorf("done action FinishedAt = %v, want creation time", a.FinishedAt)
			}
		case StatusPending:
			if !a.FinishedAt.IsZero() {
				t.Errorf("pending action FinishedAt = %v, want zero", a.FinishedAt)
			}
		}
	}
}
