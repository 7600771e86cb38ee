// Package outbox persists write actions that could not reach SoundCloud
// so they can be replayed later.
package outbox

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// Kind identifies the write operation an action replays.
type Kind string

const (
	KindFavorite   Kind = "favorite"
	KindUnfavorite Kind = "unfavorite"
	KindFollow     Kind = "follow"
	KindUnfollow   Kind = "unfollow"
	KindComment    Kind = "comment"
)

// Valid reports whether k is a known action kind.
func (k Kind) Valid() bool {
	switch k {
	case KindFavorite, KindUnfavorite, KindFollow, KindUnfollow, KindComment:
		return true
	}
	return false
}

// Status is the lifecycle state of a queued action.
type Status string

const (
	StatusPending Status = "pending"
	StatusDone    Status = "done"
	StatusFailed  Status = "failed"
)

// Action is a write operation waiting in the outbox
type Action struct {
	ID        int64
	Kind      Kind
	TargetID  int           // Track or user the action applies to
	UserID    int           // Acting user, needed for favorites
	Body      string        // Comment text
	At        time.Duration // Comment position within the track
	Attempts  int
	Status    Status
	Error     string
	CreatedAt time.Time
	// FinishedAt is when the action was marked done or failed. Zero
	// while pending.
	FinishedAt time.Time
}

// Queue manages the outbox table in SQLite
type Queue struct {
	db  *sql.DB
	now func() time.Time
}

// NewQueue opens (or creates) the outbox database at dbPath.
// Use ":memory:" for an ephemeral queue.
func NewQueue(dbPath string) (*Queue, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// A single connection keeps in-memory databases consistent
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA busy_timeout = 10000",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA journal_mode = WAL",
		"PRAGMA temp_store = MEMORY",
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to set pragma: %w", err)
		}
	}

	schema := `
		CREATE TABLE IF NOT EXISTS actions (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			kind TEXT NOT NULL,
			target_id INTEGER NOT NULL,
			user_id INTEGER NOT NULL DEFAULT 0,
			body TEXT NOT NULL DEFAULT '',
			at_ms INTEGER NOT NULL DEFAULT 0,
			attempts INTEGER NOT NULL DEFAULT 0,
			status TEXT NOT NULL DEFAULT 'pending',
			error TEXT,
			created_at INTEGER NOT NULL,
			finished_at INTEGER
		);

		CREATE INDEX IF NOT EXISTS idx_actions_status ON actions(status, created_at);
	`

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	if err := migrateFinishedAt(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Queue{db: db, now: time.Now}, nil
}

// migrateFinishedAt adds finished_at to databases created before it
// existed. Rows finished earlier get their creation time.
func migrateFinishedAt(db *sql.DB) error {
	var n int
	err := db.QueryRow(`SELECT COUNT(*) FROM pragma_table_info('actions') WHERE name = 'finished_at'`).Scan(&n)
	if err != nil {
		return fmt.Errorf("failed to inspect schema: %w", err)
	}
	if n > 0 {
		return nil
	}

	migration := `
		ALTER TABLE actions ADD COLUMN finished_at INTEGER;
		UPDATE actions SET finished_at = created_at WHERE status != 'pending';
	`
	if _, err := db.Exec(migration); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}
	return nil
}

// Close closes the database connection
func (q *Queue) Close() error {
	if q.db != nil {
		return q.db.Close()
	}
	return nil
}

// Add stores a new pending action and returns its id
func (q *Queue) Add(ctx context.Context, a Action) (int64, error) {
	if !a.Kind.Valid() {
		return 0, fmt.Errorf("unknown action kind %q", a.Kind)
	}

	createdAt := a.CreatedAt
	if createdAt.IsZero() {
		createdAt = q.now()
	}

	result, err := q.db.ExecContext(ctx, `
		INSERT INTO actions (kind, target_id, user_id, body, at_ms, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`,
		string(a.Kind),
		a.TargetID,
		a.UserID,
		a.Body,
		a.At.Milliseconds(),
		createdAt.UnixMilli(),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert action: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get insert id: %w", err)
	}

	return id, nil
}

// MarkDone marks an action as delivered
func (q *Queue) MarkDone(ctx context.Context, id int64) error {
	return q.update(ctx, id, `
		UPDATE actions
		SET status = 'done', error = NULL, attempts = attempts + 1, finished_at = ?
		WHERE id = ?
	`, q.now().UnixMilli())
}

// MarkError records a failed attempt and leaves the action pending
func (q *Queue) MarkError(ctx context.Context, id int64, errMsg string) error {
	return q.update(ctx, id, `
		UPDATE actions
		SET error = ?, attempts = attempts + 1
		WHERE id = ?
	`, errMsg)
}

// MarkFailed records a failed attempt and stops further replays
func (q *Queue) MarkFailed(ctx context.Context, id int64, errMsg string) error {
	return q.update(ctx, id, `
		UPDATE actions
		SET status = 'failed', error = ?, attempts = attempts + 1, finished_at = ?
		WHERE id = ?
	`, errMsg, q.now().UnixMilli())
}

func (q *Queue) update(ctx context.Context, id int64, query string, args ...any) error {
	result, err := q.db.ExecContext(ctx, query, append(args, id)...)
	if err != nil {
		return fmt.Errorf("failed to update action %d: %w", id, err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("action with id %d not found", id)
	}

	return nil
}

const selectActions = `
	SELECT id, kind, target_id, user_id, body, at_ms, attempts, status, COALESCE(error, ''), created_at, finished_at
	FROM actions
`

// Pending returns pending actions, oldest first. A limit of zero or
// less returns all of them.
func (q *Queue) Pending(ctx context.Context, limit int) ([]Action, error) {
	query := selectActions + " WHERE status = 'pending' ORDER BY created_at ASC, id ASC"
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", limit)
	}
	return q.query(ctx, query)
}

// All returns every action, newest first
func (q *Queue) All(ctx context.Context) ([]Action, error) {
	return q.query(ctx, selectActions+" ORDER BY created_at DESC, id DESC")
}

func (q *Queue) query(ctx context.Context, query string) ([]Action, error) {
	rows, err := q.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query actions: %w", err)
	}
	defer rows.Close()

	var actions []Action
	for rows.Next() {
		var (
			a          Action
			kind       string
			status     string
			atMillis   int64
			createdMs  int64
			finishedMs sql.NullInt64
		)

		err := rows.Scan(
			&a.ID,
			&kind,
			&a.TargetID,
			&a.UserID,
			&a.Body,
			&atMillis,
			&a.Attempts,
			&status,
			&a.Error,
			&createdMs,
			&finishedMs,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan action: %w", err)
		}

		a.Kind = Kind(kind)
		a.Status = Status(status)
		a.At = time.Duration(atMillis) * time.Millisecond
		a.CreatedAt = time.UnixMilli(createdMs)
		if finishedMs.Valid {
			a.FinishedAt = time.UnixMilli(finishedMs.Int64)
		}

		actions = append(actions, a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating actions: %w", err)
	}

	return actions, nil
}

// Count returns the number of actions with the given status. An empty
// status counts every action.
func (q *Queue) Count(ctx context.Context, status Status) (int, error) {
	query := "SELECT COUNT(*) FROM actions"
	var args []any
	if status != "" {
		query += " WHERE status = ?"
		args = append(args, string(status))
	}

	var count int
	if err := q.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count actions: %w", err)
	}

	return count, nil
}

// Cleanup removes actions that finished more than maxAge ago. Pending
// actions are always kept.
func (q *Queue) Cleanup(ctx context.Context, maxAge time.Duration) (int64, error) {
	cutoff := q.now().Add(-maxAge).UnixMilli()

	result, err := q.db.ExecContext(ctx, `
		DELETE FROM actions
		WHERE status != 'pending'
		AND finished_at < ?
	`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to cleanup actions: %w", err)
	}

	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return deleted, nil
}
