package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mattn/go-sqlite3"

	"github.com/perfectstack/taskhub/pkg/api"
	"github.com/perfectstack/taskhub/pkg/auth"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS users (
	id              TEXT PRIMARY KEY,
	email           TEXT NOT NULL UNIQUE,
	name            TEXT NOT NULL,
	hashed_password TEXT NOT NULL,
	created_at      TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS tasks (
	seq         INTEGER PRIMARY KEY AUTOINCREMENT,
	id          TEXT NOT NULL UNIQUE,
	user_id     TEXT NOT NULL REFERENCES users(id),
	title       TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	completed   INTEGER NOT NULL DEFAULT 0,
	created_at  TEXT NOT NULL,
	updated_at  TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_tasks_user_id ON tasks(user_id);
`

// SQLiteStore implements api.Store on an embedded SQLite database.
// SQLite serializes writers internally, so unlike the filesystem backend
// no application-level lock is needed.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLiteStore opens (or creates) the database at path and bootstraps
// the schema.
func OpenSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path+"?_foreign_keys=on&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize sqlite schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// NewSQLiteStore wraps an existing database handle without touching the
// schema. Used by tests that supply their own connection.
func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// Close releases the underlying database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Timestamps are stored as ISO-8601 text, matching the flat-file layout.
func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) (time.Time, error) {
	return time.Parse(time.RFC3339Nano, s)
}

func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	return false
}

// CreateUser implements api.UserStore. The UNIQUE constraint on email
// does the duplicate check transactionally.
func (s *SQLiteStore) CreateUser(ctx context.Context, user *auth.User) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (id, email, name, hashed_password, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, user.ID, user.Email, user.Name, user.HashedPassword, formatTime(user.CreatedAt))
	if err != nil {
		if isUniqueViolation(err) {
			return api.ErrDuplicateEmail
		}
		return fmt.Errorf("failed to insert user: %w", err)
	}
	return nil
}

func (s *SQLiteStore) scanUser(row *sql.Row) (*auth.User, error) {
	var user auth.User
	var createdAt string
	err := row.Scan(&user.ID, &user.Email, &user.Name, &user.HashedPassword, &createdAt)
	if err == sql.ErrNoRows {
		return nil, api.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan user: %w", err)
	}
	if user.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, fmt.Errorf("malformed user timestamp: %w", err)
	}
	return &user, nil
}

// GetUserByEmail implements api.UserStore.
func (s *SQLiteStore) GetUserByEmail(ctx context.Context, email string) (*auth.User, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, email, name, hashed_password, created_at
		FROM users WHERE email = ?
	`, email)
	return s.scanUser(row)
}

// GetUserByID implements api.UserStore.
func (s *SQLiteStore) GetUserByID(ctx context.Context, id string) (*auth.User, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, email, name, hashed_password, created_at
		FROM users WHERE id = ?
	`, id)
	return s.scanUser(row)
}

// CreateTask implements api.TaskStore.
func (s *SQLiteStore) CreateTask(ctx context.Context, task *api.Task) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO tasks (id, user_id, title, description, completed, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, task.ID, task.UserID, task.Title, task.Description, task.Completed,
		formatTime(task.CreatedAt), formatTime(task.UpdatedAt))
	if err != nil {
		return fmt.Errorf("failed to insert task: %w", err)
	}
	return nil
}

func scanTask(scan func(dest ...any) error) (*api.Task, error) {
	var task api.Task
	var createdAt, updatedAt string
	err := scan(&task.ID, &task.UserID, &task.Title, &task.Description,
		&task.Completed, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}
	if task.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, fmt.Errorf("malformed task timestamp: %w", err)
	}
	if task.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, fmt.Errorf("malformed task timestamp: %w", err)
	}
	return &task, nil
}

// ListTasks implements api.TaskStore. The AUTOINCREMENT sequence column
// preserves insertion order.
func (s *SQLiteStore) ListTasks(ctx context.Context, userID string) ([]*api.Task, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, title, description, completed, created_at, updated_at
		FROM tasks WHERE user_id = ? ORDER BY seq
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query tasks: %w", err)
	}
	defer rows.Close()

	tasks := make([]*api.Task, 0)
	for rows.Next() {
		task, err := scanTask(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan task: %w", err)
		}
		tasks = append(tasks, task)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate tasks: %w", err)
	}
	return tasks, nil
}

// GetTask implements api.TaskStore.
func (s *SQLiteStore) GetTask(ctx context.Context, userID, taskID string) (*api.Task, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, user_id, title, description, completed, created_at, updated_at
		FROM tasks WHERE id = ? AND user_id = ?
	`, taskID, userID)

	task, err := scanTask(row.Scan)
	if err == sql.ErrNoRows {
		return nil, api.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan task: %w", err)
	}
	return task, nil
}

// UpdateTask implements api.TaskStore.
func (s *SQLiteStore) UpdateTask(ctx context.Context, task *api.Task) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE tasks SET title = ?, description = ?, completed = ?, updated_at = ?
		WHERE id = ? AND user_id = ?
	`, task.Title, task.Description, task.Completed, formatTime(task.UpdatedAt),
		task.ID, task.UserID)
	if err != nil {
		return fmt.Errorf("failed to update task: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if affected == 0 {
		return api.ErrNotFound
	}
	return nil
}

// DeleteTask implements api.TaskStore.
func (s *SQLiteStore) DeleteTask(ctx context.Context, userID, taskID string) error {
	res, err := s.db.ExecContext(ctx, `
		DELETE FROM tasks WHERE id = ? AND user_id = ?
	`, taskID, userID)
	if err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}
	if affected == 0 {
		return api.ErrNotFound
	}
	return nil
}

// Ping implements api.Store.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}
