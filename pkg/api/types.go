package api

import (
	"context"
	"errors"
	"time"

	"github.com/perfectstack/taskhub/pkg/auth"
)

// Storage errors shared by every backend. ErrNotFound deliberately covers
// both "no such record" and "record owned by another user" so that task
// IDs cannot be enumerated across accounts.
var (
	ErrNotFound       = errors.New("not found")
	ErrDuplicateEmail = errors.New("email already registered")
)

// Task represents a single task record owned by a user.
type Task struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Completed   bool      `json:"completed"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// UserStore persists user identity records.
type UserStore interface {
	// CreateUser stores a new user. Returns ErrDuplicateEmail when the
	// email is already registered.
	CreateUser(ctx context.Context, user *auth.User) error
	// GetUserByEmail returns the user with the given email (exact,
	// case-sensitive match) or ErrNotFound.
	GetUserByEmail(ctx context.Context, email string) (*auth.User, error)
	// GetUserByID returns the user with the given ID or ErrNotFound.
	GetUserByID(ctx context.Context, id string) (*auth.User, error)
}

// TaskStore persists task records scoped by owning user. Every lookup
// takes the owner's user ID; a task that exists but belongs to someone
// else is indistinguishable from a missing one.
type TaskStore interface {
	CreateTask(ctx context.Context, task *Task) error
	// ListTasks returns the user's tasks in insertion order.
	ListTasks(ctx context.Context, userID string) ([]*Task, error)
	GetTask(ctx context.Context, userID, taskID string) (*Task, error)
	// UpdateTask replaces the stored record matching the task's ID and
	// UserID. Returns ErrNotFound if no such record exists.
	UpdateTask(ctx context.Context, task *Task) error
	DeleteTask(ctx context.Context, userID, taskID string) error
}

// Store is the combined persistence interface the server is wired with.
type Store interface {
	UserStore
	TaskStore

	// Ping reports whether the backend is reachable, for health checks.
	Ping(ctx context.Context) error
}

// TokenResponse is the envelope returned by register and login.
type TokenResponse struct {
	AccessToken string     `json:"access_token"`
	TokenType   string     `json:"token_type"`
	User        *auth.User `json:"user"`
}
