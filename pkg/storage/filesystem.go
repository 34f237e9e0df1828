package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/perfectstack/taskhub/pkg/api"
	"github.com/perfectstack/taskhub/pkg/auth"
)

const (
	usersFile = "users.json"
	tasksFile = "tasks.json"
)

// userRecord is the persisted form of auth.User. The API type excludes
// the password hash from JSON; the storage boundary needs it, so records
// carry their own tags and are validated at load time.
type userRecord struct {
	ID             string    `json:"id"`
	Email          string    `json:"email"`
	Name           string    `json:"name"`
	HashedPassword string    `json:"hashed_password"`
	CreatedAt      time.Time `json:"created_at"`
}

func (r *userRecord) validate() error {
	if r.ID == "" {
		return fmt.Errorf("user record missing id")
	}
	if r.Email == "" {
		return fmt.Errorf("user record %s missing email", r.ID)
	}
	if r.HashedPassword == "" {
		return fmt.Errorf("user record %s missing password hash", r.ID)
	}
	return nil
}

func (r *userRecord) toUser() *auth.User {
	return &auth.User{
		ID:             r.ID,
		Email:          r.Email,
		Name:           r.Name,
		HashedPassword: r.HashedPassword,
		CreatedAt:      r.CreatedAt,
	}
}

type taskRecord struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Completed   bool      `json:"completed"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (r *taskRecord) validate() error {
	if r.ID == "" {
		return fmt.Errorf("task record missing id")
	}
	if r.UserID == "" {
		return fmt.Errorf("task record %s missing user_id", r.ID)
	}
	if r.UpdatedAt.Before(r.CreatedAt) {
		return fmt.Errorf("task record %s updated_at precedes created_at", r.ID)
	}
	return nil
}

func (r *taskRecord) toTask() *api.Task {
	return &api.Task{
		ID:          r.ID,
		UserID:      r.UserID,
		Title:       r.Title,
		Description: r.Description,
		Completed:   r.Completed,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

// FileSystemStore implements api.Store using two flat JSON files under a
// root directory. The mutex is the single writer lock required to make
// whole-file read-modify-write cycles safe under concurrent requests;
// every operation, including reads, takes it.
type FileSystemStore struct {
	mu      sync.Mutex
	rootDir string
}

// NewFileSystemStore creates a filesystem-backed store rooted at dir,
// creating the directory and empty collection files as needed. Existing
// files are loaded once to fail fast on malformed data.
func NewFileSystemStore(dir string) (*FileSystemStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}

	s := &FileSystemStore{rootDir: dir}
	for _, name := range []string{usersFile, tasksFile} {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); os.IsNotExist(err) {
			if err := writeFileAtomic(path, []byte("[]")); err != nil {
				return nil, fmt.Errorf("failed to initialize %s: %w", name, err)
			}
		}
	}

	// Validate existing contents up front rather than on first request.
	if _, err := s.loadUsers(); err != nil {
		return nil, err
	}
	if _, err := s.loadTasks(); err != nil {
		return nil, err
	}
	return s, nil
}

// writeFileAtomic writes through a temp file plus rename so a crashed
// write never leaves a truncated collection behind.
func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

func (s *FileSystemStore) loadUsers() ([]userRecord, error) {
	data, err := os.ReadFile(filepath.Join(s.rootDir, usersFile))
	if err != nil {
		return nil, fmt.Errorf("failed to read users file: %w", err)
	}
	var records []userRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("malformed users file: %w", err)
	}
	for i := range records {
		if err := records[i].validate(); err != nil {
			return nil, fmt.Errorf("malformed users file: %w", err)
		}
	}
	return records, nil
}

func (s *FileSystemStore) saveUsers(records []userRecord) error {
	data, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("failed to marshal users: %w", err)
	}
	return writeFileAtomic(filepath.Join(s.rootDir, usersFile), data)
}

func (s *FileSystemStore) loadTasks() ([]taskRecord, error) {
	data, err := os.ReadFile(filepath.Join(s.rootDir, tasksFile))
	if err != nil {
		return nil, fmt.Errorf("failed to read tasks file: %w", err)
	}
	var records []taskRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("malformed tasks file: %w", err)
	}
	for i := range records {
		if err := records[i].validate(); err != nil {
			return nil, fmt.Errorf("malformed tasks file: %w", err)
		}
	}
	return records, nil
}

func (s *FileSystemStore) saveTasks(records []taskRecord) error {
	data, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("failed to marshal tasks: %w", err)
	}
	return writeFileAtomic(filepath.Join(s.rootDir, tasksFile), data)
}

// CreateUser implements api.UserStore. The duplicate-email check and the
// append happen under the same lock, so concurrent registrations with
// the same email cannot both succeed.
func (s *FileSystemStore) CreateUser(ctx context.Context, user *auth.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.loadUsers()
	if err != nil {
		return err
	}
	for i := range records {
		if records[i].Email == user.Email {
			return api.ErrDuplicateEmail
		}
	}

	records = append(records, userRecord{
		ID:             user.ID,
		Email:          user.Email,
		Name:           user.Name,
		HashedPassword: user.HashedPassword,
		CreatedAt:      user.CreatedAt,
	})
	return s.saveUsers(records)
}

// GetUserByEmail implements api.UserStore.
func (s *FileSystemStore) GetUserByEmail(ctx context.Context, email string) (*auth.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.loadUsers()
	if err != nil {
		return nil, err
	}
	for i := range records {
		if records[i].Email == email {
			return records[i].toUser(), nil
		}
	}
	return nil, api.ErrNotFound
}

// GetUserByID implements api.UserStore.
func (s *FileSystemStore) GetUserByID(ctx context.Context, id string) (*auth.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.loadUsers()
	if err != nil {
		return nil, err
	}
	for i := range records {
		if records[i].ID == id {
			return records[i].toUser(), nil
		}
	}
	return nil, api.ErrNotFound
}

// CreateTask implements api.TaskStore. Tasks append to the end of the
// file, which is what gives ListTasks its insertion order.
func (s *FileSystemStore) CreateTask(ctx context.Context, task *api.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.loadTasks()
	if err != nil {
		return err
	}
	records = append(records, taskRecord{
		ID:          task.ID,
		UserID:      task.UserID,
		Title:       task.Title,
		Description: task.Description,
		Completed:   task.Completed,
		CreatedAt:   task.CreatedAt,
		UpdatedAt:   task.UpdatedAt,
	})
	return s.saveTasks(records)
}

// ListTasks implements api.TaskStore.
func (s *FileSystemStore) ListTasks(ctx context.Context, userID string) ([]*api.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.loadTasks()
	if err != nil {
		return nil, err
	}
	tasks := make([]*api.Task, 0)
	for i := range records {
		if records[i].UserID == userID {
			tasks = append(tasks, records[i].toTask())
		}
	}
	return tasks, nil
}

// GetTask implements api.TaskStore.
func (s *FileSystemStore) GetTask(ctx context.Context, userID, taskID string) (*api.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.loadTasks()
	if err != nil {
		return nil, err
	}
	for i := range records {
		if records[i].ID == taskID && records[i].UserID == userID {
			return records[i].toTask(), nil
		}
	}
	return nil, api.ErrNotFound
}

// UpdateTask implements api.TaskStore.
func (s *FileSystemStore) UpdateTask(ctx context.Context, task *api.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.loadTasks()
	if err != nil {
		return err
	}
	for i := range records {
		if records[i].ID == task.ID && records[i].UserID == task.UserID {
			records[i] = taskRecord{
				ID:          task.ID,
				UserID:      task.UserID,
				Title:       task.Title,
				Description: task.Description,
				Completed:   task.Completed,
				CreatedAt:   task.CreatedAt,
				UpdatedAt:   task.UpdatedAt,
			}
			return s.saveTasks(records)
		}
	}
	return api.ErrNotFound
}

// DeleteTask implements api.TaskStore.
func (s *FileSystemStore) DeleteTask(ctx context.Context, userID, taskID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.loadTasks()
	if err != nil {
		return err
	}
	for i := range records {
		if records[i].ID == taskID && records[i].UserID == userID {
			records = append(records[:i], records[i+1:]...)
			return s.saveTasks(records)
		}
	}
	return api.ErrNotFound
}

// Ping implements api.Store.
func (s *FileSystemStore) Ping(ctx context.Context) error {
	if _, err := os.Stat(s.rootDir); err != nil {
		return fmt.Errorf("storage directory unavailable: %w", err)
	}
	return nil
}
