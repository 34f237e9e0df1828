package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/perfectstack/taskhub/pkg/httputil"
	"github.com/perfectstack/taskhub/pkg/middleware"
	"github.com/perfectstack/taskhub/pkg/observability"
)

// TaskHandlers handles task CRUD requests. Every operation is scoped to
// the authenticated user resolved by the auth middleware; task ids
// belonging to other users are indistinguishable from missing ones.
type TaskHandlers struct {
	store   Store
	logger  *observability.Logger
	metrics *observability.Metrics
}

// NewTaskHandlers creates a new task handlers instance
func NewTaskHandlers(store Store, logger *observability.Logger, metrics *observability.Metrics) *TaskHandlers {
	return &TaskHandlers{
		store:   store,
		logger:  logger,
		metrics: metrics,
	}
}

// RegisterRoutes registers task routes on the authenticated subrouter.
func (h *TaskHandlers) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/tasks", h.listTasks).Methods("GET")
	router.HandleFunc("/tasks", h.createTask).Methods("POST")
	router.HandleFunc("/tasks/{id}", h.getTask).Methods("GET")
	router.HandleFunc("/tasks/{id}", h.updateTask).Methods("PATCH")
	router.HandleFunc("/tasks/{id}", h.deleteTask).Methods("DELETE")
}

func (h *TaskHandlers) currentUserID(w http.ResponseWriter, r *http.Request) (string, bool) {
	authCtx := middleware.GetAuthContext(r)
	if authCtx == nil || authCtx.User == nil {
		httputil.WriteUnauthorized(w, "Could not validate credentials")
		return "", false
	}
	return authCtx.User.ID, true
}

// createTask handles POST /api/tasks
func (h *TaskHandlers) createTask(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.currentUserID(w, r)
	if !ok {
		return
	}

	// Title must be present but may be any string, including "".
	var req struct {
		Title       *string `json:"title"`
		Description string  `json:"description"`
		Completed   bool    `json:"completed"`
	}
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}
	if req.Title == nil {
		httputil.WriteBadRequest(w, "title is required")
		return
	}

	now := time.Now().UTC()
	task := &Task{
		ID:          uuid.NewString(),
		UserID:      userID,
		Title:       *req.Title,
		Description: req.Description,
		Completed:   req.Completed,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := h.store.CreateTask(r.Context(), task); err != nil {
		httputil.WriteInternalError(w, err)
		return
	}

	h.metrics.TasksCreatedTotal.Inc()
	observability.FromContext(r.Context(), h.logger).
		WithField("task_id", task.ID).
		Debug("created task")

	httputil.WriteCreated(w, task)
}

// listTasks handles GET /api/tasks. The response is a plain array in
// insertion order; a page query parameter switches it to the pagination
// envelope.
func (h *TaskHandlers) listTasks(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.currentUserID(w, r)
	if !ok {
		return
	}

	tasks, err := h.store.ListTasks(r.Context(), userID)
	if err != nil {
		httputil.WriteInternalError(w, err)
		return
	}
	if tasks == nil {
		tasks = []*Task{}
	}

	if r.URL.Query().Get("page") == "" {
		httputil.WriteSuccess(w, tasks)
		return
	}

	page, err := httputil.ParseQueryInt(r, "page", 1)
	if err != nil {
		httputil.WriteBadRequest(w, err.Error())
		return
	}
	pageSize, err := httputil.ParseQueryInt(r, "page_size", 10)
	if err != nil {
		httputil.WriteBadRequest(w, err.Error())
		return
	}

	httputil.WriteSuccess(w, httputil.Paginate(tasks, page, pageSize))
}

// getTask handles GET /api/tasks/{id}
func (h *TaskHandlers) getTask(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.currentUserID(w, r)
	if !ok {
		return
	}
	taskID, ok := httputil.ParsePathStringOrError(w, r, "id")
	if !ok {
		return
	}

	task, err := h.store.GetTask(r.Context(), userID, taskID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			httputil.WriteNotFoundError(w, "Task not found")
			return
		}
		httputil.WriteInternalError(w, err)
		return
	}

	httputil.WriteSuccess(w, task)
}

// updateTask handles PATCH /api/tasks/{id}. Only fields present in the
// body change; updated_at is refreshed even when nothing else did.
func (h *TaskHandlers) updateTask(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.currentUserID(w, r)
	if !ok {
		return
	}
	taskID, ok := httputil.ParsePathStringOrError(w, r, "id")
	if !ok {
		return
	}

	var req struct {
		Title       *string `json:"title"`
		Description *string `json:"description"`
		Completed   *bool   `json:"completed"`
	}
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}

	task, err := h.store.GetTask(r.Context(), userID, taskID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			httputil.WriteNotFoundError(w, "Task not found")
			return
		}
		httputil.WriteInternalError(w, err)
		return
	}

	if req.Title != nil {
		task.Title = *req.Title
	}
	if req.Description != nil {
		task.Description = *req.Description
	}
	if req.Completed != nil {
		task.Completed = *req.Completed
	}
	task.UpdatedAt = time.Now().UTC()

	if err := h.store.UpdateTask(r.Context(), task); err != nil {
		if errors.Is(err, ErrNotFound) {
			httputil.WriteNotFoundError(w, "Task not found")
			return
		}
		httputil.WriteInternalError(w, err)
		return
	}

	httputil.WriteSuccess(w, task)
}

// deleteTask handles DELETE /api/tasks/{id}
func (h *TaskHandlers) deleteTask(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.currentUserID(w, r)
	if !ok {
		return
	}
	taskID, ok := httputil.ParsePathStringOrError(w, r, "id")
	if !ok {
		return
	}

	if err := h.store.DeleteTask(r.Context(), userID, taskID); err != nil {
		if errors.Is(err, ErrNotFound) {
			httputil.WriteNotFoundError(w, "Task not found")
			return
		}
		httputil.WriteInternalError(w, err)
		return
	}

	h.metrics.TasksDeletedTotal.Inc()
	httputil.WriteNoContent(w)
}
