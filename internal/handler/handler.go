package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"sync"

	httpSwagger "github.com/swaggo/http-swagger"

	_ "github.com/mtlprog/kanban/docs" // Import generated docs
	"github.com/mtlprog/kanban/internal/handler/dto"
	"github.com/mtlprog/kanban/internal/middleware"
	"github.com/mtlprog/kanban/internal/service"
	"github.com/mtlprog/kanban/internal/static"
	"github.com/mtlprog/kanban/internal/storage"
)

// Pinger is implemented by backends that can report their health.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Handler holds dependencies for HTTP handlers.
type Handler struct {
	manager *service.TaskManager
	backend storage.Backend
	saveMu  sync.Mutex
}

// New creates a new Handler. A nil backend keeps the store in memory only.
func New(manager *service.TaskManager, backend storage.Backend) *Handler {
	return &Handler{
		manager: manager,
		backend: backend,
	}
}

// RegisterRoutes registers all HTTP routes.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	// Health check
	mux.HandleFunc("GET /healthz", h.handleHealthz)

	// API overview
	mux.HandleFunc("GET /{$}", h.handleIndex)
	mux.HandleFunc("GET /api.md", h.handleAPIMd)

	// Swagger UI
	mux.HandleFunc("GET /swagger/", httpSwagger.Handler())

	// Combined views
	mux.HandleFunc("GET /api/v1/items", h.handleListItems)
	mux.HandleFunc("DELETE /api/v1/items", h.handleClearItems)
	mux.HandleFunc("GET /api/v1/history", h.handleHistory)
	mux.HandleFunc("GET /api/v1/prioritized", h.handlePrioritized)
	mux.HandleFunc("GET /api/v1/stats", h.handleGetStats)

	// Tasks
	mux.HandleFunc("GET /api/v1/tasks", h.handleListTasks)
	mux.HandleFunc("POST /api/v1/tasks", h.handleCreateTask)
	mux.HandleFunc("DELETE /api/v1/tasks", h.handleClearTasks)
	mux.HandleFunc("GET /api/v1/tasks/{id}", h.handleGetTask)
	mux.HandleFunc("PUT /api/v1/tasks/{id}", h.handleUpdateTask)
	mux.HandleFunc("DELETE /api/v1/tasks/{id}", h.handleDeleteTask)

	// Epics
	mux.HandleFunc("GET /api/v1/epics", h.handleListEpics)
	mux.HandleFunc("POST /api/v1/epics", h.handleCreateEpic)
	mux.HandleFunc("DELETE /api/v1/epics", h.handleClearEpics)
	mux.HandleFunc("GET /api/v1/epics/{id}", h.handleGetEpic)
	mux.HandleFunc("PUT /api/v1/epics/{id}", h.handleUpdateEpic)
	mux.HandleFunc("DELETE /api/v1/epics/{id}", h.handleDeleteEpic)
	mux.HandleFunc("GET /api/v1/epics/{id}/subtasks", h.handleEpicSubtasks)

	// Subtasks
	mux.HandleFunc("GET /api/v1/subtasks", h.handleListSubtasks)
	mux.HandleFunc("POST /api/v1/subtasks", h.handleCreateSubtask)
	mux.HandleFunc("DELETE /api/v1/subtasks", h.handleClearSubtasks)
	mux.HandleFunc("GET /api/v1/subtasks/{id}", h.handleGetSubtask)
	mux.HandleFunc("PUT /api/v1/subtasks/{id}", h.handleUpdateSubtask)
	mux.HandleFunc("DELETE /api/v1/subtasks/{id}", h.handleDeleteSubtask)
}

// Routes returns the registered routes wrapped with logging and panic recovery.
func (h *Handler) Routes() http.Handler {
	mux := http.NewServeMux()
	h.RegisterRoutes(mux)
	return middleware.Recover(middleware.Logging(mux))
}

// Restore loads the persisted snapshot into the task manager.
func (h *Handler) Restore(ctx context.Context) error {
	if h.backend == nil {
		return nil
	}

	snap, err := h.backend.Load(ctx)
	if err != nil {
		return fmt.Errorf("load tasks: %w", err)
	}
	if err := h.manager.Restore(snap); err != nil {
		return fmt.Errorf("restore tasks: %w", err)
	}
	return nil
}

// persist saves the current snapshot when a backend is configured.
func (h *Handler) persist(ctx context.Context) error {
	if h.backend == nil {
		return nil
	}

	h.saveMu.Lock()
	defer h.saveMu.Unlock()

	if err := h.backend.Save(ctx, h.manager.Snapshot()); err != nil {
		return fmt.Errorf("%w: %w", storage.ErrUnavailable, err)
	}
	return nil
}

// handleHealthz returns 200 OK if the storage backend is reachable.
func (h *Handler) handleHealthz(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if p, ok := h.backend.(Pinger); ok {
		if err := p.Ping(ctx); err != nil {
			slog.Error("storage health check failed", "error", err)
			http.Error(w, "storage unavailable", http.StatusServiceUnavailable)
			return
		}
	}

	w.WriteHeader(http.StatusOK)
}

// handleIndex serves the embedded landing page.
func (h *Handler) handleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(static.IndexHTML))
}

// handleAPIMd serves the embedded API overview.
func (h *Handler) handleAPIMd(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(static.APIMd))
}

// respondJSON writes a JSON response with the given status code.
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("failed to encode JSON response", "error", err)
	}
}

// respondError writes a standard error response.
func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, dto.NewErrorResponse(code, message))
}

// respondDomainError maps err and writes it.
func respondDomainError(w http.ResponseWriter, err error) {
	status, code, message := dto.MapDomainError(err)
	respondError(w, status, code, message)
}

// decodeJSON parses the request body into v.
// Returns false if invalid (error already sent to client).
func decodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return false
	}
	return true
}

// extractID extracts and validates the numeric id path parameter.
// Returns (id, true) if valid, (0, false) if invalid (error already sent to client).
func extractID(w http.ResponseWriter, r *http.Request) (int, bool) {
	raw := r.PathValue("id")
	if raw == "" {
		respondError(w, http.StatusBadRequest, "INVALID_REQUEST", "id is required")
		return 0, false
	}

	id, err := strconv.Atoi(raw)
	if err != nil || id <= 0 {
		respondError(w, http.StatusBadRequest, "INVALID_REQUEST", "id must be a positive integer")
		return 0, false
	}

	return id, true
}

// commit persists the store and writes the response. A nil body writes only the status.
func (h *Handler) commit(w http.ResponseWriter, r *http.Request, status int, body interface{}) {
	if err := h.persist(r.Context()); err != nil {
		respondDomainError(w, err)
		return
	}
	if body == nil {
		w.WriteHeader(status)
		return
	}
	respondJSON(w, status, body)
}
