package handler

import (
	"net/http"

	"github.com/mtlprog/kanban/internal/domain"
	"github.com/mtlprog/kanban/internal/handler/dto"
)

// handleListTasks lists standalone tasks.
// @Summary List tasks
// @Tags tasks
// @Produce json
// @Success 200 {object} dto.TasksListResponse
// @Router /tasks [get]
func (h *Handler) handleListTasks(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, dto.ToTasksList(h.manager.Tasks()))
}

// handleCreateTask creates a new task.
// @Summary Create a new task
// @Description Creates a standalone task. A scheduled task is rejected if its window overlaps another task.
// @Tags tasks
// @Accept json
// @Produce json
// @Param request body dto.TaskRequest true "Task creation request"
// @Success 201 {object} dto.TaskResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse
// @Failure 422 {object} dto.ErrorResponse
// @Router /tasks [post]
func (h *Handler) handleCreateTask(w http.ResponseWriter, r *http.Request) {
	var req dto.TaskRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	task, err := req.ToTask(0)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	created, err := h.manager.CreateTask(task)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	h.commit(w, r, http.StatusCreated, dto.ToTaskResponse(created))
}

// handleGetTask retrieves a task and records the visit in history.
// @Summary Get task
// @Tags tasks
// @Produce json
// @Param id path int true "Task ID"
// @Success 200 {object} dto.TaskResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /tasks/{id} [get]
func (h *Handler) handleGetTask(w http.ResponseWriter, r *http.Request) {
	id, ok := extractID(w, r)
	if !ok {
		return
	}

	task, err := h.manager.GetTask(id)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	h.commit(w, r, http.StatusOK, dto.ToTaskResponse(task))
}

// handleUpdateTask replaces a task.
// @Summary Update task
// @Tags tasks
// @Accept json
// @Produce json
// @Param id path int true "Task ID"
// @Param request body dto.TaskRequest true "Task fields"
// @Success 200 {object} dto.TaskResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse
// @Failure 422 {object} dto.ErrorResponse
// @Router /tasks/{id} [put]
func (h *Handler) handleUpdateTask(w http.ResponseWriter, r *http.Request) {
	id, ok := extractID(w, r)
	if !ok {
		return
	}

	var req dto.TaskRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	task, err := req.ToTask(id)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	updated, err := h.manager.UpdateTask(task)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	h.commit(w, r, http.StatusOK, dto.ToTaskResponse(updated))
}

// handleDeleteTask deletes a task.
// @Summary Delete task
// @Tags tasks
// @Param id path int true "Task ID"
// @Success 204
// @Failure 404 {object} dto.ErrorResponse
// @Router /tasks/{id} [delete]
func (h *Handler) handleDeleteTask(w http.ResponseWriter, r *http.Request) {
	id, ok := extractID(w, r)
	if !ok {
		return
	}

	if !h.manager.DeleteTask(id) {
		respondError(w, http.StatusNotFound, "TASK_NOT_FOUND", domain.ErrNotFound.Error())
		return
	}

	h.commit(w, r, http.StatusNoContent, nil)
}

// handleClearTasks deletes every task.
// @Summary Delete all tasks
// @Tags tasks
// @Success 204
// @Router /tasks [delete]
func (h *Handler) handleClearTasks(w http.ResponseWriter, r *http.Request) {
	h.manager.ClearTasks()
	h.commit(w, r, http.StatusNoContent, nil)
}
