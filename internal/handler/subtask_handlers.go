package handler

import (
	"net/http"

	"github.com/mtlprog/kanban/internal/domain"
	"github.com/mtlprog/kanban/internal/handler/dto"
)

// handleListSubtasks lists subtasks.
// @Summary List subtasks
// @Tags subtasks
// @Produce json
// @Success 200 {object} dto.TasksListResponse
// @Router /subtasks [get]
func (h *Handler) handleListSubtasks(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, dto.ToTasksList(h.manager.Subtasks()))
}

// handleCreateSubtask creates a new subtask of an existing epic.
// @Summary Create a new subtask
// @Tags subtasks
// @Accept json
// @Produce json
// @Param request body dto.SubtaskRequest true "Subtask creation request"
// @Success 201 {object} dto.TaskResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse
// @Failure 422 {object} dto.ErrorResponse
// @Router /subtasks [post]
func (h *Handler) handleCreateSubtask(w http.ResponseWriter, r *http.Request) {
	var req dto.SubtaskRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	sub, err := req.ToSubtask(0)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	created, err := h.manager.CreateSubtask(sub)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	h.commit(w, r, http.StatusCreated, dto.ToTaskResponse(created))
}

// handleGetSubtask retrieves a subtask and records the visit in history.
// @Summary Get subtask
// @Tags subtasks
// @Produce json
// @Param id path int true "Subtask ID"
// @Success 200 {object} dto.TaskResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /subtasks/{id} [get]
func (h *Handler) handleGetSubtask(w http.ResponseWriter, r *http.Request) {
	id, ok := extractID(w, r)
	if !ok {
		return
	}

	sub, err := h.manager.GetSubtask(id)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	h.commit(w, r, http.StatusOK, dto.ToTaskResponse(sub))
}

// handleUpdateSubtask replaces a subtask. The epic cannot be changed.
// @Summary Update subtask
// @Tags subtasks
// @Accept json
// @Produce json
// @Param id path int true "Subtask ID"
// @Param request body dto.SubtaskRequest true "Subtask fields"
// @Success 200 {object} dto.TaskResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse
// @Failure 422 {object} dto.ErrorResponse
// @Router /subtasks/{id} [put]
func (h *Handler) handleUpdateSubtask(w http.ResponseWriter, r *http.Request) {
	id, ok := extractID(w, r)
	if !ok {
		return
	}

	var req dto.SubtaskRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	sub, err := req.ToSubtask(id)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	updated, err := h.manager.UpdateSubtask(sub)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	h.commit(w, r, http.StatusOK, dto.ToTaskResponse(updated))
}

// handleDeleteSubtask deletes a subtask.
// @Summary Delete subtask
// @Tags subtasks
// @Param id path int true "Subtask ID"
// @Success 204
// @Failure 404 {object} dto.ErrorResponse
// @Router /subtasks/{id} [delete]
func (h *Handler) handleDeleteSubtask(w http.ResponseWriter, r *http.Request) {
	id, ok := extractID(w, r)
	if !ok {
		return
	}

	if !h.manager.DeleteSubtask(id) {
		respondError(w, http.StatusNotFound, "TASK_NOT_FOUND", domain.ErrNotFound.Error())
		return
	}

	h.commit(w, r, http.StatusNoContent, nil)
}

// handleClearSubtasks deletes every subtask.
// @Summary Delete all subtasks
// @Tags subtasks
// @Success 204
// @Router /subtasks [delete]
func (h *Handler) handleClearSubtasks(w http.ResponseWriter, r *http.Request) {
	h.manager.ClearSubtasks()
	h.commit(w, r, http.StatusNoContent, nil)
}
