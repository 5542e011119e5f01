package handler

import (
	"net/http"

	"github.com/mtlprog/kanban/internal/domain"
	"github.com/mtlprog/kanban/internal/handler/dto"
)

// handleListEpics lists epics.
// @Summary List epics
// @Tags epics
// @Produce json
// @Success 200 {object} dto.TasksListResponse
// @Router /epics [get]
func (h *Handler) handleListEpics(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, dto.ToTasksList(h.manager.Epics()))
}

// handleCreateEpic creates a new epic.
// @Summary Create a new epic
// @Description Creates an epic without subtasks. Status and time window are derived from subtasks.
// @Tags epics
// @Accept json
// @Produce json
// @Param request body dto.EpicRequest true "Epic creation request"
// @Success 201 {object} dto.TaskResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 422 {object} dto.ErrorResponse
// @Router /epics [post]
func (h *Handler) handleCreateEpic(w http.ResponseWriter, r *http.Request) {
	var req dto.EpicRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	created, err := h.manager.CreateEpic(req.ToEpic(0))
	if err != nil {
		respondDomainError(w, err)
		return
	}

	h.commit(w, r, http.StatusCreated, dto.ToTaskResponse(created))
}

// handleGetEpic retrieves an epic and records the visit in history.
// @Summary Get epic
// @Tags epics
// @Produce json
// @Param id path int true "Epic ID"
// @Success 200 {object} dto.TaskResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /epics/{id} [get]
func (h *Handler) handleGetEpic(w http.ResponseWriter, r *http.Request) {
	id, ok := extractID(w, r)
	if !ok {
		return
	}

	epic, err := h.manager.GetEpic(id)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	h.commit(w, r, http.StatusOK, dto.ToTaskResponse(epic))
}

// handleUpdateEpic renames an epic.
// @Summary Update epic
// @Description Only name and description can be changed.
// @Tags epics
// @Accept json
// @Produce json
// @Param id path int true "Epic ID"
// @Param request body dto.EpicRequest true "Epic fields"
// @Success 200 {object} dto.TaskResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 422 {object} dto.ErrorResponse
// @Router /epics/{id} [put]
func (h *Handler) handleUpdateEpic(w http.ResponseWriter, r *http.Request) {
	id, ok := extractID(w, r)
	if !ok {
		return
	}

	var req dto.EpicRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	updated, err := h.manager.UpdateEpic(req.ToEpic(id))
	if err != nil {
		respondDomainError(w, err)
		return
	}

	h.commit(w, r, http.StatusOK, dto.ToTaskResponse(updated))
}

// handleDeleteEpic deletes an epic and its subtasks.
// @Summary Delete epic
// @Tags epics
// @Param id path int true "Epic ID"
// @Success 204
// @Failure 404 {object} dto.ErrorResponse
// @Router /epics/{id} [delete]
func (h *Handler) handleDeleteEpic(w http.ResponseWriter, r *http.Request) {
	id, ok := extractID(w, r)
	if !ok {
		return
	}

	if !h.manager.DeleteEpic(id) {
		respondError(w, http.StatusNotFound, "TASK_NOT_FOUND", domain.ErrNotFound.Error())
		return
	}

	h.commit(w, r, http.StatusNoContent, nil)
}

// handleClearEpics deletes every epic and subtask.
// @Summary Delete all epics
// @Tags epics
// @Success 204
// @Router /epics [delete]
func (h *Handler) handleClearEpics(w http.ResponseWriter, r *http.Request) {
	h.manager.ClearEpics()
	h.commit(w, r, http.StatusNoContent, nil)
}

// handleEpicSubtasks lists the subtasks of an epic without recording a visit.
// @Summary List epic subtasks
// @Tags epics
// @Produce json
// @Param id path int true "Epic ID"
// @Success 200 {object} dto.TasksListResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /epics/{id}/subtasks [get]
func (h *Handler) handleEpicSubtasks(w http.ResponseWriter, r *http.Request) {
	id, ok := extractID(w, r)
	if !ok {
		return
	}

	subs, err := h.manager.EpicSubtasks(id)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, dto.ToTasksList(subs))
}
