package handler

import (
	"net/http"

	"github.com/mtlprog/kanban/internal/handler/dto"
)

// handleListItems lists tasks, epics and subtasks together.
// @Summary List all items
// @Tags views
// @Produce json
// @Success 200 {object} dto.TasksListResponse
// @Router /items [get]
func (h *Handler) handleListItems(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, dto.ToTasksList(h.manager.All()))
}

// handleClearItems deletes every record and empties the history.
// @Summary Delete all items
// @Tags views
// @Success 204
// @Router /items [delete]
func (h *Handler) handleClearItems(w http.ResponseWriter, r *http.Request) {
	h.manager.ClearAll()
	h.commit(w, r, http.StatusNoContent, nil)
}

// handleHistory lists recently viewed items, least recent first.
// @Summary View history
// @Tags views
// @Produce json
// @Success 200 {object} dto.TasksListResponse
// @Router /history [get]
func (h *Handler) handleHistory(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, dto.ToTasksList(h.manager.History()))
}

// handlePrioritized lists tasks and subtasks by start time.
// @Summary Prioritized tasks
// @Description Tasks and subtasks ordered by start time; unscheduled items come last.
// @Tags views
// @Produce json
// @Success 200 {object} dto.TasksListResponse
// @Router /prioritized [get]
func (h *Handler) handlePrioritized(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, dto.ToTasksList(h.manager.Prioritized()))
}

// handleGetStats returns counters for the store.
// @Summary Get statistics
// @Tags views
// @Produce json
// @Success 200 {object} dto.StatsResponse
// @Router /stats [get]
func (h *Handler) handleGetStats(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, dto.ToStatsResponse(h.manager.Stats()))
}
