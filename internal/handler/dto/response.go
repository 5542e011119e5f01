package dto

import (
	"time"

	"github.com/mtlprog/kanban/internal/domain"
	"github.com/mtlprog/kanban/internal/service"
	"github.com/mtlprog/kanban/internal/storage"
)

// TaskResponse represents a task, epic or subtask.
type TaskResponse struct {
	ID          int        `json:"id"`
	Type        string     `json:"type"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Status      string     `json:"status"`
	EpicID      *int       `json:"epic_id,omitempty"`
	SubtaskIDs  []int      `json:"subtask_ids,omitempty"`
	StartTime   *time.Time `json:"start_time"`
	EndTime     *time.Time `json:"end_time"`
	Duration    *string    `json:"duration" example:"PT30M"`
}

// TasksListResponse represents a list of tasks.
type TasksListResponse struct {
	Tasks []TaskResponse `json:"tasks"`
	Total int            `json:"total"`
}

// StatsResponse represents the response for GET /stats.
type StatsResponse struct {
	Tasks      int            `json:"tasks"`
	Epics      int            `json:"epics"`
	Subtasks   int            `json:"subtasks"`
	ByStatus   map[string]int `json:"by_status"`
	Scheduled  int            `json:"scheduled"`
	HistoryLen int            `json:"history_len"`
}

// ToTaskResponse converts any entity to its response form.
func ToTaskResponse(e domain.Entity) TaskResponse {
	meta := e.Meta()
	w := e.Window()

	resp := TaskResponse{
		ID:          meta.ID,
		Type:        string(e.Kind()),
		Name:        meta.Name,
		Description: meta.Description,
		Status:      string(e.State()),
		StartTime:   w.Start,
		EndTime:     w.End(),
	}
	if w.Duration != nil {
		d := storage.FormatDuration(*w.Duration)
		resp.Duration = &d
	}

	switch v := e.(type) {
	case *domain.Subtask:
		epicID := v.EpicID()
		resp.EpicID = &epicID
	case *domain.Epic:
		resp.EndTime = v.EndTime()
		resp.SubtaskIDs = v.SubtaskIDs()
	}
	return resp
}

// ToTasksList converts entities to a list response.
func ToTasksList[E domain.Entity](entities []E) TasksListResponse {
	tasks := make([]TaskResponse, len(entities))
	for i, e := range entities {
		tasks[i] = ToTaskResponse(e)
	}
	return TasksListResponse{Tasks: tasks, Total: len(tasks)}
}

// ToStatsResponse converts service stats.
func ToStatsResponse(st service.Stats) StatsResponse {
	byStatus := make(map[string]int, len(st.ByStatus))
	for status, n := range st.ByStatus {
		byStatus[string(status)] = n
	}
	return StatsResponse{
		Tasks:      st.Tasks,
		Epics:      st.Epics,
		Subtasks:   st.Subtasks,
		ByStatus:   byStatus,
		Scheduled:  st.Scheduled,
		HistoryLen: st.HistoryLen,
	}
}
