package dto

import (
	"fmt"
	"time"

	"github.com/mtlprog/kanban/internal/domain"
	"github.com/mtlprog/kanban/internal/storage"
)

// TaskRequest represents the request body for POST and PUT /tasks.
type TaskRequest struct {
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Status      string     `json:"status,omitempty"`
	StartTime   *time.Time `json:"start_time,omitempty"`
	Duration    string     `json:"duration,omitempty" example:"PT30M"`
}

// EpicRequest represents the request body for POST and PUT /epics.
type EpicRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// SubtaskRequest represents the request body for POST and PUT /subtasks.
type SubtaskRequest struct {
	TaskRequest
	EpicID int `json:"epic_id"`
}

// ToTask builds a task with the given id; id 0 leaves it for the store to assign.
func (r TaskRequest) ToTask(id int) (*domain.Task, error) {
	task := domain.NewTask(r.Name, r.Description)
	task.ID = id
	if err := r.apply(task); err != nil {
		return nil, err
	}
	return task, nil
}

// ToEpic builds an epic with the given id.
func (r EpicRequest) ToEpic(id int) *domain.Epic {
	epic := domain.NewEpic(r.Name, r.Description)
	epic.ID = id
	return epic
}

// ToSubtask builds a subtask with the given id.
func (r SubtaskRequest) ToSubtask(id int) (*domain.Subtask, error) {
	sub, err := domain.NewSubtaskOf(r.EpicID, r.Name, r.Description)
	if err != nil {
		return nil, err
	}
	sub.ID = id
	if err := r.apply(&sub.Task); err != nil {
		return nil, err
	}
	return sub, nil
}

func (r TaskRequest) apply(task *domain.Task) error {
	if r.Status != "" {
		task.Status = domain.TaskStatus(r.Status)
	}
	if r.StartTime != nil {
		start := *r.StartTime
		task.StartTime = &start
	}
	if r.Duration != "" {
		d, err := storage.ParseDuration(r.Duration)
		if err != nil {
			return fmt.Errorf("%w: duration must be ISO-8601, e.g. PT1H30M", ErrInvalidRequest)
		}
		task.Duration = &d
	}
	return nil
}
