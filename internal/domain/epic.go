package domain

import (
	"slices"
	"time"
)

// Epic groups subtasks. Its status and time window are derived from those
// subtasks by RollUp and cannot be set directly.
type Epic struct {
	Base
	status     TaskStatus
	startTime  *time.Time
	endTime    *time.Time
	duration   *time.Duration
	subtaskIDs []int
}

// NewEpic creates an epic with no subtasks.
func NewEpic(name, description string) *Epic {
	return &Epic{
		Base:   Base{Name: name, Description: description},
		status: TaskStatusNew,
	}
}

// Kind returns KindEpic.
func (e *Epic) Kind() Kind { return KindEpic }

// Meta returns a copy of the shared fields.
func (e *Epic) Meta() Base { return e.Base }

// State returns the derived status.
func (e *Epic) State() TaskStatus {
	if e.status == "" {
		return TaskStatusNew
	}
	return e.status
}

// Window returns the derived start time and total duration.
func (e *Epic) Window() Window {
	return Window{Start: e.startTime, Duration: e.duration}
}

// StartTime returns the earliest subtask start.
func (e *Epic) StartTime() *time.Time { return cloneTime(e.startTime) }

// EndTime returns the latest subtask end. It is not Start+Duration: subtasks may leave gaps.
func (e *Epic) EndTime() *time.Time { return cloneTime(e.endTime) }

// Duration returns the sum of subtask durations.
func (e *Epic) Duration() *time.Duration { return cloneDuration(e.duration) }

// SubtaskIDs returns a copy of the owned subtask ids.
func (e *Epic) SubtaskIDs() []int {
	return slices.Clone(e.subtaskIDs)
}

// Clone returns a deep copy.
func (e *Epic) Clone() Entity {
	return e.copyEpic()
}

func (e *Epic) copyEpic() *Epic {
	c := *e
	c.startTime = cloneTime(e.startTime)
	c.endTime = cloneTime(e.endTime)
	c.duration = cloneDuration(e.duration)
	c.subtaskIDs = slices.Clone(e.subtaskIDs)
	return &c
}

// RollUp recomputes the derived fields of epic from scratch. Subtasks that
// belong to other epics are ignored, so callers may pass the full subtask set.
func RollUp(epic *Epic, subtasks []*Subtask) {
	epic.status = TaskStatusNew
	epic.startTime = nil
	epic.endTime = nil
	epic.duration = nil
	epic.subtaskIDs = nil

	first := true
	for _, sub := range subtasks {
		if sub == nil || sub.epicID != epic.ID {
			continue
		}

		switch {
		case first:
			epic.status = sub.Status
			first = false
		case epic.status != sub.Status:
			epic.status = TaskStatusInProgress
		}

		if sub.StartTime != nil && (epic.startTime == nil || sub.StartTime.Before(*epic.startTime)) {
			epic.startTime = cloneTime(sub.StartTime)
		}
		if end := sub.EndTime(); end != nil && (epic.endTime == nil || end.After(*epic.endTime)) {
			epic.endTime = end
		}
		if sub.Duration != nil {
			total := *sub.Duration
			if epic.duration != nil {
				total += *epic.duration
			}
			epic.duration = &total
		}

		epic.subtaskIDs = append(epic.subtaskIDs, sub.ID)
	}

	slices.Sort(epic.subtaskIDs)
}
