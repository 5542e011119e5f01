package domain

import "time"

// TaskStatus represents the progress state of a task, epic or subtask.
type TaskStatus string

const (
	TaskStatusNew        TaskStatus = "NEW"
	TaskStatusInProgress TaskStatus = "IN_PROGRESS"
	TaskStatusDone       TaskStatus = "DONE"
)

// IsValid checks if the status is one of the allowed values.
func (s TaskStatus) IsValid() bool {
	switch s {
	case TaskStatusNew, TaskStatusInProgress, TaskStatusDone:
		return true
	default:
		return false
	}
}

// Kind discriminates the task variants.
type Kind string

const (
	KindTask    Kind = "TASK"
	KindEpic    Kind = "EPIC"
	KindSubtask Kind = "SUBTASK"
)

// IsValid checks if the kind is one of the known variants.
func (k Kind) IsValid() bool {
	return k == KindTask || k == KindEpic || k == KindSubtask
}

// Base holds the fields shared by every variant.
// ID is zero until the store assigns one.
type Base struct {
	ID          int
	Name        string
	Description string
}

// Window is an optional scheduled time span.
type Window struct {
	Start    *time.Time
	Duration *time.Duration
}

// End returns Start+Duration, or nil unless both are set.
func (w Window) End() *time.Time {
	if w.Start == nil || w.Duration == nil {
		return nil
	}
	end := w.Start.Add(*w.Duration)
	return &end
}

// IsScheduled reports whether the window has a start time.
func (w Window) IsScheduled() bool {
	return w.Start != nil
}

// Entity is implemented by *Task, *Epic and *Subtask.
type Entity interface {
	Kind() Kind
	Meta() Base
	State() TaskStatus
	Window() Window
	Clone() Entity
}

// Task represents a standalone unit of work.
type Task struct {
	Base
	Status    TaskStatus
	StartTime *time.Time
	Duration  *time.Duration
}

// NewTask creates a task in NEW status without a schedule.
func NewTask(name, description string) *Task {
	return &Task{
		Base:   Base{Name: name, Description: description},
		Status: TaskStatusNew,
	}
}

// Kind returns KindTask.
func (t *Task) Kind() Kind { return KindTask }

// Meta returns a copy of the shared fields.
func (t *Task) Meta() Base { return t.Base }

// State returns the task status.
func (t *Task) State() TaskStatus { return t.Status }

// Window returns the scheduled span of the task.
func (t *Task) Window() Window {
	return Window{Start: t.StartTime, Duration: t.Duration}
}

// EndTime returns the end of the scheduled span, if any.
func (t *Task) EndTime() *time.Time {
	return t.Window().End()
}

// Schedule sets the start time and duration.
func (t *Task) Schedule(start time.Time, d time.Duration) {
	t.StartTime = &start
	t.Duration = &d
}

// Clone returns a deep copy.
func (t *Task) Clone() Entity {
	return t.copyTask()
}

func (t *Task) copyTask() *Task {
	c := *t
	c.StartTime = cloneTime(t.StartTime)
	c.Duration = cloneDuration(t.Duration)
	return &c
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}

func cloneDuration(d *time.Duration) *time.Duration {
	if d == nil {
		return nil
	}
	v := *d
	return &v
}
