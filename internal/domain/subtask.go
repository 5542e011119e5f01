package domain

import "fmt"

// Subtask is a task bound to exactly one epic. The epic id is fixed at construction.
type Subtask struct {
	Task
	epicID int
}

// NewSubtask creates a NEW subtask owned by epic.
// The epic must already have a store-assigned id.
func NewSubtask(epic *Epic, name, description string) (*Subtask, error) {
	if epic == nil {
		return nil, fmt.Errorf("%w: subtask %q has no epic", ErrInvalidReference, name)
	}
	return NewSubtaskOf(epic.ID, name, description)
}

// NewSubtaskOf creates a NEW subtask owned by the epic with the given id.
func NewSubtaskOf(epicID int, name, description string) (*Subtask, error) {
	if epicID <= 0 {
		return nil, fmt.Errorf("%w: subtask %q references epic without id", ErrInvalidReference, name)
	}
	return &Subtask{
		Task:   *NewTask(name, description),
		epicID: epicID,
	}, nil
}

// EpicID returns the id of the owning epic.
func (s *Subtask) EpicID() int { return s.epicID }

// Kind returns KindSubtask.
func (s *Subtask) Kind() Kind { return KindSubtask }

// Clone returns a deep copy.
func (s *Subtask) Clone() Entity {
	return s.copySubtask()
}

func (s *Subtask) copySubtask() *Subtask {
	return &Subtask{
		Task:   *s.Task.copyTask(),
		epicID: s.epicID,
	}
}
