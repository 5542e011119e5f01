package storage

import (
	"fmt"
	"sort"
	"time"

	"github.com/mtlprog/kanban/internal/domain"
)

// Record is the flat persisted form of a task, epic or subtask.
// Epic status and times are written for readability and recomputed on load.
type Record struct {
	ID          int               `json:"id"`
	Type        domain.Kind       `json:"type"`
	Name        string            `json:"name"`
	Status      domain.TaskStatus `json:"status"`
	Description string            `json:"description"`
	Epic        int               `json:"epic,omitempty"`
	StartTime   *time.Time        `json:"startTime,omitempty"`
	Duration    string            `json:"duration,omitempty"`
}

// FromEntity flattens e.
func FromEntity(e domain.Entity) Record {
	meta := e.Meta()
	w := e.Window()

	r := Record{
		ID:          meta.ID,
		Type:        e.Kind(),
		Name:        meta.Name,
		Status:      e.State(),
		Description: meta.Description,
	}
	if w.Start != nil {
		start := *w.Start
		r.StartTime = &start
	}
	if w.Duration != nil {
		r.Duration = FormatDuration(*w.Duration)
	}
	if sub, ok := e.(*domain.Subtask); ok {
		r.Epic = sub.EpicID()
	}
	return r
}

// Entity rebuilds the domain value described by r.
func (r Record) Entity() (domain.Entity, error) {
	if r.ID <= 0 {
		return nil, fmt.Errorf("%w: record has invalid id %d", ErrCorrupt, r.ID)
	}

	switch r.Type {
	case domain.KindEpic:
		epic := domain.NewEpic(r.Name, r.Description)
		epic.ID = r.ID
		return epic, nil

	case domain.KindTask:
		task := domain.NewTask(r.Name, r.Description)
		task.ID = r.ID
		if err := r.fill(task); err != nil {
			return nil, err
		}
		return task, nil

	case domain.KindSubtask:
		sub, err := domain.NewSubtaskOf(r.Epic, r.Name, r.Description)
		if err != nil {
			return nil, fmt.Errorf("%w: subtask %d: %w", ErrCorrupt, r.ID, err)
		}
		sub.ID = r.ID
		if err := r.fill(&sub.Task); err != nil {
			return nil, err
		}
		return sub, nil

	default:
		return nil, fmt.Errorf("%w: record %d has unknown type %q", ErrCorrupt, r.ID, r.Type)
	}
}

func (r Record) fill(task *domain.Task) error {
	if !r.Status.IsValid() {
		return fmt.Errorf("%w: record %d has invalid status %q", ErrCorrupt, r.ID, r.Status)
	}
	task.Status = r.Status

	if r.StartTime != nil {
		start := *r.StartTime
		task.StartTime = &start
	}
	if r.Duration != "" {
		d, err := ParseDuration(r.Duration)
		if err != nil {
			return fmt.Errorf("record %d: %w", r.ID, err)
		}
		task.Duration = &d
	}
	return nil
}

// Records flattens snap: tasks, then epics, then subtasks.
func Records(snap domain.Snapshot) []Record {
	out := make([]Record, 0, snap.Len())
	for _, t := range snap.Tasks {
		out = append(out, FromEntity(t))
	}
	for _, e := range snap.Epics {
		out = append(out, FromEntity(e))
	}
	for _, s := range snap.Subtasks {
		out = append(out, FromEntity(s))
	}
	return out
}

// Assemble rebuilds a snapshot from records in any order.
func Assemble(records []Record, history []int) (domain.Snapshot, error) {
	var snap domain.Snapshot
	for _, r := range records {
		e, err := r.Entity()
		if err != nil {
			return domain.Snapshot{}, err
		}
		switch v := e.(type) {
		case *domain.Task:
			snap.Tasks = append(snap.Tasks, v)
		case *domain.Epic:
			snap.Epics = append(snap.Epics, v)
		case *domain.Subtask:
			snap.Subtasks = append(snap.Subtasks, v)
		}
	}

	sort.Slice(snap.Tasks, func(i, j int) bool { return snap.Tasks[i].ID < snap.Tasks[j].ID })
	sort.Slice(snap.Epics, func(i, j int) bool { return snap.Epics[i].ID < snap.Epics[j].ID })
	sort.Slice(snap.Subtasks, func(i, j int) bool { return snap.Subtasks[i].ID < snap.Subtasks[j].ID })

	snap.History = append([]int(nil), history...)
	return snap, nil
}
