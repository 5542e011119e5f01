package service

import (
	"sort"

	"github.com/mtlprog/kanban/internal/domain"
)

// Prioritized returns every task and subtask ordered by start time.
// Unscheduled records come last; ties are broken by id. Epics are excluded.
func (m *TaskManager) Prioritized() []domain.Entity {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]domain.Entity, 0, len(m.tasks)+len(m.subtasks))
	for _, t := range m.tasks {
		out = append(out, t.Clone())
	}
	for _, s := range m.subtasks {
		out = append(out, s.Clone())
	}

	SortByStart(out)
	return out
}

// SortByStart orders entities by start time, unscheduled last, then by id.
func SortByStart(entities []domain.Entity) {
	sort.SliceStable(entities, func(i, j int) bool {
		a, b := entities[i].Window().Start, entities[j].Window().Start
		switch {
		case a != nil && b != nil && !a.Equal(*b):
			return a.Before(*b)
		case a != nil && b == nil:
			return true
		case a == nil && b != nil:
			return false
		}
		return entities[i].Meta().ID < entities[j].Meta().ID
	})
}
