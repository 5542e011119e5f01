package service

import "github.com/mtlprog/kanban/internal/domain"

// Stats summarizes the store.
type Stats struct {
	Tasks      int
	Epics      int
	Subtasks   int
	ByStatus   map[domain.TaskStatus]int
	Scheduled  int
	HistoryLen int
}

// Stats counts records by kind and status. Scheduled counts tasks and subtasks with a start time.
func (m *TaskManager) Stats() Stats {
	m.mu.Lock()
	defer m.mu.Unlock()

	st := Stats{
		Tasks:      len(m.tasks),
		Epics:      len(m.epics),
		Subtasks:   len(m.subtasks),
		ByStatus:   make(map[domain.TaskStatus]int, 3),
		HistoryLen: m.history.Len(),
	}
	for _, s := range []domain.TaskStatus{domain.TaskStatusNew, domain.TaskStatusInProgress, domain.TaskStatusDone} {
		st.ByStatus[s] = 0
	}

	for _, t := range m.tasks {
		st.ByStatus[t.State()]++
		if t.Window().IsScheduled() {
			st.Scheduled++
		}
	}
	for _, e := range m.epics {
		st.ByStatus[e.State()]++
	}
	for _, s := range m.subtasks {
		st.ByStatus[s.State()]++
		if s.Window().IsScheduled() {
			st.Scheduled++
		}
	}
	return st
}
