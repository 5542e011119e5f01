package domain

// Snapshot is a point-in-time copy of the store and its history,
// exchanged with persistence backends.
type Snapshot struct {
	Tasks    []*Task
	Epics    []*Epic
	Subtasks []*Subtask
	// History holds visited ids, least recent first.
	History []int
	// NextID is the id the next created record receives. Zero when unknown.
	NextID int
}

// Len returns the number of stored records.
func (s Snapshot) Len() int {
	return len(s.Tasks) + len(s.Epics) + len(s.Subtasks)
}
