// Package schedule prevents scheduled tasks from overlapping in time.
//
// The day is cut into fixed-width buckets aligned to the start of each hour.
// A scheduled task claims every bucket its window touches; a bucket can have
// at most one owner. Epics are never registered because their window is
// derived from their subtasks, which are registered themselves.
package schedule

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/mtlprog/kanban/internal/domain"
)

// DefaultBucketWidth is the bucket width used when none is configured.
const DefaultBucketWidth = 10 * time.Minute

// Scheduler tracks which task owns each time bucket.
// It is not safe for concurrent use; the task manager guards it.
type Scheduler struct {
	width  time.Duration
	owners map[int64]int   // bucket start (unix nanos) -> task id
	claims map[int][]int64 // task id -> claimed buckets
}

// New creates a Scheduler with the given bucket width, which must divide an hour evenly.
func New(width time.Duration) (*Scheduler, error) {
	if width <= 0 || time.Hour%width != 0 {
		return nil, fmt.Errorf("bucket width %s must evenly divide one hour", width)
	}
	return &Scheduler{
		width:  width,
		owners: make(map[int64]int),
		claims: make(map[int][]int64),
	}, nil
}

// Width returns the bucket width.
func (s *Scheduler) Width() time.Duration {
	return s.width
}

// BucketStart returns the start of the bucket containing m.
// Buckets are aligned on UTC hours so that tasks in different zones share one grid.
func (s *Scheduler) BucketStart(m time.Time) time.Time {
	m = m.UTC()
	hour := time.Date(m.Year(), m.Month(), m.Day(), m.Hour(), 0, 0, 0, time.UTC)
	offset := m.Sub(hour)
	return hour.Add(offset / s.width * s.width)
}

// buckets lists the bucket starts covered by w. A window without a duration,
// or with a zero one, occupies the single bucket of its start.
func (s *Scheduler) buckets(w domain.Window) []int64 {
	if w.Start == nil {
		return nil
	}

	first := s.BucketStart(*w.Start)
	if w.Duration == nil || *w.Duration <= 0 {
		return []int64{first.UnixNano()}
	}

	end := w.Start.Add(*w.Duration)
	var out []int64
	for b := first; b.Before(end); b = b.Add(s.width) {
		out = append(out, b.UnixNano())
	}
	return out
}

func tracked(e domain.Entity) bool {
	return e != nil && e.Kind() != domain.KindEpic && e.Window().IsScheduled()
}

// Validate checks that e does not overlap any other registered task.
// Buckets already owned by e itself do not count as conflicts.
func (s *Scheduler) Validate(e domain.Entity) error {
	if !tracked(e) {
		return nil
	}

	id := e.Meta().ID
	for _, b := range s.buckets(e.Window()) {
		owner, ok := s.owners[b]
		if ok && owner != id {
			return fmt.Errorf("%w: task %d overlaps task %d at %s",
				domain.ErrSchedulingConflict, id, owner,
				time.Unix(0, b).UTC().Format(time.RFC3339))
		}
	}
	return nil
}

// Register replaces any previous claim of e with the buckets of its current window.
func (s *Scheduler) Register(e domain.Entity) {
	if e == nil || e.Kind() == domain.KindEpic {
		return
	}

	id := e.Meta().ID
	s.Deregister(id)
	if !tracked(e) {
		return
	}

	bs := s.buckets(e.Window())
	for _, b := range bs {
		if owner, ok := s.owners[b]; ok && owner != id {
			// Validate is expected to run first; overwriting keeps the index usable.
			slog.Error("bucket already owned on register",
				"task_id", id,
				"owner_id", owner,
				"bucket", time.Unix(0, b).UTC(),
			)
		}
		s.owners[b] = id
	}
	s.claims[id] = bs
}

// Deregister releases every bucket claimed by id.
func (s *Scheduler) Deregister(id int) {
	bs, ok := s.claims[id]
	if !ok {
		return
	}
	for _, b := range bs {
		if s.owners[b] == id {
			delete(s.owners, b)
		}
	}
	delete(s.claims, id)
}

// Owner returns the id of the task owning the bucket containing m.
func (s *Scheduler) Owner(m time.Time) (int, bool) {
	id, ok := s.owners[s.BucketStart(m).UnixNano()]
	return id, ok
}

// Claims returns the bucket starts held by id.
func (s *Scheduler) Claims(id int) []time.Time {
	bs := s.claims[id]
	out := make([]time.Time, len(bs))
	for i, b := range bs {
		out[i] = time.Unix(0, b).UTC()
	}
	return out
}
