package service_test

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mtlprog/kanban/internal/domain"
	"github.com/mtlprog/kanban/internal/service"
)

// TaskManagerTestSuite is the test suite for TaskManager.
type TaskManagerTestSuite struct {
	suite.Suite
	manager *service.TaskManager
}

// SetupTest runs before each test.
func (s *TaskManagerTestSuite) SetupTest() {
	m, err := service.NewTaskManager(service.Options{
		Validators: []service.Validator{service.NewFieldValidator(0)},
	})
	s.Require().NoError(err)
	s.manager = m
}

func at(hour, minute int) time.Time {
	return time.Date(2024, time.March, 1, hour, minute, 0, 0, time.UTC)
}

// Helper: createTask creates a task, optionally scheduled.
func (s *TaskManagerTestSuite) createTask(name string, start *time.Time, d time.Duration) *domain.Task {
	task := domain.NewTask(name, "description")
	if start != nil {
		task.Schedule(*start, d)
	}
	created, err := s.manager.CreateTask(task)
	s.Require().NoError(err)
	return created
}

// Helper: createSubtask creates a scheduled subtask of epic with status.
func (s *TaskManagerTestSuite) createSubtask(epic *domain.Epic, status domain.TaskStatus, start time.Time, d time.Duration) *domain.Subtask {
	sub, err := domain.NewSubtask(epic, "subtask", "")
	s.Require().NoError(err)
	sub.Status = status
	sub.Schedule(start, d)

	created, err := s.manager.CreateSubtask(sub)
	s.Require().NoError(err)
	return created
}

func (s *TaskManagerTestSuite) epic(name string) *domain.Epic {
	epic, err := s.manager.CreateEpic(domain.NewEpic(name, ""))
	s.Require().NoError(err)
	return epic
}

// TestCreate_AssignsIncreasingIDs tests that ids are fresh and never reused.
func (s *TaskManagerTestSuite) TestCreate_AssignsIncreasingIDs() {
	a := s.createTask("A", nil, 0)
	b := s.createTask("B", nil, 0)
	s.Equal(1, a.ID)
	s.Equal(2, b.ID)

	s.True(s.manager.DeleteTask(b.ID))
	c := s.createTask("C", nil, 0)
	s.Equal(3, c.ID)
}

// TestCreate_ReturnsCopy tests that callers cannot mutate stored records.
func (s *TaskManagerTestSuite) TestCreate_ReturnsCopy() {
	task := domain.NewTask("A", "")
	created, err := s.manager.CreateTask(task)
	s.Require().NoError(err)

	created.Name = "changed"
	task.Name = "changed too"

	got, err := s.manager.GetTask(created.ID)
	s.Require().NoError(err)
	s.Equal("A", got.Name)
}

// TestCreate_Nil tests that nil records are rejected.
func (s *TaskManagerTestSuite) TestCreate_Nil() {
	_, err := s.manager.CreateTask(nil)
	s.ErrorIs(err, domain.ErrValidationRejected)
	_, err = s.manager.CreateEpic(nil)
	s.ErrorIs(err, domain.ErrValidationRejected)
	_, err = s.manager.CreateSubtask(nil)
	s.ErrorIs(err, domain.ErrValidationRejected)
}

// TestCreate_ExistingIDRejected tests that a record carrying a stored id is rejected.
func (s *TaskManagerTestSuite) TestCreate_ExistingIDRejected() {
	a := s.createTask("A", nil, 0)

	dup := domain.NewTask("dup", "")
	dup.ID = a.ID
	_, err := s.manager.CreateTask(dup)
	s.ErrorIs(err, domain.ErrValidationRejected)
}

// TestCreate_FieldValidation tests the field validator.
func (s *TaskManagerTestSuite) TestCreate_FieldValidation() {
	_, err := s.manager.CreateTask(domain.NewTask("", ""))
	s.ErrorIs(err, domain.ErrValidationRejected)

	bad := domain.NewTask("bad", "")
	bad.Status = "BLOCKED"
	_, err = s.manager.CreateTask(bad)
	s.ErrorIs(err, domain.ErrValidationRejected)

	negative := domain.NewTask("negative", "")
	negative.Schedule(at(10, 0), -time.Minute)
	_, err = s.manager.CreateTask(negative)
	s.ErrorIs(err, domain.ErrValidationRejected)

	century := domain.NewTask("century", "")
	century.Schedule(at(10, 0), 100*365*24*time.Hour)
	_, err = s.manager.CreateTask(century)
	s.ErrorIs(err, domain.ErrValidationRejected)
	s.ErrorContains(err, "exceeds")

	s.Empty(s.manager.Tasks())
	s.Equal(1, s.manager.NextID(), "rejected creates must not consume ids")
}

// TestCreate_MaxDuration tests a configured duration cap.
func (s *TaskManagerTestSuite) TestCreate_MaxDuration() {
	m, err := service.NewTaskManager(service.Options{
		Validators: []service.Validator{service.NewFieldValidator(2 * time.Hour)},
	})
	s.Require().NoError(err)

	atCap := domain.NewTask("at cap", "")
	atCap.Schedule(at(10, 0), 2*time.Hour)
	_, err = m.CreateTask(atCap)
	s.Require().NoError(err)

	over := domain.NewTask("over", "")
	over.Schedule(at(14, 0), 2*time.Hour+time.Minute)
	_, err = m.CreateTask(over)
	s.ErrorIs(err, domain.ErrValidationRejected)

	// Rejected before the scheduler sees it, so nothing was claimed.
	free := domain.NewTask("free", "")
	free.Schedule(at(14, 0), time.Hour)
	_, err = m.CreateTask(free)
	s.NoError(err)
}

// TestUnscheduledTasksIndependent covers two unscheduled tasks and a delete.
func (s *TaskManagerTestSuite) TestUnscheduledTasksIndependent() {
	a := s.createTask("A", nil, 0)
	b := s.createTask("B", nil, 0)

	_, err := s.manager.GetTask(b.ID)
	s.Require().NoError(err)

	s.True(s.manager.DeleteTask(a.ID))

	got, err := s.manager.GetTask(b.ID)
	s.Require().NoError(err)
	s.Equal("B", got.Name)
	s.Equal([]int{b.ID}, s.manager.HistoryIDs())
}

// TestSchedulingConflict tests overlapping windows.
func (s *TaskManagerTestSuite) TestSchedulingConflict() {
	startA := at(10, 0)
	s.createTask("A", &startA, 30*time.Minute)

	b := domain.NewTask("B", "")
	b.Schedule(at(10, 10), 30*time.Minute)
	_, err := s.manager.CreateTask(b)
	s.ErrorIs(err, domain.ErrSchedulingConflict)
	s.Len(s.manager.Tasks(), 1)

	// Adjacent window is accepted.
	c := domain.NewTask("C", "")
	c.Schedule(at(10, 30), 30*time.Minute)
	_, err = s.manager.CreateTask(c)
	s.NoError(err)
}

// TestUpdate_OwnWindowIsNotConflict tests moving a task within its own buckets.
func (s *TaskManagerTestSuite) TestUpdate_OwnWindowIsNotConflict() {
	start := at(10, 0)
	a := s.createTask("A", &start, 30*time.Minute)

	a.Schedule(at(10, 10), 30*time.Minute)
	updated, err := s.manager.UpdateTask(a)
	s.Require().NoError(err)
	s.Equal(at(10, 10), *updated.StartTime)

	// The released 10:00 bucket is free again.
	b := domain.NewTask("B", "")
	b.Schedule(at(10, 0), 5*time.Minute)
	_, err = s.manager.CreateTask(b)
	s.NoError(err)
}

// TestUpdate_ConflictKeepsOldRecord tests that a rejected update changes nothing.
func (s *TaskManagerTestSuite) TestUpdate_ConflictKeepsOldRecord() {
	startA := at(10, 0)
	startB := at(12, 0)
	s.createTask("A", &startA, 30*time.Minute)
	b := s.createTask("B", &startB, 30*time.Minute)

	b.Schedule(at(10, 20), 30*time.Minute)
	_, err := s.manager.UpdateTask(b)
	s.ErrorIs(err, domain.ErrSchedulingConflict)

	got, err := s.manager.GetTask(b.ID)
	s.Require().NoError(err)
	s.Equal(at(12, 0), *got.StartTime)

	owner, ok := s.manager.Scheduler().Owner(at(12, 0))
	s.True(ok)
	s.Equal(b.ID, owner)
}

// TestUpdate_NotFound tests updates of unknown or wrong-kind ids.
func (s *TaskManagerTestSuite) TestUpdate_NotFound() {
	task := domain.NewTask("ghost", "")
	task.ID = 99
	_, err := s.manager.UpdateTask(task)
	s.ErrorIs(err, domain.ErrNotFound)

	epic := s.epic("E")
	asTask := domain.NewTask("wrong kind", "")
	asTask.ID = epic.ID
	_, err = s.manager.UpdateTask(asTask)
	s.ErrorIs(err, domain.ErrNotFound)
}

// TestEpicAggregation follows an epic through subtask changes.
func (s *TaskManagerTestSuite) TestEpicAggregation() {
	epic := s.epic("E")
	s.Equal(domain.TaskStatusNew, epic.State())
	s.Nil(epic.StartTime())

	s1 := s.createSubtask(epic, domain.TaskStatusDone, at(10, 0), 30*time.Minute)
	got, err := s.manager.GetEpic(epic.ID)
	s.Require().NoError(err)
	s.Equal(domain.TaskStatusDone, got.State())
	s.Equal(at(10, 0), *got.StartTime())
	s.Equal(30*time.Minute, *got.Duration())

	s2 := s.createSubtask(epic, domain.TaskStatusNew, at(9, 0), 15*time.Minute)
	got, err = s.manager.GetEpic(epic.ID)
	s.Require().NoError(err)
	s.Equal(domain.TaskStatusInProgress, got.State())
	s.Equal(at(9, 0), *got.StartTime())
	s.Equal(at(10, 30), *got.EndTime())
	s.Equal(45*time.Minute, *got.Duration())
	s.Equal([]int{s1.ID, s2.ID}, got.SubtaskIDs())

	s2.Status = domain.TaskStatusDone
	_, err = s.manager.UpdateSubtask(s2)
	s.Require().NoError(err)
	got, err = s.manager.GetEpic(epic.ID)
	s.Require().NoError(err)
	s.Equal(domain.TaskStatusDone, got.State())

	s.True(s.manager.DeleteSubtask(s1.ID))
	s.True(s.manager.DeleteSubtask(s2.ID))
	got, err = s.manager.GetEpic(epic.ID)
	s.Require().NoError(err)
	s.Equal(domain.TaskStatusNew, got.State())
	s.Nil(got.Duration())
	s.Empty(got.SubtaskIDs())
}

// TestUpdateEpic_TakesOnlyNameAndDescription tests epic updates.
func (s *TaskManagerTestSuite) TestUpdateEpic_TakesOnlyNameAndDescription() {
	epic := s.epic("E")
	s.createSubtask(epic, domain.TaskStatusDone, at(10, 0), 10*time.Minute)

	update := domain.NewEpic("renamed", "new description")
	update.ID = epic.ID
	got, err := s.manager.UpdateEpic(update)
	s.Require().NoError(err)

	s.Equal("renamed", got.Name)
	s.Equal("new description", got.Description)
	s.Equal(domain.TaskStatusDone, got.State())
	s.Len(got.SubtaskIDs(), 1)
}

// TestCreateSubtask_UnknownEpic tests the epic reference check.
func (s *TaskManagerTestSuite) TestCreateSubtask_UnknownEpic() {
	sub, err := domain.NewSubtaskOf(42, "orphan", "")
	s.Require().NoError(err)

	_, err = s.manager.CreateSubtask(sub)
	s.ErrorIs(err, domain.ErrInvalidReference)
}

// TestUpdateSubtask_CannotMoveEpic tests that the owning epic is fixed.
func (s *TaskManagerTestSuite) TestUpdateSubtask_CannotMoveEpic() {
	e1 := s.epic("E1")
	e2 := s.epic("E2")
	sub := s.createSubtask(e1, domain.TaskStatusNew, at(10, 0), 10*time.Minute)

	moved, err := domain.NewSubtask(e2, sub.Name, sub.Description)
	s.Require().NoError(err)
	moved.ID = sub.ID

	_, err = s.manager.UpdateSubtask(moved)
	s.ErrorIs(err, domain.ErrValidationRejected)
}

// TestHistory tests visit order, promotion and deletion.
func (s *TaskManagerTestSuite) TestHistory() {
	a := s.createTask("A", nil, 0)
	b := s.createTask("B", nil, 0)
	c := s.createTask("C", nil, 0)

	for _, id := range []int{a.ID, b.ID, c.ID, a.ID} {
		_, err := s.manager.Get(id)
		s.Require().NoError(err)
	}
	s.Equal([]int{b.ID, c.ID, a.ID}, s.manager.HistoryIDs())

	s.True(s.manager.Delete(c.ID))
	s.Equal([]int{b.ID, a.ID}, s.manager.HistoryIDs())

	history := s.manager.History()
	s.Require().Len(history, 2)
	s.Equal("B", history[0].Meta().Name)
}

// TestGet_NotFoundDoesNotTouchHistory tests failed lookups.
func (s *TaskManagerTestSuite) TestGet_NotFoundDoesNotTouchHistory() {
	epic := s.epic("E")

	_, err := s.manager.GetTask(epic.ID)
	s.ErrorIs(err, domain.ErrNotFound)
	_, err = s.manager.Get(99)
	s.ErrorIs(err, domain.ErrNotFound)

	s.Empty(s.manager.HistoryIDs())
}

// TestDeleteEpic_Cascades tests that subtasks go with their epic.
func (s *TaskManagerTestSuite) TestDeleteEpic_Cascades() {
	epic := s.epic("E")
	s1 := s.createSubtask(epic, domain.TaskStatusNew, at(10, 0), 10*time.Minute)
	s2 := s.createSubtask(epic, domain.TaskStatusNew, at(11, 0), 10*time.Minute)
	other := s.createTask("other", nil, 0)

	for _, id := range []int{epic.ID, s1.ID, other.ID, s2.ID} {
		_, err := s.manager.Get(id)
		s.Require().NoError(err)
	}

	s.True(s.manager.DeleteEpic(epic.ID))
	s.False(s.manager.DeleteEpic(epic.ID))

	s.Empty(s.manager.Epics())
	s.Empty(s.manager.Subtasks())
	s.Equal([]int{other.ID}, s.manager.HistoryIDs())

	// The subtasks' buckets are released.
	_, owned := s.manager.Scheduler().Owner(at(10, 0))
	s.False(owned)
}

// TestDelete_Absent tests deletes of unknown ids.
func (s *TaskManagerTestSuite) TestDelete_Absent() {
	s.False(s.manager.Delete(1))
	s.False(s.manager.DeleteTask(1))
	s.False(s.manager.DeleteSubtask(1))
}

// TestEpicSubtasks tests listing an epic's subtasks.
func (s *TaskManagerTestSuite) TestEpicSubtasks() {
	epic := s.epic("E")
	s1 := s.createSubtask(epic, domain.TaskStatusNew, at(10, 0), 10*time.Minute)

	subs, err := s.manager.EpicSubtasks(epic.ID)
	s.Require().NoError(err)
	s.Require().Len(subs, 1)
	s.Equal(s1.ID, subs[0].ID)
	s.Empty(s.manager.HistoryIDs())

	_, err = s.manager.EpicSubtasks(99)
	s.ErrorIs(err, domain.ErrNotFound)
}

// TestClear tests the bulk clears.
func (s *TaskManagerTestSuite) TestClear() {
	startA := at(8, 0)
	a := s.createTask("A", &startA, 10*time.Minute)
	epic := s.epic("E")
	sub := s.createSubtask(epic, domain.TaskStatusDone, at(10, 0), 10*time.Minute)
	for _, id := range []int{a.ID, epic.ID, sub.ID} {
		_, err := s.manager.Get(id)
		s.Require().NoError(err)
	}

	s.manager.ClearSubtasks()
	s.Empty(s.manager.Subtasks())
	got, err := s.manager.GetEpic(epic.ID)
	s.Require().NoError(err)
	s.Equal(domain.TaskStatusNew, got.State())
	s.Empty(got.SubtaskIDs())
	s.Equal([]int{a.ID, epic.ID}, s.manager.HistoryIDs())

	s.manager.ClearTasks()
	s.Empty(s.manager.Tasks())
	_, owned := s.manager.Scheduler().Owner(at(8, 0))
	s.False(owned)

	s.manager.ClearAll()
	s.Empty(s.manager.All())
	s.Empty(s.manager.HistoryIDs())
	s.Equal(4, s.manager.NextID())
}

// TestClearEpics_Cascades tests that clearing epics removes subtasks.
func (s *TaskManagerTestSuite) TestClearEpics_Cascades() {
	epic := s.epic("E")
	s.createSubtask(epic, domain.TaskStatusNew, at(10, 0), 10*time.Minute)
	task := s.createTask("A", nil, 0)

	s.manager.ClearEpics()

	s.Empty(s.manager.Epics())
	s.Empty(s.manager.Subtasks())
	s.Len(s.manager.Tasks(), 1)
	s.Equal(task.ID, s.manager.Tasks()[0].ID)
}

// TestAll_OrdersByKind tests the combined listing.
func (s *TaskManagerTestSuite) TestAll_OrdersByKind() {
	epic := s.epic("E")
	s.createSubtask(epic, domain.TaskStatusNew, at(10, 0), 10*time.Minute)
	s.createTask("A", nil, 0)

	all := s.manager.All()
	s.Require().Len(all, 3)
	s.Equal(domain.KindTask, all[0].Kind())
	s.Equal(domain.KindEpic, all[1].Kind())
	s.Equal(domain.KindSubtask, all[2].Kind())
}

// TestPrioritized tests ordering by start time.
func (s *TaskManagerTestSuite) TestPrioritized() {
	late := at(12, 0)
	early := at(9, 0)
	free := s.createTask("free", nil, 0)
	l := s.createTask("late", &late, 10*time.Minute)
	e := s.createTask("early", &early, 10*time.Minute)
	epic := s.epic("E")
	sub := s.createSubtask(epic, domain.TaskStatusNew, at(10, 0), 10*time.Minute)

	got := s.manager.Prioritized()
	ids := make([]int, len(got))
	for i, entity := range got {
		ids[i] = entity.Meta().ID
	}
	s.Equal([]int{e.ID, sub.ID, l.ID, free.ID}, ids)
}

// TestImport_AdvancesCounter tests importing records with fixed ids.
func (s *TaskManagerTestSuite) TestImport_AdvancesCounter() {
	epic := domain.NewEpic("E", "")
	epic.ID = 7
	s.Require().NoError(s.manager.Import(epic))

	sub, err := domain.NewSubtask(epic, "S", "")
	s.Require().NoError(err)
	sub.ID = 3
	sub.Status = domain.TaskStatusDone
	s.Require().NoError(s.manager.Import(sub))

	s.Equal(8, s.manager.NextID())
	s.Empty(s.manager.HistoryIDs())

	got, err := s.manager.GetEpic(7)
	s.Require().NoError(err)
	s.Equal(domain.TaskStatusDone, got.State())
	s.Equal([]int{3}, got.SubtaskIDs())

	created := s.createTask("new", nil, 0)
	s.Equal(8, created.ID)

	dup := domain.NewTask("dup", "")
	dup.ID = 3
	s.ErrorIs(s.manager.Import(dup), domain.ErrValidationRejected)
}

// TestRestore_RoundTrip tests snapshot and restore.
func (s *TaskManagerTestSuite) TestRestore_RoundTrip() {
	start := at(10, 0)
	a := s.createTask("A", &start, 30*time.Minute)
	epic := s.epic("E")
	sub := s.createSubtask(epic, domain.TaskStatusInProgress, at(11, 0), 20*time.Minute)
	for _, id := range []int{sub.ID, a.ID, epic.ID} {
		_, err := s.manager.Get(id)
		s.Require().NoError(err)
	}
	snap := s.manager.Snapshot()

	restored, err := service.NewTaskManager(service.Options{})
	s.Require().NoError(err)
	s.Require().NoError(restored.Restore(snap))

	s.Equal(s.manager.Snapshot(), restored.Snapshot())
	s.Equal(s.manager.NextID(), restored.NextID())

	// Restored claims still guard the schedule.
	clash := domain.NewTask("clash", "")
	clash.Schedule(at(10, 15), 5*time.Minute)
	_, err = restored.CreateTask(clash)
	s.ErrorIs(err, domain.ErrSchedulingConflict)
}

// TestRestore_InvalidSnapshotLeavesEmptyStore tests a snapshot with a dangling reference.
func (s *TaskManagerTestSuite) TestRestore_InvalidSnapshotLeavesEmptyStore() {
	s.createTask("A", nil, 0)

	orphan, err := domain.NewSubtaskOf(5, "orphan", "")
	s.Require().NoError(err)
	orphan.ID = 6

	err = s.manager.Restore(domain.Snapshot{Subtasks: []*domain.Subtask{orphan}})
	s.ErrorIs(err, domain.ErrInvalidReference)
	s.Empty(s.manager.All())
}

// TestRestore_KeepsSavedCounter tests that ids freed before a save are not reused.
func (s *TaskManagerTestSuite) TestRestore_KeepsSavedCounter() {
	s.createTask("A", nil, 0)
	b := s.createTask("B", nil, 0)
	s.Require().True(s.manager.DeleteTask(b.ID))

	snap := s.manager.Snapshot()
	s.Equal(3, snap.NextID)

	restored, err := service.NewTaskManager(service.Options{})
	s.Require().NoError(err)
	s.Require().NoError(restored.Restore(snap))
	s.Equal(3, restored.NextID())

	// A counter behind the records is ignored.
	snap.NextID = 1
	s.Require().NoError(restored.Restore(snap))
	s.Equal(2, restored.NextID())
}

// TestRestore_WiderBucketWidthConflicts tests restoring under a wider bucket width.
// Windows that shared no 10m bucket can share a 30m one.
func (s *TaskManagerTestSuite) TestRestore_WiderBucketWidthConflicts() {
	first := at(10, 0)
	second := at(10, 10)
	s.createTask("A", &first, 10*time.Minute)
	s.createTask("B", &second, 10*time.Minute)
	snap := s.manager.Snapshot()

	wide, err := service.NewTaskManager(service.Options{BucketWidth: 30 * time.Minute})
	s.Require().NoError(err)

	err = wide.Restore(snap)
	s.ErrorIs(err, domain.ErrSchedulingConflict)
	s.Empty(wide.All())
	s.Equal(1, wide.NextID())
}

// TestRestoreHistory_SkipsUnknownIDs tests history replay.
func (s *TaskManagerTestSuite) TestRestoreHistory_SkipsUnknownIDs() {
	a := s.createTask("A", nil, 0)
	b := s.createTask("B", nil, 0)

	s.manager.RestoreHistory([]int{b.ID, 42, a.ID})
	s.Equal([]int{b.ID, a.ID}, s.manager.HistoryIDs())
}

type rejectAll struct{}

func (rejectAll) Validate(domain.Entity) error { return errors.New("closed for the day") }
func (rejectAll) Register(domain.Entity)       {}
func (rejectAll) Deregister(int)               {}

// TestCustomValidatorErrorsAreWrapped tests that foreign errors become ErrValidationRejected.
func (s *TaskManagerTestSuite) TestCustomValidatorErrorsAreWrapped() {
	m, err := service.NewTaskManager(service.Options{Validators: []service.Validator{rejectAll{}}})
	s.Require().NoError(err)

	_, err = m.CreateTask(domain.NewTask("A", ""))
	s.ErrorIs(err, domain.ErrValidationRejected)
	s.ErrorContains(err, "closed for the day")
}

// TestNewTaskManager_InvalidBucketWidth tests scheduler configuration errors.
func (s *TaskManagerTestSuite) TestNewTaskManager_InvalidBucketWidth() {
	_, err := service.NewTaskManager(service.Options{BucketWidth: 7 * time.Minute})
	s.Error(err)
}

// TestConcurrentCreates checks that concurrent creates on one window admit exactly one.
func (s *TaskManagerTestSuite) TestConcurrentCreates() {
	var wg sync.WaitGroup
	results := make(chan error, 10)

	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			task := domain.NewTask("racer", "")
			task.Schedule(at(10, 0), 30*time.Minute)
			_, err := s.manager.CreateTask(task)
			results <- err
		}()
	}

	wg.Wait()
	close(results)

	successCount := 0
	for err := range results {
		if err == nil {
			successCount++
		} else {
			s.ErrorIs(err, domain.ErrSchedulingConflict)
		}
	}

	s.Equal(1, successCount, "exactly one create should succeed")
}

// TestTaskManagerTestSuite runs the test suite.
func TestTaskManagerTestSuite(t *testing.T) {
	suite.Run(t, new(TaskManagerTestSuite))
}

// TestStats tests the summary counters.
func (s *TaskManagerTestSuite) TestStats() {
	start := at(10, 0)
	a := s.createTask("A", &start, 10*time.Minute)
	s.createTask("B", nil, 0)
	epic := s.epic("E")
	s.createSubtask(epic, domain.TaskStatusDone, at(11, 0), 10*time.Minute)
	_, err := s.manager.Get(a.ID)
	s.Require().NoError(err)

	st := s.manager.Stats()
	s.Equal(2, st.Tasks)
	s.Equal(1, st.Epics)
	s.Equal(1, st.Subtasks)
	s.Equal(2, st.Scheduled)
	s.Equal(1, st.HistoryLen)
	s.Equal(2, st.ByStatus[domain.TaskStatusNew])
	s.Equal(2, st.ByStatus[domain.TaskStatusDone])
	s.Equal(0, st.ByStatus[domain.TaskStatusInProgress])
}
