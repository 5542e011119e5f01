package domain_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mtlprog/kanban/internal/domain"
)

func at(hour, minute int) time.Time {
	return time.Date(2024, time.March, 1, hour, minute, 0, 0, time.UTC)
}

func subtask(t *testing.T, epic *domain.Epic, id int, status domain.TaskStatus) *domain.Subtask {
	t.Helper()
	sub, err := domain.NewSubtask(epic, "sub", "")
	require.NoError(t, err)
	sub.ID = id
	sub.Status = status
	return sub
}

func TestRollUp_NoSubtasks(t *testing.T) {
	epic := domain.NewEpic("epic", "")
	epic.ID = 1

	domain.RollUp(epic, nil)

	assert.Equal(t, domain.TaskStatusNew, epic.State())
	assert.Nil(t, epic.StartTime())
	assert.Nil(t, epic.EndTime())
	assert.Nil(t, epic.Duration())
	assert.Empty(t, epic.SubtaskIDs())
}

func TestRollUp_Status(t *testing.T) {
	epic := domain.NewEpic("epic", "")
	epic.ID = 1

	subs := []*domain.Subtask{
		subtask(t, epic, 2, domain.TaskStatusDone),
		subtask(t, epic, 3, domain.TaskStatusDone),
		subtask(t, epic, 4, domain.TaskStatusDone),
	}
	domain.RollUp(epic, subs)
	assert.Equal(t, domain.TaskStatusDone, epic.State())

	subs[1].Status = domain.TaskStatusNew
	domain.RollUp(epic, subs)
	assert.Equal(t, domain.TaskStatusInProgress, epic.State())

	for _, s := range subs {
		s.Status = domain.TaskStatusNew
	}
	domain.RollUp(epic, subs)
	assert.Equal(t, domain.TaskStatusNew, epic.State())
}

func TestRollUp_TimeWindow(t *testing.T) {
	epic := domain.NewEpic("epic", "")
	epic.ID = 1

	s1 := subtask(t, epic, 2, domain.TaskStatusDone)
	s1.Schedule(at(10, 0), 30*time.Minute)
	s2 := subtask(t, epic, 3, domain.TaskStatusNew)
	s2.Schedule(at(9, 0), 15*time.Minute)
	s3 := subtask(t, epic, 4, domain.TaskStatusNew)

	domain.RollUp(epic, []*domain.Subtask{s3, s1, s2})

	require.NotNil(t, epic.StartTime())
	assert.True(t, at(9, 0).Equal(*epic.StartTime()))
	require.NotNil(t, epic.EndTime())
	assert.True(t, at(10, 30).Equal(*epic.EndTime()))
	require.NotNil(t, epic.Duration())
	assert.Equal(t, 45*time.Minute, *epic.Duration())
	assert.Equal(t, []int{2, 3, 4}, epic.SubtaskIDs())
}

func TestRollUp_IgnoresForeignSubtasks(t *testing.T) {
	epic := domain.NewEpic("epic", "")
	epic.ID = 1
	other := domain.NewEpic("other", "")
	other.ID = 9

	mine := subtask(t, epic, 2, domain.TaskStatusDone)
	foreign := subtask(t, other, 3, domain.TaskStatusNew)
	foreign.Schedule(at(8, 0), time.Hour)

	domain.RollUp(epic, []*domain.Subtask{mine, foreign})

	assert.Equal(t, domain.TaskStatusDone, epic.State())
	assert.Equal(t, []int{2}, epic.SubtaskIDs())
	assert.Nil(t, epic.StartTime())
}

func TestNewSubtask_RequiresEpicID(t *testing.T) {
	_, err := domain.NewSubtask(domain.NewEpic("unsaved", ""), "sub", "")
	require.ErrorIs(t, err, domain.ErrInvalidReference)

	_, err = domain.NewSubtask(nil, "sub", "")
	require.ErrorIs(t, err, domain.ErrInvalidReference)

	epic := domain.NewEpic("saved", "")
	epic.ID = 7
	sub, err := domain.NewSubtask(epic, "sub", "")
	require.NoError(t, err)
	assert.Equal(t, 7, sub.EpicID())
	assert.Equal(t, domain.KindSubtask, sub.Kind())
	assert.Equal(t, domain.TaskStatusNew, sub.State())
}

func TestClone_IsIndependent(t *testing.T) {
	task := domain.NewTask("task", "")
	task.Schedule(at(10, 0), time.Hour)

	clone := task.Clone().(*domain.Task)
	*clone.StartTime = at(12, 0)
	clone.Name = "changed"

	assert.True(t, at(10, 0).Equal(*task.StartTime))
	assert.Equal(t, "task", task.Name)
}

func TestWindow_End(t *testing.T) {
	start := at(10, 0)
	d := 90 * time.Minute

	assert.Nil(t, domain.Window{}.End())
	assert.Nil(t, domain.Window{Start: &start}.End())

	end := domain.Window{Start: &start, Duration: &d}.End()
	require.NotNil(t, end)
	assert.True(t, at(11, 30).Equal(*end))
}
