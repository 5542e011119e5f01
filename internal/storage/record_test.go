package storage_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mtlprog/kanban/internal/domain"
	"github.com/mtlprog/kanban/internal/storage"
)

func TestRecord_SubtaskRoundTrip(t *testing.T) {
	sub, err := domain.NewSubtaskOf(4, "write docs", "with, commas")
	require.NoError(t, err)
	sub.ID = 9
	sub.Status = domain.TaskStatusInProgress
	sub.Schedule(time.Date(2024, time.March, 1, 10, 0, 0, 0, time.UTC), 45*time.Minute)

	r := storage.FromEntity(sub)
	assert.Equal(t, domain.KindSubtask, r.Type)
	assert.Equal(t, 4, r.Epic)
	assert.Equal(t, "PT45M", r.Duration)

	back, err := r.Entity()
	require.NoError(t, err)
	assert.Equal(t, sub, back)
}

func TestRecord_UnscheduledTask(t *testing.T) {
	task := domain.NewTask("A", "")
	task.ID = 1

	r := storage.FromEntity(task)
	assert.Nil(t, r.StartTime)
	assert.Empty(t, r.Duration)

	back, err := r.Entity()
	require.NoError(t, err)
	assert.Equal(t, task, back)
}

func TestRecord_Invalid(t *testing.T) {
	tests := []struct {
		name string
		r    storage.Record
	}{
		{name: "no id", r: storage.Record{Type: domain.KindTask, Status: domain.TaskStatusNew}},
		{name: "unknown type", r: storage.Record{ID: 1, Type: "STORY", Status: domain.TaskStatusNew}},
		{name: "bad status", r: storage.Record{ID: 1, Type: domain.KindTask, Status: "LATER"}},
		{name: "orphan subtask", r: storage.Record{ID: 1, Type: domain.KindSubtask, Status: domain.TaskStatusNew}},
		{name: "bad duration", r: storage.Record{ID: 1, Type: domain.KindTask, Status: domain.TaskStatusNew, Duration: "1h"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.r.Entity()
			assert.ErrorIs(t, err, storage.ErrCorrupt)
		})
	}
}

func TestAssemble_SortsByKindAndID(t *testing.T) {
	records := []storage.Record{
		{ID: 3, Type: domain.KindSubtask, Name: "s", Status: domain.TaskStatusNew, Epic: 2},
		{ID: 5, Type: domain.KindTask, Name: "b", Status: domain.TaskStatusDone},
		{ID: 2, Type: domain.KindEpic, Name: "e", Status: domain.TaskStatusNew},
		{ID: 1, Type: domain.KindTask, Name: "a", Status: domain.TaskStatusNew},
	}

	snap, err := storage.Assemble(records, []int{5, 1})
	require.NoError(t, err)

	require.Len(t, snap.Tasks, 2)
	assert.Equal(t, 1, snap.Tasks[0].ID)
	assert.Equal(t, 5, snap.Tasks[1].ID)
	require.Len(t, snap.Epics, 1)
	require.Len(t, snap.Subtasks, 1)
	assert.Equal(t, 2, snap.Subtasks[0].EpicID())
	assert.Equal(t, []int{5, 1}, snap.History)
	assert.Len(t, storage.Records(snap), 4)
}
