package service

import (
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/mtlprog/kanban/internal/domain"
	"github.com/mtlprog/kanban/internal/history"
	"github.com/mtlprog/kanban/internal/schedule"
)

// Options configures a TaskManager.
type Options struct {
	// HistoryCapacity bounds the history log; zero means unbounded.
	HistoryCapacity int
	// BucketWidth is the scheduler bucket width; zero means schedule.DefaultBucketWidth.
	BucketWidth time.Duration
	// Validators run before the scheduler on every admission.
	Validators []Validator
}

// TaskManager is the in-memory store of tasks, epics and subtasks.
// Every exported method is serialized by a single mutex.
type TaskManager struct {
	mu         sync.Mutex
	nextID     int
	tasks      map[int]*domain.Task
	epics      map[int]*domain.Epic
	subtasks   map[int]*domain.Subtask
	history    *history.Tracker
	scheduler  *schedule.Scheduler
	validators []Validator
}

// NewTaskManager creates a new TaskManager.
func NewTaskManager(opts Options) (*TaskManager, error) {
	width := opts.BucketWidth
	if width == 0 {
		width = schedule.DefaultBucketWidth
	}
	scheduler, err := schedule.New(width)
	if err != nil {
		return nil, fmt.Errorf("create scheduler: %w", err)
	}

	validators := make([]Validator, 0, len(opts.Validators)+1)
	validators = append(validators, opts.Validators...)
	validators = append(validators, scheduler)

	return &TaskManager{
		nextID:     1,
		tasks:      make(map[int]*domain.Task),
		epics:      make(map[int]*domain.Epic),
		subtasks:   make(map[int]*domain.Subtask),
		history:    history.New(opts.HistoryCapacity),
		scheduler:  scheduler,
		validators: validators,
	}, nil
}

// Scheduler exposes the scheduler for inspection.
func (m *TaskManager) Scheduler() *schedule.Scheduler {
	return m.scheduler
}

// NextID returns the id the next created record will receive.
func (m *TaskManager) NextID() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.nextID
}

// admit runs every validator against e. Errors that do not carry a domain
// error kind are reported as ErrValidationRejected.
func (m *TaskManager) admit(e domain.Entity) error {
	for _, v := range m.validators {
		if err := v.Validate(e); err != nil {
			if isDomainError(err) {
				return err
			}
			return fmt.Errorf("%w: %w", domain.ErrValidationRejected, err)
		}
	}
	return nil
}

func (m *TaskManager) register(e domain.Entity) {
	for _, v := range m.validators {
		v.Register(e)
	}
}

// release drops id from every validator index and from the history.
func (m *TaskManager) release(id int) {
	for _, v := range m.validators {
		v.Deregister(id)
	}
	m.history.Remove(id)
}

func (m *TaskManager) exists(id int) bool {
	_, task := m.tasks[id]
	_, epic := m.epics[id]
	_, sub := m.subtasks[id]
	return task || epic || sub
}

func (m *TaskManager) rollUp(epic *domain.Epic) {
	subs := make([]*domain.Subtask, 0, len(m.subtasks))
	for _, sub := range m.subtasks {
		if sub.EpicID() == epic.ID {
			subs = append(subs, sub)
		}
	}
	sort.Slice(subs, func(i, j int) bool { return subs[i].ID < subs[j].ID })
	domain.RollUp(epic, subs)
}

func (m *TaskManager) rollUpByID(epicID int) {
	epic, ok := m.epics[epicID]
	if !ok {
		slog.Error("subtask references missing epic", "epic_id", epicID)
		return
	}
	m.rollUp(epic)
}

func (m *TaskManager) rollUpAll() {
	for _, epic := range m.epics {
		m.rollUp(epic)
	}
}

// CreateTask stores a copy of task under a fresh id.
func (m *TaskManager) CreateTask(task *domain.Task) (*domain.Task, error) {
	if task == nil {
		return nil, fmt.Errorf("%w: task is nil", domain.ErrValidationRejected)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if task.ID != 0 && m.exists(task.ID) {
		return nil, fmt.Errorf("%w: id %d already exists", domain.ErrValidationRejected, task.ID)
	}

	stored := task.Clone().(*domain.Task)
	stored.ID = m.nextID
	if stored.Status == "" {
		stored.Status = domain.TaskStatusNew
	}
	if err := m.admit(stored); err != nil {
		return nil, err
	}

	m.nextID++
	m.register(stored)
	m.tasks[stored.ID] = stored

	slog.Info("task created", "task_id", stored.ID, "kind", domain.KindTask)

	return stored.Clone().(*domain.Task), nil
}

// CreateEpic stores a copy of epic under a fresh id. The epic starts without subtasks.
func (m *TaskManager) CreateEpic(epic *domain.Epic) (*domain.Epic, error) {
	if epic == nil {
		return nil, fmt.Errorf("%w: epic is nil", domain.ErrValidationRejected)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if epic.ID != 0 && m.exists(epic.ID) {
		return nil, fmt.Errorf("%w: id %d already exists", domain.ErrValidationRejected, epic.ID)
	}

	stored := domain.NewEpic(epic.Name, epic.Description)
	stored.ID = m.nextID
	if err := m.admit(stored); err != nil {
		return nil, err
	}

	m.nextID++
	m.register(stored)
	m.epics[stored.ID] = stored

	slog.Info("task created", "task_id", stored.ID, "kind", domain.KindEpic)

	return stored.Clone().(*domain.Epic), nil
}

// CreateSubtask stores a copy of sub under a fresh id and re-aggregates its epic.
func (m *TaskManager) CreateSubtask(sub *domain.Subtask) (*domain.Subtask, error) {
	if sub == nil {
		return nil, fmt.Errorf("%w: subtask is nil", domain.ErrValidationRejected)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if sub.ID != 0 && m.exists(sub.ID) {
		return nil, fmt.Errorf("%w: id %d already exists", domain.ErrValidationRejected, sub.ID)
	}

	epic, ok := m.epics[sub.EpicID()]
	if !ok {
		return nil, fmt.Errorf("%w: epic %d is not stored", domain.ErrInvalidReference, sub.EpicID())
	}

	stored := sub.Clone().(*domain.Subtask)
	stored.ID = m.nextID
	if stored.Status == "" {
		stored.Status = domain.TaskStatusNew
	}
	if err := m.admit(stored); err != nil {
		return nil, err
	}

	m.nextID++
	m.register(stored)
	m.subtasks[stored.ID] = stored
	m.rollUp(epic)

	slog.Info("task created",
		"task_id", stored.ID,
		"kind", domain.KindSubtask,
		"epic_id", epic.ID,
	)

	return stored.Clone().(*domain.Subtask), nil
}

// UpdateTask replaces the stored task with the same id.
func (m *TaskManager) UpdateTask(task *domain.Task) (*domain.Task, error) {
	if task == nil {
		return nil, fmt.Errorf("%w: task is nil", domain.ErrValidationRejected)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.tasks[task.ID]; !ok {
		return nil, fmt.Errorf("%w: task %d", domain.ErrNotFound, task.ID)
	}

	stored := task.Clone().(*domain.Task)
	if err := m.admit(stored); err != nil {
		return nil, err
	}

	m.register(stored)
	m.tasks[stored.ID] = stored

	slog.Info("task updated", "task_id", stored.ID, "kind", domain.KindTask)

	return stored.Clone().(*domain.Task), nil
}

// UpdateEpic takes the name and description of epic; derived fields are recomputed.
func (m *TaskManager) UpdateEpic(epic *domain.Epic) (*domain.Epic, error) {
	if epic == nil {
		return nil, fmt.Errorf("%w: epic is nil", domain.ErrValidationRejected)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	existing, ok := m.epics[epic.ID]
	if !ok {
		return nil, fmt.Errorf("%w: epic %d", domain.ErrNotFound, epic.ID)
	}

	candidate := existing.Clone().(*domain.Epic)
	candidate.Name = epic.Name
	candidate.Description = epic.Description
	if err := m.admit(candidate); err != nil {
		return nil, err
	}

	m.register(candidate)
	m.rollUp(candidate)
	m.epics[candidate.ID] = candidate

	slog.Info("task updated", "task_id", candidate.ID, "kind", domain.KindEpic)

	return candidate.Clone().(*domain.Epic), nil
}

// UpdateSubtask replaces the stored subtask with the same id and re-aggregates its epic.
// A subtask cannot be moved to another epic.
func (m *TaskManager) UpdateSubtask(sub *domain.Subtask) (*domain.Subtask, error) {
	if sub == nil {
		return nil, fmt.Errorf("%w: subtask is nil", domain.ErrValidationRejected)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	existing, ok := m.subtasks[sub.ID]
	if !ok {
		return nil, fmt.Errorf("%w: subtask %d", domain.ErrNotFound, sub.ID)
	}
	if existing.EpicID() != sub.EpicID() {
		return nil, fmt.Errorf("%w: subtask %d belongs to epic %d, not %d",
			domain.ErrValidationRejected, sub.ID, existing.EpicID(), sub.EpicID())
	}

	stored := sub.Clone().(*domain.Subtask)
	if err := m.admit(stored); err != nil {
		return nil, err
	}

	m.register(stored)
	m.subtasks[stored.ID] = stored
	m.rollUpByID(stored.EpicID())

	slog.Info("task updated",
		"task_id", stored.ID,
		"kind", domain.KindSubtask,
		"epic_id", stored.EpicID(),
	)

	return stored.Clone().(*domain.Subtask), nil
}

// Delete removes the record with id, whatever its kind.
func (m *TaskManager) Delete(id int) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.deleteTask(id) || m.deleteSubtask(id) || m.deleteEpic(id)
}

// DeleteTask removes a task. It returns false if no task has id.
func (m *TaskManager) DeleteTask(id int) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.deleteTask(id)
}

// DeleteEpic removes an epic together with its subtasks.
func (m *TaskManager) DeleteEpic(id int) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.deleteEpic(id)
}

// DeleteSubtask removes a subtask and re-aggregates its epic.
func (m *TaskManager) DeleteSubtask(id int) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.deleteSubtask(id)
}

func (m *TaskManager) deleteTask(id int) bool {
	if _, ok := m.tasks[id]; !ok {
		return false
	}
	delete(m.tasks, id)
	m.release(id)

	slog.Info("task deleted", "task_id", id, "kind", domain.KindTask)
	return true
}

func (m *TaskManager) deleteSubtask(id int) bool {
	sub, ok := m.subtasks[id]
	if !ok {
		return false
	}
	delete(m.subtasks, id)
	m.release(id)
	m.rollUpByID(sub.EpicID())

	slog.Info("task deleted", "task_id", id, "kind", domain.KindSubtask, "epic_id", sub.EpicID())
	return true
}

func (m *TaskManager) deleteEpic(id int) bool {
	epic, ok := m.epics[id]
	if !ok {
		return false
	}
	delete(m.epics, id)
	m.release(id)

	for _, subID := range epic.SubtaskIDs() {
		if _, ok := m.subtasks[subID]; !ok {
			slog.Error("epic lists missing subtask", "epic_id", id, "subtask_id", subID)
		}
	}

	removed := 0
	for subID, sub := range m.subtasks {
		if sub.EpicID() != id {
			continue
		}
		delete(m.subtasks, subID)
		m.release(subID)
		removed++
	}

	slog.Info("task deleted", "task_id", id, "kind", domain.KindEpic, "subtasks_removed", removed)
	return true
}

// Get returns the record with id, whatever its kind, and records the visit.
func (m *TaskManager) Get(id int) (domain.Entity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var found domain.Entity
	if t, ok := m.tasks[id]; ok {
		found = t
	} else if e, ok := m.epics[id]; ok {
		found = e
	} else if s, ok := m.subtasks[id]; ok {
		found = s
	} else {
		return nil, fmt.Errorf("%w: id %d", domain.ErrNotFound, id)
	}

	m.visit(id)
	return found.Clone(), nil
}

// GetTask returns the task with id and records the visit.
func (m *TaskManager) GetTask(id int) (*domain.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	t, ok := m.tasks[id]
	if !ok {
		return nil, fmt.Errorf("%w: task %d", domain.ErrNotFound, id)
	}
	m.visit(id)
	return t.Clone().(*domain.Task), nil
}

// GetEpic returns the epic with id and records the visit.
func (m *TaskManager) GetEpic(id int) (*domain.Epic, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.epics[id]
	if !ok {
		return nil, fmt.Errorf("%w: epic %d", domain.ErrNotFound, id)
	}
	m.visit(id)
	return e.Clone().(*domain.Epic), nil
}

// GetSubtask returns the subtask with id and records the visit.
func (m *TaskManager) GetSubtask(id int) (*domain.Subtask, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.subtasks[id]
	if !ok {
		return nil, fmt.Errorf("%w: subtask %d", domain.ErrNotFound, id)
	}
	m.visit(id)
	return s.Clone().(*domain.Subtask), nil
}

func (m *TaskManager) visit(id int) {
	m.history.Add(id)
	slog.Debug("task viewed", "task_id", id, "history_len", m.history.Len())
}

// Import stores e under its own id without touching the history.
// The id counter is advanced past the imported id.
func (m *TaskManager) Import(e domain.Entity) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.importEntity(e)
}

func (m *TaskManager) importEntity(e domain.Entity) error {
	if e == nil {
		return fmt.Errorf("%w: entity is nil", domain.ErrValidationRejected)
	}

	id := e.Meta().ID
	if id <= 0 {
		return fmt.Errorf("%w: imported %s has no id", domain.ErrValidationRejected, e.Kind())
	}
	if m.exists(id) {
		return fmt.Errorf("%w: id %d already exists", domain.ErrValidationRejected, id)
	}

	switch v := e.(type) {
	case *domain.Task:
		stored := v.Clone().(*domain.Task)
		if err := m.admit(stored); err != nil {
			return err
		}
		m.register(stored)
		m.tasks[id] = stored

	case *domain.Epic:
		stored := v.Clone().(*domain.Epic)
		if err := m.admit(stored); err != nil {
			return err
		}
		m.register(stored)
		m.rollUp(stored)
		m.epics[id] = stored

	case *domain.Subtask:
		epic, ok := m.epics[v.EpicID()]
		if !ok {
			return fmt.Errorf("%w: subtask %d references epic %d", domain.ErrInvalidReference, id, v.EpicID())
		}
		stored := v.Clone().(*domain.Subtask)
		if err := m.admit(stored); err != nil {
			return err
		}
		m.register(stored)
		m.subtasks[id] = stored
		m.rollUp(epic)

	default:
		return fmt.Errorf("%w: unsupported entity %T", domain.ErrValidationRejected, e)
	}

	if id >= m.nextID {
		m.nextID = id + 1
	}

	slog.Debug("task imported", "task_id", id, "kind", e.Kind())
	return nil
}

// RestoreHistory replays ids, least recent first. Ids that are not stored are skipped.
func (m *TaskManager) RestoreHistory(ids []int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.restoreHistory(ids)
}

func (m *TaskManager) restoreHistory(ids []int) {
	for _, id := range ids {
		if !m.exists(id) {
			slog.Warn("skipping unknown history id", "task_id", id)
			continue
		}
		m.history.Add(id)
	}
}

// Restore replaces the whole store with snap. Epics are imported before subtasks.
// On error the store is left empty.
func (m *TaskManager) Restore(snap domain.Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.reset()

	entities := make([]domain.Entity, 0, snap.Len())
	for _, t := range snap.Tasks {
		entities = append(entities, t)
	}
	for _, e := range snap.Epics {
		entities = append(entities, e)
	}
	for _, s := range snap.Subtasks {
		entities = append(entities, s)
	}

	for _, e := range entities {
		if err := m.importEntity(e); err != nil {
			m.reset()
			return fmt.Errorf("restore %s %d: %w", e.Kind(), e.Meta().ID, err)
		}
	}
	m.restoreHistory(snap.History)

	// Ids of records deleted before the save stay consumed.
	if snap.NextID > m.nextID {
		m.nextID = snap.NextID
	}

	slog.Info("store restored",
		"tasks", len(snap.Tasks),
		"epics", len(snap.Epics),
		"subtasks", len(snap.Subtasks),
		"history_len", m.history.Len(),
		"next_id", m.nextID,
	)
	return nil
}

// Snapshot returns a copy of every record and the history.
func (m *TaskManager) Snapshot() domain.Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	return domain.Snapshot{
		Tasks:    m.tasksLocked(),
		Epics:    m.epicsLocked(),
		Subtasks: m.subtasksLocked(),
		History:  m.history.IDs(),
		NextID:   m.nextID,
	}
}

// Tasks returns copies of every task, ordered by id.
func (m *TaskManager) Tasks() []*domain.Task {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.tasksLocked()
}

// Epics returns copies of every epic, ordered by id.
func (m *TaskManager) Epics() []*domain.Epic {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.epicsLocked()
}

// Subtasks returns copies of every subtask, ordered by id.
func (m *TaskManager) Subtasks() []*domain.Subtask {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.subtasksLocked()
}

// All returns tasks, then epics, then subtasks.
func (m *TaskManager) All() []domain.Entity {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]domain.Entity, 0, len(m.tasks)+len(m.epics)+len(m.subtasks))
	for _, t := range m.tasksLocked() {
		out = append(out, t)
	}
	for _, e := range m.epicsLocked() {
		out = append(out, e)
	}
	for _, s := range m.subtasksLocked() {
		out = append(out, s)
	}
	return out
}

// EpicSubtasks returns the subtasks of the epic with id. It does not record a visit.
func (m *TaskManager) EpicSubtasks(epicID int) ([]*domain.Subtask, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	epic, ok := m.epics[epicID]
	if !ok {
		return nil, fmt.Errorf("%w: epic %d", domain.ErrNotFound, epicID)
	}

	ids := epic.SubtaskIDs()
	out := make([]*domain.Subtask, 0, len(ids))
	for _, id := range ids {
		sub, ok := m.subtasks[id]
		if !ok {
			slog.Error("epic lists missing subtask", "epic_id", epicID, "subtask_id", id)
			continue
		}
		out = append(out, sub.Clone().(*domain.Subtask))
	}
	return out, nil
}

// History returns the visited records, least recent first.
func (m *TaskManager) History() []domain.Entity {
	m.mu.Lock()
	defer m.mu.Unlock()

	ids := m.history.IDs()
	out := make([]domain.Entity, 0, len(ids))
	for _, id := range ids {
		switch {
		case m.tasks[id] != nil:
			out = append(out, m.tasks[id].Clone())
		case m.epics[id] != nil:
			out = append(out, m.epics[id].Clone())
		case m.subtasks[id] != nil:
			out = append(out, m.subtasks[id].Clone())
		default:
			slog.Error("history references missing task", "task_id", id)
		}
	}
	return out
}

// HistoryIDs returns the visited ids, least recent first.
func (m *TaskManager) HistoryIDs() []int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.history.IDs()
}

// ClearTasks removes every task.
func (m *TaskManager) ClearTasks() {
	m.mu.Lock()
	defer m.mu.Unlock()

	n := len(m.tasks)
	m.clearTasks()
	slog.Info("tasks cleared", "kind", domain.KindTask, "removed", n)
}

// ClearSubtasks removes every subtask and resets every epic to its empty state.
func (m *TaskManager) ClearSubtasks() {
	m.mu.Lock()
	defer m.mu.Unlock()

	n := len(m.subtasks)
	m.clearSubtasks()
	m.rollUpAll()
	slog.Info("tasks cleared", "kind", domain.KindSubtask, "removed", n)
}

// ClearEpics removes every epic and, with them, every subtask.
func (m *TaskManager) ClearEpics() {
	m.mu.Lock()
	defer m.mu.Unlock()

	n := len(m.epics)
	m.clearSubtasks()
	m.clearEpics()
	slog.Info("tasks cleared", "kind", domain.KindEpic, "removed", n)
}

// ClearAll removes every record. The id counter is kept.
func (m *TaskManager) ClearAll() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.clearTasks()
	m.clearSubtasks()
	m.clearEpics()
	slog.Info("all tasks cleared")
}

func (m *TaskManager) clearTasks() {
	for id := range m.tasks {
		m.release(id)
	}
	clear(m.tasks)
}

func (m *TaskManager) clearSubtasks() {
	for id := range m.subtasks {
		m.release(id)
	}
	clear(m.subtasks)
}

func (m *TaskManager) clearEpics() {
	for id := range m.epics {
		m.release(id)
	}
	clear(m.epics)
}

// reset empties the store, the history and the validator indexes, and rewinds the counter.
func (m *TaskManager) reset() {
	m.clearTasks()
	m.clearSubtasks()
	m.clearEpics()
	m.history.Clear()
	m.nextID = 1
}

func (m *TaskManager) tasksLocked() []*domain.Task {
	out := make([]*domain.Task, 0, len(m.tasks))
	for _, t := range m.tasks {
		out = append(out, t.Clone().(*domain.Task))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (m *TaskManager) epicsLocked() []*domain.Epic {
	out := make([]*domain.Epic, 0, len(m.epics))
	for _, e := range m.epics {
		out = append(out, e.Clone().(*domain.Epic))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (m *TaskManager) subtasksLocked() []*domain.Subtask {
	out := make([]*domain.Subtask, 0, len(m.subtasks))
	for _, s := range m.subtasks {
		out = append(out, s.Clone().(*domain.Subtask))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
