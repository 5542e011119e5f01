// Package kvstore persists the task store in a remote key-value service.
//
// Tasks, epics and subtasks are stored as JSON arrays of storage.Record under
// separate keys; the history is a JSON array of ids and the id counter a JSON number.
package kvstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/mtlprog/kanban/internal/domain"
	"github.com/mtlprog/kanban/internal/kv"
	"github.com/mtlprog/kanban/internal/storage"
)

// Keys used in the key-value service.
const (
	KeyTasks    = "tasks"
	KeyEpics    = "epics"
	KeySubtasks = "subtasks"
	KeyHistory  = "history"
	KeyCounter  = "counter"
)

// Store is the subset of kv.Client used by Backend.
type Store interface {
	Save(ctx context.Context, key string, value []byte) error
	Load(ctx context.Context, key string) ([]byte, error)
}

// Backend stores snapshots in a key-value service.
type Backend struct {
	store Store
}

// New creates a Backend on top of store.
func New(store Store) *Backend {
	return &Backend{store: store}
}

// Save writes every key concurrently.
func (b *Backend) Save(ctx context.Context, snap domain.Snapshot) error {
	values := map[string]any{
		KeyTasks:    records(snap.Tasks),
		KeyEpics:    records(snap.Epics),
		KeySubtasks: records(snap.Subtasks),
		KeyHistory:  nonNil(snap.History),
		KeyCounter:  snap.NextID,
	}

	g, ctx := errgroup.WithContext(ctx)
	for key, v := range values {
		data, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("encode %s: %w", key, err)
		}
		g.Go(func() error {
			return b.store.Save(ctx, key, data)
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	slog.Debug("tasks saved to kv", "records", snap.Len(), "history_len", len(snap.History))
	return nil
}

// Load reads every key concurrently. Keys never saved are treated as empty.
func (b *Backend) Load(ctx context.Context) (domain.Snapshot, error) {
	var (
		tasks, epics, subtasks []storage.Record
		history                []int
		nextID                 int
	)
	targets := map[string]any{
		KeyTasks:    &tasks,
		KeyEpics:    &epics,
		KeySubtasks: &subtasks,
		KeyHistory:  &history,
		KeyCounter:  &nextID,
	}

	g, ctx := errgroup.WithContext(ctx)
	for key, target := range targets {
		g.Go(func() error {
			data, err := b.store.Load(ctx, key)
			if errors.Is(err, kv.ErrKeyNotFound) {
				return nil
			}
			if err != nil {
				return err
			}
			if err := json.Unmarshal(data, target); err != nil {
				return fmt.Errorf("%w: key %s: %v", storage.ErrCorrupt, key, err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return domain.Snapshot{}, err
	}

	all := make([]storage.Record, 0, len(tasks)+len(epics)+len(subtasks))
	all = append(all, tasks...)
	all = append(all, epics...)
	all = append(all, subtasks...)

	snap, err := storage.Assemble(all, history)
	if err != nil {
		return domain.Snapshot{}, err
	}
	snap.NextID = nextID

	slog.Info("tasks loaded from kv", "records", snap.Len(), "history_len", len(snap.History))
	return snap, nil
}

func records[E domain.Entity](entities []E) []storage.Record {
	out := make([]storage.Record, 0, len(entities))
	for _, e := range entities {
		out = append(out, storage.FromEntity(e))
	}
	return out
}

func nonNil(ids []int) []int {
	if ids == nil {
		return []int{}
	}
	return ids
}
