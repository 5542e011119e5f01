package repository

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mtlprog/kanban/internal/domain"
	"github.com/mtlprog/kanban/internal/storage"
)

// itemColumns is the shared list of columns for item queries.
var itemColumns = []string{
	"id", "type", "name", "status", "description", "epic_id", "start_time", "duration_ns",
}

// SnapshotRepository persists the task store in PostgreSQL.
type SnapshotRepository struct {
	pool *pgxpool.Pool
}

// NewSnapshotRepository creates a new SnapshotRepository.
func NewSnapshotRepository(pool *pgxpool.Pool) *SnapshotRepository {
	return &SnapshotRepository{pool: pool}
}

// Ping checks that the database is reachable.
func (r *SnapshotRepository) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

// scanItem scans a single row into a Record.
func scanItem(row pgx.Row) (storage.Record, error) {
	var (
		r        storage.Record
		epicID   *int
		start    *time.Time
		duration *int64
	)
	err := row.Scan(
		&r.ID,
		&r.Type,
		&r.Name,
		&r.Status,
		&r.Description,
		&epicID,
		&start,
		&duration,
	)
	if err != nil {
		return storage.Record{}, fmt.Errorf("scan item: %w", err)
	}

	if epicID != nil {
		r.Epic = *epicID
	}
	if start != nil {
		utc := start.UTC()
		r.StartTime = &utc
	}
	if duration != nil {
		r.Duration = storage.FormatDuration(time.Duration(*duration))
	}
	return r, nil
}

// Load reads every item and the history.
func (r *SnapshotRepository) Load(ctx context.Context) (domain.Snapshot, error) {
	query, args, err := psql.
		Select(itemColumns...).
		From("items").
		OrderBy("id").
		ToSql()
	if err != nil {
		return domain.Snapshot{}, fmt.Errorf("build Load query for items: %w", err)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return domain.Snapshot{}, fmt.Errorf("query items: %w", err)
	}
	records, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (storage.Record, error) {
		return scanItem(row)
	})
	if err != nil {
		return domain.Snapshot{}, err
	}

	history, err := r.loadHistory(ctx)
	if err != nil {
		return domain.Snapshot{}, err
	}

	nextID, err := r.loadNextID(ctx)
	if err != nil {
		return domain.Snapshot{}, err
	}

	snap, err := storage.Assemble(records, history)
	if err != nil {
		return domain.Snapshot{}, err
	}
	snap.NextID = nextID

	slog.Info("tasks loaded from database", "records", snap.Len(), "history_len", len(history))
	return snap, nil
}

func (r *SnapshotRepository) loadHistory(ctx context.Context) ([]int, error) {
	query, args, err := psql.
		Select("item_id").
		From("history").
		OrderBy("position").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build Load query for history: %w", err)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[int])
	if err != nil {
		return nil, fmt.Errorf("scan history: %w", err)
	}
	return ids, nil
}

// loadNextID returns the saved id counter, or zero when none was saved.
func (r *SnapshotRepository) loadNextID(ctx context.Context) (int, error) {
	query, args, err := psql.
		Select("next_id").
		From("meta").
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build Load query for meta: %w", err)
	}

	var nextID int
	err = r.pool.QueryRow(ctx, query, args...).Scan(&nextID)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("query meta: %w", err)
	}
	return nextID, nil
}

// Save replaces the stored items, history and id counter in one transaction.
func (r *SnapshotRepository) Save(ctx context.Context, snap domain.Snapshot) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err := tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
			slog.Error("failed to rollback transaction", "error", err)
		}
	}()

	// history rows go with their items via ON DELETE CASCADE
	if _, err := tx.Exec(ctx, "DELETE FROM items"); err != nil {
		return fmt.Errorf("clear items: %w", err)
	}

	if err := insertItems(ctx, tx, storage.Records(snap)); err != nil {
		return err
	}
	if err := insertHistory(ctx, tx, snap.History); err != nil {
		return err
	}
	if err := saveNextID(ctx, tx, snap.NextID); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	slog.Debug("tasks saved to database", "records", snap.Len(), "history_len", len(snap.History))
	return nil
}

func insertItems(ctx context.Context, tx pgx.Tx, records []storage.Record) error {
	for start := 0; start < len(records); start += insertBatchSize {
		end := min(start+insertBatchSize, len(records))

		builder := psql.Insert("items").Columns(itemColumns...)
		for _, rec := range records[start:end] {
			values, err := itemValues(rec)
			if err != nil {
				return err
			}
			builder = builder.Values(values...)
		}

		query, args, err := builder.ToSql()
		if err != nil {
			return fmt.Errorf("build insert query for items: %w", err)
		}
		if _, err := tx.Exec(ctx, query, args...); err != nil {
			return fmt.Errorf("insert items: %w", err)
		}
	}
	return nil
}

func itemValues(rec storage.Record) ([]any, error) {
	var (
		epicID   *int
		duration *int64
	)
	if rec.Epic != 0 {
		epicID = &rec.Epic
	}
	if rec.Duration != "" {
		d, err := storage.ParseDuration(rec.Duration)
		if err != nil {
			return nil, fmt.Errorf("item %d: %w", rec.ID, err)
		}
		ns := int64(d)
		duration = &ns
	}

	return []any{
		rec.ID,
		string(rec.Type),
		rec.Name,
		string(rec.Status),
		rec.Description,
		epicID,
		rec.StartTime,
		duration,
	}, nil
}

func insertHistory(ctx context.Context, tx pgx.Tx, ids []int) error {
	for start := 0; start < len(ids); start += insertBatchSize {
		end := min(start+insertBatchSize, len(ids))

		builder := psql.Insert("history").Columns("position", "item_id")
		for i, id := range ids[start:end] {
			builder = builder.Values(start+i, id)
		}

		query, args, err := builder.ToSql()
		if err != nil {
			return fmt.Errorf("build insert query for history: %w", err)
		}
		if _, err := tx.Exec(ctx, query, args...); err != nil {
			return fmt.Errorf("insert history: %w", err)
		}
	}
	return nil
}

func saveNextID(ctx context.Context, tx pgx.Tx, nextID int) error {
	if nextID <= 0 {
		if _, err := tx.Exec(ctx, "DELETE FROM meta"); err != nil {
			return fmt.Errorf("clear meta: %w", err)
		}
		return nil
	}

	query, args, err := psql.
		Insert("meta").
		Columns("singleton", "next_id").
		Values(true, nextID).
		Suffix("ON CONFLICT (singleton) DO UPDATE SET next_id = EXCLUDED.next_id").
		ToSql()
	if err != nil {
		return fmt.Errorf("build upsert query for meta: %w", err)
	}
	if _, err := tx.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("save next id: %w", err)
	}
	return nil
}
