// Package csvfile persists the task store in a single delimited text file.
//
// Layout: a header row, one row per record (tasks, then epics, then
// subtasks), a blank line, a line with the history ids from least to most
// recent, and a last line holding the next id to assign.
package csvfile

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/mtlprog/kanban/internal/domain"
	"github.com/mtlprog/kanban/internal/storage"
)

const bom = "\uFEFF"

var header = []string{"id", "type", "name", "status", "description", "epic", "startTime", "duration"}

// Backend stores snapshots in a file.
type Backend struct {
	path string
}

// New creates a Backend writing to path.
func New(path string) *Backend {
	return &Backend{path: path}
}

// Path returns the file path.
func (b *Backend) Path() string {
	return b.path
}

// Load reads the file. A missing file yields an empty snapshot.
func (b *Backend) Load(ctx context.Context) (domain.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return domain.Snapshot{}, err
	}

	data, err := os.ReadFile(b.path)
	if errors.Is(err, fs.ErrNotExist) {
		slog.Info("no saved tasks yet", "path", b.path)
		return domain.Snapshot{}, nil
	}
	if err != nil {
		return domain.Snapshot{}, fmt.Errorf("read %s: %w", b.path, err)
	}

	snap, err := Decode(data)
	if err != nil {
		return domain.Snapshot{}, fmt.Errorf("decode %s: %w", b.path, err)
	}

	slog.Info("tasks loaded from file",
		"path", b.path,
		"records", snap.Len(),
		"history_len", len(snap.History),
	)
	return snap, nil
}

// Save writes snap to a temporary file and renames it over the target.
func (b *Backend) Save(ctx context.Context, snap domain.Snapshot) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := Encode(snap)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(b.path), filepath.Base(b.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer func() {
		if err := os.Remove(tmp.Name()); err != nil && !errors.Is(err, fs.ErrNotExist) {
			slog.Error("failed to remove temp file", "path", tmp.Name(), "error", err)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), b.path); err != nil {
		return fmt.Errorf("replace %s: %w", b.path, err)
	}

	slog.Debug("tasks saved to file", "path", b.path, "records", snap.Len())
	return nil
}

// Encode renders snap in the file layout.
func Encode(snap domain.Snapshot) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(bom)

	w := csv.NewWriter(&buf)
	if err := w.Write(header); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}
	for _, r := range storage.Records(snap) {
		if err := w.Write(row(r)); err != nil {
			return nil, fmt.Errorf("write record %d: %w", r.ID, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flush records: %w", err)
	}

	buf.WriteByte('\n')
	ids := make([]string, len(snap.History))
	for i, id := range snap.History {
		ids[i] = strconv.Itoa(id)
	}
	buf.WriteString(strings.Join(ids, ","))
	buf.WriteByte('\n')
	if snap.NextID > 0 {
		buf.WriteString(strconv.Itoa(snap.NextID))
		buf.WriteByte('\n')
	}

	return buf.Bytes(), nil
}

// Decode parses data produced by Encode.
func Decode(data []byte) (domain.Snapshot, error) {
	data = bytes.TrimPrefix(data, []byte(bom))

	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = len(header)

	first, err := r.Read()
	if err != nil {
		return domain.Snapshot{}, fmt.Errorf("%w: missing header: %v", storage.ErrCorrupt, err)
	}
	if strings.Join(first, ",") != strings.Join(header, ",") {
		return domain.Snapshot{}, fmt.Errorf("%w: unexpected header %q", storage.ErrCorrupt, first)
	}

	var records []storage.Record
	rest := data[r.InputOffset():]
	for !blankLineAhead(rest) {
		fields, err := r.Read()
		if err != nil {
			return domain.Snapshot{}, fmt.Errorf("%w: %v", storage.ErrCorrupt, err)
		}
		rec, err := parseRow(fields)
		if err != nil {
			line, _ := r.FieldPos(0)
			return domain.Snapshot{}, fmt.Errorf("line %d: %w", line, err)
		}
		records = append(records, rec)
		rest = data[r.InputOffset():]
	}

	history, nextID, err := parseTrailer(rest)
	if err != nil {
		return domain.Snapshot{}, err
	}

	snap, err := storage.Assemble(records, history)
	if err != nil {
		return domain.Snapshot{}, err
	}
	snap.NextID = nextID
	return snap, nil
}

// blankLineAhead reports whether the record section has ended.
func blankLineAhead(rest []byte) bool {
	return len(rest) == 0 || rest[0] == '\n' || bytes.HasPrefix(rest, []byte("\r\n"))
}

// parseTrailer reads the history line and the optional counter line that follow the blank line.
func parseTrailer(rest []byte) ([]int, int, error) {
	text := strings.ReplaceAll(string(rest), "\r\n", "\n")
	text = strings.TrimRight(strings.TrimPrefix(text, "\n"), "\n")
	lines := strings.Split(text, "\n")
	if len(lines) > 2 {
		return nil, 0, fmt.Errorf("%w: unexpected content after history", storage.ErrCorrupt)
	}

	history, err := parseHistory(lines[0])
	if err != nil {
		return nil, 0, err
	}

	var nextID int
	if len(lines) == 2 {
		nextID, err = strconv.Atoi(strings.TrimSpace(lines[1]))
		if err != nil || nextID < 1 {
			return nil, 0, fmt.Errorf("%w: next id %q", storage.ErrCorrupt, lines[1])
		}
	}
	return history, nextID, nil
}

func parseHistory(line string) ([]int, error) {
	line = strings.TrimSpace(line)
	if line == "" {
		return nil, nil
	}

	parts := strings.Split(line, ",")
	ids := make([]int, 0, len(parts))
	for _, p := range parts {
		id, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return nil, fmt.Errorf("%w: history id %q", storage.ErrCorrupt, p)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func row(r storage.Record) []string {
	epic, start := "", ""
	if r.Epic != 0 {
		epic = strconv.Itoa(r.Epic)
	}
	if r.StartTime != nil {
		start = r.StartTime.Format(time.RFC3339Nano)
	}
	return []string{
		strconv.Itoa(r.ID),
		string(r.Type),
		r.Name,
		string(r.Status),
		r.Description,
		epic,
		start,
		r.Duration,
	}
}

func parseRow(fields []string) (storage.Record, error) {
	id, err := strconv.Atoi(fields[0])
	if err != nil {
		return storage.Record{}, fmt.Errorf("%w: id %q", storage.ErrCorrupt, fields[0])
	}

	r := storage.Record{
		ID:          id,
		Type:        domain.Kind(fields[1]),
		Name:        fields[2],
		Status:      domain.TaskStatus(fields[3]),
		Description: fields[4],
		Duration:    fields[7],
	}

	if fields[5] != "" {
		epic, err := strconv.Atoi(fields[5])
		if err != nil {
			return storage.Record{}, fmt.Errorf("%w: epic %q", storage.ErrCorrupt, fields[5])
		}
		r.Epic = epic
	}
	if fields[6] != "" {
		start, err := time.Parse(time.RFC3339Nano, fields[6])
		if err != nil {
			return storage.Record{}, fmt.Errorf("%w: start time %q", storage.ErrCorrupt, fields[6])
		}
		r.StartTime = &start
	}
	return r, nil
}
