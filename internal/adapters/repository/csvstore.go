package repository

import (
	"bufio"
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/okian/matchdesk/internal/domain/matching"
	"github.com/okian/matchdesk/internal/domain/model"
	"github.com/okian/matchdesk/internal/domain/types"
	"github.com/okian/matchdesk/pkg/logger"
	"github.com/okian/matchdesk/pkg/metrics"
)

// Store operation names used in logs and metrics.
const (
	opLoad       = "load"
	opInitialize = "initialize"
	opAppend     = "append"
	opRemove     = "remove"
	opExport     = "export"
)

const nanosecondsPerMillisecond = 1e6

// CSVStore keeps the assignment table in a CSV file at path. When an export
// path is set, every successful write is mirrored to an indented JSON array
// of types.Record.
type CSVStore struct {
	path       string
	exportPath string
	fileMode   os.FileMode
	logger     logger.Logger
}

var _ Store = (*CSVStore)(nil)

// NewCSVStore returns a store backed by the CSV file at path. The file is not
// touched until the first call.
func NewCSVStore(path string, opts ...Option) *CSVStore {
	s := &CSVStore{
		path:     path,
		fileMode: 0o644,
		logger:   logger.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Path returns the CSV file location.
func (s *CSVStore) Path() string { return s.path }

// ExportPath returns the JSON mirror location, empty when disabled.
func (s *CSVStore) ExportPath() string { return s.exportPath }

// Exists reports whether the store file is present.
func (s *CSVStore) Exists(_ context.Context) (bool, error) {
	_, err := os.Stat(s.path)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	return false, err
}

// Load reads every row in file order.
func (s *CSVStore) Load(ctx context.Context) (entries []model.Assignment, err error) {
	defer s.observe(opLoad, time.Now(), &err)

	entries, err = s.read(ctx)
	if err != nil {
		return nil, err
	}
	metrics.UpdateStoreRows(len(entries))
	return entries, nil
}

// Initialize writes entries as a new store and mirrors them to the export.
// A failed export is reported as ErrExportFailed after the store is written.
func (s *CSVStore) Initialize(ctx context.Context, entries []model.Assignment) (err error) {
	defer s.observe(opInitialize, time.Now(), &err)

	exists, err := s.Exists(ctx)
	if err != nil {
		return err
	}
	if exists {
		return fmt.Errorf("%w: %s", ErrStoreExists, s.path)
	}

	if err := s.write(ctx, entries); err != nil {
		return err
	}
	s.logger.Info(ctx, "assignment store initialized",
		logger.String("path", s.path),
		logger.Int("rows", len(entries)),
	)
	return s.export(ctx, entries)
}

// Append merges entries by demand id into the stored rows. Demands already
// stored gain the new professionals; others are appended in order.
func (s *CSVStore) Append(ctx context.Context, entries []model.Assignment) (stats matching.Stats, err error) {
	defer s.observe(opAppend, time.Now(), &err)

	current, err := s.read(ctx)
	if err != nil {
		return matching.Stats{}, err
	}

	merged, stats := matching.Merge(current, entries)
	if stats.Added == 0 && stats.Merged == 0 {
		return stats, nil
	}

	if err := s.write(ctx, merged); err != nil {
		return matching.Stats{}, err
	}
	s.logger.Info(ctx, "assignments appended",
		logger.String("path", s.path),
		logger.Int("added", stats.Added),
		logger.Int("merged", stats.Merged),
		logger.Int("rows", len(merged)),
	)
	return stats, s.export(ctx, merged)
}

// Remove drops every row for which match returns true.
func (s *CSVStore) Remove(ctx context.Context, match func(model.Assignment) bool) (removed int, err error) {
	defer s.observe(opRemove, time.Now(), &err)

	current, err := s.read(ctx)
	if err != nil {
		return 0, err
	}

	kept := make([]model.Assignment, 0, len(current))
	for _, a := range current {
		if match(a) {
			removed++
			continue
		}
		kept = append(kept, a)
	}
	if removed == 0 {
		return 0, nil
	}

	if err := s.write(ctx, kept); err != nil {
		return 0, err
	}
	s.logger.Info(ctx, "assignments removed",
		logger.String("path", s.path),
		logger.Int("removed", removed),
		logger.Int("rows", len(kept)),
	)
	return removed, s.export(ctx, kept)
}

func (s *CSVStore) read(ctx context.Context) ([]model.Assignment, error) {
	f, err := os.Open(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrStoreNotFound, s.path)
	}
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	entries, err := decodeTable(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", s.path, err)
	}
	return entries, nil
}

func (s *CSVStore) write(ctx context.Context, entries []model.Assignment) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := writeFileAtomic(s.path, s.fileMode, func(w *bufio.Writer) error {
		return encodeTable(w, entries)
	})
	if err != nil {
		return fmt.Errorf("write %s: %w", s.path, err)
	}
	metrics.UpdateStoreRows(len(entries))
	return nil
}

// export mirrors entries to the JSON file, if configured.
func (s *CSVStore) export(ctx context.Context, entries []model.Assignment) (err error) {
	if s.exportPath == "" {
		return nil
	}
	defer s.observe(opExport, time.Now(), &err)

	err = writeFileAtomic(s.exportPath, s.fileMode, func(w *bufio.Writer) error {
		data, err := json.MarshalIndent(types.FromAssignments(entries), "", "  ")
		if err != nil {
			return err
		}
		if _, err := w.Write(data); err != nil {
			return err
		}
		return w.WriteByte('\n')
	})
	if err != nil {
		s.logger.Warn(ctx, "structured export failed",
			logger.String("path", s.exportPath),
			logger.Error(err),
		)
		return fmt.Errorf("%w: %s: %w", ErrExportFailed, s.exportPath, err)
	}
	metrics.RecordExportWrite()
	return nil
}

func (s *CSVStore) observe(op string, start time.Time, errp *error) {
	latency := float64(time.Since(start).Nanoseconds()) / nanosecondsPerMillisecond
	metrics.RecordStoreOperation(op, *errp, latency)
	if *errp != nil {
		metrics.RecordErrorByComponent("repository", errorType(*errp))
	}
}

func errorType(err error) string {
	switch {
	case errors.Is(err, ErrStoreNotFound):
		return "store_not_found"
	case errors.Is(err, ErrStoreExists):
		return "store_exists"
	case errors.Is(err, ErrCorruptStore):
		return "corrupt_store"
	case errors.Is(err, ErrExportFailed):
		return "export_failed"
	default:
		return "io"
	}
}

func encodeTable(w io.Writer, entries []model.Assignment) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Columns); err != nil {
		return err
	}
	for _, a := range entries {
		row, err := encodeRow(a)
		if err != nil {
			return fmt.Errorf("demand %s: %w", a.DemandID, err)
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func decodeTable(ctx context.Context, r io.Reader) ([]model.Assignment, error) {
	cr := csv.NewReader(r)

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: missing header", ErrCorruptStore)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: header: %w", ErrCorruptStore, err)
	}

	col := make(map[string]int, len(header))
	for i, h := range header {
		col[strings.TrimSpace(h)] = i
	}
	for _, name := range Columns {
		if _, ok := col[name]; !ok {
			return nil, fmt.Errorf("%w: missing column %s", ErrCorruptStore, name)
		}
	}

	entries := make([]model.Assignment, 0)
	for line := 2; ; line++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return entries, nil
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrCorruptStore, err)
		}
		a, err := decodeRow(row, col)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %w", ErrCorruptStore, line, err)
		}
		entries = append(entries, a)
	}
}
