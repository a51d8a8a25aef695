// Package service implements the matching and lifecycle operations behind
// the interactive session: bootstrapping the assignment store, ingesting new
// sources, retiring completed demands and read-only queries.
package service

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/google/uuid"

	"github.com/okian/matchdesk/internal/adapters/repository"
	"github.com/okian/matchdesk/internal/adapters/source"
	"github.com/okian/matchdesk/internal/domain/matching"
	"github.com/okian/matchdesk/internal/domain/model"
	"github.com/okian/matchdesk/internal/domain/selector"
	"github.com/okian/matchdesk/pkg/logger"
	"github.com/okian/matchdesk/pkg/metrics"
)

// DefaultStorePath is used when no store is supplied.
const DefaultStorePath = "database.csv"

// Query outcomes reported to metrics.
const (
	outcomeFound    = "found"
	outcomeNotFound = "not_found"
	outcomeEmpty    = "empty"
	outcomeError    = "error"
)

// Service owns the assignment store for one session.
type Service struct {
	store     repository.Store
	sessionID string
	logger    logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithStore sets the assignment store.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithSessionID tags every log entry with the given session id.
func WithSessionID(id string) Option {
	return func(s *Service) {
		if id != "" {
			s.sessionID = id
		}
	}
}

// New constructs a Service. Without WithStore it uses a CSV store at
// DefaultStorePath; without WithLogger it logs nowhere.
func New(opts ...Option) *Service {
	s := &Service{
		sessionID: uuid.NewString(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.Nop()
	}
	s.logger = s.logger.Named("service").With(logger.String("session", s.sessionID))
	if s.store == nil {
		s.store = repository.NewCSVStore(DefaultStorePath, repository.WithLogger(s.logger))
	}
	return s
}

// SessionID returns the id attached to this service's log entries.
func (s *Service) SessionID() string { return s.sessionID }

// Result describes one ingestion batch.
type Result struct {
	BatchID       string
	Professionals int
	Demands       int
	Stats         matching.Stats
}

// Ready reports whether the assignment store has been initialized.
func (s *Service) Ready(ctx context.Context) (bool, error) {
	return s.store.Exists(ctx)
}

// Bootstrap creates the store from the professionals and demands files. It
// fails with repository.ErrStoreExists when a store is already present.
func (s *Service) Bootstrap(ctx context.Context, professionalsPath, demandsPath string) (Result, error) {
	res, entries, err := s.match(ctx, professionalsPath, demandsPath)
	if err != nil {
		return Result{}, err
	}

	if err := s.tolerateExport(ctx, s.store.Initialize(ctx, entries)); err != nil {
		s.logger.Error(ctx, "bootstrap failed", logger.String("batch", res.BatchID), logger.Error(err))
		return Result{}, fmt.Errorf("initialize store: %w", err)
	}
	metrics.RecordMatch(res.Stats.Pairs, res.Stats.Added, res.Stats.Merged)

	s.logger.Info(ctx, "store bootstrapped",
		logger.String("batch", res.BatchID),
		logger.Int("rows", len(entries)),
		logger.Int("merged", res.Stats.Merged),
	)
	return res, nil
}

// Ingest matches a further pair of source files and merges the result into
// the store. Demands already stored gain the new professionals; unknown
// demands are appended.
func (s *Service) Ingest(ctx context.Context, professionalsPath, demandsPath string) (Result, error) {
	res, entries, err := s.match(ctx, professionalsPath, demandsPath)
	if err != nil {
		return Result{}, err
	}

	stats, err := s.store.Append(ctx, entries)
	if err = s.tolerateExport(ctx, err); err != nil {
		s.logger.Error(ctx, "ingestion failed", logger.String("batch", res.BatchID), logger.Error(err))
		return Result{}, fmt.Errorf("append to store: %w", err)
	}
	stats.Pairs = res.Stats.Pairs
	res.Stats = stats
	metrics.RecordMatch(stats.Pairs, stats.Added, stats.Merged)

	s.logger.Info(ctx, "sources ingested",
		logger.String("batch", res.BatchID),
		logger.Int("added", stats.Added),
		logger.Int("merged", stats.Merged),
		logger.Int("unchanged", stats.Unchanged),
	)
	return res, nil
}

func (s *Service) match(ctx context.Context, professionalsPath, demandsPath string) (Result, []model.Assignment, error) {
	res := Result{BatchID: uuid.NewString()}

	professionals, err := source.LoadProfessionals(ctx, professionalsPath)
	if err != nil {
		metrics.RecordErrorByComponent("source", sourceErrorType(err))
		return Result{}, nil, err
	}
	demands, err := source.LoadDemands(ctx, demandsPath)
	if err != nil {
		metrics.RecordErrorByComponent("source", sourceErrorType(err))
		return Result{}, nil, err
	}
	metrics.RecordSourceRecords("professionals", len(professionals))
	metrics.RecordSourceRecords("demands", len(demands))
	res.Professionals, res.Demands = len(professionals), len(demands)

	entries, stats, err := matching.Match(ctx, professionals, demands)
	if err != nil {
		return Result{}, nil, err
	}
	res.Stats = stats

	s.logger.Debug(ctx, "sources matched",
		logger.String("batch", res.BatchID),
		logger.Int("professionals", len(professionals)),
		logger.Int("demands", len(demands)),
		logger.Int("pairs", stats.Pairs),
		logger.Int("entries", len(entries)),
	)
	return res, entries, nil
}

// tolerateExport downgrades a failed structured export to a warning; the
// tabular store has already been written when it is reported.
func (s *Service) tolerateExport(ctx context.Context, err error) error {
	if errors.Is(err, repository.ErrExportFailed) {
		s.logger.Warn(ctx, "store written without structured export", logger.Error(err))
		return nil
	}
	return err
}

// Retire removes every row picked by sel and returns how many were removed.
// ErrNoMatchFound is returned when no row is picked.
func (s *Service) Retire(ctx context.Context, sel selector.Selector) (int, error) {
	removed, err := s.store.Remove(ctx, sel.Match)
	if err = s.tolerateExport(ctx, err); err != nil {
		s.logger.Error(ctx, "retire failed", logger.String("selector", sel.String()), logger.Error(err))
		return 0, fmt.Errorf("retire by %s: %w", sel.Kind(), err)
	}
	if removed == 0 {
		return 0, fmt.Errorf("retire by %s: %w", sel, ErrNoMatchFound)
	}
	metrics.RecordRetired(sel.Kind().String(), removed)

	s.logger.Info(ctx, "assignments retired",
		logger.String("selector", sel.String()),
		logger.Int("removed", removed),
	)
	return removed, nil
}

// All returns every stored row in stored order.
func (s *Service) All(ctx context.Context) ([]model.Assignment, error) {
	return s.query(ctx, "all", nil)
}

// ByProfessional returns the rows assigned to name, alone or among others.
func (s *Service) ByProfessional(ctx context.Context, name string) ([]model.Assignment, error) {
	return s.query(ctx, "professional", selector.ByProfessional(name))
}

// ByID returns the row for a demand id.
func (s *Service) ByID(ctx context.Context, id model.ID) ([]model.Assignment, error) {
	return s.query(ctx, "id", selector.ByID(id))
}

// ByDueDate returns every row sorted by due date. Rows sharing a date keep
// their stored order.
func (s *Service) ByDueDate(ctx context.Context) ([]model.Assignment, error) {
	rows, err := s.query(ctx, "due_date", nil)
	if err != nil {
		return nil, err
	}
	slices.SortStableFunc(rows, func(a, b model.Assignment) int {
		return strings.Compare(a.DueDate, b.DueDate)
	})
	return rows, nil
}

func (s *Service) query(ctx context.Context, kind string, sel selector.Selector) ([]model.Assignment, error) {
	rows, err := s.store.Load(ctx)
	if err != nil {
		metrics.RecordQuery(kind, outcomeError)
		return nil, err
	}
	if len(rows) == 0 {
		metrics.RecordQuery(kind, outcomeEmpty)
		return nil, ErrEmptyStore
	}
	if sel == nil {
		metrics.RecordQuery(kind, outcomeFound)
		return rows, nil
	}

	out := make([]model.Assignment, 0)
	for _, a := range rows {
		if sel.Match(a) {
			out = append(out, a)
		}
	}
	if len(out) == 0 {
		metrics.RecordQuery(kind, outcomeNotFound)
		return nil, fmt.Errorf("%s: %w", sel, ErrNoMatchFound)
	}
	metrics.RecordQuery(kind, outcomeFound)
	return out, nil
}

func sourceErrorType(err error) string {
	switch {
	case errors.Is(err, source.ErrMissingColumn):
		return "missing_column"
	case errors.Is(err, source.ErrSourceUnreadable):
		return "unreadable"
	default:
		return "io"
	}
}
