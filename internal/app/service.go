// Package service provides the core business service that implements
// the dependencies required by the HTTP API and the import CLI.
package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/okian/scalesync/internal/adapters/export"
	"github.com/okian/scalesync/internal/adapters/repository"
	"github.com/okian/scalesync/internal/domain/completeness"
	"github.com/okian/scalesync/internal/domain/format"
	"github.com/okian/scalesync/internal/domain/ingest"
	"github.com/okian/scalesync/internal/domain/model"
	"github.com/okian/scalesync/internal/domain/reconcile"
	"github.com/okian/scalesync/internal/domain/types"
	"github.com/okian/scalesync/pkg/logger"
	"github.com/okian/scalesync/pkg/metrics"
)

// ErrNotStarted is returned by operations called before Start.
var ErrNotStarted = errors.New("service not started")

// statusRejected labels an import refused before any row was processed.
const statusRejected = "rejected"

// ImportResult is the outcome of one import.
type ImportResult struct {
	Format     format.Kind
	Result     model.RunResult
	Records    []model.StoredRecord
	Misaligned []int
}

// Status reports completed or completed_with_warnings.
func (r ImportResult) Status() string {
	if r.Result.HasWarnings() {
		return types.StatusCompletedWithWarnings
	}
	return types.StatusCompleted
}

// Service implements the API dependencies for the record series.
type Service struct {
	mu sync.RWMutex

	// Core components
	store      repository.Store
	pipeline   *ingest.Pipeline
	reconciler *reconcile.Reconciler

	// Configuration
	storeDriver   string
	storeDSN      string
	epsilon       float64
	concurrency   int
	rawMissing    int
	preMissing    int
	preZero       int
	injectedStore bool

	// State
	started    bool
	imports    int
	lastResult model.RunResult
	lastAt     time.Time

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithStore uses an already opened store instead of opening one on Start.
// The caller owns it: Stop leaves it open and Start may run again on it.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
			s.injectedStore = true
		}
	}
}

// WithStoreDriver selects the store opened on Start.
func WithStoreDriver(driver, dsn string) Option {
	return func(s *Service) {
		if driver != "" {
			s.storeDriver = driver
			s.storeDSN = dsn
		}
	}
}

// WithEpsilon sets the tolerance under which readings count as unchanged.
func WithEpsilon(eps float64) Option {
	return func(s *Service) {
		if eps >= 0 {
			s.epsilon = eps
		}
	}
}

// WithConcurrency sets how many dates are reconciled at once.
func WithConcurrency(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.concurrency = n
		}
	}
}

// WithCompletenessTolerances sets how many readings a row may lack and still be imported.
func WithCompletenessTolerances(rawMissing, preprocessedMissing, preprocessedZero int) Option {
	return func(s *Service) {
		s.rawMissing = rawMissing
		s.preMissing = preprocessedMissing
		s.preZero = preprocessedZero
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		storeDriver: repository.DriverMemory,
		epsilon:     reconcile.DefaultEpsilon,
		concurrency: 1,
		rawMissing:  completeness.DefaultRawMissing,
		preMissing:  completeness.DefaultPreprocessedMissing,
		preZero:     completeness.DefaultPreprocessedZero,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start opens the store and builds the pipeline.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	if s.logger == nil {
		s.logger = logger.Get()
	}

	s.logger.Info(ctx, "starting scalesync service...")

	if s.store == nil {
		store, err := repository.Open(ctx, s.storeDriver, s.storeDSN)
		if err != nil {
			return fmt.Errorf("open %s store: %w", s.storeDriver, err)
		}
		s.store = store
	}

	s.pipeline = ingest.New(
		ingest.WithFilter(completeness.New(
			completeness.WithRawMissing(s.rawMissing),
			completeness.WithPreprocessedMissing(s.preMissing),
			completeness.WithPreprocessedZero(s.preZero),
		)),
	)
	s.reconciler = reconcile.New(s.store,
		reconcile.WithEpsilon(s.epsilon),
		reconcile.WithConcurrency(s.concurrency),
		reconcile.WithLogger(s.logger.Named("reconcile")),
	)

	if n, err := s.store.Count(ctx); err == nil {
		metrics.UpdateStoredRecords(n)
	}

	s.started = true
	s.logger.Info(ctx, "scalesync service started",
		logger.String("store", s.driverName()),
		logger.Float64("epsilon", s.epsilon),
		logger.Int("concurrency", s.concurrency),
	)

	return nil
}

// Stop closes the store the service opened. A store passed with WithStore is left open.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	s.logger.Info(context.Background(), "stopping scalesync service...")

	// An injected store belongs to the caller and stays open for a later Start.
	if s.store != nil && !s.injectedStore {
		if err := s.store.Close(); err != nil {
			s.logger.Warn(context.Background(), "close store", logger.Error(err))
		}
		s.store = nil
	}

	s.started = false
	s.logger.Info(context.Background(), "scalesync service stopped")
}

// components returns the running components or ErrNotStarted.
func (s *Service) components() (repository.Store, *ingest.Pipeline, *reconcile.Reconciler, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return nil, nil, nil, ErrNotStarted
	}
	return s.store, s.pipeline, s.reconciler, nil
}

// Import parses text and reconciles it into the store. The only error is an
// unrecognized format, which wraps format.ErrUnrecognizedFormat; nothing is written then.
func (s *Service) Import(ctx context.Context, text string) (ImportResult, error) {
	store, pipeline, reconciler, err := s.components()
	if err != nil {
		return ImportResult{}, err
	}
	start := time.Now()

	batch, err := pipeline.Parse(text)
	if err != nil {
		metrics.RecordImportRun(statusRejected)
		s.logger.Warn(ctx, "import rejected", logger.Error(err))
		return ImportResult{}, err
	}

	if len(batch.Misaligned) > 0 {
		s.logger.Warn(ctx, "rows with unexpected cell count",
			logger.Int("count", len(batch.Misaligned)),
			logger.Any("lines", batch.Misaligned),
		)
	}
	metrics.AddRowsParsed(batch.Total)
	metrics.AddRowsMisaligned(len(batch.Misaligned))
	metrics.AddRecordOutcome(metrics.OutcomeInvalid, batch.Invalid)
	metrics.AddRecordOutcome(metrics.OutcomeFiltered, batch.Filtered)
	metrics.AddRecordOutcome(metrics.OutcomeDuplicate, batch.Duplicates)

	persisted, counts := reconciler.Run(ctx, batch.Records)

	res := ImportResult{
		Format:     batch.Kind,
		Result:     batch.Result(),
		Records:    persisted,
		Misaligned: batch.Misaligned,
	}
	res.Result.Created = counts.Created
	res.Result.Updated = counts.Updated
	res.Result.Skipped = counts.Skipped
	res.Result.Errors = counts.Errors

	elapsed := time.Since(start)
	metrics.RecordImportRun(res.Status())
	metrics.RecordImportDuration(float64(elapsed.Microseconds()) / 1000)
	if n, err := store.Count(ctx); err == nil {
		metrics.UpdateStoredRecords(n)
	}

	s.mu.Lock()
	s.imports++
	s.lastResult = res.Result
	s.lastAt = time.Now().UTC()
	s.mu.Unlock()

	s.logger.Info(ctx, "import finished",
		logger.String("format", batch.Kind.String()),
		logger.String("status", res.Status()),
		logger.Int("total", res.Result.Total),
		logger.Int("created", res.Result.Created),
		logger.Int("updated", res.Result.Updated),
		logger.Int("skipped", res.Result.Skipped),
		logger.Int("invalid", res.Result.InvalidRecords),
		logger.Int("errors", res.Result.Errors),
		logger.Int("filtered", res.Result.Filtered),
		logger.Int("duplicates", res.Result.Duplicates),
		logger.Duration("elapsed", elapsed),
	)
	return res, nil
}

// Records returns stored records within [from, to]; zero bounds are open.
func (s *Service) Records(ctx context.Context, from, to time.Time) ([]model.StoredRecord, error) {
	store, _, _, err := s.components()
	if err != nil {
		return nil, err
	}
	return store.List(ctx, from, to)
}

// Export writes stored records within [from, to] to w in the given format.
func (s *Service) Export(ctx context.Context, w io.Writer, exportFormat string, from, to time.Time) error {
	records, err := s.Records(ctx, from, to)
	if err != nil {
		return err
	}
	return export.Write(w, exportFormat, records)
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]interface{}{
		"started":     s.started,
		"store":       s.driverName(),
		"epsilon":     s.epsilon,
		"concurrency": s.concurrency,
		"imports":     s.imports,
	}

	if s.started {
		if n, err := s.store.Count(context.Background()); err == nil {
			stats["totalRecords"] = n
			metrics.UpdateStoredRecords(n)
		}
	}
	if s.imports > 0 {
		stats["lastImport"] = s.lastResult
		stats["lastImportAt"] = s.lastAt.Format(time.RFC3339)
	}

	return stats
}

func (s *Service) driverName() string {
	if s.injectedStore {
		return "custom"
	}
	return s.storeDriver
}
