// Package reconcile applies deduplicated records to a record store: create what is new,
// update what changed, and leave identical records alone.
package reconcile

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/okian/scalesync/internal/domain/model"
	"github.com/okian/scalesync/pkg/logger"
	"github.com/okian/scalesync/pkg/metrics"
)

// DefaultEpsilon is the tolerance under which two numeric readings are equal.
const DefaultEpsilon = 0.0001

// Store is the persistence the reconciler needs.
type Store interface {
	// FindByDate returns the record stored for the calendar date of t, or nil, nil.
	FindByDate(ctx context.Context, t time.Time) (*model.StoredRecord, error)
	Create(ctx context.Context, rec model.Record) (model.StoredRecord, error)
	Update(ctx context.Context, id string, rec model.Record) (model.StoredRecord, error)
}

// Outcome is what happened to one record.
type Outcome int

// Outcomes.
const (
	Errored Outcome = iota
	Created
	Updated
	Skipped
)

func (o Outcome) String() string {
	switch o {
	case Created:
		return metrics.OutcomeCreated
	case Updated:
		return metrics.OutcomeUpdated
	case Skipped:
		return metrics.OutcomeSkipped
	default:
		return metrics.OutcomeStoreError
	}
}

// Counts tallies outcomes of one run.
type Counts struct {
	Created int
	Updated int
	Skipped int
	Errors  int
}

// Reconciler writes records through a Store.
type Reconciler struct {
	store       Store
	epsilon     float64
	concurrency int
	logger      logger.Logger
}

// Option applies a configuration option to the Reconciler.
type Option func(*Reconciler)

// WithEpsilon sets the equality tolerance. Negative values are ignored.
func WithEpsilon(eps float64) Option {
	return func(r *Reconciler) {
		if eps >= 0 {
			r.epsilon = eps
		}
	}
}

// WithConcurrency processes up to n dates at once. n <= 1 keeps processing sequential.
func WithConcurrency(n int) Option {
	return func(r *Reconciler) {
		if n > 0 {
			r.concurrency = n
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(r *Reconciler) {
		if l != nil {
			r.logger = l
		}
	}
}

// New creates a Reconciler over store.
func New(store Store, opts ...Option) *Reconciler {
	r := &Reconciler{
		store:       store,
		epsilon:     DefaultEpsilon,
		concurrency: 1,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run reconciles records, which must carry distinct dates. Store failures are logged and
// counted; processing continues. The returned slice holds the persisted form of every
// record that did not error, in input order.
func (r *Reconciler) Run(ctx context.Context, records []model.Record) ([]model.StoredRecord, Counts) {
	if ctx == nil {
		ctx = context.Background()
	}

	results := make([]model.StoredRecord, len(records))
	outcomes := make([]Outcome, len(records))

	if r.concurrency <= 1 {
		for i, rec := range records {
			results[i], outcomes[i] = r.apply(ctx, rec)
		}
	} else {
		// Each goroutine owns one index; dates are distinct so no two touch the same row.
		var g errgroup.Group
		g.SetLimit(r.concurrency)
		for i, rec := range records {
			g.Go(func() error {
				results[i], outcomes[i] = r.apply(ctx, rec)
				return nil
			})
		}
		_ = g.Wait() // apply never returns an error to the group
	}

	var c Counts
	persisted := make([]model.StoredRecord, 0, len(records))
	for i, o := range outcomes {
		switch o {
		case Created:
			c.Created++
		case Updated:
			c.Updated++
		case Skipped:
			c.Skipped++
		default:
			c.Errors++
			continue
		}
		persisted = append(persisted, results[i])
	}

	metrics.AddRecordOutcome(metrics.OutcomeCreated, c.Created)
	metrics.AddRecordOutcome(metrics.OutcomeUpdated, c.Updated)
	metrics.AddRecordOutcome(metrics.OutcomeSkipped, c.Skipped)
	metrics.AddRecordOutcome(metrics.OutcomeStoreError, c.Errors)
	return persisted, c
}

// apply handles one record.
func (r *Reconciler) apply(ctx context.Context, rec model.Record) (model.StoredRecord, Outcome) {
	existing, err := r.find(ctx, rec)
	if err != nil {
		r.fail(ctx, "find", rec, err)
		return model.StoredRecord{}, Errored
	}

	if existing == nil {
		created, err := r.create(ctx, rec)
		if err != nil {
			r.fail(ctx, "create", rec, err)
			return model.StoredRecord{}, Errored
		}
		return created, Created
	}

	if model.EqualWithin(existing.Record, rec, r.epsilon) {
		return *existing, Skipped
	}

	updated, err := r.update(ctx, existing.ID, rec)
	if err != nil {
		r.fail(ctx, "update", rec, err)
		return model.StoredRecord{}, Errored
	}
	return updated, Updated
}

func (r *Reconciler) find(ctx context.Context, rec model.Record) (*model.StoredRecord, error) {
	start := time.Now()
	defer func() { metrics.RecordStoreLatency("find", elapsedMs(start)) }()
	return r.store.FindByDate(ctx, rec.Date)
}

func (r *Reconciler) create(ctx context.Context, rec model.Record) (model.StoredRecord, error) {
	start := time.Now()
	defer func() { metrics.RecordStoreLatency("create", elapsedMs(start)) }()
	return r.store.Create(ctx, rec)
}

func (r *Reconciler) update(ctx context.Context, id string, rec model.Record) (model.StoredRecord, error) {
	start := time.Now()
	defer func() { metrics.RecordStoreLatency("update", elapsedMs(start)) }()
	return r.store.Update(ctx, id, rec)
}

func (r *Reconciler) fail(ctx context.Context, op string, rec model.Record, err error) {
	metrics.RecordStoreError(op)
	if r.logger != nil {
		r.logger.Error(ctx, "store operation failed",
			logger.String("op", op),
			logger.String("date", rec.Key()),
			logger.Error(err))
	}
}

func elapsedMs(start time.Time) float64 {
	return float64(time.Since(start).Microseconds()) / 1000
}
