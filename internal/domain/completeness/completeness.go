// Package completeness drops rows with too few readings to be useful.
//
// Scale exports routinely carry partial readings (a weight-only quick weigh, a failed
// impedance measurement). A fixed tolerance keeps noisy-but-useful rows and drops junk.
package completeness

import (
	"github.com/okian/scalesync/internal/domain/convert"
	"github.com/okian/scalesync/internal/domain/format"
	"github.com/okian/scalesync/internal/domain/model"
)

// Default tolerances.
const (
	DefaultRawMissing          = 3
	DefaultPreprocessedMissing = 3
	DefaultPreprocessedZero    = 5
)

// Filter decides whether a normalized row has enough readings.
type Filter struct {
	rawMissing          int
	preprocessedMissing int
	preprocessedZero    int
}

// Option applies a configuration option to the Filter.
type Option func(*Filter)

// WithRawMissing sets how many required raw fields may be missing.
func WithRawMissing(n int) Option {
	return func(f *Filter) {
		if n >= 0 {
			f.rawMissing = n
		}
	}
}

// WithPreprocessedMissing sets how many checked pre-processed fields may be missing.
func WithPreprocessedMissing(n int) Option {
	return func(f *Filter) {
		if n >= 0 {
			f.preprocessedMissing = n
		}
	}
}

// WithPreprocessedZero sets how many checked pre-processed fields may be missing or zero.
func WithPreprocessedZero(n int) Option {
	return func(f *Filter) {
		if n >= 0 {
			f.preprocessedZero = n
		}
	}
}

// New creates a Filter with the default tolerances.
func New(opts ...Option) *Filter {
	f := &Filter{
		rawMissing:          DefaultRawMissing,
		preprocessedMissing: DefaultPreprocessedMissing,
		preprocessedZero:    DefaultPreprocessedZero,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Keep reports whether row, produced from a file of the given kind, should be converted.
func (f *Filter) Keep(kind format.Kind, row model.RawRecord) bool {
	switch kind {
	case format.Raw:
		return f.keepRaw(row)
	case format.Preprocessed:
		return f.keepPreprocessed(row)
	default:
		return false
	}
}

func (f *Filter) keepRaw(row model.RawRecord) bool {
	if row.Missing(model.RawTime) {
		return false
	}
	missing := 0
	for _, name := range model.RequiredRawFields {
		if row.Missing(name) {
			missing++
		}
	}
	return missing <= f.rawMissing
}

func (f *Filter) keepPreprocessed(row model.RawRecord) bool {
	if row.Missing(model.DateColumn) {
		return false
	}
	missing, zero := 0, 0
	for _, name := range model.CheckedPreprocessedFields {
		if row.Missing(name) {
			missing++
			continue
		}
		// Read the value as the converter will, so "0%" and "0lb" count as zero.
		if convert.Number(row[name]) == 0 {
			zero++
		}
	}
	return missing <= f.preprocessedMissing && missing+zero <= f.preprocessedZero
}
