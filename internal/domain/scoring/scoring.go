// Package scoring ranks same-date candidate records by how much they measured.
package scoring

import (
	"math"

	"github.com/okian/scalesync/internal/domain/model"
)

// Scorer computes a completeness score for a record. Higher is more complete.
type Scorer interface {
	Score(rec model.Record) int
}

// Option applies a configuration option to the CompletenessScorer.
type Option func(*CompletenessScorer)

// WithFields restricts scoring to the named display fields. Unknown names are ignored.
func WithFields(names ...string) Option {
	return func(s *CompletenessScorer) {
		fields := make([]model.Field, 0, len(names))
		for _, name := range names {
			if f, ok := model.FieldByName(name); ok {
				fields = append(fields, f)
			}
		}
		if len(fields) > 0 {
			s.fields = fields
		}
	}
}

// CompletenessScorer counts numeric fields that are neither zero nor NaN.
type CompletenessScorer struct {
	fields []model.Field
}

// NewCompletenessScorer creates a scorer over every numeric field by default.
func NewCompletenessScorer(opts ...Option) *CompletenessScorer {
	s := &CompletenessScorer{fields: model.Fields}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Score implements Scorer.
func (s *CompletenessScorer) Score(rec model.Record) int {
	score := 0
	for _, f := range s.fields {
		v := f.Get(&rec)
		if v != 0 && !math.IsNaN(v) {
			score++
		}
	}
	return score
}
