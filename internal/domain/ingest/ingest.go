// Package ingest composes the pure parsing stages of an import: tokenize, detect,
// normalize, filter, convert and deduplicate.
package ingest

import (
	"fmt"
	"sort"

	"github.com/okian/scalesync/internal/domain/completeness"
	"github.com/okian/scalesync/internal/domain/convert"
	"github.com/okian/scalesync/internal/domain/dedupe"
	"github.com/okian/scalesync/internal/domain/format"
	"github.com/okian/scalesync/internal/domain/model"
	"github.com/okian/scalesync/internal/domain/normalize"
	"github.com/okian/scalesync/internal/domain/scoring"
	"github.com/okian/scalesync/internal/domain/tokenizer"
)

// Batch is the outcome of parsing one CSV text.
type Batch struct {
	Kind format.Kind

	// Records holds one record per date, sorted by date.
	Records []model.Record

	Total      int   // data rows in the input
	Invalid    int   // rows whose date could not be parsed
	Filtered   int   // rows dropped for too few readings
	Duplicates int   // same-date candidates that lost to a more complete row
	Misaligned []int // 1-based line numbers whose cell count differed from the header
}

// Pipeline runs the parsing stages. The zero value is not usable; use New.
type Pipeline struct {
	filter *completeness.Filter
	scorer scoring.Scorer
}

// Option applies a configuration option to the Pipeline.
type Option func(*Pipeline)

// WithFilter replaces the completeness filter.
func WithFilter(f *completeness.Filter) Option {
	return func(p *Pipeline) {
		if f != nil {
			p.filter = f
		}
	}
}

// WithScorer replaces the scorer used to pick among same-date rows.
func WithScorer(s scoring.Scorer) Option {
	return func(p *Pipeline) {
		if s != nil {
			p.scorer = s
		}
	}
}

// New creates a Pipeline with default tolerances and the completeness scorer.
func New(opts ...Option) *Pipeline {
	p := &Pipeline{
		filter: completeness.New(),
		scorer: scoring.NewCompletenessScorer(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Parse runs every pure stage over text. The only error is an unrecognized header,
// which wraps format.ErrUnrecognizedFormat and is returned before any row is looked at.
func (p *Pipeline) Parse(text string) (Batch, error) {
	table := tokenizer.Parse(text)

	kind, err := format.Detect(table.Header)
	if err != nil {
		return Batch{}, fmt.Errorf("ingest: %w", err)
	}

	b := Batch{
		Kind:       kind,
		Total:      len(table.Rows),
		Misaligned: table.Misaligned,
	}

	candidates := make([]model.Record, 0, len(table.Rows))
	for _, row := range table.Rows {
		norm := normalize.Row(row)
		if !p.filter.Keep(kind, norm) {
			b.Filtered++
			continue
		}
		rec, ok := convert.Record(norm)
		if !ok {
			b.Invalid++
			continue
		}
		candidates = append(candidates, rec)
	}

	b.Records, b.Duplicates = dedupe.ByDate(candidates, p.scorer)
	sort.SliceStable(b.Records, func(i, j int) bool {
		return b.Records[i].Date.Before(b.Records[j].Date)
	})
	return b, nil
}

// Result seeds a RunResult with the parse-stage counters.
func (b Batch) Result() model.RunResult {
	return model.RunResult{
		Total:          b.Total,
		InvalidRecords: b.Invalid,
		Filtered:       b.Filtered,
		Duplicates:     b.Duplicates,
	}
}
