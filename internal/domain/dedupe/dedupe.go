// Package dedupe collapses same-date candidate records into one per calendar date.
package dedupe

import (
	"github.com/okian/scalesync/internal/domain/model"
	"github.com/okian/scalesync/internal/domain/scoring"
)

// candidate tracks the current winner for one date.
type candidate struct {
	rec   model.Record
	score int
}

// ByDate keeps at most one record per date key: the one with the highest completeness
// score, the first encountered on ties. Output follows first-seen date order.
// dropped is the number of candidates that lost.
func ByDate(records []model.Record, scorer scoring.Scorer) (kept []model.Record, dropped int) {
	if scorer == nil {
		scorer = scoring.NewCompletenessScorer()
	}

	best := make(map[string]*candidate, len(records))
	order := make([]string, 0, len(records))

	for _, rec := range records {
		key := rec.Key()
		score := scorer.Score(rec)

		cur, exists := best[key]
		if !exists {
			best[key] = &candidate{rec: rec, score: score}
			order = append(order, key)
			continue
		}

		dropped++
		// Strictly greater: ties keep the earlier candidate.
		if score > cur.score {
			cur.rec = rec
			cur.score = score
		}
	}

	kept = make([]model.Record, 0, len(order))
	for _, key := range order {
		kept = append(kept, best[key].rec)
	}
	return kept, dropped
}
