// Package convert turns normalized raw rows into canonical records.
package convert

import (
	"strconv"
	"strings"
	"time"

	"github.com/okian/scalesync/internal/domain/model"
)

// dateLayouts are tried in order against the date part of Time.
var dateLayouts = []string{ //nolint:gochecknoglobals // fixed layouts
	"1/2/2006",
	"1/2/06",
	"01-02-06",
	"1-2-2006",
	"2006-01-02",
	"2006/01/02",
}

// rawColumns binds each directly-read canonical field to its raw column.
// BoneMassPct is derived.
var rawColumns = []struct { //nolint:gochecknoglobals // fixed mapping
	column string
	set    func(*model.Record, float64)
}{
	{model.RawWeight, func(r *model.Record, v float64) { r.Weight = v }},
	{model.RawBMI, func(r *model.Record, v float64) { r.BMI = v }},
	{model.RawBodyFat, func(r *model.Record, v float64) { r.BodyFatPct = v }},
	{model.RawVisceralFat, func(r *model.Record, v float64) { r.VisceralFat = v }},
	{model.RawSubcutaneousFat, func(r *model.Record, v float64) { r.SubcutaneousFat = v }},
	{model.RawMetabolicAge, func(r *model.Record, v float64) { r.MetabolicAge = v }},
	{model.RawHeartRate, func(r *model.Record, v float64) { r.HeartRate = v }},
	{model.RawBodyWater, func(r *model.Record, v float64) { r.WaterPct = v }},
	{model.RawProtein, func(r *model.Record, v float64) { r.ProteinPct = v }},
	{model.RawFatFreeWeight, func(r *model.Record, v float64) { r.FatFreeWeight = v }},
	{model.RawBoneMass, func(r *model.Record, v float64) { r.BoneMassLb = v }},
	{model.RawBMR, func(r *model.Record, v float64) { r.BMR = v }},
	{model.RawMuscleMass, func(r *model.Record, v float64) { r.MuscleMass = v }},
}

// Record converts one filtered row. ok is false when the date cannot be parsed;
// the numeric fields are still populated in that case.
func Record(raw model.RawRecord) (rec model.Record, ok bool) {
	for _, c := range rawColumns {
		c.set(&rec, Number(raw[c.column]))
	}
	rec.BoneMassPct = BoneMassPercent(rec.BoneMassLb, rec.Weight)

	date, ok := Date(raw[model.RawTime])
	if ok {
		rec.Date = date
	}
	return rec, ok
}

// Number keeps only digits and '.' from s and parses the result.
// Missing, placeholder and unparseable values are 0.
func Number(s string) float64 {
	if s == "" || s == model.Placeholder {
		return 0
	}
	var b strings.Builder
	for _, r := range s {
		if (r >= '0' && r <= '9') || r == '.' {
			b.WriteRune(r)
		}
	}
	v, err := strconv.ParseFloat(b.String(), 64)
	if err != nil {
		return 0
	}
	return v
}

// BoneMassPercent returns bone mass as a percentage of weight, or 0 for zero weight.
func BoneMassPercent(boneLb, weightLb float64) float64 {
	if weightLb == 0 {
		return 0
	}
	return boneLb / weightLb * 100
}

// Date parses the calendar date in a Time value, ignoring anything after the first comma.
func Date(s string) (time.Time, bool) {
	if i := strings.IndexByte(s, ','); i >= 0 {
		s = s[:i]
	}
	s = strings.TrimSpace(s)
	// Some exports use "4/5/2025 8:43 AM" with no comma.
	if i := strings.IndexByte(s, ' '); i >= 0 {
		s = s[:i]
	}
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return model.Day(t), true
		}
	}
	return time.Time{}, false
}
