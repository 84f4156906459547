// Package model contains domain models passed between layers.
package model

import (
	"time"
)

// Date layouts used across layers.
const (
	KeyLayout     = "2006-01-02" // grouping and storage key, century-safe
	DisplayLayout = "01-02-06"   // canonical MM-DD-YY display form
)

// Placeholder is the value smart-scale exports use for "no reading".
const Placeholder = "--"

// RawRecord is one CSV row keyed by header name. Values are trimmed strings.
type RawRecord map[string]string

// Missing reports whether key is absent, empty or the placeholder.
func (r RawRecord) Missing(key string) bool {
	v, ok := r[key]
	return !ok || v == "" || v == Placeholder
}

// Record is the canonical measurement for one calendar date.
// Unknown numeric values are 0.
type Record struct {
	Date time.Time // midnight UTC

	Weight          float64
	BMI             float64
	BodyFatPct      float64
	VisceralFat     float64
	SubcutaneousFat float64
	MetabolicAge    float64
	HeartRate       float64
	WaterPct        float64
	BoneMassPct     float64
	ProteinPct      float64
	FatFreeWeight   float64
	BoneMassLb      float64
	BMR             float64
	MuscleMass      float64
}

// Key returns the normalized date key.
func (r Record) Key() string { return DateKey(r.Date) }

// StoredRecord is a Record as held by the record store.
type StoredRecord struct {
	Record
	ID        string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// RunResult summarizes one import.
type RunResult struct {
	Total          int `json:"total"`
	Created        int `json:"created"`
	Updated        int `json:"updated"`
	Skipped        int `json:"skipped"`
	InvalidRecords int `json:"invalidRecords"`
	Errors         int `json:"errors"`

	// Rows dropped by the completeness filter and same-date candidates that lost.
	Filtered   int `json:"filtered"`
	Duplicates int `json:"duplicates"`
}

// HasWarnings reports whether any row was counted as invalid or errored.
func (r RunResult) HasWarnings() bool {
	return r.InvalidRecords > 0 || r.Errors > 0
}

// Day truncates t to its calendar date at midnight UTC.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DateKey renders the normalized YYYY-MM-DD key for t.
func DateKey(t time.Time) string {
	return t.Format(KeyLayout)
}

// DisplayDate renders t in MM-DD-YY form.
func DisplayDate(t time.Time) string {
	return t.Format(DisplayLayout)
}

// ParseDateKey parses a YYYY-MM-DD key back into a date.
func ParseDateKey(s string) (time.Time, error) {
	return time.ParseInLocation(KeyLayout, s, time.UTC)
}
