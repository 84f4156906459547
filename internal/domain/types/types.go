// Package types contains common types used across the application
package types

import (
	"bytes"
	"encoding/json"

	"github.com/okian/scalesync/internal/domain/model"
)

// Record is the external shape of a stored record, keyed by display column names.
type Record struct {
	ID     string
	Date   string
	Values []float64 // aligned with model.Fields
}

// FromStored converts a stored record.
func FromStored(s model.StoredRecord) Record {
	return Record{
		ID:     s.ID,
		Date:   model.DisplayDate(s.Date),
		Values: s.Record.Values(),
	}
}

// FromStoredList converts a slice of stored records.
func FromStoredList(list []model.StoredRecord) []Record {
	out := make([]Record, len(list))
	for i, s := range list {
		out[i] = FromStored(s)
	}
	return out
}

// MarshalJSON writes id, Date and every display column in vocabulary order.
func (r Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	if err := writeKV(&buf, "id", r.ID); err != nil {
		return nil, err
	}
	buf.WriteByte(',')
	if err := writeKV(&buf, model.DateColumn, r.Date); err != nil {
		return nil, err
	}
	for i, f := range model.Fields {
		var v float64
		if i < len(r.Values) {
			v = r.Values[i]
		}
		buf.WriteByte(',')
		if err := writeKV(&buf, f.Name, v); err != nil {
			return nil, err
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func writeKV(buf *bytes.Buffer, key string, value any) error {
	k, err := json.Marshal(key)
	if err != nil {
		return err
	}
	v, err := json.Marshal(value)
	if err != nil {
		return err
	}
	buf.Write(k)
	buf.WriteByte(':')
	buf.Write(v)
	return nil
}

// ImportResponse is returned by an import.
type ImportResponse struct {
	Status  string          `json:"status"`
	Format  string          `json:"format"`
	Result  model.RunResult `json:"result"`
	Records []Record        `json:"records"`
}

// Import statuses.
const (
	StatusCompleted             = "completed"
	StatusCompletedWithWarnings = "completed_with_warnings"
)
