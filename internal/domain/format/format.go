// Package format recognizes which shape of smart-scale export a header describes.
package format

import (
	"errors"
	"fmt"
	"strings"

	"github.com/okian/scalesync/internal/domain/model"
)

// ErrUnrecognizedFormat is returned when a header matches neither known shape.
var ErrUnrecognizedFormat = errors.New("unrecognized CSV format")

// Kind identifies a CSV shape.
type Kind int

const (
	Unknown Kind = iota
	// Raw is the scale's own export keyed by Time and sensor column names.
	Raw
	// Preprocessed uses the display vocabulary (Date, BMI, ...), e.g. a re-imported export.
	Preprocessed
)

func (k Kind) String() string {
	switch k {
	case Raw:
		return "raw"
	case Preprocessed:
		return "preprocessed"
	default:
		return "unknown"
	}
}

// Detect inspects header names only.
func Detect(header []string) (Kind, error) {
	var hasTime, hasBodyFat, hasDate, hasMeasurement bool
	for _, h := range header {
		column, ok := model.CanonicalHeader(h)
		if !ok {
			continue
		}
		switch column {
		case model.RawTime:
			hasTime = true
		case model.DateColumn:
			hasDate = true
		case model.RawBodyFat:
			hasBodyFat = true
		case model.RawWeight, model.RawBMI:
			hasMeasurement = true
		}
	}

	switch {
	case hasTime && hasBodyFat:
		return Raw, nil
	case hasDate && hasMeasurement:
		return Preprocessed, nil
	default:
		return Unknown, fmt.Errorf("%w: header %q", ErrUnrecognizedFormat, strings.Join(header, ","))
	}
}
