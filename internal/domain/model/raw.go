package model

import "strings"

// Column names of the scale's raw export after synonym normalization.
const (
	RawTime            = "Time"
	RawWeight          = "Weight"
	RawBMI             = "BMI"
	RawBodyFat         = "Body Fat"
	RawFatFreeWeight   = "Fat-Free Body Weight"
	RawSubcutaneousFat = "Subcutaneous Fat"
	RawVisceralFat     = "Visceral Fat"
	RawBodyWater       = "Body Water"
	RawMuscleMass      = "Muscle Mass"
	RawBoneMass        = "Bone Mass"
	RawProtein         = "Protein"
	RawBMR             = "BMR"
	RawMetabolicAge    = "Metabolic Age"
	RawHeartRate       = "Heart Rate"
)

// RequiredRawFields are the measurements a raw row is checked against for completeness.
var RequiredRawFields = []string{ //nolint:gochecknoglobals // fixed vocabulary
	RawWeight,
	RawBMI,
	RawBodyFat,
	RawFatFreeWeight,
	RawSubcutaneousFat,
	RawVisceralFat,
	RawBodyWater,
	RawMuscleMass,
	RawBoneMass,
	RawProtein,
	RawBMR,
}

// CheckedPreprocessedFields are the display columns a pre-processed row is checked against.
var CheckedPreprocessedFields = []string{ //nolint:gochecknoglobals // fixed vocabulary
	"Weight",
	"BMI",
	"Body Fat %",
	"V-Fat",
	"S-Fat",
	"Water %",
	"Protien %",
	"Fat Free Weight",
}

var timeHeaders = map[string]bool{ //nolint:gochecknoglobals // fixed vocabulary
	"time":             true,
	"date/time":        true,
	"datetime":         true,
	"measurement time": true,
}

// CanonicalHeader maps a key header variant onto the column the rest of the pipeline
// reads: Time-like names to RawTime, "date" to DateColumn, any "body fat" column to
// RawBodyFat, and weight and BMI to their exact names. Matching ignores case and
// surrounding spaces. ok is false for every other header.
func CanonicalHeader(h string) (column string, ok bool) {
	name := strings.ToLower(strings.TrimSpace(h))
	switch {
	case timeHeaders[name] || strings.HasPrefix(name, "time"):
		return RawTime, true
	case name == "date":
		return DateColumn, true
	case strings.HasPrefix(name, "body fat"):
		return RawBodyFat, true
	case name == "weight":
		return RawWeight, true
	case name == "bmi":
		return RawBMI, true
	default:
		return "", false
	}
}
