// Package normalize maps vendor header variants onto the raw column vocabulary so both
// export shapes can flow through one converter.
package normalize

import (
	"sort"

	"github.com/okian/scalesync/internal/domain/model"
)

// Synonyms maps vendor header variants to raw column names. Exact match only.
var Synonyms = map[string]string{ //nolint:gochecknoglobals // declarative table
	"Muscle":             model.RawMuscleMass,
	"Skeletal Muscle":    model.RawMuscleMass,
	"Skeletal Muscles":   model.RawMuscleMass,
	"Skeletal Muscle(s)": model.RawMuscleMass,
	"Bone":               model.RawBoneMass,
	"Water":              model.RawBodyWater,
	"Heart rate":         model.RawHeartRate,
	"Metabolic age":      model.RawMetabolicAge,
}

var synonymOrder = func() []string { //nolint:gochecknoglobals // derived from Synonyms
	keys := make([]string, 0, len(Synonyms))
	for k := range Synonyms {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}()

// Backfill maps a raw column to the pre-processed column it is copied from.
var Backfill = map[string]string{ //nolint:gochecknoglobals // declarative table
	model.RawBodyFat:         "Body Fat %",
	model.RawFatFreeWeight:   "Fat Free Weight",
	model.RawSubcutaneousFat: "S-Fat",
	model.RawVisceralFat:     "V-Fat",
	model.RawBodyWater:       "Water %",
	model.RawProtein:         "Protien %",
	model.RawMetabolicAge:    "Age",
	model.RawHeartRate:       "HR",
	model.RawBoneMass:        "Bone Mass LB",
}

// Row returns a normalized copy of raw. The input is not modified.
func Row(raw model.RawRecord) model.RawRecord {
	out := make(model.RawRecord, len(raw)+len(Backfill))
	for k, v := range raw {
		out[k] = v
	}

	// Key header variants ("Date/Time", "date", "Body Fat (%)") land on the columns the
	// filter and converter read. An exact column already present is kept.
	for _, k := range sortedKeys(raw) {
		column, ok := model.CanonicalHeader(k)
		if !ok || column == k {
			continue
		}
		if _, present := out[column]; present {
			continue
		}
		out[column] = raw[k]
	}

	// Canonical names win over synonyms; among synonyms the first in sorted order wins.
	for _, k := range synonymOrder {
		v, ok := raw[k]
		if !ok {
			continue
		}
		target := Synonyms[k]
		if _, present := out[target]; present {
			continue
		}
		out[target] = v
	}

	if IsPreprocessed(out) {
		out[model.RawTime] = out[model.DateColumn]
		for rawKey, preKey := range Backfill {
			if _, present := out[rawKey]; present {
				continue
			}
			if v, ok := out[preKey]; ok {
				out[rawKey] = v
			}
		}
	}
	return out
}

// IsPreprocessed reports whether a row carries Date but no Time.
func IsPreprocessed(raw model.RawRecord) bool {
	_, hasDate := raw[model.DateColumn]
	_, hasTime := raw[model.RawTime]
	return hasDate && !hasTime
}

func sortedKeys(raw model.RawRecord) []string {
	keys := make([]string, 0, len(raw))
	for k := range raw {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
