package model

import "math"

// DateColumn is the display name of the date column.
const DateColumn = "Date"

// Field binds a display column name to a typed Record field.
type Field struct {
	Name string
	Get  func(*Record) float64
	Set  func(*Record, float64)
}

// Fields lists every numeric field in display order.
// "Protien %" is spelled as consumers expect it.
var Fields = []Field{ //nolint:gochecknoglobals // lookup table
	{"Weight", func(r *Record) float64 { return r.Weight }, func(r *Record, v float64) { r.Weight = v }},
	{"BMI", func(r *Record) float64 { return r.BMI }, func(r *Record, v float64) { r.BMI = v }},
	{"Body Fat %", func(r *Record) float64 { return r.BodyFatPct }, func(r *Record, v float64) { r.BodyFatPct = v }},
	{"V-Fat", func(r *Record) float64 { return r.VisceralFat }, func(r *Record, v float64) { r.VisceralFat = v }},
	{"S-Fat", func(r *Record) float64 { return r.SubcutaneousFat }, func(r *Record, v float64) { r.SubcutaneousFat = v }},
	{"Age", func(r *Record) float64 { return r.MetabolicAge }, func(r *Record, v float64) { r.MetabolicAge = v }},
	{"HR", func(r *Record) float64 { return r.HeartRate }, func(r *Record, v float64) { r.HeartRate = v }},
	{"Water %", func(r *Record) float64 { return r.WaterPct }, func(r *Record, v float64) { r.WaterPct = v }},
	{"Bone Mass %", func(r *Record) float64 { return r.BoneMassPct }, func(r *Record, v float64) { r.BoneMassPct = v }},
	{"Protien %", func(r *Record) float64 { return r.ProteinPct }, func(r *Record, v float64) { r.ProteinPct = v }},
	{"Fat Free Weight", func(r *Record) float64 { return r.FatFreeWeight }, func(r *Record, v float64) { r.FatFreeWeight = v }},
	{"Bone Mass LB", func(r *Record) float64 { return r.BoneMassLb }, func(r *Record, v float64) { r.BoneMassLb = v }},
	{"BMR", func(r *Record) float64 { return r.BMR }, func(r *Record, v float64) { r.BMR = v }},
	{"Muscle Mass", func(r *Record) float64 { return r.MuscleMass }, func(r *Record, v float64) { r.MuscleMass = v }},
}

var fieldsByName = func() map[string]Field { //nolint:gochecknoglobals // derived lookup
	m := make(map[string]Field, len(Fields))
	for _, f := range Fields {
		m[f.Name] = f
	}
	return m
}()

// FieldByName looks up a numeric field by its display name.
func FieldByName(name string) (Field, bool) {
	f, ok := fieldsByName[name]
	return f, ok
}

// Columns returns the full display header: Date followed by every numeric field.
func Columns() []string {
	cols := make([]string, 0, len(Fields)+1)
	cols = append(cols, DateColumn)
	for _, f := range Fields {
		cols = append(cols, f.Name)
	}
	return cols
}

// Values returns the numeric fields of r in display order.
func (r Record) Values() []float64 {
	out := make([]float64, len(Fields))
	for i, f := range Fields {
		out[i] = f.Get(&r)
	}
	return out
}

// EqualWithin reports whether every numeric field of a and b differs by at most eps.
// Dates are not compared.
func EqualWithin(a, b Record, eps float64) bool {
	for _, f := range Fields {
		if math.Abs(f.Get(&a)-f.Get(&b)) > eps {
			return false
		}
	}
	return true
}
