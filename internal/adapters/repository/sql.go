package repository

import (
	"fmt"
	"strings"

	"github.com/okian/scalesync/internal/domain/model"
)

// measurementColumns are the SQL column names of model.Fields, in the same order.
var measurementColumns = []string{ //nolint:gochecknoglobals // schema table
	"weight",
	"bmi",
	"body_fat_pct",
	"visceral_fat",
	"subcutaneous_fat",
	"metabolic_age",
	"heart_rate",
	"water_pct",
	"bone_mass_pct",
	"protein_pct",
	"fat_free_weight",
	"bone_mass_lb",
	"bmr",
	"muscle_mass",
}

func init() { //nolint:gochecknoinits // schema must track the field table
	if len(measurementColumns) != len(model.Fields) {
		panic(fmt.Sprintf("repository: %d measurement columns for %d fields",
			len(measurementColumns), len(model.Fields)))
	}
}

// createTableSQL renders the records table using the dialect's column types.
func createTableSQL(dateType, realType, timeType string) string {
	var b strings.Builder
	b.WriteString("CREATE TABLE IF NOT EXISTS records (\n")
	b.WriteString("\tid TEXT PRIMARY KEY,\n")
	fmt.Fprintf(&b, "\tdate %s NOT NULL UNIQUE,\n", dateType)
	for _, c := range measurementColumns {
		fmt.Fprintf(&b, "\t%s %s NOT NULL DEFAULT 0,\n", c, realType)
	}
	fmt.Fprintf(&b, "\tcreated_at %s NOT NULL,\n", timeType)
	fmt.Fprintf(&b, "\tupdated_at %s NOT NULL\n", timeType)
	b.WriteString(")")
	return b.String()
}

// selectColumns is the column list every query reads, matching scanDest.
func selectColumns() string {
	cols := append([]string{"id", "date"}, measurementColumns...)
	cols = append(cols, "created_at", "updated_at")
	return strings.Join(cols, ", ")
}

// insertSQL renders an INSERT with placeholders from ph (1-based).
func insertSQL(ph func(int) string) string {
	cols := append([]string{"id", "date"}, measurementColumns...)
	cols = append(cols, "created_at", "updated_at")
	marks := make([]string, len(cols))
	for i := range cols {
		marks[i] = ph(i + 1)
	}
	return fmt.Sprintf("INSERT INTO records (%s) VALUES (%s)",
		strings.Join(cols, ", "), strings.Join(marks, ", "))
}

// updateSQL renders an UPDATE of date, measurements and updated_at keyed by id.
// Arguments: date, measurements..., updated_at, id.
func updateSQL(ph func(int) string) string {
	sets := make([]string, 0, len(measurementColumns)+2)
	n := 1
	sets = append(sets, "date = "+ph(n))
	for _, c := range measurementColumns {
		n++
		sets = append(sets, c+" = "+ph(n))
	}
	n++
	sets = append(sets, "updated_at = "+ph(n))
	n++
	return fmt.Sprintf("UPDATE records SET %s WHERE id = %s", strings.Join(sets, ", "), ph(n))
}

// measurementArgs returns rec's numeric fields as query arguments.
func measurementArgs(rec model.Record) []any {
	vals := rec.Values()
	out := make([]any, len(vals))
	for i, v := range vals {
		out[i] = v
	}
	return out
}

// applyMeasurements copies scanned values into rec.
func applyMeasurements(rec *model.Record, vals []float64) {
	for i, f := range model.Fields {
		f.Set(rec, vals[i])
	}
}

func questionMark(int) string { return "?" }

func dollar(n int) string { return fmt.Sprintf("$%d", n) }
