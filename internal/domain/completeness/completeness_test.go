package completeness_test

import (
	"testing"

	"github.com/okian/scalesync/internal/domain/completeness"
	"github.com/okian/scalesync/internal/domain/format"
	"github.com/okian/scalesync/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func fullRawRow() model.RawRecord {
	row := model.RawRecord{model.RawTime: "4/5/2025, 8:43 AM"}
	for _, name := range model.RequiredRawFields {
		row[name] = "10"
	}
	return row
}

func fullPreprocessedRow() model.RawRecord {
	row := model.RawRecord{model.DateColumn: "04-05-25"}
	for _, name := range model.CheckedPreprocessedFields {
		row[name] = "10"
	}
	return row
}

func TestRawCompleteness(t *testing.T) {
	Convey("Given the default filter", t, func() {
		f := completeness.New()

		Convey("When a raw row is complete", func() {
			So(f.Keep(format.Raw, fullRawRow()), ShouldBeTrue)
		})

		Convey("When a raw row misses exactly 3 required fields", func() {
			row := fullRawRow()
			row[model.RawBMI] = "--"
			row[model.RawProtein] = ""
			delete(row, model.RawBMR)

			Convey("Then it is kept", func() {
				So(f.Keep(format.Raw, row), ShouldBeTrue)
			})

			Convey("And missing a fourth drops it", func() {
				row[model.RawBoneMass] = "--"
				So(f.Keep(format.Raw, row), ShouldBeFalse)
			})
		})

		Convey("When a raw row has no Time", func() {
			row := fullRawRow()
			row[model.RawTime] = "--"

			Convey("Then it is dropped", func() {
				So(f.Keep(format.Raw, row), ShouldBeFalse)
			})
		})
	})

	Convey("Given a stricter raw tolerance", t, func() {
		f := completeness.New(completeness.WithRawMissing(0))
		row := fullRawRow()
		row[model.RawBMI] = "--"

		Convey("Then a single missing field drops the row", func() {
			So(f.Keep(format.Raw, row), ShouldBeFalse)
		})
	})
}

func TestPreprocessedCompleteness(t *testing.T) {
	Convey("Given the default filter", t, func() {
		f := completeness.New()

		Convey("When a pre-processed row is complete", func() {
			So(f.Keep(format.Preprocessed, fullPreprocessedRow()), ShouldBeTrue)
		})

		Convey("When it has no Date", func() {
			row := fullPreprocessedRow()
			delete(row, model.DateColumn)
			So(f.Keep(format.Preprocessed, row), ShouldBeFalse)
		})

		Convey("When 3 fields are missing and 2 are zero", func() {
			row := fullPreprocessedRow()
			row["V-Fat"] = "--"
			row["S-Fat"] = ""
			row["Water %"] = "--"
			row["Protien %"] = "0"
			row["Fat Free Weight"] = "0.0"

			Convey("Then it is kept", func() {
				So(f.Keep(format.Preprocessed, row), ShouldBeTrue)
			})

			Convey("And a third zero drops it", func() {
				row["BMI"] = "0"
				So(f.Keep(format.Preprocessed, row), ShouldBeFalse)
			})
		})

		Convey("When 4 fields are missing", func() {
			row := fullPreprocessedRow()
			for _, name := range []string{"V-Fat", "S-Fat", "Water %", "Protien %"} {
				row[name] = "--"
			}
			So(f.Keep(format.Preprocessed, row), ShouldBeFalse)
		})

		Convey("When zeros carry a unit suffix", func() {
			row := fullPreprocessedRow()
			for _, name := range []string{"V-Fat", "S-Fat", "Water %"} {
				row[name] = "--"
			}
			row["Protien %"] = "0%"
			row["Body Fat %"] = "0%"
			row["Fat Free Weight"] = "0lb"

			Convey("Then they should count toward the zero tolerance", func() {
				So(f.Keep(format.Preprocessed, row), ShouldBeFalse)
			})
		})

		Convey("When 5 legitimately zero readings are present", func() {
			row := fullPreprocessedRow()
			for _, name := range []string{"V-Fat", "S-Fat", "Water %", "Protien %", "Fat Free Weight"} {
				row[name] = "0"
			}
			So(f.Keep(format.Preprocessed, row), ShouldBeTrue)
		})
	})

	Convey("Given an unknown kind", t, func() {
		So(completeness.New().Keep(format.Unknown, fullRawRow()), ShouldBeFalse)
	})
}
