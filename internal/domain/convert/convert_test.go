package convert_test

import (
	"testing"
	"time"

	"github.com/okian/scalesync/internal/domain/convert"
	"github.com/okian/scalesync/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func TestNumber(t *testing.T) {
	Convey("Given unit-suffixed scale values", t, func() {
		Convey("Then the magnitude should be extracted", func() {
			So(convert.Number("306.0lb"), ShouldEqual, 306.0)
			So(convert.Number("35.2%"), ShouldEqual, 35.2)
			So(convert.Number("2,345kcal"), ShouldEqual, 2345)
			So(convert.Number(" 72 bpm"), ShouldEqual, 72)
		})

		Convey("Then missing and unparseable values should be 0", func() {
			So(convert.Number("--"), ShouldEqual, 0)
			So(convert.Number(""), ShouldEqual, 0)
			So(convert.Number("n/a"), ShouldEqual, 0)
			So(convert.Number("1.2.3"), ShouldEqual, 0)
		})
	})
}

func TestBoneMassPercent(t *testing.T) {
	Convey("Given bone mass and weight", t, func() {
		So(convert.BoneMassPercent(8, 200), ShouldEqual, 4.0)

		Convey("Then zero weight should not divide by zero", func() {
			So(convert.BoneMassPercent(8, 0), ShouldEqual, 0)
		})
	})
}

func TestDate(t *testing.T) {
	want := time.Date(2025, time.April, 5, 0, 0, 0, 0, time.UTC)

	Convey("Given the date formats seen in exports", t, func() {
		for _, in := range []string{
			"4/5/2025, 8:43 AM",
			"4/5/2025",
			"4/5/25",
			"04-05-25",
			"4-5-2025",
			"2025-04-05",
			"2025/04/05",
			"4/5/2025 8:43 AM",
		} {
			d, ok := convert.Date(in)
			So(ok, ShouldBeTrue)
			So(d, ShouldEqual, want)
		}
	})

	Convey("Given unparseable dates", t, func() {
		for _, in := range []string{"", "--", "yesterday", "13/45/2025", ", 8:43 AM"} {
			_, ok := convert.Date(in)
			So(ok, ShouldBeFalse)
		}
	})
}

func TestRecord(t *testing.T) {
	Convey("Given a normalized raw row", t, func() {
		raw := model.RawRecord{
			model.RawTime:            "4/5/2025, 8:43 AM",
			model.RawWeight:          "200.0lb",
			model.RawBMI:             "27.1",
			model.RawBodyFat:         "30.2%",
			model.RawFatFreeWeight:   "139.6lb",
			model.RawSubcutaneousFat: "26.0%",
			model.RawVisceralFat:     "12",
			model.RawBodyWater:       "50.3%",
			model.RawMuscleMass:      "131.2lb",
			model.RawBoneMass:        "8.0lb",
			model.RawProtein:         "16.1%",
			model.RawBMR:             "1,890kcal",
			model.RawMetabolicAge:    "41",
			model.RawHeartRate:       "--",
		}

		Convey("When converting it", func() {
			rec, ok := convert.Record(raw)

			Convey("Then every field should be typed", func() {
				So(ok, ShouldBeTrue)
				So(model.DisplayDate(rec.Date), ShouldEqual, "04-05-25")
				So(rec.Weight, ShouldEqual, 200.0)
				So(rec.BMI, ShouldEqual, 27.1)
				So(rec.BodyFatPct, ShouldEqual, 30.2)
				So(rec.FatFreeWeight, ShouldEqual, 139.6)
				So(rec.SubcutaneousFat, ShouldEqual, 26.0)
				So(rec.VisceralFat, ShouldEqual, 12)
				So(rec.WaterPct, ShouldEqual, 50.3)
				So(rec.MuscleMass, ShouldEqual, 131.2)
				So(rec.BoneMassLb, ShouldEqual, 8.0)
				So(rec.ProteinPct, ShouldEqual, 16.1)
				So(rec.BMR, ShouldEqual, 1890)
				So(rec.MetabolicAge, ShouldEqual, 41)
				So(rec.HeartRate, ShouldEqual, 0)
			})

			Convey("And bone mass percentage should be derived", func() {
				So(rec.BoneMassPct, ShouldAlmostEqual, 4.0, 1e-9)
			})
		})

		Convey("When the date is invalid", func() {
			raw[model.RawTime] = "not a date"
			rec, ok := convert.Record(raw)

			Convey("Then the record is flagged but still converted", func() {
				So(ok, ShouldBeFalse)
				So(rec.Date.IsZero(), ShouldBeTrue)
				So(rec.Weight, ShouldEqual, 200.0)
			})
		})
	})
}
