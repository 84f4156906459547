package dedupe_test

import (
	"testing"
	"time"

	dedupe "github.com/okian/scalesync/internal/domain/dedupe"
	"github.com/okian/scalesync/internal/domain/model"
	"github.com/okian/scalesync/internal/domain/scoring"
	. "github.com/smartystreets/goconvey/convey"
)

func day(d int) time.Time {
	return time.Date(2025, time.April, d, 0, 0, 0, 0, time.UTC)
}

// withFields returns a record for date d with the first n numeric fields set to v.
func withFields(d, n int, v float64) model.Record {
	rec := model.Record{Date: day(d)}
	for i := 0; i < n && i < len(model.Fields); i++ {
		model.Fields[i].Set(&rec, v)
	}
	return rec
}

func TestByDate(t *testing.T) {
	scorer := scoring.NewCompletenessScorer()

	Convey("Given records for distinct dates", t, func() {
		records := []model.Record{withFields(3, 5, 1), withFields(1, 5, 1), withFields(2, 5, 1)}

		Convey("When deduplicating", func() {
			kept, dropped := dedupe.ByDate(records, scorer)

			Convey("Then every record should be kept in first-seen order", func() {
				So(dropped, ShouldEqual, 0)
				So(len(kept), ShouldEqual, 3)
				So(kept[0].Key(), ShouldEqual, "2025-04-03")
				So(kept[1].Key(), ShouldEqual, "2025-04-01")
				So(kept[2].Key(), ShouldEqual, "2025-04-02")
			})
		})
	})

	Convey("Given two records for the same date with 6 and 10 readings", t, func() {
		records := []model.Record{withFields(5, 6, 1), withFields(5, 10, 2)}

		Convey("When deduplicating", func() {
			kept, dropped := dedupe.ByDate(records, scorer)

			Convey("Then only the more complete record should survive", func() {
				So(dropped, ShouldEqual, 1)
				So(len(kept), ShouldEqual, 1)
				So(scorer.Score(kept[0]), ShouldEqual, 10)
				So(kept[0].Weight, ShouldEqual, 2)
			})
		})
	})

	Convey("Given tied candidates", t, func() {
		records := []model.Record{withFields(5, 4, 1), withFields(5, 4, 2), withFields(5, 4, 3)}

		Convey("When deduplicating", func() {
			kept, dropped := dedupe.ByDate(records, scorer)

			Convey("Then the first encountered should win", func() {
				So(dropped, ShouldEqual, 2)
				So(len(kept), ShouldEqual, 1)
				So(kept[0].Weight, ShouldEqual, 1)
			})
		})
	})

	Convey("Given same-day records whose times differ", t, func() {
		a := withFields(5, 3, 1)
		b := withFields(5, 8, 2)
		b.Date = model.Day(b.Date.Add(9 * time.Hour))

		Convey("Then they should still group by calendar date", func() {
			kept, _ := dedupe.ByDate([]model.Record{a, b}, nil)
			So(len(kept), ShouldEqual, 1)
			So(kept[0].Weight, ShouldEqual, 2)
		})
	})

	Convey("Given records a century apart that share a display date", t, func() {
		a := withFields(5, 3, 1)
		b := withFields(5, 3, 2)
		b.Date = b.Date.AddDate(-100, 0, 0)

		Convey("Then they should not be merged", func() {
			kept, dropped := dedupe.ByDate([]model.Record{a, b}, scorer)
			So(dropped, ShouldEqual, 0)
			So(len(kept), ShouldEqual, 2)
		})
	})

	Convey("Given no records", t, func() {
		kept, dropped := dedupe.ByDate(nil, scorer)
		So(kept, ShouldBeEmpty)
		So(dropped, ShouldEqual, 0)
	})
}
