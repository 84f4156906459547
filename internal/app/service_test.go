package service_test

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/okian/scalesync/internal/adapters/repository"
	service "github.com/okian/scalesync/internal/app"
	"github.com/okian/scalesync/internal/domain/format"
	"github.com/okian/scalesync/internal/domain/types"
	"github.com/okian/scalesync/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	// Initialize logging for tests
	err := logger.Init()
	if err != nil {
		panic(err)
	}
}

const rawExport = `Time,Weight,BMI,Body Fat,Fat-Free Body Weight,Subcutaneous Fat,Visceral Fat,Body Water,Skeletal Muscle,Bone Mass,Protein,BMR,Metabolic Age,Heart Rate
"4/5/2025, 8:43 AM",200.0lb,25.1,22.0%,156.0lb,19.5%,10,55.0%,140.0lb,8.0lb,18.0%,1800kcal,35,70
"4/5/2025, 9:10 AM",200.2lb,25.1,--,--,--,10,55.0%,140.0lb,8.0lb,18.0%,1800kcal,35,70
"4/6/2025, 7:02 AM",199.0lb,24.9,21.8%,155.6lb,19.4%,10,55.2%,139.8lb,8.0lb,18.1%,1795kcal,35,68
"4/7/2025, 7:15 AM",198.4lb,24.8,21.7%,155.3lb,19.3%,10,55.3%,139.5lb,7.9lb,18.1%,1790kcal,35,69
`

func started(opts ...service.Option) *service.Service {
	svc := service.New(opts...)
	So(svc.Start(context.Background()), ShouldBeNil)
	return svc
}

func TestService_New(t *testing.T) {
	Convey("Given a new service with default options", t, func() {
		svc := service.New()

		Convey("Then it should have sensible defaults", func() {
			So(svc, ShouldNotBeNil)
			stats := svc.GetStats()
			So(stats["started"], ShouldEqual, false)
			So(stats["store"], ShouldEqual, repository.DriverMemory)
			So(stats["epsilon"], ShouldEqual, 0.0001)
		})
	})

	Convey("Given a service that was never started", t, func() {
		svc := service.New()

		Convey("Then operations should fail with ErrNotStarted", func() {
			_, err := svc.Import(context.Background(), rawExport)
			So(errors.Is(err, service.ErrNotStarted), ShouldBeTrue)
			_, err = svc.Records(context.Background(), time.Time{}, time.Time{})
			So(errors.Is(err, service.ErrNotStarted), ShouldBeTrue)
		})
	})
}

func TestService_StartStop(t *testing.T) {
	Convey("Given a new service", t, func() {
		svc := service.New()
		defer svc.Stop()

		Convey("When starting the service", func() {
			err := svc.Start(context.Background())

			Convey("Then it should be marked as started", func() {
				So(err, ShouldBeNil)
				So(svc.GetStats()["started"], ShouldEqual, true)
				So(svc.GetStats()["totalRecords"], ShouldEqual, 0)
			})

			Convey("And stopping it should mark it stopped", func() {
				svc.Stop()
				So(svc.GetStats()["started"], ShouldEqual, false)
			})
		})
	})

	Convey("Given an unknown store driver", t, func() {
		svc := service.New(service.WithStoreDriver("mongo", ""))

		Convey("Then start should fail", func() {
			err := svc.Start(context.Background())
			So(errors.Is(err, repository.ErrUnknownDriver), ShouldBeTrue)
		})
	})
}

func TestService_Import(t *testing.T) {
	ctx := context.Background()

	Convey("Given a started service", t, func() {
		svc := started()
		defer svc.Stop()

		Convey("When importing a raw export", func() {
			res, err := svc.Import(ctx, rawExport)
			So(err, ShouldBeNil)

			Convey("Then new dates should be created once each", func() {
				So(res.Format, ShouldEqual, format.Raw)
				So(res.Status(), ShouldEqual, types.StatusCompleted)
				So(res.Result.Total, ShouldEqual, 4)
				So(res.Result.Created, ShouldEqual, 3)
				So(res.Result.Duplicates, ShouldEqual, 1)
				So(len(res.Records), ShouldEqual, 3)
				So(res.Records[0].ID, ShouldNotBeEmpty)
			})

			Convey("And importing it again should change nothing", func() {
				again, err := svc.Import(ctx, rawExport)
				So(err, ShouldBeNil)
				So(again.Result.Created, ShouldEqual, 0)
				So(again.Result.Updated, ShouldEqual, 0)
				So(again.Result.Skipped, ShouldEqual, 3)
				So(again.Records[2].ID, ShouldEqual, res.Records[2].ID)
				So(svc.GetStats()["totalRecords"], ShouldEqual, 3)
				So(svc.GetStats()["imports"], ShouldEqual, 2)
			})

			Convey("And exporting then re-importing should skip every record", func() {
				var buf bytes.Buffer
				So(svc.Export(ctx, &buf, "csv", time.Time{}, time.Time{}), ShouldBeNil)
				again, err := svc.Import(ctx, buf.String())
				So(err, ShouldBeNil)
				So(again.Format, ShouldEqual, format.Preprocessed)
				So(again.Result.Skipped, ShouldEqual, 3)
			})

			Convey("And records should be listable by range", func() {
				from := time.Date(2025, time.April, 6, 0, 0, 0, 0, time.UTC)
				list, err := svc.Records(ctx, from, time.Time{})
				So(err, ShouldBeNil)
				So(len(list), ShouldEqual, 2)
				So(list[0].Key(), ShouldEqual, "2025-04-06")
			})
		})

		Convey("When importing a file with an invalid date", func() {
			text := strings.Replace(rawExport, `"4/7/2025, 7:15 AM"`, `"someday"`, 1)
			res, err := svc.Import(ctx, text)

			Convey("Then it should complete with warnings", func() {
				So(err, ShouldBeNil)
				So(res.Result.InvalidRecords, ShouldEqual, 1)
				So(res.Status(), ShouldEqual, types.StatusCompletedWithWarnings)
			})
		})

		Convey("When importing a file in an unknown format", func() {
			_, err := svc.Import(ctx, "foo,bar\n1,2\n")

			Convey("Then it should be rejected before anything is written", func() {
				So(errors.Is(err, format.ErrUnrecognizedFormat), ShouldBeTrue)
				So(svc.GetStats()["totalRecords"], ShouldEqual, 0)
			})
		})
	})

	Convey("Given a service backed by sqlite with parallel reconcile", t, func() {
		path := filepath.Join(t.TempDir(), "records.db")
		svc := started(
			service.WithStoreDriver(repository.DriverSQLite, path),
			service.WithConcurrency(4),
		)
		defer svc.Stop()

		Convey("Then imports should be idempotent there too", func() {
			first, err := svc.Import(ctx, rawExport)
			So(err, ShouldBeNil)
			So(first.Result.Created, ShouldEqual, 3)

			second, err := svc.Import(ctx, rawExport)
			So(err, ShouldBeNil)
			So(second.Result.Skipped, ShouldEqual, 3)
		})
	})

	Convey("Given a service with a zero raw tolerance", t, func() {
		svc := started(service.WithCompletenessTolerances(0, 3, 5))
		defer svc.Stop()

		Convey("Then partial rows should be filtered", func() {
			res, err := svc.Import(ctx, rawExport)
			So(err, ShouldBeNil)
			So(res.Result.Filtered, ShouldEqual, 1)
			So(res.Result.Duplicates, ShouldEqual, 0)
		})
	})
}

func TestServiceInjectedStore(t *testing.T) {
	ctx := context.Background()

	Convey("Given a service running on a caller-owned sqlite store", t, func() {
		store, err := repository.OpenSQLite(ctx, filepath.Join(t.TempDir(), "records.db"))
		So(err, ShouldBeNil)
		defer store.Close()

		svc := started(service.WithStore(store))
		first, err := svc.Import(ctx, rawExport)
		So(err, ShouldBeNil)
		So(first.Result.Created, ShouldEqual, 3)

		Convey("When it is stopped and started again", func() {
			svc.Stop()
			So(svc.Start(ctx), ShouldBeNil)
			defer svc.Stop()

			Convey("Then the store should still be usable", func() {
				second, err := svc.Import(ctx, rawExport)
				So(err, ShouldBeNil)
				So(second.Result.Skipped, ShouldEqual, 3)
				So(second.Result.Errors, ShouldEqual, 0)

				n, err := store.Count(ctx)
				So(err, ShouldBeNil)
				So(n, ShouldEqual, 3)
			})
		})
	})
}
