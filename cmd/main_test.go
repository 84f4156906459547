package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/okian/scalesync/internal/config"
	"github.com/okian/scalesync/pkg/logger"
	"github.com/smartystreets/goconvey/convey"
)

func TestMainFunction(t *testing.T) {
	convey.Convey("Given the main application", t, func() {
		convey.So(logger.Init(), convey.ShouldBeNil)

		convey.Convey("When loading configuration from the environment", func() {
			_ = os.Setenv("SCALESYNC_ADDR", ":8181")
			_ = os.Setenv("SCALESYNC_RECONCILE_CONCURRENCY", "4")
			defer func() {
				_ = os.Unsetenv("SCALESYNC_ADDR")
				_ = os.Unsetenv("SCALESYNC_RECONCILE_CONCURRENCY")
			}()

			convey.Convey("Then the values should be applied", func() {
				cfg, err := config.Load(context.Background())
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8181")
				convey.So(cfg.ReconcileConcurrency, convey.ShouldEqual, 4)
			})
		})

		convey.Convey("When wiring the service and routes from defaults", func() {
			ctx := context.Background()
			cfg := config.New()
			svc := newService(cfg, logger.Get())
			convey.So(svc.Start(ctx), convey.ShouldBeNil)
			defer svc.Stop()

			mux := newMux(ctx, cfg, svc)

			convey.Convey("Then API and docs routes should be served", func() {
				for _, path := range []string{"/healthz", "/stats", "/records", "/api-docs", "/openapi.yaml"} {
					w := httptest.NewRecorder()
					mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, http.NoBody))
					convey.So(w.Code, convey.ShouldEqual, http.StatusOK)
				}
			})

			convey.Convey("Then the stats should report the memory store", func() {
				w := httptest.NewRecorder()
				mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/stats", http.NoBody))
				convey.So(w.Body.String(), convey.ShouldContainSubstring, `"store":"memory"`)
			})

			convey.Convey("Then an oversized upload should be rejected", func() {
				cfg.MaxUploadBytes = 16
				small := newMux(ctx, cfg, svc)
				w := httptest.NewRecorder()
				body := strings.NewReader(strings.Repeat("x", 64))
				small.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/imports", body))
				convey.So(w.Code, convey.ShouldEqual, http.StatusRequestEntityTooLarge)
			})
		})
	})
}

func TestMetricsUpdaters(t *testing.T) {
	convey.Convey("Given the background metrics updaters", t, func() {
		convey.So(logger.Init(), convey.ShouldBeNil)

		convey.Convey("When the context is already cancelled", func() {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
			defer cancel()
			<-ctx.Done()

			convey.Convey("Then both should return", func() {
				svc := newService(config.New(), logger.Get())
				convey.So(func() {
					startSystemMetricsUpdater(ctx)
					startServiceMetricsUpdater(ctx, svc)
				}, convey.ShouldNotPanic)
			})
		})

		convey.Convey("When updating system metrics directly", func() {
			convey.So(updateSystemMetrics, convey.ShouldNotPanic)
		})
	})
}
