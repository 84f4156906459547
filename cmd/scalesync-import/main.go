// Command scalesync-import imports scale exports into the configured record store
// and exports the stored series, without running the HTTP server.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	service "github.com/okian/scalesync/internal/app"
	"github.com/okian/scalesync/internal/config"
	"github.com/okian/scalesync/pkg/logger"
	"github.com/spf13/cobra"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "scalesync-import",
		Short:         "Import and export body-composition scale records",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	cmd.AddCommand(newImportCmd(), newExportCmd())
	return cmd
}

// withService loads configuration, starts a service on the configured store and
// hands it to fn. The store is closed when fn returns.
func withService(ctx context.Context, fn func(*service.Service) error) error {
	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}
	if err := logger.Init(logger.WithFormat(cfg.LogFormat), logger.WithWriter(os.Stderr)); err != nil {
		return err
	}
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		_ = logger.SetLevelString("info")
	}

	svc := service.New(
		service.WithLogger(logger.Named("cli")),
		service.WithStoreDriver(cfg.StoreDriver, cfg.StoreDSN),
		service.WithEpsilon(cfg.Epsilon),
		service.WithConcurrency(cfg.ReconcileConcurrency),
		service.WithCompletenessTolerances(
			cfg.RawMissingTolerance,
			cfg.PreprocessedMissingTolerance,
			cfg.PreprocessedZeroTolerance,
		),
	)
	if err := svc.Start(ctx); err != nil {
		return err
	}
	defer svc.Stop()

	return fn(svc)
}
