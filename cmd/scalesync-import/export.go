package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/okian/scalesync/internal/adapters/export"
	service "github.com/okian/scalesync/internal/app"
	"github.com/okian/scalesync/internal/domain/model"
	"github.com/spf13/cobra"
)

type exportOptions struct {
	format string
	out    string
	from   string
	to     string
}

func newExportCmd() *cobra.Command {
	var opts exportOptions

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write stored records in the display layout",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withService(cmd.Context(), func(svc *service.Service) error {
				return runExport(cmd.Context(), svc, cmd.OutOrStdout(), opts)
			})
		},
	}

	cmd.Flags().StringVar(&opts.format, "format", export.FormatCSV, "Output format: csv or xlsx")
	cmd.Flags().StringVar(&opts.out, "out", "", "Output file (default: stdout)")
	cmd.Flags().StringVar(&opts.from, "from", "", "Inclusive lower bound, YYYY-MM-DD")
	cmd.Flags().StringVar(&opts.to, "to", "", "Inclusive upper bound, YYYY-MM-DD")

	return cmd
}

func runExport(ctx context.Context, svc *service.Service, stdout io.Writer, opts exportOptions) error {
	if opts.format != export.FormatCSV && opts.format != export.FormatXLSX {
		return fmt.Errorf("%w: %q", export.ErrUnknownFormat, opts.format)
	}
	from, err := parseBound("--from", opts.from)
	if err != nil {
		return err
	}
	to, err := parseBound("--to", opts.to)
	if err != nil {
		return err
	}

	out := stdout
	if opts.out != "" {
		f, err := os.Create(opts.out)
		if err != nil {
			return err
		}
		defer f.Close()
		out = f
	}
	return svc.Export(ctx, out, opts.format, from, to)
}

func parseBound(flag, s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	t, err := model.ParseDateKey(s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid %s %q; must be YYYY-MM-DD", flag, s)
	}
	return t, nil
}
