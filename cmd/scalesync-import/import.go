package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/okian/scalesync/internal/adapters/export"
	service "github.com/okian/scalesync/internal/app"
	"github.com/spf13/cobra"
)

func newImportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import <file>...",
		Short: "Import one or more CSV or XLSX scale exports",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withService(cmd.Context(), func(svc *service.Service) error {
				return runImport(cmd.Context(), svc, cmd.OutOrStdout(), args)
			})
		},
	}
	return cmd
}

// runImport imports files in order and prints one summary line per file.
// It stops at the first file that cannot be read or recognized.
func runImport(ctx context.Context, svc *service.Service, out io.Writer, paths []string) error {
	for _, path := range paths {
		text, err := readFile(path)
		if err != nil {
			return fmt.Errorf("read %s: %w", path, err)
		}
		res, err := svc.Import(ctx, text)
		if err != nil {
			return fmt.Errorf("import %s: %w", path, err)
		}
		r := res.Result
		fmt.Fprintf(out, "%s: %s (%s) total=%d created=%d updated=%d skipped=%d invalid=%d errors=%d\n",
			path, res.Status(), res.Format, r.Total, r.Created, r.Updated, r.Skipped, r.InvalidRecords, r.Errors)
	}
	return nil
}

func readFile(path string) (string, error) {
	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		f, err := os.Open(path)
		if err != nil {
			return "", err
		}
		defer f.Close()
		return export.XLSXToCSV(f)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
