package cmd

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/zalepa/permits/chart"
	"github.com/zalepa/permits/permit"
	"github.com/zalepa/permits/sheet"
)

// ReportFile is the PDF written by export --pdf.
const ReportFile = "Permit_Report.pdf"

var (
	exportFlags queryFlags
	exportDir   string
	exportPDF   bool
)

var exportCmd = &cobra.Command{
	Use:   "export <file>",
	Short: "Write the summary workbooks and an optional PDF report",
	Long: `Writes Custom_Permit_Summary.xlsx and, when --plant is given,
Plantwise_Summary.xlsx. With --pdf a chart report is written as well.`,
	Args: cobra.ExactArgs(1),
	RunE: func(c *cobra.Command, args []string) error {
		q, err := exportFlags.query()
		if err != nil {
			return err
		}
		snap, err := loadSnapshot(args[0])
		if err != nil {
			return err
		}
		d, err := permit.BuildDashboard(snap, q)
		if err != nil {
			return err
		}

		dir := exportDir
		if dir == "" {
			dir = cfg.OutputDir
		}
		written, err := export(c.Context(), dir, filepath.Base(args[0]), d, exportPDF)
		if err != nil {
			return err
		}
		for _, p := range written {
			fmt.Fprintln(c.OutOrStdout(), p)
		}
		return nil
	},
}

func init() {
	exportFlags.bind(exportCmd)
	exportCmd.Flags().StringVarP(&exportDir, "out", "o", "", "output directory (default output_dir from config)")
	exportCmd.Flags().BoolVar(&exportPDF, "pdf", false, "also write "+ReportFile)
}

// export writes every output for d into dir concurrently and returns the
// paths written. A plant with no data is logged and skipped.
func export(ctx context.Context, dir, title string, d permit.Dashboard, pdf bool) ([]string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("output dir: %w", err)
	}

	type output struct {
		path  string
		write func(path string) error
	}
	outputs := []output{{
		path:  filepath.Join(dir, sheet.SummaryFile),
		write: func(p string) error { return sheet.WriteFile(p, sheet.SummaryWorkbook(d.Summary)) },
	}}

	switch {
	case d.Plant != nil:
		ps := *d.Plant
		outputs = append(outputs, output{
			path:  filepath.Join(dir, sheet.PlantFile),
			write: func(p string) error { return sheet.WriteFile(p, sheet.PlantWorkbook(ps)) },
		})
	case d.PlantNoData:
		logger.Warn("plant summary skipped", zap.Error(permit.ErrNoData))
	}

	if pdf {
		outputs = append(outputs, output{
			path:  filepath.Join(dir, ReportFile),
			write: func(p string) error { return writeReport(p, title, d) },
		})
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, o := range outputs {
		g.Go(func() error {
			if gctx.Err() != nil {
				return gctx.Err()
			}
			if err := o.write(o.path); err != nil {
				return fmt.Errorf("%s: %w", filepath.Base(o.path), err)
			}
			logger.Info("wrote", zap.String("path", o.path))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	paths := make([]string, len(outputs))
	for i, o := range outputs {
		paths[i] = o.path
	}
	return paths, nil
}

// writeReport renders the PDF report and checks that the written file reads
// back with the expected number of pages.
func writeReport(path, title string, d permit.Dashboard) error {
	var buf bytes.Buffer
	pages, err := chart.Report(&buf, "Permit Summary - "+title, d)
	if err != nil {
		return err
	}
	got, err := chart.PageCount(bytes.NewReader(buf.Bytes()))
	if err != nil {
		return fmt.Errorf("verify report: %w", err)
	}
	if got != pages {
		return fmt.Errorf("verify report: %d pages written, %d read back", pages, got)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return err
	}
	logger.Debug("report verified", zap.Int("pages", got))
	return nil
}
