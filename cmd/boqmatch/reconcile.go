package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"yashubustudio/boqmatch/boqio"
	"yashubustudio/boqmatch/reconcile"
)

type reconcileOptions struct {
	drawingPath string
	itemsPath   string
	outputPath  string
	outputDir   string
	format      string
	stdout      bool
	items       boqio.ItemOptions
}

func newReconcileCmd() *cobra.Command {
	var opts reconcileOptions
	cmd := &cobra.Command{
		Use:   "reconcile",
		Short: "Match line items to drawing layers and write the report",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReconcile(cmd.Context(), opts, cmd.OutOrStdout())
		},
	}
	f := cmd.Flags()
	f.StringVarP(&opts.drawingPath, "drawing", "d", "", "Drawing JSON export (required)")
	f.StringVarP(&opts.itemsPath, "items", "i", "", "CSV/TSV file of BOQ line items (required)")
	f.StringVarP(&opts.outputPath, "output", "o", "", "Report file; \"-\" writes to STDOUT (default uses --output-dir/result_*)")
	f.StringVar(&opts.outputDir, "output-dir", "out", "Directory where reports are written when --output is omitted")
	f.StringVarP(&opts.format, "format", "f", "csv", "Report format: csv or json")
	f.BoolVar(&opts.stdout, "stdout", false, "Print a summary preview to STDOUT")
	f.StringVar(&opts.items.CodeColumn, "code-column", "", "Column name or #index for the item code")
	f.StringVar(&opts.items.DescriptionColumn, "description-column", "", "Column name or #index for the description")
	f.StringVar(&opts.items.UnitColumn, "unit-column", "", "Column name or #index for the declared unit")
	f.StringVar(&opts.items.QuantityColumn, "quantity-column", "", "Column name or #index for the declared quantity")
	_ = cmd.MarkFlagRequired("drawing")
	_ = cmd.MarkFlagRequired("items")
	return cmd
}

func runReconcile(ctx context.Context, opts reconcileOptions, stdout io.Writer) error {
	format := strings.ToLower(strings.TrimSpace(opts.format))
	if format != "csv" && format != "json" {
		return fmt.Errorf("unknown format %q (want csv or json)", opts.format)
	}

	svcOpts, err := cfg.ServiceOptions()
	if err != nil {
		return err
	}
	start := time.Now()
	svcOpts.Progress = func(done, total int) {
		logger.Debug("progress", zap.Int("done", done), zap.Int("total", total))
	}
	svc := reconcile.NewService(svcOpts, logger)

	drawing, err := boqio.ReadDrawing(opts.drawingPath)
	if err != nil {
		return fmt.Errorf("read drawing: %w", err)
	}
	itemOpts := cfg.ItemOptions()
	itemOpts.CodeColumn = opts.items.CodeColumn
	itemOpts.DescriptionColumn = opts.items.DescriptionColumn
	itemOpts.UnitColumn = opts.items.UnitColumn
	itemOpts.QuantityColumn = opts.items.QuantityColumn
	items, err := boqio.ReadLineItems(opts.itemsPath, itemOpts)
	if err != nil {
		return fmt.Errorf("read line items: %w", err)
	}

	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	rep, err := svc.Run(ctx, drawing, items)
	if err != nil {
		return err
	}
	logger.Debug("run finished", zap.String("run_id", rep.RunID), zap.Duration("elapsed", time.Since(start)))

	if opts.outputPath == "-" {
		return writeReport(stdout, rep, format)
	}
	outputPath, err := resolveOutputPath(opts.outputPath, opts.outputDir, format)
	if err != nil {
		return err
	}
	if err := writeReportFile(outputPath, rep, format); err != nil {
		return err
	}
	fmt.Fprintf(stdout, "report written to %s\n", outputPath)

	if opts.stdout {
		printSummary(stdout, rep)
	}
	return nil
}

func writeReport(w io.Writer, rep *reconcile.Report, format string) error {
	if format == "json" {
		return reconcile.WriteJSON(w, rep)
	}
	return reconcile.WriteCSV(w, rep)
}

func writeReportFile(path string, rep *reconcile.Report, format string) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create report file: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close report file: %w", cerr)
		}
	}()
	return writeReport(f, rep, format)
}

func resolveOutputPath(path, dir, format string) (string, error) {
	if path != "" {
		absPath, err := filepath.Abs(path)
		if err != nil {
			return "", fmt.Errorf("resolve output path: %w", err)
		}
		if err := os.MkdirAll(filepath.Dir(absPath), 0o755); err != nil {
			return "", fmt.Errorf("create output directory: %w", err)
		}
		return absPath, nil
	}
	if dir == "" {
		dir = "out"
	}
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolve output dir: %w", err)
	}
	if err := os.MkdirAll(absDir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}
	filename := fmt.Sprintf("result_%s.%s", time.Now().Format("20060102150405"), format)
	return filepath.Join(absDir, filename), nil
}

func printSummary(w io.Writer, rep *reconcile.Report) {
	s := rep.Summary
	fmt.Fprintln(w)
	fmt.Fprintln(w, "==== reconciliation preview ====")
	for i, row := range rep.Rows {
		qty := "-"
		if row.FinalQuantity != nil {
			qty = fmt.Sprintf("%.3f", *row.FinalQuantity)
		}
		layer := row.Layer()
		if layer == "" {
			layer = "(none)"
		}
		fmt.Fprintf(w, "%d. [%s] %s\n", i+1, row.Status, summarizeText(row.Item.Description, 60))
		fmt.Fprintf(w, "    %s %s via %s (%.2f %s)\n", qty, row.Intent.Kind, layer, row.Confidence, row.Bucket)
		for _, warn := range row.Warnings {
			fmt.Fprintf(w, "    ! %s\n", warn)
		}
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "items=%d approved=%d pending=%d unmatched=%d type_mismatch=%d deviations=%d\n",
		s.Items, s.Approved, s.Pending, s.Unmatched, s.TypeMismatch, s.Deviations)
	if len(rep.ResolverWarnings) > 0 {
		fmt.Fprintf(w, "resolver warnings: %d\n", len(rep.ResolverWarnings))
	}
}

func summarizeText(text string, limit int) string {
	text = strings.Join(strings.Fields(text), " ")
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit-1]) + "…"
}
