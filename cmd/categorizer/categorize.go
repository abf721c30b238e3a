package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/Veraticus/spice-categorizer/internal/cli"
	"github.com/Veraticus/spice-categorizer/internal/common"
	"github.com/Veraticus/spice-categorizer/internal/config"
	"github.com/Veraticus/spice-categorizer/internal/ingest"
	"github.com/Veraticus/spice-categorizer/internal/model"
	"github.com/Veraticus/spice-categorizer/internal/pipeline"
	"github.com/Veraticus/spice-categorizer/internal/report"
	"github.com/Veraticus/spice-categorizer/internal/session"
	"github.com/Veraticus/spice-categorizer/internal/sheets"
	"github.com/Veraticus/spice-categorizer/internal/tui"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func categorizeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "categorize <file>",
		Short: "Categorize the expenses in a CSV or OFX file",
		Long: `Categorize every expense in a CSV (date, amount, description columns) or
OFX/QFX file with a language model, flag anomalies, and print a summary.

Rows with an unparseable or non-positive amount are skipped.`,
		Args: cobra.ExactArgs(1),
		RunE: runCategorize,
	}

	cmd.Flags().Bool("export", false, "Write results to a timestamped CSV file")
	cmd.Flags().String("export-dir", "", "Directory for the CSV export (default: export.dir)")
	cmd.Flags().Bool("sheets", false, "Export results to Google Sheets")
	cmd.Flags().BoolP("interactive", "i", false, "Browse results in an interactive viewer")
	cmd.Flags().Int("concurrency", 0, "Parallel classifier calls (default: pipeline.concurrency)")
	cmd.Flags().Duration("delay", 0, "Pause after each classifier call (default: pipeline.delay)")
	cmd.Flags().Bool("strict", false, "Map categories outside the vocabulary to Uncategorized")

	_ = viper.BindPFlag("export.dir", cmd.Flags().Lookup("export-dir"))
	_ = viper.BindPFlag("pipeline.concurrency", cmd.Flags().Lookup("concurrency"))
	_ = viper.BindPFlag("pipeline.delay", cmd.Flags().Lookup("delay"))
	_ = viper.BindPFlag("pipeline.strict_categories", cmd.Flags().Lookup("strict"))

	return cmd
}

func runCategorize(cmd *cobra.Command, args []string) error {
	path := args[0]

	handler := cli.NewInterruptHandler(cmd.ErrOrStderr(), "categorizer categorize "+path)
	ctx := handler.HandleInterrupts(cmd.Context())

	exportCSV, _ := cmd.Flags().GetBool("export")
	exportSheets, _ := cmd.Flags().GetBool("sheets")
	interactive, _ := cmd.Flags().GetBool("interactive")

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	// Resolve the Sheets config before spending any classifier calls
	var sheetsCfg *sheets.Config
	if exportSheets {
		sheetsCfg, err = config.LoadSheetsConfig(viper.GetViper())
		if err != nil {
			return common.NewUserError("Google Sheets is not configured; run 'categorizer auth sheets' or set sheets.service_account_path", err)
		}
	}

	txns, err := loadTransactions(path)
	if err != nil {
		return err
	}

	orchestrator, err := newOrchestrator(ctx, cfg)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(txns) == 0 {
		slog.Warn("Input has no usable rows", "file", path, "error", common.ErrNoTransactions)
		fmt.Fprintln(out, cli.FormatWarning("No transactions with a positive amount and a description were found"))
	}
	fmt.Fprintln(out, cli.FormatInfo(fmt.Sprintf("Categorizing %d transactions from %s", len(txns), filepath.Base(path))))

	started := time.Now()
	records, err := orchestrator.Run(ctx, txns, progressReporter(cmd.ErrOrStderr(), len(txns)))
	if err != nil {
		if handler.WasInterrupted() {
			return nil
		}
		return err
	}

	run := session.NewRun(filepath.Base(path), records, started)
	slog.Info("Categorization finished",
		"run_id", run.ID,
		"records", len(records),
		"anomalies", len(run.Summary.Anomalies),
		"duration", time.Since(started).Round(time.Millisecond))

	fmt.Fprintln(out, report.Render(run.Summary))

	if exportCSV {
		exported, exportErr := report.ExportFile(cfg.Export.Dir, run.CreatedAt, run.Records)
		if exportErr != nil {
			return fmt.Errorf("failed to export results: %w", exportErr)
		}
		fmt.Fprintln(out, cli.FormatSuccess("Results written to "+exported))
	}

	if sheetsCfg != nil {
		if err := exportToSheets(ctx, out, *sheetsCfg, run); err != nil {
			return err
		}
	}

	if interactive {
		return tui.Run(ctx, run)
	}

	return nil
}

// loadTransactions reads and normalizes the input file. A missing column is
// reported to the user before any classification happens.
func loadTransactions(path string) ([]model.Transaction, error) {
	table, err := ingest.ReadFile(path)
	if err != nil {
		if errors.Is(err, common.ErrUnsupportedFile) {
			return nil, common.NewUserError("Only .csv, .ofx and .qfx files are supported", err)
		}
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	txns, err := ingest.Normalize(table)
	if err != nil {
		var schemaErr *common.SchemaError
		if errors.As(err, &schemaErr) {
			return nil, common.NewUserError(fmt.Sprintf("%s is %s", filepath.Base(path), schemaErr.Error()), err)
		}
		return nil, err
	}

	if dropped := len(table.Rows) - len(txns); dropped > 0 {
		slog.Info("Skipped rows without a positive amount or description", "rows", dropped)
	}
	return txns, nil
}

// progressReporter drives a terminal progress bar from pipeline progress.
func progressReporter(w io.Writer, total int) pipeline.ProgressFunc {
	if total == 0 {
		return nil
	}

	bar := progressbar.NewOptions(total,
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetDescription("Categorizing"),
		progressbar.OptionSetWidth(30),
		progressbar.OptionShowCount(),
		progressbar.OptionSetPredictTime(true),
		progressbar.OptionClearOnFinish(),
	)

	return func(p pipeline.Progress) {
		bar.Describe(p.Current)
		_ = bar.Set(p.Completed)
		if p.Completed == p.Total {
			_ = bar.Finish()
		}
	}
}

func exportToSheets(ctx context.Context, out io.Writer, cfg sheets.Config, run *session.Run) error {
	writer, err := sheets.NewWriter(ctx, cfg, slog.Default())
	if err != nil {
		return fmt.Errorf("failed to create sheets writer: %w", err)
	}

	spreadsheetID, err := writer.Write(ctx, run)
	if err != nil {
		return fmt.Errorf("failed to export to Google Sheets: %w", err)
	}

	fmt.Fprintln(out, cli.FormatSuccess(fmt.Sprintf("Exported to https://docs.google.com/spreadsheets/d/%s", spreadsheetID)))
	return nil
}
