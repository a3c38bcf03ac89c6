package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/stwalsh4118/devrights/internal/config"
	"github.com/stwalsh4118/devrights/internal/export"
	"github.com/stwalsh4118/devrights/internal/filter"
	"github.com/stwalsh4118/devrights/internal/logger"
	"github.com/stwalsh4118/devrights/internal/metrics"
	"github.com/stwalsh4118/devrights/internal/models"
	"github.com/stwalsh4118/devrights/internal/services"
	"github.com/stwalsh4118/devrights/internal/sources"
)

// Summary formats.
const (
	summaryText = "text"
	summaryYAML = "yaml"
	summaryNone = "none"
)

type runOptions struct {
	parcels      string
	history      string
	transactions []string

	outCSV         string
	outGeoJSON     string
	outSQLite      string
	table          string
	metricsFile    string
	where          string
	summaryFormat  string
	skipDefaultCSV bool
}

func runCmd(global *globalOptions) *cobra.Command {
	opts := &runOptions{}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Enrich transaction files and write the enriched table",
		Long: `Read the parcel master, the parcel history and one or more transaction files,
enrich every approved transfer or conversion-with-transfer, and write the
result. --transactions accepts glob patterns, including ** (quote them), and
may be repeated; files ending in .json are read as web service JSON.

When no output flag is given the table is written to
$EXPORT_DIR/<EXPORT_TABLE>.csv.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := global.setup(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			return runReconcile(cmd.Context(), cfg, log, opts, cmd.OutOrStdout())
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.parcels, "parcels", "", "Parcel master CSV")
	flags.StringVar(&opts.history, "history", "", "Parcel history CSV (optional)")
	flags.StringArrayVar(&opts.transactions, "transactions", nil, "Transaction CSV/JSON file or glob (repeatable)")
	flags.StringVar(&opts.outCSV, "out-csv", "", "Write the enriched table as CSV")
	flags.StringVar(&opts.outGeoJSON, "out-geojson", "", "Write the enriched table as a GeoJSON FeatureCollection")
	flags.StringVar(&opts.outSQLite, "out-sqlite", "", "Write the enriched table into a SQLite database (default EXPORT_SQLITE_PATH)")
	flags.StringVar(&opts.table, "table", "", "Table name in the SQLite database (default EXPORT_TABLE)")
	flags.StringVar(&opts.metricsFile, "metrics-textfile", "", "Write run metrics in Prometheus text format to this file")
	flags.StringVar(&opts.where, "where", "", "CEL expression over row selecting which enriched rows to write")
	flags.StringVar(&opts.summaryFormat, "summary", summaryText, "Run summary on stdout: text, yaml or none")
	flags.BoolVar(&opts.skipDefaultCSV, "no-default-output", false, "Do not write the default CSV when no output flag is given")

	_ = cmd.MarkFlagRequired("parcels")
	_ = cmd.MarkFlagRequired("transactions")

	return cmd
}

// runReconcile loads the inputs, runs the reconciliation and writes every
// requested output. The summary is printed to out.
func runReconcile(ctx context.Context, cfg *config.Config, log *logger.Logger, opts *runOptions, out io.Writer) error {
	switch opts.summaryFormat {
	case summaryText, summaryYAML, summaryNone:
	default:
		return fmt.Errorf("unknown summary format %q (want text, yaml or none)", opts.summaryFormat)
	}

	if opts.table != "" && !config.ValidTableName(opts.table) {
		return fmt.Errorf("invalid table name %q", opts.table)
	}

	tables, report, err := loadTables(cfg, log, opts)
	if err != nil {
		return err
	}

	evaluator, err := filter.NewEvaluator()
	if err != nil {
		return fmt.Errorf("failed to build row filter: %w", err)
	}
	collector := metrics.NewCollector(metrics.DefaultNamespace)
	service := services.NewTransferService(services.Store{}, evaluator, collector, log)

	result, err := service.Reconcile(ctx, tables, opts.where)
	if err != nil {
		if errors.Is(err, services.ErrNoTransactions) {
			return fmt.Errorf("no transactions found in %v", opts.transactions)
		}
		return err
	}

	report.RunID = result.RunID
	report.Summary = result.Summary
	report.Rows = len(result.Transactions)
	report.Where = opts.where
	report.DurationMS = result.Duration.Milliseconds()

	outputs, err := writeOutputs(cfg, log.WithRunID(result.RunID), opts, result.Transactions)
	if err != nil {
		return err
	}
	report.Outputs = outputs

	if opts.metricsFile != "" {
		if err := prometheus.WriteToTextfile(opts.metricsFile, collector.Registry()); err != nil {
			return fmt.Errorf("failed to write metrics: %w", err)
		}
		report.Outputs = append(report.Outputs, opts.metricsFile)
	}

	return printReport(out, opts.summaryFormat, report)
}

// loadTables reads the three inputs and records what each reader skipped.
func loadTables(cfg *config.Config, log *logger.Logger, opts *runOptions) (services.Tables, *runReport, error) {
	enc := cfg.Sources.Encoding
	report := &runReport{}

	paths, err := sources.Expand(opts.transactions)
	if err != nil {
		return services.Tables{}, nil, err
	}
	report.TransactionFiles = paths

	parcels, parcelStats, err := sources.LoadParcels(opts.parcels, enc)
	if err != nil {
		return services.Tables{}, nil, err
	}
	report.Sources.Parcels = parcelStats

	var history []models.ParcelHistory
	if opts.history != "" {
		var historyStats sources.Stats
		history, historyStats, err = sources.LoadHistory(opts.history, enc)
		if err != nil {
			return services.Tables{}, nil, err
		}
		report.Sources.History = historyStats
	}

	transactions, txStats, err := sources.LoadTransactions(paths, enc)
	if err != nil {
		return services.Tables{}, nil, err
	}
	report.Sources.Transactions = txStats

	log.Info("Loaded source tables", map[string]interface{}{
		"parcels":           len(parcels),
		"history":           len(history),
		"transactions":      len(transactions),
		"transaction_files": len(paths),
		"encoding":          enc,
	})
	for name, stats := range map[string]sources.Stats{
		"parcels":      parcelStats,
		"history":      report.Sources.History,
		"transactions": txStats,
	} {
		if stats.SkippedBlankKey+stats.BlankAPN+stats.SkippedMalformed+stats.InvalidValues > 0 {
			log.Warn("Source rows skipped or partially read", map[string]interface{}{
				"source":            name,
				"skipped_blank_key": stats.SkippedBlankKey,
				"blank_apn":         stats.BlankAPN,
				"skipped_malformed": stats.SkippedMalformed,
				"invalid_values":    stats.InvalidValues,
			})
		}
	}

	return services.Tables{
		Parcels:      parcels,
		History:      history,
		Transactions: transactions,
		Source:       metrics.SourceCLI,
	}, report, nil
}

// writeOutputs writes each requested format and returns the paths written.
func writeOutputs(cfg *config.Config, log *logger.Logger, opts *runOptions, rows []models.EnrichedTransaction) ([]string, error) {
	table := opts.table
	if table == "" {
		table = cfg.Export.Table
	}

	csvPath := opts.outCSV
	sqlitePath := opts.outSQLite
	if sqlitePath == "" {
		sqlitePath = cfg.Export.SQLitePath
	}
	if csvPath == "" && opts.outGeoJSON == "" && sqlitePath == "" && !opts.skipDefaultCSV {
		csvPath = filepath.Join(cfg.Export.Dir, table+".csv")
	}

	var written []string
	start := time.Now()

	if csvPath != "" {
		if err := writeFile(csvPath, func(w io.Writer) error { return export.WriteCSV(w, rows) }); err != nil {
			return written, err
		}
		written = append(written, csvPath)
	}

	if opts.outGeoJSON != "" {
		if err := writeFile(opts.outGeoJSON, func(w io.Writer) error { return export.WriteGeoJSON(w, rows) }); err != nil {
			return written, err
		}
		written = append(written, opts.outGeoJSON)
	}

	if sqlitePath != "" {
		if err := writeSQLite(sqlitePath, table, rows); err != nil {
			return written, err
		}
		written = append(written, sqlitePath)
	}

	log.Info("Wrote enriched table", map[string]interface{}{
		"rows":        len(rows),
		"outputs":     written,
		"table":       table,
		"duration_ms": time.Since(start).Milliseconds(),
	})
	return written, nil
}

// writeFile creates path, and its directory, and hands it to write.
func writeFile(path string, write func(io.Writer) error) error {
	if err := ensureDir(path); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}

	if err := write(f); err != nil {
		f.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", path, err)
	}
	return nil
}

func writeSQLite(path, table string, rows []models.EnrichedTransaction) error {
	if err := ensureDir(path); err != nil {
		return err
	}

	w, err := export.OpenSQLite(path, table)
	if err != nil {
		return err
	}
	defer w.Close()

	if err := w.Write(rows); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

func ensureDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory %s: %w", dir, err)
	}
	return nil
}
