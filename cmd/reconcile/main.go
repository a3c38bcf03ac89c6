// Command reconcile enriches development-right transactions from files and
// writes the enriched table as CSV, GeoJSON and SQLite.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/stwalsh4118/devrights/internal/config"
	"github.com/stwalsh4118/devrights/internal/logger"
	"github.com/stwalsh4118/devrights/internal/version"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}

// globalOptions are flags shared by every subcommand.
type globalOptions struct {
	encoding string
	logLevel string
}

func rootCmd() *cobra.Command {
	opts := &globalOptions{}

	cmd := &cobra.Command{
		Use:   "reconcile",
		Short: "Reconcile development-right transactions against the parcel master",
		Long: `Join development-right transactions to the current parcel master, resolve
renumbered APNs through the parcel history, and classify each transfer by
land sensitivity and town-center proximity.

Examples:
  reconcile run --parcels parcels.csv --history history.csv \
      --transactions 'raw/**/*.csv' --out-csv transfers.csv
  reconcile run ... --where 'row.JURISDICTION == "CSLT"' --summary yaml
  reconcile resolve 1318-22-310-001 --history history.csv
`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&opts.encoding, "encoding", "", "Source file encoding: utf-8 or windows-1252 (default from SOURCE_ENCODING)")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "Log level override (debug, info, warn, error)")

	cmd.AddCommand(runCmd(opts))
	cmd.AddCommand(resolveCmd(opts))
	cmd.AddCommand(versionCmd())

	return cmd
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "reconcile %s\n", version.String())
		},
	}
}

// setup loads configuration and builds a logger that writes to stderr, so
// stdout carries only command output.
func (o *globalOptions) setup(stderr io.Writer) (*config.Config, *logger.Logger, error) {
	cfg, err := config.LoadForCLI()
	if err != nil {
		return nil, nil, err
	}
	if o.encoding != "" {
		cfg.Sources.Encoding = o.encoding
	}

	level := cfg.Server.LogLevel
	if o.logLevel != "" {
		level = o.logLevel
	}

	log := logger.NewWithOptions(logger.Options{
		Output: stderr,
		Env:    cfg.Server.Env,
		Level:  level,
	})
	return cfg, log, nil
}
