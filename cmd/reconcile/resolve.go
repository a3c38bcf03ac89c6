package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/stwalsh4118/devrights/internal/models"
	"github.com/stwalsh4118/devrights/internal/reconcile"
	"github.com/stwalsh4118/devrights/internal/sources"
)

type resolveOptions struct {
	history string
	parcels string
	output  string
}

// resolveResult is the printed outcome of `reconcile resolve`.
type resolveResult struct {
	APN        string          `yaml:"apn"`
	Resolution string          `yaml:"resolution"`
	Successors []string        `yaml:"successors"`
	Active     map[string]bool `yaml:"active,omitempty"`
}

func resolveCmd(global *globalOptions) *cobra.Command {
	opts := &resolveOptions{}

	cmd := &cobra.Command{
		Use:   "resolve APN",
		Short: "Look up what an APN was renumbered or split into",
		Long: `Look an APN up in the parcel history and print its current APN(s).
With --parcels, each successor is also checked against the parcel master.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := global.setup(cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			history, _, err := sources.LoadHistory(opts.history, cfg.Sources.Encoding)
			if err != nil {
				return err
			}

			var index reconcile.ParcelIndex
			if opts.parcels != "" {
				parcels, _, err := sources.LoadParcels(opts.parcels, cfg.Sources.Encoding)
				if err != nil {
					return err
				}
				index = reconcile.BuildIndex(parcels)
			}

			result := resolveAPN(args[0], history, index)
			log.Debug("Resolved APN", map[string]interface{}{
				"apn":        result.APN,
				"resolution": result.Resolution,
				"successors": result.Successors,
			})
			return printResolve(cmd.OutOrStdout(), opts.output, result)
		},
	}

	cmd.Flags().StringVar(&opts.history, "history", "", "Parcel history CSV")
	cmd.Flags().StringVar(&opts.parcels, "parcels", "", "Parcel master CSV to check successors against (optional)")
	cmd.Flags().StringVarP(&opts.output, "output", "o", summaryText, "Output format: text or yaml")
	_ = cmd.MarkFlagRequired("history")

	return cmd
}

func resolveAPN(apn string, history []models.ParcelHistory, parcels reconcile.ParcelIndex) resolveResult {
	apn = strings.TrimSpace(apn)
	res := reconcile.Resolve(apn, history)

	result := resolveResult{
		APN:        apn,
		Resolution: res.Kind.String(),
		Successors: res.IDs,
	}
	if result.Successors == nil {
		result.Successors = []string{}
	}

	if parcels != nil {
		result.Active = make(map[string]bool, len(res.IDs)+1)
		_, result.Active[apn] = parcels.Lookup(apn)
		for _, id := range res.IDs {
			_, result.Active[id] = parcels.Lookup(id)
		}
	}
	return result
}

func printResolve(w io.Writer, format string, r resolveResult) error {
	if format == summaryYAML {
		return yaml.NewEncoder(w).Encode(r)
	}

	line := fmt.Sprintf("%s: %s", r.APN, r.Resolution)
	if len(r.Successors) > 0 {
		line += " -> " + strings.Join(r.Successors, ", ")
	}
	if _, err := fmt.Fprintln(w, line); err != nil {
		return err
	}

	for _, id := range r.Successors {
		if active, ok := r.Active[id]; ok && !active {
			if _, err := fmt.Fprintf(w, "  %s is not in the parcel master\n", id); err != nil {
				return err
			}
		}
	}
	return nil
}
