package main

import (
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/stwalsh4118/devrights/internal/reconcile"
	"github.com/stwalsh4118/devrights/internal/sources"
)

// runReport is what `reconcile run` prints when it finishes.
type runReport struct {
	RunID            string   `yaml:"run_id"`
	TransactionFiles []string `yaml:"transaction_files"`
	Sources          struct {
		Parcels      sources.Stats `yaml:"parcels"`
		History      sources.Stats `yaml:"history"`
		Transactions sources.Stats `yaml:"transactions"`
	} `yaml:"sources"`
	Summary    reconcile.Summary `yaml:"summary"`
	Where      string            `yaml:"where,omitempty"`
	Rows       int               `yaml:"rows_written"`
	Outputs    []string          `yaml:"outputs"`
	DurationMS int64             `yaml:"duration_ms"`
}

func printReport(w io.Writer, format string, report *runReport) error {
	switch format {
	case summaryNone:
		return nil
	case summaryYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(report); err != nil {
			return fmt.Errorf("failed to encode summary: %w", err)
		}
		return enc.Close()
	default:
		return printText(w, report)
	}
}

func printText(w io.Writer, r *runReport) error {
	s := r.Summary
	var b strings.Builder

	fmt.Fprintf(&b, "Run %s (%d ms)\n", r.RunID, r.DurationMS)
	fmt.Fprintf(&b, "  transactions read:      %d from %d file(s)\n", s.InputTransactions, len(r.TransactionFiles))
	fmt.Fprintf(&b, "  excluded (record type): %d\n", s.ExcludedRecordType)
	fmt.Fprintf(&b, "  excluded (unapproved):  %d\n", s.ExcludedUnapproved)
	fmt.Fprintf(&b, "  retained:               %d\n", s.Retained)
	fmt.Fprintf(&b, "  joined:                 %d\n", s.Joined)
	fmt.Fprintf(&b, "  joined after history:   %d\n", s.Resolved)
	fmt.Fprintf(&b, "  ambiguous splits:       %d\n", s.Ambiguous)
	fmt.Fprintf(&b, "  missing:                %d\n", s.Missing)
	if s.DuplicateHistory > 0 {
		fmt.Fprintf(&b, "  duplicate history rows: %d\n", s.DuplicateHistory)
	}
	if r.Where != "" {
		fmt.Fprintf(&b, "  rows matching filter:   %d\n", r.Rows)
	}
	if len(s.UnjoinedAPNs) > 0 {
		fmt.Fprintf(&b, "  unjoined APNs:          %s\n", strings.Join(s.UnjoinedAPNs, ", "))
	}
	for _, path := range r.Outputs {
		fmt.Fprintf(&b, "  wrote %s\n", path)
	}

	_, err := io.WriteString(w, b.String())
	return err
}
