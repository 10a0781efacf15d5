package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"lastseen/internal/config"
	"lastseen/internal/runner"
)

func newRunCommands(ctx *commandContext) []*cobra.Command {
	batchCmd := &cobra.Command{
		Use:   "batch",
		Short: "Decide verdicts for upcoming events and persist the cache",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withBackend(cmd, func(runCtx context.Context, cfg *config.Config, b *backend, logger *slog.Logger) error {
				r, err := newRunner(cfg, b, logger)
				if err != nil {
					return err
				}
				report, err := r.Batch(runCtx)
				if err != nil {
					return fmt.Errorf("batch run: %w", err)
				}
				printBatchReport(cmd.OutOrStdout(), report)
				return nil
			})
		},
	}

	incrementalCmd := &cobra.Command{
		Use:   "incremental",
		Short: "Publish the most recent completed event with a SHOW verdict",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withBackend(cmd, func(runCtx context.Context, cfg *config.Config, b *backend, logger *slog.Logger) error {
				r, err := newRunner(cfg, b, logger)
				if err != nil {
					return err
				}
				report, err := r.Incremental(runCtx)
				if err != nil {
					return fmt.Errorf("incremental run: %w", err)
				}
				printIncrementalReport(cmd.OutOrStdout(), report)
				return nil
			})
		},
	}

	runOnceCmd := &cobra.Command{
		Use:   "run-once",
		Short: "Run batch then incremental",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withBackend(cmd, func(runCtx context.Context, cfg *config.Config, b *backend, logger *slog.Logger) error {
				r, err := newRunner(cfg, b, logger)
				if err != nil {
					return err
				}
				batch, incremental, err := r.RunOnce(runCtx)
				if err != nil {
					return fmt.Errorf("run-once: %w", err)
				}
				printBatchReport(cmd.OutOrStdout(), batch)
				printIncrementalReport(cmd.OutOrStdout(), incremental)
				return nil
			})
		},
	}

	return []*cobra.Command{batchCmd, incrementalCmd, runOnceCmd}
}

func printBatchReport(out io.Writer, report runner.BatchReport) {
	fmt.Fprintf(out, "Batch complete: %d events, %d shown, %d hidden, %d already decided\n",
		report.Events, report.Decisions.Shown, report.Decisions.Hidden, report.Decisions.Skipped)
	if !report.Persisted {
		fmt.Fprintln(out, "Verdict cache unchanged")
	}
}

func printIncrementalReport(out io.Writer, report runner.IncrementalReport) {
	switch {
	case report.Placeholder:
		fmt.Fprintf(out, "No qualifying event; published placeholder %q\n", report.State.Place)
	case report.Published:
		fmt.Fprintf(out, "Published: %s\n", placeLabel(report.State.Place, report.State.City))
	default:
		fmt.Fprintf(out, "No qualifying event among %d; status left unchanged\n", report.Events)
	}
}

func placeLabel(place, city string) string {
	if city == "" {
		return place
	}
	return place + " (" + city + ")"
}
