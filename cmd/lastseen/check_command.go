package main

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"lastseen/internal/blobstore"
	"lastseen/internal/config"
)

type checkResult struct {
	label   string
	kind    statusKind
	message string
}

func newCheckCommand(ctx *commandContext) *cobra.Command {
	var offline bool

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Verify the store, oracle, geocoder and calendar feed are reachable",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withBackend(cmd, func(runCtx context.Context, cfg *config.Config, b *backend, logger *slog.Logger) error {
				results := runChecks(runCtx, cfg, b, logger, offline)
				out := cmd.OutOrStdout()
				colorize := shouldColorize(out)
				for _, line := range renderSectionHeader("Checks", colorize) {
					fmt.Fprintln(out, line)
				}
				failed := 0
				for _, r := range results {
					if r.kind == statusError {
						failed++
					}
					fmt.Fprintln(out, renderStatusLine(r.label, r.kind, r.message, colorize))
				}
				if failed > 0 {
					return fmt.Errorf("%d check(s) failed", failed)
				}
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&offline, "offline", false, "Skip checks that call the oracle or fetch the calendar")
	return cmd
}

func runChecks(ctx context.Context, cfg *config.Config, b *backend, logger *slog.Logger, offline bool) []checkResult {
	var results []checkResult

	if err := cfg.ValidateRun(); err != nil {
		results = append(results, checkResult{"Config", statusError, firstLine(err)})
	} else {
		results = append(results, checkResult{"Config", statusOK, "run settings present"})
	}

	if checker, ok := b.blobs.(blobstore.Checker); ok {
		if err := checker.Check(ctx); err != nil {
			results = append(results, checkResult{"Store", statusError, firstLine(err)})
		} else {
			results = append(results, checkResult{"Store", statusOK, b.describe()})
		}
	} else {
		results = append(results, checkResult{"Store", statusInfo, b.describe()})
	}

	places := newPlacesClient(cfg, logger)
	if places.Configured() {
		results = append(results, checkResult{"Geocoding", statusOK, "places lookup enabled"})
	} else {
		results = append(results, checkResult{"Geocoding", statusInfo, "no api key; labels pass through"})
	}

	if offline {
		results = append(results,
			checkResult{"Oracle", statusInfo, "skipped"},
			checkResult{"Calendar", statusInfo, "skipped"},
		)
		return results
	}

	if strings.TrimSpace(cfg.LLM.APIKey) == "" {
		results = append(results, checkResult{"Oracle", statusError, "llm.api_key not set"})
	} else if err := newOracleClient(cfg, logger).HealthCheck(ctx); err != nil {
		results = append(results, checkResult{"Oracle", statusError, firstLine(err)})
	} else {
		results = append(results, checkResult{"Oracle", statusOK, cfg.LLM.Model})
	}

	if strings.TrimSpace(cfg.Calendar.ICSURL) == "" {
		results = append(results, checkResult{"Calendar", statusError, "calendar.ics_url not set"})
		return results
	}
	now := time.Now()
	events, err := newCalendarSource(cfg, logger).ListEvents(ctx, now.Add(-cfg.Lookback()), now.Add(cfg.Lookahead()))
	if err != nil {
		results = append(results, checkResult{"Calendar", statusError, firstLine(err)})
	} else {
		results = append(results, checkResult{"Calendar", statusOK, fmt.Sprintf("%d events in window", len(events))})
	}
	return results
}

func firstLine(err error) string {
	if err == nil {
		return ""
	}
	msg := err.Error()
	if idx := strings.IndexByte(msg, '\n'); idx >= 0 {
		msg = msg[:idx]
	}
	return msg
}
