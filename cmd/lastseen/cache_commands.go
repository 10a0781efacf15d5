package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"lastseen/internal/config"
	"lastseen/internal/verdict"
)

type cacheEntryJSON struct {
	Key       string `json:"key"`
	EventID   string `json:"eventId"`
	Action    string `json:"action"`
	Place     string `json:"place,omitempty"`
	City      string `json:"city,omitempty"`
	MapURL    string `json:"mapUrl,omitempty"`
	DecidedAt string `json:"decidedAt,omitempty"`
}

func newCacheCommand(ctx *commandContext) *cobra.Command {
	cacheCmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect and reset the verdict cache",
	}
	cacheCmd.AddCommand(newCacheListCommand(ctx))
	cacheCmd.AddCommand(newCacheShowCommand(ctx))
	cacheCmd.AddCommand(newCacheClearCommand(ctx))
	return cacheCmd
}

func newCacheListCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool
	var showOnly bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List cached verdicts",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withBackend(cmd, func(runCtx context.Context, cfg *config.Config, b *backend, logger *slog.Logger) error {
				cache := verdict.Load(runCtx, b.verdicts, logger)
				entries := cache.Entries()
				if showOnly {
					filtered := entries[:0]
					for _, entry := range entries {
						if entry.Record.Action() == verdict.ActionShow {
							filtered = append(filtered, entry)
						}
					}
					entries = filtered
				}
				if jsonOutput {
					out := make([]cacheEntryJSON, 0, len(entries))
					for _, entry := range entries {
						out = append(out, toEntryJSON(entry))
					}
					return writeJSON(cmd, out)
				}
				if len(entries) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "Verdict cache is empty")
					return nil
				}
				rows := make([][]string, 0, len(entries))
				for _, entry := range entries {
					view := toEntryJSON(entry)
					rows = append(rows, []string{view.EventID, view.Action, placeLabel(view.Place, view.City), formatDecided(entry.Record, cfg)})
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable(
					[]string{"Event", "Action", "Place", "Decided"},
					rows,
					[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight},
				))
				fmt.Fprintf(cmd.OutOrStdout(), "%d verdicts in %s\n", len(entries), b.describe())
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print entries as JSON")
	cmd.Flags().BoolVar(&showOnly, "show-only", false, "Only list SHOW verdicts")
	return cmd
}

func newCacheShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show <event-id|key>",
		Short: "Show cached verdicts for an event id or full key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withBackend(cmd, func(runCtx context.Context, cfg *config.Config, b *backend, logger *slog.Logger) error {
				cache := verdict.Load(runCtx, b.verdicts, logger)
				matches := matchEntries(cache.Entries(), args[0])
				if len(matches) == 0 {
					return fmt.Errorf("no cached verdict for %q", args[0])
				}
				out := make([]cacheEntryJSON, 0, len(matches))
				for _, entry := range matches {
					out = append(out, toEntryJSON(entry))
				}
				return writeJSON(cmd, out)
			})
		},
	}
}

func newCacheClearCommand(ctx *commandContext) *cobra.Command {
	var confirm bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove every cached verdict so the next run decides again",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !confirm {
				return errors.New("refusing to clear the verdict cache without --yes")
			}
			return ctx.withBackend(cmd, func(runCtx context.Context, cfg *config.Config, b *backend, logger *slog.Logger) error {
				cache := verdict.Load(runCtx, b.verdicts, logger)
				removed := cache.Clear()
				if err := cache.Persist(runCtx); err != nil {
					return fmt.Errorf("persist cleared cache: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed %d cached verdicts\n", removed)
				return nil
			})
		},
	}
	cmd.Flags().BoolVarP(&confirm, "yes", "y", false, "Confirm clearing the cache")
	return cmd
}

func matchEntries(entries []verdict.Entry, query string) []verdict.Entry {
	var out []verdict.Entry
	for _, entry := range entries {
		if string(entry.Key) == query || entry.Key.EventID() == query {
			out = append(out, entry)
		}
	}
	return out
}

func toEntryJSON(entry verdict.Entry) cacheEntryJSON {
	view := cacheEntryJSON{
		Key:     string(entry.Key),
		EventID: entry.Key.EventID(),
		Action:  string(entry.Record.Action()),
	}
	if at := entry.Record.Decided(); !at.IsZero() {
		view.DecidedAt = at.UTC().Format("2006-01-02T15:04:05Z07:00")
	}
	if show, ok := entry.Record.(verdict.Show); ok {
		view.Place = show.Place
		view.City = show.City
		view.MapURL = show.MapURL
	}
	return view
}

func formatDecided(rec verdict.Record, cfg *config.Config) string {
	return formatTime(rec.Decided(), cfg.Location())
}
