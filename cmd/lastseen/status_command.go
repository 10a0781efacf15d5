package main

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"lastseen/internal/config"
	"lastseen/internal/publish"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the currently published status document",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withBackend(cmd, func(runCtx context.Context, cfg *config.Config, b *backend, logger *slog.Logger) error {
				publisher := publish.New(b.blobs, cfg.Store.StatusKey, logger)
				state, ok, err := publisher.Current(runCtx)
				if err != nil {
					return err
				}
				if jsonOutput {
					if !ok {
						return writeJSON(cmd, map[string]any{"published": false})
					}
					return writeJSON(cmd, state)
				}
				out := cmd.OutOrStdout()
				for _, line := range statusLines(state, ok, b.describe()+"/"+cfg.Store.StatusKey, cfg.Location(), shouldColorize(out)) {
					fmt.Fprintln(out, line)
				}
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print the status document as JSON")
	return cmd
}

func statusLines(state publish.State, ok bool, target string, loc *time.Location, colorize bool) []string {
	lines := renderSectionHeader("Last seen", colorize)
	if !ok {
		lines = append(lines,
			renderStatusLine("Status", statusWarn, "nothing published yet", colorize),
			renderField("Document", target),
		)
		return lines
	}
	lines = append(lines, renderStatusLine("Status", statusOK, "published", colorize))
	lines = append(lines, renderField("Place", state.Place))
	if strings.TrimSpace(state.City) != "" {
		lines = append(lines, renderField("City", state.City))
	}
	if state.MapURL != "" {
		lines = append(lines, renderField("Map", state.MapURL))
	}
	lines = append(lines, renderField("Updated", formatTime(state.Updated, loc)))
	if state.EventTime != nil {
		lines = append(lines, renderField("Event time", formatTime(*state.EventTime, loc)))
	}
	lines = append(lines, renderField("Document", target))
	return lines
}

func formatTime(t time.Time, loc *time.Location) string {
	if t.IsZero() {
		return "-"
	}
	if loc != nil {
		t = t.In(loc)
	}
	return t.Format("2006-01-02 15:04 MST")
}
