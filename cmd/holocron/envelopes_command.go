package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"holocron/internal/cooldown"
)

const watchRefreshInterval = time.Second

func newEnvelopesCommand(ctx *commandContext) *cobra.Command {
	var watch bool
	var jsonOut bool

	cmd := &cobra.Command{
		Use:     "envelopes",
		Aliases: []string{"slots"},
		Short:   "Show envelope availability and recharge timers",
		RunE: func(cmd *cobra.Command, args []string) error {
			if watch && jsonOut {
				return fmt.Errorf("--watch and --json cannot be combined")
			}
			return ctx.withRuntime(cmd, func(rt *runtime) error {
				rt.cooldowns.Purge(cmd.Context())
				if jsonOut {
					return writeJSON(cmd, rt.cooldowns.Status())
				}
				out := cmd.OutOrStdout()
				colorize := shouldColorize(out)
				renderEnvelopes(out, rt.cooldowns.Status(), colorize)
				if !watch {
					return nil
				}
				return watchEnvelopes(cmd.Context(), out, rt, colorize)
			})
		},
	}

	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "Refresh every second until every envelope is ready")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output slot status as JSON")
	return cmd
}

func watchEnvelopes(ctx context.Context, out io.Writer, rt *runtime, colorize bool) error {
	ctx, cancel := context.WithCancel(ctx)
	purged := make(chan struct{})
	go func() {
		defer close(purged)
		rt.cooldowns.Run(ctx, rt.cfg.PurgeInterval())
	}()
	// The store closes after return, so the purge loop must be gone first.
	defer func() {
		cancel()
		<-purged
	}()

	ticker := time.NewTicker(watchRefreshInterval)
	defer ticker.Stop()
	for !rt.cooldowns.AllAvailable() {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
		renderEnvelopes(out, rt.cooldowns.Status(), colorize)
	}
	rt.cooldowns.Purge(ctx)
	fmt.Fprintln(out, renderStatusLine("Envelopes", statusOK, "all ready", colorize))
	return nil
}

func renderEnvelopes(out io.Writer, statuses []cooldown.SlotStatus, colorize bool) {
	if colorize {
		// Redraw in place on a terminal.
		fmt.Fprint(out, "\x1b[H\x1b[2J")
	}
	rows := make([][]string, 0, len(statuses))
	for _, status := range statuses {
		state := "ready"
		remaining := "-"
		if !status.Available {
			state = "recharging"
			remaining = cooldown.FormatRemaining(status.Remaining)
		}
		rows = append(rows, []string{status.Slot, state, remaining})
	}
	fmt.Fprintln(out, renderTable(envelopeColumns, rows))
}
