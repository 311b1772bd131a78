package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"holocron/internal/album"
	"holocron/internal/cooldown"
	"holocron/internal/loader"
	"holocron/internal/pack"
	"holocron/internal/session"
)

var errNoInput = errors.New("no decision input; rerun with --keep-all or --discard-all")

type openReport struct {
	Session session.Snapshot `json:"session"`
	Summary session.Summary  `json:"summary"`
	Loads   loader.Stats     `json:"loads"`
	Album   album.Stats      `json:"album"`
}

func newOpenCommand(ctx *commandContext) *cobra.Command {
	var keepAll bool
	var discardAll bool
	var jsonOut bool
	var seed uint64

	cmd := &cobra.Command{
		Use:   "open [slot]",
		Short: "Open an envelope and decide which cards to keep",
		Long: "Open an envelope slot (the first available one by default). Every slot starts\n" +
			"recharging, a pack of five cards is drawn, and each loaded card is kept or\n" +
			"discarded. Cards that fail to load can be retried or skipped.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			bulk := keepAll || discardAll
			if jsonOut && !bulk {
				return errors.New("--json requires --keep-all or --discard-all")
			}
			var rng pack.Rand = pack.NewRand()
			if cmd.Flags().Changed("seed") {
				rng = pack.NewSeededRand(seed)
			}

			return ctx.withRuntime(cmd, func(rt *runtime) error {
				slot, err := resolveSlot(rt.cooldowns, args)
				if err != nil {
					return err
				}
				controller := rt.controller(rng)
				snap, err := controller.Open(cmd.Context(), slot)
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				colorize := shouldColorize(out)
				if !jsonOut {
					renderPack(out, rt, snap, colorize)
				}

				if bulk {
					decision := session.Keep
					if discardAll {
						decision = session.Discard
					}
					for _, index := range snap.Undecided() {
						if _, err := controller.Decide(cmd.Context(), index, decision); err != nil {
							return err
						}
					}
				} else {
					p := newPrompter(cmd.InOrStdin(), out)
					if err := resolveFailures(cmd, controller, p, colorize); err != nil {
						return err
					}
					if err := decideInteractively(cmd, controller, p); err != nil {
						return err
					}
				}

				final, _ := controller.Current()
				summary, err := controller.Close(cmd.Context())
				if err != nil {
					return err
				}
				report := openReport{
					Session: final,
					Summary: summary,
					Loads:   rt.tracker.Stats(),
					Album:   rt.album.Stats(),
				}
				if jsonOut {
					return writeJSON(cmd, report)
				}
				renderSummary(out, report, rt.cooldowns.Duration(), colorize)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&keepAll, "keep-all", false, "Keep every loaded card without prompting")
	cmd.Flags().BoolVar(&discardAll, "discard-all", false, "Discard every loaded card without prompting")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output the session report as JSON")
	cmd.Flags().Uint64Var(&seed, "seed", 0, "Seed the pack draw for a reproducible envelope")
	cmd.MarkFlagsMutuallyExclusive("keep-all", "discard-all")
	return cmd
}

// resolveSlot returns the requested slot, or the first available one.
func resolveSlot(cooldowns *cooldown.Manager, args []string) (string, error) {
	if len(args) == 1 {
		return strings.TrimSpace(args[0]), nil
	}
	var soonest *cooldown.SlotStatus
	for _, status := range cooldowns.Status() {
		if status.Available {
			return status.Slot, nil
		}
		if soonest == nil || status.Remaining < soonest.Remaining {
			s := status
			soonest = &s
		}
	}
	if soonest == nil {
		return "", errors.New("no envelope slots configured")
	}
	return "", fmt.Errorf("all envelopes recharging; slot %s ready in %s: %w",
		soonest.Slot, cooldown.FormatRemaining(soonest.Remaining), session.ErrOnCooldown)
}

func renderPack(out io.Writer, rt *runtime, snap session.Snapshot, colorize bool) {
	for _, line := range renderSectionHeader(fmt.Sprintf("Envelope %s · %s", snap.Slot, snap.Recipe), colorize) {
		fmt.Fprintln(out, line)
	}
	fmt.Fprintln(out, renderTable(packColumns, packRows(rt, snap.Items, colorize)))
}

func packRows(rt *runtime, items []loader.Item, colorize bool) [][]string {
	rows := make([][]string, 0, len(items))
	for _, item := range items {
		name := "-"
		rarity := "-"
		if item.Card != nil {
			name = item.Card.Name
			rarity = rarityLabel(item.Card.Rarity, colorize)
		}
		status := string(item.State)
		if item.State == loader.StateFailed && item.Kind != "" {
			status = fmt.Sprintf("failed (%s)", item.Kind)
		}
		rows = append(rows, []string{
			strconv.Itoa(item.Index + 1),
			item.ID.String(),
			name,
			rarity,
			yesNo(rt.album.HasCard(item.ID)),
			status,
		})
	}
	return rows
}

type prompter struct {
	in  *bufio.Reader
	out io.Writer
}

func newPrompter(in io.Reader, out io.Writer) *prompter {
	return &prompter{in: bufio.NewReader(in), out: out}
}

func (p *prompter) ask(question string, choices ...string) (string, error) {
	for {
		fmt.Fprintf(p.out, "%s [%s]: ", question, strings.Join(choices, "/"))
		line, err := p.in.ReadString('\n')
		answer := strings.ToLower(strings.TrimSpace(line))
		if slices.Contains(choices, answer) {
			return answer, nil
		}
		if err != nil {
			fmt.Fprintln(p.out)
			if errors.Is(err, io.EOF) {
				return "", errNoInput
			}
			return "", err
		}
		fmt.Fprintf(p.out, "Please answer %s\n", strings.Join(choices, " or "))
	}
}

func resolveFailures(cmd *cobra.Command, controller *session.Controller, p *prompter, colorize bool) error {
	snap, ok := controller.Current()
	if !ok {
		return session.ErrNoSession
	}
	for _, index := range snap.Failed() {
		item := snap.Items[index]
		for item.State == loader.StateFailed {
			answer, err := p.ask(fmt.Sprintf("#%d %s failed to load (%s). Retry or skip?", index+1, item.ID, item.Error), "r", "s")
			if err != nil {
				return err
			}
			if answer == "s" {
				fmt.Fprintln(p.out, renderStatusLine(item.ID.String(), statusWarn, "skipped", colorize))
				break
			}
			item, err = controller.Retry(cmd.Context(), index)
			if err != nil {
				return err
			}
			if item.State == loader.StateLoaded {
				fmt.Fprintln(p.out, renderStatusLine(item.ID.String(), statusOK, item.Card.Name, colorize))
			} else {
				fmt.Fprintln(p.out, renderStatusLine(item.ID.String(), statusError, item.Error, colorize))
			}
		}
	}
	return nil
}

func decideInteractively(cmd *cobra.Command, controller *session.Controller, p *prompter) error {
	snap, ok := controller.Current()
	if !ok {
		return session.ErrNoSession
	}
	for _, index := range snap.Undecided() {
		item := snap.Items[index]
		label := fmt.Sprintf("#%d %s %q (%s)", index+1, item.ID, item.Card.Name, item.Card.Rarity.DisplayName())
		answer, err := p.ask("Keep "+label+"?", "k", "d")
		if err != nil {
			return err
		}
		decision := session.Keep
		if answer == "d" {
			decision = session.Discard
		}
		if _, err := controller.Decide(cmd.Context(), index, decision); err != nil {
			return err
		}
	}
	return nil
}

func renderSummary(out io.Writer, report openReport, recharge time.Duration, colorize bool) {
	summary := report.Summary
	fmt.Fprintln(out, renderStatusLine("Kept", statusOK, strconv.Itoa(len(summary.Kept)), colorize))
	fmt.Fprintln(out, renderStatusLine("Discarded", statusInfo, strconv.Itoa(len(summary.Discarded)), colorize))
	if len(summary.Dropped) > 0 {
		ids := make([]string, 0, len(summary.Dropped))
		for _, id := range summary.Dropped {
			ids = append(ids, id.String())
		}
		fmt.Fprintln(out, renderStatusLine("Dropped", statusWarn, strings.Join(ids, ", "), colorize))
	}
	loads := report.Loads
	fmt.Fprintln(out, renderStatusLine("Loads", statusInfo,
		fmt.Sprintf("%d%% success, avg %dms, %d errors", loads.SuccessRatePercent, loads.AverageLoadTimeMS, loads.TotalErrors), colorize))
	overall := report.Album.Overall
	fmt.Fprintln(out, renderStatusLine("Album", statusInfo,
		fmt.Sprintf("%d/%d (%d%%)", overall.Collected, overall.Total, overall.Percentage), colorize))
	fmt.Fprintln(out, renderStatusLine("Recharge", statusInfo, "all envelopes ready in "+cooldown.FormatRemaining(recharge), colorize))
}
