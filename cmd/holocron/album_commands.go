package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"holocron/internal/album"
	"holocron/internal/catalog"
)

func newAlbumCommand(ctx *commandContext) *cobra.Command {
	albumCmd := &cobra.Command{
		Use:   "album",
		Short: "Inspect and manage the card album",
	}

	albumCmd.AddCommand(newAlbumStatsCommand(ctx))
	albumCmd.AddCommand(newAlbumListCommand(ctx))
	albumCmd.AddCommand(newAlbumResetCommand(ctx))

	return albumCmd
}

func newAlbumStatsCommand(ctx *commandContext) *cobra.Command {
	var jsonOut bool
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show collection progress per category",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withRuntime(cmd, func(rt *runtime) error {
				stats := rt.album.Stats()
				if jsonOut {
					return writeJSON(cmd, stats)
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable(albumStatsColumns, albumStatsRows(stats),
					withTitle("Album completion")))
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output stats as JSON")
	return cmd
}

func albumStatsRows(stats album.Stats) [][]string {
	row := func(label string, s album.CategoryStats) []string {
		return []string{label, strconv.Itoa(s.Collected), strconv.Itoa(s.Total), fmt.Sprintf("%d%%", s.Percentage)}
	}
	rows := make([][]string, 0, 4)
	for _, category := range catalog.Categories() {
		rows = append(rows, row(category.DisplayName(), stats.Category(category)))
	}
	return append(rows, row("Overall", stats.Overall))
}

func newAlbumListCommand(ctx *commandContext) *cobra.Command {
	var jsonOut bool
	cmd := &cobra.Command{
		Use:   "list [category]",
		Short: "List collected cards",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			categories := catalog.Categories()
			if len(args) == 1 {
				category, err := catalog.ParseCategory(args[0])
				if err != nil {
					return err
				}
				categories = []catalog.Category{category}
			}
			return ctx.withRuntime(cmd, func(rt *runtime) error {
				snapshot := rt.album.Snapshot()
				if jsonOut {
					listing := make(map[catalog.Category]any, len(categories))
					for _, category := range categories {
						listing[category] = snapshot.Collected(category)
					}
					return writeJSON(cmd, listing)
				}

				out := cmd.OutOrStdout()
				colorize := shouldColorize(out)
				var rows [][]string
				for _, category := range categories {
					for _, c := range snapshot.Collected(category) {
						rows = append(rows, []string{c.CardID.String(), c.Name, rarityLabel(c.Rarity, colorize)})
					}
				}
				if len(rows) == 0 {
					fmt.Fprintln(out, "No cards collected yet")
					return nil
				}
				fmt.Fprintln(out, renderTable(albumListColumns, rows,
					withFooter("", fmt.Sprintf("%d cards", len(rows)))))
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output cards as JSON")
	return cmd
}

func newAlbumResetCommand(ctx *commandContext) *cobra.Command {
	var confirm bool
	cmd := &cobra.Command{
		Use:   "reset [category]",
		Short: "Clear the album (and envelope cooldowns) or one category",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var category catalog.Category
			if len(args) == 1 {
				parsed, err := catalog.ParseCategory(args[0])
				if err != nil {
					return err
				}
				category = parsed
			}
			target := "the whole album and every envelope cooldown"
			if category != "" {
				target = "every " + strings.ToLower(category.DisplayName()) + " card"
			}
			if !confirm {
				return errors.New("refusing to clear " + target + " without --yes")
			}
			return ctx.withRuntime(cmd, func(rt *runtime) error {
				if category == "" {
					rt.album.ResetAll(cmd.Context())
				} else if err := rt.album.ResetCategory(cmd.Context(), category); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Cleared %s\n", target)
				return nil
			})
		},
	}
	cmd.Flags().BoolVarP(&confirm, "yes", "y", false, "Confirm the reset")
	return cmd
}
