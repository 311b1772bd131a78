package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"holocron/internal/card"
	"holocron/internal/catalog"
)

func newCardCommand(ctx *commandContext) *cobra.Command {
	var jsonOut bool
	cmd := &cobra.Command{
		Use:   "card <category> <id>",
		Short: "Fetch and show a single card",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			category, err := catalog.ParseCategory(args[0])
			if err != nil {
				return err
			}
			number, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("invalid card id %q: %w", args[1], err)
			}
			id := catalog.NewCardID(category, number)

			return ctx.withRuntime(cmd, func(rt *runtime) error {
				entity, err := rt.client.Fetch(cmd.Context(), id)
				if err != nil {
					return err
				}
				c, err := card.New(id, entity)
				if err != nil {
					return err
				}
				if jsonOut {
					return writeJSON(cmd, c)
				}

				out := cmd.OutOrStdout()
				colorize := shouldColorize(out)
				rows := [][]string{
					{"Card", c.CardID.String()},
					{"Name", c.Name},
					{"Rarity", rarityLabel(c.Rarity, colorize)},
					{"In album", yesNo(rt.album.HasCard(id))},
				}
				for _, field := range c.Details() {
					rows = append(rows, []string{field.Label, field.Value})
				}
				if c.Image != "" {
					rows = append(rows, []string{"Image", c.Image})
				}
				fmt.Fprintln(out, renderTable(cardColumns, rows))
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output the card as JSON")
	return cmd
}
