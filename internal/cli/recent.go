package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.trai.ch/zerr"

	"github.com/nhle/plant-care/internal/model"
	"github.com/nhle/plant-care/internal/recent"
)

func (c *CLI) newRecentCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "recent",
		Short: "Show or edit the recently viewed plants",
		Args:  cobra.NoArgs,
		RunE:  c.listRecent,
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List recently viewed plants, most recent first",
		Args:  cobra.NoArgs,
		RunE:  c.listRecent,
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "remove <plant-id>",
		Short: "Forget one plant",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := c.environment(cmd.Context(), false)
			if err != nil {
				return err
			}
			items, err := env.Tracker.RemoveItem(cmd.Context(), args[0])
			if err != nil {
				return zerr.With(zerr.Wrap(err, "removing recent item"), "plant_id", args[0])
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%d recently viewed plant(s) left\n", len(items))
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Forget every recently viewed plant",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			env, err := c.environment(cmd.Context(), false)
			if err != nil {
				return err
			}
			if err := env.Tracker.Clear(cmd.Context()); err != nil {
				return zerr.Wrap(err, "clearing recent items")
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Recently viewed list cleared")
			return nil
		},
	})

	return cmd
}

func (c *CLI) listRecent(cmd *cobra.Command, _ []string) error {
	env, err := c.environment(cmd.Context(), false)
	if err != nil {
		return err
	}
	items, err := env.Tracker.LoadAll(cmd.Context())
	if err != nil {
		return zerr.Wrap(err, "loading recent items")
	}

	out := cmd.OutOrStdout()
	if len(items) == 0 {
		_, _ = fmt.Fprintln(out, "No recently viewed plants")
		return nil
	}
	for i, it := range items {
		name := it.ID
		if p, err := recent.Decode[model.Plant](it); err == nil && p.PlantName != "" {
			name = p.PlantName
		}
		_, _ = fmt.Fprintf(out, "%d. %s (%s)\n", i+1, name, it.ID)
	}
	return nil
}
