package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nhle/plant-care/internal/schedule"
)

func (c *CLI) newNextCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "next <last-watered> <frequency>",
		Short: "Print the next watering date",
		Long: "Print the date a plant next needs water, given the day it was last " +
			"watered and a frequency such as \"every 3 days\". Prints \"unknown\" " +
			"when either cannot be read.",
		Example: "  plantcare next 2024-01-10 every 3 days",
		Args:    cobra.MinimumNArgs(2),
		Run: func(cmd *cobra.Command, args []string) {
			next := schedule.ComputeNextWateringDate(args[0], strings.Join(args[1:], " "))
			if next == "" {
				next = "unknown"
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), next)
		},
	}
}
