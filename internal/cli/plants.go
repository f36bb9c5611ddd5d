package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"

	"github.com/nhle/plant-care/internal/model"
	"github.com/nhle/plant-care/internal/schedule"
	"github.com/nhle/plant-care/internal/store"
)

func (c *CLI) newSyncCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Pull every plant from the API into the local mirror",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			env, err := c.environment(cmd.Context(), false)
			if err != nil {
				return err
			}
			res := env.Poller.SyncOnce(cmd.Context())
			if res.Error != nil {
				if res.AuthError != nil {
					return fmt.Errorf("%w: run 'plantcare login'", res.Error)
				}
				return zerr.Wrap(res.Error, "syncing plants")
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Synced %d plant(s), %d new\n", len(res.Plants), res.NewPlantCount)
			return nil
		},
	}
}

// dayFlag resolves a --date value, defaulting to today.
func dayFlag(env *Env, value string) (string, error) {
	if value == "" {
		return schedule.FormatDate(schedule.Today(env.Now)), nil
	}
	d, err := schedule.ParseDate(value)
	if err != nil {
		return "", zerr.With(zerr.Wrap(err, "invalid --date"), "date", value)
	}
	return schedule.FormatDate(d), nil
}

func (c *CLI) newDueCmd() *cobra.Command {
	var date string
	var mine bool
	cmd := &cobra.Command{
		Use:   "due",
		Short: "List plants due for water on or before a day",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			env, err := c.environment(cmd.Context(), false)
			if err != nil {
				return err
			}
			day, err := dayFlag(env, date)
			if err != nil {
				return err
			}
			filter := store.PlantFilter{DueBy: &day, SortBy: model.SortByNextWatering}
			if mine {
				u, err := currentUser(env)
				if err != nil {
					return err
				}
				filter.OwnerEmail = &u.Email
			}
			plants, err := env.Store.GetPlants(cmd.Context(), filter)
			if err != nil {
				return zerr.Wrap(err, "listing due plants")
			}

			out := cmd.OutOrStdout()
			if len(plants) == 0 {
				_, _ = fmt.Fprintf(out, "Nothing to water by %s\n", day)
				return nil
			}
			for _, p := range plants {
				note := ""
				if p.NextWateringDate < day {
					note = " (overdue)"
				}
				_, _ = fmt.Fprintf(out, "%s  %-24s %s%s\n", p.NextWateringDate, p.PlantName, p.OwnerEmail, note)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&date, "date", "", "Day to check, YYYY-MM-DD (default today)")
	cmd.Flags().BoolVar(&mine, "mine", false, "Only plants owned by the signed-in user")
	return cmd
}

func (c *CLI) newCheckCmd() *cobra.Command {
	var date string
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Run the watering check once and send reminders",
		Long: "Record a notification for every plant due on the given day and, when " +
			"email reminders are enabled, mail each owner. Safe to run from cron: " +
			"a plant is only notified once per day.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			env, err := c.environment(cmd.Context(), false)
			if err != nil {
				return err
			}
			day, err := dayFlag(env, date)
			if err != nil {
				return err
			}
			d, _ := schedule.ParseDate(day)
			res := env.Poller.CheckDue(cmd.Context(), d)
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%d plant(s) due by %s, %d new notification(s)\n",
				len(res.Due), res.Day, res.NewNotifications)
			if res.Error != nil {
				return zerr.Wrap(res.Error, "watering check")
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&date, "date", "", "Day to check, YYYY-MM-DD (default today)")
	return cmd
}

// exportDoc is the YAML document written by export.
type exportDoc struct {
	ExportedAt string        `yaml:"exported_at"`
	Owner      string        `yaml:"owner,omitempty"`
	Plants     []model.Plant `yaml:"plants"`
}

func (c *CLI) newExportCmd() *cobra.Command {
	var mine bool
	var output string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the local plant mirror as YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			env, err := c.environment(cmd.Context(), false)
			if err != nil {
				return err
			}

			doc := exportDoc{ExportedAt: env.Now().UTC().Format("2006-01-02T15:04:05Z")}
			filter := store.PlantFilter{SortBy: model.SortByName}
			if mine {
				u, err := currentUser(env)
				if err != nil {
					return err
				}
				filter.OwnerEmail = &u.Email
				doc.Owner = u.Email
			}
			doc.Plants, err = env.Store.GetPlants(cmd.Context(), filter)
			if err != nil {
				return zerr.Wrap(err, "loading plants")
			}

			var w io.Writer = cmd.OutOrStdout()
			if output != "" && output != "-" {
				f, err := os.Create(output)
				if err != nil {
					return zerr.With(zerr.Wrap(err, "creating export file"), "path", output)
				}
				defer f.Close()
				w = f
			}

			enc := yaml.NewEncoder(w)
			enc.SetIndent(2)
			if err := enc.Encode(doc); err != nil {
				return zerr.Wrap(err, "encoding export")
			}
			if err := enc.Close(); err != nil {
				return zerr.Wrap(err, "encoding export")
			}
			if w != cmd.OutOrStdout() {
				_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Exported %d plant(s) to %s\n", len(doc.Plants), output)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&mine, "mine", false, "Only plants owned by the signed-in user")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write to a file instead of stdout")
	return cmd
}
