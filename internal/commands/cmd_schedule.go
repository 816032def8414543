package commands

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/urfave/cli/v3"
)

// ScheduleCmd implements the tempo schedule command: a read-only
// reconciliation of calendar events and local tasks.
type ScheduleCmd struct {
	flags *Flags

	date string
}

// NewScheduleCmd creates a new schedule command.
func NewScheduleCmd(flags *Flags) *ScheduleCmd {
	return &ScheduleCmd{flags: flags}
}

// Register adds the schedule command to the application.
func (cmd *ScheduleCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "schedule",
		Usage:     "Show the merged schedule for a day",
		UsageText: "tempo schedule [--date YYYY-MM-DD]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "date",
				Usage:       "anchor date (defaults to today)",
				Destination: &cmd.date,
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			var anchor *time.Time
			if cmd.date != "" {
				loc, err := cmd.flags.Config.Location()
				if err != nil {
					return err
				}
				d, err := time.ParseInLocation("2006-01-02", cmd.date, loc)
				if err != nil {
					return fmt.Errorf("parse --date: %w", err)
				}
				anchor = &d
			}

			if err := cmd.flags.EnsureApp(ctx); err != nil {
				return err
			}

			entries, err := cmd.flags.App.Engine.Reconcile(ctx, nil, anchor)
			if err != nil {
				return err
			}

			renderEntries(os.Stdout, entries)
			return nil
		},
	})

	return app
}
