package commands

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/urfave/cli/v3"
)

// AcceptCmd implements the tempo accept command: commit one of the slots
// proposed during an add into the task calendar.
type AcceptCmd struct {
	flags *Flags

	start string
	end   string
}

// NewAcceptCmd creates a new accept command.
func NewAcceptCmd(flags *Flags) *AcceptCmd {
	return &AcceptCmd{flags: flags}
}

// Register adds the accept command to the application.
func (cmd *AcceptCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "accept",
		Usage:     "Accept a proposed slot for a task",
		UsageText: `tempo accept "Essay" --start 2025-06-10T10:00 --end 2025-06-10T12:00`,
		Description: `Writes the task's event to the configured task calendar and adds the
task to the active list as pending. A proposed slot is only a preview
until it is accepted.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "start",
				Usage:       "slot start (YYYY-MM-DDTHH:MM)",
				Required:    true,
				Destination: &cmd.start,
			},
			&cli.StringFlag{
				Name:        "end",
				Usage:       "slot end (YYYY-MM-DDTHH:MM)",
				Required:    true,
				Destination: &cmd.end,
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			name := strings.TrimSpace(strings.Join(c.Args().Slice(), " "))
			if name == "" {
				return fmt.Errorf("nothing to accept; pass the task name as the argument")
			}

			loc, err := cmd.flags.Config.Location()
			if err != nil {
				return err
			}

			start, err := parseSlotTime(cmd.start, loc)
			if err != nil {
				return fmt.Errorf("parse --start: %w", err)
			}
			end, err := parseSlotTime(cmd.end, loc)
			if err != nil {
				return fmt.Errorf("parse --end: %w", err)
			}
			if !end.After(start) {
				return fmt.Errorf("--end must be after --start")
			}

			if err := cmd.flags.EnsureApp(ctx); err != nil {
				return err
			}

			outcomes := cmd.flags.App.Engine.Accept(ctx, name, start, end)
			if failed := renderOutcomes(os.Stdout, outcomes); failed {
				return fmt.Errorf("accept failed")
			}
			return nil
		},
	})

	return app
}

// slotLayouts are the time shapes accepted on the command line.
var slotLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
}

func parseSlotTime(s string, loc *time.Location) (time.Time, error) {
	for _, layout := range slotLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable time %q", s)
}
