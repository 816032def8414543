package commands

import (
	"context"
	"os"

	"github.com/urfave/cli/v3"
)

// HistoryCmd implements the tempo history command.
type HistoryCmd struct {
	flags *Flags

	months int
}

// NewHistoryCmd creates a new history command.
func NewHistoryCmd(flags *Flags) *HistoryCmd {
	return &HistoryCmd{flags: flags}
}

// Register adds the history command to the application.
func (cmd *HistoryCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "history",
		Usage:     "List archived tasks",
		UsageText: "tempo history [--months N]",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:        "months",
				Usage:       "how many months back to include",
				Value:       3,
				Destination: &cmd.months,
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			archived, err := cmd.flags.Store.LoadHistory(int(cmd.months))
			if err != nil {
				return err
			}
			renderTasks(os.Stdout, archived)
			return nil
		},
	})

	return app
}
