package commands

import (
	"context"
	"os"

	"github.com/urfave/cli/v3"
)

// TasksCmd implements the tempo tasks command.
type TasksCmd struct {
	flags *Flags
}

// NewTasksCmd creates a new tasks command.
func NewTasksCmd(flags *Flags) *TasksCmd {
	return &TasksCmd{flags: flags}
}

// Register adds the tasks command to the application.
func (cmd *TasksCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "tasks",
		Aliases:   []string{"ls"},
		Usage:     "List active tasks",
		UsageText: "tempo tasks",
		Action: func(ctx context.Context, c *cli.Command) error {
			active, err := cmd.flags.Store.LoadActive()
			if err != nil {
				return err
			}
			renderTasks(os.Stdout, active)
			return nil
		},
	})

	return app
}
