package commands

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/urfave/cli/v3"
)

// HandleCmd implements the tempo handle command: one free-text command
// through the classifier and the engine.
type HandleCmd struct {
	flags *Flags
}

// NewHandleCmd creates a new handle command.
func NewHandleCmd(flags *Flags) *HandleCmd {
	return &HandleCmd{flags: flags}
}

// Register adds the handle command to the application.
func (cmd *HandleCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "handle",
		Usage:     "Process a natural-language task command",
		UsageText: `tempo handle "start the essay"`,
		Description: `Classifies the given text into task intents and applies them:
adding a task proposes schedule slots, start/pause/resume/complete change
task state, and a query prints the merged schedule.`,
		Action: func(ctx context.Context, c *cli.Command) error {
			text := strings.TrimSpace(strings.Join(c.Args().Slice(), " "))
			if text == "" {
				return fmt.Errorf("nothing to handle; pass a command as the argument")
			}

			if err := cmd.flags.EnsureApp(ctx); err != nil {
				return err
			}

			outcomes := cmd.flags.App.Engine.HandleText(ctx, text)
			if failed := renderOutcomes(os.Stdout, outcomes); failed {
				return fmt.Errorf("one or more intents failed")
			}
			return nil
		},
	})

	return app
}
