package commands

import (
	"fmt"
	"io"

	"github.com/ethanchou/tempo/internal/core/schedule"
	"github.com/ethanchou/tempo/internal/core/task"
	"github.com/ethanchou/tempo/internal/engine"
)

// renderOutcomes prints engine outcomes for terminal consumption and reports
// whether any of them was an error.
func renderOutcomes(w io.Writer, outcomes []engine.Outcome) bool {
	failed := false
	for _, o := range outcomes {
		switch o.Kind {
		case engine.OutcomeSchedule:
			renderEntries(w, o.Entries)
		case engine.OutcomeMessage:
			fmt.Fprintln(w, o.Text)
		case engine.OutcomeCompleted:
			fmt.Fprintf(w, "completed: %s\n", o.Task.Name)
		case engine.OutcomeError:
			failed = true
			fmt.Fprintf(w, "error: %s\n", o.Text)
		}
	}
	return failed
}

func renderEntries(w io.Writer, entries []schedule.Entry) {
	if len(entries) == 0 {
		fmt.Fprintln(w, "nothing scheduled")
		return
	}
	for _, e := range entries {
		marker := " "
		if e.Kind == schedule.KindSuggested {
			marker = "?"
		}
		fmt.Fprintf(w, "%s %s – %s  %s\n", marker, e.Start.Format("Mon 15:04"), e.End.Format("15:04"), e.Text)
	}
}

func renderTasks(w io.Writer, tasks []task.Task) {
	if len(tasks) == 0 {
		fmt.Fprintln(w, "no tasks")
		return
	}
	for _, t := range tasks {
		line := fmt.Sprintf("[%s] %s", t.Status, t.Name)
		if t.DueDate != nil {
			line += " (due " + t.DueDate.Format("2006-01-02 15:04") + ")"
		}
		fmt.Fprintln(w, line)
	}
}
