package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/ethanchou/tempo/internal/core/schedule"
	"github.com/ethanchou/tempo/internal/core/task"
)

// Reconcile merges fixed calendar events, local tasks, and optional advisor
// suggestions into one time-ordered schedule view.
//
// The fetch window is the union of every date the suggestions reference plus
// the anchor date, falling back to today; computing it from the union keeps
// multi-day suggestion spans from silently losing calendar context.
//
// A nil suggestions slice marks a plain query: local non-completed tasks are
// projected in as fixed entries. During an add-flow they are skipped so
// in-flight tasks do not visually compete with the candidate slots.
func (e *Engine) Reconcile(ctx context.Context, suggestions []schedule.Entry, anchor *time.Time) ([]schedule.Entry, error) {
	var dates []time.Time
	for _, s := range suggestions {
		dates = append(dates, s.Start)
	}
	if anchor != nil {
		dates = append(dates, *anchor)
	}
	start, end := schedule.Window(e.loc, dates...)

	events, err := e.source.Fetch(ctx, start, end)
	if err != nil {
		return nil, fmt.Errorf("fetch calendar events: %w", err)
	}

	fixed := make([]schedule.Entry, 0, len(events))
	for _, ev := range events {
		fixed = append(fixed, schedule.Entry{
			Text:  ev.Summary,
			Start: ev.Start.In(e.loc),
			End:   ev.End.In(e.loc),
			Kind:  schedule.KindFixed,
		})
	}

	if suggestions == nil {
		active, err := e.store.LoadActive()
		if err != nil {
			return nil, fmt.Errorf("load active tasks: %w", err)
		}
		fixed = append(fixed, projectTasks(active, start, end, e.loc)...)
	}

	return schedule.Merge(fixed, suggestions), nil
}

// projectTasks turns non-completed local tasks into fixed entries, using the
// window bounds when a task has no start or due time of its own.
func projectTasks(active []task.Task, windowStart, windowEnd time.Time, loc *time.Location) []schedule.Entry {
	var entries []schedule.Entry
	for _, t := range active {
		if t.Status == task.StatusCompleted {
			continue
		}

		start := windowStart
		if t.StartTime != nil {
			start = t.StartTime.In(loc)
		}
		end := windowEnd
		if t.DueDate != nil {
			end = t.DueDate.In(loc)
		}

		entries = append(entries, schedule.Entry{
			Text:  t.Name,
			Start: start,
			End:   end,
			Kind:  schedule.KindFixed,
		})
	}
	return entries
}
