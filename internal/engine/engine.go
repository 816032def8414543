package engine

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ethanchou/tempo/internal/calendar"
	"github.com/ethanchou/tempo/internal/core/logging"
	"github.com/ethanchou/tempo/internal/core/schedule"
	"github.com/ethanchou/tempo/internal/core/task"
	"github.com/ethanchou/tempo/internal/notify"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Options tunes engine behavior.
type Options struct {
	// HistoryMonths is how many months of archive feed the advisor.
	HistoryMonths int
	// TaskCalendar is the route new task events are written to.
	TaskCalendar string
}

// Engine is the reconciliation core. All collaborators are injected; each of
// them can be replaced by a test double.
type Engine struct {
	store      task.Store
	source     calendar.Source
	classifier IntentClassifier
	advisor    ScheduleAdvisor
	controller StateController
	bus        *notify.Bus
	loc        *time.Location
	opts       Options
	log        zerolog.Logger
}

// New constructs an Engine from explicit dependencies. bus may be nil when
// no presentation surface is attached.
func New(store task.Store, source calendar.Source, classifier IntentClassifier, advisor ScheduleAdvisor, controller StateController, bus *notify.Bus, loc *time.Location, opts Options) *Engine {
	if opts.HistoryMonths <= 0 {
		opts.HistoryMonths = 3
	}
	return &Engine{
		store:      store,
		source:     source,
		classifier: classifier,
		advisor:    advisor,
		controller: controller,
		bus:        bus,
		loc:        loc,
		opts:       opts,
		log:        logging.Component("engine"),
	}
}

// HandleText classifies raw input and handles the resulting intents.
func (e *Engine) HandleText(ctx context.Context, text string) []Outcome {
	now := time.Now().In(e.loc)

	start, end := schedule.Window(e.loc, now)
	events, err := e.source.Fetch(ctx, start, end)
	if err != nil {
		e.log.Warn().Err(err).Msg("calendar snapshot unavailable for classification")
	}

	active, err := e.store.LoadActive()
	if err != nil {
		// Classification still works without the active list; the
		// per-intent handlers enforce the corrupt-store policy.
		e.log.Warn().Err(err).Msg("active list unavailable for classification")
		active = nil
	}

	intents, err := e.classifier.Analyze(ctx, text, now, events, active)
	if err != nil {
		out := Errorf("could not understand the command: %v", err)
		e.publish(out)
		return []Outcome{out}
	}
	if len(intents) == 0 {
		out := Errorf("no actionable request in %q", text)
		e.publish(out)
		return []Outcome{out}
	}

	return e.Handle(ctx, intents)
}

// Handle processes intents strictly in order. Each intent is its own
// transaction boundary: a failure does not roll back side effects already
// committed by earlier intents in the batch.
func (e *Engine) Handle(ctx context.Context, intents []Intent) []Outcome {
	ctx = logging.WithBatchID(ctx, uuid.New().String()[:8])

	var outcomes []Outcome
	for _, intent := range intents {
		ictx := logging.WithIntent(ctx, string(intent.Kind))

		var out []Outcome
		switch intent.Kind {
		case IntentAddTask:
			out = e.handleAdd(ictx, intent)
		case IntentStartTask, IntentPauseTask, IntentResumeTask:
			out = e.handleTransition(ictx, intent)
		case IntentCompleteTask:
			out = e.handleComplete(ictx, intent)
		case IntentQueryTask:
			out = e.handleQuery(ictx)
		default:
			out = []Outcome{Errorf("unknown intent %q", intent.Kind)}
		}

		for _, o := range out {
			e.publish(o)
		}
		outcomes = append(outcomes, out...)
	}

	return outcomes
}

// handleAdd asks the advisor for candidate slots and reconciles them against
// the calendar for display. Nothing is persisted: a task becomes real only
// once the user accepts a slot and the corresponding event is added.
func (e *Engine) handleAdd(ctx context.Context, intent Intent) []Outcome {
	now := time.Now().In(e.loc)

	dates := []time.Time{now}
	if intent.Content.DueDate != nil {
		dates = append(dates, *intent.Content.DueDate)
	}
	start, end := schedule.Window(e.loc, dates...)

	events, err := e.source.Fetch(ctx, start, end)
	if err != nil {
		return []Outcome{Errorf("calendar unavailable: %v", err)}
	}

	active, err := e.store.LoadActive()
	if err != nil {
		return []Outcome{Errorf("cannot read active tasks: %v", err)}
	}

	history, err := e.store.LoadHistory(e.opts.HistoryMonths)
	if err != nil {
		e.log.Warn().Err(err).Msg("history unavailable, advising without it")
	}

	suggestion, err := e.advisor.Suggest(ctx, SuggestRequest{
		Task:    intent.Content,
		Now:     now,
		Events:  events,
		Active:  active,
		History: history,
	})
	if err != nil {
		return []Outcome{Errorf("scheduling advisor unavailable: %v", err)}
	}
	if !suggestion.OK() {
		reason := suggestion.Reason
		if reason == "" {
			reason = "no viable slot found"
		}
		return []Outcome{Errorf("cannot schedule %q: %s", intent.Content.TaskName, reason)}
	}

	suggested := make([]schedule.Entry, 0, len(suggestion.Recommendations))
	for strategy, slot := range suggestion.Recommendations {
		suggested = append(suggested, schedule.Entry{
			Text:  fmt.Sprintf("%s [%s]", intent.Content.TaskName, strategy),
			Start: slot.Start.In(e.loc),
			End:   slot.End.In(e.loc),
			Kind:  schedule.KindSuggested,
		})
	}

	var anchor *time.Time
	if intent.Content.DueDate != nil {
		anchor = intent.Content.DueDate
	}

	entries, err := e.Reconcile(ctx, suggested, anchor)
	if err != nil {
		return []Outcome{Errorf("reconcile failed: %v", err)}
	}

	return []Outcome{ScheduleOf(entries)}
}

// handleTransition delegates START/PAUSE/RESUME to the state controller and
// persists its result verbatim. Controller failure leaves the persisted
// state untouched.
func (e *Engine) handleTransition(ctx context.Context, intent Intent) []Outcome {
	active, err := e.store.LoadActive()
	if err != nil {
		// Fail closed: without a readable list the single in-progress
		// invariant cannot be enforced, so no transition is accepted.
		return []Outcome{Errorf("active task list unreadable, refusing %s: %v", intent.Kind, err)}
	}

	// Starting or resuming while another task runs is rejected locally,
	// before the controller is consulted.
	if intent.Kind == IntentStartTask || intent.Kind == IntentResumeTask {
		if i := task.InProgress(active); i != -1 {
			return []Outcome{Errorf("%q is already in progress, cannot %s %q",
				active[i].Name, verb(intent.Kind), intent.Content.TaskName)}
		}
	}

	updated, err := e.controller.Apply(ctx, active, e.snapshot(ctx), intent)
	if err != nil || updated == nil {
		return []Outcome{Errorf("state controller failed for %s: %v", intent.Kind, err)}
	}

	if i := task.CompletedIndex(updated); i != -1 {
		// Should not happen for these intents; persist anyway and flag it.
		e.log.Error().Str("task", updated[i].Name).Msg("controller returned completed entry for non-complete action")
	}

	if err := e.store.SaveActive(updated); err != nil {
		return []Outcome{Errorf("failed to persist task list: %v", err)}
	}

	return []Outcome{Messagef("%q %s", intent.Content.TaskName, pastTense(intent.Kind))}
}

// handleComplete delegates to the controller, then archives every completed
// entry and strips them from the persisted list. The controller normally
// completes one task per action, but stale completed entries it garbage
// collects along the way are archived too rather than written back.
func (e *Engine) handleComplete(ctx context.Context, intent Intent) []Outcome {
	active, err := e.store.LoadActive()
	if err != nil {
		return []Outcome{Errorf("active task list unreadable, refusing %s: %v", intent.Kind, err)}
	}

	updated, err := e.controller.Apply(ctx, active, e.snapshot(ctx), intent)
	if err != nil || updated == nil {
		return []Outcome{Errorf("state controller failed for %s: %v", intent.Kind, err)}
	}

	var done []task.Task
	remaining := make([]task.Task, 0, len(updated))
	for _, t := range updated {
		if t.Status == task.StatusCompleted {
			done = append(done, t)
		} else {
			remaining = append(remaining, t)
		}
	}

	if len(done) == 0 {
		// Controller claimed success but produced no completed entry.
		// Persist what it returned rather than dropping state, and say so.
		e.log.Error().Str("task", intent.Content.TaskName).Msg("controller reported completion without a completed entry")
		if err := e.store.SaveActive(updated); err != nil {
			return []Outcome{Errorf("failed to persist task list: %v", err)}
		}
		return []Outcome{Errorf("completion of %q could not be verified", intent.Content.TaskName)}
	}

	now := time.Now().In(e.loc)
	for i := range done {
		if done[i].EndTime == nil {
			done[i].EndTime = &now
		}
		if err := e.store.ArchiveAppend(done[i]); err != nil {
			// Without a durable archive record the completion is not
			// applied; the prior list stays authoritative.
			return []Outcome{Errorf("failed to archive %q: %v", done[i].Name, err)}
		}
	}

	if err := e.store.SaveActive(remaining); err != nil {
		return []Outcome{Errorf("failed to persist task list: %v", err)}
	}

	outs := make([]Outcome, 0, len(done)+1)
	names := make([]string, 0, len(done))
	for _, d := range done {
		outs = append(outs, CompletedOf(d))
		names = append(names, fmt.Sprintf("%q", d.Name))
	}
	return append(outs, Messagef("%s completed", strings.Join(names, ", ")))
}

// Accept commits a chosen suggestion slot: the event is written to the task
// calendar route and the task joins the active list as pending. Until this
// point a suggested slot exists only in the schedule view.
func (e *Engine) Accept(ctx context.Context, name string, start, end time.Time) []Outcome {
	active, err := e.store.LoadActive()
	if err != nil {
		out := Errorf("active task list unreadable, refusing accept: %v", err)
		e.publish(out)
		return []Outcome{out}
	}

	if task.FindByName(active, name) != -1 {
		out := Errorf("task %q already exists", name)
		e.publish(out)
		return []Outcome{out}
	}

	ev := calendar.Event{
		Summary: name,
		Start:   start.In(e.loc),
		End:     end.In(e.loc),
	}
	if err := e.source.AddEvent(ctx, e.opts.TaskCalendar, ev); err != nil {
		out := Errorf("failed to add event for %q: %v", name, err)
		e.publish(out)
		return []Outcome{out}
	}

	t := task.New(name)
	t.DueDate = &ev.End
	if err := e.store.SaveActive(append(active, t)); err != nil {
		// The calendar event exists but the task does not; the message
		// has to say which half committed.
		out := Errorf("event added but task %q was not persisted: %v", name, err)
		e.publish(out)
		return []Outcome{out}
	}

	out := Messagef("%q scheduled %s until %s", name, ev.Start.Format("Mon 15:04"), ev.End.Format("15:04"))
	e.publish(out)
	return []Outcome{out}
}

// handleQuery reconciles the calendar with no suggestions and summarizes the
// active list. Read-only.
func (e *Engine) handleQuery(ctx context.Context) []Outcome {
	entries, err := e.Reconcile(ctx, nil, nil)
	if err != nil {
		return []Outcome{Errorf("reconcile failed: %v", err)}
	}

	active, err := e.store.LoadActive()
	if err != nil {
		return []Outcome{ScheduleOf(entries), Errorf("cannot read active tasks: %v", err)}
	}

	return []Outcome{ScheduleOf(entries), Messagef("%s", summarize(active))}
}

// snapshot fetches today's events for the controller prompt. The controller
// can act without calendar context, so failure degrades to an empty snapshot.
func (e *Engine) snapshot(ctx context.Context) []calendar.Event {
	start, end := schedule.Window(e.loc, time.Now().In(e.loc))
	events, err := e.source.Fetch(ctx, start, end)
	if err != nil {
		e.log.Warn().Err(err).Msg("calendar snapshot unavailable")
		return nil
	}
	return events
}

func (e *Engine) publish(o Outcome) {
	if e.bus == nil {
		return
	}
	switch o.Kind {
	case OutcomeError:
		e.bus.Errorf("%s", o.Text)
	case OutcomeMessage:
		e.bus.Infof("%s", o.Text)
	case OutcomeCompleted:
		e.bus.Infof("completed: %s", o.Task.Name)
	case OutcomeSchedule:
		e.bus.Infof("schedule updated (%d entries)", len(o.Entries))
	}
}

func summarize(active []task.Task) string {
	if len(active) == 0 {
		return "no active tasks"
	}
	parts := make([]string, 0, len(active))
	for _, t := range active {
		parts = append(parts, fmt.Sprintf("%s (%s)", t.Name, t.Status))
	}
	return "active tasks: " + strings.Join(parts, ", ")
}

func verb(kind IntentKind) string {
	if kind == IntentResumeTask {
		return "resume"
	}
	return "start"
}

func pastTense(kind IntentKind) string {
	switch kind {
	case IntentStartTask:
		return "started"
	case IntentPauseTask:
		return "paused"
	case IntentResumeTask:
		return "resumed"
	default:
		return string(kind)
	}
}
