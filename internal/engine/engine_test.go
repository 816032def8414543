package engine_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/ethanchou/tempo/internal/calendar"
	"github.com/ethanchou/tempo/internal/core/schedule"
	"github.com/ethanchou/tempo/internal/core/task"
	"github.com/ethanchou/tempo/internal/engine"
	"github.com/ethanchou/tempo/internal/engine/enginetest"
	"github.com/ethanchou/tempo/internal/notify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	store      *enginetest.Store
	source     *enginetest.Source
	classifier *enginetest.Classifier
	advisor    *enginetest.Advisor
	controller *enginetest.Controller
	bus        *notify.Bus
	engine     *engine.Engine
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		store:      enginetest.NewStore(),
		source:     &enginetest.Source{},
		classifier: &enginetest.Classifier{},
		advisor:    &enginetest.Advisor{},
		controller: &enginetest.Controller{},
		bus:        notify.NewBus(),
	}
	f.engine = engine.New(f.store, f.source, f.classifier, f.advisor, f.controller, f.bus, time.UTC, engine.Options{
		HistoryMonths: 3,
		TaskCalendar:  "task",
	})
	return f
}

func startIntent(name string) engine.Intent {
	return engine.Intent{Kind: engine.IntentStartTask, Content: engine.IntentContent{TaskName: name}}
}

func errorOutcomes(outcomes []engine.Outcome) []engine.Outcome {
	var errs []engine.Outcome
	for _, o := range outcomes {
		if o.Kind == engine.OutcomeError {
			errs = append(errs, o)
		}
	}
	return errs
}

func TestStart_RejectsSecondInProgressLocally(t *testing.T) {
	f := newFixture(t)
	f.store.Active = []task.Task{{ID: "1", Name: "Essay", Status: task.StatusInProgress}}

	outcomes := f.engine.Handle(context.Background(), []engine.Intent{startIntent("Report")})

	require.Len(t, outcomes, 1)
	assert.Equal(t, engine.OutcomeError, outcomes[0].Kind)
	assert.Contains(t, outcomes[0].Text, "Essay")

	// The invariant is enforced before the controller is consulted, and
	// nothing is written.
	assert.Equal(t, 0, f.controller.Calls)
	assert.Equal(t, 0, f.store.SaveCalls)
}

func TestStart_SingleInProgressInvariantHolds(t *testing.T) {
	f := newFixture(t)
	f.store.Active = []task.Task{
		{ID: "1", Name: "Essay", Status: task.StatusPending},
		{ID: "2", Name: "Report", Status: task.StatusPending},
	}
	f.controller.ApplyFn = func(active []task.Task, action engine.Intent) ([]task.Task, error) {
		out := make([]task.Task, len(active))
		copy(out, active)
		if i := task.FindByName(out, action.Content.TaskName); i != -1 {
			out[i].Status = task.StatusInProgress
		}
		return out, nil
	}

	// Start every task in sequence; each accepted start must leave at most
	// one in-progress entry persisted.
	for _, name := range []string{"Essay", "Report", "Essay", "Report"} {
		f.engine.Handle(context.Background(), []engine.Intent{startIntent(name)})

		inProgress := 0
		for _, tsk := range f.store.Active {
			if tsk.Status == task.StatusInProgress {
				inProgress++
			}
		}
		assert.LessOrEqual(t, inProgress, 1, "after starting %s", name)
	}
}

func TestPause_FailClosedOnControllerFailure(t *testing.T) {
	f := newFixture(t)
	before := []task.Task{{ID: "1", Name: "Essay", Status: task.StatusInProgress}}
	f.store.Active = before
	f.controller.Err = errors.New("model unavailable")

	outcomes := f.engine.Handle(context.Background(), []engine.Intent{
		{Kind: engine.IntentPauseTask, Content: engine.IntentContent{TaskName: "Essay"}},
	})

	require.Len(t, outcomes, 1)
	assert.Equal(t, engine.OutcomeError, outcomes[0].Kind)
	assert.Equal(t, 0, f.store.SaveCalls, "no write on collaborator failure")
	assert.Equal(t, before, f.store.Active)
}

func TestTransition_RefusesCorruptActiveList(t *testing.T) {
	f := newFixture(t)
	f.store.LoadErr = fmt.Errorf("%w: bad json", task.ErrActiveCorrupt)

	outcomes := f.engine.Handle(context.Background(), []engine.Intent{startIntent("Essay")})

	require.Len(t, outcomes, 1)
	assert.Equal(t, engine.OutcomeError, outcomes[0].Kind)
	assert.Equal(t, 0, f.controller.Calls)
	assert.Equal(t, 0, f.store.SaveCalls)
}

func TestComplete_ArchivesExactlyOnceAndRemovesFromActive(t *testing.T) {
	f := newFixture(t)
	end := time.Date(2025, time.June, 10, 17, 0, 0, 0, time.UTC)
	f.store.Active = []task.Task{
		{ID: "1", Name: "Essay", Status: task.StatusInProgress},
		{ID: "2", Name: "Report", Status: task.StatusPending},
	}
	f.controller.Result = []task.Task{
		{ID: "1", Name: "Essay", Status: task.StatusCompleted, EndTime: &end},
		{ID: "2", Name: "Report", Status: task.StatusPending},
	}

	outcomes := f.engine.Handle(context.Background(), []engine.Intent{
		{Kind: engine.IntentCompleteTask, Content: engine.IntentContent{TaskName: "Essay"}},
	})

	require.Empty(t, errorOutcomes(outcomes))
	require.Len(t, outcomes, 2)
	assert.Equal(t, engine.OutcomeCompleted, outcomes[0].Kind)
	assert.Equal(t, "Essay", outcomes[0].Task.Name)
	assert.Equal(t, engine.OutcomeMessage, outcomes[1].Kind)

	// Exactly once in the completion month's partition.
	archived := f.store.Archive["2025-06"]
	require.Len(t, archived, 1)
	assert.Equal(t, "Essay", archived[0].Name)

	// Zero times in the persisted active list.
	assert.Equal(t, -1, task.FindByName(f.store.Active, "Essay"))
	require.Len(t, f.store.Active, 1)
	assert.Equal(t, "Report", f.store.Active[0].Name)
}

func TestComplete_ArchivesEveryCompletedEntry(t *testing.T) {
	f := newFixture(t)
	endA := time.Date(2025, time.June, 10, 17, 0, 0, 0, time.UTC)
	endB := time.Date(2025, time.May, 2, 9, 0, 0, 0, time.UTC)
	f.store.Active = []task.Task{
		{ID: "1", Name: "Essay", Status: task.StatusInProgress},
		{ID: "2", Name: "Stale", Status: task.StatusCompleted, EndTime: &endB},
		{ID: "3", Name: "Report", Status: task.StatusPending},
	}
	// The controller completes Essay and carries the stale completed entry
	// through; both must land in the archive, neither back in the list.
	f.controller.Result = []task.Task{
		{ID: "1", Name: "Essay", Status: task.StatusCompleted, EndTime: &endA},
		{ID: "2", Name: "Stale", Status: task.StatusCompleted, EndTime: &endB},
		{ID: "3", Name: "Report", Status: task.StatusPending},
	}

	outcomes := f.engine.Handle(context.Background(), []engine.Intent{
		{Kind: engine.IntentCompleteTask, Content: engine.IntentContent{TaskName: "Essay"}},
	})

	require.Empty(t, errorOutcomes(outcomes))
	require.Len(t, outcomes, 3, "one completed outcome per entry plus the message")
	assert.Equal(t, engine.OutcomeCompleted, outcomes[0].Kind)
	assert.Equal(t, engine.OutcomeCompleted, outcomes[1].Kind)
	assert.Equal(t, engine.OutcomeMessage, outcomes[2].Kind)

	require.Len(t, f.store.Archive["2025-06"], 1)
	require.Len(t, f.store.Archive["2025-05"], 1)
	assert.Equal(t, "Essay", f.store.Archive["2025-06"][0].Name)
	assert.Equal(t, "Stale", f.store.Archive["2025-05"][0].Name)

	require.Len(t, f.store.Active, 1)
	assert.Equal(t, "Report", f.store.Active[0].Name)
}

func TestComplete_MissingCompletedEntryPersistsAndWarns(t *testing.T) {
	f := newFixture(t)
	f.store.Active = []task.Task{{ID: "1", Name: "Essay", Status: task.StatusInProgress}}
	// Controller "succeeds" but returns no completed entry.
	f.controller.Result = []task.Task{{ID: "1", Name: "Essay", Status: task.StatusPaused}}

	outcomes := f.engine.Handle(context.Background(), []engine.Intent{
		{Kind: engine.IntentCompleteTask, Content: engine.IntentContent{TaskName: "Essay"}},
	})

	// Fail open: the returned list is persisted so state is not lost,
	// and the anomaly is reported.
	require.Len(t, outcomes, 1)
	assert.Equal(t, engine.OutcomeError, outcomes[0].Kind)
	assert.Equal(t, 1, f.store.SaveCalls)
	assert.Equal(t, task.StatusPaused, f.store.Active[0].Status)
	assert.Empty(t, f.store.Archive)
}

func TestComplete_ArchiveFailureLeavesListUntouched(t *testing.T) {
	f := newFixture(t)
	end := time.Now()
	before := []task.Task{{ID: "1", Name: "Essay", Status: task.StatusInProgress}}
	f.store.Active = before
	f.store.ArchiveErr = errors.New("disk full")
	f.controller.Result = []task.Task{{ID: "1", Name: "Essay", Status: task.StatusCompleted, EndTime: &end}}

	outcomes := f.engine.Handle(context.Background(), []engine.Intent{
		{Kind: engine.IntentCompleteTask, Content: engine.IntentContent{TaskName: "Essay"}},
	})

	require.Len(t, outcomes, 1)
	assert.Equal(t, engine.OutcomeError, outcomes[0].Kind)
	assert.Equal(t, 0, f.store.SaveCalls)
	assert.Equal(t, before, f.store.Active)
}

func TestAdd_EmitsSuggestionsMergedWithFixedSorted(t *testing.T) {
	f := newFixture(t)
	due := time.Date(2025, time.June, 10, 23, 59, 59, 0, time.UTC)
	f.source.Events = []calendar.Event{
		{Summary: "class", Start: time.Date(2025, time.June, 10, 8, 0, 0, 0, time.UTC), End: time.Date(2025, time.June, 10, 9, 0, 0, 0, time.UTC), CalendarTag: "school"},
	}
	f.advisor.Suggestion = engine.Suggestion{
		Status: "success",
		Recommendations: map[string]engine.Slot{
			"rational_best":     {Start: time.Date(2025, time.June, 10, 10, 0, 0, 0, time.UTC), End: time.Date(2025, time.June, 10, 12, 0, 0, 0, time.UTC)},
			"lowest_resistance": {Start: time.Date(2025, time.June, 10, 20, 0, 0, 0, time.UTC), End: time.Date(2025, time.June, 10, 22, 0, 0, 0, time.UTC)},
			"minimum_viable":    {Start: time.Date(2025, time.June, 10, 14, 0, 0, 0, time.UTC), End: time.Date(2025, time.June, 10, 16, 0, 0, 0, time.UTC)},
		},
	}

	outcomes := f.engine.Handle(context.Background(), []engine.Intent{
		{Kind: engine.IntentAddTask, Content: engine.IntentContent{TaskName: "Essay", DueDate: &due}},
	})

	require.Len(t, outcomes, 1)
	require.Equal(t, engine.OutcomeSchedule, outcomes[0].Kind)

	entries := outcomes[0].Entries
	require.Len(t, entries, 4, "3 suggested plus 1 fixed")

	suggested := 0
	for _, e := range entries {
		if e.Kind == schedule.KindSuggested {
			suggested++
		}
	}
	assert.Equal(t, 3, suggested)

	for i := 1; i < len(entries); i++ {
		assert.False(t, entries[i].Start.Before(entries[i-1].Start), "entries must be sorted ascending")
	}

	// Nothing is persisted by an add: the task becomes real only when a
	// slot is accepted.
	assert.Equal(t, 0, f.store.SaveCalls)

	// The advisor saw the calendar load and the archive history.
	assert.Len(t, f.advisor.LastReq.Events, 1)
}

func TestAdd_AdvisorFailureReported(t *testing.T) {
	f := newFixture(t)
	f.advisor.Suggestion = engine.Suggestion{Status: "fail", Reason: "no free slots before deadline"}

	outcomes := f.engine.Handle(context.Background(), []engine.Intent{
		{Kind: engine.IntentAddTask, Content: engine.IntentContent{TaskName: "Essay"}},
	})

	require.Len(t, outcomes, 1)
	assert.Equal(t, engine.OutcomeError, outcomes[0].Kind)
	assert.Contains(t, outcomes[0].Text, "no free slots before deadline")
}

func TestHandle_BatchContinuesAfterFailure(t *testing.T) {
	f := newFixture(t)
	f.store.Active = []task.Task{{ID: "1", Name: "Essay", Status: task.StatusPending}}
	f.controller.ApplyFn = func(active []task.Task, action engine.Intent) ([]task.Task, error) {
		if action.Content.TaskName == "Ghost" {
			return nil, errors.New("unknown task")
		}
		out := make([]task.Task, len(active))
		copy(out, active)
		out[0].Status = task.StatusInProgress
		return out, nil
	}

	outcomes := f.engine.Handle(context.Background(), []engine.Intent{
		startIntent("Ghost"),
		startIntent("Essay"),
	})

	// First intent fails, second still commits: each intent is its own
	// transaction boundary.
	require.Len(t, outcomes, 2)
	assert.Equal(t, engine.OutcomeError, outcomes[0].Kind)
	assert.Equal(t, engine.OutcomeMessage, outcomes[1].Kind)
	assert.Equal(t, task.StatusInProgress, f.store.Active[0].Status)
}

func TestQuery_ReadOnlyAndSummarizes(t *testing.T) {
	f := newFixture(t)
	f.store.Active = []task.Task{
		{ID: "1", Name: "Essay", Status: task.StatusInProgress},
		{ID: "2", Name: "Report", Status: task.StatusPending},
	}

	outcomes := f.engine.Handle(context.Background(), []engine.Intent{{Kind: engine.IntentQueryTask}})

	require.Len(t, outcomes, 2)
	assert.Equal(t, engine.OutcomeSchedule, outcomes[0].Kind)
	assert.Equal(t, engine.OutcomeMessage, outcomes[1].Kind)
	assert.Contains(t, outcomes[1].Text, "Essay")
	assert.Contains(t, outcomes[1].Text, "Report")
	assert.Equal(t, 0, f.store.SaveCalls)
}

func TestHandleText_ClassifierFailureIsNonFatal(t *testing.T) {
	f := newFixture(t)
	f.classifier.Err = errors.New("model timeout")

	outcomes := f.engine.HandleText(context.Background(), "start the essay")

	require.Len(t, outcomes, 1)
	assert.Equal(t, engine.OutcomeError, outcomes[0].Kind)
	assert.Equal(t, 0, f.store.SaveCalls)
}

func TestHandleText_EmptyIntentListReported(t *testing.T) {
	f := newFixture(t)
	// Classifier succeeds but finds nothing actionable.
	f.classifier.Intents = nil

	outcomes := f.engine.HandleText(context.Background(), "hmm, nevermind")

	require.Len(t, outcomes, 1)
	assert.Equal(t, engine.OutcomeError, outcomes[0].Kind)
	assert.Contains(t, outcomes[0].Text, "nevermind")
	assert.NotContains(t, outcomes[0].Text, "nil")
}

func TestAccept_AddsEventAndPendingTask(t *testing.T) {
	f := newFixture(t)
	start := time.Date(2025, time.June, 10, 10, 0, 0, 0, time.UTC)
	end := time.Date(2025, time.June, 10, 12, 0, 0, 0, time.UTC)

	outcomes := f.engine.Accept(context.Background(), "Essay", start, end)

	require.Len(t, outcomes, 1)
	assert.Equal(t, engine.OutcomeMessage, outcomes[0].Kind)

	require.Len(t, f.source.Added, 1)
	assert.Equal(t, "Essay", f.source.Added[0].Summary)
	assert.Equal(t, start, f.source.Added[0].Start)
	assert.Equal(t, []string{"task"}, f.source.AddedRoutes)

	require.Len(t, f.store.Active, 1)
	assert.Equal(t, "Essay", f.store.Active[0].Name)
	assert.Equal(t, task.StatusPending, f.store.Active[0].Status)
	require.NotNil(t, f.store.Active[0].DueDate)
	assert.Equal(t, end, *f.store.Active[0].DueDate)
}

func TestAccept_RejectsDuplicateName(t *testing.T) {
	f := newFixture(t)
	f.store.Active = []task.Task{{ID: "1", Name: "Essay", Status: task.StatusPaused}}

	outcomes := f.engine.Accept(context.Background(), "Essay", time.Now(), time.Now().Add(time.Hour))

	require.Len(t, outcomes, 1)
	assert.Equal(t, engine.OutcomeError, outcomes[0].Kind)
	assert.Empty(t, f.source.Added)
	assert.Equal(t, 0, f.store.SaveCalls)
}

func TestAccept_CalendarFailureLeavesListUntouched(t *testing.T) {
	f := newFixture(t)
	f.source.AddErr = errors.New("insert forbidden")

	outcomes := f.engine.Accept(context.Background(), "Essay", time.Now(), time.Now().Add(time.Hour))

	require.Len(t, outcomes, 1)
	assert.Equal(t, engine.OutcomeError, outcomes[0].Kind)
	assert.Equal(t, 0, f.store.SaveCalls)
	assert.Empty(t, f.store.Active)
}

func TestAccept_RefusesCorruptActiveList(t *testing.T) {
	f := newFixture(t)
	f.store.LoadErr = fmt.Errorf("%w: bad json", task.ErrActiveCorrupt)

	outcomes := f.engine.Accept(context.Background(), "Essay", time.Now(), time.Now().Add(time.Hour))

	require.Len(t, outcomes, 1)
	assert.Equal(t, engine.OutcomeError, outcomes[0].Kind)
	assert.Empty(t, f.source.Added)
}

func TestHandle_PublishesOutcomesOnBus(t *testing.T) {
	f := newFixture(t)
	var got []notify.Notification
	f.bus.Subscribe(func(n notify.Notification) { got = append(got, n) })

	f.store.Active = []task.Task{{ID: "1", Name: "Essay", Status: task.StatusInProgress}}
	f.engine.Handle(context.Background(), []engine.Intent{startIntent("Report")})

	require.Len(t, got, 1)
	assert.Equal(t, notify.LevelError, got[0].Level)
}
