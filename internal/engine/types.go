// Package engine implements the task lifecycle and calendar reconciliation
// core: it dispatches classified intents, enforces lifecycle invariants over
// the persisted task list, and merges calendar, local, and suggested events
// into one ordered schedule view.
package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/ethanchou/tempo/internal/calendar"
	"github.com/ethanchou/tempo/internal/core/schedule"
	"github.com/ethanchou/tempo/internal/core/task"
)

// IntentKind is the classified command type.
type IntentKind string

const (
	IntentAddTask      IntentKind = "ADD_TASK"
	IntentStartTask    IntentKind = "START_TASK"
	IntentPauseTask    IntentKind = "PAUSE_TASK"
	IntentResumeTask   IntentKind = "RESUME_TASK"
	IntentCompleteTask IntentKind = "COMPLETE_TASK"
	IntentQueryTask    IntentKind = "QUERY_TASK"
)

// IntentContent carries the kind-specific fields of one classified command.
// The task name arrives already corrected against known names upstream.
type IntentContent struct {
	TaskName  string     `json:"task_name"`
	DueDate   *time.Time `json:"due_date,omitempty"`
	Timestamp *time.Time `json:"timestamp,omitempty"`
	Reason    string     `json:"reason,omitempty"`
	Notes     string     `json:"notes,omitempty"`
}

// Intent is one classified user command. Intents are transient: produced per
// utterance, consumed immediately.
type Intent struct {
	Kind    IntentKind    `json:"intent"`
	Content IntentContent `json:"content"`
}

// OutcomeKind tags the variant of an Outcome.
type OutcomeKind string

const (
	OutcomeSchedule  OutcomeKind = "schedule"
	OutcomeMessage   OutcomeKind = "message"
	OutcomeCompleted OutcomeKind = "completed"
	OutcomeError     OutcomeKind = "error"
)

// Outcome is the explicit result of handling one intent, consumed by the
// presentation layer. Exactly the fields for its kind are set.
type Outcome struct {
	Kind    OutcomeKind
	Entries []schedule.Entry // OutcomeSchedule
	Text    string           // OutcomeMessage, OutcomeError
	Task    *task.Task       // OutcomeCompleted
}

// ScheduleOf wraps a merged schedule view.
func ScheduleOf(entries []schedule.Entry) Outcome {
	return Outcome{Kind: OutcomeSchedule, Entries: entries}
}

// Messagef formats a user-facing status message outcome.
func Messagef(format string, args ...any) Outcome {
	return Outcome{Kind: OutcomeMessage, Text: fmt.Sprintf(format, args...)}
}

// CompletedOf wraps a just-archived task.
func CompletedOf(t task.Task) Outcome {
	return Outcome{Kind: OutcomeCompleted, Task: &t}
}

// Errorf formats an error outcome.
func Errorf(format string, args ...any) Outcome {
	return Outcome{Kind: OutcomeError, Text: fmt.Sprintf(format, args...)}
}

// IntentClassifier converts free text into an ordered list of intents.
// An empty result is a reportable, non-fatal error.
type IntentClassifier interface {
	Analyze(ctx context.Context, text string, now time.Time, events []calendar.Event, active []task.Task) ([]Intent, error)
}

// Slot is one candidate time slot proposed by the advisor.
type Slot struct {
	Start  time.Time `json:"start"`
	End    time.Time `json:"end"`
	Reason string    `json:"reason,omitempty"`
}

// SuggestRequest carries everything the advisor weighs: the task being
// scheduled, current calendar load, the active list, and raw archive history
// for behavioral heuristics.
type SuggestRequest struct {
	Task    IntentContent
	Now     time.Time
	Events  []calendar.Event
	Active  []task.Task
	History []task.Task
}

// Suggestion is the advisor's answer: ranked candidate slots keyed by
// strategy name, or a failure reason.
type Suggestion struct {
	Status          string          `json:"status"` // "success" or "fail"
	Reason          string          `json:"reason,omitempty"`
	Recommendations map[string]Slot `json:"recommendations,omitempty"`
}

// OK reports whether the advisor produced usable recommendations.
func (s Suggestion) OK() bool {
	return s.Status == "success" && len(s.Recommendations) > 0
}

// ScheduleAdvisor proposes candidate time slots for a new task.
type ScheduleAdvisor interface {
	Suggest(ctx context.Context, req SuggestRequest) (Suggestion, error)
}

// StateController applies one state-changing action and returns the entire
// updated active list, completed entries still present for the caller to
// archive. A nil list with an error is the failure signal; the engine
// verifies the result against local invariants rather than trusting it.
type StateController interface {
	Apply(ctx context.Context, active []task.Task, events []calendar.Event, action Intent) ([]task.Task, error)
}
