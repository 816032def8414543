package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ethanchou/tempo/internal/engine"
)

// Advisor implements engine.ScheduleAdvisor.
type Advisor struct {
	client *Client
	loc    *time.Location
}

// NewAdvisor creates an advisor over the shared model client.
func NewAdvisor(client *Client, loc *time.Location) *Advisor {
	return &Advisor{client: client, loc: loc}
}

type wireSuggestion struct {
	Status          string `json:"status"`
	Reason          string `json:"reason"`
	Recommendations map[string]struct {
		Start  string `json:"start"`
		End    string `json:"end"`
		Reason string `json:"reason"`
	} `json:"recommendations"`
}

// Suggest asks for ranked candidate slots for a new task.
func (a *Advisor) Suggest(ctx context.Context, req engine.SuggestRequest) (engine.Suggestion, error) {
	user, err := json.Marshal(map[string]any{
		"current_time":        req.Now.Format(time.RFC3339),
		"new_task":            req.Task,
		"existing_events":     req.Events,
		"active_tasks":        req.Active,
		"raw_historical_logs": req.History,
	})
	if err != nil {
		return engine.Suggestion{}, err
	}

	raw, err := a.client.Complete(ctx, advisorPrompt, string(user))
	if err != nil {
		return engine.Suggestion{}, err
	}

	var wire wireSuggestion
	if err := cleanJSON(raw, &wire); err != nil {
		return engine.Suggestion{}, err
	}

	out := engine.Suggestion{
		Status:          wire.Status,
		Reason:          wire.Reason,
		Recommendations: make(map[string]engine.Slot, len(wire.Recommendations)),
	}

	for name, slot := range wire.Recommendations {
		start, err := parseTime(slot.Start, a.loc)
		if err != nil || start == nil {
			return engine.Suggestion{}, fmt.Errorf("recommendation %q: bad start: %v", name, err)
		}
		end, err := parseTime(slot.End, a.loc)
		if err != nil || end == nil {
			return engine.Suggestion{}, fmt.Errorf("recommendation %q: bad end: %v", name, err)
		}
		out.Recommendations[name] = engine.Slot{Start: *start, End: *end, Reason: slot.Reason}
	}

	return out, nil
}
