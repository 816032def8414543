package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ethanchou/tempo/internal/calendar"
	"github.com/ethanchou/tempo/internal/core/task"
	"github.com/ethanchou/tempo/internal/engine"
)

// Classifier implements engine.IntentClassifier.
type Classifier struct {
	client *Client
	loc    *time.Location
}

// NewClassifier creates a classifier over the shared model client.
func NewClassifier(client *Client, loc *time.Location) *Classifier {
	return &Classifier{client: client, loc: loc}
}

// wireIntent is the model's intent shape; dates arrive as strings.
type wireIntent struct {
	Intent  string `json:"intent"`
	Content struct {
		TaskName  string `json:"task_name"`
		DueDate   string `json:"due_date"`
		Timestamp string `json:"timestamp"`
		Reason    string `json:"reason"`
		Notes     string `json:"notes"`
	} `json:"content"`
}

// Analyze converts free text into an ordered intent list.
func (c *Classifier) Analyze(ctx context.Context, text string, now time.Time, events []calendar.Event, active []task.Task) ([]engine.Intent, error) {
	user, err := json.Marshal(map[string]any{
		"current_time":    now.Format(time.RFC3339),
		"command":         text,
		"calendar_events": events,
		"active_tasks":    active,
	})
	if err != nil {
		return nil, err
	}

	raw, err := c.client.Complete(ctx, classifierPrompt, string(user))
	if err != nil {
		return nil, err
	}

	var wire []wireIntent
	if err := cleanJSON(raw, &wire); err != nil {
		return nil, err
	}
	if len(wire) == 0 {
		return nil, fmt.Errorf("classifier returned no intents")
	}

	intents := make([]engine.Intent, 0, len(wire))
	for _, w := range wire {
		intent := engine.Intent{
			Kind: engine.IntentKind(w.Intent),
			Content: engine.IntentContent{
				TaskName: w.Content.TaskName,
				Reason:   w.Content.Reason,
				Notes:    w.Content.Notes,
			},
		}

		if intent.Content.DueDate, err = parseTime(w.Content.DueDate, c.loc); err != nil {
			return nil, fmt.Errorf("intent %s: %w", w.Intent, err)
		}
		if intent.Content.Timestamp, err = parseTime(w.Content.Timestamp, c.loc); err != nil {
			return nil, fmt.Errorf("intent %s: %w", w.Intent, err)
		}

		intents = append(intents, intent)
	}

	return intents, nil
}
