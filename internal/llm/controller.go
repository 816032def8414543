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

// Controller implements engine.StateController.
type Controller struct {
	client *Client
	loc    *time.Location
}

// NewController creates a state controller over the shared model client.
func NewController(client *Client, loc *time.Location) *Controller {
	return &Controller{client: client, loc: loc}
}

// Apply sends the active list, calendar snapshot, and action to the model
// and decodes the full updated list it returns. Any failure yields a nil
// list; the engine treats that as "no write".
func (c *Controller) Apply(ctx context.Context, active []task.Task, events []calendar.Event, action engine.Intent) ([]task.Task, error) {
	if active == nil {
		active = []task.Task{}
	}

	user, err := json.Marshal(map[string]any{
		"current_time":    time.Now().In(c.loc).Format(time.RFC3339),
		"active_tasks":    active,
		"calendar_events": events,
		"incoming_action": action,
	})
	if err != nil {
		return nil, err
	}

	raw, err := c.client.Complete(ctx, controllerPrompt, string(user))
	if err != nil {
		return nil, err
	}

	var updated []task.Task
	if err := cleanJSON(raw, &updated); err != nil {
		return nil, err
	}
	if updated == nil {
		return nil, fmt.Errorf("controller returned no task list")
	}

	return updated, nil
}
