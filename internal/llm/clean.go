package llm

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// cleanJSON strips markdown code fences the model tends to wrap JSON in and
// decodes the remainder into dest.
func cleanJSON(text string, dest any) error {
	text = strings.ReplaceAll(text, "```json", "")
	text = strings.ReplaceAll(text, "```", "")
	text = strings.TrimSpace(text)

	if err := json.Unmarshal([]byte(text), dest); err != nil {
		return fmt.Errorf("malformed model response: %w", err)
	}
	return nil
}

// timeLayouts are the shapes models produce for timestamps, most specific
// first.
var timeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// parseTime parses a model-produced timestamp string in loc. Layouts without
// an offset are interpreted as local time.
func parseTime(s string, loc *time.Location) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}

	for _, layout := range timeLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			t = t.In(loc)
			return &t, nil
		}
	}
	return nil, fmt.Errorf("unparseable timestamp %q", s)
}
