// Package calendar adapts remote calendars into the event shape the engine
// reconciles against.
package calendar

import (
	"context"
	"time"
)

// Event is a normalized calendar event. Start and End are always concrete
// timestamps in the configured timezone; all-day events arrive expanded to
// 00:00:00–23:59:59 with AllDay set.
type Event struct {
	ID          string    `json:"id"`
	Summary     string    `json:"summary"`
	Start       time.Time `json:"start"`
	End         time.Time `json:"end"`
	AllDay      bool      `json:"all_day,omitempty"`
	CalendarTag string    `json:"calendar_tag"`
}

// Source is a read/write adapter over the configured named calendars.
type Source interface {
	// Fetch returns events from every configured calendar within [start, end].
	// Failure of one calendar is isolated: it contributes an empty list and
	// a logged warning, never aborting the others.
	Fetch(ctx context.Context, start, end time.Time) ([]Event, error)

	// AddEvent inserts an event into the calendar behind the named route.
	AddEvent(ctx context.Context, route string, ev Event) error
}
