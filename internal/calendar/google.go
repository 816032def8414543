package calendar

import (
	"context"
	"fmt"
	"time"

	"github.com/ethanchou/tempo/internal/core/config"
	"github.com/ethanchou/tempo/internal/core/logging"
	"github.com/rs/zerolog"
	gcal "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"
)

// GoogleSource implements Source over the Google Calendar API.
type GoogleSource struct {
	srv    *gcal.Service
	routes []config.CalendarRoute
	loc    *time.Location
	log    zerolog.Logger
}

// NewGoogleSource builds a Source from stored OAuth credentials and the
// configured calendar routes.
func NewGoogleSource(ctx context.Context, cfg *config.Config) (*GoogleSource, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	client, err := oauthClient(ctx, cfg.DataDir)
	if err != nil {
		return nil, err
	}

	srv, err := gcal.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		return nil, fmt.Errorf("build calendar service: %w", err)
	}

	return &GoogleSource{
		srv:    srv,
		routes: cfg.Calendars,
		loc:    loc,
		log:    logging.Component("calendar"),
	}, nil
}

// Fetch lists events across all configured calendars for the given window.
// A calendar that fails to list is logged and skipped.
func (g *GoogleSource) Fetch(ctx context.Context, start, end time.Time) ([]Event, error) {
	var events []Event
	for _, route := range g.routes {
		items, err := g.srv.Events.List(route.ID).
			TimeMin(start.Format(time.RFC3339)).
			TimeMax(end.Format(time.RFC3339)).
			SingleEvents(true).
			OrderBy("startTime").
			Context(ctx).
			Do()
		if err != nil {
			g.log.Warn().Err(err).Str("calendar", route.Name).Msg("fetch failed, skipping calendar")
			continue
		}

		for _, item := range items.Items {
			ev, err := g.normalize(item, route.Name)
			if err != nil {
				g.log.Warn().Err(err).Str("event", item.Id).Msg("unparseable event time, skipping")
				continue
			}
			events = append(events, ev)
		}
	}

	return events, nil
}

// AddEvent inserts an event into the calendar behind the named route, with
// an immediate popup reminder replacing the calendar default.
func (g *GoogleSource) AddEvent(ctx context.Context, route string, ev Event) error {
	var calendarID string
	for _, r := range g.routes {
		if r.Name == route {
			calendarID = r.ID
			break
		}
	}
	if calendarID == "" {
		return fmt.Errorf("no calendar route named %q", route)
	}

	body := &gcal.Event{
		Summary: ev.Summary,
		Start:   &gcal.EventDateTime{DateTime: ev.Start.Format(time.RFC3339)},
		End:     &gcal.EventDateTime{DateTime: ev.End.Format(time.RFC3339)},
		Reminders: &gcal.EventReminders{
			UseDefault: false,
			Overrides: []*gcal.EventReminder{
				// Minutes: 0 needs ForceSendFields or the zero value is
				// dropped from the request body.
				{Method: "popup", Minutes: 0, ForceSendFields: []string{"Minutes"}},
			},
			ForceSendFields: []string{"UseDefault"},
		},
	}

	if _, err := g.srv.Events.Insert(calendarID, body).Context(ctx).Do(); err != nil {
		return fmt.Errorf("insert event into %s: %w", route, err)
	}

	g.log.Info().Str("calendar", route).Str("summary", ev.Summary).Msg("event added")
	return nil
}

// normalize converts an API event into the local-timezone Event shape,
// expanding date-only (all-day) events to full-day bounds.
func (g *GoogleSource) normalize(item *gcal.Event, tag string) (Event, error) {
	ev := Event{ID: item.Id, Summary: item.Summary, CalendarTag: tag}

	switch {
	case item.Start == nil:
		return Event{}, fmt.Errorf("event %s has no start", item.Id)
	case item.Start.DateTime != "":
		start, err := time.Parse(time.RFC3339, item.Start.DateTime)
		if err != nil {
			return Event{}, err
		}
		ev.Start = start.In(g.loc)
	default:
		day, err := time.ParseInLocation("2006-01-02", item.Start.Date, g.loc)
		if err != nil {
			return Event{}, err
		}
		ev.Start = day
		// Wall-clock end of day; adding a duration would drift on DST
		// transition days.
		ev.End = time.Date(day.Year(), day.Month(), day.Day(), 23, 59, 59, 0, g.loc)
		ev.AllDay = true
		return ev, nil
	}

	if item.End != nil && item.End.DateTime != "" {
		end, err := time.Parse(time.RFC3339, item.End.DateTime)
		if err != nil {
			return Event{}, err
		}
		ev.End = end.In(g.loc)
	} else {
		ev.End = ev.Start
	}

	return ev, nil
}
