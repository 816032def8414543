// Package enginetest provides in-memory doubles for the engine's store and
// external collaborators.
package enginetest

import (
	"context"
	"encoding/json"
	"time"

	"github.com/ethanchou/tempo/internal/calendar"
	"github.com/ethanchou/tempo/internal/core/task"
	"github.com/ethanchou/tempo/internal/engine"
)

// Store is an in-memory task.Store. Error fields, when set, are returned by
// the corresponding method to simulate storage failures or corruption.
type Store struct {
	Active  []task.Task
	Archive map[string][]task.Task // keyed "yyyy-mm"
	Docs    map[string]json.RawMessage

	LoadErr    error
	SaveErr    error
	ArchiveErr error

	SaveCalls int
}

// NewStore returns an empty in-memory store.
func NewStore() *Store {
	return &Store{
		Archive: map[string][]task.Task{},
		Docs:    map[string]json.RawMessage{},
	}
}

func (s *Store) LoadActive() ([]task.Task, error) {
	if s.LoadErr != nil {
		return nil, s.LoadErr
	}
	out := make([]task.Task, len(s.Active))
	copy(out, s.Active)
	return out, nil
}

func (s *Store) SaveActive(list []task.Task) error {
	if s.SaveErr != nil {
		return s.SaveErr
	}
	s.SaveCalls++
	s.Active = make([]task.Task, len(list))
	copy(s.Active, list)
	return nil
}

func (s *Store) LoadSubtask(key string) (json.RawMessage, bool, error) {
	doc, ok := s.Docs[key]
	return doc, ok, nil
}

func (s *Store) SaveSubtask(key string, doc json.RawMessage) error {
	s.Docs[key] = doc
	return nil
}

func (s *Store) ArchiveAppend(t task.Task) error {
	if s.ArchiveErr != nil {
		return s.ArchiveErr
	}
	when := time.Now()
	if t.EndTime != nil {
		when = *t.EndTime
	}
	key := when.Format("2006-01")
	s.Archive[key] = append(s.Archive[key], t)
	return nil
}

func (s *Store) LoadHistory(monthsBack int) ([]task.Task, error) {
	var all []task.Task
	for _, entries := range s.Archive {
		all = append(all, entries...)
	}
	return all, nil
}

// Source is a canned calendar.Source recording the windows it was asked for.
type Source struct {
	Events   []calendar.Event
	FetchErr error
	AddErr   error

	FetchWindows [][2]time.Time
	Added        []calendar.Event
	AddedRoutes  []string
}

func (s *Source) Fetch(ctx context.Context, start, end time.Time) ([]calendar.Event, error) {
	s.FetchWindows = append(s.FetchWindows, [2]time.Time{start, end})
	if s.FetchErr != nil {
		return nil, s.FetchErr
	}
	return s.Events, nil
}

func (s *Source) AddEvent(ctx context.Context, route string, ev calendar.Event) error {
	if s.AddErr != nil {
		return s.AddErr
	}
	s.Added = append(s.Added, ev)
	s.AddedRoutes = append(s.AddedRoutes, route)
	return nil
}

// Classifier returns canned intents.
type Classifier struct {
	Intents []engine.Intent
	Err     error
}

func (c *Classifier) Analyze(ctx context.Context, text string, now time.Time, events []calendar.Event, active []task.Task) ([]engine.Intent, error) {
	return c.Intents, c.Err
}

// Advisor returns a canned suggestion.
type Advisor struct {
	Suggestion engine.Suggestion
	Err        error

	LastReq engine.SuggestRequest
}

func (a *Advisor) Suggest(ctx context.Context, req engine.SuggestRequest) (engine.Suggestion, error) {
	a.LastReq = req
	return a.Suggestion, a.Err
}

// Controller applies a scripted transformation, or fails.
type Controller struct {
	// ApplyFn, when set, computes the result. Otherwise Result/Err are used.
	ApplyFn func(active []task.Task, action engine.Intent) ([]task.Task, error)
	Result  []task.Task
	Err     error

	Calls int
}

func (c *Controller) Apply(ctx context.Context, active []task.Task, events []calendar.Event, action engine.Intent) ([]task.Task, error) {
	c.Calls++
	if c.ApplyFn != nil {
		return c.ApplyFn(active, action)
	}
	return c.Result, c.Err
}
