// Package app wires stores, collaborators, and the engine into one
// application aggregate consumed by the CLI commands.
package app

import (
	"context"
	"fmt"

	"github.com/ethanchou/tempo/internal/calendar"
	"github.com/ethanchou/tempo/internal/core/config"
	"github.com/ethanchou/tempo/internal/core/task"
	"github.com/ethanchou/tempo/internal/engine"
	"github.com/ethanchou/tempo/internal/llm"
	"github.com/ethanchou/tempo/internal/notify"
	"github.com/ethanchou/tempo/internal/store/jsonfile"
)

// App is the central entry point for all tempo operations.
type App struct {
	Engine *engine.Engine
	Store  task.Store
	Source calendar.Source
	Bus    *notify.Bus
	Config *config.Config
}

// New constructs an App with the default production collaborators: the JSON
// file store, the Google calendar source, and the model-backed classifier,
// advisor, and controller.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	store := jsonfile.New(cfg.DataDir)

	source, err := calendar.NewGoogleSource(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("calendar source: %w", err)
	}

	client := llm.NewClient(cfg.Model)
	bus := notify.NewBus()

	eng := engine.New(
		store,
		source,
		llm.NewClassifier(client, loc),
		llm.NewAdvisor(client, loc),
		llm.NewController(client, loc),
		bus,
		loc,
		engine.Options{
			HistoryMonths: cfg.HistoryMonths,
			TaskCalendar:  cfg.TaskCalendar,
		},
	)

	return &App{
		Engine: eng,
		Store:  store,
		Source: source,
		Bus:    bus,
		Config: cfg,
	}, nil
}
