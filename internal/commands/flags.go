package commands

import (
	"context"
	"os"
	"path/filepath"
	"runtime"

	"github.com/ethanchou/tempo/internal/app"
	"github.com/ethanchou/tempo/internal/core/config"
	"github.com/ethanchou/tempo/internal/core/task"
	"github.com/ethanchou/tempo/internal/notify"
	"github.com/rs/zerolog/log"
)

type Flags struct {
	LogLevel   string
	LogFile    string
	ConfigPath string
	DataDir    string

	// Config and Store are set in the Before hook, available to all commands.
	Config *config.Config
	Store  task.Store

	// App is the fully wired application (calendar + model collaborators),
	// built lazily because only some commands need it.
	App *app.App
}

// EnsureApp builds the full App on first use and mirrors its notifications
// into the log.
func (f *Flags) EnsureApp(ctx context.Context) error {
	if f.App != nil {
		return nil
	}

	a, err := app.New(ctx, f.Config)
	if err != nil {
		return err
	}

	a.Bus.Subscribe(func(n notify.Notification) {
		switch n.Level {
		case notify.LevelError:
			log.Error().Msg(n.Message)
		case notify.LevelWarning:
			log.Warn().Msg(n.Message)
		default:
			log.Info().Msg(n.Message)
		}
	})

	f.App = a
	return nil
}

// DefaultConfigPath returns the default config file path using XDG_CONFIG_HOME.
func DefaultConfigPath() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, _ := os.UserHomeDir()
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, "tempo", "config.yaml")
}

// DefaultDataDir returns the default data directory using XDG_DATA_HOME.
func DefaultDataDir() string {
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, _ := os.UserHomeDir()
		dataHome = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataHome, "tempo")
}

// DefaultLogFile returns the default log file path using the system's state
// directory: ~/Library/Logs/tempo/tempo.log on macOS, XDG state dir on Linux.
func DefaultLogFile() string {
	stateHome := os.Getenv("XDG_STATE_HOME")
	if stateHome != "" {
		return filepath.Join(stateHome, "tempo", "tempo.log")
	}

	home, _ := os.UserHomeDir()

	if runtime.GOOS == "darwin" {
		return filepath.Join(home, "Library", "Logs", "tempo", "tempo.log")
	}

	return filepath.Join(home, ".local", "state", "tempo", "tempo.log")
}
