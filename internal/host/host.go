// Package host wires configuration, storage and notifiers into an
// agenda.Service for the binaries under cmd/.
package host

import (
	"context"
	"fmt"
	"log"

	"github.com/MihkelHunter/mkAgenda/internal/agenda"
	"github.com/MihkelHunter/mkAgenda/internal/config"
	"github.com/MihkelHunter/mkAgenda/internal/notify"
	"github.com/MihkelHunter/mkAgenda/internal/store"
)

// App is the assembled service plus what must be closed on exit.
type App struct {
	Config  *config.Config
	Service *agenda.Service
	Store   *store.SQLiteStore

	closeNotify func() error
}

// Open loads configPath (empty for the default), opens the database and
// builds the service. base is the host's own notifier (OS notification,
// log); the sinks enabled in the config are added to it.
func Open(ctx context.Context, configPath string, base agenda.Notifier, logger *log.Logger) (*App, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	return OpenWith(ctx, cfg, base, logger)
}

// OpenWith is Open with an already loaded configuration.
func OpenWith(ctx context.Context, cfg *config.Config, base agenda.Notifier, logger *log.Logger) (*App, error) {
	if logger == nil {
		logger = log.Default()
	}
	st, err := store.New(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("store: %w", err)
	}
	n, closeNotify, err := notify.FromConfig(ctx, cfg.Notify, base)
	if err != nil {
		st.Close()
		return nil, fmt.Errorf("notify: %w", err)
	}
	return &App{
		Config:      cfg,
		Service:     agenda.NewService(st, st, n, agenda.WithLogger(logger)),
		Store:       st,
		closeNotify: closeNotify,
	}, nil
}

// Strategy returns the configured default list order.
func (a *App) Strategy() agenda.Strategy {
	s, _ := agenda.ParseStrategy(a.Config.Sort)
	return s
}

func (a *App) Close() error {
	nerr := a.closeNotify()
	if err := a.Store.Close(); err != nil {
		return err
	}
	return nerr
}
