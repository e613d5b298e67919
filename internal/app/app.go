// Package app assembles the record store, media store and DataPost service
// from configuration. Both binaries share it.
package app

import (
	"context"
	"errors"
	"fmt"

	"datapost/internal/config"
	"datapost/internal/database"
	"datapost/internal/database/migration"
	"datapost/internal/datapost"
	"datapost/internal/logging"
	"datapost/internal/repository"
	"datapost/internal/repository/bolt"
	"datapost/internal/repository/postgres"
	"datapost/internal/service"
	"datapost/internal/storage"
)

var ErrUnknownBackend = errors.New("unknown record store backend")

// Pinger reports store reachability for health checks.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// App holds the wired components. Close releases the record store.
type App struct {
	Store   repository.RecordRepository
	Pinger  Pinger
	Media   storage.Storage
	Service service.DataPostService
	closer  func() error
}

func (a *App) Close() error {
	if a.closer == nil {
		return nil
	}
	return a.closer()
}

// New opens the configured backend, connects the media store when one is
// configured and builds the service with the default type registry.
func New(ctx context.Context, cfg *config.AppConfig, log *logging.Logger) (*App, error) {
	a, err := openStore(ctx, cfg, log)
	if err != nil {
		return nil, err
	}

	if cfg.MinIO.Enabled() {
		media, err := storage.NewMinIO(ctx, cfg.MinIO)
		if err != nil {
			_ = a.Close()
			return nil, fmt.Errorf("init media store: %w", err)
		}
		a.Media = media
	}

	opts, err := ServiceOptions(cfg.DataPost, log)
	if err != nil {
		_ = a.Close()
		return nil, err
	}
	a.Service = service.NewDataPostService(datapost.DefaultRegistry(), a.Store, a.Media, opts)

	log.Info("datapost ready", map[string]any{
		"component":   "app",
		"backend":     cfg.Backend,
		"collection":  cfg.DataPost.Collection,
		"match_mode":  string(opts.MatchMode),
		"media_store": a.Media != nil,
	})
	return a, nil
}

func openStore(ctx context.Context, cfg *config.AppConfig, log *logging.Logger) (*App, error) {
	switch cfg.Backend {
	case config.BackendPostgres, "":
		db, err := database.NewPostgres(ctx, cfg.Database)
		if err != nil {
			return nil, fmt.Errorf("connect database: %w", err)
		}
		if err := migration.EnsureMigrated(ctx, db, log, cfg.Database.Host); err != nil {
			_ = db.Close()
			return nil, err
		}
		return &App{
			Store:  postgres.NewRecordPostgres(db, cfg.DataPost.Collection),
			Pinger: db,
			closer: db.Close,
		}, nil

	case config.BackendBolt:
		store, err := bolt.Open(cfg.BoltPath, cfg.DataPost.Collection)
		if err != nil {
			return nil, fmt.Errorf("open bolt store: %w", err)
		}
		return &App{Store: store, Pinger: store, closer: store.Close}, nil

	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, cfg.Backend)
	}
}

// ServiceOptions translates configuration into service.Options.
func ServiceOptions(c config.DataPostConfig, log *logging.Logger) (service.Options, error) {
	opts := service.Options{
		QueryLimit:      c.QueryLimit,
		DefaultStatus:   c.DefaultStatus,
		ArchiveOnDelete: c.ArchiveOnDelete,
		Logger:          log,
	}

	switch repository.MatchMode(c.MatchMode) {
	case repository.MatchSubstring, "":
		opts.MatchMode = repository.MatchSubstring
	case repository.MatchExact:
		opts.MatchMode = repository.MatchExact
	default:
		return opts, fmt.Errorf("invalid match mode %q", c.MatchMode)
	}

	switch c.Ambiguity {
	case "first", "":
	case "error":
		opts.FailOnAmbiguous = true
	default:
		return opts, fmt.Errorf("invalid ambiguity policy %q", c.Ambiguity)
	}
	return opts, nil
}
