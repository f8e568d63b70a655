package archive

import (
	"context"
	"log/slog"

	"reliquary/internal/config"
	"reliquary/internal/services"
)

// Open builds a Store for the backend named in cfg.Archive.
func Open(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Store, error) {
	switch cfg.Archive.Backend {
	case config.BackendSQLite:
		storage, err := OpenSQLite(ctx, cfg.Archive.Path)
		if err != nil {
			return nil, err
		}
		return NewStore(storage, logger), nil
	case config.BackendJSON, "":
		return NewStore(NewFileStorage(cfg.Archive.Path), logger), nil
	default:
		return nil, services.Wrap(services.ErrConfiguration, "archive", "open",
			"unknown backend "+cfg.Archive.Backend, nil)
	}
}
