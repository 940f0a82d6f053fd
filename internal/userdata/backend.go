package userdata

import (
	"context"
	"fmt"
	"log/slog"

	"reelist/internal/config"
	"reelist/internal/services"
)

// Record keys understood by every backend.
const (
	KeyWatchlist = "watchlist"
	KeyRatings   = "ratings"
)

// Backend persists opaque documents by key.
type Backend interface {
	// Load returns the stored document and whether one exists.
	Load(ctx context.Context, key string) ([]byte, bool, error)
	// Save replaces the document stored under key.
	Save(ctx context.Context, key string, data []byte) error
	Close() error
}

// OpenBackend builds the backend selected by the [user_data] configuration.
func OpenBackend(cfg *config.Config, logger *slog.Logger) (Backend, error) {
	if cfg == nil {
		return nil, services.Wrap(services.ErrConfiguration, "userdata", "open backend", "config required", nil)
	}
	switch cfg.UserData.Backend {
	case config.BackendFile, "":
		return NewFileBackend(cfg.UserData.Path, logger)
	case config.BackendSQLite:
		return OpenSQLiteBackend(context.Background(), cfg.UserData.Path, logger)
	default:
		return nil, services.Wrap(services.ErrConfiguration, "userdata", "open backend",
			fmt.Sprintf("unsupported backend %q", cfg.UserData.Backend), nil)
	}
}

func validKey(key string) bool {
	return key == KeyWatchlist || key == KeyRatings
}
