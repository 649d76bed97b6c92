package storage

import (
	"context"
	"fmt"

	"github.com/DaraMoh/solo-gym-app/internal/config"
)

// Open returns the Store selected by cfg.Storage.Driver with its migrations
// applied.
func Open(ctx context.Context, cfg *config.Config) (Store, error) {
	switch cfg.Storage.Driver {
	case config.DriverMemory:
		return NewMemory(), nil
	case config.DriverPostgres:
		dsn := cfg.Database.DSN()
		if err := RunMigrations("postgres", dsn); err != nil {
			return nil, err
		}
		return NewPostgres(ctx, dsn)
	case config.DriverSQLite:
		return OpenSQLite(cfg.Storage.Path)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}
}
