// Package factory wires configuration to concrete backends.
package factory

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/daytrace/daytrace/internal/config"
	storepkg "github.com/daytrace/daytrace/internal/store"
	storemem "github.com/daytrace/daytrace/internal/store/memory"
	storepg "github.com/daytrace/daytrace/internal/store/postgres"
	storesqlite "github.com/daytrace/daytrace/internal/store/sqlite"
)

// NewStore returns the store.Store selected by cfg.DBDriver.
func NewStore(ctx context.Context, cfg *config.Config, log zerolog.Logger) (storepkg.Store, error) {
	switch cfg.DBDriver {
	case "memory":
		log.Warn().Msg("using in-memory store; sessions and records are lost on restart")
		return storemem.New(), nil

	case "sqlite":
		db, err := storesqlite.Open(cfg.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("open sqlite store: %w", err)
		}
		if err := storesqlite.EnsureSchema(ctx, db); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("sqlite schema: %w", err)
		}
		log.Info().Str("path", cfg.SQLitePath).Msg("sqlite store ready")
		return storesqlite.NewWithDB(db), nil

	case "postgres":
		if cfg.PostgresDSN == "" {
			return nil, fmt.Errorf("DAYTRACE_POSTGRES_DSN is required when DB_DRIVER=postgres")
		}
		db, err := storepg.Open(cfg.PostgresDSN)
		if err != nil {
			return nil, fmt.Errorf("open postgres store: %w", err)
		}
		if err := storepg.EnsureSchema(ctx, db); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("postgres schema: %w", err)
		}
		log.Info().Msg("postgres store ready")
		return storepg.NewWithDB(db), nil

	default:
		return nil, fmt.Errorf("unknown DB_DRIVER: %s", cfg.DBDriver)
	}
}
