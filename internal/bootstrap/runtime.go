// Package bootstrap connects the process-wide dependencies shared by the
// server and the command line tools.
package bootstrap

import (
	"context"
	"fmt"

	"photoalbum/internal/cache"
	"photoalbum/internal/config"
	"photoalbum/internal/database"
	"photoalbum/internal/models"
	"photoalbum/internal/observability"
	"photoalbum/internal/seed"
	"photoalbum/internal/storage"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Options control runtime initialization behavior.
type Options struct {
	// SeedDemo fills an empty database with demo data.
	SeedDemo bool
	Seed     seed.Options
	// SkipStorage leaves Runtime.Store nil for tools that never touch uploads.
	SkipStorage bool
}

// Runtime bundles the connected dependencies.
type Runtime struct {
	DB    *gorm.DB
	Redis *redis.Client
	Store storage.Store
}

// InitRuntime connects to the database, Redis and the upload backend.
// Redis is optional: an unreachable server leaves Runtime.Redis nil.
func InitRuntime(ctx context.Context, cfg *config.Config, opts Options) (*Runtime, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}

	cache.InitRedis(cfg.RedisURL)
	rt := &Runtime{DB: db, Redis: cache.GetClient()}

	if !opts.SkipStorage {
		rt.Store, err = storage.NewStoreFromConfig(ctx, cfg)
		if err != nil {
			rt.Close()
			return nil, fmt.Errorf("upload storage: %w", err)
		}
	}

	if opts.SeedDemo {
		if err := seedIfEmpty(ctx, db, opts.Seed); err != nil {
			rt.Close()
			return nil, fmt.Errorf("failed to seed demo data: %w", err)
		}
	}

	return rt, nil
}

// Close releases the database and Redis connections.
func (rt *Runtime) Close() {
	if sqlDB, err := rt.DB.DB(); err == nil {
		_ = sqlDB.Close()
	}
	if rt.Redis != nil {
		_ = rt.Redis.Close()
	}
}

func seedIfEmpty(ctx context.Context, db *gorm.DB, opts seed.Options) error {
	var n int64
	if err := db.WithContext(ctx).Model(&models.User{}).Count(&n).Error; err != nil {
		return err
	}
	if n > 0 {
		observability.Logger.InfoContext(ctx, "database already populated, skipping demo seed")
		return nil
	}
	_, err := seed.Seed(ctx, db, opts)
	return err
}
