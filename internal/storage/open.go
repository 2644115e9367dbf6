// Package storage opens the persistent slot selected by configuration.
package storage

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/userdir/internal/common"
	"github.com/dmitrijs2005/userdir/internal/config"
	"github.com/dmitrijs2005/userdir/internal/filex"
	"github.com/dmitrijs2005/userdir/internal/logging"
	"github.com/dmitrijs2005/userdir/internal/slots"
	"github.com/dmitrijs2005/userdir/internal/slots/memory"
	"github.com/dmitrijs2005/userdir/internal/slots/objectstore"
	"github.com/dmitrijs2005/userdir/internal/slots/postgres"
	"github.com/dmitrijs2005/userdir/internal/slots/redis"
	"github.com/dmitrijs2005/userdir/internal/slots/sqlite"
)

// CloseFunc releases whatever Open acquired.
type CloseFunc func() error

func noopClose() error { return nil }

// Open connects to cfg.Backend and returns the slot with its close func.
// Unknown backend names fail with common.ErrUnknownBackend.
func Open(ctx context.Context, cfg *config.Config, logger logging.Logger) (slots.Slot, CloseFunc, error) {
	switch cfg.Backend {
	case config.BackendMemory:
		logger.Warn(ctx, "using in-memory storage, nothing survives exit")
		return memory.NewRepository(), noopClose, nil

	case config.BackendSQLite:
		if err := filex.EnsureParentDir(cfg.SQLitePath); err != nil {
			return nil, nil, err
		}
		db, err := sqlite.Open(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, nil, fmt.Errorf("open sqlite %s: %w", cfg.SQLitePath, err)
		}
		logger.Debug(ctx, "sqlite storage ready", "path", cfg.SQLitePath)
		return sqlite.NewRepository(db), db.Close, nil

	case config.BackendPostgres:
		db, err := postgres.Open(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, nil, fmt.Errorf("open postgres: %w", err)
		}
		logger.Debug(ctx, "postgres storage ready")
		return postgres.NewRepository(db), db.Close, nil

	case config.BackendRedis:
		rdb, err := redis.Dial(ctx, redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err != nil {
			return nil, nil, err
		}
		logger.Debug(ctx, "redis storage ready", "addr", cfg.RedisAddr)
		return redis.NewRepository(rdb, "userdir:"), rdb.Close, nil

	case config.BackendS3:
		repo, err := objectstore.Open(ctx, objectstore.Options{
			Region:       cfg.S3Region,
			AccessKey:    cfg.S3AccessKey,
			SecretKey:    cfg.S3SecretKey,
			BaseEndpoint: cfg.S3BaseEndpoint,
			Bucket:       cfg.S3Bucket,
			Prefix:       cfg.S3Prefix,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("open s3: %w", err)
		}
		logger.Debug(ctx, "s3 storage ready", "bucket", cfg.S3Bucket)
		return repo, noopClose, nil
	}

	return nil, nil, fmt.Errorf("%w: %q", common.ErrUnknownBackend, cfg.Backend)
}
