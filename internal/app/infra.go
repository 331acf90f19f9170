package app

import (
	"context"
	"fmt"
	"os"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/jwalitptl/hms-api/internal/config"
	"github.com/jwalitptl/hms-api/internal/repository/memory"
	"github.com/jwalitptl/hms-api/internal/repository/postgres"
	"github.com/jwalitptl/hms-api/pkg/lock"
	"github.com/jwalitptl/hms-api/pkg/logger"
	"github.com/jwalitptl/hms-api/pkg/messaging/redis"
)

// NewLogger builds the service logger and installs it as the global
// zerolog logger used by the HTTP middleware.
func NewLogger(cfg config.LogConfig) *logger.Logger {
	l := logger.NewLogger(&logger.Config{
		Level:      logger.ParseLevel(cfg.Level),
		TimeFormat: time.RFC3339,
		Output:     os.Stdout,
		JSON:       cfg.JSON,
	})
	zerolog.SetGlobalLevel(logger.ParseLevel(cfg.Level))
	log.Logger = *l.Zerolog()
	return l
}

// OpenRepositories connects the configured storage. The returned close
// function is never nil.
func OpenRepositories(ctx context.Context, cfg config.DatabaseConfig) (Repositories, func(), error) {
	switch cfg.Driver {
	case "memory":
		log.Warn().Msg("Using in-memory storage, data is lost on restart")
		return MemoryRepositories(memory.NewStore()), func() {}, nil
	case "postgres":
		db, err := postgres.NewDB(ctx, cfg)
		if err != nil {
			return Repositories{}, func() {}, err
		}
		return PostgresRepositories(db), func() { db.Close() }, nil
	default:
		return Repositories{}, func() {}, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}

// OpenRedis returns nil when no URL is configured.
func OpenRedis(ctx context.Context, cfg config.RedisConfig) (*goredis.Client, error) {
	if cfg.URL == "" {
		return nil, nil
	}
	return redis.NewClient(ctx, redis.Config{
		URL:          cfg.URL,
		MaxRetries:   cfg.MaxRetries,
		RetryBackoff: cfg.RetryBackoff,
		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdleConns,
	})
}

// NewLocker picks the Redis lock when a client is available so that several
// API replicas serialise bookings on the same slot.
func NewLocker(client *goredis.Client, l *logger.Logger) lock.Locker {
	if client == nil {
		return lock.NewLocal()
	}
	return lock.NewRedis(client, "hms:lock:", l.Zerolog())
}
