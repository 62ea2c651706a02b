package http

import (
	"context"
	"fmt"
	"log/slog"

	mysqldb "userapp/internal/adapter/database/mysql"
	mysqlrepo "userapp/internal/adapter/database/mysql/repository"
	postgresdb "userapp/internal/adapter/database/postgres"
	postgresrepo "userapp/internal/adapter/database/postgres/repository"
	sqlitedb "userapp/internal/adapter/database/sqlite"
	sqliterepo "userapp/internal/adapter/database/sqlite/repository"

	"userapp/internal/adapter/database/memory"
	"userapp/internal/adapter/database/redis"
	"userapp/internal/adapter/http/handler"
	"userapp/internal/adapter/http/helper"
	"userapp/internal/adapter/http/validation"
	"userapp/internal/core/port"
	"userapp/internal/core/service"
	"userapp/internal/core/telemetry"
	"userapp/pkg/config"
	"userapp/pkg/logger"
)

type Container struct {
	UserRepo port.UserRepository
	Cache    port.CacheRepository

	UserService *service.UserService

	Validator *validation.Validator
	Responder *helper.Responder

	UserHandler *handler.UserHandler
	HomeHandler *handler.HomeHandler

	closers []func() error
}

// OpenUserRepository connects to the store named by cfg.DBDriver and brings
// its schema up to date.
func OpenUserRepository(ctx context.Context, cfg *config.AppConfig, probe port.Telemetry) (port.UserRepository, func() error, error) {
	switch cfg.DBDriver {
	case config.DriverSQLite, "":
		db, err := sqlitedb.NewDB(sqlitedb.Config{Path: cfg.DatabasePath, LogQueries: cfg.LogSQLQueries})
		if err != nil {
			return nil, nil, err
		}

		return sqliterepo.NewUserRepository(db, probe), db.Close, nil

	case config.DriverPostgres:
		db, err := postgresdb.NewDB(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}

		return postgresrepo.NewUserRepository(db, probe), func() error { db.Close(); return nil }, nil

	case config.DriverMySQL:
		db, err := mysqldb.NewDB(mysqldb.Config{DSN: cfg.MySQLDSN, LogQueries: cfg.LogSQLQueries})
		if err != nil {
			return nil, nil, err
		}

		return mysqlrepo.NewUserRepository(db, probe), db.Close, nil

	default:
		return nil, nil, fmt.Errorf("unknown DB_DRIVER %q", cfg.DBDriver)
	}
}

// OpenCache returns nil when caching is disabled. An unreachable redis
// downgrades to the in-memory cache.
func OpenCache(ctx context.Context, cfg *config.AppConfig) port.CacheRepository {
	switch cfg.CacheDriver {
	case config.CacheNone:
		return nil

	case config.CacheRedis:
		cache, err := redis.NewRedisRepository(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, cfg.ServiceName)
		if err == nil {
			return cache
		}

		slog.Warn("Redis unavailable, using in-memory cache", "addr", cfg.RedisAddr, "error", err)
	}

	return memory.NewMemoryRepository(cfg.CacheTTL, 2*cfg.CacheTTL)
}

func NewContainer(ctx context.Context, cfg *config.AppConfig, log *logger.Logger, metrics *telemetry.AppMetrics, probe port.Telemetry) (*Container, error) {
	userRepo, closeRepo, err := OpenUserRepository(ctx, cfg, probe)
	if err != nil {
		return nil, err
	}

	c := &Container{UserRepo: userRepo}
	c.closers = append(c.closers, closeRepo)

	opts := []service.Option{
		service.WithTelemetry(probe),
		service.WithMetrics(metrics),
	}

	if cache := OpenCache(ctx, cfg); cache != nil {
		c.Cache = cache
		c.closers = append(c.closers, cache.Close)
		opts = append(opts, service.WithCache(cache, cfg.CacheTTL))
	}

	c.UserService = service.NewUserService(userRepo, opts...)
	c.Validator = validation.NewValidator(c.UserService)
	c.Responder = helper.NewResponder(helper.ErrorOptions{
		DisplayErrorDetails: cfg.DisplayErrorDetails,
		LogErrors:           cfg.LogErrors,
		LogErrorDetails:     cfg.LogErrorDetails,
	}, log.Zap())

	c.UserHandler = handler.NewUserHandler(c.UserService, c.Validator, c.Responder, metrics)
	c.HomeHandler = handler.NewHomeHandler(cfg.ServiceName, cfg.ServiceVersion, c.UserService)

	return c, nil
}

// Close releases resources in reverse order of acquisition.
func (c *Container) Close() error {
	var firstErr error

	for i := len(c.closers) - 1; i >= 0; i-- {
		if err := c.closers[i](); err != nil && firstErr == nil {
			firstErr = err
		}
	}

	return firstErr
}
