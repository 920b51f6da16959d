// Package persistence selects the config repository named by the store configuration.
package persistence

import (
	"context"
	"fmt"

	"github.com/turtacn/tgroups/internal/config"
	"github.com/turtacn/tgroups/internal/domain/repository"
	"github.com/turtacn/tgroups/internal/infrastructure/persistence/file"
	redisstore "github.com/turtacn/tgroups/internal/infrastructure/persistence/redis"
	"github.com/turtacn/tgroups/pkg/logger"
)

// OpenConfigRepository opens the config repository for cfg.Driver. For the redis driver the
// live connection is returned as well so callers can probe it; it is nil otherwise.
// Closing the repository closes the connection.
func OpenConfigRepository(ctx context.Context, cfg config.StoreConfig, log logger.Logger) (repository.ConfigRepository, *redisstore.RedisConnection, error) {
	switch cfg.Driver {
	case "file":
		store, err := file.NewConfigStore(cfg.Path, cfg.Watch, log)
		if err != nil {
			return nil, nil, err
		}
		return store, nil, nil
	case "redis":
		conn := redisstore.NewRedisConnection(&redisstore.Config{
			Address:  cfg.Redis.Address,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		}, log)
		if err := conn.Connect(ctx); err != nil {
			return nil, nil, err
		}
		return redisstore.NewConfigStore(conn.GetClient(), cfg.Redis.Key, log, conn.Close), conn, nil
	default:
		return nil, nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
	}
}
