package redis

import (
	"context"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"

	"github.com/turtacn/tgroups/internal/domain/models"
	"github.com/turtacn/tgroups/internal/domain/repository"
	"github.com/turtacn/tgroups/pkg/logger"
)

const (
	fieldAccountID     = "apiId"
	fieldAccountSecret = "apiHash"
	fieldSession       = "sessionString"
)

var _ repository.ConfigRepository = (*ConfigStore)(nil)

// ConfigStore keeps the AppConfig record in one Redis hash.
type ConfigStore struct {
	client redis.UniversalClient
	key    string
	logger logger.Logger
	closer func() error
}

// NewConfigStore creates a store on client under key. closer, if set, runs on Close.
func NewConfigStore(client redis.UniversalClient, key string, log logger.Logger, closer func() error) *ConfigStore {
	return &ConfigStore{
		client: client,
		key:    key,
		logger: log.WithComponent("RedisConfigStore"),
		closer: closer,
	}
}

// Load implements repository.ConfigRepository.
func (s *ConfigStore) Load(ctx context.Context) (*models.AppConfig, error) {
	values, err := s.client.HGetAll(ctx, s.key).Result()
	if err != nil {
		s.logger.Error(ctx, "Failed to read config from redis", err, logger.String("key", s.key))
		return models.NewEmptyAppConfig(), nil
	}

	cfg := models.NewEmptyAppConfig()
	if raw, ok := values[fieldAccountID]; ok && raw != "" {
		id, err := strconv.Atoi(raw)
		if err != nil {
			s.logger.Warn(ctx, "Ignoring non-numeric account id in redis", logger.String("key", s.key))
		} else {
			cfg.AccountID = &id
		}
	}
	if secret, ok := values[fieldAccountSecret]; ok && secret != "" {
		cfg.AccountSecret = &secret
	}
	cfg.Session = values[fieldSession]
	return cfg, nil
}

// Save implements repository.ConfigRepository. The hash is replaced in one transaction.
func (s *ConfigStore) Save(ctx context.Context, cfg *models.AppConfig) error {
	fields := map[string]interface{}{
		fieldSession: cfg.Session,
	}
	if cfg.AccountID != nil {
		fields[fieldAccountID] = strconv.Itoa(*cfg.AccountID)
	}
	if cfg.AccountSecret != nil {
		fields[fieldAccountSecret] = *cfg.AccountSecret
	}

	pipe := s.client.TxPipeline()
	pipe.Del(ctx, s.key)
	pipe.HSet(ctx, s.key, fields)
	if _, err := pipe.Exec(ctx); err != nil {
		s.logger.Error(ctx, "Failed to save config to redis", err, logger.String("key", s.key))
		return fmt.Errorf("failed to execute redis transaction for config save: %w", err)
	}
	s.logger.Info(ctx, "Configuration saved", logger.String("key", s.key))
	return nil
}

// Close implements repository.ConfigRepository.
func (s *ConfigStore) Close() error {
	if s.closer != nil {
		return s.closer()
	}
	return nil
}
