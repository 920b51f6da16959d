package service

import (
	"context"
	"sync"

	"github.com/turtacn/tgroups/internal/domain/models"
)

// memConfigRepo is an in-memory ConfigRepository that counts writes.
type memConfigRepo struct {
	mu      sync.Mutex
	cfg     *models.AppConfig
	saves   int
	saveErr error
}

func newMemConfigRepo(cfg *models.AppConfig) *memConfigRepo {
	if cfg == nil {
		cfg = models.NewEmptyAppConfig()
	}
	return &memConfigRepo{cfg: cfg}
}

func configured(session string) *models.AppConfig {
	cfg := models.NewEmptyAppConfig()
	cfg.SetCredentials(models.AccountCredentials{AccountID: 12345, AccountSecret: "0123456789abcdef"})
	cfg.Session = session
	return cfg
}

func (r *memConfigRepo) Load(ctx context.Context) (*models.AppConfig, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.cfg.Clone(), nil
}

func (r *memConfigRepo) Save(ctx context.Context, cfg *models.AppConfig) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.saves++
	if r.saveErr != nil {
		return r.saveErr
	}
	r.cfg = cfg.Clone()
	return nil
}

func (r *memConfigRepo) Close() error { return nil }

func (r *memConfigRepo) current() *models.AppConfig {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.cfg.Clone()
}

func (r *memConfigRepo) saveCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.saves
}
