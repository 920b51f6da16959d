package service

import (
	"context"

	"github.com/turtacn/tgroups/internal/application/dto"
	"github.com/turtacn/tgroups/internal/domain/models"
	"github.com/turtacn/tgroups/internal/domain/repository"
	"github.com/turtacn/tgroups/pkg/constants"
	"github.com/turtacn/tgroups/pkg/errors"
	"github.com/turtacn/tgroups/pkg/logger"
	"github.com/turtacn/tgroups/pkg/utils"
)

//go:generate mockery --name ConfigAppService --output ./mocks --outpkg mocks
// ConfigAppService reads and updates the stored account credentials.
// ConfigAppService 读取并更新已存储的账户凭据。
type ConfigAppService interface {
	// GetConfig returns the stored record. Missing values are reported as null.
	GetConfig(ctx context.Context) (*dto.ConfigResponse, error)

	// UpdateConfig replaces the credentials and keeps the stored session.
	UpdateConfig(ctx context.Context, req *dto.UpdateConfigRequest) (*dto.Response, error)
}

type configAppServiceImpl struct {
	configRepo repository.ConfigRepository
	logger     logger.Logger
}

// NewConfigAppService creates a new instance of ConfigAppService
func NewConfigAppService(configRepo repository.ConfigRepository, log logger.Logger) ConfigAppService {
	return &configAppServiceImpl{
		configRepo: configRepo,
		logger:     log.WithComponent("ConfigAppService"),
	}
}

// GetConfig implements ConfigAppService.
func (s *configAppServiceImpl) GetConfig(ctx context.Context) (*dto.ConfigResponse, error) {
	cfg, err := s.configRepo.Load(ctx)
	if err != nil {
		return nil, errors.WrapError(err, constants.ErrCodeServerError, "Failed to read configuration.")
	}
	return &dto.ConfigResponse{
		Success:       true,
		APIID:         cfg.AccountID,
		APIHash:       cfg.AccountSecret,
		SessionString: cfg.Session,
	}, nil
}

// UpdateConfig implements ConfigAppService.
func (s *configAppServiceImpl) UpdateConfig(ctx context.Context, req *dto.UpdateConfigRequest) (*dto.Response, error) {
	if req == nil {
		return nil, errors.ErrInvalidRequest("API ID and API Hash are required.")
	}
	if err := utils.ValidateStruct(req); err != nil {
		return nil, err
	}

	cfg, err := s.configRepo.Load(ctx)
	if err != nil {
		return nil, errors.WrapError(err, constants.ErrCodeServerError, "Failed to read configuration.")
	}
	cfg.SetCredentials(models.AccountCredentials{
		AccountID:     int(req.APIID),
		AccountSecret: req.APIHash,
	})
	if err := s.configRepo.Save(ctx, cfg); err != nil {
		s.logger.Error(ctx, "Failed to save configuration", err)
		return nil, errors.ErrServerError("Failed to save configuration.").WithCause(err)
	}

	s.logger.Info(ctx, "Credentials updated", logger.Int("api_id", int(req.APIID)))
	return dto.SuccessResponse("Settings saved successfully!"), nil
}
