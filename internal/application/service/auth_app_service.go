// Package service provides application-level services that orchestrate domain services and repositories
package service

import (
	"context"
	"fmt"
	"time"

	"github.com/turtacn/tgroups/internal/application/dto"
	"github.com/turtacn/tgroups/internal/domain/models"
	"github.com/turtacn/tgroups/internal/domain/repository"
	domainService "github.com/turtacn/tgroups/internal/domain/service"
	"github.com/turtacn/tgroups/pkg/constants"
	"github.com/turtacn/tgroups/pkg/errors"
	"github.com/turtacn/tgroups/pkg/logger"
	"github.com/turtacn/tgroups/pkg/utils"
)

const (
	outcomeSuccess         = "success"
	outcomeFailure         = "failure"
	outcomeExistingSession = "existing_session"
	outcomePasswordNeeded  = "password_required"
)

//go:generate mockery --name AuthAppService --output ./mocks --outpkg mocks
// AuthAppService drives the multi-step login of the remote account.
// Every step is keyed by the client's session token.
// AuthAppService 负责远程账户的多步骤登录流程，每一步都以客户端会话令牌为键。
type AuthAppService interface {
	// SubmitPhone starts a login, or reports completion at once when a session is already stored.
	// SubmitPhone 开始登录；若已存储会话则直接返回完成。
	SubmitPhone(ctx context.Context, req *dto.SendPhoneRequest) (*dto.AuthStepResponse, error)

	// SubmitCode submits the verification code of the login in progress.
	// SubmitCode 提交进行中登录的验证码。
	SubmitCode(ctx context.Context, req *dto.SendCodeRequest) (*dto.AuthStepResponse, error)

	// SubmitPassword submits the two-factor password of the login in progress.
	// SubmitPassword 提交进行中登录的二步验证密码。
	SubmitPassword(ctx context.Context, req *dto.SendPasswordRequest) (*dto.AuthStepResponse, error)

	// Logout clears the stored session and retires any login in progress for the token.
	// Logout 清除已存储的会话，并移除该令牌进行中的登录。
	Logout(ctx context.Context, req *dto.LogoutRequest) (*dto.Response, error)
}

// authAppServiceImpl is the concrete implementation of AuthAppService
type authAppServiceImpl struct {
	configRepo repository.ConfigRepository
	factory    domainService.TransportFactory
	registry   domainService.AttemptRegistry
	audit      domainService.AuditRecorder
	metrics    domainService.Metrics
	logger     logger.Logger
}

// NewAuthAppService creates a new instance of AuthAppService
func NewAuthAppService(
	configRepo repository.ConfigRepository,
	factory domainService.TransportFactory,
	registry domainService.AttemptRegistry,
	audit domainService.AuditRecorder,
	metrics domainService.Metrics,
	log logger.Logger,
) AuthAppService {
	if audit == nil {
		audit = domainService.NoopAuditRecorder{}
	}
	if metrics == nil {
		metrics = domainService.NoopMetrics{}
	}
	return &authAppServiceImpl{
		configRepo: configRepo,
		factory:    factory,
		registry:   registry,
		audit:      audit,
		metrics:    metrics,
		logger:     log.WithComponent("AuthAppService"),
	}
}

// SubmitPhone implements AuthAppService.
func (s *authAppServiceImpl) SubmitPhone(ctx context.Context, req *dto.SendPhoneRequest) (*dto.AuthStepResponse, error) {
	cfg, err := s.configRepo.Load(ctx)
	if err != nil {
		return nil, errors.WrapError(err, constants.ErrCodeServerError, "Failed to read configuration.")
	}
	creds, ok := cfg.Credentials()
	if !ok {
		return nil, errors.ErrConfigMissing("API ID and API Hash are not configured.")
	}
	if err := utils.ValidateStruct(req); err != nil {
		return nil, err
	}

	log := s.logger.WithFields(logger.Fields{"phone": logger.MaskPhone(req.PhoneNumber)})

	if cfg.HasSession() {
		log.Info(ctx, "Logged in with the stored session")
		s.metrics.RecordAuthTransition(string(constants.AuthStepPhoneCode), outcomeExistingSession)
		return &dto.AuthStepResponse{
			Success:       true,
			Message:       "Logged in with existing session!",
			Step:          constants.AuthStepCompleted,
			SessionString: cfg.Session,
		}, nil
	}

	unlock := s.registry.Lock(req.SessionID)
	defer unlock()

	// a new attempt never shares a connection with an older one
	s.registry.Remove(ctx, req.SessionID)

	transport, err := s.factory.NewTransport(creds, "")
	if err != nil {
		return nil, s.failStep(ctx, req.SessionID, constants.AuthStepPhoneCode, errors.ErrServerError("Failed to create the Telegram client.").WithCause(err))
	}

	if err := transport.Connect(ctx); err != nil {
		s.dropTransport(ctx, transport)
		return nil, s.failStep(ctx, req.SessionID, constants.AuthStepPhoneCode,
			errors.ErrRemote(fmt.Sprintf("Error sending phone number: %s", domainService.ErrorDetail(err)), err))
	}

	codeRequestID, err := transport.SendCode(ctx, req.PhoneNumber)
	if err != nil {
		s.dropTransport(ctx, transport)
		return nil, s.failStep(ctx, req.SessionID, constants.AuthStepPhoneCode,
			errors.ErrRemote(fmt.Sprintf("Error sending phone number: %s", domainService.ErrorDetail(err)), err))
	}

	s.registry.Put(ctx, &domainService.AuthAttempt{
		Token:     req.SessionID,
		Transport: transport,
		Step:      models.AwaitingCode{PhoneNumber: req.PhoneNumber, CodeRequestID: codeRequestID},
		StartedAt: time.Now(),
	})

	log.Info(ctx, "Verification code sent")
	s.metrics.RecordAuthTransition(string(constants.AuthStepPhoneCode), outcomeSuccess)
	s.audit.Record(ctx, models.NewAuditLog(constants.AuditEventCodeSent, outcomeSuccess, "verification code sent").
		WithActor(req.SessionID).WithTraceID(traceID(ctx)))

	return &dto.AuthStepResponse{
		Success: true,
		Message: "Verification code sent. Please enter it.",
		Step:    constants.AuthStepPhoneCode,
	}, nil
}

// SubmitCode implements AuthAppService.
func (s *authAppServiceImpl) SubmitCode(ctx context.Context, req *dto.SendCodeRequest) (*dto.AuthStepResponse, error) {
	unlock := s.registry.Lock(req.SessionID)
	defer unlock()

	attempt := s.registry.Get(req.SessionID)
	if attempt == nil {
		return nil, errors.ErrAuthNotStarted()
	}
	step, ok := attempt.Step.(models.AwaitingCode)
	if !ok {
		return nil, errors.ErrInvalidRequest("A two-factor password is expected for this login.")
	}
	if err := utils.ValidateStruct(req); err != nil {
		return nil, err
	}

	err := attempt.Transport.SignIn(ctx, step.PhoneNumber, step.CodeRequestID, req.PhoneCode)
	switch {
	case err == nil:
		return s.complete(ctx, attempt, constants.AuthStepPhoneCode)
	case domainService.IsKind(err, domainService.ErrKindTwoFactorRequired):
		attempt.Step = models.AwaitingPassword{PhoneNumber: step.PhoneNumber, CodeRequestID: step.CodeRequestID}
		s.registry.Put(ctx, attempt)

		s.logger.Info(ctx, "Two-factor password required")
		s.metrics.RecordAuthTransition(string(constants.AuthStepPhoneCode), outcomePasswordNeeded)
		s.audit.Record(ctx, models.NewAuditLog(constants.AuditEventPasswordNeeded, outcomeSuccess, "two-factor password required").
			WithActor(req.SessionID).WithTraceID(traceID(ctx)))
		return &dto.AuthStepResponse{
			Success: true,
			Message: "Two-factor password required. Please provide it.",
			Step:    constants.AuthStepPassword,
		}, nil
	default:
		s.registry.Remove(ctx, req.SessionID)
		return nil, s.failStep(ctx, req.SessionID, constants.AuthStepPhoneCode,
			errors.ErrRemote(fmt.Sprintf("Verification code error: %s", domainService.ErrorDetail(err)), err))
	}
}

// SubmitPassword implements AuthAppService.
func (s *authAppServiceImpl) SubmitPassword(ctx context.Context, req *dto.SendPasswordRequest) (*dto.AuthStepResponse, error) {
	unlock := s.registry.Lock(req.SessionID)
	defer unlock()

	attempt := s.registry.Get(req.SessionID)
	if attempt == nil {
		return nil, errors.ErrAuthNotStarted()
	}
	if _, ok := attempt.Step.(models.AwaitingPassword); !ok {
		return nil, errors.ErrInvalidRequest("A verification code is expected for this login.")
	}
	if err := utils.ValidateStruct(req); err != nil {
		return nil, err
	}

	if err := attempt.Transport.CheckPassword(ctx, req.Password); err != nil {
		s.registry.Remove(ctx, req.SessionID)
		return nil, s.failStep(ctx, req.SessionID, constants.AuthStepPassword,
			errors.ErrRemote(fmt.Sprintf("Two-factor password error: %s", domainService.ErrorDetail(err)), err))
	}
	return s.complete(ctx, attempt, constants.AuthStepPassword)
}

// complete persists the session of an authenticated attempt, then retires the attempt.
// A session that could not be stored is a failed login.
func (s *authAppServiceImpl) complete(ctx context.Context, attempt *domainService.AuthAttempt, step constants.AuthStep) (*dto.AuthStepResponse, error) {
	defer s.registry.Remove(ctx, attempt.Token)

	session, err := attempt.Transport.ExportSession(ctx)
	if err != nil || session == "" {
		return nil, s.failStep(ctx, attempt.Token, step, errors.ErrServerError("Login succeeded but the session could not be exported.").WithCause(err))
	}

	cfg, err := s.configRepo.Load(ctx)
	if err != nil {
		return nil, s.failStep(ctx, attempt.Token, step, errors.ErrServerError("Login succeeded but the configuration could not be read.").WithCause(err))
	}
	cfg.Session = session
	if err := s.configRepo.Save(ctx, cfg); err != nil {
		return nil, s.failStep(ctx, attempt.Token, step, errors.ErrServerError("Login succeeded but the session could not be saved.").WithCause(err))
	}

	s.logger.Info(ctx, "Login completed", logger.String("step", string(step)))
	s.metrics.RecordAuthTransition(string(step), outcomeSuccess)
	s.audit.Record(ctx, models.NewAuditLog(constants.AuditEventLoginCompleted, outcomeSuccess, "login completed").
		WithActor(attempt.Token).WithTraceID(traceID(ctx)))

	return &dto.AuthStepResponse{
		Success:       true,
		Message:       "Login successful!",
		Step:          constants.AuthStepCompleted,
		SessionString: session,
	}, nil
}

// Logout implements AuthAppService. Calling it again is a no-op.
func (s *authAppServiceImpl) Logout(ctx context.Context, req *dto.LogoutRequest) (*dto.Response, error) {
	cfg, err := s.configRepo.Load(ctx)
	if err != nil {
		return nil, errors.WrapError(err, constants.ErrCodeServerError, "Failed to read configuration.")
	}
	if cfg.HasSession() {
		cfg.Session = ""
		if err := s.configRepo.Save(ctx, cfg); err != nil {
			s.logger.Error(ctx, "Failed to clear the stored session", err)
			return nil, errors.ErrServerError("Failed to clear the stored session.").WithCause(err)
		}
	}

	if req != nil && req.SessionID != "" {
		unlock := s.registry.Lock(req.SessionID)
		s.registry.Remove(ctx, req.SessionID)
		unlock()
	}

	s.logger.Info(ctx, "Session cleared")
	s.audit.Record(ctx, models.NewAuditLog(constants.AuditEventLogout, outcomeSuccess, "session cleared").
		WithActor(sessionID(req)).WithTraceID(traceID(ctx)))
	return dto.SuccessResponse("Session cleared successfully. Please reload the page."), nil
}

// failStep logs, counts and audits a failed login step and returns err.
func (s *authAppServiceImpl) failStep(ctx context.Context, token string, step constants.AuthStep, err errors.AppError) error {
	s.logger.Error(ctx, "Login step failed", err, logger.String("step", string(step)))
	s.metrics.RecordAuthTransition(string(step), outcomeFailure)
	s.audit.Record(ctx, models.NewAuditLog(constants.AuditEventLoginFailed, outcomeFailure, err.Error()).
		WithActor(token).WithResultCode(err.Code()).WithTraceID(traceID(ctx)))
	return err
}

// dropTransport disconnects a transport that never made it into the registry.
func (s *authAppServiceImpl) dropTransport(ctx context.Context, t domainService.Transport) {
	if err := t.Disconnect(ctx); err != nil {
		s.logger.Warn(ctx, "Failed to disconnect transport", logger.Error(err))
	}
}

func sessionID(req *dto.LogoutRequest) string {
	if req == nil {
		return ""
	}
	return req.SessionID
}

func traceID(ctx context.Context) string {
	if id, ok := ctx.Value(constants.ContextKeyTraceID).(string); ok {
		return id
	}
	return ""
}
