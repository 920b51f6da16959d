package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/sync/singleflight"

	"github.com/turtacn/tgroups/internal/application/dto"
	"github.com/turtacn/tgroups/internal/domain/models"
	"github.com/turtacn/tgroups/internal/domain/repository"
	domainService "github.com/turtacn/tgroups/internal/domain/service"
	"github.com/turtacn/tgroups/pkg/constants"
	"github.com/turtacn/tgroups/pkg/errors"
	"github.com/turtacn/tgroups/pkg/logger"
)

const tracerName = "github.com/turtacn/tgroups/internal/application/service"

// listGroupsTimeout bounds a shared listing once it no longer follows its first caller.
const listGroupsTimeout = 2 * time.Minute

//go:generate mockery --name GroupAppService --output ./mocks --outpkg mocks
// GroupAppService lists the account's groups and leaves them in batches.
// Both operations run on a short-lived transport built from the persisted session.
// GroupAppService 列出账户的群组并批量退出，每次调用使用基于持久化会话的临时连接。
type GroupAppService interface {
	// ListGroups returns every group-like conversation, archived ones included, in remote order.
	// ListGroups 按远程顺序返回所有群组类会话（包括已归档的）。
	ListGroups(ctx context.Context) (*dto.GroupListResponse, error)

	// LeaveGroups leaves each requested group in order. One failure never stops the rest.
	// LeaveGroups 依次退出每个群组，单个失败不影响其余群组。
	LeaveGroups(ctx context.Context, req *dto.LeaveGroupsRequest) (*dto.LeaveGroupsResponse, error)
}

type groupAppServiceImpl struct {
	configRepo repository.ConfigRepository
	factory    domainService.TransportFactory
	audit      domainService.AuditRecorder
	events     domainService.EventPublisher
	metrics    domainService.Metrics
	logger     logger.Logger

	// concurrent listings share one remote round trip
	listGroup singleflight.Group
}

// NewGroupAppService creates a new instance of GroupAppService
func NewGroupAppService(
	configRepo repository.ConfigRepository,
	factory domainService.TransportFactory,
	audit domainService.AuditRecorder,
	events domainService.EventPublisher,
	metrics domainService.Metrics,
	log logger.Logger,
) GroupAppService {
	if audit == nil {
		audit = domainService.NoopAuditRecorder{}
	}
	if events == nil {
		events = domainService.NoopPublisher{}
	}
	if metrics == nil {
		metrics = domainService.NoopMetrics{}
	}
	return &groupAppServiceImpl{
		configRepo: configRepo,
		factory:    factory,
		audit:      audit,
		events:     events,
		metrics:    metrics,
		logger:     log.WithComponent("GroupAppService"),
	}
}

// ListGroups implements GroupAppService.
func (s *groupAppServiceImpl) ListGroups(ctx context.Context) (*dto.GroupListResponse, error) {
	// the shared call outlives any single caller; each caller still stops waiting on its own ctx
	ch := s.listGroup.DoChan("groups", func() (interface{}, error) {
		callCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), listGroupsTimeout)
		defer cancel()
		return s.listGroups(callCtx)
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Shared {
			s.logger.Debug(ctx, "Group listing shared with a concurrent request")
		}
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*dto.GroupListResponse), nil
	}
}

func (s *groupAppServiceImpl) listGroups(ctx context.Context) (resp *dto.GroupListResponse, err error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "GroupAppService.ListGroups")
	start := time.Now()
	defer func() {
		count := 0
		if resp != nil {
			count = len(resp.Groups)
		}
		s.metrics.RecordGroupList(err == nil, count, time.Since(start))
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.SetAttributes(attribute.Int("groups.count", count))
		span.End()
	}()

	transport, err := s.openTransport(ctx,
		"Credentials or session not configured. Please configure them and authenticate.",
		"Failed to connect to Telegram. The session may be invalid. Please authenticate again.")
	if err != nil {
		return nil, err
	}
	defer s.closeTransport(ctx, transport)

	conversations, err := transport.Dialogs(ctx)
	if err != nil {
		s.logger.Error(ctx, "Failed to list dialogs", err)
		return nil, errors.ErrRemote(
			fmt.Sprintf("Error listing groups: %s. The session may have expired. Please authenticate again.", domainService.ErrorDetail(err)), err)
	}

	groups := make([]models.Group, 0, len(conversations))
	for _, c := range conversations {
		if c.IsGroup() {
			groups = append(groups, models.GroupFromConversation(c))
		}
	}

	s.logger.Info(ctx, "Groups listed", logger.Int("count", len(groups)))
	return &dto.GroupListResponse{Success: true, Groups: groups}, nil
}

// LeaveGroups implements GroupAppService.
func (s *groupAppServiceImpl) LeaveGroups(ctx context.Context, req *dto.LeaveGroupsRequest) (*dto.LeaveGroupsResponse, error) {
	if req == nil || len(req.GroupIDs) == 0 {
		return nil, errors.ErrInvalidRequest("Group list is invalid or empty.")
	}

	ctx, span := otel.Tracer(tracerName).Start(ctx, "GroupAppService.LeaveGroups")
	defer span.End()
	span.SetAttributes(attribute.Int("groups.requested", len(req.GroupIDs)))

	transport, err := s.openTransport(ctx,
		"Credentials or session not configured.",
		"Failed to connect to Telegram to leave groups. The session may be invalid.")
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	defer s.closeTransport(ctx, transport)

	results := make([]models.LeaveResult, 0, len(req.GroupIDs))
	events := make([]domainService.MembershipEvent, 0, len(req.GroupIDs))
	failed := 0
	for _, target := range req.GroupIDs {
		result := s.leaveOne(ctx, transport, target)
		results = append(results, result)

		eventType := constants.AuditEventGroupLeft
		outcome := outcomeSuccess
		if result.Status == models.LeaveStatusFailure {
			eventType = constants.AuditEventGroupLeaveFailed
			outcome = outcomeFailure
			failed++
		}
		s.metrics.RecordLeave(target.PeerType, result.Status)
		s.audit.Record(ctx, models.NewAuditLog(eventType, outcome, result.Message).
			WithTarget(target.ID).
			WithTraceID(traceID(ctx)).
			WithMetadata(map[string]string{"peer_type": string(target.PeerType)}))
		events = append(events, domainService.MembershipEvent{
			Type:      eventType,
			GroupID:   target.ID,
			PeerType:  target.PeerType,
			Status:    result.Status,
			Message:   result.Message,
			Timestamp: time.Now().UTC(),
		})
	}

	if err := s.events.Publish(ctx, events...); err != nil {
		s.logger.Warn(ctx, "Failed to publish membership events", logger.Error(err))
	}

	span.SetAttributes(attribute.Int("groups.failed", failed))
	s.logger.Info(ctx, "Leave batch finished",
		logger.Int("requested", len(req.GroupIDs)), logger.Int("failed", failed))
	return &dto.LeaveGroupsResponse{Success: true, Results: results}, nil
}

// leaveOne performs one departure. Every outcome, including a malformed target, becomes a result.
func (s *groupAppServiceImpl) leaveOne(ctx context.Context, transport domainService.Transport, target models.LeaveTarget) models.LeaveResult {
	var (
		err     error
		message string
	)
	switch target.PeerType {
	case models.PeerTypeChannel:
		id, perr := parseMarkedID(target.ID, constants.ChannelIDPrefix)
		if perr != nil {
			return leaveFailure(target.ID, fmt.Sprintf("Invalid group ID %s.", target.ID))
		}
		err = transport.LeaveChannel(ctx, id)
		message = "Left the channel/supergroup."
	case models.PeerTypeChat:
		id, perr := parseMarkedID(target.ID, constants.ChatIDPrefix)
		if perr != nil {
			return leaveFailure(target.ID, fmt.Sprintf("Invalid group ID %s.", target.ID))
		}
		err = transport.RemoveSelfFromChat(ctx, id)
		message = "Left the basic group."
	default:
		return leaveFailure(target.ID, fmt.Sprintf("Unknown group type for ID %s.", target.ID))
	}

	if err != nil {
		s.logger.Warn(ctx, "Failed to leave group",
			logger.String("group_id", target.ID),
			logger.String("peer_type", string(target.PeerType)),
			logger.String("kind", domainService.KindOf(err).String()),
			logger.Error(err))
		return leaveFailure(target.ID, leaveErrorMessage(target, err))
	}
	return models.LeaveResult{ID: target.ID, Status: models.LeaveStatusSuccess, Message: message}
}

func leaveFailure(id, message string) models.LeaveResult {
	return models.LeaveResult{ID: id, Status: models.LeaveStatusFailure, Message: message}
}

// leaveErrorMessage maps a departure failure to the message shown next to the group.
func leaveErrorMessage(target models.LeaveTarget, err error) string {
	switch domainService.KindOf(err) {
	case domainService.ErrKindPeerInvalid:
		if target.PeerType == models.PeerTypeChat {
			return fmt.Sprintf("Invalid basic group ID %s.", target.ID)
		}
		return fmt.Sprintf("Invalid group ID %s, or you are not a member.", target.ID)
	case domainService.ErrKindAccessDenied:
		return fmt.Sprintf("Could not leave group %s: it is private, you are not a member, or admin rights are required.", target.ID)
	case domainService.ErrKindAlreadyLeft:
		return fmt.Sprintf("You are no longer a member of group %s.", target.ID)
	default:
		return fmt.Sprintf("Operation failed: %s", domainService.ErrorDetail(err))
	}
}

// parseMarkedID strips the marker prefix from a display id and returns the bare positive id.
// An id without the prefix is parsed as is.
func parseMarkedID(marked, prefix string) (int64, error) {
	raw := strings.TrimPrefix(strings.TrimSpace(marked), prefix)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, err
	}
	if id <= 0 {
		return 0, fmt.Errorf("id %q is not positive", marked)
	}
	return id, nil
}

// openTransport builds and connects a transport from the persisted credentials and session.
func (s *groupAppServiceImpl) openTransport(ctx context.Context, missingMsg, connectMsg string) (domainService.Transport, error) {
	cfg, err := s.configRepo.Load(ctx)
	if err != nil {
		return nil, errors.WrapError(err, constants.ErrCodeServerError, "Failed to read configuration.")
	}
	creds, ok := cfg.Credentials()
	if !ok || !cfg.HasSession() {
		return nil, errors.ErrConfigMissing(missingMsg)
	}

	transport, err := s.factory.NewTransport(creds, cfg.Session)
	if err != nil {
		s.logger.Error(ctx, "Failed to build transport from the stored session", err)
		return nil, errors.ErrSessionInvalid(connectMsg).WithCause(err)
	}
	if err := transport.Connect(ctx); err != nil {
		s.logger.Error(ctx, "Failed to connect with the stored session", err)
		s.closeTransport(ctx, transport)
		return nil, errors.ErrSessionInvalid(connectMsg).WithCause(err)
	}
	return transport, nil
}

func (s *groupAppServiceImpl) closeTransport(ctx context.Context, transport domainService.Transport) {
	if err := transport.Disconnect(ctx); err != nil {
		s.logger.Warn(ctx, "Failed to disconnect transport", logger.Error(err))
	}
}
