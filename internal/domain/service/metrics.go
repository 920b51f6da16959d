package service

import (
	"context"
	"time"

	"github.com/turtacn/tgroups/internal/domain/models"
	"github.com/turtacn/tgroups/pkg/constants"
)

// Metrics defines the interface for collecting business metrics.
// This abstraction allows the application layer to remain independent of the specific monitoring implementation (e.g., Prometheus).
// Metrics 定义了收集业务指标的接口。
// 这种抽象使应用层能够独立于具体的监控实现（例如 Prometheus）。
type Metrics interface {
	// RecordAuthTransition records one login step and where it ended.
	// RecordAuthTransition 记录一次登录步骤及其结果。
	RecordAuthTransition(step string, outcome string)

	// RecordGroupList records the latency and outcome of a group listing.
	// RecordGroupList 记录群组列表查询的耗时与结果。
	RecordGroupList(success bool, count int, duration time.Duration)

	// RecordLeave records the outcome of one departure.
	// RecordLeave 记录单个退群操作的结果。
	RecordLeave(peerType models.PeerType, status models.LeaveStatus)

	// SetAttemptsInFlight updates the gauge of login attempts in progress.
	// SetAttemptsInFlight 更新进行中登录尝试数量的仪表盘。
	SetAttemptsInFlight(n int)
}

// AuditRecorder writes audit trail entries. Failures are logged by the implementation and never
// fail the calling operation.
// AuditRecorder 写入审计日志；失败只记录日志，不影响调用方。
type AuditRecorder interface {
	Record(ctx context.Context, entry *models.AuditLog)
}

// MembershipEvent is published whenever the account leaves, or fails to leave, a group.
type MembershipEvent struct {
	Type      constants.AuditEventType `json:"type"`
	GroupID   string                   `json:"group_id"`
	PeerType  models.PeerType          `json:"peer_type"`
	Status    models.LeaveStatus       `json:"status"`
	Message   string                   `json:"message"`
	Timestamp time.Time                `json:"timestamp"`
}

// EventPublisher delivers membership events to downstream consumers.
// EventPublisher 将成员变更事件发送给下游消费者。
type EventPublisher interface {
	Publish(ctx context.Context, events ...MembershipEvent) error
	Close() error
}

// NoopMetrics discards everything. Used when metrics are not wired, and in tests.
type NoopMetrics struct{}

func (NoopMetrics) RecordAuthTransition(string, string) {}
func (NoopMetrics) RecordGroupList(bool, int, time.Duration) {}
func (NoopMetrics) RecordLeave(models.PeerType, models.LeaveStatus) {}
func (NoopMetrics) SetAttemptsInFlight(int) {}

// NoopAuditRecorder discards audit entries.
type NoopAuditRecorder struct{}

func (NoopAuditRecorder) Record(context.Context, *models.AuditLog) {}

// NoopPublisher discards events.
type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, ...MembershipEvent) error { return nil }
func (NoopPublisher) Close() error { return nil }
