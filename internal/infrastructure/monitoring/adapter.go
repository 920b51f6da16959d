// Package monitoring provides the logger, Prometheus metrics and tracing of the service.
package monitoring

import (
	"time"

	"github.com/turtacn/tgroups/internal/domain/models"
	"github.com/turtacn/tgroups/internal/domain/service"
)

// MetricsAdapter implements the domain's service.Metrics interface, sending metrics to a Prometheus backend.
// MetricsAdapter 实现了域的 service.Metrics 接口，将指标发送到 Prometheus 后端。
type MetricsAdapter struct {
	metrics *Metrics
}

// NewMetricsAdapter wraps a concrete Prometheus Metrics object.
// NewMetricsAdapter 创建一个包装具体 Prometheus Metrics 对象的新适配器。
func NewMetricsAdapter(metrics *Metrics) *MetricsAdapter {
	return &MetricsAdapter{metrics: metrics}
}

// RecordAuthTransition counts one login step.
// RecordAuthTransition 记录一次登录步骤。
func (a *MetricsAdapter) RecordAuthTransition(step string, outcome string) {
	a.metrics.AuthTransitions.WithLabelValues(step, outcome).Inc()
}

// RecordGroupList records a group directory query.
// RecordGroupList 记录一次群组列表查询。
func (a *MetricsAdapter) RecordGroupList(success bool, count int, duration time.Duration) {
	result := "success"
	if !success {
		result = "failure"
	}
	a.metrics.GroupListRequests.WithLabelValues(result).Inc()
	a.metrics.GroupListLatency.Observe(duration.Seconds())
	if success {
		a.metrics.GroupsListed.Set(float64(count))
	}
}

// RecordLeave counts one departure.
// RecordLeave 记录一次退群结果。
func (a *MetricsAdapter) RecordLeave(peerType models.PeerType, status models.LeaveStatus) {
	a.metrics.LeaveOutcomes.WithLabelValues(string(peerType), string(status)).Inc()
}

// SetAttemptsInFlight updates the in-flight login gauge.
// SetAttemptsInFlight 更新进行中登录的数量。
func (a *MetricsAdapter) SetAttemptsInFlight(n int) {
	a.metrics.LoginAttemptsActive.Set(float64(n))
}

var _ service.Metrics = (*MetricsAdapter)(nil)
