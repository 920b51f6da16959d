package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/turtacn/tgroups/internal/domain/models"
	"github.com/turtacn/tgroups/internal/domain/service"
)

type MockMetrics struct {
	mock.Mock
}

func (m *MockMetrics) RecordAuthTransition(step string, outcome string) {
	m.Called(step, outcome)
}

func (m *MockMetrics) RecordGroupList(success bool, count int, duration time.Duration) {
	m.Called(success, count, duration)
}

func (m *MockMetrics) RecordLeave(peerType models.PeerType, status models.LeaveStatus) {
	m.Called(peerType, status)
}

func (m *MockMetrics) SetAttemptsInFlight(n int) {
	m.Called(n)
}

type MockAuditRecorder struct {
	mock.Mock
}

func (m *MockAuditRecorder) Record(ctx context.Context, entry *models.AuditLog) {
	m.Called(ctx, entry)
}

type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(ctx context.Context, events ...service.MembershipEvent) error {
	args := m.Called(ctx, events)
	return args.Error(0)
}

func (m *MockEventPublisher) Close() error {
	args := m.Called()
	return args.Error(0)
}
