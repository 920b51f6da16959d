package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/turtacn/tgroups/internal/domain/models"
	"github.com/turtacn/tgroups/internal/domain/service"
)

type MockTransport struct {
	mock.Mock
}

func (m *MockTransport) Connect(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockTransport) Disconnect(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockTransport) IsConnected() bool {
	args := m.Called()
	return args.Bool(0)
}

func (m *MockTransport) SendCode(ctx context.Context, phoneNumber string) (string, error) {
	args := m.Called(ctx, phoneNumber)
	return args.String(0), args.Error(1)
}

func (m *MockTransport) SignIn(ctx context.Context, phoneNumber, codeRequestID, code string) error {
	args := m.Called(ctx, phoneNumber, codeRequestID, code)
	return args.Error(0)
}

func (m *MockTransport) CheckPassword(ctx context.Context, password string) error {
	args := m.Called(ctx, password)
	return args.Error(0)
}

func (m *MockTransport) Dialogs(ctx context.Context) ([]models.Conversation, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Conversation), args.Error(1)
}

func (m *MockTransport) LeaveChannel(ctx context.Context, channelID int64) error {
	args := m.Called(ctx, channelID)
	return args.Error(0)
}

func (m *MockTransport) RemoveSelfFromChat(ctx context.Context, chatID int64) error {
	args := m.Called(ctx, chatID)
	return args.Error(0)
}

func (m *MockTransport) ExportSession(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

type MockTransportFactory struct {
	mock.Mock
}

func (m *MockTransportFactory) NewTransport(creds models.AccountCredentials, session string) (service.Transport, error) {
	args := m.Called(creds, session)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(service.Transport), args.Error(1)
}
