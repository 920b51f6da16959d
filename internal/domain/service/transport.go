// Package service defines the interfaces for domain services.
package service

import (
	"context"

	"github.com/turtacn/tgroups/internal/domain/models"
)

//go:generate mockery --name Transport --output mocks --outpkg mocks
// Transport is one live or resumable connection to the remote messaging service.
// A Transport is owned by exactly one caller at a time and is never shared between login attempts.
// Transport 表示与远程消息服务的一个连接（可恢复）。同一时间只属于一个调用方。
type Transport interface {
	// Connect establishes the connection. Failing to reach a connected state is reported as ErrKindConnectFailed.
	// Connect 建立连接。
	Connect(ctx context.Context) error

	// Disconnect closes the connection. It is safe to call on a transport that never connected.
	// Disconnect 关闭连接。
	Disconnect(ctx context.Context) error

	// IsConnected reports whether the connection is currently up.
	// IsConnected 报告连接是否处于活动状态。
	IsConnected() bool

	// SendCode asks the remote service to deliver a verification code and returns the id of that request.
	// SendCode 请求远程服务发送验证码，并返回该请求的标识。
	SendCode(ctx context.Context, phoneNumber string) (codeRequestID string, err error)

	// SignIn submits a verification code. The code is bound to phoneNumber and codeRequestID.
	// A two-factor account fails with ErrKindTwoFactorRequired.
	// SignIn 提交验证码；需要二步验证时返回 ErrKindTwoFactorRequired。
	SignIn(ctx context.Context, phoneNumber, codeRequestID, code string) error

	// CheckPassword completes a two-factor login.
	// CheckPassword 完成二步验证登录。
	CheckPassword(ctx context.Context, password string) error

	// Dialogs enumerates the account's conversations, archived ones included, in remote order.
	// Dialogs 按远程顺序列出账户的所有会话（包括已归档的）。
	Dialogs(ctx context.Context) ([]models.Conversation, error)

	// LeaveChannel leaves a channel or supergroup.
	// LeaveChannel 退出频道或超级群组。
	LeaveChannel(ctx context.Context, channelID int64) error

	// RemoveSelfFromChat removes the current user from a basic group.
	// RemoveSelfFromChat 将当前用户从普通群组中移除。
	RemoveSelfFromChat(ctx context.Context, chatID int64) error

	// ExportSession serializes the resumable session.
	// ExportSession 序列化可恢复的会话。
	ExportSession(ctx context.Context) (string, error)
}

//go:generate mockery --name TransportFactory --output mocks --outpkg mocks
// TransportFactory builds transports. An empty session starts a fresh, unauthenticated connection.
// TransportFactory 创建 Transport；session 为空时创建全新的未认证连接。
type TransportFactory interface {
	NewTransport(creds models.AccountCredentials, session string) (Transport, error)
}
