package service

import (
	"context"
	"time"

	"github.com/turtacn/tgroups/internal/domain/models"
)

// AuthAttempt is one in-flight login, keyed by the client's session token.
// The attempt exclusively owns its Transport until it is retired.
// AuthAttempt 表示一个进行中的登录尝试，独占其 Transport 直到被移除。
type AuthAttempt struct {
	Token     string
	Transport Transport
	Step      models.AuthStep
	StartedAt time.Time
}

//go:generate mockery --name AttemptRegistry --output mocks --outpkg mocks
// AttemptRegistry is the single source of truth for "is a login in progress for this token".
// AttemptRegistry 是"该令牌是否有进行中的登录"的唯一依据。
type AttemptRegistry interface {
	// Lock serialises all operations on one token. The returned func releases the lock.
	// Lock 串行化同一令牌上的所有操作，返回的函数用于释放锁。
	Lock(token string) (unlock func())

	// Get returns the attempt for token, or nil when none is in progress.
	// Get 返回令牌对应的尝试，不存在时返回 nil。
	Get(token string) *AuthAttempt

	// Put stores attempt, first retiring (disconnecting) any other attempt for the same token.
	// Put 存储尝试；若同一令牌已有尝试，先断开并移除旧的。
	Put(ctx context.Context, attempt *AuthAttempt)

	// Remove disconnects the attempt's transport if still connected and deletes the entry.
	// Disconnect failures are logged, not returned.
	// Remove 断开连接并删除条目；断开失败只记录日志。
	Remove(ctx context.Context, token string)

	// Len returns the number of attempts in progress.
	Len() int
}
