// Package registry holds in-flight login attempts in process memory.
package registry

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/turtacn/tgroups/internal/domain/service"
	"github.com/turtacn/tgroups/pkg/logger"
)

const retireTimeout = 10 * time.Second

// entry wraps an attempt so that explicit retirement and TTL expiry never disconnect twice.
type entry struct {
	attempt *service.AuthAttempt
	retired atomic.Bool
}

type tokenLock struct {
	mu   sync.Mutex
	refs int
}

// AttemptRegistry is a go-cache backed implementation of service.AttemptRegistry.
// Entries idle for longer than the TTL are evicted and their transports disconnected.
type AttemptRegistry struct {
	items   *cache.Cache
	logger  logger.Logger
	metrics service.Metrics

	locksMu sync.Mutex
	locks   map[string]*tokenLock
}

// NewAttemptRegistry creates a registry. A ttl of zero or less keeps attempts until they are removed.
func NewAttemptRegistry(ttl, cleanupInterval time.Duration, log logger.Logger, metrics service.Metrics) *AttemptRegistry {
	if ttl <= 0 {
		ttl = cache.NoExpiration
	}
	if metrics == nil {
		metrics = service.NoopMetrics{}
	}
	r := &AttemptRegistry{
		items:   cache.New(ttl, cleanupInterval),
		logger:  log.WithComponent("AttemptRegistry"),
		metrics: metrics,
		locks:   make(map[string]*tokenLock),
	}
	r.items.OnEvicted(r.onEvicted)
	return r
}

// Lock serialises operations on one token.
func (r *AttemptRegistry) Lock(token string) func() {
	r.locksMu.Lock()
	l, ok := r.locks[token]
	if !ok {
		l = &tokenLock{}
		r.locks[token] = l
	}
	l.refs++
	r.locksMu.Unlock()

	l.mu.Lock()

	var once sync.Once
	return func() {
		once.Do(func() {
			l.mu.Unlock()
			r.locksMu.Lock()
			l.refs--
			if l.refs == 0 {
				delete(r.locks, token)
			}
			r.locksMu.Unlock()
		})
	}
}

// Get returns the attempt for token or nil.
func (r *AttemptRegistry) Get(token string) *service.AuthAttempt {
	if e := r.entry(token); e != nil {
		return e.attempt
	}
	return nil
}

// Put stores attempt and resets its idle timer. A different attempt already stored under the
// same token is retired first.
func (r *AttemptRegistry) Put(ctx context.Context, attempt *service.AuthAttempt) {
	r.collectExpired()
	if prev := r.entry(attempt.Token); prev != nil && prev.attempt != attempt {
		prev.retired.Store(true)
		r.disconnect(ctx, prev.attempt, "replaced")
	}
	r.items.SetDefault(attempt.Token, &entry{attempt: attempt})
	r.metrics.SetAttemptsInFlight(r.items.ItemCount())
}

// Remove retires the attempt for token, if any.
func (r *AttemptRegistry) Remove(ctx context.Context, token string) {
	r.collectExpired()
	e := r.entry(token)
	if e == nil {
		return
	}
	e.retired.Store(true)
	r.items.Delete(token)
	r.disconnect(ctx, e.attempt, "removed")
	r.metrics.SetAttemptsInFlight(r.items.ItemCount())
}

// Len returns the number of attempts held, including expired ones not yet collected.
func (r *AttemptRegistry) Len() int {
	return r.items.ItemCount()
}

// Close retires every attempt. Used at shutdown.
func (r *AttemptRegistry) Close(ctx context.Context) {
	for token := range r.items.Items() {
		unlock := r.Lock(token)
		r.Remove(ctx, token)
		unlock()
	}
}

// collectExpired evicts attempts past their TTL that the sweep has not reached yet. go-cache hides
// them from Get and fires no eviction when a key is overwritten, so without this a new attempt
// would replace an expired one that still holds a connection.
func (r *AttemptRegistry) collectExpired() {
	r.items.DeleteExpired()
}

func (r *AttemptRegistry) entry(token string) *entry {
	v, ok := r.items.Get(token)
	if !ok {
		return nil
	}
	return v.(*entry)
}

// onEvicted runs for both Delete and TTL expiry. Only expiry still needs a disconnect, and it must
// wait for any handler currently working on the token.
func (r *AttemptRegistry) onEvicted(token string, v interface{}) {
	e, ok := v.(*entry)
	if !ok || e.retired.Load() {
		return
	}
	go func() {
		unlock := r.Lock(token)
		defer unlock()
		// the handler that held the lock may have stored the same attempt again
		if cur := r.entry(token); cur != nil && cur.attempt == e.attempt {
			return
		}
		if !e.retired.CompareAndSwap(false, true) {
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), retireTimeout)
		defer cancel()
		r.disconnect(ctx, e.attempt, "expired")
		r.metrics.SetAttemptsInFlight(r.items.ItemCount())
	}()
}

func (r *AttemptRegistry) disconnect(ctx context.Context, a *service.AuthAttempt, reason string) {
	fields := logger.Merge(logger.String("reason", reason), logger.Duration("age", time.Since(a.StartedAt)))
	if a.Step != nil {
		fields["step"] = a.Step.Step()
	}
	if a.Transport == nil || !a.Transport.IsConnected() {
		r.logger.Debug(ctx, "Login attempt retired", logger.Merge(fields, logger.Bool("connected", false)))
		return
	}
	if err := a.Transport.Disconnect(ctx); err != nil {
		r.logger.Warn(ctx, "Failed to disconnect retired login attempt", logger.Merge(fields, logger.Error(err)))
		return
	}
	r.logger.Debug(ctx, "Login attempt retired", fields)
}

var _ service.AttemptRegistry = (*AttemptRegistry)(nil)
