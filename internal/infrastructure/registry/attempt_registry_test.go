package registry

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/turtacn/tgroups/internal/domain/models"
	"github.com/turtacn/tgroups/internal/domain/service"
	"github.com/turtacn/tgroups/internal/domain/service/mocks"
	"github.com/turtacn/tgroups/pkg/logger"
)

func newAttempt(token string, tr service.Transport) *service.AuthAttempt {
	return &service.AuthAttempt{
		Token:     token,
		Transport: tr,
		Step:      models.AwaitingCode{PhoneNumber: "+15550001", CodeRequestID: "h1"},
		StartedAt: time.Now(),
	}
}

func TestAttemptRegistry_PutGetRemove(t *testing.T) {
	r := NewAttemptRegistry(time.Minute, time.Minute, logger.NewNoopLogger(), nil)
	ctx := context.Background()

	tr := new(mocks.MockTransport)
	tr.On("IsConnected").Return(true)
	tr.On("Disconnect", mock.Anything).Return(nil).Once()

	assert.Nil(t, r.Get("tok"))
	a := newAttempt("tok", tr)
	r.Put(ctx, a)
	assert.Same(t, a, r.Get("tok"))
	assert.Equal(t, 1, r.Len())

	r.Remove(ctx, "tok")
	assert.Nil(t, r.Get("tok"))
	assert.Equal(t, 0, r.Len())
	tr.AssertExpectations(t)

	// removing an absent token is a no-op
	r.Remove(ctx, "tok")
}

func TestAttemptRegistry_PutReplacesAndRetiresPrevious(t *testing.T) {
	r := NewAttemptRegistry(time.Minute, time.Minute, logger.NewNoopLogger(), nil)
	ctx := context.Background()

	old := new(mocks.MockTransport)
	old.On("IsConnected").Return(true)
	old.On("Disconnect", mock.Anything).Return(nil).Once()
	fresh := new(mocks.MockTransport)

	r.Put(ctx, newAttempt("tok", old))
	next := newAttempt("tok", fresh)
	r.Put(ctx, next)

	assert.Same(t, next, r.Get("tok"))
	assert.Equal(t, 1, r.Len())
	old.AssertExpectations(t)
	fresh.AssertNotCalled(t, "Disconnect", mock.Anything)
}

func TestAttemptRegistry_PutSameAttemptKeepsTransport(t *testing.T) {
	r := NewAttemptRegistry(time.Minute, time.Minute, logger.NewNoopLogger(), nil)
	ctx := context.Background()

	tr := new(mocks.MockTransport)
	a := newAttempt("tok", tr)
	r.Put(ctx, a)
	a.Step = models.AwaitingPassword{PhoneNumber: "+15550001", CodeRequestID: "h1"}
	r.Put(ctx, a)

	assert.Equal(t, "password", string(r.Get("tok").Step.Step()))
	tr.AssertNotCalled(t, "Disconnect", mock.Anything)
}

func TestAttemptRegistry_RemoveSwallowsDisconnectError(t *testing.T) {
	r := NewAttemptRegistry(time.Minute, time.Minute, logger.NewNoopLogger(), nil)
	ctx := context.Background()

	tr := new(mocks.MockTransport)
	tr.On("IsConnected").Return(true)
	tr.On("Disconnect", mock.Anything).Return(errors.New("socket closed"))

	r.Put(ctx, newAttempt("tok", tr))
	r.Remove(ctx, "tok")
	assert.Nil(t, r.Get("tok"))
}

func TestAttemptRegistry_RemoveSkipsDisconnectedTransport(t *testing.T) {
	r := NewAttemptRegistry(time.Minute, time.Minute, logger.NewNoopLogger(), nil)
	ctx := context.Background()

	tr := new(mocks.MockTransport)
	tr.On("IsConnected").Return(false)

	r.Put(ctx, newAttempt("tok", tr))
	r.Remove(ctx, "tok")
	tr.AssertNotCalled(t, "Disconnect", mock.Anything)
}

func TestAttemptRegistry_ExpiryDisconnects(t *testing.T) {
	r := NewAttemptRegistry(20*time.Millisecond, 10*time.Millisecond, logger.NewNoopLogger(), nil)

	done := make(chan struct{})
	tr := new(mocks.MockTransport)
	tr.On("IsConnected").Return(true)
	tr.On("Disconnect", mock.Anything).Return(nil).Run(func(mock.Arguments) { close(done) }).Once()

	r.Put(context.Background(), newAttempt("tok", tr))

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("expired attempt was not disconnected")
	}
	assert.Nil(t, r.Get("tok"))
}

func TestAttemptRegistry_ExpiredAttemptRetiredBeforeReplace(t *testing.T) {
	// the sweep never runs during the test, so only Put and Remove can find the expired entry
	r := NewAttemptRegistry(20*time.Millisecond, time.Hour, logger.NewNoopLogger(), nil)
	ctx := context.Background()

	done := make(chan struct{})
	old := new(mocks.MockTransport)
	old.On("IsConnected").Return(true)
	old.On("Disconnect", mock.Anything).Return(nil).Run(func(mock.Arguments) { close(done) }).Once()
	fresh := new(mocks.MockTransport)

	r.Put(ctx, newAttempt("tok", old))
	time.Sleep(60 * time.Millisecond)
	assert.Nil(t, r.Get("tok"))

	unlock := r.Lock("tok")
	r.Remove(ctx, "tok")
	next := newAttempt("tok", fresh)
	r.Put(ctx, next)
	unlock()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("expired attempt was overwritten without being disconnected")
	}
	assert.Same(t, next, r.Get("tok"))
	fresh.AssertNotCalled(t, "Disconnect", mock.Anything)
}

func TestAttemptRegistry_PutAfterExpiryRetiresPrevious(t *testing.T) {
	r := NewAttemptRegistry(20*time.Millisecond, time.Hour, logger.NewNoopLogger(), nil)

	done := make(chan struct{})
	old := new(mocks.MockTransport)
	old.On("IsConnected").Return(true)
	old.On("Disconnect", mock.Anything).Return(nil).Run(func(mock.Arguments) { close(done) }).Once()

	r.Put(context.Background(), newAttempt("tok", old))
	time.Sleep(60 * time.Millisecond)
	r.Put(context.Background(), newAttempt("tok", new(mocks.MockTransport)))

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("expired attempt was overwritten without being disconnected")
	}
	assert.Equal(t, 1, r.Len())
}

func TestAttemptRegistry_LockSerialisesToken(t *testing.T) {
	r := NewAttemptRegistry(time.Minute, time.Minute, logger.NewNoopLogger(), nil)

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		active  int
		maxSeen int
	)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := r.Lock("tok")
			defer unlock()
			mu.Lock()
			active++
			if active > maxSeen {
				maxSeen = active
			}
			mu.Unlock()
			time.Sleep(time.Millisecond)
			mu.Lock()
			active--
			mu.Unlock()
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, maxSeen)

	r.locksMu.Lock()
	defer r.locksMu.Unlock()
	require.Empty(t, r.locks)
}

func TestAttemptRegistry_LockIndependentTokens(t *testing.T) {
	r := NewAttemptRegistry(time.Minute, time.Minute, logger.NewNoopLogger(), nil)
	unlockA := r.Lock("a")
	defer unlockA()

	acquired := make(chan struct{})
	go func() {
		unlock := r.Lock("b")
		unlock()
		close(acquired)
	}()
	select {
	case <-acquired:
	case <-time.After(time.Second):
		t.Fatal("lock on one token blocked another token")
	}
}

func TestAttemptRegistry_Metrics(t *testing.T) {
	m := new(mocks.MockMetrics)
	m.On("SetAttemptsInFlight", 1).Once()
	m.On("SetAttemptsInFlight", 0).Once()
	r := NewAttemptRegistry(time.Minute, time.Minute, logger.NewNoopLogger(), m)

	tr := new(mocks.MockTransport)
	tr.On("IsConnected").Return(false)
	r.Put(context.Background(), newAttempt("tok", tr))
	r.Remove(context.Background(), "tok")
	m.AssertExpectations(t)
}
