// Package telegram implements the remote session transport on the MTProto client gotd/td.
package telegram

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gotd/td/telegram"
	"github.com/gotd/td/telegram/dcs"
	"github.com/gotd/td/tg"
	"go.uber.org/zap"

	"github.com/turtacn/tgroups/internal/domain/models"
	"github.com/turtacn/tgroups/internal/domain/service"
	"github.com/turtacn/tgroups/pkg/constants"
	"github.com/turtacn/tgroups/pkg/logger"
)

// Options tunes every transport built by a Factory.
type Options struct {
	ConnectionRetries int
	DialTimeout       time.Duration
	DialogPageSize    int
	TestServer        bool
	DeviceModel       string
}

func (o *Options) setDefaults() {
	if o.ConnectionRetries <= 0 {
		o.ConnectionRetries = constants.DefaultConnectionRetries
	}
	if o.DialTimeout <= 0 {
		o.DialTimeout = constants.DefaultDialTimeout
	}
	if o.DialogPageSize <= 0 {
		o.DialogPageSize = constants.DefaultDialogPageSize
	}
}

// Factory builds gotd-backed transports.
type Factory struct {
	opts   Options
	zap    *zap.Logger
	logger logger.Logger
}

// NewFactory creates a factory. zapLog receives the MTProto client's own logs.
func NewFactory(opts Options, zapLog *zap.Logger, log logger.Logger) *Factory {
	opts.setDefaults()
	if zapLog == nil {
		zapLog = zap.NewNop()
	}
	return &Factory{opts: opts, zap: zapLog, logger: log.WithComponent("TelegramTransport")}
}

// NewTransport implements service.TransportFactory.
func (f *Factory) NewTransport(creds models.AccountCredentials, sessionString string) (service.Transport, error) {
	storage, err := newStringSession(sessionString)
	if err != nil {
		return nil, err
	}

	tgOpts := telegram.Options{
		SessionStorage: storage,
		Logger:         f.zap,
		MaxRetries:     f.opts.ConnectionRetries,
		DialTimeout:    f.opts.DialTimeout,
		NoUpdates:      true,
	}
	if f.opts.DeviceModel != "" {
		tgOpts.Device = telegram.DeviceConfig{DeviceModel: f.opts.DeviceModel}
	}
	if f.opts.TestServer {
		tgOpts.DC = 2
		tgOpts.DCList = dcs.Test()
	}

	return &Transport{
		creds:   creds,
		client:  telegram.NewClient(creds.AccountID, creds.AccountSecret, tgOpts),
		storage: storage,
		peers:   newPeerCache(),
		opts:    f.opts,
		logger:  f.logger,
	}, nil
}

// Transport is one MTProto connection. The client's Run loop is kept alive in a background
// goroutine between Connect and Disconnect.
type Transport struct {
	creds   models.AccountCredentials
	client  *telegram.Client
	storage *stringSession
	peers   *peerCache
	opts    Options
	logger  logger.Logger

	mu            sync.Mutex
	cancel        context.CancelFunc
	done          chan struct{}
	connected     atomic.Bool
	dialogsLoaded atomic.Bool
}

// Connect implements service.Transport. A failed handshake is retried up to ConnectionRetries times.
func (t *Transport) Connect(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.connected.Load() {
		return nil
	}

	var lastErr error
	for attempt := 1; attempt <= t.opts.ConnectionRetries; attempt++ {
		err := t.start(ctx)
		if err == nil {
			return nil
		}
		lastErr = err
		if ctx.Err() != nil {
			break
		}
		t.logger.Warn(ctx, "Connection attempt failed",
			logger.Int("attempt", attempt),
			logger.Int("max_attempts", t.opts.ConnectionRetries),
			logger.Error(err),
		)
	}
	return service.NewRemoteError(service.ErrKindConnectFailed, "", lastErr)
}

func (t *Transport) start(ctx context.Context) error {
	runCtx, cancel := context.WithCancel(context.Background())
	ready := make(chan struct{})
	done := make(chan struct{})
	var runErr error

	go func() {
		defer close(done)
		runErr = t.client.Run(runCtx, func(ctx context.Context) error {
			t.connected.Store(true)
			close(ready)
			<-ctx.Done()
			return nil
		})
		t.connected.Store(false)
	}()

	timer := time.NewTimer(2 * t.opts.DialTimeout)
	defer timer.Stop()

	select {
	case <-ready:
		t.cancel, t.done = cancel, done
		return nil
	case <-done:
		cancel()
		if runErr == nil {
			runErr = errors.New("connection closed during setup")
		}
		return runErr
	case <-ctx.Done():
		cancel()
		<-done
		return ctx.Err()
	case <-timer.C:
		cancel()
		<-done
		return fmt.Errorf("connect timed out after %s", 2*t.opts.DialTimeout)
	}
}

// Disconnect implements service.Transport.
func (t *Transport) Disconnect(ctx context.Context) error {
	t.mu.Lock()
	cancel, done := t.cancel, t.done
	t.cancel, t.done = nil, nil
	t.mu.Unlock()

	if cancel == nil {
		return nil
	}
	cancel()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// IsConnected implements service.Transport.
func (t *Transport) IsConnected() bool {
	return t.connected.Load()
}

func (t *Transport) api() (*tg.Client, error) {
	if !t.connected.Load() {
		return nil, service.NewRemoteError(service.ErrKindConnectFailed, "not connected", nil)
	}
	return t.client.API(), nil
}

// SendCode implements service.Transport.
func (t *Transport) SendCode(ctx context.Context, phoneNumber string) (string, error) {
	api, err := t.api()
	if err != nil {
		return "", err
	}
	res, err := api.AuthSendCode(ctx, &tg.AuthSendCodeRequest{
		PhoneNumber: phoneNumber,
		APIID:       t.creds.AccountID,
		APIHash:     t.creds.AccountSecret,
		Settings:    tg.CodeSettings{},
	})
	if err != nil {
		return "", classify(err)
	}
	sent, ok := res.(*tg.AuthSentCode)
	if !ok {
		return "", service.NewRemoteError(service.ErrKindOther, fmt.Sprintf("unexpected send code response %T", res), nil)
	}
	return sent.PhoneCodeHash, nil
}

// SignIn implements service.Transport.
func (t *Transport) SignIn(ctx context.Context, phoneNumber, codeRequestID, code string) error {
	if _, err := t.api(); err != nil {
		return err
	}
	_, err := t.client.Auth().SignIn(ctx, phoneNumber, code, codeRequestID)
	return classify(err)
}

// CheckPassword implements service.Transport.
func (t *Transport) CheckPassword(ctx context.Context, password string) error {
	if _, err := t.api(); err != nil {
		return err
	}
	_, err := t.client.Auth().Password(ctx, password)
	return classify(err)
}

// Dialogs implements service.Transport. The main list comes first, then the archive folder.
func (t *Transport) Dialogs(ctx context.Context) ([]models.Conversation, error) {
	api, err := t.api()
	if err != nil {
		return nil, err
	}
	seen := make(map[string]struct{})
	out, err := fetchFolder(ctx, api, t.peers, 0, t.opts.DialogPageSize, seen, nil)
	if err != nil {
		return nil, err
	}
	out, err = fetchFolder(ctx, api, t.peers, constants.ArchiveFolderID, t.opts.DialogPageSize, seen, out)
	if err != nil {
		return nil, err
	}
	t.dialogsLoaded.Store(true)
	return out, nil
}

// LeaveChannel implements service.Transport. The channel's access hash is taken from the
// conversation list, which is loaded once per transport on the first miss.
func (t *Transport) LeaveChannel(ctx context.Context, channelID int64) error {
	api, err := t.api()
	if err != nil {
		return err
	}
	hash, ok := t.peers.channel(channelID)
	if !ok && !t.dialogsLoaded.Load() {
		if _, err := t.Dialogs(ctx); err != nil {
			return err
		}
		hash, ok = t.peers.channel(channelID)
	}
	if !ok {
		return service.NewRemoteError(service.ErrKindPeerInvalid, "CHANNEL_INVALID", nil)
	}
	_, err = api.ChannelsLeaveChannel(ctx, &tg.InputChannel{ChannelID: channelID, AccessHash: hash})
	return classify(err)
}

// RemoveSelfFromChat implements service.Transport.
func (t *Transport) RemoveSelfFromChat(ctx context.Context, chatID int64) error {
	api, err := t.api()
	if err != nil {
		return err
	}
	_, err = api.MessagesDeleteChatUser(ctx, &tg.MessagesDeleteChatUserRequest{
		ChatID: chatID,
		UserID: &tg.InputUserSelf{},
	})
	return classify(err)
}

// ExportSession implements service.Transport.
func (t *Transport) ExportSession(_ context.Context) (string, error) {
	return t.storage.Encode()
}

var (
	_ service.Transport        = (*Transport)(nil)
	_ service.TransportFactory = (*Factory)(nil)
)
