package telegram

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/gotd/td/session"
	"github.com/gotd/td/telegram/auth"
	"github.com/gotd/td/tg"
	"github.com/gotd/td/tgerr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/tgroups/internal/domain/models"
	"github.com/turtacn/tgroups/internal/domain/service"
	"github.com/turtacn/tgroups/pkg/logger"
)

func TestStringSession_RoundTrip(t *testing.T) {
	ctx := context.Background()
	empty, err := newStringSession("")
	require.NoError(t, err)
	_, err = empty.LoadSession(ctx)
	assert.ErrorIs(t, err, session.ErrNotFound)
	_, err = empty.Encode()
	assert.Error(t, err)

	require.NoError(t, empty.StoreSession(ctx, []byte(`{"Version":1}`)))
	encoded, err := empty.Encode()
	require.NoError(t, err)

	resumed, err := newStringSession(encoded)
	require.NoError(t, err)
	data, err := resumed.LoadSession(ctx)
	require.NoError(t, err)
	assert.Equal(t, `{"Version":1}`, string(data))

	_, err = newStringSession("%%% not base64")
	assert.Error(t, err)
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantKind   service.ErrorKind
		wantDetail string
	}{
		{"two factor", fmt.Errorf("sign in: %w", auth.ErrPasswordAuthNeeded), service.ErrKindTwoFactorRequired, "SESSION_PASSWORD_NEEDED"},
		{"peer invalid", tgerr.New(400, "PEER_ID_INVALID"), service.ErrKindPeerInvalid, "PEER_ID_INVALID"},
		{"chat id invalid", tgerr.New(400, "CHAT_ID_INVALID"), service.ErrKindPeerInvalid, "CHAT_ID_INVALID"},
		{"channel private", tgerr.New(406, "CHANNEL_PRIVATE"), service.ErrKindAccessDenied, "CHANNEL_PRIVATE"},
		{"admin required", tgerr.New(400, "CHAT_ADMIN_REQUIRED"), service.ErrKindAccessDenied, "CHAT_ADMIN_REQUIRED"},
		{"not participant", tgerr.New(400, "USER_NOT_PARTICIPANT"), service.ErrKindAlreadyLeft, "USER_NOT_PARTICIPANT"},
		{"other rpc", tgerr.New(400, "PHONE_CODE_INVALID"), service.ErrKindOther, "PHONE_CODE_INVALID"},
		{"plain", errors.New("boom"), service.ErrKindOther, "boom"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := classify(tt.err)
			assert.Equal(t, tt.wantKind, service.KindOf(got))
			assert.Equal(t, tt.wantDetail, service.ErrorDetail(got))
		})
	}
	assert.NoError(t, classify(nil))

	already := service.NewRemoteError(service.ErrKindAccessDenied, "x", nil)
	assert.Same(t, already, classify(already))
}

type fakeDialogs struct {
	pages []tg.MessagesDialogsClass
	reqs  []*tg.MessagesGetDialogsRequest
}

func (f *fakeDialogs) MessagesGetDialogs(_ context.Context, req *tg.MessagesGetDialogsRequest) (tg.MessagesDialogsClass, error) {
	cp := *req
	f.reqs = append(f.reqs, &cp)
	if len(f.pages) == 0 {
		return &tg.MessagesDialogs{}, nil
	}
	p := f.pages[0]
	f.pages = f.pages[1:]
	return p, nil
}

func TestFetchFolder_PagesAndShapes(t *testing.T) {
	api := &fakeDialogs{pages: []tg.MessagesDialogsClass{
		&tg.MessagesDialogsSlice{
			Count: 4,
			Dialogs: []tg.DialogClass{
				&tg.Dialog{Peer: &tg.PeerChannel{ChannelID: 10}, TopMessage: 5, UnreadCount: 3},
				&tg.Dialog{Peer: &tg.PeerUser{UserID: 7}, TopMessage: 4},
			},
			Messages: []tg.MessageClass{&tg.Message{ID: 4, Date: 1000}},
			Chats:    []tg.ChatClass{&tg.Channel{ID: 10, AccessHash: 99, Title: "News", Broadcast: true}},
			Users:    []tg.UserClass{&tg.User{ID: 7, AccessHash: 77}},
		},
		&tg.MessagesDialogsSlice{
			Count: 4,
			Dialogs: []tg.DialogClass{
				&tg.Dialog{Peer: &tg.PeerChat{ChatID: 20}, TopMessage: 2},
			},
			Chats: []tg.ChatClass{&tg.Chat{ID: 20, Title: "Family"}},
		},
	}}

	cache := newPeerCache()
	seen := make(map[string]struct{})
	out, err := fetchFolder(context.Background(), api, cache, 0, 2, seen, nil)
	require.NoError(t, err)
	require.Len(t, out, 3)

	assert.Equal(t, models.Conversation{ID: "-10010", Title: "News", Kind: models.ConversationBroadcast, UnreadCount: 3}, out[0])
	assert.Equal(t, models.ConversationUser, out[1].Kind)
	assert.Equal(t, models.Conversation{ID: "-20", Title: "Family", Kind: models.ConversationChat}, out[2])

	require.Len(t, api.reqs, 2)
	second := api.reqs[1]
	assert.Equal(t, 4, second.OffsetID)
	assert.Equal(t, 1000, second.OffsetDate)
	assert.Equal(t, &tg.InputPeerUser{UserID: 7, AccessHash: 77}, second.OffsetPeer)

	hash, ok := cache.channel(10)
	assert.True(t, ok)
	assert.Equal(t, int64(99), hash)
}

func TestFetchFolder_ArchivedFolder(t *testing.T) {
	api := &fakeDialogs{pages: []tg.MessagesDialogsClass{
		&tg.MessagesDialogs{
			Dialogs: []tg.DialogClass{&tg.Dialog{Peer: &tg.PeerChannel{ChannelID: 11}}},
			Chats:   []tg.ChatClass{&tg.Channel{ID: 11, Title: "Old", Megagroup: true}},
		},
	}}
	out, err := fetchFolder(context.Background(), api, newPeerCache(), 1, 100, map[string]struct{}{}, nil)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.True(t, out[0].Archived)
	assert.Equal(t, models.ConversationMegagroup, out[0].Kind)

	folder, ok := api.reqs[0].GetFolderID()
	assert.True(t, ok)
	assert.Equal(t, 1, folder)
}

func TestFactory_RejectsMalformedSession(t *testing.T) {
	f := NewFactory(Options{}, nil, logger.NewNoopLogger())
	_, err := f.NewTransport(models.AccountCredentials{AccountID: 1, AccountSecret: "x"}, "***")
	assert.Error(t, err)

	tr, err := f.NewTransport(models.AccountCredentials{AccountID: 1, AccountSecret: "x"}, "")
	require.NoError(t, err)
	assert.False(t, tr.IsConnected())
	assert.NoError(t, tr.Disconnect(context.Background()))
	_, err = tr.Dialogs(context.Background())
	assert.True(t, service.IsKind(err, service.ErrKindConnectFailed))
}
