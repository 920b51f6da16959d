package service

import (
	"context"
	stderrors "errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/tgroups/internal/application/dto"
	"github.com/turtacn/tgroups/internal/domain/models"
	domainService "github.com/turtacn/tgroups/internal/domain/service"
	"github.com/turtacn/tgroups/internal/domain/service/mocks"
	"github.com/turtacn/tgroups/internal/infrastructure/registry"
	"github.com/turtacn/tgroups/pkg/constants"
	"github.com/turtacn/tgroups/pkg/errors"
	"github.com/turtacn/tgroups/pkg/logger"
)

func newGroupService(repo *memConfigRepo, factory *mocks.MockTransportFactory, events domainService.EventPublisher) GroupAppService {
	return NewGroupAppService(repo, factory, nil, events, nil, logger.NewNoopLogger())
}

func TestListGroups_RequiresSession(t *testing.T) {
	factory := new(mocks.MockTransportFactory)
	svc := newGroupService(newMemConfigRepo(configured("")), factory, nil)

	_, err := svc.ListGroups(context.Background())
	assert.True(t, errors.HasCode(err, constants.ErrCodeConfigMissing))
	factory.AssertNotCalled(t, "NewTransport", mock.Anything, mock.Anything)
}

func TestListGroups_FiltersInRemoteOrder(t *testing.T) {
	tr := new(mocks.MockTransport)
	tr.On("Connect", mock.Anything).Return(nil).Once()
	tr.On("Dialogs", mock.Anything).Return([]models.Conversation{
		{ID: "-1001", Title: "Mega", Kind: models.ConversationMegagroup, UnreadCount: 4},
		{ID: "42", Title: "Alice", Kind: models.ConversationUser},
		{ID: "-77", Title: "Basic", Kind: models.ConversationChat},
		{ID: "-1002", Title: "News", Kind: models.ConversationBroadcast, Archived: true},
	}, nil).Once()
	tr.On("Disconnect", mock.Anything).Return(nil).Once()
	factory := new(mocks.MockTransportFactory)
	factory.On("NewTransport", models.AccountCredentials{AccountID: 12345, AccountSecret: "0123456789abcdef"}, "sess").Return(tr, nil).Once()

	resp, err := newGroupService(newMemConfigRepo(configured("sess")), factory, nil).ListGroups(context.Background())
	require.NoError(t, err)
	require.Len(t, resp.Groups, 3)

	assert.Equal(t, models.Group{ID: "-1001", Title: "Mega", IsChannel: true, UnreadCount: 4, PeerType: models.PeerTypeChannel}, resp.Groups[0])
	assert.Equal(t, models.Group{ID: "-77", Title: "Basic", PeerType: models.PeerTypeChat}, resp.Groups[1])
	assert.Equal(t, models.Group{ID: "-1002", Title: "News", IsArchived: true, IsChannel: true, PeerType: models.PeerTypeChannel}, resp.Groups[2])
	tr.AssertExpectations(t)
}

func TestListGroups_EmptyIsNotNil(t *testing.T) {
	tr := new(mocks.MockTransport)
	tr.On("Connect", mock.Anything).Return(nil)
	tr.On("Dialogs", mock.Anything).Return([]models.Conversation{}, nil)
	tr.On("Disconnect", mock.Anything).Return(nil)
	factory := new(mocks.MockTransportFactory)
	factory.On("NewTransport", mock.Anything, "sess").Return(tr, nil)

	resp, err := newGroupService(newMemConfigRepo(configured("sess")), factory, nil).ListGroups(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, resp.Groups)
	assert.Empty(t, resp.Groups)
}

func TestListGroups_ConnectFailure(t *testing.T) {
	tr := new(mocks.MockTransport)
	tr.On("Connect", mock.Anything).Return(domainService.NewRemoteError(domainService.ErrKindConnectFailed, "", stderrors.New("auth key unregistered"))).Once()
	tr.On("Disconnect", mock.Anything).Return(nil).Once()
	factory := new(mocks.MockTransportFactory)
	factory.On("NewTransport", mock.Anything, "sess").Return(tr, nil)

	_, err := newGroupService(newMemConfigRepo(configured("sess")), factory, nil).ListGroups(context.Background())
	assert.True(t, errors.HasCode(err, constants.ErrCodeSessionInvalid))
	tr.AssertExpectations(t)
}

func TestListGroups_MalformedSession(t *testing.T) {
	factory := new(mocks.MockTransportFactory)
	factory.On("NewTransport", mock.Anything, "garbage").Return(nil, stderrors.New("illegal base64"))

	_, err := newGroupService(newMemConfigRepo(configured("garbage")), factory, nil).ListGroups(context.Background())
	assert.True(t, errors.HasCode(err, constants.ErrCodeSessionInvalid))
}

func TestListGroups_DialogsFailureDisconnects(t *testing.T) {
	tr := new(mocks.MockTransport)
	tr.On("Connect", mock.Anything).Return(nil)
	tr.On("Dialogs", mock.Anything).Return(nil, domainService.NewRemoteError(domainService.ErrKindOther, "AUTH_KEY_UNREGISTERED", nil))
	tr.On("Disconnect", mock.Anything).Return(nil).Once()
	factory := new(mocks.MockTransportFactory)
	factory.On("NewTransport", mock.Anything, "sess").Return(tr, nil)

	_, err := newGroupService(newMemConfigRepo(configured("sess")), factory, nil).ListGroups(context.Background())
	assert.True(t, errors.HasCode(err, constants.ErrCodeRemoteFailure))
	assert.Contains(t, err.Error(), "AUTH_KEY_UNREGISTERED")
	tr.AssertExpectations(t)
}

func TestLeaveGroups_EmptyListRejectedFirst(t *testing.T) {
	factory := new(mocks.MockTransportFactory)
	// no credentials either: the list is checked before the config
	svc := newGroupService(newMemConfigRepo(nil), factory, nil)

	for _, req := range []*dto.LeaveGroupsRequest{nil, {}, {GroupIDs: []models.LeaveTarget{}}} {
		_, err := svc.LeaveGroups(context.Background(), req)
		assert.True(t, errors.HasCode(err, constants.ErrCodeInvalidRequest))
		assert.Equal(t, "Group list is invalid or empty.", err.Error())
	}
	factory.AssertNotCalled(t, "NewTransport", mock.Anything, mock.Anything)
}

func TestLeaveGroups_RequiresSession(t *testing.T) {
	factory := new(mocks.MockTransportFactory)
	_, err := newGroupService(newMemConfigRepo(configured("")), factory, nil).LeaveGroups(context.Background(),
		&dto.LeaveGroupsRequest{GroupIDs: []models.LeaveTarget{{ID: "-77", PeerType: models.PeerTypeChat}}})
	assert.True(t, errors.HasCode(err, constants.ErrCodeConfigMissing))
	factory.AssertNotCalled(t, "NewTransport", mock.Anything, mock.Anything)
}

func TestLeaveGroups_PerItemIsolation(t *testing.T) {
	tr := new(mocks.MockTransport)
	tr.On("Connect", mock.Anything).Return(nil).Once()
	tr.On("LeaveChannel", mock.Anything, int64(1234)).Return(nil).Once()
	tr.On("RemoveSelfFromChat", mock.Anything, int64(55)).
		Return(domainService.NewRemoteError(domainService.ErrKindPeerInvalid, "CHAT_ID_INVALID", nil)).Once()
	tr.On("LeaveChannel", mock.Anything, int64(9)).
		Return(domainService.NewRemoteError(domainService.ErrKindAccessDenied, "CHANNEL_PRIVATE", nil)).Once()
	tr.On("LeaveChannel", mock.Anything, int64(7)).
		Return(domainService.NewRemoteError(domainService.ErrKindAlreadyLeft, "USER_NOT_PARTICIPANT", nil)).Once()
	tr.On("RemoveSelfFromChat", mock.Anything, int64(66)).
		Return(domainService.NewRemoteError(domainService.ErrKindOther, "FLOOD_WAIT_30", nil)).Once()
	tr.On("LeaveChannel", mock.Anything, int64(3)).
		Return(domainService.NewRemoteError(domainService.ErrKindPeerInvalid, "CHANNEL_INVALID", nil)).Once()
	tr.On("Disconnect", mock.Anything).Return(nil).Once()
	factory := new(mocks.MockTransportFactory)
	factory.On("NewTransport", mock.Anything, "sess").Return(tr, nil).Once()

	events := new(mocks.MockEventPublisher)
	events.On("Publish", mock.Anything, mock.MatchedBy(func(ev []domainService.MembershipEvent) bool {
		return len(ev) == 8 && ev[0].Type == constants.AuditEventGroupLeft && ev[1].Type == constants.AuditEventGroupLeaveFailed
	})).Return(stderrors.New("broker down")).Once()

	req := &dto.LeaveGroupsRequest{GroupIDs: []models.LeaveTarget{
		{ID: "-1001234", PeerType: models.PeerTypeChannel},
		{ID: "-55", PeerType: models.PeerTypeChat},
		{ID: "-1009", PeerType: models.PeerTypeChannel},
		{ID: "-1007", PeerType: models.PeerTypeChannel},
		{ID: "-66", PeerType: models.PeerTypeChat},
		{ID: "-1003", PeerType: models.PeerTypeChannel},
		{ID: "-88", PeerType: "user"},
		{ID: "abc", PeerType: models.PeerTypeChat},
	}}
	resp, err := newGroupService(newMemConfigRepo(configured("sess")), factory, events).LeaveGroups(context.Background(), req)
	require.NoError(t, err)
	assert.True(t, resp.Success)

	want := []models.LeaveResult{
		{ID: "-1001234", Status: models.LeaveStatusSuccess, Message: "Left the channel/supergroup."},
		{ID: "-55", Status: models.LeaveStatusFailure, Message: "Invalid basic group ID -55."},
		{ID: "-1009", Status: models.LeaveStatusFailure, Message: "Could not leave group -1009: it is private, you are not a member, or admin rights are required."},
		{ID: "-1007", Status: models.LeaveStatusFailure, Message: "You are no longer a member of group -1007."},
		{ID: "-66", Status: models.LeaveStatusFailure, Message: "Operation failed: FLOOD_WAIT_30"},
		{ID: "-1003", Status: models.LeaveStatusFailure, Message: "Invalid group ID -1003, or you are not a member."},
		{ID: "-88", Status: models.LeaveStatusFailure, Message: "Unknown group type for ID -88."},
		{ID: "abc", Status: models.LeaveStatusFailure, Message: "Invalid group ID abc."},
	}
	assert.Equal(t, want, resp.Results)
	tr.AssertExpectations(t)
	tr.AssertNumberOfCalls(t, "Disconnect", 1)
	events.AssertExpectations(t)
}

func TestLeaveGroups_DisconnectsOnPanic(t *testing.T) {
	tr := new(mocks.MockTransport)
	tr.On("Connect", mock.Anything).Return(nil)
	tr.On("LeaveChannel", mock.Anything, int64(1)).Run(func(mock.Arguments) { panic("boom") })
	tr.On("Disconnect", mock.Anything).Return(nil).Once()
	factory := new(mocks.MockTransportFactory)
	factory.On("NewTransport", mock.Anything, "sess").Return(tr, nil)

	svc := newGroupService(newMemConfigRepo(configured("sess")), factory, nil)
	assert.Panics(t, func() {
		_, _ = svc.LeaveGroups(context.Background(),
			&dto.LeaveGroupsRequest{GroupIDs: []models.LeaveTarget{{ID: "-1001", PeerType: models.PeerTypeChannel}}})
	})
	tr.AssertNumberOfCalls(t, "Disconnect", 1)
}

func TestLeaveGroups_ConnectFailure(t *testing.T) {
	tr := new(mocks.MockTransport)
	tr.On("Connect", mock.Anything).Return(stderrors.New("timeout"))
	tr.On("Disconnect", mock.Anything).Return(nil).Once()
	factory := new(mocks.MockTransportFactory)
	factory.On("NewTransport", mock.Anything, "sess").Return(tr, nil)

	_, err := newGroupService(newMemConfigRepo(configured("sess")), factory, nil).LeaveGroups(context.Background(),
		&dto.LeaveGroupsRequest{GroupIDs: []models.LeaveTarget{{ID: "-77", PeerType: models.PeerTypeChat}}})
	assert.True(t, errors.HasCode(err, constants.ErrCodeSessionInvalid))
	tr.AssertNotCalled(t, "RemoveSelfFromChat", mock.Anything, mock.Anything)
	tr.AssertExpectations(t)
}

func TestListGroups_ConcurrentCallsShareOneConnection(t *testing.T) {
	release := make(chan struct{})
	tr := new(mocks.MockTransport)
	tr.On("Connect", mock.Anything).Return(nil).Run(func(mock.Arguments) { <-release })
	tr.On("Dialogs", mock.Anything).Return([]models.Conversation{{ID: "-1", Kind: models.ConversationChat}}, nil)
	tr.On("Disconnect", mock.Anything).Return(nil)
	factory := new(mocks.MockTransportFactory)
	factory.On("NewTransport", mock.Anything, "sess").Return(tr, nil)

	svc := newGroupService(newMemConfigRepo(configured("sess")), factory, nil)

	var wg sync.WaitGroup
	started := make(chan struct{}, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			started <- struct{}{}
			resp, err := svc.ListGroups(context.Background())
			assert.NoError(t, err)
			assert.Len(t, resp.Groups, 1)
		}()
	}
	<-started
	<-started
	close(release)
	wg.Wait()

	calls := len(factory.Calls)
	assert.GreaterOrEqual(t, calls, 1)
	assert.LessOrEqual(t, calls, 2)
}

func TestListGroups_CallerLeavingDoesNotFailSharedCall(t *testing.T) {
	connected := make(chan struct{})
	release := make(chan struct{})
	var dialogsCtxErr error
	tr := new(mocks.MockTransport)
	tr.On("Connect", mock.Anything).Return(nil).Run(func(mock.Arguments) {
		close(connected)
		<-release
	}).Once()
	tr.On("Dialogs", mock.Anything).Return([]models.Conversation{{ID: "-1", Kind: models.ConversationChat}}, nil).Run(func(args mock.Arguments) {
		dialogsCtxErr = args.Get(0).(context.Context).Err()
	}).Once()
	tr.On("Disconnect", mock.Anything).Return(nil).Once()
	factory := new(mocks.MockTransportFactory)
	factory.On("NewTransport", mock.Anything, "sess").Return(tr, nil).Once()

	svc := newGroupService(newMemConfigRepo(configured("sess")), factory, nil)

	firstCtx, cancelFirst := context.WithCancel(context.Background())
	firstErr := make(chan error, 1)
	go func() {
		_, err := svc.ListGroups(firstCtx)
		firstErr <- err
	}()
	<-connected

	secondDone := make(chan struct{})
	var (
		secondResp *dto.GroupListResponse
		secondErr  error
	)
	go func() {
		defer close(secondDone)
		secondResp, secondErr = svc.ListGroups(context.Background())
	}()
	// let the second caller join the call in flight
	time.Sleep(20 * time.Millisecond)

	cancelFirst()
	assert.ErrorIs(t, <-firstErr, context.Canceled)

	close(release)
	<-secondDone
	require.NoError(t, secondErr)
	assert.Len(t, secondResp.Groups, 1)
	assert.NoError(t, dialogsCtxErr)
	tr.AssertExpectations(t)
}

func TestParseMarkedID(t *testing.T) {
	tests := []struct {
		in      string
		prefix  string
		want    int64
		wantErr bool
	}{
		{"-1001234", constants.ChannelIDPrefix, 1234, false},
		{"1234", constants.ChannelIDPrefix, 1234, false},
		{"-55", constants.ChatIDPrefix, 55, false},
		{"-", constants.ChatIDPrefix, 0, true},
		{"-5", constants.ChannelIDPrefix, 0, true},
		{"abc", constants.ChatIDPrefix, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseMarkedID(tt.in, tt.prefix)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestListGroups_ResumesSessionWrittenByLogin(t *testing.T) {
	ctx := context.Background()
	repo := newMemConfigRepo(configured(""))
	factory := new(mocks.MockTransportFactory)
	attempts := registry.NewAttemptRegistry(time.Minute, time.Minute, logger.NewNoopLogger(), nil)
	authSvc := NewAuthAppService(repo, factory, attempts, nil, nil, logger.NewNoopLogger())
	groupSvc := newGroupService(repo, factory, nil)

	login := new(mocks.MockTransport)
	login.On("Connect", mock.Anything).Return(nil).Once()
	login.On("SendCode", mock.Anything, testPhone).Return("code-hash-1", nil).Once()
	login.On("SignIn", mock.Anything, testPhone, "code-hash-1", "12345").Return(nil).Once()
	login.On("ExportSession", mock.Anything).Return("exported", nil).Once()
	login.On("IsConnected").Return(true)
	login.On("Disconnect", mock.Anything).Return(nil).Once()
	factory.On("NewTransport", mock.Anything, "").Return(login, nil).Once()

	_, err := authSvc.SubmitPhone(ctx, &dto.SendPhoneRequest{PhoneNumber: testPhone, SessionID: testToken})
	require.NoError(t, err)
	resp, err := authSvc.SubmitCode(ctx, &dto.SendCodeRequest{PhoneCode: "12345", SessionID: testToken})
	require.NoError(t, err)
	require.Equal(t, constants.AuthStepCompleted, resp.Step)

	resumed := new(mocks.MockTransport)
	resumed.On("Connect", mock.Anything).Return(nil).Once()
	resumed.On("Dialogs", mock.Anything).Return([]models.Conversation{
		{ID: "-77", Title: "Basic", Kind: models.ConversationChat},
	}, nil).Once()
	resumed.On("Disconnect", mock.Anything).Return(nil).Once()
	factory.On("NewTransport", models.AccountCredentials{AccountID: 12345, AccountSecret: "0123456789abcdef"}, "exported").Return(resumed, nil).Once()

	groups, err := groupSvc.ListGroups(ctx)
	require.NoError(t, err)
	assert.Len(t, groups.Groups, 1)
	factory.AssertExpectations(t)
	login.AssertExpectations(t)
	resumed.AssertExpectations(t)
}
