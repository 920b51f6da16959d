package telegram

import (
	"context"
	"errors"

	"github.com/gotd/td/telegram/auth"
	"github.com/gotd/td/tgerr"

	"github.com/turtacn/tgroups/internal/domain/service"
)

// remote error types grouped by the kind they map to
var (
	peerInvalidTypes  = []string{"PEER_ID_INVALID", "CHANNEL_INVALID", "CHAT_ID_INVALID"}
	accessDeniedTypes = []string{"CHANNEL_PRIVATE", "CHAT_ADMIN_REQUIRED", "CHAT_FORBIDDEN"}
	alreadyLeftTypes  = []string{"USER_NOT_PARTICIPANT"}
)

// classify converts a gotd error into the closed RemoteError set.
func classify(err error) error {
	if err == nil {
		return nil
	}
	var re *service.RemoteError
	if errors.As(err, &re) {
		return err
	}
	if errors.Is(err, auth.ErrPasswordAuthNeeded) {
		return service.NewRemoteError(service.ErrKindTwoFactorRequired, "SESSION_PASSWORD_NEEDED", err)
	}

	detail := ""
	if rpcErr, ok := tgerr.As(err); ok {
		detail = rpcErr.Type
	}

	switch {
	case tgerr.Is(err, peerInvalidTypes...):
		return service.NewRemoteError(service.ErrKindPeerInvalid, detail, err)
	case tgerr.Is(err, accessDeniedTypes...):
		return service.NewRemoteError(service.ErrKindAccessDenied, detail, err)
	case tgerr.Is(err, alreadyLeftTypes...):
		return service.NewRemoteError(service.ErrKindAlreadyLeft, detail, err)
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return service.NewRemoteError(service.ErrKindOther, "request timed out", err)
	default:
		return service.NewRemoteError(service.ErrKindOther, detail, err)
	}
}
