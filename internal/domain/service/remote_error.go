package service

import (
	"errors"
	"fmt"
)

// ErrorKind is the closed set of failure classes a Transport reports.
// Callers branch on the kind, never on message text.
// ErrorKind 是 Transport 返回的有限错误类别集合。
type ErrorKind int

const (
	// ErrKindOther is any failure not covered below.
	ErrKindOther ErrorKind = iota
	// ErrKindTwoFactorRequired is the non-fatal outcome of SignIn on a password-protected account.
	ErrKindTwoFactorRequired
	// ErrKindPeerInvalid means the group id does not resolve to a peer the account knows.
	ErrKindPeerInvalid
	// ErrKindAccessDenied means the group is private, or admin rights are required.
	ErrKindAccessDenied
	// ErrKindAlreadyLeft means the account is no longer a participant.
	ErrKindAlreadyLeft
	// ErrKindConnectFailed means the transport never reached a connected state.
	ErrKindConnectFailed
)

// String returns the name of the kind.
func (k ErrorKind) String() string {
	switch k {
	case ErrKindTwoFactorRequired:
		return "two_factor_required"
	case ErrKindPeerInvalid:
		return "peer_invalid"
	case ErrKindAccessDenied:
		return "access_denied"
	case ErrKindAlreadyLeft:
		return "already_left"
	case ErrKindConnectFailed:
		return "connect_failed"
	default:
		return "other"
	}
}

// RemoteError is the error type returned by Transport implementations.
type RemoteError struct {
	Kind ErrorKind
	// Detail is the remote error text, e.g. "CHANNEL_PRIVATE".
	Detail string
	Cause  error
}

// NewRemoteError creates a RemoteError.
func NewRemoteError(kind ErrorKind, detail string, cause error) *RemoteError {
	return &RemoteError{Kind: kind, Detail: detail, Cause: cause}
}

func (e *RemoteError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s: %s", e.Kind, e.Detail)
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Kind, e.Cause)
	}
	return e.Kind.String()
}

func (e *RemoteError) Unwrap() error {
	return e.Cause
}

// Message returns the most specific human-readable text available.
func (e *RemoteError) Message() string {
	if e.Detail != "" {
		return e.Detail
	}
	if e.Cause != nil {
		return e.Cause.Error()
	}
	return e.Kind.String()
}

// KindOf extracts the kind of err; errors that are not RemoteErrors are ErrKindOther.
func KindOf(err error) ErrorKind {
	var re *RemoteError
	if errors.As(err, &re) {
		return re.Kind
	}
	return ErrKindOther
}

// IsKind reports whether err is a RemoteError of kind k.
func IsKind(err error, k ErrorKind) bool {
	return err != nil && KindOf(err) == k
}

// ErrorDetail returns the remote detail of err, or err.Error() for foreign errors.
func ErrorDetail(err error) string {
	var re *RemoteError
	if errors.As(err, &re) {
		return re.Message()
	}
	return err.Error()
}
