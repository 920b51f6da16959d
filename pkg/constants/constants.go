// Package constants defines system-wide constants for the tgroups service.
// This package provides type-safe constant definitions used across all modules.
package constants

import "time"

// ================================================================================
// Auth Step Constants
// ================================================================================

// AuthStep is the step name reported to the UI after each login request.
type AuthStep string

const (
	// AuthStepPhoneCode means a verification code was sent and must be submitted next
	AuthStepPhoneCode AuthStep = "phoneCode"

	// AuthStepPassword means the account has two-factor auth and the password must be submitted next
	AuthStepPassword AuthStep = "password"

	// AuthStepCompleted means a session is established and durably stored
	AuthStepCompleted AuthStep = "completed"
)

// ================================================================================
// Peer Constants
// ================================================================================

const (
	// ChannelIDPrefix is the marked-id prefix of channels and supergroups
	ChannelIDPrefix = "-100"

	// ChatIDPrefix is the marked-id prefix of basic groups
	ChatIDPrefix = "-"

	// ArchiveFolderID is the remote folder holding archived conversations
	ArchiveFolderID = 1
)

// ================================================================================
// Defaults
// ================================================================================

const (
	// DefaultAttemptTTL is how long an untouched login attempt is kept before its connection is dropped
	DefaultAttemptTTL = 15 * time.Minute

	// DefaultAttemptCleanupInterval is how often expired login attempts are swept
	DefaultAttemptCleanupInterval = 1 * time.Minute

	// DefaultConnectionRetries matches the retry count the remote client is started with
	DefaultConnectionRetries = 5

	// DefaultDialTimeout bounds a single connect attempt
	DefaultDialTimeout = 30 * time.Second

	// DefaultDialogPageSize is the number of conversations requested per page
	DefaultDialogPageSize = 100

	// DefaultConfigFile is the path of the JSON record holding credentials and the session
	DefaultConfigFile = "config.json"

	// DefaultStaticDir is the directory the browser UI is served from
	DefaultStaticDir = "public"

	// DefaultRedisConfigKey is the hash key used by the Redis config store
	DefaultRedisConfigKey = "tgroups:config"
)

// ================================================================================
// Context Keys
// ================================================================================

// ContextKey is a typed key for context values
type ContextKey string

const (
	// ContextKeyRequestID stores the per-request correlation id
	ContextKeyRequestID ContextKey = "request_id"

	// ContextKeyTraceID stores the OpenTelemetry trace id
	ContextKeyTraceID ContextKey = "trace_id"

	// ContextKeyLogger stores a request scoped logger
	ContextKeyLogger ContextKey = "logger"

	// ContextKeySessionToken stores the client supplied session token
	ContextKeySessionToken ContextKey = "session_token"
)

// ================================================================================
// HTTP Header Constants
// ================================================================================

const (
	// HeaderRequestID is the request correlation header
	HeaderRequestID = "X-Request-ID"

	// HeaderContentType is the content type header
	HeaderContentType = "Content-Type"
)

// ================================================================================
// Error Code Constants
// ================================================================================

// ErrorCode identifies an error class in API responses
type ErrorCode string

const (
	// ErrCodeInvalidRequest indicates a missing or malformed field
	ErrCodeInvalidRequest ErrorCode = "invalid_request"

	// ErrCodeConfigMissing indicates credentials or a session are not configured
	ErrCodeConfigMissing ErrorCode = "config_missing"

	// ErrCodeAuthNotStarted indicates there is no login in progress for the session token
	ErrCodeAuthNotStarted ErrorCode = "auth_not_started"

	// ErrCodeSessionInvalid indicates the persisted session could not connect
	ErrCodeSessionInvalid ErrorCode = "session_invalid"

	// ErrCodeRemoteFailure indicates the remote service rejected a call
	ErrCodeRemoteFailure ErrorCode = "remote_failure"

	// ErrCodeServerError indicates an unexpected internal failure
	ErrCodeServerError ErrorCode = "server_error"

	// ErrCodeNotFound indicates an unknown route or resource
	ErrCodeNotFound ErrorCode = "not_found"
)

// ================================================================================
// Log Level Constants
// ================================================================================

// LogLevel represents the severity of a log entry
type LogLevel string

const (
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
)

// ================================================================================
// Audit Event Constants
// ================================================================================

// AuditEventType names an entry in the audit trail
type AuditEventType string

const (
	AuditEventCodeSent         AuditEventType = "auth.code_sent"
	AuditEventPasswordNeeded   AuditEventType = "auth.password_required"
	AuditEventLoginCompleted   AuditEventType = "auth.completed"
	AuditEventLoginFailed      AuditEventType = "auth.failed"
	AuditEventLogout           AuditEventType = "auth.logout"
	AuditEventGroupLeft        AuditEventType = "group.left"
	AuditEventGroupLeaveFailed AuditEventType = "group.leave_failed"
)

//Personal.AI order the ending
