package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/turtacn/tgroups/pkg/constants"
)

// AuditLog represents a single audit trail event.
type AuditLog struct {
	EventID    uuid.UUID                `json:"event_id" gorm:"type:uuid;primaryKey"`
	EventType  constants.AuditEventType `json:"event_type" gorm:"index;size:64"`
	Result     string                   `json:"result" gorm:"size:16"` // "success" or "failure"
	ResultCode constants.ErrorCode      `json:"result_code,omitempty" gorm:"size:64"`
	ActorToken string                   `json:"actor_token,omitempty" gorm:"index;size:128"` // session token of the browser that triggered it
	TargetID   string                   `json:"target_id,omitempty" gorm:"size:64"`          // group id for membership events
	TraceID    string                   `json:"trace_id,omitempty" gorm:"size:64"`
	Message    string                   `json:"message"`
	Metadata   json.RawMessage          `json:"metadata,omitempty" gorm:"type:text"`
	Timestamp  time.Time                `json:"timestamp" gorm:"index"`
	Signature  string                   `json:"signature,omitempty" gorm:"size:64"`
}

// TableName pins the table name used by gorm.
func (AuditLog) TableName() string {
	return "audit_logs"
}

// NewAuditLog creates a new audit log entry.
func NewAuditLog(eventType constants.AuditEventType, result string, message string) *AuditLog {
	return &AuditLog{
		EventID:   uuid.New(),
		EventType: eventType,
		Result:    result,
		Message:   message,
		// databases keep microseconds at most
		Timestamp: time.Now().UTC().Truncate(time.Microsecond),
	}
}

// WithActor sets the session token that triggered the event.
func (a *AuditLog) WithActor(token string) *AuditLog {
	a.ActorToken = token
	return a
}

// WithTarget sets the group the event refers to.
func (a *AuditLog) WithTarget(id string) *AuditLog {
	a.TargetID = id
	return a
}

// WithTraceID sets the trace id of the request that produced the event.
func (a *AuditLog) WithTraceID(traceID string) *AuditLog {
	a.TraceID = traceID
	return a
}

// WithMetadata sets JSON metadata for the audit log.
func (a *AuditLog) WithMetadata(data interface{}) *AuditLog {
	jsonData, err := json.Marshal(data)
	if err == nil {
		a.Metadata = jsonData
	}
	return a
}

// WithResultCode sets the specific error code for failed events.
func (a *AuditLog) WithResultCode(code constants.ErrorCode) *AuditLog {
	a.ResultCode = code
	return a
}

//Personal.AI order the ending
