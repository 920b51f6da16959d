package audit

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"

	"github.com/turtacn/tgroups/internal/domain/models"
)

// SignAuditLog calculates the HMAC-SHA256 signature of an audit entry.
// The Signature field itself is excluded from the signed payload, and the timestamp is
// signed in UTC so an entry read back from the database verifies.
func SignAuditLog(entry models.AuditLog, secretKey string) (string, error) {
	entry.Signature = ""
	entry.Timestamp = entry.Timestamp.UTC()
	entryBytes, err := json.Marshal(entry)
	if err != nil {
		return "", err
	}

	h := hmac.New(sha256.New, []byte(secretKey))
	h.Write(entryBytes)
	return base64.StdEncoding.EncodeToString(h.Sum(nil)), nil
}

// VerifyAuditLog reports whether entry carries a valid signature for secretKey.
func VerifyAuditLog(entry models.AuditLog, secretKey string) bool {
	want, err := SignAuditLog(entry, secretKey)
	if err != nil {
		return false
	}
	return hmac.Equal([]byte(want), []byte(entry.Signature))
}
