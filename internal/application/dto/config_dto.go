package dto

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// AccountID accepts the numeric application id as a JSON number or a numeric string.
type AccountID int

// UnmarshalJSON implements json.Unmarshaler.
func (a *AccountID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*a = 0
		return nil
	}
	raw := string(data)
	if strings.HasPrefix(raw, `"`) {
		if err := json.Unmarshal(data, &raw); err != nil {
			return err
		}
		raw = strings.TrimSpace(raw)
		if raw == "" {
			*a = 0
			return nil
		}
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fmt.Errorf("apiId must be an integer")
	}
	*a = AccountID(n)
	return nil
}

// UpdateConfigRequest sets the account credentials.
type UpdateConfigRequest struct {
	APIID   AccountID `json:"apiId" validate:"required" msg:"API ID and API Hash are required."`
	APIHash string    `json:"apiHash" validate:"notblank" msg:"API ID and API Hash are required."`
}

// ConfigResponse answers GET /api/config. Absent values are null.
type ConfigResponse struct {
	Success       bool    `json:"success"`
	APIID         *int    `json:"apiId"`
	APIHash       *string `json:"apiHash"`
	SessionString string  `json:"sessionString"`
}
