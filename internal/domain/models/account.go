// Package models defines the domain models.
package models

// AccountCredentials identifies the application to the remote service.
// AccountCredentials 是访问远程服务所需的应用凭据。
type AccountCredentials struct {
	// AccountID is the numeric application id issued by the remote service.
	AccountID int
	// AccountSecret is the application hash paired with AccountID.
	AccountSecret string
}

// Valid reports whether both halves of the credentials are present.
func (c AccountCredentials) Valid() bool {
	return c.AccountID != 0 && c.AccountSecret != ""
}

// AppConfig is the single durable record of the service.
// The JSON layout matches the config.json written by earlier releases.
// AppConfig 是服务唯一的持久化记录。
type AppConfig struct {
	AccountID     *int    `json:"apiId"`
	AccountSecret *string `json:"apiHash"`
	// Session is the serialized resumable session; empty when absent.
	Session string `json:"sessionString"`
}

// NewEmptyAppConfig returns the record used when nothing has been stored yet.
func NewEmptyAppConfig() *AppConfig {
	return &AppConfig{}
}

// Credentials returns the configured credentials, or false when either half is missing.
func (c *AppConfig) Credentials() (AccountCredentials, bool) {
	if c == nil || c.AccountID == nil || c.AccountSecret == nil {
		return AccountCredentials{}, false
	}
	creds := AccountCredentials{AccountID: *c.AccountID, AccountSecret: *c.AccountSecret}
	return creds, creds.Valid()
}

// SetCredentials replaces both credential fields.
func (c *AppConfig) SetCredentials(creds AccountCredentials) {
	id := creds.AccountID
	secret := creds.AccountSecret
	c.AccountID = &id
	c.AccountSecret = &secret
}

// HasSession reports whether a persisted session is present.
func (c *AppConfig) HasSession() bool {
	return c != nil && c.Session != ""
}

// Clone returns a deep copy so callers can mutate without touching a cached snapshot.
func (c *AppConfig) Clone() *AppConfig {
	if c == nil {
		return NewEmptyAppConfig()
	}
	out := &AppConfig{Session: c.Session}
	if c.AccountID != nil {
		id := *c.AccountID
		out.AccountID = &id
	}
	if c.AccountSecret != nil {
		secret := *c.AccountSecret
		out.AccountSecret = &secret
	}
	return out
}
