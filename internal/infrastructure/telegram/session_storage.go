package telegram

import (
	"context"
	"encoding/base64"
	"fmt"
	"sync"

	"github.com/gotd/td/session"
)

// stringSession is an in-memory session.Storage whose contents travel as a base64 string.
type stringSession struct {
	mu   sync.RWMutex
	data []byte
}

// newStringSession decodes encoded; an empty string yields an empty storage.
func newStringSession(encoded string) (*stringSession, error) {
	s := &stringSession{}
	if encoded == "" {
		return s, nil
	}
	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("malformed session string: %w", err)
	}
	s.data = data
	return s, nil
}

// LoadSession implements session.Storage.
func (s *stringSession) LoadSession(_ context.Context) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.data) == 0 {
		return nil, session.ErrNotFound
	}
	out := make([]byte, len(s.data))
	copy(out, s.data)
	return out, nil
}

// StoreSession implements session.Storage.
func (s *stringSession) StoreSession(_ context.Context, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = append(s.data[:0:0], data...)
	return nil
}

// Encode returns the storage contents as a session string.
func (s *stringSession) Encode() (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.data) == 0 {
		return "", fmt.Errorf("no session data to export")
	}
	return base64.StdEncoding.EncodeToString(s.data), nil
}

var _ session.Storage = (*stringSession)(nil)
