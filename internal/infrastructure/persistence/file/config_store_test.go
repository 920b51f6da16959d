package file

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/tgroups/internal/domain/models"
	"github.com/turtacn/tgroups/pkg/logger"
)

func TestConfigStore_LoadMissingFile(t *testing.T) {
	s, err := NewConfigStore(filepath.Join(t.TempDir(), "config.json"), false, logger.NewNoopLogger())
	require.NoError(t, err)

	cfg, err := s.Load(context.Background())
	require.NoError(t, err)
	assert.Nil(t, cfg.AccountID)
	assert.Nil(t, cfg.AccountSecret)
	assert.Empty(t, cfg.Session)
}

func TestConfigStore_LoadCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))
	s, err := NewConfigStore(path, false, logger.NewNoopLogger())
	require.NoError(t, err)

	cfg, err := s.Load(context.Background())
	require.NoError(t, err)
	assert.False(t, cfg.HasSession())
}

func TestConfigStore_SaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	s, err := NewConfigStore(path, false, logger.NewNoopLogger())
	require.NoError(t, err)
	ctx := context.Background()

	cfg := models.NewEmptyAppConfig()
	cfg.SetCredentials(models.AccountCredentials{AccountID: 12345, AccountSecret: "abc"})
	cfg.Session = "1BQANOTEuMTA4"
	require.NoError(t, s.Save(ctx, cfg))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.JSONEq(t, `{"apiId":12345,"apiHash":"abc","sessionString":"1BQANOTEuMTA4"}`, string(raw))

	// a fresh store reads what the first one wrote
	s2, err := NewConfigStore(path, false, logger.NewNoopLogger())
	require.NoError(t, err)
	got, err := s2.Load(ctx)
	require.NoError(t, err)
	creds, ok := got.Credentials()
	require.True(t, ok)
	assert.Equal(t, 12345, creds.AccountID)
	assert.Equal(t, "1BQANOTEuMTA4", got.Session)
}

func TestConfigStore_LoadReturnsCopy(t *testing.T) {
	s, err := NewConfigStore(filepath.Join(t.TempDir(), "config.json"), false, logger.NewNoopLogger())
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, &models.AppConfig{Session: "a"}))
	cfg, err := s.Load(ctx)
	require.NoError(t, err)
	cfg.Session = "mutated"

	again, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "a", again.Session)
}

func TestConfigStore_SaveFailure(t *testing.T) {
	s, err := NewConfigStore(filepath.Join(t.TempDir(), "missing-dir", "config.json"), false, logger.NewNoopLogger())
	require.NoError(t, err)
	assert.Error(t, s.Save(context.Background(), models.NewEmptyAppConfig()))
}

func TestConfigStore_WatchPicksUpExternalEdit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	s, err := NewConfigStore(path, true, logger.NewNoopLogger())
	require.NoError(t, err)
	defer s.Close()
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, &models.AppConfig{Session: "before"}))
	require.NoError(t, os.WriteFile(path, []byte(`{"sessionString":"after"}`), 0o600))

	assert.Eventually(t, func() bool {
		cfg, err := s.Load(ctx)
		return err == nil && cfg.Session == "after"
	}, 2*time.Second, 20*time.Millisecond)
}
