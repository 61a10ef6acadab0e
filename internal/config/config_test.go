package config

import (
	"os"
	"path/filepath"
	"testing"

	"tgsentry/internal/constants"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

const validConfig = `{
	"telegram": {
		"bot_token": "123:abc",
		"masterChatId": 777
	},
	"database": {"path": "/var/lib/tgsentry/messages.db"},
	"media": {"download_dir": "/var/lib/tgsentry/media"}
}`

func TestLoadConfigValid(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, validConfig))
	require.NoError(t, err)

	assert.Equal(t, "123:abc", cfg.Telegram.BotToken)
	assert.Equal(t, int64(777), cfg.Telegram.MasterChatID)
	assert.Equal(t, "/var/lib/tgsentry/messages.db", cfg.Database.Path)
}

func TestLoadConfigAppliesDefaults(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, validConfig))
	require.NoError(t, err)

	assert.Equal(t, constants.DefaultPollTimeoutSec, cfg.Telegram.PollTimeoutSec)
	assert.Equal(t, constants.DefaultHTTPTimeoutSec, cfg.Telegram.HTTPTimeoutSec)
	assert.Equal(t, constants.DefaultPollBackoffSec, cfg.Telegram.PollBackoffSec)
	assert.Equal(t, constants.DefaultFetchConcurrency, cfg.Media.MaxConcurrency)
	assert.Equal(t, constants.DefaultRetentionDays, cfg.RetentionDays)
	assert.Equal(t, constants.DefaultServerPort, cfg.Server.Port)
	assert.Equal(t, constants.DefaultMaxAttempts, cfg.Retry.MaxAttempts)
}

func TestLoadConfigMissingRequiredFields(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr error
	}{
		{
			"missing bot token",
			`{"telegram": {"masterChatId": 777}, "database": {"path": "/db"}, "media": {"download_dir": "/media"}}`,
			ErrMissingBotToken,
		},
		{
			"missing master chat",
			`{"telegram": {"bot_token": "t"}, "database": {"path": "/db"}, "media": {"download_dir": "/media"}}`,
			ErrMissingMasterChatID,
		},
		{
			"missing database path",
			`{"telegram": {"bot_token": "t", "masterChatId": 777}, "media": {"download_dir": "/media"}}`,
			ErrMissingDBPath,
		},
		{
			"missing download dir",
			`{"telegram": {"bot_token": "t", "masterChatId": 777}, "database": {"path": "/db"}}`,
			ErrMissingDownloadDir,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadConfig(writeConfig(t, tt.content))
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestLoadConfigAwayRequiresOwner(t *testing.T) {
	content := `{
		"telegram": {"bot_token": "t", "masterChatId": 777},
		"database": {"path": "/db"},
		"media": {"download_dir": "/media"},
		"away": {"enabled": true}
	}`
	_, err := LoadConfig(writeConfig(t, content))
	assert.ErrorContains(t, err, "owner ID")
}

func TestLoadConfigEnvironmentOverrides(t *testing.T) {
	t.Setenv("TGSENTRY_BOT_TOKEN", "env-token")
	t.Setenv("TGSENTRY_MASTER_CHAT_ID", "999")
	t.Setenv("TGSENTRY_DB_PATH", "/env/db.sqlite")
	t.Setenv("TGSENTRY_DOWNLOAD_DIR", "/env/media")
	t.Setenv("TGSENTRY_OWNER_ID", "1001")

	cfg, err := LoadConfig(writeConfig(t, validConfig))
	require.NoError(t, err)

	assert.Equal(t, "env-token", cfg.Telegram.BotToken)
	assert.Equal(t, int64(999), cfg.Telegram.MasterChatID)
	assert.Equal(t, "/env/db.sqlite", cfg.Database.Path)
	assert.Equal(t, "/env/media", cfg.Media.DownloadDir)
	assert.Equal(t, int64(1001), cfg.Telegram.OwnerID)
}

func TestLoadConfigInvalidJSON(t *testing.T) {
	_, err := LoadConfig(writeConfig(t, "{not json"))
	assert.Error(t, err)
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func TestLoadConfigRejectsTraversalPath(t *testing.T) {
	_, err := LoadConfig("../../etc/passwd")
	assert.ErrorContains(t, err, "invalid config path")
}
