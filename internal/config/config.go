package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"tgsentry/internal/constants"
	"tgsentry/internal/models"
	"tgsentry/internal/security"
)

var (
	ErrMissingBotToken     = models.ConfigError{Message: "missing Telegram bot token"}
	ErrMissingMasterChatID = models.ConfigError{Message: "missing master chat ID"}
	ErrMissingDBPath       = models.ConfigError{Message: "missing database path"}
	ErrMissingDownloadDir  = models.ConfigError{Message: "missing download directory"}
)

func LoadConfig(path string) (*models.Config, error) {
	if err := security.ValidateFilePath(path); err != nil {
		return nil, fmt.Errorf("invalid config path: %w", err)
	}

	file, err := os.ReadFile(path) // #nosec G304 - path validated above
	if err != nil {
		return nil, err
	}

	var config models.Config
	if err := json.Unmarshal(file, &config); err != nil {
		return nil, err
	}

	applyEnvironmentOverrides(&config)

	if err := validate(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

func validate(c *models.Config) error {
	if c.Telegram.BotToken == "" {
		return ErrMissingBotToken
	}
	if c.Telegram.MasterChatID == 0 {
		return ErrMissingMasterChatID
	}
	if c.Database.Path == "" {
		return ErrMissingDBPath
	}
	if c.Media.DownloadDir == "" {
		return ErrMissingDownloadDir
	}
	if c.Away.Enabled && c.Telegram.OwnerID == 0 {
		return models.ConfigError{Message: "away responder requires an owner ID"}
	}

	if c.Telegram.PollTimeoutSec <= 0 {
		c.Telegram.PollTimeoutSec = constants.DefaultPollTimeoutSec
	}
	if c.Telegram.HTTPTimeoutSec <= 0 {
		c.Telegram.HTTPTimeoutSec = constants.DefaultHTTPTimeoutSec
	}
	if c.Telegram.PollBackoffSec <= 0 {
		c.Telegram.PollBackoffSec = constants.DefaultPollBackoffSec
	}
	if c.Media.MaxConcurrency <= 0 {
		c.Media.MaxConcurrency = constants.DefaultFetchConcurrency
	}
	if c.Retry.InitialBackoffMs <= 0 {
		c.Retry.InitialBackoffMs = constants.DefaultRetryBackoffMs
	}
	if c.Retry.MaxBackoffMs <= 0 {
		c.Retry.MaxBackoffMs = constants.DefaultMaxBackoffMs
	}
	if c.Retry.MaxAttempts <= 0 {
		c.Retry.MaxAttempts = constants.DefaultMaxAttempts
	}
	if c.RetentionDays <= 0 {
		c.RetentionDays = constants.DefaultRetentionDays
	}
	if c.Server.Port <= 0 {
		c.Server.Port = constants.DefaultServerPort
	}
	if c.Server.CleanupIntervalHours <= 0 {
		c.Server.CleanupIntervalHours = constants.CleanupSchedulerIntervalHours
	}
	return nil
}

func applyEnvironmentOverrides(c *models.Config) {
	// The token is a credential; prefer the environment over the file.
	if token := os.Getenv("TGSENTRY_BOT_TOKEN"); token != "" {
		c.Telegram.BotToken = token
	}
	if baseURL := os.Getenv("TGSENTRY_API_BASE_URL"); baseURL != "" {
		c.Telegram.APIBaseURL = baseURL
	}
	if path := os.Getenv("TGSENTRY_DB_PATH"); path != "" {
		c.Database.Path = path
	}
	if dir := os.Getenv("TGSENTRY_DOWNLOAD_DIR"); dir != "" {
		c.Media.DownloadDir = dir
	}
	if chatID := os.Getenv("TGSENTRY_MASTER_CHAT_ID"); chatID != "" {
		if parsed, err := strconv.ParseInt(chatID, 10, 64); err == nil {
			c.Telegram.MasterChatID = parsed
		}
	}
	if ownerID := os.Getenv("TGSENTRY_OWNER_ID"); ownerID != "" {
		if parsed, err := strconv.ParseInt(ownerID, 10, 64); err == nil {
			c.Telegram.OwnerID = parsed
		}
	}
}
