package models

// Config holds the application configuration
type Config struct {
	Telegram      TelegramConfig `json:"telegram"`
	Database      DatabaseConfig `json:"database"`
	Media         MediaConfig    `json:"media"`
	Retry         RetryConfig    `json:"retry"`
	Away          AwayConfig     `json:"away"`
	Server        ServerConfig   `json:"server"`
	Tracing       TracingConfig  `json:"tracing"`
	LogLevel      string         `json:"log_level"`
	RetentionDays int            `json:"retentionDays"`
}

// TelegramConfig holds Bot API related configuration
type TelegramConfig struct {
	APIBaseURL      string `json:"api_base_url"`
	BotToken        string `json:"bot_token"`
	MasterChatID    int64  `json:"masterChatId"`
	OwnerID         int64  `json:"ownerId"`
	PollTimeoutSec  int    `json:"pollTimeoutSec"`
	HTTPTimeoutSec  int    `json:"httpTimeoutSec"`
	PollBackoffSec  int    `json:"pollBackoffSec"`
}

// DatabaseConfig holds database related configuration
type DatabaseConfig struct {
	Path string `json:"path"`
}

// MediaConfig holds attachment download configuration
type MediaConfig struct {
	DownloadDir    string `json:"download_dir"`
	MaxConcurrency int    `json:"maxConcurrency"`
}

// RetryConfig holds retry related configuration
type RetryConfig struct {
	InitialBackoffMs int `json:"initialBackoffMs"`
	MaxBackoffMs     int `json:"maxBackoffMs"`
	MaxAttempts      int `json:"maxAttempts"`
}

// AwayConfig holds auto-away responder configuration
type AwayConfig struct {
	Enabled bool `json:"enabled"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port                 int `json:"port"`
	CleanupIntervalHours int `json:"cleanupIntervalHours"`
}

// TracingConfig holds OpenTelemetry configuration
type TracingConfig struct {
	Enabled        bool    `json:"enabled"`
	ServiceName    string  `json:"service_name"`
	ServiceVersion string  `json:"service_version"`
	Environment    string  `json:"environment"`
	OTLPEndpoint   string  `json:"otlp_endpoint"`
	SampleRate     float64 `json:"sample_rate"`
	UseStdout      bool    `json:"use_stdout"`
}

type ConfigError struct {
	Message string
}

func (e ConfigError) Error() string {
	return e.Message
}
