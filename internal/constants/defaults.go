package constants

// Default polling configuration values
const (
	DefaultPollTimeoutSec  = 30
	DefaultPollBackoffSec  = 5
	DefaultRetryBackoffMs  = 1000
	DefaultMaxBackoffMs    = 60000
	DefaultMaxAttempts     = 5
	DefaultRetentionDays   = 30
	DefaultServerPort      = 8082
)

// Default media configuration values
const (
	DefaultFetchConcurrency = 4
	DefaultBinaryExtension  = ".bin"
)

// Default timeout values
const (
	DefaultHTTPTimeoutSec        = 35
	DefaultDatabaseRetryAttempts = 3
	DefaultGracefulShutdownSec   = 30
	DefaultServerReadTimeoutSec  = 15
	DefaultServerWriteTimeoutSec = 15
	DefaultServerIdleTimeoutSec  = 60
	CleanupSchedulerIntervalHours = 24
)

// Privacy settings
const (
	DefaultChatIDMaskLength = 4
)

// Encryption salts. The lookup salt keys the deterministic nonces used for
// searchable columns; changing either invalidates existing databases.
const (
	EncryptionSalt       = "tgsentry-db-salt-v1"
	EncryptionLookupSalt = "tgsentry-lookup-salt-v1"
)
