package config

const (
	defaultStateDir              = "~/.local/share/stowaway"
	defaultLogDir                = "~/.local/share/stowaway/logs"
	defaultListFile              = "~/.local/share/stowaway/file_list.xml"
	defaultCredentialsFile       = "~/.config/stowaway/config.dat"
	defaultKeyFile               = "~/.config/stowaway/secret.key"
	defaultLogFormat             = "console"
	defaultLogLevel              = "info"
	defaultLogRetentionDays      = 30
	defaultFTPPort               = 21
	defaultFTPChunkSize          = 81920
	defaultFTPTimeoutSeconds     = 30
	defaultConflictPolicy        = ConflictAsk
	defaultNotifyRequestTimeout  = 10
	minFTPChunkSize              = 512
	maxFTPChunkSize              = 16 << 20
	defaultHistoryDatabaseName   = "history.db"
	defaultApplicationLogName    = "stowaway.log"
	defaultProgressBucketPercent = 10
)

// Conflict policies accepted by upload.conflict_policy.
const (
	ConflictAsk       = "ask"
	ConflictOverwrite = "overwrite"
	ConflictSkip      = "skip"
	ConflictCancel    = "cancel"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			StateDir: defaultStateDir,
			LogDir:   defaultLogDir,
			ListFile: defaultListFile,
		},
		FTP: FTP{
			Port:           defaultFTPPort,
			ChunkSize:      defaultFTPChunkSize,
			TimeoutSeconds: defaultFTPTimeoutSeconds,
		},
		Upload: Upload{
			ConflictPolicy:        defaultConflictPolicy,
			ProgressBucketPercent: defaultProgressBucketPercent,
		},
		Secrets: Secrets{
			CredentialsFile: defaultCredentialsFile,
			KeyFile:         defaultKeyFile,
		},
		History: History{
			Enabled: true,
		},
		Notifications: Notifications{
			RequestTimeout: defaultNotifyRequestTimeout,
			Upload:         true,
			Batch:          false,
			Errors:         true,
		},
		Logging: Logging{
			Format:        defaultLogFormat,
			Level:         defaultLogLevel,
			RetentionDays: defaultLogRetentionDays,
		},
	}
}
