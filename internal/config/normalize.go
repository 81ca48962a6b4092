package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	if err := c.normalizeSecrets(); err != nil {
		return err
	}
	c.normalizeFTP()
	c.normalizeUpload()
	c.normalizeNotifications()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.StateDir) == "" {
		c.Paths.StateDir = defaultStateDir
	}
	if c.Paths.StateDir, err = expandPath(c.Paths.StateDir); err != nil {
		return fmt.Errorf("paths.state_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.ListFile) == "" {
		c.Paths.ListFile = defaultListFile
	}
	if c.Paths.ListFile, err = expandPath(c.Paths.ListFile); err != nil {
		return fmt.Errorf("paths.list_file: %w", err)
	}
	if strings.TrimSpace(c.Paths.OutputDir) != "" {
		if c.Paths.OutputDir, err = expandPath(c.Paths.OutputDir); err != nil {
			return fmt.Errorf("paths.output_dir: %w", err)
		}
	}
	return nil
}

func (c *Config) normalizeSecrets() error {
	var err error
	if strings.TrimSpace(c.Secrets.CredentialsFile) == "" {
		c.Secrets.CredentialsFile = defaultCredentialsFile
	}
	if c.Secrets.CredentialsFile, err = expandPath(c.Secrets.CredentialsFile); err != nil {
		return fmt.Errorf("secrets.credentials_file: %w", err)
	}
	if strings.TrimSpace(c.Secrets.KeyFile) == "" {
		c.Secrets.KeyFile = defaultKeyFile
	}
	if c.Secrets.KeyFile, err = expandPath(c.Secrets.KeyFile); err != nil {
		return fmt.Errorf("secrets.key_file: %w", err)
	}
	return nil
}

func (c *Config) normalizeFTP() {
	c.FTP.Host = strings.TrimSpace(c.FTP.Host)
	if c.FTP.Host == "" {
		if value, ok := os.LookupEnv("STOWAWAY_FTP_HOST"); ok {
			c.FTP.Host = strings.TrimSpace(value)
		}
	}
	c.FTP.User = strings.TrimSpace(c.FTP.User)
	if c.FTP.User == "" {
		if value, ok := os.LookupEnv("STOWAWAY_FTP_USER"); ok {
			c.FTP.User = strings.TrimSpace(value)
		}
	}
	if c.FTP.Port == 0 {
		c.FTP.Port = defaultFTPPort
	}
	if c.FTP.ChunkSize == 0 {
		c.FTP.ChunkSize = defaultFTPChunkSize
	}
	if c.FTP.TimeoutSeconds <= 0 {
		c.FTP.TimeoutSeconds = defaultFTPTimeoutSeconds
	}
}

func (c *Config) normalizeUpload() {
	c.Upload.ConflictPolicy = strings.ToLower(strings.TrimSpace(c.Upload.ConflictPolicy))
	if c.Upload.ConflictPolicy == "" {
		c.Upload.ConflictPolicy = defaultConflictPolicy
	}
	if c.Upload.ProgressBucketPercent <= 0 {
		c.Upload.ProgressBucketPercent = defaultProgressBucketPercent
	}
}

func (c *Config) normalizeNotifications() {
	c.Notifications.NtfyTopic = strings.TrimSpace(c.Notifications.NtfyTopic)
	if c.Notifications.NtfyTopic == "" {
		if value, ok := os.LookupEnv("STOWAWAY_NTFY_TOPIC"); ok {
			c.Notifications.NtfyTopic = strings.TrimSpace(value)
		}
	}
	if c.Notifications.RequestTimeout <= 0 {
		c.Notifications.RequestTimeout = defaultNotifyRequestTimeout
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	if c.Logging.RetentionDays < 0 {
		c.Logging.RetentionDays = 0
	}
}
