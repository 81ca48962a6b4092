package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateFTP(); err != nil {
		return err
	}
	if err := c.validateUpload(); err != nil {
		return err
	}
	if err := c.validateNotifications(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validatePaths() error {
	if strings.TrimSpace(c.Paths.StateDir) == "" {
		return errors.New("paths.state_dir must be set")
	}
	if strings.TrimSpace(c.Paths.ListFile) == "" {
		return errors.New("paths.list_file must be set")
	}
	return nil
}

func (c *Config) validateFTP() error {
	if c.FTP.Port < 1 || c.FTP.Port > 65535 {
		return fmt.Errorf("ftp.port must be between 1 and 65535, got %d", c.FTP.Port)
	}
	if c.FTP.ChunkSize < minFTPChunkSize || c.FTP.ChunkSize > maxFTPChunkSize {
		return fmt.Errorf("ftp.chunk_size must be between %d and %d bytes", minFTPChunkSize, maxFTPChunkSize)
	}
	if c.FTP.TimeoutSeconds <= 0 {
		return errors.New("ftp.timeout_seconds must be positive")
	}
	return nil
}

func (c *Config) validateUpload() error {
	switch c.Upload.ConflictPolicy {
	case ConflictAsk, ConflictOverwrite, ConflictSkip, ConflictCancel:
	default:
		return fmt.Errorf("upload.conflict_policy must be one of ask, overwrite, skip, cancel (got %q)", c.Upload.ConflictPolicy)
	}
	if c.Upload.ProgressBucketPercent > 100 {
		return errors.New("upload.progress_bucket_percent must be <= 100")
	}
	return nil
}

func (c *Config) validateNotifications() error {
	if c.Notifications.RequestTimeout <= 0 {
		return errors.New("notifications.request_timeout must be positive")
	}
	return nil
}
