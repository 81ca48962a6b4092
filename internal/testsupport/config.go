package testsupport

import (
	"path/filepath"
	"testing"

	"stowaway/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config whose every path lives under a per-test temp
// directory. Options run after the defaults are applied.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.StateDir = filepath.Join(base, "state")
	cfgVal.Paths.LogDir = filepath.Join(base, "state", "logs")
	cfgVal.Paths.ListFile = filepath.Join(base, "state", "file_list.xml")
	cfgVal.Secrets.CredentialsFile = filepath.Join(base, "config", "config.dat")
	cfgVal.Secrets.KeyFile = filepath.Join(base, "config", "secret.key")
	cfgVal.FTP.Host = "127.0.0.1"
	cfgVal.FTP.User = "tester"

	builder := &configBuilder{t: t, baseDir: base, cfg: &cfgVal}
	for _, opt := range opts {
		opt(builder)
	}
	return builder.cfg
}

// WithListFile points the config at a list file name inside the temp base.
func WithListFile(name string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Paths.ListFile = filepath.Join(b.baseDir, name)
	}
}

// WithConflictPolicy sets upload.conflict_policy.
func WithConflictPolicy(policy string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Upload.ConflictPolicy = policy
	}
}

// WithNtfyTopic enables notifications against topic.
func WithNtfyTopic(topic string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Notifications.NtfyTopic = topic
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.StateDir)
}
