package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"stowaway/internal/config"
)

func TestLoadDefaultConfigExpandsPathsAndReadsEnv(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Setenv("STOWAWAY_FTP_HOST", "ftp.example.com")
	t.Setenv("STOWAWAY_NTFY_TOPIC", "https://ntfy.example/stowaway")
	t.Chdir(t.TempDir())

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	wantState := filepath.Join(tempHome, ".local", "share", "stowaway")
	if cfg.Paths.StateDir != wantState {
		t.Fatalf("unexpected state dir: got %q want %q", cfg.Paths.StateDir, wantState)
	}
	if cfg.Paths.ListFile != filepath.Join(wantState, "file_list.xml") {
		t.Fatalf("unexpected list file: %q", cfg.Paths.ListFile)
	}
	if cfg.Secrets.CredentialsFile != filepath.Join(tempHome, ".config", "stowaway", "config.dat") {
		t.Fatalf("unexpected credentials file: %q", cfg.Secrets.CredentialsFile)
	}
	if cfg.FTP.Host != "ftp.example.com" {
		t.Fatalf("expected FTP host from env, got %q", cfg.FTP.Host)
	}
	if cfg.FTP.Port != 21 {
		t.Fatalf("expected default port 21, got %d", cfg.FTP.Port)
	}
	if cfg.FTP.ChunkSize != 81920 {
		t.Fatalf("expected default chunk size 81920, got %d", cfg.FTP.ChunkSize)
	}
	if cfg.FTP.StrictExistenceCheck {
		t.Fatal("expected strict existence check disabled by default")
	}
	if cfg.Upload.ConflictPolicy != config.ConflictAsk {
		t.Fatalf("expected ask policy, got %q", cfg.Upload.ConflictPolicy)
	}
	if cfg.Notifications.NtfyTopic != "https://ntfy.example/stowaway" {
		t.Fatalf("expected ntfy topic from env, got %q", cfg.Notifications.NtfyTopic)
	}
	if !cfg.History.Enabled {
		t.Fatal("expected history enabled by default")
	}
	if cfg.HistoryPath() != filepath.Join(wantState, "history.db") {
		t.Fatalf("unexpected history path: %q", cfg.HistoryPath())
	}
	if cfg.LogFilePath() != filepath.Join(wantState, "logs", "stowaway.log") {
		t.Fatalf("unexpected log path: %q", cfg.LogFilePath())
	}
}

func TestLoadCustomConfigOverridesDefaults(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Setenv("STOWAWAY_FTP_HOST", "ignored.example.com")

	configPath := filepath.Join(t.TempDir(), "custom.toml")
	content := `[paths]
list_file = "~/lists/photos.yaml"
output_dir = "~/out"

[ftp]
host = "nas.local"
port = 2121
chunk_size = 4096
strict_existence_check = true

[upload]
conflict_policy = "SKIP"

[logging]
format = "JSON"
level = "Debug"
`
	if err := os.WriteFile(configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists {
		t.Fatal("expected config file to exist")
	}
	if resolved != configPath {
		t.Fatalf("unexpected resolved path: %q", resolved)
	}
	if cfg.Paths.ListFile != filepath.Join(tempHome, "lists", "photos.yaml") {
		t.Fatalf("unexpected list file: %q", cfg.Paths.ListFile)
	}
	if cfg.Paths.OutputDir != filepath.Join(tempHome, "out") {
		t.Fatalf("unexpected output dir: %q", cfg.Paths.OutputDir)
	}
	if cfg.FTP.Host != "nas.local" {
		t.Fatalf("file host should win over env, got %q", cfg.FTP.Host)
	}
	if cfg.FTP.Port != 2121 || cfg.FTP.ChunkSize != 4096 {
		t.Fatalf("unexpected ftp section: %+v", cfg.FTP)
	}
	if !cfg.FTP.StrictExistenceCheck {
		t.Fatal("expected strict existence check enabled")
	}
	if cfg.Upload.ConflictPolicy != config.ConflictSkip {
		t.Fatalf("expected policy lowercased to skip, got %q", cfg.Upload.ConflictPolicy)
	}
	if cfg.Logging.Format != "json" || cfg.Logging.Level != "debug" {
		t.Fatalf("unexpected logging section: %+v", cfg.Logging)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
		want   string
	}{
		{"port", func(c *config.Config) { c.FTP.Port = 70000 }, "ftp.port"},
		{"chunk", func(c *config.Config) { c.FTP.ChunkSize = 10 }, "ftp.chunk_size"},
		{"policy", func(c *config.Config) { c.Upload.ConflictPolicy = "maybe" }, "upload.conflict_policy"},
		{"bucket", func(c *config.Config) { c.Upload.ProgressBucketPercent = 150 }, "progress_bucket_percent"},
		{"state", func(c *config.Config) { c.Paths.StateDir = "" }, "paths.state_dir"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("expected error mentioning %q, got %v", tt.want, err)
			}
		})
	}
}

func TestEnsureDirectoriesCreatesPaths(t *testing.T) {
	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.StateDir = filepath.Join(base, "state")
	cfg.Paths.LogDir = filepath.Join(base, "state", "logs")
	cfg.Paths.OutputDir = filepath.Join(base, "out")

	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories: %v", err)
	}
	for _, dir := range []string{cfg.Paths.StateDir, cfg.Paths.LogDir, cfg.Paths.OutputDir} {
		info, err := os.Stat(dir)
		if err != nil || !info.IsDir() {
			t.Fatalf("expected directory %s to exist: %v", dir, err)
		}
	}
}

func TestCreateSampleProducesLoadableConfig(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	var raw map[string]any
	if err := toml.Unmarshal(data, &raw); err != nil {
		t.Fatalf("sample is not valid TOML: %v", err)
	}
	for _, section := range []string{"paths", "ftp", "upload", "secrets", "history", "notifications", "logging"} {
		if _, ok := raw[section]; !ok {
			t.Fatalf("sample missing [%s] section", section)
		}
	}

	cfg, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load sample: %v", err)
	}
	if !exists {
		t.Fatal("expected sample to exist")
	}
	if cfg.FTP.ChunkSize != 81920 {
		t.Fatalf("unexpected chunk size from sample: %d", cfg.FTP.ChunkSize)
	}
}
