package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"stowaway/internal/config"
	"stowaway/internal/secrets"
	"stowaway/internal/services"
	"stowaway/internal/testsupport"
	"stowaway/internal/upload"
)

type cliTestEnv struct {
	cfg        *config.Config
	configPath string
	baseDir    string
	server     *fakeFTP
}

func setupCLITestEnv(t *testing.T, opts ...testsupport.ConfigOption) *cliTestEnv {
	t.Helper()

	cfg := testsupport.NewConfig(t, opts...)
	base := testsupport.BaseDir(cfg)
	homeDir := filepath.Join(base, "home")
	if err := os.MkdirAll(homeDir, 0o755); err != nil {
		t.Fatalf("mkdir home: %v", err)
	}
	t.Setenv("HOME", homeDir)
	t.Setenv(passwordEnv, "")
	cfg.Logging.Level = "error"

	configPath := filepath.Join(base, "config.toml")
	writeTestConfig(t, configPath, cfg)

	server := newFakeFTP()
	previous := newTransport
	newTransport = func(*config.Config, *slog.Logger) ftpTransport { return server }
	t.Cleanup(func() { newTransport = previous })

	return &cliTestEnv{cfg: cfg, configPath: configPath, baseDir: base, server: server}
}

func writeTestConfig(t *testing.T, path string, cfg *config.Config) {
	t.Helper()
	data, err := toml.Marshal(cfg)
	if err != nil {
		t.Fatalf("marshal config: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func runCLI(t *testing.T, env *cliTestEnv, stdin string, args ...string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(append([]string{"--config", env.configPath}, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func mustRunCLI(t *testing.T, env *cliTestEnv, args ...string) string {
	t.Helper()
	out, errOut, err := runCLI(t, env, "", args...)
	if err != nil {
		t.Fatalf("stowaway %s: %v\nstdout:\n%s\nstderr:\n%s", strings.Join(args, " "), err, out, errOut)
	}
	return out
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}

// fakeFTP keeps uploaded files in memory.
type fakeFTP struct {
	mu     sync.Mutex
	files  map[string][]byte
	logins []secrets.Credentials
}

func newFakeFTP() *fakeFTP {
	return &fakeFTP{files: make(map[string][]byte)}
}

func (f *fakeFTP) Connect(_ context.Context, creds secrets.Credentials) (upload.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.logins = append(f.logins, creds)
	return &fakeFTPSession{server: f}, nil
}

func (f *fakeFTP) Ping(_ context.Context, creds secrets.Credentials) error {
	if creds.Password == "" {
		return fmt.Errorf("530 login incorrect: %w", services.ErrAuthOrConnectivity)
	}
	return nil
}

func (f *fakeFTP) file(name string) ([]byte, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, ok := f.files[name]
	return data, ok
}

func (f *fakeFTP) put(name string, data []byte) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.files[name] = data
}

type fakeFTPSession struct {
	server *fakeFTP
}

func (s *fakeFTPSession) Size(_ context.Context, name string) (int64, error) {
	data, ok := s.server.file(name)
	if !ok {
		return 0, services.Wrap(services.ErrNotFound, "ftp", "size", "550 file unavailable", nil)
	}
	return int64(len(data)), nil
}

func (s *fakeFTPSession) Store(_ context.Context, name string, r io.Reader) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	s.server.put(name, data)
	return nil
}

func (s *fakeFTPSession) Close() error { return nil }
