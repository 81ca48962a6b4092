package preflight

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"stowaway/internal/secrets"
	"stowaway/internal/services"
	"stowaway/internal/testsupport"
)

type stubPinger struct {
	err   error
	calls int
}

func (p *stubPinger) Ping(ctx context.Context, creds secrets.Credentials) error {
	p.calls++
	if _, ok := ctx.Deadline(); !ok {
		return errors.New("ping called without deadline")
	}
	return p.err
}

func TestCheckDirectoryAccess_OK(t *testing.T) {
	dir := t.TempDir()
	result := CheckDirectoryAccess("test", dir)
	if !result.Passed {
		t.Fatalf("expected pass for temp dir, got: %s", result.Detail)
	}
}

func TestCheckDirectoryAccess_NotExist(t *testing.T) {
	result := CheckDirectoryAccess("test", filepath.Join(t.TempDir(), "nope"))
	if result.Passed {
		t.Fatal("expected failure for missing dir")
	}
	if !strings.Contains(result.Detail, "does not exist") {
		t.Fatalf("unexpected detail: %s", result.Detail)
	}
}

func TestCheckDirectoryAccess_NotDir(t *testing.T) {
	f := filepath.Join(t.TempDir(), "file.txt")
	if err := os.WriteFile(f, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	result := CheckDirectoryAccess("test", f)
	if result.Passed {
		t.Fatal("expected failure for file path")
	}
}

func TestCheckCredentials(t *testing.T) {
	tests := []struct {
		name   string
		source CredentialSource
		pass   bool
		detail string
	}{
		{"nil source", nil, false, "no credential source"},
		{"not stored", func() (secrets.Credentials, error) {
			return secrets.Credentials{}, services.Wrap(services.ErrNotFound, "secrets", "load", "missing", nil)
		}, false, "credentials set"},
		{"invalid", func() (secrets.Credentials, error) {
			return secrets.Credentials{Host: "h"}, nil
		}, false, "user is empty"},
		{"ok", func() (secrets.Credentials, error) {
			return secrets.Credentials{Host: "ftp.example.com", User: "u"}, nil
		}, true, "u@ftp.example.com:21"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, result := CheckCredentials(tc.source)
			if result.Passed != tc.pass {
				t.Fatalf("Passed = %v, detail %q", result.Passed, result.Detail)
			}
			if !strings.Contains(result.Detail, tc.detail) {
				t.Fatalf("detail %q does not contain %q", result.Detail, tc.detail)
			}
		})
	}
}

func TestCheckFTP(t *testing.T) {
	creds := secrets.Credentials{Host: "ftp.example.com", User: "u"}

	ok := CheckFTP(context.Background(), &stubPinger{}, creds, time.Second)
	if !ok.Passed {
		t.Fatalf("expected pass, got %s", ok.Detail)
	}

	timedOut := CheckFTP(context.Background(), &stubPinger{err: context.DeadlineExceeded}, creds, time.Second)
	if timedOut.Passed || !strings.Contains(timedOut.Detail, "timed out") {
		t.Fatalf("expected timeout detail, got %+v", timedOut)
	}
}

func TestRunAllSkipsFTPWithoutCredentials(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories: %v", err)
	}
	pinger := &stubPinger{}
	missing := func() (secrets.Credentials, error) {
		return secrets.Credentials{}, services.ErrNotFound
	}

	results := RunAll(context.Background(), cfg, missing, pinger)
	if pinger.calls != 0 {
		t.Fatalf("pinger should not run without credentials")
	}
	names := make([]string, 0, len(results))
	for _, r := range results {
		names = append(names, r.Name)
	}
	want := "State directory,Log directory,List directory,FTP credentials"
	if got := strings.Join(names, ","); got != want {
		t.Fatalf("checks = %s, want %s", got, want)
	}
	for _, r := range results[:3] {
		if !r.Passed {
			t.Fatalf("%s failed: %s", r.Name, r.Detail)
		}
	}
}

func TestRunAllPingsWithCredentials(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Paths.OutputDir = t.TempDir()
	pinger := &stubPinger{}
	source := func() (secrets.Credentials, error) {
		return secrets.Credentials{Host: "ftp.example.com", User: "u"}, nil
	}

	results := RunAll(context.Background(), cfg, source, pinger)
	if pinger.calls != 1 {
		t.Fatalf("expected one ping, got %d", pinger.calls)
	}
	last := results[len(results)-1]
	if last.Name != "FTP server" || !last.Passed {
		t.Fatalf("unexpected last result: %+v", last)
	}
	if results[2].Name != "Output directory" {
		t.Fatalf("expected output directory check, got %+v", results[2])
	}
}
