package secrets_test

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"stowaway/internal/secrets"
	"stowaway/internal/services"
)

func newStore(t *testing.T) (*secrets.Store, string, string) {
	t.Helper()
	dir := t.TempDir()
	keyPath := filepath.Join(dir, "conf", "secret.key")
	blobPath := filepath.Join(dir, "conf", "config.dat")
	return secrets.NewStore(keyPath, blobPath), keyPath, blobPath
}

func TestProtectRoundTripCreatesKey(t *testing.T) {
	store, keyPath, _ := newStore(t)
	blob, err := store.Protect([]byte("secret"))
	if err != nil {
		t.Fatalf("Protect: %v", err)
	}
	if bytes.Contains(blob, []byte("secret")) {
		t.Fatal("blob contains plaintext")
	}
	info, err := os.Stat(keyPath)
	if err != nil {
		t.Fatalf("expected key file: %v", err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Fatalf("key mode = %o, want 600", info.Mode().Perm())
	}
	plain, err := store.Unprotect(blob)
	if err != nil {
		t.Fatalf("Unprotect: %v", err)
	}
	if string(plain) != "secret" {
		t.Fatalf("round trip got %q", plain)
	}
}

func TestUnprotectRejectsTamperingAndForeignKeys(t *testing.T) {
	store, _, _ := newStore(t)
	blob, err := store.Protect([]byte("secret"))
	if err != nil {
		t.Fatalf("Protect: %v", err)
	}
	tampered := append([]byte(nil), blob...)
	tampered[len(tampered)-1] ^= 0xFF
	if _, err := store.Unprotect(tampered); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error for tampered blob, got %v", err)
	}
	if _, err := store.Unprotect([]byte("short")); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error for short blob, got %v", err)
	}

	other, _, _ := newStore(t)
	if _, err := other.Protect([]byte("x")); err != nil {
		t.Fatalf("Protect other: %v", err)
	}
	if _, err := other.Unprotect(blob); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected foreign key to fail, got %v", err)
	}
}

func TestSaveAndLoadCredentials(t *testing.T) {
	store, _, blobPath := newStore(t)
	if store.Exists() {
		t.Fatal("expected no credentials yet")
	}
	if _, err := store.LoadCredentials(); !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected ErrNotFound before save, got %v", err)
	}

	want := secrets.Credentials{Host: "ftp.example.com", User: "alice", Password: "p@ss"}
	if err := store.SaveCredentials(want); err != nil {
		t.Fatalf("SaveCredentials: %v", err)
	}
	raw, err := os.ReadFile(blobPath)
	if err != nil {
		t.Fatalf("read blob: %v", err)
	}
	if bytes.Contains(raw, []byte("p@ss")) {
		t.Fatal("password stored in plain text")
	}

	got, err := store.LoadCredentials()
	if err != nil {
		t.Fatalf("LoadCredentials: %v", err)
	}
	want.Port = 21
	if got != want {
		t.Fatalf("got %+v want %+v", got, want)
	}
	if got.Address() != "ftp.example.com:21" {
		t.Fatalf("unexpected address %q", got.Address())
	}
	if got.Redacted().Password == "p@ss" {
		t.Fatal("Redacted kept password")
	}
}

func TestLoadRejectsOpenKeyPermissions(t *testing.T) {
	store, keyPath, _ := newStore(t)
	if err := store.SaveCredentials(secrets.Credentials{Host: "h", User: "u"}); err != nil {
		t.Fatalf("SaveCredentials: %v", err)
	}
	if err := os.Chmod(keyPath, 0o644); err != nil {
		t.Fatalf("chmod: %v", err)
	}
	if _, err := store.LoadCredentials(); !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}

func TestCredentialsValidate(t *testing.T) {
	tests := []struct {
		name  string
		creds secrets.Credentials
		ok    bool
	}{
		{"complete", secrets.Credentials{Host: "h", User: "u"}, true},
		{"no host", secrets.Credentials{User: "u"}, false},
		{"no user", secrets.Credentials{Host: "h"}, false},
		{"bad port", secrets.Credentials{Host: "h", User: "u", Port: 70000}, false},
	}
	for _, tt := range tests {
		err := tt.creds.Validate()
		if (err == nil) != tt.ok {
			t.Errorf("%s: Validate() = %v", tt.name, err)
		}
	}
}
