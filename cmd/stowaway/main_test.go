package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"stowaway/internal/listfile"
	"stowaway/internal/polyglot"
	"stowaway/internal/secrets"
	"stowaway/internal/testsupport"
)

func writeFixture(t *testing.T, path string, data []byte) string {
	t.Helper()
	testsupport.WriteBytes(t, path, data)
	return path
}

func loadList(t *testing.T, env *cliTestEnv) []listEntry {
	t.Helper()
	entries, err := listfile.Load(env.cfg.Paths.ListFile)
	if err != nil {
		t.Fatalf("load list: %v", err)
	}
	out := make([]listEntry, len(entries))
	for i, e := range entries {
		out[i] = listEntry{host: e.HostPath, generated: e.GeneratedPath, hasPayload: e.HasPayload, uploaded: e.Uploaded}
	}
	return out
}

type listEntry struct {
	host       string
	generated  string
	hasPayload bool
	uploaded   bool
}

func TestConfigInitAndValidate(t *testing.T) {
	env := setupCLITestEnv(t)

	out := mustRunCLI(t, env, "config", "validate")
	requireContains(t, out, "Configuration valid")
	requireContains(t, out, env.configPath)

	target := filepath.Join(t.TempDir(), "config.toml")
	out = mustRunCLI(t, env, "config", "init", "--path", target)
	requireContains(t, out, "Wrote sample configuration")
	if _, err := os.Stat(target); err != nil {
		t.Fatalf("expected config file at %s: %v", target, err)
	}

	if _, _, err := runCLI(t, env, "", "config", "init", "--path", target); err == nil {
		t.Fatal("expected refusal to overwrite without --overwrite")
	}
}

func TestAddInjectExtractFlow(t *testing.T) {
	env := setupCLITestEnv(t)
	media := filepath.Join(env.baseDir, "media")
	hostBytes := bytes.Repeat([]byte{0xFF, 0xD8, 0x42}, 300)
	payload := []byte("meeting notes\nline two\n")
	host := writeFixture(t, filepath.Join(media, "photo.jpg"), hostBytes)
	notes := writeFixture(t, filepath.Join(media, "docs", "notes.txt"), payload)

	out := mustRunCLI(t, env, "add", host, "--payload", notes, "--description", "holiday")
	requireContains(t, out, "Added #1 photo.jpg")

	out = mustRunCLI(t, env, "list")
	requireContains(t, out, "photo.jpg")
	requireContains(t, out, "notes.txt")
	requireContains(t, out, "holiday")

	out = mustRunCLI(t, env, "inject", "1")
	requireContains(t, out, "Inject: 1 succeeded, 0 failed")

	generated := filepath.Join(media, "notes_payload.jpg")
	data, err := os.ReadFile(generated)
	if err != nil {
		t.Fatalf("read generated: %v", err)
	}
	if !bytes.Equal(data[:len(hostBytes)], hostBytes) {
		t.Fatal("generated file does not start with the host bytes")
	}
	if off := polyglot.LastSignatureOffset(data); off != len(hostBytes) {
		t.Fatalf("archive offset = %d, want %d", off, len(hostBytes))
	}

	entries := loadList(t, env)
	if len(entries) != 1 || !entries[0].hasPayload || entries[0].generated != generated {
		t.Fatalf("unexpected list after inject: %+v", entries)
	}

	out = mustRunCLI(t, env, "extract", "1", "--unpack")
	requireContains(t, out, "Extract: 1 succeeded, 0 failed")
	requireContains(t, out, "unpacked 1 file(s)")

	unpacked, err := os.ReadFile(filepath.Join(media, "notes_payload_extract", "notes.txt"))
	if err != nil {
		t.Fatalf("read unpacked payload: %v", err)
	}
	if !bytes.Equal(unpacked, payload) {
		t.Fatalf("unpacked payload = %q, want %q", unpacked, payload)
	}
}

func TestInjectBatchSkipsEntriesWithPayload(t *testing.T) {
	env := setupCLITestEnv(t)
	media := filepath.Join(env.baseDir, "media")
	notes := writeFixture(t, filepath.Join(media, "notes.txt"), []byte("n"))
	writeFixture(t, filepath.Join(media, "a.png"), []byte("host"))

	mustRunCLI(t, env, "add", filepath.Join(media, "a.png"), "--payload", notes)
	mustRunCLI(t, env, "add", filepath.Join(media, "b.png"))

	out := mustRunCLI(t, env, "inject", "--batch")
	requireContains(t, out, "Inject: 1 succeeded, 0 failed")

	out = mustRunCLI(t, env, "inject", "--batch")
	requireContains(t, out, "Nothing to inject")
}

func TestInjectReportsFailures(t *testing.T) {
	env := setupCLITestEnv(t)
	mustRunCLI(t, env, "add", filepath.Join(env.baseDir, "missing.jpg"))

	out, _, err := runCLI(t, env, "", "inject", "1")
	if err == nil {
		t.Fatal("expected failure for entry without payload")
	}
	requireContains(t, out, "not_found")
}

func TestInjectNeedsEntriesOrBatch(t *testing.T) {
	env := setupCLITestEnv(t)
	if _, _, err := runCLI(t, env, "", "inject"); err == nil {
		t.Fatal("expected usage error")
	}
	if _, _, err := runCLI(t, env, "", "inject", "1", "--batch"); err == nil {
		t.Fatal("expected mutually exclusive error")
	}
}

func TestAddRejectsUnsupportedExtension(t *testing.T) {
	env := setupCLITestEnv(t)
	if _, _, err := runCLI(t, env, "", "add", filepath.Join(env.baseDir, "doc.pdf")); err == nil {
		t.Fatal("expected validation error for .pdf host")
	}
	if entries := loadList(t, env); len(entries) != 0 {
		t.Fatalf("nothing should be added, got %+v", entries)
	}
}

func TestSetAndRemoveRenumber(t *testing.T) {
	env := setupCLITestEnv(t)
	for _, name := range []string{"a.jpg", "b.jpg", "c.jpg"} {
		mustRunCLI(t, env, "add", filepath.Join(env.baseDir, name))
	}

	mustRunCLI(t, env, "set", "3", "--uploaded")
	out := mustRunCLI(t, env, "rm", "1")
	requireContains(t, out, "Removed 1 entries; 2 remain")

	entries := loadList(t, env)
	if len(entries) != 2 || filepath.Base(entries[0].host) != "b.jpg" || !entries[1].uploaded {
		t.Fatalf("unexpected list: %+v", entries)
	}

	if _, _, err := runCLI(t, env, "", "rm", "9"); err == nil {
		t.Fatal("expected out-of-range error")
	}
	if _, _, err := runCLI(t, env, "", "set", "1"); err == nil {
		t.Fatal("expected error when no field flag is given")
	}
}

func TestCredentialsSetAndShow(t *testing.T) {
	env := setupCLITestEnv(t)

	out := mustRunCLI(t, env, "credentials", "set", "--host", "ftp.example.com", "--port", "2121", "--user", "alice", "--password", "s3cret")
	requireContains(t, out, "Saved credentials for alice@ftp.example.com:2121")

	out = mustRunCLI(t, env, "credentials", "show")
	requireContains(t, out, "ftp.example.com")
	requireContains(t, out, "2121")
	requireContains(t, out, "********")
	if bytes.Contains([]byte(out), []byte("s3cret")) {
		t.Fatalf("password leaked in output: %s", out)
	}

	store := secrets.NewStore(env.cfg.Secrets.KeyFile, env.cfg.Secrets.CredentialsFile)
	creds, err := store.LoadCredentials()
	if err != nil {
		t.Fatalf("LoadCredentials: %v", err)
	}
	if creds.Password != "s3cret" || creds.User != "alice" {
		t.Fatalf("unexpected stored credentials: %+v", creds.Redacted())
	}
}

func TestCredentialsSetPromptsForPassword(t *testing.T) {
	env := setupCLITestEnv(t)

	_, _, err := runCLI(t, env, "typed-pw\n", "credentials", "set")
	if err != nil {
		t.Fatalf("credentials set: %v", err)
	}
	creds, err := secrets.NewStore(env.cfg.Secrets.KeyFile, env.cfg.Secrets.CredentialsFile).LoadCredentials()
	if err != nil {
		t.Fatalf("LoadCredentials: %v", err)
	}
	if creds.Password != "typed-pw" || creds.Host != env.cfg.FTP.Host {
		t.Fatalf("unexpected credentials: %+v", creds)
	}
}

func TestDoctorOffline(t *testing.T) {
	env := setupCLITestEnv(t)
	t.Setenv(passwordEnv, "pw")

	out := mustRunCLI(t, env, "doctor", "--offline")
	requireContains(t, out, "State directory")
	requireContains(t, out, "[OK]")
	requireContains(t, out, "skipped (--offline)")

	out = mustRunCLI(t, env, "doctor")
	requireContains(t, out, "login ok")
}

func TestTestNotifyWithoutTopic(t *testing.T) {
	env := setupCLITestEnv(t)
	out := mustRunCLI(t, env, "test-notify")
	requireContains(t, out, "Notifications not configured")
}

func TestYAMLListFile(t *testing.T) {
	env := setupCLITestEnv(t, testsupport.WithListFile(filepath.Join("lists", "file_list.yaml")))
	mustRunCLI(t, env, "add", filepath.Join(env.baseDir, "clip.mp4"), "--description", "video")

	data, err := os.ReadFile(env.cfg.Paths.ListFile)
	if err != nil {
		t.Fatalf("read list: %v", err)
	}
	requireContains(t, string(data), "file_name:")
	requireContains(t, string(data), "clip.mp4")

	other := filepath.Join(env.baseDir, "other.xml")
	mustRunCLI(t, env, "--list", other, "add", filepath.Join(env.baseDir, "pic.gif"))
	data, err = os.ReadFile(other)
	if err != nil {
		t.Fatalf("read --list file: %v", err)
	}
	requireContains(t, string(data), "<FileName>")
	if entries := loadList(t, env); len(entries) != 1 {
		t.Fatalf("--list must not touch the configured list, got %+v", entries)
	}
}
