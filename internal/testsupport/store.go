package testsupport

import (
	"path/filepath"
	"testing"

	"stowaway/internal/history"
)

// MustOpenHistory opens a journal in a temp directory and registers cleanup.
func MustOpenHistory(t testing.TB) *history.Store {
	t.Helper()

	store, err := history.OpenPath(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("history.OpenPath: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}
