package workspace

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"

	"stowaway/internal/catalog"
	"stowaway/internal/fileutil"
	"stowaway/internal/listfile"
	"stowaway/internal/logging"
	"stowaway/internal/services"
)

// ErrLocked reports that another process holds the list.
var ErrLocked = errors.New("list file is in use by another stowaway process")

const (
	lockSuffix   = ".lock"
	backupSuffix = ".bak"
)

// Workspace is an open list file.
type Workspace struct {
	path     string
	lock     *flock.Flock
	registry *catalog.Registry
	logger   *slog.Logger
}

// Open locks path and loads its entries. A missing list starts empty.
func Open(path string, logger *slog.Logger) (*Workspace, error) {
	if path == "" {
		return nil, services.Wrap(services.ErrConfiguration, "workspace", "open", "list file path is empty", nil)
	}
	logger = logging.NewComponentLogger(logger, "workspace")
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, services.Wrap(services.ErrIO, "workspace", "open", "create list directory", err)
	}

	lock := flock.New(path + lockSuffix)
	ok, err := lock.TryLock()
	if err != nil {
		return nil, services.Wrap(services.ErrIO, "workspace", "open", "acquire list lock", err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrLocked, path)
	}

	entries, err := listfile.Load(path)
	if err != nil {
		_ = lock.Unlock()
		return nil, err
	}
	logger.Debug("list loaded", logging.String("path", path), logging.Int("entries", len(entries)))
	return &Workspace{
		path:     path,
		lock:     lock,
		registry: catalog.NewRegistry(entries...),
		logger:   logger,
	}, nil
}

// Path returns the list file location.
func (w *Workspace) Path() string {
	return w.path
}

// Registry returns the live entry list.
func (w *Workspace) Registry() *catalog.Registry {
	return w.registry
}

// Save writes the registry back to the list file. The previous file is kept
// as "<list>.bak".
func (w *Workspace) Save() error {
	if ok, _ := fileutil.IsRegularFile(w.path); ok {
		if err := fileutil.CopyFile(w.path, w.path+backupSuffix); err != nil {
			logging.WarnWithContext(w.logger, "list backup failed", "list_backup_failed",
				logging.String("path", w.path),
				logging.Error(err),
				logging.String(logging.FieldImpact, "previous list contents are not preserved"),
			)
		}
	}
	entries := w.registry.Snapshot()
	if err := listfile.Save(w.path, entries); err != nil {
		return err
	}
	w.logger.Debug("list saved", logging.String("path", w.path), logging.Int("entries", len(entries)))
	return nil
}

// Close releases the list lock. It is safe to call more than once.
func (w *Workspace) Close() error {
	if w == nil || w.lock == nil {
		return nil
	}
	if err := w.lock.Unlock(); err != nil {
		return fmt.Errorf("release list lock: %w", err)
	}
	return nil
}
