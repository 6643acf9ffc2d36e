package migration

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gofrs/flock"

	"festadmin/internal/services"
)

// Lock is an exclusive advisory lock held for the duration of an apply run.
type Lock struct {
	fl *flock.Flock
}

// AcquireLock takes the run lock at path without blocking. A lock held by
// another process yields an ErrConflict-marked error.
func AcquireLock(path string) (*Lock, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, services.Wrap(services.ErrConfiguration, "migration", "lock", "migration.lock_file is empty", nil)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("ensure lock directory: %w", err)
	}
	fl := flock.New(path)
	locked, err := fl.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire lock %s: %w", path, err)
	}
	if !locked {
		return nil, services.Wrap(services.ErrConflict, "migration", "lock",
			fmt.Sprintf("another migrate-media run holds %s", path), nil)
	}
	return &Lock{fl: fl}, nil
}

// Release drops the lock. It is safe to call on a nil Lock.
func (l *Lock) Release() error {
	if l == nil || l.fl == nil {
		return nil
	}
	return l.fl.Unlock()
}
