// Package runlock keeps two batch runs from converting the same directory at
// the same time. Locks live under the state directory, never in the batch
// directory itself.
package runlock

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"

	"subconv/internal/services"
)

// Lock is a held per-directory run lock.
type Lock struct {
	dir  string
	path string
	lock *flock.Flock
}

// PathFor returns the lock file used for dir under lockDir.
func PathFor(lockDir, dir string) (string, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolve directory %q: %w", dir, err)
	}
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		abs = resolved
	}
	sum := sha256.Sum256([]byte(abs))
	return filepath.Join(lockDir, hex.EncodeToString(sum[:8])+".lock"), nil
}

// Acquire takes the lock for dir without blocking. It fails with
// services.ErrBusy when another run holds it.
func Acquire(lockDir, dir string) (*Lock, error) {
	path, err := PathFor(lockDir, dir)
	if err != nil {
		return nil, services.Wrap(services.ErrFilesystem, "lock", "resolve lock path", "", err)
	}
	if err := os.MkdirAll(lockDir, 0o755); err != nil {
		return nil, services.Wrap(services.ErrFilesystem, "lock", "create lock directory", lockDir, err)
	}

	fl := flock.New(path)
	ok, err := fl.TryLock()
	if err != nil {
		return nil, services.Wrap(services.ErrFilesystem, "lock", "acquire lock", path, err)
	}
	if !ok {
		return nil, services.Wrap(services.ErrBusy, "lock", "acquire lock",
			fmt.Sprintf("another subconv run is converting %s", dir), nil)
	}
	return &Lock{dir: dir, path: path, lock: fl}, nil
}

// Path returns the lock file location.
func (l *Lock) Path() string {
	if l == nil {
		return ""
	}
	return l.path
}

// Release unlocks. The lock file is left in place so concurrent acquirers
// always contend on the same inode.
func (l *Lock) Release() error {
	if l == nil || l.lock == nil {
		return nil
	}
	if err := l.lock.Unlock(); err != nil {
		return fmt.Errorf("release lock %s: %w", l.path, err)
	}
	return nil
}
