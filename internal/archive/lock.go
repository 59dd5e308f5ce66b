package archive

import (
	"errors"
	"fmt"

	"github.com/gofrs/flock"
)

// ErrLocked means another run is using the output directory.
var ErrLocked = errors.New("another run holds the lock")

// AcquireLock takes the run lock at path without waiting. The returned func
// releases it. An empty path disables locking.
func AcquireLock(path string) (func() error, error) {
	if path == "" {
		return func() error { return nil }, nil
	}
	fl := flock.New(path)
	locked, err := fl.TryLock()
	if err != nil {
		return nil, fmt.Errorf("lock %s: %w", path, err)
	}
	if !locked {
		return nil, fmt.Errorf("%w: %s", ErrLocked, path)
	}
	return fl.Unlock, nil
}
