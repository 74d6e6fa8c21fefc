// Package runlock keeps two pipeline runs from sharing a data directory.
// The claim step guards against double-spending model calls, but there is no
// point letting a second scrape hammer the same boards either.
package runlock

import (
	"fmt"
	"path/filepath"

	"github.com/gofrs/flock"
)

// Acquire takes a non-blocking exclusive lock in the data directory. The
// returned release func is safe to call once.
func Acquire(dataDir string) (release func() error, err error) {
	fl := flock.New(filepath.Join(dataDir, "run.lock"))

	ok, err := fl.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire run lock: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("another run holds the lock in %s", dataDir)
	}
	return fl.Unlock, nil
}
