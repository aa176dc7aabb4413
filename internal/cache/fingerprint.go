// Package cache persists instant execution state and drives a cache
// run end to end: fingerprint check, load or walk, policy decision,
// reporting and the terminal result.
package cache

import (
	"fmt"
	"os"
	"path/filepath"
)

const fingerprintName = "state.fp"

// FingerprintStore manages the marker files proving the last state
// write completed without error. Their presence is the sole
// cache-validity signal.
type FingerprintStore struct {
	dir string
}

// NewFingerprintStore creates a store rooted at the cache directory.
func NewFingerprintStore(dir string) *FingerprintStore {
	return &FingerprintStore{dir: dir}
}

// Present reports whether any fingerprint marker exists.
func (s *FingerprintStore) Present() bool {
	markers, err := filepath.Glob(filepath.Join(s.dir, "*.fp"))
	return err == nil && len(markers) > 0
}

// Write persists a fingerprint marker carrying the state blob hash.
// The marker is staged to a temp file, flushed, then renamed, so an
// aborted write never leaves a half-written marker behind.
func (s *FingerprintStore) Write(stateHash string) error {
	if err := os.MkdirAll(s.dir, 0o750); err != nil {
		return fmt.Errorf("create cache directory: %w", err)
	}
	return atomicWrite(filepath.Join(s.dir, fingerprintName), []byte(stateHash+"\n"))
}

// Invalidate removes every fingerprint marker, leaving the state blob
// in place. The next run behaves as if no cache exists.
func (s *FingerprintStore) Invalidate() error {
	markers, err := filepath.Glob(filepath.Join(s.dir, "*.fp"))
	if err != nil {
		return fmt.Errorf("list fingerprint markers: %w", err)
	}
	for _, m := range markers {
		if err := os.Remove(m); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("remove fingerprint marker: %w", err)
		}
	}
	return nil
}

// atomicWrite stages data to a temp file in the target directory,
// fsyncs it, and renames it into place.
func atomicWrite(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("stage %s: %w", filepath.Base(path), err)
	}
	tmpName := tmp.Name()
	defer func() {
		_ = os.Remove(tmpName) // no-op after successful rename
	}()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("flush %s: %w", filepath.Base(path), err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", filepath.Base(path), err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("commit %s: %w", filepath.Base(path), err)
	}
	return nil
}
