package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"git.home.luguber.info/inful/buildcache/internal/serialize"
)

const stateBlobName = "state.json"

// StateStore reads and writes the serialized build-plan blob inside
// the cache directory.
type StateStore struct {
	dir string
}

// NewStateStore creates a store rooted at the cache directory.
func NewStateStore(dir string) *StateStore {
	return &StateStore{dir: dir}
}

// Write persists the state blob atomically and returns its content
// hash, which the fingerprint marker records.
func (s *StateStore) Write(st *serialize.State) (string, error) {
	if err := os.MkdirAll(s.dir, 0o750); err != nil {
		return "", fmt.Errorf("create cache directory: %w", err)
	}
	data, err := json.Marshal(st)
	if err != nil {
		return "", fmt.Errorf("marshal state: %w", err)
	}
	if err := atomicWrite(filepath.Join(s.dir, stateBlobName), data); err != nil {
		return "", err
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}

// Read loads the persisted state blob.
func (s *StateStore) Read() (*serialize.State, error) {
	path := filepath.Join(s.dir, stateBlobName)
	data, err := os.ReadFile(path) // #nosec G304 - path is inside our own cache directory
	if err != nil {
		return nil, fmt.Errorf("read cached state: %w", err)
	}
	var st serialize.State
	if err := json.Unmarshal(data, &st); err != nil {
		return nil, fmt.Errorf("parse cached state: %w", err)
	}
	return &st, nil
}
