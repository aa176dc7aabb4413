package cache

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/buildcache/internal/serialize"
)

func TestFingerprintLifecycle(t *testing.T) {
	dir := t.TempDir()
	s := NewFingerprintStore(dir)

	assert.False(t, s.Present(), "fresh directory has no fingerprint")

	require.NoError(t, s.Write("abc123"))
	assert.True(t, s.Present())

	data, err := os.ReadFile(filepath.Join(dir, "state.fp"))
	require.NoError(t, err)
	assert.Equal(t, "abc123\n", string(data))

	require.NoError(t, s.Invalidate())
	assert.False(t, s.Present())
	// Invalidating an already-clean directory is fine.
	require.NoError(t, s.Invalidate())
}

func TestFingerprintWriteLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, NewFingerprintStore(dir).Write("h"))
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "state.fp", entries[0].Name())
}

func TestStateStoreRoundTrip(t *testing.T) {
	dir := t.TempDir()
	s := NewStateStore(dir)

	st := &serialize.State{
		Version: serialize.StateVersion,
		Tasks: []serialize.TaskState{{
			Path: ":a", Type: "Echo",
			Properties: []serialize.PropertyState{{
				Name: "msg", Kind: "input",
				Value: serialize.Node{K: serialize.KindString, V: "hello"},
			}},
		}},
	}
	hash, err := s.Write(st)
	require.NoError(t, err)
	assert.Len(t, hash, 64, "sha256 hex digest")

	loaded, err := s.Read()
	require.NoError(t, err)
	assert.Equal(t, st.Version, loaded.Version)
	require.Len(t, loaded.Tasks, 1)
	assert.Equal(t, ":a", loaded.Tasks[0].Path)

	// Writing identical state yields the identical hash.
	hash2, err := s.Write(st)
	require.NoError(t, err)
	assert.Equal(t, hash, hash2)
}

func TestStateStoreReadMissing(t *testing.T) {
	_, err := NewStateStore(t.TempDir()).Read()
	assert.Error(t, err)
}
