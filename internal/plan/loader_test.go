package plan

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeManifest(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "build.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write manifest: %v", err)
	}
	return path
}

func TestLoadManifest(t *testing.T) {
	path := writeManifest(t, `
tasks:
  - path: ":gen"
    type: Generate
    outputs:
      outDir: "build/gen"
  - path: ":compile"
    type: Compile
    depends_on: [":gen"]
    inputs:
      srcDir: "src/main"
      release: true
      flags: ["-O2", "-g"]
`)
	g, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 2, g.Size())

	compile, ok := g.Task(":compile")
	require.True(t, ok)
	assert.Equal(t, "Compile", compile.Type)
	assert.Equal(t, []string{":gen"}, compile.DependsOn)
	require.Len(t, compile.Properties, 3)
	// Properties are lexically ordered for stable serialization.
	assert.Equal(t, "flags", compile.Properties[0].Name)
	assert.Equal(t, "release", compile.Properties[1].Name)
	assert.Equal(t, "srcDir", compile.Properties[2].Name)
	assert.Equal(t, Input, compile.Properties[0].Kind)
}

func TestLoadRejectsUnknownDependency(t *testing.T) {
	path := writeManifest(t, `
tasks:
  - path: ":compile"
    depends_on: [":missing"]
`)
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown task")
}

func TestLoadRejectsDuplicatePaths(t *testing.T) {
	path := writeManifest(t, `
tasks:
  - path: ":a"
  - path: ":a"
`)
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate task path")
}

func TestLoadRejectsEmptyManifest(t *testing.T) {
	path := writeManifest(t, "tasks: []\n")
	_, err := Load(path)
	assert.Error(t, err)
}

func TestGraphValidate(t *testing.T) {
	g := NewGraph()
	require.NoError(t, g.Add(&Task{Path: ":a"}))
	require.NoError(t, g.Add(&Task{Path: ":b", DependsOn: []string{":a"}}))
	assert.NoError(t, g.Validate())

	if err := g.Add(&Task{Path: ""}); err == nil {
		t.Fatal("expected empty path to be rejected")
	}
}
