package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/buildcache/internal/problems"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "buildcache.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, "cache:\n  enabled: true\n")
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.True(t, cfg.CacheEnabled())
	assert.Equal(t, ".buildcache/state", cfg.Cache.Directory)
	assert.Equal(t, ".buildcache/reports", cfg.Report.Directory)
	assert.Equal(t, 7, cfg.Report.RetentionDays)
	assert.Equal(t, "build.yaml", cfg.Build.Manifest)
	assert.Equal(t, "buildcache.invocations", cfg.Events.Subject)
}

func TestCacheEnabledByDefault(t *testing.T) {
	assert.True(t, Default().CacheEnabled())

	path := writeConfig(t, "cache:\n  enabled: false\n")
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.False(t, cfg.CacheEnabled())
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "configuration file not found")
}

func TestEnvExpansion(t *testing.T) {
	t.Setenv("BC_CACHE_DIR", "/tmp/bc-cache")
	path := writeConfig(t, "cache:\n  directory: ${BC_CACHE_DIR}\n")
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/bc-cache", cfg.Cache.Directory)
}

func TestPolicyDefaults(t *testing.T) {
	pol := Default().Policy(nil, nil)
	assert.True(t, pol.FailOnProblems)
	assert.Equal(t, problems.Unlimited, pol.MaxProblems)
}

func TestPolicyFromFileAndOverrides(t *testing.T) {
	path := writeConfig(t, "cache:\n  fail_on_problems: false\n  max_problems: 5\n")
	cfg, err := Load(path)
	require.NoError(t, err)

	pol := cfg.Policy(nil, nil)
	assert.False(t, pol.FailOnProblems)
	assert.Equal(t, 5, pol.MaxProblems)

	// CLI overrides win over the file.
	fail := true
	max := 0
	pol = cfg.Policy(&fail, &max)
	assert.True(t, pol.FailOnProblems)
	assert.Equal(t, 0, pol.MaxProblems, "clamping to 1 happens in the collector")
}

func TestExplicitZeroMaxProblemsSurvivesDefaulting(t *testing.T) {
	path := writeConfig(t, "cache:\n  max_problems: 0\n")
	cfg, err := Load(path)
	require.NoError(t, err)
	require.NotNil(t, cfg.Cache.MaxProblems)
	assert.Equal(t, 0, cfg.Policy(nil, nil).MaxProblems)
}
