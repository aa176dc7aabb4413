package report

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/buildcache/internal/problems"
)

func TestSummaryHeaderPluralization(t *testing.T) {
	tests := []struct {
		total, unique int
		want          string
	}{
		{1, 1, "1 instant execution problem found, 1 of which seems unique."},
		{2, 2, "2 instant execution problems found, 2 of which seem unique."},
		{2, 1, "2 instant execution problems found, 1 of which seems unique."},
		{6, 3, "6 instant execution problems found, 3 of which seem unique."},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, SummaryHeader(tt.total, tt.unique))
	}
}

func collect(msgs ...string) *problems.Set {
	c := problems.NewCollector(problems.Unlimited)
	for _, m := range msgs {
		c.Record(problems.Problem{Message: m, Kind: problems.KindWarning})
	}
	return c.Problems()
}

func TestRenderConsoleDeduplicates(t *testing.T) {
	// Six occurrences of three distinct messages.
	set := collect("one", "two", "three", "one", "two", "three")

	var buf bytes.Buffer
	RenderConsole(&buf, set)
	out := buf.String()

	assert.True(t, strings.HasPrefix(out, "6 instant execution problems found, 3 of which seem unique.\n"))
	for _, msg := range []string{"one", "two", "three"} {
		assert.Equal(t, 1, strings.Count(out, "> "+msg+"\n"), "each unique message printed exactly once")
	}
	// Unique problems appear in first-discovery order.
	assert.Less(t, strings.Index(out, "> one"), strings.Index(out, "> two"))
	assert.Less(t, strings.Index(out, "> two"), strings.Index(out, "> three"))
}

func TestWriteReportArtifact(t *testing.T) {
	c := problems.NewCollector(problems.Unlimited)
	c.Record(problems.Problem{Message: "plain warning", Kind: problems.KindWarning})
	c.Record(problems.NewWithCause(
		problems.PropertyOrigin(":custom", "Custom", "input", "state"),
		"error writing value", errors.New("boom"), "goroutine 1 [running]:\nfake stack"))
	c.Record(problems.Problem{Message: "plain warning", Kind: problems.KindWarning})
	set := c.Problems()

	base := t.TempDir()
	htmlPath, err := NewWriter(base).Write("inv-1", set, false)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(base, "inv-1", HTMLFileName), htmlPath)

	html, err := os.ReadFile(htmlPath)
	require.NoError(t, err)
	assert.Contains(t, string(html), "3 instant execution problems found, 2 of which seem unique.")
	assert.Contains(t, string(html), DataFileName)

	recs, truncated, err := ParseDataFile(filepath.Join(base, "inv-1", DataFileName))
	require.NoError(t, err)
	assert.False(t, truncated)
	// All problems including duplicates: length equals total count.
	require.Len(t, recs, 3)
	assert.Equal(t, "plain warning", recs[0].Message)
	assert.Empty(t, recs[0].Error, "no stack trace means no error field")
	assert.Contains(t, recs[1].Error, "fake stack")
	assert.Equal(t, "plain warning", recs[2].Message)
}

func TestWriteTruncatedReport(t *testing.T) {
	set := collect("only one")
	base := t.TempDir()
	_, err := NewWriter(base).Write("inv-2", set, true)
	require.NoError(t, err)

	recs, truncated, err := ParseDataFile(filepath.Join(base, "inv-2", DataFileName))
	require.NoError(t, err)
	assert.True(t, truncated)
	assert.Len(t, recs, 1)
}
