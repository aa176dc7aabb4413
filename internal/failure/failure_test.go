package failure

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/buildcache/internal/policy"
	"git.home.luguber.info/inful/buildcache/internal/problems"
)

func TestNewReturnsNilOnSuccess(t *testing.T) {
	set := problems.NewCollector(problems.Unlimited).Problems()
	assert.Nil(t, New(policy.Outcome{Kind: policy.Success}, set, ""))
	assert.Nil(t, New(policy.Outcome{Kind: policy.SuccessWithWarnings}, set, "r.html"))
}

func TestSingleUniqueProblemChainsOneCause(t *testing.T) {
	underlying := errors.New("broken write hook")
	c := problems.NewCollector(problems.Unlimited)
	c.Record(problems.NewWithCause(
		problems.PropertyOrigin(":custom", "Custom", "input", "state"),
		"error writing value of type 'Custom': broken write hook", underlying, "stack"))
	set := c.Problems()

	err := New(policy.Outcome{Kind: policy.Failure, Failure: policy.SerializationErrors}, set, "/reports/x.html")
	require.NotNil(t, err)

	msg := err.Error()
	assert.True(t, strings.HasPrefix(msg, SerializationErrorsMessage+": "))
	assert.Contains(t, msg, "1 instant execution problem found, 1 of which seems unique.")
	assert.Contains(t, msg, "See the complete report at /reports/x.html")
	assert.NotContains(t, msg, "Cause 1:", "single cause is chained, not numbered")

	causes := err.Unwrap()
	require.Len(t, causes, 1)
	assert.Contains(t, causes[0].Error(), "broken write hook")
	// The original error stays reachable through the chain.
	assert.True(t, errors.Is(err, underlying))
}

func TestMultipleUniqueProblemsAreNumbered(t *testing.T) {
	c := problems.NewCollector(problems.Unlimited)
	for _, prop := range []string{"alpha", "beta"} {
		origin := problems.PropertyOrigin(":broken", "Echo", "input", prop)
		c.Record(problems.New(problems.KindWarning, origin, "unsupported"))
		c.Record(problems.New(problems.KindWarning, origin, "unsupported")) // duplicate
	}
	set := c.Problems()

	err := New(policy.Outcome{Kind: policy.Failure, Failure: policy.GenericProblems}, set, "r.html")
	require.NotNil(t, err)

	msg := err.Error()
	assert.True(t, strings.HasPrefix(msg, GenericProblemsMessage+": "))
	assert.Contains(t, msg, "4 instant execution problems found, 2 of which seem unique.")
	assert.Contains(t, msg, "Cause 1: ")
	assert.Contains(t, msg, "Cause 2: ")
	assert.NotContains(t, msg, "Cause 3:", "causes are per unique problem")
	assert.Len(t, err.Unwrap(), 2)
}

func TestTooManyProblemsMessage(t *testing.T) {
	c := problems.NewCollector(1)
	c.Record(problems.New(problems.KindWarning, problems.TaskOrigin(":a", "Echo"), "unsupported"))
	set := c.Problems()

	err := New(policy.Outcome{Kind: policy.TooManyProblems}, set, "r.html")
	require.NotNil(t, err)
	assert.True(t, strings.HasPrefix(err.Error(), TooManyProblemsMessage+": "))
	assert.Equal(t, "r.html", err.ReportFile())
}
