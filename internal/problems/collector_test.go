package problems

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func warnAt(task, prop, detail string) Problem {
	return New(KindWarning, PropertyOrigin(task, "Echo", "input", prop), detail)
}

func TestCollectorCountsAndUniqueness(t *testing.T) {
	c := NewCollector(Unlimited)
	c.Record(warnAt(":a", "x", "unsupported"))
	c.Record(warnAt(":a", "y", "unsupported"))
	c.Record(warnAt(":a", "x", "unsupported")) // duplicate message

	set := c.Problems()
	assert.Equal(t, 3, set.TotalCount())
	assert.Equal(t, 2, set.UniqueCount())
	assert.False(t, set.HasErrors())

	unique := set.Unique()
	require.Len(t, unique, 2)
	// First-discovery order is preserved.
	assert.Contains(t, unique[0].Message, "property 'x'")
	assert.Contains(t, unique[1].Message, "property 'y'")
}

func TestEmptySetInvariant(t *testing.T) {
	set := NewCollector(Unlimited).Problems()
	assert.Zero(t, set.TotalCount())
	assert.Zero(t, set.UniqueCount())
}

func TestCeilingZeroClampsToOne(t *testing.T) {
	c := NewCollector(0)
	reached := c.Record(warnAt(":a", "x", "unsupported"))
	assert.True(t, reached, "ceiling 0 must behave like ceiling 1")
	assert.Equal(t, 1, c.Problems().TotalCount())

	// Further records are dropped, partial results kept.
	c.Record(warnAt(":a", "y", "unsupported"))
	assert.Equal(t, 1, c.Problems().TotalCount())
	assert.True(t, c.Stopped())
}

func TestCeilingReached(t *testing.T) {
	c := NewCollector(3)
	for i := 0; i < 2; i++ {
		if c.Record(warnAt(":a", fmt.Sprintf("p%d", i), "unsupported")) {
			t.Fatalf("ceiling reached after %d problems, want 3", i+1)
		}
	}
	assert.True(t, c.Record(warnAt(":a", "p2", "unsupported")))
}

func TestConcurrentRecordAssignsTotalOrder(t *testing.T) {
	c := NewCollector(Unlimited)
	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				c.Record(warnAt(fmt.Sprintf(":t%d", g), fmt.Sprintf("p%d", i), "unsupported"))
			}
		}(g)
	}
	wg.Wait()

	set := c.Problems()
	require.Equal(t, 400, set.TotalCount())
	seen := map[int]bool{}
	for _, p := range set.All() {
		if p.Seq < 1 || p.Seq > 400 {
			t.Fatalf("sequence %d out of range", p.Seq)
		}
		if seen[p.Seq] {
			t.Fatalf("duplicate sequence %d", p.Seq)
		}
		seen[p.Seq] = true
	}
}

func TestFieldProblemsDeduplicateAcrossTasks(t *testing.T) {
	a := New(KindWarning,
		PropertyOrigin(":a", "Echo", "input", "bean").Field("Process", "NestedBean"),
		"cannot serialize")
	b := New(KindWarning,
		PropertyOrigin(":b", "Echo", "input", "bean").Field("Process", "NestedBean"),
		"cannot serialize")

	// Bean field problems are keyed by the field chain only, so the
	// same defect under two tasks yields one unique message.
	assert.Equal(t, "field 'Process' from type 'NestedBean': cannot serialize", a.Message)
	assert.Equal(t, a.Message, b.Message)

	c := NewCollector(Unlimited)
	c.Record(a)
	c.Record(b)
	set := c.Problems()
	assert.Equal(t, 2, set.TotalCount())
	assert.Equal(t, 1, set.UniqueCount())

	// The full location survives on the origin.
	assert.Contains(t, a.Origin.String(), "task ':a'")
	assert.Contains(t, b.Origin.String(), "task ':b'")
}

func TestNestedFieldChainInMessage(t *testing.T) {
	p := New(KindWarning,
		PropertyOrigin(":t", "Echo", "input", "bean").
			Field("Nested", "OuterBean").
			Field("Process", "NestedBean"),
		"cannot serialize")
	assert.Equal(t,
		"field 'Process' from type 'NestedBean' of field 'Nested' from type 'OuterBean': cannot serialize",
		p.Message)
}

func TestOriginRendering(t *testing.T) {
	origin := PropertyOrigin(":broken", "Echo", "input", "bean").
		Field("nested", "OuterBean").
		Field("project", "NestedBean")
	assert.Equal(t,
		"field 'project' from type 'NestedBean' of field 'nested' from type 'OuterBean' of input property 'bean' of task ':broken' (type 'Echo')",
		origin.String())

	task := TaskOrigin(":broken", "Echo")
	assert.Equal(t, "task ':broken' (type 'Echo')", task.String())
}
