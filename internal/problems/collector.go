package problems

import "sync"

// Unlimited disables the problem ceiling.
const Unlimited = -1

// Collector accumulates problems discovered during a graph walk. It is
// the single synchronization point when tasks are walked concurrently:
// all Record calls are serialized under one mutex and stamped with a
// monotonically increasing sequence number so report ordering stays
// stable.
type Collector struct {
	mu      sync.Mutex
	set     *Set
	limit   int
	seq     int
	stopped bool
}

// NewCollector creates a collector with the given ceiling. A negative
// ceiling means no limit. A ceiling of 0 is clamped to 1: at least one
// problem must always be collectable before the walk aborts.
func NewCollector(ceiling int) *Collector {
	if ceiling == 0 {
		ceiling = 1
	}
	return &Collector{set: NewSet(), limit: ceiling}
}

// Record appends the problem and reports whether the ceiling has now
// been reached, signalling the walker to stop. Problems recorded after
// the ceiling was reached are dropped; the partial set is kept.
func (c *Collector) Record(p Problem) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.stopped {
		return true
	}
	c.seq++
	p.Seq = c.seq
	c.set.add(p)
	if c.limit >= 0 && c.set.TotalCount() >= c.limit {
		c.stopped = true
	}
	return c.stopped
}

// Stopped reports whether the ceiling has been reached.
func (c *Collector) Stopped() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stopped
}

// Problems returns a snapshot of the collected set.
func (c *Collector) Problems() *Set {
	c.mu.Lock()
	defer c.mu.Unlock()
	snap := NewSet()
	for _, p := range c.set.all {
		snap.add(p)
	}
	return snap
}
