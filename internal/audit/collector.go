package audit

// Collector accumulates issues for a single audit run, deduplicating on
// (file path, line number, category, title). It is owned exclusively by the
// running strategy and is not safe for concurrent use.
type Collector struct {
	seen   map[issueKey]struct{}
	issues []Issue
}

// NewCollector creates an empty collector.
func NewCollector() *Collector {
	return &Collector{
		seen: make(map[issueKey]struct{}),
	}
}

// Add records an issue. Returns false when an issue with the same identity
// was already recorded; the duplicate is dropped.
func (c *Collector) Add(issue Issue) bool {
	key := issue.key()
	if _, ok := c.seen[key]; ok {
		return false
	}
	c.seen[key] = struct{}{}
	c.issues = append(c.issues, issue)
	return true
}

// Len returns the number of distinct issues recorded so far.
func (c *Collector) Len() int {
	return len(c.issues)
}

// Snapshot returns a copy of the recorded issues. Order is insertion order
// but callers must not rely on it.
func (c *Collector) Snapshot() []Issue {
	out := make([]Issue, len(c.issues))
	copy(out, c.issues)
	return out
}
