package task

import (
	"github.com/ShayCichocki/garagepm/internal/interval"
)

// Effort intervals are exclusive across a context: no two intervals, on any
// tasks, may claim the same minute. The claims are the committed effort of
// every live task plus everything from the tracker's start onwards.

// claimant returns the task holding an interval that intersects iv.
func (c *Context) claimant(iv interval.Interval) (*Task, interval.Interval, bool) {
	for _, t := range c.Tasks() {
		p, ok := t.variant.(*effortLeaf)
		if !ok {
			continue
		}
		for _, s := range p.spent {
			if s.Intersects(iv) {
				return t, s, true
			}
		}
	}
	if from, ok := c.tracker.claimedFrom(); ok && iv.End().After(from) {
		live, _ := c.tracker.CurrentInterval()
		return c.tracker.task, live, true
	}
	return nil, interval.Interval{}, false
}

// checkClaims rejects intervals that are in the future, overlap each other
// or overlap an existing claim.
func (c *Context) checkClaims(ivs []interval.Interval) error {
	now := interval.Truncate(c.Now())
	for _, iv := range ivs {
		if iv.IsZero() {
			return invalidValue("Effort interval must not be empty")
		}
		if iv.End().After(now) {
			return invalidValue("Cannot spend effort in the future: %s", iv)
		}
	}
	// Sorted by begin, any overlap shows up between neighbours.
	sorted := append([]interval.Interval(nil), ivs...)
	interval.Sort(sorted)
	for i := 1; i < len(sorted); i++ {
		if sorted[i-1].Intersects(sorted[i]) {
			return invalidValue("Effort intervals %s and %s overlap", sorted[i-1], sorted[i])
		}
	}
	for _, iv := range ivs {
		if t, s, ok := c.claimant(iv); ok {
			if s.IsZero() {
				return invalidValue("Effort interval %s overlaps time being tracked on '%s'", iv, t.name)
			}
			return invalidValue("Effort interval %s overlaps %s already spent on '%s'", iv, s, t.name)
		}
	}
	return nil
}
