package task

import (
	"time"

	"github.com/ShayCichocki/garagepm/internal/interval"
	"github.com/ShayCichocki/garagepm/pkg/models"
)

// EffortEstimate returns the estimate of the given kind. ok is false when it
// is unset or t is not an effort leaf.
func (t *Task) EffortEstimate(kind models.EstimateKind) (d time.Duration, ok bool) {
	p, isEffort := t.variant.(*effortLeaf)
	if !isEffort {
		return 0, false
	}
	d, ok = p.estimates[kind]
	return d, ok
}

// SetEffortEstimate sets an estimate. d must be positive.
func (t *Task) SetEffortEstimate(kind models.EstimateKind, d time.Duration) error {
	p, err := t.editableEffortLeaf(kind)
	if err != nil {
		return err
	}
	if d <= 0 {
		return invalidValue("Effort estimate must be > 0, got %s", d)
	}
	if cur, ok := p.estimates[kind]; ok && cur == d {
		return nil
	}

	tx := t.ctx.begin("SetEffortEstimate")
	tx.watch(t)
	p.estimates[kind] = d
	tx.emitEvent(Event{Type: EventEffortEstimateChanged, Task: t.id, Estimate: kind})
	tx.commit()
	return nil
}

// ClearEffortEstimate unsets an estimate.
func (t *Task) ClearEffortEstimate(kind models.EstimateKind) error {
	p, err := t.editableEffortLeaf(kind)
	if err != nil {
		return err
	}
	if _, ok := p.estimates[kind]; !ok {
		return nil
	}

	tx := t.ctx.begin("ClearEffortEstimate")
	tx.watch(t)
	delete(p.estimates, kind)
	tx.emitEvent(Event{Type: EventEffortEstimateChanged, Task: t.id, Estimate: kind})
	tx.commit()
	return nil
}

func (t *Task) editableEffortLeaf(kind models.EstimateKind) (*effortLeaf, error) {
	if err := t.checkAlive(); err != nil {
		return nil, err
	}
	if !kind.Valid() {
		return nil, invalidValue("Unknown estimate kind %q", kind)
	}
	p, ok := t.variant.(*effortLeaf)
	if !ok {
		return nil, illegalOperation("Only effort tasks have effort estimates")
	}
	if p.state == models.PlanningStateFinished {
		return nil, illegalOperation("Cannot change effort estimates of a finished task")
	}
	return p, nil
}

// PredictedEffort returns (o + 4l + p) / 6 of the three estimates. ok is
// false unless t is an effort leaf with all three estimates set.
func (t *Task) PredictedEffort() (d time.Duration, ok bool) {
	p, isEffort := t.variant.(*effortLeaf)
	if !isEffort {
		return 0, false
	}
	return p.predicted()
}

// ActualEffort returns the effort spent: the committed intervals plus the
// live tracker interval for an effort leaf, the sum over active children for
// a branch, and zero for a delegated leaf.
func (t *Task) ActualEffort() time.Duration {
	switch p := t.variant.(type) {
	case *effortLeaf:
		total := interval.Total(p.spent)
		if live, ok := t.liveInterval(); ok {
			total += live.Duration()
		}
		return total
	case *branch:
		var total time.Duration
		for _, c := range t.Children() {
			if c.IsActive() {
				total += c.ActualEffort()
			}
		}
		return total
	default:
		return 0
	}
}

// EffortSpent returns the committed effort intervals followed by the live
// tracker interval when t is being tracked.
func (t *Task) EffortSpent() []interval.Interval {
	p, ok := t.variant.(*effortLeaf)
	if !ok {
		return nil
	}
	out := make([]interval.Interval, len(p.spent), len(p.spent)+1)
	copy(out, p.spent)
	if live, ok := t.liveInterval(); ok {
		out = append(out, live)
	}
	return out
}

// CommittedEffortSpent returns the committed effort intervals only. Indexes
// passed to InsertEffortSpent refer to this list.
func (t *Task) CommittedEffortSpent() []interval.Interval {
	p, ok := t.variant.(*effortLeaf)
	if !ok {
		return nil
	}
	out := make([]interval.Interval, len(p.spent))
	copy(out, p.spent)
	return out
}

func (t *Task) liveInterval() (interval.Interval, bool) {
	if t.ctx.tracker.task != t {
		return interval.Interval{}, false
	}
	return t.ctx.tracker.CurrentInterval()
}

// InsertEffortSpent inserts committed effort intervals at index.
//
// The intervals must lie in the past and must not overlap each other or any
// interval already claimed in the context, including the live tracker
// interval.
func (t *Task) InsertEffortSpent(index int, ivs ...interval.Interval) error {
	if len(ivs) == 0 {
		return t.checkAlive()
	}
	tx := t.ctx.begin("InsertEffortSpent")
	tx.watch(t)
	err := t.insertEffortSpent(tx, index, ivs)
	return tx.finish(err, false)
}

func (t *Task) insertEffortSpent(tx *tx, index int, ivs []interval.Interval) error {
	p, err := t.spendableEffortLeaf()
	if err != nil {
		return err
	}
	if index < 0 || index > len(p.spent) {
		return invalidValue("Effort spent index %d out of range [0, %d]", index, len(p.spent))
	}
	if err := t.ctx.checkClaims(ivs); err != nil {
		return err
	}
	tx.insertSpent(p, index, ivs)
	tx.emit(EventEffortSpentChanged, t)
	return nil
}

// RemoveEffortSpent removes a committed effort interval.
func (t *Task) RemoveEffortSpent(iv interval.Interval) error {
	p, err := t.spendableEffortLeaf()
	if err != nil {
		return err
	}
	index := p.indexOf(iv)
	if index < 0 {
		return invalidValue("%s is not an effort interval of '%s'", iv, t.name)
	}

	tx := t.ctx.begin("RemoveEffortSpent")
	tx.watch(t)
	tx.removeSpent(p, index)
	tx.emit(EventEffortSpentChanged, t)
	tx.commit()
	return nil
}

func (t *Task) spendableEffortLeaf() (*effortLeaf, error) {
	if err := t.checkAlive(); err != nil {
		return nil, err
	}
	p, ok := t.variant.(*effortLeaf)
	if !ok {
		return nil, illegalOperation("Only effort tasks have effort spent")
	}
	if p.state == models.PlanningStateFinished {
		return nil, illegalOperation("Cannot change effort spent on a finished task")
	}
	if t.hasUnfinishedEndDependencies() {
		return nil, illegalOperation("Cannot spend effort on task before its end_dependencies have finished")
	}
	return p, nil
}
