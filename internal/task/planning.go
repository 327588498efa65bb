package task

import (
	"github.com/ShayCichocki/garagepm/pkg/models"
)

// SetPlanningState sets the explicit planning state of a leaf.
//
// Finishing requires every end dependency to be finished and, for effort
// leaves, some effort spent. Leaving the finished state fails while a
// finished task depends on t, or on an ancestor that would stop being
// finished along with it.
func (t *Task) SetPlanningState(s models.PlanningState) error {
	return t.setPlanningState(s, false)
}

// ValidateSetPlanningState returns the error SetPlanningState(s) would
// return, without changing anything.
func (t *Task) ValidateSetPlanningState(s models.PlanningState) error {
	return t.setPlanningState(s, true)
}

func (t *Task) setPlanningState(s models.PlanningState, dry bool) error {
	if err := t.checkAlive(); err != nil {
		return err
	}
	if !s.Valid() {
		return invalidValue("Unknown planning state %q", s)
	}
	ls := leaf(t.variant)
	if ls == nil {
		return illegalOperation("A branch task's state is derived from its child tasks, not set")
	}
	if ls.state == s {
		return nil
	}
	if s == models.PlanningStateFinished {
		if t.ctx.tracker.task == t {
			return illegalOperation("Cannot finish a task that is being time tracked")
		}
		if t.Variant() == models.VariantEffort && t.ActualEffort() == 0 {
			return invalidValue("Cannot finish a task effortlessly")
		}
		if t.hasUnfinishedEndDependencies() {
			return invalidValue("Cannot finish before end_dependencies have finished")
		}
	}

	tx := t.ctx.begin("SetPlanningState")
	tx.watch(t)
	tx.setLeafState(t, s)
	err := tx.checkUnfinish(unfinishError)
	return tx.finish(err, dry)
}

// SetDelegated switches a leaf between effort and delegated, keeping its
// planning state. Estimates, effort spent and duration are dropped.
func (t *Task) SetDelegated(delegated bool) error {
	return t.setDelegated(delegated, false)
}

// ValidateSetDelegated returns the error SetDelegated(delegated) would
// return, without changing anything.
func (t *Task) ValidateSetDelegated(delegated bool) error {
	return t.setDelegated(delegated, true)
}

func (t *Task) setDelegated(delegated bool, dry bool) error {
	if err := t.checkAlive(); err != nil {
		return err
	}
	ls := leaf(t.variant)
	if ls == nil {
		if delegated {
			return invalidValue("A branch task cannot be delegated")
		}
		return nil
	}
	if ls.state == models.PlanningStateFinished {
		return illegalOperation("Cannot change whether a task is delegated when it is already finished")
	}
	if t.IsDelegated() == delegated {
		return nil
	}

	var next variant
	if delegated {
		if t.ctx.tracker.task == t {
			return illegalOperation("Cannot delegate a task that is being time tracked")
		}
		if len(t.variant.(*effortLeaf).spent) > 0 {
			return invalidValue("Cannot delegate a task with effort spent on it")
		}
		next = newDelegatedLeaf(ls.state)
	} else {
		next = newEffortLeaf(ls.state)
	}

	tx := t.ctx.begin("SetDelegated")
	tx.watch(t)
	tx.setVariant(t, next)
	return tx.finish(nil, dry)
}
