package task

import (
	"time"

	"github.com/ShayCichocki/garagepm/pkg/models"
)

// Duration returns the assigned duration of a delegated leaf. ok is false
// when unset or t is not delegated.
func (t *Task) Duration() (d time.Duration, ok bool) {
	p, isDelegated := t.variant.(*delegatedLeaf)
	if !isDelegated || p.duration == 0 {
		return 0, false
	}
	return p.duration, true
}

// SetDuration assigns the duration of a delegated leaf. d must be positive.
func (t *Task) SetDuration(d time.Duration) error {
	p, err := t.editableDelegatedLeaf()
	if err != nil {
		return err
	}
	if d <= 0 {
		return invalidValue("Duration must be > 0, got %s", d)
	}
	return t.changeDuration(p, d)
}

// ClearDuration unsets the duration of a delegated leaf.
func (t *Task) ClearDuration() error {
	p, err := t.editableDelegatedLeaf()
	if err != nil {
		return err
	}
	return t.changeDuration(p, 0)
}

func (t *Task) changeDuration(p *delegatedLeaf, d time.Duration) error {
	if p.duration == d {
		return nil
	}
	tx := t.ctx.begin("SetDuration")
	p.duration = d
	tx.emit(EventDurationChanged, t)
	tx.commit()
	return nil
}

func (t *Task) editableDelegatedLeaf() (*delegatedLeaf, error) {
	if err := t.checkAlive(); err != nil {
		return nil, err
	}
	p, ok := t.variant.(*delegatedLeaf)
	if !ok {
		return nil, illegalOperation("Only delegated tasks have a duration")
	}
	if p.state == models.PlanningStateFinished {
		return nil, illegalOperation("Cannot change the duration of a finished task")
	}
	return p, nil
}
