package task

import (
	"context"
	"time"

	"github.com/ShayCichocki/garagepm/internal/interval"
	"github.com/ShayCichocki/garagepm/pkg/models"
)

// TimeTracker records the one effort leaf of a context that is currently
// being worked on. The live interval [start, now) counts towards the task's
// effort but is only committed to its effort spent on Stop.
type TimeTracker struct {
	ctx        *Context
	task       *Task
	start      time.Time
	current    interval.Interval
	hasCurrent bool
}

// Task returns the tracked task, or nil.
func (tr *TimeTracker) Task() *Task {
	return tr.task
}

// IsTracking reports whether a task is being tracked.
func (tr *TimeTracker) IsTracking() bool {
	return tr.task != nil
}

// CurrentInterval returns the live interval as of the last Start or Tick.
// ok is false when not tracking or less than a minute has elapsed.
func (tr *TimeTracker) CurrentInterval() (iv interval.Interval, ok bool) {
	return tr.current, tr.hasCurrent
}

// TickInterval is how often hosts should call Tick.
func (tr *TimeTracker) TickInterval() time.Duration {
	return tr.ctx.cfg.Tracker.TickInterval
}

// Start begins tracking t from now.
func (tr *TimeTracker) Start(t *Task) error {
	if tr.task != nil {
		return illegalOperation("Already tracking '%s'", tr.task.name)
	}
	if err := t.checkAlive(); err != nil {
		return err
	}
	if t.ctx != tr.ctx {
		return illegalOperation("Task '%s' belongs to another context", t.name)
	}
	p, ok := t.variant.(*effortLeaf)
	if !ok {
		return illegalOperation("Only effort tasks can be time tracked")
	}
	if p.state == models.PlanningStateFinished {
		return illegalOperation("Cannot track a finished task")
	}
	if t.hasUnfinishedEndDependencies() {
		return illegalOperation("Cannot track a task before its end_dependencies have finished")
	}

	tx := tr.ctx.begin("TimeTracker.Start")
	tx.watch(t)
	tr.set(tx, t, tr.ctx.Now())
	tx.emit(EventTrackingChanged, t)
	if tr.refresh(tx) {
		tx.emit(EventCurrentIntervalChanged, t)
	}
	tr.ctx.log.Log("[tracker] start %s %q at %s", t.id.Short(), t.name, tr.start.Format(time.RFC3339))
	tx.commit()
	return nil
}

// Stop ends tracking and commits the elapsed interval, if any, to the
// tracked task's effort spent. When the commit fails, tracking continues.
func (tr *TimeTracker) Stop() error {
	t := tr.task
	if t == nil {
		return illegalOperation("Not tracking any task")
	}
	iv, err := interval.New(tr.start, tr.ctx.Now())

	tx := tr.ctx.begin("TimeTracker.Stop")
	tx.watch(t)
	tr.reset(tx)
	if err == nil {
		err = t.insertEffortSpent(tx, len(t.variant.(*effortLeaf).spent), []interval.Interval{iv})
	} else {
		// Less than a minute elapsed; nothing to commit.
		err = nil
	}
	if err := tx.finish(err, false); err != nil {
		return err
	}
	tr.ctx.log.Log("[tracker] stop %s %q", t.id.Short(), t.name)
	return nil
}

// Cancel ends tracking and discards the live interval.
func (tr *TimeTracker) Cancel() error {
	t := tr.task
	if t == nil {
		return illegalOperation("Not tracking any task")
	}
	tx := tr.ctx.begin("TimeTracker.Cancel")
	tx.watch(t)
	tr.reset(tx)
	tr.ctx.log.Log("[tracker] cancel %s %q", t.id.Short(), t.name)
	tx.commit()
	return nil
}

// Tick recomputes the live interval, notifying only when it changed.
func (tr *TimeTracker) Tick() {
	if tr.task == nil {
		return
	}
	tx := tr.ctx.begin("TimeTracker.Tick")
	tx.watch(tr.task)
	if !tr.refresh(tx) {
		return
	}
	tx.emit(EventCurrentIntervalChanged, tr.task)
	tx.commit()
}

// Run calls Tick every TickInterval until ctx is done. Ticks are handed to
// dispatch so the host can run them on the goroutine that owns the context.
// A nil dispatch calls Tick directly, which is only safe when nothing else
// uses the context concurrently.
func (tr *TimeTracker) Run(ctx context.Context, dispatch func(func())) error {
	if dispatch == nil {
		dispatch = func(fn func()) { fn() }
	}
	ticker := time.NewTicker(tr.TickInterval())
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			dispatch(tr.Tick)
		}
	}
}

func (tr *TimeTracker) set(tx *tx, t *Task, start time.Time) {
	prevTask, prevStart := tr.task, tr.start
	prevCurrent, prevHas := tr.current, tr.hasCurrent
	tr.task, tr.start = t, start
	tr.current, tr.hasCurrent = interval.Interval{}, false
	tx.onUndo(func() {
		tr.task, tr.start = prevTask, prevStart
		tr.current, tr.hasCurrent = prevCurrent, prevHas
	})
}

// refresh recomputes the live interval and reports whether it changed.
func (tr *TimeTracker) refresh(tx *tx) bool {
	iv, err := interval.New(tr.start, tr.ctx.Now())
	has := err == nil
	if has == tr.hasCurrent && iv.Equal(tr.current) {
		return false
	}
	prevCurrent, prevHas := tr.current, tr.hasCurrent
	tr.current, tr.hasCurrent = iv, has
	tx.onUndo(func() { tr.current, tr.hasCurrent = prevCurrent, prevHas })
	return true
}

// reset stops tracking without committing anything.
func (tr *TimeTracker) reset(tx *tx) {
	t, had := tr.task, tr.hasCurrent
	tr.set(tx, nil, time.Time{})
	tx.emit(EventTrackingChanged, t)
	if had {
		tx.emit(EventCurrentIntervalChanged, t)
	}
}

// claimedFrom is the earliest instant the tracker claims. Every minute from
// there on will belong to the tracked task once tracking stops.
func (tr *TimeTracker) claimedFrom() (time.Time, bool) {
	if tr.task == nil {
		return time.Time{}, false
	}
	return interval.Truncate(tr.start), true
}
