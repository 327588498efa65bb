package task

import (
	"time"

	"github.com/ShayCichocki/garagepm/internal/graph"
	"github.com/ShayCichocki/garagepm/internal/interval"
	"github.com/ShayCichocki/garagepm/pkg/models"
)

// observation is the derived, externally visible state of a task that
// commits compare to decide which change events to emit.
type observation struct {
	variant      models.Variant
	state        models.PlanningState
	actual       time.Duration
	predicted    time.Duration
	hasPredicted bool
}

func observe(t *Task) observation {
	p, ok := t.PredictedEffort()
	return observation{
		variant:      t.Variant(),
		state:        t.PlanningState(),
		actual:       t.ActualEffort(),
		predicted:    p,
		hasPredicted: ok,
	}
}

// tx is a mutation in progress. Primitives record their inverse so a failed
// validation can restore the exact previous state before anyone is notified.
type tx struct {
	ctx     *Context
	op      string
	undo    []func()
	watched []*Task
	before  map[models.TaskID]observation
	events  []Event
	after   []func()
}

func (c *Context) begin(op string) *tx {
	return &tx{
		ctx:    c,
		op:     op,
		before: make(map[models.TaskID]observation),
	}
}

// watch snapshots the tasks and their ancestors. Derived state of watched
// tasks is diffed on commit.
func (tx *tx) watch(tasks ...*Task) {
	for _, t := range tasks {
		if t == nil {
			continue
		}
		chain := append(t.Ancestors(), t)
		for _, w := range chain {
			if _, ok := tx.before[w.id]; ok {
				continue
			}
			tx.before[w.id] = observe(w)
			tx.watched = append(tx.watched, w)
		}
	}
}

func (tx *tx) emit(typ EventType, t *Task) {
	tx.emitEvent(Event{Type: typ, Task: t.id})
}

// emitEvent queues e for commit, once.
func (tx *tx) emitEvent(e Event) {
	for _, q := range tx.events {
		if q == e {
			return
		}
	}
	tx.events = append(tx.events, e)
}

func (tx *tx) afterCommit(fn func()) {
	tx.after = append(tx.after, fn)
}

func (tx *tx) onUndo(fn func()) {
	tx.undo = append(tx.undo, fn)
}

func (tx *tx) rollback() {
	for i := len(tx.undo) - 1; i >= 0; i-- {
		tx.undo[i]()
	}
	tx.undo = nil
	tx.events = nil
	tx.after = nil
	tx.ctx.log.Log("[task.%s] rolled back", tx.op)
}

func (tx *tx) commit() {
	var events []Event
	for _, e := range tx.events {
		// A disposed task only reports its disposal.
		if tx.ctx.tasks[e.Task] == nil && e.Type != EventTaskDisposed {
			continue
		}
		events = append(events, e)
	}
	for _, t := range tx.watched {
		if t.disposed {
			continue
		}
		before, now := tx.before[t.id], observe(t)
		if before.variant != now.variant {
			events = append(events, Event{Type: EventVariantChanged, Task: t.id})
		}
		if before.state != now.state {
			events = append(events, Event{Type: EventPlanningStateChanged, Task: t.id})
		}
		if before.hasPredicted != now.hasPredicted || before.predicted != now.predicted {
			events = append(events, Event{Type: EventPredictedEffortChanged, Task: t.id})
		}
		if before.actual != now.actual {
			events = append(events, Event{Type: EventActualEffortChanged, Task: t.id})
		}
	}

	tx.undo = nil
	tx.ctx.log.Log("[task.%s] committed, %d events", tx.op, len(events))
	for _, e := range events {
		tx.ctx.events.emit(e)
	}
	for _, fn := range tx.after {
		fn()
	}
}

// finish commits, or rolls back when err is set or dry is true.
func (tx *tx) finish(err error, dry bool) error {
	if err != nil || dry {
		tx.rollback()
		return err
	}
	tx.commit()
	return nil
}

// create adds a new effort leaf to the arena.
func (tx *tx) create(name string) *Task {
	t := tx.ctx.newTask(name, newEffortLeaf(models.PlanningStatePlanned))
	tx.onUndo(func() { tx.ctx.forget(t) })
	return t
}

// setLeafState changes the explicit state of a leaf.
func (tx *tx) setLeafState(t *Task, s models.PlanningState) {
	ls := leaf(t.variant)
	prev := ls.state
	ls.state = s
	tx.onUndo(func() { ls.state = prev })
	tx.syncActivity(t)
}

// setVariant swaps the payload of t, fixing the leaf edge.
func (tx *tx) setVariant(t *Task, v variant) {
	prev := t.variant
	wasLeaf, isLeaf := leaf(prev) != nil, leaf(v) != nil
	t.variant = v
	switch {
	case wasLeaf && !isLeaf:
		tx.ctx.graph.RemoveEdge(t.EndNode(), t.StartNode())
	case !wasLeaf && isLeaf:
		tx.ctx.mustAddEdge(t.EndNode(), t.StartNode(), true)
	}
	tx.onUndo(func() {
		t.variant = prev
		switch {
		case wasLeaf && !isLeaf:
			tx.ctx.mustAddEdge(t.EndNode(), t.StartNode(), true)
		case !wasLeaf && isLeaf:
			tx.ctx.graph.RemoveEdge(t.EndNode(), t.StartNode())
		}
	})
	tx.syncActivity(t)
}

// syncActivity makes the parent.end -> t.end edge follow t's activity.
func (tx *tx) syncActivity(t *Task) {
	if t.parent == "" {
		return
	}
	from, to := graph.End(t.parent), t.EndNode()
	prev := tx.ctx.graph.IsActive(from, to)
	if prev == t.IsActive() {
		return
	}
	tx.ctx.graph.SetActive(from, to, t.IsActive())
	tx.onUndo(func() { tx.ctx.graph.SetActive(from, to, prev) })
}

// attach makes orphan child the index-th child of branch p.
func (tx *tx) attach(p *Task, index int, child *Task) {
	b := p.variant.(*branch)
	b.children = insertIDs(b.children, index, child.id)
	child.parent = p.id
	tx.ctx.mustAddEdge(child.StartNode(), p.StartNode(), true)
	tx.ctx.mustAddEdge(p.EndNode(), child.EndNode(), child.IsActive())
	tx.onUndo(func() {
		tx.ctx.graph.RemoveEdge(child.StartNode(), p.StartNode())
		tx.ctx.graph.RemoveEdge(p.EndNode(), child.EndNode())
		child.parent = ""
		b.children = removeID(b.children, child.id)
	})
}

// detach orphans child, returning its former index.
func (tx *tx) detach(child *Task) int {
	p := tx.ctx.tasks[child.parent]
	b := p.variant.(*branch)
	index := indexOfID(b.children, child.id)
	active := tx.ctx.graph.IsActive(p.EndNode(), child.EndNode())

	tx.ctx.graph.RemoveEdge(child.StartNode(), p.StartNode())
	tx.ctx.graph.RemoveEdge(p.EndNode(), child.EndNode())
	child.parent = ""
	b.children = removeID(b.children, child.id)

	tx.onUndo(func() {
		b.children = insertIDs(b.children, index, child.id)
		child.parent = p.id
		tx.ctx.mustAddEdge(child.StartNode(), p.StartNode(), true)
		tx.ctx.mustAddEdge(p.EndNode(), child.EndNode(), active)
	})
	return index
}

// revertIfEmpty turns an emptied non-root branch into a fresh planned
// effort leaf.
func (tx *tx) revertIfEmpty(p *Task) {
	if p.root {
		return
	}
	if b, ok := p.variant.(*branch); ok && len(b.children) == 0 {
		tx.setVariant(p, newEffortLeaf(models.PlanningStatePlanned))
	}
}

func (tx *tx) addDependency(t, other *Task) {
	t.deps = append(t.deps, other.id)
	tx.ctx.mustAddEdge(t.StartNode(), other.EndNode(), true)
	tx.onUndo(func() {
		tx.ctx.graph.RemoveEdge(t.StartNode(), other.EndNode())
		t.deps = removeID(t.deps, other.id)
	})
}

func (tx *tx) removeDependency(t *Task, other models.TaskID) {
	index := indexOfID(t.deps, other)
	t.deps = removeID(t.deps, other)
	tx.ctx.graph.RemoveEdge(t.StartNode(), graph.End(other))
	tx.onUndo(func() {
		t.deps = insertIDs(t.deps, index, other)
		tx.ctx.mustAddEdge(t.StartNode(), graph.End(other), true)
	})
}

func (tx *tx) insertSpent(p *effortLeaf, index int, ivs []interval.Interval) {
	prev := p.spent
	spent := make([]interval.Interval, 0, len(prev)+len(ivs))
	spent = append(spent, prev[:index]...)
	spent = append(spent, ivs...)
	spent = append(spent, prev[index:]...)
	p.spent = spent
	tx.onUndo(func() { p.spent = prev })
}

func (tx *tx) removeSpent(p *effortLeaf, index int) {
	prev := p.spent
	spent := make([]interval.Interval, 0, len(prev)-1)
	spent = append(spent, prev[:index]...)
	spent = append(spent, prev[index+1:]...)
	p.spent = spent
	tx.onUndo(func() { p.spent = prev })
}

// checkCycles fails when the graph is cyclic, prefixing the cycle listing
// with prefix.
func (tx *tx) checkCycles(prefix string) error {
	raw := tx.ctx.graph.SimpleCycles()
	if len(raw) == 0 {
		return nil
	}
	cycles := make([]Cycle, len(raw))
	for i, nodes := range raw {
		tx.ctx.log.Log("[task.%s] cycle %s", tx.op, graph.FormatCycle(nodes, tx.ctx.name))
		c := make(Cycle, len(nodes))
		for j, n := range nodes {
			c[j] = Hop{Task: tx.ctx.name(n.Task), Kind: n.Kind}
		}
		cycles[i] = c
	}
	return &DependencyCycleError{
		Msg:    prefix + ": " + formatCycles(cycles),
		Cycles: cycles,
	}
}

// unfinishMessage builds the error for a watched task that stopped being
// finished while depender, a finished task, depends on it.
type unfinishMessage func(flipped, depender *Task) error

func unfinishError(flipped, depender *Task) error {
	return illegalOperation("Cannot unfinish '%s' as finished task '%s' depends on it (perhaps indirectly)", flipped.name, depender.name)
}

// checkUnfinish fails when a watched task went from finished to unfinished
// while a finished task depends on it.
func (tx *tx) checkUnfinish(msg unfinishMessage) error {
	for _, t := range tx.watched {
		if t.disposed {
			continue
		}
		if tx.before[t.id].state != models.PlanningStateFinished || t.PlanningState() == models.PlanningStateFinished {
			continue
		}
		if d := tx.ctx.finishedDepender(t); d != nil {
			return msg(t, d)
		}
	}
	return nil
}

// finishedDepender returns a finished task whose start depends on t's end
// or on the end of one of t's ancestors, directly or through the
// child.start -> parent.start chain.
func (c *Context) finishedDepender(t *Task) *Task {
	stack := []graph.Node{t.EndNode()}
	seen := map[graph.Node]bool{t.EndNode(): true}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, p := range c.graph.Predecessors(n, false) {
			if seen[p] {
				continue
			}
			switch {
			case p.Kind == models.NodeStart:
				seen[p] = true
				if d := c.tasks[p.Task]; d != nil && d.PlanningState() == models.PlanningStateFinished {
					return d
				}
				stack = append(stack, p)
			case n.Kind == models.NodeEnd:
				// parent.end -> n
				seen[p] = true
				stack = append(stack, p)
			}
		}
	}
	return nil
}

func insertIDs(ids []models.TaskID, index int, id ...models.TaskID) []models.TaskID {
	out := make([]models.TaskID, 0, len(ids)+len(id))
	out = append(out, ids[:index]...)
	out = append(out, id...)
	return append(out, ids[index:]...)
}

func removeID(ids []models.TaskID, id models.TaskID) []models.TaskID {
	out := make([]models.TaskID, 0, len(ids))
	for _, x := range ids {
		if x != id {
			out = append(out, x)
		}
	}
	return out
}

func indexOfID(ids []models.TaskID, id models.TaskID) int {
	for i, x := range ids {
		if x == id {
			return i
		}
	}
	return -1
}
