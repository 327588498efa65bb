package task

import (
	"github.com/ShayCichocki/garagepm/internal/graph"
	"github.com/ShayCichocki/garagepm/pkg/models"
)

// Task is a handle to a node of the task tree. Handles stay valid until the
// task is disposed; after that every mutating call fails with
// ErrIllegalOperation.
type Task struct {
	ctx         *Context
	id          models.TaskID
	seq         uint64
	name        string
	description string
	// parent is empty for the root and for orphans.
	parent   models.TaskID
	root     bool
	disposed bool
	// deps are the explicit dependencies, in insertion order.
	deps    []models.TaskID
	variant variant
}

// ID returns the stable task ID.
func (t *Task) ID() models.TaskID { return t.id }

// Context returns the owning context.
func (t *Task) Context() *Context { return t.ctx }

// Name returns the task name.
func (t *Task) Name() string { return t.name }

// Description returns the task description.
func (t *Task) Description() string { return t.description }

// IsRoot reports whether t is the root task.
func (t *Task) IsRoot() bool { return t.root }

// IsDisposed reports whether t was disposed.
func (t *Task) IsDisposed() bool { return t.disposed }

// Variant returns the current variant.
func (t *Task) Variant() models.Variant { return t.variant.kind() }

// IsLeaf reports whether t has no children. The root is never a leaf.
func (t *Task) IsLeaf() bool { return t.variant.kind().IsLeaf() }

// IsDelegated reports whether t is a delegated leaf.
func (t *Task) IsDelegated() bool { return t.variant.kind() == models.VariantDelegated }

// StartNode returns the graph node that depends on everything t waits on
// before it may start.
func (t *Task) StartNode() graph.Node { return graph.Start(t.id) }

// EndNode returns the graph node that completes when t finishes.
func (t *Task) EndNode() graph.Node { return graph.End(t.id) }

func (t *Task) String() string {
	return "Task(" + t.name + ")"
}

// SetName renames the task.
func (t *Task) SetName(name string) error {
	if err := t.checkAlive(); err != nil {
		return err
	}
	if t.name == name {
		return nil
	}
	tx := t.ctx.begin("SetName")
	t.name = name
	tx.emit(EventNameChanged, t)
	tx.commit()
	return nil
}

// SetDescription changes the task description.
func (t *Task) SetDescription(description string) error {
	if err := t.checkAlive(); err != nil {
		return err
	}
	if t.description == description {
		return nil
	}
	tx := t.ctx.begin("SetDescription")
	t.description = description
	tx.emit(EventDescriptionChanged, t)
	tx.commit()
	return nil
}

// Parent returns the parent task, or nil for the root and orphans.
func (t *Task) Parent() *Task {
	if t.parent == "" {
		return nil
	}
	return t.ctx.tasks[t.parent]
}

// Children returns the children in order. Leaves have none.
func (t *Task) Children() []*Task {
	b, ok := t.variant.(*branch)
	if !ok {
		return nil
	}
	return t.ctx.lookup(b.children)
}

// Ancestors returns the ancestors, root first.
func (t *Task) Ancestors() []*Task {
	var chain []*Task
	for p := t.Parent(); p != nil; p = p.Parent() {
		chain = append(chain, p)
	}
	for i, j := 0, len(chain)-1; i < j; i, j = i+1, j-1 {
		chain[i], chain[j] = chain[j], chain[i]
	}
	return chain
}

// Descendants returns all descendants in pre-order.
func (t *Task) Descendants() []*Task {
	var out []*Task
	for _, c := range t.Children() {
		out = append(out, c)
		out = append(out, c.Descendants()...)
	}
	return out
}

// isAncestorOf reports whether t is a strict ancestor of other.
func (t *Task) isAncestorOf(other *Task) bool {
	for p := other.Parent(); p != nil; p = p.Parent() {
		if p == t {
			return true
		}
	}
	return false
}

// PlanningState returns the explicit state of a leaf or the derived state of
// a branch: planned if any active child is planned, finished otherwise.
func (t *Task) PlanningState() models.PlanningState {
	if ls := leaf(t.variant); ls != nil {
		return ls.state
	}
	for _, c := range t.Children() {
		if c.PlanningState() == models.PlanningStatePlanned {
			return models.PlanningStatePlanned
		}
	}
	return models.PlanningStateFinished
}

// IsActive reports whether t is planned or finished.
func (t *Task) IsActive() bool {
	return t.PlanningState().IsActive()
}

// IsFinished reports whether t is finished.
func (t *Task) IsFinished() bool {
	return t.PlanningState() == models.PlanningStateFinished
}

func (t *Task) checkAlive() error {
	if t.disposed {
		return illegalOperation("Task '%s' has been disposed", t.name)
	}
	return nil
}

// checkSameContext rejects tasks that are disposed or belong elsewhere.
func (t *Task) checkSameContext(other *Task) error {
	if other == nil {
		return invalidValue("Task must not be nil")
	}
	if other.ctx != t.ctx {
		return invalidValue("Task '%s' belongs to a different context", other.name)
	}
	if other.disposed {
		return invalidValue("Task '%s' has been disposed", other.name)
	}
	return nil
}
