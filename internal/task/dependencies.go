package task

import (
	"github.com/ShayCichocki/garagepm/pkg/models"
)

// Dependencies returns the explicit dependencies in insertion order,
// including inactive ones.
func (t *Task) Dependencies() []*Task {
	return t.ctx.lookup(t.deps)
}

// StartDependencies returns the tasks that must finish before t may start:
// its own dependencies followed by the parent's start dependencies.
func (t *Task) StartDependencies() []*Task {
	seen := make(map[models.TaskID]bool)
	var out []*Task
	for cur := t; cur != nil; cur = cur.Parent() {
		for _, d := range cur.Dependencies() {
			if !seen[d.id] {
				seen[d.id] = true
				out = append(out, d)
			}
		}
	}
	return out
}

// EndDependencies returns the tasks that must finish before t may finish:
// its start dependencies plus its active children.
func (t *Task) EndDependencies() []*Task {
	out := t.StartDependencies()
	for _, c := range t.Children() {
		if c.IsActive() {
			out = append(out, c)
		}
	}
	return out
}

// Dependers returns the tasks that explicitly depend on t.
func (t *Task) Dependers() []*Task {
	var out []*Task
	for _, n := range t.ctx.graph.Predecessors(t.EndNode(), false) {
		if n.Kind != models.NodeStart {
			continue
		}
		if d := t.ctx.tasks[n.Task]; d != nil {
			out = append(out, d)
		}
	}
	return out
}

// hasUnfinishedEndDependencies reports whether any end dependency is not finished.
func (t *Task) hasUnfinishedEndDependencies() bool {
	for _, d := range t.EndDependencies() {
		if !d.IsFinished() {
			return true
		}
	}
	return false
}

// AddDependency makes t wait on other's end before starting.
//
// Adding a dependency that already exists, or one on a descendant of an
// existing dependency, is a no-op. Existing dependencies on descendants of
// other are absorbed by the new one.
func (t *Task) AddDependency(other *Task) error {
	if err := t.checkAlive(); err != nil {
		return err
	}
	if err := t.checkSameContext(other); err != nil {
		return err
	}
	if t.IsFinished() {
		return illegalOperation("Cannot add dependency to finished task")
	}
	if other == t {
		return invalidValue("Task may not depend on itself")
	}
	if other.isAncestorOf(t) {
		return invalidValue("Task may not depend on an ancestor")
	}
	if t.isAncestorOf(other) {
		return invalidValue("Task may not depend on a descendant")
	}
	for _, d := range t.Dependencies() {
		if d == other || d.isAncestorOf(other) {
			return nil
		}
	}

	tx := t.ctx.begin("AddDependency")
	for _, d := range t.Dependencies() {
		if other.isAncestorOf(d) {
			tx.removeDependency(t, d.id)
		}
	}
	tx.addDependency(t, other)
	tx.emit(EventDependenciesChanged, t)

	err := tx.checkCycles("Depending on '" + other.name + "' would cause a dependency cycle")
	return tx.finish(err, false)
}

// RemoveDependency drops other from the explicit dependencies.
func (t *Task) RemoveDependency(other *Task) error {
	if err := t.checkAlive(); err != nil {
		return err
	}
	if err := t.checkSameContext(other); err != nil {
		return err
	}
	if t.IsFinished() {
		return illegalOperation("Cannot remove dependency from finished task")
	}
	if indexOfID(t.deps, other.id) < 0 {
		return invalidValue("'%s' is not a dependency of '%s'", other.name, t.name)
	}

	tx := t.ctx.begin("RemoveDependency")
	tx.removeDependency(t, other.id)
	tx.emit(EventDependenciesChanged, t)
	tx.commit()
	return nil
}
