package task

import (
	"github.com/ShayCichocki/garagepm/pkg/models"
)

// InsertChildren inserts orphans as children of t, starting at index. An
// effort leaf without effort spent becomes a branch.
func (t *Task) InsertChildren(index int, children ...*Task) error {
	return t.insertChildrenChecked(index, children, false)
}

// ValidateInsertChildren returns the error InsertChildren would return,
// without changing anything.
func (t *Task) ValidateInsertChildren(index int, children ...*Task) error {
	return t.insertChildrenChecked(index, children, true)
}

func (t *Task) insertChildrenChecked(index int, children []*Task, dry bool) error {
	if err := t.checkAlive(); err != nil {
		return err
	}
	tx := t.ctx.begin("InsertChildren")
	tx.watch(t)
	tx.watch(children...)
	err := t.insertChildren(tx, index, children)
	if err == nil {
		err = tx.validateInsert(t, "Inserting into '"+t.name+"' would cause a dependency cycle")
	}
	return tx.finish(err, dry)
}

// insertChildren checks arguments against the current state and attaches
// the children. It leaves invariant validation to the caller.
func (t *Task) insertChildren(tx *tx, index int, children []*Task) error {
	if len(children) == 0 {
		return nil
	}
	switch p := t.variant.(type) {
	case *delegatedLeaf:
		return illegalOperation("Cannot add child tasks to a delegated task")
	case *effortLeaf:
		if len(p.spent) > 0 {
			return illegalOperation("Leaf task with effort spent on it cannot become a branch task")
		}
		if t.ctx.tracker.task == t {
			return illegalOperation("Cannot add child tasks to a task that is being time tracked")
		}
	}
	if n := len(t.Children()); index < 0 || index > n {
		return invalidValue("Child index %d out of range [0, %d]", index, n)
	}

	seen := make(map[models.TaskID]bool, len(children))
	for _, c := range children {
		if err := t.checkSameContext(c); err != nil {
			return err
		}
		switch {
		case c.root:
			return invalidValue("Cannot make the root task a child")
		case c == t || c.isAncestorOf(t):
			return invalidValue("Cannot insert a task into itself or one of its descendants")
		case c.parent == t.id:
			return invalidValue("Cannot add tasks as child when they're already a child of this task")
		case c.parent != "":
			return invalidValue("May only make orphans into children of a task")
		case seen[c.id]:
			return invalidValue("Cannot insert task '%s' twice", c.name)
		}
		seen[c.id] = true
	}

	if t.IsLeaf() {
		tx.setVariant(t, &branch{})
	}
	for i, c := range children {
		tx.attach(t, index+i, c)
	}
	tx.emit(EventChildrenChanged, t)
	return nil
}

// validateInsert checks the graph after children were inserted into target.
func (tx *tx) validateInsert(target *Task, cyclePrefix string) error {
	if err := tx.checkCycles(cyclePrefix); err != nil {
		return err
	}
	return tx.checkUnfinish(func(flipped, depender *Task) error {
		if flipped == target || flipped.isAncestorOf(target) {
			return illegalOperation("Cannot insert planned task into finished branch which is depended on (perhaps indirectly) by a finished task")
		}
		return unfinishError(flipped, depender)
	})
}

// RemoveChildren detaches the children in [begin, end) and returns them as
// orphans. An emptied non-root branch becomes a planned effort leaf.
// Orphans may be inserted elsewhere or disposed.
func (t *Task) RemoveChildren(begin, end int) ([]*Task, error) {
	if err := t.checkAlive(); err != nil {
		return nil, err
	}
	children := t.Children()
	if begin < 0 || begin > end || end > len(children) {
		return nil, invalidValue("Child range [%d, %d) out of range [0, %d]", begin, end, len(children))
	}
	if begin == end {
		return nil, nil
	}

	removed := children[begin:end]
	tx := t.ctx.begin("RemoveChildren")
	tx.watch(t)
	for _, c := range removed {
		tx.detach(c)
	}
	tx.revertIfEmpty(t)
	tx.emit(EventChildrenChanged, t)

	if err := tx.finish(tx.checkUnfinish(unfinishError), false); err != nil {
		return nil, err
	}
	return removed, nil
}
