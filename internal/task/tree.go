package task

// AppendNewTask creates an effort leaf right after t among its siblings, or
// as the last child when t is the root. An empty name falls back to the
// configured default. Nothing is created when insertion fails.
func (t *Task) AppendNewTask(name string) (*Task, error) {
	if err := t.checkAlive(); err != nil {
		return nil, err
	}
	if name == "" {
		name = t.ctx.cfg.Tasks.DefaultName
	}

	parent, index := t, len(t.Children())
	if !t.root {
		parent = t.Parent()
		if parent == nil {
			return nil, illegalOperation("Cannot append a task next to an orphan")
		}
		index = indexOfID(parent.variant.(*branch).children, t.id) + 1
	}

	tx := t.ctx.begin("AppendNewTask")
	tx.watch(parent)
	created := tx.create(name)
	err := parent.insertChildren(tx, index, []*Task{created})
	if err == nil {
		err = tx.validateInsert(parent, "Inserting into '"+parent.name+"' would cause a dependency cycle")
	}
	if err := tx.finish(err, false); err != nil {
		return nil, err
	}
	t.ctx.log.Log("[task.AppendNewTask] %s %q under %q at %d", created.id.Short(), created.name, parent.name, index)
	return created, nil
}

// Move reparents t under parent at index, where index counts the children
// of parent after t has been removed from its current parent. A failed move
// leaves the tree and graph exactly as they were.
func (t *Task) Move(parent *Task, index int) error {
	return t.move(parent, index, false)
}

// ValidateMove returns the error Move would return, without changing
// anything.
func (t *Task) ValidateMove(parent *Task, index int) error {
	return t.move(parent, index, true)
}

func (t *Task) move(parent *Task, index int, dry bool) error {
	if err := t.checkAlive(); err != nil {
		return err
	}
	if t.root {
		return illegalOperation("Cannot move the root task")
	}
	if err := t.checkSameContext(parent); err != nil {
		return err
	}
	if parent == t {
		return invalidValue("Cannot move task to itself")
	}
	if t.isAncestorOf(parent) {
		return invalidValue("Cannot move task to one of its descendants")
	}

	tx := t.ctx.begin("Move")
	tx.watch(t, parent)
	if old := t.Parent(); old != nil {
		tx.detach(t)
		tx.revertIfEmpty(old)
		tx.emit(EventChildrenChanged, old)
	}
	err := parent.insertChildren(tx, index, []*Task{t})
	if err == nil {
		err = tx.validateInsert(parent, "Moving to '"+parent.name+"' would cause a dependency cycle")
	}
	if err == nil && !dry {
		t.ctx.log.Log("[task.Move] %s %q to %q at %d", t.id.Short(), t.name, parent.name, index)
	}
	return tx.finish(err, dry)
}

// Dispose removes t and its descendants for good. Tracking on a disposed
// task is cancelled, its effort intervals are released and it is dropped
// from the dependencies of its dependers.
func (t *Task) Dispose() error {
	if err := t.checkAlive(); err != nil {
		return err
	}
	if t.root {
		return illegalOperation("Cannot dispose the root task")
	}

	tx := t.ctx.begin("Dispose")
	tx.watch(t)
	subtree := append([]*Task{t}, t.Descendants()...)
	if parent := t.Parent(); parent != nil {
		tx.detach(t)
		tx.revertIfEmpty(parent)
		tx.emit(EventChildrenChanged, parent)
	}
	if err := tx.checkUnfinish(unfinishError); err != nil {
		tx.rollback()
		return err
	}

	// Past validation; the teardown below cannot fail.
	for i := len(subtree) - 1; i >= 0; i-- {
		t.ctx.teardown(tx, subtree[i])
	}
	t.ctx.log.Log("[task.Dispose] %s %q with %d descendants", t.id.Short(), t.name, len(subtree)-1)
	tx.commit()
	return nil
}

func (c *Context) teardown(tx *tx, d *Task) {
	if c.tracker.task == d {
		c.tracker.reset(tx)
	}
	for _, x := range d.Dependers() {
		x.deps = removeID(x.deps, d.id)
		tx.emit(EventDependenciesChanged, x)
	}
	tx.emit(EventTaskDisposed, d)
	c.forget(d)
	id := d.id
	tx.afterCommit(func() { c.events.dropTask(id) })
}
