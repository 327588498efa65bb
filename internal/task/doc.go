// Package task implements the garagepm task domain.
//
// A Context owns a rooted tree of tasks. Each task is one of three variants:
//   - Effort leaf: effort estimates and logged effort-spent intervals
//   - Delegated leaf: an optional duration, no logged effort
//   - Branch: ordered children, planning state derived from them
//
// Every task has a start node and an end node in the Context's dependency
// graph. An edge X -> Y reads "X depends on Y":
//
//	child.start  -> parent.start   (always active)
//	parent.end   -> child.end      (active while the child is active)
//	leaf.end     -> leaf.start     (active)
//	task.start   -> other.end      (explicit dependency, active)
//
// The graph stays acyclic, and no finished task is allowed to become
// dependent on an unfinished one by a later change.
//
// Mutations are transactional. An operation mutates the arena and graph
// silently, validates, and either rolls back and returns an error or commits
// and emits change events on the Context's EventBus. Each guarded operation
// has a Validate twin that reports the error without side effects.
//
// Example usage:
//
//	ctx := task.NewContext()
//	root := ctx.Root()
//	chores, _ := root.AppendNewTask("Chores")
//	dishes, _ := chores.AppendNewTask("Dishes")
//	_ = dishes.Move(chores, 0)
package task
