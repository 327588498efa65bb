package models

import "github.com/google/uuid"

// TaskID is the stable arena key of a task.
type TaskID string

// NewTaskID returns a fresh random task ID.
func NewTaskID() TaskID {
	return TaskID(uuid.New().String())
}

// Short returns the first 8 characters of the ID, for logs.
func (id TaskID) Short() string {
	if len(id) <= 8 {
		return string(id)
	}
	return string(id[:8])
}

// PlanningState represents where a task stands in the plan.
type PlanningState string

const (
	// PlanningStateNotPlanned indicates the task is known but not scheduled.
	PlanningStateNotPlanned PlanningState = "not_planned"
	// PlanningStatePlanned indicates the task is scheduled to be done.
	PlanningStatePlanned PlanningState = "planned"
	// PlanningStateFinished indicates the task is done.
	PlanningStateFinished PlanningState = "finished"
	// PlanningStateCancelled indicates the task will not be done.
	PlanningStateCancelled PlanningState = "cancelled"
)

// PlanningStates lists every planning state in display order.
var PlanningStates = []PlanningState{
	PlanningStateNotPlanned,
	PlanningStatePlanned,
	PlanningStateFinished,
	PlanningStateCancelled,
}

// Valid returns true if the state is a known value.
func (s PlanningState) Valid() bool {
	switch s {
	case PlanningStateNotPlanned, PlanningStatePlanned, PlanningStateFinished, PlanningStateCancelled:
		return true
	default:
		return false
	}
}

// IsActive reports whether a task in this state takes part in effort and
// dependency aggregation.
func (s PlanningState) IsActive() bool {
	return s == PlanningStatePlanned || s == PlanningStateFinished
}

// Variant is the behavioral kind of a task.
type Variant string

const (
	// VariantEffort is a leaf tracked through estimates and logged effort.
	VariantEffort Variant = "effort"
	// VariantDelegated is a leaf tracked through a single assigned duration.
	VariantDelegated Variant = "delegated"
	// VariantBranch is a task with children and a derived planning state.
	VariantBranch Variant = "branch"
)

// Valid returns true if the variant is a known value.
func (v Variant) Valid() bool {
	switch v {
	case VariantEffort, VariantDelegated, VariantBranch:
		return true
	default:
		return false
	}
}

// IsLeaf reports whether tasks of this variant can have no children.
func (v Variant) IsLeaf() bool {
	return v == VariantEffort || v == VariantDelegated
}
