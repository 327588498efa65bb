package task

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ShayCichocki/garagepm/pkg/models"
)

// Error kinds, checked with errors.Is.
var (
	// ErrInvalidValue indicates a supplied value violates a local constraint.
	ErrInvalidValue = errors.New("invalid value")
	// ErrIllegalOperation indicates the operation is disallowed in the current state.
	ErrIllegalOperation = errors.New("illegal operation")
	// ErrDependencyCycle indicates the operation would close a dependency cycle.
	ErrDependencyCycle = errors.New("dependency cycle")
)

// Error is a domain error of a given kind. Msg is meant for end users.
type Error struct {
	Kind error
	Msg  string
}

func (e *Error) Error() string {
	return e.Msg
}

func (e *Error) Unwrap() error {
	return e.Kind
}

func invalidValue(format string, args ...interface{}) error {
	return &Error{Kind: ErrInvalidValue, Msg: fmt.Sprintf(format, args...)}
}

func illegalOperation(format string, args ...interface{}) error {
	return &Error{Kind: ErrIllegalOperation, Msg: fmt.Sprintf(format, args...)}
}

// Hop is one node of a dependency cycle, labelled by task name.
type Hop struct {
	Task string
	Kind models.NodeKind
}

func (h Hop) String() string {
	return h.Task + "." + string(h.Kind)
}

// Cycle is an ordered list of hops. The first hop is implied again at the end.
type Cycle []Hop

// String renders the cycle as "a.start -> b.end -> a.start".
func (c Cycle) String() string {
	if len(c) == 0 {
		return ""
	}
	parts := make([]string, 0, len(c)+1)
	for _, h := range c {
		parts = append(parts, h.String())
	}
	parts = append(parts, c[0].String())
	return strings.Join(parts, " -> ")
}

// DependencyCycleError is returned when an operation would make the
// dependency graph cyclic. The operation has been rolled back.
type DependencyCycleError struct {
	Msg    string
	Cycles []Cycle
}

func (e *DependencyCycleError) Error() string {
	return e.Msg
}

func (e *DependencyCycleError) Unwrap() error {
	return ErrDependencyCycle
}

func formatCycles(cycles []Cycle) string {
	parts := make([]string, len(cycles))
	for i, c := range cycles {
		parts[i] = c.String()
	}
	return strings.Join(parts, ", ")
}
