package task

import (
	"time"

	"github.com/ShayCichocki/garagepm/internal/interval"
	"github.com/ShayCichocki/garagepm/pkg/models"
)

// variant is the swappable payload of a task.
type variant interface {
	kind() models.Variant
}

// leafState is shared by both leaf variants.
type leafState struct {
	state models.PlanningState
}

type effortLeaf struct {
	leafState
	estimates map[models.EstimateKind]time.Duration
	spent     []interval.Interval
}

type delegatedLeaf struct {
	leafState
	// duration is 0 when unset.
	duration time.Duration
}

type branch struct {
	children []models.TaskID
}

func newEffortLeaf(state models.PlanningState) *effortLeaf {
	return &effortLeaf{
		leafState: leafState{state: state},
		estimates: make(map[models.EstimateKind]time.Duration),
	}
}

func newDelegatedLeaf(state models.PlanningState) *delegatedLeaf {
	return &delegatedLeaf{leafState: leafState{state: state}}
}

func (*effortLeaf) kind() models.Variant    { return models.VariantEffort }
func (*delegatedLeaf) kind() models.Variant { return models.VariantDelegated }
func (*branch) kind() models.Variant        { return models.VariantBranch }

// leaf returns the leaf state of v, or nil for a branch.
func leaf(v variant) *leafState {
	switch p := v.(type) {
	case *effortLeaf:
		return &p.leafState
	case *delegatedLeaf:
		return &p.leafState
	default:
		return nil
	}
}

// predicted returns the PERT mean of the estimates, if all are set.
func (p *effortLeaf) predicted() (time.Duration, bool) {
	var sum, weights int64
	for _, k := range models.EstimateKinds {
		d, ok := p.estimates[k]
		if !ok {
			return 0, false
		}
		sum += k.Weight() * int64(d)
		weights += k.Weight()
	}
	return time.Duration(sum / weights), true
}

func (p *effortLeaf) indexOf(iv interval.Interval) int {
	for i, s := range p.spent {
		if s.Equal(iv) {
			return i
		}
	}
	return -1
}
