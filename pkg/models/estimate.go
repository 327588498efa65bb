package models

// EstimateKind is the kind of effort estimate a user can make.
type EstimateKind string

const (
	// EstimateOptimistic is the best case effort.
	EstimateOptimistic EstimateKind = "optimistic"
	// EstimateLikely is the most likely effort.
	EstimateLikely EstimateKind = "likely"
	// EstimatePessimistic is the worst case effort.
	EstimatePessimistic EstimateKind = "pessimistic"
)

// EstimateKinds lists every estimate kind in display order.
var EstimateKinds = []EstimateKind{EstimateOptimistic, EstimateLikely, EstimatePessimistic}

// Valid returns true if the kind is a known value.
func (k EstimateKind) Valid() bool {
	switch k {
	case EstimateOptimistic, EstimateLikely, EstimatePessimistic:
		return true
	default:
		return false
	}
}

// Weight returns the weight of the kind in the predicted effort mean.
func (k EstimateKind) Weight() int64 {
	switch k {
	case EstimateOptimistic, EstimatePessimistic:
		return 1
	case EstimateLikely:
		return 4
	default:
		return 0
	}
}

// NodeKind distinguishes the two dependency graph nodes of a task.
type NodeKind string

const (
	// NodeStart is the node other work waits on before the task may start.
	NodeStart NodeKind = "start"
	// NodeEnd is the node that completes when the task finishes.
	NodeEnd NodeKind = "end"
)
