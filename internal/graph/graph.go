// Package graph provides the dependency graph over task start and end nodes.
package graph

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/ShayCichocki/garagepm/pkg/models"
)

var (
	// ErrUnknownNode indicates an edge endpoint that was never added.
	ErrUnknownNode = errors.New("unknown node")
)

// Node is one of the two graph vertices of a task.
type Node struct {
	Task models.TaskID
	Kind models.NodeKind
}

// Start returns the start node of id.
func Start(id models.TaskID) Node { return Node{Task: id, Kind: models.NodeStart} }

// End returns the end node of id.
func End(id models.TaskID) Node { return Node{Task: id, Kind: models.NodeEnd} }

func (n Node) String() string {
	return fmt.Sprintf("%s.%s", n.Task.Short(), n.Kind)
}

// Edge is a directed edge. From depends on To.
type Edge struct {
	From   Node
	To     Node
	Active bool
}

// DependencyGraph is a directed graph of task nodes.
// Edge X -> Y reads "X depends on Y". Every edge carries an activity flag;
// inactive edges are ignored by consumers that only care about live
// dependencies but still count for cycle detection.
type DependencyGraph struct {
	mu sync.RWMutex
	// seq records insertion order, used for deterministic iteration.
	seq  map[Node]uint64
	next uint64
	// out maps a node to the nodes it depends on, with activity flags.
	out map[Node]map[Node]bool
	// in maps a node to the nodes depending on it.
	in map[Node]map[Node]struct{}
	// debugLog is an optional logging function.
	debugLog func(format string, args ...interface{})
}

// New creates a new empty dependency graph.
func New() *DependencyGraph {
	return &DependencyGraph{
		seq:      make(map[Node]uint64),
		out:      make(map[Node]map[Node]bool),
		in:       make(map[Node]map[Node]struct{}),
		debugLog: func(format string, args ...interface{}) {},
	}
}

// SetDebugLog sets the debug logging function.
func (g *DependencyGraph) SetDebugLog(fn func(format string, args ...interface{})) {
	if fn != nil {
		g.debugLog = fn
	}
}

// AddNode adds n. Adding an existing node is a no-op.
func (g *DependencyGraph) AddNode(n Node) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, ok := g.seq[n]; ok {
		return
	}
	g.seq[n] = g.next
	g.next++
	g.out[n] = make(map[Node]bool)
	g.in[n] = make(map[Node]struct{})
	g.debugLog("[graph.AddNode] %s", n)
}

// RemoveNode removes n along with every incident edge.
func (g *DependencyGraph) RemoveNode(n Node) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, ok := g.seq[n]; !ok {
		return
	}
	for to := range g.out[n] {
		delete(g.in[to], n)
	}
	for from := range g.in[n] {
		delete(g.out[from], n)
	}
	delete(g.out, n)
	delete(g.in, n)
	delete(g.seq, n)
	g.debugLog("[graph.RemoveNode] %s", n)
}

// HasNode reports whether n is in the graph.
func (g *DependencyGraph) HasNode(n Node) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	_, ok := g.seq[n]
	return ok
}

// Size returns the number of nodes.
func (g *DependencyGraph) Size() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.seq)
}

// AddEdge adds from -> to, or updates its activity if it exists.
func (g *DependencyGraph) AddEdge(from, to Node, active bool) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, ok := g.seq[from]; !ok {
		return fmt.Errorf("add edge %s -> %s: %w %s", from, to, ErrUnknownNode, from)
	}
	if _, ok := g.seq[to]; !ok {
		return fmt.Errorf("add edge %s -> %s: %w %s", from, to, ErrUnknownNode, to)
	}
	g.out[from][to] = active
	g.in[to][from] = struct{}{}
	g.debugLog("[graph.AddEdge] %s -> %s active=%v", from, to, active)
	return nil
}

// RemoveEdge removes from -> to. It returns false if there was no such edge.
func (g *DependencyGraph) RemoveEdge(from, to Node) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, ok := g.out[from][to]; !ok {
		return false
	}
	delete(g.out[from], to)
	delete(g.in[to], from)
	g.debugLog("[graph.RemoveEdge] %s -> %s", from, to)
	return true
}

// HasEdge reports whether from -> to exists, active or not.
func (g *DependencyGraph) HasEdge(from, to Node) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	_, ok := g.out[from][to]
	return ok
}

// IsActive reports whether from -> to exists and is active.
func (g *DependencyGraph) IsActive(from, to Node) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.out[from][to]
}

// SetActive changes the activity of an existing edge.
// It returns false if the edge does not exist.
func (g *DependencyGraph) SetActive(from, to Node, active bool) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, ok := g.out[from][to]; !ok {
		return false
	}
	g.out[from][to] = active
	return true
}

// Successors returns the nodes n depends on, in insertion order.
// With activeOnly set, inactive edges are skipped.
func (g *DependencyGraph) Successors(n Node, activeOnly bool) []Node {
	g.mu.RLock()
	defer g.mu.RUnlock()

	var nodes []Node
	for to, active := range g.out[n] {
		if activeOnly && !active {
			continue
		}
		nodes = append(nodes, to)
	}
	g.sortLocked(nodes)
	return nodes
}

// Predecessors returns the nodes depending on n, in insertion order.
// With activeOnly set, inactive edges are skipped.
func (g *DependencyGraph) Predecessors(n Node, activeOnly bool) []Node {
	g.mu.RLock()
	defer g.mu.RUnlock()

	var nodes []Node
	for from := range g.in[n] {
		if activeOnly && !g.out[from][n] {
			continue
		}
		nodes = append(nodes, from)
	}
	g.sortLocked(nodes)
	return nodes
}

// Edges returns a snapshot of every edge, ordered by source then target
// insertion order.
func (g *DependencyGraph) Edges() []Edge {
	g.mu.RLock()
	defer g.mu.RUnlock()

	var edges []Edge
	for from, tos := range g.out {
		for to, active := range tos {
			edges = append(edges, Edge{From: from, To: to, Active: active})
		}
	}
	sort.Slice(edges, func(i, j int) bool {
		a, b := edges[i], edges[j]
		if g.seq[a.From] != g.seq[b.From] {
			return g.seq[a.From] < g.seq[b.From]
		}
		return g.seq[a.To] < g.seq[b.To]
	})
	return edges
}

// EdgeCount returns the number of edges.
func (g *DependencyGraph) EdgeCount() int {
	g.mu.RLock()
	defer g.mu.RUnlock()

	count := 0
	for _, tos := range g.out {
		count += len(tos)
	}
	return count
}

// HasCycle returns true if the graph contains a circular dependency.
// Uses depth-first search with coloring to detect back edges.
func (g *DependencyGraph) HasCycle() bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.hasCycleLocked()
}

func (g *DependencyGraph) hasCycleLocked() bool {
	// 0 = unvisited, 1 = in progress, 2 = done.
	colors := make(map[Node]int, len(g.seq))

	var visit func(n Node) bool
	visit = func(n Node) bool {
		colors[n] = 1
		for to := range g.out[n] {
			switch colors[to] {
			case 1:
				return true
			case 0:
				if visit(to) {
					return true
				}
			}
		}
		colors[n] = 2
		return false
	}

	for _, n := range g.nodesLocked() {
		if colors[n] == 0 && visit(n) {
			return true
		}
	}
	return false
}

// SimpleCycles returns every elementary cycle of the graph. Each cycle starts
// at its earliest inserted node and does not repeat it at the end. The result
// is ordered by component, then by starting node, then by DFS order.
func (g *DependencyGraph) SimpleCycles() [][]Node {
	g.mu.RLock()
	defer g.mu.RUnlock()

	var cycles [][]Node
	for _, comp := range g.componentsLocked() {
		members := make(map[Node]bool, len(comp))
		for _, n := range comp {
			members[n] = true
		}
		if len(comp) == 1 {
			n := comp[0]
			if _, self := g.out[n][n]; self {
				cycles = append(cycles, []Node{n})
			}
			continue
		}
		for _, root := range comp {
			cycles = append(cycles, g.cyclesFromLocked(root, members)...)
		}
	}

	if len(cycles) > 0 {
		g.debugLog("[graph.SimpleCycles] found %d cycles", len(cycles))
	}
	return cycles
}

// cyclesFromLocked enumerates cycles through root that only visit component
// members inserted after root.
func (g *DependencyGraph) cyclesFromLocked(root Node, members map[Node]bool) [][]Node {
	var cycles [][]Node
	rootSeq := g.seq[root]
	onPath := map[Node]bool{root: true}
	path := []Node{root}

	var walk func(n Node)
	walk = func(n Node) {
		for _, to := range g.sortedOutLocked(n) {
			if to == root {
				cycle := make([]Node, len(path))
				copy(cycle, path)
				cycles = append(cycles, cycle)
				continue
			}
			if !members[to] || onPath[to] || g.seq[to] < rootSeq {
				continue
			}
			onPath[to] = true
			path = append(path, to)
			walk(to)
			path = path[:len(path)-1]
			delete(onPath, to)
		}
	}
	walk(root)
	return cycles
}

// componentsLocked returns the strongly connected components (Tarjan), each
// sorted by insertion order, ordered by their first node.
func (g *DependencyGraph) componentsLocked() [][]Node {
	index := make(map[Node]int, len(g.seq))
	low := make(map[Node]int, len(g.seq))
	onStack := make(map[Node]bool)
	var stack []Node
	var comps [][]Node
	counter := 0

	var strongConnect func(n Node)
	strongConnect = func(n Node) {
		index[n] = counter
		low[n] = counter
		counter++
		stack = append(stack, n)
		onStack[n] = true

		for _, to := range g.sortedOutLocked(n) {
			if _, seen := index[to]; !seen {
				strongConnect(to)
				low[n] = min(low[n], low[to])
			} else if onStack[to] {
				low[n] = min(low[n], index[to])
			}
		}

		if low[n] == index[n] {
			var comp []Node
			for {
				top := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				delete(onStack, top)
				comp = append(comp, top)
				if top == n {
					break
				}
			}
			g.sortLocked(comp)
			comps = append(comps, comp)
		}
	}

	for _, n := range g.nodesLocked() {
		if _, seen := index[n]; !seen {
			strongConnect(n)
		}
	}

	sort.Slice(comps, func(i, j int) bool {
		return g.seq[comps[i][0]] < g.seq[comps[j][0]]
	})
	return comps
}

func (g *DependencyGraph) nodesLocked() []Node {
	nodes := make([]Node, 0, len(g.seq))
	for n := range g.seq {
		nodes = append(nodes, n)
	}
	g.sortLocked(nodes)
	return nodes
}

func (g *DependencyGraph) sortedOutLocked(n Node) []Node {
	nodes := make([]Node, 0, len(g.out[n]))
	for to := range g.out[n] {
		nodes = append(nodes, to)
	}
	g.sortLocked(nodes)
	return nodes
}

func (g *DependencyGraph) sortLocked(nodes []Node) {
	sort.Slice(nodes, func(i, j int) bool { return g.seq[nodes[i]] < g.seq[nodes[j]] })
}

// FormatCycle renders a cycle as "a.start -> b.end -> a.start" using name to
// label tasks.
func FormatCycle(cycle []Node, name func(models.TaskID) string) string {
	if len(cycle) == 0 {
		return ""
	}
	parts := make([]string, 0, len(cycle)+1)
	for _, n := range cycle {
		parts = append(parts, fmt.Sprintf("%s.%s", name(n.Task), n.Kind))
	}
	parts = append(parts, fmt.Sprintf("%s.%s", name(cycle[0].Task), cycle[0].Kind))
	return strings.Join(parts, " -> ")
}
