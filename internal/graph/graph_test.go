package graph

import (
	"errors"
	"fmt"
	"testing"

	"github.com/ShayCichocki/garagepm/pkg/models"
)

// chain builds a graph with nodes a..n added in order and the given edges.
func chain(t *testing.T, names []string, edges [][2]string) (*DependencyGraph, map[string]Node) {
	t.Helper()
	g := New()
	nodes := make(map[string]Node)
	for _, name := range names {
		n := Start(models.TaskID(name))
		nodes[name] = n
		g.AddNode(n)
	}
	for _, e := range edges {
		if err := g.AddEdge(nodes[e[0]], nodes[e[1]], true); err != nil {
			t.Fatalf("AddEdge(%s, %s): %v", e[0], e[1], err)
		}
	}
	return g, nodes
}

func TestAddEdge_UnknownNode(t *testing.T) {
	g := New()
	a := Start("a")
	g.AddNode(a)

	err := g.AddEdge(a, End("a"), true)
	if !errors.Is(err, ErrUnknownNode) {
		t.Fatalf("AddEdge() error = %v, want ErrUnknownNode", err)
	}
	if g.EdgeCount() != 0 {
		t.Errorf("EdgeCount() = %d, want 0", g.EdgeCount())
	}
}

func TestRemoveNode_DropsIncidentEdges(t *testing.T) {
	g, n := chain(t, []string{"a", "b", "c"}, [][2]string{{"a", "b"}, {"b", "c"}, {"c", "a"}})

	g.RemoveNode(n["b"])

	if g.HasNode(n["b"]) {
		t.Error("b should be removed")
	}
	if g.Size() != 2 {
		t.Errorf("Size() = %d, want 2", g.Size())
	}
	if g.EdgeCount() != 1 {
		t.Errorf("EdgeCount() = %d, want 1", g.EdgeCount())
	}
	if !g.HasEdge(n["c"], n["a"]) {
		t.Error("c -> a should survive")
	}
	if got := g.Predecessors(n["c"], false); len(got) != 0 {
		t.Errorf("Predecessors(c) = %v, want none", got)
	}
}

func TestActivity(t *testing.T) {
	g, n := chain(t, []string{"a", "b", "c"}, nil)
	if err := g.AddEdge(n["a"], n["b"], true); err != nil {
		t.Fatal(err)
	}
	if err := g.AddEdge(n["a"], n["c"], false); err != nil {
		t.Fatal(err)
	}

	if !g.IsActive(n["a"], n["b"]) || g.IsActive(n["a"], n["c"]) {
		t.Fatal("unexpected activity flags")
	}
	if got := g.Successors(n["a"], true); len(got) != 1 || got[0] != n["b"] {
		t.Errorf("active Successors(a) = %v, want [b]", got)
	}
	if got := g.Successors(n["a"], false); len(got) != 2 || got[0] != n["b"] || got[1] != n["c"] {
		t.Errorf("Successors(a) = %v, want [b c]", got)
	}
	if got := g.Predecessors(n["c"], true); len(got) != 0 {
		t.Errorf("active Predecessors(c) = %v, want none", got)
	}

	if !g.SetActive(n["a"], n["c"], true) {
		t.Fatal("SetActive on existing edge returned false")
	}
	if !g.IsActive(n["a"], n["c"]) {
		t.Error("edge should be active after SetActive")
	}
	if g.SetActive(n["b"], n["c"], true) {
		t.Error("SetActive on missing edge returned true")
	}
}

func TestRemoveEdge(t *testing.T) {
	g, n := chain(t, []string{"a", "b"}, [][2]string{{"a", "b"}})
	if !g.RemoveEdge(n["a"], n["b"]) {
		t.Fatal("RemoveEdge returned false for existing edge")
	}
	if g.RemoveEdge(n["a"], n["b"]) {
		t.Error("RemoveEdge returned true for missing edge")
	}
	if g.HasEdge(n["a"], n["b"]) {
		t.Error("edge still present")
	}
}

func TestHasCycle(t *testing.T) {
	tests := []struct {
		name  string
		edges [][2]string
		want  bool
	}{
		{"empty", nil, false},
		{"chain", [][2]string{{"a", "b"}, {"b", "c"}}, false},
		{"diamond", [][2]string{{"a", "b"}, {"a", "c"}, {"b", "d"}, {"c", "d"}}, false},
		{"triangle", [][2]string{{"a", "b"}, {"b", "c"}, {"c", "a"}}, true},
		{"self loop", [][2]string{{"d", "d"}}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, _ := chain(t, []string{"a", "b", "c", "d"}, tt.edges)
			if got := g.HasCycle(); got != tt.want {
				t.Errorf("HasCycle() = %v, want %v", got, tt.want)
			}
			if got := len(g.SimpleCycles()) > 0; got != tt.want {
				t.Errorf("SimpleCycles() non-empty = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestHasCycle_CountsInactiveEdges(t *testing.T) {
	g, n := chain(t, []string{"a", "b"}, [][2]string{{"a", "b"}})
	if err := g.AddEdge(n["b"], n["a"], false); err != nil {
		t.Fatal(err)
	}
	if !g.HasCycle() {
		t.Error("inactive edge should still close a cycle")
	}
}

func TestSimpleCycles_Enumeration(t *testing.T) {
	// Two cycles sharing a: a -> b -> a and a -> c -> d -> a, plus a
	// separate component e -> f -> e.
	g, _ := chain(t, []string{"a", "b", "c", "d", "e", "f"}, [][2]string{
		{"a", "b"}, {"b", "a"},
		{"a", "c"}, {"c", "d"}, {"d", "a"},
		{"e", "f"}, {"f", "e"},
	})

	cycles := g.SimpleCycles()
	var got []string
	for _, c := range cycles {
		got = append(got, FormatCycle(c, func(id models.TaskID) string { return string(id) }))
	}
	want := []string{
		"a.start -> b.start -> a.start",
		"a.start -> c.start -> d.start -> a.start",
		"e.start -> f.start -> e.start",
	}
	if fmt.Sprint(got) != fmt.Sprint(want) {
		t.Errorf("SimpleCycles() = %q, want %q", got, want)
	}
}

func TestSimpleCycles_RootedAtEarliestNode(t *testing.T) {
	// Insert c first so the cycle must start there even though a -> b -> c.
	g, _ := chain(t, []string{"c", "a", "b"}, [][2]string{{"a", "b"}, {"b", "c"}, {"c", "a"}})
	cycles := g.SimpleCycles()
	if len(cycles) != 1 {
		t.Fatalf("expected 1 cycle, got %d", len(cycles))
	}
	if cycles[0][0].Task != "c" {
		t.Errorf("cycle starts at %s, want c", cycles[0][0])
	}
	if len(cycles[0]) != 3 {
		t.Errorf("cycle length = %d, want 3", len(cycles[0]))
	}
}

func TestEdges_Deterministic(t *testing.T) {
	g, n := chain(t, []string{"a", "b", "c"}, [][2]string{{"c", "a"}, {"a", "c"}, {"a", "b"}})
	edges := g.Edges()
	want := []Edge{
		{From: n["a"], To: n["b"], Active: true},
		{From: n["a"], To: n["c"], Active: true},
		{From: n["c"], To: n["a"], Active: true},
	}
	if len(edges) != len(want) {
		t.Fatalf("Edges() len = %d, want %d", len(edges), len(want))
	}
	for i := range want {
		if edges[i] != want[i] {
			t.Errorf("Edges()[%d] = %v, want %v", i, edges[i], want[i])
		}
	}
}

func TestSetDebugLog(t *testing.T) {
	g := New()
	var lines int
	g.SetDebugLog(func(format string, args ...interface{}) { lines++ })
	g.SetDebugLog(nil)
	g.AddNode(Start("a"))
	if lines == 0 {
		t.Error("debug log function was not called")
	}
}

func TestFormatCycle(t *testing.T) {
	cycle := []Node{Start("t111"), End("t112"), Start("t112"), End("t111")}
	got := FormatCycle(cycle, func(id models.TaskID) string { return "task" + string(id[1:]) })
	want := "task111.start -> task112.end -> task112.start -> task111.end -> task111.start"
	if got != want {
		t.Errorf("FormatCycle() = %q, want %q", got, want)
	}
	if FormatCycle(nil, nil) != "" {
		t.Error("empty cycle should format as empty string")
	}
}
