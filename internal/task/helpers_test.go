package task

import (
	"errors"
	"strings"
	"testing"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/ShayCichocki/garagepm/internal/graph"
	"github.com/ShayCichocki/garagepm/internal/interval"
	"github.com/ShayCichocki/garagepm/pkg/models"
)

var epoch = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

// fakeClock is a settable time source.
type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

// outlineNode is one entry of a YAML task outline.
type outlineNode struct {
	Name      string        `yaml:"name"`
	Delegated bool          `yaml:"delegated"`
	Children  []outlineNode `yaml:"children"`
}

// newTestContext returns a context on a fake clock set to epoch.
func newTestContext(t *testing.T, opts ...Option) (*Context, *fakeClock) {
	t.Helper()
	clock := &fakeClock{now: epoch}
	opts = append([]Option{WithClock(clock.Now)}, opts...)
	return NewContext(opts...), clock
}

// build creates the tasks of a YAML outline under the root and returns them
// by name.
func build(t *testing.T, c *Context, outline string) map[string]*Task {
	t.Helper()
	var nodes []outlineNode
	if err := yaml.Unmarshal([]byte(outline), &nodes); err != nil {
		t.Fatalf("parse outline: %v", err)
	}
	tasks := make(map[string]*Task)
	var add func(parent *Task, nodes []outlineNode)
	add = func(parent *Task, nodes []outlineNode) {
		for _, n := range nodes {
			created, err := c.Root().AppendNewTask(n.Name)
			if err != nil {
				t.Fatalf("AppendNewTask(%q): %v", n.Name, err)
			}
			if parent != c.Root() {
				if err := created.Move(parent, len(parent.Children())); err != nil {
					t.Fatalf("Move(%q, %q): %v", n.Name, parent.Name(), err)
				}
			}
			tasks[n.Name] = created
			add(created, n.Children)
			if n.Delegated {
				if err := created.SetDelegated(true); err != nil {
					t.Fatalf("SetDelegated(%q): %v", n.Name, err)
				}
			}
		}
	}
	add(c.Root(), nodes)
	return tasks
}

// recorder collects committed events.
type recorder struct {
	events []Event
}

func record(c *Context) *recorder {
	r := &recorder{}
	c.Events().Subscribe(func(e Event) { r.events = append(r.events, e) })
	return r
}

func (r *recorder) count(typ EventType, task *Task) int {
	n := 0
	for _, e := range r.events {
		if e.Type == typ && e.Task == task.ID() {
			n++
		}
	}
	return n
}

func (r *recorder) reset() { r.events = nil }

// at returns epoch plus the given number of minutes.
func at(minutes int) time.Time {
	return epoch.Add(time.Duration(minutes) * time.Minute)
}

// span returns the interval [epoch+from, epoch+to) in minutes.
func span(from, to int) interval.Interval {
	return interval.MustNew(at(from), at(to))
}

// spend gives t effort in the past so it can be finished.
func spend(t *testing.T, task *Task, from, to int) {
	t.Helper()
	if err := task.InsertEffortSpent(len(task.CommittedEffortSpent()), span(from, to)); err != nil {
		t.Fatalf("InsertEffortSpent(%s): %v", task.Name(), err)
	}
}

func finish(t *testing.T, task *Task) {
	t.Helper()
	if err := task.SetPlanningState(models.PlanningStateFinished); err != nil {
		t.Fatalf("finish %s: %v", task.Name(), err)
	}
}

func names(tasks []*Task) string {
	out := make([]string, len(tasks))
	for i, t := range tasks {
		out[i] = t.Name()
	}
	return strings.Join(out, ",")
}

// wantErr checks err against kind and, when msg is set, its exact message.
func wantErr(t *testing.T, err error, kind error, msg string) {
	t.Helper()
	if err == nil {
		t.Fatalf("error = nil, want %v", kind)
	}
	if !errors.Is(err, kind) {
		t.Fatalf("error = %v, want kind %v", err, kind)
	}
	if msg != "" && err.Error() != msg {
		t.Errorf("error message = %q, want %q", err.Error(), msg)
	}
}

// wantEdges checks the graph still holds exactly the edges in before.
func wantEdges(t *testing.T, c *Context, before []graph.Edge) {
	t.Helper()
	after := c.Graph().Edges()
	if len(after) != len(before) {
		t.Fatalf("edges = %d, want %d", len(after), len(before))
	}
	for i := range before {
		if before[i] != after[i] {
			t.Errorf("edge[%d] = %v, want %v", i, after[i], before[i])
		}
	}
}
