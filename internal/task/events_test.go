package task

import (
	"strings"
	"testing"

	"github.com/ShayCichocki/garagepm/pkg/models"
)

func TestEventBus_SubscribeOrderAndUnsubscribe(t *testing.T) {
	b := newEventBus()
	var calls []string

	unsubA := b.Subscribe(func(Event) { calls = append(calls, "a") })
	b.SubscribeTask("t1", func(Event) { calls = append(calls, "t1") })
	b.Subscribe(func(Event) { calls = append(calls, "b") })

	b.emit(Event{Type: EventNameChanged, Task: "t1"})
	if got := strings.Join(calls, ","); got != "a,t1,b" {
		t.Errorf("calls = %s, want a,t1,b", got)
	}

	calls = nil
	b.emit(Event{Type: EventNameChanged, Task: "t2"})
	if got := strings.Join(calls, ","); got != "a,b" {
		t.Errorf("calls = %s, want a,b", got)
	}

	calls = nil
	unsubA()
	unsubA()
	b.emit(Event{Type: EventNameChanged, Task: "t1"})
	if got := strings.Join(calls, ","); got != "t1,b" {
		t.Errorf("calls = %s, want t1,b", got)
	}
}

func TestEventBus_ListenerMaySubscribe(t *testing.T) {
	b := newEventBus()
	var late int
	b.Subscribe(func(Event) {
		b.Subscribe(func(Event) { late++ })
	})

	b.emit(Event{Type: EventNameChanged, Task: "t"})
	if late != 0 {
		t.Errorf("listener added during emit ran %d times, want 0", late)
	}
	b.emit(Event{Type: EventNameChanged, Task: "t"})
	if late != 1 {
		t.Errorf("late = %d, want 1", late)
	}
}

func TestEventBus_UnsubscribeTask(t *testing.T) {
	b := newEventBus()
	var n int
	unsub := b.SubscribeTask("t", func(Event) { n++ })
	unsub()

	b.emit(Event{Type: EventNameChanged, Task: "t"})
	if n != 0 {
		t.Errorf("unsubscribed listener ran %d times", n)
	}
	if len(b.perTask) != 0 {
		t.Errorf("perTask = %v, want empty", b.perTask)
	}
}

func TestEvents_ListenerSeesCommittedState(t *testing.T) {
	c, _ := newTestContext(t)
	a := build(t, c, `
- name: A
`)["A"]

	var seen models.PlanningState
	c.Events().SubscribeTask(a.ID(), func(e Event) {
		if e.Type == EventPlanningStateChanged {
			seen = a.PlanningState()
		}
	})
	if err := a.SetPlanningState(models.PlanningStateCancelled); err != nil {
		t.Fatalf("SetPlanningState: %v", err)
	}
	if seen != models.PlanningStateCancelled {
		t.Errorf("listener saw %q, want cancelled", seen)
	}
}

func TestValidate_HasNoSideEffects(t *testing.T) {
	c, _ := newTestContext(t)
	tasks := build(t, c, `
- name: A
- name: B
  children:
    - name: B1
- name: C
`)
	spend(t, tasks["A"], -60, -30)
	edges := c.Graph().Edges()
	r := record(c)

	if err := tasks["A"].ValidateMove(tasks["C"], 0); err != nil {
		t.Errorf("ValidateMove: %v", err)
	}
	if err := tasks["C"].ValidateMove(tasks["B"], 1); err != nil {
		t.Errorf("ValidateMove: %v", err)
	}
	if err := tasks["A"].ValidateSetPlanningState(models.PlanningStateFinished); err != nil {
		t.Errorf("ValidateSetPlanningState: %v", err)
	}
	if err := tasks["C"].ValidateSetDelegated(true); err != nil {
		t.Errorf("ValidateSetDelegated: %v", err)
	}
	wantErr(t, tasks["C"].ValidateSetPlanningState(models.PlanningStateFinished), ErrInvalidValue, "Cannot finish a task effortlessly")

	if len(r.events) != 0 {
		t.Errorf("validation emitted %v", r.events)
	}
	if got := names(c.Root().Children()); got != "A,B,C" {
		t.Errorf("root children = %s, want A,B,C", got)
	}
	if got := names(tasks["B"].Children()); got != "B1" {
		t.Errorf("B children = %s, want B1", got)
	}
	if tasks["A"].IsFinished() || tasks["C"].IsDelegated() {
		t.Error("validation changed task state")
	}
	after := c.Graph().Edges()
	if len(after) != len(edges) {
		t.Fatalf("edges = %d, want %d", len(after), len(edges))
	}
	for i := range edges {
		if edges[i] != after[i] {
			t.Errorf("edge[%d] = %v, want %v", i, after[i], edges[i])
		}
	}
}
