package task

import (
	"sort"
	"sync"

	"github.com/ShayCichocki/garagepm/pkg/models"
)

// EventType represents the type of task change event.
type EventType string

const (
	// EventNameChanged indicates a task was renamed.
	EventNameChanged EventType = "name_changed"
	// EventDescriptionChanged indicates a task description changed.
	EventDescriptionChanged EventType = "description_changed"
	// EventPlanningStateChanged indicates the explicit or derived planning state changed.
	EventPlanningStateChanged EventType = "planning_state_changed"
	// EventEffortEstimateChanged indicates one estimate changed. Event.Estimate names it.
	EventEffortEstimateChanged EventType = "effort_estimate_changed"
	// EventPredictedEffortChanged indicates the predicted effort changed.
	EventPredictedEffortChanged EventType = "predicted_effort_changed"
	// EventEffortSpentChanged indicates committed effort intervals were inserted or removed.
	EventEffortSpentChanged EventType = "effort_spent_changed"
	// EventActualEffortChanged indicates the actual effort changed, directly or through children.
	EventActualEffortChanged EventType = "actual_effort_changed"
	// EventDurationChanged indicates a delegated task's duration changed.
	EventDurationChanged EventType = "duration_changed"
	// EventVariantChanged indicates the task switched between effort, delegated and branch.
	EventVariantChanged EventType = "variant_changed"
	// EventChildrenChanged indicates children were inserted or removed.
	EventChildrenChanged EventType = "children_changed"
	// EventDependenciesChanged indicates the explicit dependency list changed.
	EventDependenciesChanged EventType = "dependencies_changed"
	// EventTaskDisposed indicates the task was removed from the tree for good.
	EventTaskDisposed EventType = "task_disposed"
	// EventTrackingChanged indicates time tracking started or stopped on the task.
	EventTrackingChanged EventType = "tracking_changed"
	// EventCurrentIntervalChanged indicates the live tracker interval changed.
	EventCurrentIntervalChanged EventType = "current_interval_changed"
)

// Event is a committed change to a task.
type Event struct {
	// Type is the kind of event.
	Type EventType
	// Task is the affected task.
	Task models.TaskID
	// Estimate is set for effort_estimate_changed events.
	Estimate models.EstimateKind
}

// Listener receives events synchronously, on the goroutine that committed
// the change.
type Listener func(Event)

// EventBus delivers events to global and per-task listeners.
// Listeners run in subscription order.
type EventBus struct {
	mu      sync.RWMutex
	nextID  int
	global  map[int]Listener
	perTask map[models.TaskID]map[int]Listener
}

func newEventBus() *EventBus {
	return &EventBus{
		global:  make(map[int]Listener),
		perTask: make(map[models.TaskID]map[int]Listener),
	}
}

// Subscribe registers fn for every event. Call the returned function to
// unsubscribe.
func (b *EventBus) Subscribe(fn Listener) func() {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.nextID
	b.nextID++
	b.global[id] = fn
	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.global, id)
	}
}

// SubscribeTask registers fn for events about one task.
func (b *EventBus) SubscribeTask(task models.TaskID, fn Listener) func() {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.nextID
	b.nextID++
	if b.perTask[task] == nil {
		b.perTask[task] = make(map[int]Listener)
	}
	b.perTask[task][id] = fn
	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.perTask[task], id)
		if len(b.perTask[task]) == 0 {
			delete(b.perTask, task)
		}
	}
}

// emit calls listeners outside the lock so they may subscribe or mutate.
func (b *EventBus) emit(e Event) {
	b.mu.RLock()
	type entry struct {
		id int
		fn Listener
	}
	var listeners []entry
	for id, fn := range b.global {
		listeners = append(listeners, entry{id, fn})
	}
	for id, fn := range b.perTask[e.Task] {
		listeners = append(listeners, entry{id, fn})
	}
	b.mu.RUnlock()

	sort.Slice(listeners, func(i, j int) bool { return listeners[i].id < listeners[j].id })
	for _, l := range listeners {
		l.fn(e)
	}
}

// dropTask forgets per-task listeners of a disposed task.
func (b *EventBus) dropTask(task models.TaskID) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.perTask, task)
}
