package task

import (
	"fmt"
	"sort"
	"time"

	"github.com/ShayCichocki/garagepm/internal/config"
	"github.com/ShayCichocki/garagepm/internal/debuglog"
	"github.com/ShayCichocki/garagepm/internal/graph"
	"github.com/ShayCichocki/garagepm/pkg/models"
)

// Context owns a task tree and everything shared between its tasks: the
// dependency graph, the claimed effort intervals, the time tracker and the
// event bus. Independent contexts share nothing.
//
// A Context is not safe for concurrent use. Hosts serialize access, e.g. by
// running every call on their event loop.
type Context struct {
	cfg     *config.Config
	log     *debuglog.Logger
	ownsLog bool
	clock   func() time.Time

	graph   *graph.DependencyGraph
	tasks   map[models.TaskID]*Task
	nextSeq uint64
	root    *Task

	events  *EventBus
	tracker *TimeTracker
}

// NewContext creates a context holding only the root task.
func NewContext(opts ...Option) *Context {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}

	c := &Context{
		cfg:    o.cfg,
		log:    o.logger,
		clock:  o.clock,
		graph:  graph.New(),
		tasks:  make(map[models.TaskID]*Task),
		events: newEventBus(),
	}
	c.graph.SetDebugLog(c.log.Func())
	c.tracker = &TimeTracker{ctx: c}

	c.root = c.newTask(c.cfg.Tasks.RootName, &branch{})
	c.root.root = true

	c.log.Log("[task.NewContext] root=%s name=%q", c.root.id.Short(), c.root.name)
	return c
}

// NewContextFromConfig creates a context configured by cfg, logging to
// cfg.Debug.LogPath when set. Close releases the log file.
func NewContextFromConfig(cfg *config.Config, opts ...Option) (*Context, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	logger, err := debuglog.New(cfg.Debug.LogPath)
	if err != nil {
		return nil, fmt.Errorf("open debug log: %w", err)
	}

	opts = append([]Option{WithConfig(cfg), WithLogger(logger)}, opts...)
	c := NewContext(opts...)
	c.ownsLog = true
	return c, nil
}

// Close releases resources held by the context.
func (c *Context) Close() error {
	if c.ownsLog {
		return c.log.Close()
	}
	return nil
}

// Root returns the root task.
func (c *Context) Root() *Task {
	return c.root
}

// Task returns the live task with the given ID, or nil.
func (c *Context) Task(id models.TaskID) *Task {
	return c.tasks[id]
}

// Tasks returns every live task, including orphans, in creation order.
func (c *Context) Tasks() []*Task {
	tasks := make([]*Task, 0, len(c.tasks))
	for _, t := range c.tasks {
		tasks = append(tasks, t)
	}
	sort.Slice(tasks, func(i, j int) bool { return tasks[i].seq < tasks[j].seq })
	return tasks
}

// Graph returns the dependency graph. Callers must treat it as read-only.
func (c *Context) Graph() *graph.DependencyGraph {
	return c.graph
}

// Events returns the event bus.
func (c *Context) Events() *EventBus {
	return c.events
}

// Tracker returns the time tracker.
func (c *Context) Tracker() *TimeTracker {
	return c.tracker
}

// Config returns the configuration in use.
func (c *Context) Config() *config.Config {
	return c.cfg
}

// SetConfig replaces the configuration. Existing task names are kept; a new
// tick interval applies the next time TimeTracker.Run starts.
func (c *Context) SetConfig(cfg *config.Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	c.cfg = cfg
	c.log.Log("[task.SetConfig] default_name=%q tick_interval=%s", cfg.Tasks.DefaultName, cfg.Tracker.TickInterval)
	return nil
}

// Now returns the current time according to the context clock.
func (c *Context) Now() time.Time {
	return c.clock()
}

// newTask registers a task and its graph nodes.
func (c *Context) newTask(name string, v variant) *Task {
	t := &Task{
		ctx:     c,
		id:      models.NewTaskID(),
		seq:     c.nextSeq,
		name:    name,
		variant: v,
	}
	c.nextSeq++
	c.tasks[t.id] = t

	c.graph.AddNode(t.StartNode())
	c.graph.AddNode(t.EndNode())
	if leaf(v) != nil {
		c.mustAddEdge(t.EndNode(), t.StartNode(), true)
	}
	return t
}

// forget removes a task from the arena and the graph.
func (c *Context) forget(t *Task) {
	c.graph.RemoveNode(t.StartNode())
	c.graph.RemoveNode(t.EndNode())
	delete(c.tasks, t.id)
	t.disposed = true
}

func (c *Context) mustAddEdge(from, to graph.Node, active bool) {
	if err := c.graph.AddEdge(from, to, active); err != nil {
		panic(fmt.Sprintf("task: graph out of sync: %v", err))
	}
}

// lookup maps IDs to live tasks, skipping unknown ones.
func (c *Context) lookup(ids []models.TaskID) []*Task {
	tasks := make([]*Task, 0, len(ids))
	for _, id := range ids {
		if t := c.tasks[id]; t != nil {
			tasks = append(tasks, t)
		}
	}
	return tasks
}

// name labels a task in messages, falling back to its short ID.
func (c *Context) name(id models.TaskID) string {
	if t := c.tasks[id]; t != nil {
		return t.name
	}
	return id.Short()
}
