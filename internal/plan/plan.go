// Package plan models a fully configured build plan: the task graph
// and each task's declared input/output properties. This is the object
// graph the state cache serializes and restores.
package plan

import "fmt"

// PropertyKind distinguishes declared inputs from declared outputs.
type PropertyKind string

const (
	Input  PropertyKind = "input"
	Output PropertyKind = "output"
)

// Property is one declared task property. Value may be a scalar, a
// slice, a string-keyed map, a nested bean (struct pointer), or a live
// runtime object that cannot be cached.
type Property struct {
	Name  string
	Kind  PropertyKind
	Value any
}

// Task is one node of the configured task graph.
type Task struct {
	Path       string // e.g. ":docs:assemble"
	Type       string // task type name, e.g. "Copy"
	DependsOn  []string
	Properties []Property
}

// Graph is the configured task graph in stable configuration order.
type Graph struct {
	tasks  []*Task
	byPath map[string]*Task
}

// NewGraph returns an empty graph.
func NewGraph() *Graph {
	return &Graph{byPath: map[string]*Task{}}
}

// Add appends a task to the graph. Task paths must be unique.
func (g *Graph) Add(t *Task) error {
	if t.Path == "" {
		return fmt.Errorf("task path must not be empty")
	}
	if _, dup := g.byPath[t.Path]; dup {
		return fmt.Errorf("duplicate task path %q", t.Path)
	}
	g.tasks = append(g.tasks, t)
	g.byPath[t.Path] = t
	return nil
}

// Tasks returns the tasks in configuration order.
func (g *Graph) Tasks() []*Task { return g.tasks }

// Task looks up a task by path.
func (g *Graph) Task(path string) (*Task, bool) {
	t, ok := g.byPath[path]
	return t, ok
}

// Size returns the number of tasks.
func (g *Graph) Size() int { return len(g.tasks) }

// Validate checks that every declared dependency exists in the graph.
func (g *Graph) Validate() error {
	for _, t := range g.tasks {
		for _, dep := range t.DependsOn {
			if _, ok := g.byPath[dep]; !ok {
				return fmt.Errorf("task %q depends on unknown task %q", t.Path, dep)
			}
		}
	}
	return nil
}

// DecodedBean is the restored form of a nested bean whose concrete
// type is not reconstructible from the cached state. Field values are
// the decoded property values; dropped values are nil.
type DecodedBean struct {
	Type   string
	Fields map[string]any
}
