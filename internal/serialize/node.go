// Package serialize walks a configured build plan and turns it into a
// restorable state tree, collecting a problem for every value that
// cannot be cached instead of aborting on the first failure.
package serialize

// Node kinds used in the serialized state tree.
const (
	KindNull   = "null"
	KindString = "string"
	KindInt    = "int"
	KindFloat  = "float"
	KindBool   = "bool"
	KindList   = "list"
	KindMap    = "map"
	KindBean   = "bean"
	KindCustom = "custom"
	KindRef    = "ref"
)

// Node is one value in the serialized state tree.
type Node struct {
	K string  `json:"k"`
	V any     `json:"v,omitempty"` // scalar payload
	T string  `json:"t,omitempty"` // bean/custom/ref type name
	F []Field `json:"f,omitempty"` // bean fields, declaration order
	E []Node  `json:"e,omitempty"` // list elements
	M []Entry `json:"m,omitempty"` // map entries, key order
	C *Node   `json:"c,omitempty"` // custom writer payload
}

// Field is one serialized bean field.
type Field struct {
	Name  string `json:"name"`
	Value Node   `json:"value"`
}

// Entry is one serialized map entry.
type Entry struct {
	Key   string `json:"key"`
	Value Node   `json:"value"`
}

// Null is the placeholder substituted for values that could not be
// written.
func Null() Node { return Node{K: KindNull} }

// State is the serialized form of a whole build plan.
type State struct {
	Version int         `json:"version"`
	Tasks   []TaskState `json:"tasks"`
}

// StateVersion is bumped whenever the state layout changes; blobs with
// another version are treated as unusable.
const StateVersion = 1

// TaskState is the serialized form of one task.
type TaskState struct {
	Path       string          `json:"path"`
	Type       string          `json:"type"`
	DependsOn  []string        `json:"depends_on,omitempty"`
	Properties []PropertyState `json:"properties,omitempty"`
}

// PropertyState is the serialized form of one declared property.
type PropertyState struct {
	Name  string `json:"name"`
	Kind  string `json:"kind"`
	Value Node   `json:"value"`
}
