// Package problems defines the problem model collected while caching
// instant execution state: what went wrong, where in the object graph
// it was found, and how severe it is.
package problems

import (
	"fmt"
	"strings"
)

// Kind classifies a problem's severity.
type Kind int

const (
	// KindWarning marks a value that could not be cached but whose
	// omission does not corrupt the stored state.
	KindWarning Kind = iota
	// KindError marks a failure of the serialization itself, e.g. a
	// custom state writer that threw.
	KindError
)

func (k Kind) String() string {
	if k == KindError {
		return "error"
	}
	return "warning"
}

// FieldRef identifies one nested bean field on the path to a problem,
// outermost first.
type FieldRef struct {
	Name     string
	BeanType string
}

// Origin identifies where in the object graph a problem was found: a
// task, one of its declared properties, and optionally a chain of
// nested bean fields below that property.
type Origin struct {
	TaskPath string
	TaskType string
	Property string
	PropKind string // "input" or "output", empty for task-level problems
	Fields   []FieldRef
}

// TaskOrigin returns an origin pointing at a task itself.
func TaskOrigin(path, taskType string) Origin {
	return Origin{TaskPath: path, TaskType: taskType}
}

// PropertyOrigin returns an origin pointing at a declared property.
func PropertyOrigin(path, taskType, kind, name string) Origin {
	return Origin{TaskPath: path, TaskType: taskType, PropKind: kind, Property: name}
}

// Field returns a copy of the origin descended into a bean field.
func (o Origin) Field(name, beanType string) Origin {
	fields := make([]FieldRef, 0, len(o.Fields)+1)
	fields = append(fields, o.Fields...)
	fields = append(fields, FieldRef{Name: name, BeanType: beanType})
	o.Fields = fields
	return o
}

// String renders the origin innermost-first, e.g.
//
//	field 'project' from type 'NestedBean' of input property 'bean' of task ':broken' (type 'Echo')
func (o Origin) String() string {
	var b strings.Builder
	for i := len(o.Fields) - 1; i >= 0; i-- {
		f := o.Fields[i]
		fmt.Fprintf(&b, "field '%s' from type '%s' of ", f.Name, f.BeanType)
	}
	if o.Property != "" {
		kind := o.PropKind
		if kind == "" {
			kind = "input"
		}
		fmt.Fprintf(&b, "%s property '%s' of ", kind, o.Property)
	}
	if o.TaskPath != "" {
		fmt.Fprintf(&b, "task '%s' (type '%s')", o.TaskPath, o.TaskType)
	} else {
		b.WriteString("unknown location")
	}
	return b.String()
}

// scope renders the part of the origin carried in the problem message,
// which is also the uniqueness key. Problems nested inside a bean are
// scoped by their field chain alone, so the same bean defect surfacing
// under several tasks collapses to one unique problem; property- and
// task-level problems keep the full location.
func (o Origin) scope() string {
	if len(o.Fields) == 0 {
		return o.String()
	}
	var b strings.Builder
	for i := len(o.Fields) - 1; i >= 0; i-- {
		if i < len(o.Fields)-1 {
			b.WriteString(" of ")
		}
		f := o.Fields[i]
		fmt.Fprintf(&b, "field '%s' from type '%s'", f.Name, f.BeanType)
	}
	return b.String()
}

// Problem is one recorded issue about one object or property found
// during serialization. Problems are immutable once recorded; Seq is
// assigned by the Collector.
type Problem struct {
	Message string
	Kind    Kind
	Origin  Origin
	Cause   error  // underlying error, nil for plain unsupported-type notes
	Trace   string // captured stack trace, empty when no real error was involved
	Seq     int
}

// New builds a problem whose message carries the origin scope. The
// same issue on two different properties stays distinct in the unique
// index, while a bean field defect keeps one message no matter how
// many tasks exhibit it; the full location stays on Origin for report
// detail.
func New(kind Kind, origin Origin, detail string) Problem {
	return Problem{
		Message: origin.scope() + ": " + detail,
		Kind:    kind,
		Origin:  origin,
	}
}

// NewWithCause builds an error-kind problem carrying the underlying
// error and its captured stack trace.
func NewWithCause(origin Origin, detail string, cause error, trace string) Problem {
	p := New(KindError, origin, detail)
	p.Cause = cause
	p.Trace = trace
	return p
}
