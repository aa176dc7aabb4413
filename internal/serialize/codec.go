package serialize

import (
	"fmt"
	"reflect"

	"git.home.luguber.info/inful/buildcache/internal/problems"
)

// StateWriter lets a property value supply its own serialized form.
// Returning an error marks the value as unwritable; the walker records
// an error-kind problem and substitutes a null placeholder.
type StateWriter interface {
	WriteState() (any, error)
}

// Encoder is handed to codecs so composite values can recurse through
// the walker (which owns cycle detection and problem collection).
type Encoder interface {
	Encode(v any, at problems.Origin) Node
}

// Codec serializes values of the runtime types it claims.
type Codec interface {
	Name() string
	CanEncode(v any) bool
	Encode(enc Encoder, v any, at problems.Origin) (Node, error)
}

// Registry selects a codec by a value's runtime type, first match
// wins. Registries are immutable after construction; build custom ones
// with NewRegistry.
type Registry struct {
	codecs []Codec
}

// NewRegistry creates a registry trying the given codecs in order.
func NewRegistry(codecs ...Codec) *Registry {
	return &Registry{codecs: codecs}
}

// DefaultRegistry returns the standard codec chain. The custom-writer
// codec comes first so a value's own WriteState hook always wins over
// structural serialization.
func DefaultRegistry() *Registry {
	return NewRegistry(
		customCodec{},
		scalarCodec{},
		listCodec{},
		mapCodec{},
		beanCodec{},
	)
}

// For returns the first codec claiming the value.
func (r *Registry) For(v any) (Codec, bool) {
	for _, c := range r.codecs {
		if c.CanEncode(v) {
			return c, true
		}
	}
	return nil, false
}

// typeName renders a value's runtime type for problem messages.
func typeName(v any) string {
	if v == nil {
		return "nil"
	}
	t := reflect.TypeOf(v)
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.PkgPath() != "" {
		return t.PkgPath() + "." + t.Name()
	}
	if t.Name() != "" {
		return t.Name()
	}
	return fmt.Sprintf("%T", v)
}
