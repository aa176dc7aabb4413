package serialize

import (
	"context"
	"fmt"
	"reflect"
	"runtime/debug"
	"sync"

	"git.home.luguber.info/inful/buildcache/internal/plan"
	"git.home.luguber.info/inful/buildcache/internal/problems"
)

// identity keys the visited set by object identity, so shared
// references and cycles terminate and report at most once.
type identity struct {
	kind reflect.Kind
	ptr  uintptr
}

// identityOf returns an identity for reference-typed values. Values
// without a stable address (scalars, plain structs) carry no identity
// and are always encoded in place.
func identityOf(v any) (identity, bool) {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice:
		if p := rv.Pointer(); p != 0 {
			return identity{kind: rv.Kind(), ptr: p}, true
		}
	}
	return identity{}, false
}

// Walker traverses a build plan's task graph and every value reachable
// through declared properties, producing the serialized state tree.
// Individual failures never abort the walk; each becomes a problem and
// a null placeholder. Tasks are walked concurrently; the problem
// collector is the single synchronization point.
type Walker struct {
	registry  *Registry
	collector *problems.Collector

	mu   sync.Mutex
	seen map[identity]struct{}
}

// NewWalker creates a walker using the given codec registry and
// problem collector.
func NewWalker(registry *Registry, collector *problems.Collector) *Walker {
	return &Walker{
		registry:  registry,
		collector: collector,
		seen:      map[identity]struct{}{},
	}
}

// Walk serializes the whole graph. Truncation by the problem ceiling
// is reported through the collector; only context cancellation yields
// an error, in which case the partial state must not be committed.
func (w *Walker) Walk(ctx context.Context, g *plan.Graph) (*State, error) {
	tasks := g.Tasks()
	states := make([]TaskState, len(tasks))

	var wg sync.WaitGroup
	for i, t := range tasks {
		wg.Add(1)
		go func(i int, t *plan.Task) {
			defer wg.Done()
			states[i] = w.walkTask(ctx, t)
		}(i, t)
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return &State{Version: StateVersion, Tasks: states}, nil
}

func (w *Walker) walkTask(ctx context.Context, t *plan.Task) TaskState {
	ts := TaskState{Path: t.Path, Type: t.Type, DependsOn: t.DependsOn}
	for _, p := range t.Properties {
		value := Null()
		if ctx.Err() == nil && !w.collector.Stopped() {
			origin := problems.PropertyOrigin(t.Path, t.Type, string(p.Kind), p.Name)
			value = w.Encode(p.Value, origin)
		}
		ts.Properties = append(ts.Properties, PropertyState{
			Name:  p.Name,
			Kind:  string(p.Kind),
			Value: value,
		})
	}
	return ts
}

// Encode serializes a single value, recording a problem and returning
// a null placeholder when it cannot be written. It implements Encoder
// so codecs recurse back through cycle detection and the ceiling.
func (w *Walker) Encode(v any, at problems.Origin) Node {
	if v == nil || w.collector.Stopped() {
		return Null()
	}
	switch rv := reflect.ValueOf(v); rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Chan, reflect.Func, reflect.Interface:
		if rv.IsNil() {
			return Null()
		}
	}

	if Classify(v) != UnsupportedNone {
		w.collector.Record(problems.New(problems.KindWarning, at, UnsupportedMessage(v)))
		return Null()
	}

	if id, ok := identityOf(v); ok && !w.firstVisit(id) {
		return Node{K: KindRef, T: typeName(v)}
	}

	codec, ok := w.registry.For(v)
	if !ok {
		w.collector.Record(problems.New(problems.KindWarning, at, UnsupportedMessage(v)))
		return Null()
	}

	node, trace, err := w.safeEncode(codec, v, at)
	if err != nil {
		w.collector.Record(problems.NewWithCause(at, err.Error(), err, trace))
		return Null()
	}
	return node
}

// safeEncode runs one codec attempt, converting both returned errors
// and panics from user-supplied write hooks into ordinary errors with
// a captured stack trace.
func (w *Walker) safeEncode(c Codec, v any, at problems.Origin) (node Node, trace string, err error) {
	defer func() {
		if r := recover(); r != nil {
			node = Null()
			err = fmt.Errorf("error writing value of type '%s': %v", typeName(v), r)
			trace = string(debug.Stack())
		}
	}()
	node, err = c.Encode(w, v, at)
	if err != nil {
		trace = string(debug.Stack())
	}
	return node, trace, err
}

func (w *Walker) firstVisit(id identity) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, dup := w.seen[id]; dup {
		return false
	}
	w.seen[id] = struct{}{}
	return true
}
