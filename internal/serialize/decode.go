package serialize

import (
	"encoding/json"
	"fmt"

	"git.home.luguber.info/inful/buildcache/internal/plan"
)

// Decode restores a task graph from a serialized state tree. Values
// dropped during serialization come back as nil; beans whose concrete
// type cannot be reconstructed come back as *plan.DecodedBean.
func Decode(st *State) (*plan.Graph, error) {
	if st.Version != StateVersion {
		return nil, fmt.Errorf("unusable cached state: version %d, want %d", st.Version, StateVersion)
	}
	g := plan.NewGraph()
	for _, ts := range st.Tasks {
		task := &plan.Task{Path: ts.Path, Type: ts.Type, DependsOn: ts.DependsOn}
		for _, ps := range ts.Properties {
			task.Properties = append(task.Properties, plan.Property{
				Name:  ps.Name,
				Kind:  plan.PropertyKind(ps.Kind),
				Value: decodeNode(ps.Value),
			})
		}
		if err := g.Add(task); err != nil {
			return nil, fmt.Errorf("corrupt cached state: %w", err)
		}
	}
	if err := g.Validate(); err != nil {
		return nil, fmt.Errorf("corrupt cached state: %w", err)
	}
	return g, nil
}

func decodeNode(n Node) any {
	switch n.K {
	case KindString:
		if s, ok := n.V.(string); ok {
			return s
		}
		return fmt.Sprintf("%v", n.V)
	case KindBool:
		b, _ := n.V.(bool)
		return b
	case KindInt:
		return decodeInt(n.V)
	case KindFloat:
		switch f := n.V.(type) {
		case float64:
			return f
		case json.Number:
			v, _ := f.Float64()
			return v
		}
		return float64(0)
	case KindList:
		out := make([]any, 0, len(n.E))
		for _, e := range n.E {
			out = append(out, decodeNode(e))
		}
		return out
	case KindMap:
		out := make(map[string]any, len(n.M))
		for _, e := range n.M {
			out[e.Key] = decodeNode(e.Value)
		}
		return out
	case KindBean:
		bean := &plan.DecodedBean{Type: n.T, Fields: make(map[string]any, len(n.F))}
		for _, f := range n.F {
			bean.Fields[f.Name] = decodeNode(f.Value)
		}
		return bean
	case KindCustom:
		if n.C != nil {
			return decodeNode(*n.C)
		}
		return nil
	case KindRef:
		// Shared reference; the first occurrence carries the data.
		return &plan.DecodedBean{Type: n.T}
	}
	return nil
}

// decodeInt tolerates the numeric representations a JSON round trip
// can produce.
func decodeInt(v any) int64 {
	switch n := v.(type) {
	case int64:
		return n
	case int:
		return int64(n)
	case float64:
		return int64(n)
	case json.Number:
		i, _ := n.Int64()
		return i
	}
	return 0
}
