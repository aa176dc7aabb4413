package serialize

import (
	"fmt"
	"reflect"
	"sort"

	"git.home.luguber.info/inful/buildcache/internal/problems"
)

// customCodec serializes values supplying their own WriteState hook.
type customCodec struct{}

func (customCodec) Name() string { return "custom" }

func (customCodec) CanEncode(v any) bool {
	_, ok := v.(StateWriter)
	return ok
}

func (customCodec) Encode(enc Encoder, v any, at problems.Origin) (Node, error) {
	w := v.(StateWriter)
	state, err := w.WriteState()
	if err != nil {
		return Null(), fmt.Errorf("error writing value of type '%s': %w", typeName(v), err)
	}
	inner := enc.Encode(state, at)
	return Node{K: KindCustom, T: typeName(v), C: &inner}, nil
}

// scalarCodec serializes strings, booleans and numbers.
type scalarCodec struct{}

func (scalarCodec) Name() string { return "scalar" }

func (scalarCodec) CanEncode(v any) bool {
	switch reflect.ValueOf(v).Kind() {
	case reflect.String, reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}

func (scalarCodec) Encode(_ Encoder, v any, _ problems.Origin) (Node, error) {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.String:
		return Node{K: KindString, V: rv.String()}, nil
	case reflect.Bool:
		return Node{K: KindBool, V: rv.Bool()}, nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return Node{K: KindInt, V: rv.Int()}, nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return Node{K: KindInt, V: int64(rv.Uint())}, nil
	case reflect.Float32, reflect.Float64:
		return Node{K: KindFloat, V: rv.Float()}, nil
	}
	return Null(), fmt.Errorf("scalar codec cannot encode %T", v)
}

// listCodec serializes slices and arrays element by element.
type listCodec struct{}

func (listCodec) Name() string { return "list" }

func (listCodec) CanEncode(v any) bool {
	k := reflect.ValueOf(v).Kind()
	return k == reflect.Slice || k == reflect.Array
}

func (listCodec) Encode(enc Encoder, v any, at problems.Origin) (Node, error) {
	rv := reflect.ValueOf(v)
	elems := make([]Node, 0, rv.Len())
	for i := 0; i < rv.Len(); i++ {
		elems = append(elems, enc.Encode(rv.Index(i).Interface(), at))
	}
	return Node{K: KindList, E: elems}, nil
}

// mapCodec serializes string-keyed maps in sorted key order so the
// state blob stays byte-stable across runs.
type mapCodec struct{}

func (mapCodec) Name() string { return "map" }

func (mapCodec) CanEncode(v any) bool {
	rv := reflect.ValueOf(v)
	return rv.Kind() == reflect.Map && rv.Type().Key().Kind() == reflect.String
}

func (mapCodec) Encode(enc Encoder, v any, at problems.Origin) (Node, error) {
	rv := reflect.ValueOf(v)
	keys := make([]string, 0, rv.Len())
	for _, k := range rv.MapKeys() {
		keys = append(keys, k.String())
	}
	sort.Strings(keys)
	entries := make([]Entry, 0, len(keys))
	for _, k := range keys {
		val := rv.MapIndex(reflect.ValueOf(k).Convert(rv.Type().Key())).Interface()
		entries = append(entries, Entry{Key: k, Value: enc.Encode(val, at)})
	}
	return Node{K: KindMap, M: entries}, nil
}

// beanCodec serializes plain structs (and pointers to them) by walking
// their exported fields, recursing into nested beans.
type beanCodec struct{}

func (beanCodec) Name() string { return "bean" }

func (beanCodec) CanEncode(v any) bool {
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Pointer {
		rv = rv.Elem()
	}
	return rv.Kind() == reflect.Struct
}

func (beanCodec) Encode(enc Encoder, v any, at problems.Origin) (Node, error) {
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Pointer {
		rv = rv.Elem()
	}
	beanType := typeName(v)
	rt := rv.Type()
	fields := make([]Field, 0, rt.NumField())
	for i := 0; i < rt.NumField(); i++ {
		sf := rt.Field(i)
		if !sf.IsExported() {
			continue
		}
		fieldOrigin := at.Field(sf.Name, beanType)
		fields = append(fields, Field{
			Name:  sf.Name,
			Value: enc.Encode(rv.Field(i).Interface(), fieldOrigin),
		})
	}
	return Node{K: KindBean, T: beanType, F: fields}, nil
}
