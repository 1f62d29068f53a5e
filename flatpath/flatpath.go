// Package flatpath converts nested JSON objects into flat mappings keyed by
// dot-joined key paths, and back.
//
//	{"nav": {"home": "Home"}, "title": "Hi"}
//
// flattens to
//
//	nav.home -> "Home"
//	title    -> "Hi"
//
// Only objects are descended into; strings, numbers, booleans, null and
// arrays are leaves. Keys that themselves contain the separator cannot be
// told apart from nested keys after flattening; that is a known limitation.
package flatpath

import (
	"strings"

	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/jacktools/transbuilder/jsonvalue"
)

// Separator joins key path segments.
const Separator = "."

// Map is an insertion-ordered mapping from key path to leaf value.
type Map struct {
	entries *orderedmap.OrderedMap[string, jsonvalue.Value]
}

// NewMap returns an empty Map.
func NewMap() *Map {
	return &Map{entries: orderedmap.New[string, jsonvalue.Value]()}
}

// Get returns the value stored under path.
func (m *Map) Get(path string) (jsonvalue.Value, bool) {
	return m.entries.Get(path)
}

// Set stores value under path. An existing path keeps its position.
func (m *Map) Set(path string, value jsonvalue.Value) {
	m.entries.Set(path, value)
}

// Len returns the number of entries.
func (m *Map) Len() int {
	return m.entries.Len()
}

// Keys returns all key paths in insertion order.
func (m *Map) Keys() []string {
	keys := make([]string, 0, m.entries.Len())
	for p := m.entries.Oldest(); p != nil; p = p.Next() {
		keys = append(keys, p.Key)
	}
	return keys
}

// Range calls fn for each entry in order until fn returns false.
func (m *Map) Range(fn func(path string, value jsonvalue.Value) bool) {
	for p := m.entries.Oldest(); p != nil; p = p.Next() {
		if !fn(p.Key, p.Value) {
			return
		}
	}
}

// Flatten walks v depth-first in key order and returns its leaves keyed by
// path. A non-object root is stored under the empty path. Empty nested
// objects contribute no entries.
func Flatten(v jsonvalue.Value) *Map {
	m := NewMap()
	if !v.IsObject() {
		m.Set("", v)
		return m
	}
	flattenInto(m, v.Object(), "")
	return m
}

func flattenInto(m *Map, obj *jsonvalue.Object, prefix string) {
	for p := obj.Oldest(); p != nil; p = p.Next() {
		path := p.Key
		if prefix != "" {
			path = prefix + Separator + p.Key
		}
		if p.Value.IsObject() {
			flattenInto(m, p.Value.Object(), path)
			continue
		}
		m.Set(path, p.Value)
	}
}

// Unflatten rebuilds a nested object from m. Sibling keys appear in the
// order their first path was seen. When paths conflict (a leaf where an
// object is needed, or the reverse) the later path wins.
func Unflatten(m *Map) jsonvalue.Value {
	root := jsonvalue.NewObject()
	m.Range(func(path string, value jsonvalue.Value) bool {
		segments := strings.Split(path, Separator)
		node := root
		for _, seg := range segments[:len(segments)-1] {
			child, ok := node.Get(seg)
			if !ok || !child.IsObject() {
				child = jsonvalue.ObjectValue(jsonvalue.NewObject())
				node.Set(seg, child)
			}
			node = child.Object()
		}
		node.Set(segments[len(segments)-1], value)
		return true
	})
	return jsonvalue.ObjectValue(root)
}
