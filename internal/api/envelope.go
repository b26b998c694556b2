package api

import (
	"bytes"
	"encoding/json"
	"strings"
)

// Shape records which response layout a parser matched. The root path is
// reported as "array" for lists and "object" for single records.
type Shape string

const (
	ShapeArray  Shape = "array"
	ShapeObject Shape = "object"
	ShapeEmpty  Shape = "empty"
)

// Envelope typed result of a list endpoint. Shape is ShapeEmpty when no known
// layout held a list; Items is then empty, never nil.
type Envelope[T any] struct {
	Items []T
	Shape Shape
}

func (e Envelope[T]) Empty() bool { return e.Shape == ShapeEmpty }

// lookup walks a dotted path of object keys; "" is the document itself
func lookup(body []byte, path string) (json.RawMessage, bool) {
	cur := json.RawMessage(bytes.TrimSpace(body))
	if path == "" {
		return cur, len(cur) > 0
	}
	for _, key := range strings.Split(path, ".") {
		var obj map[string]json.RawMessage
		if !isObject(cur) || json.Unmarshal(cur, &obj) != nil {
			return nil, false
		}
		next, ok := obj[key]
		if !ok {
			return nil, false
		}
		cur = bytes.TrimSpace(next)
	}
	return cur, true
}

func isObject(raw []byte) bool { return len(raw) > 0 && raw[0] == '{' }
func isArray(raw []byte) bool  { return len(raw) > 0 && raw[0] == '[' }

func shapeOf(path string, root Shape) Shape {
	if path == "" {
		return root
	}
	return Shape(path)
}

// unwrapList returns the first path, in order, whose value is a JSON array
func unwrapList(body []byte, paths ...string) (json.RawMessage, Shape) {
	for _, p := range paths {
		if raw, ok := lookup(body, p); ok && isArray(raw) {
			return raw, shapeOf(p, ShapeArray)
		}
	}
	return nil, ShapeEmpty
}

// unwrapObject returns the first path, in order, whose value is a JSON object
func unwrapObject(body []byte, paths ...string) (json.RawMessage, Shape) {
	for _, p := range paths {
		if raw, ok := lookup(body, p); ok && isObject(raw) {
			return raw, shapeOf(p, ShapeObject)
		}
	}
	return nil, ShapeEmpty
}

// decodeList unwraps body and converts each element with conv. Elements that
// are not objects or do not decode into W are skipped.
func decodeList[W, T any](body []byte, conv func(W) (T, bool), paths ...string) Envelope[T] {
	raw, shape := unwrapList(body, paths...)
	out := Envelope[T]{Items: make([]T, 0), Shape: shape}
	if shape == ShapeEmpty {
		return out
	}
	var elems []json.RawMessage
	if err := json.Unmarshal(raw, &elems); err != nil {
		out.Shape = ShapeEmpty
		return out
	}
	for _, el := range elems {
		if !isObject(bytes.TrimSpace(el)) {
			continue
		}
		var w W
		if err := json.Unmarshal(el, &w); err != nil {
			continue
		}
		if item, ok := conv(w); ok {
			out.Items = append(out.Items, item)
		}
	}
	return out
}

// decodeObject unwraps body and decodes the matched object into W
func decodeObject[W any](body []byte, paths ...string) (W, error) {
	var w W
	raw, shape := unwrapObject(body, paths...)
	if shape == ShapeEmpty {
		return w, ErrUnexpectedShape
	}
	if err := json.Unmarshal(raw, &w); err != nil {
		return w, err
	}
	return w, nil
}

// truthy converts any JSON value with JavaScript truthiness. Absent and null
// yield def.
func truthy(raw json.RawMessage, def bool) bool {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return def
	}
	switch raw[0] {
	case 't':
		return true
	case 'f':
		return false
	case '"':
		var s string
		_ = json.Unmarshal(raw, &s)
		return s != ""
	case '{', '[':
		return true
	}
	var n Numeric
	_ = n.UnmarshalJSON(raw)
	return n.Valid && !n.Value.IsZero()
}
