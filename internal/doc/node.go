package doc

import (
	"fmt"
	"reflect"
	"slices"
	"time"
)

// Kind identifies which variant a Node holds.
type Kind uint8

const (
	KindScalar Kind = iota
	KindObject
	KindArray
)

func (k Kind) String() string {
	switch k {
	case KindObject:
		return "object"
	case KindArray:
		return "array"
	default:
		return "scalar"
	}
}

// Node is one value of a document tree: a scalar, an insertion-ordered
// object or a dense array. The zero value is a null scalar.
type Node struct {
	kind   Kind
	value  any
	keys   []string
	fields map[string]*Node
	items  []*Node
}

// NewObject returns an empty object node.
func NewObject() *Node {
	return &Node{kind: KindObject, fields: make(map[string]*Node)}
}

// NewArray returns an array node holding items as given, without coercion.
func NewArray(items ...*Node) *Node {
	return &Node{kind: KindArray, items: slices.Clone(items)}
}

// NewScalar wraps v without coercion.
func NewScalar(v any) *Node {
	return &Node{kind: KindScalar, value: v}
}

func (n *Node) Kind() Kind {
	return n.kind
}

// Value returns the scalar value, or nil for containers.
func (n *Node) Value() any {
	if n.kind != KindScalar {
		return nil
	}
	return n.value
}

// Len returns the number of fields or elements; scalars have length 0.
func (n *Node) Len() int {
	switch n.kind {
	case KindObject:
		return len(n.keys)
	case KindArray:
		return len(n.items)
	default:
		return 0
	}
}

// Keys returns object keys in insertion order.
func (n *Node) Keys() []string {
	return slices.Clone(n.keys)
}

// Field returns the direct child under key.
func (n *Node) Field(key string) (*Node, bool) {
	if n.kind != KindObject {
		return nil, false
	}
	child, ok := n.fields[key]
	return child, ok
}

// Index returns the direct child at i.
func (n *Node) Index(i int) (*Node, bool) {
	if n.kind != KindArray || i < 0 || i >= len(n.items) {
		return nil, false
	}
	return n.items[i], true
}

func (n *Node) IsNull() bool {
	return n.kind == KindScalar && n.value == nil
}

func (n *Node) Str() (string, bool) {
	s, ok := n.Value().(string)
	return s, ok
}

func (n *Node) Bool() (bool, bool) {
	b, ok := n.Value().(bool)
	return b, ok
}

func (n *Node) Time() (time.Time, bool) {
	t, ok := n.Value().(time.Time)
	return t, ok
}

func (n *Node) Int64() (int64, bool) {
	return toInt64(n.Value())
}

func (n *Node) Float64() (float64, bool) {
	return toFloat64(n.Value())
}

// Interface converts the tree to plain Go values: map[string]any, []any
// and the stored scalars.
func (n *Node) Interface() any {
	switch n.kind {
	case KindObject:
		out := make(map[string]any, len(n.keys))
		for _, k := range n.keys {
			out[k] = n.fields[k].Interface()
		}
		return out
	case KindArray:
		out := make([]any, len(n.items))
		for i, item := range n.items {
			out[i] = item.Interface()
		}
		return out
	default:
		return n.value
	}
}

// Clone returns a deep copy.
func (n *Node) Clone() *Node {
	if n == nil {
		return nil
	}
	switch n.kind {
	case KindObject:
		out := &Node{kind: KindObject, keys: slices.Clone(n.keys), fields: make(map[string]*Node, len(n.fields))}
		for k, v := range n.fields {
			out.fields[k] = v.Clone()
		}
		return out
	case KindArray:
		out := &Node{kind: KindArray, items: make([]*Node, len(n.items))}
		for i, item := range n.items {
			out.items[i] = item.Clone()
		}
		return out
	default:
		return &Node{kind: KindScalar, value: n.value}
	}
}

// Equal reports structural equality. Object key order is ignored, numbers
// compare by value and timestamps by instant.
func (n *Node) Equal(other *Node) bool {
	if n == nil || other == nil {
		return n == other
	}
	if n.kind != other.kind {
		return false
	}

	switch n.kind {
	case KindObject:
		if len(n.keys) != len(other.keys) {
			return false
		}
		for k, v := range n.fields {
			o, ok := other.fields[k]
			if !ok || !v.Equal(o) {
				return false
			}
		}
		return true
	case KindArray:
		return slices.EqualFunc(n.items, other.items, (*Node).Equal)
	default:
		return scalarEqual(n.value, other.value)
	}
}

func scalarEqual(a, b any) bool {
	if ta, ok := a.(time.Time); ok {
		tb, ok := b.(time.Time)
		return ok && ta.Equal(tb)
	}
	if fa, ok := toFloat64(a); ok {
		fb, ok := toFloat64(b)
		return ok && fa == fb
	}
	return reflect.DeepEqual(a, b)
}

// String renders the node as compact JSON.
func (n *Node) String() string {
	out, err := n.MarshalJSON()
	if err != nil {
		return "<invalid: " + err.Error() + ">"
	}
	return string(out)
}

// SetField stores child under the literal key, without path parsing. The
// key keeps its position when it already exists.
func (n *Node) SetField(key string, child *Node) error {
	if n.kind != KindObject {
		return fmt.Errorf("%w: set field %q on %s", ErrTypeMismatch, key, n.kind)
	}
	if child == nil {
		child = NewScalar(nil)
	}
	n.setField(key, child)
	return nil
}

func (n *Node) setField(key string, child *Node) {
	if _, exists := n.fields[key]; !exists {
		n.keys = append(n.keys, key)
	}
	n.fields[key] = child
}

func (n *Node) deleteField(key string) bool {
	if _, exists := n.fields[key]; !exists {
		return false
	}
	delete(n.fields, key)
	if i := slices.Index(n.keys, key); i >= 0 {
		n.keys = slices.Delete(n.keys, i, i+1)
	}
	return true
}

// dateWrapped unwraps the single-key {"$date": ...} legacy encoding.
func dateWrapped(n *Node) (*Node, bool) {
	if n.kind != KindObject || len(n.keys) != 1 || n.keys[0] != dateKey {
		return nil, false
	}
	return n.fields[dateKey], true
}
