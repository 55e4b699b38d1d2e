package doc

import (
	"fmt"
	"strings"

	"github.com/jacoelho/dotjson/internal/dotpath"
)

// Get returns a copy of the node addressed by path.
//
// A missing object key, or a path continuing through a scalar, yields
// ErrNotFound. An array index past the end yields ErrOutOfBounds. A field
// token against an array that holds exactly one object is resolved inside
// that object; against any other array it is ErrTypeMismatch, as is an
// index token against an object.
func (n *Node) Get(path string) (*Node, error) {
	found, err := n.lookup(dotpath.Parse(path))
	if err != nil {
		return nil, fmt.Errorf("get %q: %w", path, err)
	}
	return found.Clone(), nil
}

func (n *Node) lookup(path dotpath.Path) (*Node, error) {
	tok, rest := path[0], path[1:]

	switch n.kind {
	case KindObject:
		if tok.IsIndex {
			return nil, fmt.Errorf("%w: index %s against object", ErrTypeMismatch, tok)
		}
		child, ok := n.fields[tok.Field]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrNotFound, tok.Field)
		}
		return descend(child, tok, rest)

	case KindArray:
		if !tok.IsIndex {
			if len(n.items) == 1 && n.items[0].kind == KindObject {
				return n.items[0].lookup(path)
			}
			return nil, fmt.Errorf("%w: field %q against array", ErrTypeMismatch, tok.Field)
		}
		if tok.Index >= uint64(len(n.items)) {
			return nil, fmt.Errorf("%w: index %s, length %d", ErrOutOfBounds, tok, len(n.items))
		}
		return descend(n.items[tok.Index], tok, rest)

	default:
		return nil, fmt.Errorf("%w: %q against scalar", ErrTypeMismatch, tok.Field)
	}
}

func descend(child *Node, tok dotpath.Token, rest dotpath.Path) (*Node, error) {
	if len(rest) == 0 {
		return child, nil
	}
	if child.kind == KindScalar {
		return nil, fmt.Errorf("%w: %q is a scalar", ErrNotFound, tok.Field)
	}
	return child.lookup(rest)
}

// Set coerces value and stores it at path under root, creating
// intermediate objects, or arrays when the following token is an index.
func (c Coercer) Set(root *Node, path string, value any) error {
	if root == nil {
		return fmt.Errorf("set %q: %w: nil root", path, ErrInvalidTraversal)
	}
	if err := root.assign(dotpath.Parse(path), c.Coerce(value)); err != nil {
		return fmt.Errorf("set %q: %w", path, err)
	}
	return nil
}

func (n *Node) assign(path dotpath.Path, value *Node) error {
	tok, rest := path[0], path[1:]

	switch n.kind {
	case KindObject:
		if tok.IsIndex {
			return fmt.Errorf("%w: index %s against object", ErrTypeMismatch, tok)
		}
		if len(rest) == 0 {
			n.setField(tok.Field, value)
			return nil
		}
		return assignThrough(n.fields[tok.Field], tok, rest, value, func(child *Node) {
			n.setField(tok.Field, child)
		})

	case KindArray:
		if !tok.IsIndex {
			return fmt.Errorf("%w: %q", ErrInvalidToken, tok.Field)
		}
		length := uint64(len(n.items))
		if tok.Index > length {
			return fmt.Errorf("%w: index %s, length %d", ErrOutOfBounds, tok, length)
		}
		put := func(child *Node) {
			if tok.Index == length {
				n.items = append(n.items, child)
				return
			}
			n.items[tok.Index] = child
		}
		if len(rest) == 0 {
			put(value)
			return nil
		}
		var existing *Node
		if tok.Index < length {
			existing = n.items[tok.Index]
		}
		return assignThrough(existing, tok, rest, value, put)

	default:
		return fmt.Errorf("%w: cannot set %q below a scalar", ErrInvalidTraversal, tok.Field)
	}
}

// assignThrough continues a set below slot. Empty and null slots receive a
// new container, which is attached only once the nested set succeeded.
func assignThrough(slot *Node, tok dotpath.Token, rest dotpath.Path, value *Node, attach func(*Node)) error {
	if slot != nil && slot.kind != KindScalar {
		return slot.assign(rest, value)
	}
	if slot != nil && !slot.IsNull() {
		return fmt.Errorf("%w: %q holds a scalar", ErrInvalidTraversal, tok.Field)
	}

	created := NewObject()
	if rest[0].IsIndex {
		created = NewArray()
	}
	if err := created.assign(rest, value); err != nil {
		return err
	}
	attach(created)
	return nil
}

// Contains reports whether path addresses an existing node.
//
// Unlike Get, an out-of-range index or a path continuing through a scalar
// array element reports false. A field token against an array is
// ErrInvalidToken; continuing through an object's scalar value is
// ErrTypeMismatch.
func (n *Node) Contains(path string) (bool, error) {
	ok, err := n.contains(dotpath.Parse(path))
	if err != nil {
		return false, fmt.Errorf("contains %q: %w", path, err)
	}
	return ok, nil
}

func (n *Node) contains(path dotpath.Path) (bool, error) {
	tok, rest := path[0], path[1:]

	switch n.kind {
	case KindObject:
		if tok.IsIndex {
			return false, fmt.Errorf("%w: index %s against object", ErrTypeMismatch, tok)
		}
		child, ok := n.fields[tok.Field]
		if !ok {
			return false, nil
		}
		if len(rest) == 0 {
			return true, nil
		}
		if child.kind == KindScalar {
			return false, fmt.Errorf("%w: %q is a scalar", ErrTypeMismatch, tok.Field)
		}
		return child.contains(rest)

	case KindArray:
		if !tok.IsIndex {
			return false, fmt.Errorf("%w: %q", ErrInvalidToken, tok.Field)
		}
		if tok.Index >= uint64(len(n.items)) {
			return false, nil
		}
		if len(rest) == 0 {
			return true, nil
		}
		child := n.items[tok.Index]
		if child.kind == KindScalar {
			return false, nil
		}
		return child.contains(rest)

	default:
		return false, fmt.Errorf("%w: %q against scalar", ErrTypeMismatch, tok.Field)
	}
}

// Remove deletes the key named by the last token from the object addressed
// by the rest of path. It reports whether a key was removed.
func (n *Node) Remove(path string) (bool, error) {
	p := dotpath.Parse(path)

	parent := n
	if len(p) > 1 {
		found, err := n.lookup(p.Parent())
		if err != nil {
			return false, fmt.Errorf("remove %q: %w: %w", path, ErrInvalidTraversal, err)
		}
		parent = found
	}
	if parent.kind != KindObject {
		return false, fmt.Errorf("remove %q: %w: parent is %s", path, ErrInvalidTraversal, parent.kind)
	}

	return parent.deleteField(p.Last().Field), nil
}

// Flatten maps every dotted path of an object tree to its leaf value.
// Nested objects are descended; arrays are leaves.
func (n *Node) Flatten() (map[string]*Node, error) {
	if n.kind != KindObject {
		return nil, fmt.Errorf("flatten: %w: root is %s", ErrTypeMismatch, n.kind)
	}
	out := make(map[string]*Node)
	n.flattenInto(nil, out)
	return out, nil
}

func (n *Node) flattenInto(prefix []string, out map[string]*Node) {
	for _, key := range n.keys {
		child := n.fields[key]
		full := append(prefix[:len(prefix):len(prefix)], key)
		if child.kind == KindObject {
			child.flattenInto(full, out)
			continue
		}
		out[strings.Join(full, dotpath.Separator)] = child.Clone()
	}
}
