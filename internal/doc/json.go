package doc

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"
)

// MarshalJSON writes the node with object keys in insertion order and
// timestamps rendered in UTC.
func (n *Node) MarshalJSON() ([]byte, error) {
	return DefaultCoercer().Marshal(n)
}

// UnmarshalJSON replaces n with the decoded, coerced document.
func (n *Node) UnmarshalJSON(data []byte) error {
	parsed, err := DefaultCoercer().Unmarshal(data)
	if err != nil {
		return err
	}
	*n = *parsed
	return nil
}

// Marshal writes n as JSON, rendering timestamps with the coercer's codec
// and zone.
func (c Coercer) Marshal(n *Node) ([]byte, error) {
	var buf bytes.Buffer
	if err := c.writeJSON(&buf, n); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (c Coercer) writeJSON(buf *bytes.Buffer, n *Node) error {
	if n == nil {
		buf.WriteString("null")
		return nil
	}

	switch n.kind {
	case KindObject:
		buf.WriteByte('{')
		for i, key := range n.keys {
			if i > 0 {
				buf.WriteByte(',')
			}
			encodedKey, err := json.Marshal(key)
			if err != nil {
				return err
			}
			buf.Write(encodedKey)
			buf.WriteByte(':')
			if err := c.writeJSON(buf, n.fields[key]); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
		return nil

	case KindArray:
		buf.WriteByte('[')
		for i, item := range n.items {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := c.writeJSON(buf, item); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
		return nil

	default:
		return c.writeScalar(buf, n.value)
	}
}

func (c Coercer) writeScalar(buf *bytes.Buffer, value any) error {
	if t, ok := value.(time.Time); ok {
		value = c.FormatTime(t)
	}
	encoded, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %T: %w", value, err)
	}
	buf.Write(encoded)
	return nil
}

// Unmarshal decodes a single JSON value. Numbers are kept as json.Number
// and object key order is preserved.
func (c Coercer) Unmarshal(data []byte) (*Node, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	first, err := dec.Token()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: empty input", ErrMalformed)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
	}

	n, err := c.ReadNode(dec, first)
	if err != nil {
		return nil, err
	}

	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: trailing data after value", ErrMalformed)
	}
	return n, nil
}

type buildFrame struct {
	node    *Node
	key     string
	needKey bool
}

// ReadNode builds the value that starts with first, reading the remaining
// tokens of that value from dec. Strings are coerced and single-key $date
// objects unwrapped as the value is assembled.
func (c Coercer) ReadNode(dec *json.Decoder, first json.Token) (*Node, error) {
	var frames []*buildFrame
	tok := first

	for {
		var (
			done     *Node
			complete bool
		)

		switch v := tok.(type) {
		case json.Delim:
			switch v {
			case '{':
				frames = append(frames, &buildFrame{node: NewObject(), needKey: true})
			case '[':
				frames = append(frames, &buildFrame{node: NewArray()})
			case '}', ']':
				if len(frames) == 0 {
					return nil, fmt.Errorf("%w: unexpected %q", ErrMalformed, v)
				}
				top := frames[len(frames)-1]
				frames = frames[:len(frames)-1]
				done, complete = top.node, true
				if inner, ok := dateWrapped(done); ok {
					done = inner
				}
			}

		case string:
			if len(frames) > 0 {
				top := frames[len(frames)-1]
				if top.node.kind == KindObject && top.needKey {
					top.key = v
					top.needKey = false
					break
				}
			}
			done, complete = c.coerceString(v), true

		default:
			done, complete = NewScalar(v), true
		}

		if complete {
			if len(frames) == 0 {
				return done, nil
			}
			top := frames[len(frames)-1]
			if top.node.kind == KindObject {
				top.node.setField(top.key, done)
				top.needKey = true
			} else {
				top.node.items = append(top.node.items, done)
			}
		}

		next, err := dec.Token()
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: %w", ErrMalformed, io.ErrUnexpectedEOF)
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
		}
		tok = next
	}
}
