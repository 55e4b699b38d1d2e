package doc

import (
	"fmt"
	"time"

	"github.com/theory/jsonpath"
)

// Query selects nodes with an RFC 9535 JSONPath expression such as
// "$.maintenance[*].engine" or "$..hp". Timestamps are matched in their
// formatted form, so filters compare them as strings. Results are copies.
func (c Coercer) Query(n *Node, expr string) ([]*Node, error) {
	path, err := jsonpath.Parse(expr)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidQuery, expr, err)
	}

	results := path.Select(c.plain(n))
	out := make([]*Node, 0, len(results))
	for _, result := range results {
		out = append(out, c.Coerce(result))
	}
	return out, nil
}

// plain converts n to map[string]any, []any and scalars, with timestamps
// rendered through FormatTime.
func (c Coercer) plain(n *Node) any {
	switch n.kind {
	case KindObject:
		out := make(map[string]any, len(n.keys))
		for _, k := range n.keys {
			out[k] = c.plain(n.fields[k])
		}
		return out
	case KindArray:
		out := make([]any, len(n.items))
		for i, item := range n.items {
			out[i] = c.plain(item)
		}
		return out
	}

	if t, ok := n.value.(time.Time); ok {
		return c.FormatTime(t)
	}
	return n.value
}
