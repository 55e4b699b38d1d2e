package doc

import (
	"encoding/json"
	"time"

	"github.com/goccy/go-yaml"
)

// MarshalYAML implements the goccy/go-yaml marshaler, keeping object key
// order through yaml.MapSlice.
func (n *Node) MarshalYAML() (any, error) {
	return DefaultCoercer().yamlValue(n), nil
}

// MarshalYAML renders n as YAML with the coercer's time zone.
func (c Coercer) MarshalYAML(n *Node) ([]byte, error) {
	return yaml.Marshal(c.yamlValue(n))
}

func (c Coercer) yamlValue(n *Node) any {
	if n == nil {
		return nil
	}

	switch n.kind {
	case KindObject:
		out := make(yaml.MapSlice, 0, len(n.keys))
		for _, key := range n.keys {
			out = append(out, yaml.MapItem{Key: key, Value: c.yamlValue(n.fields[key])})
		}
		return out
	case KindArray:
		out := make([]any, len(n.items))
		for i, item := range n.items {
			out[i] = c.yamlValue(item)
		}
		return out
	}

	switch v := n.value.(type) {
	case time.Time:
		return c.FormatTime(v)
	case json.Number:
		if i, err := v.Int64(); err == nil {
			return i
		}
		if f, err := v.Float64(); err == nil {
			return f
		}
		return v.String()
	default:
		return v
	}
}
