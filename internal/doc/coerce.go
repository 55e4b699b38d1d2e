package doc

import (
	"encoding/json"
	"reflect"
	"slices"
	"time"

	"github.com/jacoelho/dotjson/internal/datecodec"
)

const dateKey = "$date"

// Coercer classifies raw values into nodes. It is an immutable value:
// build it once and pass it to every write.
type Coercer struct {
	dates datecodec.Codec
	loc   *time.Location
}

// Option configures a Coercer.
type Option func(*Coercer)

// WithDateCodec replaces the codec used to detect and render dates.
func WithDateCodec(codec datecodec.Codec) Option {
	return func(c *Coercer) {
		c.dates = codec
	}
}

// WithoutDates keeps date-like strings as plain strings.
func WithoutDates() Option {
	return func(c *Coercer) {
		c.dates = noDates{}
	}
}

// WithLocation sets the zone timestamps are rendered in. Nil means UTC.
func WithLocation(loc *time.Location) Option {
	return func(c *Coercer) {
		c.loc = loc
	}
}

// NewCoercer returns a Coercer using the ISO codec and UTC unless
// overridden.
func NewCoercer(opts ...Option) Coercer {
	c := Coercer{dates: datecodec.ISO{}, loc: time.UTC}
	for _, opt := range opts {
		opt(&c)
	}
	if c.dates == nil {
		c.dates = datecodec.ISO{}
	}
	if c.loc == nil {
		c.loc = time.UTC
	}
	return c
}

// DefaultCoercer is NewCoercer without options.
func DefaultCoercer() Coercer {
	return NewCoercer()
}

func (c Coercer) codec() datecodec.Codec {
	if c.dates == nil {
		return datecodec.ISO{}
	}
	return c.dates
}

func (c Coercer) location() *time.Location {
	if c.loc == nil {
		return time.UTC
	}
	return c.loc
}

// Location returns the zone timestamps are rendered in.
func (c Coercer) Location() *time.Location {
	return c.location()
}

// FormatTime renders t with the configured codec and zone.
func (c Coercer) FormatTime(t time.Time) string {
	return c.codec().Format(t, c.location())
}

// Coerce turns raw into a node. Nodes are deep-copied without being
// re-coerced, except that a single-key {"$date": v} object, node or map,
// always becomes Coerce(v).
func (c Coercer) Coerce(raw any) *Node {
	switch v := raw.(type) {
	case nil:
		return NewScalar(nil)
	case *Node:
		if v == nil {
			return NewScalar(nil)
		}
		if inner, ok := dateWrapped(v); ok {
			if inner.kind == KindScalar {
				return c.Coerce(inner.value)
			}
			return c.Coerce(inner)
		}
		return v.Clone()
	case Node:
		return c.Coerce(&v)
	case string:
		return c.coerceString(v)
	case json.Number, bool, time.Time:
		return NewScalar(v)
	case json.RawMessage:
		parsed, err := c.Unmarshal(v)
		if err != nil {
			return NewScalar(string(v))
		}
		return parsed
	case []byte:
		return NewScalar(v)
	case map[string]any:
		if inner, ok := v[dateKey]; ok && len(v) == 1 {
			return c.Coerce(inner)
		}
		out := NewObject()
		for _, k := range sortedKeys(v) {
			out.setField(k, c.Coerce(v[k]))
		}
		return out
	case []any:
		out := &Node{kind: KindArray, items: make([]*Node, len(v))}
		for i, item := range v {
			out.items[i] = c.Coerce(item)
		}
		return out
	}

	return c.coerceReflect(raw)
}

func (c Coercer) coerceString(s string) *Node {
	if t, ok := c.codec().Parse(s); ok {
		return NewScalar(t)
	}
	return NewScalar(s)
}

// coerceReflect handles typed maps and slices such as map[string]int or
// []string.
func (c Coercer) coerceReflect(raw any) *Node {
	rv := reflect.ValueOf(raw)
	switch rv.Kind() {
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return NewScalar(raw)
		}
		if rv.IsNil() {
			return NewScalar(nil)
		}
		keys := make([]string, 0, rv.Len())
		values := make(map[string]any, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			k := iter.Key().String()
			keys = append(keys, k)
			values[k] = iter.Value().Interface()
		}
		if len(keys) == 1 && keys[0] == dateKey {
			return c.Coerce(values[dateKey])
		}
		slices.Sort(keys)
		out := NewObject()
		for _, k := range keys {
			out.setField(k, c.Coerce(values[k]))
		}
		return out
	case reflect.Slice, reflect.Array:
		if rv.Kind() == reflect.Slice && rv.IsNil() {
			return NewScalar(nil)
		}
		out := &Node{kind: KindArray, items: make([]*Node, rv.Len())}
		for i := range rv.Len() {
			out.items[i] = c.Coerce(rv.Index(i).Interface())
		}
		return out
	case reflect.String:
		return c.coerceString(rv.String())
	default:
		return NewScalar(raw)
	}
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

type noDates struct{}

func (noDates) Parse(string) (time.Time, bool) {
	return time.Time{}, false
}

func (noDates) Format(t time.Time, loc *time.Location) string {
	return datecodec.ISO{}.Format(t, loc)
}
