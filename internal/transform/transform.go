// Package transform rewrites documents as they flow through a stream.
package transform

import (
	"errors"
	"fmt"
	"iter"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jacoelho/dotjson/internal/doc"
)

// ErrInvalidAssignment indicates a PATH=JSON assignment that cannot be parsed.
var ErrInvalidAssignment = errors.New("transform: invalid assignment")

var (
	nowFunc = time.Now
	idFunc  = func() string { return uuid.New().String() }
)

// SetNowForTest overrides the clock used by Stamp and returns a restore function.
func SetNowForTest(fn func() time.Time) func() {
	previous := nowFunc
	nowFunc = fn
	return func() {
		nowFunc = previous
	}
}

// Transform mutates a document in place.
type Transform func(*doc.Document) error

// Chain runs ts in order and stops at the first error. Nil entries are skipped.
func Chain(ts ...Transform) Transform {
	return func(d *doc.Document) error {
		for _, t := range ts {
			if t == nil {
				continue
			}
			if err := t(d); err != nil {
				return err
			}
		}
		return nil
	}
}

// Set assigns the JSON value raw at path. raw is validated up front and
// decoded for each document with that document's coercer.
func Set(path, raw string) (Transform, error) {
	data := []byte(raw)
	if _, err := doc.NewCoercer(doc.WithoutDates()).Unmarshal(data); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrInvalidAssignment, path, err)
	}
	return func(d *doc.Document) error {
		value, err := d.Coercer().Unmarshal(data)
		if err != nil {
			return fmt.Errorf("%w: %s: %w", ErrInvalidAssignment, path, err)
		}
		return d.Set(path, value)
	}, nil
}

// ParseAssignment builds a Set transform from "PATH=JSON".
func ParseAssignment(s string) (Transform, error) {
	path, raw, ok := strings.Cut(s, "=")
	if !ok || path == "" {
		return nil, fmt.Errorf("%w: %q, want PATH=JSON", ErrInvalidAssignment, s)
	}
	return Set(path, raw)
}

// Remove deletes the field at path. A missing field or parent is not an
// error; a parent that is not an object is.
func Remove(path string) Transform {
	return func(d *doc.Document) error {
		_, err := d.Remove(path)
		if errors.Is(err, doc.ErrNotFound) {
			return nil
		}
		return err
	}
}

// AssignID sets a random UUID at path unless the document already has one.
func AssignID(path string) Transform {
	return func(d *doc.Document) error {
		ok, err := d.Contains(path)
		if err != nil {
			return err
		}
		if ok {
			return nil
		}
		return d.Set(path, idFunc())
	}
}

// Stamp sets the current time, truncated to the second, at path.
func Stamp(path string) Transform {
	return func(d *doc.Document) error {
		return d.Set(path, nowFunc().UTC().Truncate(time.Second))
	}
}

// Apply runs t over each node of seq. The first failure is yielded with the
// position of the offending document and ends the sequence.
func Apply(t Transform, c doc.Coercer, seq iter.Seq2[*doc.Node, error]) iter.Seq2[*doc.Node, error] {
	return func(yield func(*doc.Node, error) bool) {
		i := 0
		for n, err := range seq {
			if err != nil {
				yield(nil, err)
				return
			}
			d := doc.FromNode(n, c)
			if t != nil {
				if err := t(d); err != nil {
					yield(nil, fmt.Errorf("document %d: %w", i, err))
					return
				}
			}
			if !yield(d.Root(), nil) {
				return
			}
			i++
		}
	}
}
