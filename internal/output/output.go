// Package output renders documents for the command line.
package output

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/jacoelho/dotjson/internal/doc"
)

// Format selects how a node is rendered.
type Format string

const (
	FormatJSON   Format = "json"
	FormatPretty Format = "pretty"
	FormatYAML   Format = "yaml"
	FormatFlat   Format = "flat"
)

// ErrUnknownFormat indicates an unsupported output format name.
var ErrUnknownFormat = errors.New("output: unknown format")

// Formats lists the supported formats.
func Formats() []Format {
	return []Format{FormatJSON, FormatPretty, FormatYAML, FormatFlat}
}

// ParseFormat validates a format name. The empty string selects JSON.
func ParseFormat(s string) (Format, error) {
	if s == "" {
		return FormatJSON, nil
	}
	f := Format(strings.ToLower(s))
	if !slices.Contains(Formats(), f) {
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
	}
	return f, nil
}

// Write renders n to w followed by a newline.
//
// Flat output prints one path=value line per leaf, sorted by path; a node
// that is not an object is printed as a single value.
func Write(w io.Writer, f Format, n *doc.Node, c doc.Coercer) error {
	var (
		out []byte
		err error
	)

	switch f {
	case FormatJSON, "":
		out, err = c.Marshal(n)
	case FormatPretty:
		out, err = pretty(n, c)
	case FormatYAML:
		out, err = c.MarshalYAML(n)
		out = bytes.TrimSuffix(out, []byte("\n"))
	case FormatFlat:
		out, err = flat(n, c)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, f)
	}
	if err != nil {
		return err
	}

	out = append(out, '\n')
	_, err = w.Write(out)
	return err
}

func pretty(n *doc.Node, c doc.Coercer) ([]byte, error) {
	compact, err := c.Marshal(n)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, compact, "", "  "); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func flat(n *doc.Node, c doc.Coercer) ([]byte, error) {
	if n.Kind() != doc.KindObject {
		return c.Marshal(n)
	}

	leaves, err := n.Flatten()
	if err != nil {
		return nil, err
	}
	paths := make([]string, 0, len(leaves))
	for path := range leaves {
		paths = append(paths, path)
	}
	slices.Sort(paths)

	var buf bytes.Buffer
	for i, path := range paths {
		value, err := c.Marshal(leaves[path])
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		if i > 0 {
			buf.WriteByte('\n')
		}
		buf.WriteString(path)
		buf.WriteByte('=')
		buf.Write(value)
	}
	return buf.Bytes(), nil
}
