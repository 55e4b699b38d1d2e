package stream

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"iter"
	"log/slog"

	"github.com/jacoelho/dotjson/internal/doc"
)

// Decoder yields the elements of a JSON array read from a byte source, one
// document at a time. A top level value that is not an array is treated as
// a stream of whitespace separated values. It is not safe for concurrent use.
type Decoder struct {
	src     io.Reader
	dec     *json.Decoder
	coercer doc.Coercer
	logger  *slog.Logger

	tok     json.Token
	hasTok  bool
	inArray bool

	count  int
	err    error
	closed bool
}

// NewDecoder reads the first token of r, skipping one leading '['. Empty
// input is an empty stream.
func NewDecoder(r io.Reader, opts ...Option) (*Decoder, error) {
	o := newOptions(opts)

	dec := json.NewDecoder(r)
	dec.UseNumber()

	d := &Decoder{
		src:     r,
		dec:     dec,
		coercer: o.coercer,
		logger:  o.logger,
	}

	tok, err := dec.Token()
	if errors.Is(err, io.EOF) {
		d.release()
		return d, nil
	}
	if err != nil {
		d.release()
		return nil, fmt.Errorf("%w: %w", ErrDecode, err)
	}

	if delim, ok := tok.(json.Delim); ok && delim == '[' {
		d.inArray = true
		tok, err = dec.Token()
		if err != nil {
			d.release()
			if errors.Is(err, io.EOF) {
				err = io.ErrUnexpectedEOF
			}
			return nil, fmt.Errorf("%w: %w", ErrDecode, err)
		}
	}

	d.tok = tok
	d.hasTok = true
	d.logger.Debug("stream opened", "array", d.inArray)
	return d, nil
}

// HasNext reports whether another element is available. Once it returns
// false the byte source has been closed.
func (d *Decoder) HasNext() bool {
	if d.closed || d.err != nil || !d.hasTok {
		d.release()
		return false
	}
	if delim, ok := d.tok.(json.Delim); ok && delim == ']' {
		d.release()
		return false
	}
	return true
}

// Next decodes the current element. It returns io.EOF after the last
// element and a sticky error wrapping ErrDecode on malformed input. When
// reading past a complete element fails, that element is returned and the
// error is reported by the following call.
func (d *Decoder) Next() (*doc.Node, error) {
	if d.err != nil {
		return nil, d.err
	}
	if !d.HasNext() {
		return nil, io.EOF
	}

	n, err := d.coercer.ReadNode(d.dec, d.tok)
	if err != nil {
		d.fail(fmt.Errorf("%w: element %d: %w", ErrDecode, d.count, err))
		return nil, d.err
	}
	d.count++

	d.advance()
	d.HasNext()
	return n, nil
}

func (d *Decoder) advance() {
	tok, err := d.dec.Token()
	switch {
	case errors.Is(err, io.EOF):
		d.hasTok = false
		d.tok = nil
		if d.inArray {
			d.fail(fmt.Errorf("%w: element %d: %w", ErrDecode, d.count, io.ErrUnexpectedEOF))
		}
	case err != nil:
		d.fail(fmt.Errorf("%w: element %d: %w", ErrDecode, d.count, err))
	default:
		d.tok = tok
	}
}

// Err returns the error that ended the stream, if any.
func (d *Decoder) Err() error {
	return d.err
}

// Count reports how many elements have been decoded.
func (d *Decoder) Count() int {
	return d.count
}

// All returns an iterator over the remaining elements. The source is
// closed when iteration stops, including an early break.
func (d *Decoder) All() iter.Seq2[*doc.Node, error] {
	return func(yield func(*doc.Node, error) bool) {
		defer d.Close()

		for {
			n, err := d.Next()
			if err == io.EOF {
				return
			}
			if !yield(n, err) || err != nil {
				return
			}
		}
	}
}

// ToList drains the stream into a slice.
func (d *Decoder) ToList() ([]*doc.Node, error) {
	var out []*doc.Node
	for n, err := range d.All() {
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, nil
}

// Close releases the byte source. It is safe to call more than once.
func (d *Decoder) Close() error {
	d.release()
	return nil
}

func (d *Decoder) fail(err error) {
	d.err = err
	d.logger.Error("stream decode failed", "documents", d.count, "error", err)
	d.release()
}

func (d *Decoder) release() {
	if d.closed {
		return
	}
	d.closed = true

	if c, ok := d.src.(io.Closer); ok {
		if err := c.Close(); err != nil {
			d.logger.Warn("closing stream source", "error", err)
		}
	}
	d.logger.Debug("stream closed", "documents", d.count)
}
