package stream

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"iter"
	"log/slog"
)

type encoderState int

const (
	stateNeedPrefix encoderState = iota
	stateStreaming
	stateDone
	stateFailed
)

// Encoder is an io.ReadCloser producing prefix + e1 + sep + ... + en + suffix
// from a lazy sequence. It is not safe for concurrent use.
type Encoder[T any] struct {
	next    func() (T, error, bool)
	stop    func()
	marshal func(T) ([]byte, error)
	opts    options
	logger  *slog.Logger

	buf   []byte
	pos   int
	state encoderState

	lookahead    T
	hasLookahead bool
	pending      error

	count  int
	err    error
	closed bool
}

var _ io.ReadCloser = (*Encoder[int])(nil)

// NewEncoder returns an Encoder that serializes each element of src with
// marshal. The source is not consumed until the first Read.
func NewEncoder[T any](src iter.Seq[T], marshal func(T) ([]byte, error), opts ...Option) *Encoder[T] {
	return NewEncoder2(func(yield func(T, error) bool) {
		for v := range src {
			if !yield(v, nil) {
				return
			}
		}
	}, marshal, opts...)
}

// NewEncoder2 is NewEncoder over a fallible source. When src yields an
// error, the elements before it are emitted, the separator and suffix are
// not, and Read returns that error.
func NewEncoder2[T any](src iter.Seq2[T, error], marshal func(T) ([]byte, error), opts ...Option) *Encoder[T] {
	o := newOptions(opts)
	next, stop := iter.Pull2(src)
	return &Encoder[T]{
		next:    next,
		stop:    stop,
		marshal: marshal,
		opts:    o,
		logger:  o.logger,
	}
}

// JSONArray encodes each element with encoding/json.
func JSONArray[T any](src iter.Seq[T], opts ...Option) *Encoder[T] {
	return NewEncoder(src, func(v T) ([]byte, error) { return json.Marshal(v) }, opts...)
}

// StringArray encodes each element as a JSON string.
func StringArray(src iter.Seq[string], opts ...Option) *Encoder[string] {
	return NewEncoder(src, func(s string) ([]byte, error) { return json.Marshal(s) }, opts...)
}

// RawArray writes elements that are already JSON text. Elements that are
// not valid JSON fail the stream.
func RawArray(src iter.Seq[[]byte], opts ...Option) *Encoder[[]byte] {
	return NewEncoder(src, func(b []byte) ([]byte, error) {
		if !json.Valid(b) {
			return nil, errors.New("invalid JSON text")
		}
		return b, nil
	}, opts...)
}

// Read implements io.Reader. A marshal failure is returned wrapped in
// ErrEncode, and a source failure as is, once any bytes already produced
// have been read.
func (e *Encoder[T]) Read(p []byte) (int, error) {
	if e.err != nil {
		return 0, e.err
	}
	if e.closed {
		return 0, ErrClosed
	}
	if len(p) == 0 {
		return 0, nil
	}

	n := 0
	for n < len(p) {
		if e.pos == len(e.buf) {
			if e.state == stateDone {
				break
			}
			if err := e.refill(); err != nil {
				e.fail(err)
				if n > 0 {
					return n, nil
				}
				return 0, e.err
			}
			continue
		}

		copied := copy(p[n:], e.buf[e.pos:])
		n += copied
		e.pos += copied
	}

	if n == 0 {
		return 0, io.EOF
	}
	return n, nil
}

// refill replaces the drained buffer with the next chunk: the prefix on the
// first call, then one element followed by a separator or the suffix.
func (e *Encoder[T]) refill() error {
	e.buf = e.buf[:0]
	e.pos = 0

	switch e.state {
	case stateNeedPrefix:
		e.buf = append(e.buf, e.opts.prefix...)
		e.state = stateStreaming
		if e.pull() {
			return nil
		}
		if !e.hasLookahead {
			e.buf = append(e.buf, e.opts.suffix...)
			e.finish()
		}
		return nil

	case stateStreaming:
		if e.pending != nil {
			return e.pending
		}

		current := e.lookahead
		var zero T
		e.lookahead = zero

		data, err := e.marshal(current)
		if err != nil {
			return fmt.Errorf("%w: element %d: %w", ErrEncode, e.count, err)
		}
		e.count++
		e.buf = append(e.buf, data...)

		if e.pull() {
			return nil
		}
		if e.hasLookahead {
			e.buf = append(e.buf, e.opts.separator...)
		} else {
			e.buf = append(e.buf, e.opts.suffix...)
			e.finish()
		}
		return nil
	}

	return nil
}

// pull fetches the next element into the lookahead. It reports whether the
// source failed, in which case the error is held until the buffer drains.
func (e *Encoder[T]) pull() bool {
	v, err, ok := e.next()
	if ok && err != nil {
		e.pending = err
		e.hasLookahead = false
		return true
	}
	e.lookahead, e.hasLookahead = v, ok
	return false
}

func (e *Encoder[T]) finish() {
	e.state = stateDone
	e.stop()
	e.logger.Debug("stream encoded", "documents", e.count)
}

func (e *Encoder[T]) fail(err error) {
	e.err = err
	e.state = stateFailed
	e.buf = nil
	e.pos = 0
	e.stop()
	e.logger.Error("stream failed", "documents", e.count, "error", err)
}

// Count reports how many elements have been serialized so far.
func (e *Encoder[T]) Count() int {
	return e.count
}

// Close stops the underlying sequence. It is safe to call more than once.
func (e *Encoder[T]) Close() error {
	if e.closed {
		return nil
	}
	e.closed = true
	e.stop()
	return nil
}
