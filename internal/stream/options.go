package stream

import (
	"log/slog"

	"github.com/jacoelho/dotjson/internal/doc"
)

type options struct {
	prefix    []byte
	separator []byte
	suffix    []byte
	coercer   doc.Coercer
	logger    *slog.Logger
}

// Option configures an Encoder or a Decoder. Options that do not apply to
// the value being built are ignored.
type Option func(*options)

// WithPrefix sets the bytes written before the first element.
func WithPrefix(prefix string) Option {
	return func(o *options) { o.prefix = []byte(prefix) }
}

// WithSeparator sets the bytes written between elements.
func WithSeparator(sep string) Option {
	return func(o *options) { o.separator = []byte(sep) }
}

// WithSuffix sets the bytes written after the last element.
func WithSuffix(suffix string) Option {
	return func(o *options) { o.suffix = []byte(suffix) }
}

// WithCoercer sets the coercer used to build decoded documents.
func WithCoercer(c doc.Coercer) Option {
	return func(o *options) { o.coercer = c }
}

// WithLogger sets the logger; nil selects slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

func newOptions(opts []Option) options {
	o := options{
		prefix:    []byte("["),
		separator: []byte(","),
		suffix:    []byte("]"),
		coercer:   doc.DefaultCoercer(),
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}
	return o
}
