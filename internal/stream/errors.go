package stream

import "errors"

var (
	// ErrEncode indicates an element could not be serialized mid-stream.
	ErrEncode = errors.New("stream: encode failed")

	// ErrDecode indicates the byte source is not a well formed JSON stream.
	ErrDecode = errors.New("stream: decode failed")

	// ErrClosed is returned by Read after Close.
	ErrClosed = errors.New("stream: closed")
)
