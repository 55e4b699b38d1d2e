// Package stream converts between lazy sequences of documents and JSON array
// byte streams while holding at most one encoded element in memory.
//
// An Encoder is an io.Reader over an iter.Seq: each refill serializes one
// element and pulls one element of lookahead to decide whether the separator
// or the suffix follows it. A Decoder walks the tokens of an encoding/json
// Decoder and yields one coerced document per array element, releasing the
// byte source as soon as the closing bracket is seen.
//
// Errors are terminal: after a failed Read or Next every later call returns
// the same error.
package stream
