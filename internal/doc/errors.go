package doc

import "errors"

var (
	// ErrNotFound indicates the path does not address an existing node.
	ErrNotFound = errors.New("doc: path not found")

	// ErrInvalidToken indicates a field token was used to address an array.
	ErrInvalidToken = errors.New("doc: invalid token for array")

	// ErrOutOfBounds indicates an array index past the append position.
	ErrOutOfBounds = errors.New("doc: index out of bounds")

	// ErrTypeMismatch indicates a token does not fit the kind of node it addresses.
	ErrTypeMismatch = errors.New("doc: type mismatch")

	// ErrInvalidTraversal indicates an intermediate path segment cannot be resolved or replaced.
	ErrInvalidTraversal = errors.New("doc: invalid traversal")

	// ErrInvalidQuery indicates a malformed JSONPath expression.
	ErrInvalidQuery = errors.New("doc: invalid query")

	// ErrMalformed indicates JSON input that cannot be turned into a node.
	ErrMalformed = errors.New("doc: malformed JSON")
)
