package xstream

// Source is the small streaming capability contract named in spec §9:
// algorithms that only need to pull values consume a Source[T] rather
// than a concrete container type, so extsort.Stream, EdgeStream, and
// BoolStream can all feed the same pipeline stage code.
type Source[T any] interface {
	// Empty reports whether the stream has no more values to yield in
	// the current pass.
	Empty() bool

	// Current returns the value at the cursor. It is only valid to call
	// when Empty reports false.
	Current() T

	// Advance moves the cursor to the next value. It is only valid to
	// call when Empty reports false.
	Advance() error

	// Rewind resets the cursor to the first value of the current
	// contents, usable any number of times.
	Rewind() error

	// SizeHint returns the number of values the stream holds, if known.
	SizeHint() int64
}
