package xcore

import "errors"

// Sentinel errors for the external-memory graph pipeline.
//
// Callers MUST use errors.Is(err, ErrX) to branch on semantics; call sites
// attach context with fmt.Errorf("pkg: ctx: %w", ErrX) rather than
// defining new error types.
var (
	// ErrConfigError indicates an invalid or inconsistent configuration
	// option, reported before any I/O takes place.
	ErrConfigError = errors.New("xcore: invalid configuration")

	// ErrOrderViolation indicates a push into an EdgeStream that is not
	// non-decreasing with respect to the previously pushed edge.
	ErrOrderViolation = errors.New("xcore: edge pushed out of order")

	// ErrLoopNotAllowed indicates a self-loop was pushed while the
	// stream's loop-acceptance flag is off.
	ErrLoopNotAllowed = errors.New("xcore: self-loop not allowed")

	// ErrMultiEdgeNotAllowed indicates a parallel edge was pushed while
	// the stream's multi-edge-acceptance flag is off.
	ErrMultiEdgeNotAllowed = errors.New("xcore: multi-edge not allowed")

	// ErrIoFailure wraps any underlying disk or sorter/priority-queue
	// failure; it always aborts the run it occurred in.
	ErrIoFailure = errors.New("xcore: external-memory I/O failure")

	// ErrUnrealizableSequence indicates a degree sequence could not be
	// fully realized. It is logged, not necessarily returned: generators
	// report the residual deficit via their own accessors and keep going.
	ErrUnrealizableSequence = errors.New("xcore: degree sequence not fully realizable")

	// ErrAssertionFailure indicates an internal invariant was violated
	// (e.g. adjacency-list overflow in emcb). It is fatal to the run that
	// raised it but is still returned rather than panicking, so that a
	// library caller keeps control of process lifetime.
	ErrAssertionFailure = errors.New("xcore: internal invariant violated")

	// ErrDisjointEdgesRequired indicates a SwapDescriptor was constructed
	// with e1 == e2, which spec §4.5 requires rejecting pre-stage-1.
	ErrDisjointEdgesRequired = errors.New("xcore: swap requires two distinct edge ids")
)
