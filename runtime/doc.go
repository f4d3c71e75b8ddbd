// Package runtime threads the process-wide state the original C++ source
// kept in global STXXL configuration and ad-hoc random seeds through an
// explicit value, per spec §9's "Global mutable state" design note.
//
// A *Runtime carries the memory budget external sorters/priority queues
// size themselves from, the random and degree seeds, the temp-directory
// policy, the thread count available to Parallel TFP and EM-CB, and
// optional observability hooks (metrics registerer, tracer, rate
// limiter). Every field has a safe zero behavior: a nil Runtime pointer
// is never passed around, but a zero-value Runtime works by falling back
// to package-level defaults.
package runtime
