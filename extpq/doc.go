// Package extpq implements PriorityQueueEM (spec §2): an external-memory
// priority queue. Its one user is emes, whose apply stage (applyMerge)
// merges the untouched and touched edge streams through it.
//
// Heap[T] keeps a small in-memory working set (a container/heap) bounded
// by a capacity; once that capacity is exceeded, the working set is
// drained to a sorted run file and tracked alongside any other open
// runs. Pop always returns the minimum (per the caller's Less) among the
// in-memory working set and the heads of every open run, advancing
// whichever source it came from — the same head-of-runs merge extsort
// uses, but interleaved with Push instead of requiring a finalize step
// first.
package extpq
