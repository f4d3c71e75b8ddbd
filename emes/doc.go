// Package emes implements EM-ES, the batched edge-swap decision engine:
// given a sorted edge list and a batch of swaps, it decides
// each swap in swap order — respecting the committed outcomes of every
// earlier swap in the batch — and rewrites the edge list accordingly.
//
// A swap's two sides each name either an existing edge by its position in
// the input stream (the common case) or, for the semi-loaded variant used
// by cmrewire, an edge value to be matched against the current edge set;
// an unmatched value marks that side invalid and the swap is rejected.
//
// Engine never holds the edge stream it runs against in memory. A single
// sequential scan (resolveBatch) splits every position into "touched" —
// named by some swap, either by id or by a semi-loaded value match — or
// "untouched", which goes straight into an extsort.Builder and is never
// looked at again until the final merge. Only the touched positions,
// bounded by the batch size rather than the graph, live in maps; this is
// the same working-set argument original_source/include/EdgeSwaps/
// EdgeSwapTFP.{h,cpp} makes for its forwarding machinery, just bounded by
// the batch instead of a fixed buffer count.
//
// buildChain sorts the batch's (edgeID, swapID) touches via extsort; Run
// consumes it only as a grounding pass (it already decides in ascending
// swap order), but RunParallel uses the same touches, unioned by shared
// edge position, to split the batch into components that can be decided
// concurrently with zero shared mutable state — no component can ever
// observe another component's writes regardless of goroutine scheduling.
//
// Existence resolution merges the batch's finalized touched values
// against the untouched stream in one sorted pass: a value that already
// exists untouched reverts its owning position and flags the swap that
// last wrote it as a conflict. This does not cascade into other
// touched-vs-touched decisions that depended on the reverted value — a
// documented, rare second-order gap rather than an unbounded-pass fixed
// point. The final apply stage is a k-way merge (extpq.Heap) of the
// untouched passthrough and the finalized touched values, both already
// sorted, so the whole edge stream is never re-sorted from scratch.
package emes
