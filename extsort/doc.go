// Package extsort implements SortedRunBuilder (spec §2): push records in
// any order, and stream them back out in sorted order once. It is the
// one generic external sorter every TFP/Curveball message type in emes
// and emcb is built on, rather than one hand-rolled stxxl::sorter
// instantiation per message struct as the source does.
//
// A Builder[T] buffers pushed records in memory; once the buffer crosses
// a size threshold derived from the owning *runtime.Runtime's memory
// budget, it sorts the buffer and spills it to a temp file as one sorted
// run. Sorted() finalizes the builder and returns a Stream[T] that
// k-way-merges every spilled run plus the final in-memory tail.
package extsort
