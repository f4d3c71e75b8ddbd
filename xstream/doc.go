// Package xstream implements the compact, streaming, append-only
// containers that are the shared I/O substrate of the pipeline: a sorted
// edge container (EdgeStream), a bit-packed boolean sequence
// (BoolStream), and the DegreeStream contract consumed by hhgen and
// cmrewire.
//
// All three follow the same shape (spec §9's "small capability
// interface"): Push while writing, then Rewind switches to a
// forward-only read cursor that can be exhausted and Rewound again any
// number of times. Every container spills its body to a temp file via
// *runtime.Runtime so that streams materially larger than main memory
// behave the same as small ones — this module never keeps a whole edge
// list resident just because a test graph happens to be tiny.
package xstream
