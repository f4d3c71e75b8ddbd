// Package cmrewire builds a configuration-model graph from a degree
// sequence and repairs it into a simple graph (spec §4.7): Bootstrap
// pairs Σd_i half-edges into a raw edge stream that may contain loops
// and parallel edges, and Driver repeatedly targets those illegal edges
// with semi-loaded swaps (run through emes) until none remain.
//
// Bootstrap's half-edge shuffle follows the stub-matching idiom of
// katalvlaran-lvlath/builder's RandomRegular, generalized from a fixed
// degree d to an arbitrary per-node degree sequence and performed as a
// sort under a random key rather than an in-memory Fisher-Yates
// shuffle, since an external-memory half-edge list is exactly the case
// extsort exists for.
package cmrewire
