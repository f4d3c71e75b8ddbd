// Package exmgraph is an external-memory graph generation and
// randomization library: build a simple graph from a degree sequence
// (Havel-Hakimi or configuration-model bootstrap) and randomize it in
// place while preserving that degree sequence (edge swapping or
// Curveball trading), streaming edges through disk-backed sorted runs
// rather than holding the whole graph resident.
//
// Under the hood the work is organized under several subpackages:
//
//	xcore/     — node/edge/swap identifiers and sentinel errors
//	xstream/   — sorted, rewindable edge/degree/bit streams
//	extsort/   — generic external sorted-run builder
//	extpq/     — generic external priority queue
//	hhgen/     — Havel-Hakimi degree-sequence realization
//	swapgen/   — random swap-descriptor generation
//	emes/      — edge-swap randomization (plain, semi-loaded, parallel)
//	emcb/      — Curveball trade randomization
//	cmrewire/  — configuration-model bootstrap + simplification
//	runtime/   — memory budget, seeds, temp directory, metrics, tracing
//	config/    — the configuration descriptor this package's Run reads
//	ioiface/   — output-format contracts for an external encoder
//
// This top-level package is a thin orchestration facade over those
// packages, mirroring how katalvlaran/lvlath's root graph package
// wraps core/matrix/algorithms into one entry point.
package exmgraph
