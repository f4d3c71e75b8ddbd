// Package hhgen implements the Havel-Hakimi realizing-edge-list
// generator (spec §4.3) and its run-length-encoded variant (spec §4.8).
//
// Both consume a monotone degree sequence — increasing or decreasing, as
// the caller declares — and emit a realizing edge list by always
// connecting the currently highest-residual-degree vertex to the next
// highest-residual-degree vertices. Internally this is implemented as a
// deque of block{degree, nodeLower, nodeUpper} runs of consecutive node
// ids sharing a residual degree, exactly as
// original_source/include/HavelHakimi/HavelHakimiIMGenerator.h does:
// emitting a vertex's edges checks out the highest-degree block, splits
// it if only partially consumed, and merges adjacent equal-degree blocks
// back together when the checked-out blocks are restored.
package hhgen
