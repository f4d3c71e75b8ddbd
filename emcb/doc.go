// Package emcb implements EM-CB, the External Curveball degree-sequence
// preserving randomizer: R rounds of pairwise trades, each
// round hashing every node into a fresh random order (the identity hash
// on the final round) so trade partners are processed in ascending
// hashed order instead of by an arbitrary adjacency-list walk.
//
// A round never holds the whole graph's adjacency in memory. Every edge
// endpoint becomes a roundMsg addressed to its owner's hash, sorted via
// extsort the way original_source/include/Curveball/EMCurveball.h and
// EMMessageContainer.h route per-round messages; the sorted stream is
// then consumed one IMMacrochunk-sized window at a time (tradeMacrochunks),
// so only the nodes currently trading have their neighbor lists resident,
// not the whole node set.
//
// A trade only ever touches the two nodes it is given. When it reassigns
// a third node w from one trading partner to the other, w's own
// adjacency list is not resident to patch in place -- it is forwarded as
// a correction message instead (the EMDualContainer role), sorted by w's
// hash so it can be merged, in a second forward pass over the same
// round's messages, against whichever node's own adjacency is being
// reconstructed. Skipping that propagation is what silently breaks
// degree preservation: the stale edge from w's original list and the new
// edge from the reassigned partner's list would otherwise both survive
// the round's dedup pass.
//
// Pairs within one macrochunk trade concurrently across workers
// (mirroring the per-chunk thread pool EMMacrochunk.h assigns trades
// to), but macrochunks themselves are processed strictly in hash order,
// one at a time: the message stream is a single forward-only cursor
// shared by the whole round, so two macrochunks can never be in flight
// together without either holding more than one window's adjacency in
// memory or giving the cursor random access -- both of which this
// package avoids by design. This is a real reduction in intra-round
// parallelism compared to trading every macrochunk concurrently, traded
// for a memory footprint that stays bounded by a macrochunk instead of
// the graph.
package emcb
