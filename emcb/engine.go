package emcb

import (
	"context"
	"math/rand"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/nodebound/exmgraph/extsort"
	"github.com/nodebound/exmgraph/runtime"
	"github.com/nodebound/exmgraph/xcore"
	"github.com/nodebound/exmgraph/xstream"
)

// Engine runs R rounds of Curveball trading over a full edge list.
type Engine struct {
	rt  *runtime.Runtime
	rng *rand.Rand
}

// New builds an Engine seeded for reproducible round hashes and trades.
func New(rt *runtime.Runtime, seed uint64) *Engine {
	return &Engine{rt: rt, rng: rand.New(rand.NewSource(int64(seed)))}
}

// Run executes rounds of Curveball trading over edges, treating node ids
// as lying in [0, numNodes). macrochunkSize bounds how many nodes'
// neighbor lists a single macrochunk holds in memory at once. Macrochunks
// are traded one at a time; workers bounds how many vertex pairs within
// one macrochunk trade concurrently. The final round always
// hashes with the identity function so the returned edges carry original
// node ids.
func (e *Engine) Run(edges *xstream.EdgeStream, numNodes int64, rounds int, macrochunkSize int, workers int) (*xstream.EdgeStream, error) {
	if rounds <= 0 {
		return nil, xcore.ErrConfigError
	}
	if macrochunkSize <= 1 {
		macrochunkSize = 2
	}
	if workers <= 0 {
		workers = 1
	}

	var current xstream.Source[xcore.Edge] = edges
	for r := 0; r < rounds; r++ {
		var hash ModHash
		if r == rounds-1 {
			hash = IdentityModHash(numNodes)
		} else {
			hash = RandomModHash(e.rng, numNodes)
		}

		next, err := e.runRound(current, numNodes, hash, macrochunkSize, workers)
		if err != nil {
			return nil, err
		}
		current = next
	}

	return e.emit(current)
}

// runRound is one Curveball round: a macrochunk-partitioned trading pass
// (stage A) followed by a correction-application pass (stage B) that
// folds reassignments forwarded by stage A into the adjacency of nodes
// that did not themselves trade this round.
//
// Neither pass ever holds more than one macrochunk's worth of adjacency
// in memory; the round's node order and the set of already-traded node
// ids are the only structures sized to the whole graph, and both are a
// single NodeID or bool per node rather than a full neighbor list.
func (e *Engine) runRound(edges xstream.Source[xcore.Edge], numNodes int64, hash ModHash, macrochunkSize, workers int) (*extsort.Stream[xcore.Edge], error) {
	msgs, order, err := e.buildMessages(edges, numNodes, hash)
	if err != nil {
		return nil, err
	}
	defer msgs.Close()

	collapseBuilder := extsort.NewBuilder[xcore.Edge](e.rt, "emcb-collapse", edgeLess, edgeCodec{})
	correctionsBuilder := extsort.NewBuilder[correction](e.rt, "emcb-corrections", correctionLess, correctionCodec{})

	traded, err := e.tradeMacrochunks(msgs, order, hash, macrochunkSize, workers, collapseBuilder, correctionsBuilder)
	if err != nil {
		return nil, err
	}

	corrections, err := correctionsBuilder.Sorted()
	if err != nil {
		return nil, err
	}
	defer corrections.Close()

	if err := msgs.Rewind(); err != nil {
		return nil, err
	}
	if err := e.applyCorrections(msgs, order, traded, corrections, collapseBuilder); err != nil {
		return nil, err
	}

	return e.dedupEdges(collapseBuilder)
}

// dedupEdges collapses the round's raw edge stream -- every undirected
// edge was pushed once from each endpoint's perspective -- into the
// deduplicated edge set the next round (or the final emit) expects, via
// a single sorted-run pass rather than an in-memory set.
func (e *Engine) dedupEdges(builder *extsort.Builder[xcore.Edge]) (*extsort.Stream[xcore.Edge], error) {
	raw, err := builder.Sorted()
	if err != nil {
		return nil, err
	}
	defer raw.Close()

	deduped := extsort.NewBuilder[xcore.Edge](e.rt, "emcb-dedup", edgeLess, edgeCodec{})
	var last xcore.Edge
	haveLast := false
	for !raw.Empty() {
		ed := raw.Current()
		if !haveLast || !ed.Equal(last) {
			if err := deduped.Push(ed); err != nil {
				return nil, err
			}
			last = ed
			haveLast = true
		}
		if err := raw.Advance(); err != nil {
			return nil, err
		}
	}
	return deduped.Sorted()
}

// buildMessages sorts one message per edge endpoint by owner hash and
// derives the hash-rank node order macrochunks partition over. It does
// not group messages into per-node adjacency lists; that happens
// incrementally, one macrochunk at a time, in tradeMacrochunks.
func (e *Engine) buildMessages(edges xstream.Source[xcore.Edge], numNodes int64, hash ModHash) (*extsort.Stream[roundMsg], []xcore.NodeID, error) {
	builder := extsort.NewBuilder[roundMsg](e.rt, "emcb-round", msgLess, msgCodec{})
	for !edges.Empty() {
		edge := edges.Current()
		hu := hash.Hash(edge.U)
		hv := hash.Hash(edge.V)
		if err := builder.Push(roundMsg{ownerHash: hu, owner: edge.U, other: edge.V}); err != nil {
			return nil, nil, err
		}
		if edge.U != edge.V {
			if err := builder.Push(roundMsg{ownerHash: hv, owner: edge.V, other: edge.U}); err != nil {
				return nil, nil, err
			}
		}
		if err := edges.Advance(); err != nil {
			return nil, nil, err
		}
	}
	stream, err := builder.Sorted()
	if err != nil {
		return nil, nil, err
	}

	seen := make(map[xcore.NodeID]bool, numNodes)
	var order []xcore.NodeID
	for !stream.Empty() {
		owner := stream.Current().owner
		if !seen[owner] {
			seen[owner] = true
			order = append(order, owner)
		}
		if err := stream.Advance(); err != nil {
			return nil, nil, err
		}
	}
	for n := xcore.NodeID(0); int64(n) < numNodes; n++ {
		if !seen[n] {
			order = append(order, n)
		}
	}
	sort.Slice(order, func(i, j int) bool { return hash.Hash(order[i]) < hash.Hash(order[j]) })

	if err := stream.Rewind(); err != nil {
		return nil, nil, err
	}
	return stream, order, nil
}

// tradeMacrochunks walks order in windows of macrochunkSize, loading only
// the current window's adjacency from msgs at a time (bounded by the
// macrochunk, never the whole graph) and trading its consecutive pairs.
// Macrochunks are loaded and flushed strictly in order -- msgs is a
// single forward-only cursor shared across the whole round, so two
// macrochunks can never be in flight at once -- but the pairs within one
// macrochunk trade concurrently across workers, since their neighbor
// sets are disjoint and already resident. Neighbors outside the window
// whose edge was reassigned are forwarded as a correction rather than
// patched in place, since their own adjacency list is not resident. It
// returns the set of node ids this round traded (and therefore already
// flushed to collapseBuilder).
func (e *Engine) tradeMacrochunks(msgs *extsort.Stream[roundMsg], order []xcore.NodeID, hash ModHash, macrochunkSize, workers int, collapseBuilder *extsort.Builder[xcore.Edge], correctionsBuilder *extsort.Builder[correction]) (map[xcore.NodeID]bool, error) {
	traded := make(map[xcore.NodeID]bool, len(order))

	for lo := 0; lo < len(order); lo += macrochunkSize {
		hi := lo + macrochunkSize
		if hi > len(order) {
			hi = len(order)
		}
		window, err := e.loadMacrochunk(msgs, order[lo:hi], hash)
		if err != nil {
			return nil, err
		}

		pairCount := (hi - lo) / 2
		pairRngs := make([]*rand.Rand, pairCount)
		for i := range pairRngs {
			pairRngs[i] = rand.New(rand.NewSource(e.rng.Int63()))
		}

		type pairOutcome struct {
			u, v         xcore.NodeID
			newNu, newNv []xcore.NodeID
			reassigned   []reassignment
		}
		outcomes := make([]pairOutcome, pairCount)

		g, _ := errgroup.WithContext(context.Background())
		g.SetLimit(workers)
		for p := 0; p < pairCount; p++ {
			p := p
			u, v := order[lo+2*p], order[lo+2*p+1]
			g.Go(func() error {
				newNu, newNv, reassigned := trade(pairRngs[p], u, v, window[u], window[v])
				outcomes[p] = pairOutcome{u: u, v: v, newNu: newNu, newNv: newNv, reassigned: reassigned}
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}

		// An odd-sized trailing window leaves one node unpaired; it
		// passes through untraded and is handled by applyCorrections
		// like any other node outside this chunk.
		for _, o := range outcomes {
			e.rt.ObserveTrade()
			traded[o.u] = true
			traded[o.v] = true
			for _, n := range o.newNu {
				if err := collapseBuilder.Push(xcore.NewEdge(o.u, n)); err != nil {
					return nil, err
				}
			}
			for _, n := range o.newNv {
				if err := collapseBuilder.Push(xcore.NewEdge(o.v, n)); err != nil {
					return nil, err
				}
			}
			for _, r := range o.reassigned {
				c := correction{targetHash: hash.Hash(r.node), target: r.node, remove: r.from, add: r.to}
				if err := correctionsBuilder.Push(c); err != nil {
					return nil, err
				}
			}
		}
	}
	return traded, nil
}

// loadMacrochunk consumes exactly the portion of msgs belonging to the
// node ids in window, grouping it into a map sized to the macrochunk
// rather than the graph. msgs must be positioned at the start of
// window's hash range; callers process macrochunks in ascending hash
// order so this always holds.
func (e *Engine) loadMacrochunk(msgs *extsort.Stream[roundMsg], window []xcore.NodeID, hash ModHash) (map[xcore.NodeID][]xcore.NodeID, error) {
	neighbors := make(map[xcore.NodeID][]xcore.NodeID, len(window))
	for _, n := range window {
		neighbors[n] = nil
	}
	if len(window) == 0 {
		return neighbors, nil
	}
	maxHash := hash.Hash(window[len(window)-1])
	for !msgs.Empty() && msgs.Current().ownerHash <= maxHash {
		m := msgs.Current()
		neighbors[m.owner] = append(neighbors[m.owner], m.other)
		if err := msgs.Advance(); err != nil {
			return nil, err
		}
	}
	return neighbors, nil
}

// applyCorrections walks msgs once more, grouped by owner in the same
// hash-rank order as order, to reconstruct the adjacency of every node
// that did not trade this round. Reassignments forwarded by
// tradeMacrochunks are merged in via corrections, which is sorted in the
// same order, so the whole pass is a single forward scan with no random
// access: this is how a third party's stale edge from a trade it took no
// part in gets corrected before collapseBuilder ever sees it.
func (e *Engine) applyCorrections(msgs *extsort.Stream[roundMsg], order []xcore.NodeID, traded map[xcore.NodeID]bool, corrections *extsort.Stream[correction], collapseBuilder *extsort.Builder[xcore.Edge]) error {
	oi := 0
	for oi < len(order) {
		owner := order[oi]

		var neighbors []xcore.NodeID
		for !msgs.Empty() && msgs.Current().owner == owner {
			neighbors = append(neighbors, msgs.Current().other)
			if err := msgs.Advance(); err != nil {
				return err
			}
		}

		if !traded[owner] {
			for !corrections.Empty() && corrections.Current().target == owner {
				c := corrections.Current()
				neighbors = removeOneNode(neighbors, c.remove)
				neighbors = append(neighbors, c.add)
				if err := corrections.Advance(); err != nil {
					return err
				}
			}
			for _, n := range neighbors {
				if err := collapseBuilder.Push(xcore.NewEdge(owner, n)); err != nil {
					return err
				}
			}
		} else {
			for !corrections.Empty() && corrections.Current().target == owner {
				if err := corrections.Advance(); err != nil {
					return err
				}
			}
		}
		oi++
	}
	return nil
}

func removeOneNode(ns []xcore.NodeID, target xcore.NodeID) []xcore.NodeID {
	for i, n := range ns {
		if n == target {
			return append(ns[:i], ns[i+1:]...)
		}
	}
	return ns
}

func (e *Engine) emit(edges xstream.Source[xcore.Edge]) (*xstream.EdgeStream, error) {
	out, err := xstream.NewEdgeStream(e.rt, false, false)
	if err != nil {
		return nil, err
	}
	var last xcore.Edge
	haveLast := false
	for !edges.Empty() {
		ed := edges.Current()
		if !haveLast || !ed.Equal(last) {
			if err := out.Push(ed); err != nil {
				return nil, err
			}
			last = ed
			haveLast = true
		}
		if err := edges.Advance(); err != nil {
			return nil, err
		}
	}
	if err := out.Rewind(); err != nil {
		return nil, err
	}
	return out, nil
}
