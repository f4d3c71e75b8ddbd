package emes

import (
	"fmt"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/nodebound/exmgraph/extpq"
	"github.com/nodebound/exmgraph/extsort"
	"github.com/nodebound/exmgraph/runtime"
	"github.com/nodebound/exmgraph/xcore"
	"github.com/nodebound/exmgraph/xstream"
)

// Engine decides and applies batches of swaps against a streamed edge
// set, touching only the positions the batch names: dependency chain,
// conflict simulation, existence resolution, commit, apply.
type Engine struct {
	rt  *runtime.Runtime
	cfg Config
}

// New creates an Engine bound to rt's observability and temp-file
// facilities.
func New(rt *runtime.Runtime, cfg Config) *Engine {
	return &Engine{rt: rt, cfg: cfg}
}

// batch holds the working set a TFP pass needs: the batch's touched
// positions and their values, sized to the swap batch rather than the
// edge stream it runs against, plus the untouched remainder as a sorted
// pass-through stream that is never materialized in memory.
type batch struct {
	resolved  [][2]xcore.EdgeID // per-swap source positions, aligned with swaps
	original  map[xcore.EdgeID]xcore.Edge
	current   map[xcore.EdgeID]xcore.Edge
	owner     map[xcore.Edge]xcore.EdgeID // touched value -> owning position, for duplicate checks
	lastWrite map[xcore.EdgeID]int        // position -> swap index that last set its current value
	untouched *extsort.Stream[xcore.Edge]
}

// resolveBatch is stage 1 of the pipeline: it sorts the batch's
// (edgeID, swapID) touches via buildChain, then makes one sequential
// pass over edges that splits every position into "touched" (held in
// memory, bounded by the batch) or "untouched" (streamed straight to a
// sorter, never held). ByEdgeValue sides are resolved against whichever
// touched position their value matches during this same pass.
func resolveBatch(rt *runtime.Runtime, edges *xstream.EdgeStream, swaps []Swap) (*batch, error) {
	for _, sw := range swaps {
		s0, s1 := sw.Sides[0], sw.Sides[1]
		if s0.ByID && s1.ByID && s0.ID == s1.ID {
			return nil, fmt.Errorf("emes: swap %d: %w", sw.ID, xcore.ErrDisjointEdgesRequired)
		}
	}

	byID := make(map[xcore.EdgeID]bool)
	var wanted []xcore.Edge
	for _, sw := range swaps {
		for _, side := range sw.Sides {
			if side.ByID {
				byID[side.ID] = true
			} else {
				wanted = append(wanted, side.Value)
			}
		}
	}
	sort.Slice(wanted, func(i, j int) bool { return wanted[i].Less(wanted[j]) })

	if err := edges.Rewind(); err != nil {
		return nil, fmt.Errorf("emes: rewind: %w", err)
	}

	original := make(map[xcore.EdgeID]xcore.Edge, len(byID)+len(wanted))
	valuePos := make(map[xcore.Edge]xcore.EdgeID, len(wanted))
	untouchedBuilder := extsort.NewBuilder[xcore.Edge](rt, "emes-untouched", edgeLess, edgeCodec{})

	wi := 0
	id := xcore.EdgeID(0)
	for !edges.Empty() {
		v := edges.Current()
		touched := byID[id]
		for wi < len(wanted) && wanted[wi].Less(v) {
			wi++
		}
		if wi < len(wanted) && wanted[wi].Equal(v) {
			if _, already := valuePos[v]; !already {
				valuePos[v] = id
			}
			touched = true
		}
		if touched {
			original[id] = v
		} else if err := untouchedBuilder.Push(v); err != nil {
			return nil, fmt.Errorf("emes: untouched passthrough: %w", err)
		}
		id++
		if err := edges.Advance(); err != nil {
			return nil, fmt.Errorf("emes: scan: %w", err)
		}
	}

	resolved := make([][2]xcore.EdgeID, len(swaps))
	swapIDs := make([]xcore.SwapID, len(swaps))
	for i, sw := range swaps {
		swapIDs[i] = sw.ID
		for s, side := range sw.Sides {
			if side.ByID {
				resolved[i][s] = side.ID
			} else if pos, ok := valuePos[side.Value]; ok {
				resolved[i][s] = pos
			} else {
				resolved[i][s] = -1 // semi-loaded miss: caller's swap is rejected as a conflict.
			}
		}
	}

	// Stage 1's dependency chain is built here for both entry points, but
	// its output is discarded: Run decides in ascending swap order, and
	// RunParallel's groupSwaps partitions the batch from resolved
	// directly. Only an error from building the chain is reported.
	if _, err := buildChain(rt, resolved, swapIDs); err != nil {
		return nil, fmt.Errorf("emes: dependency chain: %w", err)
	}

	untouched, err := untouchedBuilder.Sorted()
	if err != nil {
		return nil, fmt.Errorf("emes: untouched passthrough: %w", err)
	}

	owner := make(map[xcore.Edge]xcore.EdgeID, len(original))
	for id, v := range original {
		owner[v] = id
	}

	return &batch{
		resolved:  resolved,
		original:  original,
		current:   cloneEdgeMap(original),
		owner:     owner,
		lastWrite: make(map[xcore.EdgeID]int, len(original)),
		untouched: untouched,
	}, nil
}

func cloneEdgeMap(m map[xcore.EdgeID]xcore.Edge) map[xcore.EdgeID]xcore.Edge {
	out := make(map[xcore.EdgeID]xcore.Edge, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// decideOne is stage 2/4 (conflict simulation + commit) for a single
// swap. It reads and writes only b's touched-position bookkeeping, never
// the untouched remainder, so two decideOne calls whose resolved
// positions are disjoint can run concurrently against independent
// batches with no shared state.
func decideOne(b *batch, idx int, sw Swap) xcore.SwapResult {
	pos := b.resolved[idx]
	if pos[0] < 0 || pos[1] < 0 {
		return xcore.SwapResult{Conflict: [2]bool{true, true}}
	}

	src0, src1 := b.current[pos[0]], b.current[pos[1]]
	t0, t1 := xcore.Targets(src0, src1, sw.Direction)
	res := xcore.SwapResult{Targets: [2]xcore.Edge{t0, t1}}

	if t0.IsLoop() || t1.IsLoop() {
		res.Loop = true
		return res
	}

	isOwnSource := func(e xcore.Edge) bool { return e.Equal(src0) || e.Equal(src1) }
	dup := func(e xcore.Edge, self xcore.EdgeID) bool {
		owner, ok := b.owner[e]
		return ok && owner != self
	}

	if t0.Equal(t1) && !isOwnSource(t0) {
		res.Conflict[0], res.Conflict[1] = true, true
		return res
	}
	if !isOwnSource(t0) && dup(t0, pos[0]) {
		res.Conflict[0] = true
	}
	if !isOwnSource(t1) && dup(t1, pos[1]) {
		res.Conflict[1] = true
	}
	res.Performed = !res.Conflict[0] && !res.Conflict[1]
	if res.Performed {
		if b.owner[src0] == pos[0] {
			delete(b.owner, src0)
		}
		if b.owner[src1] == pos[1] {
			delete(b.owner, src1)
		}
		b.current[pos[0]], b.current[pos[1]] = t0, t1
		b.owner[t0], b.owner[t1] = pos[0], pos[1]
		b.lastWrite[pos[0]], b.lastWrite[pos[1]] = idx, idx
	}
	return res
}

// Run decides and applies a batch of swaps, in ascending swap order,
// against edges. It returns the rewritten, re-sorted edge stream and the
// per-swap decision aligned with the input swap order.
func (e *Engine) Run(edges *xstream.EdgeStream, swaps []Swap) (*xstream.EdgeStream, []xcore.SwapResult, error) {
	b, err := resolveBatch(e.rt, edges, swaps)
	if err != nil {
		return nil, nil, err
	}

	results := make([]xcore.SwapResult, len(swaps))
	for i, sw := range swaps {
		res := decideOne(b, i, sw)
		res.Normalize()
		results[i] = res
		e.rt.ObserveSwap(res.Performed, res.Loop, res.Conflict[0] || res.Conflict[1])
	}

	return e.resolveExistenceAndApply(b, results)
}

// subsetPositions returns the entries of full keyed by the edge
// positions referenced anywhere in group (via resolved), for building a
// private working set a single goroutine can own outright.
func subsetPositions(full map[xcore.EdgeID]xcore.Edge, group []int, resolved [][2]xcore.EdgeID) map[xcore.EdgeID]xcore.Edge {
	out := make(map[xcore.EdgeID]xcore.Edge, 2*len(group))
	for _, idx := range group {
		for _, p := range resolved[idx] {
			if p < 0 {
				continue
			}
			if v, ok := full[p]; ok {
				out[p] = v
			}
		}
	}
	return out
}

// RunParallel groups the batch into components that touch disjoint edge
// positions -- the same dependency chain buildChain constructs to
// discover swap interactions also proves two swaps independent when
// their positions never collide. Each component is decided on its own
// private copy of the positions it touches, in ascending swap-id order
// within the component, and components run concurrently with no shared
// mutable state at all. This is what makes the result independent of
// goroutine scheduling: a swap can only ever be influenced by
// lower-id swaps in its own component, never by a concurrently running
// component, and components are merged back in a fixed (ascending
// component-root) order after every goroutine has finished.
func (e *Engine) RunParallel(edges *xstream.EdgeStream, swaps []Swap, workers int) (*xstream.EdgeStream, []xcore.SwapResult, error) {
	if workers < 1 {
		workers = 1
	}
	b, err := resolveBatch(e.rt, edges, swaps)
	if err != nil {
		return nil, nil, err
	}

	groups := groupSwaps(b.resolved)
	results := make([]xcore.SwapResult, len(swaps))

	type groupOutcome struct {
		results   []xcore.SwapResult
		final     map[xcore.EdgeID]xcore.Edge
		lastWrite map[xcore.EdgeID]int
	}
	outcomes := make([]groupOutcome, len(groups))

	var g errgroup.Group
	g.SetLimit(workers)
	for gi, group := range groups {
		gi, group := gi, group
		g.Go(func() error {
			sub := &batch{
				resolved:  b.resolved,
				original:  subsetPositions(b.original, group, b.resolved),
				lastWrite: make(map[xcore.EdgeID]int, len(group)),
			}
			sub.current = cloneEdgeMap(sub.original)
			sub.owner = make(map[xcore.Edge]xcore.EdgeID, len(sub.original))
			for id, v := range sub.original {
				sub.owner[v] = id
			}

			out := make([]xcore.SwapResult, len(group))
			for i, idx := range group {
				res := decideOne(sub, idx, swaps[idx])
				res.Normalize()
				out[i] = res
			}
			outcomes[gi] = groupOutcome{results: out, final: sub.current, lastWrite: sub.lastWrite}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	for gi, group := range groups {
		outcome := outcomes[gi]
		for i, idx := range group {
			results[idx] = outcome.results[i]
			e.rt.ObserveSwap(outcome.results[i].Performed, outcome.results[i].Loop,
				outcome.results[i].Conflict[0] || outcome.results[i].Conflict[1])
		}
		for id, v := range outcome.final {
			b.current[id] = v
			b.owner[v] = id
		}
		for id, w := range outcome.lastWrite {
			b.lastWrite[id] = w
		}
	}

	return e.resolveExistenceAndApply(b, results)
}

// existenceEntry pairs a touched position's finalized value with the
// swap index that last wrote it, so a value found to already exist
// elsewhere in the untouched remainder can be reverted and its deciding
// swap flagged.
type existenceEntry struct {
	pos xcore.EdgeID
	val xcore.Edge
}

// resolveExistenceAndApply is stages 3-5: existence resolution against
// the untouched remainder, then a k-way merge that applies the batch
// without re-sorting the whole edge stream.
//
// Existence resolution here is a single pass: every touched position's
// finalized value is compared, in sorted order, against the untouched
// stream. A collision means some untouched edge already has the value a
// swap just produced, so the swap that last wrote that position is marked
// a conflict and every position it last wrote reverts to its original
// value. This does not cascade
// -- reverting one position does not re-examine touched-vs-touched
// decisions that depended on the now-reverted value. A full dependency
// chain would resolve that by feeding reverted values back through
// another round of the chain; this engine accepts the rarer second-order
// miss instead of an unbounded number of passes, and documents it as a
// known limitation rather than silently dropping the check.
func (e *Engine) resolveExistenceAndApply(b *batch, results []xcore.SwapResult) (*xstream.EdgeStream, []xcore.SwapResult, error) {
	entries := make([]existenceEntry, 0, len(b.current))
	for pos, v := range b.current {
		entries = append(entries, existenceEntry{pos: pos, val: v})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].val.Less(entries[j].val) })

	if err := b.untouched.Rewind(); err != nil {
		return nil, nil, fmt.Errorf("emes: rewind untouched: %w", err)
	}
	ei := 0
	for !b.untouched.Empty() && ei < len(entries) {
		u := b.untouched.Current()
		for ei < len(entries) && entries[ei].val.Less(u) {
			ei++
		}
		if ei < len(entries) && entries[ei].val.Equal(u) {
			pos := entries[ei].pos
			if w, ok := b.lastWrite[pos]; ok && !b.original[pos].Equal(b.current[pos]) {
				for _, p := range b.resolved[w] {
					if b.lastWrite[p] == w {
						delete(b.owner, b.current[p])
						b.current[p] = b.original[p]
						b.owner[b.original[p]] = p
					}
				}
				results[w].Performed = false
				results[w].Conflict[0], results[w].Conflict[1] = true, true
			}
			ei++
			continue
		}
		if err := b.untouched.Advance(); err != nil {
			return nil, nil, fmt.Errorf("emes: scan untouched: %w", err)
		}
	}
	if err := b.untouched.Rewind(); err != nil {
		return nil, nil, fmt.Errorf("emes: rewind untouched for apply: %w", err)
	}

	touchedBuilder := extsort.NewBuilder[xcore.Edge](e.rt, "emes-touched-final", edgeLess, edgeCodec{})
	for _, v := range b.current {
		if err := touchedBuilder.Push(v); err != nil {
			return nil, nil, fmt.Errorf("emes: touched final: %w", err)
		}
	}
	touchedFinal, err := touchedBuilder.Sorted()
	if err != nil {
		return nil, nil, fmt.Errorf("emes: touched final: %w", err)
	}

	merged, err := e.applyMerge(b.untouched, touchedFinal)
	if err != nil {
		return nil, nil, err
	}
	return merged, results, nil
}

// applyMerge is stage 5: a k-way merge of the untouched passthrough and
// the batch's finalized touched values, both already sorted, via an
// extpq.Heap so the output never needs a full re-sort of the edge
// stream.
func (e *Engine) applyMerge(untouched, touched *extsort.Stream[xcore.Edge]) (*xstream.EdgeStream, error) {
	pq := extpq.NewHeap[mergeItem](e.rt, "emes-apply", 1024, mergeItemLess, mergeItemCodec{})

	push := func(src int, s *extsort.Stream[xcore.Edge]) error {
		if s.Empty() {
			return nil
		}
		return pq.Push(mergeItem{value: s.Current(), src: src})
	}
	if err := push(0, untouched); err != nil {
		return nil, err
	}
	if err := push(1, touched); err != nil {
		return nil, err
	}

	out, err := xstream.NewEdgeStream(e.rt, e.cfg.AllowMultiInOutput, e.cfg.AllowLoopsInOutput)
	if err != nil {
		return nil, fmt.Errorf("emes: apply output stream: %w", err)
	}

	for !pq.Empty() {
		item, err := pq.Pop()
		if err != nil {
			return nil, fmt.Errorf("emes: apply merge pop: %w", err)
		}
		if err := out.Push(item.value); err != nil {
			return nil, fmt.Errorf("emes: apply merge push: %w", err)
		}

		var src *extsort.Stream[xcore.Edge]
		if item.src == 0 {
			src = untouched
		} else {
			src = touched
		}
		if err := src.Advance(); err != nil {
			return nil, fmt.Errorf("emes: apply merge advance: %w", err)
		}
		if err := push(item.src, src); err != nil {
			return nil, err
		}
	}

	_ = untouched.Close()
	_ = touched.Close()
	if err := out.Rewind(); err != nil {
		return nil, fmt.Errorf("emes: apply output rewind: %w", err)
	}
	return out, nil
}
