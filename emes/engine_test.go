package emes_test

import (
	"math/rand"
	"sort"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nodebound/exmgraph/emes"
	"github.com/nodebound/exmgraph/runtime"
	"github.com/nodebound/exmgraph/xcore"
	"github.com/nodebound/exmgraph/xstream"
)

func newTestRuntime(t *testing.T) *runtime.Runtime {
	t.Helper()
	dir := t.TempDir()
	rt := runtime.New(runtime.WithTempDir(dir))
	t.Cleanup(func() { _ = rt.Cleanup() })
	return rt
}

func edgeSource(t *testing.T, rt *runtime.Runtime, edges []xcore.Edge) *xstream.EdgeStream {
	t.Helper()
	es, err := xstream.NewEdgeStream(rt, false, false)
	require.NoError(t, err)
	for _, e := range edges {
		require.NoError(t, es.Push(e))
	}
	require.NoError(t, es.Rewind())
	return es
}

func drain(t *testing.T, s *xstream.EdgeStream) []xcore.Edge {
	t.Helper()
	var out []xcore.Edge
	for !s.Empty() {
		out = append(out, s.Current())
		require.NoError(t, s.Advance())
	}
	return out
}

func TestEngine_SuccessfulSwap(t *testing.T) {
	rt := newTestRuntime(t)
	// A 4-cycle: (0,1) (1,2) (2,3) (0,3). Swapping edges (0,1) and (2,3)
	// with direction=false yields (0,2) and (1,3) -- neither a loop, and
	// neither target currently exists.
	input := []xcore.Edge{
		xcore.NewEdge(0, 1),
		xcore.NewEdge(0, 3),
		xcore.NewEdge(1, 2),
		xcore.NewEdge(2, 3),
	}
	es := edgeSource(t, rt, input)

	eng := emes.New(rt, emes.Config{})
	swaps := []emes.Swap{
		{ID: 0, Sides: [2]emes.Side{emes.ByEdgeID(0), emes.ByEdgeID(3)}, Direction: false},
	}
	out, results, err := eng.Run(es, swaps)
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.True(t, results[0].Performed)
	require.False(t, results[0].Loop)

	final := drain(t, out)
	require.Len(t, final, 4)

	degree := make(map[xcore.NodeID]int)
	for _, e := range final {
		degree[e.U]++
		degree[e.V]++
	}
	for node, d := range degree {
		require.Equalf(t, 2, d, "node %d", node)
	}
}

func TestEngine_RejectsLoopCreatingSwap(t *testing.T) {
	rt := newTestRuntime(t)
	// Edges (0,1) and (1,2): swapping with direction that targets (1,1)
	// must be rejected as a loop.
	input := []xcore.Edge{
		xcore.NewEdge(0, 1),
		xcore.NewEdge(1, 2),
	}
	es := edgeSource(t, rt, input)

	eng := emes.New(rt, emes.Config{})
	swaps := []emes.Swap{
		{ID: 0, Sides: [2]emes.Side{emes.ByEdgeID(0), emes.ByEdgeID(1)}, Direction: true},
	}
	_, results, err := eng.Run(es, swaps)
	require.NoError(t, err)
	require.False(t, results[0].Performed)
	require.True(t, results[0].Loop)
}

func TestEngine_RejectsConflictingSwap(t *testing.T) {
	rt := newTestRuntime(t)
	// Edges (0,2), (1,3), (0,1), (2,3): swapping (0,2)&(1,3) with
	// direction=false targets (0,1) and (2,3), both of which already
	// exist -- must be rejected as a conflict, not performed.
	input := []xcore.Edge{
		xcore.NewEdge(0, 1),
		xcore.NewEdge(0, 2),
		xcore.NewEdge(1, 3),
		xcore.NewEdge(2, 3),
	}
	es := edgeSource(t, rt, input)

	eng := emes.New(rt, emes.Config{})
	swaps := []emes.Swap{
		{ID: 0, Sides: [2]emes.Side{emes.ByEdgeID(1), emes.ByEdgeID(2)}, Direction: false},
	}
	_, results, err := eng.Run(es, swaps)
	require.NoError(t, err)
	require.False(t, results[0].Performed)
	require.False(t, results[0].Loop)
	require.True(t, results[0].Conflict[0] || results[0].Conflict[1])
}

func TestEngine_RejectsEqualEdgeIDs(t *testing.T) {
	rt := newTestRuntime(t)
	input := []xcore.Edge{xcore.NewEdge(0, 1), xcore.NewEdge(2, 3)}
	es := edgeSource(t, rt, input)

	eng := emes.New(rt, emes.Config{})
	swaps := []emes.Swap{
		{ID: 0, Sides: [2]emes.Side{emes.ByEdgeID(0), emes.ByEdgeID(0)}},
	}
	_, _, err := eng.Run(es, swaps)
	require.ErrorIs(t, err, xcore.ErrDisjointEdgesRequired)
}

func TestEngine_PreservesEdgeCount(t *testing.T) {
	rt := newTestRuntime(t)
	input := []xcore.Edge{
		xcore.NewEdge(0, 1),
		xcore.NewEdge(0, 3),
		xcore.NewEdge(1, 2),
		xcore.NewEdge(2, 3),
	}
	es := edgeSource(t, rt, input)

	eng := emes.New(rt, emes.Config{})
	swaps := []emes.Swap{
		{ID: 0, Sides: [2]emes.Side{emes.ByEdgeID(0), emes.ByEdgeID(3)}, Direction: false},
		{ID: 1, Sides: [2]emes.Side{emes.ByEdgeID(1), emes.ByEdgeID(2)}, Direction: true},
	}
	out, results, err := eng.Run(es, swaps)
	require.NoError(t, err)
	require.Len(t, results, 2)
	require.Len(t, drain(t, out), len(input))
}

// TestEngine_SecondSwapSeesFirstSwapsCommittedValue exercises the
// dependency chain directly: two swaps in one batch both name edge id 0,
// so the second swap must decide against the value the first swap
// committed, not the position's original value in the stream.
func TestEngine_SecondSwapSeesFirstSwapsCommittedValue(t *testing.T) {
	rt := newTestRuntime(t)
	input := []xcore.Edge{
		xcore.NewEdge(0, 1), // id0
		xcore.NewEdge(2, 3), // id1
		xcore.NewEdge(4, 5), // id2
	}
	es := edgeSource(t, rt, input)

	eng := emes.New(rt, emes.Config{})
	swaps := []emes.Swap{
		// id0,id1 -> (0,2),(1,3)
		{ID: 0, Sides: [2]emes.Side{emes.ByEdgeID(0), emes.ByEdgeID(1)}, Direction: false},
		// id0 is now (0,2); paired against id2=(4,5) -> (0,4),(2,5), not
		// (0,1) and (4,5) crossed from the original stream value.
		{ID: 1, Sides: [2]emes.Side{emes.ByEdgeID(0), emes.ByEdgeID(2)}, Direction: false},
	}
	_, results, err := eng.Run(es, swaps)
	require.NoError(t, err)
	require.True(t, results[0].Performed)
	require.True(t, results[1].Performed)
	require.Equal(t, xcore.NewEdge(0, 2), results[0].Targets[0])
	require.Equal(t, xcore.NewEdge(1, 3), results[0].Targets[1])
	require.Equal(t, xcore.NewEdge(0, 4), results[1].Targets[0])
	require.Equal(t, xcore.NewEdge(2, 5), results[1].Targets[1])
}

// randomSimpleGraph builds a random loop-free, multi-edge-free edge list
// over [0, numNodes).
func randomSimpleGraph(rng *rand.Rand, numNodes int, targetEdges int) []xcore.Edge {
	seen := make(map[xcore.Edge]bool, targetEdges)
	var out []xcore.Edge
	for attempts := 0; len(out) < targetEdges && attempts < targetEdges*50; attempts++ {
		u := xcore.NodeID(rng.Intn(numNodes))
		v := xcore.NodeID(rng.Intn(numNodes))
		if u == v {
			continue
		}
		e := xcore.NewEdge(u, v)
		if seen[e] {
			continue
		}
		seen[e] = true
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Less(out[j]) })
	return out
}

// TestEngine_RandomBatchesPreserveDegreeAndCount sweeps random graphs,
// random disjoint-position swap batches, and both entry points so a
// regression in either the dependency-chain ordering (Run) or the
// grouped-concurrent path (RunParallel) shows up as a degree or count
// drift rather than only in a single hand-picked fixture.
func TestEngine_RandomBatchesPreserveDegreeAndCount(t *testing.T) {
	for trial := 0; trial < 20; trial++ {
		trial := trial
		t.Run("", func(t *testing.T) {
			rt := newTestRuntime(t)
			rng := rand.New(rand.NewSource(int64(2000 + trial)))
			numNodes := 6 + rng.Intn(20)
			input := randomSimpleGraph(rng, numNodes, numNodes*2)
			if len(input) < 2 {
				return
			}
			before := make(map[xcore.NodeID]int)
			for _, e := range input {
				before[e.U]++
				before[e.V]++
			}

			// Build a batch of swaps over disjoint pairs of positions so
			// every swap is guaranteed well-formed regardless of outcome.
			perm := rng.Perm(len(input))
			var swaps []emes.Swap
			for i := 0; i+1 < len(perm) && len(swaps) < 5; i += 2 {
				swaps = append(swaps, emes.Swap{
					ID:        xcore.SwapID(len(swaps)),
					Sides:     [2]emes.Side{emes.ByEdgeID(xcore.EdgeID(perm[i])), emes.ByEdgeID(xcore.EdgeID(perm[i+1]))},
					Direction: rng.Intn(2) == 1,
				})
			}
			if len(swaps) == 0 {
				return
			}

			es := edgeSource(t, rt, input)
			eng := emes.New(rt, emes.Config{})
			var out *xstream.EdgeStream
			var err error
			if trial%2 == 0 {
				out, _, err = eng.Run(es, swaps)
			} else {
				out, _, err = eng.RunParallel(es, swaps, 1+rng.Intn(3))
			}
			require.NoError(t, err)

			final := drain(t, out)
			require.Len(t, final, len(input))
			after := make(map[xcore.NodeID]int)
			for _, e := range final {
				after[e.U]++
				after[e.V]++
			}
			for node, d := range before {
				require.Equalf(t, d, after[node], "trial %d: node %d", trial, node)
			}
		})
	}
}

func TestEngine_SemiLoadedRejectsMissingValue(t *testing.T) {
	rt := newTestRuntime(t)
	input := []xcore.Edge{xcore.NewEdge(0, 1), xcore.NewEdge(2, 3)}
	es := edgeSource(t, rt, input)

	eng := emes.New(rt, emes.Config{})
	swaps := []emes.Swap{
		{ID: 0, Sides: [2]emes.Side{emes.ByEdgeValue(xcore.NewEdge(9, 9)), emes.ByEdgeID(0)}},
	}
	_, results, err := eng.Run(es, swaps)
	require.NoError(t, err)
	require.False(t, results[0].Performed)
}
