package emcb_test

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nodebound/exmgraph/emcb"
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

func degrees(edges []xcore.Edge) map[xcore.NodeID]int {
	d := make(map[xcore.NodeID]int)
	for _, e := range edges {
		d[e.U]++
		d[e.V]++
	}
	return d
}

func TestEngine_PreservesDegreeSequence(t *testing.T) {
	rt := newTestRuntime(t)
	// 4-cycle: every node has degree 2.
	input := []xcore.Edge{
		xcore.NewEdge(0, 1),
		xcore.NewEdge(0, 3),
		xcore.NewEdge(1, 2),
		xcore.NewEdge(2, 3),
	}
	before := degrees(input)

	es := edgeSource(t, rt, input)
	eng := emcb.New(rt, 42)
	out, err := eng.Run(es, 4, 3, 2, 2)
	require.NoError(t, err)

	final := drain(t, out)
	require.Len(t, final, len(input))
	after := degrees(final)
	require.Equal(t, before, after)

	for _, e := range final {
		require.False(t, e.IsLoop())
	}
}

func TestEngine_FinalRoundUsesIdentityHash(t *testing.T) {
	rt := newTestRuntime(t)
	input := []xcore.Edge{
		xcore.NewEdge(0, 1),
		xcore.NewEdge(1, 2),
	}
	es := edgeSource(t, rt, input)
	eng := emcb.New(rt, 7)
	out, err := eng.Run(es, 3, 1, 2, 1)
	require.NoError(t, err)

	final := drain(t, out)
	for _, e := range final {
		require.True(t, e.U >= 0 && int64(e.U) < 3)
		require.True(t, e.V >= 0 && int64(e.V) < 3)
	}
}

// randomSimpleGraph builds a random loop-free, multi-edge-free edge list
// over [0, numNodes) by sampling candidate pairs and rejecting repeats.
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
	sortEdges(out)
	return out
}

func sortEdges(edges []xcore.Edge) {
	for i := 1; i < len(edges); i++ {
		for j := i; j > 0 && edges[j].Less(edges[j-1]); j-- {
			edges[j], edges[j-1] = edges[j-1], edges[j]
		}
	}
}

// TestEngine_PreservesDegreeSequenceAcrossRandomGraphsAndSeeds is an
// adversarial property check: trade.go's reassignment propagation (see
// trade_test.go) is what keeps this from drifting, but only a sweep over
// many random macrochunk partitions and RNG seeds exercises enough
// distinct third-party-reassignment shapes to catch a regression that a
// single fixed 4-cycle (TestEngine_PreservesDegreeSequence) would miss by
// coincidence of its seed.
func TestEngine_PreservesDegreeSequenceAcrossRandomGraphsAndSeeds(t *testing.T) {
	for trial := 0; trial < 20; trial++ {
		trial := trial
		t.Run("", func(t *testing.T) {
			rt := newTestRuntime(t)
			rng := rand.New(rand.NewSource(int64(1000 + trial)))
			numNodes := 5 + rng.Intn(20)
			input := randomSimpleGraph(rng, numNodes, numNodes*2)
			if len(input) == 0 {
				return
			}
			before := degrees(input)

			es := edgeSource(t, rt, input)
			eng := emcb.New(rt, uint64(trial*97+1))
			macrochunk := 2 + rng.Intn(4)
			workers := 1 + rng.Intn(3)
			out, err := eng.Run(es, int64(numNodes), 1+rng.Intn(3), macrochunk, workers)
			require.NoError(t, err)

			final := drain(t, out)
			after := degrees(final)
			for node, d := range before {
				require.Equalf(t, d, after[node], "trial %d: node %d degree drifted", trial, node)
			}
			for _, e := range final {
				require.False(t, e.IsLoop())
			}
		})
	}
}

// TestEngine_ThirdPartyReassignmentPreservesDegree pins down exactly the
// counterexample shape that broke degree preservation before trade
// propagated reassignments to the third endpoint: a center traded with
// another node, where each leaf that changes sides must still see its
// own edge moved to the center's trade partner rather than duplicated.
func TestEngine_ThirdPartyReassignmentPreservesDegree(t *testing.T) {
	rt := newTestRuntime(t)
	// 0 is adjacent to 2 and 5; 1 is adjacent to 8. With 9 nodes, one
	// round (the identity hash) and macrochunks of 3, the traded pairs are
	// (0,1), (3,4) and (6,7), and 2, 5 and 8 trade with nobody. Trading
	// (0,1) splits {2,5,8} between 0 and 1 -- whichever leaf changes sides
	// must see its edge (0,w) become (1,w) or the reverse, not both.
	input := []xcore.Edge{
		xcore.NewEdge(0, 2),
		xcore.NewEdge(0, 5),
		xcore.NewEdge(1, 8),
	}
	before := degrees(input)

	for seed := uint64(0); seed < 12; seed++ {
		es := edgeSource(t, rt, input)
		eng := emcb.New(rt, seed)
		out, err := eng.Run(es, 9, 1, 3, 1)
		require.NoError(t, err)

		final := drain(t, out)
		after := degrees(final)
		require.Equalf(t, before, after, "seed %d", seed)
	}
}

func TestEngine_RejectsNonPositiveRounds(t *testing.T) {
	rt := newTestRuntime(t)
	es := edgeSource(t, rt, []xcore.Edge{xcore.NewEdge(0, 1)})
	eng := emcb.New(rt, 1)
	_, err := eng.Run(es, 2, 0, 2, 1)
	require.ErrorIs(t, err, xcore.ErrConfigError)
}
