package emcb

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nodebound/exmgraph/xcore"
)

func TestTrade_PreservesTotalDegree(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	u, v := xcore.NodeID(0), xcore.NodeID(1)
	nu := []xcore.NodeID{2, 3, 4, 1}
	nv := []xcore.NodeID{2, 5, 0}

	newNu, newNv, _ := trade(rng, u, v, nu, nv)
	require.Len(t, newNu, len(nu))
	require.Len(t, newNv, len(nv))

	require.True(t, containsNode(newNu, v))
	require.True(t, containsNode(newNv, u))
}

func TestTrade_NoEdgeBetweenUAndVStaysAbsent(t *testing.T) {
	rng := rand.New(rand.NewSource(9))
	u, v := xcore.NodeID(0), xcore.NodeID(1)
	nu := []xcore.NodeID{2, 3}
	nv := []xcore.NodeID{4, 5}

	newNu, newNv, _ := trade(rng, u, v, nu, nv)
	require.False(t, containsNode(newNu, v))
	require.False(t, containsNode(newNv, u))
	require.Len(t, newNu, 2)
	require.Len(t, newNv, 2)
}

func TestTrade_CommonNeighborsKeptOnBothSides(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	u, v := xcore.NodeID(0), xcore.NodeID(1)
	nu := []xcore.NodeID{9, 2}
	nv := []xcore.NodeID{9, 3}

	newNu, newNv, _ := trade(rng, u, v, nu, nv)
	require.True(t, containsNode(newNu, 9))
	require.True(t, containsNode(newNv, 9))
}

// TestTrade_ReassignedNeighborsAreReported exercises exactly the gap that
// broke degree preservation: every disjoint neighbor that ends up on the
// other side of the trade must appear in reassigned, tagged with which
// node it moved from and to, so the caller can fix up that neighbor's
// own adjacency list. A neighbor that stays on its original side must
// not be reported at all.
func TestTrade_ReassignedNeighborsAreReported(t *testing.T) {
	rng := rand.New(rand.NewSource(5))
	u, v := xcore.NodeID(0), xcore.NodeID(1)
	nu := []xcore.NodeID{2, 3, 4}
	nv := []xcore.NodeID{5, 6}

	newNu, newNv, reassigned := trade(rng, u, v, nu, nv)

	moved := make(map[xcore.NodeID]reassignment, len(reassigned))
	for _, r := range reassigned {
		_, dup := moved[r.node]
		require.Falsef(t, dup, "node %d reassigned more than once in a single trade", r.node)
		moved[r.node] = r
	}

	for _, w := range []xcore.NodeID{2, 3, 4} {
		inNu := containsNode(newNu, w)
		inNv := containsNode(newNv, w)
		require.NotEqual(t, inNu, inNv, "node %d must end up on exactly one side", w)
		if inNv {
			r, ok := moved[w]
			require.True(t, ok, "node %d moved to v's side without a reassignment record", w)
			require.Equal(t, u, r.from)
			require.Equal(t, v, r.to)
		} else {
			require.NotContains(t, moved, w)
		}
	}
	for _, w := range []xcore.NodeID{5, 6} {
		inNu := containsNode(newNu, w)
		inNv := containsNode(newNv, w)
		require.NotEqual(t, inNu, inNv, "node %d must end up on exactly one side", w)
		if inNu {
			r, ok := moved[w]
			require.True(t, ok, "node %d moved to u's side without a reassignment record", w)
			require.Equal(t, v, r.from)
			require.Equal(t, u, r.to)
		} else {
			require.NotContains(t, moved, w)
		}
	}
}

// TestTrade_ReassignmentsOverManySeedsStayConsistent sweeps seeds so the
// shuffle explores every possible split of the disjoint union, checking
// the from/to invariant holds regardless of which way a given neighbor
// happens to land.
func TestTrade_ReassignmentsOverManySeedsStayConsistent(t *testing.T) {
	u, v := xcore.NodeID(0), xcore.NodeID(1)
	for seed := int64(0); seed < 50; seed++ {
		rng := rand.New(rand.NewSource(seed))
		nu := []xcore.NodeID{2, 3, 4, 5}
		nv := []xcore.NodeID{6, 7, 8}

		newNu, newNv, reassigned := trade(rng, u, v, nu, nv)
		require.Len(t, newNu, len(nu))
		require.Len(t, newNv, len(nv))

		for _, r := range reassigned {
			if r.from == u {
				require.Equal(t, v, r.to)
				require.True(t, containsNode(newNv, r.node), "seed %d", seed)
				require.False(t, containsNode(newNu, r.node), "seed %d", seed)
			} else {
				require.Equal(t, u, r.to)
				require.True(t, containsNode(newNu, r.node), "seed %d", seed)
				require.False(t, containsNode(newNv, r.node), "seed %d", seed)
			}
		}
	}
}
