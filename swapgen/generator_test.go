package swapgen_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nodebound/exmgraph/swapgen"
	"github.com/nodebound/exmgraph/xcore"
)

func TestNew_RejectsTooFewEdges(t *testing.T) {
	_, err := swapgen.New(10, 1, 1, nil)
	require.ErrorIs(t, err, xcore.ErrConfigError)

	_, err = swapgen.New(10, 0, 1, nil)
	require.ErrorIs(t, err, xcore.ErrConfigError)
}

func TestGenerator_ProducesRequestedCountWithDistinctEdges(t *testing.T) {
	const requested = 500
	const edges = 100

	g, err := swapgen.New(requested, edges, 42, nil)
	require.NoError(t, err)

	var count int64
	for !g.Empty() {
		sd := g.Current()
		e1, e2 := sd.Edges()
		require.NotEqual(t, e1, e2)
		require.Less(t, e1, xcore.EdgeID(edges))
		require.GreaterOrEqual(t, e1, xcore.EdgeID(0))
		require.Less(t, e2, xcore.EdgeID(edges))
		require.Less(t, e1, e2, "NewSwapDescriptor orders e1 < e2")
		count++
		require.NoError(t, g.Advance())
	}
	require.Equal(t, int64(requested), count)
	require.Equal(t, int64(requested), g.SizeHint())
}

func TestGenerator_DeterministicForFixedSeed(t *testing.T) {
	g1, err := swapgen.New(50, 20, 7, nil)
	require.NoError(t, err)
	g2, err := swapgen.New(50, 20, 7, nil)
	require.NoError(t, err)

	for !g1.Empty() {
		require.Equal(t, g1.Current(), g2.Current())
		require.NoError(t, g1.Advance())
		require.NoError(t, g2.Advance())
	}
	require.True(t, g2.Empty())
}
