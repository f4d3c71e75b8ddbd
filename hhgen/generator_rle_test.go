package hhgen_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nodebound/exmgraph/hhgen"
	"github.com/nodebound/exmgraph/xcore"
)

func TestGeneratorRLE_ThreeRegularSixNodes(t *testing.T) {
	g := hhgen.NewGeneratorRLE(hhgen.Increasing, 0)
	require.NoError(t, g.Push(3, 6))

	var edges []xcore.Edge
	require.NoError(t, g.Generate(func(e xcore.Edge) error {
		edges = append(edges, e)
		return nil
	}))

	require.EqualValues(t, 9, g.MaxEdges())
	require.Len(t, edges, 9)

	degree := make(map[xcore.NodeID]int)
	for _, e := range edges {
		require.False(t, e.IsLoop())
		degree[e.U]++
		degree[e.V]++
	}
	require.Len(t, degree, 6)
	for node, d := range degree {
		require.Equalf(t, 3, d, "node %d", node)
	}
}

func TestGeneratorRLE_StarGraph(t *testing.T) {
	g := hhgen.NewGeneratorRLE(hhgen.Increasing, 0)
	require.NoError(t, g.Push(1, 4))
	require.NoError(t, g.Push(4, 1))

	var edges []xcore.Edge
	require.NoError(t, g.Generate(func(e xcore.Edge) error {
		edges = append(edges, e)
		return nil
	}))

	require.Len(t, edges, 4)
	degree := make(map[xcore.NodeID]int)
	for _, e := range edges {
		degree[e.U]++
		degree[e.V]++
	}
	require.Equal(t, 4, degree[4])
}

func TestGeneratorRLE_RejectsNonPositiveInputs(t *testing.T) {
	g := hhgen.NewGeneratorRLE(hhgen.Increasing, 0)
	require.Error(t, g.Push(0, 1))
	require.Error(t, g.Push(1, 0))
}
