package exmgraph_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	exmgraph "github.com/nodebound/exmgraph"
	"github.com/nodebound/exmgraph/config"
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

func drainDegrees(t *testing.T, s *xstream.EdgeStream, numNodes int64) map[xcore.NodeID]int {
	t.Helper()
	deg := make(map[xcore.NodeID]int)
	for !s.Empty() {
		e := s.Current()
		deg[e.U]++
		deg[e.V]++
		require.NoError(t, s.Advance())
	}
	return deg
}

func TestRun_HavelHakimiThenEdgeSwap_PreservesDegreeSequence(t *testing.T) {
	rt := newTestRuntime(t)
	cfg := config.New(
		config.WithNumNodes(6),
		config.WithDegreeRange(2, 2),
		config.WithInputMethod(config.InputHH),
		config.WithNumSwaps(20),
		config.WithRunSize(10),
		config.WithMemoryBudget(1<<20),
		config.WithSeeds(7, 7),
	)
	degrees := xstream.NewSliceDegreeStream([]xcore.Degree{2, 2, 2, 2, 2, 2})

	out, err := exmgraph.Run(rt, cfg, degrees, exmgraph.RunOptions{Randomizer: exmgraph.RandomizerEdgeSwap})
	require.NoError(t, err)

	deg := drainDegrees(t, out, cfg.NumNodes)
	for node := xcore.NodeID(0); node < xcore.NodeID(cfg.NumNodes); node++ {
		require.Equal(t, 2, deg[node], "node %d", node)
	}
}

func TestRun_ConfigModelBootstrapThenCurveball_PreservesDegreeSequence(t *testing.T) {
	rt := newTestRuntime(t)
	cfg := config.New(
		config.WithNumNodes(8),
		config.WithDegreeRange(3, 3),
		config.WithInputMethod(config.InputCMES),
		config.WithNumSwaps(1),
		config.WithRunSize(10),
		config.WithMemoryBudget(1<<20),
		config.WithSeeds(3, 3),
	)
	degrees := xstream.NewSliceDegreeStream([]xcore.Degree{3, 3, 3, 3, 3, 3, 3, 3})

	out, err := exmgraph.Run(rt, cfg, degrees, exmgraph.RunOptions{
		Randomizer:              exmgraph.RandomizerCurveball,
		CurveballRounds:         2,
		CurveballMacrochunkSize: 4,
	})
	require.NoError(t, err)

	deg := drainDegrees(t, out, cfg.NumNodes)
	for node := xcore.NodeID(0); node < xcore.NodeID(cfg.NumNodes); node++ {
		require.Equal(t, 3, deg[node], "node %d", node)
	}
}

func TestRun_RejectsInvalidDescriptor(t *testing.T) {
	rt := newTestRuntime(t)
	cfg := config.New()
	cfg.NumNodes = 0

	degrees := xstream.NewSliceDegreeStream(nil)
	_, err := exmgraph.Run(rt, cfg, degrees, exmgraph.RunOptions{})
	require.ErrorIs(t, err, xcore.ErrConfigError)
}
