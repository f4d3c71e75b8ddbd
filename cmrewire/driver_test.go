package cmrewire_test

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nodebound/exmgraph/cmrewire"
	"github.com/nodebound/exmgraph/xcore"
	"github.com/nodebound/exmgraph/xstream"
)

// randomEvenDegreeSequence builds a degree sequence guaranteed to sum to
// an even number (a necessary condition for realizability) by drawing
// each degree from [1, maxDegree] and bumping degs[0] by one when the
// sum is odd.
func randomEvenDegreeSequence(rng *rand.Rand, n int, maxDegree int) []xcore.Degree {
	degs := make([]xcore.Degree, n)
	sum := 0
	for i := range degs {
		d := 1 + rng.Intn(maxDegree)
		degs[i] = xcore.Degree(d)
		sum += d
	}
	if sum%2 != 0 {
		degs[0]++
	}
	return degs
}

// TestDriver_PreservesDegreeSequenceAcrossRandomSequencesAndSeeds sweeps
// random degree sequences and driver seeds so the illegal-edge-repair
// loop is exercised against many distinct loop/parallel-edge shapes, not
// just the single hand-picked 4-cycle below.
func TestDriver_PreservesDegreeSequenceAcrossRandomSequencesAndSeeds(t *testing.T) {
	for trial := 0; trial < 15; trial++ {
		trial := trial
		t.Run("", func(t *testing.T) {
			rt := newTestRuntime(t)
			bootstrapRng := rand.New(rand.NewSource(int64(500 + trial)))
			n := 4 + trial%10
			seq := randomEvenDegreeSequence(bootstrapRng, n, n-1)
			degrees := xstream.NewSliceDegreeStream(seq)

			raw, err := cmrewire.Bootstrap(rt, degrees, bootstrapRng)
			require.NoError(t, err)

			driver := cmrewire.NewDriver(rt, uint64(trial*13+1), cmrewire.WithMaxStallRounds(50))
			out, err := driver.Rewire(raw)
			require.NoError(t, err)

			final := drain(t, out)
			degree := make(map[xcore.NodeID]int)
			for i, e := range final {
				require.False(t, e.IsLoop())
				if i > 0 {
					require.False(t, e.Equal(final[i-1]), "trial %d: parallel edge survived rewiring", trial)
				}
				degree[e.U]++
				degree[e.V]++
			}
			for node := 0; node < n; node++ {
				require.Equalf(t, int(seq[node]), degree[xcore.NodeID(node)], "trial %d: node %d", trial, node)
			}
		})
	}
}

func TestDriver_RewiresToSimpleGraph(t *testing.T) {
	rt := newTestRuntime(t)
	degrees := xstream.NewSliceDegreeStream([]xcore.Degree{2, 2, 2, 2})
	rng := rand.New(rand.NewSource(1))

	raw, err := cmrewire.Bootstrap(rt, degrees, rng)
	require.NoError(t, err)

	driver := cmrewire.NewDriver(rt, 2, cmrewire.WithMaxStallRounds(50))
	out, err := driver.Rewire(raw)
	require.NoError(t, err)

	final := drain(t, out)
	require.Len(t, final, 4)

	degree := make(map[xcore.NodeID]int)
	for i, e := range final {
		require.False(t, e.IsLoop())
		if i > 0 {
			require.False(t, e.Equal(final[i-1]))
		}
		degree[e.U]++
		degree[e.V]++
	}
	for node := xcore.NodeID(0); node < 4; node++ {
		require.Equal(t, 2, degree[node])
	}
}
