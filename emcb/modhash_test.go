package emcb

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nodebound/exmgraph/xcore"
)

func TestModHash_InvertRoundTrips(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	h := RandomModHash(rng, 100)
	for n := xcore.NodeID(0); int64(n) < 100; n++ {
		hashed := h.Hash(n)
		require.Equal(t, int64(n), h.Invert(hashed))
	}
}

func TestIdentityModHash_MapsEveryNodeToItself(t *testing.T) {
	h := IdentityModHash(50)
	for n := xcore.NodeID(0); int64(n) < 50; n++ {
		require.Equal(t, int64(n), h.Hash(n))
	}
}

func TestNextPrime_ExceedsInput(t *testing.T) {
	for _, n := range []int64{1, 2, 10, 97, 100} {
		p := nextPrime(n)
		require.Greater(t, p, n)
		require.True(t, isPrime(p))
	}
}
