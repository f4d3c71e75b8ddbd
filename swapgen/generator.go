package swapgen

import (
	"fmt"
	"math/rand"

	"github.com/nodebound/exmgraph/xcore"
)

// Generator streams requestedSwaps random SwapDescriptors over the edge
// id range [0, edgesInGraph).
type Generator struct {
	edgesInGraph   int64
	requestedSwaps int64
	produced       int64

	rng     *rand.Rand
	current xcore.SwapDescriptor
	empty   bool
}

// New creates a Generator and primes its first swap. It returns
// ErrConfigError if edgesInGraph <= 1, since two distinct edge ids cannot
// be drawn otherwise (spec §4.4).
//
// rng may be nil, in which case a source seeded from seed is created —
// following the functional-option RNG convention of callers that already
// hold a runtime.Runtime seed.
func New(requestedSwaps, edgesInGraph int64, seed uint64, rng *rand.Rand) (*Generator, error) {
	if edgesInGraph <= 1 {
		return nil, fmt.Errorf("swapgen: need more than one edge in graph, got %d: %w", edgesInGraph, xcore.ErrConfigError)
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(int64(seed)))
	}

	g := &Generator{
		edgesInGraph:   edgesInGraph,
		requestedSwaps: requestedSwaps,
		rng:            rng,
	}
	g.advance()
	return g, nil
}

// Empty reports whether every requested swap has been produced.
func (g *Generator) Empty() bool { return g.empty }

// Current returns the swap at the cursor.
func (g *Generator) Current() xcore.SwapDescriptor { return g.current }

// Advance draws the next random swap.
func (g *Generator) Advance() error {
	g.advance()
	return nil
}

func (g *Generator) advance() {
	g.produced++
	if g.produced > g.requestedSwaps {
		g.empty = true
		return
	}

	for {
		e1 := xcore.EdgeID(g.rng.Int63n(g.edgesInGraph))
		e2 := xcore.EdgeID(g.rng.Int63n(g.edgesInGraph))
		if e1 == e2 {
			continue
		}
		direction := g.rng.Int63n(2) == 1

		sd, err := xcore.NewSwapDescriptor(e1, e2, direction)
		if err != nil {
			// e1 != e2 was just checked, so this branch is unreachable.
			continue
		}
		g.current = sd
		return
	}
}

// SizeHint returns the number of swaps requested at construction.
func (g *Generator) SizeHint() int64 { return g.requestedSwaps }
