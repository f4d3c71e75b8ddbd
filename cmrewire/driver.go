package cmrewire

import (
	"fmt"
	"math/rand"

	"github.com/nodebound/exmgraph/emes"
	"github.com/nodebound/exmgraph/runtime"
	"github.com/nodebound/exmgraph/swapgen"
	"github.com/nodebound/exmgraph/xcore"
	"github.com/nodebound/exmgraph/xstream"
)

// Driver repeatedly targets a graph's illegal edges (loops, parallels)
// with semi-loaded swaps until the graph is simple (spec §4.7's
// rewiring loop).
type Driver struct {
	rt                 *runtime.Runtime
	rng                *rand.Rand
	randomSwapFraction float64
	maxStallRounds     int
}

// Option configures a Driver.
type Option func(*Driver)

// WithRandomSwapFraction sets x, the fraction of |E| additional random
// legal swaps mixed into each rewiring round (spec §4.7's "x·|E|").
// The default is 0.1.
func WithRandomSwapFraction(x float64) Option {
	return func(d *Driver) { d.randomSwapFraction = x }
}

// WithMaxStallRounds bounds how many consecutive rounds may pass
// without reducing the illegal-edge count before Rewire gives up. Spec
// §9 leaves this threshold an open question; the source hardcodes a
// retry count of 5 for an analogous loop, which is this option's
// default.
func WithMaxStallRounds(n int) Option {
	return func(d *Driver) { d.maxStallRounds = n }
}

// NewDriver builds a Driver seeded for reproducible random-swap
// selection.
func NewDriver(rt *runtime.Runtime, seed uint64, opts ...Option) *Driver {
	d := &Driver{
		rt:                 rt,
		rng:                rand.New(rand.NewSource(int64(seed))),
		randomSwapFraction: 0.1,
		maxStallRounds:     5,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Rewire runs rounds of semi-loaded swapping against edges until no
// loop or parallel edge remains.
func (d *Driver) Rewire(edges *xstream.EdgeStream) (*xstream.EdgeStream, error) {
	current, err := drainEdges(edges)
	if err != nil {
		return nil, err
	}

	bestIllegal := len(current) + 1
	stall := 0

	for {
		illegal := illegalPositions(current)
		if len(illegal) == 0 {
			return rebuild(d.rt, current)
		}

		if len(illegal) < bestIllegal {
			bestIllegal = len(illegal)
			stall = 0
		} else {
			stall++
			if stall >= d.maxStallRounds {
				return nil, fmt.Errorf("cmrewire: %d rounds without progress, %d illegal edges remain: %w",
					stall, len(illegal), xcore.ErrUnrealizableSequence)
			}
		}

		swaps, err := d.buildRound(current, illegal)
		if err != nil {
			return nil, err
		}

		snapshot, err := rebuild(d.rt, current)
		if err != nil {
			return nil, err
		}

		eng := emes.New(d.rt, emes.Config{AllowLoopsInOutput: true, AllowMultiInOutput: true})
		out, _, err := eng.Run(snapshot, swaps)
		if err != nil {
			return nil, err
		}

		current, err = drainEdges(out)
		if err != nil {
			return nil, err
		}
	}
}

// buildRound constructs one semi-loaded swap per illegal edge (the
// illegal edge matched by value, paired with a uniformly random edge
// id) plus x·|E| additional random legal swaps.
func (d *Driver) buildRound(edges []xcore.Edge, illegal []xcore.EdgeID) ([]emes.Swap, error) {
	n := int64(len(edges))
	var swaps []emes.Swap
	var id xcore.SwapID

	for _, pos := range illegal {
		other := xcore.EdgeID(d.rng.Int63n(n))
		for other == pos {
			other = xcore.EdgeID(d.rng.Int63n(n))
		}
		swaps = append(swaps, emes.Swap{
			ID:        id,
			Sides:     [2]emes.Side{emes.ByEdgeValue(edges[pos]), emes.ByEdgeID(other)},
			Direction: d.rng.Int63n(2) == 1,
		})
		id++
	}

	extra := int64(float64(n) * d.randomSwapFraction)
	if extra > 0 {
		gen, err := swapgen.New(extra, n, d.rng.Uint64(), d.rng)
		if err != nil {
			return nil, err
		}
		for !gen.Empty() {
			sd := gen.Current()
			e1, e2 := sd.Edges()
			swaps = append(swaps, emes.Swap{
				ID:        id,
				Sides:     [2]emes.Side{emes.ByEdgeID(e1), emes.ByEdgeID(e2)},
				Direction: sd.Direction(),
			})
			id++
			if err := gen.Advance(); err != nil {
				return nil, err
			}
		}
	}

	return swaps, nil
}

// illegalPositions returns the positions of every self-loop or member
// of a run of parallel edges in a sorted edge slice.
func illegalPositions(edges []xcore.Edge) []xcore.EdgeID {
	var illegal []xcore.EdgeID
	for i, e := range edges {
		isDupPrev := i > 0 && e.Equal(edges[i-1])
		isDupNext := i+1 < len(edges) && e.Equal(edges[i+1])
		if e.IsLoop() || isDupPrev || isDupNext {
			illegal = append(illegal, xcore.EdgeID(i))
		}
	}
	return illegal
}

func drainEdges(s *xstream.EdgeStream) ([]xcore.Edge, error) {
	var out []xcore.Edge
	for !s.Empty() {
		out = append(out, s.Current())
		if err := s.Advance(); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func rebuild(rt *runtime.Runtime, edges []xcore.Edge) (*xstream.EdgeStream, error) {
	out, err := xstream.NewEdgeStream(rt, true, true)
	if err != nil {
		return nil, err
	}
	for _, e := range edges {
		if err := out.Push(e); err != nil {
			return nil, err
		}
	}
	if err := out.Rewind(); err != nil {
		return nil, err
	}
	return out, nil
}
