package exmgraph

import (
	"fmt"
	"math/rand"

	"github.com/nodebound/exmgraph/cmrewire"
	"github.com/nodebound/exmgraph/config"
	"github.com/nodebound/exmgraph/emcb"
	"github.com/nodebound/exmgraph/emes"
	"github.com/nodebound/exmgraph/hhgen"
	"github.com/nodebound/exmgraph/runtime"
	"github.com/nodebound/exmgraph/swapgen"
	"github.com/nodebound/exmgraph/xcore"
	"github.com/nodebound/exmgraph/xstream"
)

// Randomizer selects which degree-preserving randomizer Run applies
// after the initial graph is built.
type Randomizer int

const (
	RandomizerEdgeSwap Randomizer = iota
	RandomizerCurveball
)

// RunOptions parameterizes one end-to-end invocation: build a graph per
// cfg.InputMethod, then randomize it.
type RunOptions struct {
	Randomizer Randomizer

	// CurveballRounds and CurveballMacrochunkSize configure
	// RandomizerCurveball; ignored otherwise.
	CurveballRounds         int
	CurveballMacrochunkSize int

	// Workers bounds parallelism for both emes.RunParallel and
	// emcb.Engine.Run's macrochunk trading.
	Workers int
}

// Run builds a graph from cfg and degrees, then applies the configured
// randomizer, returning the final sorted edge stream.
func Run(rt *runtime.Runtime, cfg *config.Descriptor, degrees xstream.DegreeStream, opts RunOptions) (*xstream.EdgeStream, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	built, err := build(rt, cfg, degrees)
	if err != nil {
		return nil, err
	}

	switch opts.Randomizer {
	case RandomizerCurveball:
		rounds := opts.CurveballRounds
		if rounds <= 0 {
			rounds = 1
		}
		chunk := opts.CurveballMacrochunkSize
		if chunk <= 0 {
			chunk = 64
		}
		eng := emcb.New(rt, cfg.RandomSeed)
		return eng.Run(built, cfg.NumNodes, rounds, chunk, opts.Workers)

	default:
		numEdges := countEdges(built)
		built.Rewind()

		requested := cfg.EffectiveNumSwaps(numEdges)
		gen, err := swapgen.New(requested, numEdges, cfg.RandomSeed, nil)
		if err != nil {
			return nil, err
		}
		var swaps []emes.Swap
		var id xcore.SwapID
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

		eng := emes.New(rt, emes.Config{})
		if opts.Workers > 1 {
			out, _, err := eng.RunParallel(built, swaps, opts.Workers)
			return out, err
		}
		out, _, err := eng.Run(built, swaps)
		return out, err
	}
}

// build realizes the initial graph per cfg.InputMethod.
func build(rt *runtime.Runtime, cfg *config.Descriptor, degrees xstream.DegreeStream) (*xstream.EdgeStream, error) {
	switch cfg.InputMethod {
	case config.InputHH:
		return buildHH(rt, degrees)
	case config.InputCMES:
		return buildCMES(rt, cfg, degrees)
	default:
		return nil, fmt.Errorf("exmgraph: input method %q requires an externally supplied edge stream: %w",
			cfg.InputMethod, xcore.ErrConfigError)
	}
}

func buildHH(rt *runtime.Runtime, degrees xstream.DegreeStream) (*xstream.EdgeStream, error) {
	g := hhgen.NewGenerator(hhgen.Increasing, 0)
	if err := g.PushAll(degrees); err != nil {
		return nil, err
	}
	g.Generate()

	out, err := xstream.NewEdgeStream(rt, false, false)
	if err != nil {
		return nil, err
	}
	for !g.Empty() {
		if err := out.Push(g.Current()); err != nil {
			return nil, err
		}
		if err := g.Advance(); err != nil {
			return nil, err
		}
	}
	if err := out.Rewind(); err != nil {
		return nil, err
	}
	return out, nil
}

func buildCMES(rt *runtime.Runtime, cfg *config.Descriptor, degrees xstream.DegreeStream) (*xstream.EdgeStream, error) {
	raw, err := cmrewire.Bootstrap(rt, degrees, rand.New(rand.NewSource(int64(cfg.RandomSeed))))
	if err != nil {
		return nil, err
	}
	driver := cmrewire.NewDriver(rt, cfg.RandomSeed, cmrewire.WithRandomSwapFraction(cfg.CMESRandomSwapFraction))
	return driver.Rewire(raw)
}

func countEdges(s *xstream.EdgeStream) int64 {
	n := int64(0)
	for !s.Empty() {
		n++
		if err := s.Advance(); err != nil {
			return n
		}
	}
	return n
}
