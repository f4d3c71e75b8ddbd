package hhgen

import (
	"fmt"

	"github.com/nodebound/exmgraph/xcore"
	"github.com/nodebound/exmgraph/xstream"
)

// Direction is the order in which degrees are pushed into a Generator.
type Direction int

const (
	// Increasing means the caller pushes degrees from smallest to
	// largest (node ids then need reversing once generation starts).
	Increasing Direction = iota
	// Decreasing means the caller pushes degrees from largest to
	// smallest.
	Decreasing
)

type mode int

const (
	modePush mode = iota
	modeGenerate
)

// block is a run of consecutive node ids sharing the same residual
// degree.
type block struct {
	degree             xcore.Degree
	nodeLower, nodeUpper xcore.NodeID
}

func (b block) size() int32 { return int32(b.nodeUpper-b.nodeLower) + 1 }

// Generator realizes a monotone degree sequence into an edge list via
// the block-checkout Havel-Hakimi construction (spec §4.3).
type Generator struct {
	mode      mode
	direction Direction

	initialNode     xcore.NodeID
	pushCurrentNode xcore.NodeID
	maxEdges        xcore.EdgeID

	blocks         []block // back = highest degree once sorted for generation
	blocksCheckout []block // stack; last element is top

	empty              bool
	currentEdge        xcore.Edge
	remainingNeighbors xcore.Degree

	unsatisfiedDegree int64
	unsatisfiedNodes  int64
}

// NewGenerator creates a Generator in push mode, ready to receive degrees
// via Push, starting node ids at initialNode.
func NewGenerator(direction Direction, initialNode xcore.NodeID) *Generator {
	return &Generator{
		mode:            modePush,
		direction:       direction,
		initialNode:     initialNode,
		pushCurrentNode: initialNode,
	}
}

// Push records one vertex's degree. Degrees must be pushed in the order
// declared by direction and must be strictly positive — callers filter
// out degree-0 vertices themselves, since they contribute no edges.
func (g *Generator) Push(deg xcore.Degree) error {
	if g.mode != modePush {
		return fmt.Errorf("hhgen: Push called after Generate")
	}
	if deg <= 0 {
		return fmt.Errorf("hhgen: Push requires a strictly positive degree, got %d", deg)
	}

	if len(g.blocks) == 0 {
		g.blocks = append(g.blocks, block{degree: deg, nodeLower: g.pushCurrentNode, nodeUpper: g.pushCurrentNode})
	} else if g.direction == Increasing {
		last := &g.blocks[len(g.blocks)-1]
		if last.degree == deg {
			last.nodeUpper = g.pushCurrentNode
		} else if deg > last.degree {
			g.blocks = append(g.blocks, block{degree: deg, nodeLower: g.pushCurrentNode, nodeUpper: g.pushCurrentNode})
		} else {
			return fmt.Errorf("hhgen: degree sequence not increasing at node %d", g.pushCurrentNode)
		}
	} else {
		first := &g.blocks[0]
		if first.degree == deg {
			first.nodeUpper = g.pushCurrentNode
		} else if deg < first.degree {
			g.blocks = append([]block{{degree: deg, nodeLower: g.pushCurrentNode, nodeUpper: g.pushCurrentNode}}, g.blocks...)
		} else {
			return fmt.Errorf("hhgen: degree sequence not decreasing at node %d", g.pushCurrentNode)
		}
	}

	g.pushCurrentNode++
	g.maxEdges += xcore.EdgeID(deg)
	return nil
}

// PushAll pushes every positive entry of ds, in order, skipping degree-0
// nodes. It is the convenience path from spec §4.3's "consumes a
// monotone degree sequence".
func (g *Generator) PushAll(ds xstream.DegreeStream) error {
	for !ds.Empty() {
		deg := ds.Current()
		if deg > 0 {
			if err := g.Push(deg); err != nil {
				return err
			}
		} else {
			g.pushCurrentNode++
		}
		if err := ds.Advance(); err != nil {
			return err
		}
	}
	return nil
}

// Generate switches the Generator from push mode into the streaming
// generation phase. After this call, Empty/Current/Advance serve the
// realizing edge list.
func (g *Generator) Generate() {
	g.maxEdges /= 2

	if g.direction == Increasing {
		for i := range g.blocks {
			b := &g.blocks[i]
			newUpper := g.pushCurrentNode - 1 - b.nodeLower + g.initialNode
			newLower := g.pushCurrentNode - 1 - b.nodeUpper + g.initialNode
			b.nodeLower, b.nodeUpper = newLower, newUpper
		}
	}

	g.mode = modeGenerate
	g.empty = len(g.blocks) == 0
	g.remainingNeighbors = 0
	g.fetchNextEdge()
}

// checkoutBlock removes the highest-degree block from the back of blocks
// (or records an unsatisfied deficit if none remain), producing the next
// neighbor for the vertex currently being emitted.
func (g *Generator) checkoutBlock() {
	if len(g.blocks) == 0 {
		g.unsatisfiedNodes++
		g.unsatisfiedDegree += int64(g.remainingNeighbors)
		g.remainingNeighbors = 0
		g.fetchNextEdge()
		return
	}

	b := g.blocks[len(g.blocks)-1]
	if b.size() > int32(g.remainingNeighbors) {
		g.blocks[len(g.blocks)-1].nodeUpper -= xcore.NodeID(g.remainingNeighbors)
		b.nodeLower = g.blocks[len(g.blocks)-1].nodeUpper + 1
	} else {
		g.blocks = g.blocks[:len(g.blocks)-1]
	}

	b.degree--
	g.blocksCheckout = append(g.blocksCheckout, b)

	g.currentEdge.V = b.nodeLower
	g.remainingNeighbors--
}

// restoreBlocks returns every checked-out block to the deque, merging
// adjacent blocks whose degree and node ranges now match.
func (g *Generator) restoreBlocks() {
	for len(g.blocksCheckout) > 0 && g.blocksCheckout[len(g.blocksCheckout)-1].degree == 0 {
		g.blocksCheckout = g.blocksCheckout[:len(g.blocksCheckout)-1]
	}
	if len(g.blocksCheckout) == 0 {
		return
	}
	if len(g.blocks) == 0 {
		g.blocks = append(g.blocks, g.blocksCheckout[len(g.blocksCheckout)-1])
		g.blocksCheckout = g.blocksCheckout[:len(g.blocksCheckout)-1]
	}

	for len(g.blocksCheckout) > 0 {
		top := g.blocksCheckout[len(g.blocksCheckout)-1]
		g.blocksCheckout = g.blocksCheckout[:len(g.blocksCheckout)-1]

		back := &g.blocks[len(g.blocks)-1]
		if top.degree == back.degree && top.nodeUpper+1 == back.nodeLower {
			back.nodeLower = top.nodeLower
		} else if top.degree < back.degree {
			i := len(g.blocks) - 1
			for i > 0 && g.blocks[i-1].degree > top.degree {
				i--
			}
			g.blocks = append(g.blocks, block{})
			copy(g.blocks[i+1:], g.blocks[i:])
			g.blocks[i] = top
		} else {
			g.blocks = append(g.blocks, top)
		}
	}
}

func (g *Generator) fetchNextEdge() {
	if g.remainingNeighbors > 0 {
		g.currentEdge.V++
		top := g.blocksCheckout[len(g.blocksCheckout)-1]
		if top.nodeUpper < g.currentEdge.V {
			g.checkoutBlock()
		} else {
			g.remainingNeighbors--
		}
		return
	}

	g.restoreBlocks()

	if len(g.blocks) == 0 {
		g.empty = true
		return
	}

	back := &g.blocks[len(g.blocks)-1]
	g.currentEdge.U = back.nodeLower
	back.nodeLower++
	g.remainingNeighbors = back.degree

	if back.nodeLower > back.nodeUpper {
		g.blocks = g.blocks[:len(g.blocks)-1]
	}

	g.checkoutBlock()
}

// Advance moves to the next edge. Must only be called when Empty() is
// false.
func (g *Generator) Advance() error {
	if g.mode != modeGenerate {
		return fmt.Errorf("hhgen: Advance called before Generate")
	}
	g.fetchNextEdge()
	return nil
}

// Current returns the edge at the cursor, normalized U<=V per spec
// §4.3's output contract.
func (g *Generator) Current() xcore.Edge { return xcore.NewEdge(g.currentEdge.U, g.currentEdge.V) }

// Empty reports whether generation is exhausted.
func (g *Generator) Empty() bool { return g.empty }

// MaxEdges returns (sum of degrees)/2.
func (g *Generator) MaxEdges() xcore.EdgeID { return g.maxEdges }

// UnsatisfiedDegree returns the total residual degree that could not be
// realized (spec §7's ErrUnrealizableSequence reporting path).
func (g *Generator) UnsatisfiedDegree() int64 { return g.unsatisfiedDegree }

// UnsatisfiedNodes returns the number of vertices left with a residual
// deficit.
func (g *Generator) UnsatisfiedNodes() int64 { return g.unsatisfiedNodes }
