package hhgen

import (
	"container/list"
	"fmt"

	"github.com/nodebound/exmgraph/xcore"
)

// rleBlock mirrors block in generator.go but uses an exclusive upper
// bound, matching original_source's HavelHakimiRIMGenerator so whole
// node ranges can be emitted in one pass instead of one block at a time.
type rleBlock struct {
	degree               xcore.Degree
	nodeLower, nodeUpper xcore.NodeID
}

func (b *rleBlock) size() xcore.NodeID { return b.nodeUpper - b.nodeLower }

// GeneratorRLE is the run-length emitting Havel-Hakimi variant (spec
// §4.8): instead of yielding one edge per Advance, Generate walks whole
// contiguous node ranges of its block list and passes each edge of a
// range to a sink, one sink call per edge.
type GeneratorRLE struct {
	direction       Direction
	blocks          *list.List // of *rleBlock
	initialNode     xcore.NodeID
	pushCurrentNode xcore.NodeID
	degreeSum       xcore.EdgeID
	maxEdges        xcore.EdgeID
}

// NewGeneratorRLE creates a GeneratorRLE in push mode.
func NewGeneratorRLE(direction Direction, initialNode xcore.NodeID) *GeneratorRLE {
	return &GeneratorRLE{
		direction:       direction,
		blocks:          list.New(),
		initialNode:     initialNode,
		pushCurrentNode: initialNode,
	}
}

// Push records nodes consecutive vertices sharing degree deg.
func (g *GeneratorRLE) Push(deg xcore.Degree, nodes xcore.NodeID) error {
	if nodes <= 0 {
		return fmt.Errorf("hhgen: Push requires nodes > 0, got %d", nodes)
	}
	if deg <= 0 {
		return fmt.Errorf("hhgen: Push requires a strictly positive degree, got %d", deg)
	}

	if g.blocks.Len() == 0 {
		g.blocks.PushBack(&rleBlock{degree: deg, nodeLower: g.pushCurrentNode, nodeUpper: g.pushCurrentNode + nodes})
	} else {
		back := g.blocks.Back().Value.(*rleBlock)
		if back.degree == deg {
			back.nodeUpper += nodes
		} else {
			if g.direction == Increasing && deg < back.degree {
				return fmt.Errorf("hhgen: degree sequence not increasing at node %d", g.pushCurrentNode)
			}
			if g.direction == Decreasing && deg > back.degree {
				return fmt.Errorf("hhgen: degree sequence not decreasing at node %d", g.pushCurrentNode)
			}
			g.blocks.PushBack(&rleBlock{degree: deg, nodeLower: g.pushCurrentNode, nodeUpper: g.pushCurrentNode + nodes})
		}
	}

	g.pushCurrentNode += nodes
	g.degreeSum += xcore.EdgeID(deg) * xcore.EdgeID(nodes)
	return nil
}

func emitRange(sink func(xcore.Edge) error, source, from xcore.NodeID, count xcore.NodeID) error {
	for i := xcore.NodeID(0); i < count; i++ {
		if err := sink(xcore.NewEdge(source, from+i)); err != nil {
			return err
		}
	}
	return nil
}

// Generate realizes the pushed degree sequence, calling sink once per
// output edge (batched internally by contiguous node range, per the
// block-splitting logic of the original construction).
func (g *GeneratorRLE) Generate(sink func(xcore.Edge) error) error {
	if g.direction == Decreasing {
		rev := list.New()
		nid := g.initialNode
		for g.blocks.Len() > 0 {
			back := g.blocks.Back()
			b := back.Value.(*rleBlock)
			sz := b.size()
			rev.PushBack(&rleBlock{degree: b.degree, nodeLower: nid, nodeUpper: nid + sz})
			nid += sz
			g.blocks.Remove(back)
		}
		g.blocks = rev
	}

	g.maxEdges = g.degreeSum / 2

	for g.blocks.Len() > 0 {
		front := g.blocks.Front()
		fb := front.Value.(*rleBlock)
		currentNode := fb.nodeLower
		fb.nodeLower++
		degree := fb.degree
		if fb.size() == 0 {
			g.blocks.Remove(front)
		}

		degreeRemain := degree
		reader := g.blocks.Back()

		for degreeRemain > 0 && reader != nil {
			rb := reader.Value.(*rleBlock)
			if rb.degree == 0 {
				break
			}

			size := rb.size()
			if size <= xcore.NodeID(degreeRemain) {
				rb.degree--
				degreeRemain -= xcore.Degree(size)
				reader = reader.Prev()
				continue
			}

			if prevEl := reader.Prev(); prevEl != nil && prevEl.Value.(*rleBlock).degree+1 == rb.degree {
				prevB := prevEl.Value.(*rleBlock)
				if err := emitRange(sink, currentNode, prevB.nodeUpper, xcore.NodeID(degreeRemain)); err != nil {
					return err
				}
				prevB.nodeUpper += xcore.NodeID(degreeRemain)
				rb.nodeLower = prevB.nodeUpper
			} else if nextEl := reader.Next(); nextEl != nil && nextEl.Value.(*rleBlock).degree == rb.degree {
				nextB := nextEl.Value.(*rleBlock)
				if err := emitRange(sink, currentNode, rb.nodeLower, xcore.NodeID(degreeRemain)); err != nil {
					return err
				}
				if err := emitRange(sink, currentNode, nextB.nodeLower, nextB.size()); err != nil {
					return err
				}
				rb.degree--
				rb.nodeUpper = rb.nodeLower + xcore.NodeID(degreeRemain)
				nextB.nodeLower = rb.nodeUpper
				reader = nextEl
			} else {
				if err := emitRange(sink, currentNode, rb.nodeLower, xcore.NodeID(degreeRemain)); err != nil {
					return err
				}
				newBlock := &rleBlock{degree: rb.degree - 1, nodeLower: rb.nodeLower, nodeUpper: rb.nodeLower + xcore.NodeID(degreeRemain)}
				inserted := g.blocks.InsertBefore(newBlock, reader)
				rb.nodeLower += xcore.NodeID(degreeRemain)
				reader = inserted
			}
			degreeRemain = 0
		}

		if reader != nil {
			if nextEl := reader.Next(); nextEl != nil {
				nb := nextEl.Value.(*rleBlock)
				backB := g.blocks.Back().Value.(*rleBlock)
				if err := emitRange(sink, currentNode, nb.nodeLower, backB.nodeUpper-nb.nodeLower); err != nil {
					return err
				}
				rbPrev := reader.Value.(*rleBlock)
				if g.blocks.Len() > 1 && rbPrev.degree == nb.degree {
					rbPrev.nodeUpper = nb.nodeUpper
					g.blocks.Remove(nextEl)
				}
			}
		} else if g.blocks.Len() > 0 {
			frontEl := g.blocks.Front()
			nb := frontEl.Value.(*rleBlock)
			backB := g.blocks.Back().Value.(*rleBlock)
			if err := emitRange(sink, currentNode, nb.nodeLower, backB.nodeUpper-nb.nodeLower); err != nil {
				return err
			}
		}

		for g.blocks.Len() > 0 {
			fe := g.blocks.Front()
			if fe.Value.(*rleBlock).degree == 0 {
				g.blocks.Remove(fe)
			} else {
				break
			}
		}
	}

	return nil
}

// MaxEdges returns (sum of degrees)/2, valid after Generate has run.
func (g *GeneratorRLE) MaxEdges() xcore.EdgeID { return g.maxEdges }
