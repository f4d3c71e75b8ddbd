package emcb

import (
	"math/rand"

	"github.com/nodebound/exmgraph/xcore"
)

// reassignment records that node moved from being a neighbor of from to
// being a neighbor of to as a side effect of trading from and to's own
// neighborhoods. The caller must propagate this into node's own
// adjacency list -- trade only ever touches the two nodes it is given,
// so the correction is the caller's responsibility to forward.
type reassignment struct {
	node xcore.NodeID
	from xcore.NodeID
	to   xcore.NodeID
}

// tagged marks which side of a trade a disjoint neighbor originally
// belonged to, so a post-shuffle move to the other side can be reported
// as a reassignment.
type tagged struct {
	id    xcore.NodeID
	fromU bool
}

// trade repartitions the disjoint union of u's and v's neighborhoods
// between them uniformly at random, preserving the edge {u,v} itself if
// it was present. Every neighbor that changes owner is reported via
// reassigned so the caller can keep the third party's own adjacency
// list in sync; without that propagation the old and new edge would
// both survive dedupEdges, inflating the degree of every
// reassigned neighbor.
func trade(rng *rand.Rand, u, v xcore.NodeID, nu, nv []xcore.NodeID) (newNu, newNv []xcore.NodeID, reassigned []reassignment) {
	hasEdge := containsNode(nu, v)

	setU := withoutNode(nu, v)
	setV := withoutNode(nv, u)

	inV := make(map[xcore.NodeID]bool, len(setV))
	for _, n := range setV {
		inV[n] = true
	}

	var common []xcore.NodeID
	var disjoint []tagged
	seen := make(map[xcore.NodeID]bool, len(setU)+len(setV))
	for _, n := range setU {
		if seen[n] {
			continue
		}
		seen[n] = true
		if inV[n] {
			common = append(common, n)
		} else {
			disjoint = append(disjoint, tagged{id: n, fromU: true})
		}
	}
	for _, n := range setV {
		if seen[n] {
			continue
		}
		seen[n] = true
		disjoint = append(disjoint, tagged{id: n, fromU: false})
	}

	rng.Shuffle(len(disjoint), func(i, j int) { disjoint[i], disjoint[j] = disjoint[j], disjoint[i] })

	uOtherCount := len(setU) - len(common)
	if uOtherCount > len(disjoint) {
		uOtherCount = len(disjoint)
	}
	uOther := disjoint[:uOtherCount]
	vOther := disjoint[uOtherCount:]

	newNu = append(append([]xcore.NodeID{}, common...), tagIDs(uOther)...)
	newNv = append(append([]xcore.NodeID{}, common...), tagIDs(vOther)...)

	for _, t := range uOther {
		if !t.fromU {
			reassigned = append(reassigned, reassignment{node: t.id, from: v, to: u})
		}
	}
	for _, t := range vOther {
		if t.fromU {
			reassigned = append(reassigned, reassignment{node: t.id, from: u, to: v})
		}
	}

	if hasEdge {
		newNu = append(newNu, v)
		newNv = append(newNv, u)
	}
	return newNu, newNv, reassigned
}

func tagIDs(ts []tagged) []xcore.NodeID {
	out := make([]xcore.NodeID, len(ts))
	for i, t := range ts {
		out[i] = t.id
	}
	return out
}

func containsNode(ns []xcore.NodeID, target xcore.NodeID) bool {
	for _, n := range ns {
		if n == target {
			return true
		}
	}
	return false
}

func withoutNode(ns []xcore.NodeID, target xcore.NodeID) []xcore.NodeID {
	out := make([]xcore.NodeID, 0, len(ns))
	for _, n := range ns {
		if n != target {
			out = append(out, n)
		}
	}
	return out
}
