package emes

import (
	"encoding/binary"
	"io"
	"sort"

	"github.com/nodebound/exmgraph/extsort"
	"github.com/nodebound/exmgraph/runtime"
	"github.com/nodebound/exmgraph/xcore"
)

// touch records one swap's reference to an edge position, the unit the
// dependency-chain pass sorts to discover which swaps interact: two
// touches sharing an edgeID name swaps that cannot be decided
// independently of each other.
type touch struct {
	edgeID xcore.EdgeID
	swapID xcore.SwapID
}

func touchLess(a, b touch) bool {
	if a.edgeID != b.edgeID {
		return a.edgeID < b.edgeID
	}
	return a.swapID < b.swapID
}

type touchCodec struct{}

func (touchCodec) Encode(w io.Writer, t touch) error {
	var buf [16]byte
	binary.LittleEndian.PutUint64(buf[0:8], uint64(t.edgeID))
	binary.LittleEndian.PutUint64(buf[8:16], uint64(t.swapID))
	_, err := w.Write(buf[:])
	return err
}

func (touchCodec) Decode(r io.Reader) (touch, error) {
	var buf [16]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		if err == io.ErrUnexpectedEOF {
			err = io.EOF
		}
		return touch{}, err
	}
	return touch{
		edgeID: xcore.EdgeID(binary.LittleEndian.Uint64(buf[0:8])),
		swapID: xcore.SwapID(binary.LittleEndian.Uint64(buf[8:16])),
	}, nil
}

// chain is the dependency chain's result: for every edge position touched
// by at least one swap, the ascending sequence of swaps that reference
// it. Its footprint is bounded by the batch's own touch count (at most
// two entries per swap), never by the size of the edge stream the batch
// runs against.
type chain struct {
	swapsByEdge map[xcore.EdgeID][]xcore.SwapID
	touchedIDs  []xcore.EdgeID // ascending, deduplicated
}

// buildChain sorts every swap's (edgeID, swapID) touches via extsort and
// folds the sorted run into the forwarding chain: a single sorted pass
// over data sized to the swap batch, not the graph.
func buildChain(rt *runtime.Runtime, positions [][2]xcore.EdgeID, swapIDs []xcore.SwapID) (*chain, error) {
	b := extsort.NewBuilder[touch](rt, "emes-depchain", touchLess, touchCodec{})
	for i, pos := range positions {
		if err := b.Push(touch{edgeID: pos[0], swapID: swapIDs[i]}); err != nil {
			return nil, err
		}
		if err := b.Push(touch{edgeID: pos[1], swapID: swapIDs[i]}); err != nil {
			return nil, err
		}
	}
	sorted, err := b.Sorted()
	if err != nil {
		return nil, err
	}
	defer sorted.Close()

	c := &chain{swapsByEdge: make(map[xcore.EdgeID][]xcore.SwapID, len(positions))}
	for !sorted.Empty() {
		t := sorted.Current()
		list := c.swapsByEdge[t.edgeID]
		if len(list) == 0 {
			c.touchedIDs = append(c.touchedIDs, t.edgeID)
		}
		if len(list) == 0 || list[len(list)-1] != t.swapID {
			c.swapsByEdge[t.edgeID] = append(list, t.swapID)
		}
		if err := sorted.Advance(); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// unionFind groups edge positions that some swap names together, so that
// two swaps sharing no position can be decided by independent workers
// with no shared mutable state between them.
type unionFind struct {
	parent map[xcore.EdgeID]xcore.EdgeID
}

func newUnionFind() *unionFind {
	return &unionFind{parent: make(map[xcore.EdgeID]xcore.EdgeID)}
}

func (u *unionFind) find(x xcore.EdgeID) xcore.EdgeID {
	if _, ok := u.parent[x]; !ok {
		u.parent[x] = x
	}
	for u.parent[x] != x {
		u.parent[x] = u.parent[u.parent[x]]
		x = u.parent[x]
	}
	return x
}

func (u *unionFind) union(a, b xcore.EdgeID) {
	ra, rb := u.find(a), u.find(b)
	if ra != rb {
		u.parent[ra] = rb
	}
}

// groupSwaps partitions swap indices [0,len(positions)) into groups that
// touch disjoint edge positions, each group's indices kept in ascending
// order. Groups are returned in ascending order of their union-find root
// position.
func groupSwaps(positions [][2]xcore.EdgeID) [][]int {
	uf := newUnionFind()
	for _, pos := range positions {
		uf.union(pos[0], pos[1])
	}
	byRoot := make(map[xcore.EdgeID][]int)
	var roots []xcore.EdgeID
	for i, pos := range positions {
		root := uf.find(pos[0])
		if _, ok := byRoot[root]; !ok {
			roots = append(roots, root)
		}
		byRoot[root] = append(byRoot[root], i)
	}
	sort.Slice(roots, func(i, j int) bool { return roots[i] < roots[j] })
	groups := make([][]int, 0, len(roots))
	for _, r := range roots {
		groups = append(groups, byRoot[r])
	}
	return groups
}

// mergeItem tags a value with which of stage 5's two sorted sources (the
// untouched passthrough or the batch's finalized edges) it came from, for
// the k-way merge that replaces re-sorting the whole output from scratch.
type mergeItem struct {
	value xcore.Edge
	src   int
}

func mergeItemLess(a, b mergeItem) bool {
	if !a.value.Equal(b.value) {
		return a.value.Less(b.value)
	}
	return a.src < b.src
}

type mergeItemCodec struct{}

func (mergeItemCodec) Encode(w io.Writer, m mergeItem) error {
	var buf [12]byte
	binary.LittleEndian.PutUint32(buf[0:4], uint32(m.value.U))
	binary.LittleEndian.PutUint32(buf[4:8], uint32(m.value.V))
	binary.LittleEndian.PutUint32(buf[8:12], uint32(m.src))
	_, err := w.Write(buf[:])
	return err
}

func (mergeItemCodec) Decode(r io.Reader) (mergeItem, error) {
	var buf [12]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		if err == io.ErrUnexpectedEOF {
			err = io.EOF
		}
		return mergeItem{}, err
	}
	return mergeItem{
		value: xcore.Edge{
			U: xcore.NodeID(binary.LittleEndian.Uint32(buf[0:4])),
			V: xcore.NodeID(binary.LittleEndian.Uint32(buf[4:8])),
		},
		src: int(binary.LittleEndian.Uint32(buf[8:12])),
	}, nil
}
