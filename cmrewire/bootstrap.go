package cmrewire

import (
	"encoding/binary"
	"io"
	"math/rand"

	"github.com/nodebound/exmgraph/extsort"
	"github.com/nodebound/exmgraph/runtime"
	"github.com/nodebound/exmgraph/xcore"
	"github.com/nodebound/exmgraph/xstream"
)

// half is one labeled half-edge: node is the vertex it belongs to, key
// is its random sort key for the pairing shuffle.
type half struct {
	key  uint64
	node xcore.NodeID
}

func halfLess(a, b half) bool { return a.key < b.key }

type halfCodec struct{}

func (halfCodec) Encode(w io.Writer, h half) error {
	var buf [12]byte
	binary.LittleEndian.PutUint64(buf[0:8], h.key)
	binary.LittleEndian.PutUint32(buf[8:12], uint32(h.node))
	_, err := w.Write(buf[:])
	return err
}

func (halfCodec) Decode(r io.Reader) (half, error) {
	var buf [12]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		if err == io.ErrUnexpectedEOF {
			err = io.EOF
		}
		return half{}, err
	}
	return half{
		key:  binary.LittleEndian.Uint64(buf[0:8]),
		node: xcore.NodeID(binary.LittleEndian.Uint32(buf[8:12])),
	}, nil
}

func edgeLess(a, b xcore.Edge) bool { return a.Less(b) }

type edgeCodec struct{}

func (edgeCodec) Encode(w io.Writer, e xcore.Edge) error {
	var buf [8]byte
	binary.LittleEndian.PutUint32(buf[0:4], uint32(e.U))
	binary.LittleEndian.PutUint32(buf[4:8], uint32(e.V))
	_, err := w.Write(buf[:])
	return err
}

func (edgeCodec) Decode(r io.Reader) (xcore.Edge, error) {
	var buf [8]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		if err == io.ErrUnexpectedEOF {
			err = io.EOF
		}
		return xcore.Edge{}, err
	}
	u := xcore.NodeID(binary.LittleEndian.Uint32(buf[0:4]))
	v := xcore.NodeID(binary.LittleEndian.Uint32(buf[4:8]))
	return xcore.Edge{U: u, V: v}, nil
}

// Bootstrap realizes degrees into a raw edge stream by labeling Σd_i
// half-edges with their owning node, shuffling them via a sort under a
// random key, and pairing consecutive halves. The result may contain
// self-loops and parallel edges; Driver below removes them.
func Bootstrap(rt *runtime.Runtime, degrees xstream.DegreeStream, rng *rand.Rand) (*xstream.EdgeStream, error) {
	halves := extsort.NewBuilder[half](rt, "cmrewire-halves", halfLess, halfCodec{})

	var node xcore.NodeID
	for !degrees.Empty() {
		d := degrees.Current()
		for k := xcore.Degree(0); k < d; k++ {
			if err := halves.Push(half{key: rng.Uint64(), node: node}); err != nil {
				return nil, err
			}
		}
		node++
		if err := degrees.Advance(); err != nil {
			return nil, err
		}
	}

	shuffled, err := halves.Sorted()
	if err != nil {
		return nil, err
	}
	defer shuffled.Close()

	edges := extsort.NewBuilder[xcore.Edge](rt, "cmrewire-bootstrap-edges", edgeLess, edgeCodec{})
	for !shuffled.Empty() {
		a := shuffled.Current()
		if err := shuffled.Advance(); err != nil {
			return nil, err
		}
		if shuffled.Empty() {
			// odd total degree: the teacher-style stub matcher never
			// reaches this since callers are expected to pass an
			// even-sum degree sequence; drop the orphaned stub rather
			// than fabricate a partner.
			break
		}
		b := shuffled.Current()
		if err := shuffled.Advance(); err != nil {
			return nil, err
		}
		if err := edges.Push(xcore.NewEdge(a.node, b.node)); err != nil {
			return nil, err
		}
	}

	sorted, err := edges.Sorted()
	if err != nil {
		return nil, err
	}
	defer sorted.Close()

	out, err := xstream.NewEdgeStream(rt, true, true)
	if err != nil {
		return nil, err
	}
	for !sorted.Empty() {
		if err := out.Push(sorted.Current()); err != nil {
			return nil, err
		}
		if err := sorted.Advance(); err != nil {
			return nil, err
		}
	}
	if err := out.Rewind(); err != nil {
		return nil, err
	}
	return out, nil
}
