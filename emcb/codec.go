package emcb

import (
	"encoding/binary"
	"io"

	"github.com/nodebound/exmgraph/xcore"
)

// roundMsg carries one endpoint's view of an incident edge for the
// current round's neighbor-collection pass: owner's hash is the sort
// key, other is the neighbor node id.
type roundMsg struct {
	ownerHash int64
	owner     xcore.NodeID
	other     xcore.NodeID
}

func msgLess(a, b roundMsg) bool {
	if a.ownerHash != b.ownerHash {
		return a.ownerHash < b.ownerHash
	}
	if a.owner != b.owner {
		return a.owner < b.owner
	}
	return a.other < b.other
}

type msgCodec struct{}

func (msgCodec) Encode(w io.Writer, m roundMsg) error {
	var buf [16]byte
	binary.LittleEndian.PutUint64(buf[0:8], uint64(m.ownerHash))
	binary.LittleEndian.PutUint32(buf[8:12], uint32(m.owner))
	binary.LittleEndian.PutUint32(buf[12:16], uint32(m.other))
	_, err := w.Write(buf[:])
	return err
}

func (msgCodec) Decode(r io.Reader) (roundMsg, error) {
	var buf [16]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		if err == io.ErrUnexpectedEOF {
			err = io.EOF
		}
		return roundMsg{}, err
	}
	return roundMsg{
		ownerHash: int64(binary.LittleEndian.Uint64(buf[0:8])),
		owner:     xcore.NodeID(binary.LittleEndian.Uint32(buf[8:12])),
		other:     xcore.NodeID(binary.LittleEndian.Uint32(buf[12:16])),
	}, nil
}

// correction carries a deferred adjacency fix-up for a node that did not
// trade this round but had a neighbor reassigned by a trade it took no
// part in: remove must be dropped from target's own list and add put in
// its place. targetHash sorts corrections into the same hash-rank order
// the round's node sequence uses, so they can be merged against it in a
// single forward pass.
type correction struct {
	targetHash int64
	target     xcore.NodeID
	remove     xcore.NodeID
	add        xcore.NodeID
}

func correctionLess(a, b correction) bool {
	if a.targetHash != b.targetHash {
		return a.targetHash < b.targetHash
	}
	if a.remove != b.remove {
		return a.remove < b.remove
	}
	return a.add < b.add
}

type correctionCodec struct{}

func (correctionCodec) Encode(w io.Writer, c correction) error {
	var buf [24]byte
	binary.LittleEndian.PutUint64(buf[0:8], uint64(c.targetHash))
	binary.LittleEndian.PutUint32(buf[8:12], uint32(c.target))
	binary.LittleEndian.PutUint32(buf[12:16], uint32(c.remove))
	binary.LittleEndian.PutUint32(buf[16:20], uint32(c.add))
	_, err := w.Write(buf[:])
	return err
}

func (correctionCodec) Decode(r io.Reader) (correction, error) {
	var buf [24]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		if err == io.ErrUnexpectedEOF {
			err = io.EOF
		}
		return correction{}, err
	}
	return correction{
		targetHash: int64(binary.LittleEndian.Uint64(buf[0:8])),
		target:     xcore.NodeID(binary.LittleEndian.Uint32(buf[8:12])),
		remove:     xcore.NodeID(binary.LittleEndian.Uint32(buf[12:16])),
		add:        xcore.NodeID(binary.LittleEndian.Uint32(buf[16:20])),
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
