package emes

import (
	"encoding/binary"
	"io"

	"github.com/nodebound/exmgraph/xcore"
)

// edgeCodec is the extsort.Codec[xcore.Edge] used to re-sort a batch's
// mutated edge positions back into ascending order for re-emission.
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

func edgeLess(a, b xcore.Edge) bool { return a.Less(b) }
