package extsort

import "io"

// Codec teaches a Builder[T] how to serialize and deserialize T to a run
// file. Each message type in emes/emcb implements a small Codec of its
// own (fixed-width encoding/binary LittleEndian Put/Get over a byte
// buffer); extsort stays free of
// reflection.
type Codec[T any] interface {
	Encode(w io.Writer, v T) error
	Decode(r io.Reader) (T, error)
}
