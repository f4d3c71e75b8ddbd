package xstream

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"github.com/nodebound/exmgraph/runtime"
	"github.com/nodebound/exmgraph/xcore"
)

const wordBits = 64

// BoolStream is a bit-packed, append-only boolean sequence with separate
// write and read phases (spec §3/§4.2). Push appends while in write
// mode; Consume finalizes the last, possibly partial, word (padded with
// zero bits) and switches to read mode; Rewind restarts the read cursor.
type BoolStream struct {
	rt *runtime.Runtime

	mode streamMode

	file   *os.File
	writer *bufio.Writer
	reader *bufio.Reader
	seq    uint64

	bufferedWord    uint64
	remainingBits   uint
	itemsConsumable int64
	itemsStored     int64
}

// NewBoolStream creates an empty BoolStream in write mode.
func NewBoolStream(rt *runtime.Runtime) (*BoolStream, error) {
	b := &BoolStream{rt: rt}
	if err := b.Clear(); err != nil {
		return nil, err
	}
	return b, nil
}

// Clear discards all contents and switches back to write mode.
func (b *BoolStream) Clear() error {
	b.closeFiles()

	f, err := b.rt.TempFile("boolstream", b.seq)
	if err != nil {
		return fmt.Errorf("xstream: boolstream temp file: %w: %w", err, xcore.ErrIoFailure)
	}
	b.seq++
	b.file = f
	b.writer = bufio.NewWriter(f)
	b.reader = nil

	b.mode = modeWriting
	b.bufferedWord = 0
	b.remainingBits = wordBits
	b.itemsConsumable = 0
	b.itemsStored = 0
	return nil
}

func (b *BoolStream) closeFiles() {
	if b.file != nil {
		name := b.file.Name()
		_ = b.file.Close()
		_ = os.Remove(name)
		b.file = nil
	}
}

// Push appends one bit. Must be called in write mode.
func (b *BoolStream) Push(bit bool) error {
	if b.mode != modeWriting {
		return fmt.Errorf("xstream: Push called while not in write mode: %w", xcore.ErrIoFailure)
	}
	b.bufferedWord <<= 1
	if bit {
		b.bufferedWord |= 1
	}
	b.remainingBits--
	b.itemsConsumable++

	if b.remainingBits == 0 {
		if err := b.flushWord(b.bufferedWord); err != nil {
			return err
		}
		b.remainingBits = wordBits
	}
	return nil
}

func (b *BoolStream) flushWord(word uint64) error {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], word)
	if _, err := b.writer.Write(buf[:]); err != nil {
		return fmt.Errorf("xstream: write word: %w: %w", err, xcore.ErrIoFailure)
	}
	return nil
}

// Consume finalizes the last partial word (left-shifted into place and
// zero-padded) and switches to read mode.
func (b *BoolStream) Consume() error {
	if b.mode != modeWriting {
		return fmt.Errorf("xstream: Consume called while not in write mode: %w", xcore.ErrIoFailure)
	}
	if b.remainingBits != wordBits {
		if err := b.flushWord(b.bufferedWord << b.remainingBits); err != nil {
			return err
		}
	}
	if err := b.writer.Flush(); err != nil {
		return fmt.Errorf("xstream: flush: %w: %w", err, xcore.ErrIoFailure)
	}

	b.itemsStored = b.itemsConsumable
	b.mode = modeReading
	return b.Rewind()
}

// Rewind restarts the read cursor at the first bit pushed, any number of
// times.
func (b *BoolStream) Rewind() error {
	if _, err := b.file.Seek(0, 0); err != nil {
		return fmt.Errorf("xstream: seek: %w: %w", err, xcore.ErrIoFailure)
	}
	b.reader = bufio.NewReader(b.file)
	b.itemsConsumable = b.itemsStored
	b.remainingBits = 0
	if b.itemsConsumable > 0 {
		return b.fetchWord()
	}
	return nil
}

func (b *BoolStream) fetchWord() error {
	var buf [8]byte
	if _, err := io.ReadFull(b.reader, buf[:]); err != nil {
		return fmt.Errorf("xstream: read word: %w: %w", err, xcore.ErrIoFailure)
	}
	b.bufferedWord = binary.LittleEndian.Uint64(buf[:])
	b.remainingBits = wordBits
	return nil
}

// Current returns the bit at the read cursor. Must only be called when
// Empty() is false.
func (b *BoolStream) Current() bool {
	return b.bufferedWord&(uint64(1)<<(wordBits-1)) != 0
}

// Advance moves the read cursor to the next bit.
func (b *BoolStream) Advance() error {
	b.bufferedWord <<= 1
	b.remainingBits--
	b.itemsConsumable--

	if b.remainingBits == 0 && b.itemsConsumable > 0 {
		return b.fetchWord()
	}
	return nil
}

// Empty reports whether the read cursor is exhausted.
func (b *BoolStream) Empty() bool { return b.itemsConsumable == 0 }

// Size returns the number of bits available (if the stream were
// rewound).
func (b *BoolStream) Size() int64 { return b.itemsStored }

// SizeHint implements Source[bool].
func (b *BoolStream) SizeHint() int64 { return b.itemsStored }

// Close releases the stream's backing temp file.
func (b *BoolStream) Close() error {
	b.closeFiles()
	return nil
}

var _ Source[bool] = (*BoolStream)(nil)
