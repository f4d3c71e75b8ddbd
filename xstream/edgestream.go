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

// streamMode mirrors the source's WRITING/READING enum.
type streamMode int

const (
	modeWriting streamMode = iota
	modeReading
)

// EdgeStream is an append-only, sorted, external-memory edge container.
//
// In write mode, Push requires non-decreasing lexicographic order (by
// Edge.U then Edge.V). For every run of edges sharing a head U, the
// tails are written consecutively; before the first edge of a new head,
// one xcore.InvalidNode sentinel is written per head step from the
// previous head (starting at head 0), i.e. one per intervening empty head
// plus one for the step onto the new head (spec §3/§4.1). After Rewind, a
// forward-only cursor yields the same sorted sequence any number of
// times.
type EdgeStream struct {
	rt *runtime.Runtime

	allowMulti bool
	allowLoops bool

	mode streamMode

	file   *os.File
	writer *bufio.Writer
	reader *bufio.Reader
	seq    uint64

	// write-mode state
	currentOutNode xcore.NodeID
	hasPushed      bool
	lastPushed     xcore.Edge

	numEdges     int64
	numLoops     int64
	numMultiedge int64

	// read-mode state
	empty   bool
	current xcore.Edge
}

// NewEdgeStream creates an empty EdgeStream in write mode.
func NewEdgeStream(rt *runtime.Runtime, allowMultiEdges, allowLoops bool) (*EdgeStream, error) {
	s := &EdgeStream{rt: rt, allowMulti: allowMultiEdges, allowLoops: allowLoops}
	if err := s.Clear(); err != nil {
		return nil, err
	}
	return s, nil
}

// Clear discards all contents and switches back to write mode, exactly
// as the source's clear() does.
func (s *EdgeStream) Clear() error {
	s.closeFiles()

	f, err := s.rt.TempFile("edgestream", s.seq)
	if err != nil {
		return fmt.Errorf("xstream: edgestream temp file: %w: %w", err, xcore.ErrIoFailure)
	}
	s.seq++
	s.file = f
	s.writer = bufio.NewWriter(f)
	s.reader = nil

	s.mode = modeWriting
	s.currentOutNode = 0
	s.hasPushed = false
	s.numEdges = 0
	s.numLoops = 0
	s.numMultiedge = 0
	s.empty = true
	s.current = xcore.Edge{}
	return nil
}

func (s *EdgeStream) closeFiles() {
	if s.file != nil {
		name := s.file.Name()
		_ = s.file.Close()
		_ = os.Remove(name)
		s.file = nil
	}
}

// Push appends e. e must be >= the previously pushed edge (ErrOrderViolation
// otherwise). Loop/multi-edge counters are always incremented; if the
// corresponding acceptance flag is off, Push also returns the matching
// sentinel error (ErrLoopNotAllowed / ErrMultiEdgeNotAllowed).
func (s *EdgeStream) Push(e xcore.Edge) error {
	if s.mode != modeWriting {
		return fmt.Errorf("xstream: Push called while not in write mode: %w", xcore.ErrIoFailure)
	}

	isLoop := e.IsLoop()
	if isLoop {
		s.numLoops++
	}
	isMulti := s.hasPushed && e.Equal(s.lastPushed)
	if isMulti {
		s.numMultiedge++
	}

	if s.hasPushed && e.Less(s.lastPushed) {
		return fmt.Errorf("xstream: push %+v after %+v: %w", e, s.lastPushed, xcore.ErrOrderViolation)
	}

	if isLoop && !s.allowLoops {
		return xcore.ErrLoopNotAllowed
	}
	if isMulti && !s.allowMulti {
		return xcore.ErrMultiEdgeNotAllowed
	}

	for s.currentOutNode < e.U {
		if err := s.writeNode(xcore.InvalidNode); err != nil {
			return err
		}
		s.currentOutNode++
	}

	if err := s.writeNode(e.V); err != nil {
		return err
	}

	s.numEdges++
	s.hasPushed = true
	s.lastPushed = e
	return nil
}

func (s *EdgeStream) writeNode(n xcore.NodeID) error {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], uint32(n))
	if _, err := s.writer.Write(buf[:]); err != nil {
		return fmt.Errorf("xstream: write node: %w: %w", err, xcore.ErrIoFailure)
	}
	return nil
}

func (s *EdgeStream) readNode() (xcore.NodeID, bool, error) {
	var buf [4]byte
	_, err := io.ReadFull(s.reader, buf[:])
	switch {
	case err == nil:
		return xcore.NodeID(binary.LittleEndian.Uint32(buf[:])), false, nil
	case err == io.EOF || err == io.ErrUnexpectedEOF:
		return 0, true, nil
	default:
		return 0, false, fmt.Errorf("xstream: read node: %w: %w", err, xcore.ErrIoFailure)
	}
}

// Rewind switches to read mode; the current edge becomes the first edge,
// or Empty() reports true if there are none.
func (s *EdgeStream) Rewind() error {
	if s.writer != nil {
		if err := s.writer.Flush(); err != nil {
			return fmt.Errorf("xstream: flush: %w: %w", err, xcore.ErrIoFailure)
		}
	}
	if _, err := s.file.Seek(0, 0); err != nil {
		return fmt.Errorf("xstream: seek: %w: %w", err, xcore.ErrIoFailure)
	}
	s.mode = modeReading
	s.reader = bufio.NewReader(s.file)
	s.current = xcore.Edge{}
	s.empty = s.numEdges == 0

	if !s.empty {
		if err := s.Advance(); err != nil {
			return err
		}
	}
	return nil
}

// Advance moves to the next edge, transparently skipping sentinel
// markers for empty heads. It must only be called when Empty() is
// false.
func (s *EdgeStream) Advance() error {
	if s.mode != modeReading {
		return fmt.Errorf("xstream: Advance called while not in read mode: %w", xcore.ErrIoFailure)
	}

	for {
		n, eof, err := s.readNode()
		if err != nil {
			return err
		}
		if eof {
			s.empty = true
			return nil
		}
		if n == xcore.InvalidNode {
			s.current.U++
			continue
		}
		s.current.V = n
		return nil
	}
}

// Current returns the edge at the read cursor.
func (s *EdgeStream) Current() xcore.Edge { return s.current }

// Empty reports whether the read cursor is exhausted.
func (s *EdgeStream) Empty() bool { return s.empty }

// Size returns the number of edges available once Rewind is called.
func (s *EdgeStream) Size() int64 { return s.numEdges }

// Loops returns the number of self-loops pushed so far.
func (s *EdgeStream) Loops() int64 { return s.numLoops }

// Multiedges returns the number of parallel edges pushed so far.
func (s *EdgeStream) Multiedges() int64 { return s.numMultiedge }

// SizeHint implements Source[xcore.Edge].
func (s *EdgeStream) SizeHint() int64 { return s.numEdges }

// Close releases the stream's backing temp file.
func (s *EdgeStream) Close() error {
	s.closeFiles()
	return nil
}

var _ Source[xcore.Edge] = (*EdgeStream)(nil)
