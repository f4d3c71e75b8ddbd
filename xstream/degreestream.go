package xstream

import "github.com/nodebound/exmgraph/xcore"

// DegreeStream is a rewindable sequence of non-negative integers; the
// i-th value yielded after Rewind is the degree of node i. The
// truncated-power-law sampler that normally produces this sequence is an
// explicit Non-goal (spec §1): this module only depends on the
// interface, via SliceDegreeStream for tests and small graphs or a
// caller-supplied implementation for anything larger.
type DegreeStream interface {
	Source[xcore.Degree]
}

// SliceDegreeStream adapts an in-memory []xcore.Degree to DegreeStream.
// It exists for tests and for callers small enough not to need a real
// external-memory degree sampler.
type SliceDegreeStream struct {
	degrees []xcore.Degree
	pos     int
}

// NewSliceDegreeStream wraps degrees as a DegreeStream.
func NewSliceDegreeStream(degrees []xcore.Degree) *SliceDegreeStream {
	return &SliceDegreeStream{degrees: degrees}
}

func (s *SliceDegreeStream) Empty() bool        { return s.pos >= len(s.degrees) }
func (s *SliceDegreeStream) Current() xcore.Degree { return s.degrees[s.pos] }
func (s *SliceDegreeStream) SizeHint() int64    { return int64(len(s.degrees)) }

func (s *SliceDegreeStream) Advance() error {
	s.pos++
	return nil
}

func (s *SliceDegreeStream) Rewind() error {
	s.pos = 0
	return nil
}

var _ DegreeStream = (*SliceDegreeStream)(nil)
