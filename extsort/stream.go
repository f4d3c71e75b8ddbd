package extsort

import (
	"container/heap"
	"fmt"
	"io"
	"os"

	"github.com/nodebound/exmgraph/xcore"
)

// Stream yields the records produced by a Builder[T] in ascending order.
// It implements xstream.Source[T] structurally (Empty/Current/Advance/
// Rewind/SizeHint) without importing xstream, avoiding an import cycle
// (xstream does not need to know about extsort).
type Stream[T any] struct {
	less  Less[T]
	codec Codec[T]

	// in-memory fast path
	mem    []T
	memPos int
	isMem  bool

	// merge path
	runFiles []string
	readers  []*runReader[T]
	heapData runHeap[T]

	current T
	empty   bool
	size    int64
}

func newMemoryStream[T any](sorted []T) *Stream[T] {
	s := &Stream[T]{mem: sorted, isMem: true, size: int64(len(sorted))}
	s.primeMemory()
	return s
}

func (s *Stream[T]) primeMemory() {
	s.memPos = 0
	s.empty = len(s.mem) == 0
	if !s.empty {
		s.current = s.mem[0]
	}
}

func newMergeStream[T any](less Less[T], codec Codec[T], runFiles []string) (*Stream[T], error) {
	s := &Stream[T]{less: less, codec: codec, runFiles: runFiles}
	if err := s.openReaders(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Stream[T]) openReaders() error {
	s.readers = make([]*runReader[T], 0, len(s.runFiles))
	s.heapData = runHeap[T]{less: s.less}
	var total int64
	for idx, name := range s.runFiles {
		r, err := newRunReader[T](name, s.codec)
		if err != nil {
			return err
		}
		s.readers = append(s.readers, r)
		if !r.empty {
			s.heapData.items = append(s.heapData.items, runHeapItem[T]{value: r.current, reader: idx})
		}
		total += r.count
	}
	s.size = total
	heap.Init(&s.heapData)
	s.empty = s.heapData.Len() == 0
	if !s.empty {
		if err := s.advanceMerge(); err != nil {
			return err
		}
	}
	return nil
}

// Empty reports whether the stream is exhausted in the current pass.
func (s *Stream[T]) Empty() bool { return s.empty }

// Current returns the value at the cursor.
func (s *Stream[T]) Current() T { return s.current }

// SizeHint returns the number of records, if known.
func (s *Stream[T]) SizeHint() int64 { return s.size }

// Advance moves the cursor forward.
func (s *Stream[T]) Advance() error {
	if s.isMem {
		s.memPos++
		s.empty = s.memPos >= len(s.mem)
		if !s.empty {
			s.current = s.mem[s.memPos]
		}
		return nil
	}
	return s.advanceMerge()
}

func (s *Stream[T]) advanceMerge() error {
	if s.heapData.Len() == 0 {
		s.empty = true
		return nil
	}
	top := heap.Pop(&s.heapData).(runHeapItem[T])
	s.current = top.value
	r := s.readers[top.reader]
	if err := r.advance(); err != nil {
		return err
	}
	if !r.empty {
		heap.Push(&s.heapData, runHeapItem[T]{value: r.current, reader: top.reader})
	}
	s.empty = false
	return nil
}

// Rewind restarts the cursor at the beginning of the sorted sequence.
func (s *Stream[T]) Rewind() error {
	if s.isMem {
		s.primeMemory()
		return nil
	}
	for _, r := range s.readers {
		if err := r.rewind(); err != nil {
			return err
		}
	}
	s.heapData.items = s.heapData.items[:0]
	for idx, r := range s.readers {
		if !r.empty {
			s.heapData.items = append(s.heapData.items, runHeapItem[T]{value: r.current, reader: idx})
		}
	}
	heap.Init(&s.heapData)
	s.empty = s.heapData.Len() == 0
	if !s.empty {
		return s.advanceMerge()
	}
	return nil
}

// Close releases every run file backing this stream.
func (s *Stream[T]) Close() error {
	for _, r := range s.readers {
		_ = r.close()
	}
	for _, name := range s.runFiles {
		_ = os.Remove(name)
	}
	return nil
}

// runReader sequentially decodes one spilled run file.
type runReader[T any] struct {
	name    string
	codec   Codec[T]
	file    *os.File
	current T
	empty   bool
	count   int64
}

func newRunReader[T any](name string, codec Codec[T]) (*runReader[T], error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, fmt.Errorf("extsort: open run %s: %w: %w", name, err, xcore.ErrIoFailure)
	}
	r := &runReader[T]{name: name, codec: codec, file: f}
	if err := r.countRecords(); err != nil {
		return nil, err
	}
	if err := r.advance(); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *runReader[T]) countRecords() error {
	// A second pass just to report SizeHint accurately; run files are
	// expected to be modest (one sorter run, not the whole dataset).
	f, err := os.Open(r.name)
	if err != nil {
		return fmt.Errorf("extsort: reopen run %s for count: %w: %w", r.name, err, xcore.ErrIoFailure)
	}
	defer f.Close()
	var n int64
	for {
		if _, err := r.codec.Decode(f); err != nil {
			if err == io.EOF {
				break
			}
			return fmt.Errorf("extsort: count run %s: %w: %w", r.name, err, xcore.ErrIoFailure)
		}
		n++
	}
	r.count = n
	return nil
}

func (r *runReader[T]) advance() error {
	v, err := r.codec.Decode(r.file)
	if err != nil {
		if err == io.EOF {
			r.empty = true
			return nil
		}
		return fmt.Errorf("extsort: decode run %s: %w: %w", r.name, err, xcore.ErrIoFailure)
	}
	r.current = v
	r.empty = false
	return nil
}

func (r *runReader[T]) rewind() error {
	if _, err := r.file.Seek(0, 0); err != nil {
		return fmt.Errorf("extsort: rewind run %s: %w: %w", r.name, err, xcore.ErrIoFailure)
	}
	return r.advance()
}

func (r *runReader[T]) close() error {
	return r.file.Close()
}

// runHeap is a container/heap min-heap over the current head of every
// open run, ordered by the caller's Less.
type runHeapItem[T any] struct {
	value  T
	reader int
}

type runHeap[T any] struct {
	less  Less[T]
	items []runHeapItem[T]
}

func (h *runHeap[T]) Len() int { return len(h.items) }
func (h *runHeap[T]) Less(i, j int) bool {
	return h.less(h.items[i].value, h.items[j].value)
}
func (h *runHeap[T]) Swap(i, j int) { h.items[i], h.items[j] = h.items[j], h.items[i] }
func (h *runHeap[T]) Push(x any)    { h.items = append(h.items, x.(runHeapItem[T])) }
func (h *runHeap[T]) Pop() any {
	n := len(h.items)
	v := h.items[n-1]
	h.items = h.items[:n-1]
	return v
}
