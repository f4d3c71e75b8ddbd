package extpq

import (
	"container/heap"
	"fmt"
	"io"
	"os"

	"github.com/nodebound/exmgraph/extsort"
	"github.com/nodebound/exmgraph/runtime"
	"github.com/nodebound/exmgraph/xcore"
)

// Heap is a generic external-memory priority queue. Pop yields values in
// ascending order per less (pass a descending comparator to get a
// max-heap, as spec §4.5 requires for the dependency-chain PQ).
type Heap[T any] struct {
	rt    *runtime.Runtime
	less  extsort.Less[T]
	codec extsort.Codec[T]

	capacity int
	mem      innerHeap[T]

	runs      []*emRun[T]
	component string
	seq       uint64
}

// NewHeap creates an external-memory priority queue named component
// (used in spill-file names), ordered by less, with an in-memory working
// set capped at capacity entries before spilling to disk.
func NewHeap[T any](rt *runtime.Runtime, component string, capacity int, less extsort.Less[T], codec extsort.Codec[T]) *Heap[T] {
	if capacity < 16 {
		capacity = 16
	}
	return &Heap[T]{
		rt:        rt,
		less:      less,
		codec:     codec,
		capacity:  capacity,
		component: component,
		mem:       innerHeap[T]{less: less},
	}
}

// Push inserts v.
func (h *Heap[T]) Push(v T) error {
	heap.Push(&h.mem, v)
	if h.mem.Len() > h.capacity {
		return h.spill()
	}
	return nil
}

func (h *Heap[T]) spill() error {
	n := h.mem.Len()
	sorted := make([]T, 0, n)
	for h.mem.Len() > 0 {
		sorted = append(sorted, heap.Pop(&h.mem).(T))
	}

	f, err := h.rt.TempFile("extpq-"+h.component, h.seq)
	if err != nil {
		return fmt.Errorf("extpq: spill temp file: %w: %w", err, xcore.ErrIoFailure)
	}
	h.seq++

	for _, v := range sorted {
		if err := h.codec.Encode(f, v); err != nil {
			_ = f.Close()
			return fmt.Errorf("extpq: encode: %w: %w", err, xcore.ErrIoFailure)
		}
	}
	if _, err := f.Seek(0, 0); err != nil {
		return fmt.Errorf("extpq: seek run: %w: %w", err, xcore.ErrIoFailure)
	}

	run := &emRun[T]{file: f, codec: h.codec}
	if err := run.advance(); err != nil {
		return err
	}
	h.runs = append(h.runs, run)
	return nil
}

// Empty reports whether the queue holds no values.
func (h *Heap[T]) Empty() bool {
	if h.mem.Len() > 0 {
		return false
	}
	for _, r := range h.runs {
		if !r.empty {
			return false
		}
	}
	return true
}

// Pop removes and returns the minimum value per less.
func (h *Heap[T]) Pop() (T, error) {
	var zero T
	best, bestRun, haveBest := h.peek()
	if !haveBest {
		return zero, fmt.Errorf("extpq: pop from empty heap: %w", xcore.ErrAssertionFailure)
	}

	if bestRun == -1 {
		return heap.Pop(&h.mem).(T), nil
	}

	run := h.runs[bestRun]
	if err := run.advance(); err != nil {
		return zero, err
	}
	h.compactRuns()
	return best, nil
}

func (h *Heap[T]) peek() (best T, bestRun int, ok bool) {
	bestRun = -1
	if h.mem.Len() > 0 {
		best = h.mem.items[0]
		ok = true
	}
	for i, r := range h.runs {
		if r.empty {
			continue
		}
		if !ok || h.less(r.current, best) {
			best = r.current
			bestRun = i
			ok = true
		}
	}
	return best, bestRun, ok
}

// compactRuns drops exhausted run readers so Empty/Pop stay cheap.
func (h *Heap[T]) compactRuns() {
	kept := h.runs[:0]
	for _, r := range h.runs {
		if r.empty {
			_ = r.close()
			continue
		}
		kept = append(kept, r)
	}
	h.runs = kept
}

// Close releases every run file backing this queue.
func (h *Heap[T]) Close() error {
	for _, r := range h.runs {
		_ = r.close()
	}
	h.runs = nil
	return nil
}

// emRun sequentially decodes one spilled, already-sorted run.
type emRun[T any] struct {
	file    *os.File
	codec   extsort.Codec[T]
	current T
	empty   bool
}

func (r *emRun[T]) advance() error {
	v, err := r.codec.Decode(r.file)
	if err != nil {
		if err == io.EOF {
			r.empty = true
			return nil
		}
		return fmt.Errorf("extpq: decode run: %w: %w", err, xcore.ErrIoFailure)
	}
	r.current = v
	r.empty = false
	return nil
}

func (r *emRun[T]) close() error {
	name := r.file.Name()
	err := r.file.Close()
	_ = os.Remove(name)
	return err
}

// innerHeap is the bounded in-memory working set.
type innerHeap[T any] struct {
	less  extsort.Less[T]
	items []T
}

func (h *innerHeap[T]) Len() int            { return len(h.items) }
func (h *innerHeap[T]) Less(i, j int) bool  { return h.less(h.items[i], h.items[j]) }
func (h *innerHeap[T]) Swap(i, j int)       { h.items[i], h.items[j] = h.items[j], h.items[i] }
func (h *innerHeap[T]) Push(x any)          { h.items = append(h.items, x.(T)) }
func (h *innerHeap[T]) Pop() any {
	n := len(h.items)
	v := h.items[n-1]
	h.items = h.items[:n-1]
	return v
}
