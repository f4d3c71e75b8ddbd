package extsort

import (
	"bufio"
	"fmt"
	"os"
	"sort"
	"unsafe"

	"github.com/nodebound/exmgraph/runtime"
	"github.com/nodebound/exmgraph/xcore"
)

// Less reports whether a sorts before b.
type Less[T any] func(a, b T) bool

// Builder accumulates records of type T and, once Sorted is called,
// yields them back in ascending order per less.
type Builder[T any] struct {
	rt    *runtime.Runtime
	less  Less[T]
	codec Codec[T]

	runSize int
	buf     []T

	runFiles []string

	component string
	seq       uint64
}

// NewBuilder creates a Builder for component (used to name spill files,
// e.g. "depchain-edge") with the given ordering and codec.
func NewBuilder[T any](rt *runtime.Runtime, component string, less Less[T], codec Codec[T]) *Builder[T] {
	var zero T
	recordSize := int64(unsafe.Sizeof(zero))
	if recordSize <= 0 {
		recordSize = 32
	}
	runSize := int(rt.MemoryBudgetBytes / recordSize / 4)
	if runSize < 1024 {
		runSize = 1024
	}
	return &Builder[T]{
		rt:        rt,
		less:      less,
		codec:     codec,
		runSize:   runSize,
		component: component,
	}
}

// Push appends v to the builder.
func (b *Builder[T]) Push(v T) error {
	b.buf = append(b.buf, v)
	if len(b.buf) >= b.runSize {
		return b.spill()
	}
	return nil
}

func (b *Builder[T]) spill() error {
	if len(b.buf) == 0 {
		return nil
	}
	sort.Slice(b.buf, func(i, j int) bool { return b.less(b.buf[i], b.buf[j]) })

	f, err := b.rt.TempFile("extsort-"+b.component, b.seq)
	if err != nil {
		return fmt.Errorf("extsort: spill temp file: %w: %w", err, xcore.ErrIoFailure)
	}
	b.seq++

	w := bufio.NewWriter(f)
	for _, v := range b.buf {
		if err := b.codec.Encode(w, v); err != nil {
			_ = f.Close()
			return fmt.Errorf("extsort: encode: %w: %w", err, xcore.ErrIoFailure)
		}
	}
	if err := w.Flush(); err != nil {
		_ = f.Close()
		return fmt.Errorf("extsort: flush run: %w: %w", err, xcore.ErrIoFailure)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("extsort: close run: %w: %w", err, xcore.ErrIoFailure)
	}

	b.runFiles = append(b.runFiles, f.Name())
	b.buf = b.buf[:0]
	return nil
}

// Sorted finalizes the builder and returns a Stream that yields every
// pushed record in ascending order, merging any spilled runs with the
// final in-memory tail. The builder must not be reused afterwards.
func (b *Builder[T]) Sorted() (*Stream[T], error) {
	if len(b.runFiles) == 0 {
		// Fast path: everything still fits in memory.
		tail := append([]T(nil), b.buf...)
		sort.Slice(tail, func(i, j int) bool { return b.less(tail[i], tail[j]) })
		return newMemoryStream(tail), nil
	}

	if err := b.spill(); err != nil {
		return nil, err
	}
	return newMergeStream(b.less, b.codec, b.runFiles)
}

// Reset discards the builder's contents so it can be reused for the next
// run/batch, cleaning up any spilled run files.
func (b *Builder[T]) Reset() {
	for _, name := range b.runFiles {
		_ = os.Remove(name)
	}
	b.runFiles = nil
	b.buf = b.buf[:0]
}
