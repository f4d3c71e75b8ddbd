package runtime

import (
	"context"
	"os"
	goruntime "runtime"
	"sync"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"
)

const (
	// DefaultMemoryBudgetBytes is used when a Runtime is built with a
	// zero MemoryBudgetBytes. Spec §6 requires internal_memory_bytes to
	// be at least "4 * sorter-min + slack"; this default is generous
	// enough for the module's own sorter-min constants (see extsort).
	DefaultMemoryBudgetBytes = int64(256 << 20) // 256 MiB

	// DefaultSpillThresholdBytes is the default for
	// Runtime.SpillThresholdBytes, reported by SpillThreshold. The xstream
	// containers do not consult it: they write to their temp file from
	// the first Push.
	DefaultSpillThresholdBytes = int64(8 << 20) // 8 MiB
)

// Metrics bundles the prometheus collectors shared across emes and emcb.
// A nil *Metrics is valid everywhere it is used: every method is a no-op
// on a nil receiver, so instrumentation stays opt-in without littering
// call sites with nil checks.
type Metrics struct {
	SwapsPerformed prometheus.Counter
	SwapsRejected  prometheus.Counter
	SwapsLoop      prometheus.Counter
	SwapsConflict  prometheus.Counter
	TradesPerformed prometheus.Counter
	MessagesForwarded prometheus.Counter
}

// NewMetrics builds a fresh set of collectors and returns them. With a
// non-nil reg it registers them through reg.MustRegister, which panics
// if registration fails; a nil reg skips registration.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		SwapsPerformed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "exmgraph_emes_swaps_performed_total",
			Help: "Number of EM-ES swaps committed.",
		}),
		SwapsRejected: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "exmgraph_emes_swaps_rejected_total",
			Help: "Number of EM-ES swaps rejected (loop or conflict).",
		}),
		SwapsLoop: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "exmgraph_emes_swaps_loop_total",
			Help: "Number of EM-ES swaps rejected for producing a self-loop.",
		}),
		SwapsConflict: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "exmgraph_emes_swaps_conflict_total",
			Help: "Number of EM-ES swaps rejected for producing an existing edge.",
		}),
		TradesPerformed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "exmgraph_emcb_trades_performed_total",
			Help: "Number of EM-CB vertex-pair trades performed.",
		}),
		MessagesForwarded: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "exmgraph_emcb_messages_forwarded_total",
			Help: "Number of EM-CB neighbor messages forwarded between macrochunks or rounds.",
		}),
	}
	if reg != nil {
		reg.MustRegister(
			m.SwapsPerformed, m.SwapsRejected, m.SwapsLoop, m.SwapsConflict,
			m.TradesPerformed, m.MessagesForwarded,
		)
	}
	return m
}

func (m *Metrics) incSwapPerformed() {
	if m == nil {
		return
	}
	m.SwapsPerformed.Inc()
}

func (m *Metrics) incSwapRejected(loop, conflict bool) {
	if m == nil {
		return
	}
	m.SwapsRejected.Inc()
	if loop {
		m.SwapsLoop.Inc()
	}
	if conflict {
		m.SwapsConflict.Inc()
	}
}

func (m *Metrics) incTrade() {
	if m == nil {
		return
	}
	m.TradesPerformed.Inc()
}

func (m *Metrics) incMessagesForwarded(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.MessagesForwarded.Add(float64(n))
}

// ObserveSwap records a committed or rejected swap outcome. It is safe to
// call on a nil *Runtime or a Runtime with nil Metrics.
func (rt *Runtime) ObserveSwap(performed, loop, conflict bool) {
	if rt == nil {
		return
	}
	if performed {
		rt.Metrics.incSwapPerformed()
	} else {
		rt.Metrics.incSwapRejected(loop, conflict)
	}
}

// ObserveTrade records one EM-CB trade.
func (rt *Runtime) ObserveTrade() {
	if rt == nil {
		return
	}
	rt.Metrics.incTrade()
}

// ObserveMessagesForwarded records n EM-CB messages crossing a
// macrochunk or round boundary.
func (rt *Runtime) ObserveMessagesForwarded(n int) {
	if rt == nil {
		return
	}
	rt.Metrics.incMessagesForwarded(n)
}

// Runtime is the explicit carrier for the process-wide configuration the
// source kept as STXXL globals: memory budget, random seeds, temp
// directory, thread count, plus optional observability hooks.
type Runtime struct {
	RunID uuid.UUID

	MemoryBudgetBytes   int64
	SpillThresholdBytes int64
	RandomSeed          uint64
	DegreeSeed          uint64
	TempDir             string
	Threads             int

	// Limiter, when set, throttles TempFile: each new spill file waits
	// for a token. Nil means unthrottled.
	Limiter *rate.Limiter

	Metrics *Metrics
	Tracer  trace.Tracer

	tmpOnce sync.Once
	tmpDir  string
}

// Option configures a Runtime built with New.
type Option func(*Runtime)

// WithMemoryBudget sets the overall memory budget external sorters and
// priority queues size themselves from.
func WithMemoryBudget(n int64) Option {
	return func(rt *Runtime) { rt.MemoryBudgetBytes = n }
}

// WithSeeds sets the random and degree seeds.
func WithSeeds(random, degree uint64) Option {
	return func(rt *Runtime) {
		rt.RandomSeed = random
		rt.DegreeSeed = degree
	}
}

// WithTempDir sets the base directory external-memory spill files are
// created under.
func WithTempDir(dir string) Option {
	return func(rt *Runtime) { rt.TempDir = dir }
}

// WithThreads sets the worker-pool size for Parallel TFP and EM-CB.
func WithThreads(n int) Option {
	return func(rt *Runtime) { rt.Threads = n }
}

// WithLimiter installs a rate limiter that TempFile waits on before
// creating each spill file.
func WithLimiter(l *rate.Limiter) Option {
	return func(rt *Runtime) { rt.Limiter = l }
}

// WithMetrics installs a metrics bundle produced by NewMetrics.
func WithMetrics(m *Metrics) Option {
	return func(rt *Runtime) { rt.Metrics = m }
}

// WithTracer stores an OpenTelemetry tracer in Runtime.Tracer. No
// pipeline stage in this module starts spans from it.
func WithTracer(t trace.Tracer) Option {
	return func(rt *Runtime) { rt.Tracer = t }
}

// New builds a Runtime with sensible defaults, then applies opts.
func New(opts ...Option) *Runtime {
	rt := &Runtime{
		RunID:               uuid.New(),
		MemoryBudgetBytes:   DefaultMemoryBudgetBytes,
		SpillThresholdBytes: DefaultSpillThresholdBytes,
		Threads:             goruntime.NumCPU(),
	}
	for _, opt := range opts {
		opt(rt)
	}
	if rt.Threads < 1 {
		rt.Threads = 1
	}
	if rt.MemoryBudgetBytes <= 0 {
		rt.MemoryBudgetBytes = DefaultMemoryBudgetBytes
	}
	if rt.SpillThresholdBytes <= 0 {
		rt.SpillThresholdBytes = DefaultSpillThresholdBytes
	}
	return rt
}

// resolveTempDir lazily creates (once) and returns the directory this
// Runtime spills external-memory files into.
func (rt *Runtime) resolveTempDir() (string, error) {
	var err error
	rt.tmpOnce.Do(func() {
		base := rt.TempDir
		if base == "" {
			base = os.TempDir()
		}
		rt.tmpDir, err = os.MkdirTemp(base, "exmgraph-"+rt.RunID.String()+"-")
	})
	return rt.tmpDir, err
}

// TempFile creates a new spill file for component/sequence (e.g.
// "edgestream", 3) under this Runtime's temp directory, throttled by
// Limiter if one is installed.
func (rt *Runtime) TempFile(component string, sequence uint64) (*os.File, error) {
	if rt.Limiter != nil {
		_ = rt.Limiter.Wait(context.Background())
	}
	dir, err := rt.resolveTempDir()
	if err != nil {
		return nil, err
	}
	name := spillFileName(component, rt.RunID.String(), sequence)
	return os.CreateTemp(dir, name)
}

// Cleanup removes this Runtime's temp directory, if one was created.
func (rt *Runtime) Cleanup() error {
	if rt.tmpDir == "" {
		return nil
	}
	return os.RemoveAll(rt.tmpDir)
}

// SpillThreshold returns the configured spill threshold, defaulting when
// rt is nil.
func (rt *Runtime) SpillThreshold() int64 {
	if rt == nil || rt.SpillThresholdBytes <= 0 {
		return DefaultSpillThresholdBytes
	}
	return rt.SpillThresholdBytes
}
