package config

// Option mutates a Descriptor under construction. Following
// katalvlaran-lvlath/builder's BuilderOption convention, an Option
// panics on a clearly-wrong literal supplied at the call site (a
// programmer error) rather than deferring it to Validate.
type Option func(*Descriptor)

// New builds a Descriptor from defaults plus opts, in order.
func New(opts ...Option) *Descriptor {
	d := &Descriptor{
		ScaleDegree:         1,
		Gamma:               -2,
		InputMethod:         InputHH,
		InternalMemoryBytes: 1 << 28,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// WithNumNodes sets the node count. Panics if n <= 0.
func WithNumNodes(n int64) Option {
	if n <= 0 {
		panic("config: WithNumNodes requires n > 0")
	}
	return func(d *Descriptor) { d.NumNodes = n }
}

// WithDegreeRange sets min/max degree. Panics if min > max or min < 0.
func WithDegreeRange(min, max int64) Option {
	if min < 0 || min > max {
		panic("config: WithDegreeRange requires 0 <= min <= max")
	}
	return func(d *Descriptor) {
		d.MinDegree = min
		d.MaxDegree = max
	}
}

// WithPowerLaw sets gamma and scale_degree for a truncated power-law
// degree distribution. Panics if gamma > -1.
func WithPowerLaw(gamma, scaleDegree float64) Option {
	if gamma > -1 {
		panic("config: WithPowerLaw requires gamma <= -1")
	}
	return func(d *Descriptor) {
		d.Gamma = gamma
		d.ScaleDegree = scaleDegree
	}
}

// WithInputMethod sets input_method.
func WithInputMethod(m InputMethod) Option {
	return func(d *Descriptor) { d.InputMethod = m }
}

// WithNumSwaps sets an explicit num_swaps.
func WithNumSwaps(n int64) Option {
	return func(d *Descriptor) { d.NumSwaps = n }
}

// WithFactorNumSwaps sets factor_num_swaps.
func WithFactorNumSwaps(factor float64) Option {
	return func(d *Descriptor) { d.FactorNumSwaps = factor }
}

// WithRunSize sets an explicit run_size.
func WithRunSize(n int64) Option {
	return func(d *Descriptor) { d.RunSize = n }
}

// WithNumRuns sets num_runs.
func WithNumRuns(n int64) Option {
	return func(d *Descriptor) { d.NumRuns = n }
}

// WithMemoryBudget sets internal_memory_bytes. Panics if n <= 0.
func WithMemoryBudget(n int64) Option {
	if n <= 0 {
		panic("config: WithMemoryBudget requires n > 0")
	}
	return func(d *Descriptor) { d.InternalMemoryBytes = n }
}

// WithSeeds sets random_seed and degree_seed.
func WithSeeds(random, degree uint64) Option {
	return func(d *Descriptor) {
		d.RandomSeed = random
		d.DegreeSeed = degree
	}
}

// WithRandomSwapFraction sets cm_es_random_swap_fraction.
func WithRandomSwapFraction(x float64) Option {
	return func(d *Descriptor) { d.CMESRandomSwapFraction = x }
}

// WithOutput sets an optional output path and format name.
func WithOutput(path, formatName string) Option {
	return func(d *Descriptor) {
		d.OutputPath = path
		d.OutputFormatName = formatName
	}
}

// WithSnapshotRunIndices sets the run indices at which intermediate
// graphs are exported.
func WithSnapshotRunIndices(indices ...int64) Option {
	return func(d *Descriptor) { d.SnapshotRunIndices = indices }
}
