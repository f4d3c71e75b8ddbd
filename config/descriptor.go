package config

import (
	"github.com/nodebound/exmgraph/ioiface"
)

// InputMethod selects how the initial degree sequence or edge stream is
// obtained (spec §6).
type InputMethod string

const (
	InputHH           InputMethod = "HH"
	InputCMES         InputMethod = "CM_ES"
	InputFile         InputMethod = "FILE"
	InputFileThenCMES InputMethod = "FILE_THEN_CM_ES"
)

// Descriptor is the single configuration object a core invocation is
// built from. koanf tags drive Load; validate tags drive Validate.
type Descriptor struct {
	NumNodes    int64   `koanf:"num_nodes" validate:"required,gt=0"`
	MinDegree   int64   `koanf:"min_degree" validate:"gte=0"`
	MaxDegree   int64   `koanf:"max_degree" validate:"gtefield=MinDegree"`
	Gamma       float64 `koanf:"gamma" validate:"lte=-1"`
	ScaleDegree float64 `koanf:"scale_degree" validate:"gt=0"`

	InputMethod InputMethod `koanf:"input_method" validate:"required,oneof=HH CM_ES FILE FILE_THEN_CM_ES"`

	NumSwaps       int64   `koanf:"num_swaps" validate:"gte=0"`
	FactorNumSwaps float64 `koanf:"factor_num_swaps" validate:"gte=0"`

	RunSize int64 `koanf:"run_size" validate:"omitempty,gt=0,lte=2147483647"`
	NumRuns int64 `koanf:"num_runs" validate:"omitempty,gt=0"`

	InternalMemoryBytes int64 `koanf:"internal_memory_bytes" validate:"required,gt=0"`

	RandomSeed uint64 `koanf:"random_seed"`
	DegreeSeed uint64 `koanf:"degree_seed"`

	CMESRandomSwapFraction float64 `koanf:"cm_es_random_swap_fraction" validate:"gte=0"`

	OutputPath       string `koanf:"output_path"`
	OutputFormatName string `koanf:"output_format" validate:"omitempty,oneof=metis thrill_bin edgelist snap"`

	SnapshotRunIndices []int64 `koanf:"snapshot_run_indices"`
}

// OutputFormat parses OutputFormatName, returning ioiface.FormatUnspecified
// and false when no output format was configured.
func (d *Descriptor) OutputFormat() (ioiface.Format, bool) {
	if d.OutputFormatName == "" {
		return ioiface.FormatUnspecified, false
	}
	return ioiface.ParseFormat(d.OutputFormatName)
}

// EffectiveNumSwaps resolves num_swaps from either the literal value or
// factor_num_swaps * numEdges, per spec §6.
func (d *Descriptor) EffectiveNumSwaps(numEdges int64) int64 {
	if d.NumSwaps > 0 {
		return d.NumSwaps
	}
	return int64(d.FactorNumSwaps * float64(numEdges))
}

// EffectiveRunSize resolves run_size from either the literal value or
// ceil(num_swaps / num_runs), per spec §6.
func (d *Descriptor) EffectiveRunSize(numEdges int64) int64 {
	if d.RunSize > 0 {
		return d.RunSize
	}
	swaps := d.EffectiveNumSwaps(numEdges)
	if d.NumRuns <= 0 {
		return swaps
	}
	return (swaps + d.NumRuns - 1) / d.NumRuns
}
