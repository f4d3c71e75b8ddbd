package config_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nodebound/exmgraph/config"
	"github.com/nodebound/exmgraph/xcore"
)

func validDescriptor() *config.Descriptor {
	return config.New(
		config.WithNumNodes(100),
		config.WithDegreeRange(2, 10),
		config.WithPowerLaw(-2, 1),
		config.WithNumSwaps(1000),
		config.WithRunSize(100),
		config.WithMemoryBudget(1<<20),
	)
}

func TestValidate_AcceptsWellFormedDescriptor(t *testing.T) {
	require.NoError(t, validDescriptor().Validate())
}

func TestValidate_RejectsZeroNodes(t *testing.T) {
	d := validDescriptor()
	d.NumNodes = 0
	require.ErrorIs(t, d.Validate(), xcore.ErrConfigError)
}

func TestValidate_RejectsMaxLessThanMin(t *testing.T) {
	d := validDescriptor()
	d.MaxDegree = d.MinDegree - 1
	require.ErrorIs(t, d.Validate(), xcore.ErrConfigError)
}

func TestValidate_RejectsPositiveGamma(t *testing.T) {
	d := validDescriptor()
	d.Gamma = 0.5
	require.ErrorIs(t, d.Validate(), xcore.ErrConfigError)
}

func TestValidate_RejectsMissingSwapCount(t *testing.T) {
	d := validDescriptor()
	d.NumSwaps = 0
	d.FactorNumSwaps = 0
	require.ErrorIs(t, d.Validate(), xcore.ErrConfigError)
}

func TestValidate_RejectsUnrecognizedOutputFormat(t *testing.T) {
	d := validDescriptor()
	d.OutputPath = "out.txt"
	d.OutputFormatName = "xml"
	require.ErrorIs(t, d.Validate(), xcore.ErrConfigError)
}

func TestNew_PanicsOnBadNumNodes(t *testing.T) {
	require.Panics(t, func() { config.WithNumNodes(0) })
}

func TestLoad_ParsesAndValidatesYAML(t *testing.T) {
	yaml := `
num_nodes: 50
min_degree: 2
max_degree: 8
gamma: -2.5
scale_degree: 1.0
input_method: HH
num_swaps: 500
run_size: 50
internal_memory_bytes: 1048576
`
	d, err := config.Load(strings.NewReader(yaml), config.FormatYAML)
	require.NoError(t, err)
	require.Equal(t, int64(50), d.NumNodes)
	require.Equal(t, config.InputHH, d.InputMethod)
}

func TestLoad_RejectsInvalidYAML(t *testing.T) {
	_, err := config.Load(strings.NewReader("num_nodes: [this is not a number"), config.FormatYAML)
	require.ErrorIs(t, err, xcore.ErrConfigError)
}
