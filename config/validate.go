package config

import (
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/nodebound/exmgraph/xcore"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate runs struct-tag validation and the cross-field checks spec
// §6 names (min_degree <= max_degree, scale_degree*min_degree >= 1),
// translating the first failure into xcore.ErrConfigError. It never
// panics -- unlike the Option constructors, Validate is the data-driven
// path that must report, not abort, a bad configuration.
func (d *Descriptor) Validate() error {
	if err := validate.Struct(d); err != nil {
		if verrs, ok := err.(validator.ValidationErrors); ok && len(verrs) > 0 {
			fe := verrs[0]
			return fmt.Errorf("config: field %s failed %s: %w", fe.Namespace(), fe.Tag(), xcore.ErrConfigError)
		}
		return fmt.Errorf("config: %w: %w", err, xcore.ErrConfigError)
	}

	if d.ScaleDegree*float64(d.MinDegree) < 1 {
		return fmt.Errorf("config: scale_degree*min_degree must be >= 1: %w", xcore.ErrConfigError)
	}
	if d.NumSwaps == 0 && d.FactorNumSwaps <= 0 {
		return fmt.Errorf("config: one of num_swaps or factor_num_swaps must be positive: %w", xcore.ErrConfigError)
	}
	if d.RunSize == 0 && d.NumRuns == 0 {
		return fmt.Errorf("config: one of run_size or num_runs must be set: %w", xcore.ErrConfigError)
	}
	if d.OutputPath != "" {
		if _, ok := d.OutputFormat(); !ok {
			return fmt.Errorf("config: output_path set without a recognized output_format: %w", xcore.ErrConfigError)
		}
	}
	return nil
}
