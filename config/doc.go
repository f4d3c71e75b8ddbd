// Package config defines Descriptor, the single configuration object a
// core invocation is built from (spec §6): node/degree parameters,
// input method, swap counts, run sizing, memory budget, seeds, and
// optional output settings.
//
// Descriptor is built programmatically via functional options
// (New(opts ...Option), following katalvlaran-lvlath/builder's
// BuilderOption convention — an Option panics on a clearly-wrong
// literal, e.g. a negative node count, since that is a programmer
// error at the call site) or loaded from YAML via Load, which never
// panics and reports xcore.ErrConfigError like any other data-driven
// failure. Validate runs struct tags through
// github.com/go-playground/validator/v10, the same validation library
// ahrav-go-gavel and Hola-to-network_logistics_problem use for their
// own config/request structs.
package config
