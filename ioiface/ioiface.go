// Package ioiface names the two seams an external exporter/importer
// plugs into (spec §4.9): output formats and the reader/writer
// contracts an encoder or a CLI driving this module would implement.
// This module ships no METIS/SNAP/THRILL_BIN encoder, no input-file
// reader, and no power-law degree sampler -- those, and the LFR
// community layer, remain explicit Non-goals (spec §1). Only the
// interfaces exist, so config.Descriptor can validate against them
// before any such implementation is wired in.
package ioiface

import (
	"github.com/nodebound/exmgraph/xstream"
)

// Format enumerates the output encodings spec §6 names.
type Format int

const (
	FormatUnspecified Format = iota
	FormatMETIS
	FormatTHRILL_BIN
	FormatEDGELIST
	FormatSNAP
)

// String renders the canonical lowercase name used in config files.
func (f Format) String() string {
	switch f {
	case FormatMETIS:
		return "metis"
	case FormatTHRILL_BIN:
		return "thrill_bin"
	case FormatEDGELIST:
		return "edgelist"
	case FormatSNAP:
		return "snap"
	default:
		return "unspecified"
	}
}

// ParseFormat maps a config-file string to a Format, or false if it
// names none of the four formats spec §6 enumerates.
func ParseFormat(s string) (Format, bool) {
	switch s {
	case "metis":
		return FormatMETIS, true
	case "thrill_bin":
		return FormatTHRILL_BIN, true
	case "edgelist":
		return FormatEDGELIST, true
	case "snap":
		return FormatSNAP, true
	default:
		return FormatUnspecified, false
	}
}

// EdgeWriter is the seam an output encoder implements: it receives the
// final sorted edge stream and a target format and is responsible for
// everything downstream of it. No implementation ships in this module.
type EdgeWriter interface {
	WriteEdges(edges *xstream.EdgeStream, format Format) error
}

// DegreeSource is the seam an input degree sampler or file reader
// implements, producing the sequence hhgen or cmrewire.Bootstrap
// consumes. xstream.DegreeStream itself is this module's own minimal
// contract; DegreeSource exists for callers that construct one from an
// external source (a power-law sampler, a file) rather than an
// in-memory slice.
type DegreeSource interface {
	Degrees() (xstream.DegreeStream, error)
	NumNodes() int64
}
