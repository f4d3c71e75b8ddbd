// Package xcore defines the identifiers, edge/swap value types, and
// sentinel errors shared by every external-memory package in this module.
//
// Nothing here touches disk or goroutines: xcore is the vocabulary the
// rest of the module (xstream, emes, emcb, hhgen, cmrewire) speaks.
package xcore
