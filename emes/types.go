package emes

import "github.com/nodebound/exmgraph/xcore"

// Side names the current state of one end of a swap: either a position
// in the edge stream (the common case) or, for the semi-loaded variant,
// an edge value to be matched against the current edge set.
type Side struct {
	ByID  bool
	ID    xcore.EdgeID
	Value xcore.Edge
}

// ByEdgeID builds a Side that references edge id.
func ByEdgeID(id xcore.EdgeID) Side { return Side{ByID: true, ID: id} }

// ByEdgeValue builds a semi-loaded Side that must be matched against the
// current edge set at resolution time.
func ByEdgeValue(e xcore.Edge) Side { return Side{ByID: false, Value: e} }

// Swap is one request in a batch: two sides and a direction bit, per
// xcore.SwapDescriptor's target convention.
type Swap struct {
	ID        xcore.SwapID
	Sides     [2]Side
	Direction bool
}

// Config controls swap decision policy. The edge-set acceptance flags
// mirror the xstream.EdgeStream the batch output feeds into.
type Config struct {
	AllowLoopsInOutput bool
	AllowMultiInOutput bool
}
