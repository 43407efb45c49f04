package sdag

import "fmt"

// NodeID is an opaque handle into the DAG's node storage. Valid ids are
// non-negative; [NoNode] marks "no such node".
type NodeID int

// EdgeID is an opaque handle into the DAG's edge storage. Valid ids are
// non-negative; [NoEdge] marks "no such edge".
type EdgeID int

const (
	// NoNode is the reserved sentinel for a missing node reference.
	NoNode NodeID = -1
	// NoEdge is the reserved sentinel for a missing edge reference.
	NoEdge EdgeID = -1
)

// IsNone reports whether the id is the missing-node sentinel.
func (id NodeID) IsNone() bool { return id < 0 }

// IsNone reports whether the id is the missing-edge sentinel.
func (id EdgeID) IsNone() bool { return id < 0 }

func (id NodeID) String() string {
	if id.IsNone() {
		return "-"
	}
	return fmt.Sprintf("%d", int(id))
}

func (id EdgeID) String() string {
	if id.IsNone() {
		return "-"
	}
	return fmt.Sprintf("%d", int(id))
}

// Direction selects which way a neighbor query looks from a node.
type Direction int

const (
	// Rootward looks toward the DAG root (parent subsplits).
	Rootward Direction = iota
	// Leafward looks toward the taxa (child subsplits).
	Leafward
)

func (d Direction) String() string {
	if d == Rootward {
		return "rootward"
	}
	return "leafward"
}
