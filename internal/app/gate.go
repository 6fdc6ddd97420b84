package app

import "github.com/bft-labs/gatecall/internal/ports"

// gateSet is the conjunction of several gates. An empty set is always open.
type gateSet []ports.Gate

// AllGates combines gates so that requests flow only when every gate is open.
// Nil gates are ignored.
func AllGates(gates ...ports.Gate) ports.Gate {
	set := make(gateSet, 0, len(gates))
	for _, g := range gates {
		if g != nil {
			set = append(set, g)
		}
	}
	if len(set) == 1 {
		return set[0]
	}
	return set
}

// IsOpen reports whether every gate is open, stopping at the first closed one.
func (s gateSet) IsOpen() bool {
	for _, g := range s {
		if !g.IsOpen() {
			return false
		}
	}
	return true
}
