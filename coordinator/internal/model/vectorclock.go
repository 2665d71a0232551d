package model

// VectorClock maps a node identifier to a monotonically non-decreasing counter
type VectorClock map[string]uint64

// WriteClockComponent is the single component the coordinator stamps on writes
const WriteClockComponent = "v1"

// Sum returns the sum of all components
func (vc VectorClock) Sum() uint64 {
	var sum uint64
	for _, v := range vc {
		sum += v
	}
	return sum
}

// Copy returns an independent copy of the clock
func (vc VectorClock) Copy() VectorClock {
	if vc == nil {
		return nil
	}
	out := make(VectorClock, len(vc))
	for k, v := range vc {
		out[k] = v
	}
	return out
}

// VectorClockComparison represents the result of comparing two vector clocks
type VectorClockComparison int

const (
	// Identical means both vector clocks are identical
	Identical VectorClockComparison = iota
	// Before means first happens before second
	Before
	// After means first happens after second
	After
	// Concurrent means conflict (siblings)
	Concurrent
)

func (c VectorClockComparison) String() string {
	switch c {
	case Identical:
		return "identical"
	case Before:
		return "before"
	case After:
		return "after"
	case Concurrent:
		return "concurrent"
	default:
		return "unknown"
	}
}
