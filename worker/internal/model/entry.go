package model

// VectorClock maps a clock component to its counter. Workers store clocks
// opaquely; ordering is decided by the coordinator.
type VectorClock map[string]uint64

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

// Entry is one stored key with its value and the clock it was written with
type Entry struct {
	Key         string      `json:"key"`
	Value       string      `json:"value"`
	VectorClock VectorClock `json:"vector_clock"`
}
