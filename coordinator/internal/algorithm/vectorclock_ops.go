package algorithm

import (
	"github.com/distkv/distkv/coordinator/internal/model"
)

// Ordering decides which of two versions a read should prefer.
// Newer reports whether a is strictly newer than b; equal versions are
// not newer than each other, so callers keep the first one they saw.
type Ordering interface {
	Newer(a, b model.VectorClock) bool
	Name() string
}

// ClockSumOrdering orders versions by the sum of their clock components.
// With the coordinator's single wall-clock component this reduces to a
// timestamp compare. It cannot see true concurrency: clocks over disjoint
// components may tie or order arbitrarily.
type ClockSumOrdering struct{}

// Newer implements Ordering
func (ClockSumOrdering) Newer(a, b model.VectorClock) bool {
	return a.Sum() > b.Sum()
}

// Name implements Ordering
func (ClockSumOrdering) Name() string {
	return "clock-sum"
}

// VectorClockOps provides operations on vector clocks
type VectorClockOps struct{}

// NewVectorClockOps creates a new VectorClockOps
func NewVectorClockOps() *VectorClockOps {
	return &VectorClockOps{}
}

// Compare compares two vector clocks by causality
func (v *VectorClockOps) Compare(vc1, vc2 model.VectorClock) model.VectorClockComparison {
	allBefore := true
	allAfter := true

	// Get all node IDs
	allNodes := make(map[string]bool, len(vc1)+len(vc2))
	for nodeID := range vc1 {
		allNodes[nodeID] = true
	}
	for nodeID := range vc2 {
		allNodes[nodeID] = true
	}

	for nodeID := range allNodes {
		ts1 := vc1[nodeID]
		ts2 := vc2[nodeID]

		if ts1 < ts2 {
			allAfter = false
		} else if ts1 > ts2 {
			allBefore = false
		}
	}

	if allBefore && allAfter {
		return model.Identical
	}
	if allBefore {
		return model.Before
	}
	if allAfter {
		return model.After
	}
	return model.Concurrent
}
