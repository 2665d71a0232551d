package service

import "github.com/distkv/distkv/coordinator/internal/model"

// WriteResult represents the result of a successful write
type WriteResult struct {
	Key          string
	VectorClock  model.VectorClock
	SyncReplicas []string
	// AsyncReplica is the tertiary sent a background copy; empty when the
	// tertiary was used as fallback or the replica set had only two members
	AsyncReplica string
	FallbackUsed bool
}

// ReadResult represents the result of a successful read
type ReadResult struct {
	Key         string
	Value       string
	Source      string
	VectorClock model.VectorClock
}
