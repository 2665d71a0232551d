package service

import (
	"errors"
	"fmt"
)

var (
	// ErrInsufficientReplicas is returned when fewer than two workers are live
	ErrInsufficientReplicas = errors.New("insufficient replicas")
	// ErrQuorumNotReached is returned when fewer than two replicas acknowledged a write
	ErrQuorumNotReached = errors.New("quorum not reached")
	// ErrKeyNotFound is returned when no queried replica holds the key
	ErrKeyNotFound = errors.New("key not found")
)

// QuorumError carries the number of replicas that acknowledged a failed write
type QuorumError struct {
	Successes int
}

func (e *QuorumError) Error() string {
	return fmt.Sprintf("quorum not reached: %d successes", e.Successes)
}

// Unwrap lets errors.Is match ErrQuorumNotReached
func (e *QuorumError) Unwrap() error {
	return ErrQuorumNotReached
}
