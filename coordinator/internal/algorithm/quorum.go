package algorithm

const (
	// ReplicationFactor is the size of a key's replica set
	ReplicationFactor = 3
	// WriteQuorum is the number of successful puts a write needs,
	// independent of how many replicas the ring could supply
	WriteQuorum = 2
)

// QuorumCalculator answers quorum questions for the write path
type QuorumCalculator struct {
	replicationFactor int
	quorum            int
}

// NewQuorumCalculator creates a new quorum calculator
func NewQuorumCalculator() *QuorumCalculator {
	return &QuorumCalculator{
		replicationFactor: ReplicationFactor,
		quorum:            WriteQuorum,
	}
}

// ReplicationFactor returns how many replicas to ask the ring for
func (q *QuorumCalculator) ReplicationFactor() int {
	return q.replicationFactor
}

// Quorum returns the number of successes required
func (q *QuorumCalculator) Quorum() int {
	return q.quorum
}

// HasEnoughReplicas reports whether a replica set is large enough to attempt a write
func (q *QuorumCalculator) HasEnoughReplicas(replicaCount int) bool {
	return replicaCount >= q.quorum
}

// IsQuorumReached checks if quorum is reached
func (q *QuorumCalculator) IsQuorumReached(successCount int) bool {
	return successCount >= q.quorum
}

// HasTertiary reports whether the replica set carries a third member that
// can serve as fallback or async copy
func (q *QuorumCalculator) HasTertiary(replicaCount int) bool {
	return replicaCount > q.quorum
}
