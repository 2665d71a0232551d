package model

// VirtualNode is one position a worker occupies on the hash ring
type VirtualNode struct {
	Hash     int64
	WorkerID string
}
