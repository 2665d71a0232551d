package model

import (
	"net"
	"strconv"
	"time"
)

// WorkerInfo is the coordinator's view of a live worker. It lives only in
// memory and is rebuilt from heartbeats.
type WorkerInfo struct {
	WorkerID      string    `json:"workerId"`
	Address       string    `json:"address"`
	Port          int       `json:"port"`
	LastHeartbeat time.Time `json:"lastHeartbeat"`
}

// Target returns the host:port dial target for the worker
func (w WorkerInfo) Target() string {
	return net.JoinHostPort(w.Address, strconv.Itoa(w.Port))
}
