// Package proto holds the wire messages and gRPC stubs shared by the
// coordinator and the workers.
package proto

//go:generate protoc --go_out=. --go_opt=paths=source_relative --go-grpc_out=. --go-grpc_opt=paths=source_relative kv.proto
