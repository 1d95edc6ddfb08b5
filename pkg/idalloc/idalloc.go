/*
Package idalloc allocates cluster-unique request IDs for a scheduler
instance.

An ID has the form "<ip>_<port>_<counter>": the IP and port identify the
scheduler replica that allocated it, and the counter is a per-process,
monotonically increasing, atomically incremented value starting at zero.
Mixing the port into the ID, rather than just the IP, is deliberate so
two sparrowd replicas sharing a host cannot collide.
*/
package idalloc

import (
	"fmt"
	"sync/atomic"
)

// Allocator produces request IDs for one scheduler instance.
type Allocator struct {
	host    string
	port    int
	counter atomic.Uint64
}

// New returns an Allocator for a scheduler bound to host:port. The
// counter starts at zero and is never reset for the lifetime of the
// process.
func New(host string, port int) *Allocator {
	return &Allocator{host: host, port: port}
}

// Next allocates a fresh request ID. Safe for concurrent use; every call
// returns a distinct value.
func (a *Allocator) Next() string {
	n := a.counter.Add(1) - 1
	return fmt.Sprintf("%s_%d_%d", a.host, a.port, n)
}
