/*
Package registry holds the live requestId -> Placer mapping the
scheduler façade consults on every getTask call.

Insertion happens exactly once, during submitJob. Removal happens exactly
once, the first time a getTask call observes the placer drained — and
that removal must be atomic with respect to any other concurrent getTask
for the same request, so exactly one caller ever sees itself as "the one
that retired it".
*/
package registry

import (
	"sync"

	"github.com/kassaye-yigzaw/sparrow/pkg/placer"
)

// Registry is safe for concurrent use by multiple goroutines.
type Registry struct {
	mu      sync.Mutex
	placers map[string]placer.Placer
}

// New returns an empty Registry.
func New() *Registry {
	return &Registry{placers: make(map[string]placer.Placer)}
}

// Insert installs p under requestID. Called exactly once per request, by
// submitJob, before any getTask for that ID can arrive.
func (r *Registry) Insert(requestID string, p placer.Placer) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.placers[requestID] = p
}

// Lookup returns the placer for requestID, or nil, false on a miss
// (unknown or already-retired request).
func (r *Registry) Lookup(requestID string) (placer.Placer, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.placers[requestID]
	return p, ok
}

// Remove deletes requestID's entry if present, and reports whether this
// call was the one that actually removed it. Two concurrent Remove calls
// for the same ID can both run, but only one will observe true — the
// other finds the entry already gone and becomes a no-op.
func (r *Registry) Remove(requestID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.placers[requestID]; !ok {
		return false
	}
	delete(r.placers, requestID)
	return true
}

// Len reports the number of live (non-retired) requests, exposed for the
// registry-size metric in pkg/metrics.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.placers)
}
