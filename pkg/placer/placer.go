/*
Package placer implements the two Sparrow placement policies: the
unconstrained random-probe placer and the node-preference-aware
constrained placer. Both share the Placer contract so the scheduler
façade can treat either variant identically once it has decided which
one a request needs.
*/
package placer

import "github.com/kassaye-yigzaw/sparrow/pkg/types"

// Placer owns the placement plan and assignment bookkeeping for exactly
// one in-flight request. It is installed into the request registry once
// and retired the first time AllResponsesReceived reports true.
type Placer interface {
	// Plan computes the per-worker reservation batches for request,
	// given the worker set chosen for it and the scheduler's own
	// callback address (embedded in every batch so workers know who to
	// call back via getTask). Plan is called exactly once, before the
	// placer is installed into the registry.
	Plan(request types.Request, requestID string, workers []string, schedulerAddr string) map[string]types.ReservationBatch

	// AssignTask answers one reservation credit held by worker. The
	// returned slice has length 0 or 1, never more. Called at most once
	// per credit that worker holds.
	AssignTask(worker string) []types.LaunchSpec

	// AllResponsesReceived reports whether every issued reservation
	// credit has been answered, whether by handing out a task or by
	// returning empty. Once true, the caller must retire this placer.
	AllResponsesReceived() bool
}
