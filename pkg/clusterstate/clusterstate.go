/*
Package clusterstate supplies the worker set for an application. It is
sparrowd's one external collaborator for cluster membership: the
scheduler core only ever calls WatchApplication and Backends,
never caring which of the three deployment-mode variants answers them.

Implementers must treat the set Backends returns as a point-in-time
snapshot — a plan already computed from it is never invalidated by a
later membership change.
*/
package clusterstate

// Provider is the interface the scheduler façade consumes.
type Provider interface {
	// WatchApplication registers interest in appId's membership,
	// returning whether the provider accepted the registration.
	WatchApplication(appId string) bool

	// Backends returns the current worker set for appId as a snapshot.
	Backends(appId string) []string
}
