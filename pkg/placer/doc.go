/*
Package placer implements sparrowd's two placement policies.

Unconstrained probes ceil(probeRatio*taskCount) reservations spread
randomly across the live worker set, any task fillable by any probe.
Constrained probes ceil(probeRatio) of each task's own preferred workers,
falling back to unconstrained selection once a task's preference list is
exhausted. Both share the Placer contract in placer.go so the scheduler
façade (pkg/scheduler) never has to know which variant it is holding.
*/
package placer
