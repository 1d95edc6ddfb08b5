/*
Package types holds the value objects sparrowd passes between its
scheduler façade, its placers, and the external workers and frontends it
talks to.

None of these types carry behavior beyond simple derived queries
(Request.Constrained, LaunchSpec.Empty, WorkerIdentity.Address) — the
placement algorithm lives
in pkg/placer, and the façade orchestrating it lives in pkg/scheduler.
*/
package types
