package types

import (
	"net"
	"strconv"
	"time"
)

// WorkerIdentity identifies the node monitor calling getTask.
type WorkerIdentity struct {
	Host string
	Port int
}

// Address renders the identity as a dialable "host:port" string, the same
// form used as a key into the reservation plan and the rpcpool.
func (w WorkerIdentity) Address() string {
	return net.JoinHostPort(w.Host, strconv.Itoa(w.Port))
}

// Preference lists a task's candidate worker addresses, honored by the
// constrained placer and ignored by the unconstrained one.
type Preference struct {
	Nodes []string // "host:port" candidates, preference order preserved
}

// Task is one unit of work inside a scheduling request. Payload is
// opaque to sparrowd; it is only ever handed back to whichever worker
// wins the task via getTask.
type Task struct {
	TaskID     string
	Payload    []byte
	Preference *Preference // nil means unconstrained
}

// Request is the immutable value a frontend submits via submitJob.
type Request struct {
	App        string
	Tasks      []Task
	ProbeRatio float64 // 0 means "use the configured default"
}

// Constrained reports whether any task in the request carries a
// non-empty preference list.
func (r Request) Constrained() bool {
	for _, t := range r.Tasks {
		if t.Preference != nil && len(t.Preference.Nodes) > 0 {
			return true
		}
	}
	return false
}

// ReservationBatch is the value sent to one worker: a promise of
// reservations plus the tasks eligible to fill them.
type ReservationBatch struct {
	RequestID       string
	App             string
	SchedulerAddr   string
	NumReservations int
	Tasks           []Task
}

// LaunchSpec is returned to a worker from getTask: exactly one pending
// task's payload and ID. An empty LaunchSpec (zero value, Empty() true)
// means the worker should back off and try another scheduler/request.
type LaunchSpec struct {
	TaskID  string
	Payload []byte
}

// Empty reports whether this is the "no task available" reply.
func (l LaunchSpec) Empty() bool {
	return l.TaskID == ""
}

// FrontendMessage is the payload sparrowd fans out to a frontend once a
// task's outcome is known.
type FrontendMessage struct {
	FullTaskID string
	Status     int
	Payload    []byte
	At         time.Time
}
