package placer

import (
	"math"
	"math/rand"
	"sync"

	"github.com/kassaye-yigzaw/sparrow/pkg/types"
)

// Unconstrained implements the probe-without-preference Sparrow policy:
// P = ceil(probeRatio * taskCount) reservations spread across up to
// min(P, len(workers)) distinct workers, each of which may fill any task
// in the request.
type Unconstrained struct {
	mu sync.Mutex

	requestID string
	tasks     []types.Task

	// credits[worker] is the number of reservations still owed a reply.
	credits map[string]int
	// nextTask is the index of the next unassigned task, insertion order.
	nextTask int
	// issued is the total reservation credits handed out across plan().
	issued int
	// answered is how many of those credits have produced a reply
	// (task or empty) so far.
	answered int

	rng *rand.Rand
}

// NewUnconstrained constructs an Unconstrained placer. rng may be nil, in
// which case a process-global source is used; tests pass a seeded
// *rand.Rand for deterministic, reproducible placement in tests.
func NewUnconstrained(rng *rand.Rand) *Unconstrained {
	if rng == nil {
		rng = rand.New(rand.NewSource(rand.Int63()))
	}
	return &Unconstrained{rng: rng}
}

// Plan implements Placer.
func (p *Unconstrained) Plan(request types.Request, requestID string, workers []string, schedulerAddr string) map[string]types.ReservationBatch {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.requestID = requestID
	p.tasks = request.Tasks

	probeRatio := request.ProbeRatio
	if probeRatio <= 0 {
		probeRatio = 1.0
	}
	want := int(math.Ceil(probeRatio * float64(len(request.Tasks))))

	p.credits = make(map[string]int)
	batches := make(map[string]types.ReservationBatch)
	if len(workers) == 0 || want == 0 {
		return batches
	}

	chosen := chooseWorkers(p.rng, workers, want)
	for _, w := range chosen {
		p.credits[w]++
	}
	for w, n := range p.credits {
		p.issued += n
		batches[w] = types.ReservationBatch{
			RequestID:       requestID,
			App:             request.App,
			SchedulerAddr:   schedulerAddr,
			NumReservations: n,
			Tasks:           request.Tasks,
		}
	}
	return batches
}

// chooseWorkers picks `want` worker slots: min(want, len(workers))
// distinct workers chosen without replacement, then — if want exceeds
// len(workers) — extra slots distributed by further random draws with
// replacement until the total reaches want.
func chooseWorkers(rng *rand.Rand, workers []string, want int) []string {
	n := len(workers)
	perm := rng.Perm(n)

	distinct := want
	if distinct > n {
		distinct = n
	}

	result := make([]string, 0, want)
	for i := 0; i < distinct; i++ {
		result = append(result, workers[perm[i]])
	}
	for len(result) < want {
		result = append(result, workers[rng.Intn(n)])
	}
	return result
}

// AssignTask implements Placer.
func (p *Unconstrained) AssignTask(worker string) []types.LaunchSpec {
	p.mu.Lock()
	defer p.mu.Unlock()

	remaining, ok := p.credits[worker]
	if !ok || remaining <= 0 {
		return nil
	}
	p.credits[worker] = remaining - 1
	p.answered++

	if p.nextTask >= len(p.tasks) {
		return nil
	}
	task := p.tasks[p.nextTask]
	p.nextTask++
	return []types.LaunchSpec{{TaskID: task.TaskID, Payload: task.Payload}}
}

// AllResponsesReceived implements Placer.
func (p *Unconstrained) AllResponsesReceived() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.answered >= p.issued
}
