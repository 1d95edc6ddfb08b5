package placer

import (
	"math"
	"math/rand"
	"sync"

	"github.com/kassaye-yigzaw/sparrow/pkg/log"
	"github.com/kassaye-yigzaw/sparrow/pkg/types"
)

// taskSlot tracks one task's remaining preference candidates and whether
// it has already been handed to a worker.
type taskSlot struct {
	task     types.Task
	prefs    []string // preference order preserved, unresolved entries dropped
	assigned bool
}

// Constrained implements the preference-aware Sparrow policy: each task
// with a preference list probes ceil(probeRatio) of its preferred
// workers, falling back to unconstrained selection once a task's
// preferences are exhausted.
type Constrained struct {
	mu sync.Mutex

	requestID string
	slots     []*taskSlot

	// tasksByWorker[worker] lists the indices into slots this worker may
	// fill, preference order preserved for determinism.
	tasksByWorker map[string][]int
	credits       map[string]int
	issued        int
	answered      int

	rng *rand.Rand
}

// NewConstrained constructs a Constrained placer. rng may be nil for a
// process-global source.
func NewConstrained(rng *rand.Rand) *Constrained {
	if rng == nil {
		rng = rand.New(rand.NewSource(rand.Int63()))
	}
	return &Constrained{rng: rng}
}

// Plan implements Placer.
func (p *Constrained) Plan(request types.Request, requestID string, workers []string, schedulerAddr string) map[string]types.ReservationBatch {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.requestID = requestID
	probeRatio := request.ProbeRatio
	if probeRatio <= 0 {
		probeRatio = 1.0
	}
	perTaskProbes := int(math.Ceil(probeRatio))
	if perTaskProbes < 1 {
		perTaskProbes = 1
	}

	workerSet := make(map[string]bool, len(workers))
	for _, w := range workers {
		workerSet[w] = true
	}

	p.slots = make([]*taskSlot, len(request.Tasks))
	p.tasksByWorker = make(map[string][]int)
	p.credits = make(map[string]int)

	for i, task := range request.Tasks {
		var candidates []string
		if task.Preference != nil {
			for _, node := range task.Preference.Nodes {
				if workerSet[node] {
					candidates = append(candidates, node)
					continue
				}
				// Preference resolution failure: host not present in the
				// live worker set. Logged here and dropped; remaining
				// preferences still apply.
				log.WithComponent("placer").Warn().
					Str("request_id", requestID).
					Str("task_id", task.TaskID).
					Str("node", node).
					Msg("preference node not in live worker set, ignoring")
			}
		}

		slot := &taskSlot{task: task, prefs: candidates}
		p.slots[i] = slot

		var probeTargets []string
		if len(candidates) > 0 {
			probeTargets = chooseWorkers(p.rng, candidates, perTaskProbes)
		} else if len(workers) > 0 {
			// Preferences exhausted or absent: fall back to
			// unconstrained selection for this task.
			probeTargets = chooseWorkers(p.rng, workers, perTaskProbes)
		}

		for _, w := range probeTargets {
			// A worker drawn twice for the same task gets an extra credit
			// but lists the task only once.
			if idxs := p.tasksByWorker[w]; len(idxs) == 0 || idxs[len(idxs)-1] != i {
				p.tasksByWorker[w] = append(idxs, i)
			}
			p.credits[w]++
		}
	}

	batches := make(map[string]types.ReservationBatch)
	for w, idxs := range p.tasksByWorker {
		tasks := make([]types.Task, 0, len(idxs))
		for _, i := range idxs {
			tasks = append(tasks, p.slots[i].task)
		}
		n := p.credits[w]
		p.issued += n
		batches[w] = types.ReservationBatch{
			RequestID:       requestID,
			App:             request.App,
			SchedulerAddr:   schedulerAddr,
			NumReservations: n,
			Tasks:           tasks,
		}
	}
	return batches
}

// AssignTask implements Placer.
func (p *Constrained) AssignTask(worker string) []types.LaunchSpec {
	p.mu.Lock()
	defer p.mu.Unlock()

	remaining, ok := p.credits[worker]
	if !ok || remaining <= 0 {
		return nil
	}
	p.credits[worker] = remaining - 1
	p.answered++

	for _, i := range p.tasksByWorker[worker] {
		slot := p.slots[i]
		if !slot.assigned {
			slot.assigned = true
			return []types.LaunchSpec{{TaskID: slot.task.TaskID, Payload: slot.task.Payload}}
		}
	}
	return nil
}

// AllResponsesReceived implements Placer.
func (p *Constrained) AllResponsesReceived() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.answered >= p.issued
}
