package scheduler

import (
	"math/rand"
	"net"
	"strconv"
	"sync"
	"time"

	"github.com/kassaye-yigzaw/sparrow/pkg/clusterstate"
	"github.com/kassaye-yigzaw/sparrow/pkg/idalloc"
	"github.com/kassaye-yigzaw/sparrow/pkg/log"
	"github.com/kassaye-yigzaw/sparrow/pkg/metrics"
	"github.com/kassaye-yigzaw/sparrow/pkg/placer"
	"github.com/kassaye-yigzaw/sparrow/pkg/registry"
	"github.com/kassaye-yigzaw/sparrow/pkg/rpcpool"
	"github.com/kassaye-yigzaw/sparrow/pkg/types"
	"github.com/rs/zerolog"
)

// Config carries the tunables Scheduler needs beyond its collaborators.
type Config struct {
	Host                    string
	Port                    int
	UnconstrainedProbeRatio float64
	ConstrainedProbeRatio   float64
	SpreadHackEnabled       bool
}

// Scheduler is sparrowd's façade: the single entry point an RPC
// server calls into for RegisterFrontend, SubmitJob, GetTask, and
// SendFrontendMessage.
type Scheduler struct {
	cfg      Config
	cluster  clusterstate.Provider
	pool     *rpcpool.Pool
	ids      *idalloc.Allocator
	registry *registry.Registry
	audit    log.Audit
	logger   zerolog.Logger

	frontendsMu sync.RWMutex
	frontends   map[string]string // appId -> address

	rngMu sync.Mutex
	rng   *rand.Rand
}

// New builds a Scheduler. cluster and pool are already-constructed
// collaborators (clusterstate.Provider variant and rpcpool.Pool);
// cfg.Host/cfg.Port seed the request-ID allocator's
// "<ipv4>_<port>_<counter>" format.
func New(cfg Config, cluster clusterstate.Provider, pool *rpcpool.Pool) *Scheduler {
	return &Scheduler{
		cfg:       cfg,
		cluster:   cluster,
		pool:      pool,
		ids:       idalloc.New(cfg.Host, cfg.Port),
		registry:  registry.New(),
		audit:     log.NewAudit(),
		logger:    log.WithComponent("scheduler"),
		frontends: make(map[string]string),
		rng:       rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// nextRand returns a *rand.Rand seeded from the scheduler's shared
// source, advanced under lock so concurrent submissions never share a
// *rand.Rand instance (which is not itself goroutine-safe).
func (s *Scheduler) nextRand() *rand.Rand {
	s.rngMu.Lock()
	seed := s.rng.Int63()
	s.rngMu.Unlock()
	return rand.New(rand.NewSource(seed))
}

// schedulerAddr is embedded in every reservation batch so a worker
// knows where to call back for getTask.
func (s *Scheduler) schedulerAddr() string {
	return net.JoinHostPort(s.cfg.Host, strconv.Itoa(s.cfg.Port))
}

// RegisterFrontend records appId's completion-notification address and
// asks the cluster-state provider to start watching the application.
// Parsing failures and repeated registrations with the same address are
// both idempotent no-ops that return the same boolean.
func (s *Scheduler) RegisterFrontend(appId, address string) bool {
	if _, _, err := net.SplitHostPort(address); err != nil {
		s.logger.Warn().Str("app", appId).Str("address", address).Msg("registerFrontend: invalid address")
		return false
	}

	s.frontendsMu.Lock()
	s.frontends[appId] = address
	s.frontendsMu.Unlock()

	return s.cluster.WatchApplication(appId)
}

func (s *Scheduler) frontendAddr(appId string) (string, bool) {
	s.frontendsMu.RLock()
	defer s.frontendsMu.RUnlock()
	addr, ok := s.frontends[appId]
	return addr, ok
}

// SubmitJob allocates a request ID, picks a placer variant, computes
// the placement plan, and dispatches reservation batches to workers.
// It returns once dispatch has been initiated — worker replies are not
// awaited.
func (s *Scheduler) SubmitJob(request types.Request) (string, error) {
	requestID := s.ids.Next()
	timer := metrics.NewTimer()

	s.audit.Arrived(requestID, len(request.Tasks), s.schedulerAddr())

	workers := s.cluster.Backends(request.App)

	constrained := request.Constrained()
	probeRatio := request.ProbeRatio
	policy := "unconstrained"
	if constrained {
		policy = "constrained"
		if probeRatio <= 0 {
			probeRatio = s.cfg.ConstrainedProbeRatio
		}
	} else if probeRatio <= 0 {
		probeRatio = s.cfg.UnconstrainedProbeRatio
	}
	request.ProbeRatio = probeRatio

	candidates := workers
	if s.cfg.SpreadHackEnabled {
		candidates = applySpreadHack(request, workers)
	}

	var p placer.Placer
	if constrained {
		p = placer.NewConstrained(s.nextRand())
	} else {
		p = placer.NewUnconstrained(s.nextRand())
	}

	batches := p.Plan(request, requestID, candidates, s.schedulerAddr())
	s.registry.Insert(requestID, p)
	metrics.RegistrySize.Set(float64(s.registry.Len()))

	reservations := 0
	for worker, batch := range batches {
		s.audit.LaunchEnqueue(requestID, worker, batch.NumReservations)
		s.dispatchReservation(worker, batch)
		reservations += batch.NumReservations
	}

	metrics.RequestsTotal.WithLabelValues("scheduled").Inc()
	timer.ObserveDurationVec(metrics.PlacementLatency, policy)
	metrics.ReservationsDispatchedTotal.WithLabelValues(policy).Add(float64(reservations))

	return requestID, nil
}

// dispatchReservation fires Worker.EnqueueTaskReservations at worker,
// fire-and-forget: a transport error is logged and swallowed so the
// remaining workers still get their batches.
func (s *Scheduler) dispatchReservation(worker string, batch types.ReservationBatch) {
	go func() {
		var reply struct{}
		err := s.pool.Call(worker, "Worker.EnqueueTaskReservations", batch, &reply)
		if err != nil {
			s.logger.Warn().Err(err).Str("worker", worker).Str("request_id", batch.RequestID).
				Msg("reservation dispatch failed")
			metrics.RPCCallsTotal.WithLabelValues("EnqueueTaskReservations", "error").Inc()
			return
		}
		s.audit.CompleteEnqueue(batch.RequestID, worker)
		metrics.RPCCallsTotal.WithLabelValues("EnqueueTaskReservations", "ok").Inc()
	}()
}

// GetTask implements the late-binding pull: a worker asks for its next
// task for requestID. A miss, a retired placer, or a protocol
// violation (the placer returning more than one spec) all yield an
// empty reply rather than an error.
func (s *Scheduler) GetTask(requestID string, worker types.WorkerIdentity) []types.LaunchSpec {
	p, ok := s.registry.Lookup(requestID)
	if !ok {
		s.logger.Error().Str("request_id", requestID).Msg("getTask: unknown request")
		return nil
	}

	addr := worker.Address()
	specs := p.AssignTask(addr)
	if len(specs) > 1 {
		s.logger.Error().Str("request_id", requestID).Str("worker", addr).
			Int("count", len(specs)).Msg("getTask: placer returned more than one spec, protocol violation")
		specs = nil
	}

	if len(specs) == 1 {
		s.audit.AssignedTask(requestID, addr, specs[0].TaskID)
		metrics.TasksScheduledTotal.Inc()
	} else {
		s.audit.GetTaskNoTask(requestID, addr)
		metrics.NoTaskPollsTotal.Inc()
	}

	if p.AllResponsesReceived() {
		if s.registry.Remove(requestID) {
			metrics.RegistrySize.Set(float64(s.registry.Len()))
		}
	}

	return specs
}

// SendFrontendMessage relays a task-completion notification to the
// frontend owning appId. If no frontend is registered, it logs and
// returns — it does not attempt the RPC on a null handle.
func (s *Scheduler) SendFrontendMessage(appId, fullTaskId string, status int, payload []byte) {
	addr, ok := s.frontendAddr(appId)
	if !ok {
		s.logger.Warn().Str("app", appId).Str("task_id", fullTaskId).
			Msg("sendFrontendMessage: no frontend registered")
		return
	}

	msg := types.FrontendMessage{FullTaskID: fullTaskId, Status: status, Payload: payload}
	go func() {
		var reply struct{}
		err := s.pool.Call(addr, "Frontend.FrontendMessage", msg, &reply)
		if err != nil {
			s.logger.Warn().Err(err).Str("app", appId).Str("address", addr).
				Msg("sendFrontendMessage: transport error, discarding handle")
			s.pool.Discard(addr)
			metrics.RPCCallsTotal.WithLabelValues("FrontendMessage", "error").Inc()
			return
		}
		metrics.RPCCallsTotal.WithLabelValues("FrontendMessage", "ok").Inc()
	}()
}

// applySpreadHack implements the "spread" input-shaping rule: when
// every task shares an identical 1-2 node preference list
// and the request's resolved probe ratio is exactly 3, the preferred
// workers are excluded from the candidate set so probing is forced
// onto fresh workers. It is a workload hint, not part of the placement
// algorithm, and is gated by Config.SpreadHackEnabled.
func applySpreadHack(request types.Request, workers []string) []string {
	if request.ProbeRatio != 3 || len(request.Tasks) == 0 {
		return workers
	}

	var shared []string
	for i, t := range request.Tasks {
		if t.Preference == nil || len(t.Preference.Nodes) == 0 || len(t.Preference.Nodes) > 2 {
			return workers
		}
		if i == 0 {
			shared = t.Preference.Nodes
			continue
		}
		if !sameNodes(shared, t.Preference.Nodes) {
			return workers
		}
	}

	excluded := make(map[string]bool, len(shared))
	for _, n := range shared {
		excluded[n] = true
	}

	filtered := make([]string, 0, len(workers))
	for _, w := range workers {
		if !excluded[w] {
			filtered = append(filtered, w)
		}
	}
	return filtered
}

func sameNodes(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	seen := make(map[string]bool, len(a))
	for _, n := range a {
		seen[n] = true
	}
	for _, n := range b {
		if !seen[n] {
			return false
		}
	}
	return true
}
