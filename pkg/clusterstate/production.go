package clusterstate

import (
	"sync"
	"time"

	consulapi "github.com/hashicorp/consul/api"
	"github.com/kassaye-yigzaw/sparrow/pkg/log"
)

// Production is the Provider backing real deployments: the live worker
// set for each watched application is kept as a snapshot, refreshed in
// place by a background goroutine that long-polls Consul's blocking
// query API — an asynchronous subscription to an external store that
// swaps the snapshot under a lock whenever membership changes, rather
// than blocking callers on the network.
type Production struct {
	client        *consulapi.Client
	servicePrefix string

	mu       sync.RWMutex
	snapshot map[string][]string
	cancel   map[string]chan struct{}
}

// NewProduction builds a Consul API client for addr and returns a
// Production provider. No connection is made until a watch loop runs.
// servicePrefix is prepended to an appId to form the Consul service name
// watched for that application (e.g. "sparrow-worker-" + "A").
func NewProduction(addr, servicePrefix string) (*Production, error) {
	cfg := consulapi.DefaultConfig()
	cfg.Address = addr
	client, err := consulapi.NewClient(cfg)
	if err != nil {
		return nil, err
	}
	return &Production{
		client:        client,
		servicePrefix: servicePrefix,
		snapshot:      make(map[string][]string),
		cancel:        make(map[string]chan struct{}),
	}, nil
}

// WatchApplication implements Provider: starts a background blocking-query
// loop for appId if one isn't already running.
func (p *Production) WatchApplication(appId string) bool {
	p.mu.Lock()
	if _, ok := p.cancel[appId]; ok {
		p.mu.Unlock()
		return true
	}
	stop := make(chan struct{})
	p.cancel[appId] = stop
	p.mu.Unlock()

	go p.watchLoop(appId, stop)
	return true
}

// Backends implements Provider.
func (p *Production) Backends(appId string) []string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return append([]string(nil), p.snapshot[appId]...)
}

// Close stops every running watch loop.
func (p *Production) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, stop := range p.cancel {
		close(stop)
	}
	p.cancel = make(map[string]chan struct{})
}

// watchLoop long-polls Consul's health-check endpoint with a rising
// WaitIndex, swapping the in-memory snapshot in place under the lock each
// time the index advances. A transport error backs off briefly and
// retries rather than giving up on the application's membership.
func (p *Production) watchLoop(appId string, stop <-chan struct{}) {
	service := p.servicePrefix + appId
	var lastIndex uint64
	audit := log.WithComponent("clusterstate.production")

	for {
		select {
		case <-stop:
			return
		default:
		}

		entries, meta, err := p.client.Health().Service(service, "", true, &consulapi.QueryOptions{
			WaitIndex: lastIndex,
			WaitTime:  5 * time.Minute,
		})
		if err != nil {
			audit.Warn().Err(err).Str("app", appId).Msg("consul watch failed, retrying")
			select {
			case <-stop:
				return
			case <-time.After(2 * time.Second):
			}
			continue
		}

		lastIndex = meta.LastIndex

		addrs := make([]string, 0, len(entries))
		for _, e := range entries {
			addrs = append(addrs, e.Service.Address)
		}

		p.mu.Lock()
		p.snapshot[appId] = addrs
		p.mu.Unlock()
	}
}
