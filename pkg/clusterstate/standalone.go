package clusterstate

import "sync"

// Standalone is an in-memory Provider populated by local registrations —
// the deployment mode used by single-box demos and every unit test that
// doesn't care about real cluster membership.
type Standalone struct {
	mu      sync.RWMutex
	watched map[string]bool
	workers map[string][]string
}

// NewStandalone returns an empty Standalone provider.
func NewStandalone() *Standalone {
	return &Standalone{
		watched: make(map[string]bool),
		workers: make(map[string][]string),
	}
}

// WatchApplication implements Provider. Standalone always accepts.
func (s *Standalone) WatchApplication(appId string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.watched[appId] = true
	if _, ok := s.workers[appId]; !ok {
		s.workers[appId] = nil
	}
	return true
}

// Backends implements Provider.
func (s *Standalone) Backends(appId string) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.workers[appId]...)
}

// RegisterWorker adds addr to appId's worker set. Idempotent.
func (s *Standalone) RegisterWorker(appId, addr string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, w := range s.workers[appId] {
		if w == addr {
			return
		}
	}
	s.workers[appId] = append(s.workers[appId], addr)
}

// DeregisterWorker removes addr from appId's worker set, if present.
func (s *Standalone) DeregisterWorker(appId, addr string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ws := s.workers[appId]
	for i, w := range ws {
		if w == addr {
			s.workers[appId] = append(ws[:i], ws[i+1:]...)
			return
		}
	}
}
