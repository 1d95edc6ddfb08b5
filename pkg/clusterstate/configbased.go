package clusterstate

// ConfigBased is a Provider backed by a static worker list parsed once
// from the scheduler's YAML configuration (pkg/config's "workers" key).
// WatchApplication always succeeds; Backends always returns the
// configured set for that app, unaffected by runtime events.
type ConfigBased struct {
	workers map[string][]string
}

// NewConfigBased builds a ConfigBased provider from an appId -> addresses
// table, typically produced by pkg/config.Load.
func NewConfigBased(workers map[string][]string) *ConfigBased {
	cp := make(map[string][]string, len(workers))
	for app, addrs := range workers {
		cp[app] = append([]string(nil), addrs...)
	}
	return &ConfigBased{workers: cp}
}

// WatchApplication implements Provider.
func (c *ConfigBased) WatchApplication(appId string) bool {
	return true
}

// Backends implements Provider.
func (c *ConfigBased) Backends(appId string) []string {
	return append([]string(nil), c.workers[appId]...)
}
