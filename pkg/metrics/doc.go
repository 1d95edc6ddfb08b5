// Package metrics defines sparrowd's Prometheus metrics: request
// outcomes, reservation/placement counters, registry size, and
// outbound rpcpool call latency. All metrics register at package init
// and are exposed over HTTP via Handler.
package metrics
