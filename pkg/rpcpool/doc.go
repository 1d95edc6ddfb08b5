/*
Package rpcpool manages outbound RPC connectivity to node monitors and
frontends. Each remote endpoint gets one TCP connection multiplexed by
yamux into concurrent streams, at most Config.MaxConnsPerEndpoint at a
time, each stream carrying one net/rpc call coded with msgpack
(net-rpc-msgpackrpc). Callers never see yamux or the codec directly —
they call Pool.Call with the endpoint's address.

This mirrors the shape of hashicorp-nomad's client/rpcproxy package
(a pool of pooled endpoints, rebalanced and pruned as servers come and
go) adapted to sparrowd's simpler world: every endpoint is equally
addressable, there is no leader to track, and pool entries are created
lazily on first use rather than from a serf membership feed.
*/
package rpcpool
