/*
Package security issues and loads the certificates that secure
sparrowd's RPC listener and outbound rpcpool connections when
tls.enabled is set. Certificates persist to a directory on disk rather
than a cluster store, since sparrowd keeps no durable state of its own.
*/
package security
