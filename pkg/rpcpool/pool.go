package rpcpool

import (
	"crypto/tls"
	"fmt"
	"net"
	"sync"
	"time"

	msgpackrpc "github.com/hashicorp/net-rpc-msgpackrpc/v2"
	"github.com/hashicorp/yamux"
	"github.com/kassaye-yigzaw/sparrow/pkg/log"
)

// Config controls dial behavior and stream concurrency per endpoint.
type Config struct {
	// MaxConnsPerEndpoint bounds the number of concurrent streams open
	// against a single endpoint's yamux session. Call blocks once the
	// limit is reached until a stream frees up.
	MaxConnsPerEndpoint int

	// DialTimeout bounds the initial TCP dial for a new endpoint.
	DialTimeout time.Duration

	// TLSConfig, when non-nil, upgrades the dialed TCP connection to TLS
	// before the yamux session is established. Nil means plaintext,
	// matching tls.enabled being unset.
	TLSConfig *tls.Config
}

// DefaultConfig returns the configuration sparrowd falls back to when
// pkg/config doesn't override it.
func DefaultConfig() Config {
	return Config{
		MaxConnsPerEndpoint: 8,
		DialTimeout:         5 * time.Second,
	}
}

// Pool hands out RPC streams to named addr:port endpoints, reusing one
// yamux-multiplexed TCP connection per endpoint across many callers.
type Pool struct {
	cfg Config

	mu        sync.Mutex
	endpoints map[string]*endpoint
}

// New returns an empty Pool. Endpoints are dialed lazily on first Call.
func New(cfg Config) *Pool {
	return &Pool{cfg: cfg, endpoints: make(map[string]*endpoint)}
}

// Call invokes method against addr, reusing or creating the endpoint's
// pooled session as needed. args and reply follow net/rpc conventions.
func (p *Pool) Call(addr, method string, args, reply interface{}) error {
	ep, err := p.endpointFor(addr)
	if err != nil {
		return err
	}
	return ep.call(method, args, reply)
}

// Discard tears down and forgets addr's pooled session, forcing the next
// Call to redial. Callers use this after an RPC fails with a transport
// error, matching hashicorp-nomad's NotifyFailedServer pattern.
func (p *Pool) Discard(addr string) {
	p.mu.Lock()
	ep, ok := p.endpoints[addr]
	delete(p.endpoints, addr)
	p.mu.Unlock()
	if ok {
		ep.close()
	}
}

// Close tears down every pooled session.
func (p *Pool) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	for addr, ep := range p.endpoints {
		ep.close()
		delete(p.endpoints, addr)
	}
}

func (p *Pool) endpointFor(addr string) (*endpoint, error) {
	p.mu.Lock()
	ep, ok := p.endpoints[addr]
	if ok {
		p.mu.Unlock()
		return ep, nil
	}
	ep = newEndpoint(addr, p.cfg)
	p.endpoints[addr] = ep
	p.mu.Unlock()
	return ep, nil
}

// endpoint owns one lazily-dialed yamux session to a single remote
// address, bounding the number of concurrent streams open against it.
type endpoint struct {
	addr string
	cfg  Config

	mu      sync.Mutex
	session *yamux.Session

	sem chan struct{}
}

func newEndpoint(addr string, cfg Config) *endpoint {
	max := cfg.MaxConnsPerEndpoint
	if max <= 0 {
		max = 1
	}
	return &endpoint{
		addr: addr,
		cfg:  cfg,
		sem:  make(chan struct{}, max),
	}
}

func (e *endpoint) call(method string, args, reply interface{}) error {
	e.sem <- struct{}{}
	defer func() { <-e.sem }()

	sess, err := e.sessionFor()
	if err != nil {
		return err
	}

	stream, err := sess.Open()
	if err != nil {
		e.mu.Lock()
		e.session = nil
		e.mu.Unlock()
		return fmt.Errorf("rpcpool: open stream to %s: %w", e.addr, err)
	}
	defer stream.Close()

	codec := msgpackrpc.NewClientCodec(stream)
	if err := msgpackrpc.CallWithCodec(codec, method, args, reply); err != nil {
		return fmt.Errorf("rpcpool: call %s on %s: %w", method, e.addr, err)
	}
	return nil
}

func (e *endpoint) sessionFor() (*yamux.Session, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.session != nil && !e.session.IsClosed() {
		return e.session, nil
	}

	conn, err := net.DialTimeout("tcp", e.addr, e.cfg.DialTimeout)
	if err != nil {
		return nil, fmt.Errorf("rpcpool: dial %s: %w", e.addr, err)
	}

	if e.cfg.TLSConfig != nil {
		tlsCfg := e.cfg.TLSConfig
		if tlsCfg.ServerName == "" && !tlsCfg.InsecureSkipVerify {
			if host, _, err := net.SplitHostPort(e.addr); err == nil {
				tlsCfg = tlsCfg.Clone()
				tlsCfg.ServerName = host
			}
		}
		tlsConn := tls.Client(conn, tlsCfg)
		if err := tlsConn.Handshake(); err != nil {
			conn.Close()
			return nil, fmt.Errorf("rpcpool: tls handshake %s: %w", e.addr, err)
		}
		conn = tlsConn
	}

	sess, err := yamux.Client(conn, yamux.DefaultConfig())
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("rpcpool: yamux client %s: %w", e.addr, err)
	}

	e.session = sess
	log.WithComponent("rpcpool").Debug().Str("addr", e.addr).Msg("opened pooled session")
	return sess, nil
}

func (e *endpoint) close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.session != nil {
		e.session.Close()
		e.session = nil
	}
}
