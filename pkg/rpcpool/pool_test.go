package rpcpool

import (
	"net"
	"net/rpc"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type Echo struct{}

type EchoArgs struct{ Text string }
type EchoReply struct{ Text string }

func (Echo) Say(args EchoArgs, reply *EchoReply) error {
	reply.Text = args.Text
	return nil
}

func startEchoServer(t *testing.T) (addr string, stop func()) {
	t.Helper()
	server := rpc.NewServer()
	require.NoError(t, server.RegisterName("Echo", Echo{}))

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	go Serve(ln, server)

	return ln.Addr().String(), func() { ln.Close() }
}

func TestPoolCallRoundTrip(t *testing.T) {
	addr, stop := startEchoServer(t)
	defer stop()

	p := New(Config{MaxConnsPerEndpoint: 4, DialTimeout: time.Second})
	defer p.Close()

	var reply EchoReply
	err := p.Call(addr, "Echo.Say", EchoArgs{Text: "hello"}, &reply)
	require.NoError(t, err)
	assert.Equal(t, "hello", reply.Text)
}

func TestPoolReusesSessionAcrossCalls(t *testing.T) {
	addr, stop := startEchoServer(t)
	defer stop()

	p := New(DefaultConfig())
	defer p.Close()

	for i := 0; i < 5; i++ {
		var reply EchoReply
		require.NoError(t, p.Call(addr, "Echo.Say", EchoArgs{Text: "x"}, &reply))
	}

	p.mu.Lock()
	n := len(p.endpoints)
	p.mu.Unlock()
	assert.Equal(t, 1, n)
}

func TestPoolConcurrentCallsShareOneSession(t *testing.T) {
	addr, stop := startEchoServer(t)
	defer stop()

	p := New(Config{MaxConnsPerEndpoint: 4, DialTimeout: time.Second})
	defer p.Close()

	var wg sync.WaitGroup
	errs := make(chan error, 20)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			var reply EchoReply
			errs <- p.Call(addr, "Echo.Say", EchoArgs{Text: "concurrent"}, &reply)
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		assert.NoError(t, err)
	}

	p.mu.Lock()
	n := len(p.endpoints)
	p.mu.Unlock()
	assert.Equal(t, 1, n)
}

func TestPoolDiscardForcesRedial(t *testing.T) {
	addr, stop := startEchoServer(t)
	defer stop()

	p := New(DefaultConfig())
	defer p.Close()

	var reply EchoReply
	require.NoError(t, p.Call(addr, "Echo.Say", EchoArgs{Text: "a"}, &reply))

	p.Discard(addr)

	p.mu.Lock()
	_, ok := p.endpoints[addr]
	p.mu.Unlock()
	assert.False(t, ok)

	require.NoError(t, p.Call(addr, "Echo.Say", EchoArgs{Text: "b"}, &reply))
	assert.Equal(t, "b", reply.Text)
}

func TestPoolCallUnreachableEndpointErrors(t *testing.T) {
	p := New(Config{MaxConnsPerEndpoint: 1, DialTimeout: 100 * time.Millisecond})
	defer p.Close()

	var reply EchoReply
	err := p.Call("127.0.0.1:1", "Echo.Say", EchoArgs{Text: "x"}, &reply)
	assert.Error(t, err)
}
