package rpcpool

import (
	"net"
	"net/rpc"

	msgpackrpc "github.com/hashicorp/net-rpc-msgpackrpc/v2"
	"github.com/hashicorp/yamux"
	"github.com/kassaye-yigzaw/sparrow/pkg/log"
	"github.com/rs/zerolog"
)

// Serve accepts connections on ln, wraps each as a yamux server session,
// and serves every stream opened on it through server using the msgpack
// codec. It blocks until ln.Accept returns an error, which is the
// expected behavior once ln is closed during shutdown.
func Serve(ln net.Listener, server *rpc.Server) error {
	logger := log.WithComponent("rpcpool")
	for {
		conn, err := ln.Accept()
		if err != nil {
			return err
		}
		go serveSession(conn, server, logger)
	}
}

func serveSession(conn net.Conn, server *rpc.Server, logger zerolog.Logger) {
	sess, err := yamux.Server(conn, yamux.DefaultConfig())
	if err != nil {
		logger.Warn().Err(err).Msg("yamux server handshake failed")
		conn.Close()
		return
	}
	defer sess.Close()

	for {
		stream, err := sess.Accept()
		if err != nil {
			return
		}
		go server.ServeCodec(msgpackrpc.NewServerCodec(stream))
	}
}
