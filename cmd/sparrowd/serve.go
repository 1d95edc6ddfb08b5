package main

import (
	"crypto/tls"
	"fmt"
	"net"
	"net/http"
	"net/rpc"
	"os"
	"os/signal"
	"syscall"

	"github.com/kassaye-yigzaw/sparrow/pkg/clusterstate"
	"github.com/kassaye-yigzaw/sparrow/pkg/config"
	"github.com/kassaye-yigzaw/sparrow/pkg/log"
	"github.com/kassaye-yigzaw/sparrow/pkg/metrics"
	"github.com/kassaye-yigzaw/sparrow/pkg/rpcpool"
	"github.com/kassaye-yigzaw/sparrow/pkg/scheduler"
	"github.com/kassaye-yigzaw/sparrow/pkg/security"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the sparrowd scheduler",
	Long:  `Start the scheduler's RPC listener and metrics endpoint, blocking until interrupted.`,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().String("metrics-addr", "127.0.0.1:9090", "Address for the /metrics HTTP endpoint")
}

func runServe(cmd *cobra.Command, args []string) error {
	configPath, _ := cmd.Flags().GetString("config")
	metricsAddr, _ := cmd.Flags().GetString("metrics-addr")

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	host, portStr, err := net.SplitHostPort(cfg.BindAddr)
	if err != nil {
		return fmt.Errorf("invalid bindAddr %q: %w", cfg.BindAddr, err)
	}

	cluster, err := newClusterProvider(cfg)
	if err != nil {
		return fmt.Errorf("failed to build cluster-state provider: %w", err)
	}
	if closer, ok := cluster.(interface{ Close() }); ok {
		defer closer.Close()
	}

	var serverTLSConfig, clientTLSConfig *tls.Config
	if cfg.TLS.Enabled {
		nodeCert, caCert, err := security.Materialize(cfg.TLS.CertDir, host, cfg.BindAddr)
		if err != nil {
			return fmt.Errorf("failed to materialize TLS certificates: %w", err)
		}
		serverTLSConfig = security.ServerTLSConfig(nodeCert, caCert)
		clientTLSConfig = security.ClientTLSConfig(nodeCert, caCert)
	}

	pool := rpcpool.New(rpcpool.Config{
		MaxConnsPerEndpoint: cfg.RPCPool.MaxConnsPerEndpoint,
		DialTimeout:         cfg.RPCPool.DialTimeout,
		TLSConfig:           clientTLSConfig,
	})
	defer pool.Close()

	sched := scheduler.New(scheduler.Config{
		Host:                    host,
		Port:                    parsePort(portStr),
		UnconstrainedProbeRatio: cfg.UnconstrainedProbeRatio,
		ConstrainedProbeRatio:   cfg.ConstrainedProbeRatio,
		SpreadHackEnabled:       cfg.SpreadHackEnabled,
	}, cluster, pool)

	server := rpc.NewServer()
	if err := server.RegisterName("Scheduler", scheduler.NewHandler(sched)); err != nil {
		return fmt.Errorf("failed to register RPC handler: %w", err)
	}

	ln, err := net.Listen("tcp", cfg.BindAddr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", cfg.BindAddr, err)
	}
	if serverTLSConfig != nil {
		ln = tls.NewListener(ln, serverTLSConfig)
	}
	defer ln.Close()

	errCh := make(chan error, 1)
	go func() {
		if err := rpcpool.Serve(ln, server); err != nil {
			errCh <- fmt.Errorf("rpc listener error: %w", err)
		}
	}()
	log.Logger.Info().Str("addr", cfg.BindAddr).Str("mode", string(cfg.DeploymentMode)).Msg("sparrowd listening")

	go func() {
		mux := http.NewServeMux()
		mux.Handle("/metrics", metrics.Handler())
		if err := http.ListenAndServe(metricsAddr, mux); err != nil {
			log.Logger.Error().Err(err).Msg("metrics server error")
		}
	}()
	log.Logger.Info().Str("addr", metricsAddr).Msg("metrics endpoint listening")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case <-sigCh:
		log.Logger.Info().Msg("shutting down")
	case err := <-errCh:
		return err
	}

	return nil
}

// newClusterProvider builds the clusterstate.Provider matching cfg's
// deployment mode.
func newClusterProvider(cfg config.Config) (clusterstate.Provider, error) {
	switch cfg.DeploymentMode {
	case config.ModeStandalone:
		return clusterstate.NewStandalone(), nil
	case config.ModeConfigBased:
		return clusterstate.NewConfigBased(cfg.WorkerTable()), nil
	case config.ModeProduction:
		return clusterstate.NewProduction(cfg.Consul.Address, cfg.Consul.ServicePrefix)
	default:
		return nil, fmt.Errorf("unknown deployment mode %q", cfg.DeploymentMode)
	}
}

func parsePort(s string) int {
	n := 0
	for _, c := range s {
		if c < '0' || c > '9' {
			return 0
		}
		n = n*10 + int(c-'0')
	}
	return n
}
