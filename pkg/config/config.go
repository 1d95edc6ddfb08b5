package config

import (
	"fmt"
	"net"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// DeploymentMode selects which clusterstate.Provider backs sparrowd.
type DeploymentMode string

const (
	ModeStandalone  DeploymentMode = "standalone"
	ModeConfigBased DeploymentMode = "configbased"
	ModeProduction  DeploymentMode = "production"
)

// WorkerGroup is one entry of the configbased-mode worker table.
type WorkerGroup struct {
	App       string   `yaml:"app"`
	Addresses []string `yaml:"addresses"`
}

// RPCPoolConfig configures pkg/rpcpool.
type RPCPoolConfig struct {
	MaxConnsPerEndpoint int           `yaml:"maxConnsPerEndpoint"`
	DialTimeout         time.Duration `yaml:"dialTimeout"`
}

// ConsulConfig configures the production clusterstate.Provider.
type ConsulConfig struct {
	Address       string `yaml:"address"`
	ServicePrefix string `yaml:"servicePrefix"`
}

// TLSConfig configures pkg/security/rpcpool transport security.
type TLSConfig struct {
	Enabled bool   `yaml:"enabled"`
	CertDir string `yaml:"certDir"`
}

// Config is sparrowd's full YAML configuration.
type Config struct {
	DeploymentMode          DeploymentMode `yaml:"deploymentMode"`
	BindAddr                string         `yaml:"bindAddr"`
	UnconstrainedProbeRatio float64        `yaml:"unconstrainedProbeRatio"`
	ConstrainedProbeRatio   float64        `yaml:"constrainedProbeRatio"`
	SpreadHackEnabled       bool           `yaml:"spreadHackEnabled"`
	RPCPool                 RPCPoolConfig  `yaml:"rpcPool"`
	Workers                 []WorkerGroup  `yaml:"workers"`
	Consul                  ConsulConfig   `yaml:"consul"`
	TLS                     TLSConfig      `yaml:"tls"`
}

// Default returns the configuration sparrowd runs with when no file is
// supplied: standalone mode, bind on all interfaces, probe ratio 2.0 on both
// policies, spread hack on, TLS off.
func Default() Config {
	return Config{
		DeploymentMode:          ModeStandalone,
		BindAddr:                "0.0.0.0:7077",
		UnconstrainedProbeRatio: 2.0,
		ConstrainedProbeRatio:   2.0,
		SpreadHackEnabled:       true,
		RPCPool: RPCPoolConfig{
			MaxConnsPerEndpoint: 8,
			DialTimeout:         5 * time.Second,
		},
		Consul: ConsulConfig{
			ServicePrefix: "sparrow-worker-",
		},
		TLS: TLSConfig{
			CertDir: "/var/lib/sparrowd/certs",
		},
	}
}

// Load reads and parses path, filling in Default()'s values for any
// key the file omits, then validates the result. A malformed file or
// an invalid value is fatal at startup: the serve command returns the
// error and sparrowd exits without retrying.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, cfg.Validate()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks that the deployment mode is known, the bind address
// parses, and the fields each mode requires are present.
func (c Config) Validate() error {
	switch c.DeploymentMode {
	case ModeStandalone, ModeConfigBased, ModeProduction:
	default:
		return fmt.Errorf("config: unknown deploymentMode %q", c.DeploymentMode)
	}

	if _, _, err := net.SplitHostPort(c.BindAddr); err != nil {
		return fmt.Errorf("config: invalid bindAddr %q: %w", c.BindAddr, err)
	}

	if c.UnconstrainedProbeRatio <= 0 {
		return fmt.Errorf("config: unconstrainedProbeRatio must be positive, got %v", c.UnconstrainedProbeRatio)
	}
	if c.ConstrainedProbeRatio <= 0 {
		return fmt.Errorf("config: constrainedProbeRatio must be positive, got %v", c.ConstrainedProbeRatio)
	}

	if c.DeploymentMode == ModeConfigBased {
		if len(c.Workers) == 0 {
			return fmt.Errorf("config: configbased mode requires a non-empty workers list")
		}
		for _, wg := range c.Workers {
			if wg.App == "" {
				return fmt.Errorf("config: workers entry missing app name")
			}
			for _, addr := range wg.Addresses {
				if _, _, err := net.SplitHostPort(addr); err != nil {
					return fmt.Errorf("config: worker address %q for app %q: %w", addr, wg.App, err)
				}
			}
		}
	}

	if c.DeploymentMode == ModeProduction && c.Consul.Address == "" {
		return fmt.Errorf("config: production mode requires consul.address")
	}

	if c.TLS.Enabled && c.TLS.CertDir == "" {
		return fmt.Errorf("config: tls.enabled requires tls.certDir")
	}

	return nil
}

// WorkerTable builds the appId -> addresses map clusterstate.NewConfigBased
// expects from the configbased-mode worker list.
func (c Config) WorkerTable() map[string][]string {
	table := make(map[string][]string, len(c.Workers))
	for _, wg := range c.Workers {
		table[wg.App] = wg.Addresses
	}
	return table
}
