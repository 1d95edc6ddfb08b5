package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	assert.NoError(t, Default().Validate())
}

func TestLoadEmptyPathReturnsDefault(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func writeTemp(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sparrowd.yaml")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0644))
	return path
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := writeTemp(t, `
deploymentMode: configbased
bindAddr: "127.0.0.1:9000"
unconstrainedProbeRatio: 3.0
constrainedProbeRatio: 1.5
workers:
  - app: "A"
    addresses: ["10.0.0.1:9090"]
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ModeConfigBased, cfg.DeploymentMode)
	assert.Equal(t, "127.0.0.1:9000", cfg.BindAddr)
	assert.Equal(t, 3.0, cfg.UnconstrainedProbeRatio)
	assert.Equal(t, 1.5, cfg.ConstrainedProbeRatio)
	assert.Equal(t, map[string][]string{"A": {"10.0.0.1:9090"}}, cfg.WorkerTable())
}

func TestValidateRejectsUnknownDeploymentMode(t *testing.T) {
	cfg := Default()
	cfg.DeploymentMode = "bogus"
	assert.Error(t, cfg.Validate())
}

func TestValidateRejectsMalformedBindAddr(t *testing.T) {
	cfg := Default()
	cfg.BindAddr = "not-a-host-port"
	assert.Error(t, cfg.Validate())
}

func TestValidateRejectsNonPositiveProbeRatios(t *testing.T) {
	cfg := Default()
	cfg.UnconstrainedProbeRatio = 0
	assert.Error(t, cfg.Validate())

	cfg = Default()
	cfg.ConstrainedProbeRatio = -1
	assert.Error(t, cfg.Validate())
}

func TestValidateRequiresWorkersForConfigBasedMode(t *testing.T) {
	cfg := Default()
	cfg.DeploymentMode = ModeConfigBased
	assert.Error(t, cfg.Validate())

	cfg.Workers = []WorkerGroup{{App: "A", Addresses: []string{"10.0.0.1:9090"}}}
	assert.NoError(t, cfg.Validate())
}

func TestValidateRejectsMalformedWorkerAddress(t *testing.T) {
	cfg := Default()
	cfg.DeploymentMode = ModeConfigBased
	cfg.Workers = []WorkerGroup{{App: "A", Addresses: []string{"bad-addr"}}}
	assert.Error(t, cfg.Validate())
}

func TestValidateRequiresConsulAddressForProductionMode(t *testing.T) {
	cfg := Default()
	cfg.DeploymentMode = ModeProduction
	assert.Error(t, cfg.Validate())

	cfg.Consul.Address = "127.0.0.1:8500"
	assert.NoError(t, cfg.Validate())
}

func TestValidateRequiresCertDirWhenTLSEnabled(t *testing.T) {
	cfg := Default()
	cfg.TLS.Enabled = true
	cfg.TLS.CertDir = ""
	assert.Error(t, cfg.Validate())
}

func TestLoadMissingFileErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestLoadMalformedYAMLErrors(t *testing.T) {
	path := writeTemp(t, "deploymentMode: [not, a, string]")
	_, err := Load(path)
	assert.Error(t, err)
}
