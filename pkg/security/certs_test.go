package security

import (
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveAndLoadCertRoundTrip(t *testing.T) {
	dir := t.TempDir()

	ca := NewCertAuthority()
	require.NoError(t, ca.Initialize())
	cert, err := ca.IssueNodeCertificate("sched-1", []string{"localhost"}, []net.IP{net.ParseIP("127.0.0.1")})
	require.NoError(t, err)

	require.NoError(t, SaveCertToFile(cert, dir))
	require.NoError(t, SaveCACertToFile(ca.RootCACert().Raw, dir))

	assert.True(t, CertExists(dir))

	loaded, err := LoadCertFromFile(dir)
	require.NoError(t, err)
	assert.Equal(t, cert.Leaf.SerialNumber, loaded.Leaf.SerialNumber)

	caCert, err := LoadCACertFromFile(dir)
	require.NoError(t, err)
	assert.Equal(t, ca.RootCACert().SerialNumber, caCert.SerialNumber)
}

func TestCertExistsFalseForEmptyDir(t *testing.T) {
	dir := t.TempDir()
	assert.False(t, CertExists(dir))
}

func TestCertNeedsRotationNilIsTrue(t *testing.T) {
	assert.True(t, CertNeedsRotation(nil))
}

func TestMaterializeGeneratesThenReuses(t *testing.T) {
	dir := t.TempDir()

	node1, ca1, err := Materialize(dir, "sched-1", "127.0.0.1:7070")
	require.NoError(t, err)
	require.NotNil(t, node1)
	require.NotNil(t, ca1)

	node2, ca2, err := Materialize(dir, "sched-1", "127.0.0.1:7070")
	require.NoError(t, err)
	assert.Equal(t, node1.Leaf.SerialNumber, node2.Leaf.SerialNumber)
	assert.Equal(t, ca1.Leaf.SerialNumber, ca2.Leaf.SerialNumber)
}
