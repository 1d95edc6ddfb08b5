package security

import (
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"net"
)

// Materialize ensures certDir holds a CA and a node certificate for
// nodeID bound to the given advertise address, generating them on
// first run. It returns the node certificate and the CA certificate
// (wrapped as a tls.Certificate with Leaf set), ready to hand to
// ServerTLSConfig/ClientTLSConfig.
func Materialize(certDir, nodeID, advertiseAddr string) (*tls.Certificate, *tls.Certificate, error) {
	if CertExists(certDir) {
		node, err := LoadCertFromFile(certDir)
		if err != nil {
			return nil, nil, err
		}
		caCert, err := LoadCACertFromFile(certDir)
		if err != nil {
			return nil, nil, err
		}
		return node, &tls.Certificate{Certificate: [][]byte{caCert.Raw}, Leaf: caCert}, nil
	}

	ca := NewCertAuthority()
	if err := ca.Initialize(); err != nil {
		return nil, nil, fmt.Errorf("initialize CA: %w", err)
	}

	host, _, err := net.SplitHostPort(advertiseAddr)
	if err != nil {
		host = advertiseAddr
	}
	ips := []net.IP{}
	if ip := net.ParseIP(host); ip != nil {
		ips = append(ips, ip)
	}

	node, err := ca.IssueNodeCertificate(nodeID, []string{host}, ips)
	if err != nil {
		return nil, nil, fmt.Errorf("issue node certificate: %w", err)
	}

	if err := SaveCertToFile(node, certDir); err != nil {
		return nil, nil, err
	}
	if err := SaveCACertToFile(ca.RootCACert().Raw, certDir); err != nil {
		return nil, nil, err
	}

	caCert := ca.RootCACert()
	return node, &tls.Certificate{Certificate: [][]byte{caCert.Raw}, Leaf: caCert}, nil
}

// ServerTLSConfig builds the tls.Config sparrowd's RPC listener uses
// when tls.enabled is set, requiring and verifying client certificates
// signed by the same CA.
func ServerTLSConfig(nodeCert *tls.Certificate, caCert *tls.Certificate) *tls.Config {
	return &tls.Config{
		Certificates: []tls.Certificate{*nodeCert},
		ClientCAs:    certPool(caCert),
		ClientAuth:   tls.RequireAndVerifyClientCert,
		MinVersion:   tls.VersionTLS12,
	}
}

// ClientTLSConfig builds the tls.Config rpcpool uses to dial other
// sparrowd instances with mutual authentication.
func ClientTLSConfig(nodeCert *tls.Certificate, caCert *tls.Certificate) *tls.Config {
	return &tls.Config{
		Certificates: []tls.Certificate{*nodeCert},
		RootCAs:      certPool(caCert),
		MinVersion:   tls.VersionTLS12,
	}
}

func certPool(caCert *tls.Certificate) *x509.CertPool {
	pool := x509.NewCertPool()
	pool.AddCert(caCert.Leaf)
	return pool
}
