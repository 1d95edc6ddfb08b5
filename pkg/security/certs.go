package security

import (
	"crypto/rsa"
	"crypto/tls"
	"crypto/x509"
	"encoding/pem"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

const certRotationThreshold = 30 * 24 * time.Hour

// SaveCertToFile writes cert's certificate and RSA private key as
// node.crt/node.key under certDir.
func SaveCertToFile(cert *tls.Certificate, certDir string) error {
	if err := os.MkdirAll(certDir, 0700); err != nil {
		return fmt.Errorf("create cert directory: %w", err)
	}

	certPEM := pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: cert.Certificate[0]})
	if err := os.WriteFile(filepath.Join(certDir, "node.crt"), certPEM, 0600); err != nil {
		return fmt.Errorf("write certificate: %w", err)
	}

	privateKey, ok := cert.PrivateKey.(*rsa.PrivateKey)
	if !ok {
		return fmt.Errorf("private key is not RSA")
	}
	keyPEM := pem.EncodeToMemory(&pem.Block{Type: "RSA PRIVATE KEY", Bytes: x509.MarshalPKCS1PrivateKey(privateKey)})
	if err := os.WriteFile(filepath.Join(certDir, "node.key"), keyPEM, 0600); err != nil {
		return fmt.Errorf("write private key: %w", err)
	}
	return nil
}

// LoadCertFromFile loads a certificate previously written by
// SaveCertToFile.
func LoadCertFromFile(certDir string) (*tls.Certificate, error) {
	cert, err := tls.LoadX509KeyPair(filepath.Join(certDir, "node.crt"), filepath.Join(certDir, "node.key"))
	if err != nil {
		return nil, fmt.Errorf("load certificate: %w", err)
	}
	if cert.Leaf == nil {
		leaf, err := x509.ParseCertificate(cert.Certificate[0])
		if err != nil {
			return nil, fmt.Errorf("parse certificate: %w", err)
		}
		cert.Leaf = leaf
	}
	return &cert, nil
}

// SaveCACertToFile writes caCert as ca.crt under certDir.
func SaveCACertToFile(caCert []byte, certDir string) error {
	if err := os.MkdirAll(certDir, 0700); err != nil {
		return fmt.Errorf("create cert directory: %w", err)
	}
	caPEM := pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: caCert})
	if err := os.WriteFile(filepath.Join(certDir, "ca.crt"), caPEM, 0644); err != nil {
		return fmt.Errorf("write CA certificate: %w", err)
	}
	return nil
}

// LoadCACertFromFile reads the CA certificate written by
// SaveCACertToFile.
func LoadCACertFromFile(certDir string) (*x509.Certificate, error) {
	caPEM, err := os.ReadFile(filepath.Join(certDir, "ca.crt"))
	if err != nil {
		return nil, fmt.Errorf("read CA certificate: %w", err)
	}
	block, _ := pem.Decode(caPEM)
	if block == nil || block.Type != "CERTIFICATE" {
		return nil, fmt.Errorf("decode CA certificate PEM")
	}
	caCert, err := x509.ParseCertificate(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("parse CA certificate: %w", err)
	}
	return caCert, nil
}

// CertExists reports whether a full node+CA certificate set is present
// in certDir.
func CertExists(certDir string) bool {
	_, err1 := os.Stat(filepath.Join(certDir, "node.crt"))
	_, err2 := os.Stat(filepath.Join(certDir, "node.key"))
	_, err3 := os.Stat(filepath.Join(certDir, "ca.crt"))
	return err1 == nil && err2 == nil && err3 == nil
}

// CertNeedsRotation reports whether cert expires within the rotation
// threshold.
func CertNeedsRotation(cert *x509.Certificate) bool {
	if cert == nil {
		return true
	}
	return time.Until(cert.NotAfter) < certRotationThreshold
}
