package httpapi

import (
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/tkasparek/tkasparek/internal/config"
)

const readHeaderTimeout = 10 * time.Second

func NewServer(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: readHeaderTimeout,
	}
}

// NewTLSServer returns the HTTPS server for cfg.HTTPSAddr. The certificate
// pair is loaded by ListenAndServeTLS; a configured CA bundle is appended to
// the pool used to verify client certificates.
func NewTLSServer(cfg config.Config, handler http.Handler) (*http.Server, error) {
	srv := NewServer(cfg.HTTPSAddr, handler)
	tlsConfig := &tls.Config{MinVersion: tls.VersionTLS12}

	if cfg.TLS.CAFile != "" {
		pem, err := os.ReadFile(cfg.TLS.CAFile)
		if err != nil {
			return nil, fmt.Errorf("read HTTPS_CA_CERT: %w", err)
		}
		pool := x509.NewCertPool()
		if !pool.AppendCertsFromPEM(pem) {
			return nil, fmt.Errorf("HTTPS_CA_CERT %q: no certificates found", cfg.TLS.CAFile)
		}
		tlsConfig.ClientCAs = pool
		tlsConfig.ClientAuth = tls.VerifyClientCertIfGiven
	}

	srv.TLSConfig = tlsConfig
	return srv, nil
}
