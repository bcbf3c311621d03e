package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"
)

var envKeys = []string{
	"RAIN_CONFIG", "APP_ENV", "LOG_LEVEL", "HTTP_ADDR", "HTTPS_ADDR",
	"HTTPS_CERT", "HTTPS_KEY", "HTTPS_CA_CERT",
	"DB_DRIVER", "DB_DSN", "DB_HOST", "DB_PORT", "DB_NAME", "DB_USER", "DB_PASSWORD",
	"DB_SSLMODE", "DB_SSLROOTCERT", "DB_SSLCERT", "DB_SSLKEY", "SQLITE_PATH",
	"DB_MAX_OPEN_CONNS", "DB_MAX_IDLE_CONNS", "DB_CONN_MAX_LIFETIME", "DB_LOG_QUERIES",
	"QUERY_TIMEOUT", "REQUEST_TIMEOUT", "MAX_PAGE_SIZE", "RATE_LIMIT_RPS", "RATE_LIMIT_BURST",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range envKeys {
		t.Setenv(k, "")
	}
}

func TestLoadFromEnv_Defaults(t *testing.T) {
	clearEnv(t)

	got, err := LoadFromEnv()
	if err != nil {
		t.Fatalf("LoadFromEnv() error = %v, want nil", err)
	}

	if got.AppEnv != "dev" {
		t.Errorf("AppEnv = %q, want %q", got.AppEnv, "dev")
	}
	if got.LogLevel != slog.LevelInfo {
		t.Errorf("LogLevel = %v, want %v", got.LogLevel, slog.LevelInfo)
	}
	if got.HTTPAddr != ":8080" {
		t.Errorf("HTTPAddr = %q, want %q", got.HTTPAddr, ":8080")
	}
	if got.HTTPSAddr != ":8443" {
		t.Errorf("HTTPSAddr = %q, want %q", got.HTTPSAddr, ":8443")
	}
	if got.TLS.Enabled() {
		t.Errorf("TLS.Enabled() = true, want false")
	}
	if got.DB.Driver != "pgx" {
		t.Errorf("DB.Driver = %q, want pgx", got.DB.Driver)
	}
	if got.DB.Port != 5432 {
		t.Errorf("DB.Port = %d, want 5432", got.DB.Port)
	}
	if got.DB.SSLMode != "disable" {
		t.Errorf("DB.SSLMode = %q, want disable", got.DB.SSLMode)
	}
	if got.QueryTimeout != 5*time.Second {
		t.Errorf("QueryTimeout = %v, want 5s", got.QueryTimeout)
	}
	if got.RequestTimeout != 30*time.Second {
		t.Errorf("RequestTimeout = %v, want 30s", got.RequestTimeout)
	}
	if got.MaxPageSize != 100 {
		t.Errorf("MaxPageSize = %d, want 100", got.MaxPageSize)
	}
	if got.RateLimitRPS != 0 {
		t.Errorf("RateLimitRPS = %v, want 0", got.RateLimitRPS)
	}
}

func TestLoadFromEnv_AppEnv(t *testing.T) {
	tests := []struct {
		name    string
		appEnv  string
		want    string
		wantErr bool
	}{
		{name: "dev", appEnv: "dev", want: "dev"},
		{name: "prod with whitespace", appEnv: "\nprod\t", want: "prod"},
		{name: "staging", appEnv: "staging", wantErr: true},
		{name: "uppercase", appEnv: "DEV", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv("APP_ENV", tt.appEnv)

			got, err := LoadFromEnv()
			if tt.wantErr {
				if err == nil {
					t.Fatalf("LoadFromEnv() error = nil, want non-nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("LoadFromEnv() error = %v, want nil", err)
			}
			if got.AppEnv != tt.want {
				t.Errorf("AppEnv = %q, want %q", got.AppEnv, tt.want)
			}
		})
	}
}

func TestLoadFromEnv_InvalidValues(t *testing.T) {
	tests := []struct {
		key   string
		value string
	}{
		{key: "LOG_LEVEL", value: "verbose"},
		{key: "DB_DRIVER", value: "mysql"},
		{key: "DB_PORT", value: "five"},
		{key: "DB_MAX_OPEN_CONNS", value: "x"},
		{key: "DB_CONN_MAX_LIFETIME", value: "forever"},
		{key: "DB_LOG_QUERIES", value: "maybe"},
		{key: "QUERY_TIMEOUT", value: "5"},
		{key: "MAX_PAGE_SIZE", value: "-1"},
		{key: "RATE_LIMIT_RPS", value: "fast"},
		{key: "HTTPS_CERT", value: "/etc/rain/cert.pem"},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(tt.key, tt.value)

			if _, err := LoadFromEnv(); err == nil {
				t.Fatalf("LoadFromEnv() with %s=%q error = nil, want non-nil", tt.key, tt.value)
			}
		})
	}
}

func TestLoadFromEnv_YAMLFileWithEnvOverride(t *testing.T) {
	clearEnv(t)

	dir := t.TempDir()
	path := filepath.Join(dir, "rain.yaml")
	content := `
log_level: debug
db:
  driver: pgx
  host: db.internal
  port: 6432
  name: rain_prod
  user: reader
  password: secret
  sslmode: verify-full
  sslrootcert: /etc/rain/ca.pem
http:
  addr: ":9090"
https:
  cert: /etc/rain/cert.pem
  private_key: /etc/rain/key.pem
  ca_cert: /etc/rain/ca.pem
api:
  query_timeout: 2s
  max_page_size: 50
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("RAIN_CONFIG", path)
	t.Setenv("DB_HOST", "override.internal")

	got, err := LoadFromEnv()
	if err != nil {
		t.Fatalf("LoadFromEnv() error = %v, want nil", err)
	}

	if got.LogLevel != slog.LevelDebug {
		t.Errorf("LogLevel = %v, want debug", got.LogLevel)
	}
	if got.DB.Host != "override.internal" {
		t.Errorf("DB.Host = %q, want env override", got.DB.Host)
	}
	if got.DB.Port != 6432 {
		t.Errorf("DB.Port = %d, want 6432", got.DB.Port)
	}
	if got.DB.Name != "rain_prod" || got.DB.User != "reader" || got.DB.Password != "secret" {
		t.Errorf("DB = %+v", got.DB)
	}
	if got.DB.SSLMode != "verify-full" || got.DB.SSLRootCert != "/etc/rain/ca.pem" {
		t.Errorf("DB TLS = %q %q", got.DB.SSLMode, got.DB.SSLRootCert)
	}
	if got.HTTPAddr != ":9090" {
		t.Errorf("HTTPAddr = %q, want :9090", got.HTTPAddr)
	}
	if !got.TLS.Enabled() || got.TLS.CAFile != "/etc/rain/ca.pem" {
		t.Errorf("TLS = %+v", got.TLS)
	}
	if got.QueryTimeout != 2*time.Second {
		t.Errorf("QueryTimeout = %v, want 2s", got.QueryTimeout)
	}
	if got.MaxPageSize != 50 {
		t.Errorf("MaxPageSize = %d, want 50", got.MaxPageSize)
	}
}

func TestLoadFromEnv_MissingFile(t *testing.T) {
	clearEnv(t)
	t.Setenv("RAIN_CONFIG", filepath.Join(t.TempDir(), "missing.yaml"))

	if _, err := LoadFromEnv(); err == nil {
		t.Fatal("LoadFromEnv() error = nil, want error for missing file")
	}
}
