package app

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"path/filepath"
	"testing"
	"time"

	"github.com/tkasparek/tkasparek/internal/config"
	"github.com/tkasparek/tkasparek/internal/db"
	"github.com/tkasparek/tkasparek/internal/migrate"
)

func pickFreeAddr(t *testing.T) string {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen :0: %v", err)
	}
	defer func() { _ = ln.Close() }()

	return ln.Addr().String()
}

func testConfig(t *testing.T) config.Config {
	t.Helper()
	return config.Config{
		AppEnv:   "dev",
		HTTPAddr: pickFreeAddr(t),
		DB: config.DBConfig{
			Driver:       "sqlite3",
			SQLitePath:   filepath.Join(t.TempDir(), "rain.db"),
			MaxOpenConns: 4,
			MaxIdleConns: 1,
		},
		QueryTimeout:   5 * time.Second,
		RequestTimeout: 5 * time.Second,
		MaxPageSize:    100,
	}
}

func seed(t *testing.T, cfg config.Config) {
	t.Helper()

	conn, err := db.Open(cfg)
	if err != nil {
		t.Fatalf("db.Open: %v", err)
	}
	defer func() { _ = db.Close(conn) }()

	ctx := context.Background()
	if err := migrate.Run(ctx, conn, db.SQLite); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	for _, stmt := range []string{
		`INSERT INTO region (id, internal_id, name) VALUES (1, 10, 'Praha')`,
		`INSERT INTO station (id, internal_id, region_id, name, height) VALUES (1, 101, 1, 'Alpha', 300.0), (2, 102, 1, 'Bravo', 250.0)`,
		`INSERT INTO rain_data (station_id, day, hour, rain) VALUES
			(1, '2024-05-01', NULL, 5.0),
			(2, '2024-05-01', NULL, 12.5)`,
	} {
		if _, err := conn.ExecContext(ctx, stmt); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}
}

func waitForOK(t *testing.T, client *http.Client, url string, timeout time.Duration) {
	t.Helper()

	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		resp, err := client.Get(url)
		if err == nil {
			_ = resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return
			}
		}
		time.Sleep(50 * time.Millisecond)
	}
	t.Fatalf("server not healthy after %s: %s", timeout, url)
}

func TestRun_ServesAndShutsDown(t *testing.T) {
	cfg := testConfig(t)
	seed(t, cfg)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- Run(ctx, cfg) }()

	client := &http.Client{Timeout: 2 * time.Second}
	base := "http://" + cfg.HTTPAddr
	waitForOK(t, client, base+"/healthz", 5*time.Second)

	resp, err := client.Get(base + "/rain/daily/2024-05-01")
	if err != nil {
		t.Fatalf("GET /rain/daily: %v", err)
	}
	var body struct {
		Data []struct {
			Name string  `json:"name"`
			Rain float64 `json:"rain"`
		} `json:"data"`
		Meta struct {
			TotalItems int `json:"total_items"`
		} `json:"meta"`
	}
	err = json.NewDecoder(resp.Body).Decode(&body)
	_ = resp.Body.Close()
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status=%d want=%d", resp.StatusCode, http.StatusOK)
	}
	if body.Meta.TotalItems != 2 || len(body.Data) != 2 {
		t.Fatalf("body=%+v", body)
	}
	if body.Data[0].Name != "Bravo" || body.Data[0].Rain != 12.5 {
		t.Fatalf("first=%+v want Bravo 12.5", body.Data[0])
	}

	cancel()
	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("Run() error = %v, want context.Canceled", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestRun_InvalidDriver(t *testing.T) {
	cfg := testConfig(t)
	cfg.DB.Driver = "mysql"

	if err := Run(context.Background(), cfg); err == nil {
		t.Fatal("Run() error = nil, want error for unknown driver")
	}
}

func TestRun_InvalidCAFile(t *testing.T) {
	cfg := testConfig(t)
	cfg.TLS = config.TLSConfig{
		CertFile: "cert.pem",
		KeyFile:  "key.pem",
		CAFile:   filepath.Join(t.TempDir(), "missing.pem"),
	}
	cfg.HTTPSAddr = pickFreeAddr(t)

	if err := Run(context.Background(), cfg); err == nil {
		t.Fatal("Run() error = nil, want error for missing CA bundle")
	}
}
