package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	AppEnv   string
	LogLevel slog.Level

	HTTPAddr  string
	HTTPSAddr string
	TLS       TLSConfig

	DB DBConfig

	// QueryTimeout bounds every single database query.
	QueryTimeout   time.Duration
	RequestTimeout time.Duration
	// MaxPageSize caps page_size on paginated endpoints; 0 disables the cap.
	MaxPageSize int

	// RateLimitRPS of 0 disables rate limiting.
	RateLimitRPS   float64
	RateLimitBurst int
}

// TLSConfig holds the HTTPS certificate material. HTTPS is served only when
// both CertFile and KeyFile are set.
type TLSConfig struct {
	CertFile string
	KeyFile  string
	CAFile   string
}

func (t TLSConfig) Enabled() bool {
	return t.CertFile != "" && t.KeyFile != ""
}

type DBConfig struct {
	Driver string
	// DSN, when set, is used verbatim and the discrete connection fields are ignored.
	DSN string

	Host        string
	Port        int
	Name        string
	User        string
	Password    string
	SSLMode     string
	SSLRootCert string
	SSLCert     string
	SSLKey      string

	SQLitePath string

	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	LogQueries      bool
}

// fileConfig mirrors the optional YAML file named by RAIN_CONFIG. Values are
// kept as strings so file and environment go through the same parsing.
type fileConfig struct {
	AppEnv   string `yaml:"app_env"`
	LogLevel string `yaml:"log_level"`
	DB       struct {
		Driver          string `yaml:"driver"`
		DSN             string `yaml:"dsn"`
		Host            string `yaml:"host"`
		Port            string `yaml:"port"`
		Name            string `yaml:"name"`
		User            string `yaml:"user"`
		Password        string `yaml:"password"`
		SSLMode         string `yaml:"sslmode"`
		SSLRootCert     string `yaml:"sslrootcert"`
		SSLCert         string `yaml:"sslcert"`
		SSLKey          string `yaml:"sslkey"`
		SQLitePath      string `yaml:"sqlite_path"`
		MaxOpenConns    string `yaml:"max_open_conns"`
		MaxIdleConns    string `yaml:"max_idle_conns"`
		ConnMaxLifetime string `yaml:"conn_max_lifetime"`
		LogQueries      string `yaml:"log_queries"`
	} `yaml:"db"`
	HTTP struct {
		Addr string `yaml:"addr"`
	} `yaml:"http"`
	HTTPS struct {
		Addr   string `yaml:"addr"`
		Cert   string `yaml:"cert"`
		Key    string `yaml:"private_key"`
		CACert string `yaml:"ca_cert"`
	} `yaml:"https"`
	API struct {
		QueryTimeout   string `yaml:"query_timeout"`
		RequestTimeout string `yaml:"request_timeout"`
		MaxPageSize    string `yaml:"max_page_size"`
		RateLimitRPS   string `yaml:"rate_limit_rps"`
		RateLimitBurst string `yaml:"rate_limit_burst"`
	} `yaml:"api"`
}

func loadFile(path string) (fileConfig, error) {
	var fc fileConfig
	if path == "" {
		return fc, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return fc, fmt.Errorf("RAIN_CONFIG %q: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fc, fmt.Errorf("RAIN_CONFIG %q: %w", path, err)
	}
	return fc, nil
}

// LoadFromEnv reads the optional YAML file named by RAIN_CONFIG and then
// applies environment variables on top of it.
func LoadFromEnv() (Config, error) {
	fc, err := loadFile(strings.TrimSpace(os.Getenv("RAIN_CONFIG")))
	if err != nil {
		return Config{}, err
	}

	appEnv := value("APP_ENV", fc.AppEnv, "dev")
	switch appEnv {
	case "dev", "prod":
	default:
		return Config{}, fmt.Errorf("invalid APP_ENV %q (allowed: dev, prod)", appEnv)
	}

	level, err := parseLogLevel(value("LOG_LEVEL", fc.LogLevel, "info"))
	if err != nil {
		return Config{}, err
	}

	driver := value("DB_DRIVER", fc.DB.Driver, "pgx")
	switch driver {
	case "pgx", "sqlite3":
	default:
		return Config{}, fmt.Errorf("invalid DB_DRIVER %q (allowed: pgx, sqlite3)", driver)
	}

	port, err := intValue("DB_PORT", fc.DB.Port, "5432")
	if err != nil {
		return Config{}, err
	}
	maxOpenConns, err := intValue("DB_MAX_OPEN_CONNS", fc.DB.MaxOpenConns, "10")
	if err != nil {
		return Config{}, err
	}
	maxIdleConns, err := intValue("DB_MAX_IDLE_CONNS", fc.DB.MaxIdleConns, "2")
	if err != nil {
		return Config{}, err
	}
	connMaxLifetime, err := durationValue("DB_CONN_MAX_LIFETIME", fc.DB.ConnMaxLifetime, "1h")
	if err != nil {
		return Config{}, err
	}
	logQueries, err := boolValue("DB_LOG_QUERIES", fc.DB.LogQueries, "false")
	if err != nil {
		return Config{}, err
	}

	queryTimeout, err := durationValue("QUERY_TIMEOUT", fc.API.QueryTimeout, "5s")
	if err != nil {
		return Config{}, err
	}
	requestTimeout, err := durationValue("REQUEST_TIMEOUT", fc.API.RequestTimeout, "30s")
	if err != nil {
		return Config{}, err
	}
	maxPageSize, err := intValue("MAX_PAGE_SIZE", fc.API.MaxPageSize, "100")
	if err != nil {
		return Config{}, err
	}
	if maxPageSize < 0 {
		return Config{}, fmt.Errorf("invalid MAX_PAGE_SIZE %d: must be >= 0", maxPageSize)
	}
	rateLimitRPS, err := floatValue("RATE_LIMIT_RPS", fc.API.RateLimitRPS, "0")
	if err != nil {
		return Config{}, err
	}
	rateLimitBurst, err := intValue("RATE_LIMIT_BURST", fc.API.RateLimitBurst, "20")
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		AppEnv:    appEnv,
		LogLevel:  level,
		HTTPAddr:  value("HTTP_ADDR", fc.HTTP.Addr, ":8080"),
		HTTPSAddr: value("HTTPS_ADDR", fc.HTTPS.Addr, ":8443"),
		TLS: TLSConfig{
			CertFile: value("HTTPS_CERT", fc.HTTPS.Cert, ""),
			KeyFile:  value("HTTPS_KEY", fc.HTTPS.Key, ""),
			CAFile:   value("HTTPS_CA_CERT", fc.HTTPS.CACert, ""),
		},
		DB: DBConfig{
			Driver:          driver,
			DSN:             value("DB_DSN", fc.DB.DSN, ""),
			Host:            value("DB_HOST", fc.DB.Host, "localhost"),
			Port:            port,
			Name:            value("DB_NAME", fc.DB.Name, "rain"),
			User:            value("DB_USER", fc.DB.User, "rain"),
			Password:        value("DB_PASSWORD", fc.DB.Password, ""),
			SSLMode:         value("DB_SSLMODE", fc.DB.SSLMode, "disable"),
			SSLRootCert:     value("DB_SSLROOTCERT", fc.DB.SSLRootCert, ""),
			SSLCert:         value("DB_SSLCERT", fc.DB.SSLCert, ""),
			SSLKey:          value("DB_SSLKEY", fc.DB.SSLKey, ""),
			SQLitePath:      value("SQLITE_PATH", fc.DB.SQLitePath, "dev/sqlite/rain.db"),
			MaxOpenConns:    maxOpenConns,
			MaxIdleConns:    maxIdleConns,
			ConnMaxLifetime: connMaxLifetime,
			LogQueries:      logQueries,
		},
		QueryTimeout:   queryTimeout,
		RequestTimeout: requestTimeout,
		MaxPageSize:    maxPageSize,
		RateLimitRPS:   rateLimitRPS,
		RateLimitBurst: rateLimitBurst,
	}

	if (cfg.TLS.CertFile == "") != (cfg.TLS.KeyFile == "") {
		return Config{}, fmt.Errorf("HTTPS_CERT and HTTPS_KEY must be set together")
	}

	return cfg, nil
}

// value returns the trimmed environment variable, else the file value, else fallback.
func value(key, fileValue, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	if v := strings.TrimSpace(fileValue); v != "" {
		return v
	}
	return fallback
}

func intValue(key, fileValue, fallback string) (int, error) {
	s := value(key, fileValue, fallback)
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, s, err)
	}
	return n, nil
}

func floatValue(key, fileValue, fallback string) (float64, error) {
	s := value(key, fileValue, fallback)
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, s, err)
	}
	return f, nil
}

func durationValue(key, fileValue, fallback string) (time.Duration, error) {
	s := value(key, fileValue, fallback)
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, s, err)
	}
	return d, nil
}

func boolValue(key, fileValue, fallback string) (bool, error) {
	s := value(key, fileValue, fallback)
	b, err := strconv.ParseBool(s)
	if err != nil {
		return false, fmt.Errorf("invalid %s %q: %w", key, s, err)
	}
	return b, nil
}

func parseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("invalid LOG_LEVEL %q (allowed: debug, info, warn, error)", s)
	}
}
