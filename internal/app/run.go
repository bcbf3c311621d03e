package app

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/tkasparek/tkasparek/internal/config"
	"github.com/tkasparek/tkasparek/internal/db"
	"github.com/tkasparek/tkasparek/internal/httpapi"
	"github.com/tkasparek/tkasparek/internal/metrics"
	"github.com/tkasparek/tkasparek/internal/migrate"
	"github.com/tkasparek/tkasparek/internal/rain"
)

const shutdownTimeout = 10 * time.Second

func Run(ctx context.Context, cfg config.Config) error {
	slog.Info("config loaded",
		"appEnv", cfg.AppEnv,
		"logLevel", cfg.LogLevel.String(),
		"httpAddr", cfg.HTTPAddr,
		"httpsEnabled", cfg.TLS.Enabled(),
		"httpsAddr", cfg.HTTPSAddr,
		"dbDriver", cfg.DB.Driver,
		"dbHost", cfg.DB.Host,
		"dbName", cfg.DB.Name,
		"dbSSLMode", cfg.DB.SSLMode,
		"sqlitePath", cfg.DB.SQLitePath,
		"dbMaxOpenConns", cfg.DB.MaxOpenConns,
		"queryTimeout", cfg.QueryTimeout,
		"requestTimeout", cfg.RequestTimeout,
		"maxPageSize", cfg.MaxPageSize,
		"rateLimitRPS", cfg.RateLimitRPS,
	)

	dialect, err := db.DialectFor(cfg.DB.Driver)
	if err != nil {
		return err
	}

	dbConn, err := db.Open(cfg)
	if err != nil {
		return err
	}
	defer func() {
		closeErr := db.Close(dbConn)
		if closeErr != nil {
			slog.Error("db close", "error", closeErr)
		}
	}()

	// Postgres schema is owned by the ingestion side; only local SQLite
	// databases are migrated here.
	if dialect == db.SQLite {
		if err := migrate.Run(ctx, dbConn, dialect); err != nil {
			return err
		}
	}
	slog.Info("database connection successful", "dialect", dialect.String())

	metrics.Init(dbConn)

	router := httpapi.NewRouter(cfg, dbConn)
	rain.RegisterFeature(router, dbConn, dialect, cfg)

	return serve(ctx, cfg, router)
}

func serve(ctx context.Context, cfg config.Config, handler http.Handler) error {
	servers := []*http.Server{httpapi.NewServer(cfg.HTTPAddr, handler)}
	errCh := make(chan error, 2)

	go func() {
		slog.Info("http listening", "addr", cfg.HTTPAddr)
		errCh <- servers[0].ListenAndServe()
	}()

	if cfg.TLS.Enabled() {
		tlsSrv, err := httpapi.NewTLSServer(cfg, handler)
		if err != nil {
			shutdown(servers)
			return err
		}
		servers = append(servers, tlsSrv)
		go func() {
			slog.Info("https listening", "addr", cfg.HTTPSAddr)
			errCh <- tlsSrv.ListenAndServeTLS(cfg.TLS.CertFile, cfg.TLS.KeyFile)
		}()
	}

	select {
	case <-ctx.Done():
	case err := <-errCh:
		shutdown(servers)
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}

	slog.Info("http shutting down")
	if err := shutdown(servers); err != nil {
		return err
	}

	for range servers {
		err := <-errCh
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	}

	return ctx.Err()
}

func shutdown(servers []*http.Server) error {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	var errs []error
	for _, srv := range servers {
		if err := srv.Shutdown(shutdownCtx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
