package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/tkasparek/tkasparek/internal/config"
	"github.com/tkasparek/tkasparek/internal/db"
	"github.com/tkasparek/tkasparek/internal/logging"
	"github.com/tkasparek/tkasparek/internal/migrate"
)

const appName = "raintool"

var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	if len(args) < 1 {
		usage(stderr)
		return 2
	}

	switch args[0] {
	case "migrate":
	case "help", "-h", "--help":
		usage(stdout)
		return 0
	default:
		fmt.Fprintf(stderr, "unknown command: %s\n", args[0])
		usage(stderr)
		return 2
	}

	cfg, err := config.LoadFromEnv()
	if err != nil {
		fmt.Fprintf(stderr, "config error: %v\n", err)
		return 1
	}
	slog.SetDefault(logging.New(cfg, version, appName))

	if err := migrateDB(ctx, cfg); err != nil {
		fmt.Fprintf(stderr, "migrate: %v\n", err)
		return 1
	}
	fmt.Fprintln(stdout, "migrations applied")
	return 0
}

func migrateDB(ctx context.Context, cfg config.Config) error {
	dialect, err := db.DialectFor(cfg.DB.Driver)
	if err != nil {
		return err
	}
	conn, err := db.Open(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := db.Close(conn); closeErr != nil {
			slog.Error("db close", "err", closeErr)
		}
	}()

	return migrate.Run(ctx, conn, dialect)
}

func usage(w io.Writer) {
	fmt.Fprintf(w, "usage: %s <command>\n  migrate  apply pending schema migrations to the configured database\n", appName)
}
