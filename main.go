package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/pflag"

	"notes-backend/config"
	"notes-backend/db"
	"notes-backend/handlers"
	"notes-backend/identity"
	"notes-backend/logging"
	"notes-backend/security"
	"notes-backend/store"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	var envFile, addr string
	var migrateOnly bool

	flags := pflag.NewFlagSet("notes-backend", pflag.ContinueOnError)
	flags.StringVar(&envFile, "env-file", ".env", "load environment variables from this file if it exists")
	flags.StringVar(&addr, "addr", "", "listen address (overrides HTTP_ADDR)")
	flags.BoolVar(&migrateOnly, "migrate-only", false, "create the database schema and exit")
	if err := flags.Parse(args); err != nil {
		return err
	}

	cfg, err := config.Load(envFile)
	if err != nil {
		return err
	}
	if addr != "" {
		cfg.HTTPAddr = addr
	}
	logger := logging.New(os.Stdout, cfg.LogLevel, cfg.LogFormat)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dialect := db.Dialect(cfg.DBDriver)
	conn, err := db.Open(ctx, dialect, cfg.DataSource())
	if err != nil {
		return err
	}
	st := store.New(conn, dialect)
	defer st.Close()

	if err := db.Migrate(ctx, conn, dialect); err != nil {
		return err
	}
	logger.Info().Str("driver", cfg.DBDriver).Msg("database ready")
	if migrateOnly {
		return nil
	}

	srv, err := newServer(cfg, st, logger)
	if err != nil {
		return err
	}
	return serve(ctx, srv, cfg.ShutdownTimeout, logger)
}

func newServer(cfg *config.Config, st *store.Store, logger zerolog.Logger) (*http.Server, error) {
	tokens, err := security.NewTokenService(cfg)
	if err != nil {
		return nil, err
	}
	hasher := security.NewHasher(cfg.BcryptCost)

	h, err := handlers.New(st.Users(), st.Notes(), hasher, tokens)
	if err != nil {
		return nil, err
	}
	resolver := identity.NewResolver(tokens, st.Users())

	return &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           handlers.NewRouter(h, resolver, logger, cfg.CORSAllowOrigins),
		ReadHeaderTimeout: 10 * time.Second,
	}, nil
}

func serve(ctx context.Context, srv *http.Server, shutdownTimeout time.Duration, logger zerolog.Logger) error {
	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", srv.Addr).Msg("server running")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
