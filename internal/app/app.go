package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"

	"golang.org/x/sync/errgroup"

	"github.com/heartmarshall/tourops-backend/internal/adapter/docstore"
	"github.com/heartmarshall/tourops-backend/internal/auth"
	"github.com/heartmarshall/tourops-backend/internal/config"
)

// Run is the server entry point. It loads configuration, opens storage,
// serves HTTP and runs the periodic assignment review until ctx is
// cancelled, then shuts the server down gracefully.
func Run(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := NewLogger(cfg.Log)
	logger.InfoContext(ctx, "starting application",
		slog.String("version", BuildVersion()),
		slog.String("storage", cfg.Storage.Driver),
		slog.String("log_level", cfg.Log.Level),
	)

	st, err := OpenStorage(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer st.Close()

	docs, err := docstore.New(cfg.Documents.Root, cfg.Documents.MaxBytes)
	if err != nil {
		return fmt.Errorf("open document store: %w", err)
	}

	svcs := NewServices(logger, st, docs)
	jwt := auth.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.JWTIssuer, cfg.Auth.AccessTokenTTL)

	handler, stopRouter := NewRouter(cfg, logger, st, svcs, docs, jwt)
	defer stopRouter()

	srv := &http.Server{
		Addr:         net.JoinHostPort(cfg.Server.Host, strconv.Itoa(cfg.Server.Port)),
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.InfoContext(gctx, "http server listening", slog.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(gctx), cfg.Server.ShutdownTimeout)
		defer cancel()
		logger.InfoContext(shutdownCtx, "shutting down http server")
		return srv.Shutdown(shutdownCtx)
	})

	if interval := cfg.Assignment.ReviewInterval; interval > 0 {
		g.Go(func() error {
			return svcs.Assignments.RunPeriodicReview(gctx, interval)
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}
	logger.InfoContext(ctx, "application stopped")
	return nil
}
