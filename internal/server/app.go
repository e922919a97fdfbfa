// Package server initializes and runs the vault HTTP server. It wires
// configuration, logging, the vault core, the optional key-wrapping
// provider and the optional S3 backup target, and handles graceful
// shutdown on OS signals.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dmitrijs2005/securevault/internal/backup"
	"github.com/dmitrijs2005/securevault/internal/hsm"
	"github.com/dmitrijs2005/securevault/internal/logging"
	"github.com/dmitrijs2005/securevault/internal/server/config"
	"github.com/dmitrijs2005/securevault/internal/server/httpapi"
	"github.com/dmitrijs2005/securevault/internal/vault"
)

const shutdownTimeout = 5 * time.Second

type App struct {
	config *config.Config
	logger logging.Logger
	vault  *vault.Vault
	server *http.Server
}

func NewApp(c *config.Config) (*App, error) {

	logger := logging.NewSlogLogger(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	opts := []vault.StoreOption{
		vault.WithIdleTimeout(c.IdleTimeout),
		vault.WithLockoutPolicy(c.MaxAttempts, c.LockoutCooldown),
	}

	if c.HSMKeyDir != "" {
		provider, err := hsm.NewSoftProvider(c.HSMKeyDir)
		if err != nil {
			return nil, fmt.Errorf("key wrapping init error: %w", err)
		}
		opts = append(opts, vault.WithKeyWrapper(provider))
	}

	v := vault.New(c.VaultPath, opts...)

	uploader := backup.NewUploader(c)

	handler := httpapi.NewHandler(v, logger, []byte(c.SecretKey), c.SessionTokenValidity, uploader)

	srv := &http.Server{
		Addr:    c.EndpointAddr,
		Handler: handler.Routes(),
	}

	return &App{config: c, logger: logger, vault: v, server: srv}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...", "addr", app.config.EndpointAddr, "vault", app.config.VaultPath)

	app.initSignalHandler(cancelFunc)

	errCh := make(chan error, 1)
	go func() {
		errCh <- app.server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			app.logger.Error(ctx, "http server error", "error", err.Error())
		}
		return
	}

	app.logger.Info(ctx, "Shutting down...")

	// discard the session key before the process exits
	app.vault.Logout()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := app.server.Shutdown(shutdownCtx); err != nil {
		app.logger.Error(shutdownCtx, "shutdown error", "error", err.Error())
	}
}
