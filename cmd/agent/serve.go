package main

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

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"jeevan/internal/beneficiary"
	"jeevan/internal/beneficiary/catalogue"
	"jeevan/internal/platform/config"
	"jeevan/internal/platform/httpserver"
	"jeevan/internal/platform/logger"
	"jeevan/internal/platform/metrics"
	"jeevan/internal/queue"
	"jeevan/internal/reachability"
	"jeevan/internal/storage"
	"jeevan/internal/storage/sqlite"
	syncer "jeevan/internal/sync"
	"jeevan/internal/sync/uploader"
	httptransport "jeevan/internal/transport/http"
	"jeevan/internal/vault"
	"jeevan/internal/verification"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the agent API and background sync loop",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe()
		},
	}
}

// runServe wires config, storage, services and the HTTP router, then blocks
// until an interrupt triggers graceful shutdown. Business logic lives in the
// internal services packages.
func runServe() error {
	cfg, err := config.FromEnv()
	if err != nil {
		return err
	}
	log := logger.New(parseLevel(cfg.LogLevel))

	store, err := openStore(cfg.DataPath)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer store.Close()

	cat, err := catalogue.Load()
	if err != nil {
		return fmt.Errorf("load catalogue: %w", err)
	}

	encryptor, err := vault.NewAEADEncryptor(cfg.VaultPassphrase)
	if err != nil {
		return fmt.Errorf("init vault encryptor: %w", err)
	}

	reg := prometheus.NewRegistry()
	m := metrics.New(reg)

	beneficiaries := beneficiary.NewService(cat, store, log)
	queueMgr := queue.NewManager(store, []byte(cfg.TokenSigningKey), log)
	vaultSvc := vault.NewService(store, encryptor, log)

	monitor := reachability.NewMonitor(log)
	if cfg.ForceOffline {
		monitor.SetForceOffline(true)
	}

	var up syncer.Uploader
	if cfg.UploadURL != "" {
		up = uploader.NewHTTP(cfg.UploadURL)
	} else {
		up = uploader.NewSimulated(cfg.UploadDelay)
	}

	orchestrator := syncer.NewOrchestrator(vaultSvc, queueMgr, beneficiaries, monitor, store, up, log, m)
	verifications := verification.NewService(beneficiaries, queueMgr, vaultSvc, monitor, log, m)

	handler := httptransport.New(verifications, queueMgr, vaultSvc, beneficiaries, orchestrator, monitor, log)
	router := httptransport.NewRouter(handler, reg)
	srv := httpserver.New(cfg.Addr, router)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := orchestrator.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Error("sync loop stopped", "error", err)
		}
	}()

	log.Info("starting jeevan agent", "addr", cfg.Addr, "data_path", cfg.DataPath, "force_offline", cfg.ForceOffline)

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	log.Info("agent stopped")
	return nil
}

// openStore selects the persistence backend. An empty path keeps everything
// in memory, which is what demos and tests want.
func openStore(path string) (storage.Store, error) {
	if path == "" {
		return storage.NewInMemoryStore(), nil
	}
	return sqlite.Open(path)
}

func parseLevel(s string) slog.Level {
	switch s {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
