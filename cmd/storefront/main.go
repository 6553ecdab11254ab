package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Katyxel/add-basket/internal/bootstrap"
	"github.com/Katyxel/add-basket/internal/catalog"
	"github.com/Katyxel/add-basket/internal/config"
	h "github.com/Katyxel/add-basket/internal/http"
	"github.com/Katyxel/add-basket/internal/service"
	"github.com/Katyxel/add-basket/pkg/logger"
	"go.uber.org/zap"
)

func main() {
	configPath := flag.String("config", "", "optional YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
	policy, err := service.ParseDuplicatePolicy(cfg.DuplicatePolicy)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		fmt.Fprintf(os.Stderr, "build logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()
	zap.ReplaceGlobals(log)

	ctx := context.Background()
	slot, closeSlot, err := bootstrap.OpenSlot(ctx, cfg, log)
	if err != nil {
		log.Fatal("failed to open cart slot", zap.String("backend", cfg.SlotBackend), zap.Error(err))
	}
	defer closeSlot()

	notifier, closeNotifier := bootstrap.Notifier(cfg, log)
	defer closeNotifier()

	client := catalog.NewClient(cfg.CatalogURL, cfg.RequestTimeout, log)
	grid := catalog.NewGrid(client, log)
	form := catalog.NewForm(client, grid, notifier, log)
	if err := grid.Load(ctx); err != nil {
		log.Warn("catalog not reachable at startup, grid starts empty", zap.String("catalog_url", cfg.CatalogURL))
	}

	sessions := service.NewSessions(slot, notifier, log, policy, cfg.SessionIdleTTL)
	janitorCtx, stopJanitor := context.WithCancel(ctx)
	defer stopJanitor()
	go sessions.RunJanitor(janitorCtx, time.Minute)

	router := h.NewStorefrontRouter(
		h.NewProductHandler(grid, form, cfg.RequestTimeout),
		h.NewCartHandler(sessions, grid, cfg.RequestTimeout, log),
		cfg.RequestTimeout,
	)

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: cfg.RequestTimeout + 5*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("storefront starting", zap.String("port", cfg.HTTPPort), zap.String("slot", cfg.SlotBackend))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server error", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server forced to shutdown", zap.Error(err))
	}

	log.Info("server exited")
}
