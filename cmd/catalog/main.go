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

	"github.com/Katyxel/add-basket/internal/catalog/repository"
	"github.com/Katyxel/add-basket/internal/config"
	h "github.com/Katyxel/add-basket/internal/http"
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

	log, err := logger.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		fmt.Fprintf(os.Stderr, "build logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()
	zap.ReplaceGlobals(log)

	repo, err := repository.NewRepository(cfg.CatalogDBDriver, cfg.CatalogDBDSN)
	if err != nil {
		log.Fatal("failed to open catalog database", zap.String("driver", cfg.CatalogDBDriver), zap.Error(err))
	}
	defer repo.Close()

	if err := repo.RunMigrations(); err != nil {
		log.Fatal("failed to run migrations", zap.Error(err))
	}
	log.Info("catalog database ready", zap.String("driver", cfg.CatalogDBDriver))

	srv := &http.Server{
		Addr:         ":" + cfg.CatalogPort,
		Handler:      h.NewCatalogRouter(h.NewCatalogHandler(repo, log)),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("catalog starting", zap.String("port", cfg.CatalogPort))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server error", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down catalog...")
	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("server forced to shutdown", zap.Error(err))
	}
}
