package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/techrodrigodados-sys/AgendaEmGrupo/internal/config"
	"github.com/techrodrigodados-sys/AgendaEmGrupo/internal/logging"
	"github.com/techrodrigodados-sys/AgendaEmGrupo/internal/push"
	"github.com/techrodrigodados-sys/AgendaEmGrupo/internal/server"
	"github.com/techrodrigodados-sys/AgendaEmGrupo/internal/storage"
)

func main() {
	configPath := flag.String("config", defaultConfigPath(), "path to the YAML config file")
	genKeys := flag.Bool("gen-vapid-keys", false, "generate a VAPID key pair and exit")
	flag.Parse()

	if *genKeys {
		pub, priv, err := push.GenerateVAPIDKeys()
		if err != nil {
			fmt.Fprintf(os.Stderr, "generate VAPID keys: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("public_key: %s\nprivate_key: %s\n", pub, priv)
		return
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	logger := logging.Setup(cfg.LogLevel)

	if err := os.MkdirAll(cfg.DataDir, 0o700); err != nil {
		logger.Error("create data dir", "error", err)
		os.Exit(1)
	}

	docs, err := openStorage(cfg)
	if err != nil {
		logger.Error("open storage", "backend", cfg.Storage, "error", err)
		os.Exit(1)
	}
	defer docs.Close()

	srv, err := server.New(docs, cfg, logger)
	if err != nil {
		logger.Error("build server", "error", err)
		os.Exit(1)
	}

	srv.Start()
	defer srv.Stop()

	httpServer := &http.Server{
		Addr:         cfg.Listen,
		Handler:      srv.Router(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logger.Info("listening", "addr", cfg.Listen, "storage", cfg.Storage)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Error("shutdown error", "error", err)
	}
}

func openStorage(cfg *config.Config) (storage.DocumentStore, error) {
	switch cfg.Storage {
	case "diskv":
		return storage.OpenDiskv(filepath.Join(cfg.DataDir, "documents")), nil
	default:
		return storage.OpenSQLite(filepath.Join(cfg.DataDir, "agenda.db"))
	}
}

func defaultConfigPath() string {
	if p := os.Getenv("AGENDA_CONFIG"); p != "" {
		return p
	}
	return "config.yaml"
}
