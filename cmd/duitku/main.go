package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"duitku/internal/amqp"
	"duitku/internal/auth"
	"duitku/internal/backend"
	"duitku/internal/cli"
	apphttp "duitku/internal/http"
	"duitku/internal/ledger"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger("duitku")
	cfg := cli.LoadAndValidateConfig(logger)

	stores, err := backend.Open(cfg, logger)
	if err != nil {
		logger.Error("Failed to open data backend", "error", err, "backend", cfg.DataBackend)
		os.Exit(1)
	}
	defer func() {
		if err := stores.Close(); err != nil {
			logger.Error("Store close error", "error", err)
		}
	}()

	// The AMQP publisher is optional. Without it transactions are
	// still saved, they just never reach the export worker.
	var publisher ledger.EventPublisher
	if cfg.AMQPURL != "" {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Error("Failed to initialize AMQP client", "error", err)
			os.Exit(1)
		}
		defer client.Close()
		publisher = client
		logger.Info("AMQP publisher initialized", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
	} else {
		logger.Info("AMQP disabled, ledger events stay local")
	}

	authMgr := auth.NewManager(stores.Auth, cfg.SessionTTL)
	hub := ledger.NewHub()
	svc := ledger.NewService(stores.Ledger, publisher, hub)

	srv := apphttp.NewServer(":"+cfg.Port, authMgr, stores.Ledger, svc, hub)
	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 0 // the event stream holds its response open
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("Shutdown signal received", "signal", sig.String())

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", "error", err)
		}
		cancel()
	}()

	logger.Info("Starting duitku server", "port", cfg.Port, "backend", cfg.DataBackend)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("Server error", "error", err, "port", cfg.Port)
		os.Exit(1)
	}

	<-ctx.Done()
	logger.Info("Server stopped gracefully")
}
