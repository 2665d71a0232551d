package main

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"google.golang.org/grpc"

	"github.com/distkv/distkv/pkg/logging"
	pb "github.com/distkv/distkv/pkg/proto"
	"github.com/distkv/distkv/worker/internal/client"
	"github.com/distkv/distkv/worker/internal/config"
	"github.com/distkv/distkv/worker/internal/handler"
	"github.com/distkv/distkv/worker/internal/metrics"
	"github.com/distkv/distkv/worker/internal/server"
	"github.com/distkv/distkv/worker/internal/storage"
)

func main() {
	// Load configuration
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "./config.yaml"
	}

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	logger, err := logging.New(cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger = logger.With(zap.String("worker_id", cfg.Worker.ID))
	logger.Info("Configuration loaded",
		zap.String("address", cfg.Worker.Address),
		zap.Int("port", cfg.Worker.Port),
		zap.String("controller", cfg.ControllerAddress()),
		zap.String("storage_engine", cfg.Storage.Engine))

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	store, err := storage.Open(ctx, cfg.StorageOptions(), logger)
	if err != nil {
		logger.Fatal("Failed to open storage", zap.Error(err))
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Warn("Failed to close storage", zap.Error(err))
		}
	}()

	m := metrics.NewMetrics(prometheus.DefaultRegisterer, cfg.Worker.ID)

	// gRPC server for KV traffic and peer syncs
	grpcServer := grpc.NewServer()
	pb.RegisterKVServiceServer(grpcServer, handler.NewKVHandler(store, m, logger))

	addr := net.JoinHostPort(cfg.Worker.Host, fmt.Sprint(cfg.Worker.Port))
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		logger.Fatal("Failed to create listener", zap.Error(err))
	}

	var metricsServer *server.MetricsServer
	if cfg.Metrics.Enabled {
		metricsServer = server.NewMetricsServer(&server.MetricsServerConfig{
			Port:     cfg.Metrics.Port,
			Path:     cfg.Metrics.Path,
			WorkerID: cfg.Worker.ID,
		}, store, m, logger)
		if err := metricsServer.Start(); err != nil {
			logger.Fatal("Failed to start metrics server", zap.Error(err))
		}
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("Starting gRPC server", zap.String("address", addr))
		serverErrors <- grpcServer.Serve(listener)
	}()

	// Heartbeat to the coordinator once the RPC server is accepting
	coordinator, err := client.NewCoordinatorClient(
		cfg.ControllerAddress(),
		client.Identity{WorkerID: cfg.Worker.ID, Address: cfg.Worker.Address, Port: cfg.Worker.Port},
		store, m, logger,
		client.WithIntervals(cfg.Controller.HeartbeatInterval, cfg.Controller.ReconnectBackoff, cfg.Controller.SyncTimeout),
	)
	if err != nil {
		logger.Fatal("Failed to create coordinator client", zap.Error(err))
	}

	var heartbeats sync.WaitGroup
	heartbeats.Add(1)
	go func() {
		defer heartbeats.Done()
		coordinator.Run(ctx)
	}()

	// Wait for interrupt signal or server error
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		logger.Error("gRPC server failed", zap.Error(err))
	case sig := <-sigChan:
		logger.Info("Received signal", zap.String("signal", sig.String()))
	}

	// Graceful shutdown
	logger.Info("Shutting down gracefully")

	// Stop heartbeating first so the coordinator evicts us instead of routing more writes
	stop()
	heartbeats.Wait()
	if err := coordinator.Close(); err != nil {
		logger.Warn("Failed to close coordinator connection", zap.Error(err))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Worker.ShutdownTimeout)
	defer cancel()

	stopped := make(chan struct{})
	go func() {
		grpcServer.GracefulStop()
		close(stopped)
	}()

	select {
	case <-stopped:
		logger.Info("gRPC server stopped gracefully")
	case <-shutdownCtx.Done():
		logger.Warn("gRPC server stop timeout, forcing shutdown")
		grpcServer.Stop()
	}

	if metricsServer != nil {
		if err := metricsServer.Stop(shutdownCtx); err != nil {
			logger.Warn("Metrics server shutdown failed", zap.Error(err))
		}
	}

	logger.Info("Worker stopped")
}
