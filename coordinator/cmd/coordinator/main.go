package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"google.golang.org/grpc"

	"github.com/distkv/distkv/coordinator/internal/algorithm"
	"github.com/distkv/distkv/coordinator/internal/client"
	"github.com/distkv/distkv/coordinator/internal/config"
	"github.com/distkv/distkv/coordinator/internal/handler"
	"github.com/distkv/distkv/coordinator/internal/health"
	"github.com/distkv/distkv/coordinator/internal/metrics"
	"github.com/distkv/distkv/coordinator/internal/registry"
	"github.com/distkv/distkv/coordinator/internal/server"
	"github.com/distkv/distkv/coordinator/internal/service"
	"github.com/distkv/distkv/coordinator/internal/store"
	"github.com/distkv/distkv/coordinator/internal/util/workerpool"
	"github.com/distkv/distkv/pkg/logging"
	pb "github.com/distkv/distkv/pkg/proto"
)

func main() {
	// Load configuration
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "./config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	logger, err := logging.New(cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}
	defer logger.Sync()

	logger.Info("Starting distkv coordinator",
		zap.String("host", cfg.Server.Host),
		zap.Int("grpc_port", cfg.Server.GRPCPort),
		zap.Int("http_port", cfg.Server.HTTPPort),
		zap.String("catalog_backend", cfg.Catalog.Backend))

	m := metrics.NewMetrics(prometheus.DefaultRegisterer)

	catalog, err := newCatalog(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize key catalog", zap.Error(err))
	}
	logger.Info("Key catalog initialized", zap.String("backend", cfg.Catalog.Backend))

	ring := algorithm.NewConsistentHasher(cfg.Membership.VirtualNodes)
	reg := registry.NewRegistry(ring, catalog, m, logger,
		registry.WithHeartbeatTimeout(cfg.Membership.HeartbeatTimeout))

	workerClient := client.NewWorkerClient(reg, m, logger,
		client.WithTimeouts(cfg.RPC.UnaryTimeout, cfg.RPC.StreamTimeout))

	background := workerpool.NewWorkerPool(workerpool.Config{
		Name:       "coordinator-background",
		MaxWorkers: cfg.Background.Workers,
		QueueSize:  cfg.Background.QueueSize,
		Logger:     logger,
		QueueGauge: m.BackgroundQueueSize,
		Rejected:   m.BackgroundRejected,
	})

	// Initialize services
	conflictService := service.NewConflictService(workerClient, algorithm.ClockSumOrdering{}, m, logger)
	coordinatorService := service.NewCoordinatorService(reg, workerClient, conflictService, background, m, logger)
	recoveryService := service.NewRecoveryService(reg, workerClient, catalog, m, logger)

	reg.OnEviction(recoveryService.HandleEviction)
	reg.OnEviction(func(workerID string) {
		if err := workerClient.CloseConnection(workerID); err != nil {
			logger.Warn("Failed to close connection to evicted worker",
				zap.String("worker_id", workerID),
				zap.Error(err))
		}
	})

	logger.Info("All services initialized")

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	go reg.Run(ctx, cfg.Membership.ReapInterval)

	// gRPC server for the worker heartbeat stream
	grpcServer := grpc.NewServer()
	pb.RegisterHealthServiceServer(grpcServer, handler.NewHeartbeatHandler(reg, logger))

	grpcAddr := net.JoinHostPort(cfg.Server.Host, fmt.Sprint(cfg.Server.GRPCPort))
	listener, err := net.Listen("tcp", grpcAddr)
	if err != nil {
		logger.Fatal("Failed to create listener", zap.Error(err))
	}

	// HTTP server for the client API and health probes
	kvHandler := handler.NewKVHTTPHandler(coordinatorService, reg, workerClient, m, logger)
	healthChecker := health.NewHealthChecker(catalog, reg, logger)
	httpServer := server.NewServer(cfg, kvHandler, healthChecker, logger)

	serverErrors := make(chan error, 3)

	go func() {
		logger.Info("Starting gRPC server", zap.String("address", grpcAddr))
		serverErrors <- grpcServer.Serve(listener)
	}()

	go func() {
		serverErrors <- httpServer.Start()
	}()

	var metricsServer *http.Server
	if cfg.Metrics.Enabled {
		mux := http.NewServeMux()
		mux.Handle(cfg.Metrics.Path, promhttp.Handler())
		metricsServer = &http.Server{
			Addr:              fmt.Sprintf(":%d", cfg.Metrics.Port),
			Handler:           mux,
			ReadHeaderTimeout: 10 * time.Second,
		}
		go func() {
			logger.Info("Starting metrics server", zap.String("address", metricsServer.Addr))
			if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				serverErrors <- fmt.Errorf("metrics server: %w", err)
			}
		}()
	}

	// Wait for interrupt signal or server error
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		logger.Error("Server error", zap.Error(err))
	case sig := <-sigChan:
		logger.Info("Received signal", zap.String("signal", sig.String()))
	}

	// Graceful shutdown
	logger.Info("Shutting down gracefully")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Warn("HTTP server shutdown failed", zap.Error(err))
	}
	if metricsServer != nil {
		_ = metricsServer.Shutdown(shutdownCtx)
	}

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

	// Stop the reaper first so no new recovery passes start
	stop()
	if err := recoveryService.Stop(cfg.Background.StopTimeout); err != nil {
		logger.Warn("Recovery passes did not finish", zap.Error(err))
	}
	if err := background.Stop(cfg.Background.StopTimeout); err != nil {
		logger.Warn("Background pool did not drain", zap.Error(err))
	}

	workerClient.Close()
	if err := catalog.Close(); err != nil {
		logger.Warn("Failed to close key catalog", zap.Error(err))
	}

	logger.Info("Coordinator stopped")
}

func newCatalog(cfg *config.Config, logger *zap.Logger) (store.KeyCatalog, error) {
	switch cfg.Catalog.Backend {
	case config.CatalogBackendRedis:
		return store.NewRedisCatalog(
			cfg.Catalog.Redis.Host,
			cfg.Catalog.Redis.Port,
			cfg.Catalog.Redis.Password,
			cfg.Catalog.Redis.DB,
			logger,
		)
	default:
		return store.NewInMemoryCatalog(logger), nil
	}
}
