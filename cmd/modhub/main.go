package main

import (
	"context"
	"fmt"
	nethttp "net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/aescanero/modhub/internal/application/auth"
	"github.com/aescanero/modhub/internal/application/catalog"
	"github.com/aescanero/modhub/internal/config"
	"github.com/aescanero/modhub/internal/ports"
	eventsmemory "github.com/aescanero/modhub/pkg/adapters/events/memory"
	eventsredis "github.com/aescanero/modhub/pkg/adapters/events/redis"
	"github.com/aescanero/modhub/pkg/adapters/gamebanana"
	"github.com/aescanero/modhub/pkg/adapters/metrics/prometheus"
	"github.com/aescanero/modhub/pkg/adapters/storage/memory"
	redisstorage "github.com/aescanero/modhub/pkg/adapters/storage/redis"
	"github.com/aescanero/modhub/pkg/adapters/uploads"
	"github.com/aescanero/modhub/pkg/api/grpc"
	"github.com/aescanero/modhub/pkg/api/http"
	"github.com/aescanero/modhub/pkg/api/websocket"

	promclient "github.com/prometheus/client_golang/prometheus"
	goredis "github.com/redis/go-redis/v9"
	"github.com/spf13/afero"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/time/rate"
)

var (
	// Version is set by build flags
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	logger := initLogger(cfg.LogLevel)
	defer logger.Sync()

	logger.Info("starting modhub",
		zap.String("version", Version),
		zap.String("build_time", BuildTime),
		zap.String("storage_backend", cfg.StorageBackend))

	ctx := context.Background()

	var (
		store       ports.ModStore
		eventBus    ports.EventBus
		redisClient *goredis.Client
	)

	switch cfg.StorageBackend {
	case config.BackendRedis:
		redisClient = goredis.NewClient(&goredis.Options{
			Addr:         cfg.Redis.Addr,
			Password:     cfg.Redis.Password,
			DB:           cfg.Redis.DB,
			PoolSize:     cfg.Redis.PoolSize,
			MinIdleConns: cfg.Redis.MinIdleConns,
			MaxRetries:   cfg.Redis.MaxRetries,
			DialTimeout:  cfg.Redis.DialTimeout,
			ReadTimeout:  cfg.Redis.ReadTimeout,
			WriteTimeout: cfg.Redis.WriteTimeout,
		})

		if err := redisClient.Ping(ctx).Err(); err != nil {
			logger.Fatal("failed to connect to Redis", zap.Error(err))
		}
		logger.Info("connected to Redis", zap.String("addr", cfg.Redis.Addr))

		store = redisstorage.NewModStorage(redisClient, cfg.Redis.KeyPrefix, logger)
		eventBus = eventsredis.NewStreamsEventBus(redisClient, cfg.Redis.KeyPrefix, logger)
	default:
		store = memory.NewModStorage()
		eventBus = eventsmemory.NewEventBus(logger)
	}

	metricsCollector := prometheus.NewCollector(promclient.DefaultRegisterer)

	// Initialize application components
	catalogSvc := catalog.NewService(
		store,
		eventBus,
		metricsCollector,
		catalog.NewValidator(),
		logger,
	)

	if cfg.SeedSampleData {
		if err := catalogSvc.Seed(ctx, catalog.SampleMods()); err != nil {
			logger.Fatal("failed to seed catalog", zap.Error(err))
		}
	}

	uploadStore := uploads.NewStore(afero.NewOsFs(), cfg.Public.Dir, logger)
	if err := uploadStore.EnsureDirs(); err != nil {
		logger.Fatal("failed to prepare upload directories", zap.Error(err))
	}

	gameBanana := gamebanana.NewClient(&gamebanana.Config{
		BaseURL: cfg.GameBanana.BaseURL,
		GameID:  cfg.GameBanana.GameID,
		Doer: gamebanana.NewRateLimitedDoer(
			&nethttp.Client{Timeout: cfg.GameBanana.Timeout},
			rate.NewLimiter(rate.Limit(cfg.GameBanana.RequestsPerSecond), cfg.GameBanana.Burst),
		),
		Metrics: metricsCollector,
		Logger:  logger,
	})

	// Initialize API server
	httpServer := http.NewServer(&http.Config{
		Port:           cfg.HTTPPort,
		Catalog:        catalogSvc,
		Gate:           auth.NewGate(cfg.Admin.Username, cfg.Admin.Password),
		Uploads:        uploadStore,
		External:       gameBanana,
		Metrics:        metricsCollector,
		MaxUploadBytes: cfg.Public.MaxUploadBytes,
		Logger:         logger,
	})

	// Add WebSocket handler to HTTP server
	wsHandler := websocket.NewHandler(eventBus, logger)
	httpServer.SetupWebSocket(wsHandler)

	var grpcServer *grpc.Server
	if cfg.GRPCPort != 0 {
		grpcServer, err = grpc.NewServer(&grpc.Config{
			Port:          cfg.GRPCPort,
			Catalog:       catalogSvc,
			CheckInterval: cfg.Timeouts.HealthCheckInterval,
			Logger:        logger,
		})
		if err != nil {
			logger.Fatal("failed to create gRPC server", zap.Error(err))
		}
	}

	// Start servers
	go func() {
		if err := httpServer.Start(); err != nil {
			logger.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	if grpcServer != nil {
		go func() {
			if err := grpcServer.Start(); err != nil {
				logger.Fatal("gRPC server failed", zap.Error(err))
			}
		}()
	}

	logger.Info("modhub started",
		zap.Int("http_port", cfg.HTTPPort),
		zap.Int("grpc_port", cfg.GRPCPort),
		zap.String("public_dir", cfg.Public.Dir))

	// Wait for interrupt signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	logger.Info("received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Timeouts.ShutdownTimeout)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown error", zap.Error(err))
	}

	if grpcServer != nil {
		if err := grpcServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("gRPC server shutdown error", zap.Error(err))
		}
	}

	if err := eventBus.Close(); err != nil {
		logger.Error("event bus close error", zap.Error(err))
	}

	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			logger.Error("Redis close error", zap.Error(err))
		}
	}

	logger.Info("modhub shut down complete")
}

// initLogger initializes the logger based on log level
func initLogger(level string) *zap.Logger {
	var zapLevel zapcore.Level
	switch level {
	case "debug":
		zapLevel = zapcore.DebugLevel
	case "info":
		zapLevel = zapcore.InfoLevel
	case "warn":
		zapLevel = zapcore.WarnLevel
	case "error":
		zapLevel = zapcore.ErrorLevel
	default:
		zapLevel = zapcore.InfoLevel
	}

	config := zap.NewProductionConfig()
	config.Level = zap.NewAtomicLevelAt(zapLevel)
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	logger, err := config.Build()
	if err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}

	return logger
}
