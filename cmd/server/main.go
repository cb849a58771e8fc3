package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	// Adapters
	"github.com/ikbal-mondal/krishi-setu-BackEnd/internal/adapter/auth"
	httpAdapter "github.com/ikbal-mondal/krishi-setu-BackEnd/internal/adapter/http"
	"github.com/ikbal-mondal/krishi-setu-BackEnd/internal/adapter/http/middleware"
	natsAdapter "github.com/ikbal-mondal/krishi-setu-BackEnd/internal/adapter/messaging/nats"
	"github.com/ikbal-mondal/krishi-setu-BackEnd/internal/adapter/ratelimit"
	"github.com/ikbal-mondal/krishi-setu-BackEnd/internal/adapter/repository/memory"
	mongoRepo "github.com/ikbal-mondal/krishi-setu-BackEnd/internal/adapter/repository/mongodb"
	"github.com/ikbal-mondal/krishi-setu-BackEnd/internal/adapter/storage/s3"

	"github.com/ikbal-mondal/krishi-setu-BackEnd/internal/config"
	"github.com/ikbal-mondal/krishi-setu-BackEnd/internal/crop/domain"
	"github.com/ikbal-mondal/krishi-setu-BackEnd/internal/crop/usecase"

	// Platform
	"github.com/ikbal-mondal/krishi-setu-BackEnd/internal/platform/logger"
	"github.com/ikbal-mondal/krishi-setu-BackEnd/internal/platform/metrics"
	"github.com/ikbal-mondal/krishi-setu-BackEnd/internal/platform/tracer"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	if err := godotenv.Load(); err != nil {
		fmt.Printf("INFO: .env file not found or error loading: %v. Relying on OS environment variables.\n", err)
	}

	appLogger := logger.NewLogger()
	defer func() { _ = appLogger.Sync() }()

	cfg, err := config.LoadConfig(appLogger)
	if err != nil {
		appLogger.Fatal("Failed to load configuration", zap.Error(err))
	}
	appLogger = logger.New(cfg.LoggerConfig())
	appLogger.Info("Application starting...",
		zap.String("service_name", cfg.ServiceName),
		zap.String("port", cfg.Port),
		zap.String("store_driver", cfg.StoreDriver),
		zap.String("auth_mode", cfg.AuthMode),
	)

	tp := tracer.InitTracer(cfg.ServiceName, cfg.OTExporterOTLPEndpoint, appLogger)
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tp.Shutdown(ctx); err != nil {
			appLogger.Error("Failed to shutdown tracer provider", zap.Error(err))
		}
	}()

	startupCtx, cancelStartup := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancelStartup()

	// Store
	var repo domain.CropRepository
	switch cfg.StoreDriver {
	case config.StoreDriverMongo:
		client, err := mongoRepo.Connect(startupCtx, cfg.MongoURI, cfg.StoreTimeout, appLogger)
		if err != nil {
			appLogger.Fatal("Failed to connect to MongoDB", zap.Error(err))
		}
		defer mongoRepo.Disconnect(client, appLogger)

		mongoCrops, err := mongoRepo.NewCropRepository(client.Database(cfg.MongoDatabase), cfg.StoreTimeout, appLogger)
		if err != nil {
			appLogger.Fatal("Failed to initialize CropRepository", zap.Error(err))
		}
		repo = mongoCrops
	default:
		appLogger.Warn("Using the in-memory store; data is lost on restart")
		repo = memory.NewCropRepository()
	}

	// Identity
	var verifier auth.TokenVerifier
	switch cfg.AuthMode {
	case config.AuthModeFirebase:
		creds, err := cfg.FirebaseCredentialsJSON()
		if err != nil {
			appLogger.Fatal("Invalid Firebase service key", zap.Error(err))
		}
		fb, err := auth.NewFirebaseVerifier(startupCtx, creds)
		if err != nil {
			appLogger.Fatal("Failed to initialize Firebase", zap.Error(err))
		}
		verifier = fb
	default:
		jwtVerifier, err := auth.NewJWTVerifier(cfg.JWTSecret)
		if err != nil {
			appLogger.Fatal("Failed to initialize JWT verifier", zap.Error(err))
		}
		verifier = jwtVerifier
	}
	resolver := auth.NewResolver(verifier, cfg.AuthTimeout, appLogger)

	// Events
	var publisher domain.EventPublisher = natsAdapter.NopPublisher{}
	if cfg.NATSURL != "" {
		natsPublisher, err := natsAdapter.NewPublisher(cfg.NATSURL, 10*time.Second, appLogger, cfg.ServiceName)
		if err != nil {
			appLogger.Fatal("Failed to initialize NATS publisher", zap.Error(err))
		}
		defer natsPublisher.Close()
		publisher = natsPublisher
	} else {
		appLogger.Info("NATS_URL not set, domain events are not published.")
	}

	// Rate limiting
	var limiter middleware.Limiter
	if cfg.RedisAddress != "" && cfg.RateLimitPerMinute > 0 {
		redisClient, err := ratelimit.NewRedisClient(startupCtx, cfg.RedisAddress, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			appLogger.Fatal("Failed to connect to Redis", zap.Error(err))
		}
		defer func() { _ = redisClient.Close() }()
		limiter = ratelimit.NewLimiter(redisClient, cfg.RateLimitPerMinute, time.Minute, appLogger)
	} else {
		appLogger.Info("Rate limiting disabled (REDIS_ADDRESS not set).")
	}

	// Image storage
	var storage domain.ImageStorage
	if cfg.MinIOEndpoint != "" {
		minioStorage, err := s3.NewStorage(startupCtx, cfg.MinIOEndpoint, cfg.MinIOAccessKey, cfg.MinIOSecretKey, cfg.MinIOBucket, cfg.MinIOUseSSL, appLogger)
		if err != nil {
			appLogger.Fatal("Failed to initialize MinIO storage", zap.Error(err))
		}
		storage = minioStorage
	} else {
		appLogger.Info("Image uploads disabled (MINIO_ENDPOINT not set).")
	}

	metricsManager := metrics.NewMetricsManager("krishi_setu")
	metricsServer := metrics.StartMetricsServer(cfg.PrometheusMetricsPort, appLogger, metricsManager.Registry)

	cropUsecase := usecase.NewCropUsecase(repo, publisher, storage, metricsManager, appLogger)

	router := httpAdapter.NewRouter(httpAdapter.RouterDeps{
		Crops:          cropUsecase,
		Resolver:       resolver,
		Limiter:        limiter,
		Health:         repo,
		Metrics:        metricsManager,
		Logger:         appLogger,
		AllowedOrigins: cfg.AllowedOrigins(),
		ServiceName:    cfg.ServiceName,
		ImageUploads:   storage != nil,
	})
	srv := httpAdapter.NewServer(cfg.Port, router)

	go func() {
		appLogger.Info("Starting HTTP server", zap.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	appLogger.Info("Received shutdown signal", zap.String("signal", sig.String()))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		appLogger.Error("HTTP server shutdown failed", zap.Error(err))
	}
	if metricsServer != nil {
		if err := metricsServer.Shutdown(ctx); err != nil {
			appLogger.Error("Metrics server shutdown failed", zap.Error(err))
		}
	}
	appLogger.Info("Application shut down.")
}
