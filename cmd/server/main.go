package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/Abdurahmanit/GroupProject/estate-service/internal/adapter/http/handler"
	"github.com/Abdurahmanit/GroupProject/estate-service/internal/adapter/http/middleware"
	"github.com/Abdurahmanit/GroupProject/estate-service/internal/adapter/http/router"
	natsAdapter "github.com/Abdurahmanit/GroupProject/estate-service/internal/adapter/messaging/nats"
	"github.com/Abdurahmanit/GroupProject/estate-service/internal/adapter/repository/cache"
	mongoRepo "github.com/Abdurahmanit/GroupProject/estate-service/internal/adapter/repository/mongodb"
	"github.com/Abdurahmanit/GroupProject/estate-service/internal/adapter/storage/s3"
	"github.com/Abdurahmanit/GroupProject/estate-service/internal/adapter/token"
	"github.com/Abdurahmanit/GroupProject/estate-service/internal/config"
	"github.com/Abdurahmanit/GroupProject/estate-service/internal/domain"
	"github.com/Abdurahmanit/GroupProject/estate-service/internal/mailer"
	"github.com/Abdurahmanit/GroupProject/estate-service/internal/platform/logger"
	"github.com/Abdurahmanit/GroupProject/estate-service/internal/platform/metrics"
	"github.com/Abdurahmanit/GroupProject/estate-service/internal/platform/tracer"
	"github.com/Abdurahmanit/GroupProject/estate-service/internal/usecase"
	"github.com/Abdurahmanit/GroupProject/estate-service/internal/worker"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

const (
	readTimeout     = 15 * time.Second
	writeTimeout    = 60 * time.Second
	idleTimeout     = 120 * time.Second
	shutdownTimeout = 15 * time.Second
)

func main() {
	// Load .env file (optional, for local development)
	if err := godotenv.Load(); err != nil {
		fmt.Printf("INFO: .env file not found or error loading: %v. Relying on OS environment variables.\n", err)
	}

	appLogger := logger.NewLogger()
	defer func() { _ = appLogger.Sync() }()

	cfg, err := config.LoadConfig(appLogger)
	if err != nil {
		appLogger.Fatal("Failed to load configuration", zap.Error(err))
	}
	serviceName := cfg.ServiceName
	appLogger.Info("Application starting...", zap.String("service_name", serviceName))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	tp := tracer.InitTracer(tracer.Options{
		ServiceName:    serviceName,
		ServiceVersion: cfg.ServiceVersion,
		Environment:    cfg.Environment,
		Endpoint:       cfg.OTExporterOTLPEndpoint,
		SampleRatio:    cfg.TraceSampleRatio,
	}, appLogger)
	defer func() {
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tp.Shutdown(ctxShutdown); err != nil {
			appLogger.Error("Failed to shutdown tracer provider", zap.Error(err))
		}
	}()

	mongoClient, err := mongoRepo.NewClient(ctx, cfg.MongoURI)
	if err != nil {
		appLogger.Fatal("Failed to connect to MongoDB", zap.Error(err))
	}
	defer func() {
		appLogger.Info("Disconnecting from MongoDB...")
		if err := mongoClient.Disconnect(context.Background()); err != nil {
			appLogger.Error("Error disconnecting from MongoDB", zap.Error(err))
		}
	}()
	appLogger.Info("Successfully connected and pinged MongoDB.", zap.String("database", cfg.MongoDatabase))
	db := mongoClient.Database(cfg.MongoDatabase)

	userRepo := mongoRepo.NewUserRepository(db, appLogger)
	listingRepo := mongoRepo.NewListingRepository(db, appLogger)
	reviewRepo := mongoRepo.NewReviewRepository(db, appLogger)
	cleanupRepo := mongoRepo.NewCleanupRepository(db, appLogger)

	// The cache is optional; without Redis every read goes to MongoDB.
	var listingCache domain.ListingCache
	redisClient, err := cache.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, appLogger)
	if err != nil {
		appLogger.Warn("Redis unavailable, listing cache disabled", zap.Error(err))
	} else {
		defer redisClient.Close()
		listingCache = cache.NewListingCache(redisClient, cfg.ListingCacheTTL, appLogger)
	}

	var publisher domain.EventPublisher = natsAdapter.NopPublisher{}
	natsPublisher, err := natsAdapter.NewPublisher(cfg.NATSURL, appLogger, serviceName)
	if err != nil {
		appLogger.Warn("NATS unavailable, domain events disabled", zap.Error(err))
	} else {
		defer natsPublisher.Close()
		publisher = natsPublisher
	}

	mediaStorage, err := s3.NewMediaStorage(ctx, s3.Options{
		Endpoint:      cfg.MediaEndpoint,
		AccessKey:     cfg.MediaAccessKey,
		SecretKey:     cfg.MediaSecretKey,
		Bucket:        cfg.MediaBucket,
		UseSSL:        cfg.MediaUseSSL,
		PublicBaseURL: cfg.MediaPublicBaseURL,
	}, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to initialize media storage", zap.Error(err))
	}

	var notifier domain.Notifier = mailer.NopMailer{}
	if cfg.SMTPEnabled() {
		notifier = mailer.NewSMTPMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword, cfg.SMTPSenderEmail, appLogger)
	} else {
		appLogger.Info("SMTP not configured, listing emails disabled")
	}

	tokens := token.NewJWTManager(cfg.JWTSecret, cfg.JWTTTL)
	metricsManager := metrics.NewMetricsManager(serviceName)

	userUsecase := usecase.NewUserUsecase(userRepo, listingRepo, reviewRepo, tokens, appLogger)
	listingUsecase := usecase.NewListingUsecase(usecase.ListingDeps{
		Listings:  listingRepo,
		Reviews:   reviewRepo,
		Storage:   mediaStorage,
		Cleanup:   cleanupRepo,
		Cache:     listingCache,
		Publisher: publisher,
		Notifier:  notifier,
		Metrics:   metricsManager,
	}, appLogger)
	reviewUsecase := usecase.NewReviewUsecase(reviewRepo, listingRepo, listingCache, publisher, metricsManager, appLogger)
	cleanupUsecase := usecase.NewCleanupUsecase(cleanupRepo, mediaStorage, cfg.CleanupMaxAttempts, metricsManager, appLogger)

	go worker.NewMediaCleanup(cleanupUsecase, cfg.CleanupInterval, appLogger).Run(ctx)

	go func() {
		if err := metrics.StartMetricsServer(ctx, cfg.PrometheusMetricsPort, appLogger, metricsManager.Registry); err != nil {
			appLogger.Error("Prometheus metrics server failed", zap.Error(err))
		}
	}()

	mux := router.NewRouter(router.Options{
		ServiceName:    serviceName,
		CORSOrigin:     cfg.CORSOrigin,
		RequestTimeout: writeTimeout - 5*time.Second,
		Users:          handler.NewUserHandler(userUsecase, handler.CookieOptions{TTL: tokens.TTL(), Secure: cfg.CookieSecure}, appLogger),
		Listings:       handler.NewListingHandler(listingUsecase, handler.UploadOptions{TmpDir: cfg.UploadTmpDir, MaxBytes: cfg.MaxUploadBytes}, appLogger),
		Reviews:        handler.NewReviewHandler(reviewUsecase, appLogger),
		Auth:           middleware.JWTAuth(tokens, userRepo, appLogger),
		Metrics:        metricsManager,
		Logger:         appLogger,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      mux,
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
		IdleTimeout:  idleTimeout,
	}

	go func() {
		appLogger.Info("Starting HTTP server", zap.String("address", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Error("HTTP server failed", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	appLogger.Info("Received shutdown signal, draining HTTP server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLogger.Error("HTTP server shutdown failed", zap.Error(err))
	}
	appLogger.Info("Application shutting down...")
}
