package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"pos_service/config"
	"pos_service/internal/clients"
	"pos_service/internal/delivery"
	grpcHealth "pos_service/internal/delivery/grpc"
	"pos_service/internal/domain"
	"pos_service/internal/receipt"
	"pos_service/internal/repository"
	"pos_service/internal/usecase"
	"pos_service/pkg/cache"
	"pos_service/pkg/db"
	"pos_service/pkg/telemetry"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const (
	serviceName = "pos_service"
	version     = "1.0.0"
)

func main() {
	logger := logrus.New()
	logger.SetOutput(os.Stdout)
	logger.SetFormatter(&logrus.JSONFormatter{})

	cfg, err := config.Load(logger)
	if err != nil {
		logger.Fatalf("FATAL: %v", err)
	}
	logger.SetLevel(cfg.Level())
	logger.Infof("Starting POS Service... (log level %s)", cfg.Level())

	if cfg.Level() != logrus.DebugLevel && cfg.Level() != logrus.TraceLevel {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := telemetry.Setup(serviceName, version, cfg.TracingEnabled, os.Stdout)
	if err != nil {
		logger.Fatalf("FATAL: Failed to set up tracing: %v", err)
	}

	location, err := cfg.Location()
	if err != nil {
		logger.Fatalf("FATAL: %v", err)
	}

	database, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Fatalf("FATAL: Failed to connect to database: %v", err)
	}
	defer func() {
		if err := database.Close(); err != nil {
			logger.Errorf("Error closing database connection: %v", err)
		} else {
			logger.Info("Database connection closed.")
		}
	}()
	logger.Info("Database connection established.")

	if cfg.MigrateOnStart {
		if err := db.Migrate(ctx, database); err != nil {
			logger.Fatalf("FATAL: Database migration failed: %v", err)
		}
		logger.Info("Database schema is up to date.")
	}

	// --- Dependency Injection ---
	var productRepo domain.ProductRepository = repository.NewPostgresProductRepository(database, logger)
	var redisClient *redis.Client
	if cfg.RedisAddr != "" {
		redisClient, err = cache.Connect(ctx, cache.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB})
		if err != nil {
			logger.Warnf("Catalog cache unavailable, reading products from the database: %v", err)
		} else {
			defer redisClient.Close()
			productRepo = repository.NewCachedProductRepository(productRepo, redisClient, cfg.CatalogCacheTTL, logger)
			logger.Infof("Catalog cache enabled at %s (ttl %s)", cfg.RedisAddr, cfg.CatalogCacheTTL)
		}
	}
	txRepo := repository.NewPostgresTransactionRepository(database, logger)
	logger.Info("Repositories initialized.")

	profile, err := receipt.LoadProfile(cfg.ReceiptProfile)
	if err != nil {
		logger.Fatalf("FATAL: Invalid receipt profile: %v", err)
	}
	renderer, err := clients.NewFileDocumentRenderer(cfg.ReceiptDir, logger)
	if err != nil {
		logger.Fatalf("FATAL: %v", err)
	}
	var sharer clients.Sharer
	if cfg.ShareWebhookURL != "" {
		sharer = clients.NewWebhookSharer(cfg.ShareWebhookURL, cfg.ShareTimeout, logger)
	} else {
		sharer = clients.NewLogSharer(logger)
	}

	registry := usecase.NewCartRegistry()
	productUseCase := usecase.NewProductUseCase(productRepo, logger)
	cartUseCase := usecase.NewCartUseCase(registry, productRepo, logger)
	checkoutUseCase := usecase.NewCheckoutUseCase(registry, txRepo, renderer, sharer, profile, cfg.QRISLink, logger,
		usecase.WithLocation(location))
	historyUseCase := usecase.NewHistoryUseCase(txRepo, location, logger)
	analyticsUseCase := usecase.NewAnalyticsUseCase(txRepo, location, logger)
	logger.Info("Use cases initialized.")

	checks := map[string]delivery.HealthCheck{"postgres": database.PingContext}
	if redisClient != nil {
		checks["redis"] = func(ctx context.Context) error { return redisClient.Ping(ctx).Err() }
	}

	router := delivery.NewRouter(delivery.Handlers{
		Products: delivery.NewProductHandler(productUseCase, logger),
		Carts:    delivery.NewCartHandler(cartUseCase, checkoutUseCase, logger),
		Reports:  delivery.NewReportHandler(historyUseCase, analyticsUseCase, logger),
		Health:   checks,
	}, logger)
	logger.Info("Routes registered.")

	// --- Start Servers ---
	httpServer := &http.Server{
		Addr:              cfg.HTTPPort,
		Handler:           otelhttp.NewHandler(router, serviceName),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logger.Infof("HTTP server listening on %s", cfg.HTTPPort)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("Failed to serve HTTP on %s: %v", cfg.HTTPPort, err)
		}
	}()

	grpcChecks := make(map[string]grpcHealth.Check, len(checks))
	for name, check := range checks {
		grpcChecks[name] = grpcHealth.Check(check)
	}
	healthServer := grpcHealth.NewHealthServer(grpcChecks, logger)
	lis, err := net.Listen("tcp", cfg.GrpcPort)
	if err != nil {
		logger.Fatalf("Failed to listen on port %s: %v", cfg.GrpcPort, err)
	}
	go healthServer.Watch(ctx, 15*time.Second)
	go func() {
		logger.Infof("gRPC health server listening on %s", cfg.GrpcPort)
		if err := healthServer.Server.Serve(lis); err != nil {
			logger.Errorf("gRPC server stopped: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Warn("Shutdown signal received...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("HTTP server shutdown error: %v", err)
	}
	healthServer.Stop()
	if err := shutdownTracing(shutdownCtx); err != nil {
		logger.Errorf("Tracer shutdown error: %v", err)
	}
	logger.Info("POS Service shut down gracefully.")
}
