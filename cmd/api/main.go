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

	fbapp "firebase.google.com/go/v4"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/shopspring/decimal"
	"google.golang.org/api/option"

	"flipearn/internal/adapter/api"
	"flipearn/internal/adapter/api/handler"
	apimiddleware "flipearn/internal/adapter/api/middleware"
	"flipearn/internal/adapter/api/router"
	"flipearn/internal/adapter/repository"
	"flipearn/internal/domain/service"
	"flipearn/internal/infrastructure/cache"
	"flipearn/internal/infrastructure/database"
	"flipearn/internal/infrastructure/firebase"
	"flipearn/internal/infrastructure/metrics"
	"flipearn/internal/infrastructure/notification"
	"flipearn/internal/infrastructure/ratelimit"
	"flipearn/internal/infrastructure/storage"
	"flipearn/internal/usecase"
	"flipearn/pkg/config"
	"flipearn/pkg/logger"
	"flipearn/pkg/response"
)

const (
	apiRequestsPerMinute = 120
	shutdownTimeout      = 15 * time.Second
)

func main() {
	if err := run(); err != nil {
		logger.Error("%v", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger.Init(cfg.Environment, cfg.LogLevel)
	decimal.MarshalJSONWithoutQuotes = true

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var opts []option.ClientOption
	switch {
	case cfg.FirebaseServiceAccountJSON != "":
		logger.Info("Using Firebase service account from environment variable")
		opts = append(opts, option.WithCredentialsJSON([]byte(cfg.FirebaseServiceAccountJSON)))
	case cfg.FirebaseServiceAccountPath != "":
		logger.Info("Using Firebase service account from file: %s", cfg.FirebaseServiceAccountPath)
		opts = append(opts, option.WithCredentialsFile(cfg.FirebaseServiceAccountPath))
	default:
		logger.Info("Using application default credentials for Firebase")
	}

	firebaseApp, err := fbapp.NewApp(ctx, &fbapp.Config{ProjectID: cfg.FirebaseProject}, opts...)
	if err != nil {
		return fmt.Errorf("error initializing firebase app: %w", err)
	}

	authClient, err := firebaseApp.Auth(ctx)
	if err != nil {
		return fmt.Errorf("error getting auth client: %w", err)
	}

	firestoreClient, err := firebaseApp.Firestore(ctx)
	if err != nil {
		return fmt.Errorf("error getting firestore client: %w", err)
	}
	defer firestoreClient.Close()

	db, err := database.Open(ctx, cfg.DatabaseURL, cfg.DBMaxOpenConns)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := database.Migrate(ctx, db); err != nil {
		return err
	}
	logger.Info("Database migrations applied")

	metricRegistry := metrics.Registry(cfg.MetricsNamespace)

	uploader, err := newUploader(ctx, cfg)
	if err != nil {
		return err
	}
	uploader = storage.NewInstrumentedUploader(uploader, cfg.ImageStorage, metricRegistry)
	defer uploader.Close()

	listingCache := newListingCache(ctx, cfg, metricRegistry)

	dispatcher := notification.NewDispatcher(cfg.NotifyWorkers, cfg.NotifyQueueSize, cfg.NotifyTimeout, metricRegistry)
	dispatcher.Start(ctx)

	limiter := ratelimit.NewRateLimiter(map[string]ratelimit.Rule{
		"send_message": ratelimit.PerMinute(cfg.ChatMessagesPerMinute),
		"api":          ratelimit.PerMinute(apiRequestsPerMinute),
	})
	stopCleanup := make(chan struct{})
	defer close(stopCleanup)
	limiter.StartCleanupRoutine(30*time.Minute, stopCleanup)

	store := repository.NewPostgresStore(db)
	mailer := notification.NewFirestoreMailer(firestoreClient)

	listingUseCase := usecase.NewListingUseCase(store, uploader, listingCache, mailer, dispatcher, usecase.ListingLimits{
		FreeListings: cfg.FreeListingLimit,
		MaxImages:    cfg.MaxListingImages,
	})
	credentialUseCase := usecase.NewCredentialUseCase(store, listingCache)
	chatUseCase := usecase.NewChatUseCase(store, limiter)
	ledgerUseCase := usecase.NewLedgerUseCase(store)
	userUseCase := usecase.NewUserUseCase(store)

	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}
		if rerr := response.Error(c, err); rerr != nil {
			logger.Error("Failed to write error response: %v", rerr)
		}
	}

	e.Use(middleware.LoggerWithConfig(middleware.LoggerConfig{Output: logger.Output()}))
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())
	e.Use(apimiddleware.Metrics(metricRegistry))
	e.Use(apimiddleware.RateLimit(limiter, "api"))

	e.Validator = api.NewValidator()

	authMiddleware := apimiddleware.NewAuthMiddleware(firebase.NewFirebaseAuthClient(authClient), userUseCase)

	router.Setup(e, router.Handlers{
		Listing: handler.NewListingHandler(listingUseCase, credentialUseCase),
		Ledger:  handler.NewLedgerHandler(ledgerUseCase),
		Chat:    handler.NewChatHandler(chatUseCase, cfg.ChatPollInterval),
		Admin:   handler.NewAdminHandler(moderation{listingUseCase, credentialUseCase}),
		Health:  handler.NewHealthHandler(db),
	}, authMiddleware)

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Starting server on port %s...", cfg.ServerPort)
		if err := e.Start(":" + cfg.ServerPort); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("Shutdown signal received")
	case err := <-errCh:
		return fmt.Errorf("http server error: %w", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown error: %v", err)
	}
	if err := dispatcher.Stop(shutdownCtx); err != nil {
		logger.Warn("Notification dispatcher did not drain: %v", err)
	}

	logger.Info("Server stopped")
	return nil
}

// moderation joins the admin-only operations of the listing and credential
// use cases.
type moderation struct {
	*usecase.ListingUseCase
	*usecase.CredentialUseCase
}

func newUploader(ctx context.Context, cfg *config.Config) (service.ImageUploader, error) {
	switch cfg.ImageStorage {
	case "s3":
		return storage.NewS3Client(ctx, storage.S3Config{
			Bucket:        cfg.StorageBucket,
			Folder:        cfg.ImageFolder,
			Region:        cfg.S3Region,
			Endpoint:      cfg.S3Endpoint,
			AccessKey:     cfg.S3AccessKey,
			SecretKey:     cfg.S3SecretKey,
			PublicBaseURL: cfg.S3PublicBaseURL,
		})
	default:
		return storage.NewCloudStorageClient(ctx, cfg.StorageBucket, cfg.ImageFolder,
			cfg.FirebaseServiceAccountPath, cfg.FirebaseServiceAccountJSON)
	}
}

func newListingCache(ctx context.Context, cfg *config.Config, m *metrics.Metrics) service.ListingCache {
	if cfg.RedisAddr == "" {
		logger.Info("REDIS_ADDR not set, public listings are served uncached")
		return service.NopListingCache{}
	}

	redisCache := cache.New(cache.Config{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	}, cfg.PublicCacheTTL, m)
	if err := redisCache.Ping(ctx); err != nil {
		logger.Warn("Redis ping failed, cache reads will fall back to the database: %v", err)
	}
	return redisCache
}
