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

	"alcyxob/gym-dashboard/internal/ai"
	"alcyxob/gym-dashboard/internal/api"
	"alcyxob/gym-dashboard/internal/config"
	"alcyxob/gym-dashboard/internal/repository"
	"alcyxob/gym-dashboard/internal/repository/badger"
	"alcyxob/gym-dashboard/internal/repository/memory"
	"alcyxob/gym-dashboard/internal/repository/mongo"
	"alcyxob/gym-dashboard/internal/service"
	"alcyxob/gym-dashboard/internal/state"
	"alcyxob/gym-dashboard/internal/storage"
	"alcyxob/gym-dashboard/internal/telemetry"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// membershipSweepInterval is how often lapsed memberships are expired.
const membershipSweepInterval = time.Hour

// @title Gym Dashboard API
// @version 1.0
// @description Role-based gym management: members, classes, finance, operations and AI coaching.
// @BasePath /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	// --- Configuration ---
	cfg, err := config.LoadConfig(".")
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: Could not load config: %v\n", err)
		os.Exit(1)
	}
	if cfg.JWT.Secret == "" {
		fmt.Fprintln(os.Stderr, "FATAL: JWT_SECRET must be set")
		os.Exit(1)
	}

	logger, err := newLogger(cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: Could not build logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()
	logger.Info("starting gym dashboard server", zap.String("storage", cfg.Storage.Backend))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// --- Field store ---
	fields, closeFields, err := openFieldStore(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("could not open field store", zap.Error(err))
	}
	defer closeFields()

	// --- State ---
	store := state.New(ctx, fields, logger.Named("state"))
	store.SeedCatalog(ctx)

	// --- Optional integrations ---
	var files storage.FileStorage
	if fs, err := storage.NewS3Storage(ctx, cfg.S3, logger.Named("s3")); err == nil {
		files = fs
	} else if errors.Is(err, storage.ErrNotConfigured) {
		logger.Info("object storage disabled; meal photos will not be archived")
	} else {
		logger.Fatal("failed to initialize S3 storage", zap.Error(err))
	}

	var assistant ai.Assistant
	if a, err := ai.NewOpenAIAssistant(cfg.AI, logger.Named("ai")); err == nil {
		assistant = a
	} else {
		logger.Warn("AI assistant disabled", zap.Error(err))
	}

	// --- Services ---
	authService := service.NewAuthService(store, cfg.JWT.Secret, cfg.JWT.Expiration, logger.Named("auth"))
	if err := authService.EnsureAdmin(ctx, cfg.Seed); err != nil {
		logger.Fatal("could not ensure an admin account", zap.Error(err))
	}
	services := api.Services{
		Auth:      authService,
		Activity:  service.NewActivityService(store, logger),
		Coach:     service.NewCoachService(store, assistant, logger.Named("coach")),
		Nutrition: service.NewNutritionService(store, assistant, files, logger.Named("nutrition")),
	}

	go sweepMemberships(ctx, store, logger)

	// --- Initialize Gin Engine ---
	if !cfg.Log.Development {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery(), api.RequestLogger(logger.Named("http")), telemetry.GinMiddleware())
	api.SetupRoutes(router, cfg.JWT.Secret, store, services)

	// --- Start HTTP Server ---
	server := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: cfg.AI.Timeout + 10*time.Second, // AI calls run inside the request
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logger.Info("server listening", zap.String("address", cfg.Server.Address))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("ListenAndServe error", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server")
	cancel()

	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()
	if err := server.Shutdown(ctxShutdown); err != nil {
		logger.Error("server forced to shutdown", zap.Error(err))
	}
	logger.Info("server exiting")
}

func newLogger(cfg config.LogConfig) (*zap.Logger, error) {
	zc := zap.NewProductionConfig()
	if cfg.Development {
		zc = zap.NewDevelopmentConfig()
	}
	if cfg.Level != "" {
		level, err := zap.ParseAtomicLevel(cfg.Level)
		if err != nil {
			return nil, err
		}
		zc.Level = level
	}
	return zc.Build()
}

// openFieldStore selects the persistence backend. The returned func releases it.
func openFieldStore(ctx context.Context, cfg config.Config, logger *zap.Logger) (repository.FieldStore, func(), error) {
	switch cfg.Storage.Backend {
	case "memory":
		logger.Warn("using in-memory field store; state is lost on restart")
		return memory.NewFieldStore(), func() {}, nil

	case "mongo":
		client, err := mongo.ConnectDB(cfg.Database.URI)
		if err != nil {
			return nil, nil, fmt.Errorf("connect to MongoDB: %w", err)
		}
		db := client.Database(cfg.Database.Name)
		indexCtx, cancel := context.WithTimeout(ctx, time.Minute)
		defer cancel()
		if err := mongo.EnsureFieldIndexes(indexCtx, mongo.FieldCollection(db)); err != nil {
			logger.Warn("could not ensure field indexes", zap.Error(err))
		}
		closer := func() {
			if err := mongo.DisconnectDB(client); err != nil {
				logger.Error("failed to disconnect MongoDB", zap.Error(err))
			}
		}
		return mongo.NewMongoFieldRepository(db), closer, nil

	case "badger", "":
		fs, err := badger.Open(badger.Config{Path: cfg.Storage.Path, SyncWrites: true, Logger: logger.Named("badger")})
		if err != nil {
			return nil, nil, err
		}
		closer := func() {
			if err := fs.Close(); err != nil {
				logger.Error("failed to close badger", zap.Error(err))
			}
		}
		return fs, closer, nil

	default:
		return nil, nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}
}

func sweepMemberships(ctx context.Context, store *state.Store, logger *zap.Logger) {
	ticker := time.NewTicker(membershipSweepInterval)
	defer ticker.Stop()
	for {
		if n := store.ExpireMemberships(ctx); n > 0 {
			logger.Info("expired memberships", zap.Int("count", n))
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
