package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	pkgvalidator "github.com/labops-team/standup-assistant/pkg/validator"

	"github.com/labops-team/standup-assistant/internal/adapter/handler"
	"github.com/labops-team/standup-assistant/internal/adapter/repository"
	"github.com/labops-team/standup-assistant/internal/infrastructure/cache"
	"github.com/labops-team/standup-assistant/internal/infrastructure/database"
	httpmw "github.com/labops-team/standup-assistant/internal/infrastructure/http/middleware"
	"github.com/labops-team/standup-assistant/internal/infrastructure/storage"
	archiveuse "github.com/labops-team/standup-assistant/internal/usecase/archive"
	audiouse "github.com/labops-team/standup-assistant/internal/usecase/audio"
	"github.com/labops-team/standup-assistant/internal/usecase/cleanup"
	standupuse "github.com/labops-team/standup-assistant/internal/usecase/standup"
	pkgai "github.com/labops-team/standup-assistant/pkg/ai"
	"github.com/labops-team/standup-assistant/pkg/config"
	"github.com/labops-team/standup-assistant/pkg/jwt"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize Echo instance
	e := echo.New()

	// Register validator for request validation
	e.Validator = pkgvalidator.New()

	// Configure Echo
	e.HideBanner = true
	e.HidePort = false

	// Custom logger format
	e.Use(middleware.LoggerWithConfig(middleware.LoggerConfig{
		Format: "${time_rfc3339} | ${status} | ${method} ${uri} | ${latency_human}\n",
	}))

	// Recover from panics
	e.Use(middleware.Recover())

	// CORS middleware
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     cfg.Server.AllowedOrigins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodPatch},
		AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
		AllowCredentials: true,
	}))

	// Initialize dependencies
	log.Println("Initializing dependencies...")

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	// Initialize Database
	log.Println("Connecting to database...")
	db, err := database.NewPostgresDB(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.CloseDB(db)

	// Run migrations only when explicitly enabled in config. Production
	// deployments should apply them through CI/CD instead.
	if cfg.Database.AutoMigrate {
		log.Println("Applying SQL migrations...")
		if err := database.Migrate(db); err != nil {
			log.Fatalf("Failed to apply migrations: %v", err)
		}
	} else {
		log.Println("Skipping migrations; apply them with sql-migrate in CI/CD")
	}

	// Initialize Redis
	log.Println("Connecting to Redis...")
	redisClient, err := cache.NewRedisClient(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer redisClient.Close()

	// Initialize repositories
	log.Println("Initializing repositories...")
	standupRepo := repository.NewStandupRepository(db)
	archiveRepo := repository.NewArchiveRepository(db)
	artifactRepo := repository.NewArtifactRepository(db)
	userRepo := repository.NewUserRepository(db)

	// Initialize storage
	log.Println("Initializing storage...")
	localStore := storage.NewLocalStore(cfg.Audio.ContentDir)
	minioClient, err := storage.NewMinIOClient(&cfg.Storage)
	if err != nil {
		log.Fatalf("Failed to initialize object storage: %v", err)
	}

	// Initialize AI clients
	log.Println("Initializing AI clients...")
	transcriptionClient := pkgai.NewTranscriptionClient(&cfg.Assembly, logger)
	groqClient := pkgai.NewGroqClient(&cfg.Groq)

	// Initialize services
	log.Println("Initializing services...")
	audioService := audiouse.NewService(localStore, standupRepo, &cfg.Audio, logger)
	archiveService := archiveuse.NewService(archiveRepo, standupRepo, minioClient, &cfg.Cleanup, logger)
	processingLock := cache.NewProcessingLock(redisClient, 10*time.Minute)
	standupService := standupuse.NewService(
		standupRepo,
		artifactRepo,
		userRepo,
		audioService,
		archiveService,
		transcriptionClient,
		groqClient,
		processingLock,
		cfg.Groq.MaxRetries,
		logger,
	)

	// Initialize JWT manager and auth middleware
	log.Println("Initializing JWT manager...")
	jwtManager := jwt.NewManager(cfg.JWT.AccessSecret, cfg.JWT.AccessExpiry)
	authEchoMW := httpmw.EchoAuth(jwtManager)

	// Initialize handlers
	log.Println("Initializing handlers...")
	standupHandler := handler.NewStandup(standupService, audioService, logger)
	transcriptHandler := handler.NewTranscript(archiveService, logger)
	maintenanceHandler := handler.NewMaintenance(archiveService, audioService, logger)

	// Setup router with handlers
	log.Println("Setting up routes...")
	router := handler.NewRouter(cfg, standupHandler, transcriptHandler, maintenanceHandler, authEchoMW)
	router.Setup(e)

	// Start cleanup scheduler
	scheduler := cleanup.NewScheduler(archiveService, audioService, &cfg.Cleanup, logger)
	if cfg.Cleanup.Enabled {
		scheduler.Start()
		defer scheduler.Stop()
	}

	// Start server
	go func() {
		addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
		log.Printf("Starting server on %s", addr)
		log.Printf("Environment: %s", cfg.Server.Environment)
		log.Printf("Health check: http://%s/health", addr)

		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Server.ShutdownTimeout)*time.Second)
	defer cancel()

	if err := e.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server stopped gracefully")
}
