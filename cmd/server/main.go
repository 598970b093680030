package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	gorillahandlers "github.com/gorilla/handlers"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"kidslearning/internal/config"
	"kidslearning/internal/database"
	"kidslearning/internal/handlers"
	"kidslearning/internal/metrics"
	"kidslearning/internal/remote"
	"kidslearning/internal/repository"
	"kidslearning/internal/security"
	"kidslearning/internal/service"
	"kidslearning/internal/snapshot"
	"kidslearning/internal/tutor"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize database with config (supports sqlite, postgres, mysql)
	handlers.SetCurrentStep(handlers.StepDatabase)
	db, err := database.InitializeWithConfig(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	log.Printf("Database connection established (type: %s)", cfg.DatabaseType)
	handlers.CompleteStep(handlers.StepDatabase)

	// Run migrations
	handlers.SetCurrentStep(handlers.StepMigrations)
	if err := db.RunMigrations(cfg.MigrationsPath); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	log.Println("Migrations completed successfully")
	handlers.CompleteStep(handlers.StepMigrations)

	// Seed blocked words filter
	handlers.SetCurrentStep(handlers.StepBlockedWords)
	if err := db.SeedBlockedWords(cfg.BlockedWordsURL); err != nil {
		log.Printf("Warning: Failed to seed blocked words filter: %v", err)
	}
	handlers.CompleteStep(handlers.StepBlockedWords)

	// Metrics
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	appMetrics := metrics.New(registry)

	// Load the learner state
	handlers.SetCurrentStep(handlers.StepLearnerState)
	kv, err := snapshot.OpenBackend(cfg.StoreBackend, cfg.SnapshotPath, repository.NewKeyValueRepository(db))
	if err != nil {
		log.Fatalf("Failed to open snapshot store: %v", err)
	}

	remoteClient := remote.NewClient(cfg.RemoteBackendURL, cfg.RemoteRateLimit, cfg.RemoteTimeout)
	if remoteClient.Enabled() {
		log.Printf("Syncing progress to remote backend at %s", cfg.RemoteBackendURL)
	} else {
		log.Println("No remote backend configured, progress stays on this device")
	}

	progressService, err := service.NewProgressService(snapshot.NewStore(kv), remoteClient, appMetrics, time.Now)
	if err != nil {
		log.Fatalf("Failed to load learner state: %v", err)
	}
	handlers.CompleteStep(handlers.StepLearnerState)

	// Initialize services
	handlers.SetCurrentStep(handlers.StepServices)
	ctx := context.Background()

	tutorService, err := tutor.NewService(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
	if err != nil {
		log.Fatalf("Failed to initialize chat tutor: %v", err)
	}

	emailService, err := service.NewEmailService(ctx, cfg.AWSRegion, cfg.SESFromEmail, cfg.SESFromName, cfg.AppBaseURL, cfg.Debug)
	if err != nil {
		log.Fatalf("Failed to initialize email service: %v", err)
	}

	var studentService *service.StudentService
	var backendHandler *handlers.BackendHandler
	var tokens handlers.TokenValidator
	if cfg.BackendTokenSecret != "" {
		studentService = service.NewStudentService(
			repository.NewStudentRepository(db),
			repository.NewActivityRepository(db),
			security.NewTokenIssuer(cfg.BackendTokenSecret, cfg.TokenDuration),
			db,
		)
		backendHandler = handlers.NewBackendHandler(studentService)
		tokens = studentService
		log.Println("Hosting the remote progress backend")
	}

	limiter := security.NewRateLimiter(cfg.RateLimitPerMin, time.Minute)
	middleware := handlers.NewMiddleware(tokens, limiter, appMetrics)
	handlers.CompleteStep(handlers.StepServices)

	// Setup routes
	mux := http.NewServeMux()
	handlers.Routes{
		Middleware: middleware,
		Progress:   handlers.NewProgressHandler(progressService, emailService),
		Profile:    handlers.NewProfileHandler(progressService),
		Snapshot:   handlers.NewSnapshotHandler(service.NewBackupService(progressService)),
		Chat:       handlers.NewChatHandler(tutorService, appMetrics),
		Backend:    backendHandler,
	}.Register(mux)

	mux.Handle("GET /metrics", handlers.BasicAuth(cfg.MetricsUser, cfg.MetricsPassword,
		promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry})))

	// Wrap with monitoring, CORS and logging middleware
	cors := gorillahandlers.CORS(
		gorillahandlers.AllowedOrigins(cfg.AllowedOrigins),
		gorillahandlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions}),
		gorillahandlers.AllowedHeaders([]string{"Content-Type", "Authorization"}),
	)
	handler := handlers.Logging(cors(handlers.Monitor(appMetrics)(mux)))

	// Start server
	addr := ":" + cfg.ServerPort
	server := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	handlers.MarkReady()

	// Graceful shutdown
	go func() {
		log.Printf("Server starting on http://localhost%s", addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Server shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Graceful shutdown failed: %v", err)
	}
}
