package main

import (
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"gorm.io/gorm/logger"

	"github.com/vibhukrishnas/sams-sub016/internal/config"
	"github.com/vibhukrishnas/sams-sub016/internal/database"
	"github.com/vibhukrishnas/sams-sub016/internal/engine"
	"github.com/vibhukrishnas/sams-sub016/internal/evaluation"
	"github.com/vibhukrishnas/sams-sub016/internal/handlers"
	"github.com/vibhukrishnas/sams-sub016/internal/jobs"
	"github.com/vibhukrishnas/sams-sub016/internal/middleware"
	"github.com/vibhukrishnas/sams-sub016/internal/notify"
)

func main() {
	// Load .env file if it exists (ignore error if file doesn't exist)
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file found or error loading it (this is fine if using environment variables): %v", err)
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	log.Printf("Starting SAMS alert engine...")

	// Initialize JWT authentication middleware
	if cfg.AdminPassword == "" {
		log.Fatalf("ADMIN_PASSWORD is not set")
	}

	// Hash the admin password
	passwordHash, err := middleware.HashPassword(cfg.AdminPassword)
	if err != nil {
		log.Fatalf("Failed to hash admin password: %v", err)
	}

	jwtAuthMiddleware := middleware.NewJWTAuthMiddleware(&middleware.JWTAuthConfig{
		Enabled:           true,
		AdminUsername:     cfg.AdminUsername,
		AdminPasswordHash: passwordHash,
		JWTSecret:         cfg.JWTSecret,
		JWTExpiryHours:    cfg.JWTExpiryHours,
		SkipPaths: []string{
			"/health",
			"/webhook/*",
			"/auth/login",
		},
	})
	log.Printf("JWT authentication enabled for user: %s", cfg.AdminUsername)

	// Initialize database connection
	if err := database.Connect(cfg.DatabaseURL, logger.Warn); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	log.Printf("Database connection established")

	// Run database migrations
	if err := database.AutoMigrate(database.GetDB()); err != nil {
		log.Fatalf("Failed to run database migrations: %v", err)
	}

	store := database.NewAlertStore(database.GetDB())

	// Load rule definitions and sync them into the database
	rules, err := config.LoadRules(cfg.RulesFile)
	if err != nil {
		log.Fatalf("Failed to load rules from %s: %v", cfg.RulesFile, err)
	}
	for i := range rules {
		if err := store.SaveRule(&rules[i]); err != nil {
			log.Fatalf("Failed to save rule %s: %v", rules[i].ID, err)
		}
	}
	log.Printf("Loaded %d alert rules from %s", len(rules), cfg.RulesFile)

	// Notification sinks: structured log always, websocket stream for the UI,
	// Slack only when a bot token is configured
	eventsHandler := handlers.NewEventsWSHandler()
	sinks := []engine.Notifier{notify.NewLogSink(), eventsHandler}
	if cfg.SlackBotToken != "" {
		sinks = append(sinks, notify.NewSlackSink(cfg.SlackBotToken, cfg.SlackAlertsChannel))
		log.Printf("Slack notifications enabled for channel %s", cfg.SlackAlertsChannel)
	} else {
		log.Printf("Slack notifications disabled (set SLACK_BOT_TOKEN to enable)")
	}

	// Initialize the processing engine
	eng := engine.NewEngine(store, evaluation.NewThresholdEvaluator(), notify.NewFanout(sinks...), engine.Config{
		SimilarityThreshold: cfg.SimilarityThreshold,
		RetentionWindow:     time.Duration(cfg.RetentionMinutes) * time.Minute,
	})
	log.Printf("Processing engine initialized (similarity threshold %.2f)", cfg.SimilarityThreshold)

	// Start background jobs
	stop := make(chan struct{})
	go jobs.NewLifecycleSweep(eng).Start(time.Duration(cfg.LifecycleSweepSeconds)*time.Second, stop)
	go jobs.NewCleanupJob(eng).Start(time.Duration(cfg.CleanupIntervalSeconds)*time.Second, stop)
	log.Printf("Background jobs started (sweep every %ds, cleanup every %ds)",
		cfg.LifecycleSweepSeconds, cfg.CleanupIntervalSeconds)

	// Initialize HTTP handlers
	apiHandler := handlers.NewAPIHandler(eng, store)
	webhookHandler := handlers.NewWebhookHandler(eng, store)
	httpHandler := handlers.NewHTTPHandler(apiHandler, webhookHandler, eventsHandler)
	authHandler := handlers.NewAuthHandler(jwtAuthMiddleware)

	// Set up HTTP server routes
	mux := http.NewServeMux()
	httpHandler.SetupRoutes(mux)
	authHandler.SetupRoutes(mux)

	// Wrap all routes with CORS middleware first, then JWT authentication
	corsMiddleware := middleware.NewCORSMiddleware(cfg.CORSAllowedOrigins...)
	rootHandler := corsMiddleware.Wrap(middleware.RequestIDMiddleware(jwtAuthMiddleware.Wrap(mux)))

	httpServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler: rootHandler,
	}

	go func() {
		log.Printf("Starting HTTP server on port %d", cfg.HTTPPort)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("HTTP server error: %v", err)
		}
	}()

	log.Println("Engine is running! Press Ctrl+C to exit.")
	log.Printf("Metrics webhook endpoint: http://localhost:%d/webhook/metrics", cfg.HTTPPort)
	log.Printf("Health check endpoint: http://localhost:%d/health", cfg.HTTPPort)
	log.Printf("API base URL: http://localhost:%d/api/v1", cfg.HTTPPort)

	// Wait for shutdown signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	log.Println("Received shutdown signal, cleaning up...")
	close(stop)

	log.Println("Shutting down HTTP server...")
	if err := httpServer.Close(); err != nil {
		log.Printf("Error shutting down HTTP server: %v", err)
	}

	log.Println("Shutdown complete")
}
