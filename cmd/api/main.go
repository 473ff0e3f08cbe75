package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/velto/animatic/internal/api"
	"github.com/velto/animatic/internal/config"
	"github.com/velto/animatic/internal/db"
	"github.com/velto/animatic/internal/queue"
	"github.com/velto/animatic/internal/render"
	"github.com/velto/animatic/internal/sequencer"
	"github.com/velto/animatic/internal/services"
	"github.com/velto/animatic/internal/storage"
	"github.com/velto/animatic/internal/worker"
)

func main() {
	log.Println("Starting Animatic API...")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Connect to database
	database, err := db.New(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close()
	log.Println("Connected to database")

	// Connect to Redis queue
	q, err := queue.New(cfg.RedisURL)
	if err != nil {
		log.Fatalf("Failed to connect to queue: %v", err)
	}
	defer q.Close()
	log.Println("Connected to Redis queue")

	// Initialize storage
	stor := storage.New(cfg.SupabaseURL, cfg.SupabaseServiceKey, cfg.SupabaseStorageBucket)
	log.Println("Initialized Supabase storage")

	// Scene index sequencer, backed by the scenes table
	seq := sequencer.New(database)

	// Create API handler
	handler := api.NewHandler(database, q, stor, seq)
	router := api.NewRouter(handler, api.RouterConfig{
		BackendAPIKey:      cfg.BackendAPIKey,
		CorsAllowedOrigins: cfg.CorsAllowedOrigins,
	})

	if cfg.BackendAPIKey != "" {
		log.Println("API key authentication enabled")
	} else {
		log.Println("WARNING: No BACKEND_API_KEY set — API is unprotected (dev mode)")
	}

	// Start HTTP server
	server := &http.Server{
		Addr:    ":" + cfg.APIPort,
		Handler: router,
	}

	// Start worker if enabled
	var workerCtx context.Context
	var workerCancel context.CancelFunc
	if cfg.WorkerEnabled {
		log.Println("Worker enabled, starting background processing...")

		ttsSvc := services.NewNarrationService(cfg.OpenAIKey)

		// Motion-clip generation is optional; scenes fall back to
		// still images with Ken Burns motion when disabled
		var clipgenSvc *services.ClipGenService
		if cfg.ClipGenEnabled {
			clipgenSvc = services.NewClipGenService(cfg.GeminiKey, cfg.VeoModel)
			log.Printf("Clip generation enabled (model: %s)", cfg.VeoModel)
		} else {
			log.Println("Clip generation disabled — scenes render as still images")
		}

		renderClient := render.New(cfg.RenderURL, cfg.RenderAPIKey)

		w := worker.New(database, q, stor, ttsSvc, clipgenSvc, renderClient)

		workerCtx, workerCancel = context.WithCancel(context.Background())
		go w.Start(workerCtx, cfg.MaxConcurrentJobs)
	}

	// Start server in goroutine
	go func() {
		log.Printf("API server listening on :%s", cfg.APIPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	// Shutdown worker
	if workerCancel != nil {
		workerCancel()
	}

	// Shutdown HTTP server
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exited")
}
