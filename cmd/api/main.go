package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"

	"noelserdna/cyber-cv-analyzer/internal/config"
	"noelserdna/cyber-cv-analyzer/internal/handlers"
	"noelserdna/cyber-cv-analyzer/internal/metrics"
	"noelserdna/cyber-cv-analyzer/internal/middleware"
	"noelserdna/cyber-cv-analyzer/internal/repositories"
	"noelserdna/cyber-cv-analyzer/internal/services"
)

func main() {
	// Load configuration
	cfg := config.Load()
	log.Println("✅ Config loaded successfully")

	// Initialize database
	db, err := config.InitDatabase(cfg)
	if err != nil {
		log.Fatalf("❌ Failed to initialize database: %v", err)
	}

	analysisRepo := repositories.NewAnalysisRepository(db)
	log.Println("✅ Repositories initialized successfully")

	// Initialize services
	storageService := services.NewStorageService(cfg.Storage.UploadPath)
	if err := storageService.EnsureUploadDir(); err != nil {
		log.Fatalf("❌ Failed to create upload directory: %v", err)
	}

	pdfParser := services.NewPDFParserService()
	log.Println("✅ Services initialized successfully")

	// Gemini is always constructed: even with the REST transport it provides
	// the embeddings for the profile index.
	geminiService, err := services.NewGeminiService(cfg.Agent)
	if err != nil {
		log.Fatalf("❌ Failed to initialize Gemini AI: %v", err)
	}
	log.Println("✅ Gemini AI initialized successfully")

	var agent services.AgentClient = geminiService
	if cfg.Agent.Transport == "rest" {
		agent = services.NewRESTAgentService(cfg.Agent)
		log.Println("🔄 Using direct REST agent transport")
	}

	// Initialize Qdrant
	profileIndex, err := services.NewProfileIndexService(
		cfg.Qdrant.URL,
		cfg.Qdrant.APIKey,
		cfg.Qdrant.Collection,
	)
	if err != nil {
		log.Fatalf("❌ Failed to initialize Qdrant: %v", err)
	}

	if err := profileIndex.InitCollection(context.Background()); err != nil {
		log.Fatalf("❌ Failed to initialize Qdrant collection: %v", err)
	}
	log.Println("✅ Qdrant initialized successfully")

	// Retry policy shared by every agent call
	retrier := services.NewRetrier(cfg.Retry)
	retrier.OnRetry = func(int) {
		metrics.AgentRetries.Inc()
	}

	analyzerService := services.NewAnalyzerService(pdfParser, agent, retrier, cfg.Analysis.Timeout)
	log.Println("✅ Analyzer service initialized")

	// Background profile indexer
	indexer := services.NewIndexer(geminiService, profileIndex, cfg.Indexer.Concurrency)
	indexer.Start(context.Background())
	metrics.RegisterQueueDepth(indexer.QueueDepth)
	log.Println("✅ Profile indexer started")

	// Metrics side listener
	metrics.Serve(cfg.Metrics.Port)

	// Initialize handlers
	analyzeHandler := handlers.NewAnalyzeHandler(
		analyzerService,
		storageService,
		analysisRepo,
		indexer,
		cfg.Analysis.MaxFileSize,
	)
	healthHandler := handlers.NewHealthHandler(cfg.Server)
	historyHandler := handlers.NewHistoryHandler(analysisRepo, geminiService, profileIndex)
	log.Println("✅ Handlers initialized")

	// Create Fiber app. BodyLimit sits above the file cap so the handler's
	// own 413 envelope wins for the documented limit.
	app := fiber.New(fiber.Config{
		AppName:      "Cyber CV Analyzer API",
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 60 * time.Second,
		BodyLimit:    int(cfg.Analysis.MaxFileSize) + 1024*1024,
		ErrorHandler: handlers.ErrorHandler,
	})

	// Middleware
	app.Use(recover.New())
	app.Use(requestid.New(requestid.Config{
		Generator: func() string {
			return uuid.New().String()
		},
	}))
	app.Use(logger.New(logger.Config{
		Format:     "[${time}] ${locals:requestid} ${status} - ${latency} ${method} ${path}\n",
		TimeFormat: "2006-01-02 15:04:05",
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept, X-API-Key",
	}))
	app.Use(metrics.NewRequestRecorder())

	apiKeyAuth := middleware.NewAPIKeyAuth(cfg.Auth.APIKeys)
	admission := middleware.NewConcurrencyLimiter(cfg.Analysis.MaxConcurrent)

	// Routes
	app.Get("/health", healthHandler.HandleHealth)

	v1 := app.Group("/v1")
	// Admission runs before auth.
	v1.Post("/analyze-cv", admission, apiKeyAuth, analyzeHandler.HandleAnalyzeCV)
	v1.Get("/analyses", apiKeyAuth, historyHandler.HandleListAnalyses)
	v1.Get("/analyses/:id", apiKeyAuth, historyHandler.HandleGetAnalysis)
	v1.Get("/analyses/:id/similar", apiKeyAuth, historyHandler.HandleSimilarProfiles)

	// Root route
	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"message": "Cyber CV Analyzer API",
			"version": cfg.Server.Version,
			"endpoints": []string{
				"POST /v1/analyze-cv",
				"GET /v1/analyses",
				"GET /v1/analyses/:id",
				"GET /v1/analyses/:id/similar",
				"GET /health",
			},
		})
	})

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		log.Println("\n🛑 Shutting down server...")
		indexer.Stop()
		if err := app.Shutdown(); err != nil {
			log.Printf("❌ Server forced to shutdown: %v", err)
		}
	}()

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	log.Printf("🚀 Server starting on %s\n", addr)

	if err := app.Listen(addr); err != nil {
		log.Fatalf("❌ Failed to start server: %v", err)
	}
}
