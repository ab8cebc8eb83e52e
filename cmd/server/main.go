package main

import (
	"log"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"zotproxy/internal/config"
	"zotproxy/internal/handler"
	"zotproxy/internal/middleware"
	"zotproxy/internal/search"
	"zotproxy/internal/summary"
	"zotproxy/internal/zotero"

	"github.com/joho/godotenv"
	"github.com/rs/cors"
)

func main() {
	// Load .env file (silently ignore if it doesn't exist - for production)
	_ = godotenv.Load()

	// Load configuration
	cfg := config.Load()

	// Setup structured logging
	logLevel := slog.LevelInfo
	if cfg.Environment == "dev" {
		logLevel = slog.LevelDebug
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	logger.Info("server starting",
		"environment", cfg.Environment,
		"port", cfg.Port,
		"zotero_base_url", cfg.ZoteroBaseURL,
	)

	// Load summary/matching heuristics (optional YAML override)
	heuristics, err := config.LoadHeuristics(cfg.HeuristicsFile)
	if err != nil {
		log.Fatalf("Failed to load heuristics: %v", err)
	}

	// Upstream library client
	client := zotero.NewClient(cfg.ZoteroBaseURL)

	// Core services
	orchestrator := search.NewOrchestrator(client, cfg, heuristics, logger)
	fetcher := summary.NewFetcher(client, nil, logger)
	pipeline := summary.NewPipeline(client, fetcher, cfg, heuristics, logger)

	// Handlers
	identityHandler := handler.NewIdentityHandler(client, logger)
	collectionsHandler := handler.NewCollectionsHandler(client, logger)
	itemsHandler := handler.NewItemsHandler(orchestrator, client, logger)
	notesHandler := handler.NewNotesHandler(orchestrator, client, logger)
	pdfHandler := handler.NewPDFHandler(orchestrator, client, fetcher, cfg.PDFPreviewChars, logger)
	summaryHandler := handler.NewSummaryHandler(pipeline, client, logger)

	logger.Info("services initialized")

	// Create HTTP router (Go 1.22+ enhanced patterns)
	mux := http.NewServeMux()

	// Identity check
	mux.HandleFunc("GET /ping", identityHandler.Ping)

	// Collection routes
	mux.HandleFunc("GET /api/collections", collectionsHandler.ListCollections)
	mux.HandleFunc("GET /api/collections/summary", summaryHandler.SummarizeCollection)

	// Item routes
	mux.HandleFunc("GET /api/items", itemsHandler.SearchItems)
	mux.HandleFunc("GET /api/items/read", pdfHandler.ReadPDF)
	mux.HandleFunc("GET /api/items/{key}/notes", notesHandler.GetItemNotes)
	mux.HandleFunc("GET /api/notes", notesHandler.GetNotes)

	// Build middleware chain
	var h http.Handler = mux

	// Apply middleware in reverse order (they wrap each other)
	// Order: CORS → Recovery → RequestID → Credential → Routes
	h = middleware.Credential()(h)
	h = middleware.RequestID(logger)(h)
	h = middleware.Recovery(logger)(h)

	// CORS - Must be before the credential check to handle OPTIONS pre-flight requests
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   strings.Split(cfg.CORSOrigins, ","),
		AllowedMethods:   []string{"GET", "OPTIONS"},
		AllowedHeaders:   []string{"Origin", "Content-Type", "Accept", middleware.HeaderAPIKey},
		AllowCredentials: true,
	})
	h = corsHandler.Handler(h)

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      h,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 120 * time.Second, // PDF extraction over slow upstreams takes a while
		IdleTimeout:  60 * time.Second,
	}

	// Start server
	logger.Info("server listening", "port", cfg.Port)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("Failed to start server: %v", err)
	}
}
