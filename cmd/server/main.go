package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/macrolens/nutrilog/config"
	httpDelivery "github.com/macrolens/nutrilog/internal/delivery/http"
	"github.com/macrolens/nutrilog/internal/domain"
	"github.com/macrolens/nutrilog/internal/infrastructure/cache"
	"github.com/macrolens/nutrilog/internal/infrastructure/lexicon"
	"github.com/macrolens/nutrilog/internal/infrastructure/reference"
	"github.com/macrolens/nutrilog/internal/usecase"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	log.Printf("Starting NutriLog v1.0.0")
	log.Printf("Environment: %s", cfg.Server.Environment)
	log.Printf("Port: %s", cfg.Server.Port)

	// Initialize infrastructure dependencies
	source, err := reference.NewSource(cfg.Reference.Format, cfg.Reference.Path, cfg.Reference.Table)
	if err != nil {
		log.Fatalf("Failed to configure reference table: %v", err)
	}

	lex, err := lexicon.Load(cfg.Reference.LexiconPath)
	if err != nil {
		log.Fatalf("Failed to load lexicon: %v", err)
	}
	if cfg.Reference.LexiconPath != "" {
		log.Printf("Lexicon: %s", cfg.Reference.LexiconPath)
	}

	catalog := usecase.NewCatalog(source, lex, usecase.MatchConfig{
		FuzzyThreshold:       cfg.Matching.FuzzyThreshold,
		SubstringAcceptScore: cfg.Matching.SubstringAcceptScore,
		EnableDebugLogging:   cfg.Matching.EnableDebugLogging,
	})
	if _, err := catalog.Reload(context.Background()); err != nil {
		log.Fatalf("Failed to load reference table: %v", err)
	}

	log.Printf("Matching: fuzzy=%.2f, substring=%.2f, debug=%v",
		cfg.Matching.FuzzyThreshold,
		cfg.Matching.SubstringAcceptScore,
		cfg.Matching.EnableDebugLogging)

	var resultCache domain.CacheRepository
	if cfg.Cache.Enabled {
		memoryCache := cache.NewMemoryCache()
		defer memoryCache.Close()
		resultCache = memoryCache
		log.Printf("Cache TTL: %s", cfg.Cache.TTL)
	} else {
		log.Printf("Cache disabled")
	}

	// Initialize usecase layer
	analysisService := usecase.NewAnalysisService(
		catalog,
		resultCache,
		usecase.AnalysisServiceConfig{
			CacheTTL:              cfg.Cache.TTL,
			DefaultTargetCalories: cfg.Analysis.DefaultTargetCalories,
			EnableDebugLogging:    cfg.Matching.EnableDebugLogging,
		},
	)

	// Create HTTP handler with dependencies
	handler := httpDelivery.NewHandler(analysisService)

	// Setup router
	router := httpDelivery.SetupRouter(cfg, handler)
	if cfg.Server.AdminToken == "" {
		log.Printf("Reload endpoint disabled (no admin token); send SIGHUP to reload")
	}

	server := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go reloadOnHangup(ctx, analysisService)

	go func() {
		log.Printf("Server listening on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	<-ctx.Done()
	log.Printf("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Shutdown error: %v", err)
	}
}

// reloadOnHangup reloads the reference table whenever the process receives SIGHUP
func reloadOnHangup(ctx context.Context, service *usecase.AnalysisService) {
	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	defer signal.Stop(hup)

	for {
		select {
		case <-ctx.Done():
			return
		case <-hup:
			status, err := service.Reload(ctx)
			if err != nil {
				log.Printf("[CATALOG] SIGHUP reload failed, keeping previous table: %v", err)
				continue
			}
			log.Printf("[CATALOG] SIGHUP reload: %d foods (generation %d)", status.Foods, status.Generation)
		}
	}
}

func init() {
	// Set log flags for better debugging
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)
	log.SetOutput(os.Stdout)
}
