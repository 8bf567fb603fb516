package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/przemyslaw-muller/allworkouts/internal/api"
	"github.com/przemyslaw-muller/allworkouts/internal/auth"
	"github.com/przemyslaw-muller/allworkouts/internal/catalog"
	"github.com/przemyslaw-muller/allworkouts/internal/config"
	"github.com/przemyslaw-muller/allworkouts/internal/extraction"
	"github.com/przemyslaw-muller/allworkouts/internal/importer"
	"github.com/przemyslaw-muller/allworkouts/internal/matching"
	httptransport "github.com/przemyslaw-muller/allworkouts/internal/transport/http"
)

func main() {
	cfg := config.Load()

	provider, cleanup := buildCatalog(cfg)
	defer cleanup()

	if cfg.OpenAIAPIKey == "" {
		log.Printf("OPENAI_API_KEY not set, extraction calls will fail until configured")
	}
	extractor := extraction.NewOpenAIExtractor(extraction.OpenAIConfig{
		BaseURL:     cfg.OpenAIBaseURL,
		APIKey:      cfg.OpenAIAPIKey,
		Model:       cfg.OpenAIModel,
		Temperature: cfg.OpenAITemperature,
		MaxTokens:   cfg.OpenAIMaxTokens,
		Timeout:     cfg.ExtractionTimeout,
	})

	assemblerCfg := importer.DefaultConfig()
	assemblerCfg.ExtractionTimeout = cfg.ExtractionTimeout
	assemblerCfg.Matching = matching.Config{
		HighThreshold:   cfg.MatchHighThreshold,
		MediumThreshold: cfg.MatchMediumThreshold,
		AcceptFloor:     cfg.MatchAcceptFloor,
		AmbiguityDelta:  cfg.MatchAmbiguityDelta,
		TopK:            cfg.MatchTopK,
	}
	assembler := importer.New(provider, extractor, assemblerCfg)

	handler := api.NewHandler(assembler, provider)

	mux := http.NewServeMux()
	handler.RegisterRoutes(mux)
	mux.Handle("/metrics", promhttp.Handler())

	// Simple CORS middleware for local dev
	cors := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", "http://localhost:5173")
			w.Header().Set("Access-Control-Allow-Credentials", "true")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
			w.Header().Set("Access-Control-Allow-Methods", "GET,POST,OPTIONS")
			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}

	middleware := auth.NewMiddleware(auth.Config{Secret: cfg.JWTSecret, Issuer: cfg.JWTIssuer})

	// Basic request logger
	logger := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			log.Printf("%s %s", r.Method, r.URL.Path)
			next.ServeHTTP(w, r)
		})
	}

	server := httptransport.NewServer(httptransport.ServerConfig{
		Address:      cfg.HTTPAddress,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: cfg.ExtractionTimeout + 30*time.Second,
		IdleTimeout:  60 * time.Second,
	}, cors(logger(middleware.Wrap(mux))))

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Printf("allworkouts import api listening on %s", cfg.HTTPAddress)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	<-stop
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}
}

func buildCatalog(cfg config.Config) (catalog.Provider, func()) {
	if cfg.DatabaseURL != "" {
		pool, err := pgxpool.New(context.Background(), cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("connect to database: %v", err)
		}
		log.Printf("using Postgres catalog")
		return catalog.NewPostgresCatalog(pool), pool.Close
	}
	log.Printf("DATABASE_URL not set, using in-memory catalog")
	return catalog.NewInMemoryCatalog(), func() {}
}
