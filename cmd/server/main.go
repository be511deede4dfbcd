package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"build-route-api/internal/domain/entity"
	domainRepo "build-route-api/internal/domain/repository"
	"build-route-api/internal/infrastructure/config"
	"build-route-api/internal/infrastructure/persistence"
	adapterRepo "build-route-api/internal/interface/repository"
	"build-route-api/internal/interface/upstream"
	"build-route-api/internal/usecase"
	"build-route-api/pkg/logger"
	"build-route-api/pkg/metrics"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	// Create logger
	log := logger.NewLogger()
	log.Info("Starting Route API Engine")

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal("Failed to load config", "error", err)
	}

	// Set up context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Set up Redis cache store
	log.Info("Connecting to Redis", "addr", cfg.RedisAddr)
	redisClient, err := persistence.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		// Cache-store failures degrade to always-fetch; the engine keeps
		// running with the cache layer reporting misses.
		log.Error("Failed to connect to Redis, running without warm cache", "error", err)
	}

	// Set up PostgreSQL reliability reference table
	var reliabilityRepo domainRepo.ReliabilityRepository
	gormDB, err := gorm.Open(postgres.Open(cfg.PostgresURI), &gorm.Config{})
	if err != nil {
		log.Error("Failed to connect to PostgreSQL, reliability table disabled", "error", err)
	} else {
		reliabilityRepo = adapterRepo.NewGormReliabilityRepository(gormDB)
	}

	// Set up MongoDB search audit log
	var searchLogRepo domainRepo.SearchLogRepository
	mongoClient, mongoDB, err := persistence.NewMongoClient(ctx, cfg.MongoURI, cfg.MongoDB)
	if err != nil {
		log.Error("Failed to connect to MongoDB, search auditing disabled", "error", err)
	} else {
		searchLogRepo = adapterRepo.NewMongoSearchLogRepository(mongoDB)
	}

	// Set up metrics
	engineMetrics := metrics.NewMetrics("route_api")

	// Set up the engine
	cacheRepo := adapterRepo.NewRedisCacheRepository(redisClient, log)
	var pricingCache domainRepo.PricingCacheRepository
	if cfg.PricingCacheEnabled {
		pricingCache = cacheRepo
	}
	orchestrator := usecase.NewCacheOrchestrator(cacheRepo, pricingCache, cfg.CacheTTL, log, engineMetrics)

	source := upstream.NewHTTPAvailabilitySource(cfg.PartnerAPIBaseURL, cfg.PartnerAPIKey, cfg.FetchTimeout, log)
	fetchPool := usecase.NewFetchPool(source, orchestrator, cfg.MaxFetchConcurrency, log, engineMetrics)

	reliabilityCache := usecase.NewReliabilityCache(reliabilityRepo, cfg.ReliabilityRefreshTTL, log)

	searchService := usecase.NewSearchService(
		orchestrator,
		fetchPool,
		usecase.NewPoolBuilder(log),
		usecase.NewReliabilityFilter(log),
		usecase.NewComposer(log),
		usecase.NewPricingMatcher(log),
		reliabilityCache,
		searchLogRepo,
		log,
		engineMetrics,
	)

	// Set up HTTP server
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("Healthy"))
	})
	mux.HandleFunc("/search", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		var params entity.SearchParams
		if err := json.NewDecoder(r.Body).Decode(&params); err != nil {
			http.Error(w, "invalid request body", http.StatusBadRequest)
			return
		}
		if params.MinConnectionMinutes <= 0 {
			params.MinConnectionMinutes = cfg.MinConnectionMinutes
		}

		result, err := searchService.Search(r.Context(), params)
		if err != nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(statusFor(err))
			json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(result)
	})

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      mux,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	// Start HTTP server in a goroutine
	go func() {
		log.Info("Starting HTTP server", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server error", "error", err)
		}
	}()

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan
	log.Info("Received signal", "signal", sig)

	// Graceful shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown error", "error", err)
	}

	cancel()

	if mongoClient != nil {
		if err := mongoClient.Disconnect(ctx); err != nil {
			log.Error("MongoDB disconnect error", "error", err)
		}
	}
	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			log.Error("Redis close error", "error", err)
		}
	}

	log.Info("Route API Engine stopped")
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, entity.ErrInvalidRouteStructure):
		return http.StatusBadRequest
	case errors.Is(err, entity.ErrRateLimited):
		return http.StatusTooManyRequests
	case errors.Is(err, entity.ErrUpstreamUnavailable):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
