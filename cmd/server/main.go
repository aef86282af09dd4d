package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/semaphore"

	"github.com/parlaylab/sports-mcp/internal/api/handlers"
	"github.com/parlaylab/sports-mcp/internal/config"
	"github.com/parlaylab/sports-mcp/internal/logger"
	"github.com/parlaylab/sports-mcp/internal/providers"
	"github.com/parlaylab/sports-mcp/internal/services"
	"github.com/parlaylab/sports-mcp/internal/tools"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("Failed to load config: %v", err)
	}

	log := logger.InitLogger(cfg.LogLevel, cfg.IsDevelopment())
	log.WithFields(logrus.Fields{
		"service":     "sports-mcp",
		"environment": cfg.Env,
		"port":        cfg.Port,
	}).Info("Starting sports MCP server")

	if cfg.IsDevelopment() {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	// Optional same-day URL cache. Missing Redis only disables caching.
	var cache *services.URLCache
	if cfg.RedisURL != "" {
		cache, err = services.NewURLCache(cfg.RedisURL, services.MaxURLCacheTTL, log)
		if err != nil {
			log.WithError(err).Warn("Redis unavailable, running without URL cache")
			cache = nil
		} else {
			defer cache.Close()
		}
	}

	breakers := services.NewCircuitBreakerService(30*time.Second, log)

	// One semaphore gates every outbound HTTP request process-wide.
	sem := semaphore.NewWeighted(cfg.MaxConcurrency)

	base := providers.ClientOptions{
		Timeout: cfg.RequestTimeout,
		Sem:     sem,
		Logger:  log,
	}

	mlbOpts := base
	mlbOpts.Breaker = breakers.Breaker(services.BreakerMLB)
	mlbOpts.Cache = cacheOrNil(cache)
	mlb := providers.NewMLBClient(mlbOpts)

	soccerOpts := base
	soccerOpts.Breaker = breakers.Breaker(services.BreakerFootballData)
	soccerOpts.Cache = cacheOrNil(cache)
	soccer := providers.NewFootballDataClient(cfg.FootballDataKey, soccerOpts)

	var live *providers.SoccerDataClient
	if cfg.SoccerDataToken != "" {
		liveOpts := base
		liveOpts.Breaker = breakers.Breaker(services.BreakerSoccerData)
		live = providers.NewSoccerDataClient(cfg.SoccerDataToken, liveOpts)
	}

	oddsOpts := base
	oddsOpts.Breaker = breakers.Breaker(services.BreakerOddsAPI)
	odds := providers.NewOddsClient(cfg.OddsAPIKey, oddsOpts)

	llmOpts := base
	llmOpts.Breaker = breakers.Breaker(services.BreakerLLM)
	llmOpts.Timeout = 60 * time.Second // persona calls run longer than data fetches
	llm := providers.NewLLMClient(cfg.LLMAPIKey, cfg.LLMBaseURL, cfg.LLMModel, llmOpts)

	registry := tools.NewRegistry(tools.RegistryDeps{
		Config:   cfg,
		MLB:      mlb,
		Soccer:   soccer,
		Live:     live,
		Odds:     odds,
		LLM:      llm,
		Breakers: breakers,
		Logger:   log,
	})

	mcpHandler := handlers.NewMCPHandler(registry, cfg.OverallTimeout, log)
	healthHandler := handlers.NewHealthHandler(registry, breakers)

	router := gin.New()
	router.Use(gin.Recovery())

	router.POST("/mcp", mcpHandler.HandleRPC)
	router.GET("/healthz", healthHandler.GetHealth)
	router.GET("/status", healthHandler.GetStatus)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Port),
		Handler: router,
	}

	errCh := make(chan error, 1)
	go func() {
		log.WithField("port", cfg.Port).Info("Sports MCP server started")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		log.WithError(err).Error("Failed to serve")
		os.Exit(1)
	case <-quit:
	}

	log.Info("Shutting down sports MCP server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.WithError(err).Error("Forced shutdown")
		os.Exit(1)
	}

	log.Info("Sports MCP server exited")
}

// cacheOrNil keeps a typed-nil *URLCache from becoming a non-nil interface.
func cacheOrNil(cache *services.URLCache) providers.ResponseCache {
	if cache == nil {
		return nil
	}
	return cache
}
