package main

import (
	"log"
	"net/http"
	_ "net/http/pprof"
	"time"

	"go.uber.org/zap"

	"polysearch/api"
	"polysearch/config"
	"polysearch/fetch"
	"polysearch/search"
)

func main() {
	// =========
	// Profiling
	// =========
	go func() {
		http.ListenAndServe(":6060", nil)
	}()

	// =========
	// Config
	// =========
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// =========
	// Logging
	// =========
	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("failed to create logger: %v", err)
	}
	defer logger.Sync()

	// =========
	// Site store
	// =========
	store, err := config.LoadSiteStore(cfg.SitesPath, logger)
	if err != nil {
		logger.Fatal("failed to load site config", zap.Error(err))
	}

	// =========
	// Fetcher
	// =========
	var fetcher fetch.Fetcher
	if cfg.UseBrowser {
		fetcher = fetch.NewBrowser(cfg.ProxyURL, logger)
	} else {
		fetcher, err = fetch.NewClient(cfg.ProxyURL, 30*time.Second, logger)
		if err != nil {
			logger.Fatal("failed to create http client", zap.Error(err))
		}
	}

	// =========
	// Search orchestrator
	// =========
	orchestrator := search.NewOrchestrator(store, fetcher, logger)

	// =========
	// API server
	// =========
	server := api.NewServer(orchestrator, store, logger, cfg.AppPort)
	if err := server.Start(); err != nil {
		logger.Fatal("api server exited", zap.Error(err))
	}
}
