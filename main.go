package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"straico-gateway/config"
	"straico-gateway/logger"
	"straico-gateway/proxy"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	fmt.Println(GetBuildInfo())
	fmt.Println()

	cfg, err := config.LoadConfigWithEnv()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	loggerCfg := logger.NewConfigAdapter(cfg)
	startupLogger := logger.New(context.Background(), loggerCfg).WithComponent("startup")
	startupLogger.Info("straico-gateway configuration loaded: port=%d heartbeat=%s upstream_timeout=%s",
		cfg.Port, cfg.HeartbeatChar, cfg.UpstreamTimeout)

	handler := proxy.NewHandler(cfg)

	mux := http.NewServeMux()
	mux.HandleFunc("/", handleRoot)
	mux.HandleFunc("/health", handleHealth)
	mux.HandleFunc("/v1/chat/completions", handler.HandleChatCompletions)
	mux.HandleFunc("/v1/models", proxy.HandleModelsList)
	mux.HandleFunc("/v1/models/", proxy.HandleModelGet)
	mux.Handle("/metrics", promhttp.Handler())

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      mux,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 300 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	startupLogger.Info("straico-gateway started: address=http://localhost:%d endpoint=/v1/chat/completions", cfg.Port)

	if err := server.ListenAndServe(); err != nil {
		startupLogger.Error("server failed to start: %v", err)
		log.Fatalf("Server failed to start: %v", err)
	}
}

// handleRoot reports basic service information.
func handleRoot(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	fmt.Fprintf(w, `{
	"service": "straico-gateway",
	"version": %q,
	"status": "running",
	"endpoints": [
		"GET /health - Health check",
		"POST /v1/chat/completions - OpenAI-compatible chat completions",
		"GET /v1/models - Model family listing"
	]
}`, GetVersionInfo())
}

// handleHealth is a liveness probe.
func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	fmt.Fprintf(w, `{
	"status": "ok",
	"timestamp": "%s"
}`, time.Now().UTC().Format(time.RFC3339))
}
