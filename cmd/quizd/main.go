package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"songquiz/internal/cache"
	"songquiz/internal/config"
	"songquiz/internal/logger"
	"songquiz/internal/pipeline"
	"songquiz/internal/web"
)

func main() {
	var (
		port       int
		configPath string
		verbose    bool
	)

	flag.IntVar(&port, "port", 0, "HTTP server port (overrides config)")
	flag.StringVar(&configPath, "config", "", "Config file path")
	flag.BoolVar(&verbose, "verbose", false, "Verbose logging")
	flag.Parse()

	cfg, err := config.LoadConfigFile(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}
	if port != 0 {
		cfg.Port = port
	}
	if verbose {
		cfg.Verbose = true
	}

	// Setup logger with file logging
	l := logger.New(cfg.Verbose)
	logDir := config.GetDefaultLogPath()
	if err := os.MkdirAll(logDir, 0755); err == nil {
		logPath := filepath.Join(logDir, fmt.Sprintf("quizd-%d.log", time.Now().Unix()))
		if err := l.SetFileLog(logPath); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: Failed to setup file logging: %v\n", err)
		}
	}
	defer l.Close()

	if err := cfg.Validate(); err != nil {
		l.Error("Configuration error: %v", err)
		os.Exit(1)
	}

	builder, err := pipeline.FromConfig(cfg, l)
	if err != nil {
		l.Error("%v", err)
		os.Exit(1)
	}

	jobMgr := web.NewJobManager()
	server := web.NewServer(builder, jobMgr, cache.New(cache.DefaultTTL), l)

	cleanupCtx, stopCleanup := context.WithCancel(context.Background())
	defer stopCleanup()
	jobMgr.StartCleanup(cleanupCtx)

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      server.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 90 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in background
	go func() {
		l.Info("Starting quiz server on port %d", cfg.Port)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			l.Error("Server error: %v", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	l.Info("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		l.Error("Server shutdown error: %v", err)
	}

	l.Info("Server stopped")
}
