package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/tidechat/answerd/internal/adapter/llm"
	"github.com/tidechat/answerd/internal/adapter/search"
	"github.com/tidechat/answerd/internal/config"
	"github.com/tidechat/answerd/internal/retrieval"
	"github.com/tidechat/answerd/internal/service"
	"github.com/tidechat/answerd/internal/store"
	transport "github.com/tidechat/answerd/internal/transport/http"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("failed to load configuration")
	}

	if level, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		logrus.SetLevel(level)
	}
	log := logrus.WithField("component", "main")

	log.WithFields(logrus.Fields{
		"http_port":  cfg.HTTPPort,
		"database":   cfg.DatabaseURL,
		"search_url": cfg.SearchURL,
		"llm_url":    cfg.LLMBaseURL,
	}).Info("starting answerd")

	// Initialize store
	db, err := store.NewSQLiteStore(cfg.DatabaseURL)
	if err != nil {
		log.WithError(err).Fatal("failed to initialize store")
	}
	defer db.Close()

	// Initialize remote service clients
	searchClient := search.NewClient(cfg.SearchURL, cfg.SearchTimeout)
	llmClient := llm.NewClient(cfg.LLMBaseURL, cfg.GenerationTimeout)

	// Initialize retriever and service
	retriever := retrieval.New(searchClient)
	svc := service.New(db, retriever, llmClient, cfg)

	// Create the HTTP server
	server := transport.NewServer(svc)

	go func() {
		addr := fmt.Sprintf(":%d", cfg.HTTPPort)
		if err := server.Start(addr); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Fatal("failed to start server")
		}
	}()
	log.WithField("port", cfg.HTTPPort).Info("answer API started")

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down answerd")

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("failed to shutdown server gracefully")
	}

	log.Info("answerd stopped")
}
