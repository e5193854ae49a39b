package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"

	"github.com/thilak-404/AGENTICEYE-M4/internal/analysis"
	"github.com/thilak-404/AGENTICEYE-M4/internal/api"
	"github.com/thilak-404/AGENTICEYE-M4/internal/config"
	"github.com/thilak-404/AGENTICEYE-M4/internal/logging"
	"github.com/thilak-404/AGENTICEYE-M4/internal/notifications"
	"github.com/thilak-404/AGENTICEYE-M4/internal/scheduler"
	"github.com/thilak-404/AGENTICEYE-M4/internal/storage"
)

func main() {
	// Load environment variables from .env file if it exists
	if err := godotenv.Load(); err != nil {
		logrus.Info("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logFile, err := logging.Setup(logging.Options{
		Debug:      cfg.Debug,
		JSON:       true,
		File:       cfg.LogFile,
		MaxSizeMB:  cfg.LogMaxSizeMB,
		MaxBackups: cfg.LogMaxBackups,
		MaxAgeDays: cfg.LogMaxAgeDays,
	})
	if err != nil {
		log.Fatalf("Failed to set up logging: %v", err)
	}
	defer logFile.Close()

	logrus.Info("Starting ViralEdge")

	archive, err := openArchive(cfg)
	if err != nil {
		logrus.Fatalf("Failed to initialize storage: %v", err)
	}

	var events *notifications.TrendEvents
	if cfg.NATSURL != "" {
		conn, err := notifications.ConnectNATS(cfg.NATSURL)
		if err != nil {
			logrus.Fatalf("Failed to connect to NATS: %v", err)
		}
		defer conn.Drain()
		events = notifications.NewTrendEvents(conn, cfg.NATSSubject)
	}

	analysisService, err := analysis.NewService(cfg, archive,
		analysis.WithMetrics(analysis.NewMetrics(prometheus.DefaultRegisterer)))
	if err != nil {
		logrus.Fatalf("Failed to initialize analysis service: %v", err)
	}

	notificationService := notifications.NewService(cfg, events)

	schedulerService := scheduler.NewService(cfg, analysisService, notificationService, archive)
	if err := schedulerService.Start(); err != nil {
		logrus.Fatalf("Failed to start scheduler: %v", err)
	}
	defer schedulerService.Stop()

	apiServer := api.NewServer(analysisService, archive, prometheus.DefaultGatherer)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      apiServer.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.CommentFetchTimeout + cfg.SearchTimeout + cfg.GenerationTimeout + 30*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logrus.Infof("HTTP server starting on port %s", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.Fatalf("HTTP server failed: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logrus.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logrus.Errorf("Server forced to shutdown: %v", err)
	}

	logrus.Info("Server exited")
}

// openArchive prefers Azure Blob Storage, then a local directory. Nil disables archival.
func openArchive(cfg *config.Config) (storage.StorageInterface, error) {
	switch {
	case cfg.StorageAccount != "":
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return storage.NewAzureStorage(ctx, cfg.StorageAccount, cfg.StorageContainer)
	case cfg.ReportDir != "":
		return storage.NewFileStorage(cfg.ReportDir)
	default:
		logrus.Info("No report archive configured, reports will not be stored")
		return nil, nil
	}
}
