package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"streammeter/config"
	"streammeter/internal/api"
	"streammeter/internal/core"
	"streammeter/internal/logging"
	"streammeter/internal/publisher"
	"streammeter/internal/scheduler"
	"streammeter/internal/storage/sqlite"
)

const (
	shutdownTimeout   = 10 * time.Second
	defaultConfigPath = "config.json"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Application error: %v", err)
	}
}

func run() error {
	// Parse command-line flags
	configPath := flag.String("config", defaultConfigPath, "Path to configuration file")
	useEnv := flag.Bool("env", false, "Load configuration from environment variables")
	flag.Parse()

	// Load configuration
	var cfg *config.Config
	var err error

	if *useEnv {
		cfg, err = config.LoadFromEnv()
	} else {
		cfg, err = config.Load(*configPath)
	}

	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger := logging.NewLogger(logging.LoggerConfig{
		Format: cfg.Logging.Format,
		Level:  logging.ParseLevel(cfg.Logging.Level),
	})
	slog.SetDefault(logger)

	// Initialize publish audit store
	logger.Info("Initializing publish audit store", "path", cfg.Database.Path)
	db, err := sqlite.New(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer db.Close()

	// Initialize publisher
	initCtx, initCancel := context.WithCancel(context.Background())
	defer initCancel()

	var pub publisher.Publisher
	switch cfg.Publisher.Type {
	case "log":
		logger.Info("Using log publisher")
		pub = publisher.NewLog(logger)
	default:
		logger.Info("Using Redis stream publisher",
			"addr", cfg.Publisher.RedisAddr,
			"stream", cfg.Publisher.RedisStream)
		redisPub := publisher.NewRedis(publisher.RedisConfig{
			Addr:     cfg.Publisher.RedisAddr,
			Password: cfg.Publisher.RedisPassword,
			DB:       cfg.Publisher.RedisDB,
			Stream:   cfg.Publisher.RedisStream,
		}, logger)
		go func() {
			if err := redisPub.Init(initCtx); err != nil {
				logger.Error("Publisher initialization aborted", "error", err)
			}
		}()
		pub = redisPub
	}
	defer pub.Close()

	// Initialize accounting engine
	registry := core.NewRegistry()
	ledger := core.NewLedger()
	manager := core.NewSessionManager(registry, ledger, pub, cfg.Metering.PricePerSecond, logger)

	// Start aggregation cycle and reaper
	logger.Info("Starting aggregation cycle")
	aggregator := scheduler.NewAggregator(registry, ledger, pub, db, cfg.Metering.TickInterval(), logger)
	go aggregator.Start()

	logger.Info("Starting stale session reaper")
	reaper := scheduler.NewReaper(registry, cfg.Metering.MaxSessionDuration(), cfg.Metering.ReaperInterval(), logger)
	go reaper.Start()

	// Initialize REST API
	router := api.NewRouter(api.RouterConfig{
		Manager: manager,
		Health:  manager,
		Ledger:  ledger,
		Store:   db,
		Logger:  logger,
	})

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("Starting HTTP server", "addr", server.Addr)
		serverErrors <- server.ListenAndServe()
	}()

	// Wait for interrupt signal or server error
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)

	case sig := <-shutdown:
		logger.Info("Starting graceful shutdown", "signal", sig.String())

		// Stop periodic cycles before the HTTP surface so no tick runs
		// against a half-shutdown process
		aggregator.Stop()
		reaper.Stop()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown error: %w", err)
		}

		logger.Info("Graceful shutdown complete")
	}

	return nil
}
