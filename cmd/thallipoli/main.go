package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"thallipoli/internal/api"
	"thallipoli/internal/assistant"
	"thallipoli/internal/config"
	"thallipoli/internal/feed"
	"thallipoli/internal/kitchen"
	"thallipoli/internal/logging"
	"thallipoli/internal/monitoring"
	"thallipoli/internal/store"
)

var (
	port        = flag.Int("port", 0, "API server port (overrides config)")
	metricsPort = flag.Int("metrics-port", 0, "Metrics server port (overrides config, -1 disables)")
	configFile  = flag.String("config", "configs/config.yaml", "Path to configuration file")
	envFile     = flag.String("env", ".env", "Path to .env file")
)

func main() {
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configFile, *envFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	if *port != 0 {
		cfg.Server.Port = *port
	}
	if *metricsPort != 0 {
		cfg.Server.MetricsPort = *metricsPort
	}

	logger, closer, err := logging.New(logging.Options{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer closer.Close()

	if err := run(cfg, logger); err != nil {
		logger.WithError(err).Fatal("thallipoli stopped")
	}
}

func run(cfg *config.Config, logger *logrus.Logger) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	gin.SetMode(cfg.Server.Mode)

	// Initialize store
	st, err := openStore(cfg, logger)
	if err != nil {
		return err
	}
	defer st.Close()

	seed := store.DefaultSeed()
	seed.Funds.OperatingFunds = cfg.Kitchen.InitialFunds
	if cfg.Database.Seed {
		seeded, err := st.Seed(ctx, seed)
		if err != nil {
			return fmt.Errorf("failed to seed store: %w", err)
		}
		if seeded {
			logger.Info("store seeded with default inventory and menu")
		}
	}

	monitor := monitoring.NewMonitor()
	hub := feed.NewHub(logger)
	defer hub.Close()

	engine := kitchen.New(st,
		kitchen.WithLogger(logger),
		kitchen.WithRecorder(monitor),
		kitchen.WithObserver(hub),
		kitchen.WithResolver(resolver(cfg.Kitchen.Resolver)),
		kitchen.WithAddonSurcharge(cfg.Kitchen.AddonSurcharge),
		kitchen.WithLowFundsMark(cfg.Kitchen.LowFundsMark),
	)
	if status, err := engine.FinancialStatus(ctx); err == nil {
		monitor.SetFunds(status.OperatingFunds)
		monitor.SetLowStock(status.LowStockCount)
	}

	// Initialize assistant
	var chat *assistant.Service
	if cfg.Assistant.Enabled {
		model, err := assistant.NewModel(assistant.ProviderConfig{
			Provider:   cfg.Assistant.Provider,
			Model:      cfg.Assistant.Model,
			APIKey:     cfg.Assistant.APIKey,
			BaseURL:    cfg.Assistant.BaseURL,
			APIVersion: cfg.Assistant.APIVersion,
		})
		if err != nil {
			return fmt.Errorf("failed to initialize assistant: %w", err)
		}
		chat = assistant.New(engine, model,
			assistant.WithLogger(logger),
			assistant.WithRecorder(monitor),
			assistant.WithTemperature(cfg.Assistant.Temperature),
			assistant.WithMaxHistory(cfg.Assistant.MaxHistory),
		)
		logger.WithFields(logrus.Fields{
			"provider": cfg.Assistant.Provider,
			"model":    cfg.Assistant.Model,
		}).Info("assistant enabled")
	}

	// Initialize API server
	kitchenAPI := api.NewKitchenAPI(api.Config{
		Engine:    engine,
		Assistant: chat,
		Hub:       hub,
		Monitor:   monitor,
		Logger:    logger,
		Seed:      seed,
	})

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           kitchenAPI.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	var metricsServer *http.Server
	if cfg.Server.MetricsPort > 0 {
		metricsServer = startMetricsServer(cfg.Server.MetricsPort, monitor, logger)
	}

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		select {
		case <-sigChan:
		case <-ctx.Done():
			return
		}

		logger.Info("Shutting down servers...")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.WithError(err).Error("API server shutdown error")
		}
		if metricsServer != nil {
			if err := metricsServer.Shutdown(shutdownCtx); err != nil {
				logger.WithError(err).Error("metrics server shutdown error")
			}
		}
	}()

	logger.WithField("port", cfg.Server.Port).Info("Starting API server")
	if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("API server error: %w", err)
	}
	return nil
}

func openStore(cfg *config.Config, logger *logrus.Logger) (store.Store, error) {
	if cfg.Database.Driver == "memory" {
		logger.Warn("using the in-memory store, state is lost on exit")
		return store.NewMemoryStore(), nil
	}
	st, err := store.OpenGorm(cfg.Database.Driver, cfg.Database.DSN, logger.WithField("component", "store"), cfg.Database.Debug)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	return st, nil
}

func resolver(name string) kitchen.IngredientResolver {
	if name == "id" {
		return kitchen.IDResolver{}
	}
	return kitchen.SubstringResolver{}
}

func startMetricsServer(port int, monitor *monitoring.Monitor, logger *logrus.Logger) *http.Server {
	metricsRouter := gin.New()
	metricsRouter.Use(gin.Recovery())
	metricsRouter.GET("/metrics", gin.WrapH(monitor.Handler()))
	metricsRouter.GET("/snapshot", func(c *gin.Context) {
		c.JSON(http.StatusOK, monitor.GetMetrics())
	})

	metricsServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           metricsRouter,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.WithField("port", port).Info("Starting metrics server")
		if err := metricsServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Error("metrics server error")
		}
	}()
	return metricsServer
}
