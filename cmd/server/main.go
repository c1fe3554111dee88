package main

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	json "github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/alutech/weather-service/internal/api"
	"github.com/alutech/weather-service/internal/config"
	"github.com/alutech/weather-service/internal/history"
	"github.com/alutech/weather-service/internal/services"
	"github.com/alutech/weather-service/pkg/client"
)

func main() {
	// Initialize logger
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	zap.ReplaceGlobals(logger)
	logger.Info("Starting weather lookup service")

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatal("Failed to load configuration", zap.Error(err))
	}

	clientConfig := client.ClientConfig{
		Timeout:        cfg.HTTPClient.Timeout,
		MaxRetries:     cfg.Retry.MaxRetries,
		RetryDelay:     cfg.Retry.Delay,
		Multiplier:     cfg.Retry.Multiplier,
		Threshold:      cfg.CircuitBreaker.Threshold,
		BreakerTimeout: cfg.CircuitBreaker.Timeout,
	}

	// Provider clients
	meteomatics := client.NewMeteomaticsClient(
		cfg.Meteomatics.BaseURL,
		cfg.Meteomatics.Username,
		cfg.Meteomatics.Password,
		clientConfig,
		logger,
	)
	openMeteo := client.NewOpenMeteoClient(
		cfg.OpenMeteo.BaseURL,
		cfg.OpenMeteo.GeocodingURL,
		clientConfig,
		logger,
	)
	nominatim := client.NewNominatimClient(
		cfg.Nominatim.BaseURL,
		cfg.Nominatim.UserAgent,
		clientConfig,
		logger,
	)

	// Search history store
	if err := os.MkdirAll(filepath.Dir(cfg.History.Path), 0o755); err != nil {
		logger.Fatal("Failed to create history directory", zap.Error(err))
	}
	historyStore, err := history.Open(cfg.History.Path, logger)
	if err != nil {
		logger.Fatal("Failed to open history store", zap.Error(err))
	}
	defer historyStore.Close()

	service := services.NewService(meteomatics, openMeteo, openMeteo, openMeteo, nominatim, historyStore, logger)
	suggester := services.NewSuggester(openMeteo, cfg.Suggest.Debounce, cfg.Suggest.Limit, logger)

	// Create Fiber app
	app := fiber.New(fiber.Config{
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		JSONEncoder:  json.Marshal,
		JSONDecoder:  json.Unmarshal,
		ErrorHandler: errorHandler,
	})

	// Setup handlers and routes
	handler := api.NewHandler(service, suggester, logger)
	api.SetupRoutes(app, handler, logger)

	// Start server in goroutine
	go func() {
		addr := ":" + cfg.Server.Port
		logger.Info("Starting server", zap.String("address", addr))

		if err := app.Listen(addr); err != nil {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		logger.Error("Server shutdown failed", zap.Error(err))
	}

	logger.Info("Server stopped")
}

func errorHandler(c *fiber.Ctx, err error) error {
	zap.L().Error("HTTP error",
		zap.String("method", c.Method()),
		zap.String("path", c.Path()),
		zap.Error(err))

	code := fiber.StatusInternalServerError
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
	}

	return c.Status(code).JSON(fiber.Map{
		"error":   err.Error(),
		"success": false,
	})
}
