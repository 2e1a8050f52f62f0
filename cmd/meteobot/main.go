package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"

	"github.com/meteobot/meteobot/internal/bot"
	"github.com/meteobot/meteobot/internal/config"
	"github.com/meteobot/meteobot/internal/forecast"
	"github.com/meteobot/meteobot/internal/openmeteo"
	"github.com/meteobot/meteobot/internal/presenter"
	"github.com/meteobot/meteobot/internal/registry"
)

func main() {
	// Load configuration. A missing bot token is fatal: without it the
	// process cannot serve a single request.
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	zlog, err := newLogger(cfg.Debug)
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer zlog.Sync()

	// Shared HTTP client for outbound provider calls. Its timeout is the
	// only bound on how long a single fetch may block.
	httpClient := &http.Client{
		Timeout: cfg.HTTPTimeout,
	}

	reg := registry.Default()
	fetcher := openmeteo.NewClient(httpClient, cfg.OpenMeteoBaseURL)
	aggregator := forecast.NewAggregator(reg, fetcher, zlog)
	pres := presenter.New(cfg.TextLimit, cfg.PreviewRows)

	api, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		zlog.Fatal("failed to connect to telegram", zap.Error(err))
	}
	api.Debug = cfg.Debug
	zlog.Info("authorized on telegram", zap.String("username", api.Self.UserName))

	handler := bot.NewHandler(api, reg, aggregator, pres, zlog)

	// Operational health endpoint, served alongside the bot.
	app := fiber.New(fiber.Config{
		AppName:               "meteobot",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          10 * time.Second,
	})
	app.Use(logger.New())
	app.Use(recover.New())
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": "meteobot",
		})
	})

	go func() {
		if err := app.Listen(":" + cfg.HealthPort); err != nil {
			zlog.Warn("health server stopped", zap.Error(err))
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	updateCfg := tgbotapi.NewUpdate(0)
	updateCfg.Timeout = 60
	updates := api.GetUpdatesChan(updateCfg)

	go handler.Run(ctx, updates)

	<-ctx.Done()
	api.StopReceivingUpdates()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		zlog.Error("error during shutdown", zap.Error(err))
	}
}

func newLogger(debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
