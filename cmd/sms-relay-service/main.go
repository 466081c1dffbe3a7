package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"golang-futures-bot/internal/smsrelay/config"
	deliveryHTTP "golang-futures-bot/internal/smsrelay/delivery/http"
	delivery "golang-futures-bot/internal/smsrelay/delivery/telegram"
	"golang-futures-bot/internal/smsrelay/repository"
	"golang-futures-bot/internal/smsrelay/service"
	"golang-futures-bot/pkg/logger"
	redisPkg "golang-futures-bot/pkg/redis"
	"golang-futures-bot/pkg/telegram"

	"github.com/labstack/echo/v4"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var configPath string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Starts the SMS relay service",
	Run:   runServe,
}

func runServe(cmd *cobra.Command, args []string) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load configuration
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	appLogger, err := logger.New(cfg.Logger.Level, cfg.Logger.Encoding)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() { _ = appLogger.Sync() }()

	appLogger.Info("Starting SMS Relay Service", zap.String("name", cfg.App.Name))

	// Initialize Telegram client
	telegramClient, err := telegram.NewClient(cfg.Telegram.BotToken, cfg.Telegram.PrimaryChatID)
	if err != nil {
		appLogger.Fatal("Failed to initialize Telegram client", logger.ErrorField(err))
	}

	// Initialize repositories
	smsRepo, err := repository.NewSmsAPIRepository(cfg.SmsAPI)
	if err != nil {
		appLogger.Fatal("Failed to initialize SMS API repository", logger.ErrorField(err))
	}

	var seenRepo repository.SeenMessageRepository
	switch cfg.Relay.SeenStore {
	case "redis":
		redisClient, err := redisPkg.NewClient(redisPkg.Config{
			Host:     cfg.Redis.Host,
			Port:     cfg.Redis.Port,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			PoolSize: cfg.Redis.PoolSize,
		})
		if err != nil {
			appLogger.Fatal("Failed to initialize Redis", logger.ErrorField(err))
		}
		defer redisClient.Close()
		seenRepo, err = repository.NewRedisSeenRepository(ctx, redisClient)
		if err != nil {
			appLogger.Fatal("Failed to initialize Redis seen store", logger.ErrorField(err))
		}
	default:
		seenRepo, err = repository.NewFileSeenRepository(cfg.Relay.SeenFile)
		if err != nil {
			appLogger.Fatal("Failed to initialize seen store", logger.ErrorField(err))
		}
	}

	primary := strconv.FormatInt(cfg.Telegram.PrimaryChatID, 10)
	destinationRepo, err := repository.NewFileDestinationRepository(cfg.Relay.DestinationsFile, primary)
	if err != nil {
		appLogger.Fatal("Failed to initialize destination registry", logger.ErrorField(err))
	}

	// Initialize services
	forwardDelay, err := time.ParseDuration(cfg.Relay.ForwardDelay)
	if err != nil {
		appLogger.Fatal("Invalid forward delay", logger.ErrorField(err))
	}
	relaySvc := service.NewRelayService(smsRepo, seenRepo, destinationRepo, telegramClient, appLogger, cfg.SmsAPI.Records, cfg.Relay.PollInterval, forwardDelay)
	if err := relaySvc.Start(ctx); err != nil {
		appLogger.Fatal("Failed to start relay", logger.ErrorField(err))
	}

	// Start the admin bot update loop
	adminHandler := delivery.NewAdminHandler(telegramClient, relaySvc, destinationRepo, appLogger, cfg.Telegram.PrimaryChatID)
	go adminHandler.Run(ctx)

	// Initialize Echo server
	e := echo.New()
	e.HideBanner = true

	statusHandler := deliveryHTTP.NewStatusHandler(relaySvc, destinationRepo, appLogger)
	statusHandler.RegisterRoutes(e)

	go func() {
		addr := fmt.Sprintf(":%d", cfg.API.Port)
		appLogger.Info("HTTP server starting", logger.Field("address", addr))
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			appLogger.Error("HTTP server failed to start", logger.ErrorField(err))
			stop()
		}
	}()

	appLogger.Info("SMS relay service started. Polling...")

	<-ctx.Done()

	appLogger.Info("Shutting down SMS relay service...")
	relaySvc.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		appLogger.Fatal("Server forced to shutdown", logger.ErrorField(err))
	}

	appLogger.Info("SMS relay service stopped.")
}

func main() {
	rootCmd := &cobra.Command{Use: "sms-relay-service"}

	serveCmd.Flags().StringVarP(&configPath, "config", "c", "configs/config-sms-relay.yaml", "Path to the configuration file")

	rootCmd.AddCommand(serveCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error executing sms-relay-service CLI: %s\n", err)
		os.Exit(1)
	}
}
