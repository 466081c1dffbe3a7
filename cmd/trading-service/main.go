package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"golang-futures-bot/internal/trading/config"
	delivery "golang-futures-bot/internal/trading/delivery/telegram"
	"golang-futures-bot/internal/trading/repository"
	"golang-futures-bot/internal/trading/service"
	"golang-futures-bot/pkg/logger"
	"golang-futures-bot/pkg/telegram"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var configPath string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Starts the trading service",
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

	appLogger.Info("Starting Trading Service", zap.String("name", cfg.App.Name))

	// Initialize Telegram client
	telegramClient, err := telegram.NewClient(cfg.Telegram.BotToken, cfg.Telegram.PrimaryChatID)
	if err != nil {
		appLogger.Fatal("Failed to initialize Telegram client", logger.ErrorField(err))
	}

	// Initialize repositories
	accountRepo := repository.NewMemoryAccountRepository(cfg.Trading.InitialBalance)
	binanceRepo, err := repository.NewBinanceRepository(cfg.Binance, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to initialize Binance repository", logger.ErrorField(err))
	}

	// Initialize services
	accountingSvc := service.NewAccountingService(accountRepo, appLogger)
	monitor := service.NewAutoCloseMonitor(accountRepo, binanceRepo, accountingSvc, telegramClient, appLogger, cfg.Trading.SweepInterval)
	if err := monitor.Start(ctx); err != nil {
		appLogger.Fatal("Failed to start auto-close monitor", logger.ErrorField(err))
	}

	// Start the bot update loop
	botHandler := delivery.NewBotHandler(telegramClient, accountRepo, binanceRepo, accountingSvc, appLogger)
	go botHandler.Run(ctx)

	appLogger.Info("Trading service started. Waiting for updates...")

	<-ctx.Done()

	appLogger.Info("Shutting down trading service...")
	monitor.Stop()
	appLogger.Info("Trading service stopped.")
}

func main() {
	rootCmd := &cobra.Command{Use: "trading-service"}

	serveCmd.Flags().StringVarP(&configPath, "config", "c", "configs/config-trading.yaml", "Path to the configuration file")

	rootCmd.AddCommand(serveCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error executing trading-service CLI: %s\n", err)
		os.Exit(1)
	}
}
