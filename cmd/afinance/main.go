package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"afinance/internal/amqp"
	"afinance/internal/bot"
	"afinance/internal/category"
	"afinance/internal/config"
	"afinance/internal/ledger"
	"afinance/internal/report"
	"afinance/internal/storage"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	logger.Info("Starting afinance bot")

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}

	rules, err := cfg.LoadRules()
	if err != nil {
		logger.Error("Failed to load classification rules", "error", err, "file", cfg.RulesFile)
		os.Exit(1)
	}
	classifier := category.New(rules.Expense, rules.Income)

	// A limit on a category the classifier can never produce will never
	// fire; flag it early.
	known := make(map[string]bool)
	for _, cat := range classifier.ExpenseCategories() {
		known[cat] = true
	}
	for cat := range cfg.CategoryLimits {
		if !known[cat] {
			logger.Warn("Category limit references a category outside the expense taxonomy", "category", cat)
		}
	}

	store, err := storage.New(cfg.SQLiteDBPath, cfg.Location, cfg.InvestmentCategory)
	if err != nil {
		logger.Error("Failed to initialize SQLite store", "error", err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer store.Close()

	// AMQP is optional: without it expenses are still recorded, only the
	// instant category alerts fall back to the daily sweep.
	var events *amqp.Client
	if cfg.AMQPURL != "" {
		events, err = amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Warn("Failed to initialize AMQP client, continuing without expense events", "error", err)
			events = nil
		} else {
			defer events.Close()
			logger.Info("AMQP client initialized", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
		}
	} else {
		logger.Info("AMQP disabled - no AMQP_URL provided")
	}

	service := ledger.NewService(store, classifier, events, cfg.AutoInvestCents, cfg.InvestmentCategory)
	reports := report.NewEngine(store, cfg.InvestmentCategory)

	tgBot, err := bot.New(cfg.BotToken, service, reports, cfg.Location)
	if err != nil {
		logger.Error("Failed to initialize Telegram bot", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("Shutdown signal received", "signal", sig.String())
		cancel()
	}()

	tgBot.Start(ctx)
	logger.Info("Bot stopped gracefully")
}
