package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"gagyebu/internal/api"
	"gagyebu/internal/api/handlers"
	"gagyebu/internal/repository"
	"gagyebu/internal/service"
	"gagyebu/pkg/config"
	"gagyebu/pkg/logger"
	"gagyebu/pkg/postgres"

	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(cfg.Logger.Level); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	appLogger := logger.Get()
	appLogger.Info("Starting gagyebu service")

	ctx := context.Background()
	db, err := postgres.NewPool(ctx, &cfg.Database, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	// Repositories
	txRepo := repository.NewTransactionRepository(db, appLogger)
	categoryRepo := repository.NewCategoryRepository(db, appLogger)

	// Services. The vision client is constructed once here and injected, so
	// there is no lazily-initialized process-wide API handle.
	fileService := service.NewFileService(&cfg.Upload, appLogger)
	visionService := service.NewVisionService(&cfg.OpenAI, appLogger)
	ocrService := service.NewOCRService(visionService, fileService, &cfg.OpenAI, appLogger)
	receiptService := service.NewReceiptService(fileService, ocrService, categoryRepo, txRepo, appLogger)
	txService := service.NewTransactionService(txRepo, categoryRepo, appLogger)
	categoryService := service.NewCategoryService(categoryRepo, txRepo, appLogger)
	statsService := service.NewStatisticsService(txRepo, appLogger)

	// Handlers
	receiptHandler := handlers.NewReceiptHandler(receiptService, appLogger)
	txHandler := handlers.NewTransactionHandler(txService, appLogger)
	categoryHandler := handlers.NewCategoryHandler(categoryService, appLogger)
	statsHandler := handlers.NewStatisticsHandler(statsService, appLogger)

	app := api.SetupRouter(cfg, receiptHandler, txHandler, categoryHandler, statsHandler)

	go func() {
		addr := ":" + cfg.Server.Port
		appLogger.Info("Server starting", zap.String("address", addr))
		if err := app.Listen(addr); err != nil {
			appLogger.Fatal("Server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server")
	if err := app.Shutdown(); err != nil {
		appLogger.Error("Server shutdown error", zap.Error(err))
	}
}
