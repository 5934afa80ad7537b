package main

import (
	"context"
	"errors"
	"log"
	"time"

	"gagyebu/internal/models"
	"gagyebu/internal/repository"
	"gagyebu/pkg/config"
	"gagyebu/pkg/logger"
	"gagyebu/pkg/postgres"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// defaultCategories is the starter taxonomy for a fresh database.
var defaultCategories = []models.Category{
	{Name: "식비", Type: models.TypeExpense, Color: "#FF6B6B", Icon: "restaurant"},
	{Name: "교통비", Type: models.TypeExpense, Color: "#4ECDC4", Icon: "directions_transit"},
	{Name: "쇼핑", Type: models.TypeExpense, Color: "#FFE66D", Icon: "shopping_bag"},
	{Name: "의료비", Type: models.TypeExpense, Color: "#95E1D3", Icon: "local_hospital"},
	{Name: "교육비", Type: models.TypeExpense, Color: "#AA96DA", Icon: "school"},
	{Name: "통신비", Type: models.TypeExpense, Color: "#A8E6CF", Icon: "phone"},
	{Name: "주거비", Type: models.TypeExpense, Color: "#FFD3A5", Icon: "home"},
	{Name: "문화생활", Type: models.TypeExpense, Color: "#C7CEEA", Icon: "movie"},
	{Name: "기타", Type: models.TypeExpense, Color: "#D4D4D4", Icon: "more_horiz"},
	{Name: "급여", Type: models.TypeIncome, Color: "#4ECDC4", Icon: "account_balance"},
	{Name: "부수입", Type: models.TypeIncome, Color: "#95E1D3", Icon: "attach_money"},
	{Name: "투자수익", Type: models.TypeIncome, Color: "#AA96DA", Icon: "trending_up"},
	{Name: "기타수입", Type: models.TypeIncome, Color: "#A8E6CF", Icon: "add_circle"},
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := logger.Init(cfg.Logger.Level); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()
	appLogger := logger.Get()

	ctx := context.Background()
	db, err := postgres.NewPool(ctx, &cfg.Database, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	categoryRepo := repository.NewCategoryRepository(db, appLogger)

	appLogger.Info("Seeding default categories")

	var added, skipped int
	for _, cat := range defaultCategories {
		_, err := categoryRepo.GetByName(ctx, cat.Name)
		if err == nil {
			appLogger.Info("Category already exists, skipping", zap.String("name", cat.Name))
			skipped++
			continue
		}
		if !errors.Is(err, repository.ErrNotFound) {
			appLogger.Fatal("Failed to check category", zap.String("name", cat.Name), zap.Error(err))
		}

		cat.ID = uuid.New()
		cat.CreatedAt = time.Now().UTC()
		if err := categoryRepo.Create(ctx, &cat); err != nil {
			appLogger.Fatal("Failed to create category", zap.String("name", cat.Name), zap.Error(err))
		}

		appLogger.Info("Category added", zap.String("name", cat.Name))
		added++
	}

	appLogger.Info("Seeding completed",
		zap.Int("added", added),
		zap.Int("skipped", skipped),
	)
}
