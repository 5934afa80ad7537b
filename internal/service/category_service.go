package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gagyebu/internal/dto"
	"gagyebu/internal/models"
	"gagyebu/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// categoryStore is the repository surface the category service needs.
type categoryStore interface {
	Create(ctx context.Context, cat *models.Category) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Category, error)
	GetByName(ctx context.Context, name string) (*models.Category, error)
	List(ctx context.Context, categoryType string) ([]*models.Category, error)
	Update(ctx context.Context, cat *models.Category) error
	Delete(ctx context.Context, id uuid.UUID) error
	NameExists(ctx context.Context, name string, excludeID uuid.UUID) (bool, error)
}

// categoryUsageCounter counts transactions referencing a category name.
type categoryUsageCounter interface {
	CountByCategory(ctx context.Context, name string) (int64, error)
}

type CategoryService struct {
	categories   categoryStore
	transactions categoryUsageCounter
	logger       *zap.Logger
}

func NewCategoryService(categories categoryStore, transactions categoryUsageCounter, logger *zap.Logger) *CategoryService {
	return &CategoryService{
		categories:   categories,
		transactions: transactions,
		logger:       logger,
	}
}

func (s *CategoryService) List(ctx context.Context, categoryType string) (*dto.CategoryListResponse, error) {
	if categoryType != "" && !models.ValidTransactionType(categoryType) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidType, categoryType)
	}

	categories, err := s.categories.List(ctx, categoryType)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}

	items := make([]dto.CategoryResponse, len(categories))
	for i, cat := range categories {
		items[i] = toCategoryResponse(cat)
	}

	return &dto.CategoryListResponse{
		Items: items,
		Total: len(items),
	}, nil
}

func (s *CategoryService) Create(ctx context.Context, req dto.CategoryCreateRequest) (*dto.CategoryResponse, error) {
	if req.Name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrEmptyUpdate)
	}
	if !models.ValidTransactionType(req.Type) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidType, req.Type)
	}

	exists, err := s.categories.NameExists(ctx, req.Name, uuid.Nil)
	if err != nil {
		return nil, fmt.Errorf("failed to check category name: %w", err)
	}
	if exists {
		return nil, fmt.Errorf("%w: %q", ErrDuplicateCategory, req.Name)
	}

	cat := &models.Category{
		ID:        uuid.New(),
		Name:      req.Name,
		Type:      models.TransactionType(req.Type),
		Color:     req.Color,
		Icon:      req.Icon,
		CreatedAt: time.Now().UTC(),
	}

	if err := s.categories.Create(ctx, cat); err != nil {
		return nil, fmt.Errorf("failed to create category: %w", err)
	}

	resp := toCategoryResponse(cat)
	return &resp, nil
}

func (s *CategoryService) Get(ctx context.Context, id uuid.UUID) (*dto.CategoryResponse, error) {
	cat, err := s.categories.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get category: %w", err)
	}

	resp := toCategoryResponse(cat)
	return &resp, nil
}

func (s *CategoryService) Update(ctx context.Context, id uuid.UUID, req dto.CategoryUpdateRequest) (*dto.CategoryResponse, error) {
	cat, err := s.categories.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get category: %w", err)
	}

	if req.Name == nil && req.Type == nil && req.Color == nil && req.Icon == nil {
		return nil, ErrEmptyUpdate
	}

	if req.Name != nil {
		exists, err := s.categories.NameExists(ctx, *req.Name, id)
		if err != nil {
			return nil, fmt.Errorf("failed to check category name: %w", err)
		}
		if exists {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateCategory, *req.Name)
		}
		cat.Name = *req.Name
	}
	if req.Type != nil {
		if !models.ValidTransactionType(*req.Type) {
			return nil, fmt.Errorf("%w: %q", ErrInvalidType, *req.Type)
		}
		cat.Type = models.TransactionType(*req.Type)
	}
	if req.Color != nil {
		cat.Color = *req.Color
	}
	if req.Icon != nil {
		cat.Icon = *req.Icon
	}

	if err := s.categories.Update(ctx, cat); err != nil {
		return nil, fmt.Errorf("failed to update category: %w", err)
	}

	resp := toCategoryResponse(cat)
	return &resp, nil
}

// Delete removes a category unless any transaction still references its
// name.
func (s *CategoryService) Delete(ctx context.Context, id uuid.UUID) error {
	cat, err := s.categories.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to get category: %w", err)
	}

	usage, err := s.transactions.CountByCategory(ctx, cat.Name)
	if err != nil {
		return fmt.Errorf("failed to count category usage: %w", err)
	}
	if usage > 0 {
		return fmt.Errorf("%w: %q is used by %d transaction(s)", ErrCategoryInUse, cat.Name, usage)
	}

	if err := s.categories.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete category: %w", err)
	}

	return nil
}

func toCategoryResponse(cat *models.Category) dto.CategoryResponse {
	return dto.CategoryResponse{
		ID:        cat.ID.String(),
		Name:      cat.Name,
		Type:      string(cat.Type),
		Color:     cat.Color,
		Icon:      cat.Icon,
		CreatedAt: cat.CreatedAt.Format(time.RFC3339),
	}
}
