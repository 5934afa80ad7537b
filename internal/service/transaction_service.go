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

// Pagination bounds for the list endpoint.
const (
	defaultPageLimit = 50
	maxPageLimit     = 100
)

// sortColumns whitelists the sortable fields and maps them to columns.
var sortColumns = map[string]string{
	"date":      "date",
	"amount":    "amount",
	"category":  "category",
	"createdAt": "created_at",
}

// transactionStore is the repository surface the CRUD service needs.
type transactionStore interface {
	Create(ctx context.Context, tx *models.Transaction) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Transaction, error)
	Update(ctx context.Context, tx *models.Transaction) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, q repository.TransactionQuery) ([]*models.Transaction, error)
	Count(ctx context.Context, q repository.TransactionQuery) (int64, error)
}

type TransactionService struct {
	transactions transactionStore
	categories   categoryFinder
	logger       *zap.Logger
}

func NewTransactionService(transactions transactionStore, categories categoryFinder, logger *zap.Logger) *TransactionService {
	return &TransactionService{
		transactions: transactions,
		categories:   categories,
		logger:       logger,
	}
}

// List applies the filter, paging, and sort parameters and returns one page
// plus the paging envelope.
func (s *TransactionService) List(ctx context.Context, filter dto.TransactionFilter) (*dto.TransactionListResponse, error) {
	query := repository.TransactionQuery{
		Category: filter.Category,
		Search:   filter.Search,
	}

	if filter.DateFrom != "" {
		from, err := parseFlexibleDate(filter.DateFrom)
		if err != nil {
			return nil, err
		}
		query.DateFrom = &from
	}
	if filter.DateTo != "" {
		to, err := parseFlexibleDate(filter.DateTo)
		if err != nil {
			return nil, err
		}
		query.DateTo = &to
	}
	if filter.Type != "" {
		if !models.ValidTransactionType(filter.Type) {
			return nil, fmt.Errorf("%w: %q", ErrInvalidType, filter.Type)
		}
		query.Type = filter.Type
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	limit := filter.Limit
	if limit < 1 {
		limit = defaultPageLimit
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}
	query.Limit = limit
	query.Offset = (page - 1) * limit

	// Unknown sort fields fall back to the default rather than erroring.
	column, ok := sortColumns[filter.Sort]
	if !ok {
		column = "date"
	}
	query.SortField = column
	query.SortOrder = "DESC"
	if filter.Order == "asc" {
		query.SortOrder = "ASC"
	}

	total, err := s.transactions.Count(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to count transactions: %w", err)
	}

	items, err := s.transactions.List(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}

	totalPages := 0
	if total > 0 {
		totalPages = int((total + int64(limit) - 1) / int64(limit))
	}

	responses := make([]dto.TransactionResponse, len(items))
	for i, tx := range items {
		responses[i] = toTransactionResponse(tx)
	}

	return &dto.TransactionListResponse{
		Items:      responses,
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: totalPages,
	}, nil
}

func (s *TransactionService) Create(ctx context.Context, req dto.TransactionCreateRequest) (*dto.TransactionResponse, error) {
	if !models.ValidTransactionType(req.Type) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidType, req.Type)
	}
	if req.Amount <= 0 {
		return nil, fmt.Errorf("%w: got %v", ErrInvalidAmount, req.Amount)
	}

	date, err := parseFlexibleDate(req.Date)
	if err != nil {
		return nil, err
	}

	if err := s.requireCategory(ctx, req.Category); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	tx := &models.Transaction{
		ID:               uuid.New(),
		Type:             models.TransactionType(req.Type),
		Date:             date,
		Amount:           req.Amount,
		Category:         req.Category,
		Memo:             req.Memo,
		ReceiptImagePath: req.ReceiptImagePath,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	if err := s.transactions.Create(ctx, tx); err != nil {
		return nil, fmt.Errorf("failed to create transaction: %w", err)
	}

	resp := toTransactionResponse(tx)
	return &resp, nil
}

func (s *TransactionService) Get(ctx context.Context, id uuid.UUID) (*dto.TransactionResponse, error) {
	tx, err := s.transactions.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}

	resp := toTransactionResponse(tx)
	return &resp, nil
}

// Update applies the non-nil fields of req to an existing transaction.
func (s *TransactionService) Update(ctx context.Context, id uuid.UUID, req dto.TransactionUpdateRequest) (*dto.TransactionResponse, error) {
	tx, err := s.transactions.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}

	if req.Type == nil && req.Date == nil && req.Amount == nil &&
		req.Category == nil && req.Memo == nil && req.ReceiptImagePath == nil {
		return nil, ErrEmptyUpdate
	}

	if req.Type != nil {
		if !models.ValidTransactionType(*req.Type) {
			return nil, fmt.Errorf("%w: %q", ErrInvalidType, *req.Type)
		}
		tx.Type = models.TransactionType(*req.Type)
	}
	if req.Date != nil {
		date, err := parseFlexibleDate(*req.Date)
		if err != nil {
			return nil, err
		}
		tx.Date = date
	}
	if req.Amount != nil {
		if *req.Amount <= 0 {
			return nil, fmt.Errorf("%w: got %v", ErrInvalidAmount, *req.Amount)
		}
		tx.Amount = *req.Amount
	}
	if req.Category != nil {
		if err := s.requireCategory(ctx, *req.Category); err != nil {
			return nil, err
		}
		tx.Category = *req.Category
	}
	if req.Memo != nil {
		tx.Memo = *req.Memo
	}
	if req.ReceiptImagePath != nil {
		tx.ReceiptImagePath = *req.ReceiptImagePath
	}

	tx.UpdatedAt = time.Now().UTC()

	if err := s.transactions.Update(ctx, tx); err != nil {
		return nil, fmt.Errorf("failed to update transaction: %w", err)
	}

	resp := toTransactionResponse(tx)
	return &resp, nil
}

func (s *TransactionService) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.transactions.GetByID(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to get transaction: %w", err)
	}

	if err := s.transactions.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete transaction: %w", err)
	}

	return nil
}

func (s *TransactionService) requireCategory(ctx context.Context, name string) error {
	if _, err := s.categories.GetByName(ctx, name); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("%w: %q", ErrUnknownCategory, name)
		}
		return fmt.Errorf("failed to look up category: %w", err)
	}
	return nil
}

func toTransactionResponse(tx *models.Transaction) dto.TransactionResponse {
	return dto.TransactionResponse{
		ID:               tx.ID.String(),
		Type:             string(tx.Type),
		Date:             tx.Date.Format(time.RFC3339),
		Amount:           tx.Amount,
		Category:         tx.Category,
		Memo:             tx.Memo,
		ReceiptImagePath: tx.ReceiptImagePath,
		CreatedAt:        tx.CreatedAt.Format(time.RFC3339),
		UpdatedAt:        tx.UpdatedAt.Format(time.RFC3339),
	}
}
