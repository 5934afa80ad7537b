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

// categoryFinder is the category-existence lookup the save path needs.
type categoryFinder interface {
	GetByName(ctx context.Context, name string) (*models.Category, error)
}

// transactionCreator persists a confirmed transaction record.
type transactionCreator interface {
	Create(ctx context.Context, tx *models.Transaction) error
}

// receiptExtractor runs the retry-bounded extraction pipeline.
type receiptExtractor interface {
	ProcessReceipt(ctx context.Context, relativePath string) (*dto.ReceiptExtraction, error)
}

// ReceiptService ties the pipeline together: file intake, extraction, and
// the save step for a confirmed (possibly user-edited) result. If extraction
// fails after the file was written, the file is removed before the error is
// surfaced; a dangling file is acceptable, a dangling error is not.
type ReceiptService struct {
	files        *FileService
	ocr          receiptExtractor
	categories   categoryFinder
	transactions transactionCreator
	logger       *zap.Logger
}

func NewReceiptService(
	files *FileService,
	ocr receiptExtractor,
	categories categoryFinder,
	transactions transactionCreator,
	logger *zap.Logger,
) *ReceiptService {
	return &ReceiptService{
		files:        files,
		ocr:          ocr,
		categories:   categories,
		transactions: transactions,
		logger:       logger,
	}
}

// ProcessUpload stores the uploaded image and runs extraction, returning the
// candidate result together with the storage-relative path the client must
// echo back on save.
func (s *ReceiptService) ProcessUpload(ctx context.Context, upload dto.UploadedImage) (*dto.ReceiptOCRResponse, error) {
	relativePath, err := s.files.Save(upload)
	if err != nil {
		return nil, err
	}

	extraction, err := s.ocr.ProcessReceipt(ctx, relativePath)
	if err != nil {
		if delErr := s.files.Delete(relativePath); delErr != nil {
			s.logger.Warn("Failed to clean up receipt file after extraction failure",
				zap.String("path", relativePath),
				zap.Error(delErr),
			)
		}
		return nil, err
	}

	return &dto.ReceiptOCRResponse{
		ReceiptExtraction: *extraction,
		ReceiptImagePath:  relativePath,
	}, nil
}

// SaveTransaction validates a confirmed extraction and commits it as a
// transaction record. The merchant name, if present, is folded into the memo
// rather than stored as its own field.
func (s *ReceiptService) SaveTransaction(ctx context.Context, req dto.ReceiptSaveRequest) (*dto.TransactionResponse, error) {
	if req.Total <= 0 {
		return nil, fmt.Errorf("%w: got %v", ErrInvalidAmount, req.Total)
	}

	if !models.ValidTransactionType(req.Type) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidType, req.Type)
	}

	date, err := parseFlexibleDate(req.Date)
	if err != nil {
		return nil, err
	}

	if _, err := s.categories.GetByName(ctx, req.Category); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: %q", ErrUnknownCategory, req.Category)
		}
		return nil, fmt.Errorf("failed to look up category: %w", err)
	}

	memo := req.Memo
	if req.Store != "" {
		storeMemo := "상호: " + req.Store
		if memo != "" {
			memo = memo + " | " + storeMemo
		} else {
			memo = storeMemo
		}
	}

	now := time.Now().UTC()
	tx := &models.Transaction{
		ID:               uuid.New(),
		Type:             models.TransactionType(req.Type),
		Date:             date,
		Amount:           req.Total,
		Category:         req.Category,
		Memo:             memo,
		ReceiptImagePath: req.ReceiptImagePath,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	if err := s.transactions.Create(ctx, tx); err != nil {
		return nil, fmt.Errorf("failed to save transaction: %w", err)
	}

	s.logger.Info("Receipt transaction saved",
		zap.String("id", tx.ID.String()),
		zap.String("category", tx.Category),
		zap.Float64("amount", tx.Amount),
	)

	resp := toTransactionResponse(tx)
	return &resp, nil
}

// parseFlexibleDate accepts a full ISO-8601 timestamp (with or without zone)
// or a bare YYYY-MM-DD date.
func parseFlexibleDate(value string) (time.Time, error) {
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q (expected YYYY-MM-DD or ISO-8601)", ErrInvalidDate, value)
}
