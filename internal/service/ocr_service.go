package service

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"gagyebu/internal/dto"
	"gagyebu/pkg/config"

	"go.uber.org/zap"
)

// visionExtractor is the single call the retry loop drives. Satisfied by
// *VisionService; stubbed in tests.
type visionExtractor interface {
	Extract(ctx context.Context, fullPath, prompt string) (string, error)
}

// OCRService drives the vision call and response sanitizer through a
// bounded-attempt loop. Timeouts and connectivity failures are retried with
// linear backoff (attempt * retryDelay); configuration, API-level, and parse
// failures abort immediately. Either way the caller sees a single
// ErrExtractionFailed with a readable cause.
type OCRService struct {
	vision     visionExtractor
	files      *FileService
	maxRetries int
	retryDelay time.Duration
	logger     *zap.Logger
	sleep      func(ctx context.Context, d time.Duration) error
}

func NewOCRService(vision visionExtractor, files *FileService, cfg *config.OpenAIConfig, logger *zap.Logger) *OCRService {
	return &OCRService{
		vision:     vision,
		files:      files,
		maxRetries: cfg.MaxRetries,
		retryDelay: cfg.RetryDelay,
		logger:     logger,
		sleep:      sleepContext,
	}
}

// sleepContext waits for d without blocking other requests, honoring
// cancellation.
func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// isFatal reports whether err must not be retried: retrying the identical
// call is expected to fail identically.
func isFatal(err error) bool {
	return errors.Is(err, ErrNotConfigured) ||
		errors.Is(err, ErrRemoteAPI) ||
		errors.Is(err, ErrUnparseableResponse)
}

// ProcessReceipt runs the extraction pipeline for a stored receipt image and
// returns the sanitized result.
func (s *OCRService) ProcessReceipt(ctx context.Context, relativePath string) (*dto.ReceiptExtraction, error) {
	fullPath := s.files.FullPath(relativePath)
	if _, err := os.Stat(fullPath); err != nil {
		return nil, fmt.Errorf("%w: image file not found: %s", ErrInvalidFile, relativePath)
	}

	var lastErr error

	for attempt := 1; attempt <= s.maxRetries; attempt++ {
		s.logger.Info("Processing receipt",
			zap.String("path", relativePath),
			zap.Int("attempt", attempt),
			zap.Int("max_attempts", s.maxRetries),
		)

		rawText, err := s.vision.Extract(ctx, fullPath, extractionPrompt)
		if err == nil {
			result, parseErr := parseExtraction(rawText)
			if parseErr != nil {
				// A fresh completion might parse, but this one never
				// will; treat like any other fatal classification.
				err = parseErr
			} else {
				s.logger.Info("Receipt extraction succeeded",
					zap.String("path", relativePath),
					zap.Int("attempt", attempt),
					zap.Float64("confidence", result.Confidence),
				)
				return result, nil
			}
		}

		if isFatal(err) {
			s.logger.Error("Receipt extraction failed",
				zap.String("path", relativePath),
				zap.Int("attempt", attempt),
				zap.Error(err),
			)
			return nil, fmt.Errorf("%w: %v", ErrExtractionFailed, err)
		}

		lastErr = err
		s.logger.Warn("Receipt extraction attempt failed",
			zap.String("path", relativePath),
			zap.Int("attempt", attempt),
			zap.Error(err),
		)

		if attempt < s.maxRetries {
			backoff := time.Duration(attempt) * s.retryDelay
			if err := s.sleep(ctx, backoff); err != nil {
				return nil, fmt.Errorf("%w: %v", ErrExtractionFailed, err)
			}
		}
	}

	s.logger.Error("Receipt extraction failed after all attempts",
		zap.String("path", relativePath),
		zap.Int("attempts", s.maxRetries),
		zap.Error(lastErr),
	)
	return nil, fmt.Errorf("%w after %d attempts: %v", ErrExtractionFailed, s.maxRetries, lastErr)
}
