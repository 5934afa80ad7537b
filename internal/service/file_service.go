package service

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gagyebu/internal/dto"
	"gagyebu/pkg/config"

	"go.uber.org/zap"
)

var allowedExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".heic": true,
	".webp": true,
}

var allowedMIMETypes = map[string]bool{
	"image/jpeg": true,
	"image/jpg":  true,
	"image/png":  true,
	"image/heic": true,
	"image/heif": true,
	"image/webp": true,
}

// FileService validates uploaded receipt images and persists them under the
// upload root in receipts/<year>/<month>/ directories. The storage-relative
// path it returns is the only handle other components use to reference the
// file.
type FileService struct {
	uploadDir   string
	maxFileSize int64
	logger      *zap.Logger
	now         func() time.Time
}

func NewFileService(cfg *config.UploadConfig, logger *zap.Logger) *FileService {
	return &FileService{
		uploadDir:   cfg.Dir,
		maxFileSize: cfg.MaxFileSize,
		logger:      logger,
		now:         time.Now,
	}
}

// Validate checks the upload against the allow-sets before anything touches
// disk.
func (s *FileService) Validate(upload dto.UploadedImage) error {
	if upload.Filename == "" {
		return fmt.Errorf("%w: missing filename", ErrInvalidFile)
	}

	ext := strings.ToLower(filepath.Ext(upload.Filename))
	if !allowedExtensions[ext] {
		return fmt.Errorf("%w: extension %q not allowed", ErrInvalidFile, ext)
	}

	if upload.ContentType != "" && !allowedMIMETypes[upload.ContentType] {
		return fmt.Errorf("%w: content type %q not allowed", ErrInvalidFile, upload.ContentType)
	}

	if len(upload.Data) == 0 {
		return fmt.Errorf("%w: empty file", ErrInvalidFile)
	}

	if int64(len(upload.Data)) > s.maxFileSize {
		return fmt.Errorf("%w: file exceeds maximum size of %.1fMB",
			ErrInvalidFile, float64(s.maxFileSize)/1024/1024)
	}

	return nil
}

// Save validates the upload, writes it under receipts/<YYYY>/<MM>/ with a
// UTC-timestamped name, and returns the storage-relative path.
func (s *FileService) Save(upload dto.UploadedImage) (string, error) {
	if err := s.Validate(upload); err != nil {
		return "", err
	}

	ext := strings.ToLower(filepath.Ext(upload.Filename))
	now := s.now().UTC()
	filename := fmt.Sprintf("receipt_%s%s", now.Format("20060102_150405"), ext)

	relativeDir := filepath.Join("receipts", now.Format("2006"), now.Format("01"))
	fullDir := filepath.Join(s.uploadDir, relativeDir)
	if err := os.MkdirAll(fullDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create upload directory: %w", err)
	}

	relativePath := filepath.Join(relativeDir, filename)
	fullPath := filepath.Join(s.uploadDir, relativePath)
	if err := os.WriteFile(fullPath, upload.Data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write file: %w", err)
	}

	s.logger.Info("Receipt file saved",
		zap.String("path", relativePath),
		zap.Int("size", len(upload.Data)),
	)

	return relativePath, nil
}

// Delete removes a stored file by its relative path. Best-effort: a missing
// file is reported but callers are expected to swallow the error.
func (s *FileService) Delete(relativePath string) error {
	fullPath := filepath.Join(s.uploadDir, relativePath)

	if _, err := os.Stat(fullPath); err != nil {
		s.logger.Warn("File to delete does not exist", zap.String("path", relativePath))
		return fmt.Errorf("file does not exist: %s", relativePath)
	}

	if err := os.Remove(fullPath); err != nil {
		s.logger.Error("Failed to delete file", zap.String("path", relativePath), zap.Error(err))
		return fmt.Errorf("failed to delete file: %w", err)
	}

	s.logger.Info("Receipt file deleted", zap.String("path", relativePath))
	return nil
}

// FullPath resolves a storage-relative path against the upload root.
func (s *FileService) FullPath(relativePath string) string {
	if relativePath == "" {
		return ""
	}
	return filepath.Join(s.uploadDir, relativePath)
}
