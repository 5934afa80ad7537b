package service

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"gagyebu/internal/dto"
	"gagyebu/pkg/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestFileService(t *testing.T) *FileService {
	t.Helper()
	svc := NewFileService(&config.UploadConfig{
		Dir:         t.TempDir(),
		MaxFileSize: 10 * 1024 * 1024,
	}, zap.NewNop())
	svc.now = func() time.Time {
		return time.Date(2024, 3, 15, 10, 15, 30, 0, time.UTC)
	}
	return svc
}

func validUpload() dto.UploadedImage {
	return dto.UploadedImage{
		Filename:    "receipt.jpg",
		ContentType: "image/jpeg",
		Data:        []byte("fake jpeg bytes"),
	}
}

func TestFileService_Validate(t *testing.T) {
	svc := newTestFileService(t)

	tests := []struct {
		name   string
		mutate func(*dto.UploadedImage)
	}{
		{
			name:   "missing filename",
			mutate: func(u *dto.UploadedImage) { u.Filename = "" },
		},
		{
			name:   "disallowed extension",
			mutate: func(u *dto.UploadedImage) { u.Filename = "receipt.pdf" },
		},
		{
			name:   "no extension",
			mutate: func(u *dto.UploadedImage) { u.Filename = "receipt" },
		},
		{
			name:   "disallowed content type",
			mutate: func(u *dto.UploadedImage) { u.ContentType = "application/pdf" },
		},
		{
			name:   "empty body",
			mutate: func(u *dto.UploadedImage) { u.Data = nil },
		},
		{
			name:   "oversize body",
			mutate: func(u *dto.UploadedImage) { u.Data = make([]byte, 10*1024*1024+1) },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			upload := validUpload()
			tt.mutate(&upload)
			require.ErrorIs(t, svc.Validate(upload), ErrInvalidFile)
		})
	}
}

func TestFileService_ValidateAcceptsAllowedVariants(t *testing.T) {
	svc := newTestFileService(t)

	tests := []struct {
		filename    string
		contentType string
	}{
		{"photo.JPG", "image/jpeg"},
		{"photo.jpeg", "image/jpg"},
		{"scan.png", "image/png"},
		{"scan.heic", "image/heif"},
		{"scan.webp", "image/webp"},
		{"no-content-type.jpg", ""},
	}

	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			upload := validUpload()
			upload.Filename = tt.filename
			upload.ContentType = tt.contentType
			assert.NoError(t, svc.Validate(upload))
		})
	}
}

func TestFileService_SaveWritesTimestampedPath(t *testing.T) {
	svc := newTestFileService(t)

	relativePath, err := svc.Save(validUpload())
	require.NoError(t, err)

	assert.Equal(t, filepath.Join("receipts", "2024", "03", "receipt_20240315_101530.jpg"), relativePath)

	written, err := os.ReadFile(svc.FullPath(relativePath))
	require.NoError(t, err)
	assert.Equal(t, []byte("fake jpeg bytes"), written)
}

func TestFileService_SaveLowercasesExtension(t *testing.T) {
	svc := newTestFileService(t)

	upload := validUpload()
	upload.Filename = "IMG_0042.PNG"
	upload.ContentType = "image/png"

	relativePath, err := svc.Save(upload)
	require.NoError(t, err)
	assert.Equal(t, ".png", filepath.Ext(relativePath))
}

func TestFileService_SaveRejectsBeforeWriting(t *testing.T) {
	svc := newTestFileService(t)

	upload := validUpload()
	upload.Filename = "receipt.gif"

	_, err := svc.Save(upload)
	require.ErrorIs(t, err, ErrInvalidFile)

	entries, err := os.ReadDir(svc.uploadDir)
	require.NoError(t, err)
	assert.Empty(t, entries, "a rejected upload must leave no files behind")
}

func TestFileService_Delete(t *testing.T) {
	svc := newTestFileService(t)

	relativePath, err := svc.Save(validUpload())
	require.NoError(t, err)

	require.NoError(t, svc.Delete(relativePath))
	_, err = os.Stat(svc.FullPath(relativePath))
	assert.True(t, os.IsNotExist(err))

	// Second delete reports the missing file.
	assert.Error(t, svc.Delete(relativePath))
}

func TestFileService_FullPath(t *testing.T) {
	svc := newTestFileService(t)

	assert.Equal(t, "", svc.FullPath(""))
	assert.Equal(t,
		filepath.Join(svc.uploadDir, "receipts", "2024", "03", "x.jpg"),
		svc.FullPath(filepath.Join("receipts", "2024", "03", "x.jpg")))
}
