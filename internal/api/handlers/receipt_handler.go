package handlers

import (
	"io"

	"gagyebu/internal/dto"
	"gagyebu/internal/service"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type ReceiptHandler struct {
	receipts *service.ReceiptService
	logger   *zap.Logger
}

func NewReceiptHandler(receipts *service.ReceiptService, logger *zap.Logger) *ReceiptHandler {
	return &ReceiptHandler{
		receipts: receipts,
		logger:   logger,
	}
}

// ProcessOCR accepts a receipt image upload, runs the extraction pipeline,
// and returns the candidate result together with the stored file path.
func (h *ReceiptHandler) ProcessOCR(c *fiber.Ctx) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "File is required",
		})
	}

	src, err := fileHeader.Open()
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Failed to open file",
		})
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Failed to read file",
		})
	}

	upload := dto.UploadedImage{
		Filename:    fileHeader.Filename,
		ContentType: fileHeader.Header.Get("Content-Type"),
		Data:        data,
	}

	result, err := h.receipts.ProcessUpload(c.Context(), upload)
	if err != nil {
		h.logger.Error("Receipt OCR request failed",
			zap.String("filename", fileHeader.Filename),
			zap.Error(err),
		)
		return respondError(c, err)
	}

	return c.JSON(result)
}

// Save commits a confirmed (possibly edited) extraction as a transaction.
func (h *ReceiptHandler) Save(c *fiber.Ctx) error {
	var req dto.ReceiptSaveRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	tx, err := h.receipts.SaveTransaction(c.Context(), req)
	if err != nil {
		h.logger.Error("Receipt save request failed", zap.Error(err))
		return respondError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(tx)
}
