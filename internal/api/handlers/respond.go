package handlers

import (
	"errors"

	"gagyebu/internal/service"

	"github.com/gofiber/fiber/v2"
)

// badRequestErrors are validation-class failures whose messages are safe to
// return to the client verbatim.
var badRequestErrors = []error{
	service.ErrInvalidFile,
	service.ErrUnknownCategory,
	service.ErrInvalidDate,
	service.ErrInvalidType,
	service.ErrInvalidAmount,
	service.ErrDuplicateCategory,
	service.ErrCategoryInUse,
	service.ErrEmptyUpdate,
}

// respondError maps a service-layer error to an HTTP response. Pipeline
// failures get a generic message so upstream diagnostics stay in the logs.
func respondError(c *fiber.Ctx, err error) error {
	for _, sentinel := range badRequestErrors {
		if errors.Is(err, sentinel) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": err.Error(),
			})
		}
	}

	if errors.Is(err, service.ErrNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Not found",
		})
	}

	if errors.Is(err, service.ErrExtractionFailed) {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Receipt processing failed",
		})
	}

	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"error": "Internal server error",
	})
}
