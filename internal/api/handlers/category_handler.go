package handlers

import (
	"gagyebu/internal/dto"
	"gagyebu/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type CategoryHandler struct {
	categories *service.CategoryService
	logger     *zap.Logger
}

func NewCategoryHandler(categories *service.CategoryService, logger *zap.Logger) *CategoryHandler {
	return &CategoryHandler{
		categories: categories,
		logger:     logger,
	}
}

func (h *CategoryHandler) List(c *fiber.Ctx) error {
	result, err := h.categories.List(c.Context(), c.Query("type"))
	if err != nil {
		h.logger.Error("Failed to list categories", zap.Error(err))
		return respondError(c, err)
	}

	return c.JSON(result)
}

func (h *CategoryHandler) Create(c *fiber.Ctx) error {
	var req dto.CategoryCreateRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	cat, err := h.categories.Create(c.Context(), req)
	if err != nil {
		h.logger.Error("Failed to create category", zap.Error(err))
		return respondError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(cat)
}

func (h *CategoryHandler) Get(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid category ID",
		})
	}

	cat, err := h.categories.Get(c.Context(), id)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(cat)
}

func (h *CategoryHandler) Update(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid category ID",
		})
	}

	var req dto.CategoryUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	cat, err := h.categories.Update(c.Context(), id, req)
	if err != nil {
		h.logger.Error("Failed to update category",
			zap.String("id", id.String()),
			zap.Error(err),
		)
		return respondError(c, err)
	}

	return c.JSON(cat)
}

func (h *CategoryHandler) Delete(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid category ID",
		})
	}

	if err := h.categories.Delete(c.Context(), id); err != nil {
		h.logger.Error("Failed to delete category",
			zap.String("id", id.String()),
			zap.Error(err),
		)
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Category deleted",
	})
}
