package handlers

import (
	"gagyebu/internal/dto"
	"gagyebu/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type TransactionHandler struct {
	transactions *service.TransactionService
	logger       *zap.Logger
}

func NewTransactionHandler(transactions *service.TransactionService, logger *zap.Logger) *TransactionHandler {
	return &TransactionHandler{
		transactions: transactions,
		logger:       logger,
	}
}

func (h *TransactionHandler) List(c *fiber.Ctx) error {
	filter := dto.TransactionFilter{
		DateFrom: c.Query("dateFrom"),
		DateTo:   c.Query("dateTo"),
		Category: c.Query("category"),
		Type:     c.Query("type"),
		Search:   c.Query("search"),
		Page:     c.QueryInt("page", 1),
		Limit:    c.QueryInt("limit", 50),
		Sort:     c.Query("sort", "date"),
		Order:    c.Query("order", "desc"),
	}

	result, err := h.transactions.List(c.Context(), filter)
	if err != nil {
		h.logger.Error("Failed to list transactions", zap.Error(err))
		return respondError(c, err)
	}

	return c.JSON(result)
}

func (h *TransactionHandler) Create(c *fiber.Ctx) error {
	var req dto.TransactionCreateRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	tx, err := h.transactions.Create(c.Context(), req)
	if err != nil {
		h.logger.Error("Failed to create transaction", zap.Error(err))
		return respondError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(tx)
}

func (h *TransactionHandler) Get(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid transaction ID",
		})
	}

	tx, err := h.transactions.Get(c.Context(), id)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(tx)
}

func (h *TransactionHandler) Update(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid transaction ID",
		})
	}

	var req dto.TransactionUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	tx, err := h.transactions.Update(c.Context(), id, req)
	if err != nil {
		h.logger.Error("Failed to update transaction",
			zap.String("id", id.String()),
			zap.Error(err),
		)
		return respondError(c, err)
	}

	return c.JSON(tx)
}

func (h *TransactionHandler) Delete(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid transaction ID",
		})
	}

	if err := h.transactions.Delete(c.Context(), id); err != nil {
		h.logger.Error("Failed to delete transaction",
			zap.String("id", id.String()),
			zap.Error(err),
		)
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Transaction deleted",
	})
}
