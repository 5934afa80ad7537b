package handlers

import (
	"gagyebu/internal/service"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type StatisticsHandler struct {
	statistics *service.StatisticsService
	logger     *zap.Logger
}

func NewStatisticsHandler(statistics *service.StatisticsService, logger *zap.Logger) *StatisticsHandler {
	return &StatisticsHandler{
		statistics: statistics,
		logger:     logger,
	}
}

// Summary returns today's and this month's expense/income totals, optionally
// anchored to a `date` query parameter.
func (h *StatisticsHandler) Summary(c *fiber.Ctx) error {
	summary, err := h.statistics.Summary(c.Context(), c.Query("date"))
	if err != nil {
		h.logger.Error("Failed to compute statistics summary", zap.Error(err))
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    summary,
	})
}
