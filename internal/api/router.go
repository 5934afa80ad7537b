package api

import (
	"gagyebu/internal/api/handlers"
	"gagyebu/pkg/config"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

func SetupRouter(
	cfg *config.Config,
	receiptHandler *handlers.ReceiptHandler,
	txHandler *handlers.TransactionHandler,
	categoryHandler *handlers.CategoryHandler,
	statsHandler *handlers.StatisticsHandler,
) *fiber.App {
	app := fiber.New(fiber.Config{
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		// Leave room above the receipt size limit so oversized uploads get a
		// proper validation message instead of a connection reset.
		BodyLimit: int(cfg.Upload.MaxFileSize) * 2,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error": err.Error(),
			})
		},
	})

	// Middleware
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept",
	}))
	app.Use(logger.New())

	// Stored receipt images, addressed by their storage-relative path.
	app.Static("/api/files", cfg.Upload.Dir)

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	receipt := app.Group("/api/receipt")
	receipt.Post("/ocr", receiptHandler.ProcessOCR)
	receipt.Post("/save", receiptHandler.Save)

	transactions := app.Group("/api/transactions")
	transactions.Get("", txHandler.List)
	transactions.Post("", txHandler.Create)
	transactions.Get("/:id", txHandler.Get)
	transactions.Put("/:id", txHandler.Update)
	transactions.Delete("/:id", txHandler.Delete)

	categories := app.Group("/api/categories")
	categories.Get("", categoryHandler.List)
	categories.Post("", categoryHandler.Create)
	categories.Get("/:id", categoryHandler.Get)
	categories.Put("/:id", categoryHandler.Update)
	categories.Delete("/:id", categoryHandler.Delete)

	statistics := app.Group("/api/statistics")
	statistics.Get("/summary", statsHandler.Summary)

	return app
}
