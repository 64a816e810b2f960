package middlewares

import (
	"github.com/gofiber/fiber/v2"

	"tradeacademy_backend/internals/middlewares/logger"
)

// SetupMiddlewares registers the shared middleware chain. Order matters:
// recovery first so panics in later handlers become 500s.
func SetupMiddlewares(app *fiber.App) {
	app.Use(RecoveryMiddleware())
	app.Use(CorsMiddleware())
	app.Use(logger.LoggerMiddleware())
	app.Use(GlobalRateLimiter())
}
