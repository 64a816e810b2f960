// file: internals/features/financing/plans/route/all_route.go
package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	planController "tradeacademy_backend/internals/features/financing/plans/controller"
	"tradeacademy_backend/internals/middlewares"
)

// Base path at caller: /api/n/financing (public, no auth; the gateway
// signs its own payloads)
func AllPlanRoutes(r fiber.Router, db *gorm.DB) {
	h := planController.NewWebhookController(db, newLifecycle(db))

	r.Post("/webhook", middlewares.WebhookRateLimiter(), h.HandleGatewayNotification)
}
