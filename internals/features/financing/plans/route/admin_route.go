// file: internals/features/financing/plans/route/admin_route.go
package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	planController "tradeacademy_backend/internals/features/financing/plans/controller"
)

// Base path at caller: /api/a/financing
func AdminPlanRoutes(r fiber.Router, db *gorm.DB) {
	h := planController.NewPlanController(db, newLifecycle(db))

	plans := r.Group("/plans")
	{
		plans.Get("/", h.ListPlansAdmin)
		plans.Get("/:plan_id", h.GetPlanAdmin)
		plans.Post("/:plan_id/cancel", h.CancelPlanAdmin)
	}

	r.Get("/customers/:customer_id/plans", h.ListPlansForCustomerAdmin)
	r.Get("/analytics", h.PlanAnalytics)
}
