// file: internals/features/financing/plans/route/user_route.go
package route

import (
	"github.com/gofiber/fiber/v2"
	"github.com/zoobzio/clockz"
	"gorm.io/gorm"

	planController "tradeacademy_backend/internals/features/financing/plans/controller"
	planService "tradeacademy_backend/internals/features/financing/plans/service"
)

func newLifecycle(db *gorm.DB) *planService.LifecycleService {
	gateway := planService.NewMidtransGateway(clockz.RealClock)
	return planService.NewLifecycleService(db, gateway, clockz.RealClock)
}

// Base path at caller: /api/u/financing
func UserPlanRoutes(r fiber.Router, db *gorm.DB) {
	h := planController.NewPlanController(db, newLifecycle(db))

	r.Get("/eligibility", h.CheckEligibility)

	plans := r.Group("/plans")
	{
		plans.Post("/", h.CreatePlan)
		plans.Get("/", h.ListMyPlans)
		plans.Get("/:plan_id", h.GetMyPlan)
		plans.Post("/:plan_id/cancel", h.CancelMyPlan)
	}
}
