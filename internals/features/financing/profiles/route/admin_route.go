// file: internals/features/financing/profiles/route/admin_route.go
package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	profileController "tradeacademy_backend/internals/features/financing/profiles/controller"
)

// AdminProfileRoutes mounts financing-approval management under the
// admin prefix (expects /api/a/financing).
func AdminProfileRoutes(r fiber.Router, db *gorm.DB) {
	h := profileController.NewFinancingProfileController(db)

	profiles := r.Group("/profiles")
	profiles.Get("/", h.ListAll)
	profiles.Post("/approve", h.Approve)
	profiles.Get("/:customer_id", h.GetByCustomer)
	profiles.Post("/:customer_id/revoke", h.Revoke)
}
