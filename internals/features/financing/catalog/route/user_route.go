// file: internals/features/financing/catalog/route/user_route.go
package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	catalogController "tradeacademy_backend/internals/features/financing/catalog/controller"
)

// Base path at caller: /api/u/financing
func UserCatalogRoutes(r fiber.Router, db *gorm.DB) {
	h := catalogController.NewFinancingTemplateController(db)

	r.Get("/templates", h.ListAvailable)
}
