// file: internals/features/financing/catalog/route/admin_route.go
package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	catalogController "tradeacademy_backend/internals/features/financing/catalog/controller"
)

// Base path at caller: /api/a/financing
func AdminCatalogRoutes(r fiber.Router, db *gorm.DB) {
	h := catalogController.NewFinancingTemplateController(db)

	templates := r.Group("/templates")
	{
		templates.Post("/", h.Create)
		templates.Get("/", h.ListAll)
		templates.Put("/:template_id", h.Update)
		templates.Delete("/:template_id", h.Delete)
	}
}
