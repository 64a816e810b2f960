// file: internals/route/index.go
package routes

import (
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"tradeacademy_backend/internals/constants"
	catalogRoute "tradeacademy_backend/internals/features/financing/catalog/route"
	planRoute "tradeacademy_backend/internals/features/financing/plans/route"
	profileRoute "tradeacademy_backend/internals/features/financing/profiles/route"
	authMiddleware "tradeacademy_backend/internals/middlewares/auth"
)

var startTime time.Time

func SetupRoutes(app *fiber.App, db *gorm.DB) {
	startTime = time.Now()

	BaseRoutes(app, db)

	// ===================== PUBLIC =====================
	// Gateway webhooks live here; no JWT.
	log.Println("[INFO] Setting up PUBLIC group...")
	public := app.Group("/api/n/financing")
	planRoute.AllPlanRoutes(public, db)

	// ===================== PRIVATE (USER) =====================
	log.Println("[INFO] Setting up PRIVATE group...")
	private := app.Group("/api/u/financing", authMiddleware.AuthMiddleware())
	catalogRoute.UserCatalogRoutes(private, db)
	planRoute.UserPlanRoutes(private, db)

	// ===================== ADMIN =====================
	log.Println("[INFO] Setting up ADMIN group (Auth + RoleCheck)...")
	admin := app.Group("/api/a/financing",
		authMiddleware.AuthMiddleware(),
		authMiddleware.OnlyRoles(constants.RoleErrorAdmin("financing administration"), constants.RoleAdmin, constants.RoleSuperAdmin),
	)
	catalogRoute.AdminCatalogRoutes(admin, db)
	profileRoute.AdminProfileRoutes(admin, db)
	planRoute.AdminPlanRoutes(admin, db)
}
