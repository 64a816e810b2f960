// file: internals/features/financing/plans/controller/plan_controller.go
package controller

import (
	"errors"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	catalogDTO "tradeacademy_backend/internals/features/financing/catalog/dto"
	dto "tradeacademy_backend/internals/features/financing/plans/dto"
	model "tradeacademy_backend/internals/features/financing/plans/model"
	service "tradeacademy_backend/internals/features/financing/plans/service"
	helper "tradeacademy_backend/internals/helpers"
)

type PlanController struct {
	DB          *gorm.DB
	Lifecycle   *service.LifecycleService
	Eligibility *service.EligibilityService
	Analytics   *service.AnalyticsService
}

func NewPlanController(db *gorm.DB, lifecycle *service.LifecycleService) *PlanController {
	return &PlanController{
		DB:          db,
		Lifecycle:   lifecycle,
		Eligibility: service.NewEligibilityService(db),
		Analytics:   service.NewAnalyticsService(db),
	}
}

var validate = validator.New()

/* =========================================================
   User — Check eligibility
   GET /api/u/financing/eligibility?amount_cents=40000
========================================================= */

func (h *PlanController) CheckEligibility(c *fiber.Ctx) error {
	customerID, err := helper.GetUserIDFromToken(c)
	if err != nil {
		return helper.Error(c, fiber.StatusUnauthorized, err.Error())
	}

	amount, err := strconv.ParseInt(strings.TrimSpace(c.Query("amount_cents")), 10, 64)
	if err != nil || amount <= 0 {
		return helper.Error(c, fiber.StatusBadRequest, "Invalid amount_cents")
	}

	res, err := h.Eligibility.Evaluate(c.UserContext(), customerID, amount)
	if err != nil {
		return helper.Error(c, fiber.StatusInternalServerError, err.Error())
	}

	return helper.Success(c, "ok", dto.EligibilityResponse{
		Eligible:           res.Eligible,
		Reason:             res.Reason,
		CandidateTemplates: catalogDTO.ToFinancingTemplateResponses(res.CandidateTemplates),
	})
}

/* =========================================================
   User — Create plan
   POST /api/u/financing/plans
========================================================= */

func (h *PlanController) CreatePlan(c *fiber.Ctx) error {
	customerID, err := helper.GetUserIDFromToken(c)
	if err != nil {
		return helper.Error(c, fiber.StatusUnauthorized, err.Error())
	}

	var req dto.CreatePlanRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if err := validate.Struct(req); err != nil {
		return helper.ValidationError(c, err)
	}

	plan, checkout, err := h.Lifecycle.CreatePlan(c.UserContext(), service.CreatePlanInput{
		CustomerID:        customerID,
		CustomerEmail:     req.CustomerEmail,
		TemplateID:        req.PlanTemplateID,
		TotalAmountCents:  req.PlanTotalAmountCents,
		ProductLabel:      req.PlanProductLabel,
		PurchaseContextID: req.PlanPurchaseContextID,
	})
	if err != nil {
		return domainError(c, err)
	}

	return helper.SuccessWithCode(c, fiber.StatusCreated, "Plan created", fiber.Map{
		"plan":     dto.ToPlanResponse(plan),
		"checkout": checkout,
	})
}

/* =========================================================
   User — My plans
   GET /api/u/financing/plans
   GET /api/u/financing/plans/:plan_id
========================================================= */

func (h *PlanController) ListMyPlans(c *fiber.Ctx) error {
	customerID, err := helper.GetUserIDFromToken(c)
	if err != nil {
		return helper.Error(c, fiber.StatusUnauthorized, err.Error())
	}

	plans, err := h.Lifecycle.ListPlansForCustomer(c.UserContext(), customerID)
	if err != nil {
		return helper.Error(c, fiber.StatusInternalServerError, err.Error())
	}
	return helper.Success(c, "ok", dto.ToPlanResponses(plans))
}

func (h *PlanController) GetMyPlan(c *fiber.Ctx) error {
	customerID, err := helper.GetUserIDFromToken(c)
	if err != nil {
		return helper.Error(c, fiber.StatusUnauthorized, err.Error())
	}
	planID, err := uuid.Parse(c.Params("plan_id"))
	if err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "Invalid plan id")
	}

	plan, err := h.Lifecycle.GetPlan(c.UserContext(), planID)
	if err != nil {
		return domainError(c, err)
	}
	if plan.PlanCustomerID != customerID {
		return helper.Error(c, fiber.StatusForbidden, "Not your plan")
	}
	return helper.Success(c, "ok", dto.ToPlanResponse(plan))
}

/* =========================================================
   User — Cancel own plan
   POST /api/u/financing/plans/:plan_id/cancel
========================================================= */

func (h *PlanController) CancelMyPlan(c *fiber.Ctx) error {
	customerID, err := helper.GetUserIDFromToken(c)
	if err != nil {
		return helper.Error(c, fiber.StatusUnauthorized, err.Error())
	}
	planID, err := uuid.Parse(c.Params("plan_id"))
	if err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "Invalid plan id")
	}

	var req dto.CancelPlanRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if err := validate.Struct(req); err != nil {
		return helper.ValidationError(c, err)
	}

	plan, err := h.Lifecycle.GetPlan(c.UserContext(), planID)
	if err != nil {
		return domainError(c, err)
	}
	if plan.PlanCustomerID != customerID {
		return helper.Error(c, fiber.StatusForbidden, "Not your plan")
	}

	if err := h.Lifecycle.CancelPlan(c.UserContext(), planID, req.PlanCancelReason, "customer:"+customerID.String()); err != nil {
		return domainError(c, err)
	}
	return helper.Success(c, "Plan cancelled", fiber.Map{"plan_id": planID})
}

/* =========================================================
   Admin — Plans
   GET  /api/a/financing/plans?status=active,defaulted
   GET  /api/a/financing/plans/:plan_id
   POST /api/a/financing/plans/:plan_id/cancel
   GET  /api/a/financing/customers/:customer_id/plans
========================================================= */

func (h *PlanController) ListPlansAdmin(c *fiber.Ctx) error {
	p := helper.ParsePaginationWith(c, "plan_created_at", "desc", helper.AdminOpts)

	db := h.DB.WithContext(c.UserContext()).Model(&model.InstallmentPlan{})
	if statuses := splitCSV(c.Query("status")); len(statuses) > 0 {
		db = db.Where("plan_status IN (?)", statuses)
	}

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return helper.Error(c, fiber.StatusInternalServerError, "count failed: "+err.Error())
	}

	var rows []model.InstallmentPlan
	if err := db.Order(p.SortBy + " " + p.SortOrder).
		Limit(p.PerPage).Offset(p.Offset()).
		Find(&rows).Error; err != nil {
		return helper.Error(c, fiber.StatusInternalServerError, "query failed: "+err.Error())
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message":    "ok",
		"data":       dto.ToPlanResponses(rows),
		"pagination": helper.BuildPaginationMeta(p, total),
	})
}

func (h *PlanController) GetPlanAdmin(c *fiber.Ctx) error {
	planID, err := uuid.Parse(c.Params("plan_id"))
	if err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "Invalid plan id")
	}
	plan, err := h.Lifecycle.GetPlan(c.UserContext(), planID)
	if err != nil {
		return domainError(c, err)
	}
	return helper.Success(c, "ok", dto.ToPlanResponse(plan))
}

func (h *PlanController) CancelPlanAdmin(c *fiber.Ctx) error {
	planID, err := uuid.Parse(c.Params("plan_id"))
	if err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "Invalid plan id")
	}

	var req dto.CancelPlanRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if err := validate.Struct(req); err != nil {
		return helper.ValidationError(c, err)
	}

	actor := "admin"
	if adminID, err := helper.GetUserIDFromToken(c); err == nil {
		actor = "admin:" + adminID.String()
	}

	if err := h.Lifecycle.CancelPlan(c.UserContext(), planID, req.PlanCancelReason, actor); err != nil {
		return domainError(c, err)
	}
	return helper.Success(c, "Plan cancelled", fiber.Map{"plan_id": planID})
}

func (h *PlanController) ListPlansForCustomerAdmin(c *fiber.Ctx) error {
	customerID, err := uuid.Parse(c.Params("customer_id"))
	if err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "Invalid customer id")
	}
	plans, err := h.Lifecycle.ListPlansForCustomer(c.UserContext(), customerID)
	if err != nil {
		return helper.Error(c, fiber.StatusInternalServerError, err.Error())
	}
	return helper.Success(c, "ok", dto.ToPlanResponses(plans))
}

/* =========================================================
   Admin — Analytics
   GET /api/a/financing/analytics
========================================================= */

func (h *PlanController) PlanAnalytics(c *fiber.Ctx) error {
	stats, err := h.Analytics.PlanAnalytics(c.UserContext())
	if err != nil {
		return helper.Error(c, fiber.StatusInternalServerError, err.Error())
	}
	return helper.Success(c, "ok", stats)
}

/* ============== small utils ============== */

// domainError maps the service error taxonomy onto HTTP codes.
func domainError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, service.ErrIneligible):
		return helper.Error(c, fiber.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, service.ErrInvalidTransition):
		return helper.Error(c, fiber.StatusConflict, err.Error())
	case errors.Is(err, service.ErrPlanNotFound), errors.Is(err, service.ErrTemplateNotFound):
		return helper.Error(c, fiber.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrGatewayUnavailable):
		return helper.Error(c, fiber.StatusServiceUnavailable, err.Error())
	case errors.Is(err, service.ErrInvalidCustomer):
		return helper.Error(c, fiber.StatusBadGateway, err.Error())
	default:
		return helper.Error(c, fiber.StatusInternalServerError, err.Error())
	}
}

func splitCSV(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
