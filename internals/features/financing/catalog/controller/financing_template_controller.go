// file: internals/features/financing/catalog/controller/financing_template_controller.go
package controller

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	dto "tradeacademy_backend/internals/features/financing/catalog/dto"
	model "tradeacademy_backend/internals/features/financing/catalog/model"
	helper "tradeacademy_backend/internals/helpers"
)

type FinancingTemplateController struct {
	DB *gorm.DB
}

func NewFinancingTemplateController(db *gorm.DB) *FinancingTemplateController {
	return &FinancingTemplateController{DB: db}
}

var validate = validator.New()

/* =========================================================
   Admin — Create template
   POST /api/a/financing/templates
========================================================= */

func (h *FinancingTemplateController) Create(c *fiber.Ctx) error {
	var req dto.CreateFinancingTemplateRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if err := validate.Struct(req); err != nil {
		return helper.ValidationError(c, err)
	}
	if req.FinancingTemplateMinAmountCents > req.FinancingTemplateMaxAmountCents {
		return helper.Error(c, fiber.StatusBadRequest, "min amount must not exceed max amount")
	}

	m := model.FinancingTemplate{
		FinancingTemplateName:                 req.FinancingTemplateName,
		FinancingTemplateNumberOfPayments:     req.FinancingTemplateNumberOfPayments,
		FinancingTemplateFrequency:            model.PaymentFrequency(req.FinancingTemplateFrequency),
		FinancingTemplateDownPaymentPercent:   req.FinancingTemplateDownPaymentPercent,
		FinancingTemplateProcessingFeePercent: req.FinancingTemplateProcessingFeePercent,
		FinancingTemplateMinAmountCents:       req.FinancingTemplateMinAmountCents,
		FinancingTemplateMaxAmountCents:       req.FinancingTemplateMaxAmountCents,
		FinancingTemplateIsActive:             true,
		FinancingTemplateSortOrder:            req.FinancingTemplateSortOrder,
	}

	if err := h.DB.WithContext(c.Context()).Create(&m).Error; err != nil {
		return helper.Error(c, fiber.StatusInternalServerError, "create failed: "+err.Error())
	}

	return helper.SuccessWithCode(c, fiber.StatusCreated, "Template created", dto.ToFinancingTemplateResponse(m))
}

/* =========================================================
   Admin — Update template
   PUT /api/a/financing/templates/:template_id
========================================================= */

func (h *FinancingTemplateController) Update(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("template_id"))
	if err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "Invalid template id")
	}

	var req dto.UpdateFinancingTemplateRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if err := validate.Struct(req); err != nil {
		return helper.ValidationError(c, err)
	}

	var m model.FinancingTemplate
	if err := h.DB.WithContext(c.Context()).
		Where("financing_template_id = ? AND financing_template_deleted_at IS NULL", id).
		First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return helper.Error(c, fiber.StatusNotFound, "Template not found")
		}
		return helper.Error(c, fiber.StatusInternalServerError, err.Error())
	}

	if req.FinancingTemplateName != nil {
		m.FinancingTemplateName = *req.FinancingTemplateName
	}
	if req.FinancingTemplateNumberOfPayments != nil {
		m.FinancingTemplateNumberOfPayments = *req.FinancingTemplateNumberOfPayments
	}
	if req.FinancingTemplateFrequency != nil {
		m.FinancingTemplateFrequency = model.PaymentFrequency(*req.FinancingTemplateFrequency)
	}
	if req.FinancingTemplateDownPaymentPercent != nil {
		m.FinancingTemplateDownPaymentPercent = *req.FinancingTemplateDownPaymentPercent
	}
	if req.FinancingTemplateProcessingFeePercent != nil {
		m.FinancingTemplateProcessingFeePercent = *req.FinancingTemplateProcessingFeePercent
	}
	if req.FinancingTemplateMinAmountCents != nil {
		m.FinancingTemplateMinAmountCents = *req.FinancingTemplateMinAmountCents
	}
	if req.FinancingTemplateMaxAmountCents != nil {
		m.FinancingTemplateMaxAmountCents = *req.FinancingTemplateMaxAmountCents
	}
	if req.FinancingTemplateIsActive != nil {
		m.FinancingTemplateIsActive = *req.FinancingTemplateIsActive
	}
	if req.FinancingTemplateSortOrder != nil {
		m.FinancingTemplateSortOrder = *req.FinancingTemplateSortOrder
	}

	if m.FinancingTemplateMinAmountCents > m.FinancingTemplateMaxAmountCents {
		return helper.Error(c, fiber.StatusBadRequest, "min amount must not exceed max amount")
	}

	m.FinancingTemplateUpdatedAt = time.Now()
	if err := h.DB.WithContext(c.Context()).Save(&m).Error; err != nil {
		return helper.Error(c, fiber.StatusInternalServerError, "update failed: "+err.Error())
	}

	return helper.Success(c, "Template updated", dto.ToFinancingTemplateResponse(m))
}

/* =========================================================
   Admin — Soft delete template
   DELETE /api/a/financing/templates/:template_id
========================================================= */

func (h *FinancingTemplateController) Delete(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("template_id"))
	if err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "Invalid template id")
	}

	now := time.Now()
	res := h.DB.WithContext(c.Context()).Model(&model.FinancingTemplate{}).
		Where("financing_template_id = ? AND financing_template_deleted_at IS NULL", id).
		Updates(map[string]interface{}{
			"financing_template_is_active":  false,
			"financing_template_deleted_at": now,
			"financing_template_updated_at": now,
		})
	if res.Error != nil {
		return helper.Error(c, fiber.StatusInternalServerError, res.Error.Error())
	}
	if res.RowsAffected == 0 {
		return helper.Error(c, fiber.StatusNotFound, "Template not found")
	}

	return helper.Success(c, "Template deleted", fiber.Map{"financing_template_id": id})
}

/* =========================================================
   Admin — List all templates (incl. inactive)
   GET /api/a/financing/templates
========================================================= */

func (h *FinancingTemplateController) ListAll(c *fiber.Ctx) error {
	p := helper.ParsePaginationWith(c, "financing_template_sort_order", "asc", helper.AdminOpts)

	db := h.DB.WithContext(c.Context()).Model(&model.FinancingTemplate{}).
		Where("financing_template_deleted_at IS NULL")

	if q := strings.TrimSpace(c.Query("q")); q != "" {
		db = db.Where("financing_template_name ILIKE ?", "%"+q+"%")
	}

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return helper.Error(c, fiber.StatusInternalServerError, "count failed: "+err.Error())
	}

	var rows []model.FinancingTemplate
	if err := db.
		Order(p.SortBy + " " + p.SortOrder).
		Limit(p.PerPage).Offset(p.Offset()).
		Find(&rows).Error; err != nil {
		return helper.Error(c, fiber.StatusInternalServerError, "query failed: "+err.Error())
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message":    "ok",
		"data":       dto.ToFinancingTemplateResponses(rows),
		"pagination": helper.BuildPaginationMeta(p, total),
	})
}

/* =========================================================
   Public — List available templates, optionally filtered by
   purchase amount band
   GET /api/u/financing/templates?amount_cents=40000
========================================================= */

func (h *FinancingTemplateController) ListAvailable(c *fiber.Ctx) error {
	db := h.DB.WithContext(c.Context()).Model(&model.FinancingTemplate{}).
		Where("financing_template_deleted_at IS NULL").
		Where("financing_template_is_active = TRUE")

	if raw := strings.TrimSpace(c.Query("amount_cents")); raw != "" {
		amount, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || amount <= 0 {
			return helper.Error(c, fiber.StatusBadRequest, "Invalid amount_cents")
		}
		db = db.Where("financing_template_min_amount_cents <= ? AND financing_template_max_amount_cents >= ?", amount, amount)
	}

	var rows []model.FinancingTemplate
	if err := db.
		Order("financing_template_sort_order ASC, financing_template_created_at ASC").
		Find(&rows).Error; err != nil {
		return helper.Error(c, fiber.StatusInternalServerError, "query failed: "+err.Error())
	}

	return helper.Success(c, "ok", dto.ToFinancingTemplateResponses(rows))
}
