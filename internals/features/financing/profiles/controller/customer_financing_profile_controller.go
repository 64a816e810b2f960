// file: internals/features/financing/profiles/controller/customer_financing_profile_controller.go
package controller

import (
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	dto "tradeacademy_backend/internals/features/financing/profiles/dto"
	model "tradeacademy_backend/internals/features/financing/profiles/model"
	planModel "tradeacademy_backend/internals/features/financing/plans/model"
	helper "tradeacademy_backend/internals/helpers"
)

type FinancingProfileController struct {
	DB *gorm.DB
}

func NewFinancingProfileController(db *gorm.DB) *FinancingProfileController {
	return &FinancingProfileController{DB: db}
}

var validate = validator.New()

/* =========================================================
   Admin — Approve customer for financing (upsert)
   POST /api/a/financing/profiles/approve
========================================================= */

func (h *FinancingProfileController) Approve(c *fiber.Ctx) error {
	var req dto.ApproveFinancingProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if err := validate.Struct(req); err != nil {
		return helper.ValidationError(c, err)
	}

	var approvedBy *uuid.UUID
	if adminID, err := helper.GetUserIDFromToken(c); err == nil {
		approvedBy = &adminID
	}

	now := time.Now()
	var profile model.CustomerFinancingProfile
	err := h.DB.WithContext(c.UserContext()).Transaction(func(tx *gorm.DB) error {
		err := tx.Where("financing_profile_customer_id = ?", req.FinancingProfileCustomerID).
			First(&profile).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			profile = model.CustomerFinancingProfile{
				FinancingProfileCustomerID: req.FinancingProfileCustomerID,
			}
		case err != nil:
			return err
		}

		profile.FinancingProfileApproved = true
		profile.FinancingProfileMaxApprovedAmountCents = req.FinancingProfileMaxApprovedAmountCents
		profile.FinancingProfileNotes = req.FinancingProfileNotes
		profile.FinancingProfileApprovedByUserID = approvedBy
		profile.FinancingProfileApprovedAt = &now
		profile.FinancingProfileRevokedAt = nil
		profile.FinancingProfileUpdatedAt = now
		return tx.Save(&profile).Error
	})
	if err != nil {
		return helper.Error(c, fiber.StatusInternalServerError, err.Error())
	}

	return helper.Success(c, "Financing approved", dto.ToFinancingProfileResponse(profile))
}

/* =========================================================
   Admin — Revoke approval
   POST /api/a/financing/profiles/:customer_id/revoke

   Revocation is only allowed when the customer has no plan
   in a non-terminal state.
========================================================= */

func (h *FinancingProfileController) Revoke(c *fiber.Ctx) error {
	customerID, err := uuid.Parse(c.Params("customer_id"))
	if err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "Invalid customer id")
	}

	// Body is optional (notes only).
	var req dto.RevokeFinancingProfileRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return helper.Error(c, fiber.StatusBadRequest, "Invalid request body")
		}
	}

	now := time.Now()
	var profile model.CustomerFinancingProfile
	err = h.DB.WithContext(c.UserContext()).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("financing_profile_customer_id = ?", customerID).
			First(&profile).Error; err != nil {
			return err
		}

		var openPlans int64
		if err := tx.Model(&planModel.InstallmentPlan{}).
			Where("plan_customer_id = ? AND plan_status IN ?", customerID,
				[]planModel.PlanStatus{planModel.PlanStatusPending, planModel.PlanStatusActive}).
			Count(&openPlans).Error; err != nil {
			return err
		}
		if openPlans > 0 {
			return errHasOpenPlans
		}

		profile.FinancingProfileApproved = false
		profile.FinancingProfileRevokedAt = &now
		if req.FinancingProfileNotes != nil {
			profile.FinancingProfileNotes = req.FinancingProfileNotes
		}
		profile.FinancingProfileUpdatedAt = now
		return tx.Save(&profile).Error
	})
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return helper.Error(c, fiber.StatusNotFound, "Financing profile not found")
	case errors.Is(err, errHasOpenPlans):
		return helper.Error(c, fiber.StatusConflict, "Customer has an open installment plan")
	case err != nil:
		return helper.Error(c, fiber.StatusInternalServerError, err.Error())
	}

	return helper.Success(c, "Financing revoked", dto.ToFinancingProfileResponse(profile))
}

var errHasOpenPlans = errors.New("customer has non-terminal plans")

/* =========================================================
   Admin — Read profiles
   GET /api/a/financing/profiles
   GET /api/a/financing/profiles/:customer_id
========================================================= */

func (h *FinancingProfileController) GetByCustomer(c *fiber.Ctx) error {
	customerID, err := uuid.Parse(c.Params("customer_id"))
	if err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "Invalid customer id")
	}

	var profile model.CustomerFinancingProfile
	if err := h.DB.WithContext(c.UserContext()).
		Where("financing_profile_customer_id = ?", customerID).
		First(&profile).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return helper.Error(c, fiber.StatusNotFound, "Financing profile not found")
		}
		return helper.Error(c, fiber.StatusInternalServerError, err.Error())
	}
	return helper.Success(c, "ok", dto.ToFinancingProfileResponse(profile))
}

func (h *FinancingProfileController) ListAll(c *fiber.Ctx) error {
	p := helper.ParsePaginationWith(c, "financing_profile_created_at", "desc", helper.AdminOpts)

	db := h.DB.WithContext(c.UserContext()).Model(&model.CustomerFinancingProfile{})
	if c.Query("approved") == "true" {
		db = db.Where("financing_profile_approved = TRUE")
	}

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return helper.Error(c, fiber.StatusInternalServerError, "count failed: "+err.Error())
	}

	var rows []model.CustomerFinancingProfile
	if err := db.Order(p.SortBy + " " + p.SortOrder).
		Limit(p.PerPage).Offset(p.Offset()).
		Find(&rows).Error; err != nil {
		return helper.Error(c, fiber.StatusInternalServerError, "query failed: "+err.Error())
	}

	data := make([]dto.FinancingProfileResponse, 0, len(rows))
	for _, r := range rows {
		data = append(data, dto.ToFinancingProfileResponse(r))
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message":    "ok",
		"data":       data,
		"pagination": helper.BuildPaginationMeta(p, total),
	})
}
