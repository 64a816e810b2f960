// file: internals/features/financing/plans/service/eligibility.go
package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	catalogModel "tradeacademy_backend/internals/features/financing/catalog/model"
	planModel "tradeacademy_backend/internals/features/financing/plans/model"
	profileModel "tradeacademy_backend/internals/features/financing/profiles/model"
)

/* =========================================================
   Eligibility evaluation (fail closed, side-effect free)
========================================================= */

type EligibilityResult struct {
	Eligible           bool
	Reason             string
	CandidateTemplates []catalogModel.FinancingTemplate
}

type EligibilityService struct {
	DB *gorm.DB
}

func NewEligibilityService(db *gorm.DB) *EligibilityService {
	return &EligibilityService{DB: db}
}

// Evaluate is safe to call repeatedly and concurrently; it never mutates.
func (s *EligibilityService) Evaluate(ctx context.Context, customerID uuid.UUID, amountCents int64) (EligibilityResult, error) {
	return s.evaluateTx(s.DB.WithContext(ctx), customerID, amountCents, false)
}

// evaluateTx runs the evaluation inside the caller's transaction. With
// lockProfile=true the profile row is taken FOR UPDATE so plan creation and
// eligibility form one atomic scope (a concurrently lowered cap cannot slip
// past the check).
func (s *EligibilityService) evaluateTx(tx *gorm.DB, customerID uuid.UUID, amountCents int64, lockProfile bool) (EligibilityResult, error) {
	if amountCents <= 0 {
		return EligibilityResult{Reason: "purchase amount must be positive"}, nil
	}

	q := tx.Where("financing_profile_customer_id = ?", customerID)
	if lockProfile {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var profile profileModel.CustomerFinancingProfile
	if err := q.First(&profile).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return EligibilityResult{Reason: "no financing profile on record"}, nil
		}
		return EligibilityResult{}, fmt.Errorf("load financing profile: %w", err)
	}

	var defaultedPlans int64
	if err := tx.Model(&planModel.InstallmentPlan{}).
		Where("plan_customer_id = ? AND plan_status = ?", customerID, planModel.PlanStatusDefaulted).
		Count(&defaultedPlans).Error; err != nil {
		return EligibilityResult{}, fmt.Errorf("count defaulted plans: %w", err)
	}

	var templates []catalogModel.FinancingTemplate
	if err := tx.
		Where("financing_template_deleted_at IS NULL AND financing_template_is_active = TRUE").
		Order("financing_template_sort_order ASC, financing_template_created_at ASC").
		Find(&templates).Error; err != nil {
		return EligibilityResult{}, fmt.Errorf("load templates: %w", err)
	}

	return evaluateEligibility(&profile, defaultedPlans > 0, templates, amountCents), nil
}

// evaluateEligibility applies the fail-closed rules against already-loaded
// state. Pure; the DB wrapper above feeds it.
func evaluateEligibility(profile *profileModel.CustomerFinancingProfile, hasDefaultedPlan bool, templates []catalogModel.FinancingTemplate, amountCents int64) EligibilityResult {
	if profile == nil || !profile.FinancingProfileApproved {
		return EligibilityResult{Reason: "financing not approved for customer"}
	}
	if hasDefaultedPlan {
		// Permanent disqualification; only a fresh manual approval (an
		// out-of-scope admin action) reopens financing.
		return EligibilityResult{Reason: "customer has a defaulted plan"}
	}
	if cap := profile.FinancingProfileMaxApprovedAmountCents; cap != nil && amountCents > *cap {
		return EligibilityResult{Reason: "amount exceeds approved ceiling"}
	}

	var candidates []catalogModel.FinancingTemplate
	for _, t := range templates {
		if t.Covers(amountCents) {
			candidates = append(candidates, t)
		}
	}
	if len(candidates) == 0 {
		return EligibilityResult{Reason: "no active template covers this amount"}
	}

	return EligibilityResult{Eligible: true, CandidateTemplates: candidates}
}
