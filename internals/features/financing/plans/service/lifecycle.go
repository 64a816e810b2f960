// file: internals/features/financing/plans/service/lifecycle.go
package service

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/google/uuid"
	"github.com/zoobzio/clockz"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	catalogModel "tradeacademy_backend/internals/features/financing/catalog/model"
	planModel "tradeacademy_backend/internals/features/financing/plans/model"
)

/* =========================================================
   Plan Lifecycle Manager
   - owns plan creation and all webhook-driven mutations
   - per-plan serialization via SELECT ... FOR UPDATE on the
     plan row; events for different plans run in parallel
========================================================= */

type LifecycleService struct {
	DB          *gorm.DB
	Gateway     BillingGateway
	Eligibility *EligibilityService
	Clock       clockz.Clock
}

func NewLifecycleService(db *gorm.DB, gateway BillingGateway, clock clockz.Clock) *LifecycleService {
	if clock == nil {
		clock = clockz.RealClock
	}
	return &LifecycleService{
		DB:          db,
		Gateway:     gateway,
		Eligibility: NewEligibilityService(db),
		Clock:       clock,
	}
}

type CreatePlanInput struct {
	CustomerID        uuid.UUID
	CustomerEmail     string
	TemplateID        uuid.UUID
	TotalAmountCents  int64
	ProductLabel      string
	PurchaseContextID *uuid.UUID
}

type CheckoutHandle struct {
	Token string `json:"token"`
	URL   string `json:"url"`
}

/* =========================================================
   createPlan
========================================================= */

// CreatePlan materializes the full schedule and persists the plan in PENDING,
// then requests the external billing setup. Eligibility is re-evaluated
// inside the creation transaction, with the profile row locked, so approval
// and creation are atomic from the customer's point of view.
func (s *LifecycleService) CreatePlan(ctx context.Context, in CreatePlanInput) (*planModel.InstallmentPlan, *CheckoutHandle, error) {
	now := s.Clock.Now()

	var plan planModel.InstallmentPlan
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res, err := s.Eligibility.evaluateTx(tx, in.CustomerID, in.TotalAmountCents, true)
		if err != nil {
			return err
		}
		if !res.Eligible {
			return fmt.Errorf("%w: %s", ErrIneligible, res.Reason)
		}

		var tpl *catalogModel.FinancingTemplate
		for i := range res.CandidateTemplates {
			if res.CandidateTemplates[i].FinancingTemplateID == in.TemplateID {
				tpl = &res.CandidateTemplates[i]
				break
			}
		}
		if tpl == nil {
			return fmt.Errorf("%w: template %s does not apply to this purchase", ErrIneligible, in.TemplateID)
		}

		// One plan per purchase: reject while a non-terminal plan exists for
		// the same purchase context.
		if in.PurchaseContextID != nil {
			var open int64
			if err := tx.Model(&planModel.InstallmentPlan{}).
				Where("plan_customer_id = ? AND plan_purchase_context_id = ? AND plan_status IN ?",
					in.CustomerID, *in.PurchaseContextID,
					[]planModel.PlanStatus{planModel.PlanStatusPending, planModel.PlanStatusActive}).
				Count(&open).Error; err != nil {
				return err
			}
			if open > 0 {
				return fmt.Errorf("%w: an installment plan already exists for this purchase", ErrIneligible)
			}
		}

		quote, err := QuoteSchedule(*tpl, in.TotalAmountCents)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrIneligible, err)
		}
		records := BuildSchedule(quote, now)
		firstDue := records[0].RecordDueDate

		plan = planModel.InstallmentPlan{
			PlanCustomerID:             in.CustomerID,
			PlanTemplateID:             tpl.FinancingTemplateID,
			PlanPurchaseContextID:      in.PurchaseContextID,
			PlanProductLabel:           in.ProductLabel,
			PlanTotalAmountCents:       quote.TotalAmountCents,
			PlanDownPaymentCents:       quote.DownPaymentCents,
			PlanProcessingFeeCents:     quote.ProcessingFeeCents,
			PlanFinancedAmountCents:    quote.FinancedAmountCents,
			PlanInstallmentAmountCents: quote.InstallmentAmountCents,
			PlanNumberOfPayments:       quote.NumberOfPayments,
			PlanFrequency:              quote.Frequency,
			PlanStatus:                 planModel.PlanStatusPending,
			PlanTotalPaidCents:         quote.DownPaymentCents, // down payment collected at checkout
			PlanNextPaymentDate:        &firstDue,
			PlanCreatedAt:              now,
			PlanUpdatedAt:              now,
		}
		if err := tx.Create(&plan).Error; err != nil {
			return fmt.Errorf("create plan: %w", err)
		}

		for i := range records {
			records[i].RecordPlanID = plan.PlanID
		}
		if err := tx.Create(&records).Error; err != nil {
			return fmt.Errorf("create payment records: %w", err)
		}
		plan.PlanRecords = records
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	// Billing setup happens outside the creation transaction; the gateway
	// client retries transient failures with backoff.
	setup, err := s.Gateway.CreateRecurringBilling(ctx, CreateBillingInput{
		OrderID:                   plan.PlanID.String(),
		CustomerRef:               in.CustomerID.String(),
		CustomerEmail:             in.CustomerEmail,
		ProductLabel:              in.ProductLabel,
		DownPaymentCents:          plan.PlanDownPaymentCents,
		PerInstallmentAmountCents: plan.PlanInstallmentAmountCents,
		Frequency:                 plan.PlanFrequency,
		TotalOccurrences:          plan.PlanNumberOfPayments,
		StartTime:                 *plan.PlanNextPaymentDate,
	})
	if err != nil {
		// Never leave a plan silently stuck in PENDING: cancel it visibly
		// and surface the gateway error to the caller.
		if cancelErr := s.CancelPlan(ctx, plan.PlanID, "billing setup failed: "+err.Error(), "system"); cancelErr != nil {
			log.Printf("[FINANCING] plan=%s cancel after failed billing setup: %v", plan.PlanID, cancelErr)
		}
		return nil, nil, fmt.Errorf("billing setup for plan %s: %w", plan.PlanID, err)
	}

	if err := s.DB.WithContext(ctx).Model(&planModel.InstallmentPlan{}).
		Where("plan_id = ? AND plan_external_billing_ref IS NULL", plan.PlanID).
		Updates(map[string]interface{}{
			"plan_external_billing_ref": setup.BillingRef,
			"plan_checkout_url":         setup.CheckoutURL,
			"plan_updated_at":           s.Clock.Now(),
		}).Error; err != nil {
		return nil, nil, fmt.Errorf("store billing ref: %w", err)
	}
	ref := setup.BillingRef
	plan.PlanExternalBillingRef = &ref
	url := setup.CheckoutURL
	plan.PlanCheckoutURL = &url

	return &plan, &CheckoutHandle{Token: setup.CheckoutToken, URL: setup.CheckoutURL}, nil
}

/* =========================================================
   Webhook application
========================================================= */

// ApplyWebhookEvent routes a normalized gateway event into the state
// machine. Unknown billing refs return ErrUnknownBillingRef (callers log and
// drop). The plan row is locked for the duration of the transition, so two
// events for the same plan can never interleave.
func (s *LifecycleService) ApplyWebhookEvent(ctx context.Context, evt *NormalizedEvent) (TransitionOutcome, error) {
	var (
		outcome    TransitionOutcome
		billingRef string
	)

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		plan, records, err := s.loadPlanForUpdate(tx, "plan_external_billing_ref = ?", evt.ExternalBillingRef)
		if err != nil {
			if errors.Is(err, ErrPlanNotFound) {
				return ErrUnknownBillingRef
			}
			return err
		}

		switch evt.Kind {
		case EventBillingConfirmed:
			outcome = ApplyBillingConfirmed(plan, evt.Timestamp)
		case EventPaymentSucceeded:
			outcome = ApplyPaymentSucceeded(plan, records, evt.ExternalPaymentRef, evt.Timestamp)
		case EventPaymentFailed:
			outcome = ApplyPaymentFailed(plan, records, evt.ReasonCode, evt.Timestamp)
		default:
			return fmt.Errorf("unknown event kind %q", evt.Kind)
		}

		if !outcome.Applied {
			log.Printf("[FINANCING] plan=%s event=%s no-op: %s", plan.PlanID, evt.Kind, outcome.Note)
			return nil
		}
		if plan.PlanExternalBillingRef != nil {
			billingRef = *plan.PlanExternalBillingRef
		}
		return s.persistPlan(tx, plan, records)
	})
	if err != nil {
		return TransitionOutcome{}, err
	}

	if outcome.CancelBilling && billingRef != "" {
		s.cancelBillingOutOfBand(ctx, billingRef)
	}
	return outcome, nil
}

/* =========================================================
   cancelPlan
========================================================= */

// CancelPlan terminates a non-terminal plan on admin/customer request.
// Returns ErrInvalidTransition when the plan is already terminal.
func (s *LifecycleService) CancelPlan(ctx context.Context, planID uuid.UUID, reason, actor string) error {
	var (
		outcome    TransitionOutcome
		billingRef string
	)

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		plan, records, err := s.loadPlanForUpdate(tx, "plan_id = ?", planID)
		if err != nil {
			return err
		}

		outcome, err = ApplyCancel(plan, reason, actor, s.Clock.Now())
		if err != nil {
			return err
		}
		if plan.PlanExternalBillingRef != nil {
			billingRef = *plan.PlanExternalBillingRef
		}
		return s.persistPlan(tx, plan, records)
	})
	if err != nil {
		return err
	}

	if outcome.CancelBilling && billingRef != "" {
		s.cancelBillingOutOfBand(ctx, billingRef)
	}
	return nil
}

/* =========================================================
   Reads
========================================================= */

func (s *LifecycleService) GetPlan(ctx context.Context, planID uuid.UUID) (*planModel.InstallmentPlan, error) {
	var plan planModel.InstallmentPlan
	err := s.DB.WithContext(ctx).
		Preload("PlanRecords", func(db *gorm.DB) *gorm.DB {
			return db.Order("record_payment_number ASC")
		}).
		Where("plan_id = ?", planID).
		First(&plan).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPlanNotFound
		}
		return nil, err
	}
	return &plan, nil
}

func (s *LifecycleService) ListPlansForCustomer(ctx context.Context, customerID uuid.UUID) ([]planModel.InstallmentPlan, error) {
	var plans []planModel.InstallmentPlan
	err := s.DB.WithContext(ctx).
		Preload("PlanRecords", func(db *gorm.DB) *gorm.DB {
			return db.Order("record_payment_number ASC")
		}).
		Where("plan_customer_id = ?", customerID).
		Order("plan_created_at DESC").
		Find(&plans).Error
	return plans, err
}

/* ============== internals ============== */

func (s *LifecycleService) loadPlanForUpdate(tx *gorm.DB, query string, arg interface{}) (*planModel.InstallmentPlan, []*planModel.InstallmentPaymentRecord, error) {
	var plan planModel.InstallmentPlan
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where(query, arg).
		First(&plan).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrPlanNotFound
		}
		return nil, nil, err
	}

	var rows []planModel.InstallmentPaymentRecord
	if err := tx.Where("record_plan_id = ?", plan.PlanID).
		Order("record_payment_number ASC").
		Find(&rows).Error; err != nil {
		return nil, nil, err
	}

	records := make([]*planModel.InstallmentPaymentRecord, len(rows))
	for i := range rows {
		records[i] = &rows[i]
	}
	return &plan, records, nil
}

func (s *LifecycleService) persistPlan(tx *gorm.DB, plan *planModel.InstallmentPlan, records []*planModel.InstallmentPaymentRecord) error {
	plan.PlanUpdatedAt = s.Clock.Now()
	if err := tx.Save(plan).Error; err != nil {
		return fmt.Errorf("save plan: %w", err)
	}
	for _, r := range records {
		r.RecordUpdatedAt = plan.PlanUpdatedAt
		if err := tx.Save(r).Error; err != nil {
			return fmt.Errorf("save record %d: %w", r.RecordPaymentNumber, err)
		}
	}
	return nil
}

// cancelBillingOutOfBand is best effort: local state is authoritative.
// Failures are logged and reconciled later, never escalated into plan state.
func (s *LifecycleService) cancelBillingOutOfBand(ctx context.Context, billingRef string) {
	if err := s.Gateway.CancelRecurringBilling(ctx, billingRef); err != nil {
		log.Printf("[FINANCING] cancel recurring billing ref=%s failed (will reconcile out-of-band): %v", billingRef, err)
	}
}
