// file: internals/features/financing/plans/dto/plan_dto.go
package dto

import (
	"time"

	"github.com/google/uuid"

	catalogDTO "tradeacademy_backend/internals/features/financing/catalog/dto"
	"tradeacademy_backend/internals/features/financing/plans/model"
)

/* =========================================================
   REQUEST DTOs
========================================================= */

type CheckEligibilityRequest struct {
	AmountCents int64 `json:"amount_cents" validate:"required,gt=0"`
}

type CreatePlanRequest struct {
	PlanTemplateID        uuid.UUID  `json:"plan_template_id" validate:"required"`
	PlanTotalAmountCents  int64      `json:"plan_total_amount_cents" validate:"required,gt=0"`
	PlanProductLabel      string     `json:"plan_product_label" validate:"required,max=200"`
	PlanPurchaseContextID *uuid.UUID `json:"plan_purchase_context_id,omitempty"`
	CustomerEmail         string     `json:"customer_email" validate:"omitempty,email"`
}

type CancelPlanRequest struct {
	PlanCancelReason string `json:"plan_cancel_reason" validate:"required,max=500"`
}

/* =========================================================
   RESPONSE DTOs
========================================================= */

type EligibilityResponse struct {
	Eligible           bool                                  `json:"eligible"`
	Reason             string                                `json:"reason,omitempty"`
	CandidateTemplates []catalogDTO.FinancingTemplateResponse `json:"candidate_templates"`
}

type PaymentRecordResponse struct {
	RecordPaymentNumber      int        `json:"record_payment_number"`
	RecordDueDate            time.Time  `json:"record_due_date"`
	RecordAmountCents        int64      `json:"record_amount_cents"`
	RecordStatus             string     `json:"record_status"`
	RecordPaidAt             *time.Time `json:"record_paid_at,omitempty"`
	RecordExternalPaymentRef *string    `json:"record_external_payment_ref,omitempty"`
}

type PlanResponse struct {
	PlanID                     uuid.UUID  `json:"plan_id"`
	PlanCustomerID             uuid.UUID  `json:"plan_customer_id"`
	PlanTemplateID             uuid.UUID  `json:"plan_template_id"`
	PlanPurchaseContextID      *uuid.UUID `json:"plan_purchase_context_id,omitempty"`
	PlanProductLabel           string     `json:"plan_product_label"`
	PlanStatus                 string     `json:"plan_status"`
	PlanTotalAmountCents       int64      `json:"plan_total_amount_cents"`
	PlanDownPaymentCents       int64      `json:"plan_down_payment_cents"`
	PlanProcessingFeeCents     int64      `json:"plan_processing_fee_cents"`
	PlanFinancedAmountCents    int64      `json:"plan_financed_amount_cents"`
	PlanInstallmentAmountCents int64      `json:"plan_installment_amount_cents"`
	PlanNumberOfPayments       int        `json:"plan_number_of_payments"`
	PlanFrequency              string     `json:"plan_frequency"`
	PlanPaymentsCompleted      int        `json:"plan_payments_completed"`
	PlanTotalPaidCents         int64      `json:"plan_total_paid_cents"`
	PlanFailedPaymentAttempts  int        `json:"plan_failed_payment_attempts"`
	PlanNextPaymentDate        *time.Time `json:"plan_next_payment_date,omitempty"`
	PlanCheckoutURL            *string    `json:"plan_checkout_url,omitempty"`
	PlanCancelReason           *string    `json:"plan_cancel_reason,omitempty"`
	PlanCreatedAt              time.Time  `json:"plan_created_at"`
	PlanActivatedAt            *time.Time `json:"plan_activated_at,omitempty"`
	PlanCompletedAt            *time.Time `json:"plan_completed_at,omitempty"`
	PlanCancelledAt            *time.Time `json:"plan_cancelled_at,omitempty"`
	PlanDefaultedAt            *time.Time `json:"plan_defaulted_at,omitempty"`

	PlanRecords []PaymentRecordResponse `json:"plan_records,omitempty"`
}

func ToPaymentRecordResponse(r model.InstallmentPaymentRecord) PaymentRecordResponse {
	return PaymentRecordResponse{
		RecordPaymentNumber:      r.RecordPaymentNumber,
		RecordDueDate:            r.RecordDueDate,
		RecordAmountCents:        r.RecordAmountCents,
		RecordStatus:             string(r.RecordStatus),
		RecordPaidAt:             r.RecordPaidAt,
		RecordExternalPaymentRef: r.RecordExternalPaymentRef,
	}
}

func ToPlanResponse(p *model.InstallmentPlan) *PlanResponse {
	out := &PlanResponse{
		PlanID:                     p.PlanID,
		PlanCustomerID:             p.PlanCustomerID,
		PlanTemplateID:             p.PlanTemplateID,
		PlanPurchaseContextID:      p.PlanPurchaseContextID,
		PlanProductLabel:           p.PlanProductLabel,
		PlanStatus:                 string(p.PlanStatus),
		PlanTotalAmountCents:       p.PlanTotalAmountCents,
		PlanDownPaymentCents:       p.PlanDownPaymentCents,
		PlanProcessingFeeCents:     p.PlanProcessingFeeCents,
		PlanFinancedAmountCents:    p.PlanFinancedAmountCents,
		PlanInstallmentAmountCents: p.PlanInstallmentAmountCents,
		PlanNumberOfPayments:       p.PlanNumberOfPayments,
		PlanFrequency:              string(p.PlanFrequency),
		PlanPaymentsCompleted:      p.PlanPaymentsCompleted,
		PlanTotalPaidCents:         p.PlanTotalPaidCents,
		PlanFailedPaymentAttempts:  p.PlanFailedPaymentAttempts,
		PlanNextPaymentDate:        p.PlanNextPaymentDate,
		PlanCheckoutURL:            p.PlanCheckoutURL,
		PlanCancelReason:           p.PlanCancelReason,
		PlanCreatedAt:              p.PlanCreatedAt,
		PlanActivatedAt:            p.PlanActivatedAt,
		PlanCompletedAt:            p.PlanCompletedAt,
		PlanCancelledAt:            p.PlanCancelledAt,
		PlanDefaultedAt:            p.PlanDefaultedAt,
	}
	for _, r := range p.PlanRecords {
		out.PlanRecords = append(out.PlanRecords, ToPaymentRecordResponse(r))
	}
	return out
}

func ToPlanResponses(plans []model.InstallmentPlan) []*PlanResponse {
	out := make([]*PlanResponse, 0, len(plans))
	for i := range plans {
		out = append(out, ToPlanResponse(&plans[i]))
	}
	return out
}
