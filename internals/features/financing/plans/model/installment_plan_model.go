// file: internals/features/financing/plans/model/installment_plan_model.go
package model

import (
	"time"

	"github.com/google/uuid"

	catalogModel "tradeacademy_backend/internals/features/financing/catalog/model"
)

/* ================================
   ENUM mirror (must match DB)
================================ */

type PlanStatus string

const (
	PlanStatusPending   PlanStatus = "pending"
	PlanStatusActive    PlanStatus = "active"
	PlanStatusCompleted PlanStatus = "completed"
	PlanStatusCancelled PlanStatus = "cancelled"
	PlanStatusDefaulted PlanStatus = "defaulted"
)

type PaymentRecordStatus string

const (
	RecordStatusPending  PaymentRecordStatus = "pending"
	RecordStatusPaid     PaymentRecordStatus = "paid"
	RecordStatusFailed   PaymentRecordStatus = "failed"
	RecordStatusRefunded PaymentRecordStatus = "refunded"
)

/* ================================
   MODEL: installment_plans
================================ */

// InstallmentPlan is the system of record for what the customer owes. The
// external billing processor is the source of truth for "a payment happened";
// the plan owns the bookkeeping. Terms are copied from the template at
// creation time so later template edits never touch running plans.
type InstallmentPlan struct {
	PlanID uuid.UUID `json:"plan_id" gorm:"column:plan_id;type:uuid;default:gen_random_uuid();primaryKey"`

	// References
	PlanCustomerID        uuid.UUID  `json:"plan_customer_id" gorm:"column:plan_customer_id;type:uuid;not null;index"`
	PlanTemplateID        uuid.UUID  `json:"plan_template_id" gorm:"column:plan_template_id;type:uuid;not null"`
	PlanPurchaseContextID *uuid.UUID `json:"plan_purchase_context_id" gorm:"column:plan_purchase_context_id;type:uuid;index"`
	PlanProductLabel      string     `json:"plan_product_label" gorm:"column:plan_product_label;type:varchar(200);not null"`

	// Money (cents)
	PlanTotalAmountCents       int64 `json:"plan_total_amount_cents" gorm:"column:plan_total_amount_cents;type:bigint;not null;check:plan_total_amount_cents>0"`
	PlanDownPaymentCents       int64 `json:"plan_down_payment_cents" gorm:"column:plan_down_payment_cents;type:bigint;not null;default:0"`
	PlanProcessingFeeCents     int64 `json:"plan_processing_fee_cents" gorm:"column:plan_processing_fee_cents;type:bigint;not null;default:0"`
	PlanFinancedAmountCents    int64 `json:"plan_financed_amount_cents" gorm:"column:plan_financed_amount_cents;type:bigint;not null"`
	PlanInstallmentAmountCents int64 `json:"plan_installment_amount_cents" gorm:"column:plan_installment_amount_cents;type:bigint;not null"`

	// Copied terms
	PlanNumberOfPayments int                           `json:"plan_number_of_payments" gorm:"column:plan_number_of_payments;not null"`
	PlanFrequency        catalogModel.PaymentFrequency `json:"plan_frequency" gorm:"column:plan_frequency;type:payment_frequency;not null"`

	// Lifecycle
	PlanStatus PlanStatus `json:"plan_status" gorm:"column:plan_status;type:installment_plan_status;not null;default:'pending'"`

	// Counters
	PlanPaymentsCompleted     int        `json:"plan_payments_completed" gorm:"column:plan_payments_completed;not null;default:0"`
	PlanTotalPaidCents        int64      `json:"plan_total_paid_cents" gorm:"column:plan_total_paid_cents;type:bigint;not null;default:0"`
	PlanFailedPaymentAttempts int        `json:"plan_failed_payment_attempts" gorm:"column:plan_failed_payment_attempts;not null;default:0"`
	PlanNextPaymentDate       *time.Time `json:"plan_next_payment_date" gorm:"column:plan_next_payment_date;type:timestamptz"`

	// External linkage (set once, immutable after)
	PlanExternalBillingRef *string `json:"plan_external_billing_ref" gorm:"column:plan_external_billing_ref;type:text;uniqueIndex:uq_plan_external_billing_ref"`
	PlanCheckoutURL        *string `json:"plan_checkout_url" gorm:"column:plan_checkout_url;type:text"`

	// Terminal bookkeeping
	PlanCancelReason  *string `json:"plan_cancel_reason" gorm:"column:plan_cancel_reason;type:text"`
	PlanCancelActor   *string `json:"plan_cancel_actor" gorm:"column:plan_cancel_actor;type:varchar(120)"`
	PlanDefaultReason *string `json:"plan_default_reason" gorm:"column:plan_default_reason;type:text"`

	// Timestamps
	PlanCreatedAt   time.Time  `json:"plan_created_at" gorm:"column:plan_created_at;type:timestamptz;not null;default:now()"`
	PlanUpdatedAt   time.Time  `json:"plan_updated_at" gorm:"column:plan_updated_at;type:timestamptz;not null;default:now()"`
	PlanActivatedAt *time.Time `json:"plan_activated_at" gorm:"column:plan_activated_at;type:timestamptz"`
	PlanCompletedAt *time.Time `json:"plan_completed_at" gorm:"column:plan_completed_at;type:timestamptz"`
	PlanCancelledAt *time.Time `json:"plan_cancelled_at" gorm:"column:plan_cancelled_at;type:timestamptz"`
	PlanDefaultedAt *time.Time `json:"plan_defaulted_at" gorm:"column:plan_defaulted_at;type:timestamptz"`

	PlanRecords []InstallmentPaymentRecord `json:"plan_records,omitempty" gorm:"foreignKey:RecordPlanID;references:PlanID"`
}

func (InstallmentPlan) TableName() string { return "installment_plans" }

// IsTerminal reports whether the plan has left the mutable part of its
// lifecycle. Terminal states are immutable.
func (p *InstallmentPlan) IsTerminal() bool {
	switch p.PlanStatus {
	case PlanStatusCompleted, PlanStatusCancelled, PlanStatusDefaulted:
		return true
	}
	return false
}

/* ================================
   MODEL: installment_payment_records
================================ */

// InstallmentPaymentRecord is one scheduled installment. (plan_id,
// payment_number) is unique so a plan can never hold two records for the
// same slot.
type InstallmentPaymentRecord struct {
	RecordID uuid.UUID `json:"record_id" gorm:"column:record_id;type:uuid;default:gen_random_uuid();primaryKey"`

	RecordPlanID        uuid.UUID `json:"record_plan_id" gorm:"column:record_plan_id;type:uuid;not null;uniqueIndex:uq_record_plan_payment_number"`
	RecordPaymentNumber int       `json:"record_payment_number" gorm:"column:record_payment_number;not null;uniqueIndex:uq_record_plan_payment_number;check:record_payment_number>=1"`

	RecordDueDate     time.Time           `json:"record_due_date" gorm:"column:record_due_date;type:timestamptz;not null"`
	RecordAmountCents int64               `json:"record_amount_cents" gorm:"column:record_amount_cents;type:bigint;not null;check:record_amount_cents>=0"`
	RecordStatus      PaymentRecordStatus `json:"record_status" gorm:"column:record_status;type:payment_record_status;not null;default:'pending'"`

	RecordPaidAt             *time.Time `json:"record_paid_at" gorm:"column:record_paid_at;type:timestamptz"`
	RecordExternalPaymentRef *string    `json:"record_external_payment_ref" gorm:"column:record_external_payment_ref;type:text"`
	RecordFailureReason      *string    `json:"record_failure_reason" gorm:"column:record_failure_reason;type:text"`

	RecordCreatedAt time.Time `json:"record_created_at" gorm:"column:record_created_at;type:timestamptz;not null;default:now()"`
	RecordUpdatedAt time.Time `json:"record_updated_at" gorm:"column:record_updated_at;type:timestamptz;not null;default:now()"`
}

func (InstallmentPaymentRecord) TableName() string { return "installment_payment_records" }
