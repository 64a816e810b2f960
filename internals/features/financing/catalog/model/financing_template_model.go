// file: internals/features/financing/catalog/model/financing_template_model.go
package model

import (
	"time"

	"github.com/google/uuid"
)

/* ================================
   ENUM mirror (must match DB)
================================ */

type PaymentFrequency string

const (
	FrequencyWeekly   PaymentFrequency = "weekly"
	FrequencyBiweekly PaymentFrequency = "biweekly"
	FrequencyMonthly  PaymentFrequency = "monthly"
)

// ValidFrequency reports whether f is a known payment frequency.
func ValidFrequency(f PaymentFrequency) bool {
	switch f {
	case FrequencyWeekly, FrequencyBiweekly, FrequencyMonthly:
		return true
	}
	return false
}

/* ================================
   MODEL: financing_templates
================================ */

// FinancingTemplate is an admin-managed installment plan template. Rows are
// immutable per version as far as active plans are concerned: a plan copies
// the template terms at creation time and never re-reads them.
type FinancingTemplate struct {
	FinancingTemplateID uuid.UUID `json:"financing_template_id" gorm:"column:financing_template_id;type:uuid;default:gen_random_uuid();primaryKey"`

	FinancingTemplateName string `json:"financing_template_name" gorm:"column:financing_template_name;type:varchar(120);not null"`

	// Terms
	FinancingTemplateNumberOfPayments     int              `json:"financing_template_number_of_payments" gorm:"column:financing_template_number_of_payments;not null;check:financing_template_number_of_payments>=1"`
	FinancingTemplateFrequency            PaymentFrequency `json:"financing_template_frequency" gorm:"column:financing_template_frequency;type:payment_frequency;not null"`
	FinancingTemplateDownPaymentPercent   float64          `json:"financing_template_down_payment_percent" gorm:"column:financing_template_down_payment_percent;type:numeric(5,2);not null;default:0;check:financing_template_down_payment_percent>=0 AND financing_template_down_payment_percent<=100"`
	FinancingTemplateProcessingFeePercent float64          `json:"financing_template_processing_fee_percent" gorm:"column:financing_template_processing_fee_percent;type:numeric(5,2);not null;default:0;check:financing_template_processing_fee_percent>=0"`

	// Purchase-amount eligibility band (cents)
	FinancingTemplateMinAmountCents int64 `json:"financing_template_min_amount_cents" gorm:"column:financing_template_min_amount_cents;type:bigint;not null;check:financing_template_min_amount_cents>=0"`
	FinancingTemplateMaxAmountCents int64 `json:"financing_template_max_amount_cents" gorm:"column:financing_template_max_amount_cents;type:bigint;not null"`

	// Display
	FinancingTemplateIsActive  bool `json:"financing_template_is_active" gorm:"column:financing_template_is_active;not null;default:true"`
	FinancingTemplateSortOrder int  `json:"financing_template_sort_order" gorm:"column:financing_template_sort_order;not null;default:0"`

	// Audit
	FinancingTemplateCreatedAt time.Time  `json:"financing_template_created_at" gorm:"column:financing_template_created_at;type:timestamptz;not null;default:now()"`
	FinancingTemplateUpdatedAt time.Time  `json:"financing_template_updated_at" gorm:"column:financing_template_updated_at;type:timestamptz;not null;default:now()"`
	FinancingTemplateDeletedAt *time.Time `json:"financing_template_deleted_at" gorm:"column:financing_template_deleted_at;type:timestamptz"`
}

func (FinancingTemplate) TableName() string { return "financing_templates" }

// Covers reports whether amountCents falls inside the template's band.
func (t FinancingTemplate) Covers(amountCents int64) bool {
	return amountCents >= t.FinancingTemplateMinAmountCents && amountCents <= t.FinancingTemplateMaxAmountCents
}
