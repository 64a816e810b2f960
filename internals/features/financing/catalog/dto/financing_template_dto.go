package dto

import (
	"time"

	"github.com/google/uuid"

	"tradeacademy_backend/internals/features/financing/catalog/model"
)

/* =========================================================
   REQUEST DTOs (JSON tags = DB column names, snake_case)
========================================================= */

type CreateFinancingTemplateRequest struct {
	FinancingTemplateName                 string  `json:"financing_template_name" validate:"required,max=120"`
	FinancingTemplateNumberOfPayments     int     `json:"financing_template_number_of_payments" validate:"required,min=1,max=60"`
	FinancingTemplateFrequency            string  `json:"financing_template_frequency" validate:"required,oneof=weekly biweekly monthly"`
	FinancingTemplateDownPaymentPercent   float64 `json:"financing_template_down_payment_percent" validate:"gte=0,lte=100"`
	FinancingTemplateProcessingFeePercent float64 `json:"financing_template_processing_fee_percent" validate:"gte=0"`
	FinancingTemplateMinAmountCents       int64   `json:"financing_template_min_amount_cents" validate:"gte=0"`
	FinancingTemplateMaxAmountCents       int64   `json:"financing_template_max_amount_cents" validate:"required,gt=0"`
	FinancingTemplateSortOrder            int     `json:"financing_template_sort_order"`
}

type UpdateFinancingTemplateRequest struct {
	FinancingTemplateName                 *string  `json:"financing_template_name,omitempty" validate:"omitempty,max=120"`
	FinancingTemplateNumberOfPayments     *int     `json:"financing_template_number_of_payments,omitempty" validate:"omitempty,min=1,max=60"`
	FinancingTemplateFrequency            *string  `json:"financing_template_frequency,omitempty" validate:"omitempty,oneof=weekly biweekly monthly"`
	FinancingTemplateDownPaymentPercent   *float64 `json:"financing_template_down_payment_percent,omitempty" validate:"omitempty,gte=0,lte=100"`
	FinancingTemplateProcessingFeePercent *float64 `json:"financing_template_processing_fee_percent,omitempty" validate:"omitempty,gte=0"`
	FinancingTemplateMinAmountCents       *int64   `json:"financing_template_min_amount_cents,omitempty" validate:"omitempty,gte=0"`
	FinancingTemplateMaxAmountCents       *int64   `json:"financing_template_max_amount_cents,omitempty" validate:"omitempty,gt=0"`
	FinancingTemplateIsActive             *bool    `json:"financing_template_is_active,omitempty"`
	FinancingTemplateSortOrder            *int     `json:"financing_template_sort_order,omitempty"`
}

/* =========================================================
   RESPONSE DTO
========================================================= */

type FinancingTemplateResponse struct {
	FinancingTemplateID                   uuid.UUID `json:"financing_template_id"`
	FinancingTemplateName                 string    `json:"financing_template_name"`
	FinancingTemplateNumberOfPayments     int       `json:"financing_template_number_of_payments"`
	FinancingTemplateFrequency            string    `json:"financing_template_frequency"`
	FinancingTemplateDownPaymentPercent   float64   `json:"financing_template_down_payment_percent"`
	FinancingTemplateProcessingFeePercent float64   `json:"financing_template_processing_fee_percent"`
	FinancingTemplateMinAmountCents       int64     `json:"financing_template_min_amount_cents"`
	FinancingTemplateMaxAmountCents       int64     `json:"financing_template_max_amount_cents"`
	FinancingTemplateIsActive             bool      `json:"financing_template_is_active"`
	FinancingTemplateSortOrder            int       `json:"financing_template_sort_order"`
	FinancingTemplateCreatedAt            time.Time `json:"financing_template_created_at"`
}

func ToFinancingTemplateResponse(m model.FinancingTemplate) FinancingTemplateResponse {
	return FinancingTemplateResponse{
		FinancingTemplateID:                   m.FinancingTemplateID,
		FinancingTemplateName:                 m.FinancingTemplateName,
		FinancingTemplateNumberOfPayments:     m.FinancingTemplateNumberOfPayments,
		FinancingTemplateFrequency:            string(m.FinancingTemplateFrequency),
		FinancingTemplateDownPaymentPercent:   m.FinancingTemplateDownPaymentPercent,
		FinancingTemplateProcessingFeePercent: m.FinancingTemplateProcessingFeePercent,
		FinancingTemplateMinAmountCents:       m.FinancingTemplateMinAmountCents,
		FinancingTemplateMaxAmountCents:       m.FinancingTemplateMaxAmountCents,
		FinancingTemplateIsActive:             m.FinancingTemplateIsActive,
		FinancingTemplateSortOrder:            m.FinancingTemplateSortOrder,
		FinancingTemplateCreatedAt:            m.FinancingTemplateCreatedAt,
	}
}

func ToFinancingTemplateResponses(ms []model.FinancingTemplate) []FinancingTemplateResponse {
	out := make([]FinancingTemplateResponse, 0, len(ms))
	for _, m := range ms {
		out = append(out, ToFinancingTemplateResponse(m))
	}
	return out
}
