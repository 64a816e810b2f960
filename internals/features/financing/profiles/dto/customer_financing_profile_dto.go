package dto

import (
	"time"

	"github.com/google/uuid"

	"tradeacademy_backend/internals/features/financing/profiles/model"
)

/* =========================================================
   REQUEST DTOs
========================================================= */

type ApproveFinancingProfileRequest struct {
	FinancingProfileCustomerID             uuid.UUID `json:"financing_profile_customer_id" validate:"required"`
	FinancingProfileMaxApprovedAmountCents *int64    `json:"financing_profile_max_approved_amount_cents,omitempty" validate:"omitempty,gt=0"`
	FinancingProfileNotes                  *string   `json:"financing_profile_notes,omitempty"`
}

type RevokeFinancingProfileRequest struct {
	FinancingProfileNotes *string `json:"financing_profile_notes,omitempty"`
}

/* =========================================================
   RESPONSE DTO
========================================================= */

type FinancingProfileResponse struct {
	FinancingProfileID                     uuid.UUID  `json:"financing_profile_id"`
	FinancingProfileCustomerID             uuid.UUID  `json:"financing_profile_customer_id"`
	FinancingProfileApproved               bool       `json:"financing_profile_approved"`
	FinancingProfileMaxApprovedAmountCents *int64     `json:"financing_profile_max_approved_amount_cents,omitempty"`
	FinancingProfileNotes                  *string    `json:"financing_profile_notes,omitempty"`
	FinancingProfileApprovedAt             *time.Time `json:"financing_profile_approved_at,omitempty"`
	FinancingProfileRevokedAt              *time.Time `json:"financing_profile_revoked_at,omitempty"`
	FinancingProfileCreatedAt              time.Time  `json:"financing_profile_created_at"`
}

func ToFinancingProfileResponse(m model.CustomerFinancingProfile) FinancingProfileResponse {
	return FinancingProfileResponse{
		FinancingProfileID:                     m.FinancingProfileID,
		FinancingProfileCustomerID:             m.FinancingProfileCustomerID,
		FinancingProfileApproved:               m.FinancingProfileApproved,
		FinancingProfileMaxApprovedAmountCents: m.FinancingProfileMaxApprovedAmountCents,
		FinancingProfileNotes:                  m.FinancingProfileNotes,
		FinancingProfileApprovedAt:             m.FinancingProfileApprovedAt,
		FinancingProfileRevokedAt:              m.FinancingProfileRevokedAt,
		FinancingProfileCreatedAt:              m.FinancingProfileCreatedAt,
	}
}
