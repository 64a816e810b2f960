// file: internals/features/financing/profiles/model/customer_financing_profile_model.go
package model

import (
	"time"

	"github.com/google/uuid"
)

/* ================================
   MODEL: customer_financing_profiles
================================ */

// CustomerFinancingProfile records whether a customer has been manually
// approved for installment financing. One row per customer; approval is an
// admin action and revocation is blocked while the customer still has a plan
// in a non-terminal state.
type CustomerFinancingProfile struct {
	FinancingProfileID uuid.UUID `json:"financing_profile_id" gorm:"column:financing_profile_id;type:uuid;default:gen_random_uuid();primaryKey"`

	FinancingProfileCustomerID uuid.UUID `json:"financing_profile_customer_id" gorm:"column:financing_profile_customer_id;type:uuid;not null;uniqueIndex:uq_financing_profile_customer"`

	FinancingProfileApproved               bool   `json:"financing_profile_approved" gorm:"column:financing_profile_approved;not null;default:false"`
	FinancingProfileMaxApprovedAmountCents *int64 `json:"financing_profile_max_approved_amount_cents" gorm:"column:financing_profile_max_approved_amount_cents;type:bigint"`

	FinancingProfileNotes *string `json:"financing_profile_notes" gorm:"column:financing_profile_notes;type:text"`

	FinancingProfileApprovedByUserID *uuid.UUID `json:"financing_profile_approved_by_user_id" gorm:"column:financing_profile_approved_by_user_id;type:uuid"`
	FinancingProfileApprovedAt       *time.Time `json:"financing_profile_approved_at" gorm:"column:financing_profile_approved_at;type:timestamptz"`
	FinancingProfileRevokedAt        *time.Time `json:"financing_profile_revoked_at" gorm:"column:financing_profile_revoked_at;type:timestamptz"`

	FinancingProfileCreatedAt time.Time `json:"financing_profile_created_at" gorm:"column:financing_profile_created_at;type:timestamptz;not null;default:now()"`
	FinancingProfileUpdatedAt time.Time `json:"financing_profile_updated_at" gorm:"column:financing_profile_updated_at;type:timestamptz;not null;default:now()"`
}

func (CustomerFinancingProfile) TableName() string { return "customer_financing_profiles" }
