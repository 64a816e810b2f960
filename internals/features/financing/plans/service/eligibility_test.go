// file: internals/features/financing/plans/service/eligibility_test.go
package service

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	catalogModel "tradeacademy_backend/internals/features/financing/catalog/model"
	profileModel "tradeacademy_backend/internals/features/financing/profiles/model"
)

func approvedProfile(capCents *int64) *profileModel.CustomerFinancingProfile {
	return &profileModel.CustomerFinancingProfile{
		FinancingProfileID:                     uuid.New(),
		FinancingProfileCustomerID:             uuid.New(),
		FinancingProfileApproved:               true,
		FinancingProfileMaxApprovedAmountCents: capCents,
	}
}

func bandTemplate(minCents, maxCents int64) catalogModel.FinancingTemplate {
	t := tpl(4, catalogModel.FrequencyBiweekly, 0, 0)
	t.FinancingTemplateMinAmountCents = minCents
	t.FinancingTemplateMaxAmountCents = maxCents
	return t
}

func TestEvaluateEligibility(t *testing.T) {
	templates := []catalogModel.FinancingTemplate{
		bandTemplate(1000, 50000),
		bandTemplate(50001, 200000),
	}
	cap := int64(100000)

	tests := []struct {
		name           string
		profile        *profileModel.CustomerFinancingProfile
		hasDefaulted   bool
		templates      []catalogModel.FinancingTemplate
		amountCents    int64
		wantEligible   bool
		wantCandidates int
	}{
		{
			name:        "no profile fails closed",
			profile:     nil,
			templates:   templates,
			amountCents: 20000,
		},
		{
			name: "unapproved profile fails closed",
			profile: &profileModel.CustomerFinancingProfile{
				FinancingProfileCustomerID: uuid.New(),
			},
			templates:   templates,
			amountCents: 20000,
		},
		{
			name:         "defaulted plan disqualifies even when approved",
			profile:      approvedProfile(nil),
			hasDefaulted: true,
			templates:    templates,
			amountCents:  20000,
		},
		{
			name:        "amount over approved ceiling",
			profile:     approvedProfile(&cap),
			templates:   templates,
			amountCents: 100001,
		},
		{
			name:        "no template covers the amount",
			profile:     approvedProfile(nil),
			templates:   templates,
			amountCents: 500,
		},
		{
			name:        "no active templates at all",
			profile:     approvedProfile(nil),
			templates:   nil,
			amountCents: 20000,
		},
		{
			name:           "eligible within one band",
			profile:        approvedProfile(&cap),
			templates:      templates,
			amountCents:    20000,
			wantEligible:   true,
			wantCandidates: 1,
		},
		{
			name:           "amount exactly at the ceiling",
			profile:        approvedProfile(&cap),
			templates:      templates,
			amountCents:    100000,
			wantEligible:   true,
			wantCandidates: 1,
		},
		{
			name:           "no ceiling means any covered amount",
			profile:        approvedProfile(nil),
			templates:      templates,
			amountCents:    150000,
			wantEligible:   true,
			wantCandidates: 1,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := evaluateEligibility(tc.profile, tc.hasDefaulted, tc.templates, tc.amountCents)

			assert.Equal(t, tc.wantEligible, got.Eligible)
			if tc.wantEligible {
				require.Len(t, got.CandidateTemplates, tc.wantCandidates)
				for _, c := range got.CandidateTemplates {
					assert.True(t, c.Covers(tc.amountCents))
				}
			} else {
				assert.NotEmpty(t, got.Reason, "ineligible result must carry a reason")
				assert.Empty(t, got.CandidateTemplates)
			}
		})
	}
}

func TestEvaluateEligibility_OverlappingBands(t *testing.T) {
	templates := []catalogModel.FinancingTemplate{
		bandTemplate(0, 100000),
		bandTemplate(50000, 200000),
	}

	got := evaluateEligibility(approvedProfile(nil), false, templates, 75000)
	require.True(t, got.Eligible)
	assert.Len(t, got.CandidateTemplates, 2)
}
