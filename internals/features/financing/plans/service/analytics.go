// file: internals/features/financing/plans/service/analytics.go
package service

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	planModel "tradeacademy_backend/internals/features/financing/plans/model"
)

/* =========================================================
   Admin analytics read model (aggregation only, no lifecycle
   logic)
========================================================= */

type PlanAnalytics struct {
	CountsByStatus      map[string]int64 `json:"counts_by_status"`
	TotalPlans          int64            `json:"total_plans"`
	TotalFinancedCents  int64            `json:"total_financed_cents"`
	TotalCollectedCents int64            `json:"total_collected_cents"`
	DefaultRate         float64          `json:"default_rate"`
}

type AnalyticsService struct {
	DB *gorm.DB
}

func NewAnalyticsService(db *gorm.DB) *AnalyticsService {
	return &AnalyticsService{DB: db}
}

func (s *AnalyticsService) PlanAnalytics(ctx context.Context) (*PlanAnalytics, error) {
	type statusRow struct {
		PlanStatus string
		Cnt        int64
	}
	var statusRows []statusRow
	if err := s.DB.WithContext(ctx).Model(&planModel.InstallmentPlan{}).
		Select("plan_status, COUNT(*) AS cnt").
		Group("plan_status").
		Scan(&statusRows).Error; err != nil {
		return nil, fmt.Errorf("counts by status: %w", err)
	}

	out := &PlanAnalytics{CountsByStatus: make(map[string]int64)}
	for _, r := range statusRows {
		out.CountsByStatus[r.PlanStatus] = r.Cnt
		out.TotalPlans += r.Cnt
	}

	type sumRow struct {
		Financed  int64
		Collected int64
	}
	var sums sumRow
	if err := s.DB.WithContext(ctx).Model(&planModel.InstallmentPlan{}).
		Select("COALESCE(SUM(plan_financed_amount_cents),0) AS financed, COALESCE(SUM(plan_total_paid_cents),0) AS collected").
		Scan(&sums).Error; err != nil {
		return nil, fmt.Errorf("sum amounts: %w", err)
	}
	out.TotalFinancedCents = sums.Financed
	out.TotalCollectedCents = sums.Collected

	if out.TotalPlans > 0 {
		out.DefaultRate = float64(out.CountsByStatus[string(planModel.PlanStatusDefaulted)]) / float64(out.TotalPlans)
	}
	return out, nil
}
