// file: internals/features/financing/plans/service/schedule_test.go
package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	catalogModel "tradeacademy_backend/internals/features/financing/catalog/model"
	planModel "tradeacademy_backend/internals/features/financing/plans/model"
)

func tpl(n int, freq catalogModel.PaymentFrequency, downPct, feePct float64) catalogModel.FinancingTemplate {
	return catalogModel.FinancingTemplate{
		FinancingTemplateName:                 "test",
		FinancingTemplateNumberOfPayments:     n,
		FinancingTemplateFrequency:            freq,
		FinancingTemplateDownPaymentPercent:   downPct,
		FinancingTemplateProcessingFeePercent: feePct,
		FinancingTemplateMinAmountCents:       0,
		FinancingTemplateMaxAmountCents:       100_000_000,
		FinancingTemplateIsActive:             true,
	}
}

func TestQuoteSchedule_EvenSplit(t *testing.T) {
	// $400.00 over 4 biweekly payments, no down payment, no fee.
	q, err := QuoteSchedule(tpl(4, catalogModel.FrequencyBiweekly, 0, 0), 40000)
	require.NoError(t, err)

	assert.Equal(t, int64(0), q.DownPaymentCents)
	assert.Equal(t, int64(0), q.ProcessingFeeCents)
	assert.Equal(t, int64(40000), q.FinancedAmountCents)
	assert.Equal(t, int64(10000), q.InstallmentAmountCents)

	start := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	records := BuildSchedule(q, start)
	require.Len(t, records, 4)
	for i, r := range records {
		assert.Equal(t, i+1, r.RecordPaymentNumber)
		assert.Equal(t, int64(10000), r.RecordAmountCents)
		assert.Equal(t, planModel.RecordStatusPending, r.RecordStatus)
		assert.Equal(t, start.AddDate(0, 0, 14*(i+1)), r.RecordDueDate)
	}
}

func TestQuoteSchedule_RemainderOnFinalInstallment(t *testing.T) {
	// $100.03 over 3 monthly payments: 3334 + 3334 + 3335 = 10003.
	q, err := QuoteSchedule(tpl(3, catalogModel.FrequencyMonthly, 0, 0), 10003)
	require.NoError(t, err)
	assert.Equal(t, int64(3334), q.InstallmentAmountCents)

	records := BuildSchedule(q, time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC))
	require.Len(t, records, 3)
	assert.Equal(t, int64(3334), records[0].RecordAmountCents)
	assert.Equal(t, int64(3334), records[1].RecordAmountCents)
	assert.Equal(t, int64(3335), records[2].RecordAmountCents)
}

func TestQuoteSchedule_DownPaymentAndFeeRounding(t *testing.T) {
	// 10% down on 10003 = 1000.3 → 1000; 2.5% fee = 250.075 → 250.
	q, err := QuoteSchedule(tpl(3, catalogModel.FrequencyMonthly, 10, 2.5), 10003)
	require.NoError(t, err)

	assert.Equal(t, int64(1000), q.DownPaymentCents)
	assert.Equal(t, int64(250), q.ProcessingFeeCents)
	assert.Equal(t, int64(10003-1000+250), q.FinancedAmountCents)

	// Half-up at the boundary: 0.5% of 100 cents = 0.5 → 1.
	q2, err := QuoteSchedule(tpl(1, catalogModel.FrequencyWeekly, 0.5, 0), 100)
	require.NoError(t, err)
	assert.Equal(t, int64(1), q2.DownPaymentCents)
}

func TestBuildSchedule_SumsToFinancedAmount(t *testing.T) {
	amounts := []int64{1, 99, 100, 10003, 999_999, 1_234_567, 50_000_00}
	counts := []int{1, 2, 3, 4, 6, 12, 24}
	freqs := []catalogModel.PaymentFrequency{
		catalogModel.FrequencyWeekly,
		catalogModel.FrequencyBiweekly,
		catalogModel.FrequencyMonthly,
	}
	start := time.Date(2026, 2, 28, 12, 0, 0, 0, time.UTC)

	for _, amount := range amounts {
		for _, n := range counts {
			for _, f := range freqs {
				q, err := QuoteSchedule(tpl(n, f, 12.5, 1.75), amount)
				require.NoError(t, err)

				records := BuildSchedule(q, start)
				require.Len(t, records, n)

				var sum int64
				prev := start
				for _, r := range records {
					sum += r.RecordAmountCents
					assert.True(t, r.RecordDueDate.After(prev), "due dates must be strictly increasing")
					prev = r.RecordDueDate
				}
				assert.Equal(t, q.FinancedAmountCents, sum,
					"amount=%d n=%d freq=%s", amount, n, f)
			}
		}
	}
}

func TestBuildSchedule_Deterministic(t *testing.T) {
	q, err := QuoteSchedule(tpl(6, catalogModel.FrequencyWeekly, 20, 3), 123457)
	require.NoError(t, err)

	start := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	a := BuildSchedule(q, start)
	b := BuildSchedule(q, start)
	require.Equal(t, a, b)
}

func TestQuoteSchedule_Rejections(t *testing.T) {
	_, err := QuoteSchedule(tpl(3, catalogModel.FrequencyMonthly, 0, 0), 0)
	assert.Error(t, err)

	_, err = QuoteSchedule(tpl(3, catalogModel.FrequencyMonthly, 0, 0), -500)
	assert.Error(t, err)

	_, err = QuoteSchedule(tpl(0, catalogModel.FrequencyMonthly, 0, 0), 10000)
	assert.Error(t, err)

	_, err = QuoteSchedule(tpl(3, catalogModel.PaymentFrequency("daily"), 0, 0), 10000)
	assert.Error(t, err)

	// 100% down with no fee leaves nothing to finance.
	_, err = QuoteSchedule(tpl(3, catalogModel.FrequencyMonthly, 100, 0), 10000)
	assert.Error(t, err)
}

func TestAddFrequency_MonthEndClamping(t *testing.T) {
	// Go's AddDate normalizes Jan 31 + 1 month to Mar 2/3; the schedule relies
	// on that being stable, not on calendar-end clamping.
	jan31 := time.Date(2026, 1, 31, 0, 0, 0, 0, time.UTC)
	got := addFrequency(jan31, catalogModel.FrequencyMonthly)
	assert.Equal(t, jan31.AddDate(0, 1, 0), got)
}
