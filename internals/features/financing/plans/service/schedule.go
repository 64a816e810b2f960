// file: internals/features/financing/plans/service/schedule.go
package service

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	catalogModel "tradeacademy_backend/internals/features/financing/catalog/model"
	planModel "tradeacademy_backend/internals/features/financing/plans/model"
)

/* =========================================================
   Schedule generation (pure, deterministic, no I/O)
========================================================= */

var oneHundred = decimal.NewFromInt(100)

// ScheduleQuote is the money breakdown for a plan before it is persisted.
type ScheduleQuote struct {
	TotalAmountCents       int64
	DownPaymentCents       int64
	ProcessingFeeCents     int64
	FinancedAmountCents    int64
	InstallmentAmountCents int64 // per-installment base amount (floor)
	NumberOfPayments       int
	Frequency              catalogModel.PaymentFrequency
}

// QuoteSchedule computes the money split for a template + purchase amount.
// Down payment and processing fee round half-up to the cent; the installment
// base amount floors, and the remainder lands on the final installment so the
// schedule sums exactly to the financed amount.
func QuoteSchedule(tpl catalogModel.FinancingTemplate, totalAmountCents int64) (ScheduleQuote, error) {
	if totalAmountCents <= 0 {
		return ScheduleQuote{}, fmt.Errorf("total amount must be positive, got %d", totalAmountCents)
	}
	if tpl.FinancingTemplateNumberOfPayments < 1 {
		return ScheduleQuote{}, fmt.Errorf("template has no payments")
	}
	if !catalogModel.ValidFrequency(tpl.FinancingTemplateFrequency) {
		return ScheduleQuote{}, fmt.Errorf("unknown frequency %q", tpl.FinancingTemplateFrequency)
	}

	total := decimal.NewFromInt(totalAmountCents)
	downPayment := total.
		Mul(decimal.NewFromFloat(tpl.FinancingTemplateDownPaymentPercent)).
		Div(oneHundred).
		Round(0).IntPart()
	processingFee := total.
		Mul(decimal.NewFromFloat(tpl.FinancingTemplateProcessingFeePercent)).
		Div(oneHundred).
		Round(0).IntPart()

	financed := totalAmountCents - downPayment + processingFee
	if financed <= 0 {
		return ScheduleQuote{}, fmt.Errorf("financed amount is not positive (%d)", financed)
	}

	n := int64(tpl.FinancingTemplateNumberOfPayments)
	return ScheduleQuote{
		TotalAmountCents:       totalAmountCents,
		DownPaymentCents:       downPayment,
		ProcessingFeeCents:     processingFee,
		FinancedAmountCents:    financed,
		InstallmentAmountCents: financed / n,
		NumberOfPayments:       tpl.FinancingTemplateNumberOfPayments,
		Frequency:              tpl.FinancingTemplateFrequency,
	}, nil
}

// BuildSchedule materializes the ordered installment records for a quote.
// The first due date is one frequency interval after startDate; each
// subsequent due date steps from the previous one.
func BuildSchedule(q ScheduleQuote, startDate time.Time) []planModel.InstallmentPaymentRecord {
	records := make([]planModel.InstallmentPaymentRecord, 0, q.NumberOfPayments)

	due := startDate
	var allocated int64
	for i := 1; i <= q.NumberOfPayments; i++ {
		due = addFrequency(due, q.Frequency)

		amount := q.InstallmentAmountCents
		if i == q.NumberOfPayments {
			// Final installment absorbs the rounding remainder.
			amount = q.FinancedAmountCents - allocated
		}
		allocated += amount

		records = append(records, planModel.InstallmentPaymentRecord{
			RecordPaymentNumber: i,
			RecordDueDate:       due,
			RecordAmountCents:   amount,
			RecordStatus:        planModel.RecordStatusPending,
		})
	}
	return records
}

func addFrequency(t time.Time, f catalogModel.PaymentFrequency) time.Time {
	switch f {
	case catalogModel.FrequencyWeekly:
		return t.AddDate(0, 0, 7)
	case catalogModel.FrequencyBiweekly:
		return t.AddDate(0, 0, 14)
	case catalogModel.FrequencyMonthly:
		return t.AddDate(0, 1, 0)
	}
	return t
}
