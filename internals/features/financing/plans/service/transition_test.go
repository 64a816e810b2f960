// file: internals/features/financing/plans/service/transition_test.go
package service

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	planModel "tradeacademy_backend/internals/features/financing/plans/model"
)

var testTime = time.Date(2026, 4, 10, 9, 0, 0, 0, time.UTC)

// newTestPlan builds an in-memory plan with n pending installments of
// amountCents each, in the state a freshly created plan is persisted in.
func newTestPlan(n int, amountCents, downPaymentCents int64) (*planModel.InstallmentPlan, []*planModel.InstallmentPaymentRecord) {
	ref := "sub-" + uuid.NewString()
	plan := &planModel.InstallmentPlan{
		PlanID:                  uuid.New(),
		PlanStatus:              planModel.PlanStatusPending,
		PlanDownPaymentCents:    downPaymentCents,
		PlanFinancedAmountCents: amountCents * int64(n),
		PlanNumberOfPayments:    n,
		PlanTotalPaidCents:      downPaymentCents,
		PlanExternalBillingRef:  &ref,
	}
	records := make([]*planModel.InstallmentPaymentRecord, 0, n)
	for i := 1; i <= n; i++ {
		due := testTime.AddDate(0, 0, 14*i)
		records = append(records, &planModel.InstallmentPaymentRecord{
			RecordID:            uuid.New(),
			RecordPlanID:        plan.PlanID,
			RecordPaymentNumber: i,
			RecordDueDate:       due,
			RecordAmountCents:   amountCents,
			RecordStatus:        planModel.RecordStatusPending,
		})
	}
	first := records[0].RecordDueDate
	plan.PlanNextPaymentDate = &first
	return plan, records
}

func activate(t *testing.T, plan *planModel.InstallmentPlan) {
	t.Helper()
	out := ApplyBillingConfirmed(plan, testTime)
	require.True(t, out.Applied)
	require.Equal(t, planModel.PlanStatusActive, plan.PlanStatus)
}

/* ============== activation ============== */

func TestApplyBillingConfirmed(t *testing.T) {
	plan, _ := newTestPlan(4, 10000, 0)

	out := ApplyBillingConfirmed(plan, testTime)
	assert.True(t, out.Applied)
	assert.Equal(t, planModel.PlanStatusActive, plan.PlanStatus)
	require.NotNil(t, plan.PlanActivatedAt)

	// Re-delivery of the confirmation is a recognized duplicate.
	out = ApplyBillingConfirmed(plan, testTime.Add(time.Minute))
	assert.False(t, out.Applied)
	assert.True(t, out.Duplicate)

	plan.PlanStatus = planModel.PlanStatusCancelled
	out = ApplyBillingConfirmed(plan, testTime)
	assert.False(t, out.Applied)
	assert.False(t, out.Duplicate)
	assert.Equal(t, planModel.PlanStatusCancelled, plan.PlanStatus)
}

/* ============== payment success ============== */

func TestApplyPaymentSucceeded_MarksEarliestPending(t *testing.T) {
	plan, records := newTestPlan(4, 10000, 5000)
	activate(t, plan)

	out := ApplyPaymentSucceeded(plan, records, "txn-1", testTime)
	require.True(t, out.Applied)
	assert.False(t, out.CancelBilling)

	assert.Equal(t, planModel.RecordStatusPaid, records[0].RecordStatus)
	assert.Equal(t, 1, plan.PlanPaymentsCompleted)
	assert.Equal(t, int64(5000+10000), plan.PlanTotalPaidCents)
	require.NotNil(t, plan.PlanNextPaymentDate)
	assert.Equal(t, records[1].RecordDueDate, *plan.PlanNextPaymentDate)
}

func TestApplyPaymentSucceeded_DuplicateRefIsNoop(t *testing.T) {
	plan, records := newTestPlan(4, 10000, 0)
	activate(t, plan)

	out := ApplyPaymentSucceeded(plan, records, "txn-1", testTime)
	require.True(t, out.Applied)

	before := *plan
	out = ApplyPaymentSucceeded(plan, records, "txn-1", testTime.Add(time.Hour))
	assert.True(t, out.Duplicate)
	assert.False(t, out.Applied)
	assert.Equal(t, before.PlanPaymentsCompleted, plan.PlanPaymentsCompleted)
	assert.Equal(t, before.PlanTotalPaidCents, plan.PlanTotalPaidCents)
	assert.Equal(t, planModel.RecordStatusPending, records[1].RecordStatus)
}

func TestApplyPaymentSucceeded_BeforeConfirmationActivates(t *testing.T) {
	// Success webhook racing ahead of the subscription confirmation.
	plan, records := newTestPlan(3, 10000, 0)

	out := ApplyPaymentSucceeded(plan, records, "txn-1", testTime)
	require.True(t, out.Applied)
	assert.Equal(t, planModel.PlanStatusActive, plan.PlanStatus)
	assert.NotNil(t, plan.PlanActivatedAt)
	assert.Equal(t, 1, plan.PlanPaymentsCompleted)
}

func TestApplyPaymentSucceeded_FinalPaymentCompletes(t *testing.T) {
	plan, records := newTestPlan(4, 10000, 0)
	activate(t, plan)

	for i := 1; i <= 4; i++ {
		out := ApplyPaymentSucceeded(plan, records, "", testTime.AddDate(0, 0, i))
		require.True(t, out.Applied, "payment %d", i)
		if i < 4 {
			assert.False(t, out.CancelBilling)
		} else {
			// Exactly one cancellation signal, on the completing edge.
			assert.True(t, out.CancelBilling)
		}
	}

	assert.Equal(t, planModel.PlanStatusCompleted, plan.PlanStatus)
	assert.NotNil(t, plan.PlanCompletedAt)
	assert.Equal(t, int64(40000), plan.PlanTotalPaidCents)
	assert.Nil(t, plan.PlanNextPaymentDate)

	// A fifth delivery after completion is ignored, books untouched.
	out := ApplyPaymentSucceeded(plan, records, "txn-late", testTime.AddDate(0, 0, 9))
	assert.False(t, out.Applied)
	assert.False(t, out.CancelBilling)
	assert.Equal(t, 4, plan.PlanPaymentsCompleted)
	assert.Equal(t, int64(40000), plan.PlanTotalPaidCents)
}

func TestApplyPaymentSucceeded_TotalPaidMonotonic(t *testing.T) {
	plan, records := newTestPlan(6, 7500, 2000)
	activate(t, plan)

	last := plan.PlanTotalPaidCents
	for i := 0; i < 10; i++ {
		ApplyPaymentSucceeded(plan, records, "", testTime.Add(time.Duration(i)*time.Hour))
		assert.GreaterOrEqual(t, plan.PlanTotalPaidCents, last)
		last = plan.PlanTotalPaidCents
	}
	assert.Equal(t, int64(2000+6*7500), last)
}

/* ============== payment failure ============== */

func TestApplyPaymentFailed_ThresholdDefaults(t *testing.T) {
	plan, records := newTestPlan(4, 10000, 0)
	activate(t, plan)

	for i := 1; i <= maxConsecutiveFailures; i++ {
		out := ApplyPaymentFailed(plan, records, "deny", testTime.Add(time.Duration(i)*time.Hour))
		require.True(t, out.Applied)
		if i < maxConsecutiveFailures {
			assert.False(t, out.CancelBilling)
			assert.Equal(t, planModel.PlanStatusActive, plan.PlanStatus)
		} else {
			assert.True(t, out.CancelBilling)
		}
	}

	assert.Equal(t, planModel.PlanStatusDefaulted, plan.PlanStatus)
	require.NotNil(t, plan.PlanDefaultReason)
	assert.Equal(t, "deny", *plan.PlanDefaultReason)
	assert.Nil(t, plan.PlanNextPaymentDate)
	for _, r := range records {
		assert.Equal(t, planModel.RecordStatusFailed, r.RecordStatus)
	}

	// Post-default events are ignored.
	out := ApplyPaymentFailed(plan, records, "deny", testTime)
	assert.False(t, out.Applied)
	out = ApplyPaymentSucceeded(plan, records, "txn-x", testTime)
	assert.False(t, out.Applied)
}

func TestApplyPaymentFailed_SuccessResetsCounter(t *testing.T) {
	plan, records := newTestPlan(5, 10000, 0)
	activate(t, plan)

	ApplyPaymentFailed(plan, records, "deny", testTime)
	ApplyPaymentFailed(plan, records, "deny", testTime)
	assert.Equal(t, 2, plan.PlanFailedPaymentAttempts)

	out := ApplyPaymentSucceeded(plan, records, "txn-1", testTime)
	require.True(t, out.Applied)
	assert.Equal(t, 0, plan.PlanFailedPaymentAttempts)

	// Two more failures still sit below the threshold.
	ApplyPaymentFailed(plan, records, "expire", testTime)
	ApplyPaymentFailed(plan, records, "expire", testTime)
	assert.Equal(t, planModel.PlanStatusActive, plan.PlanStatus)

	out = ApplyPaymentFailed(plan, records, "expire", testTime)
	assert.True(t, out.CancelBilling)
	assert.Equal(t, planModel.PlanStatusDefaulted, plan.PlanStatus)
}

func TestApplyPaymentFailed_BeforeActivationIgnored(t *testing.T) {
	plan, records := newTestPlan(3, 10000, 0)

	out := ApplyPaymentFailed(plan, records, "deny", testTime)
	assert.False(t, out.Applied)
	assert.Equal(t, 0, plan.PlanFailedPaymentAttempts)
	assert.Equal(t, planModel.PlanStatusPending, plan.PlanStatus)
}

func TestApplyPaymentFailed_AnnotatesEarliestPending(t *testing.T) {
	plan, records := newTestPlan(3, 10000, 0)
	activate(t, plan)

	ApplyPaymentFailed(plan, records, "insufficient_funds", testTime)
	require.NotNil(t, records[0].RecordFailureReason)
	assert.Equal(t, "insufficient_funds", *records[0].RecordFailureReason)
	assert.Nil(t, records[1].RecordFailureReason)
}

/* ============== cancel ============== */

func TestApplyCancel(t *testing.T) {
	plan, _ := newTestPlan(4, 10000, 0)
	activate(t, plan)

	out, err := ApplyCancel(plan, "customer request", "customer:abc", testTime)
	require.NoError(t, err)
	assert.True(t, out.Applied)
	assert.True(t, out.CancelBilling)
	assert.Equal(t, planModel.PlanStatusCancelled, plan.PlanStatus)
	require.NotNil(t, plan.PlanCancelReason)
	assert.Equal(t, "customer request", *plan.PlanCancelReason)
	require.NotNil(t, plan.PlanCancelActor)
	assert.Equal(t, "customer:abc", *plan.PlanCancelActor)
	assert.Nil(t, plan.PlanNextPaymentDate)

	// Cancelling a terminal plan is an invalid transition.
	_, err = ApplyCancel(plan, "again", "admin:x", testTime)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestApplyCancel_NoBillingRefSkipsExternalCancel(t *testing.T) {
	plan, _ := newTestPlan(4, 10000, 0)
	plan.PlanExternalBillingRef = nil

	out, err := ApplyCancel(plan, "billing setup failed", "system", testTime)
	require.NoError(t, err)
	assert.True(t, out.Applied)
	assert.False(t, out.CancelBilling)
}

func TestTerminalStatesAreImmutable(t *testing.T) {
	terminal := []planModel.PlanStatus{
		planModel.PlanStatusCompleted,
		planModel.PlanStatusCancelled,
		planModel.PlanStatusDefaulted,
	}
	for _, st := range terminal {
		plan, records := newTestPlan(2, 10000, 0)
		plan.PlanStatus = st

		assert.False(t, ApplyBillingConfirmed(plan, testTime).Applied, "%s", st)
		assert.False(t, ApplyPaymentSucceeded(plan, records, "txn", testTime).Applied, "%s", st)
		assert.False(t, ApplyPaymentFailed(plan, records, "deny", testTime).Applied, "%s", st)
		_, err := ApplyCancel(plan, "r", "a", testTime)
		assert.ErrorIs(t, err, ErrInvalidTransition, "%s", st)
		assert.Equal(t, st, plan.PlanStatus)
	}
}

func TestEarliestPending_OrderIndependent(t *testing.T) {
	_, records := newTestPlan(3, 10000, 0)
	shuffled := []*planModel.InstallmentPaymentRecord{records[2], records[0], records[1]}

	got := earliestPending(shuffled)
	require.NotNil(t, got)
	assert.Equal(t, 1, got.RecordPaymentNumber)

	records[0].RecordStatus = planModel.RecordStatusPaid
	got = earliestPending(shuffled)
	require.NotNil(t, got)
	assert.Equal(t, 2, got.RecordPaymentNumber)
}
