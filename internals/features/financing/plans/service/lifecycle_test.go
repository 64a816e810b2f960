// file: internals/features/financing/plans/service/lifecycle_test.go
package service

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zoobzio/clockz"

	planModel "tradeacademy_backend/internals/features/financing/plans/model"
)

type countingGateway struct {
	cancelCalls int
	cancelRefs  []string
	cancelErr   error
}

func (g *countingGateway) CreateRecurringBilling(ctx context.Context, in CreateBillingInput) (*BillingSetup, error) {
	return &BillingSetup{BillingRef: "sub-test"}, nil
}

func (g *countingGateway) CancelRecurringBilling(ctx context.Context, ref string) error {
	g.cancelCalls++
	g.cancelRefs = append(g.cancelRefs, ref)
	return g.cancelErr
}

// dispatch mirrors what ApplyWebhookEvent / CancelPlan do after commit: fire
// the external cancellation iff the transition raised the flag.
func (s *LifecycleService) dispatchForTest(plan *planModel.InstallmentPlan, out TransitionOutcome) {
	if out.CancelBilling && plan.PlanExternalBillingRef != nil {
		s.cancelBillingOutOfBand(context.Background(), *plan.PlanExternalBillingRef)
	}
}

func TestExternalCancellation_ExactlyOnceOnCompletion(t *testing.T) {
	gw := &countingGateway{}
	s := &LifecycleService{Gateway: gw, Clock: clockz.RealClock}

	plan, records := newTestPlan(4, 10000, 0)
	s.dispatchForTest(plan, ApplyBillingConfirmed(plan, testTime))

	// Four real payments plus two late re-deliveries after completion.
	for i := 1; i <= 6; i++ {
		out := ApplyPaymentSucceeded(plan, records, fmt.Sprintf("txn-%d", i), testTime)
		s.dispatchForTest(plan, out)
	}

	assert.Equal(t, planModel.PlanStatusCompleted, plan.PlanStatus)
	assert.Equal(t, 1, gw.cancelCalls, "recurring billing must be cancelled exactly once")
	require.Len(t, gw.cancelRefs, 1)
	assert.Equal(t, *plan.PlanExternalBillingRef, gw.cancelRefs[0])
}

func TestExternalCancellation_ExactlyOnceOnDefault(t *testing.T) {
	gw := &countingGateway{}
	s := &LifecycleService{Gateway: gw, Clock: clockz.RealClock}

	plan, records := newTestPlan(4, 10000, 0)
	s.dispatchForTest(plan, ApplyBillingConfirmed(plan, testTime))

	// Failures past the threshold keep arriving; only the defaulting edge fires.
	for i := 0; i < maxConsecutiveFailures+2; i++ {
		out := ApplyPaymentFailed(plan, records, "deny", testTime)
		s.dispatchForTest(plan, out)
	}

	assert.Equal(t, planModel.PlanStatusDefaulted, plan.PlanStatus)
	assert.Equal(t, 1, gw.cancelCalls)
}

func TestExternalCancellation_ExactlyOnceOnCancel(t *testing.T) {
	gw := &countingGateway{}
	s := &LifecycleService{Gateway: gw, Clock: clockz.RealClock}

	plan, _ := newTestPlan(4, 10000, 0)
	s.dispatchForTest(plan, ApplyBillingConfirmed(plan, testTime))

	out, err := ApplyCancel(plan, "customer request", "customer:abc", testTime)
	require.NoError(t, err)
	s.dispatchForTest(plan, out)

	// A second cancel is an invalid transition and must not reach the gateway.
	_, err = ApplyCancel(plan, "again", "admin:x", testTime)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	assert.Equal(t, 1, gw.cancelCalls)
}

func TestCancelBillingOutOfBand_FailureIsSwallowed(t *testing.T) {
	// Local state is authoritative; a gateway outage during cancellation is
	// logged and reconciled later, never escalated.
	gw := &countingGateway{cancelErr: errors.New("gateway down")}
	s := &LifecycleService{Gateway: gw, Clock: clockz.RealClock}

	s.cancelBillingOutOfBand(context.Background(), "sub-1")
	assert.Equal(t, 1, gw.cancelCalls)
}
