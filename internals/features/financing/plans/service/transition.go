// file: internals/features/financing/plans/service/transition.go
package service

import (
	"time"

	planModel "tradeacademy_backend/internals/features/financing/plans/model"
)

/* =========================================================
   Plan state machine (pure; persistence lives in lifecycle.go)
========================================================= */

// maxConsecutiveFailures is a fixed policy constant. The counter is not
// decayed by time; only a successful payment resets it.
const maxConsecutiveFailures = 3

// TransitionOutcome describes what a transition did, so the caller knows
// what to persist and whether to fire the external cancellation.
type TransitionOutcome struct {
	Applied   bool // plan/record state changed and must be persisted
	Duplicate bool // recognized re-delivery, deliberate no-op

	// CancelBilling is set on the single transition edge into a terminal
	// state that ends recurring billing. The caller must issue exactly one
	// best-effort cancellation call when it is set.
	CancelBilling bool

	Note string
}

func noopOutcome(note string) TransitionOutcome {
	return TransitionOutcome{Note: note}
}

// ApplyBillingConfirmed drives PENDING → ACTIVE.
func ApplyBillingConfirmed(plan *planModel.InstallmentPlan, ts time.Time) TransitionOutcome {
	if plan.IsTerminal() {
		return noopOutcome("event after terminal state ignored")
	}
	if plan.PlanStatus == planModel.PlanStatusActive {
		return TransitionOutcome{Duplicate: true, Note: "plan already active"}
	}

	plan.PlanStatus = planModel.PlanStatusActive
	at := ts
	plan.PlanActivatedAt = &at
	return TransitionOutcome{Applied: true, Note: "plan activated"}
}

// ApplyPaymentSucceeded marks the earliest pending installment paid. The
// event is matched by position, not by amount equality: the processor is the
// source of truth for "a payment happened", the plan only keeps the books.
// Duplicate deliveries (same external payment ref, or no pending installment
// left) are no-ops.
func ApplyPaymentSucceeded(plan *planModel.InstallmentPlan, records []*planModel.InstallmentPaymentRecord, externalPaymentRef string, ts time.Time) TransitionOutcome {
	if plan.IsTerminal() {
		return noopOutcome("event after terminal state ignored")
	}

	// A successful charge implies the billing mechanism exists, so a success
	// arriving before the confirmation webhook activates the plan first.
	if plan.PlanStatus == planModel.PlanStatusPending {
		_ = ApplyBillingConfirmed(plan, ts)
	}

	if externalPaymentRef != "" {
		for _, r := range records {
			if r.RecordStatus == planModel.RecordStatusPaid &&
				r.RecordExternalPaymentRef != nil && *r.RecordExternalPaymentRef == externalPaymentRef {
				return TransitionOutcome{Duplicate: true, Note: "payment ref already applied"}
			}
		}
	}

	target := earliestPending(records)
	if target == nil {
		return TransitionOutcome{Duplicate: true, Note: "no pending installment, duplicate delivery"}
	}

	now := ts
	target.RecordStatus = planModel.RecordStatusPaid
	target.RecordPaidAt = &now
	if externalPaymentRef != "" {
		ref := externalPaymentRef
		target.RecordExternalPaymentRef = &ref
	}

	plan.PlanPaymentsCompleted++
	plan.PlanTotalPaidCents += target.RecordAmountCents
	plan.PlanFailedPaymentAttempts = 0
	refreshNextPaymentDate(plan, records)

	if earliestPending(records) == nil {
		plan.PlanStatus = planModel.PlanStatusCompleted
		plan.PlanCompletedAt = &now
		return TransitionOutcome{Applied: true, CancelBilling: true, Note: "final installment paid, plan completed"}
	}
	return TransitionOutcome{Applied: true, Note: "installment paid"}
}

// ApplyPaymentFailed bumps the consecutive-failure counter and defaults the
// plan once the threshold is reached.
func ApplyPaymentFailed(plan *planModel.InstallmentPlan, records []*planModel.InstallmentPaymentRecord, reasonCode string, ts time.Time) TransitionOutcome {
	if plan.IsTerminal() {
		return noopOutcome("event after terminal state ignored")
	}
	if plan.PlanStatus != planModel.PlanStatusActive {
		// Failures before activation (e.g. a declined setup charge) do not
		// count toward default; the plan is not collecting yet.
		return noopOutcome("failure before activation ignored")
	}

	plan.PlanFailedPaymentAttempts++
	if target := earliestPending(records); target != nil {
		reason := reasonCode
		target.RecordFailureReason = &reason
	}

	if plan.PlanFailedPaymentAttempts < maxConsecutiveFailures {
		return TransitionOutcome{Applied: true, Note: "payment failure recorded"}
	}

	now := ts
	plan.PlanStatus = planModel.PlanStatusDefaulted
	plan.PlanDefaultedAt = &now
	reason := reasonCode
	plan.PlanDefaultReason = &reason
	for _, r := range records {
		if r.RecordStatus == planModel.RecordStatusPending {
			r.RecordStatus = planModel.RecordStatusFailed
		}
	}
	plan.PlanNextPaymentDate = nil
	return TransitionOutcome{Applied: true, CancelBilling: true, Note: "failure threshold reached, plan defaulted"}
}

// ApplyCancel terminates a non-terminal plan on explicit request.
func ApplyCancel(plan *planModel.InstallmentPlan, reason, actor string, ts time.Time) (TransitionOutcome, error) {
	if plan.IsTerminal() {
		return TransitionOutcome{}, ErrInvalidTransition
	}

	now := ts
	plan.PlanStatus = planModel.PlanStatusCancelled
	plan.PlanCancelledAt = &now
	if reason != "" {
		r := reason
		plan.PlanCancelReason = &r
	}
	if actor != "" {
		a := actor
		plan.PlanCancelActor = &a
	}
	plan.PlanNextPaymentDate = nil

	// Only cancel externally if a billing mechanism was ever created.
	cancelBilling := plan.PlanExternalBillingRef != nil && *plan.PlanExternalBillingRef != ""
	return TransitionOutcome{Applied: true, CancelBilling: cancelBilling, Note: "plan cancelled"}, nil
}

/* ============== helpers ============== */

// earliestPending returns the pending record with the lowest payment number.
// Explicit comparator; never rely on slice or storage iteration order.
func earliestPending(records []*planModel.InstallmentPaymentRecord) *planModel.InstallmentPaymentRecord {
	var best *planModel.InstallmentPaymentRecord
	for _, r := range records {
		if r.RecordStatus != planModel.RecordStatusPending {
			continue
		}
		if best == nil || r.RecordPaymentNumber < best.RecordPaymentNumber {
			best = r
		}
	}
	return best
}

func refreshNextPaymentDate(plan *planModel.InstallmentPlan, records []*planModel.InstallmentPaymentRecord) {
	if next := earliestPending(records); next != nil {
		due := next.RecordDueDate
		plan.PlanNextPaymentDate = &due
		return
	}
	plan.PlanNextPaymentDate = nil
}
