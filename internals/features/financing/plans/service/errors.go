package service

import "errors"

// Domain error taxonomy. Controllers map these to HTTP codes; webhook
// processing logs UnknownBillingRef instead of surfacing it.
var (
	// ErrIneligible: eligibility checks failed. Surfaced to the caller,
	// never retried.
	ErrIneligible = errors.New("customer is not eligible for financing")

	// ErrInvalidTransition: the state machine does not permit the requested
	// action from the plan's current state.
	ErrInvalidTransition = errors.New("invalid plan state transition")

	// ErrGatewayUnavailable: transient billing-processor failure; retried
	// with backoff up to a bounded number of attempts.
	ErrGatewayUnavailable = errors.New("billing gateway unavailable")

	// ErrInvalidCustomer: definitive rejection by the billing processor.
	// Never retried.
	ErrInvalidCustomer = errors.New("billing gateway rejected customer")

	// ErrUnknownBillingRef: an inbound event references a billing ref we do
	// not recognize. Logged and dropped.
	ErrUnknownBillingRef = errors.New("unknown external billing reference")

	ErrPlanNotFound     = errors.New("installment plan not found")
	ErrTemplateNotFound = errors.New("financing template not found")
)
