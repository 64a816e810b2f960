// file: internals/features/financing/plans/service/gateway.go
package service

import (
	"context"
	"crypto/sha512"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	midtrans "github.com/midtrans/midtrans-go"
	"github.com/midtrans/midtrans-go/coreapi"
	"github.com/midtrans/midtrans-go/snap"
	"github.com/shopspring/decimal"
	"github.com/zoobzio/clockz"

	catalogModel "tradeacademy_backend/internals/features/financing/catalog/model"
)

/* =========================================================
   Midtrans Clients
========================================================= */

var (
	snapClient snap.Client
	coreClient coreapi.Client
	serverKey  string
)

// InitMidtrans must be called during app bootstrap.
// useProduction=true for Production, false for Sandbox.
func InitMidtrans(key string, useProduction bool) {
	serverKey = key
	env := midtrans.Sandbox
	if useProduction {
		env = midtrans.Production
	}
	snapClient.New(key, env)
	coreClient.New(key, env)
}

/* =========================================================
   Gateway boundary
========================================================= */

type CreateBillingInput struct {
	OrderID                   string // internal plan id, used as the gateway order id
	CustomerRef               string
	CustomerEmail             string
	ProductLabel              string
	DownPaymentCents          int64
	PerInstallmentAmountCents int64
	Frequency                 catalogModel.PaymentFrequency
	TotalOccurrences          int
	StartTime                 time.Time
}

type BillingSetup struct {
	BillingRef    string // recurring-billing id at the processor; immutable once stored
	CheckoutToken string
	CheckoutURL   string
}

// BillingGateway is the boundary to the external recurring-billing
// processor. CancelRecurringBilling is best effort: the local ledger stays
// authoritative and a failed cancellation is logged, never propagated into
// plan state.
type BillingGateway interface {
	CreateRecurringBilling(ctx context.Context, in CreateBillingInput) (*BillingSetup, error)
	CancelRecurringBilling(ctx context.Context, billingRef string) error
}

/* =========================================================
   Midtrans implementation
========================================================= */

type MidtransGateway struct {
	clock clockz.Clock
}

func NewMidtransGateway(clock clockz.Clock) *MidtransGateway {
	if clock == nil {
		clock = clockz.RealClock
	}
	return &MidtransGateway{clock: clock}
}

// cardVerificationChargeCents is the nominal checkout charge used when a
// plan has no down payment. The session then only registers the card; this
// charge is deliberately not credited to the plan books.
const cardVerificationChargeCents int64 = 100

// checkoutChargeAmount is what the checkout session collects. With a down
// payment the checkout collects exactly that (credited to the plan at
// creation). Without one it must still charge something to tokenize the
// card, so it charges the nominal verification amount. It must never charge
// an installment: the subscription schedules all of those.
func checkoutChargeAmount(downPaymentCents int64) int64 {
	if downPaymentCents > 0 {
		return downPaymentCents
	}
	return cardVerificationChargeCents
}

func (g *MidtransGateway) CreateRecurringBilling(ctx context.Context, in CreateBillingInput) (*BillingSetup, error) {
	// 1) Checkout session: collects the card (and the down payment when the
	// template has one).
	checkoutAmount := checkoutChargeAmount(in.DownPaymentCents)

	snapReq := &snap.Request{
		TransactionDetails: midtrans.TransactionDetails{
			OrderID:  in.OrderID + "-checkout",
			GrossAmt: checkoutAmount,
		},
		CreditCard: &snap.CreditCardDetails{Secure: true, SaveCard: true},
		Items: &[]midtrans.ItemDetails{
			{
				ID:       in.OrderID,
				Price:    checkoutAmount,
				Qty:      1,
				Name:     truncate(in.ProductLabel, 50),
				Category: "financing",
			},
		},
		CustomerDetail: &midtrans.CustomerDetails{
			FName: in.CustomerRef,
			Email: in.CustomerEmail,
		},
	}

	var snapResp *snap.Response
	err := retryTransient(ctx, g.clock, func() error {
		resp, mErr := snapClient.CreateTransaction(snapReq)
		if mErr != nil {
			return classifyMidtransError(mErr)
		}
		snapResp = resp
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("create checkout session: %w", err)
	}

	// 2) Subscription for the recurring installments.
	interval, unit := frequencyToSchedule(in.Frequency)
	subReq := &coreapi.SubscriptionReq{
		Name:        "plan-" + in.OrderID,
		Amount:      in.PerInstallmentAmountCents,
		Currency:    "IDR",
		PaymentType: coreapi.PaymentTypeCreditCard,
		Schedule: coreapi.ScheduleDetails{
			Interval:     interval,
			IntervalUnit: unit,
			MaxInterval:  in.TotalOccurrences,
			StartTime:    in.StartTime.Format("2006-01-02 15:04:05 -0700"),
		},
		Metadata: map[string]interface{}{
			"plan_id":       in.OrderID,
			"product_label": in.ProductLabel,
		},
	}

	var subID string
	err = retryTransient(ctx, g.clock, func() error {
		resp, mErr := coreClient.CreateSubscription(subReq)
		if mErr != nil {
			return classifyMidtransError(mErr)
		}
		subID = resp.ID
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("create subscription: %w", err)
	}

	return &BillingSetup{
		BillingRef:    subID,
		CheckoutToken: snapResp.Token,
		CheckoutURL:   snapResp.RedirectURL,
	}, nil
}

func (g *MidtransGateway) CancelRecurringBilling(ctx context.Context, billingRef string) error {
	return retryTransient(ctx, g.clock, func() error {
		if _, mErr := coreClient.DisableSubscription(billingRef); mErr != nil {
			return classifyMidtransError(mErr)
		}
		return nil
	})
}

func frequencyToSchedule(f catalogModel.PaymentFrequency) (int, string) {
	switch f {
	case catalogModel.FrequencyWeekly:
		return 7, "day"
	case catalogModel.FrequencyBiweekly:
		return 14, "day"
	default:
		return 1, "month"
	}
}

// classifyMidtransError splits processor failures into transient
// (retryable) and definitive (not retryable) per the error taxonomy.
func classifyMidtransError(mErr *midtrans.Error) error {
	if mErr == nil {
		return nil
	}
	if mErr.RawError != nil || mErr.StatusCode == 0 || mErr.StatusCode >= 500 {
		return fmt.Errorf("%w: %s", ErrGatewayUnavailable, mErr.Message)
	}
	return fmt.Errorf("%w: %s (status %d)", ErrInvalidCustomer, mErr.Message, mErr.StatusCode)
}

/* =========================================================
   Bounded retry with backoff (transient errors only)
========================================================= */

const (
	gatewayMaxAttempts = 4
	gatewayBaseBackoff = 500 * time.Millisecond
)

func retryTransient(ctx context.Context, clock clockz.Clock, op func() error) error {
	backoff := gatewayBaseBackoff
	var err error
	for attempt := 1; attempt <= gatewayMaxAttempts; attempt++ {
		if err = op(); err == nil || !isTransient(err) {
			return err
		}
		if attempt == gatewayMaxAttempts {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-clock.After(backoff):
		}
		backoff *= 2
	}
	return err
}

func isTransient(err error) bool {
	return errors.Is(err, ErrGatewayUnavailable)
}

/* =========================================================
   Webhook normalization
========================================================= */

type EventKind string

const (
	EventBillingConfirmed EventKind = "billing_confirmed"
	EventPaymentSucceeded EventKind = "payment_succeeded"
	EventPaymentFailed    EventKind = "payment_failed"
)

// NormalizedEvent is the internal shape every inbound webhook payload is
// reduced to before it touches the lifecycle.
type NormalizedEvent struct {
	Kind               EventKind
	ExternalBillingRef string
	AmountCents        int64
	ExternalPaymentRef string
	ReasonCode         string
	Timestamp          time.Time
}

// NormalizeWebhook maps a raw midtrans notification to an internal event.
// receivedAt is used when the payload carries no usable timestamp. Payloads
// without a subscription reference are rejected; the lifecycle only consumes
// recurring-billing events.
func NormalizeWebhook(payload map[string]interface{}, receivedAt time.Time) (*NormalizedEvent, error) {
	billingRef, _ := payload["subscription_id"].(string)
	if billingRef == "" {
		return nil, fmt.Errorf("payload has no subscription_id")
	}

	ts := receivedAt
	if raw, ok := payload["transaction_time"].(string); ok && raw != "" {
		if parsed, err := time.Parse("2006-01-02 15:04:05", raw); err == nil {
			ts = parsed
		}
	}

	if name, _ := payload["event_name"].(string); name == "subscription.active" {
		return &NormalizedEvent{
			Kind:               EventBillingConfirmed,
			ExternalBillingRef: billingRef,
			Timestamp:          ts,
		}, nil
	}

	status, _ := payload["transaction_status"].(string)
	switch status {
	case "capture", "settlement":
		amountCents, err := grossAmountToCents(payload["gross_amount"])
		if err != nil {
			return nil, err
		}
		paymentRef, _ := payload["transaction_id"].(string)
		return &NormalizedEvent{
			Kind:               EventPaymentSucceeded,
			ExternalBillingRef: billingRef,
			AmountCents:        amountCents,
			ExternalPaymentRef: paymentRef,
			Timestamp:          ts,
		}, nil
	case "deny", "cancel", "expire", "failure":
		return &NormalizedEvent{
			Kind:               EventPaymentFailed,
			ExternalBillingRef: billingRef,
			ReasonCode:         status,
			Timestamp:          ts,
		}, nil
	}

	return nil, fmt.Errorf("unsupported notification status %q", status)
}

// grossAmountToCents parses the notification's gross_amount. All amounts
// cross the gateway boundary as integer cents (the subscription Amount and
// checkout GrossAmt are sent in cents), so gross_amount echoes cents back,
// usually with a ".00" decimal tail.
func grossAmountToCents(raw interface{}) (int64, error) {
	s, ok := raw.(string)
	if !ok || s == "" {
		return 0, fmt.Errorf("missing gross_amount")
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("bad gross_amount %q: %v", s, err)
	}
	return d.Round(0).IntPart(), nil
}

// VerifyWebhookSignature checks the midtrans signature_key
// (sha512(order_id + status_code + gross_amount + server key)). Transaction
// notifications always carry one; any payload with a transaction_status but
// no signature is a forgery and is rejected. Only subscription status
// callbacks, which carry no transaction fields, pass unsigned.
func VerifyWebhookSignature(payload map[string]interface{}) bool {
	sig, _ := payload["signature_key"].(string)
	if sig == "" {
		status, _ := payload["transaction_status"].(string)
		return status == ""
	}
	orderID, _ := payload["order_id"].(string)
	statusCode, _ := payload["status_code"].(string)
	grossAmount, _ := payload["gross_amount"].(string)

	sum := sha512.Sum512([]byte(orderID + statusCode + grossAmount + serverKey))
	return hex.EncodeToString(sum[:]) == sig
}

func truncate(s string, n int) string {
	if n <= 0 || len(s) <= n {
		return s
	}
	return s[:n]
}
