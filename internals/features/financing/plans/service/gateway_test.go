// file: internals/features/financing/plans/service/gateway_test.go
package service

import (
	"context"
	"crypto/sha512"
	"encoding/hex"
	"errors"
	"fmt"
	"testing"
	"time"

	midtrans "github.com/midtrans/midtrans-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zoobzio/clockz"

	catalogModel "tradeacademy_backend/internals/features/financing/catalog/model"
)

/* ============== webhook normalization ============== */

func TestNormalizeWebhook(t *testing.T) {
	receivedAt := time.Date(2026, 4, 10, 9, 0, 0, 0, time.UTC)

	t.Run("missing subscription_id rejected", func(t *testing.T) {
		_, err := NormalizeWebhook(map[string]interface{}{
			"transaction_status": "settlement",
			"gross_amount":       "100.00",
		}, receivedAt)
		assert.Error(t, err)
	})

	t.Run("subscription active maps to billing confirmed", func(t *testing.T) {
		ev, err := NormalizeWebhook(map[string]interface{}{
			"subscription_id": "sub-1",
			"event_name":      "subscription.active",
		}, receivedAt)
		require.NoError(t, err)
		assert.Equal(t, EventBillingConfirmed, ev.Kind)
		assert.Equal(t, "sub-1", ev.ExternalBillingRef)
		assert.Equal(t, receivedAt, ev.Timestamp)
	})

	t.Run("settlement maps to payment succeeded with cents", func(t *testing.T) {
		// gross_amount echoes the cents amount we charged, decimal tail and all.
		ev, err := NormalizeWebhook(map[string]interface{}{
			"subscription_id":    "sub-1",
			"transaction_status": "settlement",
			"transaction_id":     "txn-42",
			"gross_amount":       "10003.00",
			"transaction_time":   "2026-04-10 08:55:00",
		}, receivedAt)
		require.NoError(t, err)
		assert.Equal(t, EventPaymentSucceeded, ev.Kind)
		assert.Equal(t, int64(10003), ev.AmountCents)
		assert.Equal(t, "txn-42", ev.ExternalPaymentRef)
		assert.Equal(t, time.Date(2026, 4, 10, 8, 55, 0, 0, time.UTC), ev.Timestamp)
	})

	t.Run("capture maps to payment succeeded", func(t *testing.T) {
		ev, err := NormalizeWebhook(map[string]interface{}{
			"subscription_id":    "sub-1",
			"transaction_status": "capture",
			"gross_amount":       "25000.00",
		}, receivedAt)
		require.NoError(t, err)
		assert.Equal(t, EventPaymentSucceeded, ev.Kind)
		assert.Equal(t, int64(25000), ev.AmountCents)
	})

	t.Run("settlement without gross_amount rejected", func(t *testing.T) {
		_, err := NormalizeWebhook(map[string]interface{}{
			"subscription_id":    "sub-1",
			"transaction_status": "settlement",
		}, receivedAt)
		assert.Error(t, err)
	})

	t.Run("failure statuses map to payment failed with reason", func(t *testing.T) {
		for _, status := range []string{"deny", "cancel", "expire", "failure"} {
			ev, err := NormalizeWebhook(map[string]interface{}{
				"subscription_id":    "sub-1",
				"transaction_status": status,
			}, receivedAt)
			require.NoError(t, err, status)
			assert.Equal(t, EventPaymentFailed, ev.Kind)
			assert.Equal(t, status, ev.ReasonCode)
		}
	})

	t.Run("pending status unsupported", func(t *testing.T) {
		_, err := NormalizeWebhook(map[string]interface{}{
			"subscription_id":    "sub-1",
			"transaction_status": "pending",
		}, receivedAt)
		assert.Error(t, err)
	})
}

func TestVerifyWebhookSignature(t *testing.T) {
	prev := serverKey
	serverKey = "test-server-key"
	t.Cleanup(func() { serverKey = prev })

	payload := map[string]interface{}{
		"order_id":     "plan-1-checkout",
		"status_code":  "200",
		"gross_amount": "10003.00",
	}
	sum := sha512.Sum512([]byte("plan-1-checkout" + "200" + "10003.00" + "test-server-key"))
	payload["signature_key"] = hex.EncodeToString(sum[:])
	assert.True(t, VerifyWebhookSignature(payload))

	payload["signature_key"] = "deadbeef"
	assert.False(t, VerifyWebhookSignature(payload))

	// A transaction notification without a signature is a forgery: anyone who
	// learns a subscription id could otherwise mark installments paid.
	assert.False(t, VerifyWebhookSignature(map[string]interface{}{
		"subscription_id":    "sub-known",
		"transaction_status": "settlement",
		"gross_amount":       "10000.00",
	}))

	// Subscription status callbacks carry no signature and must pass.
	assert.True(t, VerifyWebhookSignature(map[string]interface{}{
		"subscription_id": "sub-1",
		"event_name":      "subscription.active",
	}))
}

/* ============== error classification + retry ============== */

func TestClassifyMidtransError(t *testing.T) {
	assert.NoError(t, classifyMidtransError(nil))

	// Network-level and 5xx failures are transient.
	err := classifyMidtransError(&midtrans.Error{Message: "dial timeout", RawError: errors.New("timeout")})
	assert.ErrorIs(t, err, ErrGatewayUnavailable)
	err = classifyMidtransError(&midtrans.Error{Message: "upstream", StatusCode: 502})
	assert.ErrorIs(t, err, ErrGatewayUnavailable)

	// 4xx responses are definitive rejections of the request.
	err = classifyMidtransError(&midtrans.Error{Message: "card declined", StatusCode: 402})
	assert.ErrorIs(t, err, ErrInvalidCustomer)
	assert.False(t, isTransient(err))
}

func TestRetryTransient_NoRetryOnSuccessOrDefinitiveError(t *testing.T) {
	ctx := context.Background()

	calls := 0
	err := retryTransient(ctx, clockz.RealClock, func() error {
		calls++
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, calls)

	calls = 0
	definitive := fmt.Errorf("%w: declined", ErrInvalidCustomer)
	err = retryTransient(ctx, clockz.RealClock, func() error {
		calls++
		return definitive
	})
	assert.ErrorIs(t, err, ErrInvalidCustomer)
	assert.Equal(t, 1, calls, "definitive errors must not be retried")
}

func TestRetryTransient_StopsOnContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	calls := 0
	err := retryTransient(ctx, clockz.RealClock, func() error {
		calls++
		cancel() // cancel while the retry loop would back off
		return fmt.Errorf("%w: 503", ErrGatewayUnavailable)
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}

/* ============== misc mapping ============== */

func TestFrequencyToSchedule(t *testing.T) {
	interval, unit := frequencyToSchedule(catalogModel.FrequencyWeekly)
	assert.Equal(t, 7, interval)
	assert.Equal(t, "day", unit)

	interval, unit = frequencyToSchedule(catalogModel.FrequencyBiweekly)
	assert.Equal(t, 14, interval)
	assert.Equal(t, "day", unit)

	interval, unit = frequencyToSchedule(catalogModel.FrequencyMonthly)
	assert.Equal(t, 1, interval)
	assert.Equal(t, "month", unit)
}

func TestGrossAmountToCents(t *testing.T) {
	// The boundary carries cents in both directions: what goes out as 10003
	// comes back as "10003.00".
	got, err := grossAmountToCents("10003.00")
	require.NoError(t, err)
	assert.Equal(t, int64(10003), got)

	got, err = grossAmountToCents("40000")
	require.NoError(t, err)
	assert.Equal(t, int64(40000), got)

	_, err = grossAmountToCents(nil)
	assert.Error(t, err)
	_, err = grossAmountToCents("not-a-number")
	assert.Error(t, err)
}

func TestCheckoutChargeAmount(t *testing.T) {
	// With a down payment the checkout collects exactly that amount.
	assert.Equal(t, int64(5000), checkoutChargeAmount(5000))

	// Without one it charges only the nominal card-verification amount, never
	// an installment: the subscription already schedules all of those, and an
	// extra installment-sized charge would never be credited to the plan.
	assert.Equal(t, cardVerificationChargeCents, checkoutChargeAmount(0))
	assert.Equal(t, cardVerificationChargeCents, checkoutChargeAmount(-1))
}
