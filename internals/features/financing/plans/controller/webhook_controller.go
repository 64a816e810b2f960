// file: internals/features/financing/plans/controller/webhook_controller.go
package controller

import (
	"errors"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	model "tradeacademy_backend/internals/features/financing/plans/model"
	service "tradeacademy_backend/internals/features/financing/plans/service"
	helper "tradeacademy_backend/internals/helpers"
)

type WebhookController struct {
	DB        *gorm.DB
	Lifecycle *service.LifecycleService
}

func NewWebhookController(db *gorm.DB, lifecycle *service.LifecycleService) *WebhookController {
	return &WebhookController{DB: db, Lifecycle: lifecycle}
}

/* =========================================================
   Gateway notification (public, signature-checked)
   POST /api/n/financing/webhook

   Delivery is at-least-once and may be out of order. Every
   delivery is audit-logged; duplicates and unknown refs are
   acknowledged with 200 so the processor stops retrying.
========================================================= */

func (h *WebhookController) HandleGatewayNotification(c *fiber.Ctx) error {
	var payload map[string]interface{}
	if err := c.BodyParser(&payload); err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "Invalid payload")
	}

	event := h.logEvent(c, payload)

	if !service.VerifyWebhookSignature(payload) {
		h.finishEvent(c, event, model.GatewayEventStatusSkipped, "invalid signature")
		return helper.Error(c, fiber.StatusUnauthorized, "Invalid signature")
	}

	evt, err := service.NormalizeWebhook(payload, time.Now())
	if err != nil {
		// Not a recurring-billing event we consume; ack and drop.
		log.Printf("[WEBHOOK] drop unsupported payload: %v", err)
		h.finishEvent(c, event, model.GatewayEventStatusSkipped, err.Error())
		return helper.Success(c, "ignored", nil)
	}

	outcome, err := h.Lifecycle.ApplyWebhookEvent(c.UserContext(), evt)
	switch {
	case errors.Is(err, service.ErrUnknownBillingRef):
		// The processor's problem, not the plan's. Logged, never surfaced.
		log.Printf("[WEBHOOK] unknown billing ref %s, dropping", evt.ExternalBillingRef)
		h.finishEvent(c, event, model.GatewayEventStatusSkipped, err.Error())
		return helper.Success(c, "ignored", nil)
	case err != nil:
		h.finishEvent(c, event, model.GatewayEventStatusFailed, err.Error())
		return helper.Error(c, fiber.StatusInternalServerError, "event processing failed")
	case outcome.Duplicate:
		h.finishEvent(c, event, model.GatewayEventStatusDuplicate, outcome.Note)
	default:
		h.finishEvent(c, event, model.GatewayEventStatusProcessed, "")
	}

	return helper.Success(c, "ok", fiber.Map{"note": outcome.Note})
}

/* ============== audit log ============== */

func (h *WebhookController) logEvent(c *fiber.Ctx, payload map[string]interface{}) *model.BillingGatewayEvent {
	event := &model.BillingGatewayEvent{
		GatewayEventPayload:    datatypes.JSON(c.Body()),
		GatewayEventReceivedAt: time.Now(),
		GatewayEventStatus:     model.GatewayEventStatusReceived,
	}
	if v, ok := payload["transaction_status"].(string); ok && v != "" {
		event.GatewayEventType = &v
	}
	if v, ok := payload["subscription_id"].(string); ok && v != "" {
		event.GatewayEventExternalBillingRef = &v
	}
	if v, ok := payload["transaction_id"].(string); ok && v != "" {
		event.GatewayEventExternalPaymentRef = &v
	}
	if v, ok := payload["signature_key"].(string); ok && v != "" {
		event.GatewayEventSignature = &v
	}

	if err := h.DB.WithContext(c.UserContext()).Create(event).Error; err != nil {
		// The audit row is best effort; processing continues without it.
		log.Printf("[WEBHOOK] audit log insert failed: %v", err)
	}
	return event
}

func (h *WebhookController) finishEvent(c *fiber.Ctx, event *model.BillingGatewayEvent, status model.GatewayEventStatus, errMsg string) {
	now := time.Now()
	updates := map[string]interface{}{
		"gateway_event_status":       status,
		"gateway_event_processed_at": now,
	}
	if errMsg != "" {
		updates["gateway_event_error"] = errMsg
	}
	if err := h.DB.WithContext(c.UserContext()).Model(event).Updates(updates).Error; err != nil {
		log.Printf("[WEBHOOK] audit log update failed: %v", err)
	}
}
