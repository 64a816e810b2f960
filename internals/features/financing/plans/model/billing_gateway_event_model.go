// file: internals/features/financing/plans/model/billing_gateway_event_model.go
package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

/*
  billing_gateway_events = webhook/callback audit log.
  - Many rows per plan (one per delivery, duplicates included).
  - Keeps the raw payload + signature for debugging and replay.
*/

type GatewayEventStatus string

const (
	GatewayEventStatusReceived  GatewayEventStatus = "received"
	GatewayEventStatusProcessed GatewayEventStatus = "processed"
	GatewayEventStatusDuplicate GatewayEventStatus = "duplicate"
	GatewayEventStatusSkipped   GatewayEventStatus = "skipped"
	GatewayEventStatusFailed    GatewayEventStatus = "failed"
)

type BillingGatewayEvent struct {
	GatewayEventID uuid.UUID `gorm:"column:gateway_event_id;type:uuid;default:gen_random_uuid();primaryKey" json:"gateway_event_id"`

	GatewayEventPlanID *uuid.UUID `gorm:"column:gateway_event_plan_id;type:uuid;index" json:"gateway_event_plan_id"`

	// Event identity
	GatewayEventType               *string `gorm:"column:gateway_event_type" json:"gateway_event_type"`
	GatewayEventExternalBillingRef *string `gorm:"column:gateway_event_external_billing_ref;index" json:"gateway_event_external_billing_ref"`
	GatewayEventExternalPaymentRef *string `gorm:"column:gateway_event_external_payment_ref" json:"gateway_event_external_payment_ref"`

	// Raw data (for debugging / replay)
	GatewayEventPayload   datatypes.JSON `gorm:"column:gateway_event_payload;type:jsonb" json:"gateway_event_payload"`
	GatewayEventSignature *string        `gorm:"column:gateway_event_signature" json:"gateway_event_signature"`

	// Internal processing status
	GatewayEventStatus GatewayEventStatus `gorm:"column:gateway_event_status;type:gateway_event_status;not null;default:'received'" json:"gateway_event_status"`
	GatewayEventError  *string            `gorm:"column:gateway_event_error" json:"gateway_event_error"`

	// Timestamps
	GatewayEventReceivedAt  time.Time  `gorm:"column:gateway_event_received_at;not null;default:now()" json:"gateway_event_received_at"`
	GatewayEventProcessedAt *time.Time `gorm:"column:gateway_event_processed_at" json:"gateway_event_processed_at"`
}

func (BillingGatewayEvent) TableName() string { return "billing_gateway_events" }
