package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// InboundEvent is the idempotency ledger row: one row per externally
// identified event ever accepted. Rows are never deleted; the table is the
// audit trail. Processed flips exactly once.
type InboundEvent struct {
	ID              snowflake.ID   `json:"id" gorm:"primaryKey"`
	ExternalEventID string         `json:"external_event_id" gorm:"type:text;not null;uniqueIndex:ux_inbound_events_external_id"`
	EventType       string         `json:"event_type" gorm:"type:text;not null;index"`
	ReceivedAt      time.Time      `json:"received_at" gorm:"not null"`
	Payload         datatypes.JSON `json:"payload" gorm:"not null"`
	Processed       bool           `json:"processed" gorm:"not null;default:false"`
	// ProcessingErrors records each failed attempt in order, for replay
	// diagnosis. JSON array of strings.
	ProcessingErrors datatypes.JSON `json:"processing_errors"`
	ProcessedAt      *time.Time     `json:"processed_at"`
}

// TableName sets the database table name.
func (InboundEvent) TableName() string { return "inbound_events" }

// Event is the verified, normalized envelope handed to handlers. Raw holds
// the processor's data object exactly as received.
type Event struct {
	ExternalEventID string
	Type            string
	// Account is the marketplace account the processor attributes the
	// event to, when present.
	Account    string
	OccurredAt time.Time
	Raw        []byte
}

// AdmitResult is the tri-state outcome of the idempotency gate.
type AdmitResult int

const (
	// Admitted: the event is novel; this caller owns processing.
	Admitted AdmitResult = iota
	// AlreadyProcessed: effects already applied; ack without re-running.
	AlreadyProcessed
	// AlreadySeenUnprocessed: a prior attempt recorded the event but
	// crashed mid-processing; processing may be re-run safely.
	AlreadySeenUnprocessed
)

func (r AdmitResult) String() string {
	switch r {
	case Admitted:
		return "admitted"
	case AlreadyProcessed:
		return "already_processed"
	case AlreadySeenUnprocessed:
		return "already_seen_unprocessed"
	default:
		return "unknown"
	}
}
