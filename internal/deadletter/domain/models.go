package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// DeadLetterEvent is a failed unit of work set aside for inspection or
// replay. One row per external event id; the first capture wins and later
// failures for the same event only bump the attempt counter.
type DeadLetterEvent struct {
	ID              snowflake.ID   `json:"id" gorm:"primaryKey"`
	ExternalEventID string         `json:"external_event_id" gorm:"type:text;not null;uniqueIndex:ux_dead_letter_events_external_id"`
	EventType       string         `json:"event_type" gorm:"type:text;not null"`
	Kind            string         `json:"kind" gorm:"type:text;not null;index"`
	Reason          string         `json:"reason" gorm:"type:text;not null"`
	Payload         datatypes.JSON `json:"payload"`
	Attempts        int            `json:"attempts" gorm:"not null;default:0"`
	// Replayable marks rows the worker may re-run automatically.
	// Manual-review kinds stay parked until an operator flips this.
	Replayable bool       `json:"replayable" gorm:"not null;default:false"`
	ReplayedAt *time.Time `json:"replayed_at"`
	CreatedAt  time.Time  `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt  time.Time  `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (DeadLetterEvent) TableName() string { return "dead_letter_events" }

// Entry is the capture input.
type Entry struct {
	ExternalEventID string
	EventType       string
	Kind            string
	Reason          string
	Payload         []byte
	Replayable      bool
}

// Sink captures failed events with full context for later replay.
type Sink interface {
	Capture(ctx context.Context, entry Entry) error
}

var ErrInvalidEntry = errors.New("invalid_dead_letter_entry")

// Replayer re-runs processing for a previously admitted event. Implemented
// by the webhook pipeline; processing is idempotent so a replay that races
// a redelivery is harmless.
type Replayer interface {
	Replay(ctx context.Context, externalEventID string) error
}
