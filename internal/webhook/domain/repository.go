package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	// InsertEvent is the idempotency gate: an atomic insert against the
	// uniqueness constraint on external_event_id. Reports whether the row
	// was written; a conflict means the event was already recorded.
	InsertEvent(ctx context.Context, db *gorm.DB, event *InboundEvent) (bool, error)

	FindByExternalID(ctx context.Context, db *gorm.DB, externalEventID string) (*InboundEvent, error)

	// MarkProcessed flips the processed flag. It only ever flips false to
	// true; marking an already processed event is a no-op.
	MarkProcessed(ctx context.Context, db *gorm.DB, id snowflake.ID, processedAt time.Time) error

	// AppendProcessingError records a failed attempt on the event row.
	AppendProcessingError(ctx context.Context, db *gorm.DB, id snowflake.ID, message string) error
}
