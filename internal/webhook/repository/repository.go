package repository

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	webhookdomain "github.com/hudsor01/tenant-flow-sub006/internal/webhook/domain"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB *gorm.DB
}

type Repository struct {
	db *gorm.DB
}

func Provide(p Params) webhookdomain.Repository {
	return &Repository{db: p.DB}
}

func (r *Repository) InsertEvent(ctx context.Context, db *gorm.DB, event *webhookdomain.InboundEvent) (bool, error) {
	if db == nil {
		db = r.db
	}
	result := db.WithContext(ctx).Exec(
		`INSERT INTO inbound_events (
			id, external_event_id, event_type, received_at, payload,
			processed, processing_errors
		) VALUES (?, ?, ?, ?, ?, false, '[]')
		ON CONFLICT (external_event_id) DO NOTHING`,
		event.ID,
		event.ExternalEventID,
		event.EventType,
		event.ReceivedAt,
		event.Payload,
	)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *Repository) FindByExternalID(ctx context.Context, db *gorm.DB, externalEventID string) (*webhookdomain.InboundEvent, error) {
	if db == nil {
		db = r.db
	}
	var event webhookdomain.InboundEvent
	err := db.WithContext(ctx).
		Where("external_event_id = ?", externalEventID).
		Take(&event).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &event, nil
}

func (r *Repository) MarkProcessed(ctx context.Context, db *gorm.DB, id snowflake.ID, processedAt time.Time) error {
	if db == nil {
		db = r.db
	}
	return db.WithContext(ctx).Exec(
		`UPDATE inbound_events
		 SET processed = true, processed_at = COALESCE(processed_at, ?)
		 WHERE id = ? AND processed = false`,
		processedAt,
		id,
	).Error
}

func (r *Repository) AppendProcessingError(ctx context.Context, db *gorm.DB, id snowflake.ID, message string) error {
	if db == nil {
		db = r.db
	}

	// Single-statement append so concurrent failing attempts for the same
	// event cannot overwrite each other's message.
	if db.Dialector.Name() == "postgres" {
		encoded, err := json.Marshal(message)
		if err != nil {
			return err
		}
		return db.WithContext(ctx).Exec(
			`UPDATE inbound_events
			 SET processing_errors = COALESCE(processing_errors, '[]'::jsonb) || ?::jsonb
			 WHERE id = ?`,
			string(encoded),
			id,
		).Error
	}

	return db.WithContext(ctx).Exec(
		`UPDATE inbound_events
		 SET processing_errors = json_insert(COALESCE(processing_errors, '[]'), '$[#]', ?)
		 WHERE id = ?`,
		message,
		id,
	).Error
}
