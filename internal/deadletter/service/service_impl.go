package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	deadletterdomain "github.com/hudsor01/tenant-flow-sub006/internal/deadletter/domain"
	"github.com/hudsor01/tenant-flow-sub006/internal/observability/metrics"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB      *gorm.DB
	Log     *zap.Logger
	GenID   *snowflake.Node
	Metrics *metrics.WebhookMetrics
}

type Service struct {
	db      *gorm.DB
	log     *zap.Logger
	genID   *snowflake.Node
	metrics *metrics.WebhookMetrics
}

func NewService(p Params) deadletterdomain.Sink {
	return &Service{
		db:      p.DB,
		log:     p.Log.Named("deadletter.sink"),
		genID:   p.GenID,
		metrics: p.Metrics,
	}
}

// Capture parks a failed event. The alert is the log line plus the counter;
// the row is the replay unit.
func (s *Service) Capture(ctx context.Context, entry deadletterdomain.Entry) error {
	externalID := strings.TrimSpace(entry.ExternalEventID)
	if externalID == "" {
		return deadletterdomain.ErrInvalidEntry
	}

	now := time.Now().UTC()
	payload := entry.Payload
	if len(payload) == 0 {
		payload = []byte("{}")
	}

	result := s.db.WithContext(ctx).Exec(
		`INSERT INTO dead_letter_events (
			id, external_event_id, event_type, kind, reason, payload,
			attempts, replayable, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, 1, ?, ?, ?)
		ON CONFLICT (external_event_id) DO NOTHING`,
		s.genID.Generate(),
		externalID,
		entry.EventType,
		entry.Kind,
		entry.Reason,
		datatypes.JSON(payload),
		entry.Replayable,
		now,
		now,
	)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		if err := s.db.WithContext(ctx).Exec(
			`UPDATE dead_letter_events
			 SET attempts = attempts + 1, reason = ?, updated_at = ?
			 WHERE external_event_id = ? AND replayed_at IS NULL`,
			entry.Reason,
			now,
			externalID,
		).Error; err != nil {
			return err
		}
	}

	s.metrics.EventDeadLettered(entry.Kind)
	s.log.Error("event dead-lettered",
		zap.String("external_event_id", externalID),
		zap.String("event_type", entry.EventType),
		zap.String("kind", entry.Kind),
		zap.String("reason", entry.Reason),
		zap.Bool("replayable", entry.Replayable),
	)
	return nil
}
