package worker

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	auditdomain "github.com/hudsor01/tenant-flow-sub006/internal/audit/domain"
	deadletterdomain "github.com/hudsor01/tenant-flow-sub006/internal/deadletter/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Config controls the replay loop.
type Config struct {
	BatchSize    int
	PollInterval time.Duration
}

func (c Config) withDefaults() Config {
	if c.BatchSize <= 0 {
		c.BatchSize = 20
	}
	if c.PollInterval <= 0 {
		c.PollInterval = 30 * time.Second
	}
	return c
}

type Params struct {
	fx.In

	DB       *gorm.DB
	Log      *zap.Logger
	Replayer deadletterdomain.Replayer
	AuditSvc auditdomain.Service
	Config   Config `optional:"true"`
}

// Worker re-runs replayable dead-lettered events. Manual-review rows are
// left parked until an operator marks them replayable.
type Worker struct {
	db       *gorm.DB
	log      *zap.Logger
	replayer deadletterdomain.Replayer
	auditSvc auditdomain.Service
	cfg      Config
}

func NewWorker(p Params) *Worker {
	return &Worker{
		db:       p.DB,
		log:      p.Log.Named("deadletter.worker"),
		replayer: p.Replayer,
		auditSvc: p.AuditSvc,
		cfg:      p.Config.withDefaults(),
	}
}

func (w *Worker) RunForever(ctx context.Context) {
	ticker := time.NewTicker(w.cfg.PollInterval)
	defer ticker.Stop()

	for {
		if _, err := w.RunOnce(ctx); err != nil {
			w.log.Warn("dead-letter replay run failed", zap.Error(err))
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

type claimedRow struct {
	ID              snowflake.ID
	ExternalEventID string
	EventType       string
	Attempts        int
}

// RunOnce claims a batch of replayable rows and re-runs them. Claiming uses
// FOR UPDATE SKIP LOCKED so concurrent workers never replay the same row.
func (w *Worker) RunOnce(ctx context.Context) (int, error) {
	replayed := 0
	err := w.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var rows []claimedRow
		if err := tx.WithContext(ctx).Raw(
			`SELECT id, external_event_id, event_type, attempts
			 FROM dead_letter_events
			 WHERE replayable = true AND replayed_at IS NULL
			 ORDER BY created_at ASC
			 FOR UPDATE SKIP LOCKED
			 LIMIT ?`,
			w.cfg.BatchSize,
		).Scan(&rows).Error; err != nil {
			return err
		}

		now := time.Now().UTC()
		for _, row := range rows {
			if err := w.replayer.Replay(ctx, row.ExternalEventID); err != nil {
				w.log.Warn("dead-letter replay failed",
					zap.String("external_event_id", row.ExternalEventID),
					zap.Int("attempts", row.Attempts),
					zap.Error(err),
				)
				if err := tx.WithContext(ctx).Exec(
					`UPDATE dead_letter_events
					 SET attempts = attempts + 1, updated_at = ?
					 WHERE id = ?`,
					now,
					row.ID,
				).Error; err != nil {
					return err
				}
				continue
			}

			if err := tx.WithContext(ctx).Exec(
				`UPDATE dead_letter_events
				 SET replayed_at = ?, updated_at = ?
				 WHERE id = ?`,
				now,
				now,
				row.ID,
			).Error; err != nil {
				return err
			}
			replayed++

			_ = w.auditSvc.Record(ctx, auditdomain.ActorTypeSystem, "deadletter.worker",
				auditdomain.ActionDeadLetterReplay, "inbound_event", row.ExternalEventID,
				map[string]any{"event_type": row.EventType, "attempts": row.Attempts})
		}
		return nil
	})
	if err != nil {
		return replayed, err
	}
	return replayed, nil
}
