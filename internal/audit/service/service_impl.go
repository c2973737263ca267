package service

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	auditdomain "github.com/hudsor01/tenant-flow-sub006/internal/audit/domain"
	"github.com/hudsor01/tenant-flow-sub006/internal/observability/logger"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
}

func NewService(p Params) auditdomain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("audit.service"),
		genID: p.GenID,
	}
}

func (s *Service) Record(ctx context.Context, actorType auditdomain.ActorType, actorID string, action string, targetType string, targetID string, metadata map[string]any) error {
	masked := logger.MaskJSON(metadata)
	if masked == nil {
		masked = map[string]any{}
	}

	entry := auditdomain.AuditLog{
		ID:         s.genID.Generate(),
		ActorType:  string(actorType),
		Action:     action,
		TargetType: targetType,
		Metadata:   datatypes.JSONMap(masked),
		CreatedAt:  time.Now().UTC(),
	}
	if actorID != "" {
		entry.ActorID = &actorID
	}
	if targetID != "" {
		entry.TargetID = &targetID
	}

	if err := s.db.WithContext(ctx).Create(&entry).Error; err != nil {
		// An audit write must never mask the underlying outcome, but a
		// dropped security record is itself worth alerting on.
		s.log.Error("audit record write failed",
			zap.String("action", action),
			zap.Error(err),
		)
		return err
	}
	return nil
}
