package service

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/hudsor01/tenant-flow-sub006/internal/errmap"
	"github.com/hudsor01/tenant-flow-sub006/internal/observability/logger"
	"github.com/hudsor01/tenant-flow-sub006/internal/subscription/domain"
)

type service struct {
	repo  domain.Repository
	genID *snowflake.Node
}

// Params for fx injection.
type Params struct {
	fx.In

	Repo  domain.Repository
	GenID *snowflake.Node
}

// New creates the subscription service.
func New(p Params) domain.Service {
	return &service{repo: p.Repo, genID: p.GenID}
}

func (s *service) Apply(ctx context.Context, snap domain.Snapshot) (*domain.SubscriptionRecord, error) {
	if snap.ExternalSubscriptionID == "" {
		return nil, errmap.Newf(errmap.KindTransientFailure, errmap.Context{
			Operation: "subscription.apply",
		}, "subscription snapshot missing external id")
	}

	record, err := s.repo.FindByExternalID(ctx, snap.ExternalSubscriptionID)
	if err != nil && !errors.Is(err, domain.ErrRecordNotFound) {
		return nil, errmap.Classify(err, errmap.Context{
			ResourceType: "subscription_record",
			ResourceID:   snap.ExternalSubscriptionID,
			Operation:    "subscription.apply",
		})
	}

	if record == nil {
		return s.create(ctx, snap)
	}

	// Drop snapshots from an earlier billing period than what is stored.
	// Equal period ends still apply so status corrections within a period
	// are not lost.
	if !snap.CurrentPeriodEnd.IsZero() && snap.CurrentPeriodEnd.Before(record.CurrentPeriodEnd) {
		logger.FromContext(ctx).Debug("stale subscription snapshot dropped",
			zap.String("external_subscription_id", snap.ExternalSubscriptionID),
			zap.Time("stored_period_end", record.CurrentPeriodEnd),
			zap.Time("snapshot_period_end", snap.CurrentPeriodEnd),
		)
		return record, nil
	}

	if !domain.CanTransition(record.Status, snap.Status) {
		return nil, errmap.Newf(errmap.KindIllegalTransition, errmap.Context{
			ResourceType: "subscription_record",
			ResourceID:   snap.ExternalSubscriptionID,
			Operation:    "subscription.apply",
		}, "subscription %s cannot move from %s to %s",
			snap.ExternalSubscriptionID, record.Status, snap.Status)
	}

	record.Status = snap.Status
	if !snap.CurrentPeriodStart.IsZero() {
		record.CurrentPeriodStart = snap.CurrentPeriodStart
	}
	if !snap.CurrentPeriodEnd.IsZero() {
		record.CurrentPeriodEnd = snap.CurrentPeriodEnd
	}
	record.CancelAtPeriodEnd = snap.CancelAtPeriodEnd
	if err := s.repo.Update(ctx, record); err != nil {
		return nil, errmap.Classify(err, errmap.Context{
			ResourceType: "subscription_record",
			ResourceID:   snap.ExternalSubscriptionID,
			Operation:    "subscription.apply",
		})
	}
	return record, nil
}

func (s *service) create(ctx context.Context, snap domain.Snapshot) (*domain.SubscriptionRecord, error) {
	record := &domain.SubscriptionRecord{
		ID:                     s.genID.Generate(),
		ExternalSubscriptionID: snap.ExternalSubscriptionID,
		OwnerID:                snap.OwnerID,
		Status:                 snap.Status,
		CurrentPeriodStart:     snap.CurrentPeriodStart,
		CurrentPeriodEnd:       snap.CurrentPeriodEnd,
		CancelAtPeriodEnd:      snap.CancelAtPeriodEnd,
	}
	inserted, err := s.repo.Insert(ctx, record)
	if err != nil {
		return nil, errmap.Classify(err, errmap.Context{
			ResourceType: "subscription_record",
			ResourceID:   snap.ExternalSubscriptionID,
			Operation:    "subscription.create",
		})
	}
	if !inserted {
		// Another event created it first; re-apply on top of that row.
		return s.Apply(ctx, snap)
	}
	logger.FromContext(ctx).Info("subscription record created",
		zap.String("external_subscription_id", record.ExternalSubscriptionID),
		zap.String("status", string(record.Status)),
	)
	return record, nil
}

func (s *service) FindByExternalID(ctx context.Context, externalSubscriptionID string) (*domain.SubscriptionRecord, error) {
	return s.repo.FindByExternalID(ctx, externalSubscriptionID)
}

func (s *service) FindByID(ctx context.Context, id int64) (*domain.SubscriptionRecord, error) {
	return s.repo.FindByID(ctx, id)
}
