package service

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"

	"github.com/hudsor01/tenant-flow-sub006/internal/errmap"
	"github.com/hudsor01/tenant-flow-sub006/internal/observability/logger"
	"github.com/hudsor01/tenant-flow-sub006/internal/onboarding/domain"
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

// New creates the onboarding service.
func New(p Params) domain.Service {
	return &service{repo: p.Repo, genID: p.GenID}
}

func (s *service) Apply(ctx context.Context, snap domain.Snapshot) (*domain.OnboardingRecord, error) {
	if snap.ExternalAccountID == "" {
		return nil, errmap.Newf(errmap.KindTransientFailure, errmap.Context{
			Operation: "onboarding.apply",
		}, "account snapshot missing external id")
	}

	ectx := errmap.Context{
		ResourceType: "onboarding_record",
		ResourceID:   snap.ExternalAccountID,
		Operation:    "onboarding.apply",
	}

	record, err := s.repo.FindByExternalID(ctx, snap.ExternalAccountID)
	if err != nil && !errors.Is(err, domain.ErrRecordNotFound) {
		return nil, errmap.Classify(err, ectx)
	}

	if record == nil {
		record = &domain.OnboardingRecord{
			ID:                s.genID.Generate(),
			ExternalAccountID: snap.ExternalAccountID,
			OwnerID:           snap.OwnerID,
			Status:            domain.StatusNotStarted,
		}
		applySnapshot(record, snap)
		inserted, err := s.repo.Insert(ctx, record)
		if err != nil {
			return nil, errmap.Classify(err, ectx)
		}
		if inserted {
			logger.FromContext(ctx).Info("onboarding record created",
				zap.String("external_account_id", record.ExternalAccountID),
				zap.String("status", string(record.Status)),
			)
			return record, nil
		}
		// Lost the insert race; reload and fall through to update.
		record, err = s.repo.FindByExternalID(ctx, snap.ExternalAccountID)
		if err != nil {
			return nil, errmap.Classify(err, ectx)
		}
	}

	prev := record.Status
	applySnapshot(record, snap)
	if record.Status != prev && prev != domain.StatusNotStarted {
		logger.FromContext(ctx).Info("onboarding status changed",
			zap.String("external_account_id", record.ExternalAccountID),
			zap.String("from", string(prev)),
			zap.String("to", string(record.Status)),
			zap.Int("completion_percentage", record.CompletionPercentage),
		)
	}
	if err := s.repo.Update(ctx, record); err != nil {
		return nil, errmap.Classify(err, ectx)
	}
	return record, nil
}

// applySnapshot rebuilds the mutable columns from the snapshot. Each account
// event carries full state, so nothing is merged.
func applySnapshot(record *domain.OnboardingRecord, snap domain.Snapshot) {
	record.Status = domain.StatusFor(record.Status, snap)
	record.CompletionPercentage = domain.CompletionPercentage(snap)
	record.ChargesEnabled = snap.ChargesEnabled
	record.PayoutsEnabled = snap.PayoutsEnabled
	record.DisabledReason = snap.DisabledReason
	if snap.BusinessType != "" {
		record.BusinessType = snap.BusinessType
	}
	if snap.Country != "" {
		record.Country = snap.Country
	}
	if snap.OwnerID != 0 {
		record.OwnerID = snap.OwnerID
	}
	due := snap.RequirementsDue
	if due == nil {
		due = []string{}
	}
	raw, _ := json.Marshal(due)
	record.RequirementsDue = datatypes.JSON(raw)
}

func (s *service) FindByExternalID(ctx context.Context, externalAccountID string) (*domain.OnboardingRecord, error) {
	return s.repo.FindByExternalID(ctx, externalAccountID)
}

func (s *service) FindByOwner(ctx context.Context, ownerID int64) (*domain.OnboardingRecord, error) {
	return s.repo.FindByOwner(ctx, ownerID)
}
