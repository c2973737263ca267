package service

import (
	"context"
	"errors"
	"strings"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/hudsor01/tenant-flow-sub006/internal/errmap"
	"github.com/hudsor01/tenant-flow-sub006/internal/observability/logger"
	"github.com/hudsor01/tenant-flow-sub006/internal/payment/domain"
	tenancydomain "github.com/hudsor01/tenant-flow-sub006/internal/tenancy/domain"
)

type service struct {
	db      *gorm.DB
	repo    domain.Repository
	tenancy tenancydomain.Repository
	genID   *snowflake.Node
}

// Params for fx injection.
type Params struct {
	fx.In

	DB      *gorm.DB
	Repo    domain.Repository
	Tenancy tenancydomain.Repository
	GenID   *snowflake.Node
}

// New creates the payment service.
func New(p Params) domain.Service {
	return &service{db: p.DB, repo: p.Repo, tenancy: p.Tenancy, genID: p.GenID}
}

func (s *service) EnsureRecord(ctx context.Context, intent domain.Intent, initial domain.PaymentStatus) (*domain.PaymentRecord, error) {
	ectx := errmap.Context{
		ResourceType: "payment_record",
		ResourceID:   intent.ExternalPaymentID,
		Operation:    "payment.ensure",
	}

	record, err := s.repo.FindByExternalID(ctx, s.db, intent.ExternalPaymentID)
	if err != nil {
		return nil, errmap.Classify(err, ectx)
	}
	if record != nil {
		return record, nil
	}

	record, err = s.buildRecord(ctx, intent, initial)
	if err != nil {
		return nil, err
	}
	inserted, err := s.repo.Insert(ctx, s.db, record)
	if err != nil {
		return nil, errmap.Classify(err, ectx)
	}
	if !inserted {
		// Lost the race to a concurrent delivery of the creating event.
		record, err = s.repo.FindByExternalID(ctx, s.db, intent.ExternalPaymentID)
		if err != nil {
			return nil, errmap.Classify(err, ectx)
		}
		return record, nil
	}

	logger.FromContext(ctx).Info("payment record created",
		zap.String("external_payment_id", record.ExternalPaymentID),
		zap.String("status", string(record.Status)),
		zap.String("payment_type", string(record.PaymentType)),
		zap.Int64("amount", record.Amount),
		zap.Int64("platform_fee", record.PlatformFee),
	)
	return record, nil
}

// buildRecord derives the fee split once, at creation. The platform fee
// comes from the fee schedule, never from the event, so later fee changes
// cannot drift an in-flight payment.
func (s *service) buildRecord(ctx context.Context, intent domain.Intent, initial domain.PaymentStatus) (*domain.PaymentRecord, error) {
	ectx := errmap.Context{
		ResourceType: "payment_record",
		ResourceID:   intent.ExternalPaymentID,
		Operation:    "payment.create",
	}
	if intent.Amount <= 0 {
		return nil, errmap.Newf(errmap.KindAmountMismatch, ectx,
			"payment %s has non-positive amount %d", intent.ExternalPaymentID, intent.Amount)
	}
	if intent.LeaseID == 0 {
		return nil, errmap.Newf(errmap.KindOwnershipViolation, ectx,
			"payment %s carries no lease reference", intent.ExternalPaymentID)
	}

	lease, err := s.tenancy.FindLease(ctx, intent.LeaseID)
	if errors.Is(err, tenancydomain.ErrLeaseNotFound) {
		return nil, errmap.Newf(errmap.KindOwnershipViolation, ectx,
			"payment %s references unknown lease %s", intent.ExternalPaymentID, intent.LeaseID)
	}
	if err != nil {
		return nil, errmap.Classify(err, ectx)
	}

	platformFee := domain.PlatformFeeFor(intent.PaymentType, intent.Amount)
	processorFee := intent.ProcessorFee
	if processorFee < 0 || platformFee+processorFee > intent.Amount {
		return nil, errmap.Newf(errmap.KindAmountMismatch, ectx,
			"payment %s fees exceed amount", intent.ExternalPaymentID)
	}

	return &domain.PaymentRecord{
		ID:                s.genID.Generate(),
		ExternalPaymentID: intent.ExternalPaymentID,
		TenantID:          intent.TenantID,
		LandlordID:        lease.LandlordID,
		LeaseID:           intent.LeaseID,
		Amount:            intent.Amount,
		PlatformFee:       platformFee,
		ProcessorFee:      processorFee,
		LandlordReceives:  intent.Amount - platformFee - processorFee,
		Currency:          strings.ToUpper(intent.Currency),
		Status:            initial,
		PaymentType:       intent.PaymentType,
	}, nil
}

func (s *service) Transition(ctx context.Context, intent domain.Intent, to domain.PaymentStatus) error {
	ectx := errmap.Context{
		ResourceType: "payment_record",
		ResourceID:   intent.ExternalPaymentID,
		Operation:    "payment.transition",
	}

	for attempt := 0; attempt < 2; attempt++ {
		record, err := s.repo.FindByExternalID(ctx, s.db, intent.ExternalPaymentID)
		if err != nil {
			return errmap.Classify(err, ectx)
		}
		if record == nil {
			record, err = s.EnsureRecord(ctx, intent, to)
			if err != nil {
				return err
			}
		}
		if record.Status == to {
			return nil
		}
		if !domain.CanTransition(record.Status, to) {
			return errmap.Newf(errmap.KindIllegalTransition, ectx,
				"payment %s cannot move from %s to %s", intent.ExternalPaymentID, record.Status, to)
		}

		err = s.repo.UpdateStatus(ctx, s.db, record, to)
		if err == nil {
			return nil
		}
		if !errors.Is(err, domain.ErrVersionConflict) {
			return errmap.Classify(err, ectx)
		}
		// Version moved under us; re-read and re-derive the transition.
	}
	return errmap.Newf(errmap.KindDatabaseConflict, ectx,
		"transition version conflict for %s", intent.ExternalPaymentID)
}

func (s *service) FindByExternalID(ctx context.Context, externalPaymentID string) (*domain.PaymentRecord, error) {
	return s.repo.FindByExternalID(ctx, s.db, externalPaymentID)
}

func (s *service) FindByID(ctx context.Context, id snowflake.ID) (*domain.PaymentRecord, error) {
	return s.repo.FindByID(ctx, s.db, id)
}
