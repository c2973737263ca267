package service

import (
	"context"
	"errors"
	"strings"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	auditdomain "github.com/hudsor01/tenant-flow-sub006/internal/audit/domain"
	"github.com/hudsor01/tenant-flow-sub006/internal/clock"
	"github.com/hudsor01/tenant-flow-sub006/internal/errmap"
	ledgerdomain "github.com/hudsor01/tenant-flow-sub006/internal/ledger/domain"
	"github.com/hudsor01/tenant-flow-sub006/internal/observability/logger"
	"github.com/hudsor01/tenant-flow-sub006/internal/observability/metrics"
	onboardingdomain "github.com/hudsor01/tenant-flow-sub006/internal/onboarding/domain"
	paymentdomain "github.com/hudsor01/tenant-flow-sub006/internal/payment/domain"
	"github.com/hudsor01/tenant-flow-sub006/internal/reconcile/domain"
	tenancydomain "github.com/hudsor01/tenant-flow-sub006/internal/tenancy/domain"
)

type service struct {
	db         *gorm.DB
	payments   paymentdomain.Repository
	tenancy    tenancydomain.Repository
	onboarding onboardingdomain.Service
	ledger     ledgerdomain.Service
	audit      auditdomain.Service
	clock      clock.Clock
	genID      *snowflake.Node
	metrics    *metrics.WebhookMetrics
}

// Params for fx injection.
type Params struct {
	fx.In

	DB         *gorm.DB
	Payments   paymentdomain.Repository
	Tenancy    tenancydomain.Repository
	Onboarding onboardingdomain.Service
	Ledger     ledgerdomain.Service
	Audit      auditdomain.Service
	Clock      clock.Clock
	GenID      *snowflake.Node
	Metrics    *metrics.WebhookMetrics `optional:"true"`
}

// New creates the reconciliation service.
func New(p Params) domain.Service {
	return &service{
		db:         p.DB,
		payments:   p.Payments,
		tenancy:    p.Tenancy,
		onboarding: p.Onboarding,
		ledger:     p.Ledger,
		audit:      p.Audit,
		clock:      p.Clock,
		genID:      p.GenID,
		metrics:    p.Metrics,
	}
}

func (s *service) Settle(ctx context.Context, req domain.SettleRequest) error {
	ectx := errmap.Context{
		ResourceType: "payment_record",
		ResourceID:   req.ExternalPaymentID,
		Operation:    "reconcile.settle",
	}

	record, err := s.payments.FindByExternalID(ctx, s.db, req.ExternalPaymentID)
	if err != nil {
		return errmap.Classify(err, ectx)
	}
	if record == nil {
		return errmap.Newf(errmap.KindTransientFailure, ectx,
			"no payment record for %s", req.ExternalPaymentID)
	}

	if record.Status == paymentdomain.StatusSucceeded {
		entry, err := s.ledger.FindByPayment(ctx, int64(record.ID))
		if err != nil {
			return errmap.Classify(err, ectx)
		}
		if entry != nil {
			// Replay of an already settled payment.
			return nil
		}
	} else if !paymentdomain.CanTransition(record.Status, paymentdomain.StatusSucceeded) {
		return errmap.Newf(errmap.KindIllegalTransition, ectx,
			"payment %s cannot settle from %s", req.ExternalPaymentID, record.Status)
	}

	if err := s.verifyOwnership(ctx, record, req, ectx); err != nil {
		return err
	}
	entry, err := s.buildEntry(ctx, record, req, ectx)
	if err != nil {
		return err
	}

	return s.settleOnce(ctx, record, entry, ectx)
}

// verifyOwnership cross-checks the payment's stored parties against the
// lease and, when the event attributes a marketplace account, against the
// account the landlord actually onboarded.
func (s *service) verifyOwnership(ctx context.Context, record *paymentdomain.PaymentRecord, req domain.SettleRequest, ectx errmap.Context) error {
	lease, err := s.tenancy.FindLease(ctx, record.LeaseID)
	if errors.Is(err, tenancydomain.ErrLeaseNotFound) {
		return s.ownershipViolation(ctx, record, req, "lease_missing")
	}
	if err != nil {
		return errmap.Classify(err, ectx)
	}
	if lease.TenantID != record.TenantID {
		return s.ownershipViolation(ctx, record, req, "tenant_not_on_lease")
	}
	if lease.LandlordID != record.LandlordID {
		return s.ownershipViolation(ctx, record, req, "landlord_not_on_lease")
	}

	if req.AttributedAccount == "" {
		return nil
	}
	onboarded, err := s.onboarding.FindByExternalID(ctx, req.AttributedAccount)
	if errors.Is(err, onboardingdomain.ErrRecordNotFound) {
		return s.ownershipViolation(ctx, record, req, "attributed_account_unknown")
	}
	if err != nil {
		return errmap.Classify(err, ectx)
	}
	if onboarded.OwnerID != lease.LandlordID {
		return s.ownershipViolation(ctx, record, req, "attributed_account_not_landlords")
	}
	return nil
}

func (s *service) buildEntry(ctx context.Context, record *paymentdomain.PaymentRecord, req domain.SettleRequest, ectx errmap.Context) (*ledgerdomain.LedgerEntry, error) {
	if req.ObservedAmount != 0 && req.ObservedAmount != record.Amount {
		return nil, s.amountMismatch(ctx, record, req, "observed_amount_differs")
	}
	if req.Currency != "" && !strings.EqualFold(req.Currency, record.Currency) {
		return nil, s.amountMismatch(ctx, record, req, "currency_differs")
	}
	if req.DeclaredLandlordReceives != nil && *req.DeclaredLandlordReceives != record.LandlordReceives {
		return nil, s.amountMismatch(ctx, record, req, "declared_payout_differs")
	}

	settledAt := req.SettledAt
	if settledAt.IsZero() {
		settledAt = s.clock.Now()
	}
	entry := &ledgerdomain.LedgerEntry{
		ID:                s.genID.Generate(),
		PaymentRecordID:   record.ID,
		ExternalPaymentID: record.ExternalPaymentID,
		LeaseID:           record.LeaseID,
		LandlordID:        record.LandlordID,
		Amount:            record.Amount,
		PlatformFee:       record.PlatformFee,
		ProcessorFee:      record.ProcessorFee,
		LandlordReceives:  record.LandlordReceives,
		Currency:          record.Currency,
		SettledAt:         settledAt,
	}
	if err := ledgerdomain.ValidateSplit(*entry); err != nil {
		return nil, s.amountMismatch(ctx, record, req, err.Error())
	}
	return entry, nil
}

// settleOnce runs the settlement transaction, retrying once on a version
// conflict with freshly read state. A second conflict is reported for the
// caller's bounded retry loop.
func (s *service) settleOnce(ctx context.Context, record *paymentdomain.PaymentRecord, entry *ledgerdomain.LedgerEntry, ectx errmap.Context) error {
	for attempt := 0; attempt < 2; attempt++ {
		err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			if err := s.payments.UpdateStatus(ctx, tx, record, paymentdomain.StatusSucceeded); err != nil {
				return err
			}
			if err := s.ledger.CreateEntry(ctx, tx, entry); err != nil {
				if errors.Is(err, ledgerdomain.ErrEntryExists) {
					// Entry already written by a concurrent settlement.
					return nil
				}
				return err
			}
			return nil
		})
		if err == nil {
			logger.FromContext(ctx).Info("payment settled",
				zap.String("external_payment_id", record.ExternalPaymentID),
				zap.Int64("amount", entry.Amount),
				zap.Int64("platform_fee", entry.PlatformFee),
				zap.Int64("landlord_receives", entry.LandlordReceives),
			)
			return nil
		}
		if !errors.Is(err, paymentdomain.ErrVersionConflict) {
			return errmap.Classify(err, ectx)
		}

		fresh, ferr := s.payments.FindByExternalID(ctx, s.db, record.ExternalPaymentID)
		if ferr != nil || fresh == nil {
			return errmap.Classify(err, ectx)
		}
		if fresh.Status == paymentdomain.StatusSucceeded {
			// Lost the race to another settlement of the same payment.
			return nil
		}
		if !paymentdomain.CanTransition(fresh.Status, paymentdomain.StatusSucceeded) {
			return errmap.Newf(errmap.KindIllegalTransition, ectx,
				"payment %s cannot settle from %s", record.ExternalPaymentID, fresh.Status)
		}
		record = fresh
		entry.PaymentRecordID = fresh.ID
	}
	return errmap.Newf(errmap.KindDatabaseConflict, ectx,
		"settlement version conflict for %s", record.ExternalPaymentID)
}

func (s *service) ownershipViolation(ctx context.Context, record *paymentdomain.PaymentRecord, req domain.SettleRequest, reason string) error {
	s.metrics.SecurityAlert(string(errmap.KindOwnershipViolation))
	targetID := record.ExternalPaymentID
	if err := s.audit.Record(ctx, auditdomain.ActorTypeSystem, "reconciler",
		auditdomain.ActionOwnershipViolation, "payment_record", targetID,
		map[string]any{
			"reason":             reason,
			"lease_id":           record.LeaseID.String(),
			"attributed_account": req.AttributedAccount,
		}); err != nil {
		logger.FromContext(ctx).Error("audit write failed", zap.Error(err))
	}
	return errmap.Newf(errmap.KindOwnershipViolation, errmap.Context{
		ResourceType: "payment_record",
		ResourceID:   record.ExternalPaymentID,
		Operation:    "reconcile.settle",
	}, "ownership check failed: %s", reason)
}

func (s *service) amountMismatch(ctx context.Context, record *paymentdomain.PaymentRecord, req domain.SettleRequest, reason string) error {
	s.metrics.SecurityAlert(string(errmap.KindAmountMismatch))
	if err := s.audit.Record(ctx, auditdomain.ActorTypeSystem, "reconciler",
		auditdomain.ActionAmountMismatch, "payment_record", record.ExternalPaymentID,
		map[string]any{
			"reason":          reason,
			"stored_amount":   record.Amount,
			"observed_amount": req.ObservedAmount,
		}); err != nil {
		logger.FromContext(ctx).Error("audit write failed", zap.Error(err))
	}
	return errmap.Newf(errmap.KindAmountMismatch, errmap.Context{
		ResourceType: "payment_record",
		ResourceID:   record.ExternalPaymentID,
		Operation:    "reconcile.settle",
	}, "amount check failed: %s", reason)
}
