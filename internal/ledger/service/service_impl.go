package service

import (
	"context"
	"errors"
	"strings"

	"github.com/bwmarrin/snowflake"
	ledgerdomain "github.com/hudsor01/tenant-flow-sub006/internal/ledger/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
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

func NewService(p Params) ledgerdomain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("ledger.service"),
		genID: p.GenID,
	}
}

func (s *Service) CreateEntry(ctx context.Context, tx *gorm.DB, entry *ledgerdomain.LedgerEntry) error {
	if tx == nil {
		tx = s.db
	}
	if entry == nil {
		return ledgerdomain.ErrInvalidAmount
	}
	entry.Currency = strings.ToUpper(strings.TrimSpace(entry.Currency))
	if entry.Currency == "" {
		return ledgerdomain.ErrInvalidCurrency
	}
	if err := ledgerdomain.ValidateSplit(*entry); err != nil {
		return err
	}
	if entry.ID == 0 {
		entry.ID = s.genID.Generate()
	}

	result := tx.WithContext(ctx).Exec(
		`INSERT INTO ledger_entries (
			id, payment_record_id, external_payment_id, lease_id, landlord_id,
			amount, platform_fee, processor_fee, landlord_receives, currency,
			settled_at, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT (payment_record_id) DO NOTHING`,
		entry.ID,
		entry.PaymentRecordID,
		entry.ExternalPaymentID,
		entry.LeaseID,
		entry.LandlordID,
		entry.Amount,
		entry.PlatformFee,
		entry.ProcessorFee,
		entry.LandlordReceives,
		entry.Currency,
		entry.SettledAt,
	)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ledgerdomain.ErrEntryExists
	}

	s.log.Info("ledger entry created",
		zap.String("ledger_entry_id", entry.ID.String()),
		zap.String("external_payment_id", entry.ExternalPaymentID),
		zap.Int64("amount", entry.Amount),
	)
	return nil
}

func (s *Service) FindByPayment(ctx context.Context, paymentRecordID int64) (*ledgerdomain.LedgerEntry, error) {
	var entry ledgerdomain.LedgerEntry
	err := s.db.WithContext(ctx).
		Where("payment_record_id = ?", paymentRecordID).
		Take(&entry).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &entry, nil
}
