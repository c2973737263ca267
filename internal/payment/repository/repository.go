package repository

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	paymentdomain "github.com/hudsor01/tenant-flow-sub006/internal/payment/domain"
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

func Provide(p Params) paymentdomain.Repository {
	return &Repository{db: p.DB}
}

func (r *Repository) FindByExternalID(ctx context.Context, db *gorm.DB, externalPaymentID string) (*paymentdomain.PaymentRecord, error) {
	if db == nil {
		db = r.db
	}
	var record paymentdomain.PaymentRecord
	err := db.WithContext(ctx).
		Where("external_payment_id = ?", externalPaymentID).
		Take(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &record, nil
}

func (r *Repository) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*paymentdomain.PaymentRecord, error) {
	if db == nil {
		db = r.db
	}
	var record paymentdomain.PaymentRecord
	err := db.WithContext(ctx).Where("id = ?", id).Take(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &record, nil
}

func (r *Repository) Insert(ctx context.Context, db *gorm.DB, record *paymentdomain.PaymentRecord) (bool, error) {
	if db == nil {
		db = r.db
	}
	now := time.Now().UTC()
	result := db.WithContext(ctx).Exec(
		`INSERT INTO payment_records (
			id, external_payment_id, tenant_id, landlord_id, lease_id,
			amount, platform_fee, processor_fee, landlord_receives, currency,
			status, payment_type, version, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 1, ?, ?)
		ON CONFLICT (external_payment_id) DO NOTHING`,
		record.ID,
		record.ExternalPaymentID,
		record.TenantID,
		record.LandlordID,
		record.LeaseID,
		record.Amount,
		record.PlatformFee,
		record.ProcessorFee,
		record.LandlordReceives,
		record.Currency,
		record.Status,
		record.PaymentType,
		now,
		now,
	)
	if result.Error != nil {
		return false, result.Error
	}
	if result.RowsAffected > 0 {
		record.Version = 1
		record.CreatedAt = now
		record.UpdatedAt = now
	}
	return result.RowsAffected > 0, nil
}

func (r *Repository) UpdateStatus(ctx context.Context, db *gorm.DB, record *paymentdomain.PaymentRecord, to paymentdomain.PaymentStatus) error {
	if db == nil {
		db = r.db
	}
	now := time.Now().UTC()

	var settledAt any
	if to == paymentdomain.StatusSucceeded {
		settledAt = now
	}

	result := db.WithContext(ctx).Exec(
		`UPDATE payment_records
		 SET status = ?, version = version + 1, updated_at = ?,
		     settled_at = COALESCE(settled_at, ?)
		 WHERE id = ? AND version = ?`,
		to,
		now,
		settledAt,
		record.ID,
		record.Version,
	)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return paymentdomain.ErrVersionConflict
	}
	record.Status = to
	record.Version++
	record.UpdatedAt = now
	if to == paymentdomain.StatusSucceeded && record.SettledAt == nil {
		record.SettledAt = &now
	}
	return nil
}
