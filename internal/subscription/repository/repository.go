package repository

import (
	"context"
	"errors"

	"go.uber.org/fx"
	"gorm.io/gorm"

	"github.com/hudsor01/tenant-flow-sub006/internal/subscription/domain"
)

type repository struct {
	db *gorm.DB
}

// Params for fx injection.
type Params struct {
	fx.In

	DB *gorm.DB
}

// New creates the subscription repository.
func New(p Params) domain.Repository {
	return &repository{db: p.DB}
}

func (r *repository) FindByExternalID(ctx context.Context, externalSubscriptionID string) (*domain.SubscriptionRecord, error) {
	var record domain.SubscriptionRecord
	err := r.db.WithContext(ctx).
		Where("external_subscription_id = ?", externalSubscriptionID).
		First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrRecordNotFound
	}
	if err != nil {
		return nil, err
	}
	return &record, nil
}

func (r *repository) FindByID(ctx context.Context, id int64) (*domain.SubscriptionRecord, error) {
	var record domain.SubscriptionRecord
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrRecordNotFound
	}
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// Insert creates the record unless one already exists for the external id.
// Returns false when another writer got there first.
func (r *repository) Insert(ctx context.Context, record *domain.SubscriptionRecord) (bool, error) {
	res := r.db.WithContext(ctx).Exec(`
		INSERT INTO subscription_records
			(id, external_subscription_id, owner_id, status,
			 current_period_start, current_period_end, cancel_at_period_end,
			 created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
		ON CONFLICT (external_subscription_id) DO NOTHING
	`, record.ID, record.ExternalSubscriptionID, record.OwnerID, record.Status,
		record.CurrentPeriodStart, record.CurrentPeriodEnd, record.CancelAtPeriodEnd)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *repository) Update(ctx context.Context, record *domain.SubscriptionRecord) error {
	return r.db.WithContext(ctx).
		Model(&domain.SubscriptionRecord{}).
		Where("id = ?", record.ID).
		Updates(map[string]any{
			"status":               record.Status,
			"current_period_start": record.CurrentPeriodStart,
			"current_period_end":   record.CurrentPeriodEnd,
			"cancel_at_period_end": record.CancelAtPeriodEnd,
			"updated_at":           gorm.Expr("CURRENT_TIMESTAMP"),
		}).Error
}
