package repository

import (
	"context"
	"errors"

	"go.uber.org/fx"
	"gorm.io/gorm"

	"github.com/hudsor01/tenant-flow-sub006/internal/onboarding/domain"
)

type repository struct {
	db *gorm.DB
}

// Params for fx injection.
type Params struct {
	fx.In

	DB *gorm.DB
}

// New creates the onboarding repository.
func New(p Params) domain.Repository {
	return &repository{db: p.DB}
}

func (r *repository) FindByExternalID(ctx context.Context, externalAccountID string) (*domain.OnboardingRecord, error) {
	var record domain.OnboardingRecord
	err := r.db.WithContext(ctx).
		Where("external_account_id = ?", externalAccountID).
		First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrRecordNotFound
	}
	if err != nil {
		return nil, err
	}
	return &record, nil
}

func (r *repository) FindByOwner(ctx context.Context, ownerID int64) (*domain.OnboardingRecord, error) {
	var record domain.OnboardingRecord
	err := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrRecordNotFound
	}
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// Insert creates the record unless the account is already tracked.
func (r *repository) Insert(ctx context.Context, record *domain.OnboardingRecord) (bool, error) {
	res := r.db.WithContext(ctx).Exec(`
		INSERT INTO onboarding_records
			(id, external_account_id, owner_id, status, completion_percentage,
			 requirements_due, charges_enabled, payouts_enabled,
			 disabled_reason, business_type, country, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
		ON CONFLICT (external_account_id) DO NOTHING
	`, record.ID, record.ExternalAccountID, record.OwnerID, record.Status,
		record.CompletionPercentage, record.RequirementsDue,
		record.ChargesEnabled, record.PayoutsEnabled,
		record.DisabledReason, record.BusinessType, record.Country)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *repository) Update(ctx context.Context, record *domain.OnboardingRecord) error {
	return r.db.WithContext(ctx).
		Model(&domain.OnboardingRecord{}).
		Where("id = ?", record.ID).
		Updates(map[string]any{
			"status":                record.Status,
			"completion_percentage": record.CompletionPercentage,
			"requirements_due":      record.RequirementsDue,
			"charges_enabled":       record.ChargesEnabled,
			"payouts_enabled":       record.PayoutsEnabled,
			"disabled_reason":       record.DisabledReason,
			"business_type":         record.BusinessType,
			"country":               record.Country,
			"updated_at":            gorm.Expr("CURRENT_TIMESTAMP"),
		}).Error
}
