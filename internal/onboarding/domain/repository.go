package domain

import (
	"context"
	"errors"
)

var (
	ErrRecordNotFound = errors.New("onboarding_record_not_found")
)

// Repository persists onboarding records.
type Repository interface {
	FindByExternalID(ctx context.Context, externalAccountID string) (*OnboardingRecord, error)
	FindByOwner(ctx context.Context, ownerID int64) (*OnboardingRecord, error)
	Insert(ctx context.Context, record *OnboardingRecord) (bool, error)
	Update(ctx context.Context, record *OnboardingRecord) error
}
