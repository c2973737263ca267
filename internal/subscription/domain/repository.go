package domain

import (
	"context"
	"errors"
)

var (
	ErrRecordNotFound = errors.New("subscription_record_not_found")
)

// Repository persists subscription records.
type Repository interface {
	FindByExternalID(ctx context.Context, externalSubscriptionID string) (*SubscriptionRecord, error)
	FindByID(ctx context.Context, id int64) (*SubscriptionRecord, error)
	Insert(ctx context.Context, record *SubscriptionRecord) (bool, error)
	Update(ctx context.Context, record *SubscriptionRecord) error
}
