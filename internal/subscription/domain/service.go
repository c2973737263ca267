package domain

import (
	"context"
)

// Service applies subscription lifecycle snapshots.
type Service interface {
	// Apply upserts the record described by the snapshot. Stale snapshots
	// (an earlier billing period than what is stored) are dropped without
	// error; illegal status transitions return errmap.KindIllegalTransition.
	Apply(ctx context.Context, snap Snapshot) (*SubscriptionRecord, error)

	FindByExternalID(ctx context.Context, externalSubscriptionID string) (*SubscriptionRecord, error)
	FindByID(ctx context.Context, id int64) (*SubscriptionRecord, error)
}
