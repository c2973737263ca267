package domain

import "context"

// Service applies account verification snapshots.
type Service interface {
	// Apply upserts the onboarding record for the snapshot's account.
	Apply(ctx context.Context, snap Snapshot) (*OnboardingRecord, error)

	FindByExternalID(ctx context.Context, externalAccountID string) (*OnboardingRecord, error)
	// FindByOwner resolves the onboarding record for a landlord, used to
	// cross-check that settlement events are attributed to the account the
	// landlord actually onboarded.
	FindByOwner(ctx context.Context, ownerID int64) (*OnboardingRecord, error)
}
