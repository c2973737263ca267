package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
)

// Intent is the normalized slice of a processor payment event the state
// machine consumes.
type Intent struct {
	ExternalPaymentID string
	Amount            int64
	Currency          string
	LeaseID           snowflake.ID
	TenantID          snowflake.ID
	PaymentType       PaymentType
	// ProcessorFee is declared by the creating request's metadata; the
	// platform fee is never taken from the event.
	ProcessorFee int64
	// DeclaredLandlordReceives is the payout the event claims, when its
	// metadata carries one. Verified at settlement, not trusted.
	DeclaredLandlordReceives *int64
	// AttributedAccount is the marketplace account funds route to.
	AttributedAccount string
}

// Service owns payment attempt lifecycles.
type Service interface {
	// EnsureRecord returns the record for the intent, creating it with
	// the given initial status when the creating event has not arrived.
	EnsureRecord(ctx context.Context, intent Intent, initial PaymentStatus) (*PaymentRecord, error)

	// Transition moves the record along the legal transition table with
	// optimistic concurrency. Illegal moves report KindIllegalTransition.
	Transition(ctx context.Context, intent Intent, to PaymentStatus) error

	FindByExternalID(ctx context.Context, externalPaymentID string) (*PaymentRecord, error)
	FindByID(ctx context.Context, id snowflake.ID) (*PaymentRecord, error)
}
