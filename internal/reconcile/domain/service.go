package domain

import (
	"context"
	"time"
)

// SettleRequest carries everything the settlement event claims about a
// payment. Claims are verified against stored state, never trusted.
type SettleRequest struct {
	ExternalPaymentID string
	// AttributedAccount is the marketplace account the processor says the
	// funds route to. Empty when the event carries no attribution.
	AttributedAccount string
	// ObservedAmount is the amount the settlement event reports, in the
	// smallest currency unit.
	ObservedAmount int64
	Currency       string
	// DeclaredLandlordReceives is the payout the event's metadata claims,
	// when present. Checked against the stored split.
	DeclaredLandlordReceives *int64
	SettledAt                time.Time
}

// Service finalizes succeeded payments: verifies ownership and amounts,
// moves the payment record to succeeded, and writes the fee-split ledger
// entry, all in one transaction.
type Service interface {
	// Settle is safe to re-run for the same payment; a payment already
	// settled with its ledger entry in place is a no-op.
	Settle(ctx context.Context, req SettleRequest) error
}
