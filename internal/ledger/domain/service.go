package domain

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

// Service writes ledger entries. Only the reconciliation service calls it,
// always inside the settlement transaction.
type Service interface {
	// CreateEntry inserts the fee-split row for a settled payment. Inserting
	// a second entry for the same payment record reports ErrEntryExists.
	CreateEntry(ctx context.Context, tx *gorm.DB, entry *LedgerEntry) error

	// FindByPayment returns the entry for a payment record, or nil.
	FindByPayment(ctx context.Context, paymentRecordID int64) (*LedgerEntry, error)
}

var (
	ErrInvalidAmount   = errors.New("invalid_amount")
	ErrUnbalancedSplit = errors.New("unbalanced_split")
	ErrInvalidCurrency = errors.New("invalid_currency")
	ErrEntryExists     = errors.New("ledger_entry_exists")
)
