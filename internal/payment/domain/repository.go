package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	// FindByExternalID returns the record for a processor payment id, or
	// nil when none exists yet.
	FindByExternalID(ctx context.Context, db *gorm.DB, externalPaymentID string) (*PaymentRecord, error)

	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*PaymentRecord, error)

	// Insert creates the record, reporting whether a row was written. A
	// conflict on external_payment_id reports false with no error, so two
	// concurrent creations converge on the same row.
	Insert(ctx context.Context, db *gorm.DB, record *PaymentRecord) (bool, error)

	// UpdateStatus moves the record to a new status guarded by the stored
	// version. A version mismatch reports ErrVersionConflict; callers
	// re-read and retry rather than overwrite blindly.
	UpdateStatus(ctx context.Context, db *gorm.DB, record *PaymentRecord, to PaymentStatus) error
}

var ErrVersionConflict = errors.New("payment_version_conflict")
