package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// LedgerEntry is the immutable fee-split row written once per settled
// payment. The unique index on payment_record_id is what makes "exactly one
// ledger entry per settlement" a database guarantee rather than a convention.
type LedgerEntry struct {
	ID                snowflake.ID `json:"id" gorm:"primaryKey"`
	PaymentRecordID   snowflake.ID `json:"payment_record_id" gorm:"not null;uniqueIndex:ux_ledger_entries_payment"`
	ExternalPaymentID string       `json:"external_payment_id" gorm:"type:text;not null;index"`
	LeaseID           snowflake.ID `json:"lease_id" gorm:"not null;index"`
	LandlordID        snowflake.ID `json:"landlord_id" gorm:"not null;index"`
	Amount            int64        `json:"amount" gorm:"not null"`
	PlatformFee       int64        `json:"platform_fee" gorm:"not null"`
	ProcessorFee      int64        `json:"processor_fee" gorm:"not null"`
	LandlordReceives  int64        `json:"landlord_receives" gorm:"not null"`
	Currency          string       `json:"currency" gorm:"type:text;not null"`
	SettledAt         time.Time    `json:"settled_at" gorm:"not null"`
	CreatedAt         time.Time    `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (LedgerEntry) TableName() string { return "ledger_entries" }
