package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// PaymentStatus tracks the lifecycle of a single payment attempt.
type PaymentStatus string

const (
	StatusRequiresPaymentMethod PaymentStatus = "requires_payment_method"
	StatusRequiresConfirmation  PaymentStatus = "requires_confirmation"
	StatusProcessing            PaymentStatus = "processing"
	StatusSucceeded             PaymentStatus = "succeeded"
	StatusFailed                PaymentStatus = "failed"
	StatusCanceled              PaymentStatus = "canceled"
)

// PaymentType determines the platform fee schedule applied at creation.
type PaymentType string

const (
	TypeRent     PaymentType = "rent"
	TypeDeposit  PaymentType = "deposit"
	TypeLateFee  PaymentType = "late_fee"
	TypeOneTime  PaymentType = "one_time"
)

// PaymentRecord mirrors one processor payment intent. Failed attempts are
// retained with their terminal status; rows are never deleted.
//
// Invariant: Amount = LandlordReceives + PlatformFee + ProcessorFee.
type PaymentRecord struct {
	ID                snowflake.ID  `json:"id" gorm:"primaryKey"`
	ExternalPaymentID string        `json:"external_payment_id" gorm:"type:text;not null;uniqueIndex:ux_payment_records_external_id"`
	TenantID          snowflake.ID  `json:"tenant_id" gorm:"not null;index"`
	LandlordID        snowflake.ID  `json:"landlord_id" gorm:"not null;index"`
	LeaseID           snowflake.ID  `json:"lease_id" gorm:"not null;index"`
	Amount            int64         `json:"amount" gorm:"not null"`
	PlatformFee       int64         `json:"platform_fee" gorm:"not null"`
	ProcessorFee      int64         `json:"processor_fee" gorm:"not null"`
	LandlordReceives  int64         `json:"landlord_receives" gorm:"not null"`
	Currency          string        `json:"currency" gorm:"type:text;not null"`
	Status            PaymentStatus `json:"status" gorm:"type:text;not null;index"`
	PaymentType       PaymentType   `json:"payment_type" gorm:"type:text;not null"`
	// Version backs optimistic concurrency on status updates.
	Version   int64      `json:"-" gorm:"not null;default:1"`
	CreatedAt time.Time  `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time  `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	SettledAt *time.Time `json:"settled_at"`
}

// TableName sets the database table name.
func (PaymentRecord) TableName() string { return "payment_records" }
