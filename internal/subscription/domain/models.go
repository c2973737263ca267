package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// SubscriptionStatus tracks recurring billing state.
type SubscriptionStatus string

const (
	StatusIncomplete          SubscriptionStatus = "incomplete"
	StatusIncompleteExpired   SubscriptionStatus = "incomplete_expired"
	StatusActive              SubscriptionStatus = "active"
	StatusPastDue             SubscriptionStatus = "past_due"
	StatusCanceled            SubscriptionStatus = "canceled"
	StatusCanceledAtPeriodEnd SubscriptionStatus = "canceled_at_period_end"
)

// SubscriptionRecord mirrors the processor's view of one recurring billing
// relationship.
type SubscriptionRecord struct {
	ID                     snowflake.ID       `json:"id" gorm:"primaryKey"`
	ExternalSubscriptionID string             `json:"external_subscription_id" gorm:"type:text;not null;uniqueIndex:ux_subscription_records_external_id"`
	OwnerID                snowflake.ID       `json:"owner_id" gorm:"not null;index"`
	Status                 SubscriptionStatus `json:"status" gorm:"type:text;not null"`
	CurrentPeriodStart     time.Time          `json:"current_period_start"`
	CurrentPeriodEnd       time.Time          `json:"current_period_end"`
	CancelAtPeriodEnd      bool               `json:"cancel_at_period_end" gorm:"not null;default:false"`
	CreatedAt              time.Time          `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt              time.Time          `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (SubscriptionRecord) TableName() string { return "subscription_records" }

// Snapshot is the full state carried by every subscription lifecycle event.
// Trackers apply snapshots, they never accumulate deltas.
type Snapshot struct {
	ExternalSubscriptionID string
	OwnerID                snowflake.ID
	Status                 SubscriptionStatus
	CurrentPeriodStart     time.Time
	CurrentPeriodEnd       time.Time
	CancelAtPeriodEnd      bool
}
