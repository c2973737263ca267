package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// OnboardingStatus tracks a marketplace account's verification progress.
type OnboardingStatus string

const (
	StatusNotStarted OnboardingStatus = "not_started"
	StatusInProgress OnboardingStatus = "in_progress"
	StatusCompleted  OnboardingStatus = "completed"
	StatusRejected   OnboardingStatus = "rejected"
)

// OnboardingRecord mirrors the processor's verification state for one
// marketplace account. It is rebuilt from each account snapshot, never
// accumulated.
type OnboardingRecord struct {
	ID                snowflake.ID     `json:"id" gorm:"primaryKey"`
	ExternalAccountID string           `json:"external_account_id" gorm:"type:text;not null;uniqueIndex:ux_onboarding_records_external_id"`
	OwnerID           snowflake.ID     `json:"owner_id" gorm:"not null;index"`
	Status            OnboardingStatus `json:"status" gorm:"type:text;not null;default:'not_started'"`
	// CompletionPercentage is a display-only estimate; capability flags,
	// not the percentage, gate payouts.
	CompletionPercentage int            `json:"completion_percentage" gorm:"not null;default:0"`
	RequirementsDue      datatypes.JSON `json:"requirements_due"`
	ChargesEnabled       bool           `json:"charges_enabled" gorm:"not null;default:false"`
	PayoutsEnabled       bool           `json:"payouts_enabled" gorm:"not null;default:false"`
	DisabledReason       string         `json:"disabled_reason" gorm:"type:text"`
	BusinessType         string         `json:"business_type" gorm:"type:text"`
	Country              string         `json:"country" gorm:"type:text"`
	CreatedAt            time.Time      `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt            time.Time      `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (OnboardingRecord) TableName() string { return "onboarding_records" }

// Snapshot is the state extracted from one account event.
type Snapshot struct {
	ExternalAccountID string
	OwnerID           snowflake.ID
	ChargesEnabled    bool
	PayoutsEnabled    bool
	RequirementsDue   []string
	DisabledReason    string
	BusinessType      string
	Country           string
}
