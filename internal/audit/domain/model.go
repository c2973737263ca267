package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// ActorType represents who triggered an action.
type ActorType string

const (
	ActorTypeSystem    ActorType = "system"
	ActorTypeProcessor ActorType = "processor"
	ActorTypeOperator  ActorType = "operator"
)

// Security-relevant actions recorded by the reconciliation core.
const (
	ActionOwnershipViolation = "reconcile.ownership_violation"
	ActionAmountMismatch     = "reconcile.amount_mismatch"
	ActionDeadLetterReplay   = "deadletter.replay"
)

// AuditLog captures an immutable record of a security or billing action.
type AuditLog struct {
	ID         snowflake.ID      `gorm:"primaryKey"`
	ActorType  string            `gorm:"type:text;not null"`
	ActorID    *string           `gorm:"type:text"`
	Action     string            `gorm:"type:text;not null;index"`
	TargetType string            `gorm:"type:text;not null"`
	TargetID   *string           `gorm:"type:text"`
	Metadata   datatypes.JSONMap `gorm:"not null"`
	CreatedAt  time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (AuditLog) TableName() string { return "audit_logs" }
