// Package domain exposes read-only views of the property management tables.
// The reconciliation core never writes these; it reads them solely to prove
// ownership before crediting an account.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Lease links a tenant to a landlord for a property. Owned by the leasing
// module; read-only here.
type Lease struct {
	ID         snowflake.ID `json:"id" gorm:"primaryKey"`
	PropertyID snowflake.ID `json:"property_id" gorm:"not null;index"`
	LandlordID snowflake.ID `json:"landlord_id" gorm:"not null;index"`
	TenantID   snowflake.ID `json:"tenant_id" gorm:"not null;index"`
	RentAmount int64        `json:"rent_amount" gorm:"not null"`
	StartDate  time.Time    `json:"start_date"`
	EndDate    *time.Time   `json:"end_date"`
	CreatedAt  time.Time    `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (Lease) TableName() string { return "leases" }

// Tenant maps a tenant row to its platform user. Owned by the tenant
// module; read-only here.
type Tenant struct {
	ID        snowflake.ID `json:"id" gorm:"primaryKey"`
	UserID    snowflake.ID `json:"user_id" gorm:"not null;index"`
	Email     string       `json:"email" gorm:"type:text;not null"`
	CreatedAt time.Time    `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (Tenant) TableName() string { return "tenants" }
