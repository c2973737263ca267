// Package seed bootstraps development data. Production never seeds; the
// property management modules own these tables there.
package seed

import (
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"

	tenancydomain "github.com/hudsor01/tenant-flow-sub006/internal/tenancy/domain"
)

const (
	demoLeaseID    = 9001
	demoLandlordID = 9002
	demoTenantID   = 9003
	demoTenantMail = "tenant@example.test"
)

// EnsureDemoLease inserts one lease and tenant so a local instance can
// process webhook fixtures without the property modules running.
func EnsureDemoLease(db *gorm.DB) error {
	if db == nil {
		return errors.New("seed database handle is required")
	}

	return db.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&tenancydomain.Lease{}).
			Where("id = ?", demoLeaseID).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return nil
		}

		node, err := snowflake.NewNode(1)
		if err != nil {
			return err
		}
		if err := tx.Create(&tenancydomain.Tenant{
			ID:     snowflake.ID(demoTenantID),
			UserID: node.Generate(),
			Email:  demoTenantMail,
		}).Error; err != nil {
			return err
		}
		return tx.Create(&tenancydomain.Lease{
			ID:         snowflake.ID(demoLeaseID),
			PropertyID: node.Generate(),
			LandlordID: snowflake.ID(demoLandlordID),
			TenantID:   snowflake.ID(demoTenantID),
			RentAmount: 150000,
			StartDate:  time.Now().UTC().AddDate(0, -1, 0),
		}).Error
	})
}
